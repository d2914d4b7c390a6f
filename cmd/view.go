package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/postreview/internal/bundle"
	"github.com/fakeyudi/postreview/internal/tui"
)

var plainOutput bool

var viewCmd = &cobra.Command{
	Use:   "view <file>",
	Short: "View a review bundle file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		b, err := bundle.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("file not found: %s", path)
			}
			return err
		}

		if plainOutput || !term.IsTerminal(os.Stdout.Fd()) {
			printBundle(cmd.OutOrStdout(), b)
			return nil
		}
		return tui.Run(b, path)
	},
}

// printBundle writes a plain-text summary of b to w.
func printBundle(w io.Writer, b *bundle.ReviewBundle) {
	fmt.Fprintln(w, "## Summary")
	fmt.Fprintf(w, "  Name:      %s\n", b.Request.Name)
	fmt.Fprintf(w, "  Project:   %s\n", b.Request.Project)
	fmt.Fprintf(w, "  Author:    %s\n", b.Request.Author)
	fmt.Fprintf(w, "  Change:    %s (%s, %s)\n", b.Change.ID, b.Change.Source, b.Change.Status)
	fmt.Fprintf(w, "  Mode:      %s\n", b.Mode)
	fmt.Fprintf(w, "  Bundle:    %s\n", b.ID)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "## Description")
	if strings.TrimSpace(b.Request.Description) == "" {
		fmt.Fprintln(w, "  (none)")
	} else {
		fmt.Fprintln(w, indent(strings.TrimSpace(b.Request.Description), "  "))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "## Files")
	if len(b.Change.Files) == 0 {
		fmt.Fprintln(w, "  (none)")
	} else {
		for _, f := range b.Change.Files {
			fmt.Fprintf(w, "  %s#%d  %s  (%s)\n", f.Path, f.Revision, f.Action, f.Type)
		}
	}
	fmt.Fprintln(w)

	switch b.Mode {
	case bundle.ModePatch:
		fmt.Fprintln(w, "## Patch")
		if b.Patch == "" {
			fmt.Fprintln(w, "  (empty)")
		} else {
			fmt.Fprintln(w, indent(b.Patch, "  "))
		}
	case bundle.ModeItems:
		fmt.Fprintln(w, "## Upload Items")
		for _, it := range b.Items {
			fmt.Fprintf(w, "  %s  (%d -> %d bytes)\n", it.Path, len(it.Old), len(it.New))
		}
	case bundle.ModeRevision:
		fmt.Fprintln(w, "## Revision")
		fmt.Fprintf(w, "  %s\n", b.Revision)
	}
	fmt.Fprintln(w)
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}

func init() {
	viewCmd.Flags().BoolVar(&plainOutput, "plain", false, "plain text output instead of TUI")
	rootCmd.AddCommand(viewCmd)
}
