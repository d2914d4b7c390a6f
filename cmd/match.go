package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/postreview/internal/review"
)

var titlesFile string

var matchCmd = &cobra.Command{
	Use:   "match <changeId>",
	Short: "Print the first review title that refers to a change",
	Long: "Reads review titles, one per line, from --titles or stdin and prints the\n" +
		"first one whose trailing @<id> refers to the change.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := cmd.InOrStdin()
		if titlesFile != "" {
			f, err := os.Open(titlesFile)
			if err != nil {
				if os.IsNotExist(err) {
					return fmt.Errorf("file not found: %s", titlesFile)
				}
				return err
			}
			defer f.Close()
			in = f
		}

		titles, err := readLines(in)
		if err != nil {
			return fmt.Errorf("reading titles: %w", err)
		}
		title, ok := review.MatchTitle(args[0], titles)
		if !ok {
			return fmt.Errorf("no review matches change %s", args[0])
		}
		fmt.Fprintln(cmd.OutOrStdout(), title)
		return nil
	},
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}

func init() {
	matchCmd.Flags().StringVar(&titlesFile, "titles", "", "file of review titles, one per line (default stdin)")
	rootCmd.AddCommand(matchCmd)
}
