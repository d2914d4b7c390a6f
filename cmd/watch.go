package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/postreview/internal/change"
	"github.com/fakeyudi/postreview/internal/p4"
	"github.com/fakeyudi/postreview/internal/runner"
	"github.com/fakeyudi/postreview/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rewrite a change's review bundle whenever its files are saved or HEAD moves",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		out := cmd.OutOrStdout()

		ch, source, err := openChange(ctx)
		if err != nil {
			return err
		}
		if ch.Submitted() {
			return fmt.Errorf("change %s is submitted; there is nothing to watch", ch.ID())
		}
		r, err := postChange(ctx, out, ch, source, reviewKey)
		if err != nil {
			return err
		}

		w := &watch.Watcher{
			Debounce: watch.DefaultDebounce,
			Log:      log,
			OnChange: func(ctx context.Context, changed []string) error {
				log.Info().Strs("files", changed).Msg("Files changed, rebuilding bundle")
				ch, source, err := openChange(ctx)
				if err != nil {
					return err
				}
				if r.Key != "" {
					_, err = postChange(ctx, out, ch, source, r.Key)
					return err
				}
				r, err = postChange(ctx, out, ch, source, "")
				return err
			},
		}
		if err := watchTargets(ctx, w, ch); err != nil {
			return err
		}

		fmt.Fprintln(out, "Watching for changes. Press Ctrl+C to stop.")
		return w.Run(ctx)
	},
}

// watchTargets points w at the workspace files of a Perforce change. A Git
// range is read from commits, so for Git it watches HEAD and its reflog,
// which move on every commit, checkout and reset.
func watchTargets(ctx context.Context, w *watch.Watcher, ch change.Change) error {
	pc, ok := ch.(*p4.Change)
	if !ok {
		return watchGitHead(ctx, w)
	}
	files, err := pc.LocalFiles(ctx)
	if err != nil {
		return fmt.Errorf("resolving workspace files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("change %s has no workspace files to watch", ch.ID())
	}
	w.Files = files
	return nil
}

func watchGitHead(ctx context.Context, w *watch.Watcher) error {
	exec := &runner.Runner{Dir: flagDir, Run: runTool, Log: log}
	out, err := exec.String(ctx, cfg.GitPath, "rev-parse", "--git-dir")
	if err != nil {
		return fmt.Errorf("locating git directory: %w", err)
	}
	gitDir := strings.TrimSpace(out)
	if !filepath.IsAbs(gitDir) {
		gitDir = filepath.Join(flagDir, gitDir)
	}
	for _, f := range []string{filepath.Join(gitDir, "HEAD"), filepath.Join(gitDir, "logs", "HEAD")} {
		if _, err := os.Stat(filepath.Dir(f)); err == nil {
			w.Files = append(w.Files, f)
		}
	}
	if len(w.Files) == 0 {
		return fmt.Errorf("no git directory at %s", gitDir)
	}
	return nil
}

func init() {
	addChangeFlags(watchCmd)
	watchCmd.Flags().StringVar(&bundleFormat, "format", "", "Output format: markdown or json (overrides config)")
	watchCmd.Flags().StringVarP(&reviewKey, "review", "r", "", "update this review instead of searching for one")
	watchCmd.Flags().BoolVar(&usePatch, "patch", false, "upload a unified diff instead of file pairs")
	rootCmd.AddCommand(watchCmd)
}
