package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/postreview/internal/change"
	"github.com/fakeyudi/postreview/internal/git"
	"github.com/fakeyudi/postreview/internal/p4"
	"github.com/fakeyudi/postreview/internal/runner"
)

var (
	changeID string
	useGit   bool
	gitEnd   string
)

// addChangeFlags registers the flags that select a change.
func addChangeFlags(c *cobra.Command) {
	c.Flags().StringVarP(&changeID, "change", "c", "", "changelist number, or with --git the start revision (default HEAD^)")
	c.Flags().BoolVar(&useGit, "git", false, "read a Git commit range instead of a Perforce changelist")
	c.Flags().StringVar(&gitEnd, "end", "", "with --git, the end revision (default HEAD)")
}

// openChange extracts the change selected by the flags.
func openChange(ctx context.Context) (change.Change, string, error) {
	if useGit {
		exec := &runner.Runner{Dir: flagDir, Run: runTool, Log: log}
		ch, err := git.Open(ctx, exec, cfg.GitPath, changeID, gitEnd, log)
		if err != nil {
			return nil, "", fmt.Errorf("reading git range: %w", err)
		}
		return ch, "git", nil
	}

	if changeID == "" {
		return nil, "", fmt.Errorf("no change given: pass -c <changelist>")
	}
	exec := p4.NewRunner(p4.Options{
		Port:     cfg.P4Port,
		Client:   cfg.P4Client,
		User:     cfg.P4User,
		Password: cfg.P4Password,
		Dir:      flagDir,
	}, runTool, log)
	if _, err := p4.CheckClient(ctx, exec, cfg.P4Client, log); err != nil {
		return nil, "", fmt.Errorf("checking Perforce client: %w", err)
	}
	ch, err := p4.Open(ctx, exec, changeID, log)
	if err != nil {
		return nil, "", fmt.Errorf("reading change %s: %w", changeID, err)
	}
	return ch, "p4", nil
}
