package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/postreview/internal/bundle"
	"github.com/fakeyudi/postreview/internal/change"
	"github.com/fakeyudi/postreview/internal/review"
	"github.com/fakeyudi/postreview/internal/session"
)

var (
	bundleFormat string
	reviewKey    string
	forceNew     bool
	usePatch     bool
	nothing      bool
)

var bundleCmd = &cobra.Command{
	Use:   "bundle",
	Short: "Write or update the review bundle for a change",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ch, source, err := openChange(cmd.Context())
		if err != nil {
			return err
		}
		_, err = postChange(cmd.Context(), cmd.OutOrStdout(), ch, source, reviewKey)
		return err
	},
}

// postChange creates or updates the review bundle of ch and reports where it
// went. key, when set, names the bundle to update.
func postChange(ctx context.Context, out io.Writer, ch change.Change, source, key string) (review.Review, error) {
	format := bundleFormat
	if format == "" {
		format = cfg.DefaultFormat
	}
	outbox := bundle.NewOutbox(cfg.OutputDir, format, cfg.ServerURL, bundle.MetaFrom(source, ch.Record()), log)

	var srv review.Server = outbox
	if nothing {
		srv = &review.DryRun{Lookup: outbox, Out: out}
	}

	r, err := review.Post(ctx, srv, ch, review.Options{
		Project:   cfg.Project,
		User:      reviewUser(ch),
		ReviewKey: key,
		ForceNew:  forceNew,
		Patch:     usePatch,
		Out:       out,
	})
	if err != nil {
		return review.Review{}, err
	}
	if nothing || r.Key == "" {
		return r, nil
	}

	fmt.Fprintf(out, "Bundle: %s\n", outbox.File(r.Key))
	if cfg.ServerURL != "" {
		conn := review.Connector{BaseURL: cfg.ServerURL}
		fmt.Fprintf(out, "Review: %s\n", conn.ReviewURL(r.Key))
	}
	return r, nil
}

// reviewUser picks the review author: the configured user, then the user of
// a live login to this server, then the change's author.
func reviewUser(ch change.Change) string {
	if cfg.User != "" {
		return cfg.User
	}
	if store, err := session.NewSessionStore(); err == nil {
		s, err := store.Load()
		switch {
		case err == nil && s.HasToken() && s.Matches(cfg.ServerURL, ""):
			return s.User
		case err != nil && !errors.Is(err, session.ErrNoSession):
			log.Warn().Err(err).Msg("Ignoring unreadable login")
		}
	}
	return ch.Author()
}

func init() {
	addChangeFlags(bundleCmd)
	bundleCmd.Flags().StringVar(&bundleFormat, "format", "", "Output format: markdown or json (overrides config)")
	bundleCmd.Flags().StringVarP(&reviewKey, "review", "r", "", "update this review instead of searching for one")
	bundleCmd.Flags().BoolVar(&forceNew, "new", false, "always create a new review")
	bundleCmd.Flags().BoolVar(&usePatch, "patch", false, "upload a unified diff instead of file pairs")
	bundleCmd.Flags().BoolVarP(&nothing, "nothing", "n", false, "print what would be uploaded without writing anything")
	rootCmd.AddCommand(bundleCmd)
}
