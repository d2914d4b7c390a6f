package review

import (
	"context"
	"fmt"
	"io"

	"github.com/fakeyudi/postreview/internal/change"
)

// Options controls how a change is posted.
type Options struct {
	Project   string
	User      string
	ReviewKey string // update this review instead of searching
	ForceNew  bool
	Patch     bool // upload a unified diff instead of file pairs
	Out       io.Writer
}

// Post creates or updates the review of ch. Submitted changes get a review
// of the submitted revision unless one is already open; pending changes
// upload a patch or file pairs. It returns the review that was created or
// updated.
func Post(ctx context.Context, srv Server, ch change.Change, opts Options) (Review, error) {
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	existing, found, err := locate(ctx, srv, ch.ID(), opts)
	if err != nil {
		return Review{}, err
	}
	req := NewRequest(opts.Project, opts.User, ch.ID(), ch.Description())

	if ch.Submitted() {
		if found {
			fmt.Fprintf(opts.Out, "Change %s already has open review %s\n", ch.ID(), existing.Key)
			return existing, nil
		}
		r, err := srv.CreateFromRevision(ctx, req, ch.ID())
		return announce(opts.Out, r, err)
	}

	if opts.Patch {
		patch, err := ch.Patch(ctx)
		if err != nil {
			return Review{}, err
		}
		if found {
			return updated(opts.Out, existing, srv.AddPatch(ctx, existing, patch))
		}
		r, err := srv.CreateFromPatch(ctx, req, patch)
		return announce(opts.Out, r, err)
	}

	items, err := ch.UploadItems(ctx)
	if err != nil {
		return Review{}, err
	}
	if found {
		return updated(opts.Out, existing, srv.AddItems(ctx, existing, items))
	}
	r, err := srv.CreateFromItems(ctx, req, items)
	return announce(opts.Out, r, err)
}

func locate(ctx context.Context, srv Server, changeID string, opts Options) (Review, bool, error) {
	if opts.ForceNew {
		return Review{}, false, nil
	}
	if opts.ReviewKey != "" {
		fmt.Fprintf(opts.Out, "Retrieving review for update: %s\n", opts.ReviewKey)
		r, err := srv.Get(ctx, opts.ReviewKey)
		if err != nil {
			return Review{}, false, fmt.Errorf("review not found: %s: %w", opts.ReviewKey, err)
		}
		return r, true, nil
	}

	reviews, err := srv.FindOpen(ctx, opts.User)
	if err != nil {
		return Review{}, false, fmt.Errorf("finding reviews of %s: %w", opts.User, err)
	}
	fmt.Fprintf(opts.Out, "Scanning %d reviews for a review of change %s\n", len(reviews), changeID)
	r, ok := FindReview(changeID, reviews)
	if ok {
		fmt.Fprintf(opts.Out, "Found review: %s '%s'\n", r.Key, r.Name)
	}
	return r, ok, nil
}

func announce(out io.Writer, r Review, err error) (Review, error) {
	if err != nil {
		return Review{}, err
	}
	if r.Key != "" {
		fmt.Fprintf(out, "New review: %s '%s'\n", r.Key, r.Name)
	}
	return r, nil
}

func updated(out io.Writer, r Review, err error) (Review, error) {
	if err != nil {
		return Review{}, err
	}
	fmt.Fprintf(out, "Updated review: %s '%s'\n", r.Key, r.Name)
	return r, nil
}
