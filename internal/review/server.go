package review

import (
	"context"
	"fmt"
	"io"

	"github.com/fakeyudi/postreview/internal/change"
)

// Server is the review server as seen by the posting flow.
type Server interface {
	// FindOpen lists the draft and in-review reviews authored by author.
	FindOpen(ctx context.Context, author string) ([]Review, error)
	// Get returns the review with key.
	Get(ctx context.Context, key string) (Review, error)

	CreateFromItems(ctx context.Context, req Request, items []change.UploadItem) (Review, error)
	CreateFromPatch(ctx context.Context, req Request, patch string) (Review, error)
	CreateFromRevision(ctx context.Context, req Request, changeID string) (Review, error)

	AddItems(ctx context.Context, r Review, items []change.UploadItem) error
	AddPatch(ctx context.Context, r Review, patch string) error
}

// DryRun reports what would be uploaded without changing anything. Lookups
// go to Lookup when it is set; otherwise no reviews exist.
type DryRun struct {
	Lookup Server
	Out    io.Writer
}

var _ Server = (*DryRun)(nil)

func (d *DryRun) FindOpen(ctx context.Context, author string) ([]Review, error) {
	if d.Lookup == nil {
		return nil, nil
	}
	return d.Lookup.FindOpen(ctx, author)
}

func (d *DryRun) Get(ctx context.Context, key string) (Review, error) {
	if d.Lookup == nil {
		return Review{}, fmt.Errorf("review %s: %w", key, change.ErrNotFound)
	}
	return d.Lookup.Get(ctx, key)
}

func (d *DryRun) CreateFromItems(ctx context.Context, req Request, items []change.UploadItem) (Review, error) {
	fmt.Fprintf(d.Out, "Doing nothing (--nothing), but would upload %d file pairs.\n", len(items))
	return Review{Name: req.Name}, nil
}

func (d *DryRun) CreateFromPatch(ctx context.Context, req Request, patch string) (Review, error) {
	fmt.Fprintln(d.Out, "Doing nothing (--nothing), but would upload patch:")
	fmt.Fprintln(d.Out, patch)
	return Review{Name: req.Name}, nil
}

func (d *DryRun) CreateFromRevision(ctx context.Context, req Request, changeID string) (Review, error) {
	fmt.Fprintf(d.Out, "Doing nothing (--nothing), but would create review for change %s\n", changeID)
	return Review{Name: req.Name}, nil
}

func (d *DryRun) AddItems(ctx context.Context, r Review, items []change.UploadItem) error {
	fmt.Fprintf(d.Out, "Doing nothing (--nothing), but would upload %d file pairs to %s.\n", len(items), r.Key)
	return nil
}

func (d *DryRun) AddPatch(ctx context.Context, r Review, patch string) error {
	fmt.Fprintf(d.Out, "Doing nothing (--nothing), but would upload patch to %s:\n", r.Key)
	fmt.Fprintln(d.Out, patch)
	return nil
}
