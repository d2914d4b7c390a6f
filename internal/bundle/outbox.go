package bundle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fakeyudi/postreview/internal/change"
	"github.com/fakeyudi/postreview/internal/review"
)

// Outbox is a review server backed by a directory of bundle files. Creating
// a review writes a new bundle; updating one rewrites it in place. The
// posting layer picks the bundles up from there.
type Outbox struct {
	Dir       string
	Format    string // "markdown" | "json"
	ServerURL string
	Change    ChangeMeta // change the bundles written by this outbox describe
	Log       zerolog.Logger

	now func() time.Time
}

var _ review.Server = (*Outbox)(nil)

// NewOutbox returns an outbox writing to dir in format.
func NewOutbox(dir, format, serverURL string, meta ChangeMeta, log zerolog.Logger) *Outbox {
	if dir == "" {
		dir = "."
	}
	return &Outbox{Dir: dir, Format: format, ServerURL: serverURL, Change: meta, Log: log, now: time.Now}
}

// Path returns the file a bundle with id is written to.
func (o *Outbox) Path(id string) string {
	return filepath.Join(o.Dir, "postreview-"+id+RendererFor(o.Format).Ext())
}

// File returns the file holding the bundle with id, or the file it would be
// written to when there is none.
func (o *Outbox) File(id string) string {
	if sb, err := o.find(id); err == nil {
		return sb.path
	}
	return o.Path(id)
}

// FindOpen lists the bundles in the outbox whose request was authored by
// author, in directory order.
func (o *Outbox) FindOpen(ctx context.Context, author string) ([]review.Review, error) {
	bundles, err := o.scan()
	if err != nil {
		return nil, err
	}
	var reviews []review.Review
	for _, sb := range bundles {
		if author == "" || sb.bundle.Request.Author == author {
			reviews = append(reviews, sb.bundle.Review())
		}
	}
	return reviews, nil
}

func (o *Outbox) Get(ctx context.Context, key string) (review.Review, error) {
	sb, err := o.find(key)
	if err != nil {
		return review.Review{}, err
	}
	return sb.bundle.Review(), nil
}

func (o *Outbox) CreateFromItems(ctx context.Context, req review.Request, items []change.UploadItem) (review.Review, error) {
	b := o.newBundle(req, ModeItems)
	b.Items = items
	return o.create(b)
}

func (o *Outbox) CreateFromPatch(ctx context.Context, req review.Request, patch string) (review.Review, error) {
	b := o.newBundle(req, ModePatch)
	b.Patch = patch
	return o.create(b)
}

func (o *Outbox) CreateFromRevision(ctx context.Context, req review.Request, changeID string) (review.Review, error) {
	b := o.newBundle(req, ModeRevision)
	b.Revision = changeID
	return o.create(b)
}

// AddItems replaces the content of the bundle for r with items.
func (o *Outbox) AddItems(ctx context.Context, r review.Review, items []change.UploadItem) error {
	return o.update(r.Key, func(b *ReviewBundle) {
		b.Mode = ModeItems
		b.Items = items
		b.Patch = ""
	})
}

// AddPatch replaces the content of the bundle for r with patch.
func (o *Outbox) AddPatch(ctx context.Context, r review.Review, patch string) error {
	return o.update(r.Key, func(b *ReviewBundle) {
		b.Mode = ModePatch
		b.Patch = patch
		b.Items = nil
	})
}

func (o *Outbox) newBundle(req review.Request, mode Mode) *ReviewBundle {
	now := o.clock()
	return &ReviewBundle{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
		ServerURL: o.ServerURL,
		Mode:      mode,
		Request:   req,
		Change:    o.Change,
	}
}

func (o *Outbox) create(b *ReviewBundle) (review.Review, error) {
	if err := os.MkdirAll(o.Dir, 0755); err != nil {
		return review.Review{}, fmt.Errorf("create output dir: %w", err)
	}
	path := o.Path(b.ID)
	if err := write(path, RendererFor(o.Format), b); err != nil {
		return review.Review{}, err
	}
	o.Log.Info().Str("path", path).Str("mode", string(b.Mode)).Msg("bundle written")
	return b.Review(), nil
}

func (o *Outbox) update(key string, apply func(*ReviewBundle)) error {
	sb, err := o.find(key)
	if err != nil {
		return err
	}
	apply(sb.bundle)
	sb.bundle.Change = o.Change
	sb.bundle.UpdatedAt = o.clock()
	if err := write(sb.path, rendererForPath(sb.path), sb.bundle); err != nil {
		return err
	}
	o.Log.Info().Str("path", sb.path).Str("mode", string(sb.bundle.Mode)).Msg("bundle updated")
	return nil
}

type storedBundle struct {
	path   string
	bundle *ReviewBundle
}

// scan parses every bundle file in the outbox. Files that are not bundles
// are skipped.
func (o *Outbox) scan() ([]storedBundle, error) {
	entries, err := os.ReadDir(o.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read output dir: %w", err)
	}
	var out []storedBundle
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, "postreview-") || strings.HasSuffix(name, ".tmp") {
			continue
		}
		path := filepath.Join(o.Dir, name)
		b, err := ReadFile(path)
		if err != nil {
			o.Log.Debug().Err(err).Str("path", path).Msg("skipping unreadable bundle")
			continue
		}
		out = append(out, storedBundle{path: path, bundle: b})
	}
	return out, nil
}

func (o *Outbox) find(key string) (storedBundle, error) {
	bundles, err := o.scan()
	if err != nil {
		return storedBundle{}, err
	}
	for _, sb := range bundles {
		if sb.bundle.ID == key {
			return sb, nil
		}
	}
	return storedBundle{}, fmt.Errorf("bundle %s: %w", key, change.ErrNotFound)
}

func (o *Outbox) clock() time.Time {
	if o.now == nil {
		return time.Now()
	}
	return o.now()
}

func rendererForPath(path string) BundleRenderer {
	if filepath.Ext(path) == ".json" {
		return &JSONRenderer{}
	}
	return &MarkdownRenderer{}
}

// write renders b to a temp file and renames it over path.
func write(path string, r BundleRenderer, b *ReviewBundle) error {
	data, err := r.Render(b)
	if err != nil {
		return fmt.Errorf("render bundle: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write output file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write output file: %w", err)
	}
	return nil
}
