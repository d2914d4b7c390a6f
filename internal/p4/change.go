package p4

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/fakeyudi/postreview/internal/change"
	"github.com/fakeyudi/postreview/internal/diff"
	"github.com/fakeyudi/postreview/internal/runner"
)

// Change is a pending or submitted Perforce changelist.
type Change struct {
	exec   runner.Executor
	record *change.Record
	log    zerolog.Logger
}

var _ change.Change = (*Change)(nil)

// Open describes changelist id.
func Open(ctx context.Context, exec runner.Executor, id string, log zerolog.Logger) (*Change, error) {
	rec, err := Describe(ctx, exec, id)
	if err != nil {
		return nil, err
	}
	return &Change{exec: exec, record: rec, log: log}, nil
}

func (c *Change) ID() string             { return c.record.Number }
func (c *Change) Submitted() bool        { return c.record.Status == change.Submitted }
func (c *Change) Description() string    { return c.record.Description }
func (c *Change) Author() string         { return c.record.Author }
func (c *Change) Record() *change.Record { return c.record }
func (c *Change) String() string         { return c.record.String() }

// UploadItems pairs the depot revision of each file with its working-copy
// content. Sides an action does not have are empty.
func (c *Change) UploadItems(ctx context.Context) ([]change.UploadItem, error) {
	items := make([]change.UploadItem, 0, len(c.record.Files))
	for _, fe := range c.record.Files {
		if !fe.Action.HasContent() {
			c.log.Info().Str("file", fe.DepotPath).Stringer("action", fe.Action).Msg("no content to upload, skipping")
			continue
		}
		fs, err := c.status(ctx, fe)
		if err != nil {
			return nil, err
		}
		c.log.Info().Str("status", fs.String()).Msg("    =>")

		var depot, local []byte
		if fe.Action.HasDepotSide() {
			if depot, err = PrintFile(ctx, c.exec, fs.DepotPath, fe.Revision); err != nil {
				return nil, err
			}
		}
		if fe.Action.HasLocalSide() {
			if local, err = readLocal(fs.LocalPath); err != nil {
				return nil, err
			}
		}
		items = append(items, change.NewUploadItem(fs.RelativePath(), depot, local))
	}
	return items, nil
}

// Patch builds one unified diff from the depot revisions to the working
// copy. Non-textual files are left out entirely.
func (c *Change) Patch(ctx context.Context) (string, error) {
	var lines []string
	for _, fe := range c.record.Files {
		if !fe.Type.IsTextual() {
			c.log.Warn().Str("file", fe.DepotPath).Stringer("type", fe.Type).Msg("not a text file, SKIPPING")
			continue
		}
		if !fe.Action.HasContent() {
			continue
		}
		fs, err := c.status(ctx, fe)
		if err != nil {
			return "", err
		}
		c.log.Info().Str("status", fs.String()).Msg("    =>")

		frag, err := c.fragment(ctx, fe, fs)
		if err != nil {
			return "", err
		}
		lines = append(lines, diff.Banner(fs.RelativePath())...)
		lines = append(lines, frag...)
	}
	return diff.Document(lines), nil
}

func (c *Change) fragment(ctx context.Context, fe change.FileEntry, fs *Fstat) ([]string, error) {
	path := fs.RelativePath()
	changeNum := strconv.Itoa(fs.Change)

	var depot, local []string
	if fe.Action.HasDepotSide() {
		b, err := PrintFile(ctx, c.exec, fs.DepotPath, fe.Revision)
		if err != nil {
			return nil, err
		}
		depot = diff.SplitLines(b)
	}
	if fe.Action.HasLocalSide() {
		b, err := readLocal(fs.LocalPath)
		if err != nil {
			return nil, err
		}
		local = diff.SplitLines(b)
	}

	switch {
	case !fe.Action.HasDepotSide():
		return diff.Add(path, local), nil
	case !fe.Action.HasLocalSide():
		return diff.Delete(path, changeNum, depot), nil
	default:
		return diff.Modify(path, changeNum, depot, local), nil
	}
}

// LocalFiles returns the workspace paths of the files in the change that
// have a local side.
func (c *Change) LocalFiles(ctx context.Context) ([]string, error) {
	var paths []string
	for _, fe := range c.record.Files {
		if !fe.Action.HasLocalSide() {
			continue
		}
		fs, err := c.status(ctx, fe)
		if err != nil {
			return nil, err
		}
		if fs.LocalPath != "" {
			paths = append(paths, fs.LocalPath)
		}
	}
	return paths, nil
}

// status resolves the extended status of fe, falling back to "p4 where" for
// the local path when fstat does not report one.
func (c *Change) status(ctx context.Context, fe change.FileEntry) (*Fstat, error) {
	fs, err := GetFstat(ctx, c.exec, fe.DepotPath)
	if err != nil {
		return nil, err
	}
	if fs.DepotPath == "" {
		fs.DepotPath = fe.DepotPath
	}
	if fs.LocalPath == "" && fe.Action.HasLocalSide() {
		w, err := GetWhere(ctx, c.exec, fe.DepotPath)
		if err != nil {
			return nil, err
		}
		fs.LocalPath = w.LocalPath
	}
	return fs, nil
}

func readLocal(path string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("reading local file: %w", change.ErrNotFound)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading local file %s: %w", path, change.ErrNotFound)
		}
		return nil, fmt.Errorf("reading local file %s: %w", path, err)
	}
	return b, nil
}
