// Package git extracts a range of Git commits as a single pending change.
package git

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/fakeyudi/postreview/internal/change"
	"github.com/fakeyudi/postreview/internal/diff"
	"github.com/fakeyudi/postreview/internal/runner"
)

const (
	DefaultStart = "HEAD^"
	DefaultEnd   = "HEAD"
)

// Change is the difference between two revisions. Git changes are always
// treated as pending.
type Change struct {
	exec    runner.Executor
	gitPath string
	start   string
	end     string
	meta    Metadata
	record  *change.Record
	log     zerolog.Logger
}

var _ change.Change = (*Change)(nil)

// Open reads the log and file list of start..end. Empty revisions default to
// HEAD^ and HEAD.
func Open(ctx context.Context, exec runner.Executor, gitPath, start, end string, log zerolog.Logger) (*Change, error) {
	if gitPath == "" {
		gitPath = "git"
	}
	if start == "" {
		start = DefaultStart
	}
	if end == "" {
		end = DefaultEnd
	}

	meta, err := GetMetadata(ctx, exec, gitPath, start, end)
	if err != nil {
		return nil, err
	}
	files, err := nameStatus(ctx, exec, gitPath, start, end)
	if err != nil {
		return nil, err
	}

	c := &Change{exec: exec, gitPath: gitPath, start: start, end: end, meta: meta, log: log}
	c.record = &change.Record{
		Number:      meta.ID(),
		Author:      meta.Author,
		Time:        meta.Time(),
		Status:      change.Pending,
		Description: meta.Comment,
		Files:       files,
		Jobs:        []change.JobEntry{},
	}
	return c, nil
}

func (c *Change) ID() string             { return c.meta.ID() }
func (c *Change) Submitted() bool        { return false }
func (c *Change) Description() string    { return c.meta.Comment }
func (c *Change) Author() string         { return c.meta.Author }
func (c *Change) Record() *change.Record { return c.record }
func (c *Change) Metadata() Metadata     { return c.meta }
func (c *Change) String() string         { return c.meta.String() }

// Range returns the resolved start and end revisions.
func (c *Change) Range() (start, end string) { return c.start, c.end }

// UploadItems pairs each changed path's content at start with its content at
// end. A side the path does not exist on is empty.
func (c *Change) UploadItems(ctx context.Context) ([]change.UploadItem, error) {
	paths, err := c.exec.Lines(ctx, c.gitPath, "diff", "--no-renames", "--name-only", c.start, c.end)
	if err != nil {
		return nil, err
	}
	actions := make(map[string]change.Action, len(c.record.Files))
	for _, f := range c.record.Files {
		actions[f.DepotPath] = f.Action
	}

	items := make([]change.UploadItem, 0, len(paths))
	for _, path := range paths {
		if path == "" {
			continue
		}
		action, ok := actions[path]
		if !ok {
			action = change.Edit
		}
		old, local, err := c.sides(ctx, path, action)
		if err != nil {
			return nil, err
		}
		items = append(items, change.NewUploadItem(path, old, local))
	}
	return items, nil
}

// Patch builds one unified diff over the textual files of the range. Files
// git reports as binary are skipped.
func (c *Change) Patch(ctx context.Context) (string, error) {
	var lines []string
	for _, f := range c.record.Files {
		if !f.Type.IsTextual() {
			c.log.Warn().Str("file", f.DepotPath).Stringer("type", f.Type).Msg("not a text file, SKIPPING")
			continue
		}
		if !f.Action.HasContent() {
			continue
		}
		old, local, err := c.sides(ctx, f.DepotPath, f.Action)
		if err != nil {
			return "", err
		}

		var frag []string
		switch {
		case !f.Action.HasDepotSide():
			frag = diff.Add(f.DepotPath, diff.SplitLines(local))
		case !f.Action.HasLocalSide():
			frag = diff.Delete(f.DepotPath, c.start, diff.SplitLines(old))
		default:
			frag = diff.Modify(f.DepotPath, c.start, diff.SplitLines(old), diff.SplitLines(local))
		}
		lines = append(lines, diff.Banner(f.DepotPath)...)
		lines = append(lines, frag...)
	}
	return diff.Document(lines), nil
}

func (c *Change) sides(ctx context.Context, path string, action change.Action) (old, local []byte, err error) {
	c.log.Info().Str("file", path).Stringer("action", action).Msg("    =>")
	if action.HasDepotSide() {
		if old, err = c.show(ctx, c.start, path); err != nil {
			return nil, nil, err
		}
	}
	if action.HasLocalSide() {
		if local, err = c.show(ctx, c.end, path); err != nil {
			return nil, nil, err
		}
	}
	return old, local, nil
}

func (c *Change) show(ctx context.Context, rev, path string) ([]byte, error) {
	return c.exec.Bytes(ctx, c.gitPath, "show", rev+":"+path)
}

// nameStatus lists the files changed in start..end. Rename detection is off,
// so a moved file shows up as a delete and an add. Files git counts as
// binary get type Binary, the rest Text.
func nameStatus(ctx context.Context, exec runner.Executor, gitPath, start, end string) ([]change.FileEntry, error) {
	lines, err := exec.Lines(ctx, gitPath, "diff", "--no-renames", "--name-status", start, end)
	if err != nil {
		return nil, err
	}
	files := []change.FileEntry{}
	for _, line := range lines {
		entries, err := parseNameStatus(line)
		if err != nil {
			return nil, err
		}
		files = append(files, entries...)
	}

	binary, err := binaryPaths(ctx, exec, gitPath, start, end)
	if err != nil {
		return nil, err
	}
	for i := range files {
		if binary[files[i].DepotPath] {
			files[i].Type = change.Binary
		} else {
			files[i].Type = change.Text
		}
	}
	return files, nil
}

// binaryPaths returns the paths "git diff --numstat" reports without line
// counts, which is how it marks binary files.
func binaryPaths(ctx context.Context, exec runner.Executor, gitPath, start, end string) (map[string]bool, error) {
	lines, err := exec.Lines(ctx, gitPath, "diff", "--no-renames", "--numstat", start, end)
	if err != nil {
		return nil, err
	}
	binary := make(map[string]bool)
	for _, line := range lines {
		fields := strings.SplitN(line, "\t", 3)
		if len(fields) == 3 && fields[0] == "-" && fields[1] == "-" {
			binary[fields[2]] = true
		}
	}
	return binary, nil
}

// parseNameStatus reads one line such as "M\tpath" or "R100\told\tnew".
// Types are left Unknown.
func parseNameStatus(line string) ([]change.FileEntry, error) {
	if strings.TrimSpace(line) == "" {
		return nil, nil
	}
	fields := strings.Split(line, "\t")
	if len(fields) < 2 || fields[0] == "" {
		return nil, fmt.Errorf("unexpected name-status line %q", line)
	}
	entry := func(path string, a change.Action) change.FileEntry {
		return change.FileEntry{DepotPath: path, Action: a}
	}

	switch status := fields[0][0]; status {
	case 'A':
		return []change.FileEntry{entry(fields[1], change.Add)}, nil
	case 'D':
		return []change.FileEntry{entry(fields[1], change.Delete)}, nil
	case 'M', 'T':
		return []change.FileEntry{entry(fields[1], change.Edit)}, nil
	case 'R', 'C':
		if len(fields) < 3 {
			return nil, fmt.Errorf("unexpected name-status line %q", line)
		}
		if status == 'C' {
			return []change.FileEntry{entry(fields[2], change.Branch)}, nil
		}
		return []change.FileEntry{
			entry(fields[1], change.MoveDelete),
			entry(fields[2], change.MoveAdd),
		}, nil
	default:
		return nil, fmt.Errorf("unsupported change status %q for %s", status, fields[1])
	}
}
