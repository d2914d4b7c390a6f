package p4

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/fakeyudi/postreview/internal/change"
	"github.com/fakeyudi/postreview/internal/runner"
	"github.com/fakeyudi/postreview/internal/ztag"
)

// Fstat is the extended status of one file, as reported by "p4 fstat".
type Fstat struct {
	DepotPath string
	LocalPath string
	Action    change.Action
	Change    int // head change, or the open change for files never submitted
	Time      time.Time
	Type      change.FileType
}

var depotPathPattern = regexp.MustCompile(`^//[^/]+/(.+)$`)

// RelativePath is the depot path without its leading "//depot/".
func (f *Fstat) RelativePath() string {
	if m := depotPathPattern.FindStringSubmatch(f.DepotPath); m != nil {
		return m[1]
	}
	return strings.TrimPrefix(f.DepotPath, "//")
}

func (f *Fstat) String() string {
	return fmt.Sprintf("'%s' '%s' %s @%d <%s>", f.DepotPath, f.LocalPath, f.Action, f.Change, f.Type)
}

// GetFstat runs "p4 fstat" for path.
func GetFstat(ctx context.Context, exec runner.Executor, path string) (*Fstat, error) {
	out, err := exec.String(ctx, "p4", "-ztag", "fstat", path)
	if err != nil {
		return nil, err
	}
	fs, ok := fstatFrom(ztag.Decode(out))
	if !ok {
		return nil, fmt.Errorf("file status of %s: %w", path, change.ErrNotFound)
	}
	return fs, nil
}

// fstatFrom prefers the open action and type over the head ones, and the
// head change over the open change.
func fstatFrom(fields map[string]string) (*Fstat, bool) {
	if len(fields) == 0 {
		return nil, false
	}
	fs := &Fstat{
		DepotPath: fields["depotFile"],
		LocalPath: fields["clientFile"],
		Action:    change.ParseAction(firstOf(fields, "action", "headAction")),
		Change:    ztag.Int(firstOf(fields, "headChange", "change")),
		Type:      change.ParseFileType(firstOf(fields, "type", "headType")),
	}
	if secs := ztag.Int(fields["headTime"]); secs > 0 {
		fs.Time = time.Unix(int64(secs), 0)
	}
	return fs, true
}

func firstOf(fields map[string]string, keys ...string) string {
	for _, k := range keys {
		if v, ok := fields[k]; ok {
			return v
		}
	}
	return ""
}
