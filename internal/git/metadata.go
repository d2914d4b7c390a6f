package git

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fakeyudi/postreview/internal/change"
	"github.com/fakeyudi/postreview/internal/runner"
)

// logDate is the default date layout of "git log".
const logDate = "Mon Jan 2 15:04:05 2006 -0700"

// Metadata summarizes "git log start..end". When the range holds several
// commits, repeated headers are joined with ", " in log order.
type Metadata struct {
	Hash    string
	Author  string
	Date    string
	Comment string
}

// ParseLog reads the default "git log" layout.
func ParseLog(lines []string) Metadata {
	var hash, author, date []string
	var comment strings.Builder
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "commit "):
			hash = append(hash, strings.TrimPrefix(line, "commit "))
		case strings.HasPrefix(line, "Author: "):
			author = append(author, strings.TrimPrefix(line, "Author: "))
		case strings.HasPrefix(line, "Date: "):
			date = append(date, strings.TrimSpace(strings.TrimPrefix(line, "Date: ")))
		default:
			comment.WriteString(strings.TrimPrefix(line, "    "))
			comment.WriteByte('\n')
		}
	}
	return Metadata{
		Hash:    strings.Join(hash, ", "),
		Author:  strings.Join(author, ", "),
		Date:    strings.Join(date, ", "),
		Comment: comment.String(),
	}
}

// ID is the hash of the newest commit in the range.
func (m Metadata) ID() string {
	id, _, _ := strings.Cut(m.Hash, ", ")
	return id
}

// Time parses the date of the newest commit, or returns the zero time.
func (m Metadata) Time() time.Time {
	first, _, _ := strings.Cut(m.Date, ", ")
	t, err := time.Parse(logDate, first)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (m Metadata) String() string {
	return "Author: " + m.Author + "\nDate: " + m.Date + "\ncommit: " + m.Hash + "\n" + m.Comment
}

// GetMetadata runs "git log start..end". An empty range is reported as
// change.ErrNotFound.
func GetMetadata(ctx context.Context, exec runner.Executor, gitPath, start, end string) (Metadata, error) {
	lines, err := exec.Lines(ctx, gitPath, "log", start+".."+end)
	if err != nil {
		return Metadata{}, err
	}
	m := ParseLog(lines)
	if m.Hash == "" {
		return Metadata{}, fmt.Errorf("commits %s..%s: %w", start, end, change.ErrNotFound)
	}
	return m, nil
}
