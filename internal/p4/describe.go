package p4

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/fakeyudi/postreview/internal/change"
	"github.com/fakeyudi/postreview/internal/runner"
	"github.com/fakeyudi/postreview/internal/ztag"
)

// Describe runs "p4 describe" for the changelist id. It returns an error
// matching change.ErrNotFound when Perforce has no such changelist.
func Describe(ctx context.Context, exec runner.Executor, id string) (*change.Record, error) {
	out, err := exec.String(ctx, "p4", "-ztag", "describe", id)
	if err != nil {
		return nil, err
	}
	rec, ok := BuildChangelist(ztag.Decode(out))
	if !ok {
		return nil, fmt.Errorf("changelist %s: %w", id, change.ErrNotFound)
	}
	return rec, nil
}

// BuildChangelist reconstructs a changelist from decoded describe output.
// Files and jobs are read from indexed fields (depotFile0, depotFile1, ...)
// up to the first missing index. It reports false when fields is empty.
func BuildChangelist(fields map[string]string) (*change.Record, bool) {
	if len(fields) == 0 {
		return nil, false
	}

	rec := &change.Record{
		Number:      strconv.Itoa(ztag.Int(fields["change"])),
		Author:      fields["user"],
		Client:      fields["client"],
		Status:      change.ParseStatus(fields["status"]),
		Description: fields["desc"],
		Files:       []change.FileEntry{},
		Jobs:        []change.JobEntry{},
	}
	if secs := ztag.Int(fields["time"]); secs > 0 {
		rec.Time = time.Unix(int64(secs), 0)
	}

	for i := 0; ; i++ {
		n := strconv.Itoa(i)
		depotFile, ok := fields["depotFile"+n]
		if !ok {
			break
		}
		rec.Files = append(rec.Files, change.FileEntry{
			DepotPath: depotFile,
			Revision:  ztag.Int(fields["rev"+n]),
			Action:    change.ParseAction(fields["action"+n]),
			Type:      change.ParseFileType(fields["type"+n]),
		})
	}

	for i := 0; ; i++ {
		n := strconv.Itoa(i)
		job, ok := fields["Job"+n]
		if !ok {
			break
		}
		rec.Jobs = append(rec.Jobs, change.JobEntry{
			Job:         job,
			Status:      fields["Status"+n],
			Description: fields["Description"+n],
		})
	}

	return rec, true
}
