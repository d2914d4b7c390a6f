package p4

import (
	"context"
	"fmt"

	"github.com/fakeyudi/postreview/internal/change"
	"github.com/fakeyudi/postreview/internal/runner"
	"github.com/fakeyudi/postreview/internal/ztag"
)

// Where maps a file between depot, client and local syntax.
type Where struct {
	DepotPath  string
	ClientPath string
	LocalPath  string
}

// GetWhere runs "p4 where" for path.
func GetWhere(ctx context.Context, exec runner.Executor, path string) (*Where, error) {
	out, err := exec.String(ctx, "p4", "-ztag", "where", path)
	if err != nil {
		return nil, err
	}
	fields := ztag.Decode(out)
	if len(fields) == 0 {
		return nil, fmt.Errorf("client mapping of %s: %w", path, change.ErrNotFound)
	}
	return &Where{
		DepotPath:  fields["depotFile"],
		ClientPath: fields["clientFile"],
		LocalPath:  fields["path"],
	}, nil
}
