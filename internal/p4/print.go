package p4

import (
	"context"
	"strconv"

	"github.com/fakeyudi/postreview/internal/runner"
)

// PrintFile returns the content of path at revision rev using "p4 print".
func PrintFile(ctx context.Context, exec runner.Executor, path string, rev int) ([]byte, error) {
	return exec.Bytes(ctx, "p4", "print", "-q", path+"#"+strconv.Itoa(rev))
}
