package p4

import (
	"context"
	"fmt"

	"github.com/fakeyudi/postreview/internal/change"
	"github.com/fakeyudi/postreview/internal/runner"
	"github.com/fakeyudi/postreview/internal/ztag"
)

// Client is a Perforce client workspace.
type Client struct {
	Name  string
	Owner string
	Root  string
	Host  string
}

func (c *Client) String() string {
	return "Client " + c.Name + " owner " + c.Owner + " root " + c.Root + " host " + c.Host
}

// GetClient looks up the client workspace called name with "p4 clients -e".
func GetClient(ctx context.Context, exec runner.Executor, name string) (*Client, error) {
	out, err := exec.String(ctx, "p4", "-ztag", "clients", "-e", name)
	if err != nil {
		return nil, err
	}
	for _, rec := range ztag.Records(out) {
		if rec["client"] != name {
			continue
		}
		return &Client{
			Name:  rec["client"],
			Owner: rec["Owner"],
			Root:  rec["Root"],
			Host:  rec["Host"],
		}, nil
	}
	return nil, fmt.Errorf("client %s: %w", name, change.ErrNotFound)
}
