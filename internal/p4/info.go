package p4

import (
	"context"

	"github.com/fakeyudi/postreview/internal/runner"
	"github.com/fakeyudi/postreview/internal/ztag"
)

// Info is the subset of "p4 info" the tool uses.
type Info struct {
	UserName      string
	ClientName    string
	ClientRoot    string
	ServerAddress string
}

func (i *Info) String() string {
	return "Client: " + i.ClientName + " Root: " + i.ClientRoot
}

// GetInfo runs "p4 info". Fields p4 does not report are left empty.
func GetInfo(ctx context.Context, exec runner.Executor) (*Info, error) {
	out, err := exec.String(ctx, "p4", "-ztag", "info")
	if err != nil {
		return nil, err
	}
	fields := ztag.Decode(out)
	return &Info{
		UserName:      fields["userName"],
		ClientName:    fields["clientName"],
		ClientRoot:    fields["clientRoot"],
		ServerAddress: fields["serverAddress"],
	}, nil
}
