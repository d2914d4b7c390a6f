// Package p4 extracts Perforce changelists by running the p4 command line
// client in tagged mode.
package p4

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/fakeyudi/postreview/internal/runner"
)

// Options selects the Perforce server and workspace. Empty fields are left
// to p4's own environment and P4CONFIG handling.
type Options struct {
	Port     string
	Client   string
	User     string
	Password string
	Dir      string
}

// NewRunner returns a runner whose p4 invocations use opts. Run may be nil
// to run real subprocesses.
func NewRunner(opts Options, run runner.RunFunc, log zerolog.Logger) *runner.Runner {
	env := make(map[string]string)
	if opts.Port != "" {
		env["P4PORT"] = opts.Port
	}
	if opts.Client != "" {
		env["P4CLIENT"] = opts.Client
	}
	if opts.User != "" {
		env["P4USER"] = opts.User
	}
	if opts.Password != "" {
		env["P4PASSWD"] = opts.Password
	}
	return &runner.Runner{Dir: opts.Dir, Env: env, Run: run, Log: log}
}

// CheckClient verifies that the workspace exec runs against exists, so that
// bad connection settings fail before any extraction starts. When no client
// is named, the one p4 info reports is used.
func CheckClient(ctx context.Context, exec runner.Executor, name string, log zerolog.Logger) (*Client, error) {
	if name == "" {
		info, err := GetInfo(ctx, exec)
		if err != nil {
			return nil, err
		}
		log.Debug().Str("info", info.String()).Msg("p4 info")
		name = info.ClientName
	}
	if name == "" {
		return nil, fmt.Errorf("no Perforce client: set P4CLIENT or pass --p4client")
	}
	c, err := GetClient(ctx, exec, name)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("client", c.String()).Msg("p4 client")
	return c, nil
}
