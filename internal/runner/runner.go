// Package runner runs external tools such as p4 and git and returns their
// combined output.
package runner

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog"

	"github.com/fakeyudi/postreview/internal/change"
)

// RunFunc executes args[0] with the remaining args in dir, with env appended
// to the process environment, and returns stdout and stderr combined.
// This abstraction allows faking tools in tests.
type RunFunc func(ctx context.Context, dir string, env []string, args ...string) ([]byte, error)

// Executor runs a command and returns its combined output in the form the
// caller needs.
type Executor interface {
	Bytes(ctx context.Context, args ...string) ([]byte, error)
	String(ctx context.Context, args ...string) (string, error)
	Lines(ctx context.Context, args ...string) ([]string, error)
}

// Runner runs commands with a fixed working directory and environment.
type Runner struct {
	Dir string
	Env map[string]string
	Run RunFunc // if nil, runs a real subprocess
	Log zerolog.Logger
}

// ToolError reports a tool that could not be launched or exited non-zero.
type ToolError struct {
	Name   string
	Args   []string
	Output []byte
	Err    error
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("failed to invoke %s: %v", e.Name, e.Err)
	if out := strings.TrimSpace(string(e.Output)); out != "" {
		msg += ": " + firstLine(out)
	}
	return msg
}

func (e *ToolError) Unwrap() error { return e.Err }

// Is makes every ToolError match change.ErrToolFailure.
func (e *ToolError) Is(target error) bool { return target == change.ErrToolFailure }

// defaultRun runs the command as a real subprocess.
func defaultRun(ctx context.Context, dir string, env []string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = dir
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}
	return cmd.CombinedOutput()
}

// Bytes runs args and returns the raw output.
func (r *Runner) Bytes(ctx context.Context, args ...string) ([]byte, error) {
	if len(args) == 0 {
		return nil, &ToolError{Err: fmt.Errorf("empty command")}
	}
	run := r.Run
	if run == nil {
		run = defaultRun
	}
	r.Log.Debug().Str("dir", r.Dir).Msg("Executing: " + shellquote.Join(args...))

	out, err := run(ctx, r.Dir, r.environ(), args...)
	if err != nil {
		return nil, &ToolError{Name: args[0], Args: args[1:], Output: out, Err: err}
	}
	return out, nil
}

// String runs args and returns the output as text.
func (r *Runner) String(ctx context.Context, args ...string) (string, error) {
	out, err := r.Bytes(ctx, args...)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Lines runs args and returns the output split into lines with their
// terminators removed.
func (r *Runner) Lines(ctx context.Context, args ...string) ([]string, error) {
	out, err := r.Bytes(ctx, args...)
	if err != nil {
		return nil, err
	}
	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(out))
	sc.Buffer(make([]byte, 64*1024), len(out)+1)
	for sc.Scan() {
		lines = append(lines, strings.TrimSuffix(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading %s output: %w", args[0], err)
	}
	return lines, nil
}

// environ renders Env as sorted KEY=VALUE pairs.
func (r *Runner) environ() []string {
	if len(r.Env) == 0 {
		return nil
	}
	env := make([]string, 0, len(r.Env))
	for k, v := range r.Env {
		env = append(env, k+"="+v)
	}
	sort.Strings(env)
	return env
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
