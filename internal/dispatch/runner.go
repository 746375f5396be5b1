package dispatch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

//go:generate mockgen -destination=mocks/mock_runner.go -package=mocks github.com/mattjoyce/sitescrub/internal/dispatch Runner

// Command is one subprocess invocation.
type Command struct {
	Path string
	Args []string
	// Env holds KEY=value pairs added to the parent's environment.
	Env []string
}

// String renders the command as a shell line with every value quoted, the
// form written to diagnostics before the command runs.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Env)+len(c.Args)+1)
	for _, kv := range c.Env {
		k, v, _ := strings.Cut(kv, "=")
		parts = append(parts, k+"="+Quote(v))
	}
	parts = append(parts, c.Path)
	for _, a := range c.Args {
		if isFlag(a) {
			parts = append(parts, a)
			continue
		}
		parts = append(parts, Quote(a))
	}
	return strings.Join(parts, " ")
}

// Result is what a finished child left behind.
type Result struct {
	// Stdout holds the captured output lines, trailing whitespace trimmed.
	Stdout   []string
	ExitCode int
}

// Output returns the raw captured stdout lines joined with newlines.
func (r Result) Output() string {
	return strings.Join(r.Stdout, "\n")
}

// Runner executes a Command to completion.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	// Stderr receives the child's stderr. Nil discards it.
	Stderr io.Writer
	// BaseEnv is the environment the child inherits before Command.Env.
	BaseEnv []string
}

var _ Runner = (*ExecRunner)(nil)

// Run starts cmd and waits for it.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	if cmd.Path == "" {
		return Result{}, fmt.Errorf("command path is empty")
	}

	c := exec.CommandContext(ctx, cmd.Path, cmd.Args...)
	c.Env = append(append([]string(nil), r.BaseEnv...), cmd.Env...)

	var stdout bytes.Buffer
	c.Stdout = &stdout
	if r.Stderr != nil {
		c.Stderr = r.Stderr
	}

	err := c.Run()
	res := Result{Stdout: SplitLines(stdout.String())}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			if res.ExitCode < 0 {
				// Killed by a signal.
				res.ExitCode = 1
			}
			return res, nil
		}
		return res, fmt.Errorf("run %s: %w", cmd.Path, err)
	}
	return res, nil
}

// SplitLines splits output into lines, trimming trailing whitespace from each
// and dropping trailing empty lines.
func SplitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t\r")
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// Quote single-quotes s for a POSIX shell.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func isFlag(s string) bool {
	if !strings.HasPrefix(s, "-") || len(s) < 2 {
		return false
	}
	// Flags with inline values are still quoted.
	return !strings.ContainsAny(s, "= '\"$`\\")
}
