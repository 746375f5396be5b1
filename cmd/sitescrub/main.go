package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mattjoyce/sitescrub/internal/config"
	"github.com/mattjoyce/sitescrub/internal/log"
)

var (
	version   = "0.1.0-dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := runCLI(ctx, os.Args[1:], cliIO{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		getenv: os.Getenv,
	})
	stop()
	os.Exit(code)
}

// cliIO is the process surface a command may touch.
type cliIO struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	getenv func(string) string
}

// exitError carries a process exit status out of a command. A nil err means
// the command already reported what went wrong.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func exitWith(code int, err error) error {
	return &exitError{code: code, err: err}
}

type rootOptions struct {
	configPath string
}

func newRootCmd(cio cliIO) *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "sitescrub",
		Short:         "Scrub a duplicated site database after a copy",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(cio.stdin)
	root.SetOut(cio.stdout)
	root.SetErr(cio.stderr)
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config file (default $"+config.EnvConfigPath+" or "+config.SystemConfigPath+")")

	root.AddCommand(
		newPostDBCopyCmd(opts, cio),
		newSiteScrubCmd(opts, cio),
		newFactoryCredsCmd(opts, cio),
		newDoctorCmd(opts, cio),
		newVersionCmd(cio),
	)
	return root
}

func runCLI(ctx context.Context, args []string, cio cliIO) int {
	root := newRootCmd(cio)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintf(cio.stderr, "Error: %v\n", ee.err)
		}
		return ee.code
	}
	fmt.Fprintf(cio.stderr, "Error: %v\n", err)
	return 1
}

// loadConfig resolves configuration and builds the stderr logger for a command.
func loadConfig(opts *rootOptions, cio cliIO) (*config.Config, *slog.Logger, error) {
	path := opts.configPath
	if path == "" && cio.getenv != nil {
		path = cio.getenv(config.EnvConfigPath)
	}
	cfg, err := config.Resolve(path)
	if err != nil {
		return nil, nil, exitWith(1, err)
	}
	return cfg, log.New(cfg.Log.Level, cfg.Log.Format, cio.stderr), nil
}

// executable returns override when set, otherwise this binary.
func executable(override string) (string, error) {
	if strings.TrimSpace(override) != "" {
		return override, nil
	}
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate sitescrub executable: %w", err)
	}
	return exe, nil
}

// discoveryLogger adapts a slog.Logger to the extension scanner's callback.
func discoveryLogger(l *slog.Logger) func(level, msg string, args ...any) {
	return func(level, msg string, args ...any) {
		switch strings.ToLower(level) {
		case "debug":
			l.Debug(msg, args...)
		case "warn":
			l.Warn(msg, args...)
		case "error":
			l.Error(msg, args...)
		default:
			l.Info(msg, args...)
		}
	}
}
