package identity

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mattjoyce/sitescrub/internal/dispatch"
	"github.com/mattjoyce/sitescrub/internal/protocol"
)

// RunIDEnv carries the orchestrator run id to child processes.
const RunIDEnv = "SITESCRUB_RUN_ID"

// CommandFetcher runs the credentials tool:
//
//	AH_SITE_GROUP=<g> AH_SITE_ENVIRONMENT=<e> <exe> factory-creds -r <docroot> -i <ext> --pipe
//
// and reads url_suffix from its JSON output.
type CommandFetcher struct {
	Runner     dispatch.Runner
	Executable string
	RunID      string
	Logger     *slog.Logger
}

var _ SuffixFetcher = (*CommandFetcher)(nil)

// Command builds the credentials invocation for req.
func (f *CommandFetcher) Command(req SuffixRequest) dispatch.Command {
	env := []string{
		"AH_SITE_GROUP=" + req.Target.Group,
		"AH_SITE_ENVIRONMENT=" + req.Target.Env,
	}
	if f.RunID != "" {
		env = append(env, RunIDEnv+"="+f.RunID)
	}
	return dispatch.Command{
		Path: f.Executable,
		Args: []string{"factory-creds", "-r", req.Docroot, "-i", req.ExtensionPath, "--pipe"},
		Env:  env,
	}
}

func (f *CommandFetcher) FetchSuffix(ctx context.Context, req SuffixRequest) (string, error) {
	cmd := f.Command(req)
	if f.Logger != nil {
		f.Logger.Info("executing", "command", cmd.String())
	}

	res, err := f.Runner.Run(ctx, cmd)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSuffixUnavailable, err)
	}
	if res.ExitCode != 0 {
		return "", fmt.Errorf("%w: credentials command exited with status %d", ErrSuffixUnavailable, res.ExitCode)
	}

	creds, _, err := protocol.DecodeCredentials(strings.NewReader(res.Output()))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSuffixUnavailable, err)
	}
	return creds.URLSuffix, nil
}
