// Package orchestrator drives one post-db-copy scrub of a duplicated site:
// connect to the copied database, resolve the site's new domain, prepare a
// scratch workspace, run the scrub pipeline against it, and clean up.
//
// The process exit code is the pipeline's exit status. Any failure before the
// pipeline is spawned ends the run with 1.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"time"

	"github.com/mattjoyce/sitescrub/internal/dispatch"
	"github.com/mattjoyce/sitescrub/internal/identity"
	"github.com/mattjoyce/sitescrub/internal/log"
	"github.com/mattjoyce/sitescrub/internal/metrics"
	"github.com/mattjoyce/sitescrub/internal/scrub"
	"github.com/mattjoyce/sitescrub/internal/site"
	"github.com/mattjoyce/sitescrub/internal/workspace"
)

//go:generate mockgen -destination=mocks/mock_orchestrator.go -package=mocks github.com/mattjoyce/sitescrub/internal/orchestrator Connector,Session,IdentityResolver

// Environment handed to the pipeline tool. CACHE_PREFIX is its scratch
// workspace; the rest identify the database to scrub.
const (
	CachePrefixEnv = "CACHE_PREFIX"
	SiteGroupEnv   = "AH_SITE_GROUP"
	SiteEnvEnv     = "AH_SITE_ENVIRONMENT"
	DBRoleEnv      = "SITESCRUB_DB_ROLE"
)

// Session is an open database connection for one run.
type Session interface {
	identity.InfoLookup
	Close() error
}

// Connector opens the copied database of a target.
type Connector interface {
	Connect(ctx context.Context, target site.Target) (Session, error)
}

// IdentityResolver is satisfied by identity.Resolver.
type IdentityResolver interface {
	Resolve(ctx context.Context, target site.Target, lookup identity.InfoLookup) (identity.Identity, error)
}

// Orchestrator runs scrubs. All collaborators are required except Metrics.
type Orchestrator struct {
	Connector  Connector
	Resolver   IdentityResolver
	Workspaces workspace.Manager
	Runner     dispatch.Runner
	// ScrubExecutable is spawned as "<exe> site-scrub -r <docroot> -l <domain> -y".
	ScrubExecutable string
	RunID           string

	// Stdout receives the pipeline's captured output and nothing else.
	Stdout io.Writer
	// Stderr receives the argument usage error.
	Stderr io.Writer
	Logger *slog.Logger

	// MetricsTextfile, when set, receives the run's metrics.
	MetricsTextfile string

	now func() time.Time
}

type run struct {
	o       *Orchestrator
	logger  *slog.Logger
	target  site.Target
	state   State
	entered time.Time
	metrics *metrics.Recorder
}

// Run executes one scrub for the positional args (site group, environment,
// database role) and returns the process exit code.
func (o *Orchestrator) Run(ctx context.Context, args []string) int {
	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = log.WithRun(logger, o.RunID)

	target, err := site.ParseTarget(args)
	if err != nil {
		if o.Stderr != nil {
			fmt.Fprintln(o.Stderr, "Error: Not enough arguments.")
		}
		logger.Error("invalid arguments", "error", err)
		return 1
	}

	r := &run{
		o:       o,
		logger:  logger.With("site", target.Group, "env", target.Env),
		target:  target,
		state:   StateInit,
		entered: o.clock(),
	}
	if o.MetricsTextfile != "" {
		r.metrics = metrics.NewRecorder(target.Group, target.Env)
	}

	code := r.execute(ctx)
	r.finish(code)
	return code
}

func (r *run) execute(ctx context.Context) int {
	r.logger.Info("scrubbing site database", "db_role", r.target.DBRole)

	r.transition(StateConnectingDB)
	sess, err := r.o.Connector.Connect(ctx, r.target)
	if err != nil {
		r.logger.Error("database connection failed", "error", err)
		return 1
	}
	closed := false
	closeSession := func() {
		if closed {
			return
		}
		closed = true
		if err := sess.Close(); err != nil {
			r.logger.Warn("closing database connection", "error", err)
		}
	}
	defer closeSession()

	r.transition(StateResolvingIdentity)
	id, err := r.o.Resolver.Resolve(ctx, r.target, sess)
	// The pipeline opens its own connection.
	closeSession()
	if err != nil {
		r.logger.Error("identity resolution failed", "error", err)
		return 1
	}
	r.logger.Info("resolved domain", "domain", id.Domain)

	r.transition(StatePreparingWorkspace)
	ws, err := r.o.Workspaces.Acquire(ctx, r.target, id.Domain)
	if err != nil {
		r.logger.Error("workspace preparation failed", "error", err)
		return 1
	}

	r.transition(StateRunningPipeline)
	code := r.runPipeline(ctx, id, ws)

	r.transition(StateCleaningUp)
	r.readReport(ws)
	if err := r.o.Workspaces.Release(ws); err != nil {
		r.logger.Warn("workspace cleanup failed", "dir", ws.Dir, "error", err)
	}

	if code != 0 {
		r.logger.Error(fmt.Sprintf("Command execution returned status code: %d!", code), "exit_code", code)
	}
	return code
}

func (r *run) runPipeline(ctx context.Context, id identity.Identity, ws workspace.Workspace) int {
	env := []string{
		CachePrefixEnv + "=" + ws.Dir,
		SiteGroupEnv + "=" + r.target.Group,
		SiteEnvEnv + "=" + r.target.Env,
		DBRoleEnv + "=" + r.target.DBRole,
	}
	if r.o.RunID != "" {
		env = append(env, identity.RunIDEnv+"="+r.o.RunID)
	}
	cmd := dispatch.Command{
		Path: r.o.ScrubExecutable,
		Args: []string{"site-scrub", "-r", id.Docroot, "-l", id.Domain, "-y"},
		Env:  env,
	}
	r.logger.Info("executing", "command", cmd.String())

	res, err := r.o.Runner.Run(ctx, cmd)
	if out := res.Output(); out != "" && r.o.Stdout != nil {
		fmt.Fprint(r.o.Stdout, out)
	}
	if err != nil {
		r.logger.Error("pipeline could not be started", "error", err)
		return 1
	}
	return res.ExitCode
}

func (r *run) readReport(ws workspace.Workspace) {
	report, err := scrub.ReadReport(ws.Dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.logger.Warn("pipeline left no report", "dir", ws.Dir)
		} else {
			r.logger.Warn("reading pipeline report", "error", err)
		}
		return
	}
	for _, h := range report.Handlers {
		r.logger.Info("handler result", "handler", h.Name, "status", h.Status, "duration_seconds", h.DurationSeconds, "error", h.Error)
		if r.metrics != nil {
			r.metrics.ObserveHandler(h.Name, h.Status, h.DurationSeconds)
		}
	}
}

func (r *run) transition(next State) {
	now := r.o.clock()
	if r.metrics != nil {
		r.metrics.ObserveState(r.state.String(), now.Sub(r.entered))
	}
	r.logger.Debug("state", "from", r.state.String(), "to", next.String())
	r.state = next
	r.entered = now
}

func (r *run) finish(code int) {
	r.transition(StateDone)
	r.logger.Debug("run finished", "exit_code", code)
	if r.metrics == nil {
		return
	}
	r.metrics.Finish(code, r.o.clock())
	if err := r.metrics.WriteTextfile(r.o.MetricsTextfile); err != nil {
		r.logger.Warn("metrics not written", "error", err)
	}
}

func (o *Orchestrator) clock() time.Time {
	if o.now != nil {
		return o.now()
	}
	return time.Now()
}
