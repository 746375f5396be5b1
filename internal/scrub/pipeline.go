// Package scrub removes environment-specific state from a freshly copied site
// database so the copy cannot act as the original.
//
// Handlers run in a fixed order and the pipeline stops at the first failure.
// Every handler is safe to re-run: a second pass over a scrubbed database
// finds nothing left to remove.
package scrub

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/mattjoyce/sitescrub/internal/log"
)

// Handler is one scrub step.
type Handler interface {
	Name() string
	Handle(ctx context.Context) error
}

// HandlerError reports a database failure inside a handler.
type HandlerError struct {
	Handler string
	Table   string
	Err     error
}

func (e *HandlerError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("%s: %v", e.Handler, e.Err)
	}
	return fmt.Sprintf("%s: query on %s failed: %v", e.Handler, e.Table, e.Err)
}

func (e *HandlerError) Unwrap() error { return e.Err }

// Pipeline runs handlers in order.
type Pipeline struct {
	Handlers []Handler
	// Out receives one "Entered <name>" line per handler started.
	Out    io.Writer
	Logger *slog.Logger
	now    func() time.Time
}

// Run executes every handler until one fails. The report covers the handlers
// that started, including the failing one.
func (p *Pipeline) Run(ctx context.Context, domain string) (Report, error) {
	now := p.now
	if now == nil {
		now = time.Now
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	out := p.Out
	if out == nil {
		out = io.Discard
	}

	report := Report{Domain: domain, Started: now().UTC()}
	for _, h := range p.Handlers {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		name := h.Name()
		fmt.Fprintf(out, "Entered %s\n", name)
		hlog := log.WithHandler(logger, name)

		start := now()
		err := h.Handle(ctx)
		res := HandlerResult{Name: name, Status: StatusOK, DurationSeconds: now().Sub(start).Seconds()}
		if err != nil {
			res.Status = StatusFailed
			res.Error = err.Error()
			report.Handlers = append(report.Handlers, res)
			hlog.Error("handler failed", "error", err)
			return report, err
		}
		report.Handlers = append(report.Handlers, res)
		hlog.Debug("handler done", "duration_seconds", res.DurationSeconds)
	}
	return report, nil
}
