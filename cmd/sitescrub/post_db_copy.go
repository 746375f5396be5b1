package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mattjoyce/sitescrub/internal/config"
	"github.com/mattjoyce/sitescrub/internal/dispatch"
	"github.com/mattjoyce/sitescrub/internal/identity"
	"github.com/mattjoyce/sitescrub/internal/log"
	"github.com/mattjoyce/sitescrub/internal/orchestrator"
	"github.com/mattjoyce/sitescrub/internal/site"
	"github.com/mattjoyce/sitescrub/internal/workspace"
)

func newPostDBCopyCmd(opts *rootOptions, cio cliIO) *cobra.Command {
	return &cobra.Command{
		Use:   "post-db-copy <site> <env> <db_role>",
		Short: "Scrub a site database after the hosting platform copied it",
		Long: `Scrub a site database after the hosting platform copied it.

Arguments:
  site     hosting site group
  env      hosting environment
  db_role  database role of the copied database

The scrub pipeline's output is the only thing written to stdout. The exit
status is the pipeline's exit status.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := site.ParseTarget(args); err != nil {
				fmt.Fprintln(cio.stderr, "Error: Not enough arguments.")
				return exitWith(1, nil)
			}

			cfg, logger, err := loadConfig(opts, cio)
			if err != nil {
				return err
			}

			credsExe, err := executable(cfg.Commands.Credentials)
			if err != nil {
				return exitWith(1, err)
			}
			scrubExe, err := executable(cfg.Commands.Scrub)
			if err != nil {
				return exitWith(1, err)
			}

			manager, err := workspace.NewFSManager(func(t site.Target) string {
				return cfg.WorkspaceBaseFor(config.VarsFor(t))
			}, workspace.Digest(cfg.Workspace.Digest))
			if err != nil {
				return exitWith(1, err)
			}

			runID := uuid.NewString()
			runLogger := log.WithRun(log.WithComponent(logger, "orchestrator"), runID)
			runner := &dispatch.ExecRunner{Stderr: cio.stderr, BaseEnv: baseEnv(cfg.SourceFile)}

			orch := &orchestrator.Orchestrator{
				Connector: &orchestrator.SQLConnector{Config: cfg},
				Resolver: &identity.Resolver{
					Extension: cfg.Extension.Name,
					Docroot: func(t site.Target) string {
						return cfg.DocrootFor(config.VarsFor(t))
					},
					Finder: &identity.DiscoveryFinder{Logger: discoveryLogger(runLogger)},
					Fetcher: &identity.CommandFetcher{
						Runner:     runner,
						Executable: credsExe,
						RunID:      runID,
						Logger:     runLogger,
					},
					Logger: runLogger,
				},
				Workspaces:      manager,
				Runner:          runner,
				ScrubExecutable: scrubExe,
				RunID:           runID,
				Stdout:          cio.stdout,
				Stderr:          cio.stderr,
				Logger:          log.WithComponent(logger, "orchestrator"),
				MetricsTextfile: cfg.Metrics.Textfile,
			}

			if code := orch.Run(cmd.Context(), args); code != 0 {
				return exitWith(code, nil)
			}
			return nil
		},
	}
}
