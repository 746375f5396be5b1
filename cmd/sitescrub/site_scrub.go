package main

import (
	"bufio"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mattjoyce/sitescrub/internal/config"
	"github.com/mattjoyce/sitescrub/internal/files"
	"github.com/mattjoyce/sitescrub/internal/identity"
	"github.com/mattjoyce/sitescrub/internal/log"
	"github.com/mattjoyce/sitescrub/internal/orchestrator"
	"github.com/mattjoyce/sitescrub/internal/scrub"
	"github.com/mattjoyce/sitescrub/internal/site"
	"github.com/mattjoyce/sitescrub/internal/storage"
)

type siteScrubOptions struct {
	docroot string
	domain  string
	yes     bool
}

func newSiteScrubCmd(opts *rootOptions, cio cliIO) *cobra.Command {
	so := &siteScrubOptions{}
	cmd := &cobra.Command{
		Use:   "site-scrub -r <docroot> -l <domain> [-y]",
		Short: "Run the scrub handlers against a copied site database",
		Long: `Run the scrub handlers against a copied site database.

The database is chosen from $AH_SITE_GROUP, $AH_SITE_ENVIRONMENT and
$SITESCRUB_DB_ROLE. When $CACHE_PREFIX is set a scrub-report.json is written
there.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if so.docroot == "" || so.domain == "" {
				return exitWith(1, fmt.Errorf("both -r <docroot> and -l <domain> are required"))
			}

			target, err := site.ParseTarget([]string{
				cio.getenv(orchestrator.SiteGroupEnv),
				cio.getenv(orchestrator.SiteEnvEnv),
				cio.getenv(orchestrator.DBRoleEnv),
			})
			if err != nil {
				return exitWith(1, fmt.Errorf("%s, %s and %s must be set", orchestrator.SiteGroupEnv, orchestrator.SiteEnvEnv, orchestrator.DBRoleEnv))
			}

			if !so.yes && !confirm(cio, fmt.Sprintf("Scrub %s? (y/n) ", so.domain)) {
				fmt.Fprintln(cio.stderr, "Aborting.")
				return exitWith(1, nil)
			}

			cfg, logger, err := loadConfig(opts, cio)
			if err != nil {
				return err
			}
			logger = log.WithRun(log.WithComponent(logger, "pipeline"), cio.getenv(identity.RunIDEnv)).With("domain", so.domain)

			vars := config.VarsFor(target)
			vars.Domain = so.domain
			dsn, err := cfg.DSNFor(vars)
			if err != nil {
				return exitWith(1, err)
			}
			conn, err := storage.Open(cmd.Context(), cfg.Database.Driver, dsn, cfg.Database.Prefix)
			if err != nil {
				return exitWith(1, err)
			}
			defer func() { _ = conn.Close() }()

			docroot := filepath.Clean(so.docroot)
			wrappers := files.Wrappers{
				"public":    config.FilesDir(cfg.Files.Public, docroot, vars),
				"private":   config.FilesDir(cfg.Files.Private, docroot, vars),
				"temporary": config.FilesDir(cfg.Files.Temporary, docroot, vars),
			}

			pipeline := &scrub.Pipeline{
				Handlers: scrub.DefaultHandlers(conn, wrappers),
				Out:      cio.stdout,
				Logger:   logger,
			}
			report, runErr := pipeline.Run(cmd.Context(), so.domain)

			if dir := cio.getenv(orchestrator.CachePrefixEnv); dir != "" {
				if err := scrub.WriteReport(dir, report); err != nil {
					logger.Warn("scrub report not written", "error", err)
				}
			}

			if runErr != nil {
				return exitWith(1, runErr)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&so.docroot, "root", "r", "", "site docroot")
	cmd.Flags().StringVarP(&so.domain, "uri", "l", "", "site domain")
	cmd.Flags().BoolVarP(&so.yes, "yes", "y", false, "assume yes to the confirmation prompt")
	return cmd
}

// confirm asks prompt on stderr and reads the answer from stdin.
func confirm(cio cliIO, prompt string) bool {
	fmt.Fprint(cio.stderr, prompt)
	if cio.stdin == nil {
		return false
	}
	answer, err := bufio.NewReader(cio.stdin).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
