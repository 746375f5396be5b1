package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattjoyce/sitescrub/internal/config"
	"github.com/mattjoyce/sitescrub/internal/credentials"
	"github.com/mattjoyce/sitescrub/internal/orchestrator"
	"github.com/mattjoyce/sitescrub/internal/protocol"
)

type factoryCredsOptions struct {
	docroot   string
	extension string
	pipe      bool
}

func newFactoryCredsCmd(opts *rootOptions, cio cliIO) *cobra.Command {
	fo := &factoryCredsOptions{}
	cmd := &cobra.Command{
		Use:   "factory-creds -r <docroot> -i <extension-path> [--pipe]",
		Short: "Print the Site Factory credentials of this environment",
		Long: `Print the Site Factory credentials of this environment.

The environment is read from $AH_SITE_GROUP and $AH_SITE_ENVIRONMENT. With
--pipe the credentials are printed as one JSON object.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig(opts, cio)
			if err != nil {
				return err
			}

			req := credentials.Request{
				SiteGroup:     cio.getenv(orchestrator.SiteGroupEnv),
				Environment:   cio.getenv(orchestrator.SiteEnvEnv),
				Docroot:       fo.docroot,
				ExtensionPath: fo.extension,
			}
			path := cfg.CredentialsPathFor(config.Vars{Site: req.SiteGroup, Env: req.Environment})

			creds, err := credentials.Issue(path, req)
			if err != nil {
				return exitWith(1, err)
			}

			if fo.pipe {
				if err := protocol.EncodeCredentials(cio.stdout, creds); err != nil {
					return exitWith(1, err)
				}
				return nil
			}

			fmt.Fprintf(cio.stdout, "site_group:       %s\n", creds.SiteGroup)
			fmt.Fprintf(cio.stdout, "site_environment: %s\n", creds.SiteEnvironment)
			fmt.Fprintf(cio.stdout, "url:              %s\n", creds.URL)
			fmt.Fprintf(cio.stdout, "username:         %s\n", creds.Username)
			fmt.Fprintf(cio.stdout, "url_suffix:       %s\n", creds.URLSuffix)
			return nil
		},
	}

	cmd.Flags().StringVarP(&fo.docroot, "root", "r", "", "site docroot")
	cmd.Flags().StringVarP(&fo.extension, "include", "i", "", "path of the Site Factory extension")
	cmd.Flags().BoolVar(&fo.pipe, "pipe", false, "print machine-readable JSON")
	return cmd
}
