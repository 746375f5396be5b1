package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattjoyce/sitescrub/internal/doctor"
	"github.com/mattjoyce/sitescrub/internal/orchestrator"
	"github.com/mattjoyce/sitescrub/internal/site"
)

func newDoctorCmd(opts *rootOptions, cio cliIO) *cobra.Command {
	var (
		jsonOut bool
		noDB    bool
	)
	cmd := &cobra.Command{
		Use:   "doctor <site> <env> <db_role>",
		Short: "Check that a target can be scrubbed, without changing anything",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := site.ParseTarget(args)
			if err != nil {
				return exitWith(1, err)
			}
			cfg, _, err := loadConfig(opts, cio)
			if err != nil {
				return err
			}

			var connector orchestrator.Connector
			if !noDB {
				connector = &orchestrator.SQLConnector{Config: cfg}
			}
			result := doctor.New(cfg, target, connector).Validate(cmd.Context())

			if jsonOut {
				out, err := doctor.FormatJSON(result)
				if err != nil {
					return exitWith(1, fmt.Errorf("render doctor JSON: %w", err))
				}
				fmt.Fprintln(cio.stdout, out)
			} else {
				fmt.Fprint(cio.stdout, doctor.FormatHuman(result))
			}

			if !result.Valid {
				return exitWith(1, nil)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output the report as JSON")
	cmd.Flags().BoolVar(&noDB, "no-db", false, "skip the database check")
	return cmd
}
