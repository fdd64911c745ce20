package main

import (
	"github.com/spf13/cobra"

	"github.com/raphi011/tfsync/internal/config"
	"github.com/raphi011/tfsync/internal/output"
	"github.com/raphi011/tfsync/internal/ui/static"
)

func newMappingsCmd() *cobra.Command {
	var (
		job  string
		root string
	)

	cmd := &cobra.Command{
		Use:     "mappings",
		Short:   "Show where a job maps repository paths",
		GroupID: GroupWorkspace,
		Args:    cobra.NoArgs,
		Long: `Show where a job maps repository paths.

Lists the repository paths of the job in checkout order with the local
folder each is synced into. Runs no tf command.`,
		Example: `  tfsync mappings -j nightly
  tfsync mappings -j nightly --root /srv/build`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)
			cfg := config.FromContext(ctx)

			root, err := resolveRoot(root)
			if err != nil {
				return err
			}
			j, err := lookupJob(cfg, job, root)
			if err != nil {
				return err
			}

			mappings, err := j.Configuration(jobVariables(ctx, j)).Mappings()
			if err != nil {
				return err
			}
			printRows(out, static.MappingHeaders, static.MappingRows(mappings))
			return nil
		},
	}

	addJobFlag(cmd, &job)
	cmd.Flags().StringVar(&root, "root", "", "Build root (default: current directory)")
	_ = cmd.MarkFlagDirname("root")

	return cmd
}
