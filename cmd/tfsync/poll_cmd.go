package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raphi011/tfsync/internal/checkout"
	"github.com/raphi011/tfsync/internal/config"
	"github.com/raphi011/tfsync/internal/output"
	"github.com/raphi011/tfsync/internal/state"
	"github.com/raphi011/tfsync/internal/storage"
)

func newPollCmd() *cobra.Command {
	var job string

	cmd := &cobra.Command{
		Use:     "poll",
		Short:   "Check whether a job has changes to build",
		GroupID: GroupCore,
		Args:    cobra.NoArgs,
		Long: `Check whether a job has changes to build.

Prints "changes" when any repository path of the job changed since its
last successful checkout, or when it was never checked out, and
"no changes" otherwise.`,
		Example: `  tfsync poll -j nightly`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)
			cfg := config.FromContext(ctx)

			root, err := resolveRoot("")
			if err != nil {
				return err
			}
			j, err := lookupJob(cfg, job, root)
			if err != nil {
				return err
			}

			dir, err := storage.Dir()
			if err != nil {
				return fmt.Errorf("state directory: %w", err)
			}
			s, err := state.Load(dir)
			if err != nil {
				return err
			}

			server, err := newServer(cfg, j, root)
			if err != nil {
				return err
			}
			changed, err := checkout.Poll(ctx, server, j.Configuration(jobVariables(ctx, j)), s.Since(j.Name), nil)
			if err != nil {
				return fmt.Errorf("poll %s: %w", j.Name, err)
			}

			if changed {
				out.Println("changes")
			} else {
				out.Println("no changes")
			}
			return nil
		},
	}

	addJobFlag(cmd, &job)

	return cmd
}
