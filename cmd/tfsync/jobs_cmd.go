package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/raphi011/tfsync/internal/config"
	"github.com/raphi011/tfsync/internal/log"
	"github.com/raphi011/tfsync/internal/output"
	"github.com/raphi011/tfsync/internal/state"
	"github.com/raphi011/tfsync/internal/storage"
)

// jobHeaders are the columns of "tfsync jobs".
var jobHeaders = []string{"JOB", "SERVER", "WORKSPACE", "MODE", "LAST BUILD"}

func newJobsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "jobs",
		Short:   "List configured jobs",
		GroupID: GroupConfig,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)
			out := output.FromContext(ctx)
			cfg := config.FromContext(ctx)

			names := cfg.JobNames()
			if len(names) == 0 {
				l.Println("No jobs configured")
				return nil
			}

			dir, err := storage.Dir()
			if err != nil {
				return fmt.Errorf("state directory: %w", err)
			}
			s, err := state.Load(dir)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(names))
			for _, name := range names {
				j := cfg.Jobs[name]
				mode := "clean"
				if j.UseUpdate {
					mode = "update"
				}
				last := "never"
				if since := s.Since(name); since != nil {
					last = since.Local().Format(time.DateTime)
				}
				ws := j.Configuration(jobVariables(ctx, j)).WorkspaceName
				rows = append(rows, []string{name, j.ServerURL, ws, mode, last})
			}
			printRows(out, jobHeaders, rows)
			return nil
		},
	}

	return cmd
}
