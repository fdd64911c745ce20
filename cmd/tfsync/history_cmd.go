package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/raphi011/tfsync/internal/changeset"
	"github.com/raphi011/tfsync/internal/config"
	"github.com/raphi011/tfsync/internal/log"
	"github.com/raphi011/tfsync/internal/output"
	"github.com/raphi011/tfsync/internal/projectpath"
	"github.com/raphi011/tfsync/internal/ui/static"
)

func newHistoryCmd() *cobra.Command {
	var (
		job       string
		sinceFlag string
		untilFlag string
		outFormat string
	)

	cmd := &cobra.Command{
		Use:     "history",
		Short:   "Show the change sets of a job in a time window",
		Aliases: []string{"log"},
		GroupID: GroupCore,
		Args:    cobra.NoArgs,
		Long: `Show the change sets of a job in a time window.

Change sets are listed per repository path in the order the job maps
them, oldest first within each path.`,
		Example: `  tfsync history -j nightly --since 2024-03-01
  tfsync history -j nightly --since 2024-03-01T08:00:00Z --until 2024-03-02
  tfsync history -j nightly --since 2024-03-01 --format yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)
			out := output.FromContext(ctx)
			cfg := config.FromContext(ctx)

			if err := config.ValidateFormat(outFormat); err != nil {
				return err
			}

			loc, err := cfg.Location()
			if err != nil {
				return err
			}
			since, err := parseTime("since", sinceFlag, loc)
			if err != nil {
				return err
			}
			until := time.Now()
			if untilFlag != "" {
				if until, err = parseTime("until", untilFlag, loc); err != nil {
					return err
				}
			}
			if until.Before(since) {
				return fmt.Errorf("--until %s is before --since %s", until.Format(time.RFC3339), since.Format(time.RFC3339))
			}

			root, err := resolveRoot("")
			if err != nil {
				return err
			}
			j, err := lookupJob(cfg, job, root)
			if err != nil {
				return err
			}
			paths, err := projectpath.RepositoryPaths(j.ProjectPath)
			if err != nil {
				return err
			}
			server, err := newServer(cfg, j, root)
			if err != nil {
				return err
			}

			var changes []changeset.ChangeSet
			for _, p := range paths {
				list, err := server.DetailedHistory(ctx, p, since, until)
				if err != nil {
					return fmt.Errorf("history %s: %w", p, err)
				}
				l.Debug("history", "project", p, "changesets", len(list))
				changes = append(changes, list...)
			}

			switch outFormat {
			case "json":
				return out.JSON(changeset.NewLogSet(changes))
			case "yaml":
				return out.YAML(changeset.NewLogSet(changes))
			}

			if len(changes) == 0 {
				l.Println("No change sets")
				return nil
			}
			printRows(out, static.ChangeSetHeaders, static.ChangeSetRows(changes))
			return nil
		},
	}

	addJobFlag(cmd, &job)
	cmd.Flags().StringVar(&sinceFlag, "since", "", "Start of the window (RFC 3339 or YYYY-MM-DD)")
	cmd.Flags().StringVar(&untilFlag, "until", "", "End of the window (default: now)")
	cmd.Flags().StringVarP(&outFormat, "format", "f", "table", "Output format: table, json or yaml")
	_ = cmd.MarkFlagRequired("since")
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(config.ValidFormats, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}
