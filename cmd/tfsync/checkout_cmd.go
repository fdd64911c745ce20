package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/raphi011/tfsync/internal/changeset"
	"github.com/raphi011/tfsync/internal/checkout"
	"github.com/raphi011/tfsync/internal/config"
	"github.com/raphi011/tfsync/internal/log"
	"github.com/raphi011/tfsync/internal/output"
	"github.com/raphi011/tfsync/internal/state"
	"github.com/raphi011/tfsync/internal/storage"
	"github.com/raphi011/tfsync/internal/ui/static"
)

func newCheckoutCmd() *cobra.Command {
	var (
		job       string
		root      string
		update    bool
		clean     bool
		sinceFlag string
		changelog string
	)

	cmd := &cobra.Command{
		Use:     "checkout",
		Short:   "Sync a job's workspace into the build root",
		Aliases: []string{"co"},
		GroupID: GroupCore,
		Args:    cobra.NoArgs,
		Long: `Sync a job's workspace into the build root.

In update mode an existing workspace is reused and only changed files are
fetched. In clean mode the workspace is deleted, the mapped local folders
are emptied and everything is fetched again.

The change sets since the previous successful checkout of the job are
printed and, with --changelog, written to a JSON or YAML file.`,
		Example: `  tfsync checkout -j nightly                     # Mode from config
  tfsync checkout -j nightly --clean             # Force a clean checkout
  tfsync checkout -j nightly --root /srv/build   # Build root other than cwd
  tfsync checkout -j nightly --changelog log.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)
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
			useUpdate := j.UseUpdate
			if cmd.Flags().Changed("update") {
				useUpdate = update
			}
			if cmd.Flags().Changed("clean") {
				useUpdate = !clean
			}

			dir, err := storage.Dir()
			if err != nil {
				return fmt.Errorf("state directory: %w", err)
			}

			var since *time.Time
			if sinceFlag != "" {
				loc, err := cfg.Location()
				if err != nil {
					return err
				}
				t, err := parseTime("since", sinceFlag, loc)
				if err != nil {
					return err
				}
				since = &t
			} else {
				s, err := state.Load(dir)
				if err != nil {
					return err
				}
				since = s.Since(j.Name)
			}

			server, err := newServer(cfg, j, root)
			if err != nil {
				return err
			}
			action := checkout.Action{
				Config:    j.Configuration(jobVariables(ctx, j)),
				UseUpdate: useUpdate,
			}

			l.Debug("checkout", "job", j.Name, "workspace", action.Config.WorkspaceName, "update", useUpdate, "root", root)
			l.Debug("module root", "path", filepath.Join(root, j.LocalPath))

			start := time.Now()
			changes, err := action.Checkout(ctx, server.Workspaces(), server, root, since)
			if err != nil {
				return fmt.Errorf("checkout %s: %w", j.Name, err)
			}

			logSet := changeset.NewLogSet(changes)
			if changelog != "" {
				if err := storage.Save(changelog, logSet); err != nil {
					return fmt.Errorf("write changelog: %w", err)
				}
				l.Debug("wrote changelog", "path", changelog, "changesets", logSet.Len())
			}

			s, unlock, err := state.LoadWithLock(ctx, dir)
			if err != nil {
				return err
			}
			defer unlock()
			s.RecordSuccess(j.Name, start, action.Config.WorkspaceName, j.ServerURL, logSet.Len())
			if err := state.Save(dir, s); err != nil {
				return fmt.Errorf("save state: %w", err)
			}

			switch {
			case since == nil:
				l.Printf("Checked out %s (first build, no change log)\n", action.Config.WorkspaceName)
			case logSet.IsEmpty():
				l.Printf("Checked out %s, no changes since %s\n", action.Config.WorkspaceName, since.Format(time.RFC3339))
			default:
				l.Printf("Checked out %s, %d change sets by %s since %s\n", action.Config.WorkspaceName,
					logSet.Len(), strings.Join(logSet.Authors(), ", "), since.Format(time.RFC3339))
				printRows(out, static.ChangeSetHeaders, static.ChangeSetRows(logSet.ChangeSets))
			}
			return nil
		},
	}

	addJobFlag(cmd, &job)
	cmd.Flags().StringVar(&root, "root", "", "Build root (default: current directory)")
	cmd.Flags().BoolVar(&update, "update", false, "Reuse an existing workspace")
	cmd.Flags().BoolVar(&clean, "clean", false, "Recreate the workspace and empty local folders")
	cmd.Flags().StringVar(&sinceFlag, "since", "", "Report changes since this time instead of the last build")
	cmd.Flags().StringVar(&changelog, "changelog", "", "Write change sets to a .json or .yaml file")
	cmd.MarkFlagsMutuallyExclusive("update", "clean")
	_ = cmd.MarkFlagDirname("root")

	return cmd
}
