package main

import (
	"fmt"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/raphi011/tfsync/internal/checkout"
	"github.com/raphi011/tfsync/internal/config"
	"github.com/raphi011/tfsync/internal/log"
	"github.com/raphi011/tfsync/internal/output"
	"github.com/raphi011/tfsync/internal/state"
	"github.com/raphi011/tfsync/internal/storage"
	"github.com/raphi011/tfsync/internal/tfs"
	"github.com/raphi011/tfsync/internal/ui/static"
)

func newWorkspaceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "workspace",
		Short:   "Manage server-side workspaces",
		Aliases: []string{"ws"},
		GroupID: GroupWorkspace,
		Example: `  tfsync workspace list -j nightly            # All workspaces on the job's server
  tfsync workspace list -j nightly -F night   # Fuzzy filter by name
  tfsync workspace unmap -j nightly $/proj/tools  # Drop one work folder
  tfsync workspace remove -j nightly          # Delete the job's workspace`,
	}

	cmd.AddCommand(newWorkspaceListCmd())
	cmd.AddCommand(newWorkspaceUnmapCmd())
	cmd.AddCommand(newWorkspaceRemoveCmd())

	return cmd
}

// workspaceSource implements fuzzy.Source for workspace names.
type workspaceSource []tfs.Workspace

func (s workspaceSource) String(i int) string { return s[i].Name }
func (s workspaceSource) Len() int            { return len(s) }

// filterWorkspaces returns the workspaces whose name fuzzily matches
// filter, best match first. An empty filter keeps all in listing order.
func filterWorkspaces(list []tfs.Workspace, filter string) []tfs.Workspace {
	if filter == "" {
		return list
	}
	matches := fuzzy.FindFrom(filter, workspaceSource(list))
	filtered := make([]tfs.Workspace, 0, len(matches))
	for _, m := range matches {
		filtered = append(filtered, list[m.Index])
	}
	return filtered
}

func newWorkspaceListCmd() *cobra.Command {
	var (
		job    string
		filter string
	)

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List workspaces on a job's server",
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)
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
			server, err := newServer(cfg, j, root)
			if err != nil {
				return err
			}

			list, err := server.Workspaces().List(ctx)
			if err != nil {
				return fmt.Errorf("list workspaces: %w", err)
			}
			list = filterWorkspaces(list, filter)

			if len(list) == 0 {
				l.Println("No workspaces found")
				return nil
			}
			rows := make([][]string, 0, len(list))
			for _, ws := range list {
				rows = append(rows, static.WorkspaceRow(ws))
			}
			printRows(out, static.WorkspaceHeaders, rows)
			return nil
		},
	}

	addJobFlag(cmd, &job)
	cmd.Flags().StringVarP(&filter, "filter", "F", "", "Fuzzy filter on workspace names")

	return cmd
}

func newWorkspaceRemoveCmd() *cobra.Command {
	var job string

	cmd := &cobra.Command{
		Use:     "remove",
		Short:   "Delete a job's workspace",
		Aliases: []string{"rm"},
		Args:    cobra.NoArgs,
		Long: `Delete a job's workspace.

The job's build state is dropped too, so the next checkout is treated as
a first build.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)
			cfg := config.FromContext(ctx)

			root, err := resolveRoot("")
			if err != nil {
				return err
			}
			j, err := lookupJob(cfg, job, root)
			if err != nil {
				return err
			}
			server, err := newServer(cfg, j, root)
			if err != nil {
				return err
			}

			name := j.Configuration(jobVariables(ctx, j)).WorkspaceName
			removed, err := checkout.RemoveWorkspace(ctx, server.Workspaces(), name)
			if err != nil {
				return err
			}
			if removed {
				l.Printf("Removed workspace %s\n", name)
			} else {
				l.Printf("Workspace %s does not exist\n", name)
			}

			dir, err := storage.Dir()
			if err != nil {
				return fmt.Errorf("state directory: %w", err)
			}
			s, unlock, err := state.LoadWithLock(ctx, dir)
			if err != nil {
				return err
			}
			defer unlock()
			if s.Forget(j.Name) {
				return state.Save(dir, s)
			}
			return nil
		},
	}

	addJobFlag(cmd, &job)

	return cmd
}

func newWorkspaceUnmapCmd() *cobra.Command {
	var (
		job  string
		root string
	)

	cmd := &cobra.Command{
		Use:   "unmap [REPOSITORY_PATH...]",
		Short: "Remove work folder mappings from a job's workspace",
		Long: `Remove work folder mappings from a job's workspace.

Without arguments every folder the job maps is unmapped. Local files are
left in place; the next checkout maps the folders again.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)
			cfg := config.FromContext(ctx)

			root, err := resolveRoot(root)
			if err != nil {
				return err
			}
			j, err := lookupJob(cfg, job, root)
			if err != nil {
				return err
			}
			server, err := newServer(cfg, j, root)
			if err != nil {
				return err
			}

			removed, err := checkout.Unmap(ctx, server.Workspaces(), j.Configuration(jobVariables(ctx, j)), args)
			for _, m := range removed {
				l.Printf("Unmapped %s from %s\n", m.RepositoryPath, m.LocalPath)
			}
			return err
		},
	}

	addJobFlag(cmd, &job)
	cmd.Flags().StringVar(&root, "root", "", "Build root (default: current directory)")

	return cmd
}
