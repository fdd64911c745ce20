package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/raphi011/tfsync/internal/config"
	"github.com/raphi011/tfsync/internal/log"
	"github.com/raphi011/tfsync/internal/output"
)

// Command group IDs for organizing help output
const (
	GroupCore      = "core"
	GroupWorkspace = "workspace"
	GroupConfig    = "config"
)

// skipsConfig lists commands that run without loading the config file.
var skipsConfig = map[string]bool{
	"completion":       true,
	"__complete":       true,
	"__completeNoDesc": true,
	"help":             true,
	"init":             true,
}

// newRootCmd builds the command tree.
func newRootCmd() *cobra.Command {
	var (
		verbose    bool
		quiet      bool
		configPath string
	)

	rootCmd := &cobra.Command{
		Use:   "tfsync",
		Short: "Check out and track Team Foundation Server workspaces",
		Long: `tfsync keeps build directories in sync with a Team Foundation Server
through the tf command-line client.

Each job in the config file names a server, a set of repository paths and
a workspace. "tfsync checkout" reconciles the workspace, syncs every mapped
folder and reports the change sets since the previous successful checkout.`,
		SilenceUsage:               true,
		SilenceErrors:              true,
		SuggestionsMinimumDistance: 2, // Enable typo suggestions
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate mutually exclusive flags
			if verbose && quiet {
				return fmt.Errorf("--verbose and --quiet are mutually exclusive")
			}

			ctx := cmd.Context()
			ctx = log.WithLogger(ctx, log.New(cmd.ErrOrStderr(), verbose, quiet))
			ctx = output.WithPrinter(ctx, cmd.OutOrStdout())

			if !skipsConfig[cmd.Name()] {
				cfg, err := config.Load(configPath)
				if err != nil {
					return err
				}
				ctx = config.WithConfig(ctx, &cfg)
				if cfg.Path != "" {
					log.FromContext(ctx).Debug("loaded config", "path", cfg.Path, "jobs", len(cfg.Jobs))
				}
			}

			cmd.SetContext(ctx)
			return nil
		},
		// Run is not set - shows help when no subcommand provided
	}

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show tf commands being executed")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress all log output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.config/tfsync/config.toml)")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	// Version flag
	rootCmd.Version = versionString()
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	// Add command groups for organized help output
	rootCmd.AddGroup(
		&cobra.Group{ID: GroupCore, Title: "Core Commands:"},
		&cobra.Group{ID: GroupWorkspace, Title: "Workspace Commands:"},
		&cobra.Group{ID: GroupConfig, Title: "Configuration Commands:"},
	)

	// Core commands
	rootCmd.AddCommand(newCheckoutCmd())
	rootCmd.AddCommand(newPollCmd())
	rootCmd.AddCommand(newHistoryCmd())

	// Workspace commands
	rootCmd.AddCommand(newWorkspaceCmd())
	rootCmd.AddCommand(newMappingsCmd())

	// Config commands
	rootCmd.AddCommand(newJobsCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// Execute runs the root command with signal handling.
func Execute() {
	// Create context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		reportError(os.Stderr, err)
		cancel()
		os.Exit(1)
	}
}

// reportError prints err with a hint on where to look next.
func reportError(w io.Writer, err error) {
	fmt.Fprintln(w, err)
	fmt.Fprintln(w)
	if config.IsValidationError(err) {
		fmt.Fprintln(w, "Check the config file with 'tfsync config show'")
		return
	}
	fmt.Fprintln(w, "Run 'tfsync -h' for help")
}
