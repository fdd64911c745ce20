package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/raphi011/tfsync/internal/config"
	"github.com/raphi011/tfsync/internal/log"
	"github.com/raphi011/tfsync/internal/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Short:   "Manage configuration",
		Aliases: []string{"cfg"},
		GroupID: GroupConfig,
		Long: `Manage tfsync configuration.

Global config: ~/.config/tfsync/config.toml
Local config:  .tfsync.toml (in the build root)`,
		Example: `  tfsync config init          # Create default global config
  tfsync config init --local  # Create build root config
  tfsync config show          # Show effective config`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var (
		force  bool
		stdout bool
		local  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create default config file",
		Args:  cobra.NoArgs,
		Long: `Create default config file.

Without flags, creates the global config (or the file named by --config).
With --local, creates .tfsync.toml in the current directory.`,
		Example: `  tfsync config init           # Create global config
  tfsync config init --local   # Create build root config
  tfsync config init -f        # Overwrite existing config
  tfsync config init -s        # Print config to stdout`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)
			out := output.FromContext(ctx)

			if local {
				if stdout {
					out.Print(config.DefaultLocalConfig())
					return nil
				}
				wd, err := os.Getwd()
				if err != nil {
					return err
				}
				path := filepath.Join(wd, config.LocalConfigFileName)
				if !force {
					if _, err := os.Stat(path); err == nil {
						return fmt.Errorf("config file already exists: %s (use -f to overwrite)", path)
					}
				}
				if err := os.WriteFile(path, []byte(config.DefaultLocalConfig()), 0644); err != nil {
					return err
				}
				l.Printf("Created config file: %s\n", path)
				return nil
			}

			configPath, _ := cmd.Flags().GetString("config")
			if stdout {
				out.Print(config.DefaultConfig())
				return nil
			}

			path, err := config.Init(configPath, force)
			if err != nil {
				return fmt.Errorf("%w (use -f to overwrite)", err)
			}
			l.Printf("Created config file: %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing config")
	cmd.Flags().BoolVarP(&stdout, "stdout", "s", false, "Print config to stdout")
	cmd.Flags().BoolVar(&local, "local", false, "Create .tfsync.toml in the current directory instead of global config")

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)
			cfg := config.FromContext(ctx)

			if asJSON {
				return out.JSON(cfg)
			}

			path := cfg.Path
			if path == "" {
				path = "(none, using defaults)"
			}
			out.Printf("config:          %s\n", path)
			out.Printf("tf_executable:   %s\n", cfg.TFExecutable)
			out.Printf("skip_date_check: %t\n", cfg.SkipDateCheck)
			out.Printf("timezone:        %s\n", cfg.Timezone)
			for _, layout := range cfg.DateLayouts {
				out.Printf("date_layout:     %s\n", layout)
			}
			for _, name := range cfg.JobNames() {
				j := cfg.Jobs[name]
				out.Printf("\n[jobs.%s]\n", name)
				out.Printf("  server_url:     %s\n", j.ServerURL)
				out.Printf("  project_path:   %s\n", j.ProjectPath)
				out.Printf("  local_path:     %s\n", j.LocalPath)
				out.Printf("  workspace_name: %s\n", j.WorkspaceName)
				out.Printf("  use_update:     %t\n", j.UseUpdate)
				if j.Username != "" {
					out.Printf("  username:       %s\n", j.Username)
				}
				if j.PasswordEnv != "" {
					out.Printf("  password_env:   %s\n", j.PasswordEnv)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}
