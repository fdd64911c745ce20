package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/raphi011/tfsync/internal/config"
	"github.com/raphi011/tfsync/internal/format"
	"github.com/raphi011/tfsync/internal/history"
	"github.com/raphi011/tfsync/internal/log"
	"github.com/raphi011/tfsync/internal/output"
	"github.com/raphi011/tfsync/internal/tfs"
	"github.com/raphi011/tfsync/internal/ui/static"
)

// jobSource implements fuzzy.Source for job names.
type jobSource []string

func (s jobSource) String(i int) string { return s[i] }
func (s jobSource) Len() int            { return len(s) }

// lookupJob returns the job called name, suggesting close matches if
// there is none.
func lookupJob(cfg *config.Config, name, root string) (config.Job, error) {
	if name == "" {
		return config.Job{}, fmt.Errorf("--job is required")
	}
	if _, ok := cfg.Jobs[name]; !ok {
		names := cfg.JobNames()
		var suggestions []string
		for _, m := range fuzzy.FindFrom(name, jobSource(names)) {
			suggestions = append(suggestions, names[m.Index])
		}
		err := &config.ValidationError{Field: "jobs." + name, Reason: "no such job"}
		if len(suggestions) > 0 {
			err.Reason += " (did you mean " + strings.Join(suggestions, ", ") + "?)"
		}
		return config.Job{}, err
	}
	return cfg.ForRoot(name, root)
}

// resolveRoot returns the absolute build root, defaulting to the working directory.
func resolveRoot(root string) (string, error) {
	if root == "" {
		return os.Getwd()
	}
	return filepath.Abs(root)
}

// newServer returns the tf client for job running in root.
func newServer(cfg *config.Config, job config.Job, root string) (*tfs.Server, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	parser := history.Parser{
		Dates:         history.NewDateParser(cfg.DateLayouts, loc),
		SkipDateCheck: cfg.SkipDateCheck,
	}
	return tfs.NewServer(cfg.TFExecutable, job.ServerURL, job.Username, job.Password(), root, parser), nil
}

// jobVariables returns the workspace name variables for job, warning
// about any the template leaves unresolved.
func jobVariables(ctx context.Context, job config.Job) format.Variables {
	vars := format.LocalVariables(job.Name)
	if missing := format.UnresolvedVariables(job.WorkspaceName, vars); len(missing) > 0 {
		log.FromContext(ctx).Printf("Warning: workspace name %q: unknown variables %s\n", job.WorkspaceName, strings.Join(missing, ", "))
	}
	return vars
}

// parseTime parses an RFC 3339 timestamp or a plain date from a flag.
// Times without a zone are read in loc.
func parseTime(flag, value string, loc *time.Location) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid --%s %q: want RFC 3339 or YYYY-MM-DD", flag, value)
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// printRows writes a table on terminals and tab-separated lines otherwise.
func printRows(out *output.Printer, headers []string, rows [][]string) {
	if isTerminal(out.Writer()) {
		out.Print(static.RenderTable(headers, rows))
		return
	}
	out.Print(static.RenderPlain(rows))
}

// completeJobs provides job name completion.
func completeJobs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var matches []string
	for _, name := range cfg.JobNames() {
		if strings.HasPrefix(name, toComplete) {
			matches = append(matches, name)
		}
	}
	return matches, cobra.ShellCompDirectiveNoFileComp
}

// addJobFlag registers the --job flag with completion.
func addJobFlag(cmd *cobra.Command, job *string) {
	cmd.Flags().StringVarP(job, "job", "j", "", "Job name from the config file")
	_ = cmd.MarkFlagRequired("job")
	_ = cmd.RegisterFlagCompletionFunc("job", completeJobs)
}
