package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/raphi011/tfsync/internal/checkout"
	"github.com/raphi011/tfsync/internal/format"
)

// Environment variables read by Load.
const (
	EnvConfig        = "TFSYNC_CONFIG"
	EnvTFExecutable  = "TFSYNC_TF_EXECUTABLE"
	EnvSkipDateCheck = "TFSYNC_SKIP_DATE_CHECK"
)

// DefaultTFExecutable is the tf client looked up on PATH.
const DefaultTFExecutable = "tf"

// Job describes one workspace and how to check it out.
type Job struct {
	Name          string `toml:"-" json:"-"`
	ServerURL     string `toml:"server_url" json:"server_url"`
	ProjectPath   string `toml:"project_path" json:"project_path"`
	LocalPath     string `toml:"local_path" json:"local_path"`
	WorkspaceName string `toml:"workspace_name" json:"workspace_name"`
	UseUpdate     bool   `toml:"use_update" json:"use_update"`
	Username      string `toml:"username" json:"username,omitempty"`
	PasswordEnv   string `toml:"password_env" json:"password_env,omitempty"` // env var holding the password
}

// Password returns the password from the job's password_env variable.
func (j Job) Password() string {
	if j.PasswordEnv == "" {
		return ""
	}
	return os.Getenv(j.PasswordEnv)
}

// Configuration returns the workspace configuration of the job with the
// workspace name template expanded for vars.
func (j Job) Configuration(vars format.Variables) checkout.Configuration {
	return checkout.NewConfiguration(
		j.ServerURL,
		format.ExpandWorkspaceName(j.WorkspaceName, vars),
		j.ProjectPath,
		j.LocalPath,
	)
}

// Config holds the tfsync configuration
type Config struct {
	TFExecutable  string         `toml:"tf_executable" json:"tf_executable"`
	SkipDateCheck bool           `toml:"skip_date_check" json:"skip_date_check"`
	DateLayouts   []string       `toml:"date_layouts" json:"date_layouts,omitempty"` // tried before the built-in layouts
	Timezone      string         `toml:"timezone" json:"timezone"`                   // zone of dates printed by tf
	Jobs          map[string]Job `toml:"jobs" json:"jobs"`

	// Path is the file the configuration was read from, empty if none.
	Path string `toml:"-" json:"path,omitempty"`
}

// Default returns the default configuration
func Default() Config {
	return Config{
		TFExecutable: DefaultTFExecutable,
		Timezone:     "Local",
		Jobs:         map[string]Job{},
	}
}

// Location returns the time zone used to read history dates.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, &ValidationError{Field: "timezone", Reason: err.Error()}
	}
	return loc, nil
}

// JobNames returns the configured job names in sorted order.
func (c *Config) JobNames() []string {
	return slices.Sorted(maps.Keys(c.Jobs))
}

// Job returns the job called name.
func (c *Config) Job(name string) (Job, error) {
	job, ok := c.Jobs[name]
	if !ok {
		return Job{}, &ValidationError{Field: "jobs." + name, Reason: "no such job"}
	}
	return job, nil
}

// DefaultPath returns ~/.config/tfsync/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "tfsync", "config.toml"), nil
}

// Load reads the configuration from path, TFSYNC_CONFIG or the default
// location, in that order. A missing default file yields Default(); a
// missing file that was asked for explicitly is an error.
func Load(path string) (Config, error) {
	explicit := true
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path == "" {
		explicit = false
		p, err := DefaultPath()
		if err != nil {
			cfg := Default()
			return cfg, applyEnv(&cfg)
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			cfg := Default()
			return cfg, applyEnv(&cfg)
		}
		return Default(), fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return Default(), fmt.Errorf("%s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// Parse decodes, completes and validates a configuration document.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("failed to parse config file: %w", err)
	}
	if cfg.Jobs == nil {
		cfg.Jobs = map[string]Job{}
	}

	for name, job := range cfg.Jobs {
		job.Name = name
		if job.LocalPath == "" {
			job.LocalPath = checkout.DefaultLocalPath
		}
		if job.WorkspaceName == "" {
			job.WorkspaceName = format.DefaultWorkspaceName
		}
		cfg.Jobs[name] = job
	}

	if err := applyEnv(&cfg); err != nil {
		return Default(), err
	}
	if err := cfg.Validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvTFExecutable); v != "" {
		cfg.TFExecutable = v
	}
	if v := os.Getenv(EnvSkipDateCheck); v != "" {
		skip, err := strconv.ParseBool(v)
		if err != nil {
			return &ValidationError{Field: EnvSkipDateCheck, Reason: fmt.Sprintf("%q is not a boolean", v)}
		}
		cfg.SkipDateCheck = skip
	}
	return nil
}

const defaultConfig = `# tfsync configuration

# tf command-line client, looked up on PATH unless absolute
# tf_executable = "tf"

# Keep history records older than the requested window
# skip_date_check = false

# Extra Go time layouts for dates printed by tf, tried before the built-in ones
# date_layouts = ["2006-Jan-02 15:04:05"]

# Time zone of dates printed by tf
# timezone = "Local"

# One section per job
#
# [jobs.nightly]
# server_url = "http://tfs:8080/tfs"
#
# ";"-separated repository paths, each optionally mapped to a sub folder
# of local_path with ":"
# project_path = "$/proj/main : src ; $/proj/tools : tools"
#
# local_path = "."
#
# Available variables: ${JOB_NAME}, ${NODE_NAME}, ${USER_NAME} and the
# process environment
# workspace_name = "Hudson-${JOB_NAME}"
#
# Reuse the workspace and local files between checkouts
# use_update = true
#
# DOMAIN\user or user@domain
# username = "DOMAIN\\builder"
#
# Environment variable holding the password
# password_env = "TFS_PASSWORD"
`

// DefaultConfig returns the default configuration template content.
func DefaultConfig() string {
	return defaultConfig
}

// Init creates a default config file at path, or the default location
// when path is empty. If force is true, overwrites an existing file.
// Returns the path to the created file.
func Init(path string, force bool) (string, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return "", err
		}
		path = p
	}

	if !force {
		if _, err := os.Stat(path); err == nil {
			return "", errors.New("config file already exists: " + path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(defaultConfig), 0644); err != nil {
		return "", err
	}
	return path, nil
}
