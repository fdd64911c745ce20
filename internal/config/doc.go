// Package config handles loading and validation of tfsync configuration.
//
// Configuration is read from ~/.config/tfsync/config.toml, or from the
// file named by --config or TFSYNC_CONFIG, with environment variable
// overrides for tool settings.
//
// # Configuration Sources (highest priority first)
//
//   - TFSYNC_TF_EXECUTABLE env var: path of the tf command-line client
//   - TFSYNC_SKIP_DATE_CHECK env var: keep history records older than the window
//   - Build root .tfsync.toml (per-job overrides, see [LoadLocal])
//   - Config file settings
//   - Default values
//
// # Jobs
//
// Each job is a [jobs.NAME] section describing one workspace:
//
//	[jobs.nightly]
//	server_url = "http://tfs:8080/tfs"
//	project_path = "$/proj/main : src ; $/proj/tools : tools"
//	workspace_name = "Hudson-${JOB_NAME}"
//	use_update = true
//	username = "DOMAIN\\builder"
//	password_env = "TFS_PASSWORD"
//
// Passwords never live in the file; password_env names the environment
// variable holding it.
//
// # Validation
//
// Every problem is reported as a [*ValidationError] naming the offending
// field, before any tf command runs.
package config
