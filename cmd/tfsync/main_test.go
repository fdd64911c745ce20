package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// testEnv is an isolated tfsync installation with a fake tf client.
type testEnv struct {
	tfDir      string
	configPath string
	stateDir   string
}

// setupEnv writes a config with one job and a shell script standing in
// for tf. Every tf call is appended to calls.log; <subcommand>.out is
// printed to stdout and <subcommand>.err to stderr with exit status 1.
func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{tfDir: t.TempDir(), stateDir: t.TempDir()}
	t.Setenv("HOME", t.TempDir())
	t.Setenv("TFSYNC_HOME", env.stateDir)
	t.Setenv("TFSYNC_CONFIG", "")
	t.Setenv("TFSYNC_TF_EXECUTABLE", "")
	t.Setenv("TFSYNC_SKIP_DATE_CHECK", "")

	exe := filepath.Join(env.tfDir, "tf")
	script := `#!/bin/sh
printf '%s\n' "$*" >> '` + env.tfDir + `/calls.log'
if [ -f '` + env.tfDir + `/'"$1"'.out' ]; then cat '` + env.tfDir + `/'"$1"'.out'; fi
if [ -f '` + env.tfDir + `/'"$1"'.err' ]; then cat '` + env.tfDir + `/'"$1"'.err' >&2; exit 1; fi
exit 0
`
	if err := os.WriteFile(exe, []byte(script), 0o755); err != nil {
		t.Fatalf("write fake tf: %v", err)
	}

	cfg := fmt.Sprintf(`tf_executable = %q
timezone = "UTC"

[jobs.nightly]
server_url = "http://tfs:8080/tfs"
project_path = "$/proj/main : src ; $/proj/tools : tools"
use_update = true
`, exe)
	env.configPath = filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(env.configPath, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

// respond sets the stdout of a tf subcommand.
func (e *testEnv) respond(t *testing.T, subcommand, stdout string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(e.tfDir, subcommand+".out"), []byte(stdout), 0o644); err != nil {
		t.Fatalf("write response: %v", err)
	}
}

// calls returns the tf invocations so far.
func (e *testEnv) calls(t *testing.T) []string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(e.tfDir, "calls.log"))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("read calls: %v", err)
	}
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

// countCalls counts tf invocations of subcommand.
func (e *testEnv) countCalls(t *testing.T, subcommand string) int {
	t.Helper()
	n := 0
	for _, c := range e.calls(t) {
		if strings.HasPrefix(c, subcommand+" ") {
			n++
		}
	}
	return n
}

// run executes tfsync with args and returns stdout and stderr.
func (e *testEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(append([]string{"--config", e.configPath}, args...))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

const separator = "-------------------------------------------------------------------------------"

// historyRecord renders one change set the way tf history -format:detailed does.
func historyRecord(rev int, user string, when time.Time, comment string, items ...string) string {
	var b strings.Builder
	b.WriteString(separator + "\n")
	fmt.Fprintf(&b, "Changeset: %d\nUser: %s\nDate: %s\n\nComment:\n  %s\n\nItems:\n", rev, user, when.UTC().Format("2006-01-02 15:04:05"), comment)
	for _, it := range items {
		b.WriteString("  " + it + "\n")
	}
	b.WriteString("\n")
	return b.String()
}

const workspaceListing = `Server: http://tfs:8080/tfs
Workspace      Owner   Computer Comment
-------------- ------- -------- -----------------
Hudson-nightly builder BUILD01  Created by tfsync
Hudson-weekly  builder BUILD01
`
