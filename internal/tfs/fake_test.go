package tfs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// fakeTF is a shell script standing in for the tf client. Every call is
// appended to calls.log; a file named <subcommand>.out is printed to
// stdout and <subcommand>.err to stderr with exit status 1.
type fakeTF struct {
	dir string
	exe string
}

func newFakeTF(t *testing.T) *fakeTF {
	t.Helper()
	dir := t.TempDir()
	exe := filepath.Join(dir, "tf")
	script := `#!/bin/sh
printf '%s\n' "$*" >> '` + dir + `/calls.log'
if [ -f '` + dir + `/'"$1"'.out' ]; then cat '` + dir + `/'"$1"'.out'; fi
if [ -f '` + dir + `/'"$1"'.err' ]; then cat '` + dir + `/'"$1"'.err' >&2; exit 1; fi
exit 0
`
	if err := os.WriteFile(exe, []byte(script), 0o755); err != nil {
		t.Fatalf("write fake tf: %v", err)
	}
	return &fakeTF{dir: dir, exe: exe}
}

// respond sets the stdout of a subcommand.
func (f *fakeTF) respond(t *testing.T, subcommand, stdout string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(f.dir, subcommand+".out"), []byte(stdout), 0o644); err != nil {
		t.Fatalf("write response: %v", err)
	}
}

// fail makes a subcommand exit 1 with stderr.
func (f *fakeTF) fail(t *testing.T, subcommand, stderr string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(f.dir, subcommand+".err"), []byte(stderr), 0o644); err != nil {
		t.Fatalf("write response: %v", err)
	}
}

// calls returns the argument lines of every invocation so far.
func (f *fakeTF) calls(t *testing.T) []string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.dir, "calls.log"))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("read calls: %v", err)
	}
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

// countCalls counts invocations of subcommand.
func (f *fakeTF) countCalls(t *testing.T, subcommand string) int {
	t.Helper()
	n := 0
	for _, c := range f.calls(t) {
		if strings.HasPrefix(c, subcommand+" ") || c == subcommand {
			n++
		}
	}
	return n
}
