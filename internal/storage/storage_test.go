package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type jobState struct {
	Workspace string `json:"workspace" yaml:"workspace"`
	Changes   int    `json:"changes" yaml:"changes"`
}

func TestSaveJSON_NestedRoundtrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "jobs", "nightly", "state.json")
	original := jobState{Workspace: "Hudson-nightly", Changes: 3}

	if err := SaveJSON(path, original); err != nil {
		t.Fatalf("SaveJSON failed: %v", err)
	}

	var loaded jobState
	if err := LoadJSON(path, &loaded); err != nil {
		t.Fatalf("LoadJSON failed: %v", err)
	}
	if loaded != original {
		t.Errorf("roundtrip mismatch: got %+v, want %+v", loaded, original)
	}
}

func TestLoadJSON_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	corrupt := filepath.Join(dir, "corrupt.json")
	if err := os.WriteFile(corrupt, []byte(`{"workspace":`), 0o600); err != nil {
		t.Fatal(err)
	}

	var s jobState
	if err := LoadJSON(filepath.Join(dir, "missing.json"), &s); !os.IsNotExist(err) {
		t.Errorf("missing file: got %v, want not-exist error", err)
	}
	if err := LoadJSON(corrupt, &s); err == nil {
		t.Error("corrupt file: expected error, got nil")
	}
	if err := SaveJSON(filepath.Join(dir, "chan.json"), make(chan int)); err == nil {
		t.Error("unmarshalable value: expected error, got nil")
	}
}

func TestDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv(EnvDir, "")
	t.Setenv("HOME", home)

	dir, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}

	if dir != filepath.Join(home, ".tfsync") {
		t.Errorf("Dir() = %q, want %q", dir, filepath.Join(home, ".tfsync"))
	}

	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("Dir directory does not exist: %v", err)
	}
	if !info.IsDir() {
		t.Error("Dir path is not a directory")
	}
}

func TestDir_Override(t *testing.T) {
	want := filepath.Join(t.TempDir(), "state")
	t.Setenv(EnvDir, want)

	dir, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}
	if dir != want {
		t.Errorf("Dir() = %q, want %q", dir, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("override directory not created: %v", err)
	}
}

func TestLoadJSON_InvalidJSON(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "invalid.json")

	if err := os.WriteFile(path, []byte(`{not valid json}`), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	var data map[string]any
	err := LoadJSON(path, &data)
	if err == nil {
		t.Fatal("expected error for invalid JSON, got nil")
	}
}

func TestSaveJSON_MarshalError(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "bad.json")

	// Channels can't be marshaled to JSON
	err := SaveJSON(path, make(chan int))
	if err == nil {
		t.Fatal("expected error for unmarshalable data, got nil")
	}
}

func TestSaveJSON_Atomic(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "atomic.json")

	// Save initial data
	if err := SaveJSON(path, map[string]int{"v": 1}); err != nil {
		t.Fatalf("SaveJSON failed: %v", err)
	}

	// Overwrite with new data
	if err := SaveJSON(path, map[string]int{"v": 2}); err != nil {
		t.Fatalf("SaveJSON overwrite failed: %v", err)
	}

	// Verify no temp file left behind
	tmpPath := path + ".tmp"
	if _, err := os.Stat(tmpPath); err == nil {
		t.Error("temp file should not exist after successful save")
	}

	// Verify updated content
	var loaded map[string]int
	if err := LoadJSON(path, &loaded); err != nil {
		t.Fatalf("LoadJSON failed: %v", err)
	}
	if loaded["v"] != 2 {
		t.Errorf("expected v=2, got v=%d", loaded["v"])
	}
}

func TestSaveLoadYAML_Roundtrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "log.yaml")

	type Item struct {
		Path   string `yaml:"path"`
		Action string `yaml:"action"`
	}
	original := []Item{{Path: "$/proj/a.cs", Action: "edit"}, {Path: "$/proj/b.cs", Action: "add, edit"}}

	if err := SaveYAML(path, original); err != nil {
		t.Fatalf("SaveYAML failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "path: $/proj/a.cs") {
		t.Errorf("unexpected YAML:\n%s", data)
	}

	var loaded []Item
	if err := LoadYAML(path, &loaded); err != nil {
		t.Fatalf("LoadYAML failed: %v", err)
	}
	if len(loaded) != 2 || loaded[1] != original[1] {
		t.Errorf("roundtrip mismatch: got %+v, want %+v", loaded, original)
	}
}

func TestSave_PicksFormatByExtension(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	data := map[string]string{"revision": "42"}

	tests := []struct {
		name   string
		prefix string
	}{
		{"log.json", "{"},
		{"log.yaml", "revision:"},
		{"log.YML", "revision:"},
		{"log", "{"},
	}
	for _, tt := range tests {
		path := filepath.Join(dir, tt.name)
		if err := Save(path, data); err != nil {
			t.Fatalf("Save(%s) error: %v", tt.name, err)
		}
		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.HasPrefix(string(got), tt.prefix) {
			t.Errorf("Save(%s) wrote %q, want prefix %q", tt.name, got, tt.prefix)
		}
	}
}
