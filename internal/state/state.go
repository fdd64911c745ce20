package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/raphi011/tfsync/internal/storage"
)

// Job is the persisted state of one job.
type Job struct {
	LastBuild *time.Time `json:"last_build,omitempty"` // start of the last successful checkout
	Workspace string     `json:"workspace,omitempty"`
	ServerURL string     `json:"server_url,omitempty"`
	Changes   int        `json:"changesets"`
}

// State is the structure stored in state.json
type State struct {
	Jobs map[string]*Job `json:"jobs"`
}

// Path returns the path to the state file in dir
func Path(dir string) string {
	return filepath.Join(dir, "state.json")
}

// LockPath returns the path to the lock file in dir
func LockPath(dir string) string {
	return filepath.Join(dir, "state.lock")
}

// Load loads the state from dir. A missing file yields an empty state.
func Load(dir string) (*State, error) {
	var s State
	if err := storage.LoadJSON(Path(dir), &s); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &State{Jobs: make(map[string]*Job)}, nil
		}
		var syntax *json.SyntaxError
		if errors.As(err, &syntax) {
			return nil, fmt.Errorf("corrupt state file %s: %w", Path(dir), err)
		}
		return nil, err
	}
	if s.Jobs == nil {
		s.Jobs = make(map[string]*Job)
	}
	return &s, nil
}

// Save saves the state to dir atomically
func Save(dir string, s *State) error {
	return storage.SaveJSON(Path(dir), s)
}

// LoadWithLock acquires a lock and loads the state.
// Returns state, unlock function, and error.
// Caller must defer unlock() if err == nil.
func LoadWithLock(ctx context.Context, dir string) (*State, func(), error) {
	lock := NewFileLock(LockPath(dir))
	if err := lock.Lock(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to acquire lock: %w", err)
	}

	s, err := Load(dir)
	if err != nil {
		lock.Unlock()
		return nil, nil, fmt.Errorf("failed to load state: %w", err)
	}

	unlock := func() { _ = lock.Unlock() }

	return s, unlock, nil
}

// Since returns the start of the last successful checkout of job, or nil
// if there was none.
func (s *State) Since(job string) *time.Time {
	if j, ok := s.Jobs[job]; ok && j.LastBuild != nil {
		t := *j.LastBuild
		return &t
	}
	return nil
}

// RecordSuccess stores a successful checkout of job that started at start.
// The time is kept to the second, the resolution of tf history dates.
func (s *State) RecordSuccess(job string, start time.Time, workspace, serverURL string, changes int) {
	start = start.UTC().Truncate(time.Second)
	s.Jobs[job] = &Job{
		LastBuild: &start,
		Workspace: workspace,
		ServerURL: serverURL,
		Changes:   changes,
	}
}

// Forget drops the state of job and reports whether there was any.
func (s *State) Forget(job string) bool {
	if _, ok := s.Jobs[job]; !ok {
		return false
	}
	delete(s.Jobs, job)
	return true
}
