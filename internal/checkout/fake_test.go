package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/raphi011/tfsync/internal/changeset"
	"github.com/raphi011/tfsync/internal/tfs"
)

// recorder collects the calls made against the fakes in order.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) record(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

func (r *recorder) count(prefix string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

// fakeWorkspaces is an in-memory workspace registry.
type fakeWorkspaces struct {
	rec      *recorder
	existing map[string]bool
	failOn   map[string]error
}

func newFakeWorkspaces(rec *recorder, names ...string) *fakeWorkspaces {
	f := &fakeWorkspaces{rec: rec, existing: map[string]bool{}, failOn: map[string]error{}}
	for _, n := range names {
		f.existing[n] = true
	}
	return f
}

func (f *fakeWorkspaces) Exists(ctx context.Context, name string) (bool, error) {
	f.rec.record("exists %s", name)
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := f.failOn["exists"]; err != nil {
		return false, err
	}
	return f.existing[name], nil
}

func (f *fakeWorkspaces) Get(ctx context.Context, name string) (tfs.Workspace, error) {
	f.rec.record("get %s", name)
	if !f.existing[name] {
		return tfs.Workspace{}, tfs.ErrWorkspaceNotFound
	}
	return tfs.Workspace{Name: name, Owner: "builder", Computer: "ci-01"}, nil
}

func (f *fakeWorkspaces) New(ctx context.Context, name string) (tfs.Workspace, error) {
	f.rec.record("new %s", name)
	if err := f.failOn["new"]; err != nil {
		return tfs.Workspace{}, err
	}
	f.existing[name] = true
	return tfs.Workspace{Name: name, Owner: "builder", Computer: "ci-01"}, nil
}

func (f *fakeWorkspaces) Delete(ctx context.Context, ws tfs.Workspace) error {
	f.rec.record("delete %s", ws.Name)
	if err := f.failOn["delete"]; err != nil {
		return err
	}
	delete(f.existing, ws.Name)
	return nil
}

func (f *fakeWorkspaces) MapWorkfolder(ctx context.Context, ws tfs.Workspace, repoPath, localPath string) error {
	f.rec.record("map %s %s %s", ws.Name, repoPath, localPath)
	if err := ctx.Err(); err != nil {
		return err
	}
	return f.failOn["map"]
}

func (f *fakeWorkspaces) UnmapWorkfolder(ctx context.Context, ws tfs.Workspace, localPath string) error {
	f.rec.record("unmap %s %s", ws.Name, localPath)
	return f.failOn["unmap"]
}

type historyCall struct {
	path     string
	from, to time.Time
}

// fakeProjects syncs nothing and serves canned history per repository path.
type fakeProjects struct {
	rec     *recorder
	history map[string][]changeset.ChangeSet
	getErr  error

	mu      sync.Mutex
	queries []historyCall
}

func newFakeProjects(rec *recorder) *fakeProjects {
	return &fakeProjects{rec: rec, history: map[string][]changeset.ChangeSet{}}
}

func (f *fakeProjects) GetFiles(ctx context.Context, repoPath, localPath string) error {
	f.rec.record("getfiles %s %s", repoPath, localPath)
	if err := ctx.Err(); err != nil {
		return err
	}
	return f.getErr
}

func (f *fakeProjects) DetailedHistory(ctx context.Context, repoPath string, from, to time.Time) ([]changeset.ChangeSet, error) {
	f.rec.record("history %s", repoPath)
	f.mu.Lock()
	f.queries = append(f.queries, historyCall{path: repoPath, from: from, to: to})
	f.mu.Unlock()
	return f.history[repoPath], nil
}

var errServer = errors.New("TF30063: not authorized")

// tickingClock returns a clock advancing one minute per call.
func tickingClock(start time.Time) func() time.Time {
	next := start
	return func() time.Time {
		t := next
		next = next.Add(time.Minute)
		return t
	}
}

func changeSet(rev, path string) changeset.ChangeSet {
	return changeset.ChangeSet{
		Revision: rev,
		Author:   "alice",
		Date:     time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		Items:    []changeset.Item{{Path: path, Action: "edit"}},
	}
}
