package tfs

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/raphi011/tfsync/internal/log"
)

// ErrWorkspaceNotFound is returned by Workspaces.Get for an unknown name.
var ErrWorkspaceNotFound = errors.New("workspace not found")

// Workspace identifies a server-side workspace. Two workspaces are the
// same when name, owner and computer match; the comment is informational.
type Workspace struct {
	Name     string `json:"name" yaml:"name"`
	Owner    string `json:"owner" yaml:"owner"`
	Computer string `json:"computer" yaml:"computer"`
	Comment  string `json:"comment,omitempty" yaml:"comment,omitempty"`
}

// WorkspaceKey is the identity of a workspace, usable as a map key.
type WorkspaceKey struct {
	Name     string
	Owner    string
	Computer string
}

// Key returns the identity of w.
func (w Workspace) Key() WorkspaceKey {
	return WorkspaceKey{Name: w.Name, Owner: w.Owner, Computer: w.Computer}
}

// Equal reports whether w and other identify the same workspace.
func (w Workspace) Equal(other Workspace) bool {
	return w.Key() == other.Key()
}

// Workspaces queries and edits the workspaces of one server.
// The listing is fetched once and then kept current by New and Delete.
type Workspaces struct {
	server *Server
	byName map[string]Workspace
}

func nameKey(name string) string {
	// Workspace names are case-insensitive on the server.
	return strings.ToLower(name)
}

func (w *Workspaces) load(ctx context.Context) error {
	if w.byName != nil {
		return nil
	}
	_, err := w.List(ctx)
	return err
}

// List queries the server for the workspaces of this computer and
// refreshes the cached listing.
func (w *Workspaces) List(ctx context.Context) ([]Workspace, error) {
	a := new(Arguments).Add("workspaces", "-format:brief")
	w.server.addServer(a)
	w.server.addLogin(a)

	out, err := w.server.execute(ctx, a)
	if err != nil {
		return nil, err
	}
	list, err := ParseWorkspaces(bytes.NewReader(out))
	if err != nil {
		return nil, err
	}

	w.byName = make(map[string]Workspace, len(list))
	for _, ws := range list {
		w.byName[nameKey(ws.Name)] = ws
	}
	return list, nil
}

// Exists reports whether a workspace called name exists.
func (w *Workspaces) Exists(ctx context.Context, name string) (bool, error) {
	if err := w.load(ctx); err != nil {
		return false, err
	}
	_, ok := w.byName[nameKey(name)]
	return ok, nil
}

// Get returns the workspace called name.
func (w *Workspaces) Get(ctx context.Context, name string) (Workspace, error) {
	if err := w.load(ctx); err != nil {
		return Workspace{}, err
	}
	ws, ok := w.byName[nameKey(name)]
	if !ok {
		return Workspace{}, fmt.Errorf("%w: %s", ErrWorkspaceNotFound, name)
	}
	return ws, nil
}

// New creates a workspace called name on the server.
func (w *Workspaces) New(ctx context.Context, name string) (Workspace, error) {
	log.FromContext(ctx).Debug("creating workspace", "workspace", name)

	const comment = "Created by tfsync"
	a := new(Arguments).Add("workspace", "-new", name, "-comment:"+comment, "-noprompt")
	w.server.addServer(a)
	w.server.addLogin(a)
	if _, err := w.server.execute(ctx, a); err != nil {
		return Workspace{}, err
	}

	computer, err := os.Hostname()
	if err != nil {
		log.FromContext(ctx).Debug("unknown computer name for new workspace", "workspace", name, "error", err)
	}
	ws := Workspace{Name: name, Owner: w.server.Username, Computer: computer, Comment: comment}
	if w.byName != nil {
		w.byName[nameKey(name)] = ws
	}
	return ws, nil
}

// Delete removes ws from the server.
func (w *Workspaces) Delete(ctx context.Context, ws Workspace) error {
	log.FromContext(ctx).Debug("deleting workspace", "workspace", ws.Name, "owner", ws.Owner)

	spec := ws.Name
	if ws.Owner != "" {
		spec += ";" + ws.Owner
	}
	a := new(Arguments).Add("workspace", "-delete", spec, "-noprompt")
	w.server.addServer(a)
	w.server.addLogin(a)
	if _, err := w.server.execute(ctx, a); err != nil {
		return err
	}

	if w.byName != nil {
		delete(w.byName, nameKey(ws.Name))
	}
	return nil
}

// MapWorkfolder binds repoPath to localPath within ws.
func (w *Workspaces) MapWorkfolder(ctx context.Context, ws Workspace, repoPath, localPath string) error {
	log.FromContext(ctx).Debug("mapping work folder", "workspace", ws.Name, "project", repoPath, "folder", localPath)

	a := new(Arguments).Add("workfolder", "-map", "-workspace:"+ws.Name, repoPath, localPath)
	w.server.addServer(a)
	w.server.addLogin(a)
	_, err := w.server.execute(ctx, a)
	return err
}

// UnmapWorkfolder removes the mapping of localPath from ws.
func (w *Workspaces) UnmapWorkfolder(ctx context.Context, ws Workspace, localPath string) error {
	log.FromContext(ctx).Debug("unmapping work folder", "workspace", ws.Name, "folder", localPath)

	a := new(Arguments).Add("workfolder", "-unmap", "-workspace:"+ws.Name, localPath)
	w.server.addServer(a)
	w.server.addLogin(a)
	_, err := w.server.execute(ctx, a)
	return err
}

// ParseWorkspaces parses the brief workspace listing:
//
//	Server: http://tfs:8080/tfs
//	Workspace    Owner          Computer Comment
//	------------ -------------- -------- ---------------------
//	Hudson-night DOMAIN\builder BUILD01  Created by tfsync
//
// Column boundaries come from the dash line. Every dash line starts a new
// table, so listings of several servers are concatenated.
func ParseWorkspaces(r io.Reader) ([]Workspace, error) {
	var (
		list   []Workspace
		starts []int
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if cols := dashColumns(line); cols != nil {
			starts = cols
			continue
		}
		if starts == nil || strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(line, "Server:") {
			starts = nil
			continue
		}

		fields := splitColumns(line, starts)
		if fields[0] == "" {
			return nil, fmt.Errorf("parse workspaces: no name in line %q", line)
		}
		ws := Workspace{Name: fields[0]}
		if len(fields) > 1 {
			ws.Owner = fields[1]
		}
		if len(fields) > 2 {
			ws.Computer = fields[2]
		}
		if len(fields) > 3 {
			ws.Comment = fields[3]
		}
		list = append(list, ws)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("parse workspaces: %w", err)
	}
	return list, nil
}

// dashColumns returns the start offsets of the dash runs in line, or nil
// when line is not made of dashes and spaces only.
func dashColumns(line string) []int {
	if strings.Trim(line, "- ") != "" || !strings.Contains(line, "-") {
		return nil
	}
	var starts []int
	for i := 0; i < len(line); i++ {
		if line[i] == '-' && (i == 0 || line[i-1] == ' ') {
			starts = append(starts, i)
		}
	}
	return starts
}

// splitColumns cuts line at starts. The last column runs to the end of the line.
func splitColumns(line string, starts []int) []string {
	fields := make([]string, len(starts))
	for i, start := range starts {
		if start >= len(line) {
			break
		}
		end := len(line)
		if i+1 < len(starts) && starts[i+1] < len(line) {
			end = starts[i+1]
		}
		fields[i] = strings.TrimSpace(line[start:end])
	}
	return fields
}
