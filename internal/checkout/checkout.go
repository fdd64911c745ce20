package checkout

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	securejoin "github.com/cyphar/filepath-securejoin"

	"github.com/raphi011/tfsync/internal/changeset"
	"github.com/raphi011/tfsync/internal/log"
	"github.com/raphi011/tfsync/internal/projectpath"
	"github.com/raphi011/tfsync/internal/tfs"
)

// DefaultLocalPath is the local folder used when a job configures none.
const DefaultLocalPath = "."

// Configuration identifies the workspace of one job.
type Configuration struct {
	ServerURL     string
	WorkspaceName string
	ProjectPath   string
	LocalPath     string
}

// NewConfiguration returns a configuration, defaulting an empty local path.
func NewConfiguration(serverURL, workspaceName, projectPath, localPath string) Configuration {
	if localPath == "" {
		localPath = DefaultLocalPath
	}
	return Configuration{
		ServerURL:     serverURL,
		WorkspaceName: workspaceName,
		ProjectPath:   projectPath,
		LocalPath:     localPath,
	}
}

// Mappings returns the repository-path to local-folder mappings in order.
func (c Configuration) Mappings() ([]projectpath.Mapping, error) {
	return projectpath.Parse(c.ProjectPath, c.LocalPath)
}

// Registry finds and removes workspaces.
type Registry interface {
	Exists(ctx context.Context, name string) (bool, error)
	Get(ctx context.Context, name string) (tfs.Workspace, error)
	Delete(ctx context.Context, ws tfs.Workspace) error
}

// Workspaces is the workspace registry used by a checkout.
type Workspaces interface {
	Registry
	New(ctx context.Context, name string) (tfs.Workspace, error)
	MapWorkfolder(ctx context.Context, ws tfs.Workspace, repoPath, localPath string) error
}

// Projects syncs files and reads history per repository path.
type Projects interface {
	GetFiles(ctx context.Context, repoPath, localPath string) error
	DetailedHistory(ctx context.Context, repoPath string, from, to time.Time) ([]changeset.ChangeSet, error)
}

// Unmapper removes work folder mappings from a workspace.
type Unmapper interface {
	Get(ctx context.Context, name string) (tfs.Workspace, error)
	UnmapWorkfolder(ctx context.Context, ws tfs.Workspace, localPath string) error
}

var (
	_ Workspaces = (*tfs.Workspaces)(nil)
	_ Unmapper   = (*tfs.Workspaces)(nil)
	_ Projects   = (*tfs.Server)(nil)
)

// Action performs checkouts for one job.
type Action struct {
	Config    Configuration
	UseUpdate bool
	// Now is read once per repository path for the end of its history
	// window; nil means time.Now.
	Now func() time.Time
}

func (a Action) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// Checkout reconciles the workspace, syncs every mapped folder under root
// and returns the change sets since the previous build. A nil since skips
// the history query.
func (a Action) Checkout(ctx context.Context, workspaces Workspaces, projects Projects, root string, since *time.Time) ([]changeset.ChangeSet, error) {
	l := log.FromContext(ctx)
	name := a.Config.WorkspaceName

	mappings, err := a.Config.Mappings()
	if err != nil {
		return nil, err
	}
	folders := make([]string, len(mappings))
	for i, m := range mappings {
		if folders[i], err = resolveFolder(root, m.LocalPath); err != nil {
			return nil, err
		}
	}

	exists, err := workspaces.Exists(ctx, name)
	if err != nil {
		return nil, err
	}
	if exists && !a.UseUpdate {
		ws, err := workspaces.Get(ctx, name)
		if err != nil {
			return nil, err
		}
		l.Printf("Deleting workspace %s\n", name)
		if err := workspaces.Delete(ctx, ws); err != nil {
			return nil, fmt.Errorf("delete workspace %s: %w", name, err)
		}
	}

	exists, err = workspaces.Exists(ctx, name)
	if err != nil {
		return nil, err
	}
	if !exists {
		if !a.UseUpdate {
			for _, dir := range folders {
				if err := cleanFolder(ctx, dir); err != nil {
					return nil, err
				}
			}
		}

		l.Printf("Creating workspace %s\n", name)
		ws, err := workspaces.New(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("create workspace %s: %w", name, err)
		}
		for _, m := range mappings {
			if err := workspaces.MapWorkfolder(ctx, ws, m.RepositoryPath, m.LocalPath); err != nil {
				return nil, fmt.Errorf("map %s to %s: %w", m.RepositoryPath, m.LocalPath, err)
			}
		}
	} else {
		ws, err := workspaces.Get(ctx, name)
		if err != nil {
			return nil, err
		}
		l.Debug("reusing workspace", "workspace", ws.Name, "owner", ws.Owner, "computer", ws.Computer)
	}

	var changes []changeset.ChangeSet
	for _, m := range mappings {
		l.Printf("Getting %s into %s\n", m.RepositoryPath, m.LocalPath)
		if err := projects.GetFiles(ctx, m.RepositoryPath, m.LocalPath); err != nil {
			return nil, fmt.Errorf("get %s: %w", m.RepositoryPath, err)
		}

		if since != nil {
			list, err := projects.DetailedHistory(ctx, m.RepositoryPath, *since, a.now())
			if err != nil {
				return nil, err
			}
			changes = append(changes, list...)
		}
	}
	return changes, nil
}

// resolveFolder returns root/localPath. It fails when localPath is absolute
// or is not reached lexically from root, as with "../x" or a symlink.
// The tf client is given localPath unchanged, so the folder it writes to
// must be the one that gets cleaned.
func resolveFolder(root, localPath string) (string, error) {
	if err := projectpath.ValidateLocal(localPath); err != nil {
		return "", err
	}
	dir, err := securejoin.SecureJoin(root, localPath)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", localPath, err)
	}
	if dir != filepath.Join(root, localPath) {
		return "", fmt.Errorf("%w: local folder %q resolves outside %s", projectpath.ErrInvalidSpec, localPath, root)
	}
	return dir, nil
}

// cleanFolder removes the contents of dir, keeping the folder.
// A missing folder is left alone.
func cleanFolder(ctx context.Context, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("clean %s: %w", dir, err)
	}

	log.FromContext(ctx).Debug("cleaning folder", "path", dir, "entries", len(entries))
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return fmt.Errorf("clean %s: %w", dir, err)
		}
	}
	return nil
}

// Poll reports whether any repository path of cfg has changed since the
// previous build. Without a previous build there is always something to build.
func Poll(ctx context.Context, projects Projects, cfg Configuration, since *time.Time, now func() time.Time) (bool, error) {
	if since == nil {
		return true, nil
	}
	if now == nil {
		now = time.Now
	}

	paths, err := projectpath.RepositoryPaths(cfg.ProjectPath)
	if err != nil {
		return false, err
	}
	for _, p := range paths {
		list, err := projects.DetailedHistory(ctx, p, *since, now())
		if err != nil {
			return false, err
		}
		if len(list) > 0 {
			log.FromContext(ctx).Debug("changes found", "project", p, "changesets", len(list))
			return true, nil
		}
	}
	return false, nil
}

// RemoveWorkspace deletes the workspace called name if it exists and
// reports whether it did.
func RemoveWorkspace(ctx context.Context, registry Registry, name string) (bool, error) {
	exists, err := registry.Exists(ctx, name)
	if err != nil || !exists {
		return false, err
	}
	ws, err := registry.Get(ctx, name)
	if err != nil {
		return false, err
	}
	if err := registry.Delete(ctx, ws); err != nil {
		return false, fmt.Errorf("delete workspace %s: %w", name, err)
	}
	return true, nil
}

// Unmap removes the work folders of cfg's workspace that belong to
// repoPaths, or all of them when repoPaths is empty, and returns the
// mappings it removed. A repository path cfg does not map is an error
// and nothing is unmapped.
func Unmap(ctx context.Context, workspaces Unmapper, cfg Configuration, repoPaths []string) ([]projectpath.Mapping, error) {
	mappings, err := cfg.Mappings()
	if err != nil {
		return nil, err
	}
	if len(repoPaths) > 0 {
		selected := make([]projectpath.Mapping, 0, len(repoPaths))
		for _, p := range repoPaths {
			i := slices.IndexFunc(mappings, func(m projectpath.Mapping) bool { return m.RepositoryPath == p })
			if i < 0 {
				return nil, fmt.Errorf("%w: %s is not mapped by %q", projectpath.ErrInvalidSpec, p, cfg.ProjectPath)
			}
			selected = append(selected, mappings[i])
		}
		mappings = selected
	}

	ws, err := workspaces.Get(ctx, cfg.WorkspaceName)
	if err != nil {
		return nil, err
	}
	for i, m := range mappings {
		if err := workspaces.UnmapWorkfolder(ctx, ws, m.LocalPath); err != nil {
			return mappings[:i], fmt.Errorf("unmap %s: %w", m.LocalPath, err)
		}
	}
	return mappings, nil
}
