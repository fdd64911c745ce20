// Package projectpath parses project-path specifications into ordered
// repository-path to local-folder mappings.
//
// A specification holds ";"-separated entries. Each entry is a repository
// path, optionally followed by ":" and a sub folder of the local root:
//
//	$/proj/main : src ; $/proj/tools : tools ; $/proj/docs
//
// maps $/proj/main to <root>/src, $/proj/tools to <root>/tools and
// $/proj/docs to <root> itself. Whitespace around separators is ignored.
package projectpath

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// RootMarker prefixes every path in the repository namespace.
const RootMarker = "$/"

// ErrInvalidSpec is wrapped by every error returned for a malformed specification.
var ErrInvalidSpec = errors.New("invalid project path")

// Mapping binds one repository path to a local folder.
type Mapping struct {
	RepositoryPath string `json:"repository_path" yaml:"repository_path"`
	LocalPath      string `json:"local_path" yaml:"local_path"`
}

var (
	entrySep = regexp.MustCompile(`\s*;\s*`)
	partSep  = regexp.MustCompile(`\s*:\s*`)
)

// ValidateLocal checks that a local folder is relative and stays inside
// the folder it is resolved against.
func ValidateLocal(local string) error {
	if filepath.IsAbs(local) || strings.HasPrefix(local, "/") || strings.HasPrefix(local, `\`) {
		return fmt.Errorf("%w: local folder %q must be relative", ErrInvalidSpec, local)
	}
	clean := filepath.ToSlash(filepath.Clean(local))
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return fmt.Errorf("%w: local folder %q escapes the build root", ErrInvalidSpec, local)
	}
	return nil
}

// Parse splits spec into mappings under localRoot, in specification order.
// Sub folders must pass ValidateLocal.
// A repeated repository path keeps its first position but takes the local
// folder of its last occurrence. Blank entries are skipped; an entry with
// more than one ":" is rejected as ambiguous.
func Parse(spec, localRoot string) ([]Mapping, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, fmt.Errorf("%w: empty specification", ErrInvalidSpec)
	}

	var mappings []Mapping
	index := make(map[string]int)

	for _, entry := range entrySep.Split(spec, -1) {
		if entry == "" {
			continue
		}
		parts := partSep.Split(entry, -1)
		repoPath := parts[0]
		if repoPath == "" {
			return nil, fmt.Errorf("%w: entry %q has no repository path", ErrInvalidSpec, entry)
		}

		var local string
		switch len(parts) {
		case 1:
			local = localRoot
		case 2:
			if parts[1] == "" {
				return nil, fmt.Errorf("%w: entry %q has an empty local folder", ErrInvalidSpec, entry)
			}
			if err := ValidateLocal(parts[1]); err != nil {
				return nil, err
			}
			local = localRoot + string(filepath.Separator) + parts[1]
		default:
			return nil, fmt.Errorf("%w: entry %q has more than one ':'", ErrInvalidSpec, entry)
		}

		if i, ok := index[repoPath]; ok {
			mappings[i].LocalPath = local
			continue
		}
		index[repoPath] = len(mappings)
		mappings = append(mappings, Mapping{RepositoryPath: repoPath, LocalPath: local})
	}

	if len(mappings) == 0 {
		return nil, fmt.Errorf("%w: no entries in %q", ErrInvalidSpec, spec)
	}
	return mappings, nil
}

// RepositoryPaths returns the repository paths of spec in order.
func RepositoryPaths(spec string) ([]string, error) {
	mappings, err := Parse(spec, "")
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(mappings))
	for i, m := range mappings {
		paths[i] = m.RepositoryPath
	}
	return paths, nil
}

// Validate checks that spec parses and every repository path is rooted
// in the repository namespace.
func Validate(spec string) error {
	paths, err := RepositoryPaths(spec)
	if err != nil {
		return err
	}
	for _, p := range paths {
		if !strings.HasPrefix(p, RootMarker) {
			return fmt.Errorf("%w: %q must begin with %q", ErrInvalidSpec, p, RootMarker)
		}
	}
	return nil
}
