package tfs

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/raphi011/tfsync/internal/changeset"
	"github.com/raphi011/tfsync/internal/cmd"
	"github.com/raphi011/tfsync/internal/history"
	"github.com/raphi011/tfsync/internal/log"
)

// DefaultExecutable is used when no tf executable is configured.
const DefaultExecutable = "tf"

// versionTimeLayout formats the bounds of a date version spec, always in UTC.
const versionTimeLayout = "2006-01-02T15:04:05Z"

// Server is one tf server as seen through the command-line client.
type Server struct {
	Executable string
	URL        string
	Username   string
	Password   string
	// Dir is the working directory of every tf call; relative local
	// folders are resolved against it.
	Dir    string
	Parser history.Parser

	workspaces *Workspaces
}

// NewServer creates a server using executable (DefaultExecutable when empty).
func NewServer(executable, url, username, password, dir string, parser history.Parser) *Server {
	if executable == "" {
		executable = DefaultExecutable
	}
	return &Server{
		Executable: executable,
		URL:        url,
		Username:   username,
		Password:   password,
		Dir:        dir,
		Parser:     parser,
	}
}

// Workspaces returns the workspace registry of this server.
// The registry caches the workspace listing for the server's lifetime.
func (s *Server) Workspaces() *Workspaces {
	if s.workspaces == nil {
		s.workspaces = &Workspaces{server: s}
	}
	return s.workspaces
}

// addServer appends the -server argument.
func (s *Server) addServer(a *Arguments) {
	a.Add("-server:" + s.URL)
}

// addLogin appends the -login argument when credentials are configured.
func (s *Server) addLogin(a *Arguments) {
	if s.Username == "" {
		return
	}
	if s.Password == "" {
		a.Add("-login:" + s.Username)
		return
	}
	a.AddMasked("-login:"+s.Username+","+s.Password, "-login:"+s.Username+","+Mask)
}

// execute runs the client and returns its stdout.
func (s *Server) execute(ctx context.Context, a *Arguments) ([]byte, error) {
	out, err := cmd.Invocation{
		Dir:     s.Dir,
		Name:    s.Executable,
		Args:    a.Args(),
		Display: a.Display(),
	}.Output(ctx)
	if err != nil {
		return nil, fmt.Errorf("tf %s: %w", a, err)
	}
	return out, nil
}

// GetFiles syncs the local folder mapped to repoPath. It runs on every
// checkout. -force is left out because it refetches unchanged files, and a
// clean checkout has already emptied the folder.
func (s *Server) GetFiles(ctx context.Context, repoPath, localPath string) error {
	log.FromContext(ctx).Debug("getting files", "project", repoPath, "folder", localPath)

	a := new(Arguments).Add("get", localPath, "-recursive", "-noprompt")
	s.addLogin(a)
	_, err := s.execute(ctx, a)
	return err
}

// DetailedHistory returns the change sets of repoPath between from and to,
// oldest first.
func (s *Server) DetailedHistory(ctx context.Context, repoPath string, from, to time.Time) ([]changeset.ChangeSet, error) {
	a := new(Arguments).Add(
		"history", repoPath,
		"-noprompt",
		fmt.Sprintf("-version:D%s~D%s", from.UTC().Format(versionTimeLayout), to.UTC().Format(versionTimeLayout)),
		"-recursive",
		"-format:detailed",
	)
	s.addServer(a)
	s.addLogin(a)

	out, err := s.execute(ctx, a)
	if err != nil {
		return nil, err
	}

	changes, err := s.Parser.Parse(ctx, bytes.NewReader(out), from)
	if err != nil {
		return nil, fmt.Errorf("history of %s: %w", repoPath, err)
	}
	log.FromContext(ctx).Debug("history", "project", repoPath, "changesets", len(changes))
	return changes, nil
}
