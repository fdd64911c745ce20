// Package tfs drives the Team Foundation Server command-line client (tf).
//
// All operations shell out to the tf executable through [cmd.Invocation]
// instead of talking to the server's web services. The client already
// handles authentication, proxies and the local workspace cache.
//
// # Workspaces
//
// A workspace is a named server-side binding of repository paths to local
// folders, owned by a user on one computer:
//
//   - [Workspaces.Exists], [Workspaces.Get]: query the workspaces of this computer
//   - [Workspaces.New], [Workspaces.Delete]: create and remove them
//   - [Workspaces.MapWorkfolder], [Workspaces.UnmapWorkfolder]: edit folder mappings
//
// # Files and History
//
//   - [Server.GetFiles]: sync a mapped local folder
//   - [Server.DetailedHistory]: change sets of a repository path in a time window
//
// Credentials given on the command line are masked in verbose logs.
package tfs
