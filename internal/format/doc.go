// Package format expands workspace name templates.
//
// Workspace names are configured per job as a template so several jobs on
// one build agent never share a server-side workspace.
//
// # Variables
//
// Both ${NAME} and $NAME forms are expanded:
//
//   - JOB_NAME: name of the job being built
//   - NODE_NAME: host name of the build agent
//   - USER_NAME: account the client runs as
//   - any other name: the process environment
//
// Unknown variables are left in place. Default template is "Hudson-${JOB_NAME}".
//
// # Sanitization
//
// Expanded values are sanitized for the server: characters not allowed in
// workspace names are replaced with "-": / \ : < > | * ? ; "
// and the result is cut to [MaxWorkspaceNameLength] characters.
package format
