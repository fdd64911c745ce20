// Package checkout brings a local build directory in line with a tf server
// and collects the change sets since the previous build.
//
// # Workspace Reconciliation
//
// [Action.Checkout] decides per run what happens to the named server-side
// workspace:
//
//   - update mode, workspace present: reused as-is, nothing is remapped
//     and no local file is removed
//   - clean mode, workspace present: deleted, local target folders are
//     emptied, then the workspace is created and mapped again
//   - workspace absent: created and mapped; in clean mode existing local
//     target folders are emptied first
//
// Every mapped folder is synced in both cases. When a previous build time
// is known, the detailed history of every repository path since then is
// returned, concatenated in mapping order.
//
// # Failure
//
// The first error aborts the run. Nothing is retried or rolled back: a
// half-mapped workspace or a partially synced tree is repaired by the next
// checkout. Cancellation is returned as the context's error.
package checkout
