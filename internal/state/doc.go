// Package state persists per-job build state in ~/.tfsync/.
//
// The state file records, for each job, when the last successful checkout
// started. That time is the lower bound of the history window for the next
// checkout or poll:
//
//	{
//	  "jobs": {
//	    "nightly": {
//	      "last_build": "2024-03-01T02:00:00Z",
//	      "workspace": "Hudson-nightly",
//	      "server_url": "http://tfs:8080/tfs",
//	      "changesets": 3
//	    }
//	  }
//	}
//
// # Concurrency
//
// Use [LoadWithLock] for operations that modify the state to prevent
// lost updates from concurrent runs. The lock uses a state.lock file.
package state
