package syncer

import "sync"

// Locks serializes access to each collection. The engine and the local
// write paths share one Locks value so that a local edit never interleaves
// with a sync step on the same collection.
type Locks struct {
	Folders   sync.Mutex
	Documents sync.Mutex
}
