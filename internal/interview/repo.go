package interview

import "context"

// Repo persists the whole store snapshot through an opaque transport.
// Load reports ok=false when nothing has been saved yet. Implementations
// must run loaded data through DecodeSnapshot so stale schemas are
// repaired before use.
type Repo interface {
	Load(ctx context.Context) (Snapshot, bool, error)
	Save(ctx context.Context, snap Snapshot) error
}
