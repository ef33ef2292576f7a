package interview

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryRepo keeps the snapshot as serialized bytes, round-tripping
// through the same codec as durable transports so dev runs exercise the
// lenient decode path.
type MemoryRepo struct {
	mu   sync.RWMutex
	data []byte
}

// NewMemoryRepo constructs an empty in-memory repo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

func (r *MemoryRepo) Load(ctx context.Context) (Snapshot, bool, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, false, err
	}
	r.mu.RLock()
	data := r.data
	r.mu.RUnlock()
	if len(data) == 0 {
		return Snapshot{}, false, nil
	}
	return DecodeSnapshot(data), true, nil
}

func (r *MemoryRepo) Save(ctx context.Context, snap Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.data = data
	r.mu.Unlock()
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
