package interview

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

// PGRepo stores the snapshot as a single JSONB row; the latest save wins.
type PGRepo struct {
	DB *sql.DB
}

const snapshotKey = "interview-store"

func (r *PGRepo) Load(ctx context.Context) (Snapshot, bool, error) {
	const query = `
SELECT data
FROM interview_snapshots
WHERE key = $1`
	var data []byte
	err := r.DB.QueryRowContext(ctx, query, snapshotKey).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, err
	}
	return DecodeSnapshot(data), true, nil
}

func (r *PGRepo) Save(ctx context.Context, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	const query = `
INSERT INTO interview_snapshots (key, data, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`
	_, err = r.DB.ExecContext(ctx, query, snapshotKey, data)
	return err
}

var _ Repo = (*PGRepo)(nil)
