package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrVersionConflict is returned by Save when the stored snapshot changed
// since it was loaded. The caller re-reads and retries.
var ErrVersionConflict = errors.New("ledger modified concurrently")

// Repository persists one ledger snapshot per user in Postgres. The row
// carries a version counter so concurrent read-modify-write cycles against
// the same user cannot silently lose updates.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Load returns the user's snapshot and its version. A user with no ledger
// yet gets an empty snapshot at version 0.
func (r *Repository) Load(ctx context.Context, userID string) (Snapshot, int64, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT data, version FROM attendance_ledgers WHERE user_id = $1
	`, userID)

	var raw []byte
	var version int64
	if err := row.Scan(&raw, &version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return NewSnapshot(), 0, nil
		}
		return Snapshot{}, 0, err
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return Snapshot{}, 0, fmt.Errorf("ledger: decode snapshot for %s: %w", userID, err)
	}
	if snap.Subjects == nil {
		snap.Subjects = map[string]Subject{}
	}
	return snap, version, nil
}

// Save replaces the user's snapshot. version must be the value returned by
// the matching Load; a mismatch means someone saved in between and yields
// ErrVersionConflict.
func (r *Repository) Save(ctx context.Context, userID string, snap Snapshot, version int64) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("ledger: encode snapshot for %s: %w", userID, err)
	}

	if version == 0 {
		res, err := r.db.ExecContext(ctx, `
			INSERT INTO attendance_ledgers (user_id, data, version)
			VALUES ($1, $2, 1)
			ON CONFLICT (user_id) DO NOTHING
		`, userID, raw)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrVersionConflict
		}
		return nil
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE attendance_ledgers
		SET data = $2, version = version + 1, updated_at = NOW()
		WHERE user_id = $1 AND version = $3
	`, userID, raw, version)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrVersionConflict
	}
	return nil
}
