package academics

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// Repository stores one academic record per user in Postgres. Saves are
// full replacements, matching the record's replace-on-save contract.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Get returns the user's record, or nil when none has been saved yet.
func (r *Repository) Get(ctx context.Context, userID string) (*Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT data FROM academic_records WHERE user_id = $1
	`, userID)

	var raw []byte
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("academics: decode record for %s: %w", userID, err)
	}
	return &rec, nil
}

// Save upserts the user's record, replacing any previous version.
func (r *Repository) Save(ctx context.Context, userID string, rec Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("academics: encode record for %s: %w", userID, err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO academic_records (user_id, data)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()
	`, userID, raw)
	return err
}
