package roadmap

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a roadmap does not exist.
var ErrNotFound = errors.New("roadmap not found")

// Resume processing statuses.
const (
	StatusPending   = "pending"
	StatusProcessed = "processed"
	StatusFailed    = "failed"
)

// Roadmap is a senior's guidance post with an optional resume attachment.
// ResumeURL is filled in by the worker once the upload lands in object
// storage; until then Status stays pending.
type Roadmap struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Author     string    `json:"author"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	Company    string    `json:"company,omitempty"`
	ResumeName string    `json:"resume_name,omitempty"`
	ResumeURL  string    `json:"resume_url,omitempty"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// Repository persists roadmaps in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert writes a new roadmap.
func (r *Repository) Insert(ctx context.Context, rm Roadmap) (Roadmap, error) {
	if rm.ID == "" {
		rm.ID = uuid.NewString()
	}
	if rm.Status == "" {
		rm.Status = StatusPending
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO roadmaps (id, user_id, author, title, body, company, resume_name, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`, rm.ID, rm.UserID, rm.Author, rm.Title, rm.Body, rm.Company, rm.ResumeName, rm.Status)
	if err := row.Scan(&rm.CreatedAt); err != nil {
		return Roadmap{}, err
	}
	return rm, nil
}

// Get returns a single roadmap by id.
func (r *Repository) Get(ctx context.Context, id string) (Roadmap, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, author, title, body, company, resume_name, resume_url, status, created_at
		FROM roadmaps WHERE id = $1
	`, id)
	var rm Roadmap
	var resumeURL sql.NullString
	err := row.Scan(&rm.ID, &rm.UserID, &rm.Author, &rm.Title, &rm.Body, &rm.Company, &rm.ResumeName, &resumeURL, &rm.Status, &rm.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Roadmap{}, ErrNotFound
		}
		return Roadmap{}, err
	}
	rm.ResumeURL = resumeURL.String
	return rm, nil
}

// List returns roadmaps, newest first.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]Roadmap, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, author, title, body, company, resume_name, resume_url, status, created_at
		FROM roadmaps ORDER BY created_at DESC LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Roadmap
	for rows.Next() {
		var rm Roadmap
		var resumeURL sql.NullString
		if err := rows.Scan(&rm.ID, &rm.UserID, &rm.Author, &rm.Title, &rm.Body, &rm.Company, &rm.ResumeName, &resumeURL, &rm.Status, &rm.CreatedAt); err != nil {
			return nil, err
		}
		rm.ResumeURL = resumeURL.String
		out = append(out, rm)
	}
	return out, rows.Err()
}

// SetResume records the processing outcome for a roadmap's resume.
func (r *Repository) SetResume(ctx context.Context, id, status, resumeURL string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE roadmaps
		SET status = $2, resume_url = COALESCE(NULLIF($3, ''), resume_url)
		WHERE id = $1
	`, id, status, resumeURL)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
