package showcase

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ErrNotFound is returned when a post does not exist.
var ErrNotFound = errors.New("post not found")

// Project is a student project showcase post.
type Project struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Author      string    `json:"author"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	RepoURL     string    `json:"repo_url"`
	DemoURL     string    `json:"demo_url"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
}

// Problem is a practice problem showcase post.
type Problem struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Author     string    `json:"author"`
	Title      string    `json:"title"`
	Statement  string    `json:"statement"`
	Difficulty string    `json:"difficulty"`
	Tags       []string  `json:"tags"`
	CreatedAt  time.Time `json:"created_at"`
}

// Repository persists showcase posts in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// ListProjects returns projects, newest first.
func (r *Repository) ListProjects(ctx context.Context, limit, offset int) ([]Project, error) {
	limit, offset = pageBounds(limit, offset)
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, author, title, description, repo_url, demo_url, tags, created_at
		FROM projects ORDER BY created_at DESC LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.UserID, &p.Author, &p.Title, &p.Description, &p.RepoURL, &p.DemoURL, pq.Array(&p.Tags), &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CreateProject inserts a project post.
func (r *Repository) CreateProject(ctx context.Context, p Project) (Project, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO projects (id, user_id, author, title, description, repo_url, demo_url, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`, p.ID, p.UserID, p.Author, p.Title, p.Description, p.RepoURL, p.DemoURL, pq.Array(p.Tags))
	if err := row.Scan(&p.CreatedAt); err != nil {
		return Project{}, err
	}
	return p, nil
}

// GetProjectOwner returns the owning user id, or ErrNotFound.
func (r *Repository) GetProjectOwner(ctx context.Context, id string) (string, error) {
	return r.owner(ctx, `SELECT user_id FROM projects WHERE id = $1`, id)
}

// DeleteProject removes a project post.
func (r *Repository) DeleteProject(ctx context.Context, id string) error {
	return r.deleteOne(ctx, `DELETE FROM projects WHERE id = $1`, id)
}

// ListProblems returns problems, newest first.
func (r *Repository) ListProblems(ctx context.Context, limit, offset int) ([]Problem, error) {
	limit, offset = pageBounds(limit, offset)
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, author, title, statement, difficulty, tags, created_at
		FROM problems ORDER BY created_at DESC LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Problem
	for rows.Next() {
		var p Problem
		if err := rows.Scan(&p.ID, &p.UserID, &p.Author, &p.Title, &p.Statement, &p.Difficulty, pq.Array(&p.Tags), &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CreateProblem inserts a problem post.
func (r *Repository) CreateProblem(ctx context.Context, p Problem) (Problem, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO problems (id, user_id, author, title, statement, difficulty, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`, p.ID, p.UserID, p.Author, p.Title, p.Statement, p.Difficulty, pq.Array(p.Tags))
	if err := row.Scan(&p.CreatedAt); err != nil {
		return Problem{}, err
	}
	return p, nil
}

// GetProblemOwner returns the owning user id, or ErrNotFound.
func (r *Repository) GetProblemOwner(ctx context.Context, id string) (string, error) {
	return r.owner(ctx, `SELECT user_id FROM problems WHERE id = $1`, id)
}

// DeleteProblem removes a problem post.
func (r *Repository) DeleteProblem(ctx context.Context, id string) error {
	return r.deleteOne(ctx, `DELETE FROM problems WHERE id = $1`, id)
}

func (r *Repository) owner(ctx context.Context, query, id string) (string, error) {
	var userID string
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return userID, nil
}

func (r *Repository) deleteOne(ctx context.Context, query, id string) error {
	res, err := r.db.ExecContext(ctx, query, id)
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

func pageBounds(limit, offset int) (int, int) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
