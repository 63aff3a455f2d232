package users

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// User is a portal account.
type User struct {
	ID           string    `json:"id"`
	RegisterNo   string    `json:"register_no"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// RefreshToken is a stored refresh token for rotation checks.
type RefreshToken struct {
	UserID    string
	Token     string
	ExpiresAt time.Time
	Revoked   bool
}

// Repository persists accounts and refresh tokens in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new account.
func (r *Repository) Create(ctx context.Context, u User) (User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO users (id, register_no, name, email, password_hash, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, u.ID, u.RegisterNo, u.Name, u.Email, u.PasswordHash, u.Role)
	if err := row.Scan(&u.CreatedAt); err != nil {
		return User{}, err
	}
	return u, nil
}

// GetByEmail returns the account for an email, or nil when unknown.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.getOne(ctx, `
		SELECT id, register_no, name, email, password_hash, role, created_at
		FROM users WHERE email = $1
	`, email)
}

// GetByID returns the account for an id, or nil when unknown.
func (r *Repository) GetByID(ctx context.Context, id string) (*User, error) {
	return r.getOne(ctx, `
		SELECT id, register_no, name, email, password_hash, role, created_at
		FROM users WHERE id = $1
	`, id)
}

func (r *Repository) getOne(ctx context.Context, query string, arg any) (*User, error) {
	row := r.db.QueryRowContext(ctx, query, arg)
	var u User
	if err := row.Scan(&u.ID, &u.RegisterNo, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// SaveRefreshToken stores a refresh token for rotation checks.
func (r *Repository) SaveRefreshToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO refresh_tokens (user_id, token, expires_at)
		VALUES ($1, $2, $3)
	`, userID, token, expiresAt)
	return err
}

// GetRefreshToken looks a stored token up, or nil when unknown.
func (r *Repository) GetRefreshToken(ctx context.Context, token string) (*RefreshToken, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT user_id, token, expires_at, revoked
		FROM refresh_tokens WHERE token = $1
	`, token)
	var rt RefreshToken
	if err := row.Scan(&rt.UserID, &rt.Token, &rt.ExpiresAt, &rt.Revoked); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rt, nil
}

// RevokeRefreshToken marks a token revoked.
func (r *Repository) RevokeRefreshToken(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE refresh_tokens SET revoked = TRUE WHERE token = $1`, token)
	return err
}
