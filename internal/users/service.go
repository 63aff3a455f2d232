package users

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"studentportal/internal/auth"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidRole        = errors.New("invalid role")
	ErrRefreshRejected    = errors.New("refresh token rejected")
)

// Service handles registration, login and token rotation.
type Service struct {
	repo       *Repository
	issuer     string
	signingKey string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewService creates a service backed by a repository.
func NewService(repo *Repository, issuer, signingKey string, accessTTL, refreshTTL time.Duration) *Service {
	return &Service{
		repo:       repo,
		issuer:     issuer,
		signingKey: signingKey,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// RegisterInput is the account creation payload. Admin accounts are not
// self-service; only student and senior pass validation.
type RegisterInput struct {
	RegisterNo string
	Name       string
	Email      string
	Password   string
	Role       string
}

// Register creates an account with a bcrypt password hash.
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	if in.Role != auth.RoleStudent && in.Role != auth.RoleSenior {
		return User{}, ErrInvalidRole
	}
	existing, err := s.repo.GetByEmail(ctx, in.Email)
	if err != nil {
		return User{}, err
	}
	if existing != nil {
		return User{}, ErrEmailTaken
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return User{}, err
	}
	return s.repo.Create(ctx, User{
		RegisterNo:   in.RegisterNo,
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
	})
}

// Login checks credentials and issues a token pair, persisting the refresh
// token for later rotation.
func (s *Service) Login(ctx context.Context, email, password string) (User, auth.TokenPair, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return User{}, auth.TokenPair{}, err
	}
	if u == nil || !CheckPassword(u.PasswordHash, password) {
		return User{}, auth.TokenPair{}, ErrInvalidCredentials
	}

	tokens, err := auth.Issue(u.ID, u.Role, s.issuer, s.signingKey, s.accessTTL, s.refreshTTL)
	if err != nil {
		return User{}, auth.TokenPair{}, err
	}
	if err := s.repo.SaveRefreshToken(ctx, u.ID, tokens.RefreshToken, tokens.RefreshExp); err != nil {
		return User{}, auth.TokenPair{}, err
	}
	return *u, tokens, nil
}

// Refresh rotates a refresh token: the old token is revoked and a fresh
// pair is issued. Revoked, expired or unknown tokens are rejected.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (auth.TokenPair, error) {
	claims, err := auth.Parse(refreshToken, s.signingKey, s.issuer)
	if err != nil {
		return auth.TokenPair{}, ErrRefreshRejected
	}

	stored, err := s.repo.GetRefreshToken(ctx, refreshToken)
	if err != nil {
		return auth.TokenPair{}, err
	}
	if stored == nil || stored.Revoked || time.Now().After(stored.ExpiresAt) {
		return auth.TokenPair{}, ErrRefreshRejected
	}

	if err := s.repo.RevokeRefreshToken(ctx, refreshToken); err != nil {
		return auth.TokenPair{}, err
	}
	tokens, err := auth.Issue(claims.Subject, claims.Role, s.issuer, s.signingKey, s.accessTTL, s.refreshTTL)
	if err != nil {
		return auth.TokenPair{}, err
	}
	if err := s.repo.SaveRefreshToken(ctx, claims.Subject, tokens.RefreshToken, tokens.RefreshExp); err != nil {
		return auth.TokenPair{}, err
	}
	return tokens, nil
}

// Profile returns the account for an authenticated user id.
func (s *Service) Profile(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether plain matches the stored hash.
func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
