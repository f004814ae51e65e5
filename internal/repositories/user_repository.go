package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"lobby-service/internal/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("username or email already taken")
)

// UserRepository abstracts account persistence and push-token storage.
type UserRepository interface {
	Create(ctx context.Context, username string, email string, passwordHash string) (models.User, error)
	GetByID(ctx context.Context, userID int) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	SavePushToken(ctx context.Context, userID int, token string) error
	ActiveTokensForUser(ctx context.Context, userID int) ([]string, error)
	DeactivateTokens(ctx context.Context, tokens []string) error
}

// UserRepo is a sqlx implementation of UserRepository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `id, username, email, password_hash, bio, avatar_url, location,
    latitude, longitude, is_staff, created_at`

// Create inserts a new account.
func (r *UserRepo) Create(ctx context.Context, username string, email string, passwordHash string) (models.User, error) {
	var user models.User
	err := r.db.QueryRowxContext(ctx, `INSERT INTO users (username, email, password_hash) VALUES ($1, $2, $3)
        RETURNING `+userColumns, username, email, passwordHash).
		StructScan(&user)
	if isUniqueViolation(err) {
		return models.User{}, ErrUserExists
	}
	return user, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, userID int) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// GetByEmail fetches a user by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE email=$1`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// SavePushToken upserts a device token. A token re-registered by another
// account moves to that account and reactivates.
func (r *UserRepo) SavePushToken(ctx context.Context, userID int, token string) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO push_device_tokens (user_id, token) VALUES ($1, $2)
        ON CONFLICT (token) DO UPDATE SET user_id = EXCLUDED.user_id, is_active = TRUE`, userID, token)
	return err
}

// ActiveTokensForUser returns the user's active push tokens.
func (r *UserRepo) ActiveTokensForUser(ctx context.Context, userID int) ([]string, error) {
	var tokens []string
	err := r.db.SelectContext(ctx, &tokens,
		`SELECT token FROM push_device_tokens WHERE user_id=$1 AND is_active=TRUE`, userID)
	return tokens, err
}

// DeactivateTokens marks tokens the push gateway rejected as inactive.
func (r *UserRepo) DeactivateTokens(ctx context.Context, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE push_device_tokens SET is_active=FALSE WHERE token = ANY($1)`, pq.Array(tokens))
	return err
}
