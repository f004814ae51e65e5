package repositories

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"lobby-service/internal/models"
)

var ErrAlreadySwiped = errors.New("already swiped on this activity")

// SwipeRepository abstracts swipe persistence and mutual-interest lookups.
type SwipeRepository interface {
	CreateSwipe(ctx context.Context, userID int, activityID int, direction string) (models.Swipe, error)
	HostReciprocates(ctx context.Context, hostID int, swiperID int) (bool, error)
	ListSwipesForUser(ctx context.Context, userID int) ([]models.Swipe, error)
}

// SwipeRepo is a sqlx implementation of SwipeRepository.
type SwipeRepo struct {
	db *sqlx.DB
}

// NewSwipeRepo constructs a SwipeRepo.
func NewSwipeRepo(db *sqlx.DB) *SwipeRepo {
	return &SwipeRepo{db: db}
}

// CreateSwipe records a swipe. At most one row per (user, activity) pair; a
// second swipe fails with ErrAlreadySwiped regardless of direction.
func (r *SwipeRepo) CreateSwipe(ctx context.Context, userID int, activityID int, direction string) (models.Swipe, error) {
	var swipe models.Swipe
	err := r.db.QueryRowxContext(ctx, `INSERT INTO swipes (user_id, activity_id, direction) VALUES ($1, $2, $3)
        RETURNING id, user_id, activity_id, direction, created_at`, userID, activityID, direction).
		StructScan(&swipe)
	if isUniqueViolation(err) {
		return models.Swipe{}, ErrAlreadySwiped
	}
	return swipe, err
}

// HostReciprocates reports whether the host has a right swipe on any activity
// hosted by the swiping user. This is the mutual-interest rule that promotes
// a right swipe into a match.
func (r *SwipeRepo) HostReciprocates(ctx context.Context, hostID int, swiperID int) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(
        SELECT 1 FROM swipes s
        JOIN activities a ON a.id = s.activity_id
        WHERE s.user_id=$1 AND s.direction='right' AND a.host_id=$2)`
	err := r.db.GetContext(ctx, &exists, query, hostID, swiperID)
	return exists, err
}

// ListSwipesForUser returns the user's swipes, newest first.
func (r *SwipeRepo) ListSwipesForUser(ctx context.Context, userID int) ([]models.Swipe, error) {
	var swipes []models.Swipe
	query := `SELECT id, user_id, activity_id, direction, created_at FROM swipes
        WHERE user_id=$1 ORDER BY created_at DESC, id DESC`
	err := r.db.SelectContext(ctx, &swipes, query, userID)
	return swipes, err
}
