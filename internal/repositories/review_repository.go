package repositories

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"lobby-service/internal/models"
)

var ErrDuplicateReview = errors.New("already reviewed this user for this activity")

// ReviewRepository abstracts review persistence.
type ReviewRepository interface {
	Create(ctx context.Context, review models.Review) (models.Review, error)
	ListForActivity(ctx context.Context, activityID int) ([]models.Review, error)
	ListForUser(ctx context.Context, userID int) ([]models.Review, error)
}

// ReviewRepo is a sqlx implementation of ReviewRepository.
type ReviewRepo struct {
	db *sqlx.DB
}

// NewReviewRepo constructs a ReviewRepo.
func NewReviewRepo(db *sqlx.DB) *ReviewRepo {
	return &ReviewRepo{db: db}
}

const reviewColumns = `id, reviewer_id, reviewee_id, activity_id, rating, comment, created_at`

// Create inserts a review. One per (reviewer, reviewee, activity).
func (r *ReviewRepo) Create(ctx context.Context, review models.Review) (models.Review, error) {
	var created models.Review
	err := r.db.QueryRowxContext(ctx, `INSERT INTO reviews (reviewer_id, reviewee_id, activity_id, rating, comment)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING `+reviewColumns,
		review.ReviewerID, review.RevieweeID, review.ActivityID, review.Rating, review.Comment).
		StructScan(&created)
	if isUniqueViolation(err) {
		return models.Review{}, ErrDuplicateReview
	}
	return created, err
}

// ListForActivity returns reviews on an activity, newest first.
func (r *ReviewRepo) ListForActivity(ctx context.Context, activityID int) ([]models.Review, error) {
	var reviews []models.Review
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE activity_id=$1 ORDER BY created_at DESC, id DESC`
	err := r.db.SelectContext(ctx, &reviews, query, activityID)
	return reviews, err
}

// ListForUser returns reviews given by or about the user, newest first.
func (r *ReviewRepo) ListForUser(ctx context.Context, userID int) ([]models.Review, error) {
	var reviews []models.Review
	query := `SELECT ` + reviewColumns + ` FROM reviews
        WHERE reviewer_id=$1 OR reviewee_id=$1
        ORDER BY created_at DESC, id DESC`
	err := r.db.SelectContext(ctx, &reviews, query, userID)
	return reviews, err
}
