package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"lobby-service/internal/models"
)

var (
	ErrMatchNotFound = errors.New("match not found")
	ErrSelfMatch     = errors.New("cannot match a user with themselves")
)

// MatchRepository abstracts match persistence.
type MatchRepository interface {
	ResolveMatch(ctx context.Context, activityID int, userX int, userY int) (models.Match, bool, error)
	GetMatch(ctx context.Context, matchID int) (models.Match, error)
	ListMatchesForUser(ctx context.Context, userID int) ([]models.Match, error)
}

// MatchRepo is a sqlx implementation of MatchRepository.
type MatchRepo struct {
	db *sqlx.DB
}

// NewMatchRepo constructs a MatchRepo.
func NewMatchRepo(db *sqlx.DB) *MatchRepo {
	return &MatchRepo{db: db}
}

// normalizePair orders two user ids ascending so that (X,Y) and (Y,X) always
// address the same match row.
func normalizePair(x, y int) (int, int) {
	if x > y {
		return y, x
	}
	return x, y
}

const matchColumns = `id, activity_id, user_a_id, user_b_id, created_at`

// ResolveMatch gets or creates the match for an unordered user pair on an
// activity. The second return value is true only when this call inserted the
// row; callers use it to notify exactly once. Safe under concurrent callers:
// the unique constraint on (activity_id, user_a_id, user_b_id) is the source
// of truth, and a lost insert race falls back to re-reading the winner's row.
func (r *MatchRepo) ResolveMatch(ctx context.Context, activityID int, userX int, userY int) (models.Match, bool, error) {
	if userX == userY {
		return models.Match{}, false, ErrSelfMatch
	}
	userA, userB := normalizePair(userX, userY)

	var match models.Match
	lookup := `SELECT ` + matchColumns + ` FROM matches WHERE activity_id=$1 AND user_a_id=$2 AND user_b_id=$3`
	err := r.db.GetContext(ctx, &match, lookup, activityID, userA, userB)
	if err == nil {
		return match, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Match{}, false, err
	}

	insert := `INSERT INTO matches (activity_id, user_a_id, user_b_id) VALUES ($1, $2, $3)
        ON CONFLICT (activity_id, user_a_id, user_b_id) DO NOTHING
        RETURNING ` + matchColumns
	err = r.db.QueryRowxContext(ctx, insert, activityID, userA, userB).StructScan(&match)
	if err == nil {
		return match, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Match{}, false, err
	}

	// DO NOTHING returned no row: a concurrent caller won the insert.
	if err := r.db.GetContext(ctx, &match, lookup, activityID, userA, userB); err != nil {
		return models.Match{}, false, err
	}
	return match, false, nil
}

// GetMatch fetches a match by id.
func (r *MatchRepo) GetMatch(ctx context.Context, matchID int) (models.Match, error) {
	var match models.Match
	err := r.db.GetContext(ctx, &match, `SELECT `+matchColumns+` FROM matches WHERE id=$1`, matchID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Match{}, ErrMatchNotFound
	}
	return match, err
}

// ListMatchesForUser returns matches where the user is either side, newest first.
func (r *MatchRepo) ListMatchesForUser(ctx context.Context, userID int) ([]models.Match, error) {
	var matches []models.Match
	query := `SELECT ` + matchColumns + ` FROM matches
        WHERE user_a_id=$1 OR user_b_id=$1
        ORDER BY created_at DESC, id DESC`
	err := r.db.SelectContext(ctx, &matches, query, userID)
	return matches, err
}
