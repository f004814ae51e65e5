package repositories

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"lobby-service/internal/models"
)

var (
	ErrAlreadyRequested    = errors.New("already requested to join")
	ErrActivityFull        = errors.New("activity is full")
	ErrNotParticipant      = errors.New("not a participant")
	ErrParticipantNotFound = errors.New("participant not found")
)

// ParticipantRepository is the participation ledger: one row per
// (activity, user), capacity enforced against confirmed rows only.
type ParticipantRepository interface {
	Join(ctx context.Context, activityID int, userID int, capacity int) (models.ActivityParticipant, error)
	Leave(ctx context.Context, activityID int, userID int) error
	SetStatus(ctx context.Context, activityID int, userID int, status string, capacity int) error
	ConfirmedCount(ctx context.Context, activityID int) (int, error)
	ListConfirmed(ctx context.Context, activityID int) ([]models.ActivityParticipant, error)
	ListForActivity(ctx context.Context, activityID int) ([]models.ActivityParticipant, error)
	IsParticipant(ctx context.Context, activityID int, userID int) (bool, error)
	HasConfirmed(ctx context.Context, activityID int, userID int) (bool, error)
}

// ParticipantRepo is a sqlx implementation of ParticipantRepository.
type ParticipantRepo struct {
	db *sqlx.DB
}

// NewParticipantRepo constructs a ParticipantRepo.
func NewParticipantRepo(db *sqlx.DB) *ParticipantRepo {
	return &ParticipantRepo{db: db}
}

const participantColumns = `id, activity_id, user_id, status, joined_at`

// Join inserts a pending join request. Fails with ErrAlreadyRequested when a
// row for the pair exists in any status, and with ErrActivityFull when the
// confirmed count has reached capacity. Pending requests never count against
// capacity.
func (r *ParticipantRepo) Join(ctx context.Context, activityID int, userID int, capacity int) (models.ActivityParticipant, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.ActivityParticipant{}, err
	}
	defer tx.Rollback()

	var exists bool
	err = tx.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM activity_participants WHERE activity_id=$1 AND user_id=$2)`,
		activityID, userID)
	if err != nil {
		return models.ActivityParticipant{}, err
	}
	if exists {
		return models.ActivityParticipant{}, ErrAlreadyRequested
	}

	var confirmed int
	err = tx.GetContext(ctx, &confirmed,
		`SELECT COUNT(*) FROM activity_participants WHERE activity_id=$1 AND status='confirmed'`,
		activityID)
	if err != nil {
		return models.ActivityParticipant{}, err
	}
	if confirmed >= capacity {
		return models.ActivityParticipant{}, ErrActivityFull
	}

	var participant models.ActivityParticipant
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO activity_participants (activity_id, user_id, status) VALUES ($1, $2, 'pending')
         RETURNING `+participantColumns, activityID, userID).
		StructScan(&participant)
	if isUniqueViolation(err) {
		return models.ActivityParticipant{}, ErrAlreadyRequested
	}
	if err != nil {
		return models.ActivityParticipant{}, err
	}

	return participant, tx.Commit()
}

// Leave removes the pair's row regardless of status.
func (r *ParticipantRepo) Leave(ctx context.Context, activityID int, userID int) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM activity_participants WHERE activity_id=$1 AND user_id=$2`, activityID, userID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotParticipant
	}
	return nil
}

// SetStatus atomically moves a pending request to confirmed or declined.
// Confirming re-checks capacity inside the transaction so two concurrent
// approvals cannot overfill an activity.
func (r *ParticipantRepo) SetStatus(ctx context.Context, activityID int, userID int, status string, capacity int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if status == models.ParticipantConfirmed {
		var confirmed int
		err = tx.GetContext(ctx, &confirmed,
			`SELECT COUNT(*) FROM (
                SELECT 1 FROM activity_participants
                WHERE activity_id=$1 AND status='confirmed' FOR UPDATE
            ) locked`,
			activityID)
		if err != nil {
			return err
		}
		if confirmed >= capacity {
			return ErrActivityFull
		}
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE activity_participants SET status=$3 WHERE activity_id=$1 AND user_id=$2`,
		activityID, userID, status)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrParticipantNotFound
	}
	return tx.Commit()
}

// ConfirmedCount returns how many confirmed participants an activity has.
func (r *ParticipantRepo) ConfirmedCount(ctx context.Context, activityID int) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM activity_participants WHERE activity_id=$1 AND status='confirmed'`, activityID)
	return count, err
}

// ListConfirmed returns confirmed participants ordered by join time, ties
// broken by row id. The activity chat pairs the first and last of this list.
func (r *ParticipantRepo) ListConfirmed(ctx context.Context, activityID int) ([]models.ActivityParticipant, error) {
	var participants []models.ActivityParticipant
	query := `SELECT ` + participantColumns + ` FROM activity_participants
        WHERE activity_id=$1 AND status='confirmed'
        ORDER BY joined_at ASC, id ASC`
	err := r.db.SelectContext(ctx, &participants, query, activityID)
	return participants, err
}

// ListForActivity returns all join requests for an activity, any status.
func (r *ParticipantRepo) ListForActivity(ctx context.Context, activityID int) ([]models.ActivityParticipant, error) {
	var participants []models.ActivityParticipant
	query := `SELECT ` + participantColumns + ` FROM activity_participants
        WHERE activity_id=$1 ORDER BY joined_at ASC, id ASC`
	err := r.db.SelectContext(ctx, &participants, query, activityID)
	return participants, err
}

// IsParticipant reports whether the user has a row in any status.
func (r *ParticipantRepo) IsParticipant(ctx context.Context, activityID int, userID int) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM activity_participants WHERE activity_id=$1 AND user_id=$2)`,
		activityID, userID)
	return exists, err
}

// HasConfirmed reports whether the user is a confirmed participant.
func (r *ParticipantRepo) HasConfirmed(ctx context.Context, activityID int, userID int) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM activity_participants WHERE activity_id=$1 AND user_id=$2 AND status='confirmed')`,
		activityID, userID)
	return exists, err
}
