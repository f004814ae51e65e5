package models

import "time"

// Participant statuses. Transitions go pending -> confirmed | declined,
// driven by the host approval flow.
const (
	ParticipantPending   = "pending"
	ParticipantConfirmed = "confirmed"
	ParticipantDeclined  = "declined"
)

// ActivityParticipant is a join request against an activity, one row per
// (activity, user) pair. Only confirmed rows count against capacity.
type ActivityParticipant struct {
	ID         int       `db:"id" json:"id"`
	ActivityID int       `db:"activity_id" json:"activity_id"`
	UserID     int       `db:"user_id" json:"user_id"`
	Status     string    `db:"status" json:"status"`
	JoinedAt   time.Time `db:"joined_at" json:"joined_at"`
}

// ValidParticipantStatus reports whether s is a recognized status value.
func ValidParticipantStatus(s string) bool {
	return s == ParticipantPending || s == ParticipantConfirmed || s == ParticipantDeclined
}
