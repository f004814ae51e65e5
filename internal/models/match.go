package models

import "time"

// Match is a mutual pairing between two users scoped to an activity.
// UserAID <= UserBID always holds, so looking a pair up is
// direction-independent. Rows are never mutated after creation.
type Match struct {
	ID         int       `db:"id" json:"id"`
	ActivityID int       `db:"activity_id" json:"activity_id"`
	UserAID    int       `db:"user_a_id" json:"user_a_id"`
	UserBID    int       `db:"user_b_id" json:"user_b_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Involves reports whether userID is one of the two matched users.
func (m Match) Involves(userID int) bool {
	return m.UserAID == userID || m.UserBID == userID
}

// OtherUser returns the match side that is not userID. Callers must check
// Involves first.
func (m Match) OtherUser(userID int) int {
	if m.UserAID == userID {
		return m.UserBID
	}
	return m.UserAID
}
