package models

import "time"

// Swipe directions.
const (
	SwipeLeft  = "left"
	SwipeRight = "right"
)

// Swipe is a like/pass signal from a user toward an activity. One row per
// (user, activity) pair; a second swipe is rejected as a duplicate.
type Swipe struct {
	ID         int       `db:"id" json:"id"`
	UserID     int       `db:"user_id" json:"user_id"`
	ActivityID int       `db:"activity_id" json:"activity_id"`
	Direction  string    `db:"direction" json:"direction"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// ValidSwipeDirection reports whether d is a recognized direction.
func ValidSwipeDirection(d string) bool {
	return d == SwipeLeft || d == SwipeRight
}
