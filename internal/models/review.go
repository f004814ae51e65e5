package models

import "time"

// Review is left by a confirmed attendee of an activity about another user.
// One review per (reviewer, reviewee, activity) triple.
type Review struct {
	ID         int       `db:"id" json:"id"`
	ReviewerID int       `db:"reviewer_id" json:"reviewer_id"`
	RevieweeID int       `db:"reviewee_id" json:"reviewee_id"`
	ActivityID int       `db:"activity_id" json:"activity_id"`
	Rating     int       `db:"rating" json:"rating"`
	Comment    string    `db:"comment" json:"comment"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
