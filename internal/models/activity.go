package models

import (
	"time"

	"github.com/lib/pq"
)

// Activity is a hostable real-world event with capacity and visibility rules.
// It is visible to non-staff viewers only once approved, except to its host.
type Activity struct {
	ID               int            `db:"id" json:"id"`
	HostID           int            `db:"host_id" json:"host_id"`
	IsApproved       bool           `db:"is_approved" json:"is_approved"`
	Title            string         `db:"title" json:"title"`
	Description      string         `db:"description" json:"description"`
	Category         string         `db:"category" json:"category"`
	Location         string         `db:"location" json:"location"`
	Latitude         float64        `db:"latitude" json:"latitude"`
	Longitude        float64        `db:"longitude" json:"longitude"`
	StartsAt         time.Time      `db:"starts_at" json:"starts_at"`
	EndsAt           *time.Time     `db:"ends_at" json:"ends_at,omitempty"`
	Capacity         int            `db:"capacity" json:"capacity"`
	IsPrivate        bool           `db:"is_private" json:"is_private"`
	RequiresApproval bool           `db:"requires_approval" json:"requires_approval"`
	Price            float64        `db:"price" json:"price"`
	Currency         string         `db:"currency" json:"currency"`
	SkillLevel       string         `db:"skill_level" json:"skill_level"`
	Tags             pq.StringArray `db:"tags" json:"tags"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
}

// MaxActivityCapacity caps how many confirmed participants an activity can take.
const MaxActivityCapacity = 10

// ActivityFilters are the optional list filters. Nil/empty fields are skipped;
// malformed query values never make it in here, the handler drops them.
type ActivityFilters struct {
	Latitude   *float64
	Longitude  *float64
	RadiusKm   float64
	Category   string
	Location   string
	SkillLevel string
	Tags       []string
	PriceMin   *float64
	PriceMax   *float64
	DateFrom   *time.Time
	DateTo     *time.Time
}
