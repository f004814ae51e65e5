package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"lobby-service/internal/models"
)

var ErrActivityNotFound = errors.New("activity not found")

// Bounding-box proximity uses a flat degrees-per-km conversion. Crude, but
// good enough for "activities near me".
const degreesPerKm = 1.0 / 111.0

// ActivityRepository abstracts activity persistence and the visibility filter.
type ActivityRepository interface {
	Create(ctx context.Context, activity models.Activity) (models.Activity, error)
	Get(ctx context.Context, activityID int) (models.Activity, error)
	GetVisible(ctx context.Context, activityID int, viewerID int, staff bool) (models.Activity, error)
	ListVisible(ctx context.Context, viewerID int, staff bool, filters models.ActivityFilters) ([]models.Activity, error)
	ListHosted(ctx context.Context, hostID int) ([]models.Activity, error)
	Update(ctx context.Context, activity models.Activity) (models.Activity, error)
	Delete(ctx context.Context, activityID int) error
}

// ActivityRepo is a sqlx implementation of ActivityRepository.
type ActivityRepo struct {
	db *sqlx.DB
}

// NewActivityRepo constructs an ActivityRepo.
func NewActivityRepo(db *sqlx.DB) *ActivityRepo {
	return &ActivityRepo{db: db}
}

const activityColumns = `id, host_id, is_approved, title, description, category, location,
    latitude, longitude, starts_at, ends_at, capacity, is_private, requires_approval,
    price, currency, skill_level, tags, created_at`

// Create inserts a new activity. The caller sets HostID; approval starts false.
func (r *ActivityRepo) Create(ctx context.Context, activity models.Activity) (models.Activity, error) {
	var created models.Activity
	err := r.db.QueryRowxContext(ctx, `INSERT INTO activities
        (host_id, title, description, category, location, latitude, longitude,
         starts_at, ends_at, capacity, is_private, requires_approval, price, currency, skill_level, tags)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
        RETURNING `+activityColumns,
		activity.HostID, activity.Title, activity.Description, activity.Category,
		activity.Location, activity.Latitude, activity.Longitude, activity.StartsAt,
		activity.EndsAt, activity.Capacity, activity.IsPrivate, activity.RequiresApproval,
		activity.Price, activity.Currency, activity.SkillLevel, pq.Array([]string(activity.Tags))).
		StructScan(&created)
	return created, err
}

// Get fetches an activity without any visibility check. Internal use only;
// request paths go through GetVisible.
func (r *ActivityRepo) Get(ctx context.Context, activityID int) (models.Activity, error) {
	var activity models.Activity
	err := r.db.GetContext(ctx, &activity, `SELECT `+activityColumns+` FROM activities WHERE id=$1`, activityID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Activity{}, ErrActivityNotFound
	}
	return activity, err
}

// GetVisible fetches an activity the viewer is allowed to see: approved, or
// hosted by the viewer, or any activity when the viewer is staff. An invisible
// activity is reported as not found, never as forbidden, so its existence
// does not leak.
func (r *ActivityRepo) GetVisible(ctx context.Context, activityID int, viewerID int, staff bool) (models.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE id=$1`
	args := []interface{}{activityID}
	if !staff {
		query += ` AND (is_approved = TRUE OR host_id = $2)`
		args = append(args, viewerID)
	}

	var activity models.Activity
	err := r.db.GetContext(ctx, &activity, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Activity{}, ErrActivityNotFound
	}
	return activity, err
}

// ListVisible returns activities visible to the viewer with the optional
// filters AND-ed on top, newest first.
func (r *ActivityRepo) ListVisible(ctx context.Context, viewerID int, staff bool, filters models.ActivityFilters) ([]models.Activity, error) {
	clauses, args := buildFilterClauses(viewerID, staff, filters)

	query := `SELECT ` + activityColumns + ` FROM activities`
	if len(clauses) > 0 {
		query += ` WHERE ` + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC`

	var activities []models.Activity
	err := r.db.SelectContext(ctx, &activities, query, args...)
	return activities, err
}

// buildFilterClauses composes the visibility predicate with the optional list
// filters as positional WHERE clauses.
func buildFilterClauses(viewerID int, staff bool, f models.ActivityFilters) ([]string, []interface{}) {
	var clauses []string
	var args []interface{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if !staff {
		clauses = append(clauses, fmt.Sprintf("(is_approved = TRUE OR host_id = %s)", arg(viewerID)))
	}

	if f.Latitude != nil && f.Longitude != nil {
		radius := f.RadiusKm
		if radius <= 0 {
			radius = 10
		}
		delta := radius * degreesPerKm
		clauses = append(clauses, fmt.Sprintf("latitude BETWEEN %s AND %s", arg(*f.Latitude-delta), arg(*f.Latitude+delta)))
		clauses = append(clauses, fmt.Sprintf("longitude BETWEEN %s AND %s", arg(*f.Longitude-delta), arg(*f.Longitude+delta)))
	}
	if f.Category != "" {
		clauses = append(clauses, fmt.Sprintf("category ILIKE %s", arg("%"+f.Category+"%")))
	}
	if f.Location != "" {
		clauses = append(clauses, fmt.Sprintf("location ILIKE %s", arg("%"+f.Location+"%")))
	}
	if f.SkillLevel != "" {
		clauses = append(clauses, fmt.Sprintf("skill_level ILIKE %s", arg("%"+f.SkillLevel+"%")))
	}
	for _, tag := range f.Tags {
		clauses = append(clauses, fmt.Sprintf("%s = ANY(tags)", arg(tag)))
	}
	if f.PriceMin != nil {
		clauses = append(clauses, fmt.Sprintf("price >= %s", arg(*f.PriceMin)))
	}
	if f.PriceMax != nil {
		clauses = append(clauses, fmt.Sprintf("price <= %s", arg(*f.PriceMax)))
	}
	if f.DateFrom != nil {
		clauses = append(clauses, fmt.Sprintf("starts_at >= %s", arg(*f.DateFrom)))
	}
	if f.DateTo != nil {
		clauses = append(clauses, fmt.Sprintf("starts_at <= %s", arg(*f.DateTo)))
	}

	return clauses, args
}

// ListHosted returns activities hosted by the user, visible regardless of
// approval state.
func (r *ActivityRepo) ListHosted(ctx context.Context, hostID int) ([]models.Activity, error) {
	var activities []models.Activity
	query := `SELECT ` + activityColumns + ` FROM activities WHERE host_id=$1 ORDER BY created_at DESC, id DESC`
	err := r.db.SelectContext(ctx, &activities, query, hostID)
	return activities, err
}

// Update rewrites the mutable fields of an activity. Approval state is
// moderation-owned and not touched here.
func (r *ActivityRepo) Update(ctx context.Context, activity models.Activity) (models.Activity, error) {
	var updated models.Activity
	err := r.db.QueryRowxContext(ctx, `UPDATE activities SET
        title=$2, description=$3, category=$4, location=$5, latitude=$6, longitude=$7,
        starts_at=$8, ends_at=$9, capacity=$10, is_private=$11, requires_approval=$12,
        price=$13, currency=$14, skill_level=$15, tags=$16
        WHERE id=$1
        RETURNING `+activityColumns,
		activity.ID, activity.Title, activity.Description, activity.Category,
		activity.Location, activity.Latitude, activity.Longitude, activity.StartsAt,
		activity.EndsAt, activity.Capacity, activity.IsPrivate, activity.RequiresApproval,
		activity.Price, activity.Currency, activity.SkillLevel, pq.Array([]string(activity.Tags))).
		StructScan(&updated)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Activity{}, ErrActivityNotFound
	}
	return updated, err
}

// Delete removes an activity; dependent rows cascade at the store level.
func (r *ActivityRepo) Delete(ctx context.Context, activityID int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM activities WHERE id=$1`, activityID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrActivityNotFound
	}
	return nil
}
