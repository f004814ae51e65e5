package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"lobby-service/internal/models"
	"lobby-service/internal/repositories"
	"lobby-service/internal/telemetry"
)

// ReviewHandler manages post-activity peer reviews.
type ReviewHandler struct {
	reviewRepo      repositories.ReviewRepository
	activityRepo    repositories.ActivityRepository
	participantRepo repositories.ParticipantRepository
	audit           *telemetry.AuditEmitter
}

// NewReviewHandler builds a ReviewHandler.
func NewReviewHandler(
	reviewRepo repositories.ReviewRepository,
	activityRepo repositories.ActivityRepository,
	participantRepo repositories.ParticipantRepository,
	audit *telemetry.AuditEmitter,
) *ReviewHandler {
	return &ReviewHandler{
		reviewRepo:      reviewRepo,
		activityRepo:    activityRepo,
		participantRepo: participantRepo,
		audit:           audit,
	}
}

// CreateReview handles POST /activities/:activity_id/reviews. Only confirmed
// participants (the host counts) may review, one review per reviewee.
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	activityID, ok := pathID(c, "activity_id")
	if !ok {
		return
	}

	activity, err := h.activityRepo.GetVisible(c.Request.Context(), activityID, currentUserID(c), isStaff(c))
	if err != nil {
		writeActivityError(c, err)
		return
	}

	reviewerID := currentUserID(c)
	attended, err := h.eligibleReviewer(c, activity, reviewerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "membership check failed"})
		return
	}
	if !attended {
		c.JSON(http.StatusForbidden, gin.H{"error": "only confirmed participants can leave reviews"})
		return
	}

	var req struct {
		RevieweeID int    `json:"reviewee_id" binding:"required"`
		Rating     int    `json:"rating" binding:"required"`
		Comment    string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rating must be between 1 and 5"})
		return
	}
	if req.RevieweeID == reviewerID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot review yourself"})
		return
	}

	review, err := h.reviewRepo.Create(c.Request.Context(), models.Review{
		ReviewerID: reviewerID,
		RevieweeID: req.RevieweeID,
		ActivityID: activity.ID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	})
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateReview) {
			c.JSON(http.StatusConflict, gin.H{"error": "already reviewed this user for this activity"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create review"})
		return
	}

	emitAudit(c, h.audit, "INFO", "Review created")
	c.JSON(http.StatusCreated, review)
}

func (h *ReviewHandler) eligibleReviewer(c *gin.Context, activity models.Activity, userID int) (bool, error) {
	if activity.HostID == userID {
		return true, nil
	}
	return h.participantRepo.HasConfirmed(c.Request.Context(), activity.ID, userID)
}

// ListActivityReviews handles GET /activities/:activity_id/reviews.
func (h *ReviewHandler) ListActivityReviews(c *gin.Context) {
	activityID, ok := pathID(c, "activity_id")
	if !ok {
		return
	}

	if _, err := h.activityRepo.GetVisible(c.Request.Context(), activityID, currentUserID(c), isStaff(c)); err != nil {
		writeActivityError(c, err)
		return
	}

	reviews, err := h.reviewRepo.ListForActivity(c.Request.Context(), activityID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load reviews"})
		return
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

// ListMyReviews handles GET /reviews, reviews given by or about the caller.
func (h *ReviewHandler) ListMyReviews(c *gin.Context) {
	reviews, err := h.reviewRepo.ListForUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load reviews"})
		return
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}
