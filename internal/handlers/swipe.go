package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"lobby-service/internal/models"
	"lobby-service/internal/observability"
	"lobby-service/internal/push"
	"lobby-service/internal/repositories"
	"lobby-service/internal/telemetry"
)

// SwipeHandler records swipes and promotes mutual right swipes into matches.
type SwipeHandler struct {
	swipeRepo    repositories.SwipeRepository
	activityRepo repositories.ActivityRepository
	matchRepo    repositories.MatchRepository
	userRepo     repositories.UserRepository
	pushSender   push.Sender
	audit        *telemetry.AuditEmitter
}

// NewSwipeHandler builds a SwipeHandler.
func NewSwipeHandler(
	swipeRepo repositories.SwipeRepository,
	activityRepo repositories.ActivityRepository,
	matchRepo repositories.MatchRepository,
	userRepo repositories.UserRepository,
	pushSender push.Sender,
	audit *telemetry.AuditEmitter,
) *SwipeHandler {
	return &SwipeHandler{
		swipeRepo:    swipeRepo,
		activityRepo: activityRepo,
		matchRepo:    matchRepo,
		userRepo:     userRepo,
		pushSender:   pushSender,
		audit:        audit,
	}
}

type swipeResponse struct {
	Swipe   models.Swipe  `json:"swipe"`
	Matched bool          `json:"matched"`
	Match   *models.Match `json:"match,omitempty"`
}

// Swipe handles POST /activities/:activity_id/swipe. A right swipe on an
// activity whose host has already right-swiped back creates a match between
// swiper and host; left swipes and unreciprocated rights just record the swipe.
func (h *SwipeHandler) Swipe(c *gin.Context) {
	activityID, ok := pathID(c, "activity_id")
	if !ok {
		return
	}

	activity, err := h.activityRepo.GetVisible(c.Request.Context(), activityID, currentUserID(c), isStaff(c))
	if err != nil {
		writeActivityError(c, err)
		return
	}

	var req struct {
		Direction string `json:"direction" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.ValidSwipeDirection(req.Direction) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "direction must be left or right"})
		return
	}

	userID := currentUserID(c)
	swipe, err := h.swipeRepo.CreateSwipe(c.Request.Context(), userID, activity.ID, req.Direction)
	if err != nil {
		if errors.Is(err, repositories.ErrAlreadySwiped) {
			c.JSON(http.StatusConflict, gin.H{"error": "already swiped on this activity"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not record swipe"})
		return
	}
	observability.IncSwipeRecorded(req.Direction)

	resp := swipeResponse{Swipe: swipe}
	if req.Direction == models.SwipeRight && activity.HostID != userID {
		reciprocated, err := h.swipeRepo.HostReciprocates(c.Request.Context(), activity.HostID, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not check mutual interest"})
			return
		}
		if reciprocated {
			match, created, err := h.matchRepo.ResolveMatch(c.Request.Context(), activity.ID, userID, activity.HostID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "could not resolve match"})
				return
			}
			resp.Match = &match
			resp.Matched = created
			if created {
				observability.IncMatchCreated()
				emitAudit(c, h.audit, "INFO", "Match created")
				sendNewMatchNotifications(c.Request.Context(), h.userRepo, h.pushSender, match, activity)
			}
		}
	}

	c.JSON(http.StatusCreated, resp)
}

// ListSwipes handles GET /swipes, the caller's swipe history.
func (h *SwipeHandler) ListSwipes(c *gin.Context) {
	swipes, err := h.swipeRepo.ListSwipesForUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load swipes"})
		return
	}
	if swipes == nil {
		swipes = []models.Swipe{}
	}
	c.JSON(http.StatusOK, gin.H{"swipes": swipes})
}
