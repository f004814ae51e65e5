package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"

	"lobby-service/internal/models"
	"lobby-service/internal/observability"
	"lobby-service/internal/push"
	"lobby-service/internal/repositories"
	"lobby-service/internal/telemetry"
	"lobby-service/internal/ws"
)

// ActivityHandler manages activity CRUD, the participation ledger and the
// activity chat entry point.
type ActivityHandler struct {
	activityRepo     repositories.ActivityRepository
	participantRepo  repositories.ParticipantRepository
	matchRepo        repositories.MatchRepository
	conversationRepo repositories.ConversationRepository
	userRepo         repositories.UserRepository
	pushSender       push.Sender
	fanout           ws.Fanout
	audit            *telemetry.AuditEmitter
}

// NewActivityHandler builds an ActivityHandler.
func NewActivityHandler(
	activityRepo repositories.ActivityRepository,
	participantRepo repositories.ParticipantRepository,
	matchRepo repositories.MatchRepository,
	conversationRepo repositories.ConversationRepository,
	userRepo repositories.UserRepository,
	pushSender push.Sender,
	fanout ws.Fanout,
	audit *telemetry.AuditEmitter,
) *ActivityHandler {
	return &ActivityHandler{
		activityRepo:     activityRepo,
		participantRepo:  participantRepo,
		matchRepo:        matchRepo,
		conversationRepo: conversationRepo,
		userRepo:         userRepo,
		pushSender:       pushSender,
		fanout:           fanout,
		audit:            audit,
	}
}

type activityRequest struct {
	Title            string     `json:"title" binding:"required"`
	Description      string     `json:"description"`
	Category         string     `json:"category"`
	Location         string     `json:"location"`
	Latitude         float64    `json:"latitude"`
	Longitude        float64    `json:"longitude"`
	StartsAt         time.Time  `json:"starts_at" binding:"required"`
	EndsAt           *time.Time `json:"ends_at"`
	Capacity         int        `json:"capacity" binding:"required"`
	IsPrivate        bool       `json:"is_private"`
	RequiresApproval bool       `json:"requires_approval"`
	Price            float64    `json:"price"`
	Currency         string     `json:"currency"`
	SkillLevel       string     `json:"skill_level"`
	Tags             []string   `json:"tags"`
}

func (req activityRequest) apply(activity models.Activity) (models.Activity, error) {
	if req.Capacity < 1 || req.Capacity > models.MaxActivityCapacity {
		return models.Activity{}, errors.New("capacity must be between 1 and 10")
	}
	activity.Title = req.Title
	activity.Description = req.Description
	activity.Category = req.Category
	activity.Location = req.Location
	activity.Latitude = req.Latitude
	activity.Longitude = req.Longitude
	activity.StartsAt = req.StartsAt
	activity.EndsAt = req.EndsAt
	activity.Capacity = req.Capacity
	activity.IsPrivate = req.IsPrivate
	activity.RequiresApproval = req.RequiresApproval
	activity.Price = req.Price
	activity.Currency = req.Currency
	if activity.Currency == "" {
		activity.Currency = "USD"
	}
	activity.SkillLevel = req.SkillLevel
	activity.Tags = pq.StringArray(req.Tags)
	return activity, nil
}

// CreateActivity handles POST /activities. The caller becomes the host;
// activities start unapproved.
func (h *ActivityHandler) CreateActivity(c *gin.Context) {
	var req activityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	activity, err := req.apply(models.Activity{HostID: currentUserID(c)})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.activityRepo.Create(c.Request.Context(), activity)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create activity"})
		return
	}

	emitAudit(c, h.audit, "INFO", "Activity created")
	c.JSON(http.StatusCreated, created)
}

// ListActivities handles GET /activities with the visibility filter plus
// optional query filters. Malformed filter values are ignored, not errors,
// matching long-standing client expectations.
func (h *ActivityHandler) ListActivities(c *gin.Context) {
	filters := parseActivityFilters(c)

	activities, err := h.activityRepo.ListVisible(c.Request.Context(), currentUserID(c), isStaff(c), filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load activities"})
		return
	}
	if activities == nil {
		activities = []models.Activity{}
	}
	c.JSON(http.StatusOK, gin.H{"activities": activities})
}

func parseActivityFilters(c *gin.Context) models.ActivityFilters {
	filters := models.ActivityFilters{
		Category:   c.Query("category"),
		Location:   c.Query("location"),
		SkillLevel: c.Query("skill_level"),
		RadiusKm:   10,
	}

	if lat, err := strconv.ParseFloat(c.Query("latitude"), 64); err == nil {
		if lon, err := strconv.ParseFloat(c.Query("longitude"), 64); err == nil {
			filters.Latitude = &lat
			filters.Longitude = &lon
		}
	}
	if radius, err := strconv.ParseFloat(c.Query("radius"), 64); err == nil && radius > 0 {
		filters.RadiusKm = radius
	}
	if min, err := strconv.ParseFloat(c.Query("price_min"), 64); err == nil {
		filters.PriceMin = &min
	}
	if max, err := strconv.ParseFloat(c.Query("price_max"), 64); err == nil {
		filters.PriceMax = &max
	}
	if from, err := time.Parse(time.RFC3339, c.Query("date_from")); err == nil {
		filters.DateFrom = &from
	}
	if to, err := time.Parse(time.RFC3339, c.Query("date_to")); err == nil {
		filters.DateTo = &to
	}
	if tags := c.Query("tags"); tags != "" {
		for _, tag := range strings.Split(tags, ",") {
			if trimmed := strings.TrimSpace(tag); trimmed != "" {
				filters.Tags = append(filters.Tags, trimmed)
			}
		}
	}

	return filters
}

// GetActivity handles GET /activities/:activity_id. Invisible activities 404
// so their existence does not leak.
func (h *ActivityHandler) GetActivity(c *gin.Context) {
	activityID, ok := pathID(c, "activity_id")
	if !ok {
		return
	}

	activity, err := h.activityRepo.GetVisible(c.Request.Context(), activityID, currentUserID(c), isStaff(c))
	if err != nil {
		writeActivityError(c, err)
		return
	}
	c.JSON(http.StatusOK, activity)
}

// UpdateActivity handles PUT /activities/:activity_id, host or staff only.
func (h *ActivityHandler) UpdateActivity(c *gin.Context) {
	activityID, ok := pathID(c, "activity_id")
	if !ok {
		return
	}

	activity, err := h.activityRepo.GetVisible(c.Request.Context(), activityID, currentUserID(c), isStaff(c))
	if err != nil {
		writeActivityError(c, err)
		return
	}
	if activity.HostID != currentUserID(c) && !isStaff(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the host can modify an activity"})
		return
	}

	var req activityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	updated, err := req.apply(activity)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	saved, err := h.activityRepo.Update(c.Request.Context(), updated)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update activity"})
		return
	}
	c.JSON(http.StatusOK, saved)
}

// DeleteActivity handles DELETE /activities/:activity_id, host or staff only.
func (h *ActivityHandler) DeleteActivity(c *gin.Context) {
	activityID, ok := pathID(c, "activity_id")
	if !ok {
		return
	}

	activity, err := h.activityRepo.GetVisible(c.Request.Context(), activityID, currentUserID(c), isStaff(c))
	if err != nil {
		writeActivityError(c, err)
		return
	}
	if activity.HostID != currentUserID(c) && !isStaff(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the host can delete an activity"})
		return
	}

	if err := h.activityRepo.Delete(c.Request.Context(), activityID); err != nil {
		writeActivityError(c, err)
		return
	}
	emitAudit(c, h.audit, "INFO", "Activity deleted")
	c.Status(http.StatusNoContent)
}

// ListHostedActivities handles GET /activities/hosted.
func (h *ActivityHandler) ListHostedActivities(c *gin.Context) {
	activities, err := h.activityRepo.ListHosted(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load activities"})
		return
	}
	if activities == nil {
		activities = []models.Activity{}
	}
	c.JSON(http.StatusOK, gin.H{"activities": activities})
}

// JoinActivity handles POST /activities/:activity_id/join. Capacity counts
// confirmed participants only; pending requests never block a join.
func (h *ActivityHandler) JoinActivity(c *gin.Context) {
	activityID, ok := pathID(c, "activity_id")
	if !ok {
		return
	}

	activity, err := h.activityRepo.GetVisible(c.Request.Context(), activityID, currentUserID(c), isStaff(c))
	if err != nil {
		writeActivityError(c, err)
		return
	}

	_, err = h.participantRepo.Join(c.Request.Context(), activity.ID, currentUserID(c), activity.Capacity)
	switch {
	case errors.Is(err, repositories.ErrAlreadyRequested):
		c.JSON(http.StatusConflict, gin.H{"error": "already requested to join"})
		return
	case errors.Is(err, repositories.ErrActivityFull):
		c.JSON(http.StatusConflict, gin.H{"error": "activity is full"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not join activity"})
		return
	}

	emitAudit(c, h.audit, "INFO", "Join request sent")
	c.JSON(http.StatusCreated, gin.H{"message": "join request sent"})
}

// LeaveActivity handles POST /activities/:activity_id/leave.
func (h *ActivityHandler) LeaveActivity(c *gin.Context) {
	activityID, ok := pathID(c, "activity_id")
	if !ok {
		return
	}

	activity, err := h.activityRepo.GetVisible(c.Request.Context(), activityID, currentUserID(c), isStaff(c))
	if err != nil {
		writeActivityError(c, err)
		return
	}

	if err := h.participantRepo.Leave(c.Request.Context(), activity.ID, currentUserID(c)); err != nil {
		if errors.Is(err, repositories.ErrNotParticipant) {
			c.JSON(http.StatusConflict, gin.H{"error": "not a participant"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not leave activity"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "left activity"})
}

// ListParticipants handles GET /activities/:activity_id/participants, host or
// staff only: the approval flow needs to see pending requests.
func (h *ActivityHandler) ListParticipants(c *gin.Context) {
	activityID, ok := pathID(c, "activity_id")
	if !ok {
		return
	}

	activity, err := h.activityRepo.GetVisible(c.Request.Context(), activityID, currentUserID(c), isStaff(c))
	if err != nil {
		writeActivityError(c, err)
		return
	}
	if activity.HostID != currentUserID(c) && !isStaff(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the host can view join requests"})
		return
	}

	participants, err := h.participantRepo.ListForActivity(c.Request.Context(), activity.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load participants"})
		return
	}
	if participants == nil {
		participants = []models.ActivityParticipant{}
	}
	c.JSON(http.StatusOK, gin.H{"participants": participants})
}

// SetParticipantStatus handles POST /activities/:activity_id/participants/:user_id,
// the host approval flow moving a request to confirmed or declined.
func (h *ActivityHandler) SetParticipantStatus(c *gin.Context) {
	activityID, ok := pathID(c, "activity_id")
	if !ok {
		return
	}
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}

	activity, err := h.activityRepo.GetVisible(c.Request.Context(), activityID, currentUserID(c), isStaff(c))
	if err != nil {
		writeActivityError(c, err)
		return
	}
	if activity.HostID != currentUserID(c) && !isStaff(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the host can manage join requests"})
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Status != models.ParticipantConfirmed && req.Status != models.ParticipantDeclined {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be confirmed or declined"})
		return
	}

	err = h.participantRepo.SetStatus(c.Request.Context(), activity.ID, userID, req.Status, activity.Capacity)
	switch {
	case errors.Is(err, repositories.ErrParticipantNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "participant not found"})
		return
	case errors.Is(err, repositories.ErrActivityFull):
		c.JSON(http.StatusConflict, gin.H{"error": "activity is full"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update participant"})
		return
	}

	emitAudit(c, h.audit, "INFO", "Participant status updated")
	c.JSON(http.StatusOK, gin.H{"message": "participant " + req.Status})
}

// ActivityChat handles GET and POST /activities/:activity_id/chat. With two
// confirmed participants it resolves their match (ordered by join time) and
// binds the conversation lazily; the model does not generalize past two,
// group chat stays out of scope.
func (h *ActivityHandler) ActivityChat(c *gin.Context) {
	activityID, ok := pathID(c, "activity_id")
	if !ok {
		return
	}

	activity, err := h.activityRepo.Get(c.Request.Context(), activityID)
	if err != nil {
		writeActivityError(c, err)
		return
	}

	member, err := h.participantRepo.IsParticipant(c.Request.Context(), activity.ID, currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "membership check failed"})
		return
	}
	if !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a participant"})
		return
	}

	confirmed, err := h.participantRepo.ListConfirmed(c.Request.Context(), activity.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load participants"})
		return
	}

	if len(confirmed) < 2 {
		if c.Request.Method == http.MethodGet {
			c.JSON(http.StatusOK, gin.H{"messages": []models.Message{}})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "not enough participants to start chat"})
		return
	}

	first, last := confirmed[0], confirmed[len(confirmed)-1]
	match, created, err := h.matchRepo.ResolveMatch(c.Request.Context(), activity.ID, first.UserID, last.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not resolve match"})
		return
	}
	if created {
		observability.IncMatchCreated()
		emitAudit(c, h.audit, "INFO", "Match created")
		sendNewMatchNotifications(c.Request.Context(), h.userRepo, h.pushSender, match, activity)
	}

	conversation, err := h.conversationRepo.GetOrCreateConversation(c.Request.Context(), match.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not open conversation"})
		return
	}

	if c.Request.Method == http.MethodGet {
		msgs, err := h.conversationRepo.ListMessages(c.Request.Context(), conversation.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
			return
		}
		if msgs == nil {
			msgs = []models.Message{}
		}
		c.JSON(http.StatusOK, gin.H{"messages": msgs})
		return
	}

	var req struct {
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.conversationRepo.CreateMessage(c.Request.Context(), conversation.ID, currentUserID(c), req.Message)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store message"})
		return
	}

	if h.fanout != nil {
		if err := h.fanout.Publish(c.Request.Context(), activity.ID, msg); err != nil {
			emitAudit(c, h.audit, "ERROR", "chat broadcast failed")
		}
	}
	sendNewMessageNotification(c.Request.Context(), h.userRepo, h.pushSender, match, conversation.ID, msg)

	c.JSON(http.StatusCreated, msg)
}

func writeActivityError(c *gin.Context, err error) {
	if errors.Is(err, repositories.ErrActivityNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "activity not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "activity lookup failed"})
}
