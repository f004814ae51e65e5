package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"lobby-service/internal/models"
	"lobby-service/internal/push"
	"lobby-service/internal/repositories"
	"lobby-service/internal/telemetry"
	"lobby-service/internal/ws"
)

// MessageHandler manages direct conversations between matched users.
type MessageHandler struct {
	conversationRepo repositories.ConversationRepository
	matchRepo        repositories.MatchRepository
	userRepo         repositories.UserRepository
	pushSender       push.Sender
	fanout           ws.Fanout
	audit            *telemetry.AuditEmitter
}

// NewMessageHandler builds a MessageHandler.
func NewMessageHandler(
	conversationRepo repositories.ConversationRepository,
	matchRepo repositories.MatchRepository,
	userRepo repositories.UserRepository,
	pushSender push.Sender,
	fanout ws.Fanout,
	audit *telemetry.AuditEmitter,
) *MessageHandler {
	return &MessageHandler{
		conversationRepo: conversationRepo,
		matchRepo:        matchRepo,
		userRepo:         userRepo,
		pushSender:       pushSender,
		fanout:           fanout,
		audit:            audit,
	}
}

// ListConversations handles GET /messages/conversations.
func (h *MessageHandler) ListConversations(c *gin.Context) {
	convs, err := h.conversationRepo.ListConversationsForUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load conversations"})
		return
	}
	if convs == nil {
		convs = []models.Conversation{}
	}
	c.JSON(http.StatusOK, gin.H{"conversations": convs})
}

// loadConversation fetches the conversation and its match, enforcing that the
// caller is one of the matched pair. Writes the error response itself.
func (h *MessageHandler) loadConversation(c *gin.Context) (models.Conversation, models.Match, bool) {
	conversationID, ok := pathID(c, "conversation_id")
	if !ok {
		return models.Conversation{}, models.Match{}, false
	}

	conversation, err := h.conversationRepo.GetConversation(c.Request.Context(), conversationID)
	if err != nil {
		if errors.Is(err, repositories.ErrConversationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
			return models.Conversation{}, models.Match{}, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "conversation lookup failed"})
		return models.Conversation{}, models.Match{}, false
	}

	match, err := h.matchRepo.GetMatch(c.Request.Context(), conversation.MatchID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "match lookup failed"})
		return models.Conversation{}, models.Match{}, false
	}
	if !match.Involves(currentUserID(c)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a member of this conversation"})
		return models.Conversation{}, models.Match{}, false
	}
	return conversation, match, true
}

// ListMessages handles GET /messages/conversations/:conversation_id/messages.
func (h *MessageHandler) ListMessages(c *gin.Context) {
	conversation, _, ok := h.loadConversation(c)
	if !ok {
		return
	}

	msgs, err := h.conversationRepo.ListMessages(c.Request.Context(), conversation.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// SendMessage handles POST /messages/conversations/:conversation_id/messages. The
// stored row is the source of truth; broadcast and push failures never undo
// the write.
func (h *MessageHandler) SendMessage(c *gin.Context) {
	conversation, match, ok := h.loadConversation(c)
	if !ok {
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
		if err := h.fanout.Publish(c.Request.Context(), match.ActivityID, msg); err != nil {
			emitAudit(c, h.audit, "ERROR", "chat broadcast failed")
		}
	}
	sendNewMessageNotification(c.Request.Context(), h.userRepo, h.pushSender, match, conversation.ID, msg)

	c.JSON(http.StatusCreated, msg)
}
