package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"lobby-service/internal/models"
	"lobby-service/internal/repositories"
)

// MatchHandler exposes a user's matches.
type MatchHandler struct {
	matchRepo        repositories.MatchRepository
	conversationRepo repositories.ConversationRepository
}

// NewMatchHandler builds a MatchHandler.
func NewMatchHandler(matchRepo repositories.MatchRepository, conversationRepo repositories.ConversationRepository) *MatchHandler {
	return &MatchHandler{matchRepo: matchRepo, conversationRepo: conversationRepo}
}

// ListMatches handles GET /matches, all matches involving the caller.
func (h *MatchHandler) ListMatches(c *gin.Context) {
	matches, err := h.matchRepo.ListMatchesForUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load matches"})
		return
	}
	if matches == nil {
		matches = []models.Match{}
	}
	c.JSON(http.StatusOK, gin.H{"matches": matches})
}

// GetMatch handles GET /matches/:match_id. Matches are visible to their two
// members only; everyone else gets a 404.
func (h *MatchHandler) GetMatch(c *gin.Context) {
	matchID, ok := pathID(c, "match_id")
	if !ok {
		return
	}

	match, err := h.matchRepo.GetMatch(c.Request.Context(), matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "match not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "match lookup failed"})
		return
	}
	if !match.Involves(currentUserID(c)) {
		c.JSON(http.StatusNotFound, gin.H{"error": "match not found"})
		return
	}
	c.JSON(http.StatusOK, match)
}

// OpenConversation handles POST /matches/:match_id/conversation, binding the
// conversation for a match. Idempotent; repeat calls return the same row.
func (h *MatchHandler) OpenConversation(c *gin.Context) {
	matchID, ok := pathID(c, "match_id")
	if !ok {
		return
	}

	match, err := h.matchRepo.GetMatch(c.Request.Context(), matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "match not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "match lookup failed"})
		return
	}
	if !match.Involves(currentUserID(c)) {
		c.JSON(http.StatusNotFound, gin.H{"error": "match not found"})
		return
	}

	conversation, err := h.conversationRepo.GetOrCreateConversation(c.Request.Context(), match.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not open conversation"})
		return
	}
	c.JSON(http.StatusOK, conversation)
}
