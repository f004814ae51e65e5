package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"lobby-service/internal/mocks"
	"lobby-service/internal/models"
	"lobby-service/internal/repositories"
)

func setupMatchRouter(handler *MatchHandler, userID int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	})
	r.GET("/matches", handler.ListMatches)
	r.GET("/matches/:match_id", handler.GetMatch)
	r.POST("/matches/:match_id/conversation", handler.OpenConversation)
	return r
}

func TestGetMatchOutsiderGets404(t *testing.T) {
	matchRepo := new(mocks.MatchRepositoryMock)
	handler := NewMatchHandler(matchRepo, new(mocks.ConversationRepositoryMock))
	router := setupMatchRouter(handler, 99)

	matchRepo.On("GetMatch", mock.Anything, 8).
		Return(models.Match{ID: 8, ActivityID: 5, UserAID: 1, UserBID: 3}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/matches/8", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetMatchMember(t *testing.T) {
	matchRepo := new(mocks.MatchRepositoryMock)
	handler := NewMatchHandler(matchRepo, new(mocks.ConversationRepositoryMock))
	router := setupMatchRouter(handler, 3)

	matchRepo.On("GetMatch", mock.Anything, 8).
		Return(models.Match{ID: 8, ActivityID: 5, UserAID: 1, UserBID: 3}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/matches/8", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestGetMatchMissing(t *testing.T) {
	matchRepo := new(mocks.MatchRepositoryMock)
	handler := NewMatchHandler(matchRepo, new(mocks.ConversationRepositoryMock))
	router := setupMatchRouter(handler, 1)

	matchRepo.On("GetMatch", mock.Anything, 8).
		Return(models.Match{}, repositories.ErrMatchNotFound).Once()

	req := httptest.NewRequest(http.MethodGet, "/matches/8", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOpenConversationIdempotent(t *testing.T) {
	matchRepo := new(mocks.MatchRepositoryMock)
	conversationRepo := new(mocks.ConversationRepositoryMock)
	handler := NewMatchHandler(matchRepo, conversationRepo)
	router := setupMatchRouter(handler, 1)

	matchRepo.On("GetMatch", mock.Anything, 8).
		Return(models.Match{ID: 8, ActivityID: 5, UserAID: 1, UserBID: 3}, nil).Twice()
	conversationRepo.On("GetOrCreateConversation", mock.Anything, 8).
		Return(models.Conversation{ID: 12, MatchID: 8}, nil).Twice()

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/matches/8/conversation", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	conversationRepo.AssertExpectations(t)
}

func TestListMatches(t *testing.T) {
	matchRepo := new(mocks.MatchRepositoryMock)
	handler := NewMatchHandler(matchRepo, new(mocks.ConversationRepositoryMock))
	router := setupMatchRouter(handler, 1)

	matchRepo.On("ListMatchesForUser", mock.Anything, 1).
		Return([]models.Match{{ID: 8, ActivityID: 5, UserAID: 1, UserBID: 3}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/matches", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	matchRepo.AssertExpectations(t)
}
