package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"lobby-service/internal/mocks"
	"lobby-service/internal/models"
	"lobby-service/internal/push"
	"lobby-service/internal/repositories"
)

type swipeHandlerMocks struct {
	swipeRepo    *mocks.SwipeRepositoryMock
	activityRepo *mocks.ActivityRepositoryMock
	matchRepo    *mocks.MatchRepositoryMock
	userRepo     *mocks.UserRepositoryMock
}

func newSwipeHandler() (*SwipeHandler, swipeHandlerMocks) {
	m := swipeHandlerMocks{
		swipeRepo:    new(mocks.SwipeRepositoryMock),
		activityRepo: new(mocks.ActivityRepositoryMock),
		matchRepo:    new(mocks.MatchRepositoryMock),
		userRepo:     new(mocks.UserRepositoryMock),
	}
	handler := NewSwipeHandler(m.swipeRepo, m.activityRepo, m.matchRepo, m.userRepo, push.NoopSender{}, nil)
	return handler, m
}

func setupSwipeRouter(handler *SwipeHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	r.POST("/activities/:activity_id/swipe", handler.Swipe)
	r.GET("/swipes", handler.ListSwipes)
	return r
}

func TestSwipeInvalidDirection(t *testing.T) {
	handler, m := newSwipeHandler()
	router := setupSwipeRouter(handler)

	m.activityRepo.On("GetVisible", mock.Anything, 5, 1, false).
		Return(models.Activity{ID: 5, HostID: 2, IsApproved: true}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/activities/5/swipe", bytes.NewBufferString(`{"direction":"up"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSwipeDuplicate(t *testing.T) {
	handler, m := newSwipeHandler()
	router := setupSwipeRouter(handler)

	m.activityRepo.On("GetVisible", mock.Anything, 5, 1, false).
		Return(models.Activity{ID: 5, HostID: 2, IsApproved: true}, nil).Once()
	m.swipeRepo.On("CreateSwipe", mock.Anything, 1, 5, "right").
		Return(models.Swipe{}, repositories.ErrAlreadySwiped).Once()

	req := httptest.NewRequest(http.MethodPost, "/activities/5/swipe", bytes.NewBufferString(`{"direction":"right"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	m.swipeRepo.AssertExpectations(t)
}

func TestSwipeLeftNeverMatches(t *testing.T) {
	handler, m := newSwipeHandler()
	router := setupSwipeRouter(handler)

	m.activityRepo.On("GetVisible", mock.Anything, 5, 1, false).
		Return(models.Activity{ID: 5, HostID: 2, IsApproved: true}, nil).Once()
	m.swipeRepo.On("CreateSwipe", mock.Anything, 1, 5, "left").
		Return(models.Swipe{ID: 3, UserID: 1, ActivityID: 5, Direction: "left"}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/activities/5/swipe", bytes.NewBufferString(`{"direction":"left"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp swipeResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Nil(t, resp.Match)
	m.swipeRepo.AssertNotCalled(t, "HostReciprocates", mock.Anything, mock.Anything, mock.Anything)
}

func TestSwipeRightUnreciprocated(t *testing.T) {
	handler, m := newSwipeHandler()
	router := setupSwipeRouter(handler)

	m.activityRepo.On("GetVisible", mock.Anything, 5, 1, false).
		Return(models.Activity{ID: 5, HostID: 2, IsApproved: true}, nil).Once()
	m.swipeRepo.On("CreateSwipe", mock.Anything, 1, 5, "right").
		Return(models.Swipe{ID: 3, UserID: 1, ActivityID: 5, Direction: "right"}, nil).Once()
	m.swipeRepo.On("HostReciprocates", mock.Anything, 2, 1).Return(false, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/activities/5/swipe", bytes.NewBufferString(`{"direction":"right"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp swipeResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Nil(t, resp.Match)
	m.matchRepo.AssertNotCalled(t, "ResolveMatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSwipeRightReciprocatedCreatesMatch(t *testing.T) {
	handler, m := newSwipeHandler()
	router := setupSwipeRouter(handler)

	match := models.Match{ID: 9, ActivityID: 5, UserAID: 1, UserBID: 2}

	m.activityRepo.On("GetVisible", mock.Anything, 5, 1, false).
		Return(models.Activity{ID: 5, HostID: 2, IsApproved: true, Title: "climbing"}, nil).Once()
	m.swipeRepo.On("CreateSwipe", mock.Anything, 1, 5, "right").
		Return(models.Swipe{ID: 3, UserID: 1, ActivityID: 5, Direction: "right"}, nil).Once()
	m.swipeRepo.On("HostReciprocates", mock.Anything, 2, 1).Return(true, nil).Once()
	m.matchRepo.On("ResolveMatch", mock.Anything, 5, 1, 2).Return(match, true, nil).Once()
	m.userRepo.On("GetByID", mock.Anything, 1).Return(models.User{ID: 1, Username: "a"}, nil).Once()
	m.userRepo.On("GetByID", mock.Anything, 2).Return(models.User{ID: 2, Username: "b"}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/activities/5/swipe", bytes.NewBufferString(`{"direction":"right"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp swipeResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotNil(t, resp.Match)
	assert.True(t, resp.Matched)
	assert.Equal(t, 9, resp.Match.ID)
	m.matchRepo.AssertExpectations(t)
}

func TestSwipeRightOnOwnActivitySkipsMatching(t *testing.T) {
	handler, m := newSwipeHandler()
	router := setupSwipeRouter(handler)

	m.activityRepo.On("GetVisible", mock.Anything, 5, 1, false).
		Return(models.Activity{ID: 5, HostID: 1, IsApproved: true}, nil).Once()
	m.swipeRepo.On("CreateSwipe", mock.Anything, 1, 5, "right").
		Return(models.Swipe{ID: 3, UserID: 1, ActivityID: 5, Direction: "right"}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/activities/5/swipe", bytes.NewBufferString(`{"direction":"right"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	m.swipeRepo.AssertNotCalled(t, "HostReciprocates", mock.Anything, mock.Anything, mock.Anything)
}

func TestSwipeInvisibleActivity(t *testing.T) {
	handler, m := newSwipeHandler()
	router := setupSwipeRouter(handler)

	m.activityRepo.On("GetVisible", mock.Anything, 5, 1, false).
		Return(models.Activity{}, repositories.ErrActivityNotFound).Once()

	req := httptest.NewRequest(http.MethodPost, "/activities/5/swipe", bytes.NewBufferString(`{"direction":"right"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	m.swipeRepo.AssertNotCalled(t, "CreateSwipe", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestListSwipes(t *testing.T) {
	handler, m := newSwipeHandler()
	router := setupSwipeRouter(handler)

	m.swipeRepo.On("ListSwipesForUser", mock.Anything, 1).
		Return([]models.Swipe{{ID: 1, UserID: 1, ActivityID: 5, Direction: "right"}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/swipes", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	m.swipeRepo.AssertExpectations(t)
}
