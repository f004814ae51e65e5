package handlers

import (
	"bytes"
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

type reviewHandlerMocks struct {
	reviewRepo      *mocks.ReviewRepositoryMock
	activityRepo    *mocks.ActivityRepositoryMock
	participantRepo *mocks.ParticipantRepositoryMock
}

func newReviewHandler() (*ReviewHandler, reviewHandlerMocks) {
	m := reviewHandlerMocks{
		reviewRepo:      new(mocks.ReviewRepositoryMock),
		activityRepo:    new(mocks.ActivityRepositoryMock),
		participantRepo: new(mocks.ParticipantRepositoryMock),
	}
	return NewReviewHandler(m.reviewRepo, m.activityRepo, m.participantRepo, nil), m
}

func setupReviewRouter(handler *ReviewHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	r.POST("/activities/:activity_id/reviews", handler.CreateReview)
	r.GET("/activities/:activity_id/reviews", handler.ListActivityReviews)
	return r
}

func TestCreateReviewNotConfirmed(t *testing.T) {
	handler, m := newReviewHandler()
	router := setupReviewRouter(handler)

	m.activityRepo.On("GetVisible", mock.Anything, 5, 1, false).
		Return(models.Activity{ID: 5, HostID: 2, IsApproved: true}, nil).Once()
	m.participantRepo.On("HasConfirmed", mock.Anything, 5, 1).Return(false, nil).Once()

	body := bytes.NewBufferString(`{"reviewee_id":3,"rating":5}`)
	req := httptest.NewRequest(http.MethodPost, "/activities/5/reviews", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreateReviewHostAllowed(t *testing.T) {
	handler, m := newReviewHandler()
	router := setupReviewRouter(handler)

	m.activityRepo.On("GetVisible", mock.Anything, 5, 1, false).
		Return(models.Activity{ID: 5, HostID: 1, IsApproved: true}, nil).Once()
	m.reviewRepo.On("Create", mock.Anything, models.Review{ReviewerID: 1, RevieweeID: 3, ActivityID: 5, Rating: 4, Comment: "great"}).
		Return(models.Review{ID: 1, ReviewerID: 1, RevieweeID: 3, ActivityID: 5, Rating: 4, Comment: "great"}, nil).Once()

	body := bytes.NewBufferString(`{"reviewee_id":3,"rating":4,"comment":"great"}`)
	req := httptest.NewRequest(http.MethodPost, "/activities/5/reviews", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	m.participantRepo.AssertNotCalled(t, "HasConfirmed", mock.Anything, mock.Anything, mock.Anything)
	m.reviewRepo.AssertExpectations(t)
}

func TestCreateReviewRatingOutOfRange(t *testing.T) {
	handler, m := newReviewHandler()
	router := setupReviewRouter(handler)

	m.activityRepo.On("GetVisible", mock.Anything, 5, 1, false).
		Return(models.Activity{ID: 5, HostID: 1, IsApproved: true}, nil).Once()

	body := bytes.NewBufferString(`{"reviewee_id":3,"rating":6}`)
	req := httptest.NewRequest(http.MethodPost, "/activities/5/reviews", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateReviewSelf(t *testing.T) {
	handler, m := newReviewHandler()
	router := setupReviewRouter(handler)

	m.activityRepo.On("GetVisible", mock.Anything, 5, 1, false).
		Return(models.Activity{ID: 5, HostID: 1, IsApproved: true}, nil).Once()

	body := bytes.NewBufferString(`{"reviewee_id":1,"rating":5}`)
	req := httptest.NewRequest(http.MethodPost, "/activities/5/reviews", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateReviewDuplicate(t *testing.T) {
	handler, m := newReviewHandler()
	router := setupReviewRouter(handler)

	m.activityRepo.On("GetVisible", mock.Anything, 5, 1, false).
		Return(models.Activity{ID: 5, HostID: 1, IsApproved: true}, nil).Once()
	m.reviewRepo.On("Create", mock.Anything, mock.Anything).
		Return(models.Review{}, repositories.ErrDuplicateReview).Once()

	body := bytes.NewBufferString(`{"reviewee_id":3,"rating":5}`)
	req := httptest.NewRequest(http.MethodPost, "/activities/5/reviews", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestListActivityReviews(t *testing.T) {
	handler, m := newReviewHandler()
	router := setupReviewRouter(handler)

	m.activityRepo.On("GetVisible", mock.Anything, 5, 1, false).
		Return(models.Activity{ID: 5, HostID: 2, IsApproved: true}, nil).Once()
	m.reviewRepo.On("ListForActivity", mock.Anything, 5).
		Return([]models.Review{{ID: 1, ReviewerID: 1, RevieweeID: 3, ActivityID: 5, Rating: 5}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/activities/5/reviews", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	m.reviewRepo.AssertExpectations(t)
}
