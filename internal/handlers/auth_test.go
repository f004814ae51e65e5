package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"lobby-service/internal/auth"
	"lobby-service/internal/mocks"
	"lobby-service/internal/models"
	"lobby-service/internal/repositories"
)

func setupAuthRouter(handler *AuthHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/auth/register", handler.Register)
	r.POST("/auth/login", handler.Login)
	r.POST("/auth/push-token", func(c *gin.Context) {
		c.Set("userID", 1)
		handler.RegisterPushToken(c)
	})
	return r
}

func testTokenManager() *auth.Manager {
	return auth.NewManager("test-secret", time.Hour)
}

func TestRegisterSuccess(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewAuthHandler(userRepo, testTokenManager(), nil)
	router := setupAuthRouter(handler)

	userRepo.On("Create", mock.Anything, "alice", "alice@example.com", mock.Anything).
		Return(models.User{ID: 1, Username: "alice", Email: "alice@example.com"}, nil).Once()

	body := bytes.NewBufferString(`{"username":"alice","email":"Alice@example.com","password":"longenough"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/register", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	userRepo.AssertExpectations(t)
}

func TestRegisterDuplicate(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewAuthHandler(userRepo, testTokenManager(), nil)
	router := setupAuthRouter(handler)

	userRepo.On("Create", mock.Anything, "alice", "alice@example.com", mock.Anything).
		Return(models.User{}, repositories.ErrUserExists).Once()

	body := bytes.NewBufferString(`{"username":"alice","email":"alice@example.com","password":"longenough"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/register", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegisterShortPassword(t *testing.T) {
	handler := NewAuthHandler(new(mocks.UserRepositoryMock), testTokenManager(), nil)
	router := setupAuthRouter(handler)

	body := bytes.NewBufferString(`{"username":"alice","email":"alice@example.com","password":"short"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/register", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewAuthHandler(userRepo, testTokenManager(), nil)
	router := setupAuthRouter(handler)

	hash, err := auth.HashPassword("rightpassword")
	require.NoError(t, err)
	userRepo.On("GetByEmail", mock.Anything, "alice@example.com").
		Return(models.User{ID: 1, Email: "alice@example.com", PasswordHash: hash}, nil).Once()

	body := bytes.NewBufferString(`{"email":"alice@example.com","password":"wrongpassword"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginUnknownEmailSameAnswer(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewAuthHandler(userRepo, testTokenManager(), nil)
	router := setupAuthRouter(handler)

	userRepo.On("GetByEmail", mock.Anything, "nobody@example.com").
		Return(models.User{}, repositories.ErrUserNotFound).Once()

	body := bytes.NewBufferString(`{"email":"nobody@example.com","password":"whatever1"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginSuccess(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	tokens := testTokenManager()
	handler := NewAuthHandler(userRepo, tokens, nil)
	router := setupAuthRouter(handler)

	hash, err := auth.HashPassword("rightpassword")
	require.NoError(t, err)
	userRepo.On("GetByEmail", mock.Anything, "alice@example.com").
		Return(models.User{ID: 42, Email: "alice@example.com", PasswordHash: hash}, nil).Once()

	body := bytes.NewBufferString(`{"email":"alice@example.com","password":"rightpassword"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRegisterPushToken(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewAuthHandler(userRepo, testTokenManager(), nil)
	router := setupAuthRouter(handler)

	userRepo.On("SavePushToken", mock.Anything, 1, "ExponentPushToken[abc]").Return(nil).Once()

	body := bytes.NewBufferString(`{"token":"ExponentPushToken[abc]"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/push-token", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	userRepo.AssertExpectations(t)
}
