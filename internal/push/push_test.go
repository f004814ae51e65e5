package push

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type tokenStoreMock struct {
	mock.Mock
}

func (m *tokenStoreMock) ActiveTokensForUser(ctx context.Context, userID int) ([]string, error) {
	args := m.Called(ctx, userID)
	var tokens []string
	if val := args.Get(0); val != nil {
		tokens = val.([]string)
	}
	return tokens, args.Error(1)
}

func (m *tokenStoreMock) DeactivateTokens(ctx context.Context, tokens []string) error {
	args := m.Called(ctx, tokens)
	return args.Error(0)
}

func TestNotifyNoTokensIsNoop(t *testing.T) {
	store := new(tokenStoreMock)
	store.On("ActiveTokensForUser", mock.Anything, 7).Return([]string{}, nil).Once()

	sender := NewExpoSender("http://invalid.localhost", "", store)
	require.NoError(t, sender.Notify(context.Background(), 7, "t", "b", nil))
	store.AssertExpectations(t)
}

func TestNotifySendsAllTokens(t *testing.T) {
	var received []expoMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		json.NewEncoder(w).Encode(expoResponse{Data: []expoTicket{{Status: "ok"}, {Status: "ok"}}})
	}))
	defer server.Close()

	store := new(tokenStoreMock)
	store.On("ActiveTokensForUser", mock.Anything, 7).Return([]string{"tok-1", "tok-2"}, nil).Once()

	sender := NewExpoSender(server.URL, "", store)
	require.NoError(t, sender.Notify(context.Background(), 7, "New match confirmed", "hello", map[string]interface{}{"type": "new_match"}))

	require.Len(t, received, 2)
	assert.Equal(t, "tok-1", received[0].To)
	assert.Equal(t, "tok-2", received[1].To)
	assert.Equal(t, "New match confirmed", received[0].Title)
	store.AssertNotCalled(t, "DeactivateTokens", mock.Anything, mock.Anything)
}

func TestNotifyDeactivatesDeadTokens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := expoResponse{Data: []expoTicket{{Status: "ok"}, {Status: "error"}}}
		resp.Data[1].Details.Error = "DeviceNotRegistered"
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	store := new(tokenStoreMock)
	store.On("ActiveTokensForUser", mock.Anything, 7).Return([]string{"tok-live", "tok-dead"}, nil).Once()
	store.On("DeactivateTokens", mock.Anything, []string{"tok-dead"}).Return(nil).Once()

	sender := NewExpoSender(server.URL, "", store)
	require.NoError(t, sender.Notify(context.Background(), 7, "t", "b", nil))
	store.AssertExpectations(t)
}

func TestNotifyGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	store := new(tokenStoreMock)
	store.On("ActiveTokensForUser", mock.Anything, 7).Return([]string{"tok-1"}, nil).Once()

	sender := NewExpoSender(server.URL, "", store)
	assert.Error(t, sender.Notify(context.Background(), 7, "t", "b", nil))
}
