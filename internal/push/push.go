package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"lobby-service/internal/observability"
)

// Sender delivers a push notification to all of a user's registered devices.
// Delivery is best-effort: a failed push never fails the write that caused it.
type Sender interface {
	Notify(ctx context.Context, userID int, title string, body string, payload map[string]interface{}) error
}

// TokenStore is the slice of the user repository the sender needs.
type TokenStore interface {
	ActiveTokensForUser(ctx context.Context, userID int) ([]string, error)
	DeactivateTokens(ctx context.Context, tokens []string) error
}

// Gateway error codes that mean the token is dead and should be deactivated.
var invalidTokenErrors = map[string]bool{
	"DeviceNotRegistered": true,
}

// ExpoSender posts to an Expo-compatible push gateway.
type ExpoSender struct {
	url         string
	accessToken string
	tokens      TokenStore
	client      *http.Client
	maxAttempts int
}

// NewExpoSender constructs an ExpoSender with a bounded request timeout.
func NewExpoSender(url string, accessToken string, tokens TokenStore) *ExpoSender {
	return &ExpoSender{
		url:         url,
		accessToken: accessToken,
		tokens:      tokens,
		client:      &http.Client{Timeout: 5 * time.Second},
		maxAttempts: 2,
	}
}

type expoMessage struct {
	To    string                 `json:"to"`
	Title string                 `json:"title"`
	Body  string                 `json:"body"`
	Data  map[string]interface{} `json:"data"`
	Sound string                 `json:"sound"`
}

type expoTicket struct {
	Status  string `json:"status"`
	Details struct {
		Error string `json:"error"`
	} `json:"details"`
}

type expoResponse struct {
	Data []expoTicket `json:"data"`
}

// Notify sends the notification to every active device token of the user.
// Tickets the gateway flags as unregistered get their tokens deactivated.
func (s *ExpoSender) Notify(ctx context.Context, userID int, title string, body string, payload map[string]interface{}) error {
	tokens, err := s.tokens.ActiveTokensForUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("load push tokens: %w", err)
	}
	if len(tokens) == 0 {
		return nil
	}

	if payload == nil {
		payload = map[string]interface{}{}
	}
	messages := make([]expoMessage, 0, len(tokens))
	for _, token := range tokens {
		messages = append(messages, expoMessage{To: token, Title: title, Body: body, Data: payload, Sound: "default"})
	}
	requestBody, err := json.Marshal(messages)
	if err != nil {
		return err
	}

	var resp *http.Response
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		resp, err = s.post(ctx, requestBody)
		if err == nil {
			break
		}
		if attempt < s.maxAttempts {
			time.Sleep(200 * time.Millisecond)
		}
	}
	if err != nil {
		observability.IncPushDelivery("error")
		return fmt.Errorf("push gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		observability.IncPushDelivery("error")
		return fmt.Errorf("push gateway status %d", resp.StatusCode)
	}

	var parsed expoResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		observability.IncPushDelivery("sent")
		return nil
	}

	var dead []string
	for i, ticket := range parsed.Data {
		if i >= len(tokens) {
			break
		}
		if ticket.Status == "error" && invalidTokenErrors[ticket.Details.Error] {
			dead = append(dead, tokens[i])
		}
	}
	if len(dead) > 0 {
		if err := s.tokens.DeactivateTokens(ctx, dead); err != nil {
			log.Printf("push: failed to deactivate %d tokens: %v", len(dead), err)
		} else {
			log.Printf("push: deactivated %d unregistered tokens", len(dead))
		}
	}

	observability.IncPushDelivery("sent")
	return nil
}

func (s *ExpoSender) post(ctx context.Context, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if s.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.accessToken)
	}
	return s.client.Do(req)
}

// NoopSender drops notifications. Used when no gateway is configured.
type NoopSender struct{}

// Notify does nothing.
func (NoopSender) Notify(ctx context.Context, userID int, title string, body string, payload map[string]interface{}) error {
	return nil
}

// Async fires Notify in the background with its own deadline so the caller's
// request never waits on the gateway. Errors are logged and swallowed.
func Async(sender Sender, userID int, title string, body string, payload map[string]interface{}) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := sender.Notify(ctx, userID, title, body, payload); err != nil {
			log.Printf("push notify user %d failed: %v", userID, err)
		}
	}()
}
