package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"

	"lobby-service/internal/models"
)

// fanoutChannel carries chat messages between server processes.
const fanoutChannel = "activity_chat"

// Fanout delivers a chat message to every subscribed client, across all
// server processes when Redis is configured.
type Fanout interface {
	Publish(ctx context.Context, activityID int, msg models.Message) error
}

type fanoutEnvelope struct {
	ActivityID int            `json:"activity_id"`
	Message    models.Message `json:"message"`
}

// RedisFanout publishes chat messages over Redis pub/sub; each process runs
// a subscriber that relays into its local hub.
type RedisFanout struct {
	client *redis.Client
	hub    *Hub
}

// NewRedisFanout constructs a RedisFanout.
func NewRedisFanout(client *redis.Client, hub *Hub) *RedisFanout {
	return &RedisFanout{client: client, hub: hub}
}

// Publish sends the message to the shared channel. Local delivery happens via
// this process's own subscription, so handlers only ever publish.
func (f *RedisFanout) Publish(ctx context.Context, activityID int, msg models.Message) error {
	payload, err := json.Marshal(fanoutEnvelope{ActivityID: activityID, Message: msg})
	if err != nil {
		return err
	}
	return f.client.Publish(ctx, fanoutChannel, payload).Err()
}

// Run subscribes to the shared channel and relays messages into the local hub
// until ctx is cancelled. Intended to run as a goroutine per process.
func (f *RedisFanout) Run(ctx context.Context) {
	sub := f.client.Subscribe(ctx, fanoutChannel)
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-sub.Channel():
			if !ok {
				return
			}
			var envelope fanoutEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &envelope); err != nil {
				log.Printf("fanout: dropping malformed payload: %v", err)
				continue
			}
			f.hub.BroadcastMessage(envelope.ActivityID, envelope.Message)
		}
	}
}

// LocalFanout broadcasts directly into the in-process hub. Used when Redis is
// not configured; fine for a single server process.
type LocalFanout struct {
	hub *Hub
}

// NewLocalFanout constructs a LocalFanout.
func NewLocalFanout(hub *Hub) *LocalFanout {
	return &LocalFanout{hub: hub}
}

// Publish broadcasts to the local hub only.
func (f *LocalFanout) Publish(ctx context.Context, activityID int, msg models.Message) error {
	f.hub.BroadcastMessage(activityID, msg)
	return nil
}
