package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lobby-service/internal/models"
)

func TestRedisFanoutPublishesEnvelope(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	sub := client.Subscribe(ctx, fanoutChannel)
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	fanout := NewRedisFanout(client, NewHub())
	msg := models.Message{ID: 7, ConversationID: 12, SenderID: 1, Text: "hi"}
	require.NoError(t, fanout.Publish(ctx, 5, msg))

	select {
	case received := <-sub.Channel():
		var envelope fanoutEnvelope
		require.NoError(t, json.Unmarshal([]byte(received.Payload), &envelope))
		assert.Equal(t, 5, envelope.ActivityID)
		assert.Equal(t, "hi", envelope.Message.Text)
	case <-time.After(2 * time.Second):
		t.Fatal("no message received on fanout channel")
	}
}

func TestLocalFanoutPublish(t *testing.T) {
	fanout := NewLocalFanout(NewHub())
	err := fanout.Publish(context.Background(), 5, models.Message{ID: 1, Text: "hi"})
	assert.NoError(t, err)
}
