package ws

import (
	"context"
	"time"

	"lobby-service/internal/observability"
)

// publishWSEvent emits a websocket lifecycle event to the event bus and bumps
// the matching metric. A nil ctx falls back to context.Background (broadcast
// failures have no request context).
func publishWSEvent(ctx context.Context, event string, activityID int, info ConnInfo, reason string) {
	if ctx == nil {
		ctx = context.Background()
	}

	payload := map[string]interface{}{
		"ws": map[string]interface{}{
			"kind":        roomKind,
			"resource_id": activityID,
			"event":       event,
			"conn_id":     info.ConnID,
			"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
			"reason":      reason,
		},
		"identity": map[string]interface{}{
			"user_id":   info.UserID,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}

	headers := observability.BuildHeaders(info.RequestID, info.TraceID)
	_ = observability.PublishEvent(ctx, "ws_events.activities", observability.EventEnvelope{
		EventType: "ws_events",
		EventName: event,
		Payload:   payload,
	}, headers)
	observability.IncWSEvent(roomKind, event)
}
