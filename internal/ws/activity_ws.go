package ws

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"lobby-service/internal/middleware"
	"lobby-service/internal/observability"
	"lobby-service/internal/repositories"
)

// ActivityWebSocketHandler upgrades connections into activity chat rooms.
type ActivityWebSocketHandler struct {
	hub          *Hub
	participants repositories.ParticipantRepository
	tokens       middleware.TokenValidator
}

// NewActivityWebSocketHandler constructs an ActivityWebSocketHandler.
func NewActivityWebSocketHandler(hub *Hub, participants repositories.ParticipantRepository, tokens middleware.TokenValidator) *ActivityWebSocketHandler {
	return &ActivityWebSocketHandler{hub: hub, participants: participants, tokens: tokens}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle authenticates the caller, checks activity membership, upgrades the
// connection and keeps it registered until the peer goes away.
func (h *ActivityWebSocketHandler) Handle(c *gin.Context) {
	activityID, err := strconv.Atoi(c.Param("activity_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid activity id"})
		return
	}

	ctx, span := otel.Tracer("lobby-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token := bearerToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	userID, err := h.tokens.Validate(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	member, err := h.participants.IsParticipant(c.Request.Context(), activityID, userID)
	if err != nil || !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized for activity"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      userID,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   observability.RequestIDFromRequest(c.Request),
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}
	h.hub.AddClient(activityID, conn, info)

	observability.IncWSActive(roomKind)
	publishWSEvent(ctx, "ws_connect", activityID, info, "")

	// Reader goroutine: the server never consumes client frames beyond
	// close/error detection; posting goes through the HTTP endpoints.
	go func() {
		var closeReason string
		defer func() {
			h.hub.RemoveClient(activityID, conn)
			observability.DecWSActive(roomKind)
			publishWSEvent(ctx, "ws_disconnect", activityID, info, closeReason)
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				closeReason = err.Error()
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					publishWSEvent(ctx, "ws_error", activityID, info, closeReason)
				}
				return
			}
		}
	}()
}

// bearerToken pulls the token from the Authorization header or, for browser
// websocket clients that cannot set headers, the token query parameter.
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
		return ""
	}
	return c.Query("token")
}
