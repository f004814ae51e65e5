package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"lobby-service/internal/telemetry"
)

const requestIDContextKey = "request_id"

func requestIDFromContext(c *gin.Context) string {
	if val, ok := c.Get(requestIDContextKey); ok {
		if id, ok := val.(string); ok && id != "" {
			return id
		}
	}

	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Set(requestIDContextKey, requestID)
	return requestID
}

// currentUserID returns the authenticated caller's id, set by the auth
// middleware.
func currentUserID(c *gin.Context) int {
	return c.GetInt("userID")
}

// isStaff reports whether the caller has the moderation override.
func isStaff(c *gin.Context) bool {
	return c.GetBool("isStaff")
}

// pathID parses a numeric path parameter, writing a 400 on failure.
func pathID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

func auditUserID(c *gin.Context) *string {
	if userID := currentUserID(c); userID != 0 {
		value := strconv.Itoa(userID)
		return &value
	}
	return nil
}

// emitAudit publishes an audit event for the current request. Nil emitters
// are fine; audit is optional infrastructure.
func emitAudit(c *gin.Context, audit *telemetry.AuditEmitter, level, text string) {
	if audit == nil {
		return
	}
	audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), auditUserID(c))
}
