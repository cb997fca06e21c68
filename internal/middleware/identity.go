package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

const userIDCtxKey = contextKey("userID")

// userIDHeader carries the acting user's identity, set by the upstream
// gateway after it has authenticated the session. This service does not own
// authentication; it only needs the actor for audit fields.
const userIDHeader = "X-User-ID"

// IdentityMiddleware extracts the acting user from the trusted identity
// header and stores it in the request context. Requests without an identity
// are rejected, since every mutating operation must be attributable.
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(userIDHeader)
		if userID == "" {
			GetLoggerFromCtx(c.Request.Context()).Warn("Identity header missing", slog.String("header", userIDHeader))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user identity required"})
			return
		}

		ctx := context.WithValue(c.Request.Context(), userIDCtxKey, userID)
		enriched := GetLoggerFromCtx(ctx).With(slog.String("user_id", userID))
		ctx = context.WithValue(ctx, loggerCtxKey, enriched)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetUserIDFromContext retrieves the acting user ID from the Gin context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID, ok := c.Request.Context().Value(userIDCtxKey).(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}
