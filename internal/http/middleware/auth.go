package middleware

import (
	"net/http"
	"strings"

	"tapcoin/internal/logger"

	"github.com/gin-gonic/gin"
)

const telegramIDKey = "tg_id"

// TokenParser resolves a session token to a Telegram id.
type TokenParser interface {
	Parse(token string) (int64, error)
}

// JWT requires a valid bearer token and stores the player id on the
// context.
func JWT(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(raw, "Bearer ")
		if !found || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token", "code": "unauthorized"})
			return
		}

		telegramID, err := tokens.Parse(strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token", "code": "invalid_token"})
			return
		}

		c.Set(telegramIDKey, telegramID)
		ctx := c.Request.Context()
		l := logger.WithContext(ctx).With("tg_id", telegramID)
		c.Request = c.Request.WithContext(logger.NewContext(ctx, l))
		c.Next()
	}
}

// TelegramID returns the authenticated player id.
func TelegramID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(telegramIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
