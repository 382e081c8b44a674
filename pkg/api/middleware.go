package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// bearerAuth rejects any request whose Authorization header does not
// carry "Bearer {token}" matched verbatim against the configured token.
func bearerAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if strings.TrimPrefix(header, "Bearer ") != token || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid bearer token"})
			return
		}
		c.Next()
	}
}

// logRequest emits one structured line per request, mirroring the
// slog-based style used throughout the rest of this codebase.
func logRequest(c *gin.Context, elapsed time.Duration) {
	slog.Info("http request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"elapsed_ms", elapsed.Milliseconds(),
	)
}
