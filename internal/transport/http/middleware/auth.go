package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const errUnauthorized = "Unauthorized"

// RunnerAuth guards the job-processing trigger with a shared bearer token.
//
// With no token configured the behavior depends on the environment: local
// and staging allow the request (intentional relaxation so developers can
// poke the runner without secrets), production rejects it — a missing secret
// in production is a configuration failure and must fail closed.
func RunnerAuth(env, token string, logger *slog.Logger) gin.HandlerFunc {
	token = strings.TrimSpace(token)

	return func(c *gin.Context) {
		if token == "" {
			if env == "production" {
				logger.Warn("runner token not configured in production, rejecting")
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
				return
			}
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
			return
		}
		provided := strings.TrimPrefix(header, "Bearer ")

		if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
			logger.Warn("runner trigger rejected: bad bearer token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
			return
		}

		c.Next()
	}
}
