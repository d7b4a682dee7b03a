package middleware

import (
	"net/http"
	"strings"

	"github.com/chatly/chat_management_backend/models"
	"github.com/chatly/chat_management_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const identityKey = "identity"

// JWTAuth resolves the caller identity from the bearer token and injects it
// into the request context. Requests without a valid token never reach the
// handlers.
func JWTAuth(secret string) gin.HandlerFunc {
	log := logrus.WithField("component", "AuthMiddleware")

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"message": "authorization token required"},
			})
			return
		}

		ident, err := utils.ParseToken(strings.TrimPrefix(header, "Bearer "), secret)
		if err != nil {
			log.WithError(err).Debug("token verification failed")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"message": "invalid token"},
			})
			return
		}

		c.Set(identityKey, *ident)
		c.Next()
	}
}

// CallerIdentity returns the identity injected by JWTAuth.
func CallerIdentity(c *gin.Context) models.Identity {
	return c.MustGet(identityKey).(models.Identity)
}
