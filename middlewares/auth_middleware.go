package middlewares

import (
	"net/http"
	"strings"

	"dietvision/services"
	"dietvision/utils"

	"github.com/gin-gonic/gin"
)

const (
	SessionKey = "session"
	EmailKey   = "email"
)

// AuthMiddleware checks the bearer token and attaches the live session.
func AuthMiddleware(secret string, sessions *services.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		claims, err := utils.ParseJWT(secret, strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		sess, ok := sessions.Get(claims.SessionID)
		if !ok || sess.Email != claims.Email {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired, please sign in again"})
			return
		}

		c.Set(SessionKey, sess)
		c.Set(EmailKey, sess.Email)
		c.Next()
	}
}

// CurrentSession returns the session attached by AuthMiddleware.
func CurrentSession(c *gin.Context) (*services.Session, bool) {
	v, ok := c.Get(SessionKey)
	if !ok {
		return nil, false
	}
	sess, ok := v.(*services.Session)
	return sess, ok
}
