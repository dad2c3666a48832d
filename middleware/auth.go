package middleware

import (
	"net/http"
	"strings"

	"nafany/models"
	"nafany/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	sessionKey = "session"
	tokenKey   = "sessionToken"
)

// SessionAuth verifies the Bearer token, rejects revoked tokens and, when roles are
// given, requires the token's role to be one of them.
func SessionAuth(tokens *utils.TokenManager, revoked utils.Cache, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}

		session, err := tokens.Parse(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}

		if revoked != nil {
			_, found, err := revoked.Get(c.Request.Context(), utils.RevokedTokenPrefix+utils.HashToken(tokenString))
			if err != nil {
				utils.GetLogger().Warn("Revocation lookup failed", zap.Error(err))
			} else if found {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Session has ended"})
				return
			}
		}

		if len(roles) > 0 && !hasRole(session.Role, roles) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}

		c.Set(sessionKey, session)
		c.Set(tokenKey, tokenString)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	// EventSource cannot set headers, so the chat stream passes the token as a query parameter.
	return c.Query("token")
}

func hasRole(role string, allowed []string) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

// CurrentSession returns the identity stored by SessionAuth.
func CurrentSession(c *gin.Context) (models.SessionUser, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return models.SessionUser{}, false
	}
	session, ok := v.(models.SessionUser)
	return session, ok
}

// CurrentToken returns the raw token of the request.
func CurrentToken(c *gin.Context) string {
	return c.GetString(tokenKey)
}
