package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nafany/models"
	"nafany/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func protectedRouter(tokens *utils.TokenManager, revoked utils.Cache, roles ...string) *gin.Engine {
	r := gin.New()
	r.GET("/me", SessionAuth(tokens, revoked, roles...), func(c *gin.Context) {
		session, ok := CurrentSession(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"email": session.Email, "token": CurrentToken(c)})
	})
	return r
}

func get(r http.Handler, url, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, url, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSessionAuth(t *testing.T) {
	tokens := utils.NewTokenManager("middleware-test", time.Hour)
	revoked := utils.NewMemoryCache()
	userToken, _, err := tokens.Issue(models.SessionUser{Role: models.RoleUser, Email: "ali@example.com", Name: "Ali"})
	require.NoError(t, err)

	r := protectedRouter(tokens, revoked)

	w := get(r, "/me", userToken)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ali@example.com")

	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", "not-a-jwt").Code)

	other := utils.NewTokenManager("another-secret", time.Hour)
	forged, _, err := other.Issue(models.SessionUser{Role: models.RoleAdmin, Email: "x"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", forged).Code)

	// the chat stream authenticates through the query string.
	assert.Equal(t, http.StatusOK, get(r, "/me?token="+userToken, "").Code)

	require.NoError(t, revoked.Set(context.Background(), utils.RevokedTokenPrefix+utils.HashToken(userToken), []byte("1"), time.Hour))
	w = get(r, "/me", userToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Session has ended")
}

func TestSessionAuthRoles(t *testing.T) {
	tokens := utils.NewTokenManager("middleware-test", time.Hour)
	r := protectedRouter(tokens, nil, models.RoleProvider, models.RoleAdmin)

	userToken, _, err := tokens.Issue(models.SessionUser{Role: models.RoleUser, Email: "ali@example.com"})
	require.NoError(t, err)
	providerToken, _, err := tokens.Issue(models.SessionUser{Role: models.RoleProvider, Email: "mona@example.com"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, get(r, "/me", userToken).Code)
	assert.Equal(t, http.StatusOK, get(r, "/me", providerToken).Code)
}

func TestRateLimitPerClient(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(3))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	call := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, call("10.0.0.1"))
	}
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1"))
	assert.Equal(t, http.StatusOK, call("10.0.0.2"))
}
