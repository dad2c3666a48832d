package handlers

import (
	"net/http"

	"nafany/middleware"
	"nafany/models"
	"nafany/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionHandler serves the endpoints shared by every signed-in role.
type SessionHandler struct {
	Tokens  *utils.TokenManager
	Revoked utils.Cache
}

func NewSessionHandler(tokens *utils.TokenManager, revoked utils.Cache) *SessionHandler {
	return &SessionHandler{Tokens: tokens, Revoked: revoked}
}

// session returns the caller identity or answers 401.
func session(c *gin.Context) (models.SessionUser, bool) {
	s, ok := middleware.CurrentSession(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Unauthorized")
		return models.SessionUser{}, false
	}
	return s, true
}

// MeHandler handles GET /api/session/me.
func (h *SessionHandler) MeHandler(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s)
}

// LogoutHandler handles POST /api/session/logout. The token is refused until it would have expired.
func (h *SessionHandler) LogoutHandler(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	token := middleware.CurrentToken(c)
	key := utils.RevokedTokenPrefix + utils.HashToken(token)
	if err := h.Revoked.Set(c.Request.Context(), key, []byte(s.Email), h.Tokens.Remaining(token)); err != nil {
		respondError(c, err, zap.String("email", s.Email))
		return
	}
	utils.GetLogger().Info("Session revoked", zap.String("email", s.Email), zap.String("role", s.Role))
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}
