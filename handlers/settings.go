package handlers

import (
	"net/http"

	"nafany/models"
	"nafany/services/provider"
	"nafany/services/user"
	"nafany/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SettingsHandler updates the signed-in account, dispatching on its role.
type SettingsHandler struct {
	UserService     user.UserService
	ProviderService provider.ProviderService
}

func NewSettingsHandler(us user.UserService, ps provider.ProviderService) *SettingsHandler {
	return &SettingsHandler{UserService: us, ProviderService: ps}
}

// UpdateSettingsHandler handles PUT /api/settings.
func (h *SettingsHandler) UpdateSettingsHandler(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	switch s.Role {
	case models.RoleUser:
		var req models.UserSettings
		if !bindJSON(c, &req) {
			return
		}
		updated, err := h.UserService.UpdateSettings(ctx, s.Email, req)
		if err != nil {
			respondError(c, err, zap.String("email", s.Email))
			return
		}
		c.JSON(http.StatusOK, updated)
	case models.RoleProvider:
		var req models.ProviderSettings
		if !bindJSON(c, &req) {
			return
		}
		updated, err := h.ProviderService.UpdateSettings(ctx, s.Email, req)
		if err != nil {
			respondError(c, err, zap.String("email", s.Email))
			return
		}
		c.JSON(http.StatusOK, updated)
	default:
		utils.JSONError(c, http.StatusForbidden, "access denied")
	}
}

// UpdateFCMTokenHandler handles PUT /api/settings/fcm.
func (h *SettingsHandler) UpdateFCMTokenHandler(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	var req models.FCMTokenInput
	if !bindJSON(c, &req) {
		return
	}
	if req.Token == "" {
		respondError(c, utils.NewValidationError("token", "is required"))
		return
	}

	var err error
	switch s.Role {
	case models.RoleUser:
		err = h.UserService.SetFCMToken(c.Request.Context(), s.Email, req.Token)
	case models.RoleProvider:
		err = h.ProviderService.SetFCMToken(c.Request.Context(), s.Email, req.Token)
	default:
		err = utils.ErrForbidden
	}
	if err != nil {
		respondError(c, err, zap.String("email", s.Email))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Device token updated"})
}
