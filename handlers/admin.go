package handlers

import (
	"net/http"

	"nafany/models"
	"nafany/services/admin"
	"nafany/services/provider"
	"nafany/services/user"
	"nafany/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler serves the back-office endpoints.
type AdminHandler struct {
	AdminService    admin.AdminService
	UserService     user.UserService
	ProviderService provider.ProviderService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(as admin.AdminService, us user.UserService, ps provider.ProviderService) *AdminHandler {
	return &AdminHandler{AdminService: as, UserService: us, ProviderService: ps}
}

// AdminLoginHandler handles POST /api/admin/login.
func (h *AdminHandler) AdminLoginHandler(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.AdminService.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.GetLogger().Info("Admin signed in", zap.String("username", req.Username))
	c.JSON(http.StatusOK, resp)
}

// DashboardHandler handles GET /api/admin/dashboard.
func (h *AdminHandler) DashboardHandler(c *gin.Context) {
	d, err := h.AdminService.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// GetAllUsersHandler handles GET /api/admin/users.
func (h *AdminHandler) GetAllUsersHandler(c *gin.Context) {
	users, err := h.UserService.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// UpdateUserHandler handles PUT /api/admin/users/:email.
func (h *AdminHandler) UpdateUserHandler(c *gin.Context) {
	email := c.Param("email")
	var req models.UserSettings
	if !bindJSON(c, &req) {
		return
	}
	updated, err := h.UserService.UpdateSettings(c.Request.Context(), email, req)
	if err != nil {
		respondError(c, err, zap.String("email", email))
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteUserHandler handles DELETE /api/admin/users/:email.
func (h *AdminHandler) DeleteUserHandler(c *gin.Context) {
	email := c.Param("email")
	if err := h.UserService.Delete(c.Request.Context(), email); err != nil {
		respondError(c, err, zap.String("email", email))
		return
	}
	utils.GetLogger().Info("User deleted by admin", zap.String("email", email))
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

// GetAllProvidersHandler handles GET /api/admin/providers.
func (h *AdminHandler) GetAllProvidersHandler(c *gin.Context) {
	providers, err := h.ProviderService.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, providers)
}

// UpdateProviderHandler handles PUT /api/admin/providers/:email.
func (h *AdminHandler) UpdateProviderHandler(c *gin.Context) {
	email := c.Param("email")
	var req models.ProviderSettings
	if !bindJSON(c, &req) {
		return
	}
	updated, err := h.ProviderService.UpdateSettings(c.Request.Context(), email, req)
	if err != nil {
		respondError(c, err, zap.String("providerEmail", email))
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteProviderHandler handles DELETE /api/admin/providers/:email.
func (h *AdminHandler) DeleteProviderHandler(c *gin.Context) {
	email := c.Param("email")
	if err := h.ProviderService.Delete(c.Request.Context(), email); err != nil {
		respondError(c, err, zap.String("providerEmail", email))
		return
	}
	utils.GetLogger().Info("Provider deleted by admin", zap.String("providerEmail", email))
	c.JSON(http.StatusOK, gin.H{"message": "Provider deleted"})
}

// ListReviewsHandler handles GET /api/admin/reviews.
func (h *AdminHandler) ListReviewsHandler(c *gin.Context) {
	rows, err := h.AdminService.Reviews(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// EditReviewHandler handles PUT /api/admin/reviews/:providerEmail/:reviewID.
func (h *AdminHandler) EditReviewHandler(c *gin.Context) {
	providerEmail, reviewID := c.Param("providerEmail"), c.Param("reviewID")
	var req models.ReviewInput
	if !bindJSON(c, &req) {
		return
	}
	updated, err := h.AdminService.EditReview(c.Request.Context(), providerEmail, reviewID, req)
	if err != nil {
		respondError(c, err, zap.String("providerEmail", providerEmail), zap.String("reviewID", reviewID))
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteReviewHandler handles DELETE /api/admin/reviews/:providerEmail/:reviewID.
func (h *AdminHandler) DeleteReviewHandler(c *gin.Context) {
	providerEmail, reviewID := c.Param("providerEmail"), c.Param("reviewID")
	updated, err := h.AdminService.DeleteReview(c.Request.Context(), providerEmail, reviewID)
	if err != nil {
		respondError(c, err, zap.String("providerEmail", providerEmail), zap.String("reviewID", reviewID))
		return
	}
	c.JSON(http.StatusOK, updated)
}
