package handlers

import (
	"net/http"
	"strconv"

	"nafany/models"
	"nafany/services/provider"
	"nafany/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProviderHandler struct {
	ProviderService provider.ProviderService
}

func NewProviderHandler(providerService provider.ProviderService) *ProviderHandler {
	return &ProviderHandler{ProviderService: providerService}
}

// RegisterProviderHandler handles POST /api/providers/register.
func (h *ProviderHandler) RegisterProviderHandler(c *gin.Context) {
	var req models.ProviderRegistration
	if !bindJSON(c, &req) {
		return
	}
	created, err := h.ProviderService.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, zap.String("email", req.Email))
		return
	}
	utils.GetLogger().Info("Provider registered",
		zap.String("email", created.Email),
		zap.String("category", created.Category))
	c.JSON(http.StatusCreated, created)
}

// AuthenticateProviderHandler handles POST /api/providers/login.
func (h *ProviderHandler) AuthenticateProviderHandler(c *gin.Context) {
	var req models.LoginInput
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.ProviderService.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err, zap.String("email", req.Email))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// BrowseProvidersHandler handles GET /api/providers?category&profession&governorate&page.
func (h *ProviderHandler) BrowseProvidersHandler(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	result, err := h.ProviderService.Browse(c.Request.Context(), provider.BrowseQuery{
		Category:    c.Query("category"),
		Profession:  c.Query("profession"),
		Governorate: c.Query("governorate"),
		Page:        page,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetProviderHandler handles GET /api/providers/:email and returns the public profile.
func (h *ProviderHandler) GetProviderHandler(c *gin.Context) {
	email := c.Param("email")
	p, err := h.ProviderService.Get(c.Request.Context(), email)
	if err != nil {
		respondError(c, err, zap.String("providerEmail", email))
		return
	}
	c.JSON(http.StatusOK, p.Public())
}

// AddReviewHandler handles POST /api/providers/:email/reviews.
func (h *ProviderHandler) AddReviewHandler(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	email := c.Param("email")
	var req models.ReviewInput
	if !bindJSON(c, &req) {
		return
	}
	updated, err := h.ProviderService.AddReview(c.Request.Context(), email, s, req)
	if err != nil {
		respondError(c, err, zap.String("providerEmail", email))
		return
	}
	c.JSON(http.StatusCreated, updated.Public())
}

// EditOwnReviewHandler handles PUT /api/providers/:email/reviews/:reviewID.
func (h *ProviderHandler) EditOwnReviewHandler(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	email, reviewID := c.Param("email"), c.Param("reviewID")
	var req models.ReviewInput
	if !bindJSON(c, &req) {
		return
	}
	updated, err := h.ProviderService.EditReview(c.Request.Context(), email, reviewID, s, req)
	if err != nil {
		respondError(c, err, zap.String("providerEmail", email), zap.String("reviewID", reviewID))
		return
	}
	c.JSON(http.StatusOK, updated.Public())
}

// DeleteOwnReviewHandler handles DELETE /api/providers/:email/reviews/:reviewID.
func (h *ProviderHandler) DeleteOwnReviewHandler(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	email, reviewID := c.Param("email"), c.Param("reviewID")
	updated, err := h.ProviderService.DeleteReview(c.Request.Context(), email, reviewID, s)
	if err != nil {
		respondError(c, err, zap.String("providerEmail", email), zap.String("reviewID", reviewID))
		return
	}
	c.JSON(http.StatusOK, updated.Public())
}

// MyProfileHandler handles GET /api/me/provider: the full profile plus the rating rank.
func (h *ProviderHandler) MyProfileHandler(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	p, err := h.ProviderService.Get(ctx, s.Email)
	if err != nil {
		respondError(c, err, zap.String("providerEmail", s.Email))
		return
	}
	rank, err := h.ProviderService.Rank(ctx, s.Email)
	if err != nil {
		respondError(c, err, zap.String("providerEmail", s.Email))
		return
	}
	c.JSON(http.StatusOK, gin.H{"provider": p, "ranking": rank})
}

// AddWorkHandler handles POST /api/me/works.
func (h *ProviderHandler) AddWorkHandler(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	var req models.WorkInput
	if !bindJSON(c, &req) {
		return
	}
	work, err := h.ProviderService.AddWork(c.Request.Context(), s.Email, req)
	if err != nil {
		respondError(c, err, zap.String("providerEmail", s.Email))
		return
	}
	c.JSON(http.StatusCreated, work)
}

// EditWorkHandler handles PUT /api/me/works/:workID.
func (h *ProviderHandler) EditWorkHandler(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	workID := c.Param("workID")
	var req models.WorkInput
	if !bindJSON(c, &req) {
		return
	}
	work, err := h.ProviderService.EditWork(c.Request.Context(), s.Email, workID, req)
	if err != nil {
		respondError(c, err, zap.String("providerEmail", s.Email), zap.String("workID", workID))
		return
	}
	c.JSON(http.StatusOK, work)
}

// DeleteWorkHandler handles DELETE /api/me/works/:workID.
func (h *ProviderHandler) DeleteWorkHandler(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	workID := c.Param("workID")
	if err := h.ProviderService.DeleteWork(c.Request.Context(), s.Email, workID); err != nil {
		respondError(c, err, zap.String("providerEmail", s.Email), zap.String("workID", workID))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Work deleted"})
}
