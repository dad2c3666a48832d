package handlers

import (
	"net/http"

	"nafany/models"
	"nafany/services/feedback"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type FeedbackHandler struct {
	FeedbackService feedback.FeedbackService
}

func NewFeedbackHandler(feedbackService feedback.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{FeedbackService: feedbackService}
}

// SubmitFeedbackHandler handles POST /api/feedback.
func (h *FeedbackHandler) SubmitFeedbackHandler(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	var req models.FeedbackInput
	if !bindJSON(c, &req) {
		return
	}
	fb, err := h.FeedbackService.Submit(c.Request.Context(), s, req)
	if err != nil {
		respondError(c, err, zap.String("email", s.Email))
		return
	}
	c.JSON(http.StatusCreated, fb)
}

// MyFeedbackHandler handles GET /api/feedback/mine.
func (h *FeedbackHandler) MyFeedbackHandler(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	list, err := h.FeedbackService.ListMine(c.Request.Context(), s)
	if err != nil {
		respondError(c, err, zap.String("email", s.Email))
		return
	}
	c.JSON(http.StatusOK, list)
}

// ListFeedbackHandler handles GET /api/admin/feedback.
func (h *FeedbackHandler) ListFeedbackHandler(c *gin.Context) {
	list, err := h.FeedbackService.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// RespondFeedbackHandler handles PUT /api/admin/feedback/:id/response.
func (h *FeedbackHandler) RespondFeedbackHandler(c *gin.Context) {
	id := c.Param("id")
	var req models.FeedbackResponseInput
	if !bindJSON(c, &req) {
		return
	}
	fb, err := h.FeedbackService.Respond(c.Request.Context(), id, req.Response)
	if err != nil {
		respondError(c, err, zap.String("feedbackID", id))
		return
	}
	c.JSON(http.StatusOK, fb)
}

// SetFeedbackStatusHandler handles PUT /api/admin/feedback/:id/status.
func (h *FeedbackHandler) SetFeedbackStatusHandler(c *gin.Context) {
	id := c.Param("id")
	var req models.FeedbackStatusInput
	if !bindJSON(c, &req) {
		return
	}
	fb, err := h.FeedbackService.SetStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, err, zap.String("feedbackID", id))
		return
	}
	c.JSON(http.StatusOK, fb)
}

// DeleteFeedbackHandler handles DELETE /api/admin/feedback/:id.
func (h *FeedbackHandler) DeleteFeedbackHandler(c *gin.Context) {
	id := c.Param("id")
	if err := h.FeedbackService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err, zap.String("feedbackID", id))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Feedback deleted"})
}
