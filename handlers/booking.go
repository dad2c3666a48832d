package handlers

import (
	"net/http"

	"nafany/models"
	"nafany/services/booking"
	"nafany/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BookingHandler struct {
	BookingService booking.BookingService
}

func NewBookingHandler(bookingService booking.BookingService) *BookingHandler {
	return &BookingHandler{BookingService: bookingService}
}

// TimeLabelsHandler handles GET /api/booking/times.
func (h *BookingHandler) TimeLabelsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"times": h.BookingService.TimeLabels()})
}

// AvailabilityHandler handles GET /api/booking/availability?provider&date&time.
func (h *BookingHandler) AvailabilityHandler(c *gin.Context) {
	providerEmail := c.Query("provider")
	date, timeLabel := c.Query("date"), c.Query("time")
	if providerEmail == "" {
		respondError(c, utils.NewValidationError("provider", "is required"))
		return
	}
	available, err := h.BookingService.CheckAvailability(c.Request.Context(), providerEmail, date, timeLabel)
	if err != nil {
		respondError(c, err, zap.String("providerEmail", providerEmail), zap.String("date", date))
		return
	}
	c.JSON(http.StatusOK, gin.H{"available": available})
}

// BookHandler handles POST /api/booking.
func (h *BookingHandler) BookHandler(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	var req models.BookingRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.BookingService.Book(c.Request.Context(), s, req)
	if err != nil {
		respondError(c, err, zap.String("providerEmail", req.ProviderEmail), zap.String("client", s.Email))
		return
	}
	c.JSON(http.StatusCreated, b)
}

// MyBookingsHandler handles GET /api/booking/mine.
func (h *BookingHandler) MyBookingsHandler(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	list, err := h.BookingService.ListForUser(c.Request.Context(), s.Email)
	if err != nil {
		respondError(c, err, zap.String("client", s.Email))
		return
	}
	c.JSON(http.StatusOK, list)
}

// CancelBookingHandler handles PUT /api/booking/:providerEmail/:bookingID/cancel.
func (h *BookingHandler) CancelBookingHandler(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	providerEmail, bookingID := c.Param("providerEmail"), c.Param("bookingID")
	b, err := h.BookingService.UpdateStatus(c.Request.Context(), s, providerEmail, bookingID, models.BookingCancelled)
	if err != nil {
		respondError(c, err, zap.String("providerEmail", providerEmail), zap.String("bookingID", bookingID))
		return
	}
	c.JSON(http.StatusOK, b)
}

// ProviderBookingsHandler handles GET /api/me/bookings.
func (h *BookingHandler) ProviderBookingsHandler(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	list, err := h.BookingService.ListForProvider(c.Request.Context(), s.Email)
	if err != nil {
		respondError(c, err, zap.String("providerEmail", s.Email))
		return
	}
	c.JSON(http.StatusOK, list)
}

// UpdateBookingStatusHandler handles PUT /api/me/bookings/:bookingID/status.
func (h *BookingHandler) UpdateBookingStatusHandler(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	bookingID := c.Param("bookingID")
	var req models.BookingStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.BookingService.UpdateStatus(c.Request.Context(), s, s.Email, bookingID, req.Status)
	if err != nil {
		respondError(c, err, zap.String("providerEmail", s.Email), zap.String("bookingID", bookingID))
		return
	}
	c.JSON(http.StatusOK, b)
}

// AdminUpdateBookingStatusHandler handles PUT /api/admin/bookings/:providerEmail/:bookingID/status.
func (h *BookingHandler) AdminUpdateBookingStatusHandler(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	providerEmail, bookingID := c.Param("providerEmail"), c.Param("bookingID")
	var req models.BookingStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.BookingService.UpdateStatus(c.Request.Context(), s, providerEmail, bookingID, req.Status)
	if err != nil {
		respondError(c, err, zap.String("providerEmail", providerEmail), zap.String("bookingID", bookingID))
		return
	}
	c.JSON(http.StatusOK, b)
}
