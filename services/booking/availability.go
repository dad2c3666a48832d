package booking

import (
	"context"
	"time"

	"nafany/models"
	"nafany/utils"
)

// validateSlot checks the date format, rejects past days and unknown time labels.
func (s *DefaultBookingService) validateSlot(date, timeLabel string) error {
	day, err := time.ParseInLocation(utils.ISODateLayout, date, s.location())
	if err != nil {
		return utils.NewValidationError("bookingDate", "must be a date in YYYY-MM-DD format")
	}
	now := s.now().In(s.location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location())
	if day.Before(today) {
		return utils.NewValidationError("bookingDate", "must not be in the past")
	}
	if !models.IsBookingTimeLabel(timeLabel) {
		return utils.NewValidationError("bookingTime", "must be one of the offered times")
	}
	return nil
}

// CheckAvailability reports whether no pending or approved booking holds the slot.
// Cancelled and completed bookings never block.
func (s *DefaultBookingService) CheckAvailability(ctx context.Context, providerEmail, date, timeLabel string) (bool, error) {
	if err := s.validateSlot(date, timeLabel); err != nil {
		return false, err
	}
	n, err := s.Providers.CountActiveBookings(ctx, providerEmail, date, timeLabel)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

func (s *DefaultBookingService) TimeLabels() []string {
	return append([]string(nil), models.BookingTimeLabels...)
}
