package booking

import (
	"context"
	"errors"
	"fmt"

	"nafany/database"
	"nafany/models"
	"nafany/utils"

	"go.uber.org/zap"
)

// transitions lists the allowed status changes. Completed and cancelled are terminal.
var transitions = map[models.BookingStatus][]models.BookingStatus{
	models.BookingPending:  {models.BookingApproved, models.BookingCancelled},
	models.BookingApproved: {models.BookingCompleted, models.BookingCancelled},
}

func canTransition(from, to models.BookingStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// UpdateStatus applies a status change. The provider may approve, complete or cancel its
// bookings, a client may only cancel their own, and an admin may make any allowed change.
func (s *DefaultBookingService) UpdateStatus(ctx context.Context, actor models.SessionUser, providerEmail, bookingID string, status models.BookingStatus) (*models.Booking, error) {
	logger := utils.GetLogger()

	if !status.Valid() {
		return nil, utils.NewValidationError("status", "is invalid")
	}

	provider, err := s.Providers.GetByEmail(ctx, providerEmail)
	if err != nil {
		return nil, err
	}
	var current *models.Booking
	for i := range provider.Bookings {
		if provider.Bookings[i].ID == bookingID {
			current = &provider.Bookings[i]
			break
		}
	}
	if current == nil {
		return nil, fmt.Errorf("booking %s: %w", bookingID, database.ErrNotFound)
	}

	switch actor.Role {
	case models.RoleAdmin:
	case models.RoleProvider:
		if actor.Email != providerEmail {
			return nil, utils.ErrForbidden
		}
	case models.RoleUser:
		if actor.Email != current.ClientEmail || status != models.BookingCancelled {
			return nil, utils.ErrForbidden
		}
	default:
		return nil, utils.ErrForbidden
	}

	if !canTransition(current.Status, status) {
		return nil, utils.NewValidationError("status",
			fmt.Sprintf("cannot change from %s to %s", current.Status, status))
	}

	at := s.now().UTC()
	updated, err := s.Providers.SetBookingStatus(ctx, providerEmail, bookingID, current.Status, status, at)
	if err != nil {
		if errors.Is(err, database.ErrConflict) {
			logger.Warn("UpdateStatus: booking changed before the write",
				zap.String("bookingId", bookingID), zap.String("expected", string(current.Status)))
		}
		return nil, err
	}

	if err := s.Users.SetBookingStatus(ctx, updated.ClientEmail, bookingID, status, at); err != nil {
		logger.Error("UpdateStatus: failed to mirror status on user",
			zap.String("bookingId", bookingID), zap.String("client", updated.ClientEmail), zap.Error(err))
	}

	data := map[string]string{"type": "booking_status", "bookingId": bookingID, "status": string(status)}
	body := fmt.Sprintf("%s %s: %s", updated.BookingDate, updated.BookingTime, status)
	if actor.Role == models.RoleUser {
		err = s.Notifier.NotifyProvider(ctx, providerEmail, "تم إلغاء حجز", body, data)
	} else {
		err = s.Notifier.NotifyUser(ctx, updated.ClientEmail, "تحديث حالة الحجز", body, data)
	}
	if err != nil {
		logger.Warn("UpdateStatus: failed to notify", zap.String("bookingId", bookingID), zap.Error(err))
	}

	logger.Info("Booking status changed",
		zap.String("bookingId", bookingID), zap.String("from", string(current.Status)), zap.String("to", string(status)))
	return updated, nil
}
