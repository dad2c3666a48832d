package booking

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"nafany/database"
	"nafany/models"
	"nafany/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Book reserves a slot for client. The provider write is conditional on the slot still
// being free, so a concurrent request for the same slot gets database.ErrSlotTaken.
func (s *DefaultBookingService) Book(ctx context.Context, client models.SessionUser, req models.BookingRequest) (*models.Booking, error) {
	logger := utils.GetLogger()

	req.ProviderEmail = strings.ToLower(strings.TrimSpace(req.ProviderEmail))
	req.Note = strings.TrimSpace(req.Note)
	if err := s.Validator.Struct(req); err != nil {
		return nil, err
	}
	if err := s.validateSlot(req.BookingDate, req.BookingTime); err != nil {
		return nil, err
	}

	provider, err := s.Providers.GetByEmail(ctx, req.ProviderEmail)
	if err != nil {
		return nil, err
	}

	available, err := s.CheckAvailability(ctx, req.ProviderEmail, req.BookingDate, req.BookingTime)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, database.ErrSlotTaken
	}

	now := s.now().UTC()
	booking := models.Booking{
		ID:            uuid.New().String(),
		ProviderEmail: provider.Email,
		ProviderName:  provider.Name,
		Profession:    provider.Profession,
		ClientEmail:   client.Email,
		ClientName:    client.Name,
		BookingDate:   req.BookingDate,
		BookingTime:   req.BookingTime,
		Note:          req.Note,
		Status:        models.BookingPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.Providers.AppendBookingIfFree(ctx, provider.Email, booking); err != nil {
		return nil, err
	}

	if err := s.Users.AppendBooking(ctx, client.Email, booking); err != nil {
		logger.Error("Book: failed to mirror booking on user",
			zap.String("bookingId", booking.ID), zap.String("client", client.Email), zap.Error(err))
	}

	title := "حجز جديد"
	body := fmt.Sprintf("%s طلب موعداً يوم %s الساعة %s", client.Name, booking.BookingDate, booking.BookingTime)
	if err := s.Notifier.NotifyProvider(ctx, provider.Email, title, body, map[string]string{
		"type":      "booking_created",
		"bookingId": booking.ID,
	}); err != nil {
		logger.Warn("Book: failed to notify provider", zap.String("provider", provider.Email), zap.Error(err))
	}

	logger.Info("Booking created",
		zap.String("bookingId", booking.ID),
		zap.String("provider", provider.Email),
		zap.String("date", booking.BookingDate))
	return &booking, nil
}

func (s *DefaultBookingService) ListForProvider(ctx context.Context, providerEmail string) ([]models.Booking, error) {
	p, err := s.Providers.GetByEmail(ctx, providerEmail)
	if err != nil {
		return nil, err
	}
	return sortBookings(p.Bookings), nil
}

func (s *DefaultBookingService) ListForUser(ctx context.Context, clientEmail string) ([]models.Booking, error) {
	u, err := s.Users.GetByEmail(ctx, clientEmail)
	if err != nil {
		return nil, err
	}
	return sortBookings(u.Bookings), nil
}

// sortBookings orders newest requests first.
func sortBookings(in []models.Booking) []models.Booking {
	out := append([]models.Booking{}, in...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}
