package booking

import (
	"context"
	"time"

	providerRepo "nafany/database/repository/provider"
	userRepo "nafany/database/repository/user"
	"nafany/models"
	"nafany/services/notification"
	"nafany/utils"
)

type BookingService interface {
	CheckAvailability(ctx context.Context, providerEmail, date, timeLabel string) (bool, error)
	Book(ctx context.Context, client models.SessionUser, req models.BookingRequest) (*models.Booking, error)
	UpdateStatus(ctx context.Context, actor models.SessionUser, providerEmail, bookingID string, status models.BookingStatus) (*models.Booking, error)
	ListForProvider(ctx context.Context, providerEmail string) ([]models.Booking, error)
	ListForUser(ctx context.Context, clientEmail string) ([]models.Booking, error)
	TimeLabels() []string
}

// DefaultBookingService is the production implementation. The provider document
// is authoritative; the copy in the user document is a best-effort mirror.
type DefaultBookingService struct {
	Providers providerRepo.ProviderRepository
	Users     userRepo.UserRepository
	Notifier  notification.Notifier
	Validator *utils.Validator
	Now       func() time.Time
	Location  *time.Location
}

var _ BookingService = (*DefaultBookingService)(nil)

func (s *DefaultBookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultBookingService) location() *time.Location {
	if s.Location != nil {
		return s.Location
	}
	return time.UTC
}
