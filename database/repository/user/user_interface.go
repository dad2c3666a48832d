package userRepo

import (
	"context"
	"time"

	"nafany/models"
)

// UserRepository defines methods for user data access. Users are keyed by username
// with a unique index on email.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	ListAll(ctx context.Context) ([]models.User, error)
	Count(ctx context.Context) (int64, error)
	UpdateProfile(ctx context.Context, email string, update models.UserProfileUpdate) (*models.User, error)
	SetFCMToken(ctx context.Context, email, token string) error
	Delete(ctx context.Context, email string) error

	// AppendBooking mirrors a booking that the provider document already holds.
	AppendBooking(ctx context.Context, email string, booking models.Booking) error
	SetBookingStatus(ctx context.Context, email, bookingID string, status models.BookingStatus, at time.Time) error
}

var (
	_ UserRepository = (*MongoUserRepo)(nil)
	_ UserRepository = (*MemoryUserRepo)(nil)
)
