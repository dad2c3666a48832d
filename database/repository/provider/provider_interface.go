package providerRepo

import (
	"context"
	"time"

	"nafany/models"
)

// ListFilter narrows a provider listing. Empty fields match everything.
type ListFilter struct {
	Category    string
	Profession  string
	Governorate string
}

func (f ListFilter) matches(p *models.Provider) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Profession != "" && p.Profession != f.Profession {
		return false
	}
	if f.Governorate != "" && p.Governorate != f.Governorate {
		return false
	}
	return true
}

// ReviewEdit replaces the mutable fields of an existing review.
type ReviewEdit struct {
	ID        string
	Rating    int
	Text      string
	UpdatedAt time.Time
}

// ProviderRepository defines methods for provider data access.
//
// Every method that touches an embedded array is one single-document write
// that also rewrites the aggregates derived from the resulting array.
type ProviderRepository interface {
	Create(ctx context.Context, provider *models.Provider) error
	GetByEmail(ctx context.Context, email string) (*models.Provider, error)
	List(ctx context.Context, filter ListFilter) ([]models.Provider, error)
	ListAll(ctx context.Context) ([]models.Provider, error)
	Count(ctx context.Context) (int64, error)
	UpdateProfile(ctx context.Context, email string, update models.ProviderProfileUpdate) (*models.Provider, error)
	SetFCMToken(ctx context.Context, email, token string) error
	Delete(ctx context.Context, email string) error

	// AppendReview adds a review and recomputes ratingsCount, ratingsTotal and averageRating.
	AppendReview(ctx context.Context, email string, review models.Review) (*models.Provider, error)
	// ReplaceReview returns ErrNotFound when the provider or the review is missing.
	ReplaceReview(ctx context.Context, email string, edit ReviewEdit) (*models.Provider, error)
	// RemoveReview leaves the document unchanged when no review has the id.
	RemoveReview(ctx context.Context, email, reviewID string) (*models.Provider, error)

	AppendWork(ctx context.Context, email string, work models.Work) (*models.Provider, error)
	ReplaceWork(ctx context.Context, email string, work models.Work) (*models.Provider, error)
	RemoveWork(ctx context.Context, email, workID string) (*models.Provider, error)

	// AppendBookingIfFree pushes the booking unless an active booking holds the same
	// date and time, in which case it returns ErrSlotTaken.
	AppendBookingIfFree(ctx context.Context, email string, booking models.Booking) error
	// SetBookingStatus moves the booking from one status to another. It returns ErrConflict
	// when the booking no longer holds the from status.
	SetBookingStatus(ctx context.Context, email, bookingID string, from, to models.BookingStatus, at time.Time) (*models.Booking, error)
	CountActiveBookings(ctx context.Context, email, date, timeLabel string) (int, error)
	// BookingStatusCounts tallies embedded bookings across all providers.
	BookingStatusCounts(ctx context.Context) (map[models.BookingStatus]int, error)
}

var (
	_ ProviderRepository = (*MongoProviderRepo)(nil)
	_ ProviderRepository = (*MemoryProviderRepo)(nil)
)
