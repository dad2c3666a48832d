package providerRepo

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"nafany/database"
	"nafany/models"
)

// MemoryProviderRepo is an in-process ProviderRepository. Each mutation holds the
// write lock for its whole read-modify-write, matching the single-document
// atomicity of the Mongo implementation.
type MemoryProviderRepo struct {
	mu        sync.RWMutex
	providers map[string]*models.Provider
}

func NewMemoryProviderRepo() *MemoryProviderRepo {
	return &MemoryProviderRepo{providers: make(map[string]*models.Provider)}
}

func (r *MemoryProviderRepo) Create(_ context.Context, provider *models.Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.providers[provider.Email]; ok {
		return fmt.Errorf("failed to create provider: %w", database.ErrDuplicate)
	}
	normalizeArrays(provider)
	p := provider.Clone()
	r.providers[p.Email] = &p
	return nil
}

func (r *MemoryProviderRepo) GetByEmail(_ context.Context, email string) (*models.Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[email]
	if !ok {
		return nil, fmt.Errorf("provider %s: %w", email, database.ErrNotFound)
	}
	out := p.Clone()
	return &out, nil
}

func (r *MemoryProviderRepo) List(_ context.Context, filter ListFilter) ([]models.Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.Provider{}
	for _, p := range r.providers {
		if filter.matches(p) {
			out = append(out, p.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemoryProviderRepo) ListAll(ctx context.Context) ([]models.Provider, error) {
	return r.List(ctx, ListFilter{})
}

func (r *MemoryProviderRepo) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.providers)), nil
}

// mutate runs fn against the stored provider under the write lock and returns a copy of the result.
func (r *MemoryProviderRepo) mutate(email string, fn func(p *models.Provider) error) (*models.Provider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.providers[email]
	if !ok {
		return nil, fmt.Errorf("provider %s: %w", email, database.ErrNotFound)
	}
	next := p.Clone()
	if err := fn(&next); err != nil {
		return nil, err
	}
	r.providers[email] = &next
	out := next.Clone()
	return &out, nil
}

func (r *MemoryProviderRepo) UpdateProfile(_ context.Context, email string, u models.ProviderProfileUpdate) (*models.Provider, error) {
	return r.mutate(email, func(p *models.Provider) error {
		assign(&p.Name, u.Name)
		assign(&p.PasswordHash, u.PasswordHash)
		assign(&p.NationalID, u.NationalID)
		assign(&p.Phone, u.Phone)
		assign(&p.Profession, u.Profession)
		assign(&p.Category, u.Category)
		assign(&p.Governorate, u.Governorate)
		assign(&p.Address, u.Address)
		assign(&p.Bio, u.Bio)
		assign(&p.ProfileImage, u.ProfileImage)
		if u.SubscriptionFee != nil {
			p.SubscriptionFee = *u.SubscriptionFee
		}
		if u.AllowContact != nil {
			p.AllowContact = *u.AllowContact
		}
		if u.WorkingAreas != nil {
			p.WorkingAreas = append([]string{}, (*u.WorkingAreas)...)
		}
		p.UpdatedAt = time.Now().UTC()
		return nil
	})
}

func assign(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func (r *MemoryProviderRepo) SetFCMToken(_ context.Context, email, token string) error {
	_, err := r.mutate(email, func(p *models.Provider) error {
		p.FCMToken = token
		return nil
	})
	return err
}

func (r *MemoryProviderRepo) Delete(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.providers[email]; !ok {
		return fmt.Errorf("provider %s: %w", email, database.ErrNotFound)
	}
	delete(r.providers, email)
	return nil
}

func (r *MemoryProviderRepo) AppendReview(_ context.Context, email string, review models.Review) (*models.Provider, error) {
	return r.mutate(email, func(p *models.Provider) error {
		p.Reviews = append(p.Reviews, review)
		p.ApplyRatings()
		p.UpdatedAt = review.CreatedAt
		return nil
	})
}

func (r *MemoryProviderRepo) ReplaceReview(_ context.Context, email string, edit ReviewEdit) (*models.Provider, error) {
	return r.mutate(email, func(p *models.Provider) error {
		for i := range p.Reviews {
			if p.Reviews[i].ID == edit.ID {
				at := edit.UpdatedAt
				p.Reviews[i].Rating = edit.Rating
				p.Reviews[i].Review = edit.Text
				p.Reviews[i].UpdatedAt = &at
				p.ApplyRatings()
				p.UpdatedAt = at
				return nil
			}
		}
		return fmt.Errorf("review %s: %w", edit.ID, database.ErrNotFound)
	})
}

func (r *MemoryProviderRepo) RemoveReview(_ context.Context, email, reviewID string) (*models.Provider, error) {
	return r.mutate(email, func(p *models.Provider) error {
		kept := p.Reviews[:0]
		for _, rv := range p.Reviews {
			if rv.ID != reviewID {
				kept = append(kept, rv)
			}
		}
		p.Reviews = kept
		p.ApplyRatings()
		return nil
	})
}

func (r *MemoryProviderRepo) AppendWork(_ context.Context, email string, work models.Work) (*models.Provider, error) {
	return r.mutate(email, func(p *models.Provider) error {
		p.Works = append(p.Works, work.Clone())
		p.ApplyWorksCount()
		p.UpdatedAt = work.CreatedAt
		return nil
	})
}

func (r *MemoryProviderRepo) ReplaceWork(_ context.Context, email string, work models.Work) (*models.Provider, error) {
	return r.mutate(email, func(p *models.Provider) error {
		for i := range p.Works {
			if p.Works[i].ID == work.ID {
				p.Works[i].Title = work.Title
				p.Works[i].Description = work.Description
				p.Works[i].Images = append([]string{}, work.Images...)
				p.ApplyWorksCount()
				p.UpdatedAt = time.Now().UTC()
				return nil
			}
		}
		return fmt.Errorf("work %s: %w", work.ID, database.ErrNotFound)
	})
}

func (r *MemoryProviderRepo) RemoveWork(_ context.Context, email, workID string) (*models.Provider, error) {
	return r.mutate(email, func(p *models.Provider) error {
		kept := p.Works[:0]
		for _, w := range p.Works {
			if w.ID != workID {
				kept = append(kept, w)
			}
		}
		p.Works = kept
		p.ApplyWorksCount()
		return nil
	})
}

func (r *MemoryProviderRepo) AppendBookingIfFree(_ context.Context, email string, booking models.Booking) error {
	_, err := r.mutate(email, func(p *models.Provider) error {
		for _, b := range p.Bookings {
			if b.SameSlot(booking.BookingDate, booking.BookingTime) {
				return database.ErrSlotTaken
			}
		}
		p.Bookings = append(p.Bookings, booking)
		p.UpdatedAt = booking.CreatedAt
		return nil
	})
	return err
}

func (r *MemoryProviderRepo) SetBookingStatus(_ context.Context, email, bookingID string, from, to models.BookingStatus, at time.Time) (*models.Booking, error) {
	var updated models.Booking
	_, err := r.mutate(email, func(p *models.Provider) error {
		for i := range p.Bookings {
			if p.Bookings[i].ID == bookingID {
				if p.Bookings[i].Status != from {
					return fmt.Errorf("booking %s is %s: %w", bookingID, p.Bookings[i].Status, database.ErrConflict)
				}
				p.Bookings[i].Status = to
				p.Bookings[i].UpdatedAt = at
				p.UpdatedAt = at
				updated = p.Bookings[i]
				return nil
			}
		}
		return fmt.Errorf("booking %s: %w", bookingID, database.ErrNotFound)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *MemoryProviderRepo) CountActiveBookings(_ context.Context, email, date, timeLabel string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[email]
	if !ok {
		return 0, nil
	}
	n := 0
	for _, b := range p.Bookings {
		if b.SameSlot(date, timeLabel) {
			n++
		}
	}
	return n, nil
}

func (r *MemoryProviderRepo) BookingStatusCounts(_ context.Context) (map[models.BookingStatus]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[models.BookingStatus]int)
	for _, p := range r.providers {
		for _, b := range p.Bookings {
			counts[b.Status]++
		}
	}
	return counts, nil
}
