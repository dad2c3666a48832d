package userRepo

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"nafany/database"
	"nafany/models"
)

// MemoryUserRepo is an in-process UserRepository keyed by username.
type MemoryUserRepo struct {
	mu    sync.RWMutex
	users map[string]*models.User
}

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{users: make(map[string]*models.User)}
}

// byEmail must be called with the lock held.
func (r *MemoryUserRepo) byEmail(email string) (*models.User, bool) {
	for _, u := range r.users {
		if u.Email == email {
			return u, true
		}
	}
	return nil, false
}

func (r *MemoryUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.Username]; ok {
		return fmt.Errorf("failed to create user: %w", database.ErrDuplicate)
	}
	if _, ok := r.byEmail(user.Email); ok {
		return fmt.Errorf("failed to create user: %w", database.ErrDuplicate)
	}
	if user.Bookings == nil {
		user.Bookings = []models.Booking{}
	}
	u := user.Clone()
	r.users[u.Username] = &u
	return nil
}

func (r *MemoryUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byEmail(email)
	if !ok {
		return nil, fmt.Errorf("user %s: %w", email, database.ErrNotFound)
	}
	out := u.Clone()
	return &out, nil
}

func (r *MemoryUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[username]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", username, database.ErrNotFound)
	}
	out := u.Clone()
	return &out, nil
}

func (r *MemoryUserRepo) ListAll(_ context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryUserRepo) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.users)), nil
}

func (r *MemoryUserRepo) mutate(email string, fn func(u *models.User) error) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byEmail(email)
	if !ok {
		return nil, fmt.Errorf("user %s: %w", email, database.ErrNotFound)
	}
	next := u.Clone()
	if err := fn(&next); err != nil {
		return nil, err
	}
	r.users[next.Username] = &next
	out := next.Clone()
	return &out, nil
}

func (r *MemoryUserRepo) UpdateProfile(_ context.Context, email string, upd models.UserProfileUpdate) (*models.User, error) {
	return r.mutate(email, func(u *models.User) error {
		for dst, v := range map[*string]*string{
			&u.Name:         upd.Name,
			&u.PasswordHash: upd.PasswordHash,
			&u.Phone:        upd.Phone,
			&u.Governorate:  upd.Governorate,
			&u.ProfileImage: upd.ProfileImage,
		} {
			if v != nil {
				*dst = *v
			}
		}
		u.UpdatedAt = time.Now().UTC()
		return nil
	})
}

func (r *MemoryUserRepo) SetFCMToken(_ context.Context, email, token string) error {
	_, err := r.mutate(email, func(u *models.User) error {
		u.FCMToken = token
		return nil
	})
	return err
}

func (r *MemoryUserRepo) Delete(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byEmail(email)
	if !ok {
		return fmt.Errorf("user %s: %w", email, database.ErrNotFound)
	}
	delete(r.users, u.Username)
	return nil
}

func (r *MemoryUserRepo) AppendBooking(_ context.Context, email string, booking models.Booking) error {
	_, err := r.mutate(email, func(u *models.User) error {
		u.Bookings = append(u.Bookings, booking)
		u.UpdatedAt = booking.CreatedAt
		return nil
	})
	return err
}

func (r *MemoryUserRepo) SetBookingStatus(_ context.Context, email, bookingID string, status models.BookingStatus, at time.Time) error {
	_, err := r.mutate(email, func(u *models.User) error {
		for i := range u.Bookings {
			if u.Bookings[i].ID == bookingID {
				u.Bookings[i].Status = status
				u.Bookings[i].UpdatedAt = at
				return nil
			}
		}
		return fmt.Errorf("booking %s: %w", bookingID, database.ErrNotFound)
	})
	return err
}
