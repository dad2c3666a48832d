package admin

import (
	"context"
	"crypto/subtle"
	"sort"
	"time"

	"nafany/models"
	"nafany/utils"

	"go.uber.org/zap"
)

// Authenticate compares against the configured credentials. An empty configured password disables sign-in.
func (s *DefaultAdminService) Authenticate(_ context.Context, username, password string) (*models.AuthResponse, error) {
	if s.Password == "" {
		return nil, utils.ErrInvalidCredentials
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.Password)) == 1
	if !userOK || !passOK {
		utils.GetLogger().Warn("Admin sign-in rejected", zap.String("username", username))
		return nil, utils.ErrInvalidCredentials
	}

	session := adminSession
	session.Email = s.Username
	token, expires, err := s.Tokens.Issue(session)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: token, ExpiresAt: expires, User: session}, nil
}

type Dashboard struct {
	Users            int64                         `json:"users"`
	Providers        int64                         `json:"providers"`
	Reviews          int                           `json:"reviews"`
	FeedbackByStatus map[models.FeedbackStatus]int `json:"feedbackByStatus"`
	BookingsByStatus map[models.BookingStatus]int  `json:"bookingsByStatus"`
	GeneratedAt      time.Time                     `json:"generatedAt"`
}

func (s *DefaultAdminService) Dashboard(ctx context.Context) (*Dashboard, error) {
	users, err := s.Users.Count(ctx)
	if err != nil {
		return nil, err
	}
	providers, err := s.Providers.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.Feedback.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	bookings, err := s.Providers.BookingStatusCounts(ctx)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		Users:            users,
		Providers:        int64(len(providers)),
		FeedbackByStatus: make(map[models.FeedbackStatus]int),
		BookingsByStatus: bookings,
		GeneratedAt:      time.Now().UTC(),
	}
	for i := range providers {
		d.Reviews += len(providers[i].Reviews)
	}
	for _, fb := range items {
		d.FeedbackByStatus[fb.Status]++
	}
	return d, nil
}

// ReviewRow is a review flattened out of its provider document.
type ReviewRow struct {
	models.Review
	ProviderEmail string `json:"providerEmail"`
	ProviderName  string `json:"providerName"`
}

// Reviews lists every review across providers, newest first.
func (s *DefaultAdminService) Reviews(ctx context.Context) ([]ReviewRow, error) {
	providers, err := s.Providers.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	rows := []ReviewRow{}
	for i := range providers {
		for _, r := range providers[i].Reviews {
			rows = append(rows, ReviewRow{Review: r, ProviderEmail: providers[i].Email, ProviderName: providers[i].Name})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	return rows, nil
}

func (s *DefaultAdminService) EditReview(ctx context.Context, providerEmail, reviewID string, req models.ReviewInput) (*models.Provider, error) {
	return s.ProviderService.EditReview(ctx, providerEmail, reviewID, adminSession, req)
}

func (s *DefaultAdminService) DeleteReview(ctx context.Context, providerEmail, reviewID string) (*models.Provider, error) {
	return s.ProviderService.DeleteReview(ctx, providerEmail, reviewID, adminSession)
}
