package provider

import (
	"context"
	"time"

	providerRepo "nafany/database/repository/provider"
	"nafany/models"
	"nafany/utils"
)

type ProviderService interface {
	Register(ctx context.Context, req models.ProviderRegistration) (*models.Provider, error)
	Authenticate(ctx context.Context, email, password string) (*models.AuthResponse, error)
	UpdateSettings(ctx context.Context, email string, req models.ProviderSettings) (*models.Provider, error)
	Get(ctx context.Context, email string) (*models.Provider, error)
	ListAll(ctx context.Context) ([]models.Provider, error)
	Delete(ctx context.Context, email string) error
	SetFCMToken(ctx context.Context, email, token string) error

	AddReview(ctx context.Context, providerEmail string, author models.SessionUser, req models.ReviewInput) (*models.Provider, error)
	EditReview(ctx context.Context, providerEmail, reviewID string, actor models.SessionUser, req models.ReviewInput) (*models.Provider, error)
	DeleteReview(ctx context.Context, providerEmail, reviewID string, actor models.SessionUser) (*models.Provider, error)

	AddWork(ctx context.Context, email string, req models.WorkInput) (*models.Work, error)
	EditWork(ctx context.Context, email, workID string, req models.WorkInput) (*models.Work, error)
	DeleteWork(ctx context.Context, email, workID string) error

	Browse(ctx context.Context, q BrowseQuery) (*BrowseResult, error)
	Rank(ctx context.Context, email string) (*Ranking, error)
}

// DefaultProviderService is the production implementation.
type DefaultProviderService struct {
	Repo          providerRepo.ProviderRepository
	Tokens        *utils.TokenManager
	Validator     *utils.Validator
	Cache         utils.Cache
	RankingTTL    time.Duration
	PageSize      int
	MaxImageBytes int
	Now           func() time.Time
}

var _ ProviderService = (*DefaultProviderService)(nil)

func (s *DefaultProviderService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
