package admin

import (
	"context"

	feedbackRepo "nafany/database/repository/feedback"
	providerRepo "nafany/database/repository/provider"
	userRepo "nafany/database/repository/user"
	"nafany/models"
	"nafany/services/provider"
	"nafany/utils"
)

type AdminService interface {
	Authenticate(ctx context.Context, username, password string) (*models.AuthResponse, error)
	Dashboard(ctx context.Context) (*Dashboard, error)
	Reviews(ctx context.Context) ([]ReviewRow, error)
	EditReview(ctx context.Context, providerEmail, reviewID string, req models.ReviewInput) (*models.Provider, error)
	DeleteReview(ctx context.Context, providerEmail, reviewID string) (*models.Provider, error)
}

// DefaultAdminService is the production implementation. Credentials come from configuration.
type DefaultAdminService struct {
	Username  string
	Password  string
	Tokens    *utils.TokenManager
	Users     userRepo.UserRepository
	Providers providerRepo.ProviderRepository
	Feedback  feedbackRepo.FeedbackRepository
	// Reviews are moderated through the provider service so aggregates stay consistent.
	ProviderService provider.ProviderService
}

var _ AdminService = (*DefaultAdminService)(nil)

var adminSession = models.SessionUser{Role: models.RoleAdmin, Name: "Admin"}
