package user

import (
	"context"

	userRepo "nafany/database/repository/user"
	"nafany/models"
	"nafany/utils"
)

type UserService interface {
	Register(ctx context.Context, req models.UserRegistration) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.AuthResponse, error)
	UpdateSettings(ctx context.Context, email string, req models.UserSettings) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ListAll(ctx context.Context) ([]models.User, error)
	Delete(ctx context.Context, email string) error
	SetFCMToken(ctx context.Context, email, token string) error
}

// DefaultUserService is the production implementation.
type DefaultUserService struct {
	Repo          userRepo.UserRepository
	Tokens        *utils.TokenManager
	Validator     *utils.Validator
	MaxImageBytes int
}

var _ UserService = (*DefaultUserService)(nil)
