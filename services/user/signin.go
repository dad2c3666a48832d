package user

import (
	"context"
	"errors"
	"strings"

	"nafany/database"
	"nafany/models"
	"nafany/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Authenticate checks the password and issues a session token with the user role.
func (s *DefaultUserService) Authenticate(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.Repo.GetByEmail(ctx, email)
	if errors.Is(err, database.ErrNotFound) {
		return nil, utils.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		utils.GetLogger().Info("Authenticate: wrong password", zap.String("email", email))
		return nil, utils.ErrInvalidCredentials
	}

	session := models.SessionUser{
		Role:         models.RoleUser,
		Email:        user.Email,
		Name:         user.Name,
		ProfileImage: user.ProfileImage,
	}
	token, expires, err := s.Tokens.Issue(session)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: token, ExpiresAt: expires, User: session}, nil
}
