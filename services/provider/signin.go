package provider

import (
	"context"
	"errors"
	"strings"

	"nafany/database"
	"nafany/models"
	"nafany/utils"

	"golang.org/x/crypto/bcrypt"
)

func (s *DefaultProviderService) Authenticate(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	p, err := s.Repo.GetByEmail(ctx, email)
	if errors.Is(err, database.ErrNotFound) {
		return nil, utils.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)) != nil {
		return nil, utils.ErrInvalidCredentials
	}

	session := models.SessionUser{
		Role:         models.RoleProvider,
		Email:        p.Email,
		Name:         p.Name,
		ProfileImage: p.ProfileImage,
	}
	token, expires, err := s.Tokens.Issue(session)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: token, ExpiresAt: expires, User: session}, nil
}
