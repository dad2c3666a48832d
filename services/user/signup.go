package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"nafany/database"
	"nafany/models"
	"nafany/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UsernameFromEmail derives the username as the local part of the address.
func UsernameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}

// Register validates the payload, rejects a taken email or username without writing, and stores the user.
func (s *DefaultUserService) Register(ctx context.Context, req models.UserRegistration) (*models.User, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if err := s.Validator.Struct(req); err != nil {
		return nil, err
	}

	image, err := utils.NormalizeImageDataURL(req.ProfileImage, s.MaxImageBytes)
	if err != nil {
		return nil, utils.NewValidationError("profileImage", err.Error())
	}

	if err := s.ensureAvailable(ctx, req.Email); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &models.User{
		Username:     UsernameFromEmail(req.Email),
		Email:        req.Email,
		Name:         req.Name,
		Phone:        req.Phone,
		Governorate:  req.Governorate,
		Role:         models.RoleUser,
		PasswordHash: string(hash),
		ProfileImage: image,
		Bookings:     []models.Booking{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		utils.GetLogger().Error("Register: failed to create user", zap.String("email", req.Email), zap.Error(err))
		return nil, err
	}

	utils.GetLogger().Info("User registered", zap.String("email", user.Email))
	return user, nil
}

func (s *DefaultUserService) ensureAvailable(ctx context.Context, email string) error {
	if _, err := s.Repo.GetByEmail(ctx, email); err == nil {
		return fmt.Errorf("email %s: %w", email, database.ErrDuplicate)
	} else if !errors.Is(err, database.ErrNotFound) {
		return err
	}

	username := UsernameFromEmail(email)
	if _, err := s.Repo.GetByUsername(ctx, username); err == nil {
		return fmt.Errorf("username %s: %w", username, database.ErrDuplicate)
	} else if !errors.Is(err, database.ErrNotFound) {
		return err
	}
	return nil
}
