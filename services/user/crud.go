package user

import (
	"context"
	"fmt"
	"strings"

	"nafany/models"
	"nafany/utils"

	"golang.org/x/crypto/bcrypt"
)

// UpdateSettings applies the non-nil fields. The email never changes.
func (s *DefaultUserService) UpdateSettings(ctx context.Context, email string, req models.UserSettings) (*models.User, error) {
	req.Name = trimmed(req.Name)
	if err := s.Validator.Struct(req); err != nil {
		return nil, err
	}

	update := models.UserProfileUpdate{
		Name:        req.Name,
		Phone:       req.Phone,
		Governorate: req.Governorate,
	}
	if req.ProfileImage != nil {
		image, err := utils.NormalizeImageDataURL(*req.ProfileImage, s.MaxImageBytes)
		if err != nil {
			return nil, utils.NewValidationError("profileImage", err.Error())
		}
		update.ProfileImage = &image
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		h := string(hash)
		update.PasswordHash = &h
	}
	return s.Repo.UpdateProfile(ctx, email, update)
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}

func (s *DefaultUserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.Repo.GetByEmail(ctx, email)
}

func (s *DefaultUserService) ListAll(ctx context.Context) ([]models.User, error) {
	return s.Repo.ListAll(ctx)
}

func (s *DefaultUserService) Delete(ctx context.Context, email string) error {
	return s.Repo.Delete(ctx, email)
}

func (s *DefaultUserService) SetFCMToken(ctx context.Context, email, token string) error {
	return s.Repo.SetFCMToken(ctx, email, token)
}
