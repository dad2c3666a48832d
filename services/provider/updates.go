package provider

import (
	"context"
	"fmt"
	"strings"

	"nafany/models"
	"nafany/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UpdateSettings applies the non-nil fields. The email is the document key and never changes.
func (s *DefaultProviderService) UpdateSettings(ctx context.Context, email string, req models.ProviderSettings) (*models.Provider, error) {
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
	}
	if err := s.Validator.Struct(req); err != nil {
		return nil, err
	}

	update := models.ProviderProfileUpdate{
		Name:            req.Name,
		NationalID:      req.NationalID,
		Phone:           req.Phone,
		Profession:      req.Profession,
		Category:        req.Category,
		Governorate:     req.Governorate,
		Address:         req.Address,
		Bio:             req.Bio,
		SubscriptionFee: req.SubscriptionFee,
		AllowContact:    req.AllowContact,
		WorkingAreas:    req.WorkingAreas,
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

	p, err := s.Repo.UpdateProfile(ctx, email, update)
	if err != nil {
		utils.GetLogger().Error("UpdateSettings: failed", zap.String("email", email), zap.Error(err))
		return nil, err
	}
	return p, nil
}

func (s *DefaultProviderService) Get(ctx context.Context, email string) (*models.Provider, error) {
	return s.Repo.GetByEmail(ctx, email)
}

func (s *DefaultProviderService) ListAll(ctx context.Context) ([]models.Provider, error) {
	return s.Repo.ListAll(ctx)
}

func (s *DefaultProviderService) Delete(ctx context.Context, email string) error {
	if err := s.Repo.Delete(ctx, email); err != nil {
		return err
	}
	s.invalidateRanking(ctx)
	return nil
}

func (s *DefaultProviderService) SetFCMToken(ctx context.Context, email, token string) error {
	return s.Repo.SetFCMToken(ctx, email, token)
}
