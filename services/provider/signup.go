package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"nafany/database"
	"nafany/models"
	"nafany/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Register validates the payload, rejects an email already in serviceProviders without
// writing, and creates the provider with empty collections and zero aggregates.
func (s *DefaultProviderService) Register(ctx context.Context, req models.ProviderRegistration) (*models.Provider, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if err := s.Validator.Struct(req); err != nil {
		return nil, err
	}

	images := map[string]*string{
		"profileImage": &req.ProfileImage,
		"idFrontImage": &req.IDFrontImage,
		"idBackImage":  &req.IDBackImage,
	}
	for field, v := range images {
		normalized, err := utils.NormalizeImageDataURL(*v, s.MaxImageBytes)
		if err != nil {
			return nil, utils.NewValidationError(field, err.Error())
		}
		*v = normalized
	}

	if _, err := s.Repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("email %s: %w", req.Email, database.ErrDuplicate)
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	workingAreas := req.WorkingAreas
	if workingAreas == nil {
		workingAreas = []string{}
	}
	now := s.now()
	p := &models.Provider{
		Email:           req.Email,
		Name:            req.Name,
		Role:            models.RoleProvider,
		PasswordHash:    string(hash),
		NationalID:      req.NationalID,
		Phone:           req.Phone,
		Profession:      req.Profession,
		Category:        req.Category,
		Governorate:     req.Governorate,
		Address:         req.Address,
		Bio:             req.Bio,
		ProfileImage:    req.ProfileImage,
		IDFrontImage:    req.IDFrontImage,
		IDBackImage:     req.IDBackImage,
		SubscriptionFee: req.SubscriptionFee,
		AllowContact:    true,
		WorkingAreas:    workingAreas,
		Works:           []models.Work{},
		Reviews:         []models.Review{},
		Bookings:        []models.Booking{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.Repo.Create(ctx, p); err != nil {
		utils.GetLogger().Error("Register: failed to create provider", zap.String("email", req.Email), zap.Error(err))
		return nil, err
	}
	s.invalidateRanking(ctx)

	utils.GetLogger().Info("Provider registered", zap.String("email", p.Email), zap.String("profession", p.Profession))
	return p, nil
}
