package provider

import (
	"context"
	"strings"

	providerRepo "nafany/database/repository/provider"
	"nafany/models"
	"nafany/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AddReview appends a review and recomputes the rating aggregates in the same write.
// The rating is checked before the store is touched.
func (s *DefaultProviderService) AddReview(ctx context.Context, providerEmail string, author models.SessionUser, req models.ReviewInput) (*models.Provider, error) {
	req.Review = strings.TrimSpace(req.Review)
	if err := s.Validator.Struct(req); err != nil {
		return nil, err
	}

	review := models.Review{
		ID:          uuid.New().String(),
		ClientEmail: author.Email,
		ClientName:  author.Name,
		Rating:      req.Rating,
		Review:      req.Review,
		CreatedAt:   s.now(),
	}
	p, err := s.Repo.AppendReview(ctx, providerEmail, review)
	if err != nil {
		utils.GetLogger().Error("AddReview: failed", zap.String("provider", providerEmail), zap.Error(err))
		return nil, err
	}
	s.invalidateRanking(ctx)
	return p, nil
}

// EditReview replaces rating and text of a review owned by actor, or any review for an admin.
func (s *DefaultProviderService) EditReview(ctx context.Context, providerEmail, reviewID string, actor models.SessionUser, req models.ReviewInput) (*models.Provider, error) {
	req.Review = strings.TrimSpace(req.Review)
	if err := s.Validator.Struct(req); err != nil {
		return nil, err
	}

	if !actor.IsAdmin() {
		current, err := s.Repo.GetByEmail(ctx, providerEmail)
		if err != nil {
			return nil, err
		}
		if review, ok := findReview(current.Reviews, reviewID); ok && review.ClientEmail != actor.Email {
			return nil, utils.ErrForbidden
		}
	}

	p, err := s.Repo.ReplaceReview(ctx, providerEmail, providerRepo.ReviewEdit{
		ID:        reviewID,
		Rating:    req.Rating,
		Text:      req.Review,
		UpdatedAt: s.now(),
	})
	if err != nil {
		return nil, err
	}
	s.invalidateRanking(ctx)
	return p, nil
}

// DeleteReview removes a review. Deleting an id that does not exist succeeds without changes.
func (s *DefaultProviderService) DeleteReview(ctx context.Context, providerEmail, reviewID string, actor models.SessionUser) (*models.Provider, error) {
	if !actor.IsAdmin() {
		current, err := s.Repo.GetByEmail(ctx, providerEmail)
		if err != nil {
			return nil, err
		}
		if review, ok := findReview(current.Reviews, reviewID); ok && review.ClientEmail != actor.Email {
			return nil, utils.ErrForbidden
		}
	}

	p, err := s.Repo.RemoveReview(ctx, providerEmail, reviewID)
	if err != nil {
		return nil, err
	}
	s.invalidateRanking(ctx)
	return p, nil
}

func findReview(reviews []models.Review, id string) (models.Review, bool) {
	for _, r := range reviews {
		if r.ID == id {
			return r, true
		}
	}
	return models.Review{}, false
}
