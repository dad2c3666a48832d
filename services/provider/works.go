package provider

import (
	"context"
	"fmt"
	"strings"

	"nafany/database"
	"nafany/models"
	"nafany/utils"

	"github.com/google/uuid"
)

func (s *DefaultProviderService) workFromInput(req models.WorkInput) (models.WorkInput, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if err := s.Validator.Struct(req); err != nil {
		return req, err
	}
	images := make([]string, 0, len(req.Images))
	for i, img := range req.Images {
		normalized, err := utils.NormalizeImageDataURL(img, s.MaxImageBytes)
		if err != nil {
			return req, utils.NewValidationError(fmt.Sprintf("images[%d]", i), err.Error())
		}
		if normalized != "" {
			images = append(images, normalized)
		}
	}
	req.Images = images
	return req, nil
}

// AddWork appends a portfolio entry; worksCount follows the array length.
func (s *DefaultProviderService) AddWork(ctx context.Context, email string, req models.WorkInput) (*models.Work, error) {
	req, err := s.workFromInput(req)
	if err != nil {
		return nil, err
	}

	work := models.Work{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		Images:      req.Images,
		CreatedAt:   s.now(),
		Comments:    []models.WorkComment{},
		Ratings:     []int{},
	}
	if _, err := s.Repo.AppendWork(ctx, email, work); err != nil {
		return nil, err
	}
	return &work, nil
}

func (s *DefaultProviderService) EditWork(ctx context.Context, email, workID string, req models.WorkInput) (*models.Work, error) {
	req, err := s.workFromInput(req)
	if err != nil {
		return nil, err
	}

	p, err := s.Repo.ReplaceWork(ctx, email, models.Work{
		ID:          workID,
		Title:       req.Title,
		Description: req.Description,
		Images:      req.Images,
	})
	if err != nil {
		return nil, err
	}
	for _, w := range p.Works {
		if w.ID == workID {
			return &w, nil
		}
	}
	return nil, fmt.Errorf("work %s: %w", workID, database.ErrNotFound)
}

func (s *DefaultProviderService) DeleteWork(ctx context.Context, email, workID string) error {
	_, err := s.Repo.RemoveWork(ctx, email, workID)
	return err
}
