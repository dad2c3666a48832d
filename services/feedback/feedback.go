package feedback

import (
	"context"
	"fmt"
	"strings"
	"time"

	feedbackRepo "nafany/database/repository/feedback"
	"nafany/models"
	"nafany/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type FeedbackService interface {
	Submit(ctx context.Context, author models.SessionUser, req models.FeedbackInput) (*models.Feedback, error)
	Respond(ctx context.Context, id, response string) (*models.Feedback, error)
	SetStatus(ctx context.Context, id, status string) (*models.Feedback, error)
	ListMine(ctx context.Context, author models.SessionUser) ([]models.Feedback, error)
	ListAll(ctx context.Context) ([]models.Feedback, error)
	Delete(ctx context.Context, id string) error
}

// DefaultFeedbackService is the production implementation.
type DefaultFeedbackService struct {
	Repo      feedbackRepo.FeedbackRepository
	Validator *utils.Validator
	Now       func() time.Time
}

var _ FeedbackService = (*DefaultFeedbackService)(nil)

func (s *DefaultFeedbackService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Submit records a complaint or suggestion with status new and no response.
func (s *DefaultFeedbackService) Submit(ctx context.Context, author models.SessionUser, req models.FeedbackInput) (*models.Feedback, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if err := s.Validator.Struct(req); err != nil {
		return nil, err
	}

	fb := &models.Feedback{
		ID:                uuid.New().String(),
		Type:              req.Type,
		Title:             req.Title,
		Description:       req.Description,
		Status:            models.FeedbackNew,
		UserID:            author.Email,
		UserName:          author.Name,
		UserRole:          author.Role,
		Response:          "",
		ResponseTimestamp: nil,
		Timestamp:         s.now(),
	}
	if err := s.Repo.Create(ctx, fb); err != nil {
		utils.GetLogger().Error("Submit: failed to store feedback", zap.String("user", author.Email), zap.Error(err))
		return nil, err
	}
	return fb, nil
}

// Respond stores the admin reply and resolves the item in one update.
func (s *DefaultFeedbackService) Respond(ctx context.Context, id, response string) (*models.Feedback, error) {
	response = strings.TrimSpace(response)
	if response == "" {
		return nil, utils.NewValidationError("response", "is required")
	}
	return s.Repo.Respond(ctx, id, response, s.now())
}

// SetStatus moves new to in_progress, or any open item to closed or rejected.
// The legacy spelling inProgress is accepted.
func (s *DefaultFeedbackService) SetStatus(ctx context.Context, id, status string) (*models.Feedback, error) {
	next, ok := models.ParseFeedbackStatus(status)
	if !ok {
		return nil, utils.NewValidationError("status", "is invalid")
	}

	current, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !allowed(current.Status, next) {
		return nil, utils.NewValidationError("status",
			fmt.Sprintf("cannot change from %s to %s", current.Status, next))
	}
	return s.Repo.SetStatus(ctx, id, next)
}

func allowed(from, to models.FeedbackStatus) bool {
	if from.Terminal() {
		return false
	}
	switch to {
	case models.FeedbackInProgress:
		return from == models.FeedbackNew
	case models.FeedbackClosed, models.FeedbackRejected:
		return true
	}
	return false
}

func (s *DefaultFeedbackService) ListMine(ctx context.Context, author models.SessionUser) ([]models.Feedback, error) {
	return s.Repo.ListByUser(ctx, author.Email)
}

func (s *DefaultFeedbackService) ListAll(ctx context.Context) ([]models.Feedback, error) {
	return s.Repo.ListAll(ctx)
}

// Delete removes the item from any state.
func (s *DefaultFeedbackService) Delete(ctx context.Context, id string) error {
	return s.Repo.Delete(ctx, id)
}
