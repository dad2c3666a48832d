package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	chatRepo "nafany/database/repository/chat"
	"nafany/models"
	"nafany/services/notification"
	"nafany/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ChatService interface {
	Send(ctx context.Context, sender models.SessionUser, req models.MessageInput) (*models.Message, error)
	Chats(ctx context.Context, participant models.SessionUser) ([]models.Chat, error)
	Messages(ctx context.Context, chatID string, reader models.SessionUser) ([]models.Message, error)
	MarkRead(ctx context.Context, chatID string, reader models.SessionUser) (int64, error)
	Subscribe(ctx context.Context, chatID string, reader models.SessionUser) (<-chan models.Message, error)
}

// DefaultChatService is the production implementation. Conversations are always
// between one user and one provider.
type DefaultChatService struct {
	Repo      chatRepo.ChatRepository
	Users     notification.UserLookup
	Providers notification.ProviderLookup
	Broker    Broker
	Notifier  notification.Notifier
	Validator *utils.Validator
	Now       func() time.Time
}

var _ ChatService = (*DefaultChatService)(nil)

func (s *DefaultChatService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// parties resolves the provider and user side of a conversation started by sender.
func (s *DefaultChatService) parties(ctx context.Context, sender models.SessionUser, receiver string) (models.ChatParty, models.ChatParty, error) {
	var userEmail, providerEmail string
	switch sender.Role {
	case models.RoleUser:
		userEmail, providerEmail = sender.Email, receiver
	case models.RoleProvider:
		userEmail, providerEmail = receiver, sender.Email
	default:
		return models.ChatParty{}, models.ChatParty{}, utils.ErrForbidden
	}

	p, err := s.Providers.GetByEmail(ctx, providerEmail)
	if err != nil {
		return models.ChatParty{}, models.ChatParty{}, err
	}
	u, err := s.Users.GetByEmail(ctx, userEmail)
	if err != nil {
		return models.ChatParty{}, models.ChatParty{}, err
	}
	if sender.Role == models.RoleUser && !p.AllowContact {
		return models.ChatParty{}, models.ChatParty{}, utils.ErrForbidden
	}

	provider := models.ChatParty{ID: p.Email, Name: p.Name, Email: p.Email, ProfileImage: p.ProfileImage, Profession: p.Profession}
	user := models.ChatParty{ID: u.Email, Name: u.Name, Email: u.Email, ProfileImage: u.ProfileImage}
	return provider, user, nil
}

// Send stores the message, refreshes the chat summary, publishes it to live subscribers
// and queues a push to the receiver.
func (s *DefaultChatService) Send(ctx context.Context, sender models.SessionUser, req models.MessageInput) (*models.Message, error) {
	logger := utils.GetLogger()

	req.ReceiverID = strings.ToLower(strings.TrimSpace(req.ReceiverID))
	req.Text = strings.TrimSpace(req.Text)
	if err := s.Validator.Struct(req); err != nil {
		return nil, err
	}
	if req.ReceiverID == sender.Email {
		return nil, utils.NewValidationError("receiverId", "must be another account")
	}

	provider, user, err := s.parties(ctx, sender, req.ReceiverID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	chatID := models.ChatID(sender.Email, req.ReceiverID)
	senderName := user.Name
	if sender.Role == models.RoleProvider {
		senderName = provider.Name
	}

	chat := models.Chat{
		ID:                chatID,
		Participants:      []string{user.ID, provider.ID},
		ParticipantsNames: []string{user.Name, provider.Name},
		LastMessage:       req.Text,
		LastMessageTime:   now,
		ProviderData:      provider,
		UserData:          user,
	}
	msg := models.Message{
		ID:         uuid.New().String(),
		ChatID:     chatID,
		Text:       req.Text,
		SenderID:   sender.Email,
		SenderName: senderName,
		ReceiverID: req.ReceiverID,
		Timestamp:  now,
	}
	if err := s.Repo.AppendMessage(ctx, chat, msg); err != nil {
		logger.Error("Send: failed to store message", zap.String("chatId", chatID), zap.Error(err))
		return nil, err
	}

	if err := s.Broker.Publish(ctx, msg); err != nil {
		logger.Warn("Send: failed to publish message", zap.String("chatId", chatID), zap.Error(err))
	}

	data := map[string]string{"type": "chat_message", "chatId": chatID}
	if sender.Role == models.RoleUser {
		err = s.Notifier.NotifyProvider(ctx, req.ReceiverID, senderName, req.Text, data)
	} else {
		err = s.Notifier.NotifyUser(ctx, req.ReceiverID, senderName, req.Text, data)
	}
	if err != nil {
		logger.Warn("Send: failed to notify receiver", zap.String("chatId", chatID), zap.Error(err))
	}
	return &msg, nil
}

func (s *DefaultChatService) Chats(ctx context.Context, participant models.SessionUser) ([]models.Chat, error) {
	return s.Repo.ListChats(ctx, participant.Email)
}

// authorize loads the chat and checks reader takes part in it. Admins may read any chat.
func (s *DefaultChatService) authorize(ctx context.Context, chatID string, reader models.SessionUser) error {
	chat, err := s.Repo.GetChat(ctx, chatID)
	if err != nil {
		return err
	}
	if !reader.IsAdmin() && !chat.HasParticipant(reader.Email) {
		return fmt.Errorf("chat %s: %w", chatID, utils.ErrForbidden)
	}
	return nil
}

func (s *DefaultChatService) Messages(ctx context.Context, chatID string, reader models.SessionUser) ([]models.Message, error) {
	if err := s.authorize(ctx, chatID, reader); err != nil {
		return nil, err
	}
	return s.Repo.ListMessages(ctx, chatID)
}

func (s *DefaultChatService) MarkRead(ctx context.Context, chatID string, reader models.SessionUser) (int64, error) {
	if err := s.authorize(ctx, chatID, reader); err != nil {
		return 0, err
	}
	return s.Repo.MarkRead(ctx, chatID, reader.Email)
}

func (s *DefaultChatService) Subscribe(ctx context.Context, chatID string, reader models.SessionUser) (<-chan models.Message, error) {
	if err := s.authorize(ctx, chatID, reader); err != nil {
		return nil, err
	}
	return s.Broker.Subscribe(ctx, chatID)
}
