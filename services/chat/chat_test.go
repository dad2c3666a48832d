package chat

import (
	"context"
	"sync"
	"testing"
	"time"

	"nafany/database"
	chatRepo "nafany/database/repository/chat"
	providerRepo "nafany/database/repository/provider"
	userRepo "nafany/database/repository/user"
	"nafany/models"
	"nafany/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	ali  = models.SessionUser{Role: models.RoleUser, Email: "ali@example.com", Name: "Ali"}
	mona = models.SessionUser{Role: models.RoleProvider, Email: "mona@example.com", Name: "Mona"}
	omar = models.SessionUser{Role: models.RoleUser, Email: "omar@example.com", Name: "Omar"}
)

type countingNotifier struct {
	mu          sync.Mutex
	toUsers     []string
	toProviders []string
}

func (n *countingNotifier) NotifyUser(_ context.Context, email, _, _ string, _ map[string]string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.toUsers = append(n.toUsers, email)
	return nil
}

func (n *countingNotifier) NotifyProvider(_ context.Context, email, _, _ string, _ map[string]string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.toProviders = append(n.toProviders, email)
	return nil
}

func newService(t *testing.T, allowContact bool) (*DefaultChatService, *countingNotifier) {
	t.Helper()
	ctx := context.Background()
	providers := providerRepo.NewMemoryProviderRepo()
	users := userRepo.NewMemoryUserRepo()
	require.NoError(t, providers.Create(ctx, &models.Provider{Email: mona.Email, Name: mona.Name, Profession: "سباك", AllowContact: allowContact}))
	require.NoError(t, users.Create(ctx, &models.User{Username: "ali", Email: ali.Email, Name: ali.Name}))
	require.NoError(t, users.Create(ctx, &models.User{Username: "omar", Email: omar.Email, Name: omar.Name}))

	clock := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	notifier := &countingNotifier{}
	return &DefaultChatService{
		Repo:      chatRepo.NewMemoryChatRepo(),
		Users:     users,
		Providers: providers,
		Broker:    NewLocalBroker(),
		Notifier:  notifier,
		Validator: utils.NewValidator(),
		Now: func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		},
	}, notifier
}

func TestConversationBetweenUserAndProvider(t *testing.T) {
	ctx := context.Background()
	svc, notifier := newService(t, true)

	first, err := svc.Send(ctx, ali, models.MessageInput{ReceiverID: mona.Email, Text: " مرحبا "})
	require.NoError(t, err)
	assert.Equal(t, "مرحبا", first.Text)
	assert.Equal(t, models.ChatID(ali.Email, mona.Email), first.ChatID)

	reply, err := svc.Send(ctx, mona, models.MessageInput{ReceiverID: ali.Email, Text: "أهلا"})
	require.NoError(t, err)
	assert.Equal(t, first.ChatID, reply.ChatID)
	assert.Equal(t, "Mona", reply.SenderName)

	chats, err := svc.Chats(ctx, ali)
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.Equal(t, "أهلا", chats[0].LastMessage)
	assert.Equal(t, mona.Email, chats[0].ProviderData.Email)

	msgs, err := svc.Messages(ctx, first.ChatID, mona)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, first.ID, msgs[0].ID)

	n, err := svc.MarkRead(ctx, first.ChatID, mona)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = svc.MarkRead(ctx, first.ChatID, mona)
	require.NoError(t, err)
	assert.Zero(t, n)

	assert.Equal(t, []string{mona.Email}, notifier.toProviders)
	assert.Equal(t, []string{ali.Email}, notifier.toUsers)
}

func TestSendRules(t *testing.T) {
	ctx := context.Background()

	svc, _ := newService(t, false)
	_, err := svc.Send(ctx, ali, models.MessageInput{ReceiverID: mona.Email, Text: "hi"})
	assert.ErrorIs(t, err, utils.ErrForbidden)

	// the provider may still open the conversation.
	_, err = svc.Send(ctx, mona, models.MessageInput{ReceiverID: ali.Email, Text: "hi"})
	assert.NoError(t, err)

	_, err = svc.Send(ctx, ali, models.MessageInput{ReceiverID: ali.Email, Text: "hi"})
	assert.True(t, utils.IsValidationError(err))

	_, err = svc.Send(ctx, ali, models.MessageInput{ReceiverID: mona.Email, Text: "   "})
	assert.True(t, utils.IsValidationError(err))

	_, err = svc.Send(ctx, mona, models.MessageInput{ReceiverID: "ghost@example.com", Text: "hi"})
	assert.ErrorIs(t, err, database.ErrNotFound)

	admin := models.SessionUser{Role: models.RoleAdmin, Email: "admin"}
	_, err = svc.Send(ctx, admin, models.MessageInput{ReceiverID: ali.Email, Text: "hi"})
	assert.ErrorIs(t, err, utils.ErrForbidden)
}

func TestOnlyParticipantsReadAChat(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, true)
	msg, err := svc.Send(ctx, ali, models.MessageInput{ReceiverID: mona.Email, Text: "hi"})
	require.NoError(t, err)

	_, err = svc.Messages(ctx, msg.ChatID, omar)
	assert.ErrorIs(t, err, utils.ErrForbidden)
	_, err = svc.MarkRead(ctx, msg.ChatID, omar)
	assert.ErrorIs(t, err, utils.ErrForbidden)
	_, err = svc.Subscribe(ctx, msg.ChatID, omar)
	assert.ErrorIs(t, err, utils.ErrForbidden)

	_, err = svc.Messages(ctx, msg.ChatID, models.SessionUser{Role: models.RoleAdmin, Email: "admin"})
	assert.NoError(t, err)

	_, err = svc.Messages(ctx, "nobody_nowhere", ali)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestSubscribeReceivesNewMessages(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, true)
	first, err := svc.Send(ctx, ali, models.MessageInput{ReceiverID: mona.Email, Text: "hi"})
	require.NoError(t, err)

	subCtx, cancel := context.WithCancel(ctx)
	stream, err := svc.Subscribe(subCtx, first.ChatID, mona)
	require.NoError(t, err)

	sent, err := svc.Send(ctx, ali, models.MessageInput{ReceiverID: mona.Email, Text: "are you free?"})
	require.NoError(t, err)

	select {
	case got := <-stream:
		assert.Equal(t, sent.ID, got.ID)
	case <-time.After(time.Second):
		t.Fatal("message was not delivered")
	}

	cancel()
	select {
	case _, open := <-stream:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("stream was not closed")
	}
}
