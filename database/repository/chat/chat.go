package chatRepo

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"nafany/database"
	"nafany/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ChatRepository stores chat summaries and their append-only messages.
type ChatRepository interface {
	// AppendMessage upserts the chat summary and inserts the message.
	AppendMessage(ctx context.Context, chat models.Chat, msg models.Message) error
	GetChat(ctx context.Context, chatID string) (*models.Chat, error)
	// ListChats returns the participant's chats, most recent activity first.
	ListChats(ctx context.Context, participant string) ([]models.Chat, error)
	// ListMessages returns messages ordered by timestamp ascending.
	ListMessages(ctx context.Context, chatID string) ([]models.Message, error)
	// MarkRead flags every message addressed to reader as read and reports how many changed.
	MarkRead(ctx context.Context, chatID, reader string) (int64, error)
}

var (
	_ ChatRepository = (*MongoChatRepo)(nil)
	_ ChatRepository = (*MemoryChatRepo)(nil)
)

type MongoChatRepo struct {
	chats    *mongo.Collection
	messages *mongo.Collection
}

func NewMongoChatRepo(ctx context.Context, db *mongo.Database) (*MongoChatRepo, error) {
	repo := &MongoChatRepo{
		chats:    db.Collection(database.ChatsCollection),
		messages: db.Collection(database.MessagesCollection),
	}

	ctx, cancel := database.NewContext(ctx, 10*time.Second)
	defer cancel()
	if _, err := repo.chats.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "participants", Value: 1}, {Key: "lastMessageTime", Value: -1}},
	}); err != nil {
		return nil, fmt.Errorf("failed to create chat indexes: %w", err)
	}
	if _, err := repo.messages.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "chatId", Value: 1}, {Key: "timestamp", Value: 1}},
	}); err != nil {
		return nil, fmt.Errorf("failed to create message indexes: %w", err)
	}
	return repo, nil
}

func (r *MongoChatRepo) AppendMessage(ctx context.Context, chat models.Chat, msg models.Message) error {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"participants":      chat.Participants,
		"participantsNames": chat.ParticipantsNames,
		"lastMessage":       chat.LastMessage,
		"lastMessageTime":   chat.LastMessageTime,
		"providerData":      chat.ProviderData,
		"userData":          chat.UserData,
	}}
	opts := options.Update().SetUpsert(true)
	if _, err := r.chats.UpdateOne(ctx, bson.M{"_id": chat.ID}, update, opts); err != nil {
		return fmt.Errorf("failed to upsert chat %s: %w", chat.ID, err)
	}
	if _, err := r.messages.InsertOne(ctx, msg); err != nil {
		return fmt.Errorf("failed to insert message into %s: %w", chat.ID, database.Translate(err))
	}
	return nil
}

func (r *MongoChatRepo) GetChat(ctx context.Context, chatID string) (*models.Chat, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	var chat models.Chat
	if err := r.chats.FindOne(ctx, bson.M{"_id": chatID}).Decode(&chat); err != nil {
		return nil, fmt.Errorf("failed to fetch chat %s: %w", chatID, database.Translate(err))
	}
	return &chat, nil
}

func (r *MongoChatRepo) ListChats(ctx context.Context, participant string) ([]models.Chat, error) {
	ctx, cancel := database.NewContext(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "lastMessageTime", Value: -1}})
	cursor, err := r.chats.Find(ctx, bson.M{"participants": participant}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	defer cursor.Close(ctx)

	chats := []models.Chat{}
	if err := cursor.All(ctx, &chats); err != nil {
		return nil, fmt.Errorf("failed to decode chats: %w", err)
	}
	return chats, nil
}

func (r *MongoChatRepo) ListMessages(ctx context.Context, chatID string) ([]models.Message, error) {
	ctx, cancel := database.NewContext(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	cursor, err := r.messages.Find(ctx, bson.M{"chatId": chatID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer cursor.Close(ctx)

	msgs := []models.Message{}
	if err := cursor.All(ctx, &msgs); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}
	return msgs, nil
}

func (r *MongoChatRepo) MarkRead(ctx context.Context, chatID, reader string) (int64, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	res, err := r.messages.UpdateMany(ctx,
		bson.M{"chatId": chatID, "receiverId": reader, "isRead": false},
		bson.M{"$set": bson.M{"isRead": true}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark chat %s read: %w", chatID, err)
	}
	return res.ModifiedCount, nil
}

// MemoryChatRepo is an in-process ChatRepository.
type MemoryChatRepo struct {
	mu       sync.RWMutex
	chats    map[string]models.Chat
	messages map[string][]models.Message
}

func NewMemoryChatRepo() *MemoryChatRepo {
	return &MemoryChatRepo{
		chats:    make(map[string]models.Chat),
		messages: make(map[string][]models.Message),
	}
}

func (r *MemoryChatRepo) AppendMessage(_ context.Context, chat models.Chat, msg models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range r.messages[chat.ID] {
		if m.ID == msg.ID {
			return fmt.Errorf("failed to insert message: %w", database.ErrDuplicate)
		}
	}
	chat.Participants = append([]string(nil), chat.Participants...)
	chat.ParticipantsNames = append([]string(nil), chat.ParticipantsNames...)
	r.chats[chat.ID] = chat
	r.messages[chat.ID] = append(r.messages[chat.ID], msg)
	return nil
}

func (r *MemoryChatRepo) GetChat(_ context.Context, chatID string) (*models.Chat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	chat, ok := r.chats[chatID]
	if !ok {
		return nil, fmt.Errorf("chat %s: %w", chatID, database.ErrNotFound)
	}
	return &chat, nil
}

func (r *MemoryChatRepo) ListChats(_ context.Context, participant string) ([]models.Chat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.Chat{}
	for _, c := range r.chats {
		if c.HasParticipant(participant) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastMessageTime.After(out[j].LastMessageTime) })
	return out, nil
}

func (r *MemoryChatRepo) ListMessages(_ context.Context, chatID string) ([]models.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := append([]models.Message{}, r.messages[chatID]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (r *MemoryChatRepo) MarkRead(_ context.Context, chatID, reader string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	msgs := r.messages[chatID]
	for i := range msgs {
		if msgs[i].ReceiverID == reader && !msgs[i].IsRead {
			msgs[i].IsRead = true
			n++
		}
	}
	return n, nil
}
