package feedbackRepo

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

// FeedbackRepository stores complaints and suggestions as flat documents.
type FeedbackRepository interface {
	Create(ctx context.Context, fb *models.Feedback) error
	Get(ctx context.Context, id string) (*models.Feedback, error)
	// ListByUser and ListAll return newest first.
	ListByUser(ctx context.Context, userID string) ([]models.Feedback, error)
	ListAll(ctx context.Context) ([]models.Feedback, error)
	// Respond sets response, responseTimestamp and status=resolved in one update.
	Respond(ctx context.Context, id, response string, at time.Time) (*models.Feedback, error)
	SetStatus(ctx context.Context, id string, status models.FeedbackStatus) (*models.Feedback, error)
	Delete(ctx context.Context, id string) error
}

var (
	_ FeedbackRepository = (*MongoFeedbackRepo)(nil)
	_ FeedbackRepository = (*MemoryFeedbackRepo)(nil)
)

type MongoFeedbackRepo struct {
	coll *mongo.Collection
}

func NewMongoFeedbackRepo(ctx context.Context, db *mongo.Database) (*MongoFeedbackRepo, error) {
	repo := &MongoFeedbackRepo{coll: db.Collection(database.FeedbackCollection)}

	ctx, cancel := database.NewContext(ctx, 10*time.Second)
	defer cancel()
	_, err := repo.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}
	return repo, nil
}

func (r *MongoFeedbackRepo) Create(ctx context.Context, fb *models.Feedback) error {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, fb); err != nil {
		return fmt.Errorf("failed to create feedback: %w", database.Translate(err))
	}
	return nil
}

func (r *MongoFeedbackRepo) Get(ctx context.Context, id string) (*models.Feedback, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	var fb models.Feedback
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&fb); err != nil {
		return nil, fmt.Errorf("failed to fetch feedback %s: %w", id, database.Translate(err))
	}
	return &fb, nil
}

func (r *MongoFeedbackRepo) find(ctx context.Context, filter bson.M) ([]models.Feedback, error) {
	ctx, cancel := database.NewContext(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve feedback: %w", err)
	}
	defer cursor.Close(ctx)

	items := []models.Feedback{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode feedback: %w", err)
	}
	return items, nil
}

func (r *MongoFeedbackRepo) ListByUser(ctx context.Context, userID string) ([]models.Feedback, error) {
	return r.find(ctx, bson.M{"userId": userID})
}

func (r *MongoFeedbackRepo) ListAll(ctx context.Context) ([]models.Feedback, error) {
	return r.find(ctx, bson.M{})
}

func (r *MongoFeedbackRepo) update(ctx context.Context, id string, set bson.M) (*models.Feedback, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var fb models.Feedback
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&fb); err != nil {
		return nil, fmt.Errorf("failed to update feedback %s: %w", id, database.Translate(err))
	}
	return &fb, nil
}

func (r *MongoFeedbackRepo) Respond(ctx context.Context, id, response string, at time.Time) (*models.Feedback, error) {
	return r.update(ctx, id, bson.M{
		"response":          response,
		"responseTimestamp": at,
		"status":            models.FeedbackResolved,
	})
}

func (r *MongoFeedbackRepo) SetStatus(ctx context.Context, id string, status models.FeedbackStatus) (*models.Feedback, error) {
	return r.update(ctx, id, bson.M{"status": status})
}

func (r *MongoFeedbackRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete feedback %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("feedback %s: %w", id, database.ErrNotFound)
	}
	return nil
}

// MemoryFeedbackRepo is an in-process FeedbackRepository.
type MemoryFeedbackRepo struct {
	mu    sync.RWMutex
	items map[string]models.Feedback
}

func NewMemoryFeedbackRepo() *MemoryFeedbackRepo {
	return &MemoryFeedbackRepo{items: make(map[string]models.Feedback)}
}

func (r *MemoryFeedbackRepo) Create(_ context.Context, fb *models.Feedback) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[fb.ID]; ok {
		return fmt.Errorf("failed to create feedback: %w", database.ErrDuplicate)
	}
	r.items[fb.ID] = *fb
	return nil
}

func (r *MemoryFeedbackRepo) Get(_ context.Context, id string) (*models.Feedback, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fb, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("feedback %s: %w", id, database.ErrNotFound)
	}
	return &fb, nil
}

func (r *MemoryFeedbackRepo) list(keep func(models.Feedback) bool) []models.Feedback {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.Feedback{}
	for _, fb := range r.items {
		if keep(fb) {
			out = append(out, fb)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out
}

func (r *MemoryFeedbackRepo) ListByUser(_ context.Context, userID string) ([]models.Feedback, error) {
	return r.list(func(fb models.Feedback) bool { return fb.UserID == userID }), nil
}

func (r *MemoryFeedbackRepo) ListAll(_ context.Context) ([]models.Feedback, error) {
	return r.list(func(models.Feedback) bool { return true }), nil
}

func (r *MemoryFeedbackRepo) update(id string, fn func(fb *models.Feedback)) (*models.Feedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fb, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("feedback %s: %w", id, database.ErrNotFound)
	}
	fn(&fb)
	r.items[id] = fb
	return &fb, nil
}

func (r *MemoryFeedbackRepo) Respond(_ context.Context, id, response string, at time.Time) (*models.Feedback, error) {
	return r.update(id, func(fb *models.Feedback) {
		fb.Response = response
		fb.ResponseTimestamp = &at
		fb.Status = models.FeedbackResolved
	})
}

func (r *MemoryFeedbackRepo) SetStatus(_ context.Context, id string, status models.FeedbackStatus) (*models.Feedback, error) {
	return r.update(id, func(fb *models.Feedback) { fb.Status = status })
}

func (r *MemoryFeedbackRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return fmt.Errorf("feedback %s: %w", id, database.ErrNotFound)
	}
	delete(r.items, id)
	return nil
}
