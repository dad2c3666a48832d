package providerRepo

import (
	"context"
	"fmt"
	"time"

	"nafany/database"
	"nafany/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoProviderRepo implements ProviderRepository using MongoDB.
type MongoProviderRepo struct {
	coll *mongo.Collection
}

// NewMongoProviderRepo binds the serviceProviders collection and ensures its indexes.
func NewMongoProviderRepo(ctx context.Context, db *mongo.Database) (*MongoProviderRepo, error) {
	repo := &MongoProviderRepo{coll: db.Collection(database.ProvidersCollection)}
	if err := repo.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

// Create inserts a new provider document. A taken email surfaces as ErrDuplicate.
func (r *MongoProviderRepo) Create(ctx context.Context, provider *models.Provider) error {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	normalizeArrays(provider)
	if _, err := r.coll.InsertOne(ctx, provider); err != nil {
		return fmt.Errorf("failed to create provider: %w", database.Translate(err))
	}
	return nil
}

func (r *MongoProviderRepo) GetByEmail(ctx context.Context, email string) (*models.Provider, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	var provider models.Provider
	if err := r.coll.FindOne(ctx, bson.M{"_id": email}).Decode(&provider); err != nil {
		return nil, fmt.Errorf("failed to fetch provider %s: %w", email, database.Translate(err))
	}
	return &provider, nil
}

func (r *MongoProviderRepo) List(ctx context.Context, filter ListFilter) ([]models.Provider, error) {
	query := bson.M{}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.Profession != "" {
		query["profession"] = filter.Profession
	}
	if filter.Governorate != "" {
		query["governorate"] = filter.Governorate
	}
	return r.find(ctx, query)
}

func (r *MongoProviderRepo) ListAll(ctx context.Context) ([]models.Provider, error) {
	return r.find(ctx, bson.M{})
}

func (r *MongoProviderRepo) find(ctx context.Context, query bson.M) ([]models.Provider, error) {
	ctx, cancel := database.NewContext(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve providers: %w", err)
	}
	defer cursor.Close(ctx)

	providers := []models.Provider{}
	if err := cursor.All(ctx, &providers); err != nil {
		return nil, fmt.Errorf("failed to decode providers: %w", err)
	}
	return providers, nil
}

func (r *MongoProviderRepo) Count(ctx context.Context) (int64, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()
	return r.coll.CountDocuments(ctx, bson.M{})
}

func (r *MongoProviderRepo) UpdateProfile(ctx context.Context, email string, update models.ProviderProfileUpdate) (*models.Provider, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	setIf(set, "name", update.Name)
	setIf(set, "passwordHash", update.PasswordHash)
	setIf(set, "nationalId", update.NationalID)
	setIf(set, "phone", update.Phone)
	setIf(set, "profession", update.Profession)
	setIf(set, "category", update.Category)
	setIf(set, "governorate", update.Governorate)
	setIf(set, "address", update.Address)
	setIf(set, "bio", update.Bio)
	setIf(set, "profileImage", update.ProfileImage)
	if update.SubscriptionFee != nil {
		set["subscriptionFee"] = *update.SubscriptionFee
	}
	if update.AllowContact != nil {
		set["allowContact"] = *update.AllowContact
	}
	if update.WorkingAreas != nil {
		set["workingAreas"] = *update.WorkingAreas
	}
	return r.findOneAndUpdate(ctx, bson.M{"_id": email}, bson.M{"$set": set})
}

func setIf(set bson.M, key string, v *string) {
	if v != nil {
		set[key] = *v
	}
}

func (r *MongoProviderRepo) SetFCMToken(ctx context.Context, email, token string) error {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": email}, bson.M{"$set": bson.M{"fcmToken": token}})
	if err != nil {
		return fmt.Errorf("failed to set fcm token for %s: %w", email, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("provider %s: %w", email, database.ErrNotFound)
	}
	return nil
}

func (r *MongoProviderRepo) Delete(ctx context.Context, email string) error {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": email})
	if err != nil {
		return fmt.Errorf("failed to delete provider %s: %w", email, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("provider %s: %w", email, database.ErrNotFound)
	}
	return nil
}

// findOneAndUpdate applies update and decodes the post-image.
func (r *MongoProviderRepo) findOneAndUpdate(ctx context.Context, filter bson.M, update interface{}) (*models.Provider, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var provider models.Provider
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&provider); err != nil {
		return nil, fmt.Errorf("failed to update provider %v: %w", filter["_id"], database.Translate(err))
	}
	return &provider, nil
}

// normalizeArrays replaces nil slices so that $push and $concatArrays never meet a null field.
func normalizeArrays(p *models.Provider) {
	if p.Works == nil {
		p.Works = []models.Work{}
	}
	if p.Reviews == nil {
		p.Reviews = []models.Review{}
	}
	if p.Bookings == nil {
		p.Bookings = []models.Booking{}
	}
	if p.WorkingAreas == nil {
		p.WorkingAreas = []string{}
	}
}
