package userRepo

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

// MongoUserRepo implements UserRepository using MongoDB.
type MongoUserRepo struct {
	coll *mongo.Collection
}

func NewMongoUserRepo(ctx context.Context, db *mongo.Database) (*MongoUserRepo, error) {
	repo := &MongoUserRepo{coll: db.Collection(database.UsersCollection)}
	if err := repo.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *MongoUserRepo) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	if user.Bookings == nil {
		user.Bookings = []models.Booking{}
	}
	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		return fmt.Errorf("failed to create user: %w", database.Translate(err))
	}
	return nil
}

func (r *MongoUserRepo) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	var user models.User
	if err := r.coll.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", database.Translate(err))
	}
	return &user, nil
}

func (r *MongoUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": username})
}

func (r *MongoUserRepo) ListAll(ctx context.Context) ([]models.User, error) {
	ctx, cancel := database.NewContext(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve users: %w", err)
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

func (r *MongoUserRepo) Count(ctx context.Context) (int64, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()
	return r.coll.CountDocuments(ctx, bson.M{})
}

func (r *MongoUserRepo) UpdateProfile(ctx context.Context, email string, u models.UserProfileUpdate) (*models.User, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{"updatedAt": time.Now().UTC()}
	for key, v := range map[string]*string{
		"name":         u.Name,
		"passwordHash": u.PasswordHash,
		"phone":        u.Phone,
		"governorate":  u.Governorate,
		"profileImage": u.ProfileImage,
	} {
		if v != nil {
			set[key] = *v
		}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"email": email}, bson.M{"$set": set}, opts).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to update user %s: %w", email, database.Translate(err))
	}
	return &user, nil
}

func (r *MongoUserRepo) updateOne(ctx context.Context, filter, update bson.M) error {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user %v: %w", filter["email"], database.ErrNotFound)
	}
	return nil
}

func (r *MongoUserRepo) SetFCMToken(ctx context.Context, email, token string) error {
	return r.updateOne(ctx, bson.M{"email": email}, bson.M{"$set": bson.M{"fcmToken": token}})
}

func (r *MongoUserRepo) Delete(ctx context.Context, email string) error {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"email": email})
	if err != nil {
		return fmt.Errorf("failed to delete user %s: %w", email, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("user %s: %w", email, database.ErrNotFound)
	}
	return nil
}

func (r *MongoUserRepo) AppendBooking(ctx context.Context, email string, booking models.Booking) error {
	return r.updateOne(ctx, bson.M{"email": email}, bson.M{
		"$push": bson.M{"bookings": booking},
		"$set":  bson.M{"updatedAt": booking.CreatedAt},
	})
}

func (r *MongoUserRepo) SetBookingStatus(ctx context.Context, email, bookingID string, status models.BookingStatus, at time.Time) error {
	return r.updateOne(ctx, bson.M{"email": email, "bookings.id": bookingID}, bson.M{"$set": bson.M{
		"bookings.$.status":    status,
		"bookings.$.updatedAt": at,
	}})
}
