package providerRepo

import (
	"context"
	"fmt"
	"time"

	"nafany/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ensureIndexes creates indexes for the browse and booking lookups. The email is the _id.
func (r *MongoProviderRepo) ensureIndexes(ctx context.Context) error {
	ctx, cancel := database.NewContext(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "profession", Value: 1}}},
		{Keys: bson.D{{Key: "governorate", Value: 1}}},
		{Keys: bson.D{{Key: "averageRating", Value: -1}, {Key: "ratingsCount", Value: -1}}},
		{Keys: bson.D{{Key: "bookings.id", Value: 1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}
