package providerRepo

import (
	"context"
	"testing"
	"time"

	"nafany/database"
	"nafany/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func value(t *testing.T, d bson.D, key string) interface{} {
	t.Helper()
	for _, e := range d {
		if e.Key == key {
			return e.Value
		}
	}
	t.Fatalf("key %q not in %v", key, d)
	return nil
}

func doc(t *testing.T, d bson.D, key string) bson.D {
	t.Helper()
	v, ok := value(t, d, key).(bson.D)
	require.True(t, ok, "%s is not a document", key)
	return v
}

func TestRatingsStageRecomputesFromReviews(t *testing.T) {
	set := doc(t, ratingsStage, "$set")

	assert.Equal(t, bson.D{{Key: "$size", Value: "$reviews"}}, value(t, set, "ratingsCount"))
	assert.Equal(t, bson.D{{Key: "$sum", Value: "$reviews.rating"}}, value(t, set, "ratingsTotal"))

	cond := doc(t, doc(t, set, "averageRating"), "$cond")
	assert.Equal(t, 0.0, value(t, cond, "else"))
	assert.Equal(t, bson.D{{Key: "$divide", Value: bson.A{
		bson.D{{Key: "$sum", Value: "$reviews.rating"}},
		bson.D{{Key: "$size", Value: "$reviews"}},
	}}}, value(t, cond, "then"))
}

func TestArrayStagesMatchOnLiteralID(t *testing.T) {
	idMatch := bson.A{"$$item.id", bson.D{{Key: "$literal", Value: "$r1"}}}
	input := bson.D{{Key: "$ifNull", Value: bson.A{"$reviews", bson.A{}}}}

	merge := doc(t, doc(t, doc(t, mergeStage("reviews", "$r1", bson.M{"rating": 2}), "$set"), "reviews"), "$map")
	assert.Equal(t, input, value(t, merge, "input"))
	assert.Equal(t, "item", value(t, merge, "as"))
	cond := doc(t, doc(t, merge, "in"), "$cond")
	assert.Equal(t, bson.D{{Key: "$eq", Value: idMatch}}, value(t, cond, "if"))
	assert.Equal(t, bson.D{{Key: "$mergeObjects", Value: bson.A{
		"$$item", bson.D{{Key: "$literal", Value: bson.M{"rating": 2}}},
	}}}, value(t, cond, "then"))
	assert.Equal(t, "$$item", value(t, cond, "else"))

	remove := doc(t, doc(t, doc(t, removeStage("reviews", "$r1"), "$set"), "reviews"), "$filter")
	assert.Equal(t, input, value(t, remove, "input"))
	assert.Equal(t, bson.D{{Key: "$ne", Value: idMatch}}, value(t, remove, "cond"))

	review := models.Review{ID: "r2", Rating: 5, Review: "$reviews"}
	appended := doc(t, doc(t, appendStage("reviews", review), "$set"), "reviews")
	assert.Equal(t, bson.D{{Key: "$concatArrays", Value: bson.A{
		input,
		bson.A{bson.D{{Key: "$literal", Value: review}}},
	}}}, appended)
}

func TestBookingFilters(t *testing.T) {
	free := freeSlotFilter("p@example.com", "2025-01-10", "10:00 صباحاً")
	assert.Equal(t, bson.M{
		"_id": "p@example.com",
		"bookings": bson.M{"$not": bson.M{"$elemMatch": bson.M{
			"bookingDate": "2025-01-10",
			"bookingTime": "10:00 صباحاً",
			"status":      bson.M{"$in": models.ActiveBookingStatuses},
		}}},
	}, free)

	inStatus := bookingInStatusFilter("p@example.com", "b1", models.BookingPending)
	assert.Equal(t, bson.M{
		"_id":      "p@example.com",
		"bookings": bson.M{"$elemMatch": bson.M{"id": "b1", "status": models.BookingPending}},
	}, inStatus)
}

func TestMemorySetBookingStatusComparesFrom(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryProviderRepo()
	require.NoError(t, repo.Create(ctx, &models.Provider{Email: "p@example.com", Name: "p"}))
	at := time.Date(2025, 1, 8, 15, 0, 0, 0, time.UTC)
	require.NoError(t, repo.AppendBookingIfFree(ctx, "p@example.com", models.Booking{
		ID: "b1", BookingDate: "2025-01-10", BookingTime: "10:00 صباحاً", Status: models.BookingPending, CreatedAt: at,
	}))

	got, err := repo.SetBookingStatus(ctx, "p@example.com", "b1", models.BookingPending, models.BookingCancelled, at)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, got.Status)

	_, err = repo.SetBookingStatus(ctx, "p@example.com", "b1", models.BookingPending, models.BookingApproved, at)
	assert.ErrorIs(t, err, database.ErrConflict)

	_, err = repo.SetBookingStatus(ctx, "p@example.com", "missing", models.BookingPending, models.BookingApproved, at)
	assert.ErrorIs(t, err, database.ErrNotFound)

	p, err := repo.GetByEmail(ctx, "p@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, p.Bookings[0].Status)
}
