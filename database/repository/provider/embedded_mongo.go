package providerRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nafany/database"
	"nafany/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Client supplied values are wrapped in $literal so a string starting with "$"
// is never read as a field path by the pipeline.
func literal(v interface{}) bson.D {
	return bson.D{{Key: "$literal", Value: v}}
}

func arrayOrEmpty(field string) bson.D {
	return bson.D{{Key: "$ifNull", Value: bson.A{"$" + field, bson.A{}}}}
}

// ratingsStage recomputes every rating aggregate from the reviews array produced by
// the previous stage.
var ratingsStage = bson.D{{Key: "$set", Value: bson.D{
	{Key: "ratingsCount", Value: bson.D{{Key: "$size", Value: "$reviews"}}},
	{Key: "ratingsTotal", Value: bson.D{{Key: "$sum", Value: "$reviews.rating"}}},
	{Key: "averageRating", Value: bson.D{{Key: "$cond", Value: bson.D{
		{Key: "if", Value: bson.D{{Key: "$gt", Value: bson.A{bson.D{{Key: "$size", Value: "$reviews"}}, 0}}}},
		{Key: "then", Value: bson.D{{Key: "$divide", Value: bson.A{
			bson.D{{Key: "$sum", Value: "$reviews.rating"}},
			bson.D{{Key: "$size", Value: "$reviews"}},
		}}}},
		{Key: "else", Value: 0.0},
	}}}},
}}}

var worksCountStage = bson.D{{Key: "$set", Value: bson.D{
	{Key: "worksCount", Value: bson.D{{Key: "$size", Value: "$works"}}},
}}}

func touchedStage(at time.Time) bson.D {
	return bson.D{{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: at}}}}
}

func appendStage(field string, item interface{}) bson.D {
	return bson.D{{Key: "$set", Value: bson.D{
		{Key: field, Value: bson.D{{Key: "$concatArrays", Value: bson.A{
			arrayOrEmpty(field),
			bson.A{literal(item)},
		}}}},
	}}}
}

func removeStage(field, id string) bson.D {
	return bson.D{{Key: "$set", Value: bson.D{
		{Key: field, Value: bson.D{{Key: "$filter", Value: bson.D{
			{Key: "input", Value: arrayOrEmpty(field)},
			{Key: "as", Value: "item"},
			{Key: "cond", Value: bson.D{{Key: "$ne", Value: bson.A{"$$item.id", literal(id)}}}},
		}}}},
	}}}
}

// mergeStage overlays patch onto the element whose id matches, leaving the others as they are.
func mergeStage(field, id string, patch bson.M) bson.D {
	return bson.D{{Key: "$set", Value: bson.D{
		{Key: field, Value: bson.D{{Key: "$map", Value: bson.D{
			{Key: "input", Value: arrayOrEmpty(field)},
			{Key: "as", Value: "item"},
			{Key: "in", Value: bson.D{{Key: "$cond", Value: bson.D{
				{Key: "if", Value: bson.D{{Key: "$eq", Value: bson.A{"$$item.id", literal(id)}}}},
				{Key: "then", Value: bson.D{{Key: "$mergeObjects", Value: bson.A{"$$item", literal(patch)}}}},
				{Key: "else", Value: "$$item"},
			}}}},
		}}}},
	}}}
}

func (r *MongoProviderRepo) AppendReview(ctx context.Context, email string, review models.Review) (*models.Provider, error) {
	pipeline := mongo.Pipeline{appendStage("reviews", review), ratingsStage, touchedStage(review.CreatedAt)}
	return r.findOneAndUpdate(ctx, bson.M{"_id": email}, pipeline)
}

func (r *MongoProviderRepo) ReplaceReview(ctx context.Context, email string, edit ReviewEdit) (*models.Provider, error) {
	patch := bson.M{"rating": edit.Rating, "review": edit.Text, "updatedAt": edit.UpdatedAt}
	pipeline := mongo.Pipeline{mergeStage("reviews", edit.ID, patch), ratingsStage, touchedStage(edit.UpdatedAt)}
	return r.findOneAndUpdate(ctx, bson.M{"_id": email, "reviews.id": edit.ID}, pipeline)
}

func (r *MongoProviderRepo) RemoveReview(ctx context.Context, email, reviewID string) (*models.Provider, error) {
	pipeline := mongo.Pipeline{removeStage("reviews", reviewID), ratingsStage}
	return r.findOneAndUpdate(ctx, bson.M{"_id": email}, pipeline)
}

func (r *MongoProviderRepo) AppendWork(ctx context.Context, email string, work models.Work) (*models.Provider, error) {
	pipeline := mongo.Pipeline{appendStage("works", work), worksCountStage, touchedStage(work.CreatedAt)}
	return r.findOneAndUpdate(ctx, bson.M{"_id": email}, pipeline)
}

func (r *MongoProviderRepo) ReplaceWork(ctx context.Context, email string, work models.Work) (*models.Provider, error) {
	images := work.Images
	if images == nil {
		images = []string{}
	}
	patch := bson.M{"title": work.Title, "description": work.Description, "images": images}
	pipeline := mongo.Pipeline{mergeStage("works", work.ID, patch), worksCountStage, touchedStage(time.Now().UTC())}
	return r.findOneAndUpdate(ctx, bson.M{"_id": email, "works.id": work.ID}, pipeline)
}

func (r *MongoProviderRepo) RemoveWork(ctx context.Context, email, workID string) (*models.Provider, error) {
	pipeline := mongo.Pipeline{removeStage("works", workID), worksCountStage}
	return r.findOneAndUpdate(ctx, bson.M{"_id": email}, pipeline)
}

func activeSlot(date, timeLabel string) bson.M {
	return bson.M{
		"bookingDate": date,
		"bookingTime": timeLabel,
		"status":      bson.M{"$in": models.ActiveBookingStatuses},
	}
}

// freeSlotFilter matches the provider only while no active booking holds the slot.
func freeSlotFilter(email, date, timeLabel string) bson.M {
	return bson.M{
		"_id":      email,
		"bookings": bson.M{"$not": bson.M{"$elemMatch": activeSlot(date, timeLabel)}},
	}
}

// bookingInStatusFilter matches the provider only while the booking still holds status.
// The positional operator in the update then addresses that same element.
func bookingInStatusFilter(email, bookingID string, status models.BookingStatus) bson.M {
	return bson.M{
		"_id":      email,
		"bookings": bson.M{"$elemMatch": bson.M{"id": bookingID, "status": status}},
	}
}

// AppendBookingIfFree relies on the filter being re-evaluated atomically with the
// push, so two racing requests for one slot cannot both match.
func (r *MongoProviderRepo) AppendBookingIfFree(ctx context.Context, email string, booking models.Booking) error {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	filter := freeSlotFilter(email, booking.BookingDate, booking.BookingTime)
	update := bson.M{
		"$push": bson.M{"bookings": booking},
		"$set":  bson.M{"updatedAt": booking.CreatedAt},
	}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to append booking for %s: %w", email, err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": email})
	if err != nil {
		return fmt.Errorf("failed to check provider %s: %w", email, err)
	}
	if n == 0 {
		return fmt.Errorf("provider %s: %w", email, database.ErrNotFound)
	}
	return database.ErrSlotTaken
}

func (r *MongoProviderRepo) SetBookingStatus(ctx context.Context, email, bookingID string, from, to models.BookingStatus, at time.Time) (*models.Booking, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	filter := bookingInStatusFilter(email, bookingID, from)
	update := bson.M{"$set": bson.M{
		"bookings.$.status":    to,
		"bookings.$.updatedAt": at,
		"updatedAt":            at,
	}}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"bookings": bson.M{"$elemMatch": bson.M{"id": bookingID}}})

	var doc struct {
		Bookings []models.Booking `bson:"bookings"`
	}
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		err = database.Translate(err)
		if !errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("failed to update booking %s: %w", bookingID, err)
		}
		n, cerr := r.coll.CountDocuments(ctx, bson.M{"_id": email, "bookings.id": bookingID})
		if cerr != nil {
			return nil, fmt.Errorf("failed to check booking %s: %w", bookingID, cerr)
		}
		if n > 0 {
			return nil, fmt.Errorf("booking %s left %s: %w", bookingID, from, database.ErrConflict)
		}
		return nil, fmt.Errorf("booking %s: %w", bookingID, database.ErrNotFound)
	}
	if len(doc.Bookings) == 0 {
		return nil, fmt.Errorf("booking %s: %w", bookingID, database.ErrNotFound)
	}
	return &doc.Bookings[0], nil
}

func (r *MongoProviderRepo) CountActiveBookings(ctx context.Context, email, date, timeLabel string) (int, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	slot := activeSlot(date, timeLabel)
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": email}}},
		{{Key: "$unwind", Value: "$bookings"}},
		{{Key: "$match", Value: bson.M{
			"bookings.bookingDate": slot["bookingDate"],
			"bookings.bookingTime": slot["bookingTime"],
			"bookings.status":      slot["status"],
		}}},
		{{Key: "$count", Value: "n"}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings for %s: %w", email, err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		N int `bson:"n"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, fmt.Errorf("failed to decode booking count: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].N, nil
}

func (r *MongoProviderRepo) BookingStatusCounts(ctx context.Context) (map[models.BookingStatus]int, error) {
	ctx, cancel := database.NewContext(ctx, 10*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$unwind", Value: "$bookings"}},
		{{Key: "$group", Value: bson.M{"_id": "$bookings.status", "n": bson.M{"$sum": 1}}}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate booking statuses: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status models.BookingStatus `bson:"_id"`
		N      int                  `bson:"n"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode booking statuses: %w", err)
	}
	counts := make(map[models.BookingStatus]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.N
	}
	return counts, nil
}
