package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/wearlytic/fashionpipeline/internal/model"
)

// ListingStore is the CRUD manager for Listing documents.
type ListingStore struct {
	coll *mongo.Collection
}

// Create inserts a new Listing.
func (s *ListingStore) Create(ctx context.Context, l *model.Listing) error {
	if _, err := s.coll.InsertOne(ctx, l); err != nil {
		return fmt.Errorf("insert listing %s: %w", l.ID, err)
	}
	return nil
}

// Get fetches a Listing by ID.
func (s *ListingStore) Get(ctx context.Context, id string) (*model.Listing, error) {
	var l model.Listing
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&l)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get listing %s: %w", id, err)
	}
	return &l, nil
}

// ListBySource returns every Listing belonging to sourceID.
func (s *ListingStore) ListBySource(ctx context.Context, sourceID string) ([]model.Listing, error) {
	cur, err := s.coll.Find(ctx, bson.M{"source_id": sourceID})
	if err != nil {
		return nil, fmt.Errorf("list listings for source %s: %w", sourceID, err)
	}
	defer cur.Close(ctx)

	var out []model.Listing
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode listings: %w", err)
	}
	return out, nil
}

// Update applies a partial $set update, used for admin edits to URL or
// Active.
func (s *ListingStore) Update(ctx context.Context, id string, changes bson.M) error {
	if len(changes) == 0 {
		return nil
	}
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": changes})
	if err != nil {
		return fmt.Errorf("update listing %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("update listing %s: %w", id, ErrNotFound)
	}
	return nil
}

// Delete removes a Listing by ID.
func (s *ListingStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete listing %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("delete listing %s: %w", id, ErrNotFound)
	}
	return nil
}

// SetLastListed stamps last_listed with now, marking the listing as
// dispatched for the current cycle.
func (s *ListingStore) SetLastListed(ctx context.Context, id string, now time.Time) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"last_listed": now}},
	)
	if err != nil {
		return fmt.Errorf("set last_listed for listing %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("set last_listed for listing %s: %w", id, ErrNotFound)
	}
	return nil
}

// OldestPerSource returns, for every source that has at least one
// active listing, the active listing whose last_listed is earliest (nil sorts
// first, so a never-scraped listing always wins over a stale one).
// This mirrors the $sort+$group aggregation the original uses to pick
// one candidate listing per source per scheduler tick.
func (s *ListingStore) OldestPerSource(ctx context.Context) ([]model.Listing, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"active": true}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "source_id", Value: 1},
			{Key: "last_listed", Value: 1},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":     "$source_id",
			"oldest":  bson.M{"$first": "$$ROOT"},
		}}},
	}

	cur, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate oldest listings per source: %w", err)
	}
	defer cur.Close(ctx)

	var rows []struct {
		Oldest model.Listing `bson:"oldest"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode oldest listings per source: %w", err)
	}

	out := make([]model.Listing, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Oldest)
	}
	return out, nil
}
