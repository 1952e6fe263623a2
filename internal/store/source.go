package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/wearlytic/fashionpipeline/internal/model"
)

// SourceStore is the CRUD manager for Source documents.
type SourceStore struct {
	coll *mongo.Collection
}

// Create inserts a new Source keyed by its own ID.
func (s *SourceStore) Create(ctx context.Context, src *model.Source) error {
	if _, err := s.coll.InsertOne(ctx, src); err != nil {
		return fmt.Errorf("insert source %s: %w", src.ID, err)
	}
	return nil
}

// Get fetches a Source by ID, returning nil if none exists.
func (s *SourceStore) Get(ctx context.Context, id string) (*model.Source, error) {
	var src model.Source
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&src)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get source %s: %w", id, err)
	}
	return &src, nil
}

// List returns every Source, active or not.
func (s *SourceStore) List(ctx context.Context) ([]model.Source, error) {
	cur, err := s.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	defer cur.Close(ctx)

	var out []model.Source
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode sources: %w", err)
	}
	return out, nil
}

// AddListing atomically appends a listing ID to Source.Listings and
// increments ListingCount, mirroring the original's $addToSet+$inc
// pair so a retried call never double-counts an already-linked
// listing.
func (s *SourceStore) AddListing(ctx context.Context, sourceID, listingID string) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": sourceID, "listings": bson.M{"$ne": listingID}},
		bson.M{
			"$addToSet": bson.M{"listings": listingID},
			"$inc":      bson.M{"listing_count": 1},
		},
	)
	if err != nil {
		return fmt.Errorf("add listing %s to source %s: %w", listingID, sourceID, err)
	}
	if res.MatchedCount == 0 {
		existing, err := s.Get(ctx, sourceID)
		if err != nil {
			return fmt.Errorf("add listing to source %s: %w", sourceID, err)
		}
		if existing == nil {
			return fmt.Errorf("add listing to source %s: %w", sourceID, ErrNotFound)
		}
	}
	return nil
}

// Update applies a partial $set update, used for admin edits to Name,
// BaseURL, or Active.
func (s *SourceStore) Update(ctx context.Context, id string, changes bson.M) error {
	if len(changes) == 0 {
		return nil
	}
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": changes})
	if err != nil {
		return fmt.Errorf("update source %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("update source %s: %w", id, ErrNotFound)
	}
	return nil
}

// Delete removes a Source, refusing when it still owns Listings so a
// delete never orphans them: listings must be removed first.
func (s *SourceStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id, "listing_count": 0})
	if err != nil {
		return fmt.Errorf("delete source %s: %w", id, err)
	}
	if res.DeletedCount > 0 {
		return nil
	}

	existing, err := s.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("delete source %s: %w", id, err)
	}
	if existing == nil {
		return fmt.Errorf("delete source %s: %w", id, ErrNotFound)
	}
	return fmt.Errorf("delete source %s: %w", id, ErrSourceHasListings)
}

// RemoveListing undoes AddListing.
func (s *SourceStore) RemoveListing(ctx context.Context, sourceID, listingID string) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": sourceID},
		bson.M{
			"$pull": bson.M{"listings": listingID},
			"$inc":  bson.M{"listing_count": -1},
		},
	)
	if err != nil {
		return fmt.Errorf("remove listing %s from source %s: %w", listingID, sourceID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("remove listing from source %s: %w", sourceID, ErrNotFound)
	}
	return nil
}
