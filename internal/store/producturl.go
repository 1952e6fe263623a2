package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wearlytic/fashionpipeline/internal/model"
)

// ProductURLStore is the CRUD manager for ProductURL documents.
type ProductURLStore struct {
	coll *mongo.Collection
}

// Create inserts a new ProductURL.
func (s *ProductURLStore) Create(ctx context.Context, u *model.ProductURL) error {
	if _, err := s.coll.InsertOne(ctx, u); err != nil {
		return fmt.Errorf("insert product url %s: %w", u.ID, err)
	}
	return nil
}

// Get fetches a ProductURL by ID.
func (s *ProductURLStore) Get(ctx context.Context, id string) (*model.ProductURL, error) {
	var u model.ProductURL
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get product url %s: %w", id, err)
	}
	return &u, nil
}

// ListUnbatched returns every ProductURL not yet assigned to a Batch,
// the candidate pool S2 draws from.
func (s *ProductURLStore) ListUnbatched(ctx context.Context, limit int64) ([]model.ProductURL, error) {
	opts := options.Find().SetLimit(limit)
	cur, err := s.coll.Find(ctx, bson.M{"batched": false}, opts)
	if err != nil {
		return nil, fmt.Errorf("list unbatched product urls: %w", err)
	}
	defer cur.Close(ctx)

	var out []model.ProductURL
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode product urls: %w", err)
	}
	return out, nil
}

// MarkBatched records which Batch a ProductURL was assigned to.
func (s *ProductURLStore) MarkBatched(ctx context.Context, id, batchID string) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"batched": true, "batch_id": batchID}},
	)
	if err != nil {
		return fmt.Errorf("mark product url %s batched: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("mark product url %s batched: %w", id, ErrNotFound)
	}
	return nil
}

// ListByListing returns every ProductURL discovered from listingID.
func (s *ProductURLStore) ListByListing(ctx context.Context, listingID string) ([]model.ProductURL, error) {
	cur, err := s.coll.Find(ctx, bson.M{"listing_id": listingID})
	if err != nil {
		return nil, fmt.Errorf("list product urls for listing %s: %w", listingID, err)
	}
	defer cur.Close(ctx)

	var out []model.ProductURL
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode product urls: %w", err)
	}
	return out, nil
}

// ExistsByURL reports whether a ProductURL with the given raw URL has
// already been recorded, used to deduplicate a listing walk's output
// against URLs discovered on a previous pass.
func (s *ProductURLStore) ExistsByURL(ctx context.Context, url string) (bool, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{"url": url})
	if err != nil {
		return false, fmt.Errorf("check product url existence %s: %w", url, err)
	}
	return n > 0, nil
}
