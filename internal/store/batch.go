package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wearlytic/fashionpipeline/internal/model"
)

// BatchStore is the CRUD manager for Batch documents.
type BatchStore struct {
	coll *mongo.Collection
}

// Create inserts a new, empty Batch.
func (s *BatchStore) Create(ctx context.Context, b *model.Batch) error {
	if _, err := s.coll.InsertOne(ctx, b); err != nil {
		return fmt.Errorf("insert batch %s: %w", b.ID, err)
	}
	return nil
}

// Get fetches a Batch by ID.
func (s *BatchStore) Get(ctx context.Context, id string) (*model.Batch, error) {
	var b model.Batch
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&b)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get batch %s: %w", id, err)
	}
	return &b, nil
}

// WithSpace finds the oldest Batch whose batch_size is still below
// capacity, the same "fill before create" search S2 performs.
func (s *BatchStore) WithSpace(ctx context.Context, capacity int) (*model.Batch, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: 1}})
	var b model.Batch
	err := s.coll.FindOne(ctx, bson.M{"batch_size": bson.M{"$lt": capacity}}, opts).Decode(&b)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find batch with space: %w", err)
	}
	return &b, nil
}

// AddURL atomically appends a ProductURL ID to a Batch and
// increments batch_size, so a retried call never double-counts a URL
// already present in the batch.
func (s *BatchStore) AddURL(ctx context.Context, batchID, urlID string) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": batchID, "urls": bson.M{"$ne": urlID}},
		bson.M{
			"$addToSet": bson.M{"urls": urlID},
			"$inc":      bson.M{"batch_size": 1},
		},
	)
	if err != nil {
		return fmt.Errorf("add url %s to batch %s: %w", urlID, batchID, err)
	}
	if res.MatchedCount == 0 {
		existing, err := s.Get(ctx, batchID)
		if err != nil {
			return fmt.Errorf("add url to batch %s: %w", batchID, err)
		}
		if existing == nil {
			return fmt.Errorf("add url to batch %s: %w", batchID, ErrNotFound)
		}
	}
	return nil
}

// SetLastProcessed stamps a Batch as dispatched in the current S3
// cycle.
func (s *BatchStore) SetLastProcessed(ctx context.Context, id string, now time.Time) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"last_processed": now}},
	)
	if err != nil {
		return fmt.Errorf("set last_processed for batch %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("set last_processed for batch %s: %w", id, ErrNotFound)
	}
	return nil
}

// TopNByAge returns up to n batches ordered oldest-last_processed-first,
// batches never processed (last_processed is nil) sorting ahead of
// ones that have been, so a fresh batch always gets scraped before a
// batch that is merely due for a refresh.
func (s *BatchStore) TopNByAge(ctx context.Context, n int) ([]model.Batch, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "last_processed", Value: 1}}).
		SetLimit(int64(n))

	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list top batches: %w", err)
	}
	defer cur.Close(ctx)

	var out []model.Batch
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode batches: %w", err)
	}
	return out, nil
}
