package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wearlytic/fashionpipeline/internal/model"
)

// JobResultStore is the CRUD manager for JobResult documents, the
// terminal payload a worker writes once a Job finishes.
type JobResultStore struct {
	coll *mongo.Collection
}

// Upsert writes a JobResult, replacing any prior result for the same
// job. A worker may legitimately retry a failed job write, so this is
// idempotent rather than insert-only.
func (s *JobResultStore) Upsert(ctx context.Context, r *model.JobResult) error {
	opts := options.Replace().SetUpsert(true)
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": r.JobID}, r, opts)
	if err != nil {
		return fmt.Errorf("upsert job result %s: %w", r.JobID, err)
	}
	return nil
}

// Get fetches a JobResult by job ID.
func (s *JobResultStore) Get(ctx context.Context, jobID string) (*model.JobResult, error) {
	var r model.JobResult
	err := s.coll.FindOne(ctx, bson.M{"_id": jobID}).Decode(&r)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job result %s: %w", jobID, err)
	}
	return &r, nil
}
