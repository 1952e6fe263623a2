package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/wearlytic/fashionpipeline/internal/model"
)

// JobStore is the CRUD manager for Job documents on the agent side.
type JobStore struct {
	coll *mongo.Collection
}

// Create inserts a new Job in the queued state.
func (s *JobStore) Create(ctx context.Context, j *model.Job) error {
	if _, err := s.coll.InsertOne(ctx, j); err != nil {
		return fmt.Errorf("insert job %s: %w", j.ID, err)
	}
	return nil
}

// Get fetches a Job by ID.
func (s *JobStore) Get(ctx context.Context, id string) (*model.Job, error) {
	var j model.Job
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&j)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", id, err)
	}
	return &j, nil
}

// SetProcessing transitions a Job from queued to processing, called
// by a worker right after it dequeues the job's ID from Redis.
func (s *JobStore) SetProcessing(ctx context.Context, id string) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id, "status": model.JobQueued},
		bson.M{"$set": bson.M{"status": model.JobProcessing}},
	)
	if err != nil {
		return fmt.Errorf("set job %s processing: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("set job %s processing: %w", id, ErrNotFound)
	}
	return nil
}

// Complete transitions a Job to completed.
func (s *JobStore) Complete(ctx context.Context, id string, now time.Time) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": model.JobCompleted, "completed_at": now}},
	)
	if err != nil {
		return fmt.Errorf("complete job %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("complete job %s: %w", id, ErrNotFound)
	}
	return nil
}

// Fail transitions a Job to failed and records the error message.
func (s *JobStore) Fail(ctx context.Context, id string, now time.Time, errMsg string) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"status":        model.JobFailed,
			"completed_at":  now,
			"error_message": errMsg,
		}},
	)
	if err != nil {
		return fmt.Errorf("fail job %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("fail job %s: %w", id, ErrNotFound)
	}
	return nil
}
