package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/wearlytic/fashionpipeline/internal/model"
)

// StatusStore is the CRUD manager for Status documents, the
// ingestor's tracking row for an outstanding agent Job.
type StatusStore struct {
	coll *mongo.Collection
}

// Create inserts a new Status.
func (s *StatusStore) Create(ctx context.Context, st *model.Status) error {
	if _, err := s.coll.InsertOne(ctx, st); err != nil {
		return fmt.Errorf("insert status %s: %w", st.ID, err)
	}
	return nil
}

// Get fetches a Status by ID.
func (s *StatusStore) Get(ctx context.Context, id string) (*model.Status, error) {
	var st model.Status
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&st)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get status %s: %w", id, err)
	}
	return &st, nil
}

// ListByState returns every Status in the given state, the candidate
// pool S4 polls for outstanding jobs.
func (s *StatusStore) ListByState(ctx context.Context, state model.StatusState) ([]model.Status, error) {
	cur, err := s.coll.Find(ctx, bson.M{"status": state})
	if err != nil {
		return nil, fmt.Errorf("list statuses by state %s: %w", state, err)
	}
	defer cur.Close(ctx)

	var out []model.Status
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode statuses: %w", err)
	}
	return out, nil
}

// SetState transitions a Status to a new state.
func (s *StatusStore) SetState(ctx context.Context, id string, state model.StatusState) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": state}},
	)
	if err != nil {
		return fmt.Errorf("set status %s state: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("set status %s state: %w", id, ErrNotFound)
	}
	return nil
}

// Delete removes a Status by ID. The scheduler tasks never call it:
// S4 marks reconciled Statuses completed or failed and keeps them.
func (s *StatusStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete status %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("delete status %s: %w", id, ErrNotFound)
	}
	return nil
}
