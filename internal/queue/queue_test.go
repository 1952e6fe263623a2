package queue

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/wearlytic/fashionpipeline/internal/model"
)

func newTestQueue(t *testing.T) (*Queue, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb), mr
}

func TestPopPrefersHighOverMediumOverLow(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	if err := q.Push(ctx, model.TypePageProduct, model.PriorityLow, "low-job"); err != nil {
		t.Fatalf("push low: %v", err)
	}
	if err := q.Push(ctx, model.TypePageProduct, model.PriorityMedium, "medium-job"); err != nil {
		t.Fatalf("push medium: %v", err)
	}
	if err := q.Push(ctx, model.TypePageProduct, model.PriorityHigh, "high-job"); err != nil {
		t.Fatalf("push high: %v", err)
	}

	jobID, typePage, err := q.Pop(ctx, time.Second)
	if err != nil {
		t.Fatalf("pop: %v", err)
	}
	if jobID != "high-job" {
		t.Fatalf("expected high-priority job popped first, got %q", jobID)
	}
	if typePage != model.TypePageProduct {
		t.Fatalf("expected type_page product, got %q", typePage)
	}

	jobID, _, err = q.Pop(ctx, time.Second)
	if err != nil {
		t.Fatalf("pop: %v", err)
	}
	if jobID != "medium-job" {
		t.Fatalf("expected medium-priority job popped second, got %q", jobID)
	}
}

func TestPopTimesOutWithEmptyJobID(t *testing.T) {
	q, _ := newTestQueue(t)
	jobID, _, err := q.Pop(context.Background(), 50*time.Millisecond)
	if err != nil {
		t.Fatalf("pop on empty queue: %v", err)
	}
	if jobID != "" {
		t.Fatalf("expected empty job id on timeout, got %q", jobID)
	}
}

func TestDepthReflectsQueueLength(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	_ = q.Push(ctx, model.TypePageListing, model.PriorityHigh, "a")
	_ = q.Push(ctx, model.TypePageListing, model.PriorityHigh, "b")

	depth, err := q.Depth(ctx, model.TypePageListing, model.PriorityHigh)
	if err != nil {
		t.Fatalf("depth: %v", err)
	}
	if depth != 2 {
		t.Fatalf("expected depth 2, got %d", depth)
	}
}
