// Package queue implements the agent's priority job queue on top of
// Redis lists, the Go equivalent of the original's three Celery
// queues (scraping_agent_scrape_high/medium/low). Splitting further
// by type_page gives the worker pool a list per (priority, page type)
// pair. Within one priority, Pop takes listing jobs before product
// jobs, so queued listing jobs are always served first at that
// priority.
package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wearlytic/fashionpipeline/internal/model"
)

// priorityOrder is high-to-low, the order a worker scans when looking
// for its next job: it must fully drain high before even looking at
// medium, and medium before low.
var priorityOrder = []model.Priority{model.PriorityHigh, model.PriorityMedium, model.PriorityLow}

// Queue pushes and pops job IDs across the six priority/type_page
// Redis lists.
type Queue struct {
	rdb *redis.Client
}

// New wraps an already-connected Redis client.
func New(rdb *redis.Client) *Queue {
	return &Queue{rdb: rdb}
}

// Connect parses a redis URL and pings it, returning a ready client.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

// listKey builds the Redis key for one (type_page, priority) queue.
func listKey(typePage model.TypePage, priority model.Priority) string {
	return fmt.Sprintf("agent:jobs:%s:%s", typePage, priority)
}

// Push enqueues a job ID onto the list matching its type_page and
// priority.
func (q *Queue) Push(ctx context.Context, typePage model.TypePage, priority model.Priority, jobID string) error {
	key := listKey(typePage, priority)
	if err := q.rdb.LPush(ctx, key, jobID).Err(); err != nil {
		return fmt.Errorf("push job %s onto %s: %w", jobID, key, err)
	}
	return nil
}

// Pop blocks up to timeout waiting for a job ID across all six lists,
// checking high before medium before low for each type_page so a
// worker always prefers the highest-priority work available rather
// than round-robining across priorities. Returns "", "", nil on
// timeout with no job available.
func (q *Queue) Pop(ctx context.Context, timeout time.Duration) (jobID string, typePage model.TypePage, err error) {
	keys := make([]string, 0, len(priorityOrder)*2)
	keyTypePage := make(map[string]model.TypePage, len(priorityOrder)*2)

	for _, p := range priorityOrder {
		for _, tp := range []model.TypePage{model.TypePageListing, model.TypePageProduct} {
			k := listKey(tp, p)
			keys = append(keys, k)
			keyTypePage[k] = tp
		}
	}

	res, err := q.rdb.BRPop(ctx, timeout, keys...).Result()
	if err == redis.Nil {
		return "", "", nil
	}
	if err != nil {
		return "", "", fmt.Errorf("brpop: %w", err)
	}
	// BRPOP returns [key, value].
	key, value := res[0], res[1]
	return value, keyTypePage[key], nil
}

// Depth reports the number of queued jobs in a single list.
func (q *Queue) Depth(ctx context.Context, typePage model.TypePage, priority model.Priority) (int64, error) {
	n, err := q.rdb.LLen(ctx, listKey(typePage, priority)).Result()
	if err != nil {
		return 0, fmt.Errorf("llen %s: %w", listKey(typePage, priority), err)
	}
	return n, nil
}
