package queue

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// CleanupQueue hands storage keys of deleted rows to the cleanup worker.
type CleanupQueue struct {
	rdb  *redis.Client
	name string
}

func NewCleanupQueue(rdb *redis.Client, name string) *CleanupQueue {
	return &CleanupQueue{rdb: rdb, name: name}
}

func (q *CleanupQueue) Name() string { return q.name }

// Discard enqueues keys for deletion. Empty keys are skipped.
func (q *CleanupQueue) Discard(ctx context.Context, keys ...string) error {
	vals := make([]interface{}, 0, len(keys))
	for _, k := range keys {
		if k != "" {
			vals = append(vals, k)
		}
	}
	if len(vals) == 0 {
		return nil
	}
	if err := q.rdb.LPush(ctx, q.name, vals...).Err(); err != nil {
		return fmt.Errorf("pushing %d keys to %s: %w", len(vals), q.name, err)
	}
	return nil
}
