package worker

import (
	"context"
	"errors"
	"strings"
	"time"

	"coursehub/internal/platform/metrics"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	cleanupLockPrefix = "cleanup_lock:"
	// retryPrefix marks a key that already failed once.
	retryPrefix = "retry:"
)

var releaseLock = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`)

// Deleter removes stored uploads.
type Deleter interface {
	Delete(ctx context.Context, key string) error
}

// CleanupWorker deletes stored uploads whose rows are gone. Keys arrive on a
// Redis list; a failed delete is pushed back once and then dropped.
type CleanupWorker struct {
	rdb     *redis.Client
	queue   string
	store   Deleter
	lockTTL time.Duration
	poll    time.Duration
	log     *zap.Logger
}

func NewCleanupWorker(rdb *redis.Client, queue string, store Deleter, lockTTL time.Duration, log *zap.Logger) *CleanupWorker {
	return &CleanupWorker{rdb: rdb, queue: queue, store: store, lockTTL: lockTTL, poll: 5 * time.Second, log: log}
}

// Start blocks until ctx is done.
func (w *CleanupWorker) Start(ctx context.Context) {
	w.log.Info("cleanup worker started", zap.String("queue", w.queue))
	for {
		if ctx.Err() != nil {
			w.log.Info("cleanup worker stopping")
			return
		}
		res, err := w.rdb.BRPop(ctx, w.poll, w.queue).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}
			w.log.Error("popping cleanup queue", zap.String("queue", w.queue), zap.Error(err))
			sleep(ctx, 5*time.Second)
			continue
		}
		// res is [queue, value]
		if len(res) < 2 || res[1] == "" {
			continue
		}
		w.Process(ctx, res[1])
	}
}

// Process handles one queue entry.
func (w *CleanupWorker) Process(ctx context.Context, entry string) {
	key, retried := strings.CutPrefix(entry, retryPrefix)
	lockKey := cleanupLockPrefix + key
	lockValue := uuid.NewString()

	ok, err := w.rdb.SetNX(ctx, lockKey, lockValue, w.lockTTL).Result()
	if err != nil {
		w.log.Error("acquiring cleanup lock", zap.String("key", key), zap.Error(err))
		w.fail(ctx, key, retried)
		return
	}
	if !ok {
		// another worker is deleting the same key
		metrics.CleanupJobs.WithLabelValues("skipped").Inc()
		return
	}
	defer func() {
		n, err := releaseLock.Run(ctx, w.rdb, []string{lockKey}, lockValue).Int64()
		if err != nil {
			w.log.Error("releasing cleanup lock", zap.String("key", key), zap.Error(err))
		} else if n == 0 {
			w.log.Warn("cleanup lock expired before release", zap.String("key", key))
		}
	}()

	if err := w.store.Delete(ctx, key); err != nil {
		w.log.Warn("deleting stored upload", zap.String("key", key), zap.Bool("retry", retried), zap.Error(err))
		w.fail(ctx, key, retried)
		return
	}
	metrics.CleanupJobs.WithLabelValues("deleted").Inc()
	w.log.Debug("stored upload deleted", zap.String("key", key))
}

func (w *CleanupWorker) fail(ctx context.Context, key string, retried bool) {
	if retried {
		metrics.CleanupJobs.WithLabelValues("dropped").Inc()
		w.log.Error("giving up on stored upload", zap.String("key", key))
		return
	}
	if err := w.rdb.LPush(ctx, w.queue, retryPrefix+key).Err(); err != nil {
		metrics.CleanupJobs.WithLabelValues("dropped").Inc()
		w.log.Error("re-queueing stored upload", zap.String("key", key), zap.Error(err))
		return
	}
	metrics.CleanupJobs.WithLabelValues("requeued").Inc()
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
