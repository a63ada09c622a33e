package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/vibe-gaming/publisher/internal/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	attemptKeyPrefix = "attempt:"
	scanBatch        = 500
)

// attemptRepository keeps one sorted set per (ip, url); score is the unix
// millisecond timestamp of the attempt.
type attemptRepository struct {
	rdb redis.UniversalClient
}

func newAttemptRepository(rdb redis.UniversalClient) *attemptRepository {
	return &attemptRepository{
		rdb: rdb,
	}
}

func attemptKey(ip string, url string) string {
	return attemptKeyPrefix + ip + ":" + url
}

func (r *attemptRepository) Create(ctx context.Context, attempt domain.Attempt, retention time.Duration) error {
	key := attemptKey(attempt.IP, attempt.URL)
	ts := attempt.Timestamp.UnixMilli()
	staleBefore := ts - retention.Milliseconds()

	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, key, redis.Z{Score: float64(ts), Member: uuid.NewString()})
		pipe.ZRemRangeByScore(ctx, key, "-inf", "("+strconv.FormatInt(staleBefore, 10))
		pipe.PExpire(ctx, key, retention)
		return nil
	})
	if err != nil {
		return fmt.Errorf("repository.attempt.Create: %w", err)
	}

	return nil
}

// CountSince counts attempts with timestamp >= since.
func (r *attemptRepository) CountSince(ctx context.Context, ip string, url string, since time.Time) (int64, error) {
	n, err := r.rdb.ZCount(ctx, attemptKey(ip, url), strconv.FormatInt(since.UnixMilli(), 10), "+inf").Result()
	if err != nil {
		return 0, fmt.Errorf("repository.attempt.CountSince: %w", err)
	}

	return n, nil
}

func (r *attemptRepository) DeleteAll(ctx context.Context) error {
	if cluster, ok := r.rdb.(*redis.ClusterClient); ok {
		return cluster.ForEachMaster(ctx, func(ctx context.Context, node *redis.Client) error {
			return deleteByPattern(ctx, node, attemptKeyPrefix+"*")
		})
	}

	return deleteByPattern(ctx, r.rdb, attemptKeyPrefix+"*")
}

func deleteByPattern(ctx context.Context, c redis.Cmdable, pattern string) error {
	var cursor uint64
	for {
		keys, next, err := c.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return fmt.Errorf("repository.attempt.DeleteAll: scan failed: %w", err)
		}

		if len(keys) > 0 {
			pipe := c.Pipeline()
			for _, key := range keys {
				pipe.Del(ctx, key)
			}
			if _, err := pipe.Exec(ctx); err != nil {
				return fmt.Errorf("repository.attempt.DeleteAll: del failed: %w", err)
			}
		}

		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}
