package message

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// SentCounter is the store-side fallback when no cache is configured.
type SentCounter interface {
	CountSentToday(userID int64) (int, error)
}

// QuotaChecker tracks per-user daily send counts. With a redis client it
// keeps a counter keyed by user and day that expires at midnight; without
// one it falls back to counting today's rows in the store. A cache failure
// also falls back rather than blocking sends.
type QuotaChecker struct {
	client    *redis.Client
	fallback  SentCounter
	maxPerDay int
	logger    *slog.Logger
}

func NewQuotaChecker(client *redis.Client, fallback SentCounter, maxPerDay int, logger *slog.Logger) *QuotaChecker {
	if logger == nil {
		logger = slog.Default()
	}
	return &QuotaChecker{
		client:    client,
		fallback:  fallback,
		maxPerDay: maxPerDay,
		logger:    logger,
	}
}

func (q *QuotaChecker) key(userID int64, now time.Time) string {
	return fmt.Sprintf("quota:send:%d:%s", userID, now.Format("2006-01-02"))
}

// StartOfDay returns midnight in t's location. The quota key is derived from
// the local date, so the counter expiry and the store fallback must use the
// same boundary or the two disagree around midnight.
func StartOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// Allow reports whether the user is still under today's cap.
func (q *QuotaChecker) Allow(ctx context.Context, userID int64) (bool, error) {
	count, err := q.count(ctx, userID)
	if err != nil {
		return false, err
	}
	return count < q.maxPerDay, nil
}

// Consume records one sent message. Called only after the send committed.
func (q *QuotaChecker) Consume(ctx context.Context, userID int64) {
	if q.client == nil {
		return
	}
	now := time.Now()
	key := q.key(userID, now)

	n, err := q.client.Incr(ctx, key).Result()
	if err != nil {
		q.logger.Warn("quota counter incr failed", "user_id", userID, "error", err)
		return
	}
	if n == 1 {
		midnight := StartOfDay(now).Add(24 * time.Hour)
		q.client.ExpireAt(ctx, key, midnight)
	}
}

func (q *QuotaChecker) count(ctx context.Context, userID int64) (int, error) {
	if q.client != nil {
		val, err := q.client.Get(ctx, q.key(userID, time.Now())).Int()
		if err == nil {
			return val, nil
		}
		if err == redis.Nil {
			return 0, nil
		}
		q.logger.Warn("quota counter read failed, falling back to store", "user_id", userID, "error", err)
	}
	return q.fallback.CountSentToday(userID)
}
