package infrastructure

import (
	"context"
	"fmt"
	"time"

	"rafflestars/domain/services"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// RedisAdmissionGate throttles bid attempts per participant with a fixed
// window counter shared across instances. The gate fails open: if Redis is
// unreachable the bid proceeds and the transactional core stays the sole
// authority on correctness.
type RedisAdmissionGate struct {
	client *redis.Client
	limit  int
	window time.Duration
}

// NewRedisAdmissionGate creates a gate allowing limit attempts per window
func NewRedisAdmissionGate(client *redis.Client, limit int, window time.Duration) *RedisAdmissionGate {
	return &RedisAdmissionGate{
		client: client,
		limit:  limit,
		window: window,
	}
}

// Allow returns ErrRateLimited once the participant's window counter exceeds
// the limit
func (g *RedisAdmissionGate) Allow(ctx context.Context, participantID int64) error {
	key := fmt.Sprintf("rafflestars:bid_attempts:%d", participantID)

	count, err := g.client.Incr(ctx, key).Result()
	if err != nil {
		log.WithError(err).Warn("Admission gate Redis unavailable, allowing bid")
		return nil
	}

	if count == 1 {
		if err := g.client.Expire(ctx, key, g.window).Err(); err != nil {
			log.WithError(err).Warn("Failed to set rate limit window expiry")
		}
	}

	if count > int64(g.limit) {
		log.WithField("participantID", participantID).Debug("Bid attempt rate limited")
		return services.ErrRateLimited
	}

	return nil
}
