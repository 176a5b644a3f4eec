package infrastructure

import (
	"context"
	"strconv"
	"time"

	"rafflestars/domain/services"

	"github.com/kevinms/leakybucket-go"
	log "github.com/sirupsen/logrus"
)

// MemoryAdmissionGate throttles bid attempts per participant with an
// in-process leaky bucket. Suitable for single-instance deployments; use the
// Redis gate when running more than one replica.
type MemoryAdmissionGate struct {
	limiter *leakybucket.Collector
}

// NewMemoryAdmissionGate creates a gate allowing limit attempts per window
func NewMemoryAdmissionGate(limit int, window time.Duration) *MemoryAdmissionGate {
	rate := float64(limit) / window.Seconds()
	return &MemoryAdmissionGate{
		limiter: leakybucket.NewCollector(rate, int64(limit), true),
	}
}

// Allow returns ErrRateLimited once the participant's bucket is full
func (g *MemoryAdmissionGate) Allow(ctx context.Context, participantID int64) error {
	key := strconv.FormatInt(participantID, 10)
	if g.limiter.Remaining(key) <= 0 {
		log.WithField("participantID", participantID).Debug("Bid attempt rate limited")
		return services.ErrRateLimited
	}
	g.limiter.Add(key, 1)
	return nil
}
