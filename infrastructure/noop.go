package infrastructure

import (
	"context"

	"rafflestars/domain/events"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// NoopEventPublisher is an event publisher that does nothing.
// Used when no NATS transport is configured and in tests.
type NoopEventPublisher struct{}

// NewNoopEventPublisher creates a new no-op event publisher
func NewNoopEventPublisher() *NoopEventPublisher {
	return &NoopEventPublisher{}
}

// Publish does nothing with the event
func (n *NoopEventPublisher) Publish(event events.Event) error {
	return nil
}

// NoopNotificationSink drops all notifications
type NoopNotificationSink struct{}

// NewNoopNotificationSink creates a new no-op notification sink
func NewNoopNotificationSink() *NoopNotificationSink {
	return &NoopNotificationSink{}
}

func (n *NoopNotificationSink) Broadcast(ctx context.Context, event string, payload any) {}

func (n *NoopNotificationSink) Notify(ctx context.Context, participantID int64, event string, payload any) {
}

// DevPaymentBridge accepts every capture and fabricates receipts. It stands
// in for the Telegram bridge when no bot token is configured, matching how
// the system runs in local development.
type DevPaymentBridge struct{}

// NewDevPaymentBridge creates a new development payment bridge
func NewDevPaymentBridge() *DevPaymentBridge {
	log.Warn("Payment bridge running in development mode: captures are not verified")
	return &DevPaymentBridge{}
}

func (b *DevPaymentBridge) VerifyAndCapture(ctx context.Context, participantID int64, amount int64, proof string) error {
	log.WithFields(log.Fields{
		"participantID": participantID,
		"amount":        amount,
		"proof":         proof,
	}).Debug("Dev bridge accepted capture")
	return nil
}

func (b *DevPaymentBridge) Payout(ctx context.Context, participantID int64, amount int64) (string, error) {
	return "dev-prize-" + uuid.New().String(), nil
}

func (b *DevPaymentBridge) Refund(ctx context.Context, participantID int64, amount int64, chargeRef string) (string, error) {
	return "dev-refund-" + uuid.New().String(), nil
}
