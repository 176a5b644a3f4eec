package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"rafflestars/domain/events"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// eventStreamName is the JetStream stream holding raffle lifecycle events
const eventStreamName = "raffle_events"

// EventEnvelope wraps a domain event for the wire with delivery metadata
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Timestamp     time.Time       `json:"timestamp"`
	SourceService string          `json:"source_service"`
	Payload       json.RawMessage `json:"payload"`
}

// NATSEventPublisher implements the EventPublisher interface over JetStream
type NATSEventPublisher struct {
	natsClient    *NATSClient
	localHandlers map[events.EventType][]func(context.Context, events.Event) error
}

// NewNATSEventPublisher creates a new NATS event publisher
func NewNATSEventPublisher(natsClient *NATSClient) *NATSEventPublisher {
	return &NATSEventPublisher{
		natsClient:    natsClient,
		localHandlers: make(map[events.EventType][]func(context.Context, events.Event) error),
	}
}

// SubjectForEvent maps an event type to its NATS subject
func SubjectForEvent(eventType events.EventType) string {
	return "raffle.events." + string(eventType)
}

// Publish publishes an event to NATS using the appropriate subject. Local
// handlers run first so the publishing process can react without a round
// trip through the broker.
func (p *NATSEventPublisher) Publish(event events.Event) error {
	ctx := context.Background()
	eventType := event.Type()

	for _, handler := range p.localHandlers[eventType] {
		if err := handler(ctx, event); err != nil {
			log.WithFields(log.Fields{
				"eventType": eventType,
				"error":     err,
			}).Error("Local event handler failed")
		}
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	envelope := EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     string(eventType),
		Timestamp:     time.Now().UTC(),
		SourceService: "rafflestars",
		Payload:       payload,
	}

	envelopeData, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	subject := SubjectForEvent(eventType)
	if err := p.natsClient.Publish(ctx, subject, envelopeData); err != nil {
		return fmt.Errorf("failed to publish event to NATS: %w", err)
	}

	log.WithFields(log.Fields{
		"eventType": eventType,
		"eventId":   envelope.EventID,
		"subject":   subject,
	}).Debug("Published event to NATS")

	return nil
}

// RegisterLocalHandler registers a handler invoked in-process for events of
// the given type, before they are pushed to the broker
func (p *NATSEventPublisher) RegisterLocalHandler(eventType events.EventType, handler func(context.Context, events.Event) error) {
	p.localHandlers[eventType] = append(p.localHandlers[eventType], handler)
	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(p.localHandlers[eventType]),
	}).Info("Registered local event handler")
}

// EnsureEventStream ensures the raffle_events stream exists
func (p *NATSEventPublisher) EnsureEventStream() error {
	return p.natsClient.ensureStream(eventStreamName, []string{"raffle.events.*"})
}
