package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

// broadcastSubject carries state updates consumed by the mini-app gateway
// and fanned out to connected clients
const broadcastSubject = "raffle.notify.broadcast"

// MiniAppNotifier implements NotificationSink. Broadcasts go over core NATS
// for the mini-app gateway; per-participant notifications go out as Telegram
// messages. Both legs are best-effort: failures are logged, never returned.
type MiniAppNotifier struct {
	natsClient *NATSClient
	bot        *tgbotapi.BotAPI
}

// NewMiniAppNotifier creates a notification sink. Either dependency may be
// nil, in which case that leg is skipped.
func NewMiniAppNotifier(natsClient *NATSClient, bot *tgbotapi.BotAPI) *MiniAppNotifier {
	return &MiniAppNotifier{
		natsClient: natsClient,
		bot:        bot,
	}
}

type notification struct {
	Event     string    `json:"event"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// Broadcast notifies all connected mini-app clients
func (n *MiniAppNotifier) Broadcast(ctx context.Context, event string, payload any) {
	if n.natsClient == nil {
		return
	}

	data, err := json.Marshal(notification{
		Event:     event,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		log.WithError(err).WithField("event", event).Error("Failed to marshal broadcast")
		return
	}

	if err := n.natsClient.PublishCore(broadcastSubject, data); err != nil {
		log.WithError(err).WithField("event", event).Error("Failed to broadcast notification")
	}
}

// Notify sends a Telegram message to a single participant
func (n *MiniAppNotifier) Notify(ctx context.Context, participantID int64, event string, payload any) {
	if n.bot == nil {
		return
	}

	text := renderNotification(event, payload)
	if text == "" {
		return
	}

	msg := tgbotapi.NewMessage(participantID, text)
	if _, err := n.bot.Send(msg); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"participantID": participantID,
			"event":         event,
		}).Error("Failed to send Telegram notification")
	}
}

func renderNotification(event string, payload any) string {
	switch event {
	case "raffle_won":
		return "🎉 Congratulations! You won the raffle. Your prize is on its way."
	case "bid_refunded":
		return "💰 The raffle was cancelled and your bid has been refunded."
	default:
		data, err := json.Marshal(payload)
		if err != nil {
			return ""
		}
		return fmt.Sprintf("%s: %s", event, data)
	}
}
