package web

import (
	"context"
	"net/http"

	"rafflestars/domain/interfaces"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// WebhookHandler processes Telegram bot updates. The payment flow arrives
// here: pre_checkout_query is approved while the raffle still has room, and
// successful_payment carries the charge id that admits the payer.
type WebhookHandler struct {
	service interfaces.RaffleService
	bot     *tgbotapi.BotAPI
}

// NewWebhookHandler creates a new Telegram webhook handler
func NewWebhookHandler(service interfaces.RaffleService, bot *tgbotapi.BotAPI) *WebhookHandler {
	return &WebhookHandler{
		service: service,
		bot:     bot,
	}
}

// HandleUpdate processes one webhook update. Telegram retries on non-200, so
// processing failures are logged and acknowledged rather than surfaced.
func (h *WebhookHandler) HandleUpdate(c *gin.Context) {
	var update tgbotapi.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid update payload"})
		return
	}

	if update.PreCheckoutQuery != nil {
		h.answerPreCheckout(c.Request.Context(), update.PreCheckoutQuery)
	}

	if update.Message != nil && update.Message.SuccessfulPayment != nil {
		h.admitPayer(c, update.Message)
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// answerPreCheckout approves the checkout when the active raffle can still
// take the payer's entry, so obviously doomed payments are declined before
// Telegram charges the user
func (h *WebhookHandler) answerPreCheckout(ctx context.Context, query *tgbotapi.PreCheckoutQuery) {
	if h.bot == nil {
		return
	}

	answer := tgbotapi.PreCheckoutConfig{
		PreCheckoutQueryID: query.ID,
		OK:                 true,
	}

	raffle, err := h.service.EnsureActiveRaffle(ctx)
	if err != nil {
		log.WithError(err).Warn("Could not check raffle state for pre-checkout")
	} else if raffle.IsFull() || int64(query.TotalAmount) != raffle.BidAmount {
		answer.OK = false
		answer.ErrorMessage = "The current raffle cannot accept this bid. Please try again."
	}

	if _, err := h.bot.Request(answer); err != nil {
		log.WithError(err).WithField("queryID", query.ID).Error("Failed to answer pre-checkout query")
	}
}

// admitPayer places the bid for a completed Stars payment
func (h *WebhookHandler) admitPayer(c *gin.Context, msg *tgbotapi.Message) {
	payment := msg.SuccessfulPayment
	participantID := msg.From.ID

	result, err := h.service.PlaceBid(
		c.Request.Context(),
		participantID,
		int64(payment.TotalAmount),
		payment.TelegramPaymentChargeID,
	)
	if err != nil {
		// The user has already paid; a failed admission here must be
		// reconciled by support against the charge id.
		log.WithError(err).WithFields(log.Fields{
			"participantID": participantID,
			"chargeID":      payment.TelegramPaymentChargeID,
		}).Error("Failed to admit paid participant")
		return
	}

	log.WithFields(log.Fields{
		"participantID": participantID,
		"raffleID":      result.Raffle.ID,
		"position":      result.Entry.Position,
		"completed":     result.Completed,
	}).Info("Admitted participant from webhook payment")
}
