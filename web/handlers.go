package web

import (
	"errors"
	"net/http"
	"strconv"

	"rafflestars/domain/interfaces"
	"rafflestars/domain/services"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const historyLimit = 20

// Handler holds the dependencies for the HTTP handlers
type Handler struct {
	service interfaces.RaffleService
}

// NewHandler creates a new HTTP handler
func NewHandler(service interfaces.RaffleService) *Handler {
	return &Handler{service: service}
}

type bidRequest struct {
	Amount        int64  `json:"amount" binding:"required"`
	TransactionID string `json:"transaction_id" binding:"required"`
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

// Health reports process liveness
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// CurrentRaffle returns the active raffle, opening one if none exists
func (h *Handler) CurrentRaffle(c *gin.Context) {
	raffle, err := h.service.EnsureActiveRaffle(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"raffle": raffle.PublicInfo()})
}

// RaffleStatus returns a compact progress view of the active raffle
func (h *Handler) RaffleStatus(c *gin.Context) {
	raffle, err := h.service.EnsureActiveRaffle(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"raffle_id":             raffle.ID,
		"current_participants":  raffle.CurrentParticipants,
		"required_participants": raffle.RequiredParticipants,
		"total_prize_pool":      raffle.TotalPrizePool,
	})
}

// PlaceBid admits the calling participant into the active raffle. The
// participant identity comes from the X-Participant-ID header set by the
// upstream identity layer after initData validation.
func (h *Handler) PlaceBid(c *gin.Context) {
	participantID, ok := participantFromHeader(c)
	if !ok {
		return
	}

	var req bidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount and transaction_id are required"})
		return
	}

	result, err := h.service.PlaceBid(c.Request.Context(), participantID, req.Amount, req.TransactionID)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := gin.H{
		"raffle":    result.Raffle.PublicInfo(),
		"position":  result.Entry.Position,
		"completed": result.Completed,
	}
	if result.Outcome != nil {
		resp["winner_id"] = result.Outcome.WinnerID
		resp["winner_prize"] = result.Outcome.WinnerPrize
	}
	c.JSON(http.StatusOK, resp)
}

// History returns recently completed raffles
func (h *Handler) History(c *gin.Context) {
	raffles, err := h.service.ListCompletedRaffles(c.Request.Context(), historyLimit)
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]any, 0, len(raffles))
	for _, raffle := range raffles {
		views = append(views, raffle.PublicInfo())
	}
	c.JSON(http.StatusOK, gin.H{"raffles": views})
}

// GetRaffle returns one raffle with its entries
func (h *Handler) GetRaffle(c *gin.Context) {
	raffleID, ok := raffleIDFromPath(c)
	if !ok {
		return
	}

	detail, err := h.service.GetRaffle(c.Request.Context(), raffleID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"raffle":  detail.Raffle.PublicInfo(),
		"entries": detail.Entries,
	})
}

// VerifyRaffle recomputes a completed raffle's winner from its stored seed
func (h *Handler) VerifyRaffle(c *gin.Context) {
	raffleID, ok := raffleIDFromPath(c)
	if !ok {
		return
	}

	result, err := h.service.VerifyRaffle(c.Request.Context(), raffleID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"is_valid":          result.IsValid,
		"stored_winner":     result.StoredWinner,
		"recomputed_winner": result.RecomputedWinner,
		"seed":              result.Seed,
		"verification_hash": result.VerificationHash,
	})
}

// CancelRaffle cancels an active raffle and refunds its entries
func (h *Handler) CancelRaffle(c *gin.Context) {
	raffleID, ok := raffleIDFromPath(c)
	if !ok {
		return
	}

	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cancel request"})
		return
	}
	if req.Reason == "" {
		req.Reason = "cancelled by operator"
	}

	result, err := h.service.CancelRaffle(c.Request.Context(), raffleID, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"raffle":           result.Raffle.PublicInfo(),
		"refunded_entries": len(result.RefundedEntries),
	})
}

func participantFromHeader(c *gin.Context) (int64, bool) {
	header := c.GetHeader("X-Participant-ID")
	if header == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing participant identity"})
		return 0, false
	}
	id, err := strconv.ParseInt(header, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid participant identity"})
		return 0, false
	}
	return id, true
}

func raffleIDFromPath(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid raffle id"})
		return 0, false
	}
	return id, true
}

// respondError maps typed domain errors to HTTP responses
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrAlreadyParticipated),
		errors.Is(err, services.ErrRaffleFull),
		errors.Is(err, services.ErrActiveRaffleExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrRaffleNotActive),
		errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrRaffleNotCompleted),
		errors.Is(err, services.ErrPaymentRejected):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrRaffleNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		log.WithError(err).Error("Unhandled error in HTTP handler")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
