package interfaces

import (
	"context"

	"rafflestars/domain/entities"
	"rafflestars/domain/events"
)

// RaffleRepository defines data access for raffle rounds. Every state
// transition returns the fresh post-transition snapshot; callers never treat
// a previously loaded struct as current truth.
type RaffleRepository interface {
	// Create opens a new active raffle from a settings snapshot. The store
	// enforces at most one active raffle; a second concurrent creator
	// receives services.ErrActiveRaffleExists.
	Create(ctx context.Context, settings *entities.RaffleSettings) (*entities.Raffle, error)

	// GetActive returns the current active raffle, or nil if none exists
	GetActive(ctx context.Context) (*entities.Raffle, error)

	// GetByID retrieves a raffle by its ID, nil if not found
	GetByID(ctx context.Context, id int64) (*entities.Raffle, error)

	// GetByIDForUpdate retrieves a raffle by ID holding a row lock for the
	// remainder of the transaction
	GetByIDForUpdate(ctx context.Context, id int64) (*entities.Raffle, error)

	// AdmitIncrement bumps participant count and prize pool in one statement
	// and returns the fresh snapshot. Must run under a row lock taken by
	// GetByIDForUpdate in the same transaction.
	AdmitIncrement(ctx context.Context, raffleID int64, amount int64) (*entities.Raffle, error)

	// Complete transitions an active raffle to completed with its outcome
	Complete(ctx context.Context, raffleID int64, winnerID, winnerPrize, operatorFee int64, seed string) (*entities.Raffle, error)

	// Cancel transitions an active raffle to cancelled
	Cancel(ctx context.Context, raffleID int64) (*entities.Raffle, error)

	// ListCompleted returns recently completed raffles, newest first
	ListCompleted(ctx context.Context, limit int) ([]*entities.Raffle, error)
}

// EntryRepository defines data access for raffle entries
type EntryRepository interface {
	// Create inserts a confirmed entry. The (raffle_id, participant_id)
	// unique constraint backstops concurrent duplicates.
	Create(ctx context.Context, entry *entities.Entry) (*entities.Entry, error)

	// ExistsForParticipant reports whether the participant already has an
	// entry on this raffle
	ExistsForParticipant(ctx context.Context, raffleID, participantID int64) (bool, error)

	// ListConfirmedByRaffle returns confirmed entries in admission order
	ListConfirmedByRaffle(ctx context.Context, raffleID int64) ([]*entities.Entry, error)

	// MarkAllRefunded flips every entry of the raffle to refunded and
	// returns the number of rows affected
	MarkAllRefunded(ctx context.Context, raffleID int64) (int, error)

	// ListByParticipant returns a participant's entries, newest first
	ListByParticipant(ctx context.Context, participantID int64, limit int) ([]*entities.Entry, error)
}

// SettingsRepository defines data access for raffle settings
type SettingsRepository interface {
	// GetActive returns the currently active settings, nil if none
	GetActive(ctx context.Context) (*entities.RaffleSettings, error)

	// Create activates new settings, deactivating any previous set
	Create(ctx context.Context, settings *entities.RaffleSettings) (*entities.RaffleSettings, error)

	// History returns past settings, newest first
	History(ctx context.Context, limit int) ([]*entities.RaffleSettings, error)
}

// ParticipantRepository defines data access for participants
type ParticipantRepository interface {
	// GetOrCreate fetches a participant, creating the row on first contact
	GetOrCreate(ctx context.Context, telegramID int64, username, firstName string) (*entities.Participant, error)

	// GetByID retrieves a participant, nil if unknown
	GetByID(ctx context.Context, telegramID int64) (*entities.Participant, error)

	// IncrementBids bumps the participant's lifetime bid counter
	IncrementBids(ctx context.Context, telegramID int64) error

	// IncrementWinnings adds to the participant's cumulative winnings
	IncrementWinnings(ctx context.Context, telegramID int64, amount int64) error
}

// PaymentRecordRepository defines data access for payment bookkeeping rows
type PaymentRecordRepository interface {
	// Create inserts a payment record
	Create(ctx context.Context, record *entities.PaymentRecord) (*entities.PaymentRecord, error)

	// ListByRaffle returns all payment records of a raffle
	ListByRaffle(ctx context.Context, raffleID int64) ([]*entities.PaymentRecord, error)

	// UpdateDelivery records the outcome of external delivery for a record
	UpdateDelivery(ctx context.Context, id int64, status entities.PaymentStatus, externalRef string) error

	// ListUndelivered returns prize and refund records still awaiting
	// external delivery, oldest first
	ListUndelivered(ctx context.Context, limit int) ([]*entities.PaymentRecord, error)
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	Publish(event events.Event) error
}
