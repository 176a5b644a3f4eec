package events

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeRaffleCreated   EventType = "raffle_created"
	EventTypeEntryAdmitted   EventType = "entry_admitted"
	EventTypeRaffleCompleted EventType = "raffle_completed"
	EventTypeRaffleCancelled EventType = "raffle_cancelled"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// RaffleCreatedEvent represents a new round being opened
type RaffleCreatedEvent struct {
	RaffleID             int64 `json:"raffle_id"`
	RequiredParticipants int   `json:"required_participants"`
	BidAmount            int64 `json:"bid_amount"`
}

func (e RaffleCreatedEvent) Type() EventType {
	return EventTypeRaffleCreated
}

// EntryAdmittedEvent represents a confirmed admission into a raffle
type EntryAdmittedEvent struct {
	RaffleID            int64 `json:"raffle_id"`
	ParticipantID       int64 `json:"participant_id"`
	Position            int   `json:"position"`
	Amount              int64 `json:"amount"`
	CurrentParticipants int   `json:"current_participants"`
	TotalPrizePool      int64 `json:"total_prize_pool"`
}

func (e EntryAdmittedEvent) Type() EventType {
	return EventTypeEntryAdmitted
}

// RaffleCompletedEvent represents a round that reached quota and drew a winner
type RaffleCompletedEvent struct {
	RaffleID       int64  `json:"raffle_id"`
	WinnerID       int64  `json:"winner_id"`
	WinnerPrize    int64  `json:"winner_prize"`
	OperatorFee    int64  `json:"operator_fee"`
	TotalPrizePool int64  `json:"total_prize_pool"`
	SelectionSeed  string `json:"selection_seed"`
}

func (e RaffleCompletedEvent) Type() EventType {
	return EventTypeRaffleCompleted
}

// RaffleCancelledEvent represents an admin-cancelled round
type RaffleCancelledEvent struct {
	RaffleID       int64  `json:"raffle_id"`
	Reason         string `json:"reason"`
	RefundedCount  int    `json:"refunded_count"`
	RefundedAmount int64  `json:"refunded_amount"`
}

func (e RaffleCancelledEvent) Type() EventType {
	return EventTypeRaffleCancelled
}
