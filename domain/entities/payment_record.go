package entities

import "time"

// PaymentKind classifies a payment record
type PaymentKind string

const (
	PaymentKindBid    PaymentKind = "bid"
	PaymentKindPrize  PaymentKind = "prize"
	PaymentKindRefund PaymentKind = "refund"
)

// PaymentStatus tracks delivery of the external side of a payment
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// PaymentRecord is the bookkeeping row for every Stars movement: one bid
// record per admission, one prize record per completion, one refund record
// per participant on cancellation. External delivery is reconciled against
// these rows out-of-band.
type PaymentRecord struct {
	ID            int64         `db:"id"`
	ParticipantID int64         `db:"participant_id"`
	Kind          PaymentKind   `db:"kind"`
	Amount        int64         `db:"amount"`
	RaffleID      *int64        `db:"raffle_id"`
	EntryID       *int64        `db:"entry_id"`
	ExternalRef   string        `db:"external_ref"`
	Status        PaymentStatus `db:"status"`
	CreatedAt     time.Time     `db:"created_at"`
}
