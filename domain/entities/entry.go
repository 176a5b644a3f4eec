package entities

import "time"

// EntryStatus represents the settlement state of an entry
type EntryStatus string

const (
	EntryStatusConfirmed EntryStatus = "confirmed"
	EntryStatusRefunded  EntryStatus = "refunded"
)

// Entry is one participant's paid admission into a raffle. Position is the
// participant count after the admitting increment: gapless, strictly
// increasing, and the canonical ordering for winner selection.
type Entry struct {
	ID            int64       `db:"id"`
	RaffleID      int64       `db:"raffle_id"`
	ParticipantID int64       `db:"participant_id"`
	Amount        int64       `db:"amount"`
	Position      int         `db:"position"`
	PaymentRef    string      `db:"payment_ref"` // Provider-side capture reference
	Status        EntryStatus `db:"status"`
	PlacedAt      time.Time   `db:"placed_at"`
}
