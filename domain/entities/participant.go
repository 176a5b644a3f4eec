package entities

import "time"

// Participant is a known player identified by their Telegram ID
type Participant struct {
	TelegramID    int64     `db:"telegram_id"`
	Username      string    `db:"username"`
	FirstName     string    `db:"first_name"`
	TotalBids     int64     `db:"total_bids"`
	TotalWinnings int64     `db:"total_winnings"`
	CreatedAt     time.Time `db:"created_at"`
	LastActive    time.Time `db:"last_active"`
}
