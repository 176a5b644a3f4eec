package repository

import (
	"context"
	"fmt"

	"rafflestars/domain/entities"

	"github.com/jackc/pgx/v5"
)

const participantColumns = `telegram_id, username, first_name, total_bids, total_winnings, created_at, last_active`

// ParticipantRepository implements participant data access
type ParticipantRepository struct {
	q Queryable
}

// NewParticipantRepository creates a new participant repository
func NewParticipantRepository(q Queryable) *ParticipantRepository {
	return &ParticipantRepository{q: q}
}

func scanParticipant(row pgx.Row) (*entities.Participant, error) {
	var p entities.Participant
	err := row.Scan(
		&p.TelegramID,
		&p.Username,
		&p.FirstName,
		&p.TotalBids,
		&p.TotalWinnings,
		&p.CreatedAt,
		&p.LastActive,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetOrCreate fetches a participant, creating the row on first contact.
// The upsert keeps profile fields fresh without clobbering them with blanks.
func (r *ParticipantRepository) GetOrCreate(ctx context.Context, telegramID int64, username, firstName string) (*entities.Participant, error) {
	query := `
		INSERT INTO participants (telegram_id, username, first_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (telegram_id) DO UPDATE
		SET username = CASE WHEN EXCLUDED.username <> '' THEN EXCLUDED.username ELSE participants.username END,
		    first_name = CASE WHEN EXCLUDED.first_name <> '' THEN EXCLUDED.first_name ELSE participants.first_name END,
		    last_active = NOW()
		RETURNING ` + participantColumns

	participant, err := scanParticipant(r.q.QueryRow(ctx, query, telegramID, username, firstName))
	if err != nil {
		return nil, fmt.Errorf("failed to get or create participant %d: %w", telegramID, err)
	}

	return participant, nil
}

// GetByID retrieves a participant, nil if unknown
func (r *ParticipantRepository) GetByID(ctx context.Context, telegramID int64) (*entities.Participant, error) {
	query := `
		SELECT ` + participantColumns + `
		FROM participants
		WHERE telegram_id = $1
	`

	participant, err := scanParticipant(r.q.QueryRow(ctx, query, telegramID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get participant %d: %w", telegramID, err)
	}

	return participant, nil
}

// IncrementBids bumps the participant's lifetime bid counter
func (r *ParticipantRepository) IncrementBids(ctx context.Context, telegramID int64) error {
	query := `
		UPDATE participants
		SET total_bids = total_bids + 1,
		    last_active = NOW()
		WHERE telegram_id = $1
	`

	result, err := r.q.Exec(ctx, query, telegramID)
	if err != nil {
		return fmt.Errorf("failed to increment bids for participant %d: %w", telegramID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("participant %d not found", telegramID)
	}

	return nil
}

// IncrementWinnings adds to the participant's cumulative winnings
func (r *ParticipantRepository) IncrementWinnings(ctx context.Context, telegramID int64, amount int64) error {
	query := `
		UPDATE participants
		SET total_winnings = total_winnings + $2
		WHERE telegram_id = $1
	`

	result, err := r.q.Exec(ctx, query, telegramID, amount)
	if err != nil {
		return fmt.Errorf("failed to increment winnings for participant %d: %w", telegramID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("participant %d not found", telegramID)
	}

	return nil
}
