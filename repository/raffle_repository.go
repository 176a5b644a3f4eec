package repository

import (
	"context"
	"errors"
	"fmt"

	"rafflestars/domain/entities"
	"rafflestars/domain/services"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const raffleColumns = `id, required_participants, bid_amount, winner_share, operator_share,
	       current_participants, total_prize_pool, status, winner_id, winner_prize,
	       operator_fee, selection_seed, created_at, completed_at`

// RaffleRepository implements raffle data access
type RaffleRepository struct {
	q Queryable
}

// NewRaffleRepository creates a new raffle repository
func NewRaffleRepository(q Queryable) *RaffleRepository {
	return &RaffleRepository{q: q}
}

func scanRaffle(row pgx.Row) (*entities.Raffle, error) {
	var raffle entities.Raffle
	err := row.Scan(
		&raffle.ID,
		&raffle.RequiredParticipants,
		&raffle.BidAmount,
		&raffle.WinnerShare,
		&raffle.OperatorShare,
		&raffle.CurrentParticipants,
		&raffle.TotalPrizePool,
		&raffle.Status,
		&raffle.WinnerID,
		&raffle.WinnerPrize,
		&raffle.OperatorFee,
		&raffle.SelectionSeed,
		&raffle.CreatedAt,
		&raffle.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &raffle, nil
}

// Create opens a new active raffle from a settings snapshot. The partial
// unique index on active raffles turns a creation race into a unique
// violation, surfaced as services.ErrActiveRaffleExists.
func (r *RaffleRepository) Create(ctx context.Context, settings *entities.RaffleSettings) (*entities.Raffle, error) {
	query := `
		INSERT INTO raffles (required_participants, bid_amount, winner_share, operator_share)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + raffleColumns

	raffle, err := scanRaffle(r.q.QueryRow(ctx, query,
		settings.RequiredParticipants,
		settings.BidAmount,
		settings.WinnerShare,
		settings.OperatorShare,
	))

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return nil, services.ErrActiveRaffleExists
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create raffle: %w", err)
	}

	return raffle, nil
}

// GetActive returns the current active raffle, or nil if none exists
func (r *RaffleRepository) GetActive(ctx context.Context) (*entities.Raffle, error) {
	query := `
		SELECT ` + raffleColumns + `
		FROM raffles
		WHERE status = 'active'
	`

	raffle, err := scanRaffle(r.q.QueryRow(ctx, query))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active raffle: %w", err)
	}

	return raffle, nil
}

// GetByID retrieves a raffle by its ID
func (r *RaffleRepository) GetByID(ctx context.Context, id int64) (*entities.Raffle, error) {
	query := `
		SELECT ` + raffleColumns + `
		FROM raffles
		WHERE id = $1
	`

	raffle, err := scanRaffle(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get raffle by ID %d: %w", id, err)
	}

	return raffle, nil
}

// GetByIDForUpdate retrieves a raffle by ID with row lock for update
func (r *RaffleRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Raffle, error) {
	query := `
		SELECT ` + raffleColumns + `
		FROM raffles
		WHERE id = $1
		FOR UPDATE
	`

	raffle, err := scanRaffle(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get raffle for update by ID %d: %w", id, err)
	}

	return raffle, nil
}

// AdmitIncrement bumps participant count and prize pool in one statement and
// returns the fresh snapshot. The WHERE clause re-checks status and capacity
// so the increment can never overfill even outside a row lock.
func (r *RaffleRepository) AdmitIncrement(ctx context.Context, raffleID int64, amount int64) (*entities.Raffle, error) {
	query := `
		UPDATE raffles
		SET current_participants = current_participants + 1,
		    total_prize_pool = total_prize_pool + $2
		WHERE id = $1
		  AND status = 'active'
		  AND current_participants < required_participants
		RETURNING ` + raffleColumns

	raffle, err := scanRaffle(r.q.QueryRow(ctx, query, raffleID, amount))
	if err == pgx.ErrNoRows {
		return nil, services.ErrRaffleFull
	}
	if err != nil {
		return nil, fmt.Errorf("failed to increment raffle %d: %w", raffleID, err)
	}

	return raffle, nil
}

// Complete transitions an active raffle to completed with its outcome
func (r *RaffleRepository) Complete(ctx context.Context, raffleID int64, winnerID, winnerPrize, operatorFee int64, seed string) (*entities.Raffle, error) {
	query := `
		UPDATE raffles
		SET status = 'completed',
		    winner_id = $2,
		    winner_prize = $3,
		    operator_fee = $4,
		    selection_seed = $5,
		    completed_at = NOW()
		WHERE id = $1
		  AND status = 'active'
		RETURNING ` + raffleColumns

	raffle, err := scanRaffle(r.q.QueryRow(ctx, query, raffleID, winnerID, winnerPrize, operatorFee, seed))
	if err == pgx.ErrNoRows {
		return nil, services.ErrRaffleNotActive
	}
	if err != nil {
		return nil, fmt.Errorf("failed to complete raffle %d: %w", raffleID, err)
	}

	return raffle, nil
}

// Cancel transitions an active raffle to cancelled
func (r *RaffleRepository) Cancel(ctx context.Context, raffleID int64) (*entities.Raffle, error) {
	query := `
		UPDATE raffles
		SET status = 'cancelled',
		    completed_at = NOW()
		WHERE id = $1
		  AND status = 'active'
		RETURNING ` + raffleColumns

	raffle, err := scanRaffle(r.q.QueryRow(ctx, query, raffleID))
	if err == pgx.ErrNoRows {
		return nil, services.ErrRaffleNotActive
	}
	if err != nil {
		return nil, fmt.Errorf("failed to cancel raffle %d: %w", raffleID, err)
	}

	return raffle, nil
}

// ListCompleted returns recently completed raffles, newest first
func (r *RaffleRepository) ListCompleted(ctx context.Context, limit int) ([]*entities.Raffle, error) {
	query := `
		SELECT ` + raffleColumns + `
		FROM raffles
		WHERE status = 'completed'
		ORDER BY completed_at DESC
		LIMIT $1
	`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed raffles: %w", err)
	}
	defer rows.Close()

	var raffles []*entities.Raffle
	for rows.Next() {
		raffle, err := scanRaffle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan raffle: %w", err)
		}
		raffles = append(raffles, raffle)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate raffles: %w", err)
	}

	return raffles, nil
}
