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

const entryColumns = `id, raffle_id, participant_id, amount, position, payment_ref, status, placed_at`

// EntryRepository implements raffle entry data access
type EntryRepository struct {
	q Queryable
}

// NewEntryRepository creates a new entry repository
func NewEntryRepository(q Queryable) *EntryRepository {
	return &EntryRepository{q: q}
}

func scanEntry(row pgx.Row) (*entities.Entry, error) {
	var entry entities.Entry
	err := row.Scan(
		&entry.ID,
		&entry.RaffleID,
		&entry.ParticipantID,
		&entry.Amount,
		&entry.Position,
		&entry.PaymentRef,
		&entry.Status,
		&entry.PlacedAt,
	)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Create inserts a confirmed entry. The (raffle_id, participant_id) unique
// constraint backstops a duplicate that slipped past the guard check.
func (r *EntryRepository) Create(ctx context.Context, entry *entities.Entry) (*entities.Entry, error) {
	query := `
		INSERT INTO entries (raffle_id, participant_id, amount, position, payment_ref, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + entryColumns

	created, err := scanEntry(r.q.QueryRow(ctx, query,
		entry.RaffleID,
		entry.ParticipantID,
		entry.Amount,
		entry.Position,
		entry.PaymentRef,
		entry.Status,
	))

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return nil, services.ErrAlreadyParticipated
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create entry: %w", err)
	}

	return created, nil
}

// ExistsForParticipant reports whether the participant already entered this raffle
func (r *EntryRepository) ExistsForParticipant(ctx context.Context, raffleID, participantID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM entries
			WHERE raffle_id = $1 AND participant_id = $2
		)
	`

	var exists bool
	if err := r.q.QueryRow(ctx, query, raffleID, participantID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check entry existence: %w", err)
	}

	return exists, nil
}

// ListConfirmedByRaffle returns confirmed entries in admission order
func (r *EntryRepository) ListConfirmedByRaffle(ctx context.Context, raffleID int64) ([]*entities.Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM entries
		WHERE raffle_id = $1
		  AND status = 'confirmed'
		ORDER BY position ASC
	`

	rows, err := r.q.Query(ctx, query, raffleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries for raffle %d: %w", raffleID, err)
	}
	defer rows.Close()

	var entries []*entities.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entries: %w", err)
	}

	return entries, nil
}

// MarkAllRefunded flips every entry of the raffle to refunded
func (r *EntryRepository) MarkAllRefunded(ctx context.Context, raffleID int64) (int, error) {
	query := `
		UPDATE entries
		SET status = 'refunded'
		WHERE raffle_id = $1
		  AND status = 'confirmed'
	`

	result, err := r.q.Exec(ctx, query, raffleID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark entries refunded for raffle %d: %w", raffleID, err)
	}

	return int(result.RowsAffected()), nil
}

// ListByParticipant returns a participant's entries, newest first
func (r *EntryRepository) ListByParticipant(ctx context.Context, participantID int64, limit int) ([]*entities.Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM entries
		WHERE participant_id = $1
		ORDER BY placed_at DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, participantID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries for participant %d: %w", participantID, err)
	}
	defer rows.Close()

	var entries []*entities.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entries: %w", err)
	}

	return entries, nil
}
