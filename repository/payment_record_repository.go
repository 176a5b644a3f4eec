package repository

import (
	"context"
	"fmt"

	"rafflestars/domain/entities"

	"github.com/jackc/pgx/v5"
)

const paymentRecordColumns = `id, participant_id, kind, amount, raffle_id, entry_id, external_ref, status, created_at`

// PaymentRecordRepository implements payment bookkeeping data access
type PaymentRecordRepository struct {
	q Queryable
}

// NewPaymentRecordRepository creates a new payment record repository
func NewPaymentRecordRepository(q Queryable) *PaymentRecordRepository {
	return &PaymentRecordRepository{q: q}
}

func scanPaymentRecord(row pgx.Row) (*entities.PaymentRecord, error) {
	var record entities.PaymentRecord
	err := row.Scan(
		&record.ID,
		&record.ParticipantID,
		&record.Kind,
		&record.Amount,
		&record.RaffleID,
		&record.EntryID,
		&record.ExternalRef,
		&record.Status,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Create inserts a payment record
func (r *PaymentRecordRepository) Create(ctx context.Context, record *entities.PaymentRecord) (*entities.PaymentRecord, error) {
	query := `
		INSERT INTO payment_records (participant_id, kind, amount, raffle_id, entry_id, external_ref, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + paymentRecordColumns

	created, err := scanPaymentRecord(r.q.QueryRow(ctx, query,
		record.ParticipantID,
		record.Kind,
		record.Amount,
		record.RaffleID,
		record.EntryID,
		record.ExternalRef,
		record.Status,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create payment record: %w", err)
	}

	return created, nil
}

// ListByRaffle returns all payment records of a raffle
func (r *PaymentRecordRepository) ListByRaffle(ctx context.Context, raffleID int64) ([]*entities.PaymentRecord, error) {
	query := `
		SELECT ` + paymentRecordColumns + `
		FROM payment_records
		WHERE raffle_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.q.Query(ctx, query, raffleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment records for raffle %d: %w", raffleID, err)
	}
	defer rows.Close()

	return collectPaymentRecords(rows)
}

// UpdateDelivery records the outcome of external delivery for a record
func (r *PaymentRecordRepository) UpdateDelivery(ctx context.Context, id int64, status entities.PaymentStatus, externalRef string) error {
	query := `
		UPDATE payment_records
		SET status = $2,
		    external_ref = $3
		WHERE id = $1
	`

	result, err := r.q.Exec(ctx, query, id, status, externalRef)
	if err != nil {
		return fmt.Errorf("failed to update payment record %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("payment record %d not found", id)
	}

	return nil
}

// ListUndelivered returns prize and refund records still awaiting external
// delivery, oldest first. Bid records are captured before the admission
// commits so they never appear here.
func (r *PaymentRecordRepository) ListUndelivered(ctx context.Context, limit int) ([]*entities.PaymentRecord, error) {
	query := `
		SELECT ` + paymentRecordColumns + `
		FROM payment_records
		WHERE kind IN ('prize', 'refund')
		  AND status = 'pending'
		ORDER BY created_at ASC
		LIMIT $1
	`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list undelivered payment records: %w", err)
	}
	defer rows.Close()

	return collectPaymentRecords(rows)
}

func collectPaymentRecords(rows pgx.Rows) ([]*entities.PaymentRecord, error) {
	var records []*entities.PaymentRecord
	for rows.Next() {
		record, err := scanPaymentRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment record: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payment records: %w", err)
	}

	return records, nil
}
