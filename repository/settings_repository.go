package repository

import (
	"context"
	"fmt"

	"rafflestars/domain/entities"

	"github.com/jackc/pgx/v5"
)

const settingsColumns = `id, required_participants, bid_amount, winner_share, operator_share,
	       is_active, created_at, updated_at`

// SettingsRepository implements raffle settings data access
type SettingsRepository struct {
	q Queryable
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(q Queryable) *SettingsRepository {
	return &SettingsRepository{q: q}
}

func scanSettings(row pgx.Row) (*entities.RaffleSettings, error) {
	var settings entities.RaffleSettings
	err := row.Scan(
		&settings.ID,
		&settings.RequiredParticipants,
		&settings.BidAmount,
		&settings.WinnerShare,
		&settings.OperatorShare,
		&settings.IsActive,
		&settings.CreatedAt,
		&settings.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// GetActive returns the currently active settings, nil if none
func (r *SettingsRepository) GetActive(ctx context.Context) (*entities.RaffleSettings, error) {
	query := `
		SELECT ` + settingsColumns + `
		FROM raffle_settings
		WHERE is_active = TRUE
		ORDER BY created_at DESC
		LIMIT 1
	`

	settings, err := scanSettings(r.q.QueryRow(ctx, query))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active settings: %w", err)
	}

	return settings, nil
}

// Create activates new settings, deactivating any previous set. Settings
// rows are superseded, never mutated, so history stays auditable.
func (r *SettingsRepository) Create(ctx context.Context, settings *entities.RaffleSettings) (*entities.RaffleSettings, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	deactivate := `
		UPDATE raffle_settings
		SET is_active = FALSE, updated_at = NOW()
		WHERE is_active = TRUE
	`
	if _, err := r.q.Exec(ctx, deactivate); err != nil {
		return nil, fmt.Errorf("failed to deactivate previous settings: %w", err)
	}

	insert := `
		INSERT INTO raffle_settings (required_participants, bid_amount, winner_share, operator_share, is_active)
		VALUES ($1, $2, $3, $4, TRUE)
		RETURNING ` + settingsColumns

	created, err := scanSettings(r.q.QueryRow(ctx, insert,
		settings.RequiredParticipants,
		settings.BidAmount,
		settings.WinnerShare,
		settings.OperatorShare,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create settings: %w", err)
	}

	return created, nil
}

// History returns past settings, newest first
func (r *SettingsRepository) History(ctx context.Context, limit int) ([]*entities.RaffleSettings, error) {
	query := `
		SELECT ` + settingsColumns + `
		FROM raffle_settings
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings history: %w", err)
	}
	defer rows.Close()

	var history []*entities.RaffleSettings
	for rows.Next() {
		settings, err := scanSettings(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan settings: %w", err)
		}
		history = append(history, settings)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settings: %w", err)
	}

	return history, nil
}
