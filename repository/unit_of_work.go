package repository

import (
	"context"
	"fmt"

	"rafflestars/database"
	"rafflestars/domain/events"
	"rafflestars/domain/interfaces"

	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
)

// unitOfWork implements the UnitOfWork interface over a single pgx
// transaction. Repositories handed out by a unit of work share that
// transaction; events published through EventBus are staged and flushed to
// the downstream publisher only after a successful commit.
type unitOfWork struct {
	db        *database.DB
	tx        pgx.Tx
	ctx       context.Context
	publisher *stagedPublisher

	raffleRepo        *RaffleRepository
	entryRepo         *EntryRepository
	settingsRepo      *SettingsRepository
	participantRepo   *ParticipantRepository
	paymentRecordRepo *PaymentRecordRepository
}

type unitOfWorkFactory struct {
	db         *database.DB
	downstream interfaces.EventPublisher
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory. Events staged
// during each unit of work are forwarded to downstream after commit;
// downstream may be nil when no event transport is configured.
func NewUnitOfWorkFactory(db *database.DB, downstream interfaces.EventPublisher) interfaces.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:         db,
		downstream: downstream,
	}
}

// Create returns a fresh unit of work. Begin must be called before use.
func (f *unitOfWorkFactory) Create() interfaces.UnitOfWork {
	return &unitOfWork{
		db:        f.db,
		publisher: &stagedPublisher{downstream: f.downstream},
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	u.raffleRepo = NewRaffleRepository(tx)
	u.entryRepo = NewEntryRepository(tx)
	u.settingsRepo = NewSettingsRepository(tx)
	u.participantRepo = NewParticipantRepository(tx)
	u.paymentRecordRepo = NewPaymentRecordRepository(tx)

	return nil
}

// Commit commits the transaction and flushes staged events
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	if err := u.tx.Commit(u.ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil
	u.publisher.flush()

	return nil
}

// Rollback rolls back the transaction and discards staged events
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil
	u.publisher.discard()

	return nil
}

// RaffleRepository returns the raffle repository for this unit of work
func (u *unitOfWork) RaffleRepository() interfaces.RaffleRepository {
	if u.raffleRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.raffleRepo
}

// EntryRepository returns the entry repository for this unit of work
func (u *unitOfWork) EntryRepository() interfaces.EntryRepository {
	if u.entryRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.entryRepo
}

// SettingsRepository returns the settings repository for this unit of work
func (u *unitOfWork) SettingsRepository() interfaces.SettingsRepository {
	if u.settingsRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.settingsRepo
}

// ParticipantRepository returns the participant repository for this unit of work
func (u *unitOfWork) ParticipantRepository() interfaces.ParticipantRepository {
	if u.participantRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.participantRepo
}

// PaymentRecordRepository returns the payment record repository for this unit of work
func (u *unitOfWork) PaymentRecordRepository() interfaces.PaymentRecordRepository {
	if u.paymentRecordRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.paymentRecordRepo
}

// EventBus returns the staging event publisher for this unit of work
func (u *unitOfWork) EventBus() interfaces.EventPublisher {
	return u.publisher
}

// stagedPublisher buffers events until the owning transaction commits, so
// subscribers never observe an event for a state change that rolled back.
type stagedPublisher struct {
	downstream interfaces.EventPublisher
	pending    []events.Event
}

// Publish stages an event for delivery after commit
func (p *stagedPublisher) Publish(event events.Event) error {
	p.pending = append(p.pending, event)
	return nil
}

func (p *stagedPublisher) flush() {
	pending := p.pending
	p.pending = nil

	if p.downstream == nil {
		return
	}
	for _, event := range pending {
		if err := p.downstream.Publish(event); err != nil {
			log.WithError(err).WithField("eventType", event.Type()).Error("Failed to publish event after commit")
		}
	}
}

func (p *stagedPublisher) discard() {
	p.pending = nil
}
