package interfaces

import "context"

// UnitOfWork defines the interface for transactional repository operations.
// Repositories obtained from a unit of work share one database transaction;
// events published through EventBus are staged and flushed only after a
// successful commit.
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and flushes staged events
	Commit() error

	// Rollback rolls back the transaction and discards staged events
	Rollback() error

	// Repository getters
	RaffleRepository() RaffleRepository
	EntryRepository() EntryRepository
	SettingsRepository() SettingsRepository
	ParticipantRepository() ParticipantRepository
	PaymentRecordRepository() PaymentRecordRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}
