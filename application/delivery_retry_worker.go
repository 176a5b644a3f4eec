package application

import (
	"context"
	"fmt"
	"time"

	"rafflestars/domain/entities"
	"rafflestars/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

const deliveryBatchSize = 50

// DeliveryRetryWorker sweeps payment records whose external delivery is
// still pending and retries them against the payment bridge. Completions
// and cancellations commit their outcome before any provider call, so a
// crash or provider outage leaves pending rows behind; this worker is the
// reconciliation path that drains them.
type DeliveryRetryWorker struct {
	uowFactory interfaces.UnitOfWorkFactory
	bridge     interfaces.PaymentBridge
	interval   time.Duration
}

// NewDeliveryRetryWorker creates a new delivery retry worker
func NewDeliveryRetryWorker(uowFactory interfaces.UnitOfWorkFactory, bridge interfaces.PaymentBridge, interval time.Duration) *DeliveryRetryWorker {
	return &DeliveryRetryWorker{
		uowFactory: uowFactory,
		bridge:     bridge,
		interval:   interval,
	}
}

// Start begins the retry loop and returns a stop function
func (w *DeliveryRetryWorker) Start(ctx context.Context) func() {
	stopChan := make(chan struct{})

	go func() {
		log.WithField("interval", w.interval).Info("Payment delivery retry worker started")

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info("Delivery retry worker shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Delivery retry worker shutting down (stop requested)...")
				return
			case <-ticker.C:
				if err := w.processPendingDeliveries(ctx); err != nil {
					log.WithError(err).Error("Error processing pending deliveries")
				}
			}
		}
	}()

	return func() {
		close(stopChan)
	}
}

// processPendingDeliveries retries every undelivered prize and refund record
func (w *DeliveryRetryWorker) processPendingDeliveries(ctx context.Context) error {
	uow := w.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	pending, err := uow.PaymentRecordRepository().ListUndelivered(ctx, deliveryBatchSize)
	if err != nil {
		uow.Rollback()
		return fmt.Errorf("failed to list undelivered payments: %w", err)
	}
	uow.Rollback() // Close the read transaction

	if len(pending) == 0 {
		return nil
	}

	log.WithField("count", len(pending)).Info("Retrying pending payment deliveries")

	var delivered, failed int
	for _, record := range pending {
		if err := w.deliver(ctx, record); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"recordID":      record.ID,
				"kind":          record.Kind,
				"participantID": record.ParticipantID,
			}).Warn("Payment delivery retry failed")
			failed++
		} else {
			delivered++
		}
	}

	log.WithFields(log.Fields{
		"delivered": delivered,
		"failed":    failed,
	}).Info("Completed payment delivery retry pass")

	return nil
}

// deliver pushes one record through the bridge and marks it completed
func (w *DeliveryRetryWorker) deliver(ctx context.Context, record *entities.PaymentRecord) error {
	var receipt string
	var err error

	switch record.Kind {
	case entities.PaymentKindPrize:
		receipt, err = w.bridge.Payout(ctx, record.ParticipantID, record.Amount)
	case entities.PaymentKindRefund:
		receipt, err = w.bridge.Refund(ctx, record.ParticipantID, record.Amount, record.ExternalRef)
	default:
		return fmt.Errorf("record %d has undeliverable kind %s", record.ID, record.Kind)
	}
	if err != nil {
		return err
	}

	uow := w.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.PaymentRecordRepository().UpdateDelivery(ctx, record.ID, entities.PaymentStatusCompleted, receipt); err != nil {
		return fmt.Errorf("failed to mark record %d delivered: %w", record.ID, err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit delivery update: %w", err)
	}

	return nil
}
