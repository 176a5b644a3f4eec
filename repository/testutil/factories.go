package testutil

import (
	"fmt"

	"rafflestars/domain/entities"
)

// CreateTestSettings creates raffle settings with sensible defaults
func CreateTestSettings() *entities.RaffleSettings {
	return &entities.RaffleSettings{
		RequiredParticipants: 3,
		BidAmount:            1,
		WinnerShare:          0.7,
		OperatorShare:        0.3,
		IsActive:             true,
	}
}

// CreateTestSettingsWithQuota creates raffle settings with a specific quota
func CreateTestSettingsWithQuota(requiredParticipants int) *entities.RaffleSettings {
	settings := CreateTestSettings()
	settings.RequiredParticipants = requiredParticipants
	return settings
}

// CreateTestEntry creates a confirmed entry for a raffle
func CreateTestEntry(raffleID, participantID int64, position int) *entities.Entry {
	return &entities.Entry{
		RaffleID:      raffleID,
		ParticipantID: participantID,
		Amount:        1,
		Position:      position,
		PaymentRef:    fmt.Sprintf("capture-%d-%d", raffleID, participantID),
		Status:        entities.EntryStatusConfirmed,
	}
}

// CreateTestPaymentRecord creates a pending prize payment record
func CreateTestPaymentRecord(participantID int64, raffleID int64, kind entities.PaymentKind, amount int64) *entities.PaymentRecord {
	return &entities.PaymentRecord{
		ParticipantID: participantID,
		Kind:          kind,
		Amount:        amount,
		RaffleID:      &raffleID,
		Status:        entities.PaymentStatusPending,
	}
}
