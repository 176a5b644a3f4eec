package services

import "errors"

// User-facing raffle errors. The routing layer maps these to responses;
// none of them is retryable with the same input.
var (
	// ErrRaffleNotActive is returned when the target raffle is not accepting entries
	ErrRaffleNotActive = errors.New("raffle is not active")

	// ErrAlreadyParticipated is returned when the participant already holds
	// an entry on this raffle
	ErrAlreadyParticipated = errors.New("participant already entered this raffle")

	// ErrRaffleFull is returned when the participant quota is already met
	ErrRaffleFull = errors.New("raffle is full")

	// ErrInvalidAmount is returned when the bid does not match the entry fee
	ErrInvalidAmount = errors.New("bid amount does not match the raffle entry fee")

	// ErrRaffleNotFound is returned when no raffle exists with the given ID
	ErrRaffleNotFound = errors.New("raffle not found")

	// ErrRaffleNotCompleted is returned when verification is requested for a
	// raffle that never drew a winner
	ErrRaffleNotCompleted = errors.New("raffle is not completed")

	// ErrActiveRaffleExists is surfaced by the store when a second active
	// raffle creation races the single-active constraint
	ErrActiveRaffleExists = errors.New("an active raffle already exists")

	// ErrRateLimited is returned by admission gates when a participant has
	// exhausted their bid attempt budget
	ErrRateLimited = errors.New("too many bid attempts, try again later")

	// ErrPaymentRejected is returned when the payment provider declines the
	// capture for a bid
	ErrPaymentRejected = errors.New("payment verification failed")
)
