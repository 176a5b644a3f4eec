package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// seedEntropyBytes is the amount of fresh unpredictability mixed into every
// seed: 256 bits unavailable to any participant before the quota closes.
const seedEntropyBytes = 32

// Selection is the result of a deterministic winner draw
type Selection struct {
	WinnerID    int64
	WinnerIndex int
	// VerificationHash is the digest the winner index was derived from
	VerificationHash string
}

// GenerateSeed builds the selection seed for a raffle. The seed binds the
// raffle id and the *sorted* participant-id set (so admission order cannot
// be used to grind the seed), a timestamp, and 256 bits of fresh randomness,
// all passed through SHA-256. It is generated only at quota closure, never
// at raffle creation.
func GenerateSeed(raffleID int64, participantIDs []int64) (string, error) {
	if len(participantIDs) == 0 {
		return "", errors.New("cannot generate seed without participants")
	}

	sorted := make([]int64, len(participantIDs))
	copy(sorted, participantIDs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	ids := make([]string, len(sorted))
	for i, id := range sorted {
		ids[i] = strconv.FormatInt(id, 10)
	}

	nonce := make([]byte, seedEntropyBytes)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to gather seed entropy: %w", err)
	}

	data := strings.Join([]string{
		strconv.FormatInt(raffleID, 10),
		strings.Join(ids, ","),
		strconv.FormatInt(time.Now().UnixMilli(), 10),
		hex.EncodeToString(nonce),
	}, "|")

	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:]), nil
}

// SelectWinner deterministically picks a winner from the seed and the
// participant ids in canonical admission order (position 1..N). Identical
// inputs always yield the identical winner; no randomness enters selection
// except through the seed.
func SelectWinner(seed string, participantIDs []int64) (*Selection, error) {
	if len(participantIDs) == 0 {
		return nil, errors.New("cannot select a winner without participants")
	}

	sum := sha256.Sum256([]byte(seed))
	digest := hex.EncodeToString(sum[:])

	value, err := strconv.ParseUint(digest[:8], 16, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to derive selection value: %w", err)
	}

	index := int(value % uint64(len(participantIDs)))
	return &Selection{
		WinnerID:         participantIDs[index],
		WinnerIndex:      index,
		VerificationHash: digest,
	}, nil
}
