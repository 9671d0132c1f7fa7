package mefoundation_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/screwyprof/airdrop/pkg/mefoundation"
)

func TestVerificationMessage(t *testing.T) {
	t.Parallel()

	// Arrange
	now := time.Date(2024, 12, 5, 14, 3, 9, 42_000_000, time.UTC)

	// Act
	msg := mefoundation.VerificationMessage("3f0c6a52-9f3c-4d0a-8b59-0c8b1f9a2e11", now)

	// Assert
	want := "URI: mefoundation.com\n" +
		"Chain ID: sol\n" +
		"Nonce: 3f0c6a52-9f3c-4d0a-8b59-0c8b1f9a2e11\n" +
		"Issued At: 2024-12-05T14:03:09.042Z"
	assert.Equal(t, want, msg)
}

func TestLinkMessage(t *testing.T) {
	t.Parallel()

	t.Run("it names the allocation wallet before the claim wallet", func(t *testing.T) {
		t.Parallel()

		// Arrange
		now := time.Date(2024, 12, 5, 14, 3, 9, 0, time.UTC)

		// Act
		msg := mefoundation.LinkMessage("ClaimWa11et", "TargetWa11et", now)

		// Assert
		want := "URI: mefoundation.com\n" +
			"Issued At: 2024-12-05T14:03:09.000Z\n" +
			"Chain ID: sol\n" +
			"Allocation Wallet: TargetWa11et\n" +
			"Claim Wallet: ClaimWa11et"
		assert.Equal(t, want, msg)
	})

	t.Run("it renders the timestamp in UTC", func(t *testing.T) {
		t.Parallel()

		// Arrange
		tokyo := time.FixedZone("JST", 9*60*60)
		now := time.Date(2024, 12, 6, 1, 0, 0, 0, tokyo)

		// Act
		msg := mefoundation.LinkMessage("c", "t", now)

		// Assert
		assert.Contains(t, msg, "Issued At: 2024-12-05T16:00:00.000Z\n")
	})
}
