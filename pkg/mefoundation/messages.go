package mefoundation

import (
	"fmt"
	"time"
)

// Signed messages are checked byte for byte by the service; keep them exact.
const (
	messageURI   = "mefoundation.com"
	messageChain = "sol"

	// IssuedAtFormat is RFC 3339 with millisecond precision, always UTC
	IssuedAtFormat = "2006-01-02T15:04:05.000Z"
)

// VerificationMessage is the sign-in challenge proving control of the session wallet
func VerificationMessage(nonce string, now time.Time) string {
	return fmt.Sprintf("URI: %s\nChain ID: %s\nNonce: %s\nIssued At: %s",
		messageURI, messageChain, nonce, issuedAt(now))
}

// LinkMessage is signed by the allocation (target) wallet to attach it to the claim wallet
func LinkMessage(claimAddress, targetAddress string, now time.Time) string {
	return fmt.Sprintf("URI: %s\nIssued At: %s\nChain ID: %s\nAllocation Wallet: %s\nClaim Wallet: %s",
		messageURI, issuedAt(now), messageChain, targetAddress, claimAddress)
}

func issuedAt(now time.Time) string {
	return now.UTC().Format(IssuedAtFormat)
}
