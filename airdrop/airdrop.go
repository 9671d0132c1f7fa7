package airdrop

import (
	"context"
	"errors"
	"time"

	"github.com/screwyprof/airdrop/pkg/mefoundation"
)

// Sentinel errors for failure cases
var (
	ErrInvalidCredential = errors.New("invalid credential")
	ErrProtocolRejected  = errors.New("session verification rejected")
	ErrSessionFailed     = errors.New("session setup failed")
	ErrLinkFailed        = errors.New("wallet link failed")
	ErrIdentityFailed    = errors.New("ephemeral identity generation failed")
	ErrRecordFailed      = errors.New("recording outcome failed")
	ErrClaimMismatch     = errors.New("claim wallets do not match secrets")
)

// Default configuration values
const (
	DefaultParallelism       = 10
	DefaultBatchSize         = 100
	DefaultLinkMaxAttempts   = 5
	DefaultLinkRetryDelay    = 5 * time.Second
	DefaultLinkRetryMaxDelay = time.Minute
)

// ProxyMode selects how a checker task picks its proxy
type ProxyMode string

const (
	// RoundRobin gives the task at index i proxies[i mod n] and a single attempt
	RoundRobin ProxyMode = "round-robin"
	// Rotate starts at a random proxy and moves on to every other one once on failure
	Rotate ProxyMode = "rotate"
)

// Client talks to the allocation service
// --------------------------------------
type Client interface {
	StartSession(ctx context.Context, sess *mefoundation.Session) error
	VerifySession(ctx context.Context, sess *mefoundation.Session, address, signature, message string) (mefoundation.VerifyResult, error)
	LinkWallet(ctx context.Context, sess *mefoundation.Session, message, address, signature string) (mefoundation.LinkResponse, error)
	FetchWallets(ctx context.Context, sess *mefoundation.Session) (string, error)
}

// Entry is one line of an append-only result file
type Entry interface {
	// Key identifies the wallet the line is about
	Key() string
	// Line renders the entry without the trailing newline
	Line() string
}

// Sink persists entries. Implementations must be safe for concurrent use.
type Sink interface {
	Append(ctx context.Context, e Entry) error
	// Recorded reports whether an entry with this key is already persisted
	Recorded(key string) bool
}

// Clock abstracts time for production and testing
// ------------------------------------------------
type Clock interface {
	After(d time.Duration) <-chan time.Time
	Now() time.Time
}
