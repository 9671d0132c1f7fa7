package airdrop

import (
	"time"

	"github.com/screwyprof/airdrop/pkg/mefoundation"
)

// Event represents a run lifecycle event
// --------------------------------------
type Event any

type RunStarted struct {
	Mode        string
	StartedAt   time.Time
	Total       int
	Parallelism int
	BatchSize   int
	Proxies     int
}

type BatchDispatched struct {
	From int
	To   int
}

// TaskFailed is one failed attempt. Final is set when the task will not be tried again.
type TaskFailed struct {
	Index   int
	Address string
	Proxy   string
	Attempt int
	Final   bool
	Err     error
}

type TaskPanicked struct {
	Index int
	Value any
	Stack []byte
}

type WalletEligible struct {
	Index      int
	Address    string
	Allocation mefoundation.Allocation
	// FetchErr is set when the allocation could not be read; the wallet is still recorded
	FetchErr error
}

type WalletNotEligible struct {
	Index   int
	Address string
	Verdict mefoundation.Verdict
}

type WalletSkipped struct {
	Index   int
	Address string
}

type WalletLinked struct {
	Index    int
	Address  string
	Claim    string
	Verdict  mefoundation.Verdict
	Attempts int
}

type LinkRetrying struct {
	Index   int
	Address string
	Attempt int
	Delay   time.Duration
	Err     error
}

type LinkGaveUp struct {
	Index    int
	Address  string
	Attempts int
	Err      error
}

type RunDone struct {
	Total            int
	Eligible         int
	NotEligible      int
	Linked           int
	AlreadyProcessed int
	Failed           int
	Duration         time.Duration
}
