package airdrop

import (
	"fmt"
	"strings"

	"github.com/screwyprof/airdrop/pkg/mefoundation"
)

// Record is the outcome line of an eligible wallet: "<address>" or "<address>: <amount>"
type Record struct {
	Address    string
	Allocation mefoundation.Allocation
}

// Key returns the wallet address
func (r Record) Key() string {
	return r.Address
}

// Line omits the amount when it is unknown or zero
func (r Record) Line() string {
	if !r.Allocation.Known || r.Allocation.Amount == 0 {
		return r.Address
	}
	return r.Address + ": " + r.Allocation.Human()
}

// GaveUp is the failure line of a wallet the linker stopped retrying
type GaveUp struct {
	Index    int
	Address  string
	Attempts int
	Err      error
}

// Key returns the wallet address, or the 1-based list position when the secret never parsed
func (g GaveUp) Key() string {
	if g.Address == "" {
		return fmt.Sprintf("secret #%d", g.Index+1)
	}
	return g.Address
}

func (g GaveUp) Line() string {
	reason := "unknown error"
	if g.Err != nil {
		reason = strings.Join(strings.Fields(g.Err.Error()), " ")
	}
	return fmt.Sprintf("%s: gave up after %d attempt(s): %s", g.Key(), g.Attempts, reason)
}
