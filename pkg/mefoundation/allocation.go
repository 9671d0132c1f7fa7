package mefoundation

import (
	"strconv"
	"strings"
)

const (
	// allocationMarker starts the stream chunk that carries the wallet data
	allocationMarker = "2:"
	allocationKey    = `"allocationAmount":`

	// AllocationDecimals is the number of decimal places of the smallest unit
	AllocationDecimals = 6
)

// ExtractAllocation scans a wallets stream for the allocation amount.
//
// The payload is a line-framed stream with JSON embedded in it, not a JSON
// document, so this is a narrow scan: find the first line starting with "2:",
// find "allocationAmount": after it, and read the digits right behind the key.
// It reports false when any of the three is missing.
func ExtractAllocation(text string) (uint64, bool) {
	start := markerOffset(text)
	if start < 0 {
		return 0, false
	}
	rest := text[start+len(allocationMarker):]

	keyAt := strings.Index(rest, allocationKey)
	if keyAt < 0 {
		return 0, false
	}
	rest = rest[keyAt+len(allocationKey):]

	n := 0
	for n < len(rest) && rest[n] >= '0' && rest[n] <= '9' {
		n++
	}
	if n == 0 {
		return 0, false
	}

	amount, err := strconv.ParseUint(rest[:n], 10, 64)
	if err != nil {
		// overflow
		return 0, false
	}
	return amount, true
}

// markerOffset returns the offset of the first line starting with the marker, or -1
func markerOffset(text string) int {
	offset := 0
	for {
		if strings.HasPrefix(text[offset:], allocationMarker) {
			return offset
		}
		nl := strings.IndexByte(text[offset:], '\n')
		if nl < 0 {
			return -1
		}
		offset += nl + 1
	}
}

// Allocation is an amount in the smallest unit; Known is false when the
// service did not report one.
type Allocation struct {
	Amount uint64
	Known  bool
}

// AllocationFromText wraps ExtractAllocation
func AllocationFromText(text string) Allocation {
	amount, ok := ExtractAllocation(text)
	return Allocation{Amount: amount, Known: ok}
}

// Human renders the amount in whole tokens without rounding: 1500000 -> "1.5"
func (a Allocation) Human() string {
	const unit = 1_000_000

	whole := strconv.FormatUint(a.Amount/unit, 10)
	frac := a.Amount % unit
	if frac == 0 {
		return whole
	}

	digits := strconv.FormatUint(frac, 10)
	digits = strings.Repeat("0", AllocationDecimals-len(digits)) + digits
	return whole + "." + strings.TrimRight(digits, "0")
}
