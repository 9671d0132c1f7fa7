package airdrop

import (
	"time"

	"github.com/screwyprof/airdrop/pkg/clock"
)

// Option configures a Checker or a Linker
// ---------------------------------------
type Option func(*settings)

type settings struct {
	clock         Clock
	parallelism   int
	batchSize     int
	proxyMode     ProxyMode
	skipRecorded  bool
	maxAttempts   int
	retryDelay    time.Duration
	retryMaxDelay time.Duration
}

func newSettings(opts []Option) settings {
	s := settings{
		clock:         clock.SystemClock{},
		parallelism:   DefaultParallelism,
		batchSize:     DefaultBatchSize,
		proxyMode:     RoundRobin,
		skipRecorded:  true,
		maxAttempts:   DefaultLinkMaxAttempts,
		retryDelay:    DefaultLinkRetryDelay,
		retryMaxDelay: DefaultLinkRetryMaxDelay,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithClock injects a custom Clock (e.g., for testing)
func WithClock(c Clock) Option {
	return func(s *settings) { s.clock = c }
}

// WithParallelism caps the number of executions in flight
func WithParallelism(n int) Option {
	return func(s *settings) { s.parallelism = max(1, n) }
}

// WithBatchSize sets how many credentials are grouped per dispatch
func WithBatchSize(n int) Option {
	return func(s *settings) { s.batchSize = max(1, n) }
}

// WithProxyMode selects round-robin or rotating proxies for the checker
func WithProxyMode(m ProxyMode) Option {
	return func(s *settings) { s.proxyMode = m }
}

// WithSkipRecorded makes the checker skip wallets already in the result file
func WithSkipRecorded(skip bool) Option {
	return func(s *settings) { s.skipRecorded = skip }
}

// WithLinkRetry bounds the linker retries: attempts in total, first delay and delay cap.
// The delay doubles after every failed attempt.
func WithLinkRetry(maxAttempts int, delay, maxDelay time.Duration) Option {
	return func(s *settings) {
		s.maxAttempts = max(1, maxAttempts)
		s.retryDelay = delay
		s.retryMaxDelay = max(delay, maxDelay)
	}
}
