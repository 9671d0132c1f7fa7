package airdrop_test

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/screwyprof/airdrop/airdrop"
	"github.com/screwyprof/airdrop/pkg/mefoundation"
	"github.com/screwyprof/airdrop/pkg/mefoundation/mefoundationtest"
	"github.com/screwyprof/airdrop/pkg/proxy"
	"github.com/screwyprof/airdrop/pkg/solana"
)

// Test data helpers

func wallet(t *testing.T) solana.Keypair {
	t.Helper()

	kp, err := solana.NewKeypair()
	require.NoError(t, err)
	return kp
}

func secretsOf(wallets ...solana.Keypair) []string {
	secrets := make([]string, len(wallets))
	for i, w := range wallets {
		secrets[i] = w.Secret()
	}
	return secrets
}

func wallets(t *testing.T, n int) []solana.Keypair {
	t.Helper()

	ws := make([]solana.Keypair, n)
	for i := range ws {
		ws[i] = wallet(t)
	}
	return ws
}

func proxyPool(t *testing.T, lines ...string) *proxy.Pool {
	t.Helper()

	pool, err := proxy.NewPool(lines)
	require.NoError(t, err)
	return pool
}

func noProxies(t *testing.T) *proxy.Pool {
	t.Helper()
	return proxyPool(t)
}

func readLines(t *testing.T, path string) []string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	text := strings.TrimSuffix(string(data), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// Fake service helpers

func fakeService(t *testing.T) (*mefoundationtest.Server, *mefoundation.Client) {
	t.Helper()

	server := mefoundationtest.NewServer()
	t.Cleanup(server.Close)

	client := mefoundation.NewClient(
		mefoundation.WithWebURL(server.URL),
		mefoundation.WithAPIURL(server.URL),
		mefoundation.WithTimeout(5*time.Second),
	)
	return server, client
}

func eligibleWith(server *mefoundationtest.Server, w solana.Keypair, amount uint64) {
	server.SetEligibility(w.Address(), "eligible")
	server.SetAllocation(w.Address(), amount)
}

// Event helpers

func collectEvents(t *testing.T, start func(context.Context) (<-chan airdrop.Event, <-chan struct{})) []airdrop.Event {
	t.Helper()

	events, done := start(t.Context())

	var all []airdrop.Event
	for ev := range events {
		all = append(all, ev)
	}
	<-done

	return all
}

func eventsOf[T any](events []airdrop.Event) []T {
	var matched []T
	for _, ev := range events {
		if e, ok := ev.(T); ok {
			matched = append(matched, e)
		}
	}
	return matched
}

func runDone(t *testing.T, events []airdrop.Event) airdrop.RunDone {
	t.Helper()

	done := eventsOf[airdrop.RunDone](events)
	require.Len(t, done, 1, "Expected exactly one RunDone event")
	return done[0]
}

// Mock implementations

// fakeClock fires every timer immediately and remembers the requested waits
type fakeClock struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (f *fakeClock) After(d time.Duration) <-chan time.Time {
	f.mu.Lock()
	f.waits = append(f.waits, d)
	f.mu.Unlock()

	ch := make(chan time.Time, 1)
	ch <- f.Now()
	return ch
}

func (f *fakeClock) Now() time.Time {
	return time.Date(2024, 12, 5, 14, 0, 0, 0, time.UTC)
}

func (f *fakeClock) Waits() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Duration(nil), f.waits...)
}

// memorySink implements airdrop.Sink in memory
type memorySink struct {
	mu       sync.Mutex
	entries  []airdrop.Entry
	recorded map[string]bool
}

func newMemorySink(recorded ...string) *memorySink {
	s := &memorySink{recorded: make(map[string]bool)}
	for _, key := range recorded {
		s.recorded[key] = true
	}
	return s
}

func (s *memorySink) Append(_ context.Context, e airdrop.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	s.recorded[e.Key()] = true
	return nil
}

func (s *memorySink) Recorded(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recorded[key]
}

func (s *memorySink) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := make([]string, len(s.entries))
	for i, e := range s.entries {
		lines[i] = e.Line()
	}
	return lines
}
