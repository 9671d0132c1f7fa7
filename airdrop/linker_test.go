package airdrop_test

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screwyprof/airdrop/airdrop"
	"github.com/screwyprof/airdrop/pkg/mefoundation"
	"github.com/screwyprof/airdrop/pkg/mefoundation/mefoundationtest"
)

func TestLinkerPairs(t *testing.T) {
	t.Parallel()

	t.Run("it links every target to the claim wallet on the same line", func(t *testing.T) {
		t.Parallel()

		// Arrange
		server, client := fakeService(t)
		targets, claims := wallets(t, 3), wallets(t, 3)
		server.SetEligibility(targets[1].Address(), "eligible")

		linker, err := airdrop.NewLinker(airdrop.NewWorkflow(client, nil), secretsOf(targets...), secretsOf(claims...),
			noProxies(t), newMemorySink(), airdrop.WithClock(&fakeClock{}))
		require.NoError(t, err)

		// Act
		events := collectEvents(t, linker.Start)

		// Assert
		for i, target := range targets {
			claim, ok := server.LinkedTo(target.Address())
			require.True(t, ok, "target %d", i)
			assert.Equal(t, claims[i].Address(), claim, "target %d", i)
		}

		done := runDone(t, events)
		assert.Equal(t, 3, done.Linked)
		assert.Equal(t, 1, done.Eligible)
		assert.Zero(t, done.Failed)
		assert.Equal(t, 3, server.Calls(mefoundationtest.VerifyPath), "one session per pair")
	})

	t.Run("it refuses claim lists of a different length", func(t *testing.T) {
		t.Parallel()

		// Act
		_, err := airdrop.NewLinker(nil, secretsOf(wallets(t, 2)...), secretsOf(wallets(t, 3)...), noProxies(t), newMemorySink())

		// Assert
		assert.ErrorIs(t, err, airdrop.ErrClaimMismatch)
	})

	t.Run("it refuses an invalid claim secret", func(t *testing.T) {
		t.Parallel()

		// Act
		_, err := airdrop.NewLinker(nil, secretsOf(wallet(t)), []string{"broken"}, noProxies(t), newMemorySink())

		// Assert
		assert.ErrorIs(t, err, airdrop.ErrInvalidCredential)
	})
}

func TestLinkerSharedClaim(t *testing.T) {
	t.Parallel()

	t.Run("it authenticates a single claim wallet once for all targets", func(t *testing.T) {
		t.Parallel()

		// Arrange
		server, client := fakeService(t)
		targets, claim := wallets(t, 6), wallet(t)

		linker, err := airdrop.NewLinker(airdrop.NewWorkflow(client, nil), secretsOf(targets...), secretsOf(claim),
			noProxies(t), newMemorySink(), airdrop.WithParallelism(4), airdrop.WithClock(&fakeClock{}))
		require.NoError(t, err)

		// Act
		events := collectEvents(t, linker.Start)

		// Assert
		assert.Equal(t, 1, server.Calls(mefoundationtest.VerifyPath))
		for _, target := range targets {
			linked, ok := server.LinkedTo(target.Address())
			require.True(t, ok)
			assert.Equal(t, claim.Address(), linked)
		}
		assert.Equal(t, 6, runDone(t, events).Linked)
	})

	t.Run("it renews the shared session once the service refuses it", func(t *testing.T) {
		t.Parallel()

		// Arrange
		server, client := fakeService(t)
		server.FailNextWith(mefoundationtest.LinkPath, 1, http.StatusUnauthorized)
		targets, claim := wallets(t, 3), wallet(t)

		linker, err := airdrop.NewLinker(airdrop.NewWorkflow(client, nil), secretsOf(targets...), secretsOf(claim),
			noProxies(t), newMemorySink(), airdrop.WithParallelism(1), airdrop.WithClock(&fakeClock{}))
		require.NoError(t, err)

		// Act
		events := collectEvents(t, linker.Start)

		// Assert
		assert.Equal(t, 2, server.Calls(mefoundationtest.VerifyPath))
		assert.Len(t, eventsOf[airdrop.LinkRetrying](events), 1)
		assert.Equal(t, 3, runDone(t, events).Linked)
	})

	t.Run("it keeps the shared session when only the request failed", func(t *testing.T) {
		t.Parallel()

		// Arrange
		server, client := fakeService(t)
		server.FailNextWith(mefoundationtest.LinkPath, 1, http.StatusBadRequest)
		targets, claim := wallets(t, 3), wallet(t)

		linker, err := airdrop.NewLinker(airdrop.NewWorkflow(client, nil), secretsOf(targets...), secretsOf(claim),
			noProxies(t), newMemorySink(), airdrop.WithParallelism(1), airdrop.WithClock(&fakeClock{}))
		require.NoError(t, err)

		// Act
		events := collectEvents(t, linker.Start)

		// Assert
		assert.Equal(t, 1, server.Calls(mefoundationtest.VerifyPath))
		assert.Len(t, eventsOf[airdrop.LinkRetrying](events), 1)
		assert.Equal(t, 3, runDone(t, events).Linked)
	})
}

func TestLinkerRetry(t *testing.T) {
	t.Parallel()

	t.Run("it backs off exponentially up to the cap", func(t *testing.T) {
		t.Parallel()

		// Arrange
		server, client := fakeService(t)
		server.FailNext(mefoundationtest.LinkPath, 3)
		target, claim := wallet(t), wallet(t)
		clock := &fakeClock{}

		linker, err := airdrop.NewLinker(airdrop.NewWorkflow(client, nil), secretsOf(target), secretsOf(claim),
			noProxies(t), newMemorySink(),
			airdrop.WithClock(clock),
			airdrop.WithLinkRetry(5, 5*time.Second, 12*time.Second),
		)
		require.NoError(t, err)

		// Act
		events := collectEvents(t, linker.Start)

		// Assert
		assert.Equal(t, []time.Duration{5 * time.Second, 10 * time.Second, 12 * time.Second}, clock.Waits())

		linked := eventsOf[airdrop.WalletLinked](events)
		require.Len(t, linked, 1)
		assert.Equal(t, 4, linked[0].Attempts)
		assert.Equal(t, mefoundation.Indeterminate, linked[0].Verdict)
	})

	t.Run("it gives up after the last attempt and records the failure", func(t *testing.T) {
		t.Parallel()

		// Arrange
		server, client := fakeService(t)
		server.FailNext(mefoundationtest.LinkPath, 100)
		targets, claims := wallets(t, 1), wallets(t, 1)
		failures := newMemorySink()
		clock := &fakeClock{}

		linker, err := airdrop.NewLinker(airdrop.NewWorkflow(client, nil), secretsOf(targets...), secretsOf(claims...),
			noProxies(t), failures,
			airdrop.WithClock(clock),
			airdrop.WithLinkRetry(3, 5*time.Second, time.Minute),
		)
		require.NoError(t, err)

		// Act
		events := collectEvents(t, linker.Start)

		// Assert
		assert.Equal(t, []time.Duration{5 * time.Second, 10 * time.Second}, clock.Waits())
		assert.Equal(t, 3, server.Calls(mefoundationtest.LinkPath))

		gaveUp := eventsOf[airdrop.LinkGaveUp](events)
		require.Len(t, gaveUp, 1)
		assert.Equal(t, 3, gaveUp[0].Attempts)
		assert.ErrorIs(t, gaveUp[0].Err, airdrop.ErrLinkFailed)

		lines := failures.Lines()
		require.Len(t, lines, 1)
		assert.Contains(t, lines[0], targets[0].Address()+": gave up after 3 attempt(s): ")
		assert.Equal(t, 1, runDone(t, events).Failed)
	})

	t.Run("it never retries a malformed target secret", func(t *testing.T) {
		t.Parallel()

		// Arrange
		server, client := fakeService(t)
		target, claim := wallet(t), wallet(t)
		failures := newMemorySink()
		clock := &fakeClock{}

		linker, err := airdrop.NewLinker(airdrop.NewWorkflow(client, nil),
			[]string{"0OIl", target.Secret()}, secretsOf(claim),
			noProxies(t), failures, airdrop.WithClock(clock), airdrop.WithParallelism(1))
		require.NoError(t, err)

		// Act
		events := collectEvents(t, linker.Start)

		// Assert
		assert.Empty(t, clock.Waits())

		lines := failures.Lines()
		require.Len(t, lines, 1)
		assert.True(t, strings.HasPrefix(lines[0], "secret #1: gave up after 0 attempt(s): invalid credential"), lines[0])
		assert.ErrorIs(t, eventsOf[airdrop.LinkGaveUp](events)[0].Err, airdrop.ErrInvalidCredential)

		_, ok := server.LinkedTo(target.Address())
		assert.True(t, ok, "the next target is still linked")
	})
}
