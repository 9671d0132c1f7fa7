package airdrop

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/screwyprof/airdrop/pkg/mefoundation"
	"github.com/screwyprof/airdrop/pkg/proxy"
)

// Inspector checks a single wallet
type Inspector interface {
	Check(ctx context.Context, task Task) (Outcome, error)
}

// Checker checks the allocation of every secret and records eligible wallets
// ---------------------------------------------------------------------------
type Checker struct {
	settings
	inspector Inspector
	secrets   []string
	proxies   *proxy.Pool
	sink      Sink
	events    chan Event
}

type checkerTally struct {
	total, eligible, notEligible, skipped, failed atomic.Int64

	// claimed holds every address a task of this run has taken on
	claimed sync.Map
}

// NewChecker constructs a Checker with required dependencies and options.
// By default it runs 10 executions at a time in batches of 100, round-robin
// over the proxies, skipping wallets already present in the sink.
func NewChecker(inspector Inspector, secrets []string, proxies *proxy.Pool, sink Sink, opts ...Option) *Checker {
	return &Checker{
		settings:  newSettings(opts),
		inspector: inspector,
		secrets:   secrets,
		proxies:   proxies,
		sink:      sink,
		events:    make(chan Event, 10),
	}
}

// Start launches the run and returns the events channel and done channel.
// The run ends on its own once every secret is processed; cancelling ctx
// stops admitting new secrets. Events must be drained until the channel closes.
func (c *Checker) Start(ctx context.Context) (<-chan Event, <-chan struct{}) {
	done := make(chan struct{})
	go func() {
		defer close(c.events)
		defer close(done)
		c.run(ctx)
	}()
	return c.events, done
}

func (c *Checker) run(ctx context.Context) {
	start := c.clock.Now()
	c.events <- RunStarted{
		Mode:        "check",
		StartedAt:   start,
		Total:       len(c.secrets),
		Parallelism: c.parallelism,
		BatchSize:   c.batchSize,
		Proxies:     c.proxies.Len(),
	}

	var tally checkerTally
	admitted := runPool(ctx, len(c.secrets), c.parallelism, c.batchSize,
		func(from, to int) { c.events <- BatchDispatched{From: from, To: to} },
		func(index int, value any, stack []byte) {
			tally.failed.Add(1)
			c.events <- TaskPanicked{Index: index, Value: value, Stack: stack}
		},
		func(ctx context.Context, index int) { c.process(ctx, index, &tally) },
	)

	c.events <- RunDone{
		Total:            admitted,
		Eligible:         int(tally.eligible.Load()),
		NotEligible:      int(tally.notEligible.Load()),
		AlreadyProcessed: int(tally.skipped.Load()),
		Failed:           int(tally.failed.Load()),
		Duration:         c.clock.Now().Sub(start),
	}
}

func (c *Checker) process(ctx context.Context, index int, tally *checkerTally) {
	target, err := ParseCredential(c.secrets[index])
	if err != nil {
		tally.failed.Add(1)
		c.events <- TaskFailed{Index: index, Attempt: 1, Final: true, Err: err}
		return
	}
	address := target.Address()

	if c.skipRecorded && c.sink.Recorded(address) {
		tally.skipped.Add(1)
		c.events <- WalletSkipped{Index: index, Address: address}
		return
	}

	// a secret listed twice is checked once
	if _, taken := tally.claimed.LoadOrStore(address, struct{}{}); taken {
		tally.skipped.Add(1)
		c.events <- WalletSkipped{Index: index, Address: address}
		return
	}

	outcome, err := c.check(ctx, index, address, Task{Index: index, Target: target})
	if err != nil {
		tally.failed.Add(1)
		return
	}

	record, eligible := outcome.Record()
	if !eligible {
		tally.notEligible.Add(1)
		c.events <- WalletNotEligible{Index: index, Address: address, Verdict: outcome.Verdict}
		return
	}

	if err := c.sink.Append(ctx, record); err != nil {
		tally.failed.Add(1)
		c.events <- TaskFailed{Index: index, Address: address, Attempt: 1, Final: true, Err: fmt.Errorf("%w: %w", ErrRecordFailed, err)}
		return
	}

	tally.eligible.Add(1)
	c.events <- WalletEligible{Index: index, Address: address, Allocation: outcome.Allocation, FetchErr: outcome.FetchErr}
}

// check runs the workflow over the routes of the proxy mode until one succeeds
func (c *Checker) check(ctx context.Context, index int, address string, task Task) (Outcome, error) {
	routes := c.routes(index)

	var lastErr error
	for attempt, route := range routes {
		task.Proxy = route
		outcome, err := c.inspector.Check(ctx, task)
		if err == nil {
			return outcome, nil
		}
		lastErr = err

		final := attempt == len(routes)-1 || !retryable(ctx, err)
		c.events <- TaskFailed{
			Index:   index,
			Address: address,
			Proxy:   route.String(),
			Attempt: attempt + 1,
			Final:   final,
			Err:     err,
		}
		if final {
			break
		}
	}
	return Outcome{}, lastErr
}

func (c *Checker) routes(index int) []*proxy.Proxy {
	if c.proxyMode == Rotate {
		return c.proxies.Rotation()
	}
	return []*proxy.Proxy{c.proxies.At(index)}
}

// retryable reports whether another proxy might change the result
func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if errors.Is(err, ErrInvalidCredential) || errors.Is(err, ErrIdentityFailed) {
		return false
	}
	var statusErr *mefoundation.StatusError
	if errors.As(err, &statusErr) {
		// a blocked proxy address shows up as 401 or 403
		return statusErr.Temporary() || sessionRejected(err)
	}
	return true
}
