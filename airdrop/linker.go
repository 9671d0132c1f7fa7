package airdrop

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/screwyprof/airdrop/pkg/clock"
	"github.com/screwyprof/airdrop/pkg/mefoundation"
	"github.com/screwyprof/airdrop/pkg/proxy"
	"github.com/screwyprof/airdrop/pkg/solana"
)

// Binder links wallets, either on a fresh session or on an already authenticated one
type Binder interface {
	Link(ctx context.Context, task LinkTask) (mefoundation.Verdict, error)
	Authenticate(ctx context.Context, sess *mefoundation.Session, identity solana.Keypair) error
	LinkTarget(ctx context.Context, sess *mefoundation.Session, claimAddress string, target solana.Keypair) (mefoundation.Verdict, error)
}

// Linker links every secret's wallet to its claim wallet, retrying with backoff
// -----------------------------------------------------------------------------
type Linker struct {
	settings
	binder   Binder
	secrets  []string
	claims   []solana.Keypair
	proxies  *proxy.Pool
	failures Sink
	shared   *claimSession
	events   chan Event
}

type linkerTally struct {
	linked, eligible, failed atomic.Int64
}

// NewLinker pairs secrets[i] with claims[i]. A single claim secret is shared by
// every target and authenticated once. Any other length mismatch, or a claim
// secret that does not parse, is an error. Wallets the linker gives up on are
// appended to failures.
func NewLinker(binder Binder, secrets, claims []string, proxies *proxy.Pool, failures Sink, opts ...Option) (*Linker, error) {
	if len(claims) != len(secrets) && len(claims) != 1 {
		return nil, fmt.Errorf("%w: %d claim wallets for %d secrets", ErrClaimMismatch, len(claims), len(secrets))
	}

	keys := make([]solana.Keypair, len(claims))
	for i, secret := range claims {
		kp, err := ParseCredential(secret)
		if err != nil {
			return nil, fmt.Errorf("claim #%d: %w", i+1, err)
		}
		keys[i] = kp
	}

	l := &Linker{
		settings: newSettings(opts),
		binder:   binder,
		secrets:  secrets,
		claims:   keys,
		proxies:  proxies,
		failures: failures,
		events:   make(chan Event, 10),
	}
	if len(keys) == 1 {
		l.shared = &claimSession{binder: binder, identity: keys[0]}
	}
	return l, nil
}

// Start launches the run and returns the events channel and done channel.
// See Checker.Start for the shutdown contract.
func (l *Linker) Start(ctx context.Context) (<-chan Event, <-chan struct{}) {
	done := make(chan struct{})
	go func() {
		defer close(l.events)
		defer close(done)
		l.run(ctx)
	}()
	return l.events, done
}

func (l *Linker) run(ctx context.Context) {
	start := l.clock.Now()
	l.events <- RunStarted{
		Mode:        "link",
		StartedAt:   start,
		Total:       len(l.secrets),
		Parallelism: l.parallelism,
		BatchSize:   l.batchSize,
		Proxies:     l.proxies.Len(),
	}

	var tally linkerTally
	admitted := runPool(ctx, len(l.secrets), l.parallelism, l.batchSize,
		func(from, to int) { l.events <- BatchDispatched{From: from, To: to} },
		func(index int, value any, stack []byte) {
			tally.failed.Add(1)
			l.events <- TaskPanicked{Index: index, Value: value, Stack: stack}
		},
		func(ctx context.Context, index int) { l.process(ctx, index, &tally) },
	)

	l.events <- RunDone{
		Total:    admitted,
		Linked:   int(tally.linked.Load()),
		Eligible: int(tally.eligible.Load()),
		Failed:   int(tally.failed.Load()),
		Duration: l.clock.Now().Sub(start),
	}
}

func (l *Linker) process(ctx context.Context, index int, tally *linkerTally) {
	target, err := ParseCredential(l.secrets[index])
	if err != nil {
		// retrying cannot fix a malformed secret
		tally.failed.Add(1)
		l.giveUp(ctx, GaveUp{Index: index, Attempts: 0, Err: err})
		return
	}
	address := target.Address()
	claim := l.claimFor(index)
	route := l.proxies.At(index)

	delay := l.retryDelay
	for attempt := 1; ; attempt++ {
		verdict, err := l.linkOnce(ctx, index, claim, target, route)
		if err == nil {
			tally.linked.Add(1)
			if verdict == mefoundation.Eligible {
				tally.eligible.Add(1)
			}
			l.events <- WalletLinked{Index: index, Address: address, Claim: claim.Address(), Verdict: verdict, Attempts: attempt}
			return
		}

		if attempt >= l.maxAttempts {
			tally.failed.Add(1)
			l.giveUp(ctx, GaveUp{Index: index, Address: address, Attempts: attempt, Err: err})
			return
		}

		l.events <- LinkRetrying{Index: index, Address: address, Attempt: attempt, Delay: delay, Err: err}
		if sleepErr := clock.Sleep(ctx, l.clock, delay); sleepErr != nil {
			tally.failed.Add(1)
			l.giveUp(ctx, GaveUp{Index: index, Address: address, Attempts: attempt, Err: fmt.Errorf("%w (interrupted: %w)", err, sleepErr)})
			return
		}
		delay = nextDelay(delay, l.retryMaxDelay)
	}
}

func (l *Linker) linkOnce(ctx context.Context, index int, claim, target solana.Keypair, route *proxy.Proxy) (mefoundation.Verdict, error) {
	if l.shared == nil {
		return l.binder.Link(ctx, LinkTask{Index: index, Claim: claim, Target: target, Proxy: route})
	}

	sess, generation, err := l.shared.acquire(ctx, route)
	if err != nil {
		return mefoundation.Indeterminate, err
	}

	verdict, err := l.binder.LinkTarget(ctx, sess.WithProxy(route), claim.Address(), target)
	if err != nil {
		if sessionRejected(err) {
			l.shared.invalidate(generation)
		}
		return mefoundation.Indeterminate, err
	}
	return verdict, nil
}

func (l *Linker) claimFor(index int) solana.Keypair {
	if len(l.claims) == 1 {
		return l.claims[0]
	}
	return l.claims[index]
}

func (l *Linker) giveUp(ctx context.Context, g GaveUp) {
	// the failure file is best effort; the event still carries the reason
	if err := l.failures.Append(context.WithoutCancel(ctx), g); err != nil {
		l.events <- TaskFailed{Index: g.Index, Address: g.Address, Attempt: g.Attempts, Final: true, Err: fmt.Errorf("%w: %w", ErrRecordFailed, err)}
	}
	l.events <- LinkGaveUp{Index: g.Index, Address: g.Address, Attempts: g.Attempts, Err: g.Err}
}

// sessionRejected reports whether the service refused the session itself
// rather than the request made on it
func sessionRejected(err error) bool {
	var statusErr *mefoundation.StatusError
	if !errors.As(err, &statusErr) {
		return false
	}
	return statusErr.Code == http.StatusUnauthorized || statusErr.Code == http.StatusForbidden
}

// nextDelay doubles d without exceeding limit
func nextDelay(d, limit time.Duration) time.Duration {
	if d <= 0 {
		return d
	}
	if d > limit/2 {
		return limit
	}
	return d * 2
}

// claimSession is the one authenticated session of a shared claim wallet.
// Tasks only read it; renewal happens under the mutex, so when several tasks
// fail against the same generation only the first one renews and the rest reuse it.
type claimSession struct {
	binder   Binder
	identity solana.Keypair

	mu         sync.Mutex
	sess       *mefoundation.Session
	generation uint64
}

func (c *claimSession) acquire(ctx context.Context, route *proxy.Proxy) (*mefoundation.Session, uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sess != nil {
		return c.sess, c.generation, nil
	}

	sess, err := mefoundation.NewSession(route)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrSessionFailed, err)
	}
	if err := c.binder.Authenticate(ctx, sess, c.identity); err != nil {
		return nil, 0, err
	}

	c.sess = sess
	c.generation++
	return c.sess, c.generation, nil
}

// invalidate drops the session if it is still the given generation
func (c *claimSession) invalidate(generation uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generation == generation {
		c.sess = nil
	}
}
