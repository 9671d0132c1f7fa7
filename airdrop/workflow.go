package airdrop

import (
	"context"
	"fmt"

	"github.com/screwyprof/airdrop/pkg/clock"
	"github.com/screwyprof/airdrop/pkg/mefoundation"
	"github.com/screwyprof/airdrop/pkg/proxy"
	"github.com/screwyprof/airdrop/pkg/solana"
)

// Task is one allocation check: the target wallet and the proxy its session goes through
type Task struct {
	Index  int
	Target solana.Keypair
	Proxy  *proxy.Proxy
}

// LinkTask attaches Target to the Claim wallet
type LinkTask struct {
	Index  int
	Claim  solana.Keypair
	Target solana.Keypair
	Proxy  *proxy.Proxy
}

// Outcome is what a successful check learned about the target wallet
type Outcome struct {
	Address    string
	Verdict    mefoundation.Verdict
	Allocation mefoundation.Allocation
	// FetchErr is set when the wallet is eligible but its allocation could not be fetched
	FetchErr error
}

// Record returns the outcome line for eligible wallets
func (o Outcome) Record() (Record, bool) {
	if o.Verdict != mefoundation.Eligible {
		return Record{}, false
	}
	return Record{Address: o.Address, Allocation: o.Allocation}, true
}

// Workflow drives one session through auth, verify, auth and link.
// Nothing is retried here; every failure ends the execution.
type Workflow struct {
	api   Client
	clock Clock
}

// NewWorkflow creates a workflow over api. A nil clock means the system clock.
func NewWorkflow(api Client, c Clock) *Workflow {
	if c == nil {
		c = clock.SystemClock{}
	}
	return &Workflow{api: api, clock: c}
}

// ParseCredential turns a secret into a keypair, reporting ErrInvalidCredential on failure
func ParseCredential(secret string) (solana.Keypair, error) {
	kp, err := solana.ParseKeypair(secret)
	if err != nil {
		return solana.Keypair{}, fmt.Errorf("%w: %w", ErrInvalidCredential, err)
	}
	return kp, nil
}

// Check authenticates a fresh session as a throwaway identity, links the
// target to it and, when the target is eligible, reads its allocation.
func (w *Workflow) Check(ctx context.Context, task Task) (Outcome, error) {
	identity, err := solana.NewKeypair()
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: %w", ErrIdentityFailed, err)
	}

	sess, err := mefoundation.NewSession(task.Proxy)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: %w", ErrSessionFailed, err)
	}

	if err := w.Authenticate(ctx, sess, identity); err != nil {
		return Outcome{}, err
	}

	verdict, err := w.LinkTarget(ctx, sess, identity.Address(), task.Target)
	if err != nil {
		return Outcome{}, err
	}

	outcome := Outcome{Address: task.Target.Address(), Verdict: verdict}
	if verdict != mefoundation.Eligible {
		return outcome, nil
	}

	text, err := w.api.FetchWallets(ctx, sess)
	if err != nil {
		outcome.FetchErr = err
		return outcome, nil
	}
	outcome.Allocation = mefoundation.AllocationFromText(text)
	return outcome, nil
}

// Link authenticates a fresh session as the claim wallet and links the target to it
func (w *Workflow) Link(ctx context.Context, task LinkTask) (mefoundation.Verdict, error) {
	sess, err := mefoundation.NewSession(task.Proxy)
	if err != nil {
		return mefoundation.Indeterminate, fmt.Errorf("%w: %w", ErrSessionFailed, err)
	}

	if err := w.Authenticate(ctx, sess, task.Claim); err != nil {
		return mefoundation.Indeterminate, err
	}

	return w.LinkTarget(ctx, sess, task.Claim.Address(), task.Target)
}

// Authenticate runs the first auth, the signed verification and the second auth
// on sess, leaving it logged in as identity.
func (w *Workflow) Authenticate(ctx context.Context, sess *mefoundation.Session, identity solana.Keypair) error {
	if err := w.api.StartSession(ctx, sess); err != nil {
		return fmt.Errorf("%w: first auth: %w", ErrSessionFailed, err)
	}

	message := mefoundation.VerificationMessage(sess.Nonce, w.clock.Now())
	result, err := w.api.VerifySession(ctx, sess, identity.Address(), identity.Sign(message), message)
	if err != nil {
		return fmt.Errorf("%w: verify: %w", ErrSessionFailed, err)
	}
	if !result.Success {
		return fmt.Errorf("%w: %s", ErrProtocolRejected, identity.Address())
	}

	// the session has to be re-asserted after verification
	if err := w.api.StartSession(ctx, sess); err != nil {
		return fmt.Errorf("%w: second auth: %w", ErrSessionFailed, err)
	}
	return nil
}

// LinkTarget signs the link message with target and sends it on an authenticated session
func (w *Workflow) LinkTarget(ctx context.Context, sess *mefoundation.Session, claimAddress string, target solana.Keypair) (mefoundation.Verdict, error) {
	message := mefoundation.LinkMessage(claimAddress, target.Address(), w.clock.Now())

	resp, err := w.api.LinkWallet(ctx, sess, message, target.Address(), target.Sign(message))
	if err != nil {
		return mefoundation.Indeterminate, fmt.Errorf("%w: %w", ErrLinkFailed, err)
	}
	return mefoundation.Eligibility(resp), nil
}
