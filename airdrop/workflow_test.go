package airdrop_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screwyprof/airdrop/airdrop"
	"github.com/screwyprof/airdrop/pkg/mefoundation"
	"github.com/screwyprof/airdrop/pkg/mefoundation/mefoundationtest"
)

func TestWorkflowCheck(t *testing.T) {
	t.Parallel()

	t.Run("it records an eligible wallet with its allocation", func(t *testing.T) {
		t.Parallel()

		// Arrange
		server, client := fakeService(t)
		target := wallet(t)
		eligibleWith(server, target, 2_500_000)
		wf := airdrop.NewWorkflow(client, &fakeClock{})

		// Act
		outcome, err := wf.Check(t.Context(), airdrop.Task{Target: target})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, mefoundation.Eligible, outcome.Verdict)
		assert.NoError(t, outcome.FetchErr)

		record, ok := outcome.Record()
		require.True(t, ok)
		assert.Equal(t, target.Address()+": 2.5", record.Line())
	})

	t.Run("it links the target to a throwaway identity", func(t *testing.T) {
		t.Parallel()

		// Arrange
		server, client := fakeService(t)
		first, second := wallet(t), wallet(t)
		wf := airdrop.NewWorkflow(client, nil)

		// Act
		_, err := wf.Check(t.Context(), airdrop.Task{Target: first})
		require.NoError(t, err)
		_, err = wf.Check(t.Context(), airdrop.Task{Target: second})
		require.NoError(t, err)

		// Assert
		firstClaim, ok := server.LinkedTo(first.Address())
		require.True(t, ok)
		secondClaim, ok := server.LinkedTo(second.Address())
		require.True(t, ok)

		assert.NotEqual(t, first.Address(), firstClaim)
		assert.NotEqual(t, firstClaim, secondClaim, "every execution uses a fresh identity")
	})

	t.Run("it produces no record for a wallet that is not eligible", func(t *testing.T) {
		t.Parallel()

		// Arrange
		server, client := fakeService(t)
		target := wallet(t)
		server.SetEligibility(target.Address(), "not-eligible")
		wf := airdrop.NewWorkflow(client, nil)

		// Act
		outcome, err := wf.Check(t.Context(), airdrop.Task{Target: target})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, mefoundation.NotEligible, outcome.Verdict)
		_, ok := outcome.Record()
		assert.False(t, ok)
		assert.Zero(t, server.Calls(mefoundationtest.WalletsPath), "allocation is only fetched for eligible wallets")
	})

	t.Run("it treats a response without a verdict as a normal outcome", func(t *testing.T) {
		t.Parallel()

		// Arrange
		_, client := fakeService(t)
		wf := airdrop.NewWorkflow(client, nil)

		// Act
		outcome, err := wf.Check(t.Context(), airdrop.Task{Target: wallet(t)})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, mefoundation.Indeterminate, outcome.Verdict)
	})

	t.Run("it still records an eligible wallet when the allocation fetch fails", func(t *testing.T) {
		t.Parallel()

		// Arrange
		server, client := fakeService(t)
		target := wallet(t)
		eligibleWith(server, target, 1_000_000)
		server.FailNext(mefoundationtest.WalletsPath, 1)
		wf := airdrop.NewWorkflow(client, nil)

		// Act
		outcome, err := wf.Check(t.Context(), airdrop.Task{Target: target})

		// Assert
		require.NoError(t, err)
		assert.ErrorIs(t, outcome.FetchErr, mefoundation.ErrTransport)

		record, ok := outcome.Record()
		require.True(t, ok)
		assert.Equal(t, target.Address(), record.Line())
	})

	t.Run("it aborts when the verification is rejected", func(t *testing.T) {
		t.Parallel()

		// Arrange
		server, client := fakeService(t)
		server.RejectVerification()
		wf := airdrop.NewWorkflow(client, nil)

		// Act
		_, err := wf.Check(t.Context(), airdrop.Task{Target: wallet(t)})

		// Assert
		require.ErrorIs(t, err, airdrop.ErrProtocolRejected)
		assert.Equal(t, 1, server.Calls(mefoundationtest.SessionPath), "no second auth after a rejection")
		assert.Zero(t, server.Calls(mefoundationtest.LinkPath))
	})

	t.Run("it aborts when the first auth fails", func(t *testing.T) {
		t.Parallel()

		// Arrange
		server, client := fakeService(t)
		server.FailNext(mefoundationtest.SessionPath, 1)
		wf := airdrop.NewWorkflow(client, nil)

		// Act
		_, err := wf.Check(t.Context(), airdrop.Task{Target: wallet(t)})

		// Assert
		require.ErrorIs(t, err, airdrop.ErrSessionFailed)
		assert.ErrorIs(t, err, mefoundation.ErrTransport)
		assert.Zero(t, server.Calls(mefoundationtest.VerifyPath))
	})

	t.Run("it aborts when the second auth fails", func(t *testing.T) {
		t.Parallel()

		// Arrange
		server, client := fakeService(t)
		server.FailCall(mefoundationtest.SessionPath, 2)
		wf := airdrop.NewWorkflow(client, nil)

		// Act
		_, err := wf.Check(t.Context(), airdrop.Task{Target: wallet(t)})

		// Assert
		require.ErrorIs(t, err, airdrop.ErrSessionFailed)
		assert.Contains(t, err.Error(), "second auth")
		assert.Equal(t, 1, server.Calls(mefoundationtest.VerifyPath))
		assert.Zero(t, server.Calls(mefoundationtest.LinkPath))
	})
}

func TestWorkflowLink(t *testing.T) {
	t.Parallel()

	t.Run("it links the target to the claim wallet", func(t *testing.T) {
		t.Parallel()

		// Arrange
		server, client := fakeService(t)
		claim, target := wallet(t), wallet(t)
		server.SetEligibility(target.Address(), "eligible")
		wf := airdrop.NewWorkflow(client, nil)

		// Act
		verdict, err := wf.Link(t.Context(), airdrop.LinkTask{Claim: claim, Target: target})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, mefoundation.Eligible, verdict)

		linked, ok := server.LinkedTo(target.Address())
		require.True(t, ok)
		assert.Equal(t, claim.Address(), linked)
	})

	t.Run("it reports link failures", func(t *testing.T) {
		t.Parallel()

		// Arrange
		server, client := fakeService(t)
		server.FailNext(mefoundationtest.LinkPath, 1)
		wf := airdrop.NewWorkflow(client, nil)

		// Act
		_, err := wf.Link(t.Context(), airdrop.LinkTask{Claim: wallet(t), Target: wallet(t)})

		// Assert
		assert.ErrorIs(t, err, airdrop.ErrLinkFailed)
	})
}

func TestParseCredential(t *testing.T) {
	t.Parallel()

	t.Run("it accepts an exported wallet secret", func(t *testing.T) {
		t.Parallel()

		// Arrange
		w := wallet(t)

		// Act
		kp, err := airdrop.ParseCredential(w.Secret())

		// Assert
		require.NoError(t, err)
		assert.Equal(t, w.Address(), kp.Address())
	})

	t.Run("it rejects a malformed secret", func(t *testing.T) {
		t.Parallel()

		// Act
		_, err := airdrop.ParseCredential("not-a-secret")

		// Assert
		assert.ErrorIs(t, err, airdrop.ErrInvalidCredential)
	})
}
