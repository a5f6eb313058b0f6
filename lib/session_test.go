package lib

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCast(t *testing.T) {
	s, r := newPair(t)
	joinHolders(t, s, r, holder1, holder2)
	_, err := r.RegisterVoter(s, tReg, voter1)
	require.NoError(t, err)

	// Phase gating on both sides of the voting window.
	require.Equal(t, ErrVotingClosed, s.Cast(r, tReg, voter1, newVote(2, 2)))
	require.Equal(t, ErrVotingClosed, s.Cast(r, tShares, voter1, newVote(2, 2)))

	require.Equal(t, ErrNotRegistered, s.Cast(r, tVote, voter2, newVote(2, 2)))

	// The share seeds and the threshold must fit the holder set.
	require.Error(t, s.Cast(r, tVote, voter1, newVote(1, 2)))
	require.Error(t, s.Cast(r, tVote, voter1, newVote(3, 2)))
	require.Error(t, s.Cast(r, tVote, voter1, newVote(2, 1)))
	require.Error(t, s.Cast(r, tVote, voter1, newVote(2, 3)))
	require.Empty(t, s.Votes)

	require.NoError(t, s.Cast(r, tVote, voter1, newVote(2, 2)))
	require.Len(t, s.Votes, 1)
	require.Equal(t, voter1, s.Votes[0].Voter)

	require.Equal(t, ErrAlreadyVoted, s.Cast(r, tVote, voter1, newVote(2, 2)))
	require.Len(t, s.Votes, 1)

	// Holders vote too.
	require.NoError(t, s.Cast(r, tVote, holder1, newVote(2, 2)))
	require.Len(t, s.Votes, 2)
}

func TestSubmitShares(t *testing.T) {
	s, r := newPair(t)
	joinHolders(t, s, r, holder1, holder2)
	_, err := r.RegisterVoter(s, tReg, voter1)
	require.NoError(t, err)
	require.NoError(t, s.Cast(r, tVote, voter1, newVote(2, 2)))

	share := [][]byte{[]byte("share")}

	// Closed outside the collection window, and never for non-holders.
	err = s.SubmitShares(r, tVote, holder1, []int{0}, []int{0}, share)
	require.Equal(t, ErrSharesClosed, err)
	err = s.SubmitShares(r, tDone, holder1, []int{0}, []int{0}, share)
	require.Equal(t, ErrSharesClosed, err)
	err = s.SubmitShares(r, tShares, voter1, []int{0}, []int{0}, share)
	require.Equal(t, ErrNotHolder, err)

	// Malformed batches.
	err = s.SubmitShares(r, tShares, holder1, nil, nil, nil)
	require.Error(t, err)
	err = s.SubmitShares(r, tShares, holder1, []int{0, 1}, []int{0}, share)
	require.Error(t, err)
	err = s.SubmitShares(r, tShares, holder1, []int{1}, []int{0}, share)
	require.Error(t, err)
	err = s.SubmitShares(r, tShares, holder1, []int{-1}, []int{0}, share)
	require.Error(t, err)
	require.Empty(t, s.Shares)

	require.NoError(t, s.SubmitShares(r, tShares, holder1, []int{0}, []int{0}, share))
	require.Len(t, s.Shares, 1)
	require.True(t, s.HasShare(0, holder1))
	require.False(t, s.HasShare(0, holder2))

	// One submission per holder, regardless of content.
	err = s.SubmitShares(r, tShares, holder1, []int{0}, []int{0}, share)
	require.Equal(t, ErrSharesRecorded, err)
	require.Len(t, s.Shares, 1)
}

func TestSetDecryptionParameters(t *testing.T) {
	s, r := newPair(t)
	joinHolders(t, s, r, holder1, holder2, holder3)

	alphas := [][]byte{[]byte("a"), []byte("b"), []byte("c")}

	err := s.SetDecryptionParameters(r, tShares, voter1, alphas, 2)
	require.Equal(t, ErrNotAdmin, err)
	err = s.SetDecryptionParameters(r, tVote, admin, alphas, 2)
	require.Error(t, err)
	err = s.SetDecryptionParameters(r, tShares, admin, alphas[:2], 2)
	require.Error(t, err)
	err = s.SetDecryptionParameters(r, tShares, admin, alphas, 1)
	require.Error(t, err)
	err = s.SetDecryptionParameters(r, tShares, admin, alphas, 4)
	require.Error(t, err)
	require.False(t, s.ParamsSet)

	require.NoError(t, s.SetDecryptionParameters(r, tShares, admin, alphas, 2))
	require.True(t, s.ParamsSet)
	require.Equal(t, 2, s.DecryptionThreshold)

	err = s.SetDecryptionParameters(r, tShares, admin, alphas, 3)
	require.Equal(t, ErrParamsSet, err)
	require.Equal(t, 2, s.DecryptionThreshold)

	// Setting the parameters late, after collection ended, is allowed.
	s2, r2 := newPair(t)
	joinHolders(t, s2, r2, holder1, holder2, holder3)
	require.NoError(t, s2.SetDecryptionParameters(r2, tDone, admin, alphas, 3))
}

func TestSubmitDecryptionValue(t *testing.T) {
	s, r := newPair(t)
	joinHolders(t, s, r, holder1, holder2, holder3)
	_, err := r.RegisterVoter(s, tReg, voter1)
	require.NoError(t, err)
	require.NoError(t, s.Cast(r, tVote, voter1, newVote(3, 2)))

	_, err = s.SubmitDecryptionValue(r, tShares, holder1, []byte("v"))
	require.Equal(t, ErrParamsNotSet, err)

	alphas := [][]byte{[]byte("a"), []byte("b"), []byte("c")}
	require.NoError(t, s.SetDecryptionParameters(r, tShares, admin, alphas, 2))

	_, err = s.SubmitDecryptionValue(r, tVote, holder1, []byte("v"))
	require.Equal(t, ErrSharesClosed, err)
	_, err = s.SubmitDecryptionValue(r, tShares, voter1, []byte("v"))
	require.Equal(t, ErrNotHolder, err)

	// Holders that have not submitted their shares are excluded.
	_, err = s.SubmitDecryptionValue(r, tShares, holder1, []byte("v"))
	require.Equal(t, ErrSharesNotSubmitted, err)

	submitShares(t, s, r, holder1, 0)
	submitShares(t, s, r, holder2, 1)
	submitShares(t, s, r, holder3, 2)

	reached, err := s.SubmitDecryptionValue(r, tShares, holder1, []byte("v1"))
	require.NoError(t, err)
	require.False(t, reached)
	require.False(t, s.ThresholdReached)
	require.Len(t, s.SubmittedValues(), 1)

	_, err = s.SubmitDecryptionValue(r, tShares, holder1, []byte("again"))
	require.Equal(t, ErrValueSubmitted, err)

	// The flag flips exactly on the submission that reaches the threshold.
	reached, err = s.SubmitDecryptionValue(r, tShares, holder2, []byte("v2"))
	require.NoError(t, err)
	require.True(t, reached)
	require.True(t, s.ThresholdReached)

	// Extra submissions are stored but never flip the flag again, and the
	// revealed view stays pinned to the first threshold entries.
	reached, err = s.SubmitDecryptionValue(r, tDone, holder3, []byte("v3"))
	require.NoError(t, err)
	require.False(t, reached)
	require.Len(t, s.Values, 3)

	values := s.SubmittedValues()
	require.Len(t, values, 2)
	require.Equal(t, holder1, values[0].Submitter)
	require.Equal(t, 0, values[0].HolderIndex)
	require.Equal(t, holder2, values[1].Submitter)
}

func TestTriggerRewardCalculation(t *testing.T) {
	s, r := newPair(t)
	joinHolders(t, s, r, holder1, holder2)
	_, err := r.RegisterVoter(s, tReg, voter1)
	require.NoError(t, err)
	require.NoError(t, s.Cast(r, tVote, voter1, newVote(2, 2)))
	submitShares(t, s, r, holder1, 0)

	_, err = s.TriggerRewardCalculation(r, tDone, voter1)
	require.Equal(t, ErrNotAdmin, err)
	_, err = s.TriggerRewardCalculation(r, tShares, admin)
	require.Equal(t, ErrSharesNotEnded, err)
	require.False(t, s.RewardsTriggered)

	pool, err := s.TriggerRewardCalculation(r, tDone, admin)
	require.NoError(t, err)
	require.Equal(t, deposit, pool)
	require.True(t, s.RewardsTriggered)

	_, err = s.TriggerRewardCalculation(r, tDone, admin)
	require.Equal(t, ErrRewardsTriggered, err)
}

func TestTriggerRewardCalculationFailure(t *testing.T) {
	s, r := newPair(t)
	joinHolders(t, s, r, holder1)

	// The registry rejects the calculation; the trigger flag must not be
	// consumed so a later attempt can still go through.
	_, err := s.TriggerRewardCalculation(r, tDone, admin)
	require.Equal(t, ErrNoEligibleHolders, err)
	require.False(t, s.RewardsTriggered)
}

func TestAbort(t *testing.T) {
	s, r := newPair(t)
	_, err := r.RegisterVoter(s, tReg, voter1)
	require.NoError(t, err)

	require.Equal(t, ErrNotAdmin, s.Abort(tReg, voter1))

	require.NoError(t, s.Abort(tVote, admin))
	require.Equal(t, Aborted, s.PhaseAt(tReg))
	require.Equal(t, Aborted, s.PhaseAt(tDone))

	require.Equal(t, ErrSessionAborted, s.Abort(tVote, admin))

	// An aborted session rejects every mutation.
	require.Equal(t, ErrVotingClosed, s.Cast(r, tVote, voter1, newVote(0, 2)))
	err = s.SubmitShares(r, tShares, voter1, []int{0}, []int{0}, [][]byte{[]byte("x")})
	require.Equal(t, ErrSharesClosed, err)
	_, err = s.TriggerRewardCalculation(r, tDone, admin)
	require.Equal(t, ErrSharesNotEnded, err)
}

func TestAbortCompleted(t *testing.T) {
	s, _ := newPair(t)
	require.Equal(t, ErrSessionCompleted, s.Abort(tDone, admin))
	require.False(t, s.Halted)
}

func TestUnlinkedFailsClosed(t *testing.T) {
	f := NewFactory()
	_, s, r, err := f.Create(admin, "orphan", "", tStart, tEnd, tSharesEnd,
		[]string{"yes", "no"}, "", deposit, 2)
	require.NoError(t, err)

	_, err = r.RegisterVoter(s, tReg, voter1)
	require.Equal(t, ErrNotLinked, err)
	require.Equal(t, ErrNotLinked, s.Cast(r, tVote, voter1, newVote(0, 2)))
	err = s.SubmitShares(r, tShares, holder1, []int{0}, []int{0}, [][]byte{nil})
	require.Equal(t, ErrNotLinked, err)
	_, err = s.SubmitDecryptionValue(r, tShares, holder1, nil)
	require.Equal(t, ErrNotLinked, err)
	_, err = s.TriggerRewardCalculation(r, tDone, admin)
	require.Equal(t, ErrNotLinked, err)
}
