package lib

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegisterVoter(t *testing.T) {
	s, r := newPair(t)

	p, err := r.RegisterVoter(s, tReg, voter1)
	require.NoError(t, err)
	require.Equal(t, 0, p.Index)
	require.False(t, p.Holder)
	require.Zero(t, p.Deposit)

	// Double registration.
	_, err = r.RegisterVoter(s, tReg, voter1)
	require.Equal(t, ErrAlreadyRegistered, err)

	// Registration closes at the start time, and the failure is identical
	// no matter how often it is retried.
	for i := 0; i < 3; i++ {
		_, err = r.RegisterVoter(s, tStart, voter2)
		require.Equal(t, ErrRegistrationClosed, err)
	}
	_, err = r.RegisterVoter(s, tDone, voter2)
	require.Equal(t, ErrRegistrationClosed, err)
}

func TestJoinHolder(t *testing.T) {
	s, r := newPair(t)
	pub := holderKey(t)

	// The deposit must match exactly, zero and excess included.
	for _, value := range []uint64{0, deposit - 1, deposit + 1, 10 * deposit} {
		_, err := r.JoinHolder(s, tReg, holder1, pub, value)
		require.Equal(t, ErrIncorrectDeposit, err)
	}

	// The key must be a valid G2 point.
	_, err := r.JoinHolder(s, tReg, holder1, "zz", deposit)
	require.Error(t, err)
	_, err = r.JoinHolder(s, tReg, holder1, "deadbeef", deposit)
	require.Error(t, err)

	p, err := r.JoinHolder(s, tReg, holder1, pub, deposit)
	require.NoError(t, err)
	require.True(t, p.Holder)
	require.Equal(t, pub, p.BLSPublicKey)
	require.Equal(t, deposit, p.Deposit)

	_, err = r.JoinHolder(s, tReg, holder1, pub, deposit)
	require.Equal(t, ErrAlreadyRegistered, err)

	require.True(t, r.IsHolder(holder1))
	require.False(t, r.IsHolder(voter1))
	require.Equal(t, 1, r.HolderCount())
}

func TestParticipantIndices(t *testing.T) {
	s, r := newPair(t)

	users := []uint32{voter1, holder1, voter2, holder2}
	for i, u := range users {
		var p *Participant
		var err error
		if i%2 == 0 {
			p, err = r.RegisterVoter(s, tReg, u)
		} else {
			p, err = r.JoinHolder(s, tReg, u, holderKey(t), deposit)
		}
		require.NoError(t, err)
		require.Equal(t, i, p.Index)
	}

	info, err := r.ParticipantInfo(holder2)
	require.NoError(t, err)
	require.Equal(t, 3, info.Index)
	_, err = r.ParticipantInfo(holder3)
	require.Equal(t, ErrNotRegistered, err)
}

func TestCalculateRewards(t *testing.T) {
	s, r := newPair(t)
	joinHolders(t, s, r, holder1, holder2)

	_, err := r.RegisterVoter(s, tReg, voter1)
	require.NoError(t, err)
	require.NoError(t, s.Cast(r, tVote, voter1, newVote(2, 2)))

	// Only holder1 participates in decryption; holder2 forfeits.
	submitShares(t, s, r, holder1, 0)

	funding := uint64(33)
	require.NoError(t, r.AddRewardFunding(s, admin, funding))
	require.Equal(t, ErrNotAdmin, r.AddRewardFunding(s, voter1, funding))

	pool, err := r.calculateRewards()
	require.NoError(t, err)
	require.Equal(t, deposit+funding, pool)
	require.Equal(t, deposit+funding, r.TotalRewardPool)

	p1, _ := r.ParticipantInfo(holder1)
	p2, _ := r.ParticipantInfo(holder2)
	require.Equal(t, deposit+funding, p1.RewardOwed)
	require.Zero(t, p2.RewardOwed)

	// Second run and late funding are rejected.
	_, err = r.calculateRewards()
	require.Equal(t, ErrRewardsCalculated, err)
	require.Equal(t, ErrRewardsCalculated, r.AddRewardFunding(s, admin, 1))
}

func TestCalculateRewardsRemainder(t *testing.T) {
	s, r := newPair(t)
	joinHolders(t, s, r, holder1, holder2, holder3)

	_, err := r.RegisterVoter(s, tReg, voter1)
	require.NoError(t, err)
	require.NoError(t, s.Cast(r, tVote, voter1, newVote(3, 2)))
	submitShares(t, s, r, holder1, 0)
	submitShares(t, s, r, holder2, 1)
	submitShares(t, s, r, holder3, 2)

	// Pool is only the external funding: 10 split by 3, remainder 1 is
	// left stranded in the escrow.
	require.NoError(t, r.AddRewardFunding(s, admin, 10))
	pool, err := r.calculateRewards()
	require.NoError(t, err)
	require.Equal(t, uint64(10), pool)

	var owed uint64
	for _, u := range []uint32{holder1, holder2, holder3} {
		p, _ := r.ParticipantInfo(u)
		require.Equal(t, uint64(3), p.RewardOwed)
		owed += p.RewardOwed
	}
	require.Equal(t, pool-1, owed)
}

func TestAddRewardFundingAborted(t *testing.T) {
	s, r := newPair(t)
	joinHolders(t, s, r, holder1)

	require.NoError(t, s.Abort(tVote, admin))

	// An aborted session can never pay rewards out, so no more value may
	// flow into its pool.
	require.Equal(t, ErrSessionAborted, r.AddRewardFunding(s, admin, 10))
	require.Zero(t, r.ExternalFunding)
}

func TestCalculateRewardsNoEligible(t *testing.T) {
	s, r := newPair(t)
	joinHolders(t, s, r, holder1, holder2)

	_, err := r.calculateRewards()
	require.Equal(t, ErrNoEligibleHolders, err)
	require.False(t, r.RewardsCalculated)
}

func TestClaimReward(t *testing.T) {
	s, r := newPair(t)
	joinHolders(t, s, r, holder1, holder2)

	_, err := r.RegisterVoter(s, tReg, voter1)
	require.NoError(t, err)
	require.NoError(t, s.Cast(r, tVote, voter1, newVote(2, 2)))
	submitShares(t, s, r, holder1, 0)

	// Calculation pending.
	_, err = r.ClaimReward(holder1)
	require.Equal(t, ErrNothingOwed, err)

	_, err = r.calculateRewards()
	require.NoError(t, err)

	amount, err := r.ClaimReward(holder1)
	require.NoError(t, err)
	require.Equal(t, deposit, amount) // holder2's forfeited deposit

	// Exactly once.
	_, err = r.ClaimReward(holder1)
	require.Equal(t, ErrRewardClaimed, err)

	// Never eligible.
	_, err = r.ClaimReward(holder2)
	require.Equal(t, ErrNothingOwed, err)
	_, err = r.ClaimReward(voter1)
	require.Equal(t, ErrNothingOwed, err)
	_, err = r.ClaimReward(voter2)
	require.Equal(t, ErrNotRegistered, err)
}

func TestClaimDeposit(t *testing.T) {
	s, r := newPair(t)
	joinHolders(t, s, r, holder1, holder2)

	_, err := r.RegisterVoter(s, tReg, voter1)
	require.NoError(t, err)
	require.NoError(t, s.Cast(r, tVote, voter1, newVote(2, 2)))
	submitShares(t, s, r, holder1, 0)

	amount, err := r.ClaimDeposit(holder1)
	require.NoError(t, err)
	require.Equal(t, deposit, amount)

	_, err = r.ClaimDeposit(holder1)
	require.Equal(t, ErrDepositClaimed, err)

	// holder2 never submitted shares: the deposit is forfeited.
	_, err = r.ClaimDeposit(holder2)
	require.Equal(t, ErrSharesNotSubmitted, err)

	// Voters carry no deposit and no share obligation.
	_, err = r.ClaimDeposit(voter1)
	require.Equal(t, ErrSharesNotSubmitted, err)
}
