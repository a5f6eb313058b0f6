package lib

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/kyber/v3/util/random"
)

// Deadlines used by every test pair; "now" values pick the phase.
const (
	tStart     = int64(1000)
	tEnd       = int64(2000)
	tSharesEnd = int64(3000)

	tReg    = int64(500)  // registration open
	tVote   = int64(1500) // voting open
	tShares = int64(2500) // share collection open
	tDone   = int64(3500) // completed
)

const (
	admin   = uint32(111111)
	voter1  = uint32(111112)
	voter2  = uint32(111113)
	holder1 = uint32(111114)
	holder2 = uint32(111115)
	holder3 = uint32(111116)
)

const deposit = uint64(100)

func newPair(t *testing.T) (*Session, *Registry) {
	f := NewFactory()
	_, s, r, err := f.Create(admin, "budget vote", "", tStart, tEnd, tSharesEnd,
		[]string{"yes", "no"}, "", deposit, 2)
	require.NoError(t, err)
	require.NoError(t, Link(admin, r, s))
	return s, r
}

func holderKey(t *testing.T) string {
	t.Helper()
	return RandomHolderKey()
}

func joinHolders(t *testing.T, s *Session, r *Registry, users ...uint32) {
	for _, u := range users {
		_, err := r.JoinHolder(s, tReg, u, holderKey(t), deposit)
		require.NoError(t, err)
	}
}

func newVote(holders, threshold int) *EncryptedVote {
	alphas := make([][]byte, holders)
	for i := range alphas {
		seed := make([]byte, 32)
		random.Bytes(seed, random.New())
		alphas[i] = seed
	}
	return &EncryptedVote{
		Ciphertext:   []byte("ciphertext"),
		G1R:          []byte("g1r"),
		G2R:          []byte("g2r"),
		HolderAlphas: alphas,
		Threshold:    threshold,
	}
}

// submitShares is a shortcut for a holder decrypting every vote of a session.
func submitShares(t *testing.T, s *Session, r *Registry, holder uint32, shareIndex int) {
	votes := make([]int, len(s.Votes))
	indices := make([]int, len(s.Votes))
	data := make([][]byte, len(s.Votes))
	for i := range s.Votes {
		votes[i] = i
		indices[i] = shareIndex
		data[i] = []byte("share")
	}
	require.NoError(t, s.SubmitShares(r, tShares, holder, votes, indices, data))
}
