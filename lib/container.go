package lib

import (
	"go.dedis.ch/onet/v3/network"
)

func init() {
	network.RegisterMessages(EncryptedVote{}, DecryptionShare{}, DecryptionValue{})
}

// EncryptedVote is a single ballot encrypted under the holder group. The
// ciphertext and the curve points are opaque to the protocol; only the
// reconstruction primitive interprets them.
type EncryptedVote struct {
	Voter        uint32   // Voter is the account that cast the ballot.
	Ciphertext   []byte   // Ciphertext of the chosen option.
	G1R          []byte   // G1R is the G1 component of the encryption randomness.
	G2R          []byte   // G2R is the G2 component of the encryption randomness.
	HolderAlphas [][]byte // One share seed per active holder, aligned by participant index.
	Threshold    int      // Threshold the voter encrypted against.
}

// DecryptionShare is one holder's partial decryption of one vote.
type DecryptionShare struct {
	VoteIndex  int    // VoteIndex references the session's vote list.
	Holder     uint32 // Holder is the submitting account.
	ShareIndex int    // ShareIndex is the holder's position in the crypto material.
	Data       []byte // Data is the opaque share.
}

// DecryptionValue is one holder's contribution towards reconstructing the
// session decryption key. Submissions are kept in insertion order.
type DecryptionValue struct {
	Submitter   uint32 // Submitter is the contributing account.
	HolderIndex int    // HolderIndex is the submitter's participant index.
	Value       []byte // Value is the opaque reconstruction contribution.
}
