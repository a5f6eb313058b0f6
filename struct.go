package timevote

import (
	"encoding/binary"

	"go.dedis.ch/kyber/v3"
	"go.dedis.ch/kyber/v3/sign/schnorr"
	"go.dedis.ch/onet/v3/network"

	"go.dedis.ch/timevote/ledger"
	"go.dedis.ch/timevote/lib"
)

func init() {
	network.RegisterMessages(
		Ping{},
		Link{}, LinkReply{},
		Mint{}, MintReply{},
		CreateSessionPair{}, CreateSessionPairReply{},
		LinkSession{}, LinkSessionReply{},
		RegisterVoter{}, RegisterVoterReply{},
		JoinHolder{}, JoinHolderReply{},
		CastVote{}, CastVoteReply{},
		SubmitShares{}, SubmitSharesReply{},
		SetDecryptionParameters{}, SetDecryptionParametersReply{},
		SubmitDecryptionValue{}, SubmitDecryptionValueReply{},
		AddRewardFunding{}, AddRewardFundingReply{},
		TriggerRewardCalculation{}, TriggerRewardCalculationReply{},
		ClaimReward{}, ClaimRewardReply{},
		ClaimDeposit{}, ClaimDepositReply{},
		AbortSession{}, AbortSessionReply{},
		UpdateSessionStatus{}, UpdateSessionStatusReply{},
		GetSessionInfo{}, GetSessionInfoReply{},
		GetVotes{}, GetVotesReply{},
		GetShares{}, GetSharesReply{},
		GetParticipantInfo{}, GetParticipantInfoReply{},
		GetDecryptionParameters{}, GetDecryptionParametersReply{},
		GetSubmittedValues{}, GetSubmittedValuesReply{},
		GetTotalRewardPool{}, GetTotalRewardPoolReply{},
		GetSessionCount{}, GetSessionCountReply{},
		GetSessionHandles{}, GetSessionHandlesReply{},
		GetHandleByIndex{}, GetHandleByIndexReply{},
		GetEvents{}, GetEventsReply{},
		GetBalance{}, GetBalanceReply{},
	)
}

// AuthSign signs the authentication message for a given user: the master
// handle followed by the little-endian account id.
func AuthSign(private kyber.Scalar, master lib.Handle, user uint32) ([]byte, error) {
	return schnorr.Sign(Suite, private, AuthMessage(master, user))
}

// AuthMessage builds the byte string signed by AuthSign.
func AuthMessage(master lib.Handle, user uint32) []byte {
	message := make([]byte, 0, len(master)+4)
	message = append(message, master...)
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, user)
	return append(message, buf...)
}

// Ping message.
type Ping struct {
	Nonce uint32 // Nonce can be any integer.
}

// Link message. Sets the front-end authentication key and the administrator
// list; protected by the service pin.
type Link struct {
	Pin    string
	Key    kyber.Point // front-end public key used to verify user signatures
	Admins []uint32
}

// LinkReply message.
type LinkReply struct {
	Master lib.Handle // authentication context for every signed request
}

// Mint message. Credits an account on the single-node ledger; protected by
// the service pin. Real deployments fund accounts on the external ledger.
type Mint struct {
	Pin    string
	User   uint32
	Amount uint64
}

// MintReply message.
type MintReply struct {
	Balance uint64
}

// CreateSessionPair message. Deploys a fresh registry/session pair.
type CreateSessionPair struct {
	User      uint32
	Signature []byte

	Title             string
	Description       string
	Start             int64
	End               int64
	SharesEnd         int64
	Options           []string
	Metadata          string
	RequiredDeposit   uint64
	MinShareThreshold int
}

// CreateSessionPairReply message.
type CreateSessionPairReply struct {
	ID       uint32
	Registry lib.Handle
	Session  lib.Handle
}

// LinkSession message. One-time administrative cross-registration of the two
// instances of a pair.
type LinkSession struct {
	User      uint32
	Signature []byte
	ID        uint32
}

// LinkSessionReply message.
type LinkSessionReply struct{}

// RegisterVoter message.
type RegisterVoter struct {
	User      uint32
	Signature []byte
	ID        uint32
}

// RegisterVoterReply message.
type RegisterVoterReply struct {
	Index int // assigned participant index
}

// JoinHolder message. Deposit is the attached value; it must equal the
// session's required deposit exactly.
type JoinHolder struct {
	User      uint32
	Signature []byte
	ID        uint32

	BLSPublicKey string // hex encoded G2 point
	Deposit      uint64
}

// JoinHolderReply message.
type JoinHolderReply struct {
	Index int
}

// CastVote message.
type CastVote struct {
	User      uint32
	Signature []byte
	ID        uint32

	Ciphertext   []byte
	G1R          []byte
	G2R          []byte
	HolderAlphas [][]byte
	Threshold    int
}

// CastVoteReply message.
type CastVoteReply struct {
	VoteIndex int
}

// SubmitShares message. The three slices are parallel: one entry per
// decrypted vote.
type SubmitShares struct {
	User      uint32
	Signature []byte
	ID        uint32

	VoteIndices  []int
	ShareIndices []int
	Shares       [][]byte
}

// SubmitSharesReply message.
type SubmitSharesReply struct{}

// SetDecryptionParameters message. Owner-only, once per session.
type SetDecryptionParameters struct {
	User      uint32
	Signature []byte
	ID        uint32

	Alphas    [][]byte
	Threshold int
}

// SetDecryptionParametersReply message.
type SetDecryptionParametersReply struct{}

// SubmitDecryptionValue message.
type SubmitDecryptionValue struct {
	User      uint32
	Signature []byte
	ID        uint32

	Value []byte
}

// SubmitDecryptionValueReply message.
type SubmitDecryptionValueReply struct {
	ThresholdReached bool // true exactly once, on the submission that reaches the threshold
}

// AddRewardFunding message. Owner-only; Amount is the attached value.
type AddRewardFunding struct {
	User      uint32
	Signature []byte
	ID        uint32

	Amount uint64
}

// AddRewardFundingReply message.
type AddRewardFundingReply struct{}

// TriggerRewardCalculation message. Owner-only, once per session.
type TriggerRewardCalculation struct {
	User      uint32
	Signature []byte
	ID        uint32
}

// TriggerRewardCalculationReply message.
type TriggerRewardCalculationReply struct {
	TotalPool uint64
}

// ClaimReward message.
type ClaimReward struct {
	User      uint32
	Signature []byte
	ID        uint32
}

// ClaimRewardReply message.
type ClaimRewardReply struct {
	Amount uint64
}

// ClaimDeposit message.
type ClaimDeposit struct {
	User      uint32
	Signature []byte
	ID        uint32
}

// ClaimDepositReply message.
type ClaimDepositReply struct {
	Amount uint64
}

// AbortSession message. Owner-only; moves the session to its terminal sink.
type AbortSession struct {
	User      uint32
	Signature []byte
	ID        uint32
}

// AbortSessionReply message.
type AbortSessionReply struct{}

// UpdateSessionStatus message. Callable by anyone; evaluates the time-driven
// state machine and returns the current status.
type UpdateSessionStatus struct {
	ID uint32
}

// UpdateSessionStatusReply message.
type UpdateSessionStatusReply struct {
	Status lib.Phase
}

// GetSessionInfo message.
type GetSessionInfo struct {
	ID uint32
}

// GetSessionInfoReply message.
type GetSessionInfoReply struct {
	Session *lib.Session
	Status  lib.Phase
}

// GetVotes message.
type GetVotes struct {
	ID uint32
}

// GetVotesReply message.
type GetVotesReply struct {
	Votes []*lib.EncryptedVote
}

// GetShares message.
type GetShares struct {
	ID uint32
}

// GetSharesReply message.
type GetSharesReply struct {
	Shares []*lib.DecryptionShare
}

// GetParticipantInfo message.
type GetParticipantInfo struct {
	ID   uint32
	User uint32
}

// GetParticipantInfoReply message.
type GetParticipantInfoReply struct {
	Participant *lib.Participant
}

// GetDecryptionParameters message.
type GetDecryptionParameters struct {
	ID uint32
}

// GetDecryptionParametersReply message.
type GetDecryptionParametersReply struct {
	Alphas    [][]byte
	Threshold int
	Set       bool
}

// GetSubmittedValues message.
type GetSubmittedValues struct {
	ID uint32
}

// GetSubmittedValuesReply message. The three slices are parallel; once the
// threshold has been reached only the first Threshold submissions are
// revealed.
type GetSubmittedValuesReply struct {
	Submitters       []uint32
	HolderIndices    []int
	Values           [][]byte
	ThresholdReached bool
}

// GetTotalRewardPool message.
type GetTotalRewardPool struct {
	ID uint32
}

// GetTotalRewardPoolReply message.
type GetTotalRewardPoolReply struct {
	Pool       uint64
	Calculated bool
}

// GetSessionCount message.
type GetSessionCount struct{}

// GetSessionCountReply message.
type GetSessionCountReply struct {
	Count int
}

// GetSessionHandles message.
type GetSessionHandles struct {
	ID uint32
}

// GetSessionHandlesReply message.
type GetSessionHandlesReply struct {
	Registry lib.Handle
	Session  lib.Handle
}

// GetHandleByIndex message.
type GetHandleByIndex struct {
	Index int
}

// GetHandleByIndexReply message.
type GetHandleByIndexReply struct {
	ID       uint32
	Registry lib.Handle
	Session  lib.Handle
}

// GetEvents message. A session id of 0 selects the whole log.
type GetEvents struct {
	ID uint32
}

// GetEventsReply message.
type GetEventsReply struct {
	Events []ledger.Event
}

// GetBalance message.
type GetBalance struct {
	User uint32
}

// GetBalanceReply message.
type GetBalanceReply struct {
	Balance uint64
}
