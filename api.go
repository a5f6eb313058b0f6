// Package timevote is the client side API for communicating with the
// timevote service, a time-locked threshold-decrypted voting protocol:
// votes are cast encrypted under a group of holders and stay secret until
// enough holders release decryption material after voting closes. Holders
// put down a deposit that is forfeited to the reward pool if they fail to
// participate.
package timevote

import (
	"go.dedis.ch/kyber/v3"
	"go.dedis.ch/onet/v3"
	"go.dedis.ch/onet/v3/network"

	"go.dedis.ch/timevote/lib"
)

// ServiceName is the identifier of the service (application name).
const ServiceName = "timevote"

// Client is a structure to communicate with the timevote service. User and
// Private identify the acting account; Master must be set (from LinkReply)
// before any authenticated call.
type Client struct {
	*onet.Client
	Roster  *onet.Roster
	User    uint32
	Private kyber.Scalar
	Master  lib.Handle
}

// NewClient instantiates a new timevote.Client.
func NewClient(roster *onet.Roster) *Client {
	return &Client{Client: onet.NewClient(Suite, ServiceName), Roster: roster}
}

func (c *Client) leader() *network.ServerIdentity {
	return c.Roster.List[0]
}

func (c *Client) sign() ([]byte, error) {
	return AuthSign(c.Private, c.Master, c.User)
}

// Ping a random server which increments the nonce.
func (c *Client) Ping(nonce uint32) (*Ping, error) {
	reply := &Ping{}
	err := c.SendProtobuf(c.Roster.RandomServerIdentity(), &Ping{Nonce: nonce}, reply)
	if err != nil {
		return nil, err
	}
	return reply, nil
}

// Link sets the front-end authentication key and the administrator list and
// stores the returned master handle for subsequent signed calls.
func (c *Client) Link(pin string, key kyber.Point, admins []uint32) (*LinkReply, error) {
	reply := &LinkReply{}
	err := c.SendProtobuf(c.leader(), &Link{Pin: pin, Key: key, Admins: admins}, reply)
	if err != nil {
		return nil, err
	}
	c.Master = reply.Master
	return reply, nil
}

// Mint credits an account on the single-node ledger.
func (c *Client) Mint(pin string, user uint32, amount uint64) (*MintReply, error) {
	reply := &MintReply{}
	err := c.SendProtobuf(c.leader(), &Mint{Pin: pin, User: user, Amount: amount}, reply)
	return reply, err
}

// CreateSessionPair deploys a new registry/session pair and returns its id
// and handles.
func (c *Client) CreateSessionPair(req *CreateSessionPair) (*CreateSessionPairReply, error) {
	sig, err := c.sign()
	if err != nil {
		return nil, err
	}
	req.User = c.User
	req.Signature = sig
	reply := &CreateSessionPairReply{}
	err = c.SendProtobuf(c.leader(), req, reply)
	return reply, err
}

// LinkSession performs the administrative cross-registration of a pair.
func (c *Client) LinkSession(id uint32) error {
	sig, err := c.sign()
	if err != nil {
		return err
	}
	return c.SendProtobuf(c.leader(),
		&LinkSession{User: c.User, Signature: sig, ID: id}, &LinkSessionReply{})
}

// RegisterVoter registers the client's account as a voter.
func (c *Client) RegisterVoter(id uint32) (*RegisterVoterReply, error) {
	sig, err := c.sign()
	if err != nil {
		return nil, err
	}
	reply := &RegisterVoterReply{}
	err = c.SendProtobuf(c.leader(),
		&RegisterVoter{User: c.User, Signature: sig, ID: id}, reply)
	return reply, err
}

// JoinHolder registers the client's account as a holder, attaching the
// deposit.
func (c *Client) JoinHolder(id uint32, pub string, deposit uint64) (*JoinHolderReply, error) {
	sig, err := c.sign()
	if err != nil {
		return nil, err
	}
	reply := &JoinHolderReply{}
	err = c.SendProtobuf(c.leader(), &JoinHolder{
		User: c.User, Signature: sig, ID: id,
		BLSPublicKey: pub, Deposit: deposit,
	}, reply)
	return reply, err
}

// CastVote casts an encrypted vote.
func (c *Client) CastVote(req *CastVote) (*CastVoteReply, error) {
	sig, err := c.sign()
	if err != nil {
		return nil, err
	}
	req.User = c.User
	req.Signature = sig
	reply := &CastVoteReply{}
	err = c.SendProtobuf(c.leader(), req, reply)
	return reply, err
}

// SubmitShares submits a batch of decryption shares.
func (c *Client) SubmitShares(id uint32, voteIndices, shareIndices []int, shares [][]byte) error {
	sig, err := c.sign()
	if err != nil {
		return err
	}
	return c.SendProtobuf(c.leader(), &SubmitShares{
		User: c.User, Signature: sig, ID: id,
		VoteIndices: voteIndices, ShareIndices: shareIndices, Shares: shares,
	}, &SubmitSharesReply{})
}

// SetDecryptionParameters stores the reconstruction parameters; owner-only.
func (c *Client) SetDecryptionParameters(id uint32, alphas [][]byte, threshold int) error {
	sig, err := c.sign()
	if err != nil {
		return err
	}
	return c.SendProtobuf(c.leader(), &SetDecryptionParameters{
		User: c.User, Signature: sig, ID: id,
		Alphas: alphas, Threshold: threshold,
	}, &SetDecryptionParametersReply{})
}

// SubmitDecryptionValue submits a reconstruction contribution.
func (c *Client) SubmitDecryptionValue(id uint32, value []byte) (*SubmitDecryptionValueReply, error) {
	sig, err := c.sign()
	if err != nil {
		return nil, err
	}
	reply := &SubmitDecryptionValueReply{}
	err = c.SendProtobuf(c.leader(), &SubmitDecryptionValue{
		User: c.User, Signature: sig, ID: id, Value: value,
	}, reply)
	return reply, err
}

// AddRewardFunding attaches owner value to the reward pool.
func (c *Client) AddRewardFunding(id uint32, amount uint64) error {
	sig, err := c.sign()
	if err != nil {
		return err
	}
	return c.SendProtobuf(c.leader(), &AddRewardFunding{
		User: c.User, Signature: sig, ID: id, Amount: amount,
	}, &AddRewardFundingReply{})
}

// TriggerRewardCalculation computes the payout table; owner-only.
func (c *Client) TriggerRewardCalculation(id uint32) (*TriggerRewardCalculationReply, error) {
	sig, err := c.sign()
	if err != nil {
		return nil, err
	}
	reply := &TriggerRewardCalculationReply{}
	err = c.SendProtobuf(c.leader(),
		&TriggerRewardCalculation{User: c.User, Signature: sig, ID: id}, reply)
	return reply, err
}

// ClaimReward pays out the client's reward.
func (c *Client) ClaimReward(id uint32) (*ClaimRewardReply, error) {
	sig, err := c.sign()
	if err != nil {
		return nil, err
	}
	reply := &ClaimRewardReply{}
	err = c.SendProtobuf(c.leader(),
		&ClaimReward{User: c.User, Signature: sig, ID: id}, reply)
	return reply, err
}

// ClaimDeposit returns the client's escrowed deposit.
func (c *Client) ClaimDeposit(id uint32) (*ClaimDepositReply, error) {
	sig, err := c.sign()
	if err != nil {
		return nil, err
	}
	reply := &ClaimDepositReply{}
	err = c.SendProtobuf(c.leader(),
		&ClaimDeposit{User: c.User, Signature: sig, ID: id}, reply)
	return reply, err
}

// AbortSession moves the session to its terminal sink; owner-only.
func (c *Client) AbortSession(id uint32) error {
	sig, err := c.sign()
	if err != nil {
		return err
	}
	return c.SendProtobuf(c.leader(),
		&AbortSession{User: c.User, Signature: sig, ID: id}, &AbortSessionReply{})
}

// UpdateSessionStatus evaluates the time-driven state machine.
func (c *Client) UpdateSessionStatus(id uint32) (*UpdateSessionStatusReply, error) {
	reply := &UpdateSessionStatusReply{}
	err := c.SendProtobuf(c.leader(), &UpdateSessionStatus{ID: id}, reply)
	return reply, err
}

// GetSessionInfo returns the session data and its current status.
func (c *Client) GetSessionInfo(id uint32) (*GetSessionInfoReply, error) {
	reply := &GetSessionInfoReply{}
	err := c.SendProtobuf(c.Roster.RandomServerIdentity(), &GetSessionInfo{ID: id}, reply)
	return reply, err
}

// GetParticipantInfo returns the registry record for one account.
func (c *Client) GetParticipantInfo(id, user uint32) (*GetParticipantInfoReply, error) {
	reply := &GetParticipantInfoReply{}
	err := c.SendProtobuf(c.leader(), &GetParticipantInfo{ID: id, User: user}, reply)
	return reply, err
}

// GetSubmittedValues returns the revealed decryption values.
func (c *Client) GetSubmittedValues(id uint32) (*GetSubmittedValuesReply, error) {
	reply := &GetSubmittedValuesReply{}
	err := c.SendProtobuf(c.leader(), &GetSubmittedValues{ID: id}, reply)
	return reply, err
}

// GetEvents returns the event log of one session, or the whole log for 0.
func (c *Client) GetEvents(id uint32) (*GetEventsReply, error) {
	reply := &GetEventsReply{}
	err := c.SendProtobuf(c.leader(), &GetEvents{ID: id}, reply)
	return reply, err
}

// GetBalance returns the ledger balance of an account.
func (c *Client) GetBalance(user uint32) (*GetBalanceReply, error) {
	reply := &GetBalanceReply{}
	err := c.SendProtobuf(c.leader(), &GetBalance{User: user}, reply)
	return reply, err
}
