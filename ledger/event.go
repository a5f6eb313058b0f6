package ledger

import (
	"go.dedis.ch/onet/v3/network"
)

func init() {
	network.RegisterMessages(Event{})
}

// Topics of the events appended by the protocol. The indexing layer consumes
// them in commit order to mirror the on-ledger state.
const (
	TopicSessionPairDeployed = "session-pair-deployed"
	TopicSessionPairLinked   = "session-pair-linked"
	TopicVoterRegistered     = "voter-registered"
	TopicHolderRegistered    = "holder-registered"
	TopicVoteCast            = "encrypted-vote-cast"
	TopicShareSubmitted      = "decryption-share-submitted"
	TopicValueSubmitted      = "decryption-value-submitted"
	TopicThresholdReached    = "decryption-threshold-reached"
	TopicRewardsCalculated   = "rewards-calculated"
	TopicRewardClaimed       = "reward-claimed"
	TopicDepositClaimed      = "deposit-claimed"
	TopicSessionAborted      = "session-aborted"
)

// Event is one entry of the public append-only log. Index is assigned by the
// ledger at append time and defines the commit order.
type Event struct {
	Index   uint64
	When    int64 // ledger timestamp at append time
	Topic   string
	Session uint32 // session id the event belongs to, 0 for none
	User    uint32 // acting account, 0 for none
	Amount  uint64 // value moved, 0 for none
	Content []byte // topic-specific payload
}
