package lib

import (
	"errors"

	"go.dedis.ch/onet/v3/network"
)

func init() {
	network.RegisterMessages(Registry{}, Participant{})
}

// Errors returned by the registry operations. Every precondition failure
// rejects the whole call; there is no partial application.
var (
	ErrNotLinked          = errors.New("registry and session not linked")
	ErrAlreadyRegistered  = errors.New("already registered")
	ErrRegistrationClosed = errors.New("registration not open")
	ErrIncorrectDeposit   = errors.New("incorrect deposit")
	ErrSharesRecorded     = errors.New("shares already recorded")
	ErrRewardsCalculated  = errors.New("rewards already calculated")
	ErrNoEligibleHolders  = errors.New("no eligible holders")
	ErrNothingOwed        = errors.New("no reward owed or calculation pending")
	ErrRewardClaimed      = errors.New("reward already claimed")
	ErrSharesNotSubmitted = errors.New("shares not submitted")
	ErrDepositClaimed     = errors.New("deposit already claimed")
	ErrNotAdmin           = errors.New("operation only allowed for the session owner")
)

// Participant is the registry's record for one account in one session.
// The index is assigned at registration and addresses holders positionally
// in the cryptographic material.
type Participant struct {
	User            uint32
	Index           int
	Holder          bool
	BLSPublicKey    string // hex encoded G2 point, holders only
	Deposit         uint64
	Voted           bool
	SharesSubmitted bool
	DepositClaimed  bool
	RewardClaimed   bool
	RewardOwed      uint64
}

// Registry owns participant membership, deposits, share bookkeeping and the
// reward pool for one session. It is the peer of a Session instance; the two
// are created independently by the factory and cross-linked by the owner
// afterwards. Before the link is established every operation that consults
// session state fails closed.
type Registry struct {
	SessionID       uint32
	Handle          Handle
	Session         Handle // handle of the linked session, nil until linked
	Admin           uint32
	RequiredDeposit uint64

	Participants map[uint32]*Participant
	NextIndex    int

	ExternalFunding   uint64
	TotalRewardPool   uint64
	RewardsCalculated bool
}

// NewRegistry creates the registry half of a session pair.
func NewRegistry(sessionID uint32, admin uint32, requiredDeposit uint64) *Registry {
	return &Registry{
		SessionID:       sessionID,
		Handle:          NewHandle(),
		Admin:           admin,
		RequiredDeposit: requiredDeposit,
		Participants:    make(map[uint32]*Participant),
	}
}

// linked verifies that the given session is the one this registry has been
// cross-linked with.
func (r *Registry) linked(s *Session) error {
	if s == nil || r.Session.IsNull() || s.Registry.IsNull() {
		return ErrNotLinked
	}
	if !r.Session.Equal(s.Handle) || !s.Registry.Equal(r.Handle) {
		return ErrNotLinked
	}
	return nil
}

// register creates the participant record shared by voters and holders.
func (r *Registry) register(s *Session, now int64, user uint32) (*Participant, error) {
	if err := r.linked(s); err != nil {
		return nil, err
	}
	if s.PhaseAt(now) != RegistrationOpen {
		return nil, ErrRegistrationClosed
	}
	if _, ok := r.Participants[user]; ok {
		return nil, ErrAlreadyRegistered
	}
	p := &Participant{User: user, Index: r.NextIndex}
	r.NextIndex++
	r.Participants[user] = p
	return p, nil
}

// RegisterVoter registers the caller as a plain voter, without deposit
// obligation.
func (r *Registry) RegisterVoter(s *Session, now int64, user uint32) (*Participant, error) {
	return r.register(s, now, user)
}

// JoinHolder registers the caller as a holder. The attached value must match
// the required deposit exactly; the caller's key must be a valid G2 point.
func (r *Registry) JoinHolder(s *Session, now int64, user uint32, pub string, value uint64) (*Participant, error) {
	if err := ValidateHolderKey(pub); err != nil {
		return nil, err
	}
	if value != r.RequiredDeposit {
		return nil, ErrIncorrectDeposit
	}
	p, err := r.register(s, now, user)
	if err != nil {
		return nil, err
	}
	p.Holder = true
	p.BLSPublicKey = pub
	p.Deposit = value
	return p, nil
}

// recordShareSubmission flips the holder-scoped submission flag. Only the
// linked session calls this, from SubmitShares. The flag is per holder, not
// per vote: one successful submission call covers every vote the holder
// decrypts.
func (r *Registry) recordShareSubmission(user uint32) error {
	p, ok := r.Participants[user]
	if !ok || !p.Holder {
		return ErrNotHolder
	}
	if p.SharesSubmitted {
		return ErrSharesRecorded
	}
	p.SharesSubmitted = true
	return nil
}

// markVoted flips the per-session voted flag. Only the linked session calls
// this, from Cast.
func (r *Registry) markVoted(user uint32) error {
	p, ok := r.Participants[user]
	if !ok {
		return ErrNotRegistered
	}
	if p.Voted {
		return ErrAlreadyVoted
	}
	p.Voted = true
	return nil
}

// AddRewardFunding adds owner-supplied value to the reward pool accumulator.
// It fails once the rewards have been calculated, and an aborted session
// accepts no further value: its rewards can never be calculated, so funding
// added after the abort could never leave the escrow.
func (r *Registry) AddRewardFunding(s *Session, user uint32, amount uint64) error {
	if err := r.linked(s); err != nil {
		return err
	}
	if user != r.Admin {
		return ErrNotAdmin
	}
	if s.Halted {
		return ErrSessionAborted
	}
	if r.RewardsCalculated {
		return ErrRewardsCalculated
	}
	sum, err := safeAdd(r.ExternalFunding, amount)
	if err != nil {
		return err
	}
	r.ExternalFunding = sum
	return nil
}

// calculateRewards computes the payout table exactly once: the deposits of
// holders that never submitted shares are forfeited into the pool together
// with the external funding, and the pool is split by integer division among
// the holders that did submit. The division remainder stays in the session
// escrow. Only the linked session calls this, from TriggerRewardCalculation.
func (r *Registry) calculateRewards() (uint64, error) {
	if r.RewardsCalculated {
		return 0, ErrRewardsCalculated
	}
	var forfeited uint64
	var eligible []*Participant
	for _, p := range r.Participants {
		if !p.Holder {
			continue
		}
		if p.SharesSubmitted {
			eligible = append(eligible, p)
		} else {
			sum, err := safeAdd(forfeited, p.Deposit)
			if err != nil {
				return 0, err
			}
			forfeited = sum
		}
	}
	if len(eligible) == 0 {
		return 0, ErrNoEligibleHolders
	}
	pool, err := safeAdd(forfeited, r.ExternalFunding)
	if err != nil {
		return 0, err
	}
	owed := pool / uint64(len(eligible))
	for _, p := range eligible {
		p.RewardOwed = owed
	}
	r.TotalRewardPool = pool
	r.RewardsCalculated = true
	return pool, nil
}

// ClaimReward checks the caller out of the reward table and returns the
// amount to pay. The owed amount is zeroed and the claimed flag set before
// any value moves; callers must transfer only what this returns.
func (r *Registry) ClaimReward(user uint32) (uint64, error) {
	p, ok := r.Participants[user]
	if !ok {
		return 0, ErrNotRegistered
	}
	if p.RewardClaimed {
		return 0, ErrRewardClaimed
	}
	if p.RewardOwed == 0 {
		return 0, ErrNothingOwed
	}
	amount := p.RewardOwed
	p.RewardOwed = 0
	p.RewardClaimed = true
	return amount, nil
}

// ClaimDeposit returns the caller's escrowed deposit. Only holders that
// submitted their shares may reclaim; the deposit of the others has been
// forfeited to the reward pool.
func (r *Registry) ClaimDeposit(user uint32) (uint64, error) {
	p, ok := r.Participants[user]
	if !ok {
		return 0, ErrNotRegistered
	}
	if !p.SharesSubmitted {
		return 0, ErrSharesNotSubmitted
	}
	if p.DepositClaimed {
		return 0, ErrDepositClaimed
	}
	amount := p.Deposit
	p.Deposit = 0
	p.DepositClaimed = true
	return amount, nil
}

// IsRegistered checks membership for voters and holders alike.
func (r *Registry) IsRegistered(user uint32) bool {
	_, ok := r.Participants[user]
	return ok
}

// IsHolder checks whether the given account joined as a holder.
func (r *Registry) IsHolder(user uint32) bool {
	p, ok := r.Participants[user]
	return ok && p.Holder
}

// HolderCount returns the number of active holders.
func (r *Registry) HolderCount() int {
	n := 0
	for _, p := range r.Participants {
		if p.Holder {
			n++
		}
	}
	return n
}

// ParticipantInfo returns the record for the given account.
func (r *Registry) ParticipantInfo(user uint32) (*Participant, error) {
	p, ok := r.Participants[user]
	if !ok {
		return nil, ErrNotRegistered
	}
	return p, nil
}

// safeAdd adds two amounts and errors on overflow.
func safeAdd(a, b uint64) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, errors.New("value overflow")
	}
	return sum, nil
}
