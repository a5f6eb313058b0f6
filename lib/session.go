package lib

import (
	"errors"
	"fmt"

	"go.dedis.ch/onet/v3/network"
)

func init() {
	network.RegisterMessages(Session{})
}

// Errors returned by the session operations.
var (
	ErrVotingClosed     = errors.New("voting not open")
	ErrSharesClosed     = errors.New("share collection not open")
	ErrAlreadyVoted     = errors.New("already voted")
	ErrNotRegistered    = errors.New("not registered for this session")
	ErrNotHolder        = errors.New("not an active holder")
	ErrParamsSet        = errors.New("decryption parameters already set")
	ErrParamsNotSet     = errors.New("decryption parameters not set")
	ErrValueSubmitted   = errors.New("decryption value already submitted")
	ErrRewardsTriggered = errors.New("reward calculation already triggered")
	ErrSharesNotEnded   = errors.New("share collection not ended")
	ErrSessionCompleted = errors.New("session already completed")
	ErrSessionAborted   = errors.New("session already aborted")
)

// Session owns the phase state machine, the encrypted votes, the decryption
// material and the threshold-reached signal for one voting session. The
// status is never stored: it is recomputed from the ledger time on every
// access, so a session moves through its phases without any scheduler.
type Session struct {
	ID          uint32
	Handle      Handle
	Registry    Handle // handle of the linked registry, nil until linked
	Creator     uint32
	Title       string
	Description string
	Metadata    string // opaque, may encode display hints for the frontend
	Options     []string

	Start     int64 // unix timestamps, Start < End < SharesEnd
	End       int64
	SharesEnd int64

	RequiredDeposit   uint64
	MinShareThreshold int

	Halted bool // set once by Abort, terminal

	Votes  []*EncryptedVote
	Shares []*DecryptionShare

	DecryptionThreshold int
	DecryptionAlphas    [][]byte
	ParamsSet           bool

	Values           []*DecryptionValue
	ThresholdReached bool
	RewardsTriggered bool
}

// PhaseAt computes the session status for a given ledger time. Aborted is
// sticky; everything else is purely a function of the configured deadlines.
func (s *Session) PhaseAt(now int64) Phase {
	if s.Halted {
		return Aborted
	}
	switch {
	case now < s.Start:
		return RegistrationOpen
	case now < s.End:
		return VotingOpen
	case now < s.SharesEnd:
		return SharesCollectionOpen
	}
	return Completed
}

// Cast appends an encrypted vote. The caller must be registered with the
// linked registry (voter or holder), voting must be open, and the caller must
// not have voted before. The attached share seeds and threshold must be
// consistent with the current holder set.
func (s *Session) Cast(r *Registry, now int64, user uint32, vote *EncryptedVote) error {
	if err := r.linked(s); err != nil {
		return err
	}
	if s.PhaseAt(now) != VotingOpen {
		return ErrVotingClosed
	}
	if !r.IsRegistered(user) {
		return ErrNotRegistered
	}
	holders := r.HolderCount()
	if len(vote.HolderAlphas) != holders {
		return fmt.Errorf("expected %d share seeds, got %d", holders, len(vote.HolderAlphas))
	}
	if vote.Threshold < 2 || vote.Threshold > holders {
		return fmt.Errorf("threshold %d out of range for %d holders", vote.Threshold, holders)
	}
	if err := r.markVoted(user); err != nil {
		return err
	}
	vote.Voter = user
	s.Votes = append(s.Votes, vote)
	return nil
}

// SubmitShares stores a batch of decryption shares for the calling holder and
// records the submission with the registry. The three slices are parallel.
// The registry flag is holder-scoped, so a holder gets exactly one submission
// call for all the votes it decrypts.
func (s *Session) SubmitShares(r *Registry, now int64, user uint32,
	voteIndices []int, shareIndices []int, data [][]byte) error {

	if err := r.linked(s); err != nil {
		return err
	}
	if s.PhaseAt(now) != SharesCollectionOpen {
		return ErrSharesClosed
	}
	if !r.IsHolder(user) {
		return ErrNotHolder
	}
	p := r.Participants[user]
	if p.SharesSubmitted {
		return ErrSharesRecorded
	}
	if len(voteIndices) == 0 ||
		len(voteIndices) != len(shareIndices) || len(voteIndices) != len(data) {
		return errors.New("share batch arrays must be non-empty and of equal length")
	}
	for _, vi := range voteIndices {
		if vi < 0 || vi >= len(s.Votes) {
			return fmt.Errorf("vote index %d out of range", vi)
		}
	}
	for i := range voteIndices {
		s.Shares = append(s.Shares, &DecryptionShare{
			VoteIndex:  voteIndices[i],
			Holder:     user,
			ShareIndex: shareIndices[i],
			Data:       data[i],
		})
	}
	return r.recordShareSubmission(user)
}

// SetDecryptionParameters stores the threshold and the per-holder public
// coefficients used by the reconstruction primitive. Owner-only, callable
// exactly once, and only after share collection has begun.
func (s *Session) SetDecryptionParameters(r *Registry, now int64, user uint32,
	alphas [][]byte, threshold int) error {

	if err := r.linked(s); err != nil {
		return err
	}
	if user != s.Creator {
		return ErrNotAdmin
	}
	if s.ParamsSet {
		return ErrParamsSet
	}
	phase := s.PhaseAt(now)
	if phase != SharesCollectionOpen && phase != Completed {
		return errors.New("share collection not started")
	}
	if len(alphas) != r.HolderCount() {
		return fmt.Errorf("expected %d alphas, got %d", r.HolderCount(), len(alphas))
	}
	if threshold < 2 || threshold > len(alphas) {
		return fmt.Errorf("threshold %d out of range for %d holders", threshold, len(alphas))
	}
	s.DecryptionAlphas = alphas
	s.DecryptionThreshold = threshold
	s.ParamsSet = true
	return nil
}

// SubmitDecryptionValue appends a reconstruction contribution from a holder
// that has submitted its shares. The returned flag is true exactly once, on
// the submission that makes the count reach the decryption threshold.
// Submissions beyond the threshold are accepted and stored.
func (s *Session) SubmitDecryptionValue(r *Registry, now int64, user uint32, value []byte) (bool, error) {
	if err := r.linked(s); err != nil {
		return false, err
	}
	phase := s.PhaseAt(now)
	if phase != SharesCollectionOpen && phase != Completed {
		return false, ErrSharesClosed
	}
	if !s.ParamsSet {
		return false, ErrParamsNotSet
	}
	if !r.IsHolder(user) {
		return false, ErrNotHolder
	}
	p := r.Participants[user]
	if !p.SharesSubmitted {
		return false, ErrSharesNotSubmitted
	}
	for _, v := range s.Values {
		if v.Submitter == user {
			return false, ErrValueSubmitted
		}
	}
	s.Values = append(s.Values, &DecryptionValue{
		Submitter:   user,
		HolderIndex: p.Index,
		Value:       value,
	})
	if !s.ThresholdReached && len(s.Values) == s.DecryptionThreshold {
		s.ThresholdReached = true
		return true, nil
	}
	return false, nil
}

// SubmittedValues returns the revealed view of the submission list: the first
// DecryptionThreshold entries once the threshold has been reached, and
// whatever has accumulated so far otherwise.
func (s *Session) SubmittedValues() []*DecryptionValue {
	if s.ThresholdReached {
		return s.Values[:s.DecryptionThreshold]
	}
	return s.Values
}

// TriggerRewardCalculation instructs the registry to compute the payout
// table. Owner-only, requires share collection to have ended, and succeeds at
// most once. The total pool is returned for the rewards-calculated event.
func (s *Session) TriggerRewardCalculation(r *Registry, now int64, user uint32) (uint64, error) {
	if err := r.linked(s); err != nil {
		return 0, err
	}
	if user != s.Creator {
		return 0, ErrNotAdmin
	}
	if s.RewardsTriggered {
		return 0, ErrRewardsTriggered
	}
	if s.PhaseAt(now) != Completed {
		return 0, ErrSharesNotEnded
	}
	pool, err := r.calculateRewards()
	if err != nil {
		return 0, err
	}
	s.RewardsTriggered = true
	return pool, nil
}

// Abort moves the session to its terminal administrative sink. Allowed from
// any phase before Completed.
func (s *Session) Abort(now int64, user uint32) error {
	if user != s.Creator {
		return ErrNotAdmin
	}
	if s.Halted {
		return ErrSessionAborted
	}
	if s.PhaseAt(now) == Completed {
		return ErrSessionCompleted
	}
	s.Halted = true
	return nil
}

// HasShare checks whether the given holder already decrypted the given vote.
func (s *Session) HasShare(voteIndex int, holder uint32) bool {
	for _, sh := range s.Shares {
		if sh.VoteIndex == voteIndex && sh.Holder == holder {
			return true
		}
	}
	return false
}

// IsCreator checks if a given account owns the session.
func (s *Session) IsCreator(user uint32) bool {
	return user == s.Creator
}
