// Package service implements the timevote protocol logic: the session
// lifecycle state machine, the threshold-decryption coordination and the
// deposit/reward economics, running on a single-node stand-in for the
// execution ledger. Every state-mutating handler runs to completion under
// one mutex, mirroring the strict total order a real ledger would impose.
package service

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"go.dedis.ch/kyber/v3"
	"go.dedis.ch/kyber/v3/sign/schnorr"
	"go.dedis.ch/kyber/v3/util/random"
	"go.dedis.ch/onet/v3"
	"go.dedis.ch/onet/v3/log"
	"go.dedis.ch/onet/v3/network"
	"go.dedis.ch/protobuf"

	timevote "go.dedis.ch/timevote"
	"go.dedis.ch/timevote/ledger"
	"go.dedis.ch/timevote/lib"
)

func init() {
	network.RegisterMessages(storage{})
	serviceID, _ = onet.RegisterNewService(timevote.ServiceName, new)
}

// serviceID is the onet identifier.
var serviceID onet.ServiceID

// storageKey identifies the on-disk storage.
var storageKey = []byte("storage")
var dbVersion = 1

var (
	errInvalidPin = errors.New("invalid pin")
	errNotLinked  = errors.New("service not linked")
	errInvalidSig = errors.New("invalid signature")
	errNotAdmin   = errors.New("user is not an administrator")
	errNoSession  = errors.New("no such session")
)

// Service is the core structure of the application.
type Service struct {
	*onet.ServiceProcessor

	mutex   sync.Mutex
	storage *storage
	ledger  *ledger.Ledger

	// now supplies the ledger timestamp; tests substitute it.
	now func() int64

	pin string // pin is the current service number.
}

// storage saves the authentication material and every session pair on disk.
type storage struct {
	Master  lib.Handle
	AuthKey kyber.Point
	Admins  []uint32

	Factory    *lib.Factory
	Sessions   map[uint32]*lib.Session
	Registries map[uint32]*lib.Registry
}

// Ping message handler.
func (s *Service) Ping(req *timevote.Ping) (*timevote.Ping, error) {
	return &timevote.Ping{Nonce: req.Nonce + 1}, nil
}

// Link message handler. Sets the front-end authentication key and the
// administrator list; returns the master handle that every signed request
// authenticates against.
func (s *Service) Link(req *timevote.Link) (*timevote.LinkReply, error) {
	if req.Pin != s.pin {
		return nil, errInvalidPin
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.storage.Master.IsNull() {
		s.storage.Master = lib.NewHandle()
	}
	s.storage.AuthKey = req.Key
	s.storage.Admins = req.Admins
	s.save()
	return &timevote.LinkReply{Master: s.storage.Master}, nil
}

// Mint message handler. Credits an account on the single-node ledger; real
// deployments fund accounts on the external ledger instead.
func (s *Service) Mint(req *timevote.Mint) (*timevote.MintReply, error) {
	if req.Pin != s.pin {
		return nil, errInvalidPin
	}
	if err := s.ledger.Mint(req.User, req.Amount); err != nil {
		return nil, err
	}
	balance, err := s.ledger.Balance(req.User)
	if err != nil {
		return nil, err
	}
	return &timevote.MintReply{Balance: balance}, nil
}

// auth verifies the schnorr signature of a request against the front-end
// key. Fails closed while the service is not linked.
func (s *Service) auth(user uint32, sig []byte) error {
	if s.storage.AuthKey == nil {
		return errNotLinked
	}
	msg := timevote.AuthMessage(s.storage.Master, user)
	if err := schnorr.Verify(timevote.Suite, s.storage.AuthKey, msg, sig); err != nil {
		return errInvalidSig
	}
	return nil
}

func (s *Service) isAdmin(user uint32) bool {
	for _, admin := range s.storage.Admins {
		if admin == user {
			return true
		}
	}
	return false
}

// pair returns both halves of a session pair.
func (s *Service) pair(id uint32) (*lib.Session, *lib.Registry, error) {
	session, ok := s.storage.Sessions[id]
	if !ok {
		return nil, nil, errNoSession
	}
	registry, ok := s.storage.Registries[id]
	if !ok {
		return nil, nil, errNoSession
	}
	return session, registry, nil
}

// CreateSessionPair message handler. Deploys a fresh registry and session
// instance; the two are not yet cross-linked.
func (s *Service) CreateSessionPair(req *timevote.CreateSessionPair) (*timevote.CreateSessionPairReply, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := s.auth(req.User, req.Signature); err != nil {
		return nil, err
	}
	if !s.isAdmin(req.User) {
		return nil, errNotAdmin
	}

	pair, session, registry, err := s.storage.Factory.Create(req.User,
		req.Title, req.Description, req.Start, req.End, req.SharesEnd,
		req.Options, req.Metadata, req.RequiredDeposit, req.MinShareThreshold)
	if err != nil {
		return nil, err
	}
	s.storage.Sessions[pair.ID] = session
	s.storage.Registries[pair.ID] = registry
	s.save()

	s.append(&ledger.Event{
		Topic:   ledger.TopicSessionPairDeployed,
		Session: pair.ID,
		User:    req.User,
		Content: append(append([]byte{}, pair.Registry...), pair.Session...),
	})
	log.Lvlf2("deployed session pair %d (registry %s, session %s)",
		pair.ID, pair.Registry.Short(), pair.Session.Short())

	return &timevote.CreateSessionPairReply{
		ID:       pair.ID,
		Registry: pair.Registry,
		Session:  pair.Session,
	}, nil
}

// LinkSession message handler. One-time administrative cross-registration of
// the two instances of a pair; owner-only.
func (s *Service) LinkSession(req *timevote.LinkSession) (*timevote.LinkSessionReply, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := s.auth(req.User, req.Signature); err != nil {
		return nil, err
	}
	session, registry, err := s.pair(req.ID)
	if err != nil {
		return nil, err
	}
	if err := lib.Link(req.User, registry, session); err != nil {
		return nil, err
	}
	s.save()

	s.append(&ledger.Event{
		Topic:   ledger.TopicSessionPairLinked,
		Session: req.ID,
		User:    req.User,
	})
	return &timevote.LinkSessionReply{}, nil
}

// RegisterVoter message handler.
func (s *Service) RegisterVoter(req *timevote.RegisterVoter) (*timevote.RegisterVoterReply, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := s.auth(req.User, req.Signature); err != nil {
		return nil, err
	}
	session, registry, err := s.pair(req.ID)
	if err != nil {
		return nil, err
	}
	p, err := registry.RegisterVoter(session, s.now(), req.User)
	if err != nil {
		return nil, err
	}
	s.save()

	s.append(&ledger.Event{
		Topic:   ledger.TopicVoterRegistered,
		Session: req.ID,
		User:    req.User,
	})
	return &timevote.RegisterVoterReply{Index: p.Index}, nil
}

// JoinHolder message handler. The deposit is escrowed before the membership
// is recorded; if the registration is rejected the escrow is paid back in
// the same serialized call.
func (s *Service) JoinHolder(req *timevote.JoinHolder) (*timevote.JoinHolderReply, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := s.auth(req.User, req.Signature); err != nil {
		return nil, err
	}
	session, registry, err := s.pair(req.ID)
	if err != nil {
		return nil, err
	}
	if err := s.ledger.EscrowIn(req.ID, req.User, req.Deposit); err != nil {
		return nil, err
	}
	p, err := registry.JoinHolder(session, s.now(), req.User, req.BLSPublicKey, req.Deposit)
	if err != nil {
		if payErr := s.ledger.PayOut(req.ID, req.User, req.Deposit); payErr != nil {
			log.Error("escrow refund failed:", payErr)
		}
		return nil, err
	}
	s.save()

	s.append(&ledger.Event{
		Topic:   ledger.TopicHolderRegistered,
		Session: req.ID,
		User:    req.User,
		Amount:  req.Deposit,
		Content: []byte(req.BLSPublicKey),
	})
	return &timevote.JoinHolderReply{Index: p.Index}, nil
}

// CastVote message handler.
func (s *Service) CastVote(req *timevote.CastVote) (*timevote.CastVoteReply, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := s.auth(req.User, req.Signature); err != nil {
		return nil, err
	}
	session, registry, err := s.pair(req.ID)
	if err != nil {
		return nil, err
	}
	vote := &lib.EncryptedVote{
		Ciphertext:   req.Ciphertext,
		G1R:          req.G1R,
		G2R:          req.G2R,
		HolderAlphas: req.HolderAlphas,
		Threshold:    req.Threshold,
	}
	if err := session.Cast(registry, s.now(), req.User, vote); err != nil {
		return nil, err
	}
	s.save()

	index := len(session.Votes) - 1
	content := make([]byte, 4)
	binary.LittleEndian.PutUint32(content, uint32(index))
	s.append(&ledger.Event{
		Topic:   ledger.TopicVoteCast,
		Session: req.ID,
		User:    req.User,
		Content: content,
	})
	return &timevote.CastVoteReply{VoteIndex: index}, nil
}

// SubmitShares message handler. One event is emitted per stored share.
func (s *Service) SubmitShares(req *timevote.SubmitShares) (*timevote.SubmitSharesReply, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := s.auth(req.User, req.Signature); err != nil {
		return nil, err
	}
	session, registry, err := s.pair(req.ID)
	if err != nil {
		return nil, err
	}
	err = session.SubmitShares(registry, s.now(), req.User,
		req.VoteIndices, req.ShareIndices, req.Shares)
	if err != nil {
		return nil, err
	}
	s.save()

	for i := range req.VoteIndices {
		buf, err := protobuf.Encode(&lib.DecryptionShare{
			VoteIndex:  req.VoteIndices[i],
			Holder:     req.User,
			ShareIndex: req.ShareIndices[i],
			Data:       req.Shares[i],
		})
		if err != nil {
			log.Error("share event encoding:", err)
			continue
		}
		s.append(&ledger.Event{
			Topic:   ledger.TopicShareSubmitted,
			Session: req.ID,
			User:    req.User,
			Content: buf,
		})
	}
	return &timevote.SubmitSharesReply{}, nil
}

// SetDecryptionParameters message handler.
func (s *Service) SetDecryptionParameters(req *timevote.SetDecryptionParameters) (*timevote.SetDecryptionParametersReply, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := s.auth(req.User, req.Signature); err != nil {
		return nil, err
	}
	session, registry, err := s.pair(req.ID)
	if err != nil {
		return nil, err
	}
	err = session.SetDecryptionParameters(registry, s.now(), req.User, req.Alphas, req.Threshold)
	if err != nil {
		return nil, err
	}
	s.save()
	return &timevote.SetDecryptionParametersReply{}, nil
}

// SubmitDecryptionValue message handler. Emits the threshold-reached event
// exactly once, on the submission whose post-count equals the threshold.
func (s *Service) SubmitDecryptionValue(req *timevote.SubmitDecryptionValue) (*timevote.SubmitDecryptionValueReply, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := s.auth(req.User, req.Signature); err != nil {
		return nil, err
	}
	session, registry, err := s.pair(req.ID)
	if err != nil {
		return nil, err
	}
	reached, err := session.SubmitDecryptionValue(registry, s.now(), req.User, req.Value)
	if err != nil {
		return nil, err
	}
	s.save()

	value := session.Values[len(session.Values)-1]
	buf, encErr := protobuf.Encode(value)
	if encErr != nil {
		log.Error("value event encoding:", encErr)
	}
	s.append(&ledger.Event{
		Topic:   ledger.TopicValueSubmitted,
		Session: req.ID,
		User:    req.User,
		Content: buf,
	})
	if reached {
		s.append(&ledger.Event{
			Topic:   ledger.TopicThresholdReached,
			Session: req.ID,
		})
		log.Lvl2("decryption threshold reached for session", req.ID)
	}
	return &timevote.SubmitDecryptionValueReply{ThresholdReached: reached}, nil
}

// AddRewardFunding message handler. Owner-only; the attached value is
// escrowed first and paid back if the registry rejects the funding.
func (s *Service) AddRewardFunding(req *timevote.AddRewardFunding) (*timevote.AddRewardFundingReply, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := s.auth(req.User, req.Signature); err != nil {
		return nil, err
	}
	session, registry, err := s.pair(req.ID)
	if err != nil {
		return nil, err
	}
	if err := s.ledger.EscrowIn(req.ID, req.User, req.Amount); err != nil {
		return nil, err
	}
	if err := registry.AddRewardFunding(session, req.User, req.Amount); err != nil {
		if payErr := s.ledger.PayOut(req.ID, req.User, req.Amount); payErr != nil {
			log.Error("escrow refund failed:", payErr)
		}
		return nil, err
	}
	s.save()
	return &timevote.AddRewardFundingReply{}, nil
}

// TriggerRewardCalculation message handler.
func (s *Service) TriggerRewardCalculation(req *timevote.TriggerRewardCalculation) (*timevote.TriggerRewardCalculationReply, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := s.auth(req.User, req.Signature); err != nil {
		return nil, err
	}
	session, registry, err := s.pair(req.ID)
	if err != nil {
		return nil, err
	}
	pool, err := session.TriggerRewardCalculation(registry, s.now(), req.User)
	if err != nil {
		return nil, err
	}
	s.save()

	s.append(&ledger.Event{
		Topic:   ledger.TopicRewardsCalculated,
		Session: req.ID,
		User:    req.User,
		Amount:  pool,
	})
	return &timevote.TriggerRewardCalculationReply{TotalPool: pool}, nil
}

// ClaimReward message handler. The owed amount is zeroed and saved strictly
// before the value leaves the escrow.
func (s *Service) ClaimReward(req *timevote.ClaimReward) (*timevote.ClaimRewardReply, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := s.auth(req.User, req.Signature); err != nil {
		return nil, err
	}
	_, registry, err := s.pair(req.ID)
	if err != nil {
		return nil, err
	}
	amount, err := registry.ClaimReward(req.User)
	if err != nil {
		return nil, err
	}
	s.save()

	if err := s.ledger.PayOut(req.ID, req.User, amount); err != nil {
		log.Errorf("reward of %d for user %d in session %d stranded: claim checkpointed but payout failed: %v",
			amount, req.User, req.ID, err)
		return nil, err
	}
	s.append(&ledger.Event{
		Topic:   ledger.TopicRewardClaimed,
		Session: req.ID,
		User:    req.User,
		Amount:  amount,
	})
	return &timevote.ClaimRewardReply{Amount: amount}, nil
}

// ClaimDeposit message handler. Same checkpoint-before-payout ordering as
// ClaimReward.
func (s *Service) ClaimDeposit(req *timevote.ClaimDeposit) (*timevote.ClaimDepositReply, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := s.auth(req.User, req.Signature); err != nil {
		return nil, err
	}
	_, registry, err := s.pair(req.ID)
	if err != nil {
		return nil, err
	}
	amount, err := registry.ClaimDeposit(req.User)
	if err != nil {
		return nil, err
	}
	s.save()

	if err := s.ledger.PayOut(req.ID, req.User, amount); err != nil {
		log.Errorf("deposit of %d for user %d in session %d stranded: claim checkpointed but payout failed: %v",
			amount, req.User, req.ID, err)
		return nil, err
	}
	s.append(&ledger.Event{
		Topic:   ledger.TopicDepositClaimed,
		Session: req.ID,
		User:    req.User,
		Amount:  amount,
	})
	return &timevote.ClaimDepositReply{Amount: amount}, nil
}

// AbortSession message handler.
func (s *Service) AbortSession(req *timevote.AbortSession) (*timevote.AbortSessionReply, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := s.auth(req.User, req.Signature); err != nil {
		return nil, err
	}
	session, _, err := s.pair(req.ID)
	if err != nil {
		return nil, err
	}
	if err := session.Abort(s.now(), req.User); err != nil {
		return nil, err
	}
	s.save()

	s.append(&ledger.Event{
		Topic:   ledger.TopicSessionAborted,
		Session: req.ID,
		User:    req.User,
	})
	return &timevote.AbortSessionReply{}, nil
}

// UpdateSessionStatus message handler. Callable by anyone; the status is a
// pure function of the ledger time, so there is nothing to write.
func (s *Service) UpdateSessionStatus(req *timevote.UpdateSessionStatus) (*timevote.UpdateSessionStatusReply, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	session, _, err := s.pair(req.ID)
	if err != nil {
		return nil, err
	}
	return &timevote.UpdateSessionStatusReply{Status: session.PhaseAt(s.now())}, nil
}

// GetSessionInfo message handler.
func (s *Service) GetSessionInfo(req *timevote.GetSessionInfo) (*timevote.GetSessionInfoReply, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	session, _, err := s.pair(req.ID)
	if err != nil {
		return nil, err
	}
	return &timevote.GetSessionInfoReply{
		Session: session,
		Status:  session.PhaseAt(s.now()),
	}, nil
}

// GetVotes message handler.
func (s *Service) GetVotes(req *timevote.GetVotes) (*timevote.GetVotesReply, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	session, _, err := s.pair(req.ID)
	if err != nil {
		return nil, err
	}
	return &timevote.GetVotesReply{Votes: session.Votes}, nil
}

// GetShares message handler.
func (s *Service) GetShares(req *timevote.GetShares) (*timevote.GetSharesReply, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	session, _, err := s.pair(req.ID)
	if err != nil {
		return nil, err
	}
	return &timevote.GetSharesReply{Shares: session.Shares}, nil
}

// GetParticipantInfo message handler.
func (s *Service) GetParticipantInfo(req *timevote.GetParticipantInfo) (*timevote.GetParticipantInfoReply, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	_, registry, err := s.pair(req.ID)
	if err != nil {
		return nil, err
	}
	p, err := registry.ParticipantInfo(req.User)
	if err != nil {
		return nil, err
	}
	return &timevote.GetParticipantInfoReply{Participant: p}, nil
}

// GetDecryptionParameters message handler.
func (s *Service) GetDecryptionParameters(req *timevote.GetDecryptionParameters) (*timevote.GetDecryptionParametersReply, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	session, _, err := s.pair(req.ID)
	if err != nil {
		return nil, err
	}
	return &timevote.GetDecryptionParametersReply{
		Alphas:    session.DecryptionAlphas,
		Threshold: session.DecryptionThreshold,
		Set:       session.ParamsSet,
	}, nil
}

// GetSubmittedValues message handler. Returns parallel arrays of submitter,
// holder index and value, capped at the threshold once it has been reached.
func (s *Service) GetSubmittedValues(req *timevote.GetSubmittedValues) (*timevote.GetSubmittedValuesReply, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	session, _, err := s.pair(req.ID)
	if err != nil {
		return nil, err
	}
	values := session.SubmittedValues()
	reply := &timevote.GetSubmittedValuesReply{
		ThresholdReached: session.ThresholdReached,
	}
	for _, v := range values {
		reply.Submitters = append(reply.Submitters, v.Submitter)
		reply.HolderIndices = append(reply.HolderIndices, v.HolderIndex)
		reply.Values = append(reply.Values, v.Value)
	}
	return reply, nil
}

// GetTotalRewardPool message handler.
func (s *Service) GetTotalRewardPool(req *timevote.GetTotalRewardPool) (*timevote.GetTotalRewardPoolReply, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	_, registry, err := s.pair(req.ID)
	if err != nil {
		return nil, err
	}
	return &timevote.GetTotalRewardPoolReply{
		Pool:       registry.TotalRewardPool,
		Calculated: registry.RewardsCalculated,
	}, nil
}

// GetSessionCount message handler.
func (s *Service) GetSessionCount(req *timevote.GetSessionCount) (*timevote.GetSessionCountReply, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return &timevote.GetSessionCountReply{Count: s.storage.Factory.Count()}, nil
}

// GetSessionHandles message handler.
func (s *Service) GetSessionHandles(req *timevote.GetSessionHandles) (*timevote.GetSessionHandlesReply, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	pair, err := s.storage.Factory.ByID(req.ID)
	if err != nil {
		return nil, err
	}
	return &timevote.GetSessionHandlesReply{
		Registry: pair.Registry,
		Session:  pair.Session,
	}, nil
}

// GetHandleByIndex message handler.
func (s *Service) GetHandleByIndex(req *timevote.GetHandleByIndex) (*timevote.GetHandleByIndexReply, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	pair, err := s.storage.Factory.ByIndex(req.Index)
	if err != nil {
		return nil, err
	}
	return &timevote.GetHandleByIndexReply{
		ID:       pair.ID,
		Registry: pair.Registry,
		Session:  pair.Session,
	}, nil
}

// GetEvents message handler.
func (s *Service) GetEvents(req *timevote.GetEvents) (*timevote.GetEventsReply, error) {
	events, err := s.ledger.Events(req.ID)
	if err != nil {
		return nil, err
	}
	return &timevote.GetEventsReply{Events: events}, nil
}

// GetBalance message handler.
func (s *Service) GetBalance(req *timevote.GetBalance) (*timevote.GetBalanceReply, error) {
	balance, err := s.ledger.Balance(req.User)
	if err != nil {
		return nil, err
	}
	return &timevote.GetBalanceReply{Balance: balance}, nil
}

// append writes an event with the current timestamp to the public log.
func (s *Service) append(ev *ledger.Event) {
	ev.When = s.now()
	if err := s.ledger.Append(ev); err != nil {
		log.Error("event append:", err)
	}
}

// save saves the storage onto the disk.
func (s *Service) save() {
	if err := s.Save(storageKey, s.storage); err != nil {
		log.Error(err)
	}
	if err := s.SaveVersion(dbVersion); err != nil {
		log.Error(err)
	}
}

// load fetches the storage from disk.
func (s *Service) load() error {
	blob, err := s.Load(storageKey)
	if err != nil {
		return err
	} else if blob == nil {
		return nil
	}

	var ok bool
	s.storage, ok = blob.(*storage)
	if !ok {
		return errors.New("service error: could not unmarshal storage")
	}
	if s.storage.Factory == nil {
		s.storage.Factory = lib.NewFactory()
	}
	if s.storage.Sessions == nil {
		s.storage.Sessions = make(map[uint32]*lib.Session)
	}
	if s.storage.Registries == nil {
		s.storage.Registries = make(map[uint32]*lib.Registry)
	}
	// The codec decodes an empty participant map as nil.
	for _, registry := range s.storage.Registries {
		if registry.Participants == nil {
			registry.Participants = make(map[uint32]*lib.Participant)
		}
	}
	return nil
}

// new initializes the service and registers all the message handlers.
func new(context *onet.Context) (onet.Service, error) {
	service := &Service{
		ServiceProcessor: onet.NewServiceProcessor(context),
		storage: &storage{
			Factory:    lib.NewFactory(),
			Sessions:   make(map[uint32]*lib.Session),
			Registries: make(map[uint32]*lib.Registry),
		},
		ledger: ledger.NewFromContext(context),
		now: func() int64 {
			return time.Now().Unix()
		},
	}

	err := service.RegisterHandlers(
		service.Ping,
		service.Link,
		service.Mint,
		service.CreateSessionPair,
		service.LinkSession,
		service.RegisterVoter,
		service.JoinHolder,
		service.CastVote,
		service.SubmitShares,
		service.SetDecryptionParameters,
		service.SubmitDecryptionValue,
		service.AddRewardFunding,
		service.TriggerRewardCalculation,
		service.ClaimReward,
		service.ClaimDeposit,
		service.AbortSession,
		service.UpdateSessionStatus,
		service.GetSessionInfo,
		service.GetVotes,
		service.GetShares,
		service.GetParticipantInfo,
		service.GetDecryptionParameters,
		service.GetSubmittedValues,
		service.GetTotalRewardPool,
		service.GetSessionCount,
		service.GetSessionHandles,
		service.GetHandleByIndex,
		service.GetEvents,
		service.GetBalance,
	)
	if err != nil {
		return nil, err
	}

	pin := make([]byte, 16)
	random.Bytes(pin, random.New())
	service.pin = hex.EncodeToString(pin)

	if err := service.load(); err != nil {
		return nil, err
	}

	log.Lvl1("Pin:", service.pin)
	return service, nil
}
