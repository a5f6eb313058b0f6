package lib

import (
	"errors"
	"fmt"

	"go.dedis.ch/onet/v3/network"
)

func init() {
	network.RegisterMessages(Factory{}, Pair{})
}

// Pair records the canonical handles of one deployed session pair.
type Pair struct {
	ID       uint32
	Registry Handle
	Session  Handle
}

// Factory allocates session pairs. Every call to Create yields a fresh
// registry and session instance with the next sequential id; the two are
// deliberately not cross-linked, that is a separate administrative step.
type Factory struct {
	NextID uint32
	Pairs  []*Pair
}

// NewFactory returns an empty factory; ids start at 1.
func NewFactory() *Factory {
	return &Factory{NextID: 1}
}

// Create deploys a new session pair. The deadlines must be strictly ordered,
// at least two options are required and the share threshold must be at least
// two.
func (f *Factory) Create(creator uint32, title, description string,
	start, end, sharesEnd int64, options []string, metadata string,
	requiredDeposit uint64, minShareThreshold int) (*Pair, *Session, *Registry, error) {

	if !(start < end && end < sharesEnd) {
		return nil, nil, nil, errors.New("deadlines must satisfy start < end < sharesEnd")
	}
	if len(options) < 2 {
		return nil, nil, nil, errors.New("at least 2 options required")
	}
	if minShareThreshold < 2 {
		return nil, nil, nil, errors.New("share threshold must be at least 2")
	}

	session := &Session{
		ID:                f.NextID,
		Handle:            NewHandle(),
		Creator:           creator,
		Title:             title,
		Description:       description,
		Metadata:          metadata,
		Options:           options,
		Start:             start,
		End:               end,
		SharesEnd:         sharesEnd,
		RequiredDeposit:   requiredDeposit,
		MinShareThreshold: minShareThreshold,
	}
	registry := NewRegistry(f.NextID, creator, requiredDeposit)

	pair := &Pair{
		ID:       f.NextID,
		Registry: registry.Handle,
		Session:  session.Handle,
	}
	f.Pairs = append(f.Pairs, pair)
	f.NextID++
	return pair, session, registry, nil
}

// Link performs the one-time administrative cross-registration of a session
// pair. Until it has run, every registry operation that consults session
// state fails closed.
func Link(user uint32, r *Registry, s *Session) error {
	if user != s.Creator || user != r.Admin {
		return ErrNotAdmin
	}
	if r.SessionID != s.ID {
		return fmt.Errorf("registry belongs to session %d, not %d", r.SessionID, s.ID)
	}
	if !r.Session.IsNull() || !s.Registry.IsNull() {
		return errors.New("session pair already linked")
	}
	r.Session = s.Handle
	s.Registry = r.Handle
	return nil
}

// Count returns the number of deployed session pairs.
func (f *Factory) Count() int {
	return len(f.Pairs)
}

// ByIndex returns the i-th deployed pair in creation order.
func (f *Factory) ByIndex(i int) (*Pair, error) {
	if i < 0 || i >= len(f.Pairs) {
		return nil, fmt.Errorf("pair index %d out of range", i)
	}
	return f.Pairs[i], nil
}

// ByID returns the pair with the given session id.
func (f *Factory) ByID(id uint32) (*Pair, error) {
	if id == 0 || id >= f.NextID {
		return nil, fmt.Errorf("no session pair with id %d", id)
	}
	return f.Pairs[id-1], nil
}

// SessionHandle returns the session handle for the given id.
func (f *Factory) SessionHandle(id uint32) (Handle, error) {
	p, err := f.ByID(id)
	if err != nil {
		return nil, err
	}
	return p.Session, nil
}

// RegistryHandle returns the registry handle for the given id.
func (f *Factory) RegistryHandle(id uint32) (Handle, error) {
	p, err := f.ByID(id)
	if err != nil {
		return nil, err
	}
	return p.Registry, nil
}
