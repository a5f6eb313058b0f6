// Package ledger is the single-node stand-in for the execution environment
// the voting protocol runs on: per-account balances, one escrow pool per
// session and a public append-only event log, all persisted in bolt. The
// real ledger serializes every state-mutating call; here the callers
// (the service) do the same with a mutex, so each operation below runs to
// completion atomically inside one bolt transaction.
package ledger

import (
	"encoding/binary"
	"errors"
	"sync"

	"go.dedis.ch/onet/v3"
	"go.dedis.ch/protobuf"
	bbolt "go.etcd.io/bbolt"
)

var bucketLedger = []byte("timevoteledger")

var (
	subAccounts = []byte("accounts")
	subEscrow   = []byte("escrow")
	subEvents   = []byte("events")
)

// ErrInsufficientBalance is returned when a debit exceeds the account.
var ErrInsufficientBalance = errors.New("insufficient balance")

// Ledger holds balances, escrow pools and the event log.
type Ledger struct {
	sync.Mutex
	db     *bbolt.DB
	bucket []byte
}

// New wraps an existing bolt bucket. The bucket must already exist.
func New(db *bbolt.DB, bucket []byte) *Ledger {
	return &Ledger{db: db, bucket: bucket}
}

// NewFromContext creates the ledger storage inside the service database.
func NewFromContext(c *onet.Context) *Ledger {
	db, name := c.GetAdditionalBucket(bucketLedger)
	return New(db, name)
}

func (l *Ledger) sub(tx *bbolt.Tx, name []byte) (*bbolt.Bucket, error) {
	b := tx.Bucket(l.bucket)
	if b == nil {
		return nil, errors.New("ledger bucket missing")
	}
	return b.CreateBucketIfNotExists(name)
}

// view runs fn on a sub-bucket read-only; a bucket that was never written to
// reads as empty.
func (l *Ledger) view(name []byte, fn func(*bbolt.Bucket) error) error {
	return l.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(l.bucket)
		if b == nil {
			return errors.New("ledger bucket missing")
		}
		sb := b.Bucket(name)
		if sb == nil {
			return nil
		}
		return fn(sb)
	})
}

func userKey(user uint32) []byte {
	k := make([]byte, 4)
	binary.BigEndian.PutUint32(k, user)
	return k
}

func getAmount(b *bbolt.Bucket, key []byte) uint64 {
	v := b.Get(key)
	if len(v) != 8 {
		return 0
	}
	return binary.LittleEndian.Uint64(v)
}

func putAmount(b *bbolt.Bucket, key []byte, amount uint64) error {
	v := make([]byte, 8)
	binary.LittleEndian.PutUint64(v, amount)
	return b.Put(key, v)
}

// Mint credits an account out of thin air. The real ledger funds accounts
// externally; tests and the bootstrap path use this.
func (l *Ledger) Mint(user uint32, amount uint64) error {
	l.Lock()
	defer l.Unlock()
	return l.db.Update(func(tx *bbolt.Tx) error {
		accounts, err := l.sub(tx, subAccounts)
		if err != nil {
			return err
		}
		sum, err := safeAdd(getAmount(accounts, userKey(user)), amount)
		if err != nil {
			return err
		}
		return putAmount(accounts, userKey(user), sum)
	})
}

// Balance returns the spendable amount of an account.
func (l *Ledger) Balance(user uint32) (amount uint64, err error) {
	err = l.view(subAccounts, func(b *bbolt.Bucket) error {
		amount = getAmount(b, userKey(user))
		return nil
	})
	return
}

// Escrow returns the escrowed amount of a session.
func (l *Ledger) Escrow(session uint32) (amount uint64, err error) {
	err = l.view(subEscrow, func(b *bbolt.Bucket) error {
		amount = getAmount(b, userKey(session))
		return nil
	})
	return
}

// EscrowIn moves value from an account into a session's escrow pool. This is
// the escrow-in half of the atomic value transfer primitive.
func (l *Ledger) EscrowIn(session, user uint32, amount uint64) error {
	l.Lock()
	defer l.Unlock()
	return l.db.Update(func(tx *bbolt.Tx) error {
		accounts, err := l.sub(tx, subAccounts)
		if err != nil {
			return err
		}
		escrow, err := l.sub(tx, subEscrow)
		if err != nil {
			return err
		}
		balance := getAmount(accounts, userKey(user))
		if balance < amount {
			return ErrInsufficientBalance
		}
		pool, err := safeAdd(getAmount(escrow, userKey(session)), amount)
		if err != nil {
			return err
		}
		if err := putAmount(accounts, userKey(user), balance-amount); err != nil {
			return err
		}
		return putAmount(escrow, userKey(session), pool)
	})
}

// PayOut moves value from a session's escrow pool back to an account. Only
// the protocol's claim paths call this, and only after the corresponding
// bookkeeping has been checkpointed.
func (l *Ledger) PayOut(session, user uint32, amount uint64) error {
	l.Lock()
	defer l.Unlock()
	return l.db.Update(func(tx *bbolt.Tx) error {
		accounts, err := l.sub(tx, subAccounts)
		if err != nil {
			return err
		}
		escrow, err := l.sub(tx, subEscrow)
		if err != nil {
			return err
		}
		pool := getAmount(escrow, userKey(session))
		if pool < amount {
			return errors.New("escrow underflow")
		}
		sum, err := safeAdd(getAmount(accounts, userKey(user)), amount)
		if err != nil {
			return err
		}
		if err := putAmount(escrow, userKey(session), pool-amount); err != nil {
			return err
		}
		return putAmount(accounts, userKey(user), sum)
	})
}

// Append adds an event to the log and assigns its commit index.
func (l *Ledger) Append(ev *Event) error {
	l.Lock()
	defer l.Unlock()
	return l.db.Update(func(tx *bbolt.Tx) error {
		events, err := l.sub(tx, subEvents)
		if err != nil {
			return err
		}
		seq, err := events.NextSequence()
		if err != nil {
			return err
		}
		ev.Index = seq
		buf, err := protobuf.Encode(ev)
		if err != nil {
			return err
		}
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)
		return events.Put(key, buf)
	})
}

// Events returns the log in commit order. A session id of 0 selects every
// event, otherwise only the ones of that session.
func (l *Ledger) Events(session uint32) ([]Event, error) {
	var out []Event
	err := l.view(subEvents, func(events *bbolt.Bucket) error {
		return events.ForEach(func(k, v []byte) error {
			var ev Event
			if err := protobuf.Decode(v, &ev); err != nil {
				return err
			}
			if session == 0 || ev.Session == session {
				out = append(out, ev)
			}
			return nil
		})
	})
	return out, err
}

func safeAdd(a, b uint64) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, errors.New("value overflow")
	}
	return sum, nil
}
