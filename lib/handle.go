package lib

import (
	"bytes"
	"encoding/hex"

	"go.dedis.ch/kyber/v3/util/random"
)

// HandleLength is the byte length of component handles.
const HandleLength = 32

// Handle addresses a single deployed component (registry or session) on the
// ledger. It plays the role of a contract address: the factory allocates one
// per instance and records it for lookup.
type Handle []byte

// NewHandle draws a fresh random handle.
func NewHandle() Handle {
	h := make([]byte, HandleLength)
	random.Bytes(h, random.New())
	return h
}

// Equal compares two handles for byte equality.
func (h Handle) Equal(other Handle) bool {
	return bytes.Equal(h, other)
}

// IsNull returns true if the handle is unset.
func (h Handle) IsNull() bool {
	return len(h) == 0
}

// Short returns the first 8 hex characters of the handle.
func (h Handle) Short() string {
	if h.IsNull() {
		return "nil"
	}
	return hex.EncodeToString(h[:4])
}

func (h Handle) String() string {
	return hex.EncodeToString(h)
}
