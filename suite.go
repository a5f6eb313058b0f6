package timevote

import (
	"go.dedis.ch/kyber/v3/pairing"
	"go.dedis.ch/kyber/v3/suites"
)

// Suite is the Ed25519 suite used for account keys and request signatures.
var Suite = suites.MustFind("Ed25519")

// BLSSuite is the bn256 pairing suite; holder public keys must be valid G2
// points of this suite.
var BLSSuite = pairing.NewSuiteBn256()
