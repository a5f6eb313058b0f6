package lib

import (
	"encoding/hex"
	"errors"

	"go.dedis.ch/kyber/v3/pairing"
	"go.dedis.ch/kyber/v3/util/random"
)

var blsSuite = pairing.NewSuiteBn256()

// ValidateHolderKey checks that a hex string decodes to a valid G2 point of
// the bn256 suite. Holders must register with such a key so the decryption
// primitive can address them.
func ValidateHolderKey(pub string) error {
	buf, err := hex.DecodeString(pub)
	if err != nil {
		return errors.New("holder key is not valid hex: " + err.Error())
	}
	point := blsSuite.G2().Point()
	if err := point.UnmarshalBinary(buf); err != nil {
		return errors.New("holder key is not a valid G2 point: " + err.Error())
	}
	return nil
}

// RandomHolderKey generates a fresh hex encoded G2 point. Real holders bring
// their own key from the distributed key generation; this helper serves the
// command line tool and the tests.
func RandomHolderKey() string {
	point := blsSuite.G2().Point().Mul(blsSuite.G2().Scalar().Pick(random.New()), nil)
	buf, _ := point.MarshalBinary()
	return hex.EncodeToString(buf)
}
