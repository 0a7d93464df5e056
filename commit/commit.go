// Package commit defines the vector commitment key consumed by the
// folding driver, a registry of per-curve backends, and a disk cache
// for generated keys.
package commit

import (
	"errors"
	"fmt"
	"io"

	"github.com/PolyhedraZK/PlonkishIVC/field"
)

// ErrKeyTooSmall signals that a key cannot cover the witness vector
// implied by a circuit's table size.
var ErrKeyTooSmall = errors.New("commitment key size insufficient")

// Commitment is an opaque commitment to a witness vector, the
// compressed-point encoding of the backend's curve.
type Commitment []byte

// Key is a generated commitment key. It is owned exclusively by the
// folding session that loaded it and only read after setup.
type Key interface {
	// CurveName identifies the backend the key belongs to.
	CurveName() string
	// LogSize is the size parameter the key was generated with.
	LogSize() int
	// Len is the maximum witness vector length the key can commit to.
	Len() int
	// Commit commits to a vector of at most Len scalars.
	Commit(values []field.Element) (Commitment, error)
	// Fold returns acc + r*c, the homomorphic accumulation used by the
	// folding driver.
	Fold(acc, c Commitment, r field.Element) (Commitment, error)
	// Validate checks that a commitment decodes to a curve point.
	Validate(c Commitment) error
	// WriteTo serializes the key's points.
	WriteTo(w io.Writer) (int64, error)
}

// Backend generates and deserializes keys for one curve.
type Backend interface {
	CurveName() string
	Setup(logSize int) (Key, error)
	ReadKey(r io.Reader, logSize int) (Key, error)
}

var backends = make(map[string]Backend)

// RegisterBackend makes a backend available under its curve name. It is
// called from the init function of each backend subpackage.
func RegisterBackend(b Backend) {
	if _, ok := backends[b.CurveName()]; ok {
		panic(fmt.Sprintf("commitment backend %q registered twice", b.CurveName()))
	}
	backends[b.CurveName()] = b
}

// GetBackend returns the backend for the named curve.
func GetBackend(curve string) (Backend, error) {
	b, ok := backends[curve]
	if !ok {
		return nil, fmt.Errorf("no commitment backend for curve %q", curve)
	}
	return b, nil
}
