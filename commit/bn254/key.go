// Package bn254 implements the commitment key backend for the bn254
// curve, the primary side of the cycle.
package bn254

import (
	"fmt"
	"io"
	"math/big"
	"runtime"

	"github.com/consensys/gnark-crypto/ecc"
	curve "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"golang.org/x/sync/errgroup"

	"github.com/PolyhedraZK/PlonkishIVC/commit"
	"github.com/PolyhedraZK/PlonkishIVC/field"
	// register the matching scalar field engine
	_ "github.com/PolyhedraZK/PlonkishIVC/field/bn254"
)

// CurveName is the registry key of this backend.
const CurveName = "bn254"

func init() {
	commit.RegisterBackend(backend{})
}

type backend struct{}

func (backend) CurveName() string { return CurveName }

// Setup generates a key of 2^logSize points. Generation cost scales
// with the size parameter, which is why keys are cached on disk.
func (backend) Setup(logSize int) (commit.Key, error) {
	if logSize <= 0 || logSize > 27 {
		return nil, fmt.Errorf("invalid key size parameter %d", logSize)
	}
	n := 1 << logSize
	points := make([]curve.G1Affine, n)
	_, _, g, _ := curve.Generators()

	var eg errgroup.Group
	nbTasks := runtime.NumCPU()
	chunk := (n + nbTasks - 1) / nbTasks
	for start := 0; start < n; start += chunk {
		start := start
		end := min(start+chunk, n)
		eg.Go(func() error {
			var s fr.Element
			var bi big.Int
			for i := start; i < end; i++ {
				if _, err := s.SetRandom(); err != nil {
					return err
				}
				points[i].ScalarMultiplication(&g, s.BigInt(&bi))
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return &Key{points: points, logSize: logSize}, nil
}

// ReadKey deserializes a key's point stream. The data is trusted as-is.
func (backend) ReadKey(r io.Reader, logSize int) (commit.Key, error) {
	dec := curve.NewDecoder(r, curve.NoSubgroupChecks())
	var points []curve.G1Affine
	if err := dec.Decode(&points); err != nil {
		return nil, fmt.Errorf("decode key points: %w", err)
	}
	if len(points) != 1<<logSize {
		return nil, fmt.Errorf("key holds %d points, want %d", len(points), 1<<logSize)
	}
	return &Key{points: points, logSize: logSize}, nil
}

// Key is a Pedersen-style vector commitment key over bn254.
type Key struct {
	points  []curve.G1Affine
	logSize int
}

func (k *Key) CurveName() string { return CurveName }
func (k *Key) LogSize() int      { return k.logSize }
func (k *Key) Len() int          { return len(k.points) }

func (k *Key) Commit(values []field.Element) (commit.Commitment, error) {
	if len(values) > len(k.points) {
		return nil, fmt.Errorf("%w: %d values, key covers %d", commit.ErrKeyTooSmall, len(values), len(k.points))
	}
	var acc curve.G1Affine
	if len(values) > 0 {
		scalars := make([]fr.Element, len(values))
		for i, v := range values {
			scalars[i] = fr.Element(v)
		}
		var p curve.G1Jac
		if _, err := p.MultiExp(k.points[:len(values)], scalars, ecc.MultiExpConfig{}); err != nil {
			return nil, err
		}
		acc.FromJacobian(&p)
	}
	b := acc.Bytes()
	return b[:], nil
}

func (k *Key) Fold(acc, c commit.Commitment, r field.Element) (commit.Commitment, error) {
	var pa, pc curve.G1Affine
	if _, err := pa.SetBytes(acc); err != nil {
		return nil, fmt.Errorf("decode accumulated commitment: %w", err)
	}
	if _, err := pc.SetBytes(c); err != nil {
		return nil, fmt.Errorf("decode commitment: %w", err)
	}
	s := fr.Element(r)
	var bi big.Int
	var res curve.G1Affine
	res.ScalarMultiplication(&pc, s.BigInt(&bi))
	res.Add(&res, &pa)
	b := res.Bytes()
	return b[:], nil
}

func (k *Key) Validate(c commit.Commitment) error {
	var p curve.G1Affine
	if _, err := p.SetBytes(c); err != nil {
		return fmt.Errorf("malformed commitment: %w", err)
	}
	return nil
}

func (k *Key) WriteTo(w io.Writer) (int64, error) {
	enc := curve.NewEncoder(w)
	if err := enc.Encode(k.points); err != nil {
		return enc.BytesWritten(), err
	}
	return enc.BytesWritten(), nil
}
