// Package ivc implements incrementally verifiable computation: public
// parameters derived from two configured step circuits, and the folding
// driver that applies them repeatedly while accumulating a state whose
// final verification covers every fold.
package ivc

import (
	"crypto/sha256"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/PolyhedraZK/PlonkishIVC/commit"
	"github.com/PolyhedraZK/PlonkishIVC/field"
	"github.com/PolyhedraZK/PlonkishIVC/plonkish"
	"github.com/PolyhedraZK/PlonkishIVC/step"
)

// circuitParams is one side's share of the public parameters: the
// configured constraint system, the driver-owned io column the step's
// input vector is assigned to, the commitment key, and a digest binding
// all of it into the transcript.
type circuitParams struct {
	engine field.Field
	cs     *plonkish.ConstraintSystem
	cfg    step.Config
	io     plonkish.Column
	key    commit.Key
	digest [32]byte
}

// PublicParams is the immutable, shared configuration of a folding
// session. It is derived once and read by every fold and by Verify.
type PublicParams struct {
	primary   circuitParams
	secondary circuitParams
}

// NewDefaultPP derives public parameters from the two circuits and their
// commitment keys. The argument order (secondary table size first,
// primary table size between the primary pair and the secondary pair)
// is part of the established construction interface.
//
// Configuration runs exactly once per circuit here; every fold reuses
// the resulting configuration unchanged.
func NewDefaultPP(
	secondaryTableSize uint32,
	primaryKey commit.Key,
	primary step.Circuit,
	primaryTableSize uint32,
	secondaryKey commit.Key,
	secondary step.Circuit,
) (*PublicParams, error) {
	p, err := newCircuitParams(primary, int(primaryTableSize), primaryKey)
	if err != nil {
		return nil, fmt.Errorf("primary: %w", err)
	}
	s, err := newCircuitParams(secondary, int(secondaryTableSize), secondaryKey)
	if err != nil {
		return nil, fmt.Errorf("secondary: %w", err)
	}
	return &PublicParams{primary: p, secondary: s}, nil
}

func newCircuitParams(circuit step.Circuit, tableSize int, key commit.Key) (circuitParams, error) {
	engine := field.GetFieldByCurve(key.CurveName())
	cs := plonkish.NewConstraintSystem(engine, tableSize)

	// the io column is driver-owned: the step's input vector is assigned
	// there each fold and tied to the circuit's cells by copy constraints
	io := cs.AdviceColumn()
	cs.EnableEquality(io)

	cfg := circuit.Configure(cs)

	if need := cs.NumAdvice() << tableSize; need > key.Len() {
		return circuitParams{}, fmt.Errorf("%w: table needs %d, key covers %d", commit.ErrKeyTooSmall, need, key.Len())
	}

	digest, err := configDigest(key.CurveName(), cs)
	if err != nil {
		return circuitParams{}, fmt.Errorf("derive config digest: %w", err)
	}
	return circuitParams{
		engine: engine,
		cs:     cs,
		cfg:    cfg,
		io:     io,
		key:    key,
		digest: digest,
	}, nil
}

// PrimaryDigest returns the digest of the primary circuit's configuration.
func (pp *PublicParams) PrimaryDigest() [32]byte { return pp.primary.digest }

// SecondaryDigest returns the digest of the secondary circuit's configuration.
func (pp *PublicParams) SecondaryDigest() [32]byte { return pp.secondary.digest }

// serialized gate shape, part of the configuration digest
type gateSummary struct {
	Name     string   `cbor:"name"`
	Selector int      `cbor:"selector"`
	Queries  [][2]int `cbor:"queries"`
	Terms    [][]byte `cbor:"terms"`
}

type configSummary struct {
	Curve        string        `cbor:"curve"`
	TableSize    int           `cbor:"tableSize"`
	NumAdvice    int           `cbor:"numAdvice"`
	NumSelectors int           `cbor:"numSelectors"`
	Gates        []gateSummary `cbor:"gates"`
}

// configDigest hashes the structural shape of a configuration. Two
// circuits of the same type yield the same digest, which makes the
// digest a cheap idempotence check and a transcript binding at once.
func configDigest(curve string, cs *plonkish.ConstraintSystem) ([32]byte, error) {
	summary := configSummary{
		Curve:        curve,
		TableSize:    cs.K(),
		NumAdvice:    cs.NumAdvice(),
		NumSelectors: cs.NumSelectors(),
	}
	engine := cs.Engine()
	gates := cs.Gates()
	for gi := range gates {
		g := &gates[gi]
		gs := gateSummary{
			Name:     g.Name(),
			Selector: g.SelectorIndex(),
		}
		for _, q := range g.Queries() {
			gs.Queries = append(gs.Queries, [2]int{q.Column.Index(), int(q.Rotation)})
		}
		for _, t := range g.Poly() {
			buf := make([]byte, 0, 16+engine.SerializedLen())
			buf = append(buf, byte(t.QID0), byte(t.QID1))
			buf = append(buf, engine.Bytes(t.Coeff)...)
			gs.Terms = append(gs.Terms, buf)
		}
		summary.Gates = append(summary.Gates, gs)
	}
	data, err := cbor.Marshal(summary)
	if err != nil {
		return [32]byte{}, err
	}
	return sha256.Sum256(data), nil
}
