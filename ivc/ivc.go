package ivc

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"math/big"

	fiatshamir "github.com/consensys/gnark-crypto/fiat-shamir"

	"github.com/PolyhedraZK/PlonkishIVC/commit"
	"github.com/PolyhedraZK/PlonkishIVC/field"
	"github.com/PolyhedraZK/PlonkishIVC/logger"
	"github.com/PolyhedraZK/PlonkishIVC/plonkish"
	"github.com/PolyhedraZK/PlonkishIVC/step"
)

// ErrVerificationFailed is returned by Verify when the accumulated state
// does not attest to an honest fold history.
var ErrVerificationFailed = errors.New("ivc verification failed")

// sideState is the accumulator of one circuit side. accErr collects a
// randomized compression of every fold's gate evaluations and copy
// differences: it stays zero across honest folds and becomes nonzero
// with overwhelming probability as soon as one fold cheats. accCommit
// is the running homomorphic fold of the witness commitments, digest
// the running transcript binding the fold history.
type sideState struct {
	z0        []field.Element
	zi        []field.Element
	accErr    field.Element
	accCommit commit.Commitment
	digest    [32]byte
}

// IVC drives repeated application of a primary and a secondary step
// circuit. Folds are strictly sequential: fold k+1 consumes fold k's
// output through the shared accumulator.
type IVC struct {
	folds      int
	checkSteps bool
	primary    sideState
	secondary  sideState
}

// New binds both circuits' starting input vectors and builds the initial
// accumulator. No fold is performed yet.
//
// When checkSteps is set, every fold additionally checks its own
// assignment for satisfaction and fails immediately instead of deferring
// the failure to Verify. This is a debugging aid; the accumulated state
// catches the same dishonesty either way.
func New(
	pp *PublicParams,
	primary step.Circuit,
	z0Primary []field.Element,
	secondary step.Circuit,
	z0Secondary []field.Element,
	checkSteps bool,
) (*IVC, error) {
	p, err := newSideState(&pp.primary, primary, z0Primary)
	if err != nil {
		return nil, fmt.Errorf("primary: %w", err)
	}
	s, err := newSideState(&pp.secondary, secondary, z0Secondary)
	if err != nil {
		return nil, fmt.Errorf("secondary: %w", err)
	}
	return &IVC{checkSteps: checkSteps, primary: p, secondary: s}, nil
}

func newSideState(params *circuitParams, circuit step.Circuit, z0 []field.Element) (sideState, error) {
	if len(z0) != circuit.Arity() {
		return sideState{}, fmt.Errorf("z0 holds %d elements, circuit arity is %d", len(z0), circuit.Arity())
	}
	// the empty commitment anchors the homomorphic accumulation
	empty, err := params.key.Commit(nil)
	if err != nil {
		return sideState{}, err
	}
	h := sha256.New()
	h.Write(params.digest[:])
	for _, v := range z0 {
		h.Write(params.engine.Bytes(v))
	}
	var digest [32]byte
	copy(digest[:], h.Sum(nil))

	zi := make([]field.Element, len(z0))
	copy(zi, z0)
	return sideState{
		z0:        append([]field.Element(nil), z0...),
		zi:        zi,
		accCommit: empty,
		digest:    digest,
	}, nil
}

// NumFolds returns the number of successful FoldStep calls so far.
func (ivc *IVC) NumFolds() int { return ivc.folds }

// PrimaryOutput returns the primary circuit's latest output vector.
func (ivc *IVC) PrimaryOutput() []field.Element {
	return append([]field.Element(nil), ivc.primary.zi...)
}

// SecondaryOutput returns the secondary circuit's latest output vector.
func (ivc *IVC) SecondaryOutput() []field.Element {
	return append([]field.Element(nil), ivc.secondary.zi...)
}

// FoldStep performs exactly one application of each circuit against the
// accumulator's latest outputs and folds the resulting witnesses into
// the accumulated state. Failures are fatal for the run; there is no
// partial or retry semantics.
func (ivc *IVC) FoldStep(pp *PublicParams, primary step.Circuit, secondary step.Circuit) error {
	log := logger.Logger().With().Int("fold", ivc.folds+1).Logger()

	if err := ivc.foldSide(&pp.primary, primary, &ivc.primary); err != nil {
		return fmt.Errorf("primary: %w", err)
	}
	if err := ivc.foldSide(&pp.secondary, secondary, &ivc.secondary); err != nil {
		return fmt.Errorf("secondary: %w", err)
	}
	ivc.folds++
	log.Debug().Msg("fold step complete")
	return nil
}

func (ivc *IVC) foldSide(params *circuitParams, circuit step.Circuit, state *sideState) error {
	asg := plonkish.NewAssignment(params.cs)
	l := plonkish.NewLayouter(asg)

	// assign the step's input vector into the driver's io column; the
	// circuit ties its seed cells to these by copy constraints
	zIn := make([]plonkish.AssignedCell, len(state.zi))
	err := l.AssignRegion("step io", func(r *plonkish.Region) error {
		for j, v := range state.zi {
			cell, err := r.AssignAdvice("z_i", params.io, j, v)
			if err != nil {
				return err
			}
			zIn[j] = cell
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("assign step input: %w", err)
	}

	zOut, err := circuit.SynthesizeStep(params.cfg, l, zIn)
	if err != nil {
		return fmt.Errorf("synthesize step: %w", err)
	}
	if len(zOut) != circuit.Arity() {
		return fmt.Errorf("step returned %d cells, circuit arity is %d", len(zOut), circuit.Arity())
	}
	if ivc.checkSteps {
		if err := plonkish.Satisfied(asg); err != nil {
			return fmt.Errorf("step assignment unsatisfied: %w", err)
		}
	}

	c, err := params.key.Commit(asg.AdviceVector())
	if err != nil {
		return err
	}

	evals, err := plonkish.GateEvaluations(asg)
	if err != nil {
		return fmt.Errorf("evaluate gates: %w", err)
	}
	diffs := plonkish.CopyDiffs(asg)

	// derive the compression and folding challenges from everything the
	// fold depends on: the running digest and the fresh commitment
	fs := fiatshamir.NewTranscript(sha256.New(), "alpha", "r")
	if err := fs.Bind("alpha", state.digest[:]); err != nil {
		return err
	}
	if err := fs.Bind("alpha", c); err != nil {
		return err
	}
	alpha, err := deriveChallenge(fs, "alpha", params.engine)
	if err != nil {
		return err
	}

	// Horner-compress the evaluation vector into one scalar; honest
	// folds contribute zero
	var e field.Element
	for i := len(diffs) - 1; i >= 0; i-- {
		e = params.engine.Add(params.engine.Mul(e, alpha), diffs[i])
	}
	for i := len(evals) - 1; i >= 0; i-- {
		e = params.engine.Add(params.engine.Mul(e, alpha), evals[i])
	}

	if err := fs.Bind("r", params.engine.Bytes(e)); err != nil {
		return err
	}
	r, err := deriveChallenge(fs, "r", params.engine)
	if err != nil {
		return err
	}

	folded, err := params.key.Fold(state.accCommit, c, r)
	if err != nil {
		return fmt.Errorf("fold commitment: %w", err)
	}

	state.accErr = params.engine.Add(state.accErr, params.engine.Mul(r, e))
	state.accCommit = folded

	h := sha256.New()
	h.Write(state.digest[:])
	h.Write(params.engine.Bytes(r))
	h.Write(c)
	for j := range zOut {
		h.Write(params.engine.Bytes(zOut[j].Value()))
	}
	copy(state.digest[:], h.Sum(nil))

	zi := make([]field.Element, len(zOut))
	for j := range zOut {
		zi[j] = zOut[j].Value()
	}
	state.zi = zi
	return nil
}

// Verify checks the accumulated state against the public parameters. It
// succeeds iff every prior fold applied its circuit's relation honestly;
// this single check, not per-fold validation, is what covers the whole
// folded history.
func (ivc *IVC) Verify(pp *PublicParams) error {
	if err := verifySide(&pp.primary, &ivc.primary); err != nil {
		return fmt.Errorf("%w: primary: %s", ErrVerificationFailed, err)
	}
	if err := verifySide(&pp.secondary, &ivc.secondary); err != nil {
		return fmt.Errorf("%w: secondary: %s", ErrVerificationFailed, err)
	}
	log := logger.Logger()
	log.Debug().Int("folds", ivc.folds).Msg("ivc verified")
	return nil
}

func verifySide(params *circuitParams, state *sideState) error {
	if !state.accErr.IsZero() {
		return fmt.Errorf("accumulated constraint error is nonzero: %s", params.engine.String(state.accErr))
	}
	if err := params.key.Validate(state.accCommit); err != nil {
		return err
	}
	return nil
}

func deriveChallenge(fs *fiatshamir.Transcript, name string, engine field.Field) (field.Element, error) {
	b, err := fs.ComputeChallenge(name)
	if err != nil {
		return field.Element{}, err
	}
	return engine.FromInterface(new(big.Int).SetBytes(b)), nil
}
