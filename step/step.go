// Package step defines the authoring contract for a reusable unit of
// computation expressed as a constraint system, and the trivial identity
// circuit used as a placeholder on the companion side of the folding
// driver.
package step

import (
	"github.com/PolyhedraZK/PlonkishIVC/plonkish"
)

// Config is the opaque configuration a circuit returns from Configure.
// Each circuit type defines its own concrete config and asserts it back
// in SynthesizeStep.
type Config interface{}

// Circuit is one repeatable step of computation. Configure is called
// exactly once per circuit type and declares columns, selectors and
// gates; SynthesizeStep is called once per fold and maps an input vector
// of Arity cells to an output vector of the same width.
type Circuit interface {
	// Arity is the number of field elements consumed and produced per fold.
	Arity() int

	// Configure declares the circuit's columns and gates. It must not
	// depend on witness data.
	Configure(cs *plonkish.ConstraintSystem) Config

	// SynthesizeStep assigns the witness for one application of the step
	// relation. The first Arity cells it derives must be tied to zIn via
	// copy constraints, not re-derivation, and the returned vector holds
	// the step's outputs. Errors are fatal for the fold.
	SynthesizeStep(cfg Config, l *plonkish.Layouter, zIn []plonkish.AssignedCell) ([]plonkish.AssignedCell, error)
}
