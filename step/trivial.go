package step

import (
	"github.com/PolyhedraZK/PlonkishIVC/plonkish"
)

// Trivial is the identity step circuit: it returns its input unchanged
// and adds no columns, gates, or constraints. It serves as the companion
// circuit when the opposite side of the folding scheme carries no
// application logic of its own.
type Trivial struct {
	arity int
}

// NewTrivial returns an identity circuit of the given arity.
func NewTrivial(arity int) *Trivial {
	if arity <= 0 {
		panic("trivial circuit arity must be positive")
	}
	return &Trivial{arity: arity}
}

type trivialConfig struct{}

func (c *Trivial) Arity() int { return c.arity }

func (c *Trivial) Configure(_ *plonkish.ConstraintSystem) Config {
	return trivialConfig{}
}

func (c *Trivial) SynthesizeStep(_ Config, _ *plonkish.Layouter, zIn []plonkish.AssignedCell) ([]plonkish.AssignedCell, error) {
	zOut := make([]plonkish.AssignedCell, len(zIn))
	copy(zOut, zIn)
	return zOut, nil
}
