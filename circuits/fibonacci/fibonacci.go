// Package fibonacci implements an arity-2 step circuit producing a
// linear recurrence: each new element is the sum of the two preceding
// ones. It is the reference non-trivial step circuit of this repository.
package fibonacci

import (
	"fmt"

	"github.com/PolyhedraZK/PlonkishIVC/plonkish"
	"github.com/PolyhedraZK/PlonkishIVC/step"
)

// Circuit advances the sequence by Rows-2 elements per fold. The region
// materializes Rows cells in one advice column: the two seed rows are
// copy-constrained to z_in, the recurrence gate is enforced on rows
// 2..Rows-1, and the last two cells are the step's output.
type Circuit struct {
	rows int
}

// New returns a circuit materializing rows cells per fold.
func New(rows int) *Circuit {
	if rows < 3 {
		panic(fmt.Sprintf("fibonacci circuit needs at least 3 rows, got %d", rows))
	}
	return &Circuit{rows: rows}
}

// Config holds the column and selector allocated by Configure.
type Config struct {
	Advice plonkish.Column
	Sel    plonkish.Selector
}

func (c *Circuit) Arity() int { return 2 }

// Configure allocates one equality-enabled advice column and the
// recurrence gate s * (a(-2) + a(-1) - a(0)).
func (c *Circuit) Configure(cs *plonkish.ConstraintSystem) step.Config {
	advice := cs.AdviceColumn()
	cs.EnableEquality(advice)
	sel := cs.Selector()
	cs.CreateGate("fibonacci", sel, func(v *plonkish.VirtualCells) plonkish.Expression {
		a := v.Query(advice, -2)
		b := v.Query(advice, -1)
		out := v.Query(advice, 0)
		return v.Sub(v.Add(a, b), out)
	})
	return Config{Advice: advice, Sel: sel}
}

func (c *Circuit) SynthesizeStep(cfg step.Config, l *plonkish.Layouter, zIn []plonkish.AssignedCell) ([]plonkish.AssignedCell, error) {
	conf, ok := cfg.(Config)
	if !ok {
		return nil, fmt.Errorf("unexpected config type %T", cfg)
	}
	var zOut []plonkish.AssignedCell
	err := l.AssignRegion("fibonacci", func(r *plonkish.Region) error {
		engine := r.Engine()

		// seed rows are tied to the step input by copy constraints; the
		// gate cannot fire there, rows 0 and 1 lack the queried history
		prev2, err := r.AssignAdvice("seed 0", conf.Advice, 0, zIn[0].Value())
		if err != nil {
			return err
		}
		if err := r.ConstrainEqual(prev2, zIn[0]); err != nil {
			return err
		}
		prev1, err := r.AssignAdvice("seed 1", conf.Advice, 1, zIn[1].Value())
		if err != nil {
			return err
		}
		if err := r.ConstrainEqual(prev1, zIn[1]); err != nil {
			return err
		}

		for row := 2; row < c.rows; row++ {
			next, err := r.AssignAdvice("next", conf.Advice, row, engine.Add(prev2.Value(), prev1.Value()))
			if err != nil {
				return err
			}
			if err := conf.Sel.Enable(r, row); err != nil {
				return err
			}
			prev2, prev1 = prev1, next
		}
		zOut = []plonkish.AssignedCell{prev2, prev1}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return zOut, nil
}
