package plonkish

import (
	"fmt"

	"github.com/PolyhedraZK/PlonkishIVC/field"
)

// Satisfied checks every gate at every row its selector is active on,
// and every recorded copy constraint. It returns nil iff the assignment
// satisfies the configuration it was built against.
func Satisfied(asg *Assignment) error {
	evals, err := GateEvaluations(asg)
	if err != nil {
		return err
	}
	idx := 0
	cs := asg.cs
	for gi := range cs.gates {
		g := &cs.gates[gi]
		for row := 0; row < cs.Capacity(); row++ {
			if !asg.enabled[g.selector.index][row] {
				continue
			}
			if !evals[idx].IsZero() {
				return fmt.Errorf("gate %q unsatisfied at row %d: %s", g.name, row, asg.engine.String(evals[idx]))
			}
			idx++
		}
	}
	for _, d := range CopyDiffs(asg) {
		if !d.IsZero() {
			return fmt.Errorf("copy constraint unsatisfied: cells differ by %s", asg.engine.String(d))
		}
	}
	return nil
}

// GateEvaluations evaluates every gate polynomial at every active row,
// in gate order then ascending row order. An honest assignment yields
// the all-zero vector; the folding driver compresses this vector into
// its accumulated error term.
func GateEvaluations(asg *Assignment) ([]field.Element, error) {
	cs := asg.cs
	var res []field.Element
	values := make([]field.Element, 0, 8)
	for gi := range cs.gates {
		g := &cs.gates[gi]
		for row := 0; row < cs.Capacity(); row++ {
			if !asg.enabled[g.selector.index][row] {
				continue
			}
			values = values[:0]
			for _, q := range g.queries {
				at := row + int(q.Rotation)
				if at < 0 || at >= cs.Capacity() {
					return nil, fmt.Errorf("%w: gate %q row %d", ErrRotationOutOfRange, g.name, row)
				}
				if !asg.assigned[q.Column.index][at] {
					return nil, fmt.Errorf("%w: gate %q column %d row %d", ErrCellNotAssigned, g.name, q.Column.index, at)
				}
				values = append(values, asg.advice[q.Column.index][at])
			}
			res = append(res, g.poly.eval(asg.engine, values))
		}
	}
	return res, nil
}

// CopyDiffs returns the value difference of every recorded copy
// constraint, in recording order. All-zero iff every equality holds.
func CopyDiffs(asg *Assignment) []field.Element {
	res := make([]field.Element, len(asg.copies))
	for i, pair := range asg.copies {
		res[i] = asg.engine.Sub(asg.cells[pair[0]].value, asg.cells[pair[1]].value)
	}
	return res
}
