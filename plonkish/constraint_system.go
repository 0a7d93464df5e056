// Package plonkish implements the column/row constraint model used to
// author step circuits: advice columns, per-row selectors, polynomial
// gates over rotated cell queries, and copy constraints between assigned
// cells. Configuration is a one-time pass on a ConstraintSystem; witness
// data lives in an Assignment and is laid out through a Layouter.
package plonkish

import (
	"fmt"

	"github.com/PolyhedraZK/PlonkishIVC/field"
)

// Column is a handle to an advice column, a per-row witness address space.
type Column struct {
	index int
}

// Index returns the position of the column in the grid.
func (c Column) Index() int { return c.index }

// Selector is a handle to a boolean-per-row column gating gate enforcement.
type Selector struct {
	index int
}

// Index returns the position of the selector.
func (s Selector) Index() int { return s.index }

// Rotation is a row offset relative to the row a selector fires on.
// Negative rotations reference prior rows.
type Rotation int

// Query references a cell relative to a gate's anchor row.
type Query struct {
	Column   Column
	Rotation Rotation
}

// Gate is a named polynomial constraint. For every row where its
// selector is active, the polynomial must evaluate to zero.
type Gate struct {
	name     string
	selector Selector
	queries  []Query
	poly     Expression
}

// Name returns the gate's name.
func (g *Gate) Name() string { return g.name }

// Queries returns the cell queries of the gate's polynomial.
func (g *Gate) Queries() []Query { return g.queries }

// SelectorIndex returns the index of the gate's selector.
func (g *Gate) SelectorIndex() int { return g.selector.index }

// Poly returns the gate's polynomial.
func (g *Gate) Poly() Expression { return g.poly }

// minRotation returns the most negative rotation queried by the gate,
// or 0 if none is negative.
func (g *Gate) minRotation() Rotation {
	min := Rotation(0)
	for _, q := range g.queries {
		if q.Rotation < min {
			min = q.Rotation
		}
	}
	return min
}

func (g *Gate) maxRotation() Rotation {
	max := Rotation(0)
	for _, q := range g.queries {
		if q.Rotation > max {
			max = q.Rotation
		}
	}
	return max
}

// ConstraintSystem accumulates column and gate declarations during the
// one-time configuration pass of a circuit. Misuse (referencing columns
// it did not allocate, exceeding the supported gate degree) is a logic
// error and panics; no witness data is involved at this stage.
type ConstraintSystem struct {
	engine field.Field
	k      int

	numAdvice    int
	numSelectors int
	equality     []bool
	gates        []Gate
}

// NewConstraintSystem returns an empty constraint system over the given
// engine with a table capacity of 2^k rows.
func NewConstraintSystem(engine field.Field, k int) *ConstraintSystem {
	if k <= 0 || k > 30 {
		panic(fmt.Sprintf("invalid table size parameter %d", k))
	}
	return &ConstraintSystem{engine: engine, k: k}
}

// Engine returns the field engine the system is defined over.
func (cs *ConstraintSystem) Engine() field.Field { return cs.engine }

// K returns the log2 of the table row capacity.
func (cs *ConstraintSystem) K() int { return cs.k }

// Capacity returns the table row capacity.
func (cs *ConstraintSystem) Capacity() int { return 1 << cs.k }

// NumAdvice returns the number of allocated advice columns.
func (cs *ConstraintSystem) NumAdvice() int { return cs.numAdvice }

// NumSelectors returns the number of allocated selectors.
func (cs *ConstraintSystem) NumSelectors() int { return cs.numSelectors }

// Gates returns the registered gates.
func (cs *ConstraintSystem) Gates() []Gate { return cs.gates }

// AdviceColumn allocates a new advice column.
func (cs *ConstraintSystem) AdviceColumn() Column {
	col := Column{index: cs.numAdvice}
	cs.numAdvice++
	cs.equality = append(cs.equality, false)
	return col
}

// Selector allocates a new selector.
func (cs *ConstraintSystem) Selector() Selector {
	sel := Selector{index: cs.numSelectors}
	cs.numSelectors++
	return sel
}

// EnableEquality permits cells of the column to participate in copy
// constraints.
func (cs *ConstraintSystem) EnableEquality(col Column) {
	cs.checkColumn(col)
	cs.equality[col.index] = true
}

// EqualityEnabled reports whether the column participates in copy
// constraints.
func (cs *ConstraintSystem) EqualityEnabled(col Column) bool {
	cs.checkColumn(col)
	return cs.equality[col.index]
}

// CreateGate registers a named gate. build receives a query helper that
// resolves (column, rotation) pairs to polynomial variables and must
// return the polynomial enforced wherever sel is active.
func (cs *ConstraintSystem) CreateGate(name string, sel Selector, build func(v *VirtualCells) Expression) {
	cs.checkSelector(sel)
	v := &VirtualCells{cs: cs}
	poly := normalize(cs.engine, build(v))
	if poly.Degree() > 2 {
		panic(fmt.Sprintf("gate %q: degree %d polynomials are not supported", name, poly.Degree()))
	}
	cs.gates = append(cs.gates, Gate{
		name:     name,
		selector: sel,
		queries:  v.queries,
		poly:     poly,
	})
}

func (cs *ConstraintSystem) checkColumn(col Column) {
	if col.index < 0 || col.index >= cs.numAdvice {
		panic(fmt.Sprintf("column %d was not allocated by this constraint system", col.index))
	}
}

func (cs *ConstraintSystem) checkSelector(sel Selector) {
	if sel.index < 0 || sel.index >= cs.numSelectors {
		panic(fmt.Sprintf("selector %d was not allocated by this constraint system", sel.index))
	}
}

// VirtualCells resolves cell queries while a gate is being built.
type VirtualCells struct {
	cs      *ConstraintSystem
	queries []Query
}

// Query returns the polynomial variable for the cell at (col, rot)
// relative to the gate's anchor row. Identical queries share a variable.
func (v *VirtualCells) Query(col Column, rot Rotation) Expression {
	v.cs.checkColumn(col)
	for i, q := range v.queries {
		if q.Column == col && q.Rotation == rot {
			return NewLinearExpression(i+1, v.cs.engine.One())
		}
	}
	v.queries = append(v.queries, Query{Column: col, Rotation: rot})
	return NewLinearExpression(len(v.queries), v.cs.engine.One())
}

// Constant returns the polynomial for a constant value.
func (v *VirtualCells) Constant(i interface{}) Expression {
	return NewConstantExpression(v.cs.engine.FromInterface(i))
}

// Add returns a+b+...
func (v *VirtualCells) Add(a, b Expression, in ...Expression) Expression {
	res := append(a.Clone(), b...)
	for _, e := range in {
		res = append(res, e...)
	}
	return normalize(v.cs.engine, res)
}

// Sub returns a-b.
func (v *VirtualCells) Sub(a, b Expression) Expression {
	return v.Add(a, v.Neg(b))
}

// Neg returns -a.
func (v *VirtualCells) Neg(a Expression) Expression {
	res := a.Clone()
	for i := range res {
		res[i].Coeff = v.cs.engine.Neg(res[i].Coeff)
	}
	return res
}

// Scale returns c*a.
func (v *VirtualCells) Scale(a Expression, c interface{}) Expression {
	coeff := v.cs.engine.FromInterface(c)
	res := a.Clone()
	for i := range res {
		res[i].Coeff = v.cs.engine.Mul(res[i].Coeff, coeff)
	}
	return normalize(v.cs.engine, res)
}

// Mul returns a*b. It panics if the product exceeds degree 2.
func (v *VirtualCells) Mul(a, b Expression) Expression {
	res := make(Expression, 0, len(a)*len(b))
	for _, ta := range a {
		for _, tb := range b {
			if ta.Degree()+tb.Degree() > 2 {
				panic("gate polynomials above degree 2 are not supported")
			}
			var ids []int
			for _, id := range [4]int{ta.QID0, ta.QID1, tb.QID0, tb.QID1} {
				if id != 0 {
					ids = append(ids, id)
				}
			}
			var q0, q1 int
			if len(ids) > 0 {
				q0 = ids[0]
			}
			if len(ids) > 1 {
				q1 = ids[1]
			}
			res = append(res, NewTerm(q0, q1, v.cs.engine.Mul(ta.Coeff, tb.Coeff)))
		}
	}
	return normalize(v.cs.engine, res)
}
