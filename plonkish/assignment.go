package plonkish

import (
	"fmt"

	"github.com/PolyhedraZK/PlonkishIVC/field"
)

// AssignedCell is a handle to a cell placed in an Assignment. Its
// identity (the arena id) is distinct from its value and is what copy
// constraints operate on.
type AssignedCell struct {
	id    int
	asg   *Assignment
	col   Column
	row   int
	value field.Element
}

// Value returns the value placed in the cell.
func (c AssignedCell) Value() field.Element { return c.value }

// Column returns the column the cell lives in.
func (c AssignedCell) Column() Column { return c.col }

// Row returns the absolute table row of the cell.
func (c AssignedCell) Row() int { return c.row }

// Assignment is the witness grid for one synthesis: advice values per
// (column, row), selector activations, and recorded copy constraints.
// It is built once per fold and never mutated afterwards.
type Assignment struct {
	cs     *ConstraintSystem
	engine field.Field

	advice   [][]field.Element
	assigned [][]bool
	enabled  [][]bool

	cells  []AssignedCell
	copies [][2]int
}

// NewAssignment returns an empty grid shaped by the constraint system.
func NewAssignment(cs *ConstraintSystem) *Assignment {
	n := cs.Capacity()
	advice := make([][]field.Element, cs.NumAdvice())
	assigned := make([][]bool, cs.NumAdvice())
	for i := range advice {
		advice[i] = make([]field.Element, n)
		assigned[i] = make([]bool, n)
	}
	enabled := make([][]bool, cs.NumSelectors())
	for i := range enabled {
		enabled[i] = make([]bool, n)
	}
	return &Assignment{
		cs:       cs,
		engine:   cs.Engine(),
		advice:   advice,
		assigned: assigned,
		enabled:  enabled,
	}
}

// ConstraintSystem returns the configuration this grid is shaped by.
func (asg *Assignment) ConstraintSystem() *ConstraintSystem { return asg.cs }

// Engine returns the field engine of the grid.
func (asg *Assignment) Engine() field.Field { return asg.engine }

// NumCells returns the number of cells assigned so far.
func (asg *Assignment) NumCells() int { return len(asg.cells) }

// Advice returns the value at (col, row) and whether it was assigned.
func (asg *Assignment) Advice(col Column, row int) (field.Element, bool) {
	asg.cs.checkColumn(col)
	if row < 0 || row >= asg.cs.Capacity() {
		return field.Element{}, false
	}
	return asg.advice[col.index][row], asg.assigned[col.index][row]
}

// SelectorEnabled reports whether sel is active at row.
func (asg *Assignment) SelectorEnabled(sel Selector, row int) bool {
	asg.cs.checkSelector(sel)
	if row < 0 || row >= asg.cs.Capacity() {
		return false
	}
	return asg.enabled[sel.index][row]
}

// AdviceVector returns the full grid in column-major order, padded to
// capacity. This is the vector the folding driver commits to.
func (asg *Assignment) AdviceVector() []field.Element {
	n := asg.cs.Capacity()
	res := make([]field.Element, 0, n*asg.cs.NumAdvice())
	for _, col := range asg.advice {
		res = append(res, col...)
	}
	return res
}

func (asg *Assignment) setAdvice(col Column, row int, value field.Element) (AssignedCell, error) {
	if row < 0 || row >= asg.cs.Capacity() {
		return AssignedCell{}, fmt.Errorf("%w: row %d, capacity %d", ErrTableOverflow, row, asg.cs.Capacity())
	}
	cell := AssignedCell{
		id:    len(asg.cells),
		asg:   asg,
		col:   col,
		row:   row,
		value: value,
	}
	asg.advice[col.index][row] = value
	asg.assigned[col.index][row] = true
	asg.cells = append(asg.cells, cell)
	return cell, nil
}

func (asg *Assignment) constrainEqual(a, b AssignedCell) error {
	if a.asg != asg || b.asg != asg {
		return ErrForeignCell
	}
	if !asg.cs.EqualityEnabled(a.col) {
		return fmt.Errorf("%w: column %d", ErrEqualityNotEnabled, a.col.index)
	}
	if !asg.cs.EqualityEnabled(b.col) {
		return fmt.Errorf("%w: column %d", ErrEqualityNotEnabled, b.col.index)
	}
	asg.copies = append(asg.copies, [2]int{a.id, b.id})
	return nil
}

func (asg *Assignment) enableSelector(sel Selector, row int) error {
	if row < 0 || row >= asg.cs.Capacity() {
		return fmt.Errorf("%w: selector row %d", ErrTableOverflow, row)
	}
	// the anchor row must leave every rotation of every gate on this
	// selector inside the table
	for i := range asg.cs.gates {
		g := &asg.cs.gates[i]
		if g.selector != sel {
			continue
		}
		if row+int(g.minRotation()) < 0 || row+int(g.maxRotation()) >= asg.cs.Capacity() {
			return fmt.Errorf("%w: gate %q at row %d", ErrRotationOutOfRange, g.name, row)
		}
	}
	asg.enabled[sel.index][row] = true
	return nil
}
