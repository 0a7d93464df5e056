package plonkish

import (
	"fmt"

	"github.com/PolyhedraZK/PlonkishIVC/field"
)

// Layouter places regions on the grid. Regions are contiguous,
// non-overlapping row windows laid out top to bottom in the order they
// are opened; rotations therefore resolve against absolute table rows,
// so history outside a region is still addressable by a gate anchored
// near the region's top.
type Layouter struct {
	asg     *Assignment
	nextRow int
}

// NewLayouter returns a layouter over the given assignment.
func NewLayouter(asg *Assignment) *Layouter {
	return &Layouter{asg: asg}
}

// Assignment returns the grid being laid out.
func (l *Layouter) Assignment() *Assignment { return l.asg }

// AssignRegion opens a new region, runs body exactly once against it,
// and advances the layouter past the rows the region used.
func (l *Layouter) AssignRegion(name string, body func(r *Region) error) error {
	r := &Region{
		name:   name,
		asg:    l.asg,
		offset: l.nextRow,
		cursor: make([]int, l.asg.cs.NumAdvice()),
	}
	if err := body(r); err != nil {
		return fmt.Errorf("region %q: %w", name, err)
	}
	l.nextRow = r.offset + r.rows
	return nil
}

// Region is a scoped, append-only, row-indexed sub-grid. Rows are local
// to the region and must be assigned sequentially from 0 per column.
type Region struct {
	name   string
	asg    *Assignment
	offset int
	cursor []int
	rows   int
}

// Name returns the label the region was opened with.
func (r *Region) Name() string { return r.name }

// Engine returns the field engine of the underlying grid.
func (r *Region) Engine() field.Field { return r.asg.engine }

// AssignAdvice places value at (col, row) and returns the assigned cell.
// Per column, rows must be assigned in increasing order starting at 0;
// duplicate or skipped rows fail with ErrRowOutOfOrder.
func (r *Region) AssignAdvice(name string, col Column, row int, value field.Element) (AssignedCell, error) {
	r.asg.cs.checkColumn(col)
	if row != r.cursor[col.index] {
		return AssignedCell{}, fmt.Errorf("%w: %q row %d, expected %d", ErrRowOutOfOrder, name, row, r.cursor[col.index])
	}
	cell, err := r.asg.setAdvice(col, r.offset+row, value)
	if err != nil {
		return AssignedCell{}, fmt.Errorf("%q: %w", name, err)
	}
	r.cursor[col.index]++
	if row+1 > r.rows {
		r.rows = row + 1
	}
	return cell, nil
}

// ConstrainEqual asserts that two previously assigned cells hold the
// same value, regardless of their column, row, or region of origin.
// Both columns must be equality-enabled.
func (r *Region) ConstrainEqual(a, b AssignedCell) error {
	return r.asg.constrainEqual(a, b)
}

// Enable marks the selector active at the region-local row, activating
// every gate anchored on it there. Enabling fails if any of the gate's
// rotations would leave the table.
func (s Selector) Enable(r *Region, row int) error {
	if row < 0 {
		return fmt.Errorf("%w: selector row %d", ErrTableOverflow, row)
	}
	if err := r.asg.enableSelector(s, r.offset+row); err != nil {
		return err
	}
	if row+1 > r.rows {
		r.rows = row + 1
	}
	return nil
}
