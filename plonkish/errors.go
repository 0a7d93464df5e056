package plonkish

import "errors"

// Synthesis failures. They surface from region assignment, equality
// constraints, and selector enabling; the folding driver treats them as
// fatal for the run.
var (
	// ErrRowOutOfOrder is returned when a region row is assigned twice or
	// a row is skipped. Region rows are append-only, starting at 0.
	ErrRowOutOfOrder = errors.New("region row assigned out of order")

	// ErrTableOverflow is returned when an assignment or selector falls
	// outside the 2^k row capacity of the table.
	ErrTableOverflow = errors.New("table capacity exceeded")

	// ErrEqualityNotEnabled is returned when a copy constraint references
	// a cell in a column that is not equality-enabled.
	ErrEqualityNotEnabled = errors.New("equality not enabled for column")

	// ErrRotationOutOfRange is returned when a selector is enabled at a
	// row where one of its gate's rotations leaves the table.
	ErrRotationOutOfRange = errors.New("gate rotation out of table range")

	// ErrCellNotAssigned is returned when a gate queries a cell that was
	// never assigned at a row where the gate is active.
	ErrCellNotAssigned = errors.New("queried cell not assigned")

	// ErrForeignCell is returned when a cell handle is used with an
	// assignment that did not create it.
	ErrForeignCell = errors.New("cell does not belong to this assignment")
)
