// Package test provides assertion helpers for circuit tests.
package test

import (
	"testing"

	"github.com/PolyhedraZK/PlonkishIVC/plonkish"
)

type Assert struct {
	t *testing.T
}

func NewAssert(t *testing.T) *Assert {
	return &Assert{t: t}
}

// Satisfied fails the test if the assignment violates its configuration.
func (a *Assert) Satisfied(asg *plonkish.Assignment) {
	a.t.Helper()
	if err := plonkish.Satisfied(asg); err != nil {
		a.t.Fatalf("should be satisfied: %v", err)
	}
}

// NotSatisfied fails the test if the assignment satisfies its configuration.
func (a *Assert) NotSatisfied(asg *plonkish.Assignment) {
	a.t.Helper()
	if err := plonkish.Satisfied(asg); err == nil {
		a.t.Fatal("should not be satisfied")
	}
}
