package fibonacci_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/PolyhedraZK/PlonkishIVC/circuits/fibonacci"
	"github.com/PolyhedraZK/PlonkishIVC/field"
	fieldBn254 "github.com/PolyhedraZK/PlonkishIVC/field/bn254"
	"github.com/PolyhedraZK/PlonkishIVC/plonkish"
	"github.com/PolyhedraZK/PlonkishIVC/step"
	"github.com/PolyhedraZK/PlonkishIVC/test"
)

// synthesize runs one fold of the circuit the way the driver does:
// the seeds are assigned into an equality-enabled io column first.
func synthesize(t *testing.T, circuit step.Circuit, seeds []uint64) (*plonkish.Assignment, []field.Element) {
	t.Helper()
	engine := field.GetFieldByCurve(fieldBn254.CurveName)
	cs := plonkish.NewConstraintSystem(engine, 6)
	io := cs.AdviceColumn()
	cs.EnableEquality(io)
	cfg := circuit.Configure(cs)

	asg := plonkish.NewAssignment(cs)
	l := plonkish.NewLayouter(asg)
	zIn := make([]plonkish.AssignedCell, len(seeds))
	err := l.AssignRegion("io", func(r *plonkish.Region) error {
		for i, s := range seeds {
			cell, err := r.AssignAdvice("z", io, i, engine.FromInterface(s))
			if err != nil {
				return err
			}
			zIn[i] = cell
		}
		return nil
	})
	require.NoError(t, err)

	zOut, err := circuit.SynthesizeStep(cfg, l, zIn)
	require.NoError(t, err)
	require.Len(t, zOut, circuit.Arity())

	out := make([]field.Element, len(zOut))
	for i := range zOut {
		out[i] = zOut[i].Value()
	}
	return asg, out
}

func TestRecurrence(t *testing.T) {
	assert := test.NewAssert(t)
	engine := field.GetFieldByCurve(fieldBn254.CurveName)

	// 11 rows from (0,1): 0 1 1 2 3 5 8 13 21 34 55
	asg, out := synthesize(t, fibonacci.New(11), []uint64{0, 1})
	assert.Satisfied(asg)
	require.Equal(t, "34", engine.String(out[0]))
	require.Equal(t, "55", engine.String(out[1]))
}

func TestRecurrenceArbitrarySeeds(t *testing.T) {
	assert := test.NewAssert(t)
	engine := field.GetFieldByCurve(fieldBn254.CurveName)

	seeds := []uint64{3, 7}
	rows := 8
	asg, out := synthesize(t, fibonacci.New(rows), seeds)
	assert.Satisfied(asg)

	want := []uint64{3, 7}
	for len(want) < rows {
		want = append(want, want[len(want)-2]+want[len(want)-1])
	}
	require.Equal(t, engine.FromInterface(want[rows-2]), out[0])
	require.Equal(t, engine.FromInterface(want[rows-1]), out[1])
}

func TestConfigureIsIdempotent(t *testing.T) {
	engine := field.GetFieldByCurve(fieldBn254.CurveName)
	circuit := fibonacci.New(11)

	cs1 := plonkish.NewConstraintSystem(engine, 6)
	cs2 := plonkish.NewConstraintSystem(engine, 6)
	cfg1 := circuit.Configure(cs1)
	cfg2 := circuit.Configure(cs2)

	require.Equal(t, cfg1, cfg2)
	require.Equal(t, cs1.NumAdvice(), cs2.NumAdvice())
	require.Equal(t, cs1.NumSelectors(), cs2.NumSelectors())
	require.Equal(t, cs1.Gates(), cs2.Gates())
}

func TestTooFewRowsPanics(t *testing.T) {
	require.Panics(t, func() { fibonacci.New(2) })
}
