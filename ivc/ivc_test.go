package ivc_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/PolyhedraZK/PlonkishIVC/circuits/fibonacci"
	"github.com/PolyhedraZK/PlonkishIVC/commit"
	_ "github.com/PolyhedraZK/PlonkishIVC/commit/bn254"
	_ "github.com/PolyhedraZK/PlonkishIVC/commit/grumpkin"
	"github.com/PolyhedraZK/PlonkishIVC/field"
	fieldBn254 "github.com/PolyhedraZK/PlonkishIVC/field/bn254"
	"github.com/PolyhedraZK/PlonkishIVC/ivc"
	"github.com/PolyhedraZK/PlonkishIVC/plonkish"
	"github.com/PolyhedraZK/PlonkishIVC/step"
)

const (
	testTableSize = 6
	testKeySize   = 8
)

func testKeys(t *testing.T) (commit.Key, commit.Key) {
	t.Helper()
	dir := t.TempDir()
	primary, err := commit.LoadOrSetupUnchecked(dir, "bn254", testKeySize)
	require.NoError(t, err)
	secondary, err := commit.LoadOrSetupUnchecked(dir, "grumpkin", testKeySize)
	require.NoError(t, err)
	return primary, secondary
}

func fibSeeds(engine field.Field) []field.Element {
	return []field.Element{engine.FromInterface(0), engine.FromInterface(1)}
}

// expectedAfterFolds iterates the recurrence the way k folds of an
// 11-row circuit do: each fold advances the pair by 9 elements.
func expectedAfterFolds(engine field.Field, k int) []field.Element {
	a, b := engine.FromInterface(0), engine.FromInterface(1)
	for fold := 0; fold < k; fold++ {
		for i := 0; i < 9; i++ {
			a, b = b, engine.Add(a, b)
		}
	}
	return []field.Element{a, b}
}

func TestEndToEnd(t *testing.T) {
	engine := field.GetFieldByCurve(fieldBn254.CurveName)
	primaryKey, secondaryKey := testKeys(t)

	sc1 := fibonacci.New(11)
	sc2 := step.NewTrivial(1)

	pp, err := ivc.NewDefaultPP(testTableSize, primaryKey, sc1, testTableSize, secondaryKey, sc2)
	require.NoError(t, err)

	folding, err := ivc.New(pp, sc1, fibSeeds(engine), sc2, make([]field.Element, 1), true)
	require.NoError(t, err)
	require.Equal(t, 0, folding.NumFolds())

	const folds = 5
	for k := 1; k <= folds; k++ {
		require.NoError(t, folding.FoldStep(pp, sc1, sc2))
		require.Equal(t, k, folding.NumFolds())
		require.Equal(t, expectedAfterFolds(engine, k), folding.PrimaryOutput())
	}

	// the secondary identity circuit never changes its vector
	require.Equal(t, make([]field.Element, 1), folding.SecondaryOutput())

	require.NoError(t, folding.Verify(pp))
}

func TestFirstFoldOutput(t *testing.T) {
	engine := field.GetFieldByCurve(fieldBn254.CurveName)
	primaryKey, secondaryKey := testKeys(t)

	sc1 := fibonacci.New(11)
	sc2 := step.NewTrivial(1)
	pp, err := ivc.NewDefaultPP(testTableSize, primaryKey, sc1, testTableSize, secondaryKey, sc2)
	require.NoError(t, err)

	folding, err := ivc.New(pp, sc1, fibSeeds(engine), sc2, make([]field.Element, 1), true)
	require.NoError(t, err)
	require.NoError(t, folding.FoldStep(pp, sc1, sc2))

	out := folding.PrimaryOutput()
	require.Equal(t, "34", engine.String(out[0]))
	require.Equal(t, "55", engine.String(out[1]))
}

func TestConfigDigestIsIdempotent(t *testing.T) {
	primaryKey, secondaryKey := testKeys(t)
	sc1 := fibonacci.New(11)
	sc2 := step.NewTrivial(1)

	pp1, err := ivc.NewDefaultPP(testTableSize, primaryKey, sc1, testTableSize, secondaryKey, sc2)
	require.NoError(t, err)
	pp2, err := ivc.NewDefaultPP(testTableSize, primaryKey, fibonacci.New(11), testTableSize, secondaryKey, step.NewTrivial(1))
	require.NoError(t, err)

	require.Equal(t, pp1.PrimaryDigest(), pp2.PrimaryDigest())
	require.Equal(t, pp1.SecondaryDigest(), pp2.SecondaryDigest())
}

func TestArityMismatch(t *testing.T) {
	primaryKey, secondaryKey := testKeys(t)
	engine := field.GetFieldByCurve(fieldBn254.CurveName)
	sc1 := fibonacci.New(11)
	sc2 := step.NewTrivial(1)

	pp, err := ivc.NewDefaultPP(testTableSize, primaryKey, sc1, testTableSize, secondaryKey, sc2)
	require.NoError(t, err)

	_, err = ivc.New(pp, sc1, []field.Element{engine.One()}, sc2, make([]field.Element, 1), false)
	require.Error(t, err)
}

func TestKeyTooSmall(t *testing.T) {
	dir := t.TempDir()
	primaryKey, err := commit.LoadOrSetupUnchecked(dir, "bn254", 4)
	require.NoError(t, err)
	secondaryKey, err := commit.LoadOrSetupUnchecked(dir, "grumpkin", testKeySize)
	require.NoError(t, err)

	// fibonacci needs 2 columns * 2^6 rows = 128 > 2^4
	_, err = ivc.NewDefaultPP(testTableSize, primaryKey, fibonacci.New(11), testTableSize, secondaryKey, step.NewTrivial(1))
	require.ErrorIs(t, err, commit.ErrKeyTooSmall)
}

// dishonest behaves like the recurrence circuit but corrupts one
// intermediate cell after the gate that checks it has been enabled.
type dishonest struct {
	inner *fibonacci.Circuit
	rows  int
}

func (c *dishonest) Arity() int { return 2 }

func (c *dishonest) Configure(cs *plonkish.ConstraintSystem) step.Config {
	return c.inner.Configure(cs)
}

func (c *dishonest) SynthesizeStep(cfg step.Config, l *plonkish.Layouter, zIn []plonkish.AssignedCell) ([]plonkish.AssignedCell, error) {
	conf := cfg.(fibonacci.Config)
	var zOut []plonkish.AssignedCell
	err := l.AssignRegion("fibonacci", func(r *plonkish.Region) error {
		engine := r.Engine()
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
			v := engine.Add(prev2.Value(), prev1.Value())
			if row == 5 {
				// a single corrupted intermediate value
				v = engine.Add(v, engine.One())
			}
			next, err := r.AssignAdvice("next", conf.Advice, row, v)
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

func TestTamperedFoldFailsVerification(t *testing.T) {
	engine := field.GetFieldByCurve(fieldBn254.CurveName)
	primaryKey, secondaryKey := testKeys(t)

	sc1 := &dishonest{inner: fibonacci.New(11), rows: 11}
	sc2 := step.NewTrivial(1)

	pp, err := ivc.NewDefaultPP(testTableSize, primaryKey, sc1, testTableSize, secondaryKey, sc2)
	require.NoError(t, err)

	// without per-step checking the fold itself goes through and the
	// dishonesty is caught by the single final verification
	folding, err := ivc.New(pp, sc1, fibSeeds(engine), sc2, make([]field.Element, 1), false)
	require.NoError(t, err)
	require.NoError(t, folding.FoldStep(pp, sc1, sc2))
	err = folding.Verify(pp)
	require.ErrorIs(t, err, ivc.ErrVerificationFailed)
}

func TestTamperedFoldFailsEagerly(t *testing.T) {
	engine := field.GetFieldByCurve(fieldBn254.CurveName)
	primaryKey, secondaryKey := testKeys(t)

	sc1 := &dishonest{inner: fibonacci.New(11), rows: 11}
	sc2 := step.NewTrivial(1)

	pp, err := ivc.NewDefaultPP(testTableSize, primaryKey, sc1, testTableSize, secondaryKey, sc2)
	require.NoError(t, err)

	folding, err := ivc.New(pp, sc1, fibSeeds(engine), sc2, make([]field.Element, 1), true)
	require.NoError(t, err)
	err = folding.FoldStep(pp, sc1, sc2)
	require.Error(t, err)
	require.False(t, errors.Is(err, ivc.ErrVerificationFailed))
}

func TestHonestFoldsKeepVerifying(t *testing.T) {
	engine := field.GetFieldByCurve(fieldBn254.CurveName)
	primaryKey, secondaryKey := testKeys(t)

	sc1 := fibonacci.New(5)
	sc2 := step.NewTrivial(2)

	pp, err := ivc.NewDefaultPP(testTableSize, primaryKey, sc1, testTableSize, secondaryKey, sc2)
	require.NoError(t, err)

	z0Secondary := []field.Element{engine.FromInterface(7), engine.FromInterface(9)}
	folding, err := ivc.New(pp, sc1, fibSeeds(engine), sc2, z0Secondary, false)
	require.NoError(t, err)

	for k := 0; k < 3; k++ {
		require.NoError(t, folding.FoldStep(pp, sc1, sc2))
		require.NoError(t, folding.Verify(pp))
	}
}
