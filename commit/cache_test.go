package commit_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/PolyhedraZK/PlonkishIVC/commit"
	_ "github.com/PolyhedraZK/PlonkishIVC/commit/bn254"
	_ "github.com/PolyhedraZK/PlonkishIVC/commit/grumpkin"
	"github.com/PolyhedraZK/PlonkishIVC/field"
	fieldBn254 "github.com/PolyhedraZK/PlonkishIVC/field/bn254"
)

func TestLoadOrSetupRoundTrip(t *testing.T) {
	dir := t.TempDir()
	engine := field.GetFieldByCurve(fieldBn254.CurveName)

	generated, err := commit.LoadOrSetupUnchecked(dir, "bn254", 4)
	require.NoError(t, err)
	loaded, err := commit.LoadOrSetupUnchecked(dir, "bn254", 4)
	require.NoError(t, err)

	// the cached key must behave exactly like the freshly generated one
	v := make([]field.Element, 10)
	for i := range v {
		v[i] = engine.FromInterface(i + 1)
	}
	c1, err := generated.Commit(v)
	require.NoError(t, err)
	c2, err := loaded.Commit(v)
	require.NoError(t, err)
	require.True(t, bytes.Equal(c1, c2))
}

func TestCacheEntriesAreKeyedBySize(t *testing.T) {
	dir := t.TempDir()

	k4, err := commit.LoadOrSetupUnchecked(dir, "bn254", 4)
	require.NoError(t, err)
	k5, err := commit.LoadOrSetupUnchecked(dir, "bn254", 5)
	require.NoError(t, err)

	require.Equal(t, 16, k4.Len())
	require.Equal(t, 32, k5.Len())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestCorruptCacheRegenerates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bn254_4.key")
	require.NoError(t, os.WriteFile(path, []byte("not a key"), 0o644))

	key, err := commit.LoadOrSetupUnchecked(dir, "bn254", 4)
	require.NoError(t, err)
	require.Equal(t, 16, key.Len())

	// the unusable entry was replaced
	loaded, err := commit.LoadOrSetupUnchecked(dir, "bn254", 4)
	require.NoError(t, err)
	require.Equal(t, 16, loaded.Len())
}

func TestUnknownCurve(t *testing.T) {
	_, err := commit.LoadOrSetupUnchecked(t.TempDir(), "bls12-381", 4)
	require.Error(t, err)
}

func TestGrumpkinBackend(t *testing.T) {
	dir := t.TempDir()
	key, err := commit.LoadOrSetupUnchecked(dir, "grumpkin", 4)
	require.NoError(t, err)
	require.Equal(t, "grumpkin", key.CurveName())

	engine := field.GetFieldByCurve("grumpkin")
	c, err := key.Commit([]field.Element{engine.One()})
	require.NoError(t, err)
	require.NoError(t, key.Validate(c))
}
