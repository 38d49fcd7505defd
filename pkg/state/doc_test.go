package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAssignsVersionAndID(t *testing.T) {
	d := New("EloCompetitor", 1000, map[string]any{"initial_rating": 1500.0}, map[string]any{"rating": 1500.0}, map[string]any{}, 1500, 1500)
	assert.Equal(t, Version, d.Version)
	assert.NotEmpty(t, d.ID)
}

func TestRequireKind(t *testing.T) {
	d := New("EloCompetitor", 0, nil, nil, nil, 1500, 1500)
	assert.NoError(t, d.RequireKind("EloCompetitor"))
	assert.ErrorIs(t, d.RequireKind("GlickoCompetitor"), ErrKindMismatch)
}

func TestNumberPrefersStructuredOverFlattened(t *testing.T) {
	d := New("EloCompetitor", 0, map[string]any{"initial_rating": 1600.0}, nil, nil, 1500, 1500)
	v, ok, usedFallback := d.Number(d.Parameters, "initial_rating", d.InitialRating, true)
	require.True(t, ok)
	assert.False(t, usedFallback)
	assert.Equal(t, 1600.0, v)
}

func TestNumberFallsBackToFlattened(t *testing.T) {
	d := New("EloCompetitor", 0, map[string]any{}, nil, nil, 1500, 1500)
	v, ok, usedFallback := d.Number(d.Parameters, "initial_rating", d.InitialRating, true)
	require.True(t, ok)
	assert.True(t, usedFallback)
	assert.Equal(t, 1500.0, v)
}

func TestNumberMissingWithoutFlattenedReturnsFalse(t *testing.T) {
	d := New("EloCompetitor", 0, map[string]any{}, nil, nil, 1500, 1500)
	_, ok, usedFallback := d.Number(d.Parameters, "k_factor", 0, false)
	assert.False(t, ok)
	assert.False(t, usedFallback)
}

func TestFloatsRoundTripsFromJSON(t *testing.T) {
	d := New("ECFCompetitor", 0, nil, map[string]any{"window": []float64{110, 120, 130}}, nil, 160, 160)
	encoded, err := d.Encode()
	require.NoError(t, err)

	decoded, err := Decode(encoded)
	require.NoError(t, err)

	window, ok := decoded.Floats(decoded.State, "window")
	require.True(t, ok)
	assert.Equal(t, []float64{110, 120, 130}, window)
}

func TestDecodeRejectsMissingType(t *testing.T) {
	_, err := Decode([]byte(`{"version":1}`))
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestDecodeRejectsUnsupportedVersion(t *testing.T) {
	_, err := Decode([]byte(`{"type":"EloCompetitor","version":99}`))
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "competitor.json")

	d := New("EloCompetitor", 1234, map[string]any{"initial_rating": 1500.0}, map[string]any{"rating": 1516.0}, map[string]any{"k_factor": 32.0}, 1500, 1516)
	require.NoError(t, Save(d, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, d.Type, loaded.Type)
	assert.Equal(t, d.CurrentRating, loaded.CurrentRating)

	// no leftover temp file from the atomic write
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}
