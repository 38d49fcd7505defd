package arena

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elote-go/elote/pkg/rating"
)

func TestValidateRejectsUnknownVariant(t *testing.T) {
	c := DefaultConfig()
	c.Variant = "NotAVariant"
	assert.ErrorIs(t, c.Validate(), ErrInvalidConfig)
}

func TestValidateRejectsNonPositiveInitialRating(t *testing.T) {
	c := DefaultConfig()
	c.InitialRating = 0
	assert.ErrorIs(t, c.Validate(), ErrInvalidConfig)
}

func TestValidateRejectsNegativeMinimumRating(t *testing.T) {
	c := DefaultConfig()
	c.MinimumRating = -1
	assert.ErrorIs(t, c.Validate(), ErrInvalidConfig)
}

func TestDefaultConfigUsesDefaultMinimumRating(t *testing.T) {
	c := DefaultConfig()
	assert.Equal(t, rating.DefaultMinimumRating, c.MinimumRating)
}

func TestSaveLoadConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "arena.yaml")

	c := DefaultConfig()
	c.Variant = string(VariantGlicko)
	c.Glicko.C = 40
	require.NoError(t, c.Save(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, c.Variant, loaded.Variant)
	assert.Equal(t, 40.0, loaded.Glicko.C)
}

func TestLoadConfigRejectsMissingFile(t *testing.T) {
	_, err := LoadConfig("/nonexistent/arena.yaml")
	assert.ErrorIs(t, err, ErrConfigIO)
}
