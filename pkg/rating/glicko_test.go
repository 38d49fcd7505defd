package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGlickoCompetitor(t *testing.T) {
	t.Run("defaults rd to 350 when zero", func(t *testing.T) {
		c, err := NewGlickoCompetitor(1500, 0, 0, nil)
		require.NoError(t, err)
		assert.Equal(t, 350.0, c.RD())
	})

	t.Run("rd is capped at config max_rd", func(t *testing.T) {
		c, err := NewGlickoCompetitor(1500, 500, 0, &GlickoConfig{C: 34.6, MaxRD: 300})
		require.NoError(t, err)
		assert.Equal(t, 300.0, c.RD())
	})

	t.Run("rejects non-positive rd", func(t *testing.T) {
		_, err := NewGlickoCompetitor(1500, -10, 0, nil)
		assert.ErrorIs(t, err, ErrInvalidParameter)
	})

	t.Run("sub-floor rating is clamped", func(t *testing.T) {
		c, err := NewGlickoCompetitor(10, 350, 0, nil)
		require.NoError(t, err)
		assert.Equal(t, DefaultMinimumRating, c.Rating())
	})

	t.Run("custom floor is honored", func(t *testing.T) {
		c, err := NewGlickoCompetitor(10, 350, 75, nil)
		require.NoError(t, err)
		assert.Equal(t, 75.0, c.Rating())
	})
}

func TestGlickoBeatIncreasesWinnerRating(t *testing.T) {
	a, _ := NewGlickoCompetitor(1500, 200, 0, nil)
	b, _ := NewGlickoCompetitor(1500, 200, 0, nil)

	require.NoError(t, a.Beat(b))
	assert.Greater(t, a.Rating(), 1500.0)
	assert.Less(t, b.Rating(), 1500.0)
	// both RDs shrink after a recorded result
	assert.Less(t, a.RD(), 200.0)
	assert.Less(t, b.RD(), 200.0)
}

// TestGlickoTiedBetweenEqualsIsIdentity covers spec.md §8 testable
// property 3: a draw between exactly-equal-rated competitors with
// identical RD leaves both ratings unchanged within tolerance.
func TestGlickoTiedBetweenEqualsIsIdentity(t *testing.T) {
	a, _ := NewGlickoCompetitor(1500, 200, 0, nil)
	b, _ := NewGlickoCompetitor(1500, 200, 0, nil)

	require.NoError(t, a.Tied(b))
	assert.InDelta(t, 1500.0, a.Rating(), tolerance)
	assert.InDelta(t, 1500.0, b.Rating(), tolerance)
}

func TestGlickoHighRDMovesMoreThanLowRD(t *testing.T) {
	volatile, _ := NewGlickoCompetitor(1500, 300, 0, nil)
	stable, _ := NewGlickoCompetitor(1500, 50, 0, nil)
	opponent, _ := NewGlickoCompetitor(1500, 50, 0, nil)

	require.NoError(t, volatile.Beat(opponent))

	opponent2, _ := NewGlickoCompetitor(1500, 50, 0, nil)
	require.NoError(t, stable.Beat(opponent2))

	assert.Greater(t, volatile.Rating()-1500.0, stable.Rating()-1500.0)
}

func TestGlickoDecayNeverImplicit(t *testing.T) {
	a, _ := NewGlickoCompetitor(1500, 50, 0, nil)
	b, _ := NewGlickoCompetitor(1500, 50, 0, nil)
	require.NoError(t, a.Tied(b))
	rdAfterTie := a.RD()
	// Tied only shrinks RD; no decay is applied as part of the bout
	assert.Less(t, rdAfterTie, 50.0)

	a.Decay(10)
	assert.Greater(t, a.RD(), rdAfterTie)
}

func TestGlickoDecayCapsAtMaxRD(t *testing.T) {
	a, _ := NewGlickoCompetitor(1500, 340, 0, &GlickoConfig{C: 34.6, MaxRD: 350})
	a.Decay(1000)
	assert.Equal(t, 350.0, a.RD())
}

func TestGlickoTypeMismatch(t *testing.T) {
	g, _ := NewGlickoCompetitor(1500, 350, 0, nil)
	e, _ := NewEloCompetitor(1500, 0, nil)
	_, err := g.ExpectedScore(e)
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestGlickoStateRoundTrip(t *testing.T) {
	a, _ := NewGlickoCompetitor(1500, 200, 0, nil)
	b, _ := NewGlickoCompetitor(1400, 250, 0, nil)
	require.NoError(t, a.Beat(b))

	doc := a.ExportState()
	restored, err := FromGlickoState(doc, nil)
	require.NoError(t, err)
	assert.InDelta(t, a.Rating(), restored.Rating(), tolerance)
	assert.InDelta(t, a.RD(), restored.RD(), tolerance)
}

func TestFromGlickoStateRejectsOutOfRangeRD(t *testing.T) {
	a, _ := NewGlickoCompetitor(1500, 200, 0, nil)
	doc := a.ExportState()
	doc.State["rd"] = 400.0
	_, err := FromGlickoState(doc, nil)
	assert.ErrorIs(t, err, ErrInvalidState)
}

// TestGlickoFloorHoldsUnderConsecutiveLosses covers spec.md §8 testable
// property 4: 10,000 consecutive losses starting near the floor must
// never push the rating below it.
func TestGlickoFloorHoldsUnderConsecutiveLosses(t *testing.T) {
	const floor = 100.0
	victim, err := NewGlickoCompetitor(floor+10, 200, floor, nil)
	require.NoError(t, err)
	champion, err := NewGlickoCompetitor(2800, 50, floor, nil)
	require.NoError(t, err)

	for i := 0; i < 10_000; i++ {
		require.NoError(t, champion.Beat(victim))
		require.GreaterOrEqual(t, victim.Rating(), floor)
	}
	assert.Equal(t, floor, victim.Rating())
}
