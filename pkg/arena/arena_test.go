package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func winnerOracle(winner string) Oracle {
	return func(leftID, rightID string, attrs map[string]any) *bool {
		result := leftID == winner
		return &result
	}
}

func undecidedOracle(leftID, rightID string, attrs map[string]any) *bool {
	return nil
}

func TestNewRejectsNilOracle(t *testing.T) {
	_, err := New(VariantElo, nil, DefaultConfig())
	assert.Error(t, err)
}

func TestNewRejectsUnknownVariant(t *testing.T) {
	config := DefaultConfig()
	config.Variant = "Unknown"
	_, err := New(VariantElo, winnerOracle("a"), config)
	assert.Error(t, err)
}

// TestConfigMinimumRatingAppliesToLazilyCreatedCompetitors covers
// SPEC_FULL.md §4.7's ArenaConfig.MinimumRating: a custom floor set on
// the Arena's config must reach every competitor it lazily creates, not
// just the package-level default.
func TestConfigMinimumRatingAppliesToLazilyCreatedCompetitors(t *testing.T) {
	config := DefaultConfig()
	config.InitialRating = 50
	config.MinimumRating = 75

	a, err := New(VariantElo, winnerOracle("alice"), config)
	require.NoError(t, err)

	c, err := a.getOrCreate("alice")
	require.NoError(t, err)
	assert.Equal(t, 75.0, c.Rating())
}

func TestGetOrCreateIsLazyAndStable(t *testing.T) {
	a, err := New(VariantElo, winnerOracle("a"), DefaultConfig())
	require.NoError(t, err)

	c1, err := a.getOrCreate("alice")
	require.NoError(t, err)
	c2, err := a.getOrCreate("alice")
	require.NoError(t, err)
	assert.Same(t, c1, c2)
}

func TestTournamentAppliesOracleResult(t *testing.T) {
	a, err := New(VariantElo, winnerOracle("alice"), DefaultConfig())
	require.NoError(t, err)

	require.NoError(t, a.Tournament([]Matchup{{LeftID: "alice", RightID: "bob"}}))

	board := a.Leaderboard()
	require.Len(t, board, 2)
	assert.Equal(t, "alice", board[0].ID)
	assert.Greater(t, board[0].Rating, board[1].Rating)
	assert.Equal(t, 1, a.History().Len())
}

func TestTournamentUndecidedOracleSkipsMutationByDefault(t *testing.T) {
	a, err := New(VariantElo, undecidedOracle, DefaultConfig())
	require.NoError(t, err)

	require.NoError(t, a.Tournament([]Matchup{{LeftID: "alice", RightID: "bob"}}))

	board := a.Leaderboard()
	assert.Equal(t, board[0].Rating, board[1].Rating)

	bouts := a.History().Bouts()
	require.Len(t, bouts, 1)
}

func TestTournamentWithDrawAsTieAppliesTie(t *testing.T) {
	a, err := New(VariantElo, undecidedOracle, DefaultConfig())
	require.NoError(t, err)
	a.WithDrawAsTie(true)

	require.NoError(t, a.Tournament([]Matchup{{LeftID: "alice", RightID: "bob"}}))
	// a tie against an equal-rated opponent leaves ratings unchanged
	board := a.Leaderboard()
	assert.InDelta(t, board[0].Rating, board[1].Rating, 0.0001)

	bouts := a.History().Bouts()
	require.Len(t, bouts, 1)
	assert.NotEqual(t, "NONE", bouts[0].Outcome.String())
}

func TestLeaderboardIncludesRDForGlicko(t *testing.T) {
	config := DefaultConfig()
	config.Variant = string(VariantGlicko)
	a, err := New(VariantGlicko, winnerOracle("alice"), config)
	require.NoError(t, err)

	require.NoError(t, a.Tournament([]Matchup{{LeftID: "alice", RightID: "bob"}}))
	for _, entry := range a.Leaderboard() {
		require.NotNil(t, entry.RD)
	}
}

func TestExportStateCoversEveryCompetitor(t *testing.T) {
	a, err := New(VariantElo, winnerOracle("alice"), DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, a.Tournament([]Matchup{{LeftID: "alice", RightID: "bob"}}))

	docs := a.ExportState()
	assert.Len(t, docs, 2)
	assert.Equal(t, "EloCompetitor", docs["alice"].Type)
}

func TestClearHistory(t *testing.T) {
	a, err := New(VariantElo, winnerOracle("alice"), DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, a.Tournament([]Matchup{{LeftID: "alice", RightID: "bob"}}))
	require.Equal(t, 1, a.History().Len())

	a.ClearHistory()
	assert.Equal(t, 0, a.History().Len())
}

func TestSetCompetitorClassVarAffectsFutureAndLiveCompetitors(t *testing.T) {
	a, err := New(VariantElo, winnerOracle("alice"), DefaultConfig())
	require.NoError(t, err)
	_, err = a.getOrCreate("alice")
	require.NoError(t, err)

	require.NoError(t, a.SetCompetitorClassVar("k_factor", 64))

	_, err = a.getOrCreate("bob")
	require.NoError(t, err)

	require.NoError(t, a.Tournament([]Matchup{{LeftID: "alice", RightID: "bob"}}))
	board := a.Leaderboard()
	// k_factor doubled from the spec default of 32, so the winner moves by 32
	var alice LeaderboardEntry
	for _, e := range board {
		if e.ID == "alice" {
			alice = e
		}
	}
	assert.InDelta(t, 1532.0, alice.Rating, 0.0001)
}

func TestSetCompetitorClassVarRejectsUnknownName(t *testing.T) {
	a, err := New(VariantElo, winnerOracle("alice"), DefaultConfig())
	require.NoError(t, err)
	err = a.SetCompetitorClassVar("not_a_real_var", 1)
	assert.Error(t, err)
}
