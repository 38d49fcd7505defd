package rating

import (
	"math"

	"github.com/elote-go/elote/pkg/state"
)

// DefaultMinimumRating is the hard floor below which no variant's rating
// may drop, per spec.md §3.
const DefaultMinimumRating = 100.0

// Competitor is the capability every rating variant implements. An arena
// or a direct caller drives all interaction through this interface so
// that Elo, Glicko, ECF, and DWZ competitors are interchangeable.
//
// ExpectedScore, Beat, LostTo, and Tied return ErrTypeMismatch when the
// argument is not the same concrete variant as the receiver.
type Competitor interface {
	// Rating returns the current scalar rating estimate.
	Rating() float64

	// Kind returns the variant tag used by the state codec and by
	// Arena's dispatch ("EloCompetitor", "GlickoCompetitor", ...).
	Kind() string

	// ExpectedScore returns the probability that the receiver beats
	// other, in [0, 1].
	ExpectedScore(other Competitor) (float64, error)

	// Beat registers a win of the receiver over other; mutates both.
	Beat(other Competitor) error

	// LostTo registers a loss of the receiver to other; equivalent to
	// other.Beat(receiver).
	LostTo(other Competitor) error

	// Tied registers a draw between the receiver and other; mutates
	// both symmetrically.
	Tied(other Competitor) error

	// Reset restores the receiver to its construction-time state.
	Reset()

	// ExportState serializes the receiver to a portable state document.
	ExportState() state.Doc
}

// expectedScoreLogistic computes the standard logistic expected score
// used by Elo and DWZ: 1 / (1 + 10^((ratingB-ratingA)/denominator)).
func expectedScoreLogistic(ratingA, ratingB, denominator float64) float64 {
	return 1.0 / (1.0 + math.Pow(10.0, (ratingB-ratingA)/denominator))
}

// clampToFloor returns max(value, floor).
func clampToFloor(value, floor float64) float64 {
	if value < floor {
		return floor
	}
	return value
}

// outcomeScores maps a boolean "did the receiver win" plus a draw flag
// onto the actual-score pair (S_self, S_other) used by every variant's
// update rule.
func outcomeScores(selfWon, draw bool) (self, other float64) {
	switch {
	case draw:
		return 0.5, 0.5
	case selfWon:
		return 1.0, 0.0
	default:
		return 0.0, 1.0
	}
}
