package rating

import (
	"fmt"
	"math"

	"github.com/elote-go/elote/pkg/state"
)

// EloConfig holds the Elo variant's class-level tunable (spec.md §3:
// "k_factor (default 32)"). A config is shared by pointer between every
// competitor constructed with it, so Arena.SetCompetitorClassVar can
// mutate it once and have every live Elo competitor observe the change
// (spec.md §9's "per-instance config... arena-level setter" design).
type EloConfig struct {
	KFactor float64
}

// DefaultEloConfig returns the spec-default Elo tunables.
func DefaultEloConfig() *EloConfig {
	return &EloConfig{KFactor: 32}
}

// EloCompetitor is the classic logistic rating variant (spec.md §4.1.1).
type EloCompetitor struct {
	config        *EloConfig
	minimumRating float64
	initialRating float64
	rating        float64
}

// NewEloCompetitor constructs an Elo competitor. config may be nil, in
// which case DefaultEloConfig is used. minimumRating, when zero, defaults
// to DefaultMinimumRating (spec.md §3's default floor of 100); a
// non-zero value lets a caller configure a non-default floor, per
// SPEC_FULL.md §4.7's ArenaConfig.MinimumRating. A caller-supplied
// initialRating below the floor is clamped and logged (spec.md
// invariant 1), not rejected — unlike decoding a state document, a raw
// construction call is accepted and corrected rather than bounced back
// to the caller.
func NewEloCompetitor(initialRating, minimumRating float64, config *EloConfig) (*EloCompetitor, error) {
	if config == nil {
		config = DefaultEloConfig()
	}
	if config.KFactor <= 0 {
		return nil, fmt.Errorf("%w: k_factor must be positive, got %v", ErrInvalidParameter, config.KFactor)
	}
	if math.IsNaN(initialRating) || math.IsInf(initialRating, 0) {
		return nil, fmt.Errorf("%w: initial rating must be finite", ErrInvalidParameter)
	}

	floor := minimumRating
	if floor == 0 {
		floor = DefaultMinimumRating
	}
	rating := initialRating
	if rating < floor {
		warnFloorViolation("EloCompetitor", "initial_rating", rating, floor)
		rating = floor
	}

	return &EloCompetitor{
		config:        config,
		minimumRating: floor,
		initialRating: rating,
		rating:        rating,
	}, nil
}

func (e *EloCompetitor) Rating() float64 { return e.rating }

func (e *EloCompetitor) Kind() string { return "EloCompetitor" }

func (e *EloCompetitor) ExpectedScore(other Competitor) (float64, error) {
	o, ok := other.(*EloCompetitor)
	if !ok {
		return 0, fmt.Errorf("%w: expected *EloCompetitor, got %T", ErrTypeMismatch, other)
	}
	return expectedScoreLogistic(e.rating, o.rating, 400), nil
}

func (e *EloCompetitor) Beat(other Competitor) error {
	o, ok := other.(*EloCompetitor)
	if !ok {
		return fmt.Errorf("%w: expected *EloCompetitor, got %T", ErrTypeMismatch, other)
	}
	e.applyOutcome(o, true, false)
	return nil
}

func (e *EloCompetitor) LostTo(other Competitor) error {
	return other.Beat(e)
}

func (e *EloCompetitor) Tied(other Competitor) error {
	o, ok := other.(*EloCompetitor)
	if !ok {
		return fmt.Errorf("%w: expected *EloCompetitor, got %T", ErrTypeMismatch, other)
	}
	e.applyOutcome(o, false, true)
	return nil
}

// applyOutcome mirrors confelo's Engine.CalculatePairwise (pkg/elo/engine.go)
// but mutates the competitors directly instead of returning new Rating
// values, since here the rating is owned state, not a value struct.
func (e *EloCompetitor) applyOutcome(o *EloCompetitor, selfWon, draw bool) {
	expectedSelf := expectedScoreLogistic(e.rating, o.rating, 400)
	expectedOther := expectedScoreLogistic(o.rating, e.rating, 400)
	actualSelf, actualOther := outcomeScores(selfWon, draw)

	e.rating = clampToFloor(e.rating+e.config.KFactor*(actualSelf-expectedSelf), e.minimumRating)
	o.rating = clampToFloor(o.rating+o.config.KFactor*(actualOther-expectedOther), o.minimumRating)
}

func (e *EloCompetitor) Reset() {
	e.rating = e.initialRating
}

func (e *EloCompetitor) ExportState() state.Doc {
	return state.New(
		e.Kind(), nowUnix(),
		map[string]any{"initial_rating": e.initialRating, "minimum_rating": e.minimumRating},
		map[string]any{"rating": e.rating},
		map[string]any{"k_factor": e.config.KFactor},
		e.initialRating, e.rating,
	)
}

// FromEloState reconstructs an EloCompetitor from a previously exported
// state document. config, if non-nil, is shared with the new instance
// (matching NewEloCompetitor); the document's class_vars, when present,
// override its k_factor. A rating or initial_rating below the floor is
// rejected outright (spec.md §7, §8 test 7) rather than clamped, since a
// valid export should never contain one.
func FromEloState(doc state.Doc, config *EloConfig) (*EloCompetitor, error) {
	if err := doc.RequireKind("EloCompetitor"); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if config == nil {
		config = DefaultEloConfig()
	}
	if kFactor, ok, _ := doc.Number(doc.ClassVars, "k_factor", 0, false); ok {
		config.KFactor = kFactor
	}

	initialRating, ok, usedFallback := doc.Number(doc.Parameters, "initial_rating", doc.InitialRating, true)
	if !ok {
		return nil, fmt.Errorf("%w: missing initial_rating", ErrInvalidState)
	}
	if usedFallback {
		warnFlattenedFallback("EloCompetitor", "initial_rating")
	}
	rating, ok, usedFallback := doc.Number(doc.State, "rating", doc.CurrentRating, true)
	if !ok {
		return nil, fmt.Errorf("%w: missing rating", ErrInvalidState)
	}
	if usedFallback {
		warnFlattenedFallback("EloCompetitor", "rating")
	}
	floor, ok, _ := doc.Number(doc.Parameters, "minimum_rating", 0, false)
	if !ok {
		floor = DefaultMinimumRating
	}

	if initialRating < floor {
		return nil, fmt.Errorf("%w: initial_rating %v below floor %v", ErrInvalidState, initialRating, floor)
	}
	if rating < floor {
		return nil, fmt.Errorf("%w: rating %v below floor %v", ErrInvalidState, rating, floor)
	}

	return &EloCompetitor{
		config:        config,
		minimumRating: floor,
		initialRating: initialRating,
		rating:        rating,
	}, nil
}
