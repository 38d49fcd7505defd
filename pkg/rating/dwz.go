package rating

import (
	"fmt"
	"math"

	"github.com/elote-go/elote/pkg/state"
)

// DWZConfig holds the DWZ variant's class-level tunables. spec.md §9
// flags the upstream development-coefficient formula as documented
// only "in broad strokes"; this pins the simple default schedule
// spec.md §4.1.4 calls for rather than reproducing the full German
// Chess Federation tournament formula (see DESIGN.md).
type DWZConfig struct {
	// E0 is the base development coefficient (default 30).
	E0 float64
	// EMin and EMax bound the computed coefficient (default 5, 30).
	EMin, EMax float64
	// AgeBucket optionally scales the coefficient (e.g. >1 for young,
	// volatile players; 1 = no adjustment). Zero means "not provided".
	AgeBucket float64
}

// DefaultDWZConfig returns the spec-default DWZ tunables.
func DefaultDWZConfig() *DWZConfig {
	return &DWZConfig{E0: 30, EMin: 5, EMax: 30, AgeBucket: 1}
}

// DWZCompetitor implements the Deutsche Wertungszahl rating variant
// (spec.md §4.1.4): a logistic expected score identical in form to Elo,
// with an adaptive development coefficient that shrinks as the
// competitor accumulates effective match count A.
type DWZCompetitor struct {
	config        *DWZConfig
	minimumRating float64

	initialRating float64
	initialA      int

	rating float64
	a      int
}

// NewDWZCompetitor constructs a DWZ competitor with zero effective
// match count. minimumRating, when zero, defaults to
// DefaultMinimumRating; a non-zero value configures a non-default floor
// (SPEC_FULL.md §4.7's ArenaConfig.MinimumRating).
func NewDWZCompetitor(initialRating, minimumRating float64, config *DWZConfig) (*DWZCompetitor, error) {
	if config == nil {
		config = DefaultDWZConfig()
	}
	if config.EMin <= 0 || config.EMax < config.EMin {
		return nil, fmt.Errorf("%w: e_min/e_max out of order (%v, %v)", ErrInvalidParameter, config.EMin, config.EMax)
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
		warnFloorViolation("DWZCompetitor", "initial_rating", rating, floor)
		rating = floor
	}

	return &DWZCompetitor{
		config:        config,
		minimumRating: floor,
		initialRating: rating,
		rating:        rating,
	}, nil
}

func (d *DWZCompetitor) Rating() float64 { return d.rating }

// A returns the competitor's effective match count.
func (d *DWZCompetitor) A() int { return d.a }

func (d *DWZCompetitor) Kind() string { return "DWZCompetitor" }

func (d *DWZCompetitor) ExpectedScore(other Competitor) (float64, error) {
	o, ok := other.(*DWZCompetitor)
	if !ok {
		return 0, fmt.Errorf("%w: expected *DWZCompetitor, got %T", ErrTypeMismatch, other)
	}
	return expectedScoreLogistic(d.rating, o.rating, 400), nil
}

// developmentCoefficient computes E = clamp(E0 * f(n_games) * ageFactor,
// EMin, EMax), where f(n_games) = 1/(1+n_games/20) starts at 1 for a
// newcomer and decays toward 0 as match history accumulates, so E
// shrinks from around E0 toward EMin as the competitor plays more games.
func developmentCoefficient(nGames int, config *DWZConfig) float64 {
	gameFactor := 1.0 / (1.0 + float64(nGames)/20.0)
	ageFactor := config.AgeBucket
	if ageFactor <= 0 {
		ageFactor = 1.0
	}

	e := config.E0 * gameFactor * ageFactor
	if e < config.EMin {
		e = config.EMin
	}
	if e > config.EMax {
		e = config.EMax
	}
	return e
}

func (d *DWZCompetitor) Beat(other Competitor) error {
	o, ok := other.(*DWZCompetitor)
	if !ok {
		return fmt.Errorf("%w: expected *DWZCompetitor, got %T", ErrTypeMismatch, other)
	}
	d.applyOutcome(o, true, false)
	return nil
}

func (d *DWZCompetitor) LostTo(other Competitor) error {
	return other.Beat(d)
}

func (d *DWZCompetitor) Tied(other Competitor) error {
	o, ok := other.(*DWZCompetitor)
	if !ok {
		return fmt.Errorf("%w: expected *DWZCompetitor, got %T", ErrTypeMismatch, other)
	}
	d.applyOutcome(o, false, true)
	return nil
}

func (d *DWZCompetitor) applyOutcome(o *DWZCompetitor, selfWon, draw bool) {
	expectedSelf := expectedScoreLogistic(d.rating, o.rating, 400)
	expectedOther := expectedScoreLogistic(o.rating, d.rating, 400)
	selfScore, otherScore := outcomeScores(selfWon, draw)

	eSelf := developmentCoefficient(d.a, d.config)
	eOther := developmentCoefficient(o.a, o.config)

	d.rating = clampToFloor(d.rating+eSelf*(selfScore-expectedSelf), d.minimumRating)
	o.rating = clampToFloor(o.rating+eOther*(otherScore-expectedOther), o.minimumRating)

	d.a++
	o.a++
}

func (d *DWZCompetitor) Reset() {
	d.rating = d.initialRating
	d.a = d.initialA
}

func (d *DWZCompetitor) ExportState() state.Doc {
	return state.New(
		d.Kind(), nowUnix(),
		map[string]any{"initial_rating": d.initialRating, "initial_a": float64(d.initialA), "minimum_rating": d.minimumRating},
		map[string]any{"rating": d.rating, "a": float64(d.a)},
		map[string]any{"e0": d.config.E0, "e_min": d.config.EMin, "e_max": d.config.EMax, "age_bucket": d.config.AgeBucket},
		d.initialRating, d.rating,
	)
}

// FromDWZState reconstructs a DWZCompetitor from an exported state
// document.
func FromDWZState(doc state.Doc, config *DWZConfig) (*DWZCompetitor, error) {
	if err := doc.RequireKind("DWZCompetitor"); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if config == nil {
		config = DefaultDWZConfig()
	}
	if e0, ok, _ := doc.Number(doc.ClassVars, "e0", 0, false); ok {
		config.E0 = e0
	}
	if eMin, ok, _ := doc.Number(doc.ClassVars, "e_min", 0, false); ok {
		config.EMin = eMin
	}
	if eMax, ok, _ := doc.Number(doc.ClassVars, "e_max", 0, false); ok {
		config.EMax = eMax
	}
	if ageBucket, ok, _ := doc.Number(doc.ClassVars, "age_bucket", 0, false); ok {
		config.AgeBucket = ageBucket
	}

	initialRating, ok, usedFallback := doc.Number(doc.Parameters, "initial_rating", doc.InitialRating, true)
	if !ok {
		return nil, fmt.Errorf("%w: missing initial_rating", ErrInvalidState)
	}
	if usedFallback {
		warnFlattenedFallback("DWZCompetitor", "initial_rating")
	}
	initialA, _, _ := doc.Number(doc.Parameters, "initial_a", 0, false)
	rating, ok, usedFallback := doc.Number(doc.State, "rating", doc.CurrentRating, true)
	if !ok {
		return nil, fmt.Errorf("%w: missing rating", ErrInvalidState)
	}
	if usedFallback {
		warnFlattenedFallback("DWZCompetitor", "rating")
	}
	a, _, _ := doc.Number(doc.State, "a", 0, false)
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

	return &DWZCompetitor{
		config:        config,
		minimumRating: floor,
		initialRating: initialRating,
		initialA:      int(initialA),
		rating:        rating,
		a:             int(a),
	}, nil
}
