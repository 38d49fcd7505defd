package rating

import (
	"fmt"
	"math"

	"github.com/elote-go/elote/pkg/state"
)

// ECFConfig holds the ECF variant's class-level tunables. spec.md §9
// flags the upstream window size and reward magnitude as
// under-specified across docstrings and pins them here as explicit
// configuration: NPeriod (window size), WinDelta/DrawDelta (the
// English Chess Federation-style per-game reward), and F (the linear
// expected-score spread).
type ECFConfig struct {
	NPeriod   int
	WinDelta  float64
	DrawDelta float64
	F         float64
}

// DefaultECFConfig returns the spec-default ECF tunables (spec.md
// §4.1.3 / §8 scenario S4).
func DefaultECFConfig() *ECFConfig {
	return &ECFConfig{NPeriod: 30, WinDelta: 50, DrawDelta: 0, F: 120}
}

// ECFCompetitor tracks a bounded FIFO window of recent
// opponent-rating-plus-outcome values; after each bout its rating is the
// mean of that window, clamped to the floor (spec.md §4.1.3). Before any
// bout, and after Reset, the window is empty and the rating is the
// initial rating.
type ECFCompetitor struct {
	config        *ECFConfig
	minimumRating float64
	initialRating float64
	rating        float64
	window        []float64
}

// NewECFCompetitor constructs an ECF competitor with an empty window.
// minimumRating, when zero, defaults to DefaultMinimumRating; a
// non-zero value configures a non-default floor (SPEC_FULL.md §4.7's
// ArenaConfig.MinimumRating).
func NewECFCompetitor(initialRating, minimumRating float64, config *ECFConfig) (*ECFCompetitor, error) {
	if config == nil {
		config = DefaultECFConfig()
	}
	if config.NPeriod <= 0 {
		return nil, fmt.Errorf("%w: n_period must be positive, got %d", ErrInvalidParameter, config.NPeriod)
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
		warnFloorViolation("ECFCompetitor", "initial_rating", rating, floor)
		rating = floor
	}

	return &ECFCompetitor{
		config:        config,
		minimumRating: floor,
		initialRating: rating,
		rating:        rating,
		window:        make([]float64, 0, config.NPeriod),
	}, nil
}

func (e *ECFCompetitor) Rating() float64 { return e.rating }

func (e *ECFCompetitor) Kind() string { return "ECFCompetitor" }

func (e *ECFCompetitor) ExpectedScore(other Competitor) (float64, error) {
	o, ok := other.(*ECFCompetitor)
	if !ok {
		return 0, fmt.Errorf("%w: expected *ECFCompetitor, got %T", ErrTypeMismatch, other)
	}
	expected := 0.5 + (e.rating-o.rating)/e.config.F
	return clampUnit(expected), nil
}

// clampUnit clamps a value to [0, 1], per spec.md §4.1.3.
func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func (e *ECFCompetitor) Beat(other Competitor) error {
	o, ok := other.(*ECFCompetitor)
	if !ok {
		return fmt.Errorf("%w: expected *ECFCompetitor, got %T", ErrTypeMismatch, other)
	}
	e.applyOutcome(o, true, false)
	return nil
}

func (e *ECFCompetitor) LostTo(other Competitor) error {
	return other.Beat(e)
}

func (e *ECFCompetitor) Tied(other Competitor) error {
	o, ok := other.(*ECFCompetitor)
	if !ok {
		return fmt.Errorf("%w: expected *ECFCompetitor, got %T", ErrTypeMismatch, other)
	}
	e.applyOutcome(o, false, true)
	return nil
}

// ecfDelta returns the per-game reward added to the opponent's rating
// to produce a window entry: +WinDelta on a win, 0 (DrawDelta) on a
// draw, -WinDelta on a loss.
func ecfDelta(won, draw bool, winDelta, drawDelta float64) float64 {
	switch {
	case draw:
		return drawDelta
	case won:
		return winDelta
	default:
		return -winDelta
	}
}

func (e *ECFCompetitor) applyOutcome(o *ECFCompetitor, selfWon, draw bool) {
	selfRatingBefore := e.rating
	otherRatingBefore := o.rating
	otherWon := !selfWon && !draw

	e.pushWindow(otherRatingBefore + ecfDelta(selfWon, draw, e.config.WinDelta, e.config.DrawDelta))
	o.pushWindow(selfRatingBefore + ecfDelta(otherWon, draw, o.config.WinDelta, o.config.DrawDelta))

	e.rating = clampToFloor(mean(e.window), e.minimumRating)
	o.rating = clampToFloor(mean(o.window), o.minimumRating)
}

func (e *ECFCompetitor) pushWindow(value float64) {
	e.window = append(e.window, value)
	if len(e.window) > e.config.NPeriod {
		e.window = e.window[len(e.window)-e.config.NPeriod:]
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

func (e *ECFCompetitor) Reset() {
	e.rating = e.initialRating
	e.window = e.window[:0]
}

func (e *ECFCompetitor) ExportState() state.Doc {
	windowCopy := make([]float64, len(e.window))
	copy(windowCopy, e.window)
	return state.New(
		e.Kind(), nowUnix(),
		map[string]any{"initial_rating": e.initialRating, "minimum_rating": e.minimumRating},
		map[string]any{"rating": e.rating, "window": windowCopy},
		map[string]any{"n_period": float64(e.config.NPeriod), "win_delta": e.config.WinDelta, "draw_delta": e.config.DrawDelta, "f": e.config.F},
		e.initialRating, e.rating,
	)
}

// FromECFState reconstructs an ECFCompetitor from an exported state
// document.
func FromECFState(doc state.Doc, config *ECFConfig) (*ECFCompetitor, error) {
	if err := doc.RequireKind("ECFCompetitor"); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if config == nil {
		config = DefaultECFConfig()
	}
	if nPeriod, ok, _ := doc.Number(doc.ClassVars, "n_period", 0, false); ok {
		config.NPeriod = int(nPeriod)
	}
	if winDelta, ok, _ := doc.Number(doc.ClassVars, "win_delta", 0, false); ok {
		config.WinDelta = winDelta
	}
	if drawDelta, ok, _ := doc.Number(doc.ClassVars, "draw_delta", 0, false); ok {
		config.DrawDelta = drawDelta
	}
	if f, ok, _ := doc.Number(doc.ClassVars, "f", 0, false); ok {
		config.F = f
	}

	initialRating, ok, usedFallback := doc.Number(doc.Parameters, "initial_rating", doc.InitialRating, true)
	if !ok {
		return nil, fmt.Errorf("%w: missing initial_rating", ErrInvalidState)
	}
	if usedFallback {
		warnFlattenedFallback("ECFCompetitor", "initial_rating")
	}
	rating, ok, usedFallback := doc.Number(doc.State, "rating", doc.CurrentRating, true)
	if !ok {
		return nil, fmt.Errorf("%w: missing rating", ErrInvalidState)
	}
	if usedFallback {
		warnFlattenedFallback("ECFCompetitor", "rating")
	}
	window, _ := doc.Floats(doc.State, "window")
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

	return &ECFCompetitor{
		config:        config,
		minimumRating: floor,
		initialRating: initialRating,
		rating:        rating,
		window:        window,
	}, nil
}
