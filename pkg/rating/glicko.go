package rating

import (
	"fmt"
	"math"

	"github.com/elote-go/elote/pkg/state"
)

// GlickoConfig holds the Glicko-1 variant's class-level tunables
// (spec.md §3: "c (decay), q = ln(10)/400").
type GlickoConfig struct {
	// C is the inactivity-decay rate constant used by Decay.
	C float64
	// MaxRD is the ceiling rating deviation can decay or be clamped to
	// (spec.md §4.1.2: RD_max = 350).
	MaxRD float64
}

// DefaultGlickoConfig returns the spec-default Glicko tunables.
func DefaultGlickoConfig() *GlickoConfig {
	return &GlickoConfig{C: 34.6, MaxRD: 350}
}

// glickoQ is Glicko-1's fixed scale constant, q = ln(10)/400.
var glickoQ = math.Log(10) / 400

// GlickoCompetitor is the Glicko-1 per-game rating variant (spec.md
// §4.1.2). Unlike Elo, each competitor carries an explicit rating
// deviation (RD) alongside the rating itself.
type GlickoCompetitor struct {
	config        *GlickoConfig
	minimumRating float64

	initialRating float64
	initialRD     float64

	rating float64
	rd     float64

	// lastActivity is an opaque counter (e.g. rating-period index) that
	// Decay advances by each deltaTime it is given; it is exported and
	// restored with the state but no update reads it. spec.md §3 lists
	// it as optional per-variant state.
	lastActivity float64
}

// NewGlickoCompetitor constructs a Glicko-1 competitor with the given
// initial rating and rating deviation. rd defaults to 350 (spec.md §3)
// when zero is passed. minimumRating, when zero, defaults to
// DefaultMinimumRating; a non-zero value configures a non-default floor
// (SPEC_FULL.md §4.7's ArenaConfig.MinimumRating).
func NewGlickoCompetitor(initialRating, rd, minimumRating float64, config *GlickoConfig) (*GlickoCompetitor, error) {
	if config == nil {
		config = DefaultGlickoConfig()
	}
	if math.IsNaN(initialRating) || math.IsInf(initialRating, 0) {
		return nil, fmt.Errorf("%w: initial rating must be finite", ErrInvalidParameter)
	}
	if rd == 0 {
		rd = 350
	}
	if math.IsNaN(rd) || rd <= 0 {
		return nil, fmt.Errorf("%w: rd must be a positive finite number", ErrInvalidParameter)
	}
	if rd > config.MaxRD {
		rd = config.MaxRD
	}

	floor := minimumRating
	if floor == 0 {
		floor = DefaultMinimumRating
	}
	rating := initialRating
	if rating < floor {
		warnFloorViolation("GlickoCompetitor", "initial_rating", rating, floor)
		rating = floor
	}

	return &GlickoCompetitor{
		config:        config,
		minimumRating: floor,
		initialRating: rating,
		initialRD:     rd,
		rating:        rating,
		rd:            rd,
	}, nil
}

func (g *GlickoCompetitor) Rating() float64 { return g.rating }

// RD returns the current rating deviation, exposed for leaderboard
// reporting (spec.md §6.3: "plus variant-specific fields... rd").
func (g *GlickoCompetitor) RD() float64 { return g.rd }

func (g *GlickoCompetitor) Kind() string { return "GlickoCompetitor" }

// gFunction is Glicko-1's rating-deviation attenuation function:
// g(RD) = 1 / sqrt(1 + 3 q^2 RD^2 / pi^2).
func gFunction(rd float64) float64 {
	return 1 / math.Sqrt(1+3*glickoQ*glickoQ*rd*rd/(math.Pi*math.Pi))
}

func (g *GlickoCompetitor) ExpectedScore(other Competitor) (float64, error) {
	o, ok := other.(*GlickoCompetitor)
	if !ok {
		return 0, fmt.Errorf("%w: expected *GlickoCompetitor, got %T", ErrTypeMismatch, other)
	}
	return glickoExpected(g.rating, o.rating, o.rd), nil
}

// glickoExpected computes E(a,b) = 1 / (1 + 10^(-g(RD_b)*(r_a-r_b)/400)).
func glickoExpected(ratingA, ratingB, rdB float64) float64 {
	return 1 / (1 + math.Pow(10, -gFunction(rdB)*(ratingA-ratingB)/400))
}

func (g *GlickoCompetitor) Beat(other Competitor) error {
	o, ok := other.(*GlickoCompetitor)
	if !ok {
		return fmt.Errorf("%w: expected *GlickoCompetitor, got %T", ErrTypeMismatch, other)
	}
	g.applyOutcome(o, true, false)
	return nil
}

func (g *GlickoCompetitor) LostTo(other Competitor) error {
	return other.Beat(g)
}

func (g *GlickoCompetitor) Tied(other Competitor) error {
	o, ok := other.(*GlickoCompetitor)
	if !ok {
		return fmt.Errorf("%w: expected *GlickoCompetitor, got %T", ErrTypeMismatch, other)
	}
	g.applyOutcome(o, false, true)
	return nil
}

// applyOutcome implements spec.md §4.1.2's closed-form Glicko-1 update,
// performed twice (once from each side's point of view) so both ratings
// move using the opponent's pre-bout RD.
func (g *GlickoCompetitor) applyOutcome(o *GlickoCompetitor, selfWon, draw bool) {
	selfScore, otherScore := outcomeScores(selfWon, draw)

	newRating, newRD := glickoUpdate(g.rating, g.rd, o.rating, o.rd, selfScore)
	newORating, newORD := glickoUpdate(o.rating, o.rd, g.rating, g.rd, otherScore)

	g.rating = clampToFloor(newRating, g.minimumRating)
	g.rd = newRD
	o.rating = clampToFloor(newORating, o.minimumRating)
	o.rd = newORD
}

// glickoUpdate computes a single side's post-bout (rating, rd) from its
// pre-bout values, the opponent's pre-bout (rating, rd), and the actual
// score obtained.
func glickoUpdate(rating, rd, oppRating, oppRD, score float64) (newRating, newRD float64) {
	gOpp := gFunction(oppRD)
	expected := glickoExpected(rating, oppRating, oppRD)

	dSquared := 1 / (glickoQ * glickoQ * gOpp * gOpp * expected * (1 - expected))

	newRating = rating + (glickoQ/(1/(rd*rd)+1/dSquared))*gOpp*(score-expected)
	newRD = math.Sqrt(1 / (1/(rd*rd) + 1/dSquared))
	return newRating, newRD
}

// Decay applies Glicko-1's inactivity rating-deviation growth (spec.md
// §4.1.2): RD <- min(sqrt(RD^2 + c^2*deltaTime), RD_max). It is never
// invoked implicitly by Beat or Tied (spec.md §9 design note).
func (g *GlickoCompetitor) Decay(deltaTime float64) {
	grown := math.Sqrt(g.rd*g.rd + g.config.C*g.config.C*deltaTime)
	if grown > g.config.MaxRD {
		grown = g.config.MaxRD
	}
	g.rd = grown
	g.lastActivity += deltaTime
}

func (g *GlickoCompetitor) Reset() {
	g.rating = g.initialRating
	g.rd = g.initialRD
	g.lastActivity = 0
}

func (g *GlickoCompetitor) ExportState() state.Doc {
	return state.New(
		g.Kind(), nowUnix(),
		map[string]any{"initial_rating": g.initialRating, "initial_rd": g.initialRD, "minimum_rating": g.minimumRating},
		map[string]any{"rating": g.rating, "rd": g.rd, "last_activity": g.lastActivity},
		map[string]any{"c": g.config.C, "max_rd": g.config.MaxRD},
		g.initialRating, g.rating,
	)
}

// FromGlickoState reconstructs a GlickoCompetitor from an exported state
// document, rejecting a mismatched type or a sub-floor rating (spec.md
// §7, §8 test 7).
func FromGlickoState(doc state.Doc, config *GlickoConfig) (*GlickoCompetitor, error) {
	if err := doc.RequireKind("GlickoCompetitor"); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if config == nil {
		config = DefaultGlickoConfig()
	}
	if c, ok, _ := doc.Number(doc.ClassVars, "c", 0, false); ok {
		config.C = c
	}
	if maxRD, ok, _ := doc.Number(doc.ClassVars, "max_rd", 0, false); ok {
		config.MaxRD = maxRD
	}

	initialRating, ok, usedFallback := doc.Number(doc.Parameters, "initial_rating", doc.InitialRating, true)
	if !ok {
		return nil, fmt.Errorf("%w: missing initial_rating", ErrInvalidState)
	}
	if usedFallback {
		warnFlattenedFallback("GlickoCompetitor", "initial_rating")
	}
	initialRD, ok, _ := doc.Number(doc.Parameters, "initial_rd", 0, false)
	if !ok {
		initialRD = 350
	}
	rating, ok, usedFallback := doc.Number(doc.State, "rating", doc.CurrentRating, true)
	if !ok {
		return nil, fmt.Errorf("%w: missing rating", ErrInvalidState)
	}
	if usedFallback {
		warnFlattenedFallback("GlickoCompetitor", "rating")
	}
	rd, ok, _ := doc.Number(doc.State, "rd", 0, false)
	if !ok {
		rd = initialRD
	}
	lastActivity, _, _ := doc.Number(doc.State, "last_activity", 0, false)
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
	if rd <= 0 || rd > 350 {
		return nil, fmt.Errorf("%w: rd %v outside (0, 350]", ErrInvalidState, rd)
	}

	return &GlickoCompetitor{
		config:        config,
		minimumRating: floor,
		initialRating: initialRating,
		initialRD:     initialRD,
		rating:        rating,
		rd:            rd,
		lastActivity:  lastActivity,
	}, nil
}
