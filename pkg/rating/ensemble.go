package rating

import (
	"fmt"
	"math"

	"github.com/elote-go/elote/pkg/state"
)

// EnsembleComponent pairs a component Competitor with its weight in the
// ensemble's weighted expected-score sum (spec.md §4.2).
type EnsembleComponent struct {
	Competitor Competitor
	Weight     float64
}

// Ensemble is a thin composition layer (spec.md §4.2): its expected
// score is the weighted sum of its components' expected scores against
// the matching component on the other side, and its mutating operations
// simply dispatch pairwise to each (self.c_i, other.c_i) pair.
type Ensemble struct {
	components []EnsembleComponent
}

// NewEnsemble validates that weights sum to 1 within tolerance and
// returns a new Ensemble. The component order is significant: Beat,
// Tied, and ExpectedScore pair components by index, and a mismatched
// variant at any index is a type error (spec.md §4.2: "Requires matched
// component variants in the same order on both sides").
func NewEnsemble(components []EnsembleComponent) (*Ensemble, error) {
	if len(components) == 0 {
		return nil, fmt.Errorf("%w: ensemble requires at least one component", ErrInvalidParameter)
	}
	total := 0.0
	for _, c := range components {
		total += c.Weight
	}
	const epsilon = 1e-9
	if math.Abs(total-1.0) > epsilon {
		return nil, fmt.Errorf("%w: component weights sum to %v, want 1", ErrInvalidParameter, total)
	}
	return &Ensemble{components: components}, nil
}

func (e *Ensemble) Rating() float64 {
	total := 0.0
	for _, c := range e.components {
		total += c.Weight * c.Competitor.Rating()
	}
	return total
}

func (e *Ensemble) Kind() string { return "Ensemble" }

func (e *Ensemble) ExpectedScore(other Competitor) (float64, error) {
	o, ok := other.(*Ensemble)
	if !ok {
		return 0, fmt.Errorf("%w: expected *Ensemble, got %T", ErrTypeMismatch, other)
	}
	if len(o.components) != len(e.components) {
		return 0, fmt.Errorf("%w: ensembles have %d and %d components", ErrTypeMismatch, len(e.components), len(o.components))
	}

	total := 0.0
	for i, c := range e.components {
		score, err := c.Competitor.ExpectedScore(o.components[i].Competitor)
		if err != nil {
			return 0, fmt.Errorf("component %d: %w", i, err)
		}
		total += c.Weight * score
	}
	return total, nil
}

func (e *Ensemble) Beat(other Competitor) error {
	return e.dispatch(other, func(self, opp Competitor) error { return self.Beat(opp) })
}

func (e *Ensemble) LostTo(other Competitor) error {
	return e.dispatch(other, func(self, opp Competitor) error { return self.LostTo(opp) })
}

func (e *Ensemble) Tied(other Competitor) error {
	return e.dispatch(other, func(self, opp Competitor) error { return self.Tied(opp) })
}

func (e *Ensemble) dispatch(other Competitor, apply func(self, opp Competitor) error) error {
	o, ok := other.(*Ensemble)
	if !ok {
		return fmt.Errorf("%w: expected *Ensemble, got %T", ErrTypeMismatch, other)
	}
	if len(o.components) != len(e.components) {
		return fmt.Errorf("%w: ensembles have %d and %d components", ErrTypeMismatch, len(e.components), len(o.components))
	}
	for i, c := range e.components {
		if err := apply(c.Competitor, o.components[i].Competitor); err != nil {
			return fmt.Errorf("component %d: %w", i, err)
		}
	}
	return nil
}

func (e *Ensemble) Reset() {
	for _, c := range e.components {
		c.Competitor.Reset()
	}
}

// ExportState serializes each component's state document under a
// "components" array; round-tripping an ensemble is the caller's
// responsibility (reconstruct each component's concrete variant, then
// NewEnsemble), since the ensemble itself carries no kind-specific
// constructor in the state codec (spec.md §4.2 treats it as a
// composition layer, not a fifth competitor kind).
func (e *Ensemble) ExportState() state.Doc {
	docs := make([]any, len(e.components))
	weights := make([]any, len(e.components))
	for i, c := range e.components {
		docs[i] = c.Competitor.ExportState()
		weights[i] = c.Weight
	}
	return state.New(
		e.Kind(), nowUnix(),
		map[string]any{"weights": weights},
		map[string]any{"components": docs},
		map[string]any{},
		0, e.Rating(),
	)
}
