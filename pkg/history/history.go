// Package history implements the append-only bout log an Arena records
// predictions into (spec.md §4.4), generalizing the convergence and
// comparison-tracking bookkeeping confelo builds in
// pkg/elo/optimization.go (ComparisonHistory, rating progression, pair
// counts) from its conference-talk domain to the spec's generic
// left/right/draw/none bout model.
package history

import (
	"fmt"
	"math/rand"

	"github.com/elote-go/elote/pkg/rating"
)

// Outcome is the recorded result of a dispatched bout.
type Outcome int

const (
	// OutcomeNone means the oracle declined to decide.
	OutcomeNone Outcome = iota
	OutcomeLeft
	OutcomeRight
	OutcomeDraw
)

// String renders an Outcome for logging and reports.
func (o Outcome) String() string {
	switch o {
	case OutcomeLeft:
		return "LEFT"
	case OutcomeRight:
		return "RIGHT"
	case OutcomeDraw:
		return "DRAW"
	default:
		return "NONE"
	}
}

// Bout is an immutable record of one dispatched pairing (spec.md §3).
type Bout struct {
	LeftID                string
	RightID               string
	PredictedProbLeftWins float64
	Outcome               Outcome
	Attributes            map[string]any
}

// History is the arena's append-only prediction/outcome log. It is not
// safe for concurrent mutation (spec.md §5): callers running multiple
// arenas concurrently should give each its own History.
type History struct {
	bouts []Bout
}

// New returns an empty History.
func New() *History {
	return &History{}
}

// Append records a new Bout. It is never mutated after being appended.
func (h *History) Append(b Bout) {
	h.bouts = append(h.bouts, b)
}

// Bouts returns a copy of the recorded bouts, in recording order.
func (h *History) Bouts() []Bout {
	out := make([]Bout, len(h.bouts))
	copy(out, h.bouts)
	return out
}

// Len returns the number of recorded bouts.
func (h *History) Len() int {
	return len(h.bouts)
}

// Clear empties the history. Exporting arena state does not clear it;
// only an explicit call does (spec.md §3 Lifecycles).
func (h *History) Clear() {
	h.bouts = nil
}

// ConfusionMatrix holds the five-way partition of recorded predictions
// against a pair of decision thresholds (spec.md §4.4).
type ConfusionMatrix struct {
	TruePositive  int
	FalsePositive int
	TrueNegative  int
	FalseNegative int
	DoNothing     int
}

// Total returns the number of bouts the matrix accounts for.
func (cm ConfusionMatrix) Total() int {
	return cm.TruePositive + cm.FalsePositive + cm.TrueNegative + cm.FalseNegative + cm.DoNothing
}

// Accuracy returns (tp+tn)/total, or 0 when the matrix is empty.
func (cm ConfusionMatrix) Accuracy() float64 {
	total := cm.Total()
	if total == 0 {
		return 0
	}
	return float64(cm.TruePositive+cm.TrueNegative) / float64(total)
}

// ConfusionMatrix partitions the history against thresholds (lo, hi):
// p >= hi predicts LEFT wins, p <= lo predicts RIGHT wins, and anything
// between is a "do nothing". A NONE outcome is always counted as
// do_nothing regardless of the predicted probability (spec.md §4.4).
func (h *History) ConfusionMatrix(lo, hi float64) (ConfusionMatrix, error) {
	if lo < 0 || hi > 1 || lo > hi {
		return ConfusionMatrix{}, fmt.Errorf("%w: lo=%v hi=%v", rating.ErrInvalidThresholds, lo, hi)
	}

	var cm ConfusionMatrix
	for _, b := range h.bouts {
		if b.Outcome == OutcomeNone {
			cm.DoNothing++
			continue
		}

		p := b.PredictedProbLeftWins
		switch {
		case p >= hi:
			if b.Outcome == OutcomeLeft {
				cm.TruePositive++
			} else {
				cm.FalsePositive++
			}
		case p <= lo:
			if b.Outcome == OutcomeRight {
				cm.TrueNegative++
			} else {
				cm.FalseNegative++
			}
		default:
			cm.DoNothing++
		}
	}
	return cm, nil
}

// SearchResult is the best threshold pair random search found.
type SearchResult struct {
	Lo, Hi   float64
	Accuracy float64
	Matrix   ConfusionMatrix
}

// RandomSearch samples trials threshold pairs (lo, hi) uniformly from
// [0,1]^2 with lo <= hi, scores each by accuracy, and returns the best.
// It is deterministic given seed (spec.md §4.4).
func (h *History) RandomSearch(trials int, seed int64) (SearchResult, error) {
	if trials <= 0 {
		return SearchResult{}, fmt.Errorf("%w: trials must be positive, got %d", rating.ErrInvalidParameter, trials)
	}

	rng := rand.New(rand.NewSource(seed))
	best := SearchResult{Accuracy: -1}

	for i := 0; i < trials; i++ {
		lo, hi := rng.Float64(), rng.Float64()
		if lo > hi {
			lo, hi = hi, lo
		}

		cm, err := h.ConfusionMatrix(lo, hi)
		if err != nil {
			return SearchResult{}, err
		}
		if acc := cm.Accuracy(); acc > best.Accuracy {
			best = SearchResult{Lo: lo, Hi: hi, Accuracy: acc, Matrix: cm}
		}
	}
	return best, nil
}

// Report summarizes the history at the default (0.5, 0.5) thresholds.
type Report struct {
	Total    int
	Matrix   ConfusionMatrix
	Accuracy float64
}

// ReportResults returns overall counts plus accuracy at the default
// thresholds (spec.md §4.4).
func (h *History) ReportResults() Report {
	cm, _ := h.ConfusionMatrix(0.5, 0.5)
	return Report{
		Total:    h.Len(),
		Matrix:   cm,
		Accuracy: cm.Accuracy(),
	}
}
