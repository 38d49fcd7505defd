// Package arena implements the pairwise-bout dispatcher (spec.md §4.5):
// it maps opaque identifiers to lazily-created competitors of one
// configured rating variant, drives a sequence of bouts through a
// caller-supplied oracle, records each prediction into a History, and
// exposes a leaderboard and state export. Grounded on confelo's
// Engine/MultiWayComparison dispatch pattern (pkg/elo/engine.go,
// pkg/elo/comparison.go) and its session-level class-variable mutation
// idiom (pkg/data/config.go), generalized from a single Elo-only
// conference-talk ranking flow to spec.md's four interchangeable
// variants.
package arena

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/elote-go/elote/pkg/history"
	"github.com/elote-go/elote/pkg/rating"
	"github.com/elote-go/elote/pkg/state"
)

// Variant names the rating algorithm an Arena dispatches every lazily
// created competitor to. Values match the state document "type" tags
// (spec.md §6.1).
type Variant string

const (
	VariantElo    Variant = "EloCompetitor"
	VariantGlicko Variant = "GlickoCompetitor"
	VariantECF    Variant = "ECFCompetitor"
	VariantDWZ    Variant = "DWZCompetitor"
)

// Oracle decides the outcome of a bout between leftID and rightID,
// optionally consulting attributes. A nil result means the oracle
// declined to decide (spec.md §6.2's Option<bool> None case); a
// non-nil *true means left won, *false means right won.
type Oracle func(leftID, rightID string, attributes map[string]any) *bool

// Matchup is one entry of a tournament sequence (spec.md §4.5).
type Matchup struct {
	LeftID     string
	RightID    string
	Attributes map[string]any
}

// LeaderboardEntry is one row of Arena.Leaderboard (spec.md §6.3).
type LeaderboardEntry struct {
	ID     string
	Rating float64
	// RD is non-nil only for Glicko competitors.
	RD *float64
}

// Arena is the bout dispatcher (spec.md's "LambdaArena"). It owns every
// competitor it lazily creates, plus the bout History. An Arena is not
// safe for concurrent mutation (spec.md §5); run independent arenas
// concurrently instead of sharing one.
type Arena struct {
	variant Variant
	oracle  Oracle

	initialRating float64
	initialRD     float64
	minimumRating float64

	eloConfig    *rating.EloConfig
	glickoConfig *rating.GlickoConfig
	ecfConfig    *rating.ECFConfig
	dwzConfig    *rating.DWZConfig

	// treatNoneAsDraw selects the arena's policy for an oracle's
	// indeterminate result: the spec.md default is to skip mutation and
	// record OutcomeNone; setting this calls Tied instead.
	treatNoneAsDraw bool

	competitors map[string]rating.Competitor
	history     *history.History

	logger   logrus.FieldLogger
	auditLog *AuditLog
}

// New constructs an Arena dispatching to variant, using config's
// per-variant tunables and construction defaults (spec.md §4.5
// "base_competitor_kwargs").
func New(variant Variant, oracle Oracle, config Config) (*Arena, error) {
	if oracle == nil {
		return nil, fmt.Errorf("%w: oracle is required", rating.ErrInvalidParameter)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if Variant(config.Variant) != variant {
		config.Variant = string(variant)
	}

	eloConfig := config.Elo
	glickoConfig := config.Glicko
	ecfConfig := config.ECF
	dwzConfig := config.DWZ

	return &Arena{
		variant:         variant,
		oracle:          oracle,
		initialRating:   config.InitialRating,
		initialRD:       config.InitialRD,
		minimumRating:   config.MinimumRating,
		eloConfig:       &eloConfig,
		glickoConfig:    &glickoConfig,
		ecfConfig:       &ecfConfig,
		dwzConfig:       &dwzConfig,
		competitors:     make(map[string]rating.Competitor),
		history:         history.New(),
		logger:          logrus.StandardLogger(),
	}, nil
}

// WithDrawAsTie configures how the arena handles an oracle's
// indeterminate (nil) result: when enabled, Tournament calls
// a.Tied(b) instead of recording a no-mutation OutcomeNone bout.
func (a *Arena) WithDrawAsTie(enabled bool) *Arena {
	a.treatNoneAsDraw = enabled
	return a
}

// SetLogger replaces the arena's structured warning channel.
func (a *Arena) SetLogger(l logrus.FieldLogger) *Arena {
	if l != nil {
		a.logger = l
	}
	return a
}

// WithAuditLog attaches a tamper-evident audit log (SPEC_FULL.md §8.1)
// recording every bout and class-variable mutation. Purely additive:
// an Arena behaves identically with or without one attached.
func (a *Arena) WithAuditLog(log *AuditLog) *Arena {
	a.auditLog = log
	return a
}

// History returns the arena's bout history.
func (a *Arena) History() *history.History {
	return a.history
}

// getOrCreate returns the competitor for id, lazily constructing one of
// the arena's configured variant using its base kwargs if this is the
// first reference (spec.md invariant 7: the map only grows by lazy
// creation).
func (a *Arena) getOrCreate(id string) (rating.Competitor, error) {
	if c, ok := a.competitors[id]; ok {
		return c, nil
	}

	var (
		c   rating.Competitor
		err error
	)
	switch a.variant {
	case VariantElo:
		c, err = rating.NewEloCompetitor(a.initialRating, a.minimumRating, a.eloConfig)
	case VariantGlicko:
		c, err = rating.NewGlickoCompetitor(a.initialRating, a.initialRD, a.minimumRating, a.glickoConfig)
	case VariantECF:
		c, err = rating.NewECFCompetitor(a.initialRating, a.minimumRating, a.ecfConfig)
	case VariantDWZ:
		c, err = rating.NewDWZCompetitor(a.initialRating, a.minimumRating, a.dwzConfig)
	default:
		return nil, fmt.Errorf("%w: unknown variant %q", rating.ErrInvalidParameter, a.variant)
	}
	if err != nil {
		return nil, err
	}

	a.competitors[id] = c
	if a.auditLog != nil {
		_ = a.auditLog.Record(EventCompetitorAdded, map[string]any{"id": id, "variant": string(a.variant)})
	}
	return c, nil
}

// Tournament dispatches each matchup in order (spec.md §5: "tournament
// processes bouts strictly in the order supplied"). For each matchup it:
//  1. lazily creates either side's competitor if absent;
//  2. computes the pre-mutation expected score of left over right;
//  3. consults the oracle and applies Beat/Tied accordingly;
//  4. appends a Bout record to the History.
func (a *Arena) Tournament(matchups []Matchup) error {
	for _, m := range matchups {
		if err := a.dispatch(m); err != nil {
			return err
		}
	}
	return nil
}

func (a *Arena) dispatch(m Matchup) error {
	left, err := a.getOrCreate(m.LeftID)
	if err != nil {
		return err
	}
	right, err := a.getOrCreate(m.RightID)
	if err != nil {
		return err
	}

	predicted, err := left.ExpectedScore(right)
	if err != nil {
		return err
	}

	result := a.oracle(m.LeftID, m.RightID, m.Attributes)
	var outcome history.Outcome

	switch {
	case result == nil:
		if a.treatNoneAsDraw {
			if err := left.Tied(right); err != nil {
				return err
			}
			outcome = history.OutcomeDraw
		} else {
			outcome = history.OutcomeNone
		}
	case *result:
		if err := left.Beat(right); err != nil {
			return err
		}
		outcome = history.OutcomeLeft
	default:
		if err := right.Beat(left); err != nil {
			return err
		}
		outcome = history.OutcomeRight
	}

	bout := history.Bout{
		LeftID:                m.LeftID,
		RightID:               m.RightID,
		PredictedProbLeftWins: predicted,
		Outcome:               outcome,
		Attributes:            m.Attributes,
	}
	a.history.Append(bout)

	if a.auditLog != nil {
		_ = a.auditLog.Record(EventBoutRecorded, map[string]any{
			"left_id": m.LeftID, "right_id": m.RightID,
			"predicted": predicted, "outcome": outcome.String(),
		})
	}
	return nil
}

// Leaderboard returns every known competitor sorted descending by
// rating, ties broken by identifier (spec.md §4.5, §6.3).
func (a *Arena) Leaderboard() []LeaderboardEntry {
	entries := make([]LeaderboardEntry, 0, len(a.competitors))
	for id, c := range a.competitors {
		entry := LeaderboardEntry{ID: id, Rating: c.Rating()}
		if g, ok := c.(*rating.GlickoCompetitor); ok {
			rd := g.RD()
			entry.RD = &rd
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Rating != entries[j].Rating {
			return entries[i].Rating > entries[j].Rating
		}
		return entries[i].ID < entries[j].ID
	})
	return entries
}

// ExportState returns every competitor's state document, keyed by
// identifier (spec.md §4.5). Exporting never clears the History.
func (a *Arena) ExportState() map[string]state.Doc {
	out := make(map[string]state.Doc, len(a.competitors))
	for id, c := range a.competitors {
		out[id] = c.ExportState()
	}
	return out
}

// ClearHistory empties the bout history. It is the only way the
// history is ever cleared (spec.md §3 Lifecycles).
func (a *Arena) ClearHistory() {
	if a.auditLog != nil {
		_ = a.auditLog.Record(EventHistoryCleared, map[string]any{"bouts_cleared": a.history.Len()})
	}
	a.history.Clear()
}

// SetCompetitorClassVar mutates a class-level tunable shared by every
// competitor of the arena's configured variant, past and future
// (spec.md §4.5, §9's per-instance-config-with-arena-setter design):
// since every competitor constructed by this arena shares the same
// config pointer, mutating the pointee here is immediately visible to
// every live competitor.
func (a *Arena) SetCompetitorClassVar(name string, value float64) error {
	var old float64
	switch a.variant {
	case VariantElo:
		switch name {
		case "k_factor":
			old, a.eloConfig.KFactor = a.eloConfig.KFactor, value
		default:
			return a.unknownClassVar(name)
		}
	case VariantGlicko:
		switch name {
		case "c":
			old, a.glickoConfig.C = a.glickoConfig.C, value
		case "max_rd":
			old, a.glickoConfig.MaxRD = a.glickoConfig.MaxRD, value
		default:
			return a.unknownClassVar(name)
		}
	case VariantECF:
		switch name {
		case "n_period":
			old, a.ecfConfig.NPeriod = float64(a.ecfConfig.NPeriod), int(value)
		case "win_delta":
			old, a.ecfConfig.WinDelta = a.ecfConfig.WinDelta, value
		case "draw_delta":
			old, a.ecfConfig.DrawDelta = a.ecfConfig.DrawDelta, value
		case "f":
			old, a.ecfConfig.F = a.ecfConfig.F, value
		default:
			return a.unknownClassVar(name)
		}
	case VariantDWZ:
		switch name {
		case "e0":
			old, a.dwzConfig.E0 = a.dwzConfig.E0, value
		case "e_min":
			old, a.dwzConfig.EMin = a.dwzConfig.EMin, value
		case "e_max":
			old, a.dwzConfig.EMax = a.dwzConfig.EMax, value
		case "age_bucket":
			old, a.dwzConfig.AgeBucket = a.dwzConfig.AgeBucket, value
		default:
			return a.unknownClassVar(name)
		}
	default:
		return fmt.Errorf("%w: unknown variant %q", rating.ErrInvalidParameter, a.variant)
	}

	a.logger.WithFields(logrus.Fields{
		"kind": string(a.variant), "var": name, "old": old, "new": value,
	}).Warn("competitor class variable mutated")

	if a.auditLog != nil {
		_ = a.auditLog.Record(EventClassVarChanged, map[string]any{
			"kind": string(a.variant), "var": name, "old": old, "new": value,
		})
	}
	return nil
}

func (a *Arena) unknownClassVar(name string) error {
	return fmt.Errorf("%w: %s has no class variable %q", rating.ErrInvalidParameter, a.variant, name)
}
