// Package state implements the self-describing, cross-type-rejecting
// state document used to serialize a rating competitor. It mirrors the
// JSON session persistence confelo builds in pkg/data/config.go and
// pkg/data/storage.go (yaml/json struct tags, atomic writes), adapted to
// the single-record, kind-tagged document spec.md §6.1 describes.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
)

// Version is the only state document version this codec understands.
const Version = 1

// Error types surfaced by the codec. Each rating.FromXState constructor
// (FromEloState, FromGlickoState, ...) wraps these into
// the library's own typed error taxonomy (rating.ErrInvalidState) so
// callers of pkg/rating never need to import pkg/state's errors
// directly.
var (
	ErrKindMismatch  = errors.New("state document type does not match receiver")
	ErrMissingField  = errors.New("state document missing required field")
	ErrUnsupportedVersion = errors.New("state document version unsupported")
)

// Doc is the self-describing record produced by Competitor.ExportState
// and consumed by each variant's FromXState constructor. Parameters,
// State, and ClassVars hold the structured fields; InitialRating and
// CurrentRating are the flattened backward-compatibility mirrors spec.md
// §6.1 requires the encoder to also emit.
type Doc struct {
	Type      string         `json:"type"`
	Version   int            `json:"version"`
	CreatedAt int64          `json:"created_at"`
	ID        string         `json:"id"`
	Parameters map[string]any `json:"parameters"`
	State      map[string]any `json:"state"`
	ClassVars  map[string]any `json:"class_vars"`

	// Flattened mirrors, for backward compatibility (spec.md §6.1).
	InitialRating float64 `json:"initial_rating"`
	CurrentRating float64 `json:"current_rating"`
}

// New builds a Doc for the given variant kind. createdAt is accepted as
// a parameter (rather than computed with time.Now) so callers with
// deterministic test fixtures can pin it; production callers pass
// time.Now().Unix().
func New(kind string, createdAt int64, parameters, state, classVars map[string]any, initialRating, currentRating float64) Doc {
	return Doc{
		Type:          kind,
		Version:       Version,
		CreatedAt:     createdAt,
		ID:            uuid.NewString(),
		Parameters:    parameters,
		State:         state,
		ClassVars:     classVars,
		InitialRating: initialRating,
		CurrentRating: currentRating,
	}
}

// RequireKind fails with ErrKindMismatch if the document's Type does not
// match kind. Every FromXState constructor calls this first, before
// touching any other field, per spec.md invariant 6.
func (d Doc) RequireKind(kind string) error {
	if d.Type != kind {
		return fmt.Errorf("%w: document is %q, expected %q", ErrKindMismatch, d.Type, kind)
	}
	return nil
}

// Number reads a float64 field from a structured section (Parameters,
// State, or ClassVars), falling back to a flattened top-level value
// when the structured field is absent — spec.md §6.1: "Decoder MUST
// prefer structured fields; if absent, fall back to flattened." The
// third return reports whether the flattened fallback was actually
// used, so a caller that cares (e.g. a FromXState constructor logging
// SPEC_FULL.md §4.8's fallback-usage warning) can tell a structured hit
// apart from a backward-compatibility one.
func (d Doc) Number(section map[string]any, key string, flattened float64, haveFlattened bool) (value float64, ok bool, usedFallback bool) {
	if section != nil {
		if raw, ok := section[key]; ok {
			if f, ok := toFloat(raw); ok {
				return f, true, false
			}
		}
	}
	if haveFlattened {
		return flattened, true, true
	}
	return 0, false, false
}

// String reads a string field from a structured section, with no
// flattened fallback (spec.md only flattens the two rating fields).
func (d Doc) String(section map[string]any, key string) (string, bool) {
	if section == nil {
		return "", false
	}
	raw, ok := section[key]
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	return s, ok
}

// Floats reads a float64 slice field from a structured section, used by
// variants that carry a bounded window of historical values (e.g. ECF's
// opponent-rating window).
func (d Doc) Floats(section map[string]any, key string) ([]float64, bool) {
	if section == nil {
		return nil, false
	}
	raw, ok := section[key]
	if !ok {
		return nil, false
	}
	items, ok := raw.([]any)
	if !ok {
		if floats, ok := raw.([]float64); ok {
			return floats, true
		}
		return nil, false
	}
	out := make([]float64, 0, len(items))
	for _, item := range items {
		f, ok := toFloat(item)
		if !ok {
			return nil, false
		}
		out = append(out, f)
	}
	return out, true
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

// Encode serializes the document as bit-stable JSON (spec.md §6.1).
func (d Doc) Encode() ([]byte, error) {
	return json.Marshal(d)
}

// Decode parses a JSON state document.
func Decode(data []byte) (Doc, error) {
	var d Doc
	if err := json.Unmarshal(data, &d); err != nil {
		return Doc{}, fmt.Errorf("%w: %v", ErrMissingField, err)
	}
	if d.Type == "" {
		return Doc{}, fmt.Errorf("%w: missing type", ErrMissingField)
	}
	if d.Version == 0 {
		d.Version = Version
	}
	if d.Version != Version {
		return Doc{}, fmt.Errorf("%w: got version %d", ErrUnsupportedVersion, d.Version)
	}
	return d, nil
}

// Save writes the document to filename, following confelo's atomic
// write-then-rename pattern (pkg/data/storage.go saveSessionAtomic) so a
// crash mid-write never leaves a truncated state document on disk.
func Save(d Doc, filename string) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state document: %w", err)
	}

	tempFile := filename + ".tmp"
	if err := os.WriteFile(tempFile, data, 0o644); err != nil {
		return fmt.Errorf("write temp state document: %w", err)
	}
	if err := os.Rename(tempFile, filename); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("atomic rename state document: %w", err)
	}
	return nil
}

// Load reads and decodes a state document from filename.
func Load(filename string) (Doc, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Doc{}, fmt.Errorf("read state document: %w", err)
	}
	return Decode(data)
}
