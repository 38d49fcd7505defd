package rating

import "github.com/sirupsen/logrus"

// logger is the package-level warning channel described in SPEC_FULL.md
// §4.8. It is deliberately package-global rather than threaded through
// every constructor: competitors built directly by a caller (outside an
// Arena) still need somewhere to surface a caller-supplied floor
// violation, and a logger is not part of any variant's exported state.
var logger logrus.FieldLogger = logrus.StandardLogger()

// SetLogger replaces the warning channel used by direct competitor
// construction and state-document decoding. It does not change the
// logger an Arena uses for its own warnings: arena.New starts each Arena
// on logrus.StandardLogger(), replaceable with Arena.SetLogger.
func SetLogger(l logrus.FieldLogger) {
	if l == nil {
		l = logrus.StandardLogger()
	}
	logger = l
}

// warnFloorViolation logs a caller-supplied rating-like value that was
// clamped to the floor. Internal numeric updates never call this —
// only the New*Competitor constructors do, matching spec.md invariant 1.
// State-document decoding does not clamp: a sub-floor value there is
// rejected with ErrInvalidState.
func warnFloorViolation(kind, field string, value, floor float64) {
	logger.WithFields(logrus.Fields{
		"kind":  kind,
		"field": field,
		"value": value,
		"floor": floor,
	}).Warn("rating value below floor, clamped")
}

// warnFlattenedFallback logs that a FromXState constructor read field
// from a document's flattened backward-compatibility mirror because the
// structured Parameters/State section did not carry it (SPEC_FULL.md
// §4.8, spec.md §6.1's "Decoder MUST prefer structured fields; if
// absent, fall back to flattened").
func warnFlattenedFallback(kind, field string) {
	logger.WithFields(logrus.Fields{
		"kind":  kind,
		"field": field,
	}).Warn("state document used flattened fallback field")
}
