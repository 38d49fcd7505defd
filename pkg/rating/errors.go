// Package rating implements the Elote family of pairwise skill-rating
// algorithms (Elo, Glicko-1, ECF, DWZ) behind one Competitor capability.
// Every variant owns its own mutable state and shares the same update
// contract, so an arena or a direct caller can swap one algorithm for
// another without changing call sites.
package rating

import "errors"

// Error types shared by every competitor variant and by the state codec.
var (
	// ErrInvalidParameter is returned when a construction-time value is
	// outside its legal range, e.g. a non-positive k_factor or a
	// non-finite initial rating. A finite initial rating below the floor
	// is clamped and logged by the constructors, not rejected.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrInvalidState is returned when a rating-like field is assigned a
	// value below the floor by a caller (setter or deserialization), or
	// when a state document fails to decode for the requested variant.
	ErrInvalidState = errors.New("invalid state")

	// ErrTypeMismatch is returned when an operation is attempted between
	// competitors (or ensemble components) of different variants.
	ErrTypeMismatch = errors.New("competitor type mismatch")

	// ErrInvalidThresholds is returned by confusion-matrix and
	// random-search operations when lo > hi or either falls outside
	// [0, 1].
	ErrInvalidThresholds = errors.New("invalid confusion matrix thresholds")
)
