package build

import "errors"

// Sentinel errors for the failure taxonomy of the builder core. All are
// fatal to the operation that returns them; none is retried. Callers
// match with errors.Is.
var (
	// ErrNoActiveContext is returned when an operation is invoked
	// outside any open builder scope.
	ErrNoActiveContext = errors.New("no active builder context")

	// ErrEmptyPlacementSet is returned when the placement context would
	// be left without a single active placement.
	ErrEmptyPlacementSet = errors.New("placement set must contain at least one entry")

	// ErrNothingToSubtractFrom is returned by a Subtract merge against
	// an empty part.
	ErrNothingToSubtractFrom = errors.New("nothing to subtract from")

	// ErrNothingToIntersectWith is returned by an Intersect merge
	// against an empty part.
	ErrNothingToIntersectWith = errors.New("nothing to intersect with")

	// ErrInvalidMode is returned for an unsupported combination mode.
	ErrInvalidMode = errors.New("invalid combination mode")

	// ErrLoftFailed is returned when both the direct loft and the
	// shell-reconstruction recovery produce invalid solids.
	ErrLoftFailed = errors.New("failed to create valid loft")

	// ErrInvalidAxis is returned when a revolve axis does not lie on
	// the profile plane.
	ErrInvalidAxis = errors.New("revolve axis must lie on the profile plane")
)
