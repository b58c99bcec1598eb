package mesh

import "errors"

var (
	// ErrTooManyLocations is returned when more locations per assignment are
	// requested than the layout provides.
	ErrTooManyLocations = errors.New("number of locations cannot exceed the number of available points")

	// ErrDegenerateSegment is returned when a segment's endpoints coincide and
	// it cannot be rescaled.
	ErrDegenerateSegment = errors.New("degenerate segment: endpoints coincide")

	// ErrInvalidConfig reports an out-of-range run parameter.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrIterationCap is returned when the sampling loop hits its safety cap
	// before collecting the requested number of distinct assignments.
	ErrIterationCap = errors.New("iteration cap reached before target count")

	// ErrUnknownStrategy is returned for an unrecognized strategy name.
	ErrUnknownStrategy = errors.New("unknown sampling strategy")

	// ErrNoTrials is returned when summarizing an empty set of trial rates.
	ErrNoTrials = errors.New("no trial results to summarize")
)
