package resilience

import "errors"

var (
	// ErrEmptyCriticalLoad is returned when the critical load series has no samples.
	ErrEmptyCriticalLoad = errors.New("resilience: empty critical load series")
	// ErrNaNInSeries is returned when a required series contains NaN samples.
	ErrNaNInSeries = errors.New("resilience: series contains NaN")
	// ErrNonPositiveTimestep is returned when dt is zero or negative.
	ErrNonPositiveTimestep = errors.New("resilience: non-positive timestep")
	// ErrNonPositiveWindow is returned when a rolling window has no timesteps.
	ErrNonPositiveWindow = errors.New("resilience: non-positive coverage window")
	// ErrSeriesLengthMismatch is returned when aligned series differ in length.
	ErrSeriesLengthMismatch = errors.New("resilience: series length mismatch")
	// ErrMissingSOETrajectory is returned when storage units are declared but
	// no dispatched state-of-energy series accompanies them.
	ErrMissingSOETrajectory = errors.New("resilience: storage units without soe trajectory")
	// ErrInvalidESSUnit is returned when a storage unit spec is out of range.
	ErrInvalidESSUnit = errors.New("resilience: invalid storage unit spec")
	// ErrInvalidGeneratorUnit is returned when a generator unit spec is out of range.
	ErrInvalidGeneratorUnit = errors.New("resilience: invalid generator unit spec")
	// ErrAmbiguousContingency guards n-2 analysis with more than one
	// dispatchable generator category, which the coverage algorithm cannot
	// express. The analysis must abort rather than approximate.
	ErrAmbiguousContingency = errors.New("resilience: n-2 contingency requires exactly one dispatchable generator category")
	// ErrInvalidFraction is returned when a derate or margin factor leaves [0,1].
	ErrInvalidFraction = errors.New("resilience: fraction outside [0,1]")
	// ErrInvalidRTESelection is returned for an unknown efficiency selection policy.
	ErrInvalidRTESelection = errors.New("resilience: unknown rte selection policy")
)

// IsInvalidInput reports whether err belongs to the invalid-input taxonomy,
// raised before any simulation starts.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrEmptyCriticalLoad) ||
		errors.Is(err, ErrNaNInSeries) ||
		errors.Is(err, ErrNonPositiveTimestep) ||
		errors.Is(err, ErrNonPositiveWindow) ||
		errors.Is(err, ErrSeriesLengthMismatch) ||
		errors.Is(err, ErrMissingSOETrajectory) ||
		errors.Is(err, ErrInvalidESSUnit) ||
		errors.Is(err, ErrInvalidGeneratorUnit)
}

// IsConfiguration reports whether err is a fatal configuration error.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrAmbiguousContingency) ||
		errors.Is(err, ErrInvalidFraction) ||
		errors.Is(err, ErrInvalidRTESelection)
}
