package resilience

import "math"

// CoverageTimesteps converts a target outage duration in hours to a whole
// number of timesteps of size dt.
func CoverageTimesteps(targetHours, dt float64) int {
	if dt <= 0 {
		return 0
	}
	return int(math.Round(targetHours / dt))
}

// RollingRequirement computes, for each timestep, the energy in kWh needed to
// serve the critical load over the next coverageTimesteps intervals. Windows
// are forward-looking and clip at the end of the series, so the final entries
// cover progressively shorter horizons (minimum one interval).
func RollingRequirement(criticalLoad Series, coverageTimesteps int, dt float64) (Series, error) {
	if len(criticalLoad) == 0 {
		return nil, ErrEmptyCriticalLoad
	}
	if criticalLoad.HasNaN() {
		return nil, ErrNaNInSeries
	}
	if dt <= 0 {
		return nil, ErrNonPositiveTimestep
	}
	if coverageTimesteps <= 0 {
		return nil, ErrNonPositiveWindow
	}
	return rollingForwardSum(criticalLoad, coverageTimesteps).scale(dt), nil
}

// rollingForwardSum is a look-ahead rolling sum: out[i] covers
// data[i .. i+window-1], truncated at the series end. Walking the series in
// reverse keeps it a single pass.
func rollingForwardSum(data Series, window int) Series {
	n := len(data)
	out := make(Series, n)
	var sum float64
	for i := n - 1; i >= 0; i-- {
		sum += data[i]
		if i+window < n {
			sum -= data[i+window]
		}
		out[i] = sum
	}
	return out
}

func (s Series) scale(factor float64) Series {
	out := make(Series, len(s))
	for i, v := range s {
		out[i] = v * factor
	}
	return out
}
