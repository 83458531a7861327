package resilience

import (
	"context"
	"runtime"
	"sync"
)

// CoverageHistogram maps achieved outage duration, in timesteps, to the
// number of simulated starts that achieved exactly that duration. Bucket
// counts sum to the number of simulated start indices.
type CoverageHistogram []int

// CoveragePoint is one row of the load coverage probability table.
type CoveragePoint struct {
	OutageLengthHours float64 `json:"outage_length_hours"`
	Probability       float64 `json:"probability"`
}

// LoadCoverageCurve is the probability, by outage length, that the portfolio
// covers an outage of at least that length. Probability at length 0 is
// always 1 and the curve is non-increasing.
type LoadCoverageCurve []CoveragePoint

// CurveBuilder runs the outage simulation from every start index in the
// horizon and tabulates the results.
type CurveBuilder struct {
	sim                *Simulator
	dt                 float64
	maxOutageTimesteps int
	workers            int
}

// NewCurveBuilder configures a builder. workers <= 0 uses one worker per CPU.
func NewCurveBuilder(sim *Simulator, dt float64, maxOutageDurationHours float64, workers int) (*CurveBuilder, error) {
	if sim == nil || dt <= 0 {
		return nil, ErrNonPositiveTimestep
	}
	maxSteps := CoverageTimesteps(maxOutageDurationHours, dt)
	if maxSteps <= 0 {
		return nil, ErrNonPositiveWindow
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &CurveBuilder{sim: sim, dt: dt, maxOutageTimesteps: maxSteps, workers: workers}, nil
}

// Build simulates an outage starting at every timestep, seeding each start
// with the dispatched state of energy observed at that time, and converts
// the achieved durations into a load coverage probability curve.
//
// Every per-start simulation is a pure function of the shared read-only
// inputs, so starts are sharded across the worker pool and each worker
// writes achieved durations into its own slice indices; the histogram is
// merged only after all workers finish. Cancellation is checked between
// starts.
func (b *CurveBuilder) Build(ctx context.Context, reliabilityCheck, demandLeft, soeTrajectory Series) (LoadCoverageCurve, CoverageHistogram, error) {
	n := len(reliabilityCheck)
	if n == 0 {
		return nil, nil, ErrEmptyCriticalLoad
	}
	if len(demandLeft) != n {
		return nil, nil, ErrSeriesLengthMismatch
	}
	if len(soeTrajectory) > 0 && len(soeTrajectory) != n {
		return nil, nil, ErrSeriesLengthMismatch
	}

	achieved := make([]int, n)
	var wg sync.WaitGroup
	for w := 0; w < b.workers; w++ {
		wg.Add(1)
		go func(offset int) {
			defer wg.Done()
			for start := offset; start < n; start += b.workers {
				if ctx.Err() != nil {
					return
				}
				var initialSOE float64
				if len(soeTrajectory) > 0 {
					initialSOE = soeTrajectory[start]
				}
				duration := b.sim.Run(reliabilityCheck[start:], demandLeft[start:], b.maxOutageTimesteps, initialSOE)
				achieved[start] = CoverageTimesteps(duration, b.dt)
			}
		}(w)
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	histogram := make(CoverageHistogram, b.maxOutageTimesteps+1)
	for _, steps := range achieved {
		histogram[steps]++
	}
	return b.curve(histogram, n), histogram, nil
}

// curve converts the histogram into probabilities. The denominator for
// length L counts only starts with at least L of remaining data, so starts
// near the end of the horizon are excluded rather than counted as failures.
func (b *CurveBuilder) curve(histogram CoverageHistogram, totalStarts int) LoadCoverageCurve {
	curve := make(LoadCoverageCurve, 0, b.maxOutageTimesteps+1)
	curve = append(curve, CoveragePoint{OutageLengthHours: 0, Probability: 1})
	for steps := 1; steps <= b.maxOutageTimesteps; steps++ {
		eligible := totalStarts - steps + 1
		if eligible <= 0 {
			break
		}
		var covered int
		for achieved := steps; achieved <= b.maxOutageTimesteps; achieved++ {
			covered += histogram[achieved]
		}
		curve = append(curve, CoveragePoint{
			OutageLengthHours: float64(steps) * b.dt,
			Probability:       float64(covered) / float64(eligible),
		})
	}
	return curve
}
