package resilience

import "math/rand"

// RTESelection picks how a round-trip efficiency is chosen when the storage
// portfolio pools units with different efficiencies.
type RTESelection string

const (
	// RTESelectionWorst deterministically uses the smallest unit efficiency.
	RTESelectionWorst RTESelection = "worst"
	// RTESelectionRandom samples uniformly among the unit efficiencies.
	RTESelectionRandom RTESelection = "random"
)

// NetOutageDemand derives the two residual series the simulator walks:
// reliabilityCheck derates the variable generation forecast by nu (the share
// of forecast PV the planner is confident will be delivered), demandLeft
// credits the full forecast. Both subtract the dispatchable generation
// rating. reliabilityCheck >= demandLeft at every timestep whenever nu <= 1.
func NetOutageDemand(criticalLoad, variableGeneration Series, generationRatingKW, nu float64) (reliabilityCheck, demandLeft Series) {
	reliabilityCheck = make(Series, len(criticalLoad))
	demandLeft = make(Series, len(criticalLoad))
	for i, load := range criticalLoad {
		var forecast float64
		if i < len(variableGeneration) {
			forecast = variableGeneration[i]
		}
		reliabilityCheck[i] = load - nu*forecast - generationRatingKW
		demandLeft[i] = load - forecast - generationRatingKW
	}
	return reliabilityCheck, demandLeft
}

// Simulator determines, for a given outage start, the longest contiguous
// duration the DER portfolio can reliably cover. It threads the storage
// state of energy through the outage one timestep at a time and never
// mutates the shared capability snapshot.
type Simulator struct {
	ess   *ESSCapability
	dt    float64
	gamma float64
	rte   func() float64
}

// NewSimulator builds a simulator for one analysis. ess may be nil when the
// portfolio has no storage. gamma is the fraction of the per-step
// reliability check the stored energy must cover before discharge is
// trusted. rng is only consulted for RTESelectionRandom.
func NewSimulator(ess *ESSCapability, dt, gamma float64, selection RTESelection, rng *rand.Rand) (*Simulator, error) {
	if dt <= 0 {
		return nil, ErrNonPositiveTimestep
	}
	if gamma < 0 || gamma > 1 {
		return nil, ErrInvalidFraction
	}
	s := &Simulator{ess: ess, dt: dt, gamma: gamma}
	switch selection {
	case RTESelectionWorst, "":
		worst := ess.WorstRTE()
		s.rte = func() float64 { return worst }
	case RTESelectionRandom:
		if ess == nil || len(ess.RoundTripEfficiencies) == 0 {
			s.rte = func() float64 { return 1 }
			break
		}
		if rng == nil {
			rng = rand.New(rand.NewSource(1))
		}
		rtes := ess.RoundTripEfficiencies
		s.rte = func() float64 { return rtes[rng.Intn(len(rtes))] }
	default:
		return nil, ErrInvalidRTESelection
	}
	return s, nil
}

// Run simulates an outage starting at the head of the residual series and
// returns the covered duration in hours, always a multiple of dt. The
// simulation truncates when it runs out of data or reaches the horizon;
// running out of data is not a failure. A timestep that cannot be fully
// covered ends the outage with no partial credit.
func (s *Simulator) Run(reliabilityCheck, demandLeft Series, horizonTimesteps int, initialSOE float64) float64 {
	steps := horizonTimesteps
	if len(reliabilityCheck) < steps {
		steps = len(reliabilityCheck)
	}
	if len(demandLeft) < steps {
		steps = len(demandLeft)
	}
	var covered float64
	soe := initialSOE
	for i := 0; i < steps; i++ {
		next, ok := s.step(reliabilityCheck[i], demandLeft[i], soe)
		if !ok {
			break
		}
		covered += s.dt
		soe = next
	}
	return covered
}

// step advances the storage state through one timestep of the outage and
// reports whether the timestep could be fully covered.
func (s *Simulator) step(check, demand, soe float64) (nextSOE float64, covered bool) {
	if check <= 0 {
		// Generation and derated renewables cover the load; any surplus may
		// charge storage up to the charge rating and remaining headroom.
		if s.ess == nil || soe > s.ess.OperationSOEMaxKWh {
			return soe, true
		}
		rte := s.rte()
		chargePossible := (s.ess.OperationSOEMaxKWh - soe) / (rte * s.dt)
		charge := min3(chargePossible, -demand, s.ess.ChargeMaxKW)
		if charge < 0 {
			charge = 0
		}
		return soe + charge*rte*s.dt, true
	}

	// Deficit: storage must cover the residual. The worst-case check is that
	// the stored energy covers gamma of the derated deficit; then the actual
	// discharge must meet demandLeft exactly or the outage is lost here.
	if s.ess == nil || soe < check*s.gamma {
		return soe, false
	}
	dischargePossible := (soe - s.ess.OperationSOEMinKWh) / s.dt
	discharge := min3(dischargePossible, demand, s.ess.DischargeMaxKW)
	if discharge < demand {
		return soe, false
	}
	return soe - discharge*s.dt, true
}

func min3(a, b, c float64) float64 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
