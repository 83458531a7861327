package resilience

// Inequality asserts LHS <= RHS. It is emitted for the external sizing
// optimizer's constraint set, not solved here.
type Inequality struct {
	Name string  `json:"name"`
	LHS  float64 `json:"lhs"`
	RHS  float64 `json:"rhs"`
}

// Satisfied reports whether the inequality holds for the resolved ratings.
func (iq Inequality) Satisfied() bool { return iq.LHS <= iq.RHS }

// Margin returns RHS − LHS, the discharge headroom above worst-case net load.
func (iq Inequality) Margin() float64 { return iq.RHS - iq.LHS }

// BuildSizingConstraint derives the feasibility inequality: the combined
// discharge rating of the DER mix must exceed the worst-case net critical
// load (load minus variable generation) at every timestep, so the mix can
// cover peak net load during an outage starting at any point in the year.
// Under n-2 the rating is reduced by the largest single unit; requesting n-2
// with more than one dispatchable generator category is a configuration
// error, never approximated.
func BuildSizingConstraint(criticalLoad, variableGeneration Series, combinedDischargeRatingKW float64, n2 bool, largestUnitRatingKW float64, generatorCategories int) (Inequality, error) {
	if len(criticalLoad) == 0 {
		return Inequality{}, ErrEmptyCriticalLoad
	}
	if criticalLoad.HasNaN() || variableGeneration.HasNaN() {
		return Inequality{}, ErrNaNInSeries
	}
	if len(variableGeneration) > 0 && len(variableGeneration) != len(criticalLoad) {
		return Inequality{}, ErrSeriesLengthMismatch
	}
	if n2 && generatorCategories > 1 {
		return Inequality{}, ErrAmbiguousContingency
	}

	peakNetLoad := criticalLoad[0]
	for i, load := range criticalLoad {
		net := load
		if len(variableGeneration) > 0 {
			net -= variableGeneration[i]
		}
		if i == 0 || net > peakNetLoad {
			peakNetLoad = net
		}
	}

	rating := combinedDischargeRatingKW
	if n2 {
		rating -= largestUnitRatingKW
	}
	return Inequality{Name: "reliability_discharge_rating", LHS: peakNetLoad, RHS: rating}, nil
}
