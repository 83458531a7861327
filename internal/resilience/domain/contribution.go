package resilience

// Technology categories reported in the contribution breakdown.
const (
	CategoryPV        = "PV"
	CategoryStorage   = "Storage"
	CategoryGenerator = "Generator"
)

// Contribution is one technology category's part in covering the
// reliability requirement profile.
type Contribution struct {
	Category   string  `json:"category"`
	EnergyKWh  float64 `json:"energy_kwh"`
	Share      float64 `json:"share"`
	ProfileKWh Series  `json:"profile_kwh"`
}

// ContributionBreakdown apportions the covered requirement energy across
// technology categories, in attribution order.
type ContributionBreakdown struct {
	TotalRequirementKWh float64        `json:"total_requirement_kwh"`
	Contributions       []Contribution `json:"contributions"`
}

// CoveredShare is the fraction of the total requirement the listed
// categories cover together; the gap to 1 is uncovered energy.
func (b ContributionBreakdown) CoveredShare() float64 {
	var share float64
	for _, c := range b.Contributions {
		share += c.Share
	}
	return share
}

// AttributeContributions credits technologies against the reliability
// requirement in a fixed priority order modeling a use-renewables-first
// dispatch preference: PV first, then storage, then fueled generation. Each
// category's contribution is clipped so it neither goes negative nor exceeds
// the outstanding need, and the outstanding need shrinks before the next
// category is credited. When a generator is present it absorbs whatever
// remains, and its share is one minus the sum of the other shares so the
// shares sum to exactly the covered fraction.
//
// pvMax is the full per-timestep PV output forecast in kW (empty when the
// portfolio has no PV); soeTrajectory is the dispatched state of energy in
// kWh (empty without storage).
func AttributeContributions(requirement Series, pvMax Series, soeTrajectory Series, hasGenerator bool, coverageTimesteps int, dt float64) (ContributionBreakdown, error) {
	if len(requirement) == 0 {
		return ContributionBreakdown{}, ErrEmptyCriticalLoad
	}
	if requirement.HasNaN() || pvMax.HasNaN() || soeTrajectory.HasNaN() {
		return ContributionBreakdown{}, ErrNaNInSeries
	}
	if len(pvMax) > 0 && len(pvMax) != len(requirement) {
		return ContributionBreakdown{}, ErrSeriesLengthMismatch
	}
	if len(soeTrajectory) > 0 && len(soeTrajectory) != len(requirement) {
		return ContributionBreakdown{}, ErrSeriesLengthMismatch
	}
	if coverageTimesteps <= 0 {
		return ContributionBreakdown{}, ErrNonPositiveWindow
	}
	if dt <= 0 {
		return ContributionBreakdown{}, ErrNonPositiveTimestep
	}

	breakdown := ContributionBreakdown{TotalRequirementKWh: requirement.Sum()}
	outstanding := requirement.Clone()

	if len(pvMax) > 0 {
		// Energy PV can deliver over each coverage window, same shape as the
		// requirement itself.
		pvEnergy := rollingForwardSum(pvMax, coverageTimesteps).scale(dt)
		breakdown.Contributions = append(breakdown.Contributions,
			creditCategory(CategoryPV, pvEnergy, outstanding, breakdown.TotalRequirementKWh))
	}
	if len(soeTrajectory) > 0 {
		breakdown.Contributions = append(breakdown.Contributions,
			creditCategory(CategoryStorage, soeTrajectory, outstanding, breakdown.TotalRequirementKWh))
	}
	if hasGenerator {
		var remainder float64
		for _, c := range breakdown.Contributions {
			remainder += c.Share
		}
		breakdown.Contributions = append(breakdown.Contributions, Contribution{
			Category:   CategoryGenerator,
			EnergyKWh:  outstanding.Sum(),
			Share:      1 - remainder,
			ProfileKWh: outstanding.Clone(),
		})
	}
	return breakdown, nil
}

// creditCategory subtracts available energy from the outstanding requirement
// in place and returns the credited contribution, clipped to the need.
func creditCategory(category string, available Series, outstanding Series, totalRequirement float64) Contribution {
	profile := make(Series, len(outstanding))
	for i, need := range outstanding {
		credit := available[i]
		if credit > need {
			credit = need
		}
		if credit < 0 {
			credit = 0
		}
		profile[i] = credit
		outstanding[i] = need - credit
	}
	contribution := Contribution{Category: category, EnergyKWh: profile.Sum(), ProfileKWh: profile}
	if totalRequirement > 0 {
		contribution.Share = contribution.EnergyKWh / totalRequirement
	}
	return contribution
}
