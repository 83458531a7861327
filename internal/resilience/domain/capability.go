package resilience

// ESSUnitSpec describes one storage unit as published by the sizing
// optimization. Ratings are resolved numeric values; the engine never sees
// whether they originated from a decision variable or a fixed input.
type ESSUnitSpec struct {
	Name                string
	ChargeRatingKW      float64
	DischargeRatingKW   float64
	EnergyRatingKWh     float64
	SOCLowerLimit       float64 // fraction of energy rating
	SOCUpperLimit       float64 // fraction of energy rating
	RoundTripEfficiency float64 // fraction recovered per charge/discharge cycle
}

// GeneratorUnitSpec describes one dispatchable generation category
// (e.g. a diesel genset model) and how many identical units are installed.
type GeneratorUnitSpec struct {
	Name         string
	Quantity     int
	RatedPowerKW float64
}

// ESSCapability is the aggregate physical envelope of all storage units in
// the portfolio. Read-only during an analysis.
type ESSCapability struct {
	ChargeMaxKW           float64
	DischargeMaxKW        float64
	OperationSOEMinKWh    float64
	OperationSOEMaxKWh    float64
	RoundTripEfficiencies []float64
}

// WorstRTE returns the smallest unit round-trip efficiency, the conservative
// choice when units with different efficiencies are pooled.
func (c *ESSCapability) WorstRTE() float64 {
	if c == nil || len(c.RoundTripEfficiencies) == 0 {
		return 1
	}
	worst := c.RoundTripEfficiencies[0]
	for _, rte := range c.RoundTripEfficiencies[1:] {
		if rte < worst {
			worst = rte
		}
	}
	return worst
}

// AggregateESS resolves per-unit storage specs into one portfolio envelope.
// Returns nil when the portfolio has no storage.
func AggregateESS(units []ESSUnitSpec) (*ESSCapability, error) {
	if len(units) == 0 {
		return nil, nil
	}
	agg := &ESSCapability{RoundTripEfficiencies: make([]float64, 0, len(units))}
	for _, unit := range units {
		if unit.ChargeRatingKW < 0 || unit.DischargeRatingKW < 0 || unit.EnergyRatingKWh < 0 {
			return nil, ErrInvalidESSUnit
		}
		if unit.SOCLowerLimit < 0 || unit.SOCUpperLimit > 1 || unit.SOCLowerLimit > unit.SOCUpperLimit {
			return nil, ErrInvalidESSUnit
		}
		if unit.RoundTripEfficiency <= 0 || unit.RoundTripEfficiency > 1 {
			return nil, ErrInvalidESSUnit
		}
		agg.ChargeMaxKW += unit.ChargeRatingKW
		agg.DischargeMaxKW += unit.DischargeRatingKW
		agg.OperationSOEMinKWh += unit.EnergyRatingKWh * unit.SOCLowerLimit
		agg.OperationSOEMaxKWh += unit.EnergyRatingKWh * unit.SOCUpperLimit
		agg.RoundTripEfficiencies = append(agg.RoundTripEfficiencies, unit.RoundTripEfficiency)
	}
	return agg, nil
}

// ResolveGeneration returns the combined dispatchable generation rating in kW
// available during an outage. Under an n-2 contingency policy the rating must
// stay valid with the largest unit out of service, so one unit of the single
// category is removed; more than one category is ErrAmbiguousContingency.
func ResolveGeneration(units []GeneratorUnitSpec, n2 bool) (float64, error) {
	for _, unit := range units {
		if unit.Quantity < 0 || unit.RatedPowerKW < 0 {
			return 0, ErrInvalidGeneratorUnit
		}
	}
	if n2 && len(units) > 1 {
		return 0, ErrAmbiguousContingency
	}
	var combined float64
	if n2 {
		if len(units) == 1 {
			quantity := units[0].Quantity - 1
			if quantity < 0 {
				quantity = 0
			}
			combined = float64(quantity) * units[0].RatedPowerKW
		}
		return combined, nil
	}
	for _, unit := range units {
		combined += float64(unit.Quantity) * unit.RatedPowerKW
	}
	return combined, nil
}

// LargestGeneratorRating returns the rating of the single largest unit, used
// to tighten the sizing constraint under n-2.
func LargestGeneratorRating(units []GeneratorUnitSpec) float64 {
	var largest float64
	for _, unit := range units {
		if unit.RatedPowerKW > largest {
			largest = unit.RatedPowerKW
		}
	}
	return largest
}
