package resilience

import (
	"errors"
	"math"
	"testing"
)

func TestAggregateESS(t *testing.T) {
	agg, err := AggregateESS([]ESSUnitSpec{
		{Name: "bess-1", ChargeRatingKW: 50, DischargeRatingKW: 60, EnergyRatingKWh: 200, SOCLowerLimit: 0.1, SOCUpperLimit: 0.9, RoundTripEfficiency: 0.85},
		{Name: "bess-2", ChargeRatingKW: 30, DischargeRatingKW: 40, EnergyRatingKWh: 100, SOCLowerLimit: 0, SOCUpperLimit: 1, RoundTripEfficiency: 0.92},
	})
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if agg.ChargeMaxKW != 80 || agg.DischargeMaxKW != 100 {
		t.Fatalf("unexpected rate limits: charge=%v discharge=%v", agg.ChargeMaxKW, agg.DischargeMaxKW)
	}
	if math.Abs(agg.OperationSOEMinKWh-20) > 1e-9 || math.Abs(agg.OperationSOEMaxKWh-280) > 1e-9 {
		t.Fatalf("unexpected SOE bounds: [%v, %v]", agg.OperationSOEMinKWh, agg.OperationSOEMaxKWh)
	}
	if got := agg.WorstRTE(); got != 0.85 {
		t.Fatalf("worst rte = %v, want 0.85", got)
	}
}

func TestAggregateESSEmptyPortfolio(t *testing.T) {
	agg, err := AggregateESS(nil)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if agg != nil {
		t.Fatalf("expected nil capability without storage, got %+v", agg)
	}
	if got := agg.WorstRTE(); got != 1 {
		t.Fatalf("nil capability worst rte = %v, want 1", got)
	}
}

func TestAggregateESSRejectsInvalidUnits(t *testing.T) {
	cases := []ESSUnitSpec{
		{ChargeRatingKW: -1, DischargeRatingKW: 1, EnergyRatingKWh: 10, SOCUpperLimit: 1, RoundTripEfficiency: 0.9},
		{ChargeRatingKW: 1, DischargeRatingKW: 1, EnergyRatingKWh: 10, SOCLowerLimit: 0.8, SOCUpperLimit: 0.2, RoundTripEfficiency: 0.9},
		{ChargeRatingKW: 1, DischargeRatingKW: 1, EnergyRatingKWh: 10, SOCUpperLimit: 1, RoundTripEfficiency: 0},
		{ChargeRatingKW: 1, DischargeRatingKW: 1, EnergyRatingKWh: 10, SOCUpperLimit: 1.2, RoundTripEfficiency: 0.9},
	}
	for i, unit := range cases {
		if _, err := AggregateESS([]ESSUnitSpec{unit}); !errors.Is(err, ErrInvalidESSUnit) {
			t.Fatalf("case %d: expected ErrInvalidESSUnit, got %v", i, err)
		}
	}
}

func TestResolveGeneration(t *testing.T) {
	units := []GeneratorUnitSpec{
		{Name: "genset", Quantity: 3, RatedPowerKW: 100},
		{Name: "turbine", Quantity: 1, RatedPowerKW: 250},
	}
	rating, err := ResolveGeneration(units, false)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if rating != 550 {
		t.Fatalf("combined rating = %v, want 550", rating)
	}
}

func TestResolveGenerationN2(t *testing.T) {
	rating, err := ResolveGeneration([]GeneratorUnitSpec{{Name: "genset", Quantity: 3, RatedPowerKW: 100}}, true)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if rating != 200 {
		t.Fatalf("n-2 rating = %v, want 200", rating)
	}

	// A single unit under n-2 leaves no dispatchable generation.
	rating, err = ResolveGeneration([]GeneratorUnitSpec{{Name: "genset", Quantity: 1, RatedPowerKW: 100}}, true)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if rating != 0 {
		t.Fatalf("n-2 single-unit rating = %v, want 0", rating)
	}
}

func TestResolveGenerationN2AmbiguousCategories(t *testing.T) {
	units := []GeneratorUnitSpec{
		{Name: "genset", Quantity: 1, RatedPowerKW: 100},
		{Name: "turbine", Quantity: 1, RatedPowerKW: 250},
	}
	if _, err := ResolveGeneration(units, true); !errors.Is(err, ErrAmbiguousContingency) {
		t.Fatalf("expected ErrAmbiguousContingency, got %v", err)
	}
}

func TestLargestGeneratorRating(t *testing.T) {
	units := []GeneratorUnitSpec{
		{Name: "genset", Quantity: 3, RatedPowerKW: 100},
		{Name: "turbine", Quantity: 1, RatedPowerKW: 250},
	}
	if got := LargestGeneratorRating(units); got != 250 {
		t.Fatalf("largest rating = %v, want 250", got)
	}
	if got := LargestGeneratorRating(nil); got != 0 {
		t.Fatalf("largest rating without units = %v, want 0", got)
	}
}
