package resilience

import (
	"errors"
	"math"
	"testing"
)

func TestAttributeContributionsPVFirstThenStorage(t *testing.T) {
	requirement := Series{20, 20, 10, 10}
	pvMax := Series{5, 5, 0, 0}
	soe := Series{12, 8, 20, 4}

	breakdown, err := AttributeContributions(requirement, pvMax, soe, true, 2, 1)
	if err != nil {
		t.Fatalf("attribute: %v", err)
	}
	if breakdown.TotalRequirementKWh != 60 {
		t.Fatalf("total requirement = %v, want 60", breakdown.TotalRequirementKWh)
	}
	if len(breakdown.Contributions) != 3 {
		t.Fatalf("expected 3 contributions, got %d", len(breakdown.Contributions))
	}

	pv := breakdown.Contributions[0]
	if pv.Category != CategoryPV {
		t.Fatalf("first contribution %q, want PV", pv.Category)
	}
	// Rolling 2-step PV energy: [10, 5, 0, 0], all within the need.
	assertSeriesEqual(t, pv.ProfileKWh, Series{10, 5, 0, 0})

	storage := breakdown.Contributions[1]
	if storage.Category != CategoryStorage {
		t.Fatalf("second contribution %q, want Storage", storage.Category)
	}
	// Outstanding after PV is [10, 15, 10, 10]; storage is clipped to it.
	assertSeriesEqual(t, storage.ProfileKWh, Series{10, 8, 10, 4})

	generator := breakdown.Contributions[2]
	if generator.Category != CategoryGenerator {
		t.Fatalf("third contribution %q, want Generator", generator.Category)
	}
	assertSeriesEqual(t, generator.ProfileKWh, Series{0, 7, 0, 6})

	// Generator takes the remainder share, so shares sum to exactly 1.
	if math.Abs(breakdown.CoveredShare()-1) > 1e-12 {
		t.Fatalf("covered share = %v, want 1", breakdown.CoveredShare())
	}
	wantGenShare := 1 - pv.Share - storage.Share
	if math.Abs(generator.Share-wantGenShare) > 1e-12 {
		t.Fatalf("generator share = %v, want %v", generator.Share, wantGenShare)
	}
}

func TestAttributeContributionsExcessPVClipped(t *testing.T) {
	requirement := Series{10, 10}
	pvMax := Series{50, 50}

	breakdown, err := AttributeContributions(requirement, pvMax, nil, false, 1, 1)
	if err != nil {
		t.Fatalf("attribute: %v", err)
	}
	pv := breakdown.Contributions[0]
	// PV can deliver 50 kWh per window but only the need is credited.
	assertSeriesEqual(t, pv.ProfileKWh, Series{10, 10})
	if math.Abs(pv.Share-1) > 1e-12 {
		t.Fatalf("pv share = %v, want 1", pv.Share)
	}
}

func TestAttributeContributionsSharesMatchCoveredEnergy(t *testing.T) {
	requirement := Series{30, 30, 30}
	soe := Series{12, 6, 9}

	breakdown, err := AttributeContributions(requirement, nil, soe, false, 1, 1)
	if err != nil {
		t.Fatalf("attribute: %v", err)
	}
	if len(breakdown.Contributions) != 1 {
		t.Fatalf("expected storage-only breakdown, got %d contributions", len(breakdown.Contributions))
	}
	covered := breakdown.Contributions[0].EnergyKWh
	wantShare := covered / requirement.Sum()
	if math.Abs(breakdown.CoveredShare()-wantShare) > 1e-12 {
		t.Fatalf("covered share = %v, want %v", breakdown.CoveredShare(), wantShare)
	}
	if breakdown.CoveredShare() >= 1 {
		t.Fatalf("partial coverage must stay below 1, got %v", breakdown.CoveredShare())
	}
}

func TestAttributeContributionsValidation(t *testing.T) {
	if _, err := AttributeContributions(nil, nil, nil, false, 1, 1); !errors.Is(err, ErrEmptyCriticalLoad) {
		t.Fatalf("expected ErrEmptyCriticalLoad, got %v", err)
	}
	if _, err := AttributeContributions(Series{1}, Series{1, 2}, nil, false, 1, 1); !errors.Is(err, ErrSeriesLengthMismatch) {
		t.Fatalf("expected ErrSeriesLengthMismatch, got %v", err)
	}
	if _, err := AttributeContributions(Series{1}, nil, nil, false, 0, 1); !errors.Is(err, ErrNonPositiveWindow) {
		t.Fatalf("expected ErrNonPositiveWindow, got %v", err)
	}
	if _, err := AttributeContributions(Series{math.NaN()}, nil, nil, false, 1, 1); !errors.Is(err, ErrNaNInSeries) {
		t.Fatalf("expected ErrNaNInSeries, got %v", err)
	}
}
