package resilience

import (
	"errors"
	"math"
	"testing"
)

func TestRollingRequirementHandComputed(t *testing.T) {
	load := Series{5, 10, 15, 20, 25}
	got, err := RollingRequirement(load, 3, 0.5)
	if err != nil {
		t.Fatalf("rolling requirement: %v", err)
	}
	// Forward windows of 3 samples, clipped at the end, times dt=0.5.
	want := Series{15, 22.5, 30, 22.5, 12.5}
	assertSeriesEqual(t, got, want)
}

func TestRollingRequirementFlatLoad(t *testing.T) {
	load := Series{10, 10, 10, 10}
	got, err := RollingRequirement(load, 2, 1)
	if err != nil {
		t.Fatalf("rolling requirement: %v", err)
	}
	assertSeriesEqual(t, got, Series{20, 20, 10, 10})
}

func TestRollingRequirementWindowLongerThanSeries(t *testing.T) {
	got, err := RollingRequirement(Series{4, 6}, 10, 1)
	if err != nil {
		t.Fatalf("rolling requirement: %v", err)
	}
	assertSeriesEqual(t, got, Series{10, 6})
}

func TestRollingRequirementInvalidInput(t *testing.T) {
	if _, err := RollingRequirement(nil, 2, 1); !errors.Is(err, ErrEmptyCriticalLoad) {
		t.Fatalf("expected ErrEmptyCriticalLoad, got %v", err)
	}
	if _, err := RollingRequirement(Series{1, math.NaN()}, 2, 1); !errors.Is(err, ErrNaNInSeries) {
		t.Fatalf("expected ErrNaNInSeries, got %v", err)
	}
	if _, err := RollingRequirement(Series{1, 2}, 2, 0); !errors.Is(err, ErrNonPositiveTimestep) {
		t.Fatalf("expected ErrNonPositiveTimestep, got %v", err)
	}
	if _, err := RollingRequirement(Series{1, 2}, 0, 1); !errors.Is(err, ErrNonPositiveWindow) {
		t.Fatalf("expected ErrNonPositiveWindow, got %v", err)
	}
}

func TestCoverageTimesteps(t *testing.T) {
	if got := CoverageTimesteps(4, 1); got != 4 {
		t.Fatalf("expected 4 timesteps, got %d", got)
	}
	if got := CoverageTimesteps(1, 0.25); got != 4 {
		t.Fatalf("expected 4 timesteps, got %d", got)
	}
	if got := CoverageTimesteps(1.1, 0.5); got != 2 {
		t.Fatalf("expected rounding to 2 timesteps, got %d", got)
	}
	if got := CoverageTimesteps(4, 0); got != 0 {
		t.Fatalf("expected 0 for zero dt, got %d", got)
	}
}

func assertSeriesEqual(t *testing.T, got, want Series) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("series length %d, want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Fatalf("series[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
