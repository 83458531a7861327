package resilience

import (
	"errors"
	"math"
	"testing"
)

func TestBuildSizingConstraint(t *testing.T) {
	load := Series{100, 120, 150, 90}
	pv := Series{20, 60, 10, 0}
	iq, err := BuildSizingConstraint(load, pv, 160, false, 0, 2)
	if err != nil {
		t.Fatalf("build constraint: %v", err)
	}
	// Worst-case net load is 150-10=140 at t=2.
	if iq.LHS != 140 || iq.RHS != 160 {
		t.Fatalf("inequality = %+v, want LHS 140 RHS 160", iq)
	}
	if !iq.Satisfied() {
		t.Fatalf("expected satisfied inequality, margin %v", iq.Margin())
	}
	if math.Abs(iq.Margin()-20) > 1e-9 {
		t.Fatalf("margin = %v, want 20", iq.Margin())
	}
}

func TestBuildSizingConstraintN2ReducesRating(t *testing.T) {
	load := Series{100, 120}
	iq, err := BuildSizingConstraint(load, nil, 160, true, 50, 1)
	if err != nil {
		t.Fatalf("build constraint: %v", err)
	}
	if iq.RHS != 110 {
		t.Fatalf("n-2 RHS = %v, want 110", iq.RHS)
	}
	if iq.Satisfied() {
		t.Fatalf("expected violated inequality: %+v", iq)
	}
}

func TestBuildSizingConstraintN2MultipleCategories(t *testing.T) {
	if _, err := BuildSizingConstraint(Series{100}, nil, 160, true, 50, 2); !errors.Is(err, ErrAmbiguousContingency) {
		t.Fatalf("expected ErrAmbiguousContingency, got %v", err)
	}
}

func TestBuildSizingConstraintInvalidInput(t *testing.T) {
	if _, err := BuildSizingConstraint(nil, nil, 100, false, 0, 0); !errors.Is(err, ErrEmptyCriticalLoad) {
		t.Fatalf("expected ErrEmptyCriticalLoad, got %v", err)
	}
	if _, err := BuildSizingConstraint(Series{1, math.NaN()}, nil, 100, false, 0, 0); !errors.Is(err, ErrNaNInSeries) {
		t.Fatalf("expected ErrNaNInSeries, got %v", err)
	}
	if _, err := BuildSizingConstraint(Series{1, 2}, Series{1}, 100, false, 0, 0); !errors.Is(err, ErrSeriesLengthMismatch) {
		t.Fatalf("expected ErrSeriesLengthMismatch, got %v", err)
	}
}
