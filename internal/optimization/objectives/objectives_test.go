package objectives

import (
	"math"
	"sort"
	"testing"
)

func TestKnownOptima(t *testing.T) {
	tests := []struct {
		name  string
		point []float64
	}{
		{name: "sphere", point: []float64{0, 0}},
		{name: "himmelblau", point: []float64{3, 2}},
		{name: "himmelblau", point: []float64{-2.805118, 3.131312}},
		{name: "rastrigin", point: []float64{0, 0}},
		{name: "eggholder", point: []float64{512, 404.2319}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bench := MustLookup(tt.name)
			got, err := bench.Fn(tt.point)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-bench.Optimum) > 1e-3 {
				t.Errorf("at %v: expected %v, got %v", tt.point, bench.Optimum, got)
			}
		})
	}
}

func TestOptimumIsMaximum(t *testing.T) {
	// Spot-check that off-optimum points score strictly lower.
	tests := []struct {
		name  string
		point []float64
	}{
		{name: "sphere", point: []float64{1, -1}},
		{name: "himmelblau", point: []float64{0, 0}},
		{name: "rastrigin", point: []float64{0.5, 0.5}},
		{name: "eggholder", point: []float64{0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bench := MustLookup(tt.name)
			got, err := bench.Fn(tt.point)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got >= bench.Optimum {
				t.Errorf("at %v: got %v, expected below optimum %v", tt.point, got, bench.Optimum)
			}
		})
	}
}

func TestDimensionMismatch(t *testing.T) {
	for _, name := range []string{"himmelblau", "eggholder"} {
		if _, err := MustLookup(name).Fn([]float64{1, 2, 3}); err == nil {
			t.Errorf("%s: expected error for 3 dimensions", name)
		}
	}
}

func TestLookupUnknown(t *testing.T) {
	if _, err := Lookup("rosenbrock"); err == nil {
		t.Fatal("expected error for unregistered objective")
	}
}

func TestNamesSorted(t *testing.T) {
	names := Names()
	if len(names) == 0 {
		t.Fatal("no objectives registered")
	}
	if !sort.StringsAreSorted(names) {
		t.Errorf("names not sorted: %v", names)
	}
	for _, name := range names {
		if _, err := Lookup(name); err != nil {
			t.Errorf("listed objective %q not resolvable", name)
		}
	}
}
