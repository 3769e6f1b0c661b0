package space

import (
	"math"
	"math/rand/v2"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		bounds  [][2]float64
		wantErr bool
	}{
		{
			name:    "valid two dimensional",
			bounds:  [][2]float64{{-6, 6}, {-6, 6}},
			wantErr: false,
		},
		{
			name:    "zero span dimension",
			bounds:  [][2]float64{{1, 1}},
			wantErr: false,
		},
		{
			name:    "max below min",
			bounds:  [][2]float64{{2, 1}},
			wantErr: true,
		},
		{
			name:    "empty",
			bounds:  nil,
			wantErr: true,
		},
		{
			name:    "non-finite bound",
			bounds:  [][2]float64{{math.Inf(-1), 0}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.bounds)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if s.Dims() != len(tt.bounds) {
				t.Errorf("expected %d dimensions, got %d", len(tt.bounds), s.Dims())
			}
		})
	}
}

func TestBound(t *testing.T) {
	b := Bound{Min: -2, Span: 4}

	if got := b.Max(); got != 2 {
		t.Errorf("Max: expected 2, got %v", got)
	}

	for v, want := range map[float64]bool{-2: true, 0: true, 2: true, -2.001: false, 2.001: false} {
		if got := b.Contains(v); got != want {
			t.Errorf("Contains(%v): expected %v, got %v", v, want, got)
		}
	}

	for v, want := range map[float64]float64{-3: -2, 3: 2, 0.5: 0.5} {
		if got := b.Clamp(v); got != want {
			t.Errorf("Clamp(%v): expected %v, got %v", v, want, got)
		}
	}
}

func TestContainsAndClamp(t *testing.T) {
	s := Space{{Min: 0, Span: 1}, {Min: -1, Span: 2}}

	if !s.Contains([]float64{0.5, 0}) {
		t.Error("point inside bounds reported outside")
	}
	if s.Contains([]float64{1.5, 0}) {
		t.Error("point outside bounds reported inside")
	}
	if s.Contains([]float64{0.5}) {
		t.Error("dimension mismatch reported inside")
	}

	point := []float64{2, -5}
	s.Clamp(point)
	if !s.Contains(point) {
		t.Errorf("clamped point %v still out of bounds", point)
	}
}

func TestSample(t *testing.T) {
	s := Space{{Min: -3, Span: 6}, {Min: 5, Span: 0}, {Min: 100, Span: 0.5}}
	src := rand.NewPCG(7, 7)

	for i := 0; i < 1000; i++ {
		point := s.Sample(src)
		if len(point) != s.Dims() {
			t.Fatalf("sample has %d coordinates, expected %d", len(point), s.Dims())
		}
		if !s.Contains(point) {
			t.Fatalf("sample %v out of bounds", point)
		}
		if point[1] != 5 {
			t.Fatalf("zero-span dimension sampled %v, expected 5", point[1])
		}
	}
}
