// Package space describes axis-aligned box bounds for a search space.
package space

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Bound defines the closed interval [Min, Min+Span] for one axis.
// Span must be non-negative; a zero span pins the axis to Min.
type Bound struct {
	Min  float64
	Span float64
}

// Max returns the upper edge of the interval.
func (b Bound) Max() float64 {
	return b.Min + b.Span
}

// Contains reports whether v lies within the closed interval.
func (b Bound) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max()
}

// Clamp projects v onto the closed interval.
func (b Bound) Clamp(v float64) float64 {
	return math.Max(b.Min, math.Min(v, b.Max()))
}

// Space is an ordered, fixed-length sequence of per-dimension bounds.
// It is immutable once constructed and shared read-only by the sampler
// and the search loop.
type Space []Bound

// New builds a Space from [min, max] pairs.
func New(bounds [][2]float64) (Space, error) {
	s := make(Space, len(bounds))
	for i, b := range bounds {
		if b[1] < b[0] {
			return nil, fmt.Errorf("dimension %d: max %v below min %v", i, b[1], b[0])
		}
		s[i] = Bound{Min: b[0], Span: b[1] - b[0]}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Dims returns the dimensionality of the space.
func (s Space) Dims() int {
	return len(s)
}

// Validate checks the space invariants: at least one dimension,
// finite bounds, non-negative spans.
func (s Space) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("space has no dimensions")
	}
	for i, b := range s {
		if math.IsNaN(b.Min) || math.IsInf(b.Min, 0) || math.IsNaN(b.Span) || math.IsInf(b.Span, 0) {
			return fmt.Errorf("dimension %d: bounds must be finite, got min=%v span=%v", i, b.Min, b.Span)
		}
		if b.Span < 0 {
			return fmt.Errorf("dimension %d: negative span %v", i, b.Span)
		}
	}
	return nil
}

// Contains reports whether every coordinate of point lies within its
// dimension's closed interval.
func (s Space) Contains(point []float64) bool {
	if len(point) != len(s) {
		return false
	}
	for i, b := range s {
		if !b.Contains(point[i]) {
			return false
		}
	}
	return true
}

// Clamp projects point onto the space in place.
func (s Space) Clamp(point []float64) {
	for i, b := range s {
		point[i] = b.Clamp(point[i])
	}
}

// Sample draws a uniform random point from the space. Each coordinate
// is an independent uniform draw from [Min, Min+Span).
func (s Space) Sample(src rand.Source) []float64 {
	point := make([]float64, len(s))
	for i, b := range s {
		u := distuv.Uniform{Min: b.Min, Max: b.Max(), Src: src}
		point[i] = u.Rand()
	}
	return point
}
