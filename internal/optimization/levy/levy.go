// Package levy implements the heavy-tailed step sampler driving the
// cuckoo search random walk.
package levy

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/perchlabs/NIDUS/internal/optimization/space"
)

// calibration scales the raw step so that the mode of the resulting
// step-length distribution equals the requested step size.
const calibration = 3.0

// Sampler draws Levy-flight displacement vectors over a parameter
// space. It keeps no state between calls beyond the shared randomness
// source, so a fixed source yields a reproducible draw sequence.
type Sampler struct {
	space  space.Space
	normal distuv.Normal
}

// NewSampler creates a sampler over the given space. All normal draws
// are consumed sequentially from src.
func NewSampler(sp space.Space, src rand.Source) *Sampler {
	return &Sampler{
		space:  sp,
		normal: distuv.Normal{Mu: 0, Sigma: 1, Src: src},
	}
}

// Step returns one displacement vector whose length follows an
// approximate Levy distribution with mode step, scaled componentwise
// by each dimension's span so wider dimensions move proportionally
// further. A zero step returns the zero vector without drawing.
func (s *Sampler) Step(step float64) []float64 {
	delta := make([]float64, s.space.Dims())
	if step == 0 {
		return delta
	}

	// Direction: independent standard normals. A zero-magnitude draw is
	// degenerate and resampled; so is a zero heavy-tail divisor, since
	// either would produce a division by zero below.
	var magnitude float64
	for {
		for i := range delta {
			delta[i] = s.normal.Rand()
		}
		magnitude = floats.Norm(delta, 2)
		if magnitude > 0 {
			break
		}
	}

	var heavy float64
	for {
		heavy = math.Sqrt(math.Abs(s.normal.Rand()))
		if heavy > 0 {
			break
		}
	}

	// Small |n| stretches the step into an occasional long flight,
	// large |n| shrinks it into a local move.
	scale := step * calibration / (heavy * magnitude)
	for i, b := range s.space {
		delta[i] *= scale * b.Span
	}
	return delta
}
