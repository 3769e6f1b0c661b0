package levy

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perchlabs/NIDUS/internal/optimization/space"
)

// countingSource counts how many values are consumed from the stream.
type countingSource struct {
	src   rand.Source
	calls int
}

func (c *countingSource) Uint64() uint64 {
	c.calls++
	return c.src.Uint64()
}

func testSpace(spans ...float64) space.Space {
	s := make(space.Space, len(spans))
	for i, span := range spans {
		s[i] = space.Bound{Min: 0, Span: span}
	}
	return s
}

func TestStepZeroReturnsZeroVector(t *testing.T) {
	src := &countingSource{src: rand.NewPCG(1, 1)}
	sampler := NewSampler(testSpace(1, 1, 1), src)

	delta := sampler.Step(0)

	require.Len(t, delta, 3)
	for i, v := range delta {
		assert.Zerof(t, v, "coordinate %d", i)
	}
	assert.Zero(t, src.calls, "zero step should not consume randomness")
}

func TestStepDimensionality(t *testing.T) {
	for _, dims := range []int{1, 2, 5, 20} {
		spans := make([]float64, dims)
		for i := range spans {
			spans[i] = 1
		}
		sampler := NewSampler(testSpace(spans...), rand.NewPCG(3, 3))

		delta := sampler.Step(0.5)
		assert.Lenf(t, delta, dims, "dims=%d", dims)
	}
}

func TestStepDeterministicGivenSeed(t *testing.T) {
	a := NewSampler(testSpace(2, 3), rand.NewPCG(42, 42))
	b := NewSampler(testSpace(2, 3), rand.NewPCG(42, 42))

	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Step(0.1), b.Step(0.1))
	}
}

func TestStepScalesWithSpan(t *testing.T) {
	// The same draw sequence over spaces whose spans differ by a
	// factor yields componentwise proportional displacements.
	narrow := NewSampler(testSpace(1, 1), rand.NewPCG(9, 9))
	wide := NewSampler(testSpace(3, 3), rand.NewPCG(9, 9))

	for i := 0; i < 50; i++ {
		n := narrow.Step(0.2)
		w := wide.Step(0.2)
		for d := range n {
			assert.InEpsilon(t, 3*n[d], w[d], 1e-9)
		}
	}
}

func TestStepZeroSpanDimensionNeverMoves(t *testing.T) {
	sampler := NewSampler(testSpace(5, 0, 5), rand.NewPCG(11, 11))

	for i := 0; i < 200; i++ {
		delta := sampler.Step(1)
		assert.Zero(t, delta[1], "zero-span dimension must not be displaced")
	}
}

func TestStepScalesLinearlyWithStep(t *testing.T) {
	a := NewSampler(testSpace(1, 1), rand.NewPCG(5, 5))
	b := NewSampler(testSpace(1, 1), rand.NewPCG(5, 5))

	for i := 0; i < 50; i++ {
		small := a.Step(0.1)
		large := b.Step(0.4)
		for d := range small {
			assert.InEpsilon(t, 4*small[d], large[d], 1e-9)
		}
	}
}
