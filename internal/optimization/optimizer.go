package optimization

import (
	"context"
	"math"
	"math/rand/v2"

	"github.com/perchlabs/NIDUS/internal/optimization/space"
)

// Optimizer defines the interface for optimization algorithms
type Optimizer interface {
	// Optimize runs the optimization process
	Optimize(ctx context.Context) (*OptimizationResult, error)

	// GetBestSolution returns the best solution found so far
	GetBestSolution() *Solution

	// GetHistory returns the history of improvements
	GetHistory() []Evaluation

	// Stop gracefully stops the optimization process
	Stop()
}

// OptimizerConfig contains configuration for a single search run
type OptimizerConfig struct {
	// Objective function to maximize
	Objective ObjectiveFunction

	// Space describes the box bounds for each dimension
	Space space.Space

	// PopulationSize is the fixed number of candidate solutions
	PopulationSize int

	// AbandonCount is the number of worst candidates regenerated
	// after each successful replacement
	AbandonCount int

	// Generations bounds the total number of search iterations
	Generations int

	// BaseStepSize is the nominal Levy step size before normalization
	BaseStepSize float64

	// Seed for reproducibility; ignored when Source is set
	Seed uint64

	// Source overrides the seeded PCG stream. All randomness
	// (sampler draws and index draws) is consumed from it in order.
	Source rand.Source

	// Progress, if set, is called once per successful replacement
	// with the current best solution
	Progress ProgressFunc
}

// ObjectiveFunction defines the function to be maximized
type ObjectiveFunction func([]float64) (float64, error)

// ProgressFunc receives the current best solution after each
// successful replacement. The Solution is a copy.
type ProgressFunc func(generation int, best Solution)

// Solution represents a candidate point in the search space
// together with its cached objective value
type Solution struct {
	Parameters []float64
	Value      float64
}

// Clone returns a deep copy of the solution.
func (s Solution) Clone() Solution {
	return Solution{
		Parameters: append([]float64(nil), s.Parameters...),
		Value:      s.Value,
	}
}

// Evaluation records the best solution after a successful replacement
type Evaluation struct {
	Generation int
	Solution   *Solution
}

// OptimizationResult contains the result of an optimization run
type OptimizationResult struct {
	BestSolution *Solution
	History      []Evaluation
	Generations  int
	Evaluations  int
}

// Better reports whether quality a strictly beats quality b.
// NaN ranks below every finite value so the ordering stays total.
func Better(a, b float64) bool {
	if math.IsNaN(a) {
		return false
	}
	if math.IsNaN(b) {
		return true
	}
	return a > b
}
