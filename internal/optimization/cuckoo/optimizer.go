// Package cuckoo implements Cuckoo Search, a population-based
// metaheuristic for maximizing a bounded real-valued function using
// Levy-flight perturbations and periodic abandonment of the worst
// candidate solutions.
package cuckoo

import (
	"context"
	"math"
	"math/rand/v2"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/perchlabs/NIDUS/internal/optimization"
	"github.com/perchlabs/NIDUS/internal/optimization/levy"
)

const (
	defaultPopulationSize = 25
	defaultGenerations    = 100
	defaultBaseStepSize   = 0.1

	// maxStepRetries caps the in-bounds rejection loop of a mutation.
	// The cap only triggers when an interval is nearly exhausted by a
	// zero-span dimension combined with a nonzero step; the fallback
	// clamps so the walk always terminates.
	maxStepRetries = 64
)

// Optimizer implements Cuckoo Search over a fixed-size population.
type Optimizer struct {
	// Configuration
	config optimization.OptimizerConfig

	// Shared randomness stream; sampler draws and index draws are
	// consumed from it in a fixed order
	src rand.Source
	rng *rand.Rand

	// Levy step sampler
	sampler *levy.Sampler

	// Normalized step size for this run
	stepSize float64

	// Fixed-size population, exclusively owned by the search loop
	population []optimization.Solution

	// Best solution found
	bestSolution *optimization.Solution

	// History of improvements
	history []optimization.Evaluation

	// Objective evaluation count
	evaluations int

	// For cancellation
	cancel context.CancelFunc
}

// New creates a Cuckoo Search optimizer. It validates the
// configuration before any random draw is consumed: an abandon count
// larger than the population is rejected with
// optimization.ErrAbandonExceedsPopulation.
func New(config optimization.OptimizerConfig) (*Optimizer, error) {
	if config.Objective == nil {
		return nil, optimization.NewError("objective function is required").
			WithComponent("cuckoo").WithOperation("validate")
	}
	if err := config.Space.Validate(); err != nil {
		return nil, optimization.WrapError(err, "invalid search space").
			WithComponent("cuckoo").WithOperation("validate")
	}

	if config.PopulationSize < 1 {
		config.PopulationSize = defaultPopulationSize
	}
	if config.Generations < 1 {
		config.Generations = defaultGenerations
	}
	if config.BaseStepSize <= 0 {
		config.BaseStepSize = defaultBaseStepSize
	}
	if config.AbandonCount < 0 {
		return nil, optimization.NewErrorf("negative abandon count %d", config.AbandonCount).
			WithComponent("cuckoo").WithOperation("validate")
	}
	if config.PopulationSize < config.AbandonCount {
		return nil, optimization.ErrAbandonExceedsPopulation
	}

	src := config.Source
	if src == nil {
		seed := config.Seed
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}
		src = rand.NewPCG(seed, seed)
	}

	// The nominal step shrinks as dimensionality or generation budget
	// grows, keeping the total expected displacement of a run roughly
	// constant across configurations.
	stepSize := config.BaseStepSize / math.Sqrt(float64(config.Space.Dims()*config.Generations))

	return &Optimizer{
		config:   config,
		src:      src,
		rng:      rand.New(src),
		sampler:  levy.NewSampler(config.Space, src),
		stepSize: stepSize,
		history:  make([]optimization.Evaluation, 0, config.Generations),
	}, nil
}

// StepSize returns the internally normalized step size for this run.
func (o *Optimizer) StepSize() float64 {
	return o.stepSize
}

// Optimize runs the search: one mutation per generation, greedy
// replacement of a random slot, and abandonment of the worst
// candidates after every successful replacement.
func (o *Optimizer) Optimize(ctx context.Context) (*optimization.OptimizationResult, error) {
	ctx, o.cancel = context.WithCancel(ctx)
	defer o.cancel()

	o.population = make([]optimization.Solution, o.config.PopulationSize)
	for i := range o.population {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		sol, err := o.generate()
		if err != nil {
			return nil, err
		}
		o.population[i] = sol
		o.observeBest(sol)
	}

	for gen := 0; gen < o.config.Generations; gen++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		// An intruder egg hatched from a random nest replaces another
		// nest only if strictly better.
		i := o.rng.IntN(len(o.population))
		j := o.rng.IntN(len(o.population))

		point := o.randomStep(o.population[i].Parameters)
		value, err := o.evaluate(point)
		if err != nil {
			return nil, optimization.WrapError(err, "evaluating mutated candidate").
				WithComponent("cuckoo").WithOperation("optimize")
		}
		if !optimization.Better(value, o.population[j].Value) {
			continue
		}

		sol := optimization.Solution{Parameters: point, Value: value}
		o.population[j] = sol
		o.observeBest(sol)

		if err := o.abandonWorst(ctx, gen); err != nil {
			return nil, err
		}
	}

	return &optimization.OptimizationResult{
		BestSolution: o.bestSolution,
		History:      o.history,
		Generations:  o.config.Generations,
		Evaluations:  o.evaluations,
	}, nil
}

// GetBestSolution returns the best solution found so far
func (o *Optimizer) GetBestSolution() *optimization.Solution {
	return o.bestSolution
}

// GetHistory returns the history of improvements
func (o *Optimizer) GetHistory() []optimization.Evaluation {
	return o.history
}

// Stop stops the optimization process
func (o *Optimizer) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
}

// generate draws a fresh uniform candidate and evaluates it.
func (o *Optimizer) generate() (optimization.Solution, error) {
	point := o.config.Space.Sample(o.src)
	value, err := o.evaluate(point)
	if err != nil {
		return optimization.Solution{}, optimization.WrapError(err, "evaluating generated candidate").
			WithComponent("cuckoo").WithOperation("generate")
	}
	return optimization.Solution{Parameters: point, Value: value}, nil
}

// randomStep perturbs a point with a Levy step, rejecting and
// resampling any proposal that leaves the space. Clamping is only a
// last resort once the retry budget is spent, since routine clamping
// would bias the walk toward the boundaries.
func (o *Optimizer) randomStep(from []float64) []float64 {
	point := make([]float64, len(from))
	for try := 0; try < maxStepRetries; try++ {
		floats.AddTo(point, from, o.sampler.Step(o.stepSize))
		if o.config.Space.Contains(point) {
			return point
		}
	}
	o.config.Space.Clamp(point)
	return point
}

// abandonWorst sorts the population ascending by quality, regenerates
// the worst AbandonCount candidates, and reports the current best.
// It runs after every successful replacement, not once per generation.
func (o *Optimizer) abandonWorst(ctx context.Context, gen int) error {
	sort.SliceStable(o.population, func(a, b int) bool {
		return optimization.Better(o.population[b].Value, o.population[a].Value)
	})

	for k := 0; k < o.config.AbandonCount; k++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		sol, err := o.generate()
		if err != nil {
			return err
		}
		o.population[k] = sol
		o.observeBest(sol)
	}

	best := o.bestSolution.Clone()
	o.history = append(o.history, optimization.Evaluation{
		Generation: gen,
		Solution:   &best,
	})
	if o.config.Progress != nil {
		o.config.Progress(gen, best)
	}
	return nil
}

// observeBest updates the best solution if the candidate is better.
// The stored best never decreases over a run.
func (o *Optimizer) observeBest(sol optimization.Solution) {
	if o.bestSolution == nil || optimization.Better(sol.Value, o.bestSolution.Value) {
		clone := sol.Clone()
		o.bestSolution = &clone
	}
}

// evaluate calls the objective and counts the evaluation.
func (o *Optimizer) evaluate(point []float64) (float64, error) {
	o.evaluations++
	return o.config.Objective(point)
}
