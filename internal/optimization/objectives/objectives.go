// Package objectives provides named benchmark objective functions with
// their canonical bounds. All benchmarks are maximization problems;
// the classical minimization forms are negated.
package objectives

import (
	"fmt"
	"math"
	"sort"

	"github.com/perchlabs/NIDUS/internal/optimization"
)

// Benchmark is a named objective with its canonical search bounds and
// known global optimum value.
type Benchmark struct {
	Name    string
	Dims    int
	Bounds  [][2]float64
	Optimum float64
	Fn      optimization.ObjectiveFunction
}

var registry = map[string]Benchmark{
	"sphere": {
		Name:    "sphere",
		Dims:    2,
		Bounds:  [][2]float64{{-5.12, 5.12}, {-5.12, 5.12}},
		Optimum: 0,
		Fn:      Sphere,
	},
	"himmelblau": {
		Name:    "himmelblau",
		Dims:    2,
		Bounds:  [][2]float64{{-6, 6}, {-6, 6}},
		Optimum: 0,
		Fn:      Himmelblau,
	},
	"rastrigin": {
		Name:    "rastrigin",
		Dims:    2,
		Bounds:  [][2]float64{{-5.12, 5.12}, {-5.12, 5.12}},
		Optimum: 0,
		Fn:      Rastrigin,
	},
	"eggholder": {
		Name:    "eggholder",
		Dims:    2,
		Bounds:  [][2]float64{{-512, 512}, {-512, 512}},
		Optimum: 959.6407,
		Fn:      Eggholder,
	},
}

// Lookup returns the benchmark registered under name.
func Lookup(name string) (Benchmark, error) {
	b, ok := registry[name]
	if !ok {
		return Benchmark{}, fmt.Errorf("unknown objective %q", name)
	}
	return b, nil
}

// MustLookup is like Lookup but panics on an unknown name.
func MustLookup(name string) Benchmark {
	b, err := Lookup(name)
	if err != nil {
		panic(err)
	}
	return b
}

// Names lists the registered benchmark names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Sphere is the negated sum of squares; maximum 0 at the origin.
func Sphere(x []float64) (float64, error) {
	sum := 0.0
	for _, v := range x {
		sum += v * v
	}
	return -sum, nil
}

// Himmelblau is the negated Himmelblau function. Its maximum of 0 is
// reached at four symmetric points, among them (3, 2).
func Himmelblau(x []float64) (float64, error) {
	if len(x) != 2 {
		return 0, fmt.Errorf("himmelblau expects 2 dimensions, got %d", len(x))
	}
	a := x[0]*x[0] + x[1] - 11
	b := x[0] + x[1]*x[1] - 7
	return -(a*a + b*b), nil
}

// Rastrigin is the negated Rastrigin function; maximum 0 at the origin.
func Rastrigin(x []float64) (float64, error) {
	sum := 10.0 * float64(len(x))
	for _, v := range x {
		sum += v*v - 10*math.Cos(2*math.Pi*v)
	}
	return -sum, nil
}

// Eggholder is the negated Eggholder function over [-512, 512]^2;
// maximum approximately 959.6407 at (512, 404.2319).
func Eggholder(x []float64) (float64, error) {
	if len(x) != 2 {
		return 0, fmt.Errorf("eggholder expects 2 dimensions, got %d", len(x))
	}
	a := -(x[1] + 47) * math.Sin(math.Sqrt(math.Abs(x[1]+x[0]/2+47)))
	b := -x[0] * math.Sin(math.Sqrt(math.Abs(x[0]-(x[1]+47))))
	return -(a + b), nil
}
