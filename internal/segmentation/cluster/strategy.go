// Package cluster implements the pluggable clustering strategies behind
// candidate segmentation. All strategies consume the standardized feature
// matrix from the features package and return one label per input row;
// -1 marks noise (density strategy only).
package cluster

import (
	"errors"
	"fmt"
	"math"
)

// Strategy names a clustering algorithm.
type Strategy string

const (
	StrategyCentroid     Strategy = "centroid"
	StrategyHierarchical Strategy = "hierarchical"
	StrategyDensity      Strategy = "density"
)

// Params carries the per-strategy tuning knobs. Fields irrelevant to the
// selected strategy are ignored.
type Params struct {
	K             int     // centroid, hierarchical
	Eps           float64 // density
	MinPoints     int     // density
	MaxIterations int     // centroid
	Seed          int64   // centroid
}

// Func is the signature every strategy implements.
type Func func(matrix [][]float64, p Params) ([]int, error)

var strategies = map[Strategy]Func{
	StrategyCentroid:     kMeans,
	StrategyHierarchical: agglomerative,
	StrategyDensity:      dbscan,
}

var ErrUnknownStrategy = errors.New("unknown clustering strategy")

// ParseStrategy validates a strategy name coming from process variables.
func ParseStrategy(name string) (Strategy, error) {
	s := Strategy(name)
	if _, ok := strategies[s]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
	return s, nil
}

// Segment dispatches to the named strategy. The returned slice has exactly
// one label per matrix row.
func Segment(matrix [][]float64, strategy Strategy, p Params) ([]int, error) {
	fn, ok := strategies[strategy]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}
	if len(matrix) == 0 {
		return nil, errors.New("empty feature matrix")
	}
	return fn(matrix, p)
}

// DefaultK picks a cluster count from the dataset size when the caller
// does not supply one: n/50 clamped to [2, 10].
func DefaultK(n int) int {
	k := n / 50
	if k < 2 {
		k = 2
	}
	if k > 10 {
		k = 10
	}
	return k
}

func euclidean(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// nearest returns the index of the closest center, preferring the lowest
// index on exact ties so assignment is reproducible.
func nearest(point []float64, centers [][]float64) int {
	best, bestDist := 0, math.Inf(1)
	for i, c := range centers {
		if d := euclidean(point, c); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
