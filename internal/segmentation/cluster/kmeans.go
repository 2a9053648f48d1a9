package cluster

import (
	"fmt"
	"math/rand"
)

// kMeans is the centroid strategy: seeded k-means with Lloyd iterations.
// Runs with the same matrix, k and seed always produce the same labels.
func kMeans(matrix [][]float64, p Params) ([]int, error) {
	k := p.K
	if k <= 0 {
		k = DefaultK(len(matrix))
	}
	if k < 2 {
		return nil, fmt.Errorf("centroid strategy needs k >= 2, got %d", k)
	}
	if len(matrix) < k {
		return nil, fmt.Errorf("centroid strategy needs at least k=%d points, got %d", k, len(matrix))
	}

	distinct := distinctRowIndexes(matrix)
	if len(distinct) < k {
		return nil, fmt.Errorf("centroid strategy needs %d distinct points, got %d", k, len(distinct))
	}

	maxIter := p.MaxIterations
	if maxIter <= 0 {
		maxIter = 100
	}

	rng := rand.New(rand.NewSource(p.Seed))
	rng.Shuffle(len(distinct), func(i, j int) {
		distinct[i], distinct[j] = distinct[j], distinct[i]
	})

	dims := len(matrix[0])
	centers := make([][]float64, k)
	for i := 0; i < k; i++ {
		centers[i] = append([]float64(nil), matrix[distinct[i]]...)
	}

	labels := make([]int, len(matrix))
	for i := range labels {
		labels[i] = -1
	}

	for iter := 0; iter < maxIter; iter++ {
		changed := false
		for i, row := range matrix {
			if c := nearest(row, centers); c != labels[i] {
				labels[i] = c
				changed = true
			}
		}
		if !changed {
			break
		}

		sums := make([][]float64, k)
		counts := make([]int, k)
		for i := range sums {
			sums[i] = make([]float64, dims)
		}
		for i, row := range matrix {
			c := labels[i]
			counts[c]++
			for j, v := range row {
				sums[c][j] += v
			}
		}
		for c := 0; c < k; c++ {
			if counts[c] == 0 {
				// keep the previous centroid rather than collapsing the cluster
				continue
			}
			for j := range sums[c] {
				centers[c][j] = sums[c][j] / float64(counts[c])
			}
		}
	}

	return labels, nil
}

func distinctRowIndexes(matrix [][]float64) []int {
	seen := make(map[string]bool, len(matrix))
	idx := make([]int, 0, len(matrix))
	for i, row := range matrix {
		key := fmt.Sprint(row)
		if !seen[key] {
			seen[key] = true
			idx = append(idx, i)
		}
	}
	return idx
}
