package cluster

import (
	"fmt"
	"math"
	"sort"
)

// agglomerative is the hierarchical strategy: bottom-up merging with
// average linkage until k clusters remain. Labels are assigned in order
// of each cluster's smallest member index, so output is deterministic.
func agglomerative(matrix [][]float64, p Params) ([]int, error) {
	k := p.K
	if k <= 0 {
		k = DefaultK(len(matrix))
	}
	if k < 2 {
		return nil, fmt.Errorf("hierarchical strategy needs k >= 2, got %d", k)
	}
	n := len(matrix)
	if n < k {
		return nil, fmt.Errorf("hierarchical strategy needs at least k=%d points, got %d", k, n)
	}

	// pairwise distances, computed once
	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
		for j := 0; j < i; j++ {
			d := euclidean(matrix[i], matrix[j])
			dist[i][j] = d
			dist[j][i] = d
		}
	}

	clusters := make([][]int, n)
	for i := range clusters {
		clusters[i] = []int{i}
	}

	for len(clusters) > k {
		bestA, bestB := 0, 1
		bestD := math.Inf(1)
		for a := 0; a < len(clusters); a++ {
			for b := a + 1; b < len(clusters); b++ {
				if d := averageLinkage(clusters[a], clusters[b], dist); d < bestD {
					bestA, bestB, bestD = a, b, d
				}
			}
		}
		clusters[bestA] = append(clusters[bestA], clusters[bestB]...)
		clusters = append(clusters[:bestB], clusters[bestB+1:]...)
	}

	// relabel by smallest member index
	sort.Slice(clusters, func(a, b int) bool {
		return minMember(clusters[a]) < minMember(clusters[b])
	})

	labels := make([]int, n)
	for label, members := range clusters {
		for _, i := range members {
			labels[i] = label
		}
	}
	return labels, nil
}

func averageLinkage(a, b []int, dist [][]float64) float64 {
	sum := 0.0
	for _, i := range a {
		for _, j := range b {
			sum += dist[i][j]
		}
	}
	return sum / float64(len(a)*len(b))
}

func minMember(members []int) int {
	min := members[0]
	for _, m := range members[1:] {
		if m < min {
			min = m
		}
	}
	return min
}
