package cluster

import "fmt"

// Noise is the label for points no density cluster claims.
const Noise = -1

// dbscan is the density strategy. Cluster ids are assigned in discovery
// order; points that never reach a core neighborhood stay at Noise.
func dbscan(matrix [][]float64, p Params) ([]int, error) {
	if p.Eps <= 0 {
		return nil, fmt.Errorf("density strategy needs eps > 0, got %v", p.Eps)
	}
	minPts := p.MinPoints
	if minPts <= 0 {
		minPts = 4
	}

	n := len(matrix)
	labels := make([]int, n)
	for i := range labels {
		labels[i] = Noise
	}
	visited := make([]bool, n)

	clusterID := 0
	for i := 0; i < n; i++ {
		if visited[i] {
			continue
		}
		visited[i] = true

		neighbors := regionQuery(matrix, i, p.Eps)
		if len(neighbors) < minPts {
			continue
		}

		labels[i] = clusterID
		// neighbors grows while expanding, classic queue walk
		for q := 0; q < len(neighbors); q++ {
			j := neighbors[q]
			if !visited[j] {
				visited[j] = true
				if more := regionQuery(matrix, j, p.Eps); len(more) >= minPts {
					neighbors = append(neighbors, more...)
				}
			}
			if labels[j] == Noise {
				labels[j] = clusterID
			}
		}
		clusterID++
	}

	if clusterID == 0 {
		return nil, fmt.Errorf("density parameters eps=%v minPoints=%d produced zero clusters", p.Eps, minPts)
	}
	return labels, nil
}

func regionQuery(matrix [][]float64, i int, eps float64) []int {
	neighbors := make([]int, 0, 8)
	for j := range matrix {
		if euclidean(matrix[i], matrix[j]) <= eps {
			neighbors = append(neighbors, j)
		}
	}
	return neighbors
}
