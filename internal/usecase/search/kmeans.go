package search

import (
	"math"
	"math/rand"
)

const kmeansMaxIter = 100

// kmeans partitions rows into k clusters with Lloyd's algorithm, restarting
// `runs` times from seeded random initializations and keeping the run with
// the lowest inertia (sum of squared distances to the assigned centroid).
// The fixed seed makes cluster labels reproducible across calls.
func kmeans(rows [][]float64, k, runs int, seed int64) []int {
	n := len(rows)
	if n == 0 {
		return nil
	}
	if k > n {
		k = n
	}
	if runs < 1 {
		runs = 1
	}

	rng := rand.New(rand.NewSource(seed))
	best := make([]int, n)
	bestInertia := math.Inf(1)
	for run := 0; run < runs; run++ {
		labels, inertia := kmeansOnce(rows, k, rng)
		if inertia < bestInertia {
			bestInertia = inertia
			copy(best, labels)
		}
	}
	return best
}

func kmeansOnce(rows [][]float64, k int, rng *rand.Rand) ([]int, float64) {
	dim := len(rows[0])

	// Initialize centroids from k distinct rows.
	perm := rng.Perm(len(rows))
	centroids := make([][]float64, k)
	for i := 0; i < k; i++ {
		centroids[i] = append([]float64(nil), rows[perm[i]]...)
	}

	labels := make([]int, len(rows))
	for iter := 0; iter < kmeansMaxIter; iter++ {
		changed := false
		for i, row := range rows {
			bestC := 0
			bestD := math.Inf(1)
			for c, centroid := range centroids {
				if d := sqDist(row, centroid); d < bestD {
					bestC, bestD = c, d
				}
			}
			if labels[i] != bestC {
				labels[i] = bestC
				changed = true
			}
		}
		if iter > 0 && !changed {
			break
		}

		// Recompute centroids. Empty clusters keep their previous position.
		counts := make([]int, k)
		sums := make([][]float64, k)
		for c := range sums {
			sums[c] = make([]float64, dim)
		}
		for i, row := range rows {
			c := labels[i]
			counts[c]++
			for j, x := range row {
				sums[c][j] += x
			}
		}
		for c := range centroids {
			if counts[c] == 0 {
				continue
			}
			for j := range centroids[c] {
				centroids[c][j] = sums[c][j] / float64(counts[c])
			}
		}
	}

	var inertia float64
	for i, row := range rows {
		inertia += sqDist(row, centroids[labels[i]])
	}
	return labels, inertia
}

func sqDist(a, b []float64) float64 {
	var d float64
	for i := range a {
		diff := a[i] - b[i]
		d += diff * diff
	}
	return d
}
