// Package facematch implements embedding distance computation and
// nearest-neighbor matching over the enrolled face catalog.
package facematch

import "math"

// Distance computes the Euclidean (L2) distance between two embeddings.
// Vectors are compared as-is; no normalization is applied.
func Distance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return math.Sqrt(sum)
}

// Distances computes the Euclidean distance between query and every known
// embedding, in catalog order.
func Distances(known [][]float64, query []float64) []float64 {
	if len(known) == 0 {
		return nil
	}
	distances := make([]float64, len(known))
	for i, k := range known {
		distances[i] = Distance(k, query)
	}
	return distances
}

// Nearest returns the index and distance of the known embedding closest to
// query. When several entries share the minimum distance, the first in catalog
// order wins. ok is false when the known set is empty; callers must treat that
// as "no match", never as a zero distance.
func Nearest(known [][]float64, query []float64) (index int, distance float64, ok bool) {
	if len(known) == 0 {
		return 0, 0, false
	}
	index = 0
	distance = Distance(known[0], query)
	for i := 1; i < len(known); i++ {
		if d := Distance(known[i], query); d < distance {
			index = i
			distance = d
		}
	}
	return index, distance, true
}
