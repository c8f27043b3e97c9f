// Package stats holds the small statistical helpers used by the reweighting
// loop that do not belong to the forest engine itself.
package stats

import (
	"errors"
	"sort"
)

var ErrNoPValues = errors.New("no p-values to adjust")

// BenjaminiHochberg applies the Benjamini-Hochberg false discovery rate
// correction and returns the adjusted q-values in the same order as the input.
// Adjusted values are monotone over the sorted p-values and capped at 1.
func BenjaminiHochberg(p []float64) ([]float64, error) {
	n := len(p)
	if n == 0 {
		return nil, ErrNoPValues
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		return p[order[i]] < p[order[j]]
	})

	q := make([]float64, n)
	minSoFar := 1.0
	for rank := n; rank >= 1; rank-- {
		idx := order[rank-1]
		adj := p[idx] * float64(n) / float64(rank)
		if adj < minSoFar {
			minSoFar = adj
		}
		q[idx] = minSoFar
	}
	return q, nil
}
