package genes

import (
	"fmt"
	"math"
	"sort"
)

// Spearman computes the Spearman rank correlation coefficient between two
// equally long vectors, assigning tied values their average rank. A
// constant vector has no defined correlation and is reported as an error
// rather than NaN so callers can surface it as a quality warning.
func Spearman(x, y []float64) (float64, error) {
	if len(x) != len(y) {
		return 0, fmt.Errorf("spearman: input lengths differ (%d vs %d)", len(x), len(y))
	}
	if len(x) < 2 {
		return 0, fmt.Errorf("spearman: need at least two observations, got %d", len(x))
	}
	return pearson(ranks(x), ranks(y))
}

// ranks maps values to 1-based ranks, ties receiving the average of the
// ranks they span.
func ranks(values []float64) []float64 {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return values[idx[a]] < values[idx[b]] })

	out := make([]float64, len(values))
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && values[idx[j+1]] == values[idx[i]] {
			j++
		}
		// Ranks are 1-based; a run spanning ranks i+1..j+1 averages them.
		avg := float64(i+j+2) / 2
		for k := i; k <= j; k++ {
			out[idx[k]] = avg
		}
		i = j + 1
	}
	return out
}

func pearson(x, y []float64) (float64, error) {
	n := float64(len(x))
	var sumX, sumY float64
	for i := range x {
		sumX += x[i]
		sumY += y[i]
	}
	meanX, meanY := sumX/n, sumY/n

	var cov, varX, varY float64
	for i := range x {
		dx, dy := x[i]-meanX, y[i]-meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0, ErrConstantInput
	}
	return cov / math.Sqrt(varX*varY), nil
}
