package report

import (
	"math"
	"sort"
)

// Number is the set of sample types the statistics helpers accept.
type Number interface {
	int | int64 | float64
}

// Percentile returns the p-th percentile of data with linear interpolation
// between closest ranks. data need not be sorted; it is not modified.
// Returns 0 for empty data.
func Percentile[T Number](data []T, p float64) float64 {
	n := len(data)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	for i, v := range data {
		sorted[i] = float64(v)
	}
	sort.Float64s(sorted)

	rank := p / 100.0 * float64(n-1)
	lowerIdx := int(math.Floor(rank))
	upperIdx := int(math.Ceil(rank))
	if upperIdx >= n {
		return sorted[n-1]
	}
	if lowerIdx == upperIdx {
		return sorted[lowerIdx]
	}
	return sorted[lowerIdx] + (sorted[upperIdx]-sorted[lowerIdx])*(rank-float64(lowerIdx))
}

// Mean returns the arithmetic mean of numbers, or 0 when empty.
func Mean[T Number](numbers []T) float64 {
	if len(numbers) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, number := range numbers {
		sum += float64(number)
	}
	return sum / float64(len(numbers))
}
