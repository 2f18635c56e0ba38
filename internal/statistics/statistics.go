// Package statistics provides the descriptive statistics used by the
// segmentation, aggregation and quality stages. Undefined inputs (NaN) are
// rejected with a StatisticsError rather than skipped, except by Sum.
package statistics

import (
	"fmt"
	"math"
	"sort"

	"retailpulse/internal/errors"
)

// Quantile returns the q-quantile of values using linear interpolation
// between the closest ranks: position (n-1)*q in the sorted sample.
func Quantile(values []float64, q float64) (float64, error) {
	if q < 0 || q > 1 {
		return 0, errors.NewStatisticsError(fmt.Sprintf("quantile %v outside [0, 1]", q))
	}
	sorted, err := sortedCopy(values, "quantile")
	if err != nil {
		return 0, err
	}
	return quantileSorted(sorted, q), nil
}

func quantileSorted(sorted []float64, q float64) float64 {
	n := len(sorted)
	index := q * float64(n-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))

	if lower == upper {
		return sorted[lower]
	}

	weight := index - float64(lower)
	return sorted[lower] + (sorted[upper]-sorted[lower])*weight
}

// Mean returns the arithmetic mean of values.
func Mean(values []float64) (float64, error) {
	if err := checkDefined(values, "mean"); err != nil {
		return 0, err
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), nil
}

// Median returns the middle element, or the average of the two middle
// elements for an even-sized sample.
func Median(values []float64) (float64, error) {
	sorted, err := sortedCopy(values, "median")
	if err != nil {
		return 0, err
	}
	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2, nil
	}
	return sorted[n/2], nil
}

// Sum adds the defined values, skipping NaN. An all-undefined or empty
// sample sums to zero.
func Sum(values []float64) float64 {
	var sum float64
	for _, v := range values {
		if !math.IsNaN(v) {
			sum += v
		}
	}
	return sum
}

func sortedCopy(values []float64, stat string) ([]float64, error) {
	if err := checkDefined(values, stat); err != nil {
		return nil, err
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return sorted, nil
}

func checkDefined(values []float64, stat string) error {
	if len(values) == 0 {
		return errors.NewStatisticsError(fmt.Sprintf("%s of an empty sample", stat))
	}
	undefined := 0
	for _, v := range values {
		if math.IsNaN(v) {
			undefined++
		}
	}
	if undefined > 0 {
		return errors.NewStatisticsError(fmt.Sprintf("%s over %d undefined values", stat, undefined)).
			WithContext("undefined", undefined)
	}
	return nil
}
