package statistics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpulse/internal/errors"
)

func TestQuantile(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		q      float64
		want   float64
	}{
		{"single value", []float64{7}, 0.75, 7},
		{"exact rank", []float64{1, 2, 3, 4, 5}, 0.25, 2},
		{"interpolated upper quartile", []float64{10, 20, 30, 40}, 0.75, 32.5},
		{"interpolated lower quartile", []float64{10, 20, 30, 40}, 0.25, 17.5},
		{"unsorted input", []float64{40, 10, 30, 20}, 0.5, 25},
		{"minimum", []float64{3, 1, 2}, 0, 1},
		{"maximum", []float64{3, 1, 2}, 1, 3},
		{"ninety-ninth", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}, 0.99, 10.9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Quantile(tt.values, tt.q)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestQuantile_DoesNotMutateInput(t *testing.T) {
	values := []float64{3, 1, 2}
	_, err := Quantile(values, 0.5)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 1, 2}, values)
}

func TestStatisticsErrors(t *testing.T) {
	withNaN := []float64{1, math.NaN(), 3}

	tests := []struct {
		name string
		fn   func() error
	}{
		{"quantile with undefined", func() error { _, err := Quantile(withNaN, 0.5); return err }},
		{"quantile empty", func() error { _, err := Quantile(nil, 0.5); return err }},
		{"quantile out of range", func() error { _, err := Quantile([]float64{1}, 1.5); return err }},
		{"mean with undefined", func() error { _, err := Mean(withNaN); return err }},
		{"mean empty", func() error { _, err := Mean(nil); return err }},
		{"median with undefined", func() error { _, err := Median(withNaN); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fn()
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrTypeStatistics))
		})
	}
}

func TestMeanMedian(t *testing.T) {
	mean, err := Mean([]float64{5, 3, 3, 1})
	require.NoError(t, err)
	assert.Equal(t, 3.0, mean)

	median, err := Median([]float64{5, 3, 1})
	require.NoError(t, err)
	assert.Equal(t, 3.0, median)

	median, err = Median([]float64{4, 1, 3, 2})
	require.NoError(t, err)
	assert.Equal(t, 2.5, median)
}

func TestSum(t *testing.T) {
	assert.Equal(t, 6.0, Sum([]float64{1, 2, 3}))
	assert.Equal(t, 4.0, Sum([]float64{1, math.NaN(), 3}))
	assert.Equal(t, 0.0, Sum(nil))
}
