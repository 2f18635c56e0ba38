// Package segmentation assigns the spending, age and demographics labels to
// every normalized transaction.
package segmentation

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"retailpulse/internal/statistics"
	"retailpulse/pkg/contracts/domain"
)

// Spending thresholds are the quartiles of Total_Spent over the whole set.
const (
	LowQuantile  = 0.25
	HighQuantile = 0.75
)

// Thresholds are the global spending boundaries for one record set.
type Thresholds struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Engine classifies records. It holds no per-run state.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates a segmentation engine.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger.With(slog.String("component", "segmentation"))}
}

// Segment computes the spending thresholds and returns a new dataset with
// all three labels set. records is not modified. An undefined Total_Spent
// anywhere fails the whole step with a StatisticsError.
func (e *Engine) Segment(ctx context.Context, records []domain.Transaction) (*domain.Dataset, Thresholds, error) {
	thresholds, err := ComputeThresholds(records)
	if err != nil {
		e.logger.ErrorContext(ctx, "spending thresholds unavailable", slog.String("error", err.Error()))
		return nil, Thresholds{}, err
	}

	out := make([]domain.Transaction, len(records))
	counts := make(map[domain.SpendingSegment]int, 3)
	for i, t := range records {
		t.SpendingSegment = ClassifySpending(t.TotalSpent, thresholds)
		t.AgeSegment = ClassifyAge(t.Age)
		t.DemographicsSegment = Demographics(t.Gender, t.AgeSegment)
		counts[t.SpendingSegment]++
		out[i] = t
	}

	e.logger.InfoContext(ctx, "records segmented",
		slog.Int("records", len(out)),
		slog.Float64("low_threshold", thresholds.Low),
		slog.Float64("high_threshold", thresholds.High),
		slog.Int("high", counts[domain.SpendingHigh]),
		slog.Int("medium", counts[domain.SpendingMedium]),
		slog.Int("low", counts[domain.SpendingLow]))

	return domain.NewDataset(out), thresholds, nil
}

// ComputeThresholds returns the 25th and 75th percentile of Total_Spent.
func ComputeThresholds(records []domain.Transaction) (Thresholds, error) {
	spent := make([]float64, len(records))
	for i, t := range records {
		spent[i] = t.TotalSpent
	}

	low, err := statistics.Quantile(spent, LowQuantile)
	if err != nil {
		return Thresholds{}, fmt.Errorf("spending segmentation: %w", err)
	}
	high, err := statistics.Quantile(spent, HighQuantile)
	if err != nil {
		return Thresholds{}, fmt.Errorf("spending segmentation: %w", err)
	}
	return Thresholds{Low: low, High: high}, nil
}

// ClassifySpending places a value above High in High, at or below Low in
// Low and everything else in Medium. A value equal to High is Medium.
func ClassifySpending(totalSpent float64, th Thresholds) domain.SpendingSegment {
	switch {
	case totalSpent > th.High:
		return domain.SpendingHigh
	case totalSpent <= th.Low:
		return domain.SpendingLow
	default:
		return domain.SpendingMedium
	}
}

// ClassifyAge maps an age to its segment. Age 18 exactly is Adult, as are
// 36 to 50 and undefined ages.
func ClassifyAge(age float64) domain.AgeSegment {
	switch {
	case math.IsNaN(age):
		return domain.AgeAdult
	case age > 50:
		return domain.AgeSenior
	case age > 18 && age <= 35:
		return domain.AgeYoungAdult
	case age < 18:
		return domain.AgeBelow18
	default:
		return domain.AgeAdult
	}
}

// Demographics joins gender and age segment. The result is undefined when
// gender is.
func Demographics(gender string, age domain.AgeSegment) string {
	if gender == "" {
		return ""
	}
	return gender + " " + string(age)
}
