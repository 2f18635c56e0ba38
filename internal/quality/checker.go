package quality

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"retailpulse/internal/infrastructure"
	"retailpulse/pkg/contracts/domain"
)

// Report collects every quality finding of one run.
type Report struct {
	Missing          []MissingCount `json:"missing"`
	QuantityOutliers OutlierReport  `json:"quantity_outliers"`
	PriceOutliers    OutlierReport  `json:"unit_price_outliers"`
	Chronology       Chronology     `json:"chronology"`
	// CheckErrors maps a failed check to its message
	CheckErrors map[string]string `json:"check_errors,omitempty"`
}

// Checker runs the quality checks.
type Checker struct {
	logger  *slog.Logger
	metrics *infrastructure.BusinessMetrics
}

// NewChecker creates a checker. metrics may be nil.
func NewChecker(logger *slog.Logger, metrics *infrastructure.BusinessMetrics) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{
		logger:  logger.With(slog.String("component", "quality")),
		metrics: metrics,
	}
}

// Run executes all checks over ds. It never fails; a check that cannot be
// computed is listed in CheckErrors and the others still run.
func (c *Checker) Run(ctx context.Context, ds *domain.Dataset) *Report {
	report := &Report{
		Missing:          MissingValues(ds),
		QuantityOutliers: QuantityOutliers(ds),
		PriceOutliers:    UnitPriceOutliers(ds),
		Chronology:       CheckChronology(ds),
		CheckErrors:      make(map[string]string),
	}

	for _, o := range []OutlierReport{report.QuantityOutliers, report.PriceOutliers} {
		if o.Err != nil {
			report.CheckErrors[o.Column+"_outliers"] = o.Failure()
			c.logger.WarnContext(ctx, "outlier check skipped",
				slog.String("column", o.Column),
				slog.String("error", o.Failure()))
			continue
		}
		c.record(ctx, o.Column+"_outliers", len(o.Outliers))
	}

	missing := 0
	for _, m := range report.Missing {
		missing += m.Missing
	}
	c.record(ctx, "missing_values", missing)

	if report.Chronology.Resorted {
		c.record(ctx, "chronology", 1)
		c.logger.InfoContext(ctx, "dates were out of order, produced sorted copy")
	}

	c.logger.InfoContext(ctx, "quality checks complete",
		slog.Int("missing_values", missing),
		slog.Int("quantity_outliers", len(report.QuantityOutliers.Outliers)),
		slog.Int("unit_price_outliers", len(report.PriceOutliers.Outliers)),
		slog.Bool("already_ordered", report.Chronology.AlreadyOrdered),
		slog.Int("undefined_dates", report.Chronology.UndefinedDates))

	return report
}

func (c *Checker) record(ctx context.Context, check string, findings int) {
	if c.metrics == nil || findings == 0 {
		return
	}
	c.metrics.QualityFindings.Add(ctx, int64(findings),
		metric.WithAttributes(attribute.String("check", check)))
}
