package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"retailpulse/internal/analytics"
	"retailpulse/internal/config"
	"retailpulse/internal/errors"
	"retailpulse/internal/quality"
	"retailpulse/pkg/contracts/domain"
)

// Bundle is everything one pipeline run persists.
type Bundle struct {
	// Enriched is the normalized, segmented and recommended dataset
	Enriched *domain.Dataset
	// Ordered is the chronologically ordered copy from the quality checks
	Ordered *domain.Dataset
	Report  *analytics.Report
	Quality *quality.Report
}

// Exporter writes a run's derived tables to the configured locations.
type Exporter struct {
	paths  *config.Paths
	bom    bool
	csv    *CSVWriter
	logger *slog.Logger
}

// NewExporter creates an exporter for the resolved paths.
func NewExporter(paths *config.Paths, writeBOM bool, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "exporter"))
	return &Exporter{
		paths:  paths,
		bom:    writeBOM,
		csv:    NewCSVWriter(logger),
		logger: logger,
	}
}

// Export writes the enriched table, the top selling products, the
// chronologically ordered table and, when configured, the workbook. It
// returns the files written.
func (e *Exporter) Export(ctx context.Context, b Bundle) ([]string, error) {
	start := time.Now()
	if b.Enriched == nil {
		return nil, errors.NewAppValidationError("nothing to export: enriched dataset is missing")
	}
	if err := e.paths.EnsureDirectories(); err != nil {
		return nil, errors.NewStorageError("failed to prepare export directories", err)
	}

	ordered := b.Ordered
	if ordered == nil {
		ordered = quality.CheckChronology(b.Enriched).Ordered
	}

	jobs := []struct {
		path  string
		table *domain.Table
	}{
		{e.paths.EnrichedCSV, TransactionTable("enriched", "Enriched Transactions", b.Enriched)},
		{e.paths.TopSellingCSV, analytics.TopSellingTable(analytics.TopSellingProducts(b.Enriched))},
		{e.paths.OrderedCSV, TransactionTable("ordered", "Transactions by Date", ordered)},
	}

	var written []string
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		if err := e.csv.WriteTable(job.path, job.table, e.bom); err != nil {
			return written, errors.NewStorageError(fmt.Sprintf("failed to export %s", job.path), err)
		}
		written = append(written, job.path)
	}

	if e.paths.Workbook != "" {
		if err := WriteWorkbook(e.paths.Workbook, b.Report, b.Quality); err != nil {
			return written, errors.NewStorageError("failed to export workbook", err)
		}
		written = append(written, e.paths.Workbook)
	}

	e.logger.InfoContext(ctx, "exports written",
		slog.Int("files", len(written)),
		slog.Duration("duration", time.Since(start)))
	return written, nil
}
