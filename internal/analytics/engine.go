package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"retailpulse/internal/infrastructure"
	"retailpulse/pkg/contracts/domain"
)

// Report holds the finished tables of one run. A view that failed has an
// entry in Errors and none in Tables.
type Report struct {
	Tables   map[string][]*domain.Table `json:"tables"`
	Errors   map[string]error           `json:"-"`
	Duration time.Duration              `json:"duration"`
}

// View returns the tables computed for a view.
func (r *Report) View(name string) ([]*domain.Table, bool) {
	if r == nil {
		return nil, false
	}
	tables, ok := r.Tables[name]
	return tables, ok
}

// Section returns the tables of every successful view in a section, in
// catalogue order.
func (r *Report) Section(section domain.Section) []*domain.Table {
	var out []*domain.Table
	for _, v := range ViewsIn(section) {
		if tables, ok := r.View(v.Name); ok {
			out = append(out, tables...)
		}
	}
	return out
}

// Failures returns the isolated view errors as messages.
func (r *Report) Failures() map[string]string {
	out := make(map[string]string, len(r.Errors))
	for name, err := range r.Errors {
		out[name] = err.Error()
	}
	return out
}

// Engine computes the view catalogue over a dataset.
type Engine struct {
	logger  *slog.Logger
	metrics *infrastructure.BusinessMetrics
	workers int
	views   []View
}

// NewEngine creates an aggregation engine running at most workers views at
// once. metrics may be nil.
func NewEngine(logger *slog.Logger, metrics *infrastructure.BusinessMetrics, workers int) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if workers < 1 {
		workers = 1
	}
	return &Engine{
		logger:  logger.With(slog.String("component", "analytics")),
		metrics: metrics,
		workers: workers,
		views:   Catalog(),
	}
}

// Run computes every view over ds. Views share ds read-only and do not see
// each other's output. A failing view is recorded in Report.Errors and does
// not stop the others; only cancellation of ctx fails the run.
func (e *Engine) Run(ctx context.Context, ds *domain.Dataset) (*Report, error) {
	start := time.Now()
	report := &Report{
		Tables: make(map[string][]*domain.Table, len(e.views)),
		Errors: make(map[string]error),
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for _, v := range e.views {
		v := v
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			tables, err := compute(v, ds)
			infrastructure.RecordViewMetrics(gctx, e.metrics, v.Name, err)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Errors[v.Name] = err
				e.logger.ErrorContext(gctx, "view failed",
					slog.String("view", v.Name),
					slog.String("error", err.Error()))
				// Sibling views keep running
				return nil
			}
			report.Tables[v.Name] = tables
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("aggregation cancelled: %w", err)
	}

	report.Duration = time.Since(start)
	e.logger.InfoContext(ctx, "aggregation complete",
		slog.Int("views", len(report.Tables)),
		slog.Int("failed", len(report.Errors)),
		slog.Duration("duration", report.Duration))
	return report, nil
}

// compute runs one view and stamps its metadata on the result. A panic in
// the view is converted to an error so it stays isolated.
func compute(v View, ds *domain.Dataset) (tables []*domain.Table, err error) {
	defer func() {
		if r := recover(); r != nil {
			tables = nil
			err = fmt.Errorf("view %s panicked: %v", v.Name, r)
		}
	}()

	tables, err = v.Compute(ds)
	if err != nil {
		return nil, fmt.Errorf("view %s: %w", v.Name, err)
	}
	for _, t := range tables {
		t.Name = v.Name
		t.Section = v.Section
		if t.Title == "" {
			t.Title = v.Title
		}
	}
	return tables, nil
}
