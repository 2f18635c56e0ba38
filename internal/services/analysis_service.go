package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"retailpulse/internal/analytics"
	"retailpulse/internal/config"
	"retailpulse/internal/dataprocessing"
	"retailpulse/internal/exporter"
	"retailpulse/internal/infrastructure"
	"retailpulse/internal/quality"
	"retailpulse/internal/recommendation"
	"retailpulse/internal/segmentation"
	"retailpulse/pkg/contracts/domain"
)

// Run triggers
const (
	TriggerStartup = "startup"
	TriggerManual  = "manual"
	TriggerWatch   = "watch"
)

// Pipeline stage names as they appear in logs, metrics and snapshots
const (
	StageLoad      = "load"
	StageNormalize = "normalize"
	StageSegment   = "segment"
	StageRecommend = "recommend"
	StageAnalyze   = "analyze"
	StageExport    = "export"
)

// StageTiming is how long one pipeline stage took.
type StageTiming struct {
	Stage    string        `json:"stage"`
	Duration time.Duration `json:"duration"`
}

// Snapshot is the complete result of one pipeline run. A published snapshot
// is never modified; a new run replaces it as a whole.
type Snapshot struct {
	RunID      uuid.UUID               `json:"run_id"`
	Trigger    string                  `json:"trigger"`
	StartedAt  time.Time               `json:"started_at"`
	Duration   time.Duration           `json:"duration"`
	Stages     []StageTiming           `json:"stages"`
	Sources    []string                `json:"sources"`
	Records    int                     `json:"records"`
	Thresholds segmentation.Thresholds `json:"thresholds"`
	Exports    []string                `json:"exports,omitempty"`

	Dataset *domain.Dataset   `json:"-"`
	Report  *analytics.Report `json:"-"`
	Quality *quality.Report   `json:"-"`
}

// AnalysisService runs the pipeline and publishes its snapshots.
type AnalysisService struct {
	input       string
	debounce    time.Duration
	loader      *dataprocessing.Loader
	normalizer  *dataprocessing.Normalizer
	segmenter   *segmentation.Engine
	recommender *recommendation.Engine
	aggregator  *analytics.Engine
	checker     *quality.Checker
	exporter    *exporter.Exporter
	metrics     *infrastructure.BusinessMetrics
	logger      *slog.Logger

	runMu  sync.Mutex
	latest atomic.Pointer[Snapshot]

	subMu       sync.Mutex
	subscribers []func(*Snapshot)
}

// NewAnalysisService wires the pipeline from configuration. The
// recommendation tables are loaded once here and shared by every run.
func NewAnalysisService(cfg *config.Config, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) (*AnalysisService, error) {
	if logger == nil {
		logger = slog.Default()
	}
	paths := cfg.ResolvePaths()

	catalog := recommendation.DefaultCatalog()
	if paths.RecommendationsFile != "" {
		loaded, err := recommendation.LoadCatalog(paths.RecommendationsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load recommendation tables: %w", err)
		}
		catalog = loaded
	}
	upSell, crossSell := catalog.Len()

	logger.Info("AnalysisService initialized",
		slog.String("input", paths.Input),
		slog.String("output_dir", paths.OutputDir),
		slog.Int("workers", cfg.Analytics.Workers),
		slog.Int("up_sell_entries", upSell),
		slog.Int("cross_sell_entries", crossSell))

	return &AnalysisService{
		input:       paths.Input,
		debounce:    cfg.Analytics.WatchDebounce,
		loader:      dataprocessing.NewLoader(logger, cfg.Analytics.Delimiter),
		normalizer:  dataprocessing.NewNormalizer(logger),
		segmenter:   segmentation.NewEngine(logger),
		recommender: recommendation.NewEngine(catalog, logger),
		aggregator:  analytics.NewEngine(logger, metrics, cfg.Analytics.Workers),
		checker:     quality.NewChecker(logger, metrics),
		exporter:    exporter.NewExporter(paths, cfg.Analytics.WriteBOM, logger),
		metrics:     metrics,
		logger:      logger.With(slog.String("component", "analysis")),
	}, nil
}

// Latest returns the most recently published snapshot.
func (s *AnalysisService) Latest() (*Snapshot, bool) {
	snap := s.latest.Load()
	return snap, snap != nil
}

// Subscribe registers fn to be called with every newly published snapshot.
// fn runs on the publishing goroutine and must not block.
func (s *AnalysisService) Subscribe(fn func(*Snapshot)) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// Run executes the whole pipeline once, exports its tables and publishes
// the snapshot. Runs are serialized. On failure the previously published
// snapshot stays in place.
func (s *AnalysisService) Run(ctx context.Context, trigger string) (*Snapshot, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	snap := &Snapshot{
		RunID:     uuid.New(),
		Trigger:   trigger,
		StartedAt: time.Now(),
	}
	ctx = infrastructure.EnsureTraceID(ctx)
	ctx = infrastructure.WithRunID(ctx, snap.RunID.String())
	ctx, span := otel.Tracer(infrastructure.MeterName).Start(ctx, "pipeline.run",
		trace.WithAttributes(
			attribute.String("run.id", snap.RunID.String()),
			attribute.String("run.trigger", trigger),
		))
	defer span.End()

	s.logger.InfoContext(ctx, "pipeline run started", slog.String("trigger", trigger))

	err := s.execute(ctx, snap)
	snap.Duration = time.Since(snap.StartedAt)
	infrastructure.RecordRunMetrics(ctx, s.metrics, trigger, snap.Records, snap.Duration, err)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		s.logger.ErrorContext(ctx, "pipeline run failed",
			slog.String("error", err.Error()),
			slog.Duration("duration", snap.Duration))
		return nil, err
	}

	s.publish(snap)
	s.logger.InfoContext(ctx, "pipeline run complete",
		slog.Int("records", snap.Records),
		slog.Int("views_failed", len(snap.Report.Errors)),
		slog.Int("files_exported", len(snap.Exports)),
		slog.Duration("duration", snap.Duration))
	return snap, nil
}

func (s *AnalysisService) execute(ctx context.Context, snap *Snapshot) error {
	var (
		raw     *dataprocessing.RawTable
		records []domain.Transaction
		ds      *domain.Dataset
	)

	if err := s.stage(ctx, snap, StageLoad, func(ctx context.Context) (err error) {
		raw, err = s.loader.Load(ctx, s.input)
		return err
	}); err != nil {
		return err
	}
	snap.Sources = raw.Sources

	if err := s.stage(ctx, snap, StageNormalize, func(ctx context.Context) (err error) {
		records, err = s.normalizer.Normalize(ctx, raw)
		return err
	}); err != nil {
		return err
	}
	snap.Records = len(records)

	if err := s.stage(ctx, snap, StageSegment, func(ctx context.Context) (err error) {
		ds, snap.Thresholds, err = s.segmenter.Segment(ctx, records)
		return err
	}); err != nil {
		return err
	}

	if err := s.stage(ctx, snap, StageRecommend, func(ctx context.Context) error {
		snap.Dataset = s.recommender.Apply(ctx, ds)
		return nil
	}); err != nil {
		return err
	}

	// Aggregation and quality checks read the same finished dataset.
	if err := s.stage(ctx, snap, StageAnalyze, func(ctx context.Context) error {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			snap.Report, err = s.aggregator.Run(gctx, snap.Dataset)
			return err
		})
		g.Go(func() error {
			snap.Quality = s.checker.Run(gctx, snap.Dataset)
			return nil
		})
		return g.Wait()
	}); err != nil {
		return err
	}

	return s.stage(ctx, snap, StageExport, func(ctx context.Context) (err error) {
		snap.Exports, err = s.exporter.Export(ctx, exporter.Bundle{
			Enriched: snap.Dataset,
			Ordered:  snap.Quality.Chronology.Ordered,
			Report:   snap.Report,
			Quality:  snap.Quality,
		})
		return err
	})
}

func (s *AnalysisService) stage(ctx context.Context, snap *Snapshot, name string, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("pipeline cancelled before %s: %w", name, err)
	}

	ctx, span := otel.Tracer(infrastructure.MeterName).Start(ctx, "pipeline."+name)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)

	snap.Stages = append(snap.Stages, StageTiming{Stage: name, Duration: elapsed})
	infrastructure.RecordStageMetrics(ctx, s.metrics, snap.RunID.String(), name, elapsed, err)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return fmt.Errorf("%s stage failed: %w", name, err)
	}

	s.logger.DebugContext(ctx, "stage complete",
		slog.String("stage", name),
		slog.Duration("duration", elapsed))
	return nil
}

func (s *AnalysisService) publish(snap *Snapshot) {
	s.latest.Store(snap)

	s.subMu.Lock()
	subscribers := make([]func(*Snapshot), len(s.subscribers))
	copy(subscribers, s.subscribers)
	s.subMu.Unlock()

	for _, fn := range subscribers {
		fn(snap)
	}
}

// Watch re-runs the pipeline whenever the input changes, until ctx is
// done. Failed re-runs are logged and the previous snapshot is kept.
func (s *AnalysisService) Watch(ctx context.Context) error {
	w, err := NewInputWatcher(s.input, s.debounce, s.logger)
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-w.Changes():
			if !ok {
				return nil
			}
			if _, err := s.Run(ctx, TriggerWatch); err != nil && ctx.Err() == nil {
				s.logger.WarnContext(ctx, "re-run after input change failed, keeping previous snapshot",
					slog.String("error", err.Error()))
			}
		}
	}
}
