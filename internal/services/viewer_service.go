package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"retailpulse/internal/analytics"
	"retailpulse/internal/errors"
	"retailpulse/internal/quality"
	"retailpulse/pkg/contracts/domain"
)

// ViewSummary describes one catalogue view and whether the latest run has it.
type ViewSummary struct {
	Name      string `json:"name"`
	Title     string `json:"title"`
	Available bool   `json:"available"`
	Error     string `json:"error,omitempty"`
}

// SectionSummary is one selector entry.
type SectionSummary struct {
	ID    domain.Section `json:"id"`
	Title string         `json:"title"`
	Views []ViewSummary  `json:"views"`
}

// SectionDetail is everything the viewer renders for one section.
type SectionDetail struct {
	ID       domain.Section    `json:"id"`
	Title    string            `json:"title"`
	RunID    string            `json:"run_id"`
	Tables   []*domain.Table   `json:"tables"`
	Charts   []domain.Chart    `json:"charts"`
	Failures map[string]string `json:"failures,omitempty"`
}

// ViewDetail is the tables of a single view.
type ViewDetail struct {
	Name    string          `json:"name"`
	Title   string          `json:"title"`
	Section domain.Section  `json:"section"`
	RunID   string          `json:"run_id"`
	Tables  []*domain.Table `json:"tables"`
}

// QualityDetail is the quality report of the latest run.
type QualityDetail struct {
	RunID     string          `json:"run_id"`
	CheckedAt time.Time       `json:"checked_at"`
	Records   int             `json:"records"`
	Report    *quality.Report `json:"report"`
}

// ViewerService answers read-only queries over the latest snapshot. It
// never triggers a pipeline run.
type ViewerService struct {
	snapshots SnapshotSource
	logger    *slog.Logger
}

// NewViewerService creates a viewer over snapshots.
func NewViewerService(snapshots SnapshotSource, logger *slog.Logger) *ViewerService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ViewerService{
		snapshots: snapshots,
		logger:    logger.With(slog.String("component", "viewer")),
	}
}

// Sections lists the selector options with the availability of each view.
// It works before the first run, reporting every view as unavailable.
func (v *ViewerService) Sections(ctx context.Context) []SectionSummary {
	snap, _ := v.snapshots.Latest()

	out := make([]SectionSummary, 0, len(domain.Sections))
	for _, section := range domain.Sections {
		summary := SectionSummary{ID: section, Title: section.Title()}
		for _, view := range analytics.ViewsIn(section) {
			vs := ViewSummary{Name: view.Name, Title: view.Title}
			if snap != nil {
				_, vs.Available = snap.Report.View(view.Name)
				if err, failed := snap.Report.Errors[view.Name]; failed {
					vs.Error = err.Error()
				}
			}
			summary.Views = append(summary.Views, vs)
		}
		out = append(out, summary)
	}
	return out
}

// Section returns the tables and charts of one section.
func (v *ViewerService) Section(ctx context.Context, section domain.Section) (*SectionDetail, error) {
	if !section.Valid() {
		return nil, errors.NewNotFoundError(fmt.Sprintf("section %q", section))
	}
	snap, err := v.latest()
	if err != nil {
		return nil, err
	}

	detail := &SectionDetail{
		ID:     section,
		Title:  section.Title(),
		RunID:  snap.RunID.String(),
		Tables: snap.Report.Section(section),
		Charts: analytics.Charts(snap.Report, section),
	}
	for _, view := range analytics.ViewsIn(section) {
		if err, failed := snap.Report.Errors[view.Name]; failed {
			if detail.Failures == nil {
				detail.Failures = make(map[string]string)
			}
			detail.Failures[view.Name] = err.Error()
		}
	}

	v.logger.DebugContext(ctx, "section served",
		slog.String("section", string(section)),
		slog.Int("tables", len(detail.Tables)),
		slog.Int("charts", len(detail.Charts)))
	return detail, nil
}

// View returns one view's tables. A view that failed in the latest run
// returns the failure it recorded.
func (v *ViewerService) View(ctx context.Context, name string) (*ViewDetail, error) {
	view, ok := analytics.Lookup(name)
	if !ok {
		return nil, errors.NewNotFoundError(fmt.Sprintf("view %q", name))
	}
	snap, err := v.latest()
	if err != nil {
		return nil, err
	}

	tables, ok := snap.Report.View(name)
	if !ok {
		if cause, failed := snap.Report.Errors[name]; failed {
			return nil, fmt.Errorf("%w: %s: %w", ErrViewNotComputed, name, cause)
		}
		return nil, errors.NewNotFoundError(fmt.Sprintf("view %q", name))
	}

	return &ViewDetail{
		Name:    view.Name,
		Title:   view.Title,
		Section: view.Section,
		RunID:   snap.RunID.String(),
		Tables:  tables,
	}, nil
}

// Quality returns the quality report of the latest run.
func (v *ViewerService) Quality(ctx context.Context) (*QualityDetail, error) {
	snap, err := v.latest()
	if err != nil {
		return nil, err
	}
	return &QualityDetail{
		RunID:     snap.RunID.String(),
		CheckedAt: snap.StartedAt,
		Records:   snap.Records,
		Report:    snap.Quality,
	}, nil
}

// Run returns the metadata of the latest run.
func (v *ViewerService) Run(ctx context.Context) (*Snapshot, error) {
	return v.latest()
}

func (v *ViewerService) latest() (*Snapshot, error) {
	snap, ok := v.snapshots.Latest()
	if !ok {
		return nil, errors.NewAppError(errors.ErrTypeNotAvailable, "the pipeline has not finished a run yet", ErrNoSnapshot)
	}
	return snap, nil
}
