package http

import (
	"context"

	"retailpulse/internal/services"
	"retailpulse/pkg/contracts/domain"
)

// ViewerServiceInterface defines the read-only operations over the latest
// pipeline snapshot.
type ViewerServiceInterface interface {
	Sections(ctx context.Context) []services.SectionSummary
	Section(ctx context.Context, section domain.Section) (*services.SectionDetail, error)
	View(ctx context.Context, name string) (*services.ViewDetail, error)
	Quality(ctx context.Context) (*services.QualityDetail, error)
	Run(ctx context.Context) (*services.Snapshot, error)
}

// SelectionServiceInterface defines the process-wide selected view.
type SelectionServiceInterface interface {
	Current() services.Selection
	Select(ctx context.Context, section domain.Section, view string) (services.Selection, error)
}
