package services

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpulse/internal/errors"
	"retailpulse/internal/shared/testutil"
	"retailpulse/pkg/contracts/domain"
)

func runSample(t *testing.T) *AnalysisService {
	t.Helper()
	cfg, _ := testConfig(t)
	svc := newTestAnalysis(t, cfg)
	_, err := svc.Run(context.Background(), TriggerStartup)
	require.NoError(t, err)
	return svc
}

func TestViewerService_BeforeFirstRun(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	source := new(MockSnapshotSource)
	source.On("Latest").Return(nil, false)
	viewer := NewViewerService(source, logger)
	ctx := context.Background()

	sections := viewer.Sections(ctx)
	require.Len(t, sections, len(domain.Sections))
	for _, s := range sections {
		for _, v := range s.Views {
			assert.False(t, v.Available, v.Name)
		}
	}

	_, err := viewer.Section(ctx, domain.SectionProducts)
	assert.True(t, errors.IsType(err, errors.ErrTypeNotAvailable))
	assert.ErrorIs(t, err, ErrNoSnapshot)

	_, err = viewer.Quality(ctx)
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestViewerService_Sections(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	viewer := NewViewerService(runSample(t), logger)

	sections := viewer.Sections(context.Background())
	require.Len(t, sections, 6)
	assert.Equal(t, "Customers Behavior", sections[0].Title)
	assert.Equal(t, "customer_transactions", sections[0].Views[0].Name)

	total := 0
	for _, s := range sections {
		for _, v := range s.Views {
			assert.True(t, v.Available, v.Name)
			total++
		}
	}
	assert.Equal(t, 22, total)
}

func TestViewerService_Section(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	viewer := NewViewerService(runSample(t), logger)
	ctx := context.Background()

	detail, err := viewer.Section(ctx, domain.SectionProducts)
	require.NoError(t, err)
	assert.Equal(t, "Products Performance", detail.Title)
	require.Len(t, detail.Tables, 4)
	assert.Equal(t, "top_selling_products", detail.Tables[0].Name)
	assert.NotEmpty(t, detail.Charts)
	assert.Empty(t, detail.Failures)

	_, err = viewer.Section(ctx, "unknown")
	assert.True(t, errors.IsType(err, errors.ErrTypeNotFound))
}

func TestViewerService_View(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	viewer := NewViewerService(runSample(t), logger)
	ctx := context.Background()

	detail, err := viewer.View(ctx, "season_sales")
	require.NoError(t, err)
	assert.Equal(t, domain.SectionTemporal, detail.Section)
	require.Len(t, detail.Tables, 1)
	assert.Equal(t, "Fall", detail.Tables[0].Notes["peak_season"])

	_, err = viewer.View(ctx, "unknown")
	assert.True(t, errors.IsType(err, errors.ErrTypeNotFound))
}

func TestViewerService_FailedView(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	source := new(MockSnapshotSource)
	snap := testSnapshot()
	source.On("Latest").Return(snap, true)
	viewer := NewViewerService(source, logger)
	ctx := context.Background()

	_, err := viewer.View(ctx, "sales_trends")
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, ErrViewNotComputed))
	assert.True(t, errors.IsType(err, errors.ErrTypeStatistics))

	detail, err := viewer.Section(ctx, domain.SectionTemporal)
	require.NoError(t, err)
	assert.Contains(t, detail.Failures, "sales_trends")

	sections := viewer.Sections(ctx)
	assert.Equal(t, "sales_trends", sections[2].Views[0].Name)
	assert.NotEmpty(t, sections[2].Views[0].Error)
}

func TestViewerService_Quality(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	viewer := NewViewerService(runSample(t), logger)

	q, err := viewer.Quality(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, q.Records)
	require.NotNil(t, q.Report)
	assert.NotEmpty(t, q.Report.Missing)
}
