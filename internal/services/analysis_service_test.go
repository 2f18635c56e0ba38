package services

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpulse/internal/config"
	"retailpulse/internal/errors"
	"retailpulse/internal/shared/testutil"
	"retailpulse/pkg/contracts/domain"
)

// testConfig writes the sample input into a temp dir and points every path
// of a default configuration there.
func testConfig(t *testing.T) (*config.Config, *testutil.TransactionFixtures) {
	t.Helper()
	dir := t.TempDir()
	fixtures := testutil.NewTransactionFixtures(filepath.Join(dir, "data"))
	input, err := fixtures.WriteCSV("transactions.csv", fixtures.SampleRows())
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Paths.Input = input
	cfg.Paths.OutputDir = filepath.Join(dir, "output")
	cfg.Analytics.Workers = 2
	cfg.Analytics.WatchDebounce = 20 * time.Millisecond
	return cfg, fixtures
}

func newTestAnalysis(t *testing.T, cfg *config.Config) *AnalysisService {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	svc, err := NewAnalysisService(cfg, nil, logger)
	require.NoError(t, err)
	return svc
}

func TestAnalysisService_Run(t *testing.T) {
	cfg, _ := testConfig(t)
	svc := newTestAnalysis(t, cfg)

	_, ok := svc.Latest()
	assert.False(t, ok, "nothing published before the first run")

	var published atomic.Int32
	svc.Subscribe(func(*Snapshot) { published.Add(1) })

	snap, err := svc.Run(context.Background(), TriggerManual)
	require.NoError(t, err)

	assert.Equal(t, TriggerManual, snap.Trigger)
	assert.Equal(t, 6, snap.Records)
	assert.Equal(t, 6, snap.Dataset.Len())
	assert.Len(t, snap.Sources, 1)
	assert.Empty(t, snap.Report.Errors)
	require.NotNil(t, snap.Quality)
	assert.True(t, snap.Quality.Chronology.AlreadyOrdered)

	stages := make([]string, len(snap.Stages))
	for i, s := range snap.Stages {
		stages[i] = s.Stage
	}
	assert.Equal(t, []string{StageLoad, StageNormalize, StageSegment, StageRecommend, StageAnalyze, StageExport}, stages)

	require.Len(t, snap.Exports, 4)
	for _, file := range snap.Exports {
		assert.FileExists(t, file)
	}

	latest, ok := svc.Latest()
	require.True(t, ok)
	assert.Same(t, snap, latest)
	assert.Equal(t, int32(1), published.Load())

	tables, ok := snap.Report.View("top_selling_products")
	require.True(t, ok)
	assert.Equal(t, []string{"Laptop", "1", "1200"}, tables[0].Rows[0])
}

func TestAnalysisService_RunAppliesRecommendations(t *testing.T) {
	cfg, _ := testConfig(t)
	snap, err := newTestAnalysis(t, cfg).Run(context.Background(), TriggerManual)
	require.NoError(t, err)

	snap.Dataset.Each(func(_ int, rec *domain.Transaction) bool {
		assert.False(t, rec.UpSell != "" && rec.CrossSell != "",
			"record %s has both suggestions", rec.TransactionID)
		if rec.SpendingSegment == domain.SpendingHigh {
			assert.Empty(t, rec.CrossSell)
		} else {
			assert.Empty(t, rec.UpSell)
		}
		return true
	})
}

func TestAnalysisService_RunSchemaError(t *testing.T) {
	cfg, fixtures := testConfig(t)
	rows := fixtures.SampleRows()
	for i := range rows {
		rows[i] = rows[i][:len(rows[i])-1]
	}
	_, err := fixtures.WriteCSV("transactions.csv", rows)
	require.NoError(t, err)

	svc := newTestAnalysis(t, cfg)
	_, err = svc.Run(context.Background(), TriggerManual)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeSchema))
	assert.Contains(t, err.Error(), domain.ColumnAge)

	_, ok := svc.Latest()
	assert.False(t, ok)
}

func TestAnalysisService_FailedRunKeepsPreviousSnapshot(t *testing.T) {
	cfg, fixtures := testConfig(t)
	svc := newTestAnalysis(t, cfg)

	first, err := svc.Run(context.Background(), TriggerStartup)
	require.NoError(t, err)

	rows := fixtures.SampleRows()
	rows[1][5] = "two"
	_, err = fixtures.WriteCSV("transactions.csv", rows)
	require.NoError(t, err)

	_, err = svc.Run(context.Background(), TriggerManual)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeCoercion))

	latest, ok := svc.Latest()
	require.True(t, ok)
	assert.Equal(t, first.RunID, latest.RunID)
}

func TestAnalysisService_RunCancelled(t *testing.T) {
	cfg, _ := testConfig(t)
	svc := newTestAnalysis(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Run(ctx, TriggerManual)
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewAnalysisService_RecommendationsFile(t *testing.T) {
	cfg, _ := testConfig(t)
	file := filepath.Join(t.TempDir(), "recommendations.yaml")
	require.NoError(t, os.WriteFile(file, []byte("cross_sell:\n  Jeans: Sneakers\n"), 0644))
	cfg.Paths.RecommendationsFile = file

	snap, err := newTestAnalysis(t, cfg).Run(context.Background(), TriggerManual)
	require.NoError(t, err)

	var suggestions []string
	snap.Dataset.Each(func(_ int, rec *domain.Transaction) bool {
		if rec.ProductName == "Jeans" && rec.CrossSell != "" {
			suggestions = append(suggestions, rec.CrossSell)
		}
		return true
	})
	require.NotEmpty(t, suggestions)
	for _, s := range suggestions {
		assert.Equal(t, "Sneakers", s)
	}

	require.NoError(t, os.WriteFile(file, []byte("unknown_key: true\n"), 0644))
	logger, _ := testutil.NewTestLogger(t)
	_, err = NewAnalysisService(cfg, nil, logger)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeConfig))
}

func TestAnalysisService_Watch(t *testing.T) {
	cfg, fixtures := testConfig(t)
	svc := newTestAnalysis(t, cfg)

	_, err := svc.Run(context.Background(), TriggerStartup)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Watch(ctx) }()

	rows := fixtures.SampleRows()
	require.Eventually(t, func() bool {
		// keep changing the content until the watcher has picked it up
		rows = append(rows, []string{"1005", "T" + time.Now().Format("150405.000000"), "2023-12-01", "Clothing", "Jeans", "1", "40", "25", "Cash", "North", "Male", "40"})
		if _, err := fixtures.WriteCSV("transactions.csv", rows); err != nil {
			return false
		}
		snap, ok := svc.Latest()
		return ok && snap.Trigger == TriggerWatch
	}, 5*time.Second, 100*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancellation")
	}
}
