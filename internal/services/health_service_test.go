package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"retailpulse/internal/analytics"
	"retailpulse/internal/errors"
	"retailpulse/internal/shared/testutil"
)

// MockSnapshotSource implements SnapshotSource for service tests
type MockSnapshotSource struct {
	mock.Mock
}

func (m *MockSnapshotSource) Latest() (*Snapshot, bool) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*Snapshot), args.Bool(1)
}

type staticClients int

func (c staticClients) ClientCount() int { return int(c) }

func testSnapshot() *Snapshot {
	return &Snapshot{
		RunID:     uuid.New(),
		Trigger:   TriggerManual,
		StartedAt: time.Now().Add(-time.Minute),
		Records:   6,
		Exports:   []string{"a.csv", "b.csv"},
		Report: &analytics.Report{
			Errors: map[string]error{"sales_trends": errors.NewStatisticsError("no dates")},
		},
	}
}

func TestHealthService_Readiness(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	source := new(MockSnapshotSource)
	source.On("Latest").Return(nil, false).Once()
	source.On("Latest").Return(testSnapshot(), true)

	hs := NewHealthService("1.2.3", "", t.TempDir(), source, staticClients(2), logger)

	status := hs.ReadinessCheck(context.Background())
	assert.Equal(t, "not_ready", status.Status)
	assert.Equal(t, "not_ready", status.Services["analysis"].(ServiceHealth).Status)

	status = hs.ReadinessCheck(context.Background())
	assert.Equal(t, "ready", status.Status)
	assert.Contains(t, status.Services["websocket"].(ServiceHealth).Message, "2 clients")

	source.AssertExpectations(t)
}

func TestHealthService_OutputMissing(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	source := new(MockSnapshotSource)
	source.On("Latest").Return(testSnapshot(), true)

	hs := NewHealthService("1.2.3", "", "/does/not/exist", source, nil, logger)

	status := hs.ReadinessCheck(context.Background())
	assert.Equal(t, "not_ready", status.Status)
	assert.Equal(t, "ready", status.Services["websocket"].(ServiceHealth).Status)
}

func TestHealthService_Checks(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	snap := testSnapshot()
	source := new(MockSnapshotSource)
	source.On("Latest").Return(snap, true)

	hs := NewHealthService("1.2.3", "2026-01-02", t.TempDir(), source, staticClients(3), logger)
	ctx := context.Background()

	assert.Equal(t, "ok", hs.HealthCheck(ctx).Status)

	live := hs.LivenessCheck(ctx)
	assert.Equal(t, "alive", live.Status)
	assert.Contains(t, live.Runtime, "goroutines")

	version := hs.Version()
	assert.Equal(t, "1.2.3", version["version"])
	assert.Equal(t, "2026-01-02", version["build_time"])

	stats := hs.SystemStats(ctx)
	assert.Equal(t, snap.RunID.String(), stats.RunID)
	assert.Equal(t, 6, stats.Records)
	assert.Equal(t, 1, stats.ViewsFailed)
	assert.Equal(t, 2, stats.ExportedFiles)
	assert.Equal(t, 3, stats.WebSocketClients)

	detailed := hs.GetDetailedHealth(ctx)
	assert.Contains(t, detailed, "readiness")
	assert.Contains(t, detailed, "stats")
}
