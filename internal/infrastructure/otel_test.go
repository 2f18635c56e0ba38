package infrastructure

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpulse/internal/config"
)

func TestOTelInitialization(t *testing.T) {
	logger := NewJSONLogger(io.Discard, "info", false)

	providers, err := InitializeOTel(config.TelemetryConfig{
		ServiceName: "retailpulse-test",
		Metrics:     true,
	}, "test", logger)
	require.NoError(t, err)
	require.NotNil(t, providers)

	assert.Nil(t, providers.TracerProvider)
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.PrometheusHTTP)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, providers.Shutdown(ctx))
}

func TestOTelInitialization_MetricsDisabled(t *testing.T) {
	logger := NewJSONLogger(io.Discard, "info", false)

	providers, err := InitializeOTel(config.TelemetryConfig{ServiceName: "retailpulse-test"}, "test", logger)
	require.NoError(t, err)

	assert.Nil(t, providers.MeterProvider)
	assert.Nil(t, providers.PrometheusHTTP)
	assert.NotNil(t, providers.Meter)

	metrics, err := CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)
	RecordViewMetrics(context.Background(), metrics, "region_sales", nil)
}

func TestPrometheusEndpoint(t *testing.T) {
	logger := NewJSONLogger(io.Discard, "info", false)
	providers, err := InitializeOTel(config.TelemetryConfig{
		ServiceName: "retailpulse-test",
		Metrics:     true,
	}, "test", logger)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	RecordRunMetrics(ctx, metrics, "startup", 42, 150*time.Millisecond, nil)
	RecordStageMetrics(ctx, metrics, "run-1", "normalize", 10*time.Millisecond, nil)
	RecordViewMetrics(ctx, metrics, "season_sales", errors.New("boom"))

	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "pipeline_runs_total")
	assert.Contains(t, body, "pipeline_records_processed_total")
	assert.Contains(t, body, "analytics_view_failures_total")
	assert.Contains(t, body, `view="season_sales"`)
}

func TestRecordHelpersTolerateNilMetrics(t *testing.T) {
	ctx := context.Background()
	assert.NotPanics(t, func() {
		RecordRunMetrics(ctx, nil, "watch", 1, time.Second, nil)
		RecordStageMetrics(ctx, nil, "run", "segment", time.Second, nil)
		RecordViewMetrics(ctx, nil, "region_sales", nil)
		RecordError(ctx, errors.New("no span"))
	})
	assert.NotNil(t, NoopBusinessMetrics())
}
