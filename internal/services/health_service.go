package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"
)

// SnapshotSource is anything that can hand out the latest finished run.
type SnapshotSource interface {
	Latest() (*Snapshot, bool)
}

// ClientCounter reports connected viewer clients.
type ClientCounter interface {
	ClientCount() int
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	buildTime string
	outputDir string
	snapshots SnapshotSource
	clients   ClientCounter
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
}

// SystemStats summarizes the process and the published run
type SystemStats struct {
	UptimeSeconds    float64   `json:"uptime_seconds"`
	RunID            string    `json:"run_id,omitempty"`
	LastRunAt        time.Time `json:"last_run_at,omitempty"`
	Records          int       `json:"records"`
	ViewsFailed      int       `json:"views_failed"`
	ExportedFiles    int       `json:"exported_files"`
	WebSocketClients int       `json:"websocket_clients"`
	GoVersion        string    `json:"go_version"`
	OS               string    `json:"os"`
	Arch             string    `json:"arch"`
}

// NewHealthService creates a health service. clients may be nil when the
// viewer runs without a websocket feed.
func NewHealthService(version, buildTime, outputDir string, snapshots SnapshotSource, clients ClientCounter, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized",
		slog.String("version", version),
		slog.String("build_time", buildTime),
		slog.String("output_dir", outputDir))

	return &HealthService{
		version:   version,
		buildTime: buildTime,
		outputDir: outputDir,
		snapshots: snapshots,
		clients:   clients,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "HealthCheck: performing health check",
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck is ready once a snapshot has been published.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services: map[string]interface{}{
			"analysis":  hs.checkAnalysisHealth(),
			"websocket": hs.checkWebSocketHealth(),
			"output":    hs.checkOutputHealth(),
		},
	}

	for _, service := range status.Services {
		if sh, ok := service.(ServiceHealth); ok && sh.Status != "ready" {
			status.Status = "not_ready"
			break
		}
	}

	if status.Status != "ready" {
		hs.logger.DebugContext(ctx, "ReadinessCheck: not ready", slog.Any("services", status.Services))
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	result := map[string]interface{}{
		"version":      hs.version,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}
	if hs.buildTime != "" {
		result["build_time"] = hs.buildTime
	}
	return result
}

// SystemStats returns process and run statistics
func (hs *HealthService) SystemStats(ctx context.Context) SystemStats {
	stats := SystemStats{
		UptimeSeconds: time.Since(hs.startTime).Seconds(),
		GoVersion:     runtime.Version(),
		OS:            runtime.GOOS,
		Arch:          runtime.GOARCH,
	}
	if hs.clients != nil {
		stats.WebSocketClients = hs.clients.ClientCount()
	}
	if snap, ok := hs.latest(); ok {
		stats.RunID = snap.RunID.String()
		stats.LastRunAt = snap.StartedAt
		stats.Records = snap.Records
		stats.ExportedFiles = len(snap.Exports)
		if snap.Report != nil {
			stats.ViewsFailed = len(snap.Report.Errors)
		}
	}
	return stats
}

// GetDetailedHealth returns comprehensive health information
func (hs *HealthService) GetDetailedHealth(ctx context.Context) map[string]interface{} {
	return map[string]interface{}{
		"health":    hs.HealthCheck(ctx),
		"readiness": hs.ReadinessCheck(ctx),
		"liveness":  hs.LivenessCheck(ctx),
		"stats":     hs.SystemStats(ctx),
	}
}

func (hs *HealthService) latest() (*Snapshot, bool) {
	if hs.snapshots == nil {
		return nil, false
	}
	return hs.snapshots.Latest()
}

func (hs *HealthService) checkAnalysisHealth() ServiceHealth {
	snap, ok := hs.latest()
	if !ok {
		return ServiceHealth{
			Status:  "not_ready",
			Message: "no finished analysis yet",
		}
	}
	return ServiceHealth{
		Status:  "ready",
		Message: fmt.Sprintf("run %s with %d records", snap.RunID, snap.Records),
		Uptime:  time.Since(snap.StartedAt).String(),
	}
}

func (hs *HealthService) checkWebSocketHealth() ServiceHealth {
	if hs.clients == nil {
		return ServiceHealth{Status: "ready", Message: "WebSocket feed disabled"}
	}
	return ServiceHealth{
		Status:  "ready",
		Message: fmt.Sprintf("%d clients connected", hs.clients.ClientCount()),
		Uptime:  time.Since(hs.startTime).String(),
	}
}

func (hs *HealthService) checkOutputHealth() ServiceHealth {
	if _, err := os.Stat(hs.outputDir); err != nil {
		return ServiceHealth{
			Status:  "not_ready",
			Message: fmt.Sprintf("Output directory not accessible: %s", hs.outputDir),
		}
	}
	return ServiceHealth{Status: "ready", Message: "Output directory is accessible"}
}
