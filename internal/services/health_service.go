package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"
)

// HealthService reports process and dataset health for /api/healthz.
type HealthService struct {
	version   string
	buildTime string
	datasets  *DatasetService
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus is the health check response body.
type HealthStatus struct {
	Status    string      `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	Version   string      `json:"version"`
	Uptime    string      `json:"uptime"`
	Runtime   RuntimeInfo `json:"runtime"`
	Dataset   DatasetInfo `json:"dataset"`
}

// RuntimeInfo describes the running process.
type RuntimeInfo struct {
	GoVersion  string `json:"go_version"`
	OS         string `json:"os"`
	Arch       string `json:"arch"`
	Goroutines int    `json:"goroutines"`
}

// DatasetInfo describes the currently loaded dataset, if any.
type DatasetInfo struct {
	Loaded      bool      `json:"loaded"`
	ContentHash string    `json:"content_hash,omitempty"`
	Rows        int       `json:"rows,omitempty"`
	LoadedAt    time.Time `json:"loaded_at"`
}

// NewHealthService creates a health service.
func NewHealthService(version, buildTime string, datasets *DatasetService, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		buildTime: buildTime,
		datasets:  datasets,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// Check returns the current health snapshot. The service is healthy as
// long as the process runs; the dataset section reports whether data
// has been loaded.
func (s *HealthService) Check(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   s.version,
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
		Runtime: RuntimeInfo{
			GoVersion:  runtime.Version(),
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			Goroutines: runtime.NumGoroutine(),
		},
	}

	if dataset, err := s.datasets.Current(ctx); err == nil {
		status.Dataset = DatasetInfo{
			Loaded:      true,
			ContentHash: dataset.ContentHash,
			Rows:        dataset.Quality.Rows,
			LoadedAt:    dataset.LoadedAt,
		}
	}
	return status
}
