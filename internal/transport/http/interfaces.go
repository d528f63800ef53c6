package http

import (
	"context"
	"io"
	"time"

	"gridpulse/internal/dataprocessing"
	"gridpulse/internal/services"
	"gridpulse/pkg/contracts/domain"
)

// DatasetService is the dataset surface the handlers depend on.
type DatasetService interface {
	Load(ctx context.Context, r io.Reader) (*services.LoadResult, error)
	Current(ctx context.Context) (*domain.Dataset, error)
	Records(ctx context.Context, from, to time.Time) ([]domain.EnrichedRecord, error)
}

// ReportService is the analytics surface the handlers depend on.
type ReportService interface {
	Summary(ctx context.Context, from, to time.Time) (*domain.SummaryStats, error)
	Aggregate(ctx context.Context, req services.AggregateRequest) ([]dataprocessing.Bucket, error)
	SourceMix(ctx context.Context, from, to time.Time) ([]dataprocessing.SourceShare, error)
}

// HealthService is the health surface the handlers depend on.
type HealthService interface {
	Check(ctx context.Context) *services.HealthStatus
}
