package services

import (
	"context"
	"log/slog"
	"time"

	"gridpulse/internal/dataprocessing"
	"gridpulse/pkg/contracts/domain"
)

// ReportService answers analytical queries over the current dataset.
type ReportService struct {
	datasets *DatasetService
	logger   *slog.Logger
}

// AggregateRequest describes a grouped-aggregation query.
type AggregateRequest struct {
	GroupBy  dataprocessing.GroupKey  `json:"group_by" validate:"required"`
	Measures []dataprocessing.Measure `json:"measures"`
	Agg      dataprocessing.Agg       `json:"agg"`
	From     time.Time                `json:"from"`
	To       time.Time                `json:"to"`
}

// NewReportService creates a report service backed by the dataset service.
func NewReportService(datasets *DatasetService, logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportService{
		datasets: datasets,
		logger:   logger.With(slog.String("component", "report_service")),
	}
}

// Summary computes dataset-level statistics over the optional range.
func (s *ReportService) Summary(ctx context.Context, from, to time.Time) (*domain.SummaryStats, error) {
	records, err := s.datasets.Records(ctx, from, to)
	if err != nil {
		return nil, err
	}
	stats := dataprocessing.Summarize(records)
	return &stats, nil
}

// Aggregate groups the dataset by the requested calendar key and
// reduces the requested measures. Empty measures fall back to
// production and consumption; an empty agg defaults to the mean.
func (s *ReportService) Aggregate(ctx context.Context, req AggregateRequest) ([]dataprocessing.Bucket, error) {
	records, err := s.datasets.Records(ctx, req.From, req.To)
	if err != nil {
		return nil, err
	}

	measures := req.Measures
	if len(measures) == 0 {
		measures = dataprocessing.DefaultMeasures()
	}
	agg := req.Agg
	if agg == "" {
		agg = dataprocessing.AggMean
	}

	buckets, err := dataprocessing.Aggregate(records, req.GroupBy, measures, agg)
	if err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "aggregation computed",
		slog.String("group_by", string(req.GroupBy)),
		slog.String("agg", string(agg)),
		slog.Int("buckets", len(buckets)))
	return buckets, nil
}

// SourceMix computes the per-source share of total production over the
// optional range.
func (s *ReportService) SourceMix(ctx context.Context, from, to time.Time) ([]dataprocessing.SourceShare, error) {
	records, err := s.datasets.Records(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return dataprocessing.SourceMix(records), nil
}
