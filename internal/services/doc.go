// Package services holds the business logic between the HTTP transport
// and the feature pipeline.
//
// Architecture:
//   - DatasetService: owns the current enriched dataset, guarded by a
//     RWMutex. Loads are memoized on the SHA-256 of the raw payload.
//   - ReportService: summary statistics, grouped aggregations and the
//     production source mix over the current dataset.
//   - HealthService: process and dataset health for the health endpoint.
//
// Services accept context.Context on every operation and log through
// an injected *slog.Logger tagged with their component name.
package services
