package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridpulse/internal/dataprocessing"
)

func loadedReportService(t *testing.T) *ReportService {
	t.Helper()
	datasets := NewDatasetService(nil, nil, nil)
	_, err := datasets.Load(context.Background(), strings.NewReader(sampleCSV))
	require.NoError(t, err)
	return NewReportService(datasets, nil)
}

func TestReportServiceSummary(t *testing.T) {
	svc := loadedReportService(t)

	stats, err := svc.Summary(context.Background(), time.Time{}, time.Time{})
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Rows)
	assert.InDelta(t, 14400, stats.TotalProduction, 1e-9)
	assert.InDelta(t, 13200, stats.TotalConsumption, 1e-9)
	assert.InDelta(t, 5000, stats.PeakProduction, 1e-9)
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), stats.PeakProductionAt)
}

func TestReportServiceSummaryWithoutDataset(t *testing.T) {
	svc := NewReportService(NewDatasetService(nil, nil, nil), nil)
	_, err := svc.Summary(context.Background(), time.Time{}, time.Time{})
	assert.ErrorIs(t, err, ErrNoDataset)
}

func TestReportServiceAggregate(t *testing.T) {
	svc := loadedReportService(t)
	ctx := context.Background()

	t.Run("defaults applied", func(t *testing.T) {
		buckets, err := svc.Aggregate(ctx, AggregateRequest{GroupBy: dataprocessing.GroupByHour})
		require.NoError(t, err)
		require.Len(t, buckets, 3)

		assert.Equal(t, "00", buckets[0].Label)
		assert.InDelta(t, 5000, buckets[0].Values[dataprocessing.MeasureProduction], 1e-9)
		assert.InDelta(t, 4500, buckets[0].Values[dataprocessing.MeasureConsumption], 1e-9)
	})

	t.Run("sum over weekday", func(t *testing.T) {
		buckets, err := svc.Aggregate(ctx, AggregateRequest{
			GroupBy:  dataprocessing.GroupByWeekday,
			Measures: []dataprocessing.Measure{dataprocessing.MeasureProduction},
			Agg:      dataprocessing.AggSum,
		})
		require.NoError(t, err)
		require.Len(t, buckets, 1)
		assert.Equal(t, "Monday", buckets[0].Label)
		assert.InDelta(t, 14400, buckets[0].Values[dataprocessing.MeasureProduction], 1e-9)
	})

	t.Run("invalid group key", func(t *testing.T) {
		_, err := svc.Aggregate(ctx, AggregateRequest{GroupBy: "minute"})
		assert.Error(t, err)
	})
}

func TestReportServiceSourceMix(t *testing.T) {
	svc := loadedReportService(t)

	mix, err := svc.SourceMix(context.Background(), time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, mix, 7)

	var total float64
	for _, share := range mix {
		total += share.SharePct
	}
	assert.InDelta(t, 100, total, 1e-6)
}
