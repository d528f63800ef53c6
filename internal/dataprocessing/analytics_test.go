package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridpulse/pkg/contracts/domain"
)

func enrichedFixture(t *testing.T) []domain.EnrichedRecord {
	t.Helper()
	var records []domain.Record
	// One week of two observations per day, hours 6 and 18.
	for day := 4; day <= 10; day++ { // 2024-03-04 is a Monday
		for _, hour := range []int{6, 18} {
			rec := hourlyRecord(hour, float64(1000+day*10+hour), float64(900+day*10))
			rec.Timestamp = time.Date(2024, 3, day, hour, 0, 0, 0, time.UTC)
			records = append(records, rec)
		}
	}
	ds, err := Enrich(records)
	require.NoError(t, err)
	return ds.Records
}

func TestAggregate_ByHourMean(t *testing.T) {
	records := enrichedFixture(t)

	buckets, err := Aggregate(records, GroupByHour, []Measure{MeasureProduction, MeasureConsumption}, AggMean)
	require.NoError(t, err)
	require.Len(t, buckets, 2)

	assert.Equal(t, "06", buckets[0].Label)
	assert.Equal(t, "18", buckets[1].Label)
	assert.Equal(t, 7, buckets[0].Rows)

	// mean production at hour 6: 1000 + mean(day*10) + 6 over days 4..10
	assert.InDelta(t, 1076.0, buckets[0].Values[MeasureProduction], 1e-9)
	assert.InDelta(t, 1088.0, buckets[1].Values[MeasureProduction], 1e-9)
}

func TestAggregate_WeekdayOrder(t *testing.T) {
	records := enrichedFixture(t)

	buckets, err := Aggregate(records, GroupByWeekday, nil, AggMean)
	require.NoError(t, err)
	require.Len(t, buckets, 7)

	labels := make([]string, len(buckets))
	for i, b := range buckets {
		labels[i] = b.Label
	}
	assert.Equal(t, []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}, labels)
}

func TestAggregate_Sum(t *testing.T) {
	records := enrichedFixture(t)

	buckets, err := Aggregate(records, GroupByMonth, []Measure{MeasureProduction}, AggSum)
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	assert.Equal(t, "03", buckets[0].Label)

	var want float64
	for i := range records {
		want += records[i].Production
	}
	assert.InDelta(t, want, buckets[0].Values[MeasureProduction], 1e-6)
}

func TestAggregate_DefaultMeasures(t *testing.T) {
	records := enrichedFixture(t)

	buckets, err := Aggregate(records, GroupByYear, nil, AggMean)
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	assert.Contains(t, buckets[0].Values, MeasureProduction)
	assert.Contains(t, buckets[0].Values, MeasureConsumption)
}

func TestAggregate_Errors(t *testing.T) {
	records := enrichedFixture(t)

	_, err := Aggregate(records, GroupKey("decade"), nil, AggMean)
	assert.Error(t, err)

	_, err = Aggregate(records, GroupByHour, []Measure{"bogus"}, AggMean)
	assert.Error(t, err)

	_, err = Aggregate(records, GroupByHour, nil, Agg("median"))
	assert.Error(t, err)
}

func TestSourceMix(t *testing.T) {
	records := enrichedFixture(t)

	shares := SourceMix(records)
	require.Len(t, shares, 7)

	var totalShare float64
	byName := make(map[string]SourceShare)
	for _, s := range shares {
		totalShare += s.SharePct
		byName[s.Source] = s
	}
	assert.InDelta(t, 100.0, totalShare, 1e-9)

	assert.True(t, byName["hydro"].Renewable)
	assert.True(t, byName["solar"].Renewable)
	assert.False(t, byName["coal"].Renewable)
	assert.False(t, byName["nuclear"].Renewable)

	// fixture: every row has hydro=200, coal=100
	assert.InDelta(t, byName["coal"].Total*2, byName["hydro"].Total, 1e-9)
}

func TestSummarize(t *testing.T) {
	records := enrichedFixture(t)

	stats := Summarize(records)
	assert.Equal(t, len(records), stats.Rows)
	assert.Equal(t, time.Date(2024, 3, 4, 6, 0, 0, 0, time.UTC), stats.PeriodStart)
	assert.Equal(t, time.Date(2024, 3, 10, 18, 0, 0, 0, time.UTC), stats.PeriodEnd)

	// peak is the last day's evening observation
	assert.InDelta(t, 1118.0, stats.PeakProduction, 1e-9)
	assert.Equal(t, time.Date(2024, 3, 10, 18, 0, 0, 0, time.UTC), stats.PeakProductionAt)
	assert.Greater(t, stats.TotalProduction, 0.0)
	assert.Greater(t, stats.AvgGridEfficiency, 100.0) // production always exceeds consumption here
}

func TestSummarize_Empty(t *testing.T) {
	stats := Summarize(nil)
	assert.Equal(t, 0, stats.Rows)
	assert.True(t, stats.PeriodStart.IsZero())
}

func TestFilterRange(t *testing.T) {
	records := enrichedFixture(t)

	from := time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 7, 23, 59, 59, 0, time.UTC)

	filtered := FilterRange(records, from, to)
	assert.Len(t, filtered, 4) // two days, two observations each
	for _, r := range filtered {
		assert.False(t, r.Timestamp.Before(from))
		assert.False(t, r.Timestamp.After(to))
	}

	assert.Len(t, FilterRange(records, time.Time{}, time.Time{}), len(records))
	assert.Empty(t, FilterRange(records, to.AddDate(1, 0, 0), time.Time{}))
}
