package dataprocessing

import (
	"fmt"
	"sort"
	"time"

	"gridpulse/pkg/contracts/domain"
)

// GroupKey selects the calendar field used to bucket records for a
// chart. The keys map 1:1 onto the calendar features the pipeline
// derives.
type GroupKey string

const (
	GroupByHour    GroupKey = "hour"
	GroupByDay     GroupKey = "day"
	GroupByMonth   GroupKey = "month"
	GroupByQuarter GroupKey = "quarter"
	GroupByWeekday GroupKey = "weekday"
	GroupByYear    GroupKey = "year"
)

// ValidGroupKeys lists the accepted group_by values, for validation and
// error messages.
func ValidGroupKeys() []GroupKey {
	return []GroupKey{GroupByHour, GroupByDay, GroupByMonth, GroupByQuarter, GroupByWeekday, GroupByYear}
}

// Agg selects the aggregation applied inside each bucket.
type Agg string

const (
	AggMean Agg = "mean"
	AggSum  Agg = "sum"
)

// Measure names a value that can be aggregated per bucket. The set is
// the input measures plus the pipeline's derived energy features.
type Measure string

const (
	MeasureProduction        Measure = "production"
	MeasureConsumption       Measure = "consumption"
	MeasureCoal              Measure = "coal"
	MeasureHydro             Measure = "hydro"
	MeasureFossilFuel        Measure = "fossil_fuel"
	MeasureNuclear           Measure = "nuclear"
	MeasureWind              Measure = "wind"
	MeasureSolar             Measure = "solar"
	MeasureBiomass           Measure = "biomass"
	MeasureRenewableTotal    Measure = "renewable_total"
	MeasureNonrenewableTotal Measure = "nonrenewable_total"
	MeasureRenewablePct      Measure = "renewable_pct"
	MeasureNetBalance        Measure = "net_balance"
	MeasureGridEfficiency    Measure = "grid_efficiency_pct"
)

// DefaultMeasures are the measures charted when the caller does not ask
// for specific ones.
func DefaultMeasures() []Measure {
	return []Measure{MeasureProduction, MeasureConsumption}
}

func measureValue(r *domain.EnrichedRecord, m Measure) (float64, error) {
	switch m {
	case MeasureProduction:
		return r.Production, nil
	case MeasureConsumption:
		return r.Consumption, nil
	case MeasureCoal:
		return r.Coal, nil
	case MeasureHydro:
		return r.Hydro, nil
	case MeasureFossilFuel:
		return r.FossilFuel, nil
	case MeasureNuclear:
		return r.Nuclear, nil
	case MeasureWind:
		return r.Wind, nil
	case MeasureSolar:
		return r.Solar, nil
	case MeasureBiomass:
		return r.Biomass, nil
	case MeasureRenewableTotal:
		return r.RenewableTotal, nil
	case MeasureNonrenewableTotal:
		return r.NonrenewableTotal, nil
	case MeasureRenewablePct:
		return r.RenewablePct, nil
	case MeasureNetBalance:
		return r.NetBalance, nil
	case MeasureGridEfficiency:
		return r.GridEfficiencyPct, nil
	}
	return 0, fmt.Errorf("unknown measure %q", m)
}

// Bucket is one group in an aggregate result: the group label (hour
// number, month number, weekday name, ...) and one aggregated value per
// requested measure.
type Bucket struct {
	Label  string              `json:"label"`
	Rows   int                 `json:"rows"`
	Values map[Measure]float64 `json:"values"`
}

// weekdayOrder fixes weekday buckets to calendar order rather than the
// order rows happen to appear in.
var weekdayOrder = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Aggregate groups records by a calendar key and reduces each requested
// measure with the given aggregation. Buckets come back in natural
// order (ascending for numeric keys, Monday..Sunday for weekdays);
// empty buckets are omitted. The records slice is not modified.
func Aggregate(records []domain.EnrichedRecord, key GroupKey, measures []Measure, agg Agg) ([]Bucket, error) {
	if len(measures) == 0 {
		measures = DefaultMeasures()
	}
	if agg != AggMean && agg != AggSum {
		return nil, fmt.Errorf("unknown aggregation %q", agg)
	}

	type accumulator struct {
		sums map[Measure]float64
		rows int
	}

	groups := make(map[string]*accumulator)
	for i := range records {
		label, err := groupLabel(&records[i], key)
		if err != nil {
			return nil, err
		}
		acc := groups[label]
		if acc == nil {
			acc = &accumulator{sums: make(map[Measure]float64, len(measures))}
			groups[label] = acc
		}
		for _, m := range measures {
			v, err := measureValue(&records[i], m)
			if err != nil {
				return nil, err
			}
			acc.sums[m] += v
		}
		acc.rows++
	}

	labels := make([]string, 0, len(groups))
	for label := range groups {
		labels = append(labels, label)
	}
	labels = sortLabels(labels, key)
	buckets := make([]Bucket, 0, len(labels))
	for _, label := range labels {
		acc := groups[label]
		values := make(map[Measure]float64, len(measures))
		for _, m := range measures {
			if agg == AggMean {
				values[m] = acc.sums[m] / float64(acc.rows)
			} else {
				values[m] = acc.sums[m]
			}
		}
		buckets = append(buckets, Bucket{Label: label, Rows: acc.rows, Values: values})
	}
	return buckets, nil
}

func groupLabel(r *domain.EnrichedRecord, key GroupKey) (string, error) {
	switch key {
	case GroupByHour:
		return fmt.Sprintf("%02d", r.Hour), nil
	case GroupByDay:
		return fmt.Sprintf("%02d", r.Day), nil
	case GroupByMonth:
		return fmt.Sprintf("%02d", r.Month), nil
	case GroupByQuarter:
		return fmt.Sprintf("Q%d", r.Quarter), nil
	case GroupByWeekday:
		return r.Weekday, nil
	case GroupByYear:
		return fmt.Sprintf("%d", r.Year), nil
	}
	return "", fmt.Errorf("unknown group key %q", key)
}

// SourceShare is one slice of the energy-mix pie: a production source,
// its total output over the period and its share of all sources.
type SourceShare struct {
	Source    string  `json:"source"`
	Total     float64 `json:"total"`
	SharePct  float64 `json:"share_pct"`
	Renewable bool    `json:"renewable"`
}

// SourceMix totals every production source over the given records and
// computes each source's share. Feeds the distribution pie chart.
func SourceMix(records []domain.EnrichedRecord) []SourceShare {
	renewable := make(map[string]bool)
	for _, name := range domain.RenewableSourceNames() {
		renewable[name] = true
	}

	shares := make([]SourceShare, 0, len(domain.SourceNames()))
	var grand float64
	for _, name := range domain.SourceNames() {
		var total float64
		for i := range records {
			total += records[i].SourceValue(name)
		}
		grand += total
		shares = append(shares, SourceShare{Source: name, Total: total, Renewable: renewable[name]})
	}

	if grand > 0 {
		for i := range shares {
			shares[i].SharePct = shares[i].Total / grand * 100
		}
	}
	return shares
}

// Summarize computes the headline metrics for a set of records: totals,
// averages, production peak and the covered period.
func Summarize(records []domain.EnrichedRecord) domain.SummaryStats {
	stats := domain.SummaryStats{Rows: len(records)}
	if len(records) == 0 {
		return stats
	}

	stats.PeriodStart = records[0].Timestamp
	stats.PeriodEnd = records[0].Timestamp

	var renewableSum, balanceSum, efficiencySum float64
	for i := range records {
		r := &records[i]
		stats.TotalProduction += r.Production
		stats.TotalConsumption += r.Consumption
		renewableSum += r.RenewablePct
		balanceSum += r.NetBalance
		efficiencySum += r.GridEfficiencyPct

		if r.Production > stats.PeakProduction {
			stats.PeakProduction = r.Production
			stats.PeakProductionAt = r.Timestamp
		}
		if r.Timestamp.Before(stats.PeriodStart) {
			stats.PeriodStart = r.Timestamp
		}
		if r.Timestamp.After(stats.PeriodEnd) {
			stats.PeriodEnd = r.Timestamp
		}
	}

	n := float64(len(records))
	stats.AvgRenewablePct = renewableSum / n
	stats.AvgNetBalance = balanceSum / n
	stats.AvgGridEfficiency = efficiencySum / n
	return stats
}

// FilterRange returns the records whose timestamp falls inside
// [from, to]. Zero bounds are open. The result shares backing storage
// with the input when no filtering applies; callers must not mutate it.
func FilterRange(records []domain.EnrichedRecord, from, to time.Time) []domain.EnrichedRecord {
	if from.IsZero() && to.IsZero() {
		return records
	}
	filtered := make([]domain.EnrichedRecord, 0, len(records))
	for i := range records {
		ts := records[i].Timestamp
		if !from.IsZero() && ts.Before(from) {
			continue
		}
		if !to.IsZero() && ts.After(to) {
			continue
		}
		filtered = append(filtered, records[i])
	}
	return filtered
}

// sortLabels orders bucket labels for a group key: weekday labels in
// calendar order, everything else lexically (labels are zero-padded so
// lexical equals numeric order).
func sortLabels(labels []string, key GroupKey) []string {
	if key == GroupByWeekday {
		ordered := make([]string, 0, len(labels))
		present := make(map[string]bool, len(labels))
		for _, l := range labels {
			present[l] = true
		}
		for _, day := range weekdayOrder {
			if present[day] {
				ordered = append(ordered, day)
			}
		}
		return ordered
	}
	sort.Strings(labels)
	return labels
}
