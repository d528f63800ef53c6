package dataprocessing

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"gridpulse/pkg/contracts/domain"
)

// numericColumn gives the pipeline generic access to every numeric
// field of a Record, so deduplication keys and interpolation loop over
// one table instead of repeating per-field code.
type numericColumn struct {
	name string
	get  func(*domain.Record) float64
	set  func(*domain.Record, float64)
}

func numericColumns() []numericColumn {
	return []numericColumn{
		{ColProduction, func(r *domain.Record) float64 { return r.Production }, func(r *domain.Record, v float64) { r.Production = v }},
		{ColConsumption, func(r *domain.Record) float64 { return r.Consumption }, func(r *domain.Record, v float64) { r.Consumption = v }},
		{ColBalance, func(r *domain.Record) float64 { return r.Balance }, func(r *domain.Record, v float64) { r.Balance = v }},
		{ColCoal, func(r *domain.Record) float64 { return r.Coal }, func(r *domain.Record, v float64) { r.Coal = v }},
		{ColHydro, func(r *domain.Record) float64 { return r.Hydro }, func(r *domain.Record, v float64) { r.Hydro = v }},
		{ColFossilFuel, func(r *domain.Record) float64 { return r.FossilFuel }, func(r *domain.Record, v float64) { r.FossilFuel = v }},
		{ColNuclear, func(r *domain.Record) float64 { return r.Nuclear }, func(r *domain.Record, v float64) { r.Nuclear = v }},
		{ColWind, func(r *domain.Record) float64 { return r.Wind }, func(r *domain.Record, v float64) { r.Wind = v }},
		{ColSolar, func(r *domain.Record) float64 { return r.Solar }, func(r *domain.Record, v float64) { r.Solar = v }},
		{ColBiomass, func(r *domain.Record) float64 { return r.Biomass }, func(r *domain.Record, v float64) { r.Biomass = v }},
	}
}

// Enrich runs the feature pipeline over raw records and returns the
// enriched dataset:
//
//  1. exact duplicate rows are removed,
//  2. rows are stable-sorted by timestamp,
//  3. missing numeric cells are filled by linear interpolation along
//     the time axis,
//  4. calendar and energy-balance features are derived per row.
//
// The input slice is never mutated; the caller may reuse it. The row
// count of the result equals the post-deduplication row count and the
// result is chronological.
func Enrich(records []domain.Record) (*domain.Dataset, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("cannot enrich an empty table")
	}

	rows := deduplicate(records)
	duplicates := len(records) - len(rows)

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Timestamp.Before(rows[j].Timestamp)
	})

	interpolated := interpolate(rows)

	if duplicates > 0 || interpolated > 0 {
		slog.Warn("input required cleanup",
			slog.Int("duplicates_removed", duplicates),
			slog.Int("cells_interpolated", interpolated))
	}

	enriched := make([]domain.EnrichedRecord, len(rows))
	for i := range rows {
		enriched[i] = derive(rows[i])
	}

	return &domain.Dataset{
		Records: enriched,
		Quality: domain.QualityReport{
			Rows:              len(enriched),
			DuplicatesRemoved: duplicates,
			CellsInterpolated: interpolated,
		},
	}, nil
}

// deduplicate drops rows equal to an earlier row on every column. NaN
// cells are treated as equal to NaN here, matching full-row equality on
// the raw text representation.
func deduplicate(records []domain.Record) []domain.Record {
	columns := numericColumns()
	seen := make(map[string]struct{}, len(records))
	result := make([]domain.Record, 0, len(records))

	for i := range records {
		key := rowKey(&records[i], columns)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, records[i])
	}
	return result
}

func rowKey(r *domain.Record, columns []numericColumn) string {
	var b strings.Builder
	b.WriteString(r.Timestamp.Format(time.RFC3339Nano))
	for _, col := range columns {
		v := col.get(r)
		b.WriteByte('|')
		if math.IsNaN(v) {
			b.WriteByte('?')
		} else {
			fmt.Fprintf(&b, "%g", v)
		}
	}
	return b.String()
}

// interpolate fills every NaN cell by linear interpolation between the
// nearest observed values in the same column, by row position. Gaps at
// the edges take the nearest observed value; a column with no observed
// value at all is zero-filled. No NaN survives this step. Returns the
// number of cells filled.
func interpolate(rows []domain.Record) int {
	filled := 0
	for _, col := range numericColumns() {
		filled += interpolateColumn(rows, col)
	}
	return filled
}

func interpolateColumn(rows []domain.Record, col numericColumn) int {
	n := len(rows)
	valid := make([]int, 0, n)
	for i := range rows {
		if !math.IsNaN(col.get(&rows[i])) {
			valid = append(valid, i)
		}
	}

	if len(valid) == n {
		return 0
	}
	if len(valid) == 0 {
		for i := range rows {
			col.set(&rows[i], 0)
		}
		return n
	}

	filled := 0
	for i := range rows {
		if !math.IsNaN(col.get(&rows[i])) {
			continue
		}
		col.set(&rows[i], interpolatedValue(rows, col, valid, i))
		filled++
	}
	return filled
}

func interpolatedValue(rows []domain.Record, col numericColumn, valid []int, i int) float64 {
	// First observed index at or after i.
	next := sort.SearchInts(valid, i)

	switch {
	case next == 0:
		// Leading gap: take the first observation.
		return col.get(&rows[valid[0]])
	case next == len(valid):
		// Trailing gap: take the last observation.
		return col.get(&rows[valid[len(valid)-1]])
	default:
		lo, hi := valid[next-1], valid[next]
		loVal, hiVal := col.get(&rows[lo]), col.get(&rows[hi])
		frac := float64(i-lo) / float64(hi-lo)
		return loVal + (hiVal-loVal)*frac
	}
}

// derive appends the calendar and energy features for a single row.
// Pure function of the row's own fields; no cross-row state.
func derive(r domain.Record) domain.EnrichedRecord {
	ts := r.Timestamp
	enriched := domain.EnrichedRecord{
		Record:  r,
		Year:    ts.Year(),
		Month:   int(ts.Month()),
		Day:     ts.Day(),
		Hour:    ts.Hour(),
		Quarter: (int(ts.Month())-1)/3 + 1,
		Weekday: ts.Weekday().String(),
		Weekend: mondayIndex(ts.Weekday()) >= 5,
	}

	enriched.RenewableTotal = r.Hydro + r.Wind + r.Solar + r.Biomass
	enriched.NonrenewableTotal = r.Coal + r.FossilFuel + r.Nuclear
	enriched.RenewablePct = renewablePct(enriched.RenewableTotal, r.Production)
	enriched.NetBalance = r.Production - r.Consumption
	enriched.GridEfficiencyPct = gridEfficiencyPct(r.Production, r.Consumption)

	return enriched
}

// mondayIndex maps time.Weekday (Sunday=0) onto the Monday=0 convention
// used by the weekend flag.
func mondayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// renewablePct guards division by zero: zero or negative production
// reports 0 rather than an error or NaN. The result is bounded to
// [0, 100] because reported per-source totals may exceed total
// production in anomalous rows.
func renewablePct(renewableTotal, production float64) float64 {
	if production <= 0 {
		return 0
	}
	return clamp(renewableTotal/production*100, 0, 100)
}

// gridEfficiencyPct is production over consumption as a percentage,
// clamped to [0, 200] to bound display of anomalous spikes.
func gridEfficiencyPct(production, consumption float64) float64 {
	if consumption == 0 {
		if production > 0 {
			return 200
		}
		return 0
	}
	return clamp(production/consumption*100, 0, 200)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
