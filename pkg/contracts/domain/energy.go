package domain

import (
	"math"
	"time"
)

// Record represents one hourly observation of energy production and
// consumption, as loaded from the raw CSV. All power values are in MW.
// math.NaN marks a cell that was empty in the input; the pipeline
// interpolates these before any derived field is computed.
type Record struct {
	Timestamp   time.Time `json:"timestamp" csv:"timestamp"`
	Production  float64   `json:"production" csv:"production"`
	Consumption float64   `json:"consumption" csv:"consumption"`
	// Balance is the balance column as reported in the input. It is kept
	// for reference only; NetBalance on EnrichedRecord is always
	// recomputed from production and consumption.
	Balance    float64 `json:"balance" csv:"balance"`
	Coal       float64 `json:"coal" csv:"coal"`
	Hydro      float64 `json:"hydro" csv:"hydro"`
	FossilFuel float64 `json:"fossil_fuel" csv:"fossil_fuel"`
	Nuclear    float64 `json:"nuclear" csv:"nuclear"`
	Wind       float64 `json:"wind" csv:"wind"`
	Solar      float64 `json:"solar" csv:"solar"`
	Biomass    float64 `json:"biomass" csv:"biomass"`
}

// EnrichedRecord is a Record with calendar and energy-balance features
// appended. Every derived field is a pure function of the same row's
// input fields.
type EnrichedRecord struct {
	Record

	// Calendar features derived from Timestamp.
	Year    int    `json:"year"`
	Month   int    `json:"month"`
	Day     int    `json:"day"`
	Hour    int    `json:"hour"`
	Quarter int    `json:"quarter"`
	Weekday string `json:"weekday"`
	// Weekend uses the Monday=0 convention: Saturday and Sunday.
	Weekend bool `json:"weekend"`

	// Energy aggregates.
	RenewableTotal    float64 `json:"renewable_total"`
	NonrenewableTotal float64 `json:"nonrenewable_total"`
	RenewablePct      float64 `json:"renewable_pct"`
	NetBalance        float64 `json:"net_balance"`
	GridEfficiencyPct float64 `json:"grid_efficiency_pct"`
}

// QualityReport summarizes the cleanup work the pipeline performed on a
// dataset. These are informational counts, not errors: duplicate rows
// and missing cells are the designed recovery path for dirty inputs.
type QualityReport struct {
	Rows              int `json:"rows"`
	DuplicatesRemoved int `json:"duplicates_removed"`
	CellsInterpolated int `json:"cells_interpolated"`
}

// Dataset is the enriched table produced by one pipeline run. It is
// read-only after construction; all chart and export views are
// non-mutating reads over Records.
type Dataset struct {
	Records []EnrichedRecord `json:"records"`
	Quality QualityReport    `json:"quality"`
	// ContentHash identifies the raw input the dataset was built from.
	ContentHash string    `json:"content_hash"`
	LoadedAt    time.Time `json:"loaded_at"`
}

// PeriodStart returns the timestamp of the first record, or the zero
// time for an empty dataset. Records are chronological after enrichment.
func (d *Dataset) PeriodStart() time.Time {
	if len(d.Records) == 0 {
		return time.Time{}
	}
	return d.Records[0].Timestamp
}

// PeriodEnd returns the timestamp of the last record.
func (d *Dataset) PeriodEnd() time.Time {
	if len(d.Records) == 0 {
		return time.Time{}
	}
	return d.Records[len(d.Records)-1].Timestamp
}

// SummaryStats holds the headline metrics shown at the top of the
// dashboard and in the PDF report.
type SummaryStats struct {
	Rows              int       `json:"rows"`
	TotalProduction   float64   `json:"total_production"`
	TotalConsumption  float64   `json:"total_consumption"`
	AvgRenewablePct   float64   `json:"avg_renewable_pct"`
	AvgNetBalance     float64   `json:"avg_net_balance"`
	PeakProduction    float64   `json:"peak_production"`
	PeakProductionAt  time.Time `json:"peak_production_at"`
	AvgGridEfficiency float64   `json:"avg_grid_efficiency_pct"`
	PeriodStart       time.Time `json:"period_start"`
	PeriodEnd         time.Time `json:"period_end"`
}

// SourceNames lists the per-source production columns in display order.
// The set is fixed by the input schema.
func SourceNames() []string {
	return []string{"coal", "hydro", "fossil_fuel", "nuclear", "wind", "solar", "biomass"}
}

// RenewableSourceNames lists the sources counted into RenewableTotal.
func RenewableSourceNames() []string {
	return []string{"hydro", "wind", "solar", "biomass"}
}

// NonrenewableSourceNames lists the sources counted into NonrenewableTotal.
func NonrenewableSourceNames() []string {
	return []string{"coal", "fossil_fuel", "nuclear"}
}

// SourceValue returns the production of a single source by column name.
// Unknown names return NaN.
func (r *Record) SourceValue(name string) float64 {
	switch name {
	case "coal":
		return r.Coal
	case "hydro":
		return r.Hydro
	case "fossil_fuel":
		return r.FossilFuel
	case "nuclear":
		return r.Nuclear
	case "wind":
		return r.Wind
	case "solar":
		return r.Solar
	case "biomass":
		return r.Biomass
	}
	return math.NaN()
}
