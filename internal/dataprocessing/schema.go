package dataprocessing

import (
	"fmt"
	"strings"
)

// Column names of the raw energy CSV. The exact set is fixed by the
// input schema and must be preserved verbatim; treat these as
// configuration constants, not something to infer from data.
const (
	ColTimestamp   = "timestamp"
	ColProduction  = "production"
	ColConsumption = "consumption"
	ColBalance     = "balance"
	ColCoal        = "coal"
	ColHydro       = "hydro"
	ColFossilFuel  = "fossil_fuel"
	ColNuclear     = "nuclear"
	ColWind        = "wind"
	ColSolar       = "solar"
	ColBiomass     = "biomass"
)

// RequiredColumns lists every column that must be present in the input
// header. Balance is derivable and therefore optional.
func RequiredColumns() []string {
	return []string{
		ColTimestamp,
		ColProduction,
		ColConsumption,
		ColCoal,
		ColHydro,
		ColFossilFuel,
		ColNuclear,
		ColWind,
		ColSolar,
		ColBiomass,
	}
}

// SchemaError reports required columns that are absent from the input
// header. It is the only expected failure mode of the pipeline and is
// always surfaced to the caller; no partial result is returned.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("input is missing required column(s): %s", strings.Join(e.Missing, ", "))
}
