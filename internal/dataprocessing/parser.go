package dataprocessing

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"gridpulse/pkg/contracts/domain"
)

// timestampLayouts are tried in order when parsing the timestamp
// column. The upstream export is ISO-like but not perfectly consistent
// about the separator and second precision.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseCSV reads the raw energy CSV and returns one Record per data
// row. The header row is mapped by column name, so column order does
// not matter and unknown columns are ignored. A missing required
// column yields a *SchemaError; a malformed cell yields an error naming
// the row and column.
func ParseCSV(r io.Reader) ([]domain.Record, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("input is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[normalizeHeader(name)] = i
	}

	var missing []string
	for _, required := range RequiredColumns() {
		if _, ok := columns[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}

	var records []domain.Record
	rowNum := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", rowNum, err)
		}

		record, err := parseRow(row, columns, rowNum)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("input contains no data rows")
	}

	slog.Debug("parsed energy CSV",
		slog.Int("rows", len(records)),
		slog.Int("columns", len(header)))

	return records, nil
}

func parseRow(row []string, columns map[string]int, rowNum int) (domain.Record, error) {
	cell := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	ts, err := parseTimestamp(cell(ColTimestamp))
	if err != nil {
		return domain.Record{}, fmt.Errorf("row %d: %w", rowNum, err)
	}

	record := domain.Record{Timestamp: ts}
	numeric := []struct {
		name string
		dst  *float64
	}{
		{ColProduction, &record.Production},
		{ColConsumption, &record.Consumption},
		{ColBalance, &record.Balance},
		{ColCoal, &record.Coal},
		{ColHydro, &record.Hydro},
		{ColFossilFuel, &record.FossilFuel},
		{ColNuclear, &record.Nuclear},
		{ColWind, &record.Wind},
		{ColSolar, &record.Solar},
		{ColBiomass, &record.Biomass},
	}
	for _, col := range numeric {
		value, err := parseNumber(cell(col.name))
		if err != nil {
			return domain.Record{}, fmt.Errorf("row %d, column %q: %w", rowNum, col.name, err)
		}
		*col.dst = value
	}

	// Balance is the one optional column. When the header omits it
	// entirely, derive it instead of marking every row as missing data.
	// NaN production or consumption propagates, so rows with real gaps
	// still get filled by interpolation.
	if _, ok := columns[ColBalance]; !ok {
		record.Balance = record.Production - record.Consumption
	}

	return record, nil
}

func parseTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("timestamp is empty")
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", value)
}

// parseNumber converts a cell to float64. Empty cells become NaN so the
// interpolation step can identify and fill them.
func parseNumber(value string) (float64, error) {
	if value == "" {
		return math.NaN(), nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable number %q", value)
	}
	return parsed, nil
}

func normalizeHeader(name string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF")))
}
