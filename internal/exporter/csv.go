package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"gridpulse/internal/config"
	"gridpulse/pkg/contracts/domain"
)

// EnrichedHeader returns the column order of an enriched-table export:
// every input column first, derived columns appended.
func EnrichedHeader() []string {
	return []string{
		"timestamp", "production", "consumption", "balance",
		"coal", "hydro", "fossil_fuel", "nuclear", "wind", "solar", "biomass",
		"year", "month", "day", "hour", "quarter", "weekday", "weekend",
		"renewable_total", "nonrenewable_total", "renewable_pct",
		"net_balance", "grid_efficiency_pct",
	}
}

// EnrichedRow formats one enriched record in EnrichedHeader order.
func EnrichedRow(r *domain.EnrichedRecord) []string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return []string{
		r.Timestamp.Format("2006-01-02 15:04:05"),
		f(r.Production), f(r.Consumption), f(r.Balance),
		f(r.Coal), f(r.Hydro), f(r.FossilFuel), f(r.Nuclear),
		f(r.Wind), f(r.Solar), f(r.Biomass),
		strconv.Itoa(r.Year), strconv.Itoa(r.Month), strconv.Itoa(r.Day),
		strconv.Itoa(r.Hour), strconv.Itoa(r.Quarter),
		r.Weekday, strconv.FormatBool(r.Weekend),
		f(r.RenewableTotal), f(r.NonrenewableTotal), f(r.RenewablePct),
		f(r.NetBalance), f(r.GridEfficiencyPct),
	}
}

// WriteEnrichedCSV streams the enriched table to w. withBOM prefixes a
// UTF-8 BOM so spreadsheet applications detect the encoding.
func WriteEnrichedCSV(w io.Writer, records []domain.EnrichedRecord, withBOM bool) error {
	if withBOM {
		if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(EnrichedHeader()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i := range records {
		if err := writer.Write(EnrichedRow(&records[i])); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// CSVWriter writes export files into the configured exports directory.
type CSVWriter struct {
	paths *config.Paths
}

// NewCSVWriter creates a new CSV writer instance.
func NewCSVWriter(paths *config.Paths) *CSVWriter {
	return &CSVWriter{paths: paths}
}

// WriteEnriched writes the enriched table to a named file in the
// exports directory and returns its full path.
func (w *CSVWriter) WriteEnriched(name string, records []domain.EnrichedRecord) (string, error) {
	fullPath := w.paths.ExportPath(name)

	slog.Info("writing enriched CSV",
		slog.String("path", fullPath),
		slog.Int("record_count", len(records)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if err := WriteEnrichedCSV(file, records, true); err != nil {
		return "", err
	}
	return fullPath, nil
}

// WriteSimpleCSV writes arbitrary headers and records to a named file
// in the exports directory, for summary tables.
func (w *CSVWriter) WriteSimpleCSV(name string, headers []string, records [][]string) (string, error) {
	fullPath := w.paths.ExportPath(name)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return "", fmt.Errorf("failed to write BOM: %w", err)
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(headers); err != nil {
		return "", fmt.Errorf("failed to write headers: %w", err)
	}
	for i, record := range records {
		if err := writer.Write(record); err != nil {
			return "", fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}
	return fullPath, nil
}
