package exporter

import (
	"bytes"
	"compress/zlib"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"gridpulse/internal/config"
	"gridpulse/internal/dataprocessing"
	"gridpulse/pkg/contracts/domain"
)

func sampleRecords(t *testing.T) []domain.EnrichedRecord {
	t.Helper()
	records := []domain.Record{
		{
			Timestamp:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			Production: 5000, Consumption: 4500, Balance: 500,
			Coal: 1200, Hydro: 1500, FossilFuel: 800, Nuclear: 1000,
			Wind: 300, Solar: 0, Biomass: 200,
		},
		{
			Timestamp:   time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC),
			Production: 4000, Consumption: 4200, Balance: -200,
			Coal: 900, Hydro: 1200, FossilFuel: 700, Nuclear: 1000,
			Wind: 150, Solar: 50, Biomass: 100,
		},
	}
	ds, err := dataprocessing.Enrich(records)
	require.NoError(t, err)
	return ds.Records
}

func TestWriteEnrichedCSV(t *testing.T) {
	records := sampleRecords(t)

	var buf bytes.Buffer
	require.NoError(t, WriteEnrichedCSV(&buf, records, true))

	data := buf.Bytes()
	require.True(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}))

	reader := csv.NewReader(bytes.NewReader(data[3:]))
	rows, err := reader.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3) // header + 2 records

	assert.Equal(t, EnrichedHeader(), rows[0])
	assert.Equal(t, "2024-01-01 00:00:00", rows[1][0])
	assert.Equal(t, "5000", rows[1][1])
	assert.Equal(t, "Monday", rows[1][16])
	assert.Equal(t, "false", rows[1][17])
}

func TestCSVWriter_WriteEnriched(t *testing.T) {
	dir := t.TempDir()
	paths := &config.Paths{DataDir: dir, ExportsDir: filepath.Join(dir, "exports"), LogsDir: dir}
	writer := NewCSVWriter(paths)

	path, err := writer.WriteEnriched("enriched.csv", sampleRecords(t))
	require.NoError(t, err)
	assert.Equal(t, paths.ExportPath("enriched.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "grid_efficiency_pct")
}

func TestCSVWriter_WriteSimpleCSV(t *testing.T) {
	dir := t.TempDir()
	paths := &config.Paths{DataDir: dir, ExportsDir: dir, LogsDir: dir}
	writer := NewCSVWriter(paths)

	path, err := writer.WriteSimpleCSV("summary.csv",
		[]string{"metric", "value"},
		[][]string{{"rows", "2"}, {"total_production", "9000"}})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "total_production,9000")
}

func TestBuildWorkbook(t *testing.T) {
	records := sampleRecords(t)
	stats := dataprocessing.Summarize(records)

	data, err := BuildWorkbook(stats, records)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"summary", "records"}, f.GetSheetList())

	rows, err := f.GetRows("records")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "timestamp", rows[0][0])
}

func TestBuildReport(t *testing.T) {
	records := sampleRecords(t)
	stats := dataprocessing.Summarize(records)
	monthly, err := dataprocessing.Aggregate(records, dataprocessing.GroupByMonth, nil, dataprocessing.AggSum)
	require.NoError(t, err)
	mix := dataprocessing.SourceMix(records)

	data, err := BuildReport(stats, monthly, mix)
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))

	// The monthly table carries summed values, so the heading says Total.
	text := pdfStreamText(t, data)
	assert.Contains(t, text, "Total Production and Consumption by Month")
	assert.NotContains(t, text, "Average Production and Consumption by Month")
}

// pdfStreamText inflates every FlateDecode stream of a rendered PDF and
// returns the concatenated contents, enough to assert on page text.
func pdfStreamText(t *testing.T, data []byte) string {
	t.Helper()

	var out strings.Builder
	rest := data
	for {
		i := bytes.Index(rest, []byte(">>\nstream\n"))
		if i < 0 {
			break
		}
		rest = rest[i+len(">>\nstream\n"):]
		j := bytes.Index(rest, []byte("endstream"))
		if j < 0 {
			break
		}
		if r, err := zlib.NewReader(bytes.NewReader(rest[:j])); err == nil {
			if inflated, err := io.ReadAll(r); err == nil {
				out.Write(inflated)
			}
			r.Close()
		}
		rest = rest[j:]
	}
	return out.String()
}
