package dataprocessing

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleHeader = "timestamp,production,consumption,balance,coal,hydro,fossil_fuel,nuclear,wind,solar,biomass"

func TestParseCSV(t *testing.T) {
	input := sampleHeader + "\n" +
		"2024-01-01 00:00:00,5000,4500,500,1200,1500,800,1000,300,0,200\n" +
		"2024-01-01 01:00:00,4800,4400,400,1100,1400,850,1000,250,0,200\n"

	records, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), first.Timestamp)
	assert.Equal(t, 5000.0, first.Production)
	assert.Equal(t, 4500.0, first.Consumption)
	assert.Equal(t, 1500.0, first.Hydro)
	assert.Equal(t, 800.0, first.FossilFuel)
	assert.Equal(t, 200.0, first.Biomass)
}

func TestParseCSV_ColumnOrderIndependent(t *testing.T) {
	input := "production,timestamp,consumption,coal,hydro,fossil_fuel,nuclear,wind,solar,biomass,extra\n" +
		"5000,2024-01-01 00:00:00,4500,1200,1500,800,1000,300,0,200,ignored\n"

	records, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 5000.0, records[0].Production)
	// balance is optional and absent: derived from production - consumption
	assert.Equal(t, 500.0, records[0].Balance)
}

func TestParseCSV_ByteOrderMark(t *testing.T) {
	input := "\uFEFF" + sampleHeader + "\n" +
		"2024-01-01 00:00:00,5000,4500,500,1200,1500,800,1000,300,0,200\n"

	records, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 5000.0, records[0].Production)
}

func TestParseCSV_AbsentBalanceDerived(t *testing.T) {
	input := "timestamp,production,consumption,coal,hydro,fossil_fuel,nuclear,wind,solar,biomass\n" +
		"2024-01-01 00:00:00,5000,4500,1200,1500,800,1000,300,0,200\n" +
		"2024-01-01 01:00:00,,4400,1100,1400,850,1000,250,0,200\n"

	records, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, 500.0, records[0].Balance)
	// a missing production cell propagates into the derived balance
	assert.True(t, math.IsNaN(records[1].Balance))
}

func TestParseCSV_MissingColumns(t *testing.T) {
	input := "timestamp,production,consumption,coal,hydro,nuclear,wind,solar\n" +
		"2024-01-01 00:00:00,5000,4500,1200,1500,1000,300,0\n"

	_, err := ParseCSV(strings.NewReader(input))
	require.Error(t, err)

	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.ElementsMatch(t, []string{"fossil_fuel", "biomass"}, schemaErr.Missing)
	assert.Contains(t, schemaErr.Error(), "fossil_fuel")
	assert.Contains(t, schemaErr.Error(), "biomass")
}

func TestParseCSV_EmptyCellsBecomeNaN(t *testing.T) {
	input := sampleHeader + "\n" +
		"2024-01-01 00:00:00,,4500,500,1200,1500,800,1000,300,0,200\n"

	records, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	assert.True(t, math.IsNaN(records[0].Production))
	assert.Equal(t, 4500.0, records[0].Consumption)
}

func TestParseCSV_TimestampLayouts(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Time
	}{
		{"space separated", "2024-06-15 13:00:00", time.Date(2024, 6, 15, 13, 0, 0, 0, time.UTC)},
		{"T separated", "2024-06-15T13:00:00", time.Date(2024, 6, 15, 13, 0, 0, 0, time.UTC)},
		{"rfc3339", "2024-06-15T13:00:00Z", time.Date(2024, 6, 15, 13, 0, 0, 0, time.UTC)},
		{"no seconds", "2024-06-15 13:00", time.Date(2024, 6, 15, 13, 0, 0, 0, time.UTC)},
		{"date only", "2024-06-15", time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, err := parseTimestamp(tt.value)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(ts))
		})
	}
}

func TestParseCSV_BadCells(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "bad timestamp",
			input: sampleHeader + "\nnot-a-date,1,1,0,0,0,0,0,0,0,0\n",
			want:  "unparseable timestamp",
		},
		{
			name:  "bad number",
			input: sampleHeader + "\n2024-01-01 00:00:00,abc,1,0,0,0,0,0,0,0,0\n",
			want:  "unparseable number",
		},
		{
			name:  "no data rows",
			input: sampleHeader + "\n",
			want:  "no data rows",
		},
		{
			name:  "empty input",
			input: "",
			want:  "empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCSV(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
