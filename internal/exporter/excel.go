package exporter

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"gridpulse/pkg/contracts/domain"
)

// BuildWorkbook renders the enriched dataset as an XLSX workbook with a
// summary sheet and the full records table.
func BuildWorkbook(stats domain.SummaryStats, records []domain.EnrichedRecord) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	recordsSheet := "records"
	f.SetSheetName("Sheet1", summarySheet)
	if _, err := f.NewSheet(recordsSheet); err != nil {
		return nil, fmt.Errorf("failed to create records sheet: %w", err)
	}

	_ = f.SetCellValue(summarySheet, "A1", "Energy Production Analysis")
	summaryRows := [][2]interface{}{
		{"Period Start", stats.PeriodStart.Format("2006-01-02 15:04")},
		{"Period End", stats.PeriodEnd.Format("2006-01-02 15:04")},
		{"Observations", stats.Rows},
		{"Total Production (MW)", stats.TotalProduction},
		{"Total Consumption (MW)", stats.TotalConsumption},
		{"Average Renewable %", stats.AvgRenewablePct},
		{"Average Net Balance (MW)", stats.AvgNetBalance},
		{"Peak Production (MW)", stats.PeakProduction},
		{"Peak Production At", stats.PeakProductionAt.Format("2006-01-02 15:04")},
		{"Average Grid Efficiency %", stats.AvgGridEfficiency},
	}
	for i, row := range summaryRows {
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", i+3), row[0])
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", i+3), row[1])
	}

	header := EnrichedHeader()
	for col, name := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		_ = f.SetCellValue(recordsSheet, cell, name)
	}
	for rowIdx := range records {
		row := EnrichedRow(&records[rowIdx])
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			if err != nil {
				return nil, err
			}
			_ = f.SetCellValue(recordsSheet, cell, value)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
