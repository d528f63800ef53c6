package exporter

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"gridpulse/internal/dataprocessing"
	"gridpulse/pkg/contracts/domain"
)

// BuildReport renders the analysis report as a PDF: headline statistics,
// the monthly production aggregate and the energy-mix breakdown.
func BuildReport(stats domain.SummaryStats, monthly []dataprocessing.Bucket, mix []dataprocessing.SourceShare) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "B", 16)
	pdf.AddPage()

	pdf.Cell(0, 10, "Energy Data Analysis Report")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Analysis period: %s to %s",
		stats.PeriodStart.Format("2006-01-02"), stats.PeriodEnd.Format("2006-01-02")))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", time.Now().Format(time.RFC3339)))
	pdf.Ln(10)

	// Key statistics table
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 7, "Key Statistics")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	statRows := [][2]string{
		{"Observations", fmt.Sprintf("%d", stats.Rows)},
		{"Total Production", fmt.Sprintf("%.0f MW", stats.TotalProduction)},
		{"Total Consumption", fmt.Sprintf("%.0f MW", stats.TotalConsumption)},
		{"Average Renewable", fmt.Sprintf("%.1f%%", stats.AvgRenewablePct)},
		{"Average Net Balance", fmt.Sprintf("%.1f MW", stats.AvgNetBalance)},
		{"Peak Production", fmt.Sprintf("%.0f MW at %s", stats.PeakProduction, stats.PeakProductionAt.Format("2006-01-02 15:04"))},
		{"Average Grid Efficiency", fmt.Sprintf("%.1f%%", stats.AvgGridEfficiency)},
	}
	for _, row := range statRows {
		pdf.CellFormat(70, 6, row[0], "1", 0, "L", false, 0, "")
		pdf.CellFormat(90, 6, row[1], "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(8)

	// Monthly production aggregate
	if len(monthly) > 0 {
		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(0, 7, "Total Production and Consumption by Month")
		pdf.Ln(8)
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(40, 6, "Month", "1", 0, "C", false, 0, "")
		pdf.CellFormat(60, 6, "Production (MW)", "1", 0, "C", false, 0, "")
		pdf.CellFormat(60, 6, "Consumption (MW)", "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 10)
		for _, bucket := range monthly {
			pdf.CellFormat(40, 6, bucket.Label, "1", 0, "C", false, 0, "")
			pdf.CellFormat(60, 6, fmt.Sprintf("%.1f", bucket.Values[dataprocessing.MeasureProduction]), "1", 0, "R", false, 0, "")
			pdf.CellFormat(60, 6, fmt.Sprintf("%.1f", bucket.Values[dataprocessing.MeasureConsumption]), "1", 0, "R", false, 0, "")
			pdf.Ln(-1)
		}
		pdf.Ln(8)
	}

	// Energy source distribution
	if len(mix) > 0 {
		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(0, 7, "Energy Source Distribution")
		pdf.Ln(8)
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(50, 6, "Source", "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 6, "Category", "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 6, "Total (MW)", "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, "Share", "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 10)
		for _, share := range mix {
			category := "non-renewable"
			if share.Renewable {
				category = "renewable"
			}
			pdf.CellFormat(50, 6, share.Source, "1", 0, "L", false, 0, "")
			pdf.CellFormat(40, 6, category, "1", 0, "C", false, 0, "")
			pdf.CellFormat(40, 6, fmt.Sprintf("%.0f", share.Total), "1", 0, "R", false, 0, "")
			pdf.CellFormat(30, 6, fmt.Sprintf("%.1f%%", share.SharePct), "1", 0, "R", false, 0, "")
			pdf.Ln(-1)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return buf.Bytes(), nil
}
