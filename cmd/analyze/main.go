package main

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"gridpulse/internal/config"
	"gridpulse/internal/dataprocessing"
	"gridpulse/internal/exporter"
	"gridpulse/internal/infrastructure"
	"gridpulse/pkg/contracts/domain"
)

func main() {
	inFile := flag.String("in", "", "input CSV file with hourly energy readings")
	outDir := flag.String("out", "", "output directory for exports (defaults to the configured exports dir)")
	formats := flag.String("formats", "csv", "comma-separated export formats: csv, xlsx, pdf")
	flag.Parse()

	if *inFile == "" {
		fmt.Fprintln(os.Stderr, "usage: analyze -in <file.csv> [-out <dir>] [-formats csv,xlsx,pdf]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("failed to load config, using defaults", "error", err)
		def := config.Default()
		cfg = &def
	}
	if *outDir != "" {
		cfg.Paths.ExportsDir = *outDir
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	paths, err := config.NewPaths(cfg.Paths)
	if err != nil {
		logger.Error("failed to resolve paths", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := paths.EnsureDirectories(); err != nil {
		logger.Error("failed to create directories", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("starting analysis",
		slog.String("input", *inFile),
		slog.String("exports_dir", paths.ExportsDir),
		slog.String("formats", *formats))

	dataset, err := loadDataset(*inFile)
	if err != nil {
		logger.Error("analysis failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	stats := dataprocessing.Summarize(dataset.Records)
	printSummary(dataset, stats)

	if err := writeExports(context.Background(), logger, paths, dataset, stats, *formats); err != nil {
		logger.Error("export failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("analysis complete", slog.Int("rows", dataset.Quality.Rows))
}

func loadDataset(path string) (*domain.Dataset, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	records, err := dataprocessing.ParseCSV(bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}

	dataset, err := dataprocessing.Enrich(records)
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(payload)
	dataset.ContentHash = hex.EncodeToString(sum[:])
	dataset.LoadedAt = time.Now()
	return dataset, nil
}

func printSummary(dataset *domain.Dataset, stats domain.SummaryStats) {
	fmt.Printf("Rows:                 %d\n", stats.Rows)
	fmt.Printf("Duplicates removed:   %d\n", dataset.Quality.DuplicatesRemoved)
	fmt.Printf("Cells interpolated:   %d\n", dataset.Quality.CellsInterpolated)
	fmt.Printf("Period:               %s .. %s\n",
		stats.PeriodStart.Format("2006-01-02 15:04"),
		stats.PeriodEnd.Format("2006-01-02 15:04"))
	fmt.Printf("Total production:     %.2f\n", stats.TotalProduction)
	fmt.Printf("Total consumption:    %.2f\n", stats.TotalConsumption)
	fmt.Printf("Avg renewable share:  %.2f%%\n", stats.AvgRenewablePct)
	fmt.Printf("Avg grid efficiency:  %.2f%%\n", stats.AvgGridEfficiency)
	fmt.Printf("Peak production:      %.2f at %s\n",
		stats.PeakProduction, stats.PeakProductionAt.Format("2006-01-02 15:04"))
}

// writeExports fans the requested formats out concurrently; each format
// is independent of the others.
func writeExports(ctx context.Context, logger *slog.Logger, paths *config.Paths, dataset *domain.Dataset, stats domain.SummaryStats, formats string) error {
	base := "enriched_" + shortHash(dataset.ContentHash)
	csvWriter := exporter.NewCSVWriter(paths)

	g, _ := errgroup.WithContext(ctx)
	for _, format := range strings.Split(formats, ",") {
		format = strings.TrimSpace(format)
		switch format {
		case "":
			continue

		case "csv":
			g.Go(func() error {
				path, err := csvWriter.WriteEnriched(base+".csv", dataset.Records)
				if err != nil {
					return fmt.Errorf("csv export: %w", err)
				}
				logger.Info("export written", slog.String("path", path))
				return nil
			})

		case "xlsx":
			g.Go(func() error {
				payload, err := exporter.BuildWorkbook(stats, dataset.Records)
				if err != nil {
					return fmt.Errorf("xlsx export: %w", err)
				}
				path := filepath.Join(paths.ExportsDir, base+".xlsx")
				if err := os.WriteFile(path, payload, 0644); err != nil {
					return fmt.Errorf("xlsx export: %w", err)
				}
				logger.Info("export written", slog.String("path", path))
				return nil
			})

		case "pdf":
			g.Go(func() error {
				monthly, err := dataprocessing.Aggregate(dataset.Records, dataprocessing.GroupByMonth,
					[]dataprocessing.Measure{dataprocessing.MeasureProduction, dataprocessing.MeasureConsumption},
					dataprocessing.AggSum)
				if err != nil {
					return fmt.Errorf("pdf export: %w", err)
				}
				payload, err := exporter.BuildReport(stats, monthly, dataprocessing.SourceMix(dataset.Records))
				if err != nil {
					return fmt.Errorf("pdf export: %w", err)
				}
				path := filepath.Join(paths.ExportsDir, base+".pdf")
				if err := os.WriteFile(path, payload, 0644); err != nil {
					return fmt.Errorf("pdf export: %w", err)
				}
				logger.Info("export written", slog.String("path", path))
				return nil
			})

		default:
			return fmt.Errorf("unknown export format %q", format)
		}
	}

	return g.Wait()
}

func shortHash(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}
