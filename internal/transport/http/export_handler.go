package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gridpulse/internal/dataprocessing"
	apierrors "gridpulse/internal/errors"
	"gridpulse/internal/exporter"
	"gridpulse/internal/services"
)

// ExportHandler streams the enriched dataset as a downloadable file.
type ExportHandler struct {
	datasets     DatasetService
	reports      ReportService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewExportHandler creates an export handler.
func NewExportHandler(datasets DatasetService, reports ReportService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ExportHandler {
	return &ExportHandler{
		datasets:     datasets,
		reports:      reports,
		logger:       logger.With(slog.String("component", "export_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the export routes.
func (h *ExportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{format}", h.Export)
	return r
}

// Export handles GET /api/export/{format} for csv, xlsx and pdf.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	format := chi.URLParam(r, "format")

	switch format {
	case "csv", "xlsx", "pdf":
	default:
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("format", fmt.Sprintf("unsupported export format %q, expected csv, xlsx or pdf", format)))
		return
	}

	from, to, apiErr := parseRange(r)
	if apiErr != nil {
		h.errorHandler.HandleError(w, r, apiErr)
		return
	}

	records, err := h.datasets.Records(ctx, from, to)
	if err != nil {
		h.handleExportError(w, r, err)
		return
	}
	if len(records) == 0 {
		h.errorHandler.HandleError(w, r, apierrors.NotFoundError("records in the requested range"))
		return
	}

	dataset, err := h.datasets.Current(ctx)
	if err != nil {
		h.handleExportError(w, r, err)
		return
	}
	filename := fmt.Sprintf("gridpulse_%s.%s", shortHash(dataset.ContentHash), format)

	h.logger.InfoContext(ctx, "export requested",
		slog.String("format", format),
		slog.Int("rows", len(records)))

	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		setAttachment(w, filename)
		if err := exporter.WriteEnrichedCSV(w, records, true); err != nil {
			h.logger.ErrorContext(ctx, "csv export failed", slog.String("error", err.Error()))
		}

	case "xlsx":
		stats := dataprocessing.Summarize(records)
		payload, err := exporter.BuildWorkbook(stats, records)
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ExportError(format, err))
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		setAttachment(w, filename)
		w.Write(payload)

	case "pdf":
		stats := dataprocessing.Summarize(records)
		monthly, err := dataprocessing.Aggregate(records, dataprocessing.GroupByMonth,
			[]dataprocessing.Measure{dataprocessing.MeasureProduction, dataprocessing.MeasureConsumption},
			dataprocessing.AggSum)
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ExportError(format, err))
			return
		}
		payload, err := exporter.BuildReport(stats, monthly, dataprocessing.SourceMix(records))
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ExportError(format, err))
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		setAttachment(w, filename)
		w.Write(payload)
	}
}

func setAttachment(w http.ResponseWriter, filename string) {
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}

func shortHash(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}

func (h *ExportHandler) handleExportError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrNoDataset):
		h.errorHandler.HandleError(w, r, apierrors.ErrDatasetNotFound)
	case errors.Is(err, services.ErrInvalidRange):
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("from", "\"from\" must not be after \"to\""))
	default:
		h.errorHandler.HandleError(w, r, err)
	}
}
