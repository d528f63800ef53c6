package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"gridpulse/internal/config"
	apierrors "gridpulse/internal/errors"
	"gridpulse/internal/services"
)

// DatasetHandler handles dataset upload and read endpoints.
type DatasetHandler struct {
	datasets     DatasetService
	reports      ReportService
	cfg          config.DatasetConfig
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDatasetHandler creates a dataset handler.
func NewDatasetHandler(datasets DatasetService, reports ReportService, cfg config.DatasetConfig, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DatasetHandler {
	return &DatasetHandler{
		datasets:     datasets,
		reports:      reports,
		cfg:          cfg,
		logger:       logger.With(slog.String("component", "dataset_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dataset routes.
func (h *DatasetHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/", h.Upload)
	r.Get("/", h.Status)
	r.Get("/records", h.Records)
	r.Get("/summary", h.Summary)

	return r
}

// Upload handles POST /api/dataset. The CSV comes either as the "file"
// part of a multipart form or as the raw request body.
func (h *DatasetHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes)

	payload, err := h.uploadPayload(r)
	if err != nil {
		h.handleUploadError(w, r, err)
		return
	}
	defer payload.Close()

	result, err := h.datasets.Load(ctx, payload)
	if err != nil {
		h.handleUploadError(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "dataset upload accepted",
		slog.String("content_hash", result.ContentHash),
		slog.Bool("cached", result.Cached),
		slog.Int("rows", result.Quality.Rows))

	status := http.StatusCreated
	if result.Cached {
		status = http.StatusOK
	}
	render.Status(r, status)
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   result,
	})
}

// uploadPayload extracts the CSV reader from the request.
func (h *DatasetHandler) uploadPayload(r *http.Request) (io.ReadCloser, error) {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		return r.Body, nil
	}

	if err := r.ParseMultipartForm(h.cfg.MaxUploadBytes); err != nil {
		return nil, err
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, apierrors.ErrValidation("file", "multipart upload requires a \"file\" part")
	}
	return file, nil
}

func (h *DatasetHandler) handleUploadError(w http.ResponseWriter, r *http.Request, err error) {
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytesErr):
		h.errorHandler.HandleError(w, r, apierrors.ErrPayloadTooLarge)
	case errors.Is(err, services.ErrEmptyPayload):
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("body", "the uploaded file is empty"))
	default:
		h.errorHandler.HandleError(w, r, err)
	}
}

// Status handles GET /api/dataset, reporting the current load.
func (h *DatasetHandler) Status(w http.ResponseWriter, r *http.Request) {
	dataset, err := h.datasets.Current(r.Context())
	if err != nil {
		h.handleDatasetError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data": map[string]interface{}{
			"content_hash": dataset.ContentHash,
			"loaded_at":    dataset.LoadedAt,
			"quality":      dataset.Quality,
			"period_start": dataset.PeriodStart(),
			"period_end":   dataset.PeriodEnd(),
		},
	})
}

// Records handles GET /api/dataset/records with from/to/limit filters.
func (h *DatasetHandler) Records(w http.ResponseWriter, r *http.Request) {
	from, to, apiErr := parseRange(r)
	if apiErr != nil {
		h.errorHandler.HandleError(w, r, apiErr)
		return
	}
	limit, apiErr := parseLimitParam(r, h.cfg.DefaultRecordLimit)
	if apiErr != nil {
		h.errorHandler.HandleError(w, r, apiErr)
		return
	}

	records, err := h.datasets.Records(r.Context(), from, to)
	if err != nil {
		h.handleDatasetError(w, r, err)
		return
	}

	total := len(records)
	if limit < total {
		records = records[:limit]
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   records,
		"count":  len(records),
		"total":  total,
	})
}

// Summary handles GET /api/dataset/summary.
func (h *DatasetHandler) Summary(w http.ResponseWriter, r *http.Request) {
	from, to, apiErr := parseRange(r)
	if apiErr != nil {
		h.errorHandler.HandleError(w, r, apiErr)
		return
	}

	stats, err := h.reports.Summary(r.Context(), from, to)
	if err != nil {
		h.handleDatasetError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   stats,
	})
}

// handleDatasetError maps service errors shared by the read endpoints.
func (h *DatasetHandler) handleDatasetError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrNoDataset):
		h.errorHandler.HandleError(w, r, apierrors.ErrDatasetNotFound)
	case errors.Is(err, services.ErrInvalidRange):
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("from", "\"from\" must not be after \"to\""))
	default:
		h.errorHandler.HandleError(w, r, err)
	}
}
