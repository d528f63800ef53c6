package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"gridpulse/internal/dataprocessing"
	apierrors "gridpulse/internal/errors"
	"gridpulse/internal/services"
)

// ReportHandler handles the aggregation endpoints that feed dashboard
// charts.
type ReportHandler struct {
	reports      ReportService
	validate     *validator.Validate
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// aggregateQuery carries the validated /api/aggregates parameters.
type aggregateQuery struct {
	GroupBy  string `validate:"required,oneof=hour day month quarter weekday year"`
	Agg      string `validate:"omitempty,oneof=mean sum"`
	Measures []string
}

// NewReportHandler creates a report handler.
func NewReportHandler(reports ReportService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ReportHandler {
	return &ReportHandler{
		reports:      reports,
		validate:     validator.New(),
		logger:       logger.With(slog.String("component", "report_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the aggregation routes.
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.Aggregates)
	r.Get("/sources", h.Sources)

	return r
}

// Aggregates handles GET /api/aggregates.
func (h *ReportHandler) Aggregates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := aggregateQuery{
		GroupBy: r.URL.Query().Get("group_by"),
		Agg:     r.URL.Query().Get("agg"),
	}
	if raw := r.URL.Query().Get("measures"); raw != "" {
		query.Measures = strings.Split(raw, ",")
	}

	if err := h.validate.Struct(&query); err != nil {
		h.errorHandler.HandleError(w, r, h.validationError(err))
		return
	}

	from, to, apiErr := parseRange(r)
	if apiErr != nil {
		h.errorHandler.HandleError(w, r, apiErr)
		return
	}

	measures := make([]dataprocessing.Measure, 0, len(query.Measures))
	for _, m := range query.Measures {
		measures = append(measures, dataprocessing.Measure(strings.TrimSpace(m)))
	}

	buckets, err := h.reports.Aggregate(ctx, services.AggregateRequest{
		GroupBy:  dataprocessing.GroupKey(query.GroupBy),
		Measures: measures,
		Agg:      dataprocessing.Agg(query.Agg),
		From:     from,
		To:       to,
	})
	if err != nil {
		h.handleReportError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status":   "success",
		"group_by": query.GroupBy,
		"data":     buckets,
		"count":    len(buckets),
	})
}

// Sources handles GET /api/aggregates/sources.
func (h *ReportHandler) Sources(w http.ResponseWriter, r *http.Request) {
	from, to, apiErr := parseRange(r)
	if apiErr != nil {
		h.errorHandler.HandleError(w, r, apiErr)
		return
	}

	mix, err := h.reports.SourceMix(r.Context(), from, to)
	if err != nil {
		h.handleReportError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   mix,
		"count":  len(mix),
	})
}

// validationError converts validator output into a field-level API error.
func (h *ReportHandler) validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apierrors.InvalidRequestWithError(err)
	}

	fe := fieldErrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return apierrors.ErrValidation(field, fmt.Sprintf("%s is required", paramName(field)))
	case "oneof":
		return apierrors.ErrValidation(field, fmt.Sprintf("%s must be one of: %s", paramName(field), fe.Param()))
	default:
		return apierrors.ErrValidation(field, fmt.Sprintf("%s is invalid", paramName(field)))
	}
}

// paramName maps struct field names back to their query parameter names.
func paramName(field string) string {
	if field == "groupby" {
		return "group_by"
	}
	return field
}

func (h *ReportHandler) handleReportError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrNoDataset):
		h.errorHandler.HandleError(w, r, apierrors.ErrDatasetNotFound)
	case errors.Is(err, services.ErrInvalidRange):
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("from", "\"from\" must not be after \"to\""))
	default:
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
	}
}
