package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// HealthHandler serves the health check endpoint.
type HealthHandler struct {
	health HealthService
	logger *slog.Logger
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(health HealthService, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		health: health,
		logger: logger.With(slog.String("component", "health_handler")),
	}
}

// Routes returns the health routes.
func (h *HealthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/", h.Check)
	return r
}

// Check handles GET /api/healthz.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.health.Check(r.Context()))
}
