package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"gridpulse/internal/config"
	apierrors "gridpulse/internal/errors"
	"gridpulse/internal/infrastructure"
	custommw "gridpulse/internal/middleware"
	"gridpulse/internal/services"
	handlers "gridpulse/internal/transport/http"
	ws "gridpulse/internal/websocket"
)

const (
	Version = "1.0.0"
	AppName = "GridPulse - Energy Production Dashboard"
)

// BuildTime is set at compile time via -ldflags.
var BuildTime = ""

// Application wires configuration, services, the websocket hub and the
// HTTP router together.
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	WebSocketHub  *ws.Hub

	DatasetService *services.DatasetService
	ReportService  *services.ReportService
	HealthService  *services.HealthService
}

// NewApplication loads configuration and builds the full dependency
// graph.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	logger.Info("application starting",
		slog.String("name", AppName),
		slog.String("version", Version))

	paths, err := config.NewPaths(cfg.Paths)
	if err != nil {
		return nil, fmt.Errorf("resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("initialize observability: %w", err)
	}

	pipelineMetrics, err := infrastructure.NewPipelineMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("create pipeline metrics: %w", err)
	}

	hub := ws.NewHubWithConfig(logger,
		cfg.WebSocket.ReadBufferSize,
		cfg.WebSocket.WriteBufferSize,
		cfg.WebSocket.WriteWait,
		cfg.WebSocket.PongWait,
	)

	datasetService := services.NewDatasetService(logger, pipelineMetrics, hub)
	reportService := services.NewReportService(datasetService, logger)
	healthService := services.NewHealthService(Version, BuildTime, datasetService, logger)

	app := &Application{
		Config:         cfg,
		Logger:         logger,
		OTelProviders:  otelProviders,
		WebSocketHub:   hub,
		DatasetService: datasetService,
		ReportService:  reportService,
		HealthService:  healthService,
	}
	app.setupRouter()

	app.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        app.Router,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	return app, nil
}

// setupRouter configures the middleware chain and mounts all routes.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(custommw.RequestID)
	r.Use(custommw.RealIP)

	if otelMiddleware, err := custommw.NewOTelMiddleware(a.OTelProviders); err == nil {
		r.Use(otelMiddleware.Handler)
	} else {
		a.Logger.Warn("http instrumentation disabled", slog.String("error", err.Error()))
	}

	r.Use(custommw.StructuredLogger(a.Logger))
	r.Use(custommw.Recoverer(a.Logger))
	r.Use(custommw.SecurityHeaders)

	if a.Config.Security.EnableCORS {
		r.Use(custommw.CORS(custommw.CORSConfig{
			AllowedOrigins: a.Config.Security.AllowedOrigins,
			Logger:         a.Logger,
		}))
	}

	if a.Config.Security.RateLimit.Enabled {
		limiter := custommw.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
		)
		r.Use(limiter.Handler)
	}

	errorHandler := apierrors.NewErrorHandler(a.Logger, false)

	r.Route("/api", func(r chi.Router) {
		r.Mount("/dataset", handlers.NewDatasetHandler(
			a.DatasetService, a.ReportService, a.Config.Dataset, a.Logger, errorHandler).Routes())
		r.Mount("/aggregates", handlers.NewReportHandler(
			a.ReportService, a.Logger, errorHandler).Routes())
		r.Mount("/export", handlers.NewExportHandler(
			a.DatasetService, a.ReportService, a.Logger, errorHandler).Routes())
		r.Mount("/healthz", handlers.NewHealthHandler(
			a.HealthService, a.Logger).Routes())
	})

	r.Get("/ws", func(w http.ResponseWriter, req *http.Request) {
		ws.ServeWS(a.WebSocketHub, w, req)
	})

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
}

// Run starts the HTTP server and the websocket hub and blocks until
// SIGINT or SIGTERM, then shuts down gracefully.
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go a.WebSocketHub.Run(ctx)

	serverErr := make(chan error, 1)
	go func() {
		a.Logger.Info("http server listening", slog.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	a.Logger.Info("shutdown signal received")
	return a.Shutdown()
}

// Shutdown stops the HTTP server and flushes the telemetry providers.
func (a *Application) Shutdown() error {
	timeout := a.Config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := a.Server.Shutdown(ctx); err != nil {
		a.Logger.Error("http server shutdown failed", slog.String("error", err.Error()))
		return err
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(ctx); err != nil {
			a.Logger.Warn("telemetry shutdown incomplete", slog.String("error", err.Error()))
		}
	}

	infrastructure.CloseLogFile()
	a.Logger.Info("shutdown complete")
	return nil
}
