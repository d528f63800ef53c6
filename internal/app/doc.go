// Package app assembles the dashboard server: configuration, logging,
// OpenTelemetry, the dataset and report services, the websocket hub and
// the Chi router with its middleware chain.
//
// The middleware order is RequestID, RealIP, instrumentation,
// structured logging, panic recovery, security headers, then optional
// CORS and rate limiting. API routes mount under /api, the Prometheus
// scrape endpoint under /metrics and the websocket endpoint under /ws.
package app
