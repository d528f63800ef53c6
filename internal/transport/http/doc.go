// Package http contains the Chi HTTP handlers for the dashboard API.
//
// Handlers depend on narrow service interfaces, log through slog and
// report failures as RFC 7807 problem responses via the shared error
// handler. Successful responses use go-chi/render with a consistent
// {"status": "success", "data": ...} envelope.
package http
