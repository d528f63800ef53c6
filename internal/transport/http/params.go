package http

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	apierrors "gridpulse/internal/errors"
)

// Accepted layouts for from/to query parameters.
var queryTimeLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// parseTimeParam parses an optional time query parameter. A missing or
// empty value returns the zero time.
func parseTimeParam(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, nil
	}
	for _, layout := range queryTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid %s value %q, expected YYYY-MM-DD or RFC 3339", name, raw)
}

// parseRange parses the optional from/to pair shared by most endpoints.
func parseRange(r *http.Request) (from, to time.Time, err *apierrors.APIError) {
	f, perr := parseTimeParam(r, "from")
	if perr != nil {
		return time.Time{}, time.Time{}, apierrors.ErrValidation("from", perr.Error())
	}
	t, perr := parseTimeParam(r, "to")
	if perr != nil {
		return time.Time{}, time.Time{}, apierrors.ErrValidation("to", perr.Error())
	}
	return f, t, nil
}

// parseLimitParam parses an optional positive integer limit.
func parseLimitParam(r *http.Request, fallback int) (int, *apierrors.APIError) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, apierrors.ErrValidation("limit", fmt.Sprintf("invalid limit value %q, expected a positive integer", raw))
	}
	return limit, nil
}
