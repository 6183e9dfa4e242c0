package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/userhub/auth-api/internal/api/metrics"
	"github.com/userhub/auth-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// categories maps each domain error category to its status code and metric label.
var categories = []struct {
	err   error
	code  int
	label string
}{
	{domain.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
	{domain.ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated"},
	{domain.ErrAccessDenied, http.StatusForbidden, "access_denied"},
	{domain.ErrNotFound, http.StatusNotFound, "not_found"},
	{domain.ErrConflict, http.StatusConflict, "conflict"},
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps categorized domain errors to their HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, label, msg := resolveError(err, log, c)
		metrics.ErrorsTotal.WithLabelValues(label).Inc()

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string, string) {
	// Echo's own errors (bind failures, validation, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, labelForStatus(he.Code), fmt.Sprintf("%v", he.Message)
	}

	for _, cat := range categories {
		if errors.Is(err, cat.err) {
			return cat.code, cat.label, err.Error()
		}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal", "internal server error"
}

func labelForStatus(code int) string {
	for _, cat := range categories {
		if cat.code == code {
			return cat.label
		}
	}
	if code >= http.StatusInternalServerError {
		return "internal"
	}
	return "invalid_input"
}
