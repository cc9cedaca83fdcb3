package handler

import (
	"errors"
	"log/slog"
	"net/http"

	mw "github.com/kiranshivaraju/hireflow/internal/api/middleware"
	"github.com/kiranshivaraju/hireflow/internal/api/response"
	"github.com/kiranshivaraju/hireflow/internal/workflow"
)

// writeServiceError maps the workflow error taxonomy onto the HTTP error
// envelope. Unclassified errors are logged and reported as 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, workflow.ErrNoResume):
		response.Error(w, http.StatusNotFound, "NO_RESUME", "Application has no resume", nil)
	case errors.Is(err, workflow.ErrNotFound):
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Resource not found", nil)
	case errors.Is(err, workflow.ErrUnauthorized):
		response.Error(w, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions", nil)
	case errors.Is(err, workflow.ErrInvalidArgument):
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	case errors.Is(err, workflow.ErrConflict):
		response.Error(w, http.StatusConflict, "ALREADY_APPLIED", "You have already applied to this job", nil)
	case errors.Is(err, workflow.ErrDependencyFailure):
		slog.Error("storage dependency failed",
			"error", err,
			"request_id", mw.GetRequestID(r.Context()),
		)
		response.Error(w, http.StatusBadGateway, "STORAGE_UNAVAILABLE", "File storage is not available", nil)
	default:
		slog.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
			"request_id", mw.GetRequestID(r.Context()),
		)
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", nil)
	}
}
