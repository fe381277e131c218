package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/deciofranchini-oss/objetivo/internal/core"
	applog "github.com/deciofranchini-oss/objetivo/internal/log"
	"github.com/deciofranchini-oss/objetivo/internal/storage"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", "error", err)
	}
}

// writeError maps domain errors onto HTTP statuses: validation
// failures are 400, missing rows 404, protected entries 409, anything
// else 500 with the detail kept out of the response body.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case isValidationError(err):
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, storage.ErrNotFound):
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, core.ErrSystemEntry):
		s.writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		fields := applog.NewFields().WithError(err)
		fields[applog.FieldMethod] = r.Method
		fields[applog.FieldPath] = r.URL.Path
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed", fields.ToSlice()...)
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func isValidationError(err error) bool {
	for _, sentinel := range []error{
		core.ErrInvalidType,
		core.ErrInvalidDate,
		core.ErrInvalidAmount,
		core.ErrEmptyCategory,
		core.ErrEmptyParty,
		core.ErrEmptyKey,
		core.ErrEmptyLabel,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
