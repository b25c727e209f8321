package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/mind-engage/examhall/internal/apperr"
	"github.com/mind-engage/examhall/internal/logger"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}

// errorWriter maps the apperr kinds to status codes. Anything outside the
// taxonomy is logged and reported as a bare 500.
func errorWriter(log *logger.Logger) func(w http.ResponseWriter, r *http.Request, err error) {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		msg, known := apperr.Message(err)
		if !known {
			log.Error("request failed", "method", r.Method, "path", r.URL.Path,
				"request_id", middleware.GetReqID(r.Context()), "error", err)
			writeDetail(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		writeDetail(w, statusFor(err), msg)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// decodeJSON reads a single JSON object from the request body. An empty body
// decodes to the zero value.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return apperr.Validation("invalid JSON body")
	}
	return nil
}
