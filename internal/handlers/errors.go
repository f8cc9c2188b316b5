package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/crucial707/inventory/internal/apperr"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// ErrMessageInternal is the generic message for 500 responses. Do not expose internal details to clients.
const ErrMessageInternal = "internal server error"

// JSONError sends a JSON error response with a single "error" field.
func JSONError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}

// JSONValidationError sends a JSON error response with "error" and optional "fields" for field-level details.
// status is typically http.StatusBadRequest (400).
func JSONValidationError(w http.ResponseWriter, message string, fields map[string]string, status int) {
	out := map[string]interface{}{"error": message}
	if len(fields) > 0 {
		out["fields"] = fields
	}
	writeJSON(w, status, out)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps an application error to its HTTP status. Unexpected
// errors are logged with the request id and answered with a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	e, ok := apperr.As(err)
	if !ok {
		e = apperr.Internal("unexpected", err)
	}
	switch e.Kind {
	case apperr.KindValidation:
		JSONValidationError(w, e.Message, e.Fields, http.StatusBadRequest)
	case apperr.KindNotFound:
		JSONError(w, e.Message, http.StatusNotFound)
	case apperr.KindDuplicateKey:
		JSONError(w, e.Message, http.StatusConflict)
	case apperr.KindUnauthorized:
		JSONError(w, e.Message, http.StatusUnauthorized)
	case apperr.KindForbidden:
		JSONError(w, e.Message, http.StatusForbidden)
	default:
		logger.Error("request failed",
			zap.String("request_id", chimw.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
	}
}

// decodeJSON reads a single JSON object into dst, rejecting unknown fields.
// It writes the error response itself and reports whether decoding succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	err := dec.Decode(dst)
	if err == nil {
		if dec.More() {
			JSONError(w, "request body must contain a single JSON object", http.StatusBadRequest)
			return false
		}
		return true
	}

	var maxErr *http.MaxBytesError
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &maxErr):
		JSONError(w, fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit), http.StatusRequestEntityTooLarge)
	case errors.Is(err, io.EOF):
		JSONError(w, "request body is empty", http.StatusBadRequest)
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		JSONError(w, "invalid JSON", http.StatusBadRequest)
	case errors.As(err, &typeErr):
		JSONValidationError(w, "invalid JSON", map[string]string{typeErr.Field: "wrong type"}, http.StatusBadRequest)
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
		JSONValidationError(w, "invalid JSON", map[string]string{field: "unknown field"}, http.StatusBadRequest)
	default:
		JSONError(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
	}
	return false
}
