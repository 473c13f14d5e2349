// Package httpjson writes JSON response bodies, including the error envelope
// shared by handlers and middleware.
package httpjson

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mmynk/homebase/internal/apperr"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error string      `json:"error"`
	Code  apperr.Code `json:"code"`
}

// Write encodes v as JSON with the given status.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// Error writes err using its apperr code and status. Errors outside the
// taxonomy become a generic 500; their text is logged, never returned.
func Error(w http.ResponseWriter, err error) {
	e, ok := apperr.As(err)
	if !ok {
		slog.Error("Unhandled error", "error", err)
		e = apperr.Internal("Internal server error", err)
	}
	if e.Code == apperr.CodeInternal && e.Err != nil {
		slog.Error("Request failed", "error", e.Err)
	}
	Write(w, e.Status(), ErrorBody{Error: e.Message, Code: e.Code})
}
