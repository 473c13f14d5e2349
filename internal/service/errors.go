package service

import (
	"errors"
	"log/slog"

	"github.com/mmynk/homebase/internal/apperr"
	"github.com/mmynk/homebase/internal/storage"
)

// storeError converts a storage failure into an API error. ErrNotFound
// becomes a NotFound with notFoundMsg; anything else is logged and hidden
// behind a generic internal error.
func storeError(op string, err error, notFoundMsg string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.NotFound(notFoundMsg)
	}
	slog.Error(op+" failed", "error", err)
	return apperr.Internal("Internal server error", err)
}
