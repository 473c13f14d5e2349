package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mmynk/homebase/internal/apperr"
	"github.com/mmynk/homebase/internal/metrics"
	"github.com/mmynk/homebase/internal/models"
	"github.com/mmynk/homebase/internal/shortcode"
	"github.com/mmynk/homebase/internal/storage"
	"github.com/mmynk/homebase/internal/validate"
)

const shortURLNotFound = "Short url not found"

// maxInsertAttempts bounds retries when a code passes the existence check but
// loses the insert race to a concurrent request.
const maxInsertAttempts = 5

// ShortURLService manages short URLs. Rate limiting happens in middleware.
type ShortURLService struct {
	store     storage.ShortURLStore
	generator *shortcode.Generator
}

// NewShortURLService creates a new ShortURLService with the given storage backend.
func NewShortURLService(store storage.ShortURLStore) *ShortURLService {
	gen := shortcode.NewGenerator(store.ShortCodeExists)
	gen.OnCollision = metrics.ShortCodeCollision
	return &ShortURLService{store: store, generator: gen}
}

// List returns every short URL owned by userID.
func (s *ShortURLService) List(ctx context.Context, userID int64) ([]models.ShortURL, error) {
	urls, err := s.store.ListShortURLs(ctx, userID)
	if err != nil {
		return nil, storeError("ListShortURLs", err, shortURLNotFound)
	}
	return urls, nil
}

// Create validates originalURL, allocates a fresh code and stores the mapping.
func (s *ShortURLService) Create(ctx context.Context, userID int64, originalURL string) (*models.ShortURL, error) {
	if err := validate.OriginalURL(originalURL); err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= maxInsertAttempts; attempt++ {
		code, err := s.generator.Generate(ctx)
		if err != nil {
			slog.Error("Short code generation failed", "error", err)
			return nil, apperr.Internal("Could not allocate a short code", err)
		}

		u := &models.ShortURL{
			OriginalURL: originalURL,
			ShortCode:   code,
			CreatedBy:   userID,
		}
		err = s.store.CreateShortURL(ctx, u)
		if errors.Is(err, storage.ErrDuplicateCode) {
			metrics.ShortCodeCollision()
			slog.Warn("Short code taken at insert, retrying", "attempt", attempt)
			continue
		}
		if err != nil {
			return nil, storeError("CreateShortURL", err, shortURLNotFound)
		}

		slog.Info("Short url created", "short_url_id", u.ID, "code", u.ShortCode, "user_id", userID)
		return u, nil
	}

	return nil, apperr.Internal("Could not allocate a short code", shortcode.ErrExhausted)
}

// Resolve returns the original URL stored under code. Any authenticated user
// may resolve any code.
func (s *ShortURLService) Resolve(ctx context.Context, code string) (string, error) {
	if !shortcode.Valid(code) {
		return "", apperr.NotFound(shortURLNotFound)
	}

	u, err := s.store.GetShortURLByCode(ctx, code)
	if err != nil {
		return "", storeError("GetShortURLByCode", err, shortURLNotFound)
	}
	return u.OriginalURL, nil
}

// Delete removes a short URL owned by userID.
func (s *ShortURLService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.store.DeleteShortURL(ctx, userID, id); err != nil {
		return storeError("DeleteShortURL", err, shortURLNotFound)
	}

	slog.Info("Short url deleted", "short_url_id", id, "user_id", userID)
	return nil
}
