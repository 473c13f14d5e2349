package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mmynk/homebase/internal/models"
	"github.com/mmynk/homebase/internal/storage"
)

// CreateShortURL inserts a short URL. A taken code yields storage.ErrDuplicateCode.
func (s *Store) CreateShortURL(ctx context.Context, u *models.ShortURL) error {
	u.CreatedAt = now()

	query := s.rebind(`
		INSERT INTO short_urls (original_url, short_code, created_by, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`)

	err := s.db.QueryRowxContext(ctx, query,
		u.OriginalURL, u.ShortCode, u.CreatedBy, u.CreatedAt,
	).Scan(&u.ID)
	if isUniqueViolation(err) {
		return storage.ErrDuplicateCode
	}
	if err != nil {
		return fmt.Errorf("failed to create short url: %w", err)
	}

	return nil
}

// ListShortURLs returns every short URL created by ownerID ordered by ID.
func (s *Store) ListShortURLs(ctx context.Context, ownerID int64) ([]models.ShortURL, error) {
	query := s.rebind(`
		SELECT id, original_url, short_code, created_by, created_at
		FROM short_urls
		WHERE created_by = ?
		ORDER BY id
	`)

	urls := []models.ShortURL{}
	if err := s.db.SelectContext(ctx, &urls, query, ownerID); err != nil {
		return nil, fmt.Errorf("failed to list short urls: %w", err)
	}

	return urls, nil
}

// ShortCodeExists reports whether any user already owns code.
func (s *Store) ShortCodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		s.rebind(`SELECT EXISTS (SELECT 1 FROM short_urls WHERE short_code = ?)`), code)
	if err != nil {
		return false, fmt.Errorf("failed to check short code: %w", err)
	}
	return exists, nil
}

// GetShortURLByCode looks up a short URL by code regardless of owner.
func (s *Store) GetShortURLByCode(ctx context.Context, code string) (*models.ShortURL, error) {
	query := s.rebind(`
		SELECT id, original_url, short_code, created_by, created_at
		FROM short_urls
		WHERE short_code = ?
	`)

	var u models.ShortURL
	err := s.db.GetContext(ctx, &u, query, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get short url: %w", err)
	}

	return &u, nil
}

// DeleteShortURL removes the short URL with id owned by ownerID.
func (s *Store) DeleteShortURL(ctx context.Context, ownerID, id int64) error {
	res, err := s.db.ExecContext(ctx,
		s.rebind(`DELETE FROM short_urls WHERE id = ? AND created_by = ?`),
		id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete short url: %w", err)
	}
	return rowsAffectedOrNotFound(res, "short url")
}
