package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/homebase/internal/apperr"
	"github.com/mmynk/homebase/internal/models"
	"github.com/mmynk/homebase/internal/shortcode"
	"github.com/mmynk/homebase/internal/storage"
)

func TestShortURLService_CreateResolveDelete(t *testing.T) {
	store := newTestStore(t)
	owner := newTestUser(t, store, "owner@example.com")
	other := newTestUser(t, store, "other@example.com")
	svc := NewShortURLService(store)
	ctx := context.Background()

	u, err := svc.Create(ctx, owner.ID, "https://example.com/path?x=1")
	require.NoError(t, err)
	assert.True(t, shortcode.Valid(u.ShortCode), "code %q", u.ShortCode)
	assert.Equal(t, owner.ID, u.CreatedBy)

	// Codes resolve for any authenticated user.
	original, err := svc.Resolve(ctx, u.ShortCode)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/path?x=1", original)

	_, err = svc.Resolve(ctx, "ZZZZZZ")
	requireCode(t, err, apperr.CodeNotFound)
	_, err = svc.Resolve(ctx, "12")
	requireCode(t, err, apperr.CodeNotFound)

	requireCode(t, svc.Delete(ctx, other.ID, u.ID), apperr.CodeNotFound)
	require.NoError(t, svc.Delete(ctx, owner.ID, u.ID))
	requireCode(t, svc.Delete(ctx, owner.ID, u.ID), apperr.CodeNotFound)
}

func TestShortURLService_InvalidURL(t *testing.T) {
	store := newTestStore(t)
	owner := newTestUser(t, store, "owner@example.com")
	svc := NewShortURLService(store)
	ctx := context.Background()

	_, err := svc.Create(ctx, owner.ID, "javascript:alert(1)")
	requireCode(t, err, apperr.CodeFormat)

	_, err = svc.Create(ctx, owner.ID, "")
	requireCode(t, err, apperr.CodeValidation)

	urls, err := svc.List(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, urls)
}

func TestShortURLService_UniqueCodes(t *testing.T) {
	store := newTestStore(t)
	owner := newTestUser(t, store, "owner@example.com")
	svc := NewShortURLService(store)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		u, err := svc.Create(ctx, owner.ID, "http://example.com")
		require.NoError(t, err)
		require.Len(t, u.ShortCode, models.ShortCodeLen)
		require.False(t, seen[u.ShortCode], "duplicate code %q", u.ShortCode)
		seen[u.ShortCode] = true
	}
}

// racyStore reports every code as free but rejects the first inserts as
// duplicates, as if a concurrent request had won.
type racyStore struct {
	storage.ShortURLStore
	rejections int
	inserts    int
}

func (r *racyStore) ShortCodeExists(context.Context, string) (bool, error) {
	return false, nil
}

func (r *racyStore) CreateShortURL(ctx context.Context, u *models.ShortURL) error {
	r.inserts++
	if r.inserts <= r.rejections {
		return storage.ErrDuplicateCode
	}
	return r.ShortURLStore.CreateShortURL(ctx, u)
}

func TestShortURLService_RetriesOnInsertConflict(t *testing.T) {
	store := newTestStore(t)
	owner := newTestUser(t, store, "owner@example.com")
	ctx := context.Background()

	racy := &racyStore{ShortURLStore: store, rejections: 2}
	u, err := NewShortURLService(racy).Create(ctx, owner.ID, "http://example.com")
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.Equal(t, 3, racy.inserts)

	always := &racyStore{ShortURLStore: store, rejections: maxInsertAttempts}
	_, err = NewShortURLService(always).Create(ctx, owner.ID, "http://example.com")
	requireCode(t, err, apperr.CodeInternal)
	assert.Equal(t, maxInsertAttempts, always.inserts)
}
