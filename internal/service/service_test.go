package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mmynk/homebase/internal/apperr"
	"github.com/mmynk/homebase/internal/models"
	"github.com/mmynk/homebase/internal/storage/sqlstore"
)

// newTestStore opens a fresh SQLite store in a temp directory.
func newTestStore(t *testing.T) *sqlstore.Store {
	t.Helper()

	store, err := sqlstore.Open(sqlstore.DriverSQLite, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// newTestUser inserts a user with an unusable password hash.
func newTestUser(t *testing.T, store *sqlstore.Store, email string) *models.User {
	t.Helper()

	user := models.NewUser(email, "", "", "x")
	require.NoError(t, store.CreateUser(context.Background(), user))
	return user
}

// requireCode asserts that err is an *apperr.Error with the given code.
func requireCode(t *testing.T, err error, code apperr.Code) {
	t.Helper()

	require.Error(t, err)
	e, ok := apperr.As(err)
	require.True(t, ok, "expected *apperr.Error, got %T: %v", err, err)
	require.Equal(t, code, e.Code, "message: %s", e.Message)
}
