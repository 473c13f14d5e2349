// Package sqlstore implements storage.Store on database/sql through sqlx.
// SQLite (modernc.org/sqlite, no CGO) is the default backend; PostgreSQL is
// supported through lib/pq.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mmynk/homebase/internal/storage"
)

// Supported driver names.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

func init() {
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// Store implements storage.Store on a relational database.
type Store struct {
	db     *sqlx.DB
	driver string
}

// Open connects to the database described by driver and dsn and runs migrations.
// For SQLite the parent directory of the database file is created if needed.
func Open(driver, dsn string) (*Store, error) {
	switch driver {
	case DriverSQLite:
		if err := ensureDir(dsn); err != nil {
			return nil, err
		}
		dsn = withSQLitePragmas(dsn)
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if driver == DriverSQLite {
		// One writer at a time; also keeps ":memory:" databases on a single connection.
		db.SetMaxOpenConns(1)
	}

	s, err := New(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open connection and runs migrations.
func New(db *sqlx.DB) (*Store, error) {
	s := &Store{db: db, driver: db.DriverName()}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return s, nil
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) rebind(query string) string {
	return s.db.Rebind(query)
}

// now returns the timestamp stored for created_at/updated_at. Microsecond
// precision keeps values identical after a PostgreSQL round trip.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func ensureDir(dsn string) error {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || path == ":memory:" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	return nil
}

// withSQLitePragmas enables foreign keys (needed for ON DELETE CASCADE) and a
// busy timeout on every pooled connection.
func withSQLitePragmas(dsn string) string {
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure from
// either supported driver.
func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

// rowsAffectedOrNotFound converts a zero-row update or delete into storage.ErrNotFound.
func rowsAffectedOrNotFound(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows for %s: %w", what, err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}
