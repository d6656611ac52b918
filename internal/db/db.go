// Package db provides durable storage for candidates, jobs, matches, outreach
// items and agent messages. SQLite is the default local backend; PostgreSQL is
// supported through the pgx stdlib driver.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Driver selects the SQL backend.
type Driver string

const (
	// DriverSQLite stores everything in a local SQLite file.
	DriverSQLite Driver = "sqlite"
	// DriverPostgres connects to a PostgreSQL server via pgx.
	DriverPostgres Driver = "postgres"
)

// DefaultPath is the SQLite file used when no DSN is configured.
const DefaultPath = "data/recruiter.db"

var (
	// ErrNotFound is returned by updates that target an unknown id.
	ErrNotFound = errors.New("record not found")
	// ErrSchemaInit wraps any failure while creating or migrating the schema.
	ErrSchemaInit = errors.New("schema initialization failed")
)

// Options configures Open.
type Options struct {
	Driver Driver
	// DSN is a file path for SQLite or a connection URL for PostgreSQL.
	DSN string
	// LockPath guards schema initialization across processes.
	// Defaults to "<dsn>.lock" for SQLite and a temp-dir file for PostgreSQL.
	LockPath string
	// Clock stamps created_at and updated_at. Defaults to UTC now at
	// microsecond precision.
	Clock func() time.Time
}

// DB wraps a sqlx connection pool
type DB struct {
	db       *sqlx.DB
	driver   Driver
	lockPath string
	now      func() time.Time
}

// DetectDriver picks a driver from a DSN: postgres:// URLs use PostgreSQL,
// anything else is treated as a SQLite path.
func DetectDriver(dsn string) Driver {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return DriverPostgres
	}
	return DriverSQLite
}

// Open establishes a connection pool. It does not touch the schema; call Init.
func Open(ctx context.Context, opts Options) (*DB, error) {
	if opts.Driver == "" {
		opts.Driver = DetectDriver(opts.DSN)
	}

	var (
		conn *sqlx.DB
		err  error
	)

	switch opts.Driver {
	case DriverSQLite:
		path := opts.DSN
		if path == "" {
			path = DefaultPath
		}
		if dir := filepath.Dir(path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
			}
		}
		dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", path)
		conn, err = sqlx.Open("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		// sqlite wants a single writer
		conn.SetMaxOpenConns(1)
		if opts.LockPath == "" {
			opts.LockPath = path + ".lock"
		}
	case DriverPostgres:
		conn, err = sqlx.Open("pgx", opts.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres database: %w", err)
		}
		if opts.LockPath == "" {
			opts.LockPath = filepath.Join(os.TempDir(), "ai-recruiter-schema.lock")
		}
	default:
		return nil, fmt.Errorf("unsupported driver %q", opts.Driver)
	}

	conn.SetConnMaxLifetime(5 * time.Minute)

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	now := opts.Clock
	if now == nil {
		now = func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) }
	}
	return &DB{
		db:       conn,
		driver:   opts.Driver,
		lockPath: opts.LockPath,
		now:      now,
	}, nil
}

// Close closes the connection pool
func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

// Driver reports the active backend.
func (d *DB) Driver() Driver {
	return d.driver
}

// Init creates the schema if absent and applies pending migrations. It is safe
// to call on every process start, including from several processes at once:
// the work runs under an exclusive file lock and each migration commits
// atomically together with its version row.
func (d *DB) Init(ctx context.Context) error {
	lock := flock.New(d.lockPath)
	locked, err := lock.TryLockContext(ctx, 100*time.Millisecond)
	if err != nil {
		return fmt.Errorf("%w: failed to acquire schema lock %s: %w", ErrSchemaInit, d.lockPath, err)
	}
	if !locked {
		return fmt.Errorf("%w: schema lock %s not acquired", ErrSchemaInit, d.lockPath)
	}
	defer func() { _ = lock.Unlock() }()

	if _, err := d.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("%w: failed to create schema_version: %w", ErrSchemaInit, err)
	}

	var current int
	if err := d.db.GetContext(ctx, &current, `SELECT COALESCE(MAX(version), 0) FROM schema_version`); err != nil {
		return fmt.Errorf("%w: failed to read schema version: %w", ErrSchemaInit, err)
	}

	for _, m := range migrationsFor(d.driver) {
		if m.version <= current {
			continue
		}
		if err := d.applyMigration(ctx, m); err != nil {
			return fmt.Errorf("%w: %w", ErrSchemaInit, err)
		}
	}
	return nil
}

// SchemaVersion returns the highest applied migration version.
func (d *DB) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	if err := d.db.GetContext(ctx, &v, `SELECT COALESCE(MAX(version), 0) FROM schema_version`); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return v, nil
}

func (d *DB) applyMigration(ctx context.Context, m migration) error {
	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration v%d: %w", m.version, err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range m.statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply migration v%d: %w", m.version, err)
		}
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(`INSERT INTO schema_version (version) VALUES (?)`), m.version); err != nil {
		return fmt.Errorf("failed to record migration v%d: %w", m.version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration v%d: %w", m.version, err)
	}
	return nil
}

// q rebinds a query written with ? placeholders for the active dialect.
func (d *DB) q(query string) string {
	return d.db.Rebind(query)
}

// NewID returns a short opaque identifier (first 8 hex chars of a UUIDv4).
func NewID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}

// ClampScore bounds a score to [0,1].
func ClampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// insertWithID runs an insert whose first argument is a freshly generated id.
// A primary-key collision is retried once with a new id.
func (d *DB) insertWithID(ctx context.Context, query string, args ...any) (string, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		id := NewID()
		_, err := d.db.ExecContext(ctx, d.q(query), append([]any{id}, args...)...)
		if err == nil {
			return id, nil
		}
		lastErr = err
		if !isUniqueViolation(err) {
			break
		}
	}
	return "", lastErr
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate key")
}

// setList accumulates column assignments for a partial update.
type setList struct {
	cols []string
	args []any
}

func (s *setList) add(col string, value any) {
	s.cols = append(s.cols, col+" = ?")
	s.args = append(s.args, value)
}

func (s *setList) empty() bool {
	return len(s.cols) == 0
}

func (s *setList) clause() string {
	return strings.Join(s.cols, ", ")
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
