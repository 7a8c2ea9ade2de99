// Package sqlstore implements store.Store on database/sql, with SQLite
// (modernc.org/sqlite) for single-node installs and Postgres (pgx) for
// shared deployments. Queries are written once with ? placeholders and
// rebound per dialect.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
	_ "modernc.org/sqlite"             // registers "sqlite"

	"github.com/recipebox/recipe-api/internal/store"
)

// DBTX is the subset of database/sql shared by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Options configures Open.
type Options struct {
	Driver       string // "sqlite" or "postgres"
	DSN          string // file path for sqlite, URL for postgres
	MaxOpenConns int
	Logger       *slog.Logger
}

// Store is the database/sql implementation of store.Store.
type Store struct {
	*queries

	db      *sql.DB
	dialect dialect
	logger  *slog.Logger
}

var _ store.Store = (*Store)(nil)

// Open connects to the database and verifies the connection. It does not
// run migrations; call Migrate for that.
func Open(ctx context.Context, opts Options) (*Store, error) {
	d, err := dialectFor(opts.Driver)
	if err != nil {
		return nil, err
	}

	dsn := opts.DSN
	if d.name == sqliteDialect.name {
		if dsn, err = sqliteDSN(dsn); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open(d.driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.name, err)
	}

	maxOpen := opts.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 10
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(max(maxOpen/2, 1))
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", d.name, err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Database opened", "driver", d.name)

	return &Store{
		queries: &queries{db: db, d: d},
		db:      db,
		dialect: d,
		logger:  logger,
	}, nil
}

// sqliteDSN turns a file path into a modernc DSN with foreign keys on, WAL,
// a busy timeout and BEGIN IMMEDIATE transactions so concurrent writers
// queue rather than fail. A DSN already starting with "file:" is used as is.
func sqliteDSN(path string) (string, error) {
	if strings.HasPrefix(path, "file:") {
		return path, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", fmt.Errorf("create database dir: %w", err)
	}
	return "file:" + path +
		"?_pragma=foreign_keys(1)" +
		"&_pragma=busy_timeout(10000)" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_txlock=immediate", nil
}

// Driver returns the dialect name.
func (s *Store) Driver() string {
	return s.dialect.name
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the connection pool.
func (s *Store) Close() error {
	s.logger.Info("Closing database")
	return s.db.Close()
}

// WithTx runs fn inside one transaction. It commits when fn returns nil and
// rolls back on error or panic; a panic is re-raised after rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if err = tx.Commit(); err != nil {
			err = fmt.Errorf("commit: %w", err)
		}
	}()

	return fn(&queries{db: tx, d: s.dialect})
}

// queries holds every statement. It runs against the pool or a transaction.
type queries struct {
	db DBTX
	d  dialect
}

func (q *queries) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return q.db.ExecContext(ctx, q.d.rebind(query), args...)
}

func (q *queries) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return q.db.QueryContext(ctx, q.d.rebind(query), args...)
}

func (q *queries) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return q.db.QueryRowContext(ctx, q.d.rebind(query), args...)
}

// now is the timestamp written for created_at and updated_at.
func now() time.Time {
	return time.Now().UTC()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// expectOne maps "no row affected" to ErrNotFound.
func expectOne(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound.WithMessage(what + " not found")
	}
	return nil
}
