package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"github.com/roach88/redsql/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// Store provides durable storage for settings and library entries.
// A Store is safe for concurrent use; writes are serialized by the backend.
type Store struct {
	db       *sql.DB
	logger   *slog.Logger
	readOnly bool
	pretty   bool
	library  config.Library
}

// Option customizes a Store.
type Option func(*Store)

// WithLogger sets the logger used for debug output. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Open connects to the backend described by cfg.SQL, verifies the
// connection and creates both tables if they do not exist.
//
// Open is expected to run once per process; no other Store method may be
// called before it returns successfully.
func Open(ctx context.Context, cfg config.Config, opts ...Option) (*Store, error) {
	s := &Store{
		logger:   slog.Default(),
		readOnly: cfg.ReadOnly,
		pretty:   cfg.FlowFilePretty,
		library:  cfg.Clone().Library,
	}
	for _, opt := range opts {
		opt(s)
	}

	db, err := sql.Open(cfg.SQL.Driver, cfg.SQL.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify connection works
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// A single shared connection; the backend orders concurrent writes
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	s.db = db
	s.logger.Debug("store ready", "sql", cfg.SQL, "read_only", s.readOnly, "pretty", s.pretty)
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer using Store methods when available.
func (s *Store) DB() *sql.DB {
	return s.db
}

// ReadOnly reports whether settings writes are suppressed.
func (s *Store) ReadOnly() bool {
	return s.readOnly
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
