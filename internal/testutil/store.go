package testutil

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/roach88/redsql/internal/config"
	"github.com/roach88/redsql/internal/store"
)

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewConfig returns the default configuration pointed at a fresh database
// file under t.TempDir().
func NewConfig(t testing.TB) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.SQL.Name = filepath.Join(t.TempDir(), "test.db")
	return cfg
}

// NewStore opens a store on a fresh database, applying mutate to the
// configuration first. The store is closed when the test ends.
func NewStore(t testing.TB, mutate ...func(*config.Config)) *store.Store {
	t.Helper()
	cfg := NewConfig(t)
	for _, m := range mutate {
		m(&cfg)
	}
	return OpenStore(t, cfg)
}

// OpenStore opens a store for cfg and closes it when the test ends.
func OpenStore(t testing.TB, cfg config.Config) *store.Store {
	t.Helper()
	s, err := store.Open(context.Background(), cfg, store.WithLogger(DiscardLogger()))
	if err != nil {
		t.Fatalf("store.Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}
