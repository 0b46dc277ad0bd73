package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/redsql/internal/config"
	"github.com/roach88/redsql/internal/store"
)

// newFormatter builds the formatter for one command invocation.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
		TraceID:   NewTraceID(),
	}
}

// loadConfig reads --config (or the defaults) and applies the flag
// overrides on top.
func loadConfig(opts *RootOptions) (config.Config, error) {
	cfg := config.Default()
	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	if opts.Database != "" {
		cfg.SQL.Name = opts.Database
		cfg.SQL.Host = ""
	}
	if opts.ReadOnly {
		cfg.ReadOnly = true
	}
	if opts.Pretty {
		cfg.FlowFilePretty = true
	}

	if err := config.Validate(cfg); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// openStore loads the configuration and opens the store it describes.
// Failures are reported through formatter and returned as command errors.
func openStore(ctx context.Context, opts *RootOptions, formatter *OutputFormatter) (*store.Store, config.Config, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, config.Config{}, formatter.fail(ExitCommandError, CodeConfig, "invalid configuration", err)
	}

	logger := slog.Default().With("trace_id", formatter.TraceID)
	logger.Debug("opening database", "sql", cfg.SQL)

	st, err := store.Open(ctx, cfg, store.WithLogger(logger))
	if err != nil {
		return nil, config.Config{}, formatter.fail(ExitCommandError, CodeDatabase, "failed to open database", err)
	}
	return st, cfg, nil
}

func closeStore(st *store.Store) {
	if err := st.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}

// commandContext returns the command's context, or a background context
// when the command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// describeDatabase renders the configured backend for humans.
func describeDatabase(cfg config.Config) string {
	return fmt.Sprintf("%s (driver %s)", cfg.SQL.DSN(), cfg.SQL.Driver)
}
