package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// InitResult is the JSON payload of the init command.
type InitResult struct {
	Driver   string `json:"driver"`
	Database string `json:"database"`
	ReadOnly bool   `json:"readOnly"`
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the database tables if absent",
		Long: `Open the configured database, verify the connection and create the
settings and library tables if they do not exist. Safe to run repeatedly.

Example:
  redsql init --db ./red.db
  redsql init --config ./redsql.yaml --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(rootOpts, cmd)
		},
	}
}

func runInit(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	st, cfg, err := openStore(commandContext(cmd), opts, formatter)
	if err != nil {
		return err
	}
	defer closeStore(st)

	if formatter.Format == "json" {
		return formatter.Success(InitResult{
			Driver:   cfg.SQL.Driver,
			Database: cfg.SQL.DSN(),
			ReadOnly: cfg.ReadOnly,
		})
	}
	return formatter.Success(fmt.Sprintf("Database ready: %s", describeDatabase(cfg)))
}
