package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/redsql/internal/harness"
)

// ScenarioResult is the JSON payload of the scenario command.
type ScenarioResult struct {
	Name   string               `json:"name"`
	Pass   bool                 `json:"pass"`
	Trace  []harness.TraceEvent `json:"trace"`
	Errors []string             `json:"errors,omitempty"`
}

// NewScenarioCommand creates the scenario command.
func NewScenarioCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "scenario <file.yaml>",
		Short: "Run a scenario file against a fresh in-memory store",
		Long: `Run a scenario file and print the trace of its steps. The scenario runs
on the configured driver against an in-memory database, so the configured
database is never touched.

Exit codes:
  0 - All expectations matched
  1 - One or more expectations failed
  2 - Command error (unreadable or invalid scenario, etc.)

Example:
  redsql scenario ./scenarios/library_tree.yaml
  redsql scenario ./scenarios/read_only.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarioFile(rootOpts, args[0], cmd)
		},
	}
}

func runScenarioFile(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	cfg, err := loadConfig(opts)
	if err != nil {
		return formatter.fail(ExitCommandError, CodeConfig, "invalid configuration", err)
	}

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return formatter.fail(ExitCommandError, CodeScenarioLoad, "failed to load scenario", err)
	}
	formatter.VerboseLog("Running scenario %s (%d steps)", scenario.Name, len(scenario.Steps))

	result, err := harness.RunWithConfig(commandContext(cmd), cfg, scenario)
	if err != nil {
		return formatter.fail(ExitCommandError, CodeScenarioLoad, "failed to run scenario", err)
	}

	if formatter.Format == "json" {
		if err := formatter.Success(ScenarioResult{
			Name:   scenario.Name,
			Pass:   result.Pass,
			Trace:  result.Trace,
			Errors: result.Errors,
		}); err != nil {
			return err
		}
	} else {
		writeScenarioText(formatter, scenario.Name, result)
	}

	if !result.Pass {
		return NewExitError(ExitFailure, fmt.Sprintf("%s: scenario %s failed", CodeScenarioFailed, scenario.Name))
	}
	return nil
}

func writeScenarioText(formatter *OutputFormatter, name string, result *harness.Result) {
	w := formatter.Writer
	for _, ev := range result.Trace {
		target := ev.Name
		if target == "" {
			target = strings.TrimSpace(ev.Type + " " + ev.Path)
		}
		line := fmt.Sprintf("[%d] %s %s", ev.Seq, ev.Op, target)
		switch {
		case ev.Error != "":
			line += " ! " + ev.Error
		case ev.Result != nil:
			line += " -> " + compactJSON(ev.Result)
		}
		fmt.Fprintln(w, line)
	}

	if result.Pass {
		fmt.Fprintf(w, "✓ %s passed\n", name)
		return
	}
	fmt.Fprintf(w, "✗ %s failed\n", name)
	for _, e := range result.Errors {
		fmt.Fprintf(w, "  %s\n", e)
	}
}
