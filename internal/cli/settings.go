package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/redsql/internal/ir"
)

// SettingValue is the JSON payload of the get command.
type SettingValue struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// SaveResult is the JSON payload of the save command.
type SaveResult struct {
	Name    string `json:"name"`
	Saved   bool   `json:"saved"`
	Version int64  `json:"version,omitempty"`
}

// HistoryEntry is one retained version in the history command output.
type HistoryEntry struct {
	Version int64 `json:"version"`
	Value   any   `json:"value"`
}

// NameEntry is one row of the names command output.
type NameEntry struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <name>",
		Short: "Print the newest value of a logical name",
		Long: `Print the newest saved value of a logical name. Names with nothing saved
print their default: [] for flows, {} for everything else.

Names: flows, credentials, settings, sessions

Example:
  redsql get flows --db ./red.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(rootOpts, args[0], cmd)
		},
	}
}

func runGet(opts *RootOptions, nameArg string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	name, err := ir.ParseName(nameArg)
	if err != nil {
		return formatter.fail(ExitCommandError, CodeInvalidInput, "invalid name", err)
	}

	st, _, err := openStore(commandContext(cmd), opts, formatter)
	if err != nil {
		return err
	}
	defer closeStore(st)

	value, err := st.GetOrDefault(commandContext(cmd), name)
	if err != nil {
		return formatter.fail(ExitFailure, CodeStorage, "get failed", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(SettingValue{Name: name.String(), Value: value})
	}
	return writeIndentedJSON(formatter.Writer, value)
}

// NewSaveCommand creates the save command.
func NewSaveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "save <name> [file|-]",
		Short: "Save a JSON document as the newest value of a logical name",
		Long: `Read a JSON document from a file (or stdin when the file is "-" or
omitted) and append it as the newest version of a logical name.

Flows must be a JSON array; credentials, settings and sessions a JSON object.
A read-only store accepts the command but writes nothing.

Example:
  redsql save flows ./flows.json
  cat creds.json | redsql save credentials -`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			source := "-"
			if len(args) == 2 {
				source = args[1]
			}
			return runSave(rootOpts, args[0], source, cmd)
		},
	}
}

func runSave(opts *RootOptions, nameArg, source string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	ctx := commandContext(cmd)

	name, err := ir.ParseName(nameArg)
	if err != nil {
		return formatter.fail(ExitCommandError, CodeInvalidInput, "invalid name", err)
	}

	data, err := readSource(cmd, source)
	if err != nil {
		return formatter.fail(ExitCommandError, CodeInvalidInput, "failed to read input", err)
	}
	value, err := decodeDocument(data)
	if err != nil {
		return formatter.fail(ExitCommandError, CodeInvalidInput, "invalid JSON input", err)
	}
	if err := checkShape(name, value); err != nil {
		return formatter.fail(ExitCommandError, CodeInvalidInput, "invalid value", err)
	}

	st, _, err := openStore(ctx, opts, formatter)
	if err != nil {
		return err
	}
	defer closeStore(st)

	version, err := st.SaveVersion(ctx, name, value)
	if err != nil {
		return formatter.fail(ExitFailure, CodeStorage, "save failed", err)
	}

	result := SaveResult{Name: name.String(), Saved: !st.ReadOnly(), Version: version}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	if !result.Saved {
		return formatter.Success(fmt.Sprintf("Read-only store, %s not saved", result.Name))
	}
	return formatter.Success(fmt.Sprintf("Saved %s version %d", result.Name, result.Version))
}

// readSource reads a file, or the command's stdin for "-".
func readSource(cmd *cobra.Command, source string) ([]byte, error) {
	if source == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(source)
}

// decodeDocument parses exactly one JSON document. Numbers keep their
// literal text so large integers survive the save unchanged.
func decodeDocument(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected data after the JSON document")
	}
	return v, nil
}

// checkShape enforces the value kind each logical name stores.
func checkShape(name ir.Name, value any) error {
	switch name {
	case ir.NameFlows:
		if _, ok := value.([]any); !ok {
			return fmt.Errorf("%s must be a JSON array", name)
		}
	case ir.NameLibraryEntry:
		return fmt.Errorf("%s is managed with the lib commands", name)
	default:
		if _, ok := value.(map[string]any); !ok {
			return fmt.Errorf("%s must be a JSON object", name)
		}
	}
	return nil
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "history <name>",
		Short: "List every retained version of a logical name",
		Long: `List every retained version of a logical name, oldest first.

Example:
  redsql history settings --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(rootOpts, args[0], cmd)
		},
	}
}

func runHistory(opts *RootOptions, nameArg string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	ctx := commandContext(cmd)

	name, err := ir.ParseName(nameArg)
	if err != nil {
		return formatter.fail(ExitCommandError, CodeInvalidInput, "invalid name", err)
	}

	st, _, err := openStore(ctx, opts, formatter)
	if err != nil {
		return err
	}
	defer closeStore(st)

	records, err := st.History(ctx, name)
	if err != nil {
		return formatter.fail(ExitFailure, CodeStorage, "history failed", err)
	}

	entries := make([]HistoryEntry, 0, len(records))
	for _, rec := range records {
		var v any
		if err := json.Unmarshal([]byte(rec.Value), &v); err != nil {
			return formatter.fail(ExitFailure, CodeStorage, "history failed",
				fmt.Errorf("decode version %d: %w", rec.Version, err))
		}
		entries = append(entries, HistoryEntry{Version: rec.Version, Value: v})
	}

	if formatter.Format == "json" {
		return formatter.Success(entries)
	}

	if len(entries) == 0 {
		fmt.Fprintf(formatter.Writer, "No versions saved for %s.\n", name)
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(formatter.Writer, "v%d  %s\n", e.Version, compactJSON(e.Value))
	}
	return nil
}

// NewNamesCommand creates the names command.
func NewNamesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "names",
		Short:         "Print the logical name enumeration",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNames(rootOpts, cmd)
		},
	}
}

func runNames(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	names := make([]NameEntry, 0)
	for s, v := range ir.NameMap() {
		names = append(names, NameEntry{Name: s, Value: v})
	}
	sort.Slice(names, func(i, j int) bool { return names[i].Value < names[j].Value })

	if formatter.Format == "json" {
		return formatter.Success(names)
	}
	for _, n := range names {
		fmt.Fprintf(formatter.Writer, "%d  %s\n", n.Value, n.Name)
	}
	return nil
}
