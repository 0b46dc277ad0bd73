package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// LibraryGetResult is the JSON payload of the lib get command.
type LibraryGetResult struct {
	Type  string `json:"type"`
	Path  string `json:"path"`
	Kind  string `json:"kind"` // "file" or "listing"
	Value any    `json:"value"`
}

// LibrarySaveOptions holds flags for the lib save command.
type LibrarySaveOptions struct {
	*RootOptions
	Meta     string
	Body     string
	BodyFile string
}

// NewLibCommand creates the lib command group.
func NewLibCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lib",
		Short: "Read and write library entries",
	}

	cmd.AddCommand(newLibGetCommand(rootOpts))
	cmd.AddCommand(newLibSaveCommand(rootOpts))
	cmd.AddCommand(newLibTypesCommand(rootOpts))

	return cmd
}

func newLibGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <type> [path]",
		Short: "Print a library file body or directory listing",
		Long: `Resolve a path within a library type. A saved file prints its body; any
other path prints the listing of its directory. The root is the empty path.

Example:
  redsql lib get functions
  redsql lib get flows examples/hello`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 2 {
				path = args[1]
			}
			return runLibGet(rootOpts, args[0], path, cmd)
		},
	}
}

func runLibGet(opts *RootOptions, entryType, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	ctx := commandContext(cmd)

	st, _, err := openStore(ctx, opts, formatter)
	if err != nil {
		return err
	}
	defer closeStore(st)

	res, err := st.GetLibraryEntry(ctx, entryType, path)
	if err != nil {
		return formatter.fail(ExitFailure, CodeStorage, "library get failed", err)
	}

	if formatter.Format == "json" {
		kind := "listing"
		if res.IsFile {
			kind = "file"
		}
		return formatter.Success(LibraryGetResult{
			Type:  entryType,
			Path:  path,
			Kind:  kind,
			Value: res.Value(),
		})
	}

	w := formatter.Writer
	if res.IsFile {
		fmt.Fprint(w, res.Body)
		if !strings.HasSuffix(res.Body, "\n") {
			fmt.Fprintln(w)
		}
		return nil
	}
	if len(res.Listing) == 0 {
		fmt.Fprintln(w, "(empty)")
		return nil
	}
	for _, e := range res.Listing {
		if e.IsObject() && len(e.Meta) > 0 {
			fmt.Fprintf(w, "%s  %s\n", e.Name, compactJSON(e.Meta))
			continue
		}
		fmt.Fprintln(w, e.Name)
	}
	return nil
}

func newLibSaveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LibrarySaveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "save <type> <path>",
		Short: "Append a library entry",
		Long: `Append a library entry. Without --meta, --body or --body-file the entry is
a bare marker, which makes its path show up in listings.

Example:
  redsql lib save functions util/add.js --meta '{"outputs":1}' --body-file add.js
  redsql lib save flows examples`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLibSave(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Meta, "meta", "", "entry metadata as a JSON object")
	cmd.Flags().StringVar(&opts.Body, "body", "", "entry body text")
	cmd.Flags().StringVar(&opts.BodyFile, "body-file", "", "read the entry body from a file (- for stdin)")
	cmd.MarkFlagsMutuallyExclusive("body", "body-file")

	return cmd
}

func runLibSave(opts *LibrarySaveOptions, entryType, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := commandContext(cmd)

	var meta map[string]any
	if opts.Meta != "" {
		v, err := decodeDocument([]byte(opts.Meta))
		if err != nil {
			return formatter.fail(ExitCommandError, CodeInvalidInput, "invalid --meta JSON", err)
		}
		m, ok := v.(map[string]any)
		if !ok {
			return formatter.fail(ExitCommandError, CodeInvalidInput, "invalid --meta JSON", fmt.Errorf("meta must be a JSON object"))
		}
		meta = m
	}

	var body *string
	switch {
	case opts.BodyFile != "":
		data, err := readSource(cmd, opts.BodyFile)
		if err != nil {
			return formatter.fail(ExitCommandError, CodeInvalidInput, "failed to read body", err)
		}
		text := string(data)
		body = &text
	case cmd.Flags().Changed("body"):
		text := opts.Body
		body = &text
	}

	st, _, err := openStore(ctx, opts.RootOptions, formatter)
	if err != nil {
		return err
	}
	defer closeStore(st)

	if err := st.SaveLibraryEntry(ctx, entryType, path, meta, body); err != nil {
		return formatter.fail(ExitFailure, CodeStorage, "library save failed", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(map[string]any{"type": entryType, "path": path})
	}
	return formatter.Success(fmt.Sprintf("Saved %s entry %q", entryType, path))
}

func newLibTypesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "types",
		Short:         "List library types that have entries",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLibTypes(rootOpts, cmd)
		},
	}
}

func runLibTypes(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	ctx := commandContext(cmd)

	st, _, err := openStore(ctx, opts, formatter)
	if err != nil {
		return err
	}
	defer closeStore(st)

	types, err := st.ListLibraryTypes(ctx)
	if err != nil {
		return formatter.fail(ExitFailure, CodeStorage, "library types failed", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(types)
	}
	if len(types) == 0 {
		fmt.Fprintln(formatter.Writer, "No library entries.")
		return nil
	}
	for _, t := range types {
		fmt.Fprintln(formatter.Writer, t)
	}
	return nil
}
