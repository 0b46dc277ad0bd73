package harness

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/roach88/redsql/internal/config"
	"github.com/roach88/redsql/internal/ir"
	"github.com/roach88/redsql/internal/store"
	"github.com/roach88/redsql/internal/testutil"
)

// Harness executes scenario steps against one store.
type Harness struct {
	store  *store.Store
	seq    *testutil.Sequence
	logger *slog.Logger
}

// Run executes scenario against a fresh in-memory store built from the
// default configuration.
func Run(scenario *Scenario) (*Result, error) {
	return RunWithConfig(context.Background(), config.Default(), scenario)
}

// RunWithConfig executes scenario against a fresh in-memory store. The
// driver comes from base; the database location is always in-memory so a
// scenario never touches persistent data.
//
// The returned error covers failures to set the run up. Step failures and
// mismatched expectations are reported in the Result.
func RunWithConfig(ctx context.Context, base config.Config, scenario *Scenario) (*Result, error) {
	cfg := scenarioConfig(base, scenario)
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid scenario config: %w", err)
	}

	logger := testutil.DiscardLogger()
	st, err := store.Open(ctx, cfg, store.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:  st,
		seq:    testutil.NewSequence(),
		logger: logger,
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		h.execute(ctx, i, step, result)
	}
	return result, nil
}

// scenarioConfig applies the scenario's overrides to base.
func scenarioConfig(base config.Config, scenario *Scenario) config.Config {
	cfg := base.Clone()
	cfg.SQL.Name = ":memory:"
	cfg.SQL.Host = ""

	if o := scenario.Config; o != nil {
		cfg.ReadOnly = o.ReadOnly
		cfg.FlowFilePretty = o.FlowFilePretty
		if o.Extensions != nil {
			cfg.Library.Extensions = o.Extensions
		}
	}
	return cfg
}

// execute runs one step, records it in the trace and checks its
// expectations.
func (h *Harness) execute(ctx context.Context, index int, step Step, result *Result) {
	event := TraceEvent{
		Seq:  h.seq.Next(),
		Op:   step.Op,
		Name: step.Name,
		Type: step.Type,
		Path: step.Path,
	}

	actual, err := h.apply(ctx, step, &event)
	if err == nil && actual != nil {
		actual, err = normalize(actual)
	}
	if err != nil {
		event.Error = err.Error()
	} else {
		event.Result = actual
	}
	result.AddTrace(event)

	h.logger.Debug("scenario step completed",
		"step", index,
		"op", step.Op,
		"seq", event.Seq,
		"error", event.Error,
	)

	label := fmt.Sprintf("steps[%d] %s", index, step.Op)
	switch {
	case step.ExpectError != "" && err == nil:
		result.AddError(fmt.Sprintf("%s: expected error containing %q, got none", label, step.ExpectError))
		return
	case step.ExpectError != "":
		if !strings.Contains(err.Error(), step.ExpectError) {
			result.AddError(fmt.Sprintf("%s: expected error containing %q, got %q", label, step.ExpectError, err.Error()))
		}
		return
	case err != nil:
		result.AddError(fmt.Sprintf("%s: %v", label, err))
		return
	}

	if step.Expect == nil {
		return
	}
	expected, err := normalize(step.Expect)
	if err != nil {
		result.AddError(fmt.Sprintf("%s: invalid expect: %v", label, err))
		return
	}
	if !reflect.DeepEqual(expected, actual) {
		result.AddError(fmt.Sprintf("%s: expected %s, got %s", label, compactJSON(expected), compactJSON(actual)))
	}
}

// apply performs the store operation for step. Write ops return a nil
// value.
func (h *Harness) apply(ctx context.Context, step Step, event *TraceEvent) (any, error) {
	switch step.Op {
	case OpSaveSetting:
		name, err := ir.ParseName(step.Name)
		if err != nil {
			return nil, err
		}
		value, err := normalize(step.Value)
		if err != nil {
			return nil, fmt.Errorf("invalid value: %w", err)
		}
		return nil, h.store.Save(ctx, name, value)

	case OpGetSetting:
		name, err := ir.ParseName(step.Name)
		if err != nil {
			return nil, err
		}
		return h.store.GetOrDefault(ctx, name)

	case OpHistory:
		name, err := ir.ParseName(step.Name)
		if err != nil {
			return nil, err
		}
		records, err := h.store.History(ctx, name)
		if err != nil {
			return nil, err
		}
		values := make([]any, 0, len(records))
		for _, rec := range records {
			var v any
			if err := json.Unmarshal([]byte(rec.Value), &v); err != nil {
				return nil, fmt.Errorf("decode version %d: %w", rec.Version, err)
			}
			values = append(values, v)
		}
		return values, nil

	case OpSaveEntry:
		meta, err := normalizeMeta(step.Meta)
		if err != nil {
			return nil, fmt.Errorf("invalid meta: %w", err)
		}
		return nil, h.store.SaveLibraryEntry(ctx, step.Type, step.Path, meta, step.Body)

	case OpGetEntry:
		res, err := h.store.GetLibraryEntry(ctx, step.Type, step.Path)
		if err != nil {
			return nil, err
		}
		if res.IsFile {
			event.Kind = "file"
		} else {
			event.Kind = "listing"
		}
		return res.Value(), nil
	}
	return nil, fmt.Errorf("unknown op %q", step.Op)
}

// normalize round-trips v through JSON so values decoded from YAML compare
// equal to values read back from the store.
func normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func normalizeMeta(meta map[string]any) (map[string]any, error) {
	if meta == nil {
		return nil, nil
	}
	v, err := normalize(meta)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, errors.New("meta must be a mapping")
	}
	return m, nil
}

func compactJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
