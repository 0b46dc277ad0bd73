package store

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
)

// prettyIndent is the indentation used when pretty formatting is enabled.
const prettyIndent = "    "

// marshalValue converts a settings value to JSON TEXT for storage.
// HTML escaping is disabled so stored text matches the value byte for byte.
// Pretty output only changes layout, never the decoded value.
func marshalValue(v any, pretty bool) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", prettyIndent)
	}
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("marshal value: %w", err)
	}
	// Encoder adds a trailing newline, remove it
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// unmarshalValue parses stored JSON TEXT into a JSON-compatible Go value.
// Numbers decode as float64.
func unmarshalValue(data string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(data), &v); err != nil {
		return nil, fmt.Errorf("unmarshal value: %w", err)
	}
	return v, nil
}

// marshalMeta converts library metadata to nullable JSON TEXT.
// A nil map is stored as NULL; an empty map is stored as "{}".
func marshalMeta(meta map[string]any) (sql.NullString, error) {
	if meta == nil {
		return sql.NullString{}, nil
	}
	text, err := marshalValue(meta, false)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshal meta: %w", err)
	}
	return sql.NullString{String: text, Valid: true}, nil
}

// unmarshalMeta parses nullable JSON TEXT into library metadata.
func unmarshalMeta(data sql.NullString) (map[string]any, error) {
	if !data.Valid {
		return nil, nil
	}
	var meta map[string]any
	if err := json.Unmarshal([]byte(data.String), &meta); err != nil {
		return nil, fmt.Errorf("unmarshal meta: %w", err)
	}
	if meta == nil {
		meta = map[string]any{}
	}
	return meta, nil
}
