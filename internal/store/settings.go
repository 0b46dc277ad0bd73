package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roach88/redsql/internal/ir"
)

// Names returns the logical name enumeration.
func (s *Store) Names() map[string]int {
	return ir.NameMap()
}

// Get returns the newest value saved under name, or defaultValue when
// nothing has been saved. The stored JSON is decoded before returning.
func (s *Store) Get(ctx context.Context, name ir.Name, defaultValue any) (any, error) {
	rec, found, err := s.Latest(ctx, name)
	if err != nil {
		return nil, err
	}
	if !found {
		return defaultValue, nil
	}
	v, err := unmarshalValue(rec.Value)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", name, err)
	}
	return v, nil
}

// GetOrDefault is Get with the name's own default value.
func (s *Store) GetOrDefault(ctx context.Context, name ir.Name) (any, error) {
	return s.Get(ctx, name, name.DefaultValue())
}

// GetInto decodes the newest value saved under name into dst.
// Returns found=false, leaving dst untouched, when nothing has been saved.
func (s *Store) GetInto(ctx context.Context, name ir.Name, dst any) (bool, error) {
	rec, found, err := s.Latest(ctx, name)
	if err != nil || !found {
		return false, err
	}
	if err := json.Unmarshal([]byte(rec.Value), dst); err != nil {
		return false, fmt.Errorf("get %s: unmarshal value: %w", name, err)
	}
	return true, nil
}

// Latest returns the newest stored record for name exactly as persisted.
func (s *Store) Latest(ctx context.Context, name ir.Name) (ir.SettingRecord, bool, error) {
	if !name.Valid() {
		return ir.SettingRecord{}, false, fmt.Errorf("get: %w: %d", ErrUnknownName, int(name))
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, version, value
		FROM settings
		WHERE name = ?
		ORDER BY version DESC, id DESC
		LIMIT 1
	`, int(name))

	rec, err := scanSetting(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.SettingRecord{}, false, nil
	}
	if err != nil {
		return ir.SettingRecord{}, false, fmt.Errorf("get %s: %w", name, err)
	}
	return rec, true, nil
}

// History returns every retained record for name, oldest first.
// Returns an empty slice (not nil) if nothing has been saved.
func (s *Store) History(ctx context.Context, name ir.Name) ([]ir.SettingRecord, error) {
	if !name.Valid() {
		return nil, fmt.Errorf("history: %w: %d", ErrUnknownName, int(name))
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, version, value
		FROM settings
		WHERE name = ?
		ORDER BY version ASC, id ASC
	`, int(name))
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	records := []ir.SettingRecord{}
	for rows.Next() {
		rec, err := scanSetting(rows)
		if err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return records, nil
}

// Save serializes value and appends it as the newest version of name.
//
// A read-only store returns nil without writing. Pretty stores write
// 4-space indented JSON, others compact single-line JSON.
func (s *Store) Save(ctx context.Context, name ir.Name, value any) error {
	_, err := s.SaveVersion(ctx, name, value)
	return err
}

// SaveVersion is Save returning the version it wrote, or 0 when the store
// is read-only.
func (s *Store) SaveVersion(ctx context.Context, name ir.Name, value any) (int64, error) {
	if !name.Valid() {
		return 0, fmt.Errorf("save: %w: %d", ErrUnknownName, int(name))
	}
	if s.readOnly {
		s.logger.Debug("read-only store, skipping save", "name", name)
		return 0, nil
	}

	data, err := marshalValue(value, s.pretty)
	if err != nil {
		return 0, fmt.Errorf("save %s: %w", name, err)
	}

	// Version assignment and insert happen in one statement so concurrent
	// saves of the same name never share a version.
	var version int64
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO settings (name, version, value)
		SELECT ?, COALESCE(MAX(version), 0) + 1, ?
		FROM settings
		WHERE name = ?
		RETURNING version
	`, int(name), data, int(name)).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("save %s: %w", name, err)
	}
	return version, nil
}

// GetFlows returns the newest flows, or an empty sequence.
func (s *Store) GetFlows(ctx context.Context) ([]any, error) {
	var flows []any
	if _, err := s.GetInto(ctx, ir.NameFlows, &flows); err != nil {
		return nil, err
	}
	if flows == nil {
		flows = []any{}
	}
	return flows, nil
}

// SaveFlows saves a new flows version.
func (s *Store) SaveFlows(ctx context.Context, flows []any) error {
	if flows == nil {
		flows = []any{}
	}
	return s.Save(ctx, ir.NameFlows, flows)
}

// GetCredentials returns the newest credentials, or an empty mapping.
func (s *Store) GetCredentials(ctx context.Context) (map[string]any, error) {
	return s.getMapping(ctx, ir.NameCredentials)
}

// SaveCredentials saves a new credentials version.
func (s *Store) SaveCredentials(ctx context.Context, credentials map[string]any) error {
	return s.saveMapping(ctx, ir.NameCredentials, credentials)
}

// GetSettings returns the newest user settings, or an empty mapping.
func (s *Store) GetSettings(ctx context.Context) (map[string]any, error) {
	return s.getMapping(ctx, ir.NameSettings)
}

// SaveSettings saves a new user settings version.
func (s *Store) SaveSettings(ctx context.Context, settings map[string]any) error {
	return s.saveMapping(ctx, ir.NameSettings, settings)
}

// GetSessions returns the newest sessions, or an empty mapping.
func (s *Store) GetSessions(ctx context.Context) (map[string]any, error) {
	return s.getMapping(ctx, ir.NameSessions)
}

// SaveSessions saves a new sessions version.
func (s *Store) SaveSessions(ctx context.Context, sessions map[string]any) error {
	return s.saveMapping(ctx, ir.NameSessions, sessions)
}

func (s *Store) getMapping(ctx context.Context, name ir.Name) (map[string]any, error) {
	var m map[string]any
	if _, err := s.GetInto(ctx, name, &m); err != nil {
		return nil, err
	}
	if m == nil {
		m = map[string]any{}
	}
	return m, nil
}

func (s *Store) saveMapping(ctx context.Context, name ir.Name, m map[string]any) error {
	if m == nil {
		m = map[string]any{}
	}
	return s.Save(ctx, name, m)
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSetting(row rowScanner) (ir.SettingRecord, error) {
	var rec ir.SettingRecord
	var name int
	if err := row.Scan(&rec.ID, &name, &rec.Version, &rec.Value); err != nil {
		return ir.SettingRecord{}, err
	}
	rec.Name = ir.Name(name)
	return rec, nil
}
