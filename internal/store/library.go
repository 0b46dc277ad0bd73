package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/redsql/internal/ir"
)

// SaveLibraryEntry appends a library row. A nil meta is stored as NULL;
// a nil body marks the path as a bare directory or file marker.
//
// Library writes are not affected by the read-only flag.
func (s *Store) SaveLibraryEntry(ctx context.Context, entryType, path string, meta map[string]any, body *string) error {
	metaText, err := marshalMeta(meta)
	if err != nil {
		return fmt.Errorf("save library entry %q: %w", path, err)
	}

	var bodyText sql.NullString
	if body != nil {
		bodyText = sql.NullString{String: *body, Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO library_entry_settings (type, path, meta, body)
		VALUES (?, ?, ?, ?)
	`, entryType, normalizePath(path), metaText, bodyText)
	if err != nil {
		return fmt.Errorf("save library entry %q: %w", path, err)
	}
	return nil
}

// GetLibraryEntry resolves path within entryType to either the body of a
// single file or the listing of the directory at path.
//
// An exact match (including implicit extensions) with a non-empty body
// wins; the newest such row is used. Otherwise the listing is built from
// every row whose path starts with path. A path with no children lists as
// empty, whether or not it was ever saved.
//
// Trailing slashes are trimmed before lookup, so "B/" and "B" resolve to
// the same listing.
func (s *Store) GetLibraryEntry(ctx context.Context, entryType, path string) (ir.LibraryResult, error) {
	path = normalizePath(path)

	match, found, err := s.findExact(ctx, entryType, path)
	if err != nil {
		return ir.LibraryResult{}, err
	}
	if found && match.HasBody() {
		s.logger.Debug("library entry resolved to file", "type", entryType, "path", match.Path)
		return ir.FileResult(*match.Body), nil
	}

	records, err := s.findByPrefix(ctx, entryType, path)
	if err != nil {
		return ir.LibraryResult{}, err
	}

	listing := SortIntoPaths(records)[path]
	s.logger.Debug("library entry resolved to listing", "type", entryType, "path", path, "entries", len(listing))
	return ir.ListingResult(listing), nil
}

// ListLibraryTypes returns every entry type that has at least one row.
func (s *Store) ListLibraryTypes(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT type
		FROM library_entry_settings
		ORDER BY type COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query library types: %w", err)
	}
	defer rows.Close()

	types := []string{}
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan library type: %w", err)
		}
		types = append(types, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate library types: %w", err)
	}
	return types, nil
}

// findExact returns the newest row of entryType whose path is one of the
// candidate paths.
func (s *Store) findExact(ctx context.Context, entryType, path string) (ir.LibraryEntry, bool, error) {
	candidates := s.candidatePaths(entryType, path)

	args := make([]any, 0, len(candidates)+1)
	args = append(args, entryType)
	for _, c := range candidates {
		args = append(args, c)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(candidates)), ", ")

	row := s.db.QueryRowContext(ctx, `
		SELECT id, type, path, meta, body
		FROM library_entry_settings
		WHERE type = ? AND path IN (`+placeholders+`)
		ORDER BY id DESC
		LIMIT 1
	`, args...)

	entry, err := scanLibraryEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.LibraryEntry{}, false, nil
	}
	if err != nil {
		return ir.LibraryEntry{}, false, fmt.Errorf("get library entry %q: %w", path, err)
	}
	return entry, true, nil
}

// findByPrefix returns every row of entryType whose path starts with
// prefix, in insertion order. The comparison is an exact character
// prefix, so LIKE wildcards and case folding never apply.
func (s *Store) findByPrefix(ctx context.Context, entryType, prefix string) ([]ir.LibraryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type, path, meta, body
		FROM library_entry_settings
		WHERE type = ? AND substr(path, 1, length(?)) = ?
		ORDER BY id ASC
	`, entryType, prefix, prefix)
	if err != nil {
		return nil, fmt.Errorf("list library entries %q: %w", prefix, err)
	}
	defer rows.Close()

	var entries []ir.LibraryEntry
	for rows.Next() {
		entry, err := scanLibraryEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("list library entries %q: %w", prefix, err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate library entries: %w", err)
	}
	return entries, nil
}

func scanLibraryEntry(row rowScanner) (ir.LibraryEntry, error) {
	var entry ir.LibraryEntry
	var meta, body sql.NullString
	if err := row.Scan(&entry.ID, &entry.Type, &entry.Path, &meta, &body); err != nil {
		return ir.LibraryEntry{}, err
	}

	m, err := unmarshalMeta(meta)
	if err != nil {
		return ir.LibraryEntry{}, fmt.Errorf("entry %q: %w", entry.Path, err)
	}
	entry.Meta = m
	if body.Valid {
		b := body.String
		entry.Body = &b
	}
	return entry, nil
}
