package store

import (
	"strings"

	"github.com/roach88/redsql/internal/ir"
)

// SortIntoPaths groups flat library records by parent directory.
//
// The key is the record path with its final segment removed; top-level
// records group under "". Within a group, entries keep the order of
// records. A record with meta or a body becomes an object entry (its meta
// plus the filename), any other record a bare filename.
//
// SortIntoPaths never touches the backend.
func SortIntoPaths(records []ir.LibraryEntry) map[string][]ir.ListingEntry {
	sorted := make(map[string][]ir.ListingEntry)

	for _, rec := range records {
		dir, base := splitPath(rec.Path)

		entry := ir.ListingEntry{Name: base}
		if rec.HasContent() {
			entry.Meta = rec.Meta
			if entry.Meta == nil {
				entry.Meta = map[string]any{}
			}
		}

		sorted[dir] = append(sorted[dir], entry)
	}

	return sorted
}

// splitPath returns the parent directory and final segment of a
// slash-separated path. The parent is the path up to its last slash, taken
// verbatim: "B//C" has parent "B/" and "B/../x.js" has parent "B/..". A
// path without a slash has parent "" (the root); "/x" has parent "/".
func splitPath(p string) (dir, base string) {
	if trimmed := strings.TrimRight(p, "/"); trimmed != "" {
		p = trimmed
	}

	i := strings.LastIndex(p, "/")
	switch {
	case i < 0:
		return "", p
	case i == 0:
		return "/", p[1:]
	}
	return p[:i], p[i+1:]
}
