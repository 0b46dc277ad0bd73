// Package store provides SQLite-backed persistence for redsql.
//
// The store keeps two append-only tables:
//   - settings: versioned opaque JSON blobs addressed by a logical name
//     (flows, credentials, settings, sessions)
//   - library_entry_settings: flat (type, path, meta, body) rows exposed
//     as a virtual directory tree
//
// # Versioned Settings
//
// Every Save inserts a new row; nothing is updated in place or deleted.
// Each row carries an explicit per-name version assigned at insert time as
// MAX(version)+1 inside a single statement. Get returns the row with the
// highest version. Read-only stores skip writes without error.
//
// # Library Tree
//
// GetLibraryEntry first tries an exact path match (plus any implicit
// extensions configured for the entry type). A match with a non-empty body
// is returned as a file. Otherwise every row of the type whose path starts
// with the requested path is grouped by parent directory and the group for
// the requested path becomes the listing. Empty and nonexistent
// directories both list as empty.
//
// # Database Configuration
//
//   - One open connection shared by every operation
//   - WAL mode, synchronous=NORMAL, busy_timeout=5000
//
// The driver is either github.com/mattn/go-sqlite3 ("sqlite3") or
// modernc.org/sqlite ("sqlite"); both speak the same SQL.
package store
