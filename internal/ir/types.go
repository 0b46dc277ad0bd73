package ir

// SettingRecord is one retained row of the versioned settings table.
// For a given Name the record with the highest Version is authoritative.
type SettingRecord struct {
	ID      int64  `json:"id"`      // Auto-increment row id
	Name    Name   `json:"name"`    // Logical name
	Version int64  `json:"version"` // Per-name counter, starts at 1
	Value   string `json:"value"`   // Serialized JSON text exactly as stored
}

// LibraryEntry is one flat row of the library table.
//
// A row with a non-nil Body is a retrievable file. A row with neither Meta
// nor Body only marks that Path exists, which is how otherwise-empty
// directories are materialized.
type LibraryEntry struct {
	ID   int64          `json:"id"`
	Type string         `json:"type"`
	Path string         `json:"path"`
	Meta map[string]any `json:"meta,omitempty"`
	Body *string        `json:"body,omitempty"`
}

// HasContent reports whether the entry carries metadata or a non-empty body.
func (e LibraryEntry) HasContent() bool {
	return e.Meta != nil || e.HasBody()
}

// HasBody reports whether the entry is a retrievable file.
func (e LibraryEntry) HasBody() bool {
	return e.Body != nil && *e.Body != ""
}
