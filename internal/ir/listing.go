package ir

import (
	"encoding/json"
	"fmt"
	"maps"
)

// FilenameKey is the object key that carries the final path segment in a
// rich listing entry.
const FilenameKey = "fn"

// ListingEntry is one element of a directory listing.
//
// When Meta is nil the entry is a plain marker and marshals to the bare
// filename string. Otherwise it marshals to an object holding the meta
// fields plus FilenameKey.
type ListingEntry struct {
	Name string
	Meta map[string]any
}

// IsObject reports whether the entry marshals to an object.
func (e ListingEntry) IsObject() bool {
	return e.Meta != nil
}

// Object returns the object form of the entry: the meta fields with
// FilenameKey set to Name. A FilenameKey present in Meta is overwritten.
func (e ListingEntry) Object() map[string]any {
	obj := make(map[string]any, len(e.Meta)+1)
	maps.Copy(obj, e.Meta)
	obj[FilenameKey] = e.Name
	return obj
}

// Value returns the entry as a JSON-compatible Go value (string or map).
func (e ListingEntry) Value() any {
	if e.IsObject() {
		return e.Object()
	}
	return e.Name
}

// MarshalJSON implements json.Marshaler.
func (e ListingEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Value())
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *ListingEntry) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*e = ListingEntry{Name: name}
		return nil
	}

	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("listing entry: %w", err)
	}
	fn, ok := obj[FilenameKey].(string)
	if !ok {
		return fmt.Errorf("listing entry: missing %q", FilenameKey)
	}
	delete(obj, FilenameKey)
	*e = ListingEntry{Name: fn, Meta: obj}
	return nil
}

// LibraryResult is the outcome of resolving a library path: either the body
// of a single file or the listing of the directory at that path.
type LibraryResult struct {
	Body    string
	IsFile  bool
	Listing []ListingEntry
}

// FileResult builds a result holding a single file body.
func FileResult(body string) LibraryResult {
	return LibraryResult{Body: body, IsFile: true}
}

// ListingResult builds a directory result. A nil listing becomes empty.
func ListingResult(entries []ListingEntry) LibraryResult {
	if entries == nil {
		entries = []ListingEntry{}
	}
	return LibraryResult{Listing: entries}
}

// Value returns the result as a JSON-compatible Go value: the body string
// for a file, a []any of entry values for a directory.
func (r LibraryResult) Value() any {
	if r.IsFile {
		return r.Body
	}
	out := make([]any, len(r.Listing))
	for i, e := range r.Listing {
		out[i] = e.Value()
	}
	return out
}

// MarshalJSON implements json.Marshaler.
func (r LibraryResult) MarshalJSON() ([]byte, error) {
	if r.IsFile {
		return json.Marshal(r.Body)
	}
	if r.Listing == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r.Listing)
}
