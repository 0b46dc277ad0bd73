package testutil

import (
	"context"
	"testing"

	"github.com/roach88/redsql/internal/store"
)

// FixtureEntry is one library row to seed.
type FixtureEntry struct {
	Path string
	Meta map[string]any
	Body *string
}

// ScriptBody is the body saved for the script entries of LibraryFixture.
const ScriptBody = "// not a metaline \n\n Hi"

// StrPtr returns a pointer to s.
func StrPtr(s string) *string {
	return &s
}

// LibraryFixture returns the standard library tree, in save order:
//
//	A/            (marker)
//	B/            (marker)
//	B/C/          (marker)
//	file1.js      meta {abc: def}
//	B/file2.js    meta {ghi: jkl}
//	B/flow.json   body "Hi", no meta
func LibraryFixture() []FixtureEntry {
	return []FixtureEntry{
		{Path: "A"},
		{Path: "B"},
		{Path: "B/C"},
		{Path: "file1.js", Meta: map[string]any{"abc": "def"}, Body: StrPtr(ScriptBody)},
		{Path: "B/file2.js", Meta: map[string]any{"ghi": "jkl"}, Body: StrPtr(ScriptBody)},
		{Path: "B/flow.json", Body: StrPtr("Hi")},
	}
}

// SeedLibrary saves LibraryFixture under entryType.
func SeedLibrary(t testing.TB, s *store.Store, entryType string) {
	t.Helper()
	ctx := context.Background()
	for _, e := range LibraryFixture() {
		if err := s.SaveLibraryEntry(ctx, entryType, e.Path, e.Meta, e.Body); err != nil {
			t.Fatalf("SaveLibraryEntry(%q, %q) failed: %v", entryType, e.Path, err)
		}
	}
}
