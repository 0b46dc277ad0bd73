package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/redsql/internal/config"
	"github.com/roach88/redsql/internal/ir"
	"github.com/roach88/redsql/internal/store"
	"github.com/roach88/redsql/internal/testutil"
)

func listing(t *testing.T, s *store.Store, entryType, path string) []any {
	t.Helper()
	res, err := s.GetLibraryEntry(context.Background(), entryType, path)
	require.NoError(t, err)
	require.False(t, res.IsFile, "expected a listing for %q, got body %q", path, res.Body)
	return res.Value().([]any)
}

func body(t *testing.T, s *store.Store, entryType, path string) string {
	t.Helper()
	res, err := s.GetLibraryEntry(context.Background(), entryType, path)
	require.NoError(t, err)
	require.True(t, res.IsFile, "expected a file for %q, got listing %v", path, res.Listing)
	return res.Body
}

func TestGetLibraryEntry_EmptyStore(t *testing.T) {
	s := testutil.NewStore(t)

	assert.Equal(t, []any{}, listing(t, s, "object", ""))
	assert.Equal(t, []any{}, listing(t, s, "object", "/"))
}

func TestGetLibraryEntry_NonexistentPathIsEmpty(t *testing.T) {
	s := testutil.NewStore(t)
	testutil.SeedLibrary(t, s, "object")

	assert.Equal(t, []any{}, listing(t, s, "object", "A/B"))
	assert.Equal(t, []any{}, listing(t, s, "object", "nowhere"))
}

func TestGetLibraryEntry_RootListing(t *testing.T) {
	s := testutil.NewStore(t)
	testutil.SeedLibrary(t, s, "object")

	assert.Equal(t, []any{
		"A",
		"B",
		map[string]any{"abc": "def", "fn": "file1.js"},
	}, listing(t, s, "object", ""))
}

func TestGetLibraryEntry_SubdirectoryListing(t *testing.T) {
	s := testutil.NewStore(t)
	testutil.SeedLibrary(t, s, "object")

	assert.Equal(t, []any{
		"C",
		map[string]any{"ghi": "jkl", "fn": "file2.js"},
		map[string]any{"fn": "flow.json"},
	}, listing(t, s, "object", "B"))
}

func TestGetLibraryEntry_EmptyMarkedDirectory(t *testing.T) {
	s := testutil.NewStore(t)
	testutil.SeedLibrary(t, s, "object")

	assert.Equal(t, []any{}, listing(t, s, "object", "B/C"))
}

func TestGetLibraryEntry_TrailingSlash(t *testing.T) {
	s := testutil.NewStore(t)
	testutil.SeedLibrary(t, s, "object")

	assert.Equal(t, listing(t, s, "object", "B"), listing(t, s, "object", "B/"))
}

func TestGetLibraryEntry_DotAndDoubleSlashSegmentsAreLiteral(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveLibraryEntry(ctx, "object", "B", nil, nil))
	require.NoError(t, s.SaveLibraryEntry(ctx, "object", "B/../x.js", nil, testutil.StrPtr("1")))
	require.NoError(t, s.SaveLibraryEntry(ctx, "object", "B//C", nil, testutil.StrPtr("2")))
	require.NoError(t, s.SaveLibraryEntry(ctx, "object", "A/./D", nil, testutil.StrPtr("3")))

	assert.Equal(t, []any{"B"}, listing(t, s, "object", ""))
	assert.Equal(t, []any{}, listing(t, s, "object", "B"))
	assert.Equal(t, []any{}, listing(t, s, "object", "A"))
	assert.Equal(t, "1", body(t, s, "object", "B/../x.js"))
}

func TestGetLibraryEntry_FileBody(t *testing.T) {
	s := testutil.NewStore(t)
	testutil.SeedLibrary(t, s, "object")

	assert.Equal(t, testutil.ScriptBody, body(t, s, "object", "B/file2.js"))
	assert.Equal(t, "Hi", body(t, s, "object", "B/flow.json"))
}

func TestGetLibraryEntry_FlowWithoutExtension(t *testing.T) {
	s := testutil.NewStore(t)
	testutil.SeedLibrary(t, s, "flows")

	assert.Equal(t, "Hi", body(t, s, "flows", "B/flow"))
}

func TestGetLibraryEntry_ExtensionScopedToConfiguredTypes(t *testing.T) {
	s := testutil.NewStore(t)
	testutil.SeedLibrary(t, s, "object")

	// "object" has no implicit extension, so B/flow is a (missing) directory
	assert.Equal(t, []any{}, listing(t, s, "object", "B/flow"))
}

func TestGetLibraryEntry_WildcardExtensions(t *testing.T) {
	s := testutil.NewStore(t, func(c *config.Config) {
		c.Library.Extensions = map[string][]string{config.AllTypes: {".json"}}
	})
	testutil.SeedLibrary(t, s, "object")

	assert.Equal(t, "Hi", body(t, s, "object", "B/flow"))
}

func TestGetLibraryEntry_ExtensionsDisabled(t *testing.T) {
	s := testutil.NewStore(t, func(c *config.Config) {
		c.Library.Extensions = map[string][]string{}
	})
	testutil.SeedLibrary(t, s, "flows")

	assert.Equal(t, []any{}, listing(t, s, "flows", "B/flow"))
}

func TestGetLibraryEntry_NewlySavedDeepEntry(t *testing.T) {
	s := testutil.NewStore(t)
	testutil.SeedLibrary(t, s, "object")
	ctx := context.Background()

	before := listing(t, s, "object", "B")

	const deepBody = "// another non meta line\n\n Hi There"
	require.NoError(t, s.SaveLibraryEntry(ctx, "object", "B/D/file3.js", map[string]any{"mno": "pqr"}, testutil.StrPtr(deepBody)))

	assert.Equal(t, []any{map[string]any{"mno": "pqr", "fn": "file3.js"}}, listing(t, s, "object", "B/D"))
	assert.Equal(t, deepBody, body(t, s, "object", "B/D/file3.js"))

	// B only lists its direct children; D has no marker row of its own
	assert.Equal(t, before, listing(t, s, "object", "B"))
}

func TestGetLibraryEntry_NewestExactMatchWins(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveLibraryEntry(ctx, "object", "x.js", nil, testutil.StrPtr("v1")))
	require.NoError(t, s.SaveLibraryEntry(ctx, "object", "x.js", nil, testutil.StrPtr("v2")))

	assert.Equal(t, "v2", body(t, s, "object", "x.js"))

	// Every save is a new row, so the listing shows both
	assert.Equal(t, []any{
		map[string]any{"fn": "x.js"},
		map[string]any{"fn": "x.js"},
	}, listing(t, s, "object", ""))
}

func TestGetLibraryEntry_NewestCandidateAcrossExtensions(t *testing.T) {
	s := testutil.NewStore(t)
	testutil.SeedLibrary(t, s, "flows")

	require.NoError(t, s.SaveLibraryEntry(context.Background(), "flows", "B/flow", nil, testutil.StrPtr("bare")))

	assert.Equal(t, "bare", body(t, s, "flows", "B/flow"))
	assert.Equal(t, "Hi", body(t, s, "flows", "B/flow.json"))
}

func TestGetLibraryEntry_EmptyBodyIsNotAFile(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveLibraryEntry(ctx, "object", "dir/empty.js", nil, testutil.StrPtr("")))

	assert.Equal(t, []any{}, listing(t, s, "object", "dir/empty.js"))
	assert.Equal(t, []any{"empty.js"}, listing(t, s, "object", "dir"))
}

func TestGetLibraryEntry_TypesAreIsolated(t *testing.T) {
	s := testutil.NewStore(t)
	testutil.SeedLibrary(t, s, "object")

	assert.Equal(t, []any{}, listing(t, s, "functions", ""))
	assert.Equal(t, []any{}, listing(t, s, "functions", "B/file2.js"))
}

func TestGetLibraryEntry_PrefixIsLiteral(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveLibraryEntry(ctx, "object", "b/lower.js", map[string]any{}, nil))
	require.NoError(t, s.SaveLibraryEntry(ctx, "object", "B_x/under.js", map[string]any{}, nil))
	require.NoError(t, s.SaveLibraryEntry(ctx, "object", "B%/pct.js", map[string]any{}, nil))

	assert.Equal(t, []any{}, listing(t, s, "object", "B"))
	assert.Equal(t, []any{map[string]any{"fn": "pct.js"}}, listing(t, s, "object", "B%"))
	assert.Equal(t, []any{map[string]any{"fn": "lower.js"}}, listing(t, s, "object", "b"))
}

func TestGetLibraryEntry_UnicodePathsNormalized(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()

	decomposed := "cafe\u0301/menu.js"
	composed := "caf\u00e9"
	require.NoError(t, s.SaveLibraryEntry(ctx, "object", decomposed, nil, testutil.StrPtr("menu")))

	assert.Equal(t, []any{map[string]any{"fn": "menu.js"}}, listing(t, s, "object", composed))
	assert.Equal(t, "menu", body(t, s, "object", decomposed))
	assert.Equal(t, "menu", body(t, s, "object", composed+"/menu.js"))
}

func TestGetLibraryEntry_MetaFilenameOverridden(t *testing.T) {
	s := testutil.NewStore(t)

	require.NoError(t, s.SaveLibraryEntry(context.Background(), "object", "lib/real.js",
		map[string]any{"fn": "stale.js", "tags": []any{"a"}}, nil))

	assert.Equal(t, []any{map[string]any{"fn": "real.js", "tags": []any{"a"}}}, listing(t, s, "object", "lib"))
}

func TestGetLibraryEntry_ResultTypes(t *testing.T) {
	s := testutil.NewStore(t)
	testutil.SeedLibrary(t, s, "object")

	res, err := s.GetLibraryEntry(context.Background(), "object", "B")
	require.NoError(t, err)
	assert.Equal(t, []ir.ListingEntry{
		{Name: "C"},
		{Name: "file2.js", Meta: map[string]any{"ghi": "jkl"}},
		{Name: "flow.json", Meta: map[string]any{}},
	}, res.Listing)
}

func TestSaveLibraryEntry_EmptyType(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveLibraryEntry(ctx, "", "x.js", nil, nil))

	assert.Equal(t, []any{"x.js"}, listing(t, s, "", ""))
	assert.Equal(t, []any{}, listing(t, s, "object", ""))
}

func TestSaveLibraryEntry_IgnoresReadOnly(t *testing.T) {
	s := testutil.NewStore(t, func(c *config.Config) { c.ReadOnly = true })

	require.NoError(t, s.SaveLibraryEntry(context.Background(), "object", "kept.js", nil, testutil.StrPtr("x")))
	assert.Equal(t, "x", body(t, s, "object", "kept.js"))
}

func TestSaveLibraryEntry_StoresMetaAsJSON(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveLibraryEntry(ctx, "object", "m.js", map[string]any{"abc": "def"}, nil))
	require.NoError(t, s.SaveLibraryEntry(ctx, "object", "n.js", nil, nil))

	var meta, nullMeta *string
	require.NoError(t, s.DB().QueryRow(`SELECT meta FROM library_entry_settings WHERE path = 'm.js'`).Scan(&meta))
	require.NoError(t, s.DB().QueryRow(`SELECT meta FROM library_entry_settings WHERE path = 'n.js'`).Scan(&nullMeta))

	require.NotNil(t, meta)
	assert.Equal(t, `{"abc":"def"}`, *meta)
	assert.Nil(t, nullMeta)
}

func TestListLibraryTypes(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()

	types, err := s.ListLibraryTypes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{}, types)

	testutil.SeedLibrary(t, s, "object")
	testutil.SeedLibrary(t, s, "flows")

	types, err = s.ListLibraryTypes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"flows", "object"}, types)
}
