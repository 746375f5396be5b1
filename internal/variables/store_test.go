package variables

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattjoyce/sitescrub/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "site.db")
	conn, err := storage.OpenSQLite(context.Background(), dbPath, "")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return NewStore(conn)
}

func TestSetGetRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	values := map[string]any{
		"string": "acmesite",
		"number": int64(42),
		"large":  int64(9007199254740993),
		"float":  4.25,
		"nested": map[string]any{"site_name": "acmesite", "ids": []any{int64(1), int64(2)}},
		"bool":   true,
	}
	for name, v := range values {
		_, err := s.Set(ctx, name, v, "")
		require.NoError(t, err)

		got, err := s.Get(ctx, name, "default")
		require.NoError(t, err)
		assert.Equal(t, v, got, "round trip for %s", name)
	}
}

func TestSetReportsInsertThenUpdate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	outcome, err := s.Set(ctx, "acsf_site_info", map[string]any{"site_name": "a"}, "acsf")
	require.NoError(t, err)
	assert.Equal(t, Inserted, outcome)

	outcome, err = s.Set(ctx, "acsf_site_info", map[string]any{"site_name": "b"}, "other")
	require.NoError(t, err)
	assert.Equal(t, Updated, outcome)

	got, err := s.Get(ctx, "acsf_site_info", nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"site_name": "b"}, got)

	// Group is overwritten too.
	g, err := s.GetGroup(ctx, "acsf", nil)
	require.NoError(t, err)
	assert.Nil(t, g)
	g, err = s.GetGroup(ctx, "other", nil)
	require.NoError(t, err)
	assert.Len(t, g, 1)
}

func TestGetMissingReturnsDefault(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	got, err := s.Get(context.Background(), "never_set", "fallback")
	require.NoError(t, err)
	assert.Equal(t, "fallback", got)
}

func TestDeleteThenGet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Set(ctx, "system.private_key", "secret", "")
	require.NoError(t, err)

	n, err := s.Delete(ctx, "system.private_key")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := s.Get(ctx, "system.private_key", "gone")
	require.NoError(t, err)
	assert.Equal(t, "gone", got)

	n, err = s.Delete(ctx, "system.private_key")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestGetMatchSubstring(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	for _, name := range []string{"acsf_site_info", "acsf_duplication", "theme_x", "a_b", "axb"} {
		_, err := s.Set(ctx, name, name, "")
		require.NoError(t, err)
	}

	got, err := s.GetMatch(ctx, "acsf")
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, "acsf_site_info", got["acsf_site_info"])

	// Wildcards in the match are literal.
	got, err = s.GetMatch(ctx, "a_b")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a_b": "a_b"}, got)

	got, err = s.GetMatch(ctx, "nothing")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGetGroup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Set(ctx, "one", int64(1), "g")
	require.NoError(t, err)
	_, err = s.Set(ctx, "two", int64(9007199254740993), "g")
	require.NoError(t, err)
	_, err = s.Set(ctx, "three", int64(3), "h")
	require.NoError(t, err)

	got, err := s.GetGroup(ctx, "g", nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"one": int64(1), "two": int64(9007199254740993)}, got)

	def := map[string]any{"d": true}
	got, err = s.GetGroup(ctx, "missing", def)
	require.NoError(t, err)
	assert.Equal(t, def, got)
}

func TestLookupDecodesIntoStruct(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Set(ctx, "acsf_site_info", map[string]any{"site_name": "acmesite", "site_id": 7}, "")
	require.NoError(t, err)

	var info struct {
		SiteName string `json:"site_name"`
		SiteID   int64  `json:"site_id"`
	}
	found, err := s.Lookup(ctx, "acsf_site_info", &info)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "acmesite", info.SiteName)
	assert.Equal(t, int64(7), info.SiteID)
}
