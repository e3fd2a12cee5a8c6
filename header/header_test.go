package header

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	h := New(0).
		Add("Content-Type", "text/html").
		Add("Accept-Encoding", "gzip").
		Add("Accept-Encoding", "deflate")

	t.Run("case-insensitive", func(t *testing.T) {
		value, found := h.Get("content-type")
		require.True(t, found)
		require.Equal(t, "text/html", value)

		require.Equal(t, "text/html", h.Value("CONTENT-TYPE"))
	})

	t.Run("first value wins", func(t *testing.T) {
		require.Equal(t, "gzip", h.Value("accept-encoding"))
	})

	t.Run("all values", func(t *testing.T) {
		require.Equal(t, []string{"gzip", "deflate"}, h.Values("accept-encoding"))
	})

	t.Run("missing", func(t *testing.T) {
		_, found := h.Get("authorization")
		require.False(t, found)
		require.Empty(t, h.Value("authorization"))
		require.Equal(t, "fallback", h.ValueOr("authorization", "fallback"))
		require.Equal(t, -1, h.Index("authorization"))
	})
}

func TestKeys(t *testing.T) {
	h := New(0).
		Add("Content-Type", "text/html").
		Add("Accept-Encoding", "gzip").
		Add("accept-encoding", "deflate")

	require.Equal(t, []string{"Content-Type", "Accept-Encoding"}, h.Keys())
}

func TestUpsert(t *testing.T) {
	h := New(0).Add("Content-Type", "text/html")

	h = h.Upsert("content-type", "application/json")
	require.Equal(t, []string{"application/json"}, h.Values("content-type"))

	h = h.Upsert("Vary", "accept-encoding")
	require.Equal(t, "accept-encoding", h.Value("vary"))
	require.Len(t, h, 2)
}

func TestDelete(t *testing.T) {
	h := New(0).
		Add("Set-Cookie", "a=b").
		Add("Content-Type", "text/html").
		Add("set-cookie", "c=d")

	h = h.Delete("SET-COOKIE")
	require.Len(t, h, 1)
	require.Equal(t, "text/html", h.Value("content-type"))
}

func TestMaps(t *testing.T) {
	m := map[string][]string{
		"Content-Type": {"text/html"},
		"Set-Cookie":   {"a=b", "c=d"},
	}

	h := FromMap(m)
	require.Len(t, h, 3)
	require.Equal(t, []string{"a=b", "c=d"}, h.Values("set-cookie"))

	back := h.ToMap()
	require.Equal(t, map[string][]string{
		"content-type": {"text/html"},
		"set-cookie":   {"a=b", "c=d"},
	}, back)
}

func TestValidation(t *testing.T) {
	require.True(t, IsValidName("Content-Type"))
	require.False(t, IsValidName("Content Type"))
	require.False(t, IsValidName(""))

	require.True(t, IsValidValue("text/html; charset=utf-8"))
	require.False(t, IsValidValue("broken\r\nvalue"))
}
