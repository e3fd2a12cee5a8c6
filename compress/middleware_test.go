package compress

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/barewire/webutil/status"
)

func serve(t *testing.T, m *Middleware, handler http.HandlerFunc, reqHeaders map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for key, value := range reqHeaders {
		r.Header.Set(key, value)
	}

	w := httptest.NewRecorder()
	m.Wrap(handler).ServeHTTP(w, r)

	return w
}

func textHandler(text string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Header().Set("Content-Length", strconv.Itoa(len(text)))
		_, _ = w.Write([]byte(text))
	}
}

func TestMiddlewareCompresses(t *testing.T) {
	sample := strings.Repeat("Hello, world! Lorem ipsum! ", 100)

	w := serve(t, NewMiddleware(), textHandler(sample), map[string]string{
		"Accept-Encoding": "gzip",
	})

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
	require.Equal(t, "text/plain", w.Header().Get("Content-Type"))
	require.Equal(t, "accept-encoding", w.Header().Get("Vary"))
	require.Equal(t, strconv.Itoa(w.Body.Len()), w.Header().Get("Content-Length"))
	require.Less(t, w.Body.Len(), len(sample))

	decoded, err := Decompress(w.Body.Bytes(), NewGZIP())
	require.NoError(t, err)
	require.Equal(t, sample, string(decoded))
}

func TestMiddlewarePassthrough(t *testing.T) {
	sample := strings.Repeat("Hello, world! Lorem ipsum! ", 100)

	t.Run("no accept-encoding", func(t *testing.T) {
		w := serve(t, NewMiddleware(), textHandler(sample), nil)
		require.Empty(t, w.Header().Get("Content-Encoding"))
		require.Equal(t, sample, w.Body.String())
	})

	t.Run("below minimum size", func(t *testing.T) {
		w := serve(t, NewMiddleware(), textHandler("tiny"), map[string]string{
			"Accept-Encoding": "gzip",
		})
		require.Empty(t, w.Header().Get("Content-Encoding"))
		require.Equal(t, "tiny", w.Body.String())
	})

	t.Run("uncompressible status", func(t *testing.T) {
		handler := func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(sample))
		}

		w := serve(t, NewMiddleware(), handler, map[string]string{
			"Accept-Encoding": "gzip",
		})
		require.Equal(t, http.StatusNotFound, w.Code)
		require.Empty(t, w.Header().Get("Content-Encoding"))
	})

	t.Run("already encoded", func(t *testing.T) {
		handler := func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Encoding", "gzip")
			_, _ = w.Write([]byte(sample))
		}

		w := serve(t, NewMiddleware(), handler, map[string]string{
			"Accept-Encoding": "gzip",
		})
		require.Equal(t, sample, w.Body.String())
	})

	t.Run("unknown coding", func(t *testing.T) {
		w := serve(t, NewMiddleware(), textHandler(sample), map[string]string{
			"Accept-Encoding": "br",
		})
		require.Empty(t, w.Header().Get("Content-Encoding"))
		require.Equal(t, sample, w.Body.String())
	})
}

func TestMiddlewareNotAcceptable(t *testing.T) {
	sample := strings.Repeat("Hello, world! Lorem ipsum! ", 100)

	w := serve(t, NewMiddleware(WithCodecs(NewZSTD())), textHandler(sample), map[string]string{
		"Accept-Encoding": "identity;q=0, gzip",
	})

	require.Equal(t, int(status.NotAcceptable), w.Code)
}

func TestMiddlewareSelection(t *testing.T) {
	sample := strings.Repeat("Hello, world! Lorem ipsum! ", 100)

	t.Run("highest quality wins", func(t *testing.T) {
		w := serve(t, NewMiddleware(), textHandler(sample), map[string]string{
			"Accept-Encoding": "gzip;q=0.5, deflate;q=0.9",
		})
		require.Equal(t, "deflate", w.Header().Get("Content-Encoding"))

		decoded, err := Decompress(w.Body.Bytes(), NewDeflate())
		require.NoError(t, err)
		require.Equal(t, sample, string(decoded))
	})

	t.Run("ties resolve deterministically", func(t *testing.T) {
		w := serve(t, NewMiddleware(), textHandler(sample), map[string]string{
			"Accept-Encoding": "gzip, deflate",
		})
		require.Equal(t, "deflate", w.Header().Get("Content-Encoding"))
	})

	t.Run("refused coding is skipped", func(t *testing.T) {
		w := serve(t, NewMiddleware(), textHandler(sample), map[string]string{
			"Accept-Encoding": "deflate;q=0, gzip;q=0.1",
		})
		require.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
	})
}

func TestMiddlewareOptions(t *testing.T) {
	sample := strings.Repeat("Hello, world! Lorem ipsum! ", 100)

	t.Run("minimum size", func(t *testing.T) {
		m := NewMiddleware(WithMinimumSize(len(sample) + 1))
		w := serve(t, m, textHandler(sample), map[string]string{
			"Accept-Encoding": "gzip",
		})
		require.Empty(t, w.Header().Get("Content-Encoding"))
	})

	t.Run("custom codecs", func(t *testing.T) {
		m := NewMiddleware(WithCodecs(NewZSTD()))
		w := serve(t, m, textHandler(sample), map[string]string{
			"Accept-Encoding": "zstd, gzip",
		})
		require.Equal(t, "zstd", w.Header().Get("Content-Encoding"))

		decoded, err := Decompress(w.Body.Bytes(), NewZSTD())
		require.NoError(t, err)
		require.Equal(t, sample, string(decoded))
	})
}

func TestMiddlewareVary(t *testing.T) {
	sample := strings.Repeat("Hello, world! Lorem ipsum! ", 100)

	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "user-agent")
		_, _ = w.Write([]byte(sample))
	}

	w := serve(t, NewMiddleware(), handler, map[string]string{
		"Accept-Encoding": "gzip",
	})
	require.Equal(t, "user-agent, accept-encoding", w.Header().Get("Vary"))
}
