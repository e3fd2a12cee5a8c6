package compress

import (
	"bytes"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/barewire/webutil/header"
	"github.com/barewire/webutil/status"
)

// DefaultMinimumSize is the body size below which no compression is
// attempted.
const DefaultMinimumSize = 512

// Middleware compresses successful responses when the client asks for it.
// The downstream response is buffered entirely before the coding decision
// is made, as the decision depends on the body size.
type Middleware struct {
	codecs  map[string]Codec
	minSize int
	log     *zap.Logger
}

type Option func(*Middleware)

// WithMinimumSize overrides DefaultMinimumSize.
func WithMinimumSize(n int) Option {
	return func(m *Middleware) {
		m.minSize = n
	}
}

// WithCodecs replaces the default codec set (gzip and deflate).
func WithCodecs(codecs ...Codec) Option {
	return func(m *Middleware) {
		m.codecs = make(map[string]Codec, len(codecs))
		for _, c := range codecs {
			m.codecs[c.Token()] = c
		}
	}
}

// WithLogger attaches a logger. The default one discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(m *Middleware) {
		m.log = log
	}
}

func NewMiddleware(opts ...Option) *Middleware {
	m := &Middleware{
		minSize: DefaultMinimumSize,
		log:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.codecs == nil {
		WithCodecs(NewGZIP(), NewDeflate())(m)
	}

	return m
}

// Wrap returns a handler delivering next's responses compressed, whenever
// that is both acceptable to the client and worth the effort.
func (m *Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := newRecorder()
		next.ServeHTTP(rec, r)
		m.deliver(w, r, rec)
	})
}

func (m *Middleware) deliver(w http.ResponseWriter, r *http.Request, rec *recorder) {
	if !status.IsSuccessful(status.Code(rec.code)) {
		rec.flush(w)
		return
	}

	acceptEncoding, err := header.AcceptEncoding(header.FromMap(r.Header), true)
	if err != nil {
		if !errors.Is(err, header.ErrNoHeader) {
			m.log.Warn("malformed accept-encoding", zap.Error(err))
		}

		acceptEncoding = map[string]float64{"identity": 1}
	}

	respHeaders := header.FromMap(rec.header)

	contentEncoding, err := header.ContentEncoding(respHeaders, false)
	if err != nil {
		contentEncoding = []string{"identity"}
	}

	if !m.acceptable(acceptEncoding, contentEncoding) {
		http.Error(w, string(status.Text(status.NotAcceptable)), int(status.NotAcceptable))
		return
	}

	if !m.desirable(acceptEncoding, contentEncoding, rec.body.Len()) {
		rec.flush(w)
		return
	}

	encoding := m.selectEncoding(acceptEncoding)

	compressed, err := Compress(rec.body.Bytes(), m.codecs[encoding])
	if err != nil {
		m.log.Error("compression failed",
			zap.String("encoding", encoding), zap.Error(err))
		rec.flush(w)

		return
	}

	vary, _ := header.Vary(respHeaders)
	if !containsFold(vary, "accept-encoding") {
		vary = append(vary, "accept-encoding")
	}

	out := w.Header()
	for key, values := range rec.header {
		switch {
		case strings.EqualFold(key, "content-length"),
			strings.EqualFold(key, "content-encoding"),
			strings.EqualFold(key, "vary"):
		default:
			out[key] = values
		}
	}

	out.Set("Content-Encoding", encoding)
	out.Set("Content-Length", strconv.Itoa(len(compressed)))
	out.Set("Vary", strings.Join(vary, ", "))

	w.WriteHeader(rec.code)
	_, _ = w.Write(compressed)

	m.log.Debug("compressed response",
		zap.String("encoding", encoding),
		zap.Int("original_size", rec.body.Len()),
		zap.Int("compressed_size", len(compressed)))
}

// acceptable reports whether some coding can satisfy the request. When the
// identity coding is explicitly refused, one of the other acceptable codings
// must either be available or already applied to the content.
func (m *Middleware) acceptable(acceptEncoding map[string]float64, contentEncoding []string) bool {
	if quality, found := acceptEncoding["identity"]; !found || quality != 0 {
		return true
	}

	for token, quality := range acceptEncoding {
		if quality == 0 || token == "identity" {
			continue
		}

		if _, found := m.codecs[token]; found {
			return true
		}

		if containsFold(contentEncoding, token) {
			return true
		}
	}

	return false
}

// desirable reports whether compressing is worth it: the body must reach the
// minimum size, must not already carry a coding the client accepts, and an
// acceptable codec must be available.
func (m *Middleware) desirable(acceptEncoding map[string]float64, contentEncoding []string, contentLength int) bool {
	if contentLength < m.minSize {
		return false
	}

	available := false

	for token, quality := range acceptEncoding {
		if quality == 0 || token == "identity" {
			continue
		}

		for _, current := range contentEncoding {
			if current != "identity" && strings.EqualFold(current, token) {
				// already encoded
				return false
			}
		}

		if _, found := m.codecs[token]; found {
			available = true
		}
	}

	return available
}

// selectEncoding picks the acceptable coding with the highest quality among
// the available codecs. Ties resolve lexicographically to keep the choice
// deterministic.
func (m *Middleware) selectEncoding(acceptEncoding map[string]float64) string {
	type candidate struct {
		token   string
		quality float64
	}

	var candidates []candidate

	for token, quality := range acceptEncoding {
		if quality == 0 || token == "identity" {
			continue
		}

		if _, found := m.codecs[token]; found {
			candidates = append(candidates, candidate{token, quality})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].quality != candidates[j].quality {
			return candidates[i].quality > candidates[j].quality
		}

		return candidates[i].token < candidates[j].token
	})

	return candidates[0].token
}

// recorder buffers the downstream response until the coding decision is
// made.
type recorder struct {
	header http.Header
	body   bytes.Buffer
	code   int
}

func newRecorder() *recorder {
	return &recorder{
		header: make(http.Header),
		code:   http.StatusOK,
	}
}

func (r *recorder) Header() http.Header {
	return r.header
}

func (r *recorder) WriteHeader(code int) {
	r.code = code
}

func (r *recorder) Write(b []byte) (int, error) {
	return r.body.Write(b)
}

func (r *recorder) flush(w http.ResponseWriter) {
	out := w.Header()
	for key, values := range r.header {
		out[key] = values
	}

	w.WriteHeader(r.code)
	_, _ = w.Write(r.body.Bytes())
}

func containsFold(strs []string, key string) bool {
	for _, str := range strs {
		if strings.EqualFold(str, key) {
			return true
		}
	}

	return false
}
