// Package response assembles complete responses out of a status code,
// headers, and a body stream.
package response

import (
	"strconv"

	"github.com/benbjohnson/clock"
	json "github.com/json-iterator/go"

	"github.com/barewire/webutil/header"
	"github.com/barewire/webutil/httpdate"
	"github.com/barewire/webutil/status"
	"github.com/barewire/webutil/stream"
)

type Response struct {
	Code    status.Code
	Headers header.Headers
	Body    stream.Fetcher
}

type options struct {
	contentType string
	chunkSize   int
	clock       clock.Clock
	stampDate   bool
}

type Option func(*options)

// ContentType overrides the default content-type of the helper used.
func ContentType(mime string) Option {
	return func(o *options) {
		o.contentType = mime
	}
}

// ChunkSize makes the body arrive in pieces of at most n bytes instead of a
// single one. The content-length header is then omitted, as chunked delivery
// is assumed.
func ChunkSize(n int) Option {
	return func(o *options) {
		o.chunkSize = n
	}
}

// StampDate appends a date header carrying the current time.
func StampDate() Option {
	return func(o *options) {
		o.stampDate = true
	}
}

// WithClock overrides the time source consulted by StampDate. Tests pass
// clock.NewMock() to get reproducible stamps.
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// Bytes builds a response delivering the buffer, application/octet-stream
// by default.
func Bytes(code status.Code, h header.Headers, buf []byte, opts ...Option) Response {
	o := makeOptions("application/octet-stream", opts)

	return Response{
		Code:    code,
		Headers: finalize(h, o, len(buf)),
		Body:    stream.BytesWriter(buf, o.chunkSize),
	}
}

// Text builds a response delivering the string, text/plain by default.
func Text(code status.Code, h header.Headers, text string, opts ...Option) Response {
	o := makeOptions("text/plain", opts)

	return Response{
		Code:    code,
		Headers: finalize(h, o, len(text)),
		Body:    stream.TextWriter(text, o.chunkSize),
	}
}

// JSON builds a response delivering the marshalled object, application/json
// by default.
func JSON(code status.Code, h header.Headers, obj any, opts ...Option) (Response, error) {
	buf, err := json.Marshal(obj)
	if err != nil {
		return Response{}, err
	}

	o := makeOptions("application/json", opts)

	return Response{
		Code:    code,
		Headers: finalize(h, o, len(buf)),
		Body:    stream.BytesWriter(buf, o.chunkSize),
	}, nil
}

func makeOptions(contentType string, opts []Option) options {
	o := options{
		contentType: contentType,
		chunkSize:   -1,
		clock:       clock.New(),
	}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// finalize copies the caller's headers and appends the derived ones, leaving
// the original sequence untouched.
func finalize(h header.Headers, o options, size int) header.Headers {
	headers := append(header.New(len(h)+3), h...)
	headers = headers.Add("content-type", o.contentType)

	if o.chunkSize <= 0 {
		headers = headers.Add("content-length", strconv.Itoa(size))
	}

	if o.stampDate {
		headers = headers.Add("date", httpdate.Format(o.clock.Now()))
	}

	return headers
}
