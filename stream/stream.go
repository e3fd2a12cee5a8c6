// Package stream adapts byte and text buffers to and from pull-based chunk
// sequences.
//
// A body is modelled as a Fetcher: a finite, non-restartable sequence of
// chunks, consumed exactly once. A Fetcher may return the final chunk
// together with io.EOF, so the data of every fetch must be consumed before
// the error is inspected.
package stream

import (
	"io"

	"github.com/indigo-web/utils/uf"
)

// Fetcher is the body iteration protocol. Fetch returns the next available
// piece of the body. The returned slice stays valid only until the next call.
type Fetcher interface {
	Fetch() ([]byte, error)
}

// BytesReader drains the source into a single buffer.
func BytesReader(src Fetcher) ([]byte, error) {
	var buf []byte

	for {
		data, err := src.Fetch()
		buf = append(buf, data...)
		switch err {
		case nil:
		case io.EOF:
			return buf, nil
		default:
			return nil, err
		}
	}
}

// TextReader drains the source into a string.
func TextReader(src Fetcher) (string, error) {
	buf, err := BytesReader(src)
	return uf.B2S(buf), err
}

// BytesWriter returns a Fetcher over the buffer, producing chunks of at most
// chunkSize bytes. A chunkSize of -1 produces the whole buffer at once. The
// final chunk arrives together with io.EOF.
func BytesWriter(buf []byte, chunkSize int) Fetcher {
	if chunkSize <= 0 {
		chunkSize = len(buf)
	}

	return &bytesWriter{buf: buf, chunkSize: chunkSize}
}

// TextWriter behaves as BytesWriter for strings.
func TextWriter(text string, chunkSize int) Fetcher {
	return BytesWriter(uf.S2B(text), chunkSize)
}

type bytesWriter struct {
	buf       []byte
	chunkSize int
	done      bool
}

func (b *bytesWriter) Fetch() ([]byte, error) {
	if b.done {
		return nil, io.EOF
	}

	if len(b.buf) <= b.chunkSize {
		b.done = true
		return b.buf, io.EOF
	}

	chunk := b.buf[:b.chunkSize]
	b.buf = b.buf[b.chunkSize:]

	return chunk, nil
}

// NewReader adapts a Fetcher to the io.Reader interface.
func NewReader(src Fetcher) io.Reader {
	return &reader{fetcher: src}
}

type reader struct {
	fetcher Fetcher
	err     error
	data    []byte
}

func (r *reader) Read(b []byte) (n int, err error) {
	if len(r.data) == 0 {
		if r.err != nil {
			return 0, r.err
		}

		r.data, r.err = r.fetcher.Fetch()
	}

	n = copy(b, r.data)
	r.data = r.data[n:]
	if len(r.data) == 0 {
		err = r.err
	}

	return n, err
}

// NewFetcher adapts an io.Reader to the Fetcher interface, reading at most
// bufSize bytes per fetch. The produced chunks share a single buffer.
func NewFetcher(r io.Reader, bufSize int) Fetcher {
	return &readerFetcher{r: r, buf: make([]byte, bufSize)}
}

type readerFetcher struct {
	r   io.Reader
	buf []byte
}

func (r *readerFetcher) Fetch() ([]byte, error) {
	n, err := r.r.Read(r.buf)
	return r.buf[:n], err
}
