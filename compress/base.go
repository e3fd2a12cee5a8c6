package compress

import (
	"io"

	"github.com/barewire/webutil/stream"
)

var _ Codec = baseCodec{}

type baseCodec struct {
	token   string
	newInst func() Instance
}

func newBaseCodec(token string, newInst func() Instance) baseCodec {
	return baseCodec{
		token:   token,
		newInst: newInst,
	}
}

func (b baseCodec) Token() string {
	return b.token
}

func (b baseCodec) New() Instance {
	return b.newInst()
}

var _ Instance = new(baseInstance)

type (
	decoderResetter = func(io.Reader, *fetcherReader) error

	writeResetter interface {
		io.WriteCloser
		Reset(dst io.Writer)
	}
)

// baseInstance carries a fresh compressor/decompressor pair. The pair is
// created per instance, so instances may serve concurrent messages.
type baseInstance struct {
	reset   decoderResetter
	adapter *fetcherReader
	w       writeResetter // compressor
	r       io.Reader     // decompressor
	dst     io.Closer
	buff    []byte
}

func newBaseInstance(encoder writeResetter, decoder io.Reader, reset decoderResetter) *baseInstance {
	return &baseInstance{
		reset:   reset,
		adapter: new(fetcherReader),
		w:       encoder,
		r:       decoder,
	}
}

func (b *baseInstance) ResetCompressor(w io.Writer) {
	b.w.Reset(w)
	b.dst = nil

	if c, ok := w.(io.Closer); ok {
		b.dst = c
	}
}

func (b *baseInstance) Write(p []byte) (n int, err error) {
	return b.w.Write(p)
}

func (b *baseInstance) Close() error {
	if err := b.w.Close(); err != nil {
		return err
	}

	if b.dst != nil {
		return b.dst.Close()
	}

	return nil
}

func (b *baseInstance) ResetDecompressor(src stream.Fetcher, bufferSize int) error {
	if cap(b.buff) < bufferSize {
		b.buff = make([]byte, bufferSize)
	}

	b.adapter.Reset(src)

	return b.reset(b.r, b.adapter)
}

func (b *baseInstance) Fetch() ([]byte, error) {
	n, err := b.r.Read(b.buff)
	return b.buff[:n], err
}

func genericResetter(r io.Reader, adapter *fetcherReader) error {
	type resetter interface {
		Reset(r io.Reader) error
	}

	if reset, ok := r.(resetter); ok {
		return reset.Reset(adapter)
	}

	return nil
}

// fetcherReader is a resettable io.Reader face of a stream.Fetcher, feeding
// the decompressors.
type fetcherReader struct {
	fetcher stream.Fetcher
	err     error
	data    []byte
}

func (f *fetcherReader) Read(b []byte) (n int, err error) {
	if len(f.data) == 0 {
		if f.err != nil {
			return 0, f.err
		}

		f.data, f.err = f.fetcher.Fetch()
	}

	n = copy(b, f.data)
	f.data = f.data[n:]
	if len(f.data) == 0 {
		err = f.err
	}

	return n, err
}

func (f *fetcherReader) Reset(fetcher stream.Fetcher) {
	*f = fetcherReader{fetcher: fetcher}
}
