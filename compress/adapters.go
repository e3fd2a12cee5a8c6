package compress

import (
	"bytes"
	"io"

	"github.com/barewire/webutil/stream"
)

// DefaultBufferSize is the decompression buffer size used when the caller
// has no better guess.
const DefaultBufferSize = 4096

// NewCompressed returns a Fetcher producing the compressed rendition of the
// source stream. The coding is flushed when the source reports io.EOF, so
// the final chunk carries the stream trailer.
func NewCompressed(src stream.Fetcher, c Codec) stream.Fetcher {
	inst := c.New()
	out := new(bytes.Buffer)
	inst.ResetCompressor(out)

	return &compressed{src: src, compressor: inst, out: out}
}

type compressed struct {
	src        stream.Fetcher
	compressor Compressor
	out        *bytes.Buffer
	chunk      []byte
	done       bool
}

func (c *compressed) Fetch() ([]byte, error) {
	if c.done {
		return nil, io.EOF
	}

	for {
		data, err := c.src.Fetch()
		if len(data) > 0 {
			if _, werr := c.compressor.Write(data); werr != nil {
				return nil, werr
			}
		}

		switch err {
		case nil:
		case io.EOF:
			c.done = true
			if cerr := c.compressor.Close(); cerr != nil {
				return nil, cerr
			}

			return c.drain(), io.EOF
		default:
			return nil, err
		}

		if c.out.Len() > 0 {
			return c.drain(), nil
		}
	}
}

// drain copies the accumulated output out of the buffer, so the buffer can
// keep collecting while the chunk is being consumed.
func (c *compressed) drain() []byte {
	c.chunk = append(c.chunk[:0], c.out.Bytes()...)
	c.out.Reset()

	return c.chunk
}

// NewDecompressed returns a Fetcher producing the decoded rendition of the
// source stream, reading at most bufferSize bytes per fetch.
func NewDecompressed(src stream.Fetcher, c Codec, bufferSize int) (stream.Fetcher, error) {
	inst := c.New()
	if err := inst.ResetDecompressor(src, bufferSize); err != nil {
		return nil, err
	}

	return inst, nil
}

// Compress encodes the buffer at once.
func Compress(buf []byte, c Codec) ([]byte, error) {
	return stream.BytesReader(NewCompressed(stream.BytesWriter(buf, -1), c))
}

// Decompress decodes the buffer at once.
func Decompress(buf []byte, c Codec) ([]byte, error) {
	src, err := NewDecompressed(stream.BytesWriter(buf, -1), c, DefaultBufferSize)
	if err != nil {
		return nil, err
	}

	return stream.BytesReader(src)
}
