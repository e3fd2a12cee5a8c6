package stream

import (
	"io"

	"github.com/indigo-web/chunkedbody"
)

// NewChunkedReader returns a Fetcher producing the decoded payload of a
// chunked transfer encoded source. The trailer flag tells the decoder
// whether trailer fields follow the final chunk. Data past the terminating
// CRLF is discarded.
func NewChunkedReader(src Fetcher, trailer bool) Fetcher {
	return &chunkedReader{
		src:     src,
		parser:  chunkedbody.NewParser(chunkedbody.DefaultSettings()),
		trailer: trailer,
	}
}

type chunkedReader struct {
	src     Fetcher
	parser  *chunkedbody.Parser
	pending []byte
	trailer bool
	srcDone bool
	done    bool
}

func (c *chunkedReader) Fetch() ([]byte, error) {
	if c.done {
		return nil, io.EOF
	}

	for {
		if len(c.pending) == 0 {
			if c.srcDone {
				// the source ended before the final chunk
				return nil, io.ErrUnexpectedEOF
			}

			data, err := c.src.Fetch()
			switch err {
			case nil:
			case io.EOF:
				c.srcDone = true
			default:
				return nil, err
			}

			c.pending = data
			continue
		}

		chunk, extra, err := c.parser.Parse(c.pending, c.trailer)
		c.pending = extra

		switch err {
		case nil:
			if len(chunk) == 0 {
				// only framing was consumed, need more data
				continue
			}

			return chunk, nil
		case io.EOF:
			c.done = true
			return chunk, io.EOF
		default:
			return nil, err
		}
	}
}
