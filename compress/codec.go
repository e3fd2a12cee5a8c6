// Package compress provides content-coding codecs and adapters for
// compressing and decompressing body streams, plus a negotiating middleware
// for net/http handlers.
package compress

import (
	"io"

	"github.com/barewire/webutil/stream"
)

type Codec interface {
	// Token returns the content-coding token associated with the codec itself.
	Token() string
	New() Instance
}

type Instance interface {
	Compressor
	Decompressor
}

type Compressor interface {
	io.WriteCloser
	ResetCompressor(w io.Writer)
}

type Decompressor interface {
	stream.Fetcher
	ResetDecompressor(src stream.Fetcher, bufferSize int) error
}
