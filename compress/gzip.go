package compress

import (
	"github.com/klauspost/compress/gzip"
)

func NewGZIP() Codec {
	return newBaseCodec("gzip", func() Instance {
		return newBaseInstance(gzip.NewWriter(nil), new(gzip.Reader), genericResetter)
	})
}
