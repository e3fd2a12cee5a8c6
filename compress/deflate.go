package compress

import (
	"io"

	"github.com/klauspost/compress/flate"
)

func NewDeflate() Codec {
	return newBaseCodec("deflate", func() Instance {
		writer, err := flate.NewWriter(nil, 5)
		if err != nil {
			panic(err)
		}

		return newBaseInstance(writer, flate.NewReader(nil), func(r io.Reader, a *fetcherReader) error {
			return r.(flate.Resetter).Reset(a, nil)
		})
	})
}
