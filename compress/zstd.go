package compress

import (
	"github.com/klauspost/compress/zstd"
)

func NewZSTD() Codec {
	return newBaseCodec("zstd", func() Instance {
		// concurrency of 1 keeps the coding synchronous, so instances
		// spawn no goroutines and need no teardown beyond Close
		w, err := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
		if err != nil {
			panic(err)
		}

		r, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		if err != nil {
			panic(err)
		}

		return newBaseInstance(w, r, genericResetter)
	})
}
