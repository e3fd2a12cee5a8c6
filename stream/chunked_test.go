package stream

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChunkedReader(t *testing.T) {
	const encoded = "7\r\nMozilla\r\n9\r\nDeveloper\r\n7\r\nNetwork\r\n0\r\n\r\n"
	const decoded = "MozillaDeveloperNetwork"

	t.Run("single piece", func(t *testing.T) {
		text, err := fetchAll(NewChunkedReader(TextWriter(encoded, -1), false))
		require.NoError(t, err)
		require.Equal(t, decoded, text)
	})

	t.Run("scattered", func(t *testing.T) {
		for chunkSize := 1; chunkSize < len(encoded); chunkSize++ {
			text, err := fetchAll(NewChunkedReader(TextWriter(encoded, chunkSize), false))
			require.NoError(t, err)
			require.Equal(t, decoded, text)
		}
	})

	t.Run("truncated source", func(t *testing.T) {
		src := NewChunkedReader(TextWriter("7\r\nMozilla\r\n9\r\nDev", -1), false)

		var err error
		for err == nil {
			_, err = src.Fetch()
		}

		require.Equal(t, io.ErrUnexpectedEOF, err)
	})

	t.Run("exhausted", func(t *testing.T) {
		src := NewChunkedReader(TextWriter(encoded, -1), false)
		_, err := fetchAll(src)
		require.NoError(t, err)

		data, err := src.Fetch()
		require.Empty(t, data)
		require.Equal(t, io.EOF, err)
	})
}
