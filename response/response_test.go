package response

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"

	"github.com/barewire/webutil/header"
	"github.com/barewire/webutil/status"
	"github.com/barewire/webutil/stream"
)

func TestText(t *testing.T) {
	resp := Text(status.OK, nil, "Hello, world!")

	require.Equal(t, status.OK, resp.Code)
	require.Equal(t, "text/plain", resp.Headers.Value("content-type"))
	require.Equal(t, "13", resp.Headers.Value("content-length"))

	body, err := stream.TextReader(resp.Body)
	require.NoError(t, err)
	require.Equal(t, "Hello, world!", body)
}

func TestBytes(t *testing.T) {
	resp := Bytes(status.OK, nil, []byte{0xde, 0xad, 0xbe, 0xef})

	require.Equal(t, "application/octet-stream", resp.Headers.Value("content-type"))
	require.Equal(t, "4", resp.Headers.Value("content-length"))

	body, err := stream.BytesReader(resp.Body)
	require.NoError(t, err)
	require.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, body)
}

func TestJSON(t *testing.T) {
	resp, err := JSON(status.OK, nil, map[string]string{"greeting": "hello"})
	require.NoError(t, err)
	require.Equal(t, "application/json", resp.Headers.Value("content-type"))

	body, err := stream.TextReader(resp.Body)
	require.NoError(t, err)
	require.JSONEq(t, `{"greeting": "hello"}`, body)

	t.Run("unmarshallable", func(t *testing.T) {
		_, err := JSON(status.OK, nil, make(chan int))
		require.Error(t, err)
	})
}

func TestOptions(t *testing.T) {
	t.Run("content type override", func(t *testing.T) {
		resp := Text(status.OK, nil, "<p>hi</p>", ContentType("text/html"))
		require.Equal(t, "text/html", resp.Headers.Value("content-type"))
	})

	t.Run("chunked delivery", func(t *testing.T) {
		resp := Text(status.OK, nil, "Hello, world!", ChunkSize(5))
		require.Equal(t, -1, resp.Headers.Index("content-length"))

		chunk, err := resp.Body.Fetch()
		require.NoError(t, err)
		require.Equal(t, "Hello", string(chunk))
	})

	t.Run("date stamp", func(t *testing.T) {
		mock := clock.NewMock()
		mock.Set(time.Date(2019, time.December, 9, 7, 44, 23, 0, time.UTC))

		resp := Text(status.OK, nil, "hi", StampDate(), WithClock(mock))
		require.Equal(t, "Mon, 09 Dec 2019 07:44:23 GMT", resp.Headers.Value("date"))
	})
}

func TestCallerHeaders(t *testing.T) {
	h := header.New(1).Add("X-Request-Id", "42")
	resp := Text(status.Created, h, "made")

	require.Equal(t, status.Created, resp.Code)
	require.Equal(t, "42", resp.Headers.Value("x-request-id"))
	require.Equal(t, []string{"X-Request-Id", "content-type", "content-length"}, resp.Headers.Keys())

	// the caller's sequence stays untouched
	require.Len(t, h, 1)
}
