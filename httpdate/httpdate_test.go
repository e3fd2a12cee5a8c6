package httpdate

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	moment := time.Date(2019, time.December, 9, 7, 44, 23, 0, time.UTC)
	require.Equal(t, "Mon, 09 Dec 2019 07:44:23 GMT", Format(moment))

	t.Run("converts to UTC", func(t *testing.T) {
		shifted := moment.In(time.FixedZone("CET", 3600))
		require.Equal(t, "Mon, 09 Dec 2019 07:44:23 GMT", Format(shifted))
	})
}

func TestParse(t *testing.T) {
	t.Run("imf-fixdate", func(t *testing.T) {
		parsed, err := Parse("Mon, 09 Dec 2019 07:44:23 GMT")
		require.NoError(t, err)
		require.Equal(t, time.Date(2019, time.December, 9, 7, 44, 23, 0, time.UTC), parsed)
	})

	t.Run("rfc850", func(t *testing.T) {
		parsed, err := Parse("Mon, 23-Mar-20 07:36:36 GMT")
		require.NoError(t, err)
		require.Equal(t, time.Date(2020, time.March, 23, 7, 36, 36, 0, time.UTC), parsed)
	})

	t.Run("malformed", func(t *testing.T) {
		for _, value := range []string{"", "yesterday", "Mon, 09 Dec 2019"} {
			_, err := Parse(value)
			require.ErrorIs(t, err, ErrBadDate)
		}
	})
}

func TestRoundTrip(t *testing.T) {
	for _, value := range []string{
		"Mon, 09 Dec 2019 07:44:23 GMT",
		"Fri, 30 Aug 2019 00:00:00 GMT",
		"Thu, 01 Jan 1970 00:00:00 GMT",
	} {
		parsed, err := Parse(value)
		require.NoError(t, err)
		require.Equal(t, value, Format(parsed))
	}
}

func TestNow(t *testing.T) {
	mock := clock.NewMock()
	mock.Set(time.Date(2019, time.December, 9, 7, 44, 23, 0, time.UTC))

	SetClock(mock)
	defer SetClock(clock.New())

	require.Equal(t, "Mon, 09 Dec 2019 07:44:23 GMT", Now())
}
