// Package httpdate formats and parses timestamps carried in HTTP headers.
//
// Stamps are always produced in the RFC 7231 IMF-fixdate form. Parsing
// additionally accepts the obsolete RFC 850 form still emitted by some
// legacy user-agents, e.g. in set-cookie Expires attributes.
package httpdate

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

const (
	// RFC 7231, section 7.1.1.1: Date/Time Formats
	imfFixdate = "Mon, 02 Jan 2006 15:04:05 GMT"
	// obsolete RFC 850 form with a dashed date and a two-digit year,
	// e.g. "Mon, 23-Mar-20 07:36:36 GMT"
	rfc850Date = "Mon, 02-Jan-06 15:04:05 GMT"
)

var ErrBadDate = errors.New("malformed HTTP date")

var clk clock.Clock = clock.New()

// SetClock replaces the time source used by Now. Intended for tests, which
// install clock.NewMock() in order to control the produced stamps.
func SetClock(c clock.Clock) {
	clk = c
}

// Format renders the time as an IMF-fixdate stamp. The time is converted
// to UTC first, as the format permits GMT only.
func Format(t time.Time) string {
	return t.UTC().Format(imfFixdate)
}

// Now returns the current time as an IMF-fixdate stamp.
func Now() string {
	return Format(clk.Now())
}

// TryParse parses an IMF-fixdate stamp, falling back to the RFC 850 form.
// Returns false if the value matches neither.
func TryParse(value string) (time.Time, bool) {
	if t, err := time.Parse(imfFixdate, value); err == nil {
		return t, true
	}

	t, err := time.Parse(rfc850Date, value)
	if err != nil {
		return time.Time{}, false
	}

	// two-digit years are uniformly 2000-based, unlike time.Parse's
	// 1969-2068 window
	if t.Year() < 2000 {
		t = t.AddDate(100, 0, 0)
	}

	return t, true
}

// Parse behaves exactly as TryParse, except the failure is reported as
// an error carrying the malformed value.
func Parse(value string) (time.Time, error) {
	t, ok := TryParse(value)
	if !ok {
		return time.Time{}, errors.Wrapf(ErrBadDate, "parse %q", value)
	}

	return t, nil
}
