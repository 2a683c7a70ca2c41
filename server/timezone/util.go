// Package timezone resolves the reference time a recognition request is
// evaluated against.
//
// Requests name an IANA zone and optionally a reference instant; relative
// expressions such as "tomorrow" are resolved on the calendar of that zone.
package timezone

import (
	"time"

	"github.com/pkg/errors"
)

// UTC is the default location.
var UTC = time.UTC

// TimezoneUTC is the UTC timezone identifier.
const TimezoneUTC = "UTC"

// ErrInvalidReference is returned when a reference time cannot be parsed.
var ErrInvalidReference = errors.New("invalid reference time")

// referenceLayouts are tried in order. Layouts without an offset are read
// in the request's location.
var referenceLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	time.DateOnly,
}

// ParseTimezone parses an IANA timezone identifier (e.g., "Asia/Shanghai").
// If the timezone is invalid, returns UTC and an error.
func ParseTimezone(tz string) (*time.Location, error) {
	if tz == "" || tz == TimezoneUTC {
		return UTC, nil
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return UTC, errors.Wrapf(err, "invalid timezone %q", tz)
	}
	return loc, nil
}

// IsValidTimezone checks if a timezone identifier is valid.
func IsValidTimezone(tz string) bool {
	_, err := ParseTimezone(tz)
	return err == nil
}

// ParseReference parses a reference instant. An empty string means now. The
// result is expressed in loc.
func ParseReference(ref string, loc *time.Location, now func() time.Time) (time.Time, error) {
	if loc == nil {
		loc = UTC
	}
	if ref == "" {
		if now == nil {
			return NowInTimezone(loc), nil
		}
		return now().In(loc), nil
	}
	for _, layout := range referenceLayouts {
		if t, err := time.ParseInLocation(layout, ref, loc); err == nil {
			return t.In(loc), nil
		}
	}
	return time.Time{}, errors.Wrapf(ErrInvalidReference, "%q", ref)
}

// StartOfDay returns the start of the day (00:00:00) in the given timezone.
func StartOfDay(t time.Time, tz *time.Location) time.Time {
	if tz == nil {
		tz = UTC
	}
	t = t.In(tz)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, tz)
}

// EndOfDay returns the exclusive end of the day, midnight of the following
// day, in the given timezone.
func EndOfDay(t time.Time, tz *time.Location) time.Time {
	if tz == nil {
		tz = UTC
	}
	t = t.In(tz)
	return time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, tz)
}

// NowInTimezone returns the current time in the given timezone.
func NowInTimezone(tz *time.Location) time.Time {
	if tz == nil {
		tz = UTC
	}
	return time.Now().In(tz)
}
