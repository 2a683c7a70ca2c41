package timexutil

import "time"

// IsoWeekday maps time.Weekday to 1..7 with Monday first.
func IsoWeekday(wd time.Weekday) int {
	if wd == time.Sunday {
		return 7
	}
	return int(wd)
}

// DateOf truncates t to midnight in its own location.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// At returns the date of d combined with the given time of day.
func At(d time.Time, hour, minute, second int) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, second, 0, d.Location())
}

// CombineDateTime takes the calendar date of date and the time of day of tod.
func CombineDateTime(date, tod time.Time) time.Time {
	return At(date, tod.Hour(), tod.Minute(), tod.Second())
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// ThisWeekday returns the given ISO weekday inside the Monday-first week that
// contains ref.
func ThisWeekday(ref time.Time, isoWeekday int) time.Time {
	return DateOf(ref).AddDate(0, 0, isoWeekday-IsoWeekday(ref.Weekday()))
}

// NextWeekday returns the given weekday in the week after ref's week.
func NextWeekday(ref time.Time, isoWeekday int) time.Time {
	return ThisWeekday(ref, isoWeekday).AddDate(0, 0, 7)
}

// LastWeekday returns the given weekday in the week before ref's week.
func LastWeekday(ref time.Time, isoWeekday int) time.Time {
	return ThisWeekday(ref, isoWeekday).AddDate(0, 0, -7)
}

// UpcomingWeekday returns the first date on or after ref falling on the weekday.
func UpcomingWeekday(ref time.Time, isoWeekday int) time.Time {
	diff := (isoWeekday - IsoWeekday(ref.Weekday()) + 7) % 7
	return DateOf(ref).AddDate(0, 0, diff)
}

// PreviousWeekday returns the last date on or before ref falling on the weekday.
func PreviousWeekday(ref time.Time, isoWeekday int) time.Time {
	diff := (IsoWeekday(ref.Weekday()) - isoWeekday + 7) % 7
	return DateOf(ref).AddDate(0, 0, -diff)
}

// ValidDate reports whether year-month-day names a real calendar date.
func ValidDate(year, month, day int) bool {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return t.Month() == time.Month(month) && t.Day() == day
}

// NthWeekdayOfMonth returns the nth ISO weekday of the month; n = -1 selects the
// last one. ok is false when the month has no such day.
func NthWeekdayOfMonth(year, month, isoWeekday, n int, loc *time.Location) (time.Time, bool) {
	if n == 0 {
		return time.Time{}, false
	}
	if n < 0 {
		last := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, loc)
		return PreviousWeekday(last, isoWeekday), true
	}
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	d := UpcomingWeekday(first, isoWeekday).AddDate(0, 0, 7*(n-1))
	if int(d.Month()) != month {
		return time.Time{}, false
	}
	return d, true
}

// Easter returns Easter Sunday of the Gregorian year (anonymous algorithm).
func Easter(year int, loc *time.Location) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
}
