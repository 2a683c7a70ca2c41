// Package timexutil formats TIMEX strings and calendar values.
//
// Point grammar: YYYY-MM-DD, THH[:MM[:SS]] and their concatenation. Unknown
// components are written with X placeholders (XXXX-12-25, XXXX-WXX-5).
// Interval grammar: (start,end,duration) where duration is PnYnMnWnDTnHnMnS.
package timexutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Layouts used for resolution values.
const (
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04:05"
	DateTimeLayout = "2006-01-02 15:04:05"
	timexDateTime  = "2006-01-02T15:04:05"
)

// Unit codes understood by DurationTimex. MON is used for months to keep it
// apart from minutes.
const (
	UnitYear   = "Y"
	UnitMonth  = "MON"
	UnitWeek   = "W"
	UnitDay    = "D"
	UnitHour   = "H"
	UnitMinute = "M"
	UnitSecond = "S"
)

// LuisDate renders a date timex; negative components become X placeholders.
func LuisDate(year, month, day int) string {
	y := "XXXX"
	if year >= 0 {
		y = fmt.Sprintf("%04d", year)
	}
	m := "XX"
	if month > 0 {
		m = fmt.Sprintf("%02d", month)
	}
	d := "XX"
	if day > 0 {
		d = fmt.Sprintf("%02d", day)
	}
	return y + "-" + m + "-" + d
}

// LuisDateFromTime renders the date part of t.
func LuisDateFromTime(t time.Time) string {
	return t.Format(DateLayout)
}

// LuisTime renders THH, THH:MM or THH:MM:SS, omitting trailing zero parts.
func LuisTime(hour, minute, second int) string {
	s := fmt.Sprintf("T%02d", hour)
	if minute != 0 || second != 0 {
		s += fmt.Sprintf(":%02d", minute)
		if second != 0 {
			s += fmt.Sprintf(":%02d", second)
		}
	}
	return s
}

// LuisTimeFromTime renders the time-of-day of t.
func LuisTimeFromTime(t time.Time) string {
	return LuisTime(t.Hour(), t.Minute(), t.Second())
}

// LuisDateTime renders a fully specified datetime timex.
func LuisDateTime(t time.Time) string {
	return t.Format(timexDateTime)
}

// WeekdayTimex renders XXXX-WXX-n with n in 1..7, Monday first.
func WeekdayTimex(isoWeekday int) string {
	return "XXXX-WXX-" + strconv.Itoa(isoWeekday)
}

// IsoWeekTimex renders YYYY-Www for the ISO week containing t.
func IsoWeekTimex(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// FormatDate renders a resolution date value.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatTime renders a resolution time value.
func FormatTime(t time.Time) string {
	return t.Format(TimeLayout)
}

// FormatDateTime renders a resolution datetime value.
func FormatDateTime(t time.Time) string {
	return t.Format(DateTimeLayout)
}

// FormatNumber renders a float without trailing zeros.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// DurationTimex renders n units as a duration timex.
func DurationTimex(n float64, unit string) string {
	num := FormatNumber(n)
	switch unit {
	case UnitHour, UnitMinute, UnitSecond:
		return "PT" + num + unit
	case UnitMonth:
		return "P" + num + "M"
	default:
		return "P" + num + unit
	}
}

// DurationBetween renders end-begin as PnDTnHnMnS. Spans of whole days are
// rendered in days only.
func DurationBetween(begin, end time.Time) string {
	d := end.Sub(begin)
	if d < 0 {
		d = -d
	}
	total := int64(d / time.Second)
	days := total / 86400
	rest := total % 86400
	hours := rest / 3600
	minutes := rest % 3600 / 60
	seconds := rest % 60

	var b strings.Builder
	b.WriteString("P")
	if days > 0 {
		b.WriteString(strconv.FormatInt(days, 10) + "D")
	}
	if hours > 0 || minutes > 0 || seconds > 0 {
		b.WriteString("T")
		if hours > 0 {
			b.WriteString(strconv.FormatInt(hours, 10) + "H")
		}
		if minutes > 0 {
			b.WriteString(strconv.FormatInt(minutes, 10) + "M")
		}
		if seconds > 0 {
			b.WriteString(strconv.FormatInt(seconds, 10) + "S")
		}
	}
	if b.Len() == 1 {
		return "PT0S"
	}
	return b.String()
}

// RangeTimex renders (begin,end,duration).
func RangeTimex(begin, end, duration string) string {
	return "(" + begin + "," + end + "," + duration + ")"
}

// ToPm shifts the leading hour of a time string by twelve hours. It accepts
// "THH[:MM[:SS]]" timex values and "HH:MM:SS" resolution values.
func ToPm(timeStr string) string {
	hasT := strings.HasPrefix(timeStr, "T")
	if hasT {
		timeStr = timeStr[1:]
	}
	parts := strings.Split(timeStr, ":")
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		if hasT {
			return "T" + timeStr
		}
		return timeStr
	}
	if hour >= 12 {
		hour -= 12
	} else {
		hour += 12
	}
	parts[0] = fmt.Sprintf("%02d", hour)
	timeStr = strings.Join(parts, ":")
	if hasT {
		return "T" + timeStr
	}
	return timeStr
}

// AllStringToPm applies ToPm to every "Thh" occurrence in a timex, skipping the
// T that opens the time part of a duration (PT...).
func AllStringToPm(timex string) string {
	var b strings.Builder
	for i := 0; i < len(timex); i++ {
		c := timex[i]
		if c == 'T' && isHourAt(timex, i) && (i == 0 || timex[i-1] != 'P') {
			b.WriteString(ToPm(timex[i : i+3]))
			i += 2
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

func isHourAt(s string, i int) bool {
	if i+2 >= len(s) {
		return false
	}
	if i+3 < len(s) && strings.IndexByte("HMS", s[i+3]) >= 0 {
		return false
	}
	return isDigit(s[i+1]) && isDigit(s[i+2])
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// ShiftValueToPm shifts the time-of-day component of a resolution value
// ("HH:MM:SS" or "YYYY-MM-DD HH:MM:SS"). Date-only values are returned as is.
func ShiftValueToPm(value string) string {
	if i := strings.LastIndexByte(value, ' '); i >= 0 {
		return value[:i+1] + ToPm(value[i+1:])
	}
	if strings.Contains(value, ":") {
		return ToPm(value)
	}
	return value
}

// IsDateUnit reports whether the unit code spans a day or more.
func IsDateUnit(unit string) bool {
	switch unit {
	case UnitYear, UnitMonth, UnitWeek, UnitDay:
		return true
	}
	return false
}
