// Package rrule renders recognized recurrences as iCalendar RFC 5545
// recurrence rules.
package rrule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Frequency represents the recurrence frequency.
type Frequency string

const (
	Secondly Frequency = "SECONDLY"
	Minutely Frequency = "MINUTELY"
	Hourly   Frequency = "HOURLY"
	Daily    Frequency = "DAILY"
	Weekly   Frequency = "WEEKLY"
	Monthly  Frequency = "MONTHLY"
	Yearly   Frequency = "YEARLY"
)

// Weekday represents the day of week for recurrence.
type Weekday string

const (
	Monday    Weekday = "MO"
	Tuesday   Weekday = "TU"
	Wednesday Weekday = "WE"
	Thursday  Weekday = "TH"
	Friday    Weekday = "FR"
	Saturday  Weekday = "SA"
	Sunday    Weekday = "SU"
)

// isoWeekdays is indexed by ISO weekday number, Monday = 1.
var isoWeekdays = [...]Weekday{"", Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// ErrUnsupportedTimex is returned for timex values that are not recurrences.
var ErrUnsupportedTimex = errors.New("timex is not a recurrence")

// Rule represents a recurrence rule.
type Rule struct {
	Frequency Frequency // FREQ
	Interval  int       // INTERVAL (default 1)
	ByDay     []Weekday // BYDAY
	ByHour    []int     // BYHOUR
	ByMinute  []int     // BYMINUTE
	BySecond  []int     // BYSECOND
}

var (
	durationTimex = regexp.MustCompile(`^P(T?)(\d+)([YMWDHS])$`)
	weekdayTimex  = regexp.MustCompile(`^XXXX-WXX-([1-7])(T.*)?$`)
	clockTimex    = regexp.MustCompile(`^T(\d{2})(?::(\d{2}))?(?::(\d{2}))?$`)
)

// FromTimex converts a set timex to a rule:
//
//	P1D          FREQ=DAILY
//	P2W          FREQ=WEEKLY;INTERVAL=2
//	PT1H         FREQ=HOURLY
//	XXXX-WXX-1   FREQ=WEEKLY;BYDAY=MO
//	XXXX-WXX-1T09 FREQ=WEEKLY;BYDAY=MO;BYHOUR=9
//	T15:30       FREQ=DAILY;BYHOUR=15;BYMINUTE=30
func FromTimex(timex string) (*Rule, error) {
	if m := durationTimex.FindStringSubmatch(timex); m != nil {
		interval, err := strconv.Atoi(m[2])
		if err != nil || interval < 1 {
			return nil, errors.Wrapf(ErrUnsupportedTimex, "interval of %q", timex)
		}
		freq, ok := frequencyOf(m[1] == "T", m[3])
		if !ok {
			return nil, errors.Wrapf(ErrUnsupportedTimex, "unit of %q", timex)
		}
		return &Rule{Frequency: freq, Interval: interval}, nil
	}

	if m := weekdayTimex.FindStringSubmatch(timex); m != nil {
		wd, _ := strconv.Atoi(m[1])
		rule := &Rule{Frequency: Weekly, Interval: 1, ByDay: []Weekday{isoWeekdays[wd]}}
		if m[2] != "" && !rule.setClock(m[2]) {
			return nil, errors.Wrapf(ErrUnsupportedTimex, "time of %q", timex)
		}
		return rule, nil
	}

	rule := &Rule{Frequency: Daily, Interval: 1}
	if !rule.setClock(timex) {
		return nil, errors.Wrapf(ErrUnsupportedTimex, "%q", timex)
	}
	return rule, nil
}

func frequencyOf(timeUnit bool, unit string) (Frequency, bool) {
	if timeUnit {
		switch unit {
		case "H":
			return Hourly, true
		case "M":
			return Minutely, true
		case "S":
			return Secondly, true
		}
		return "", false
	}
	switch unit {
	case "D":
		return Daily, true
	case "W":
		return Weekly, true
	case "M":
		return Monthly, true
	case "Y":
		return Yearly, true
	}
	return "", false
}

func (r *Rule) setClock(timex string) bool {
	m := clockTimex.FindStringSubmatch(timex)
	if m == nil {
		return false
	}
	hour, _ := strconv.Atoi(m[1])
	r.ByHour = []int{hour}
	if m[2] != "" {
		minute, _ := strconv.Atoi(m[2])
		r.ByMinute = []int{minute}
	}
	if m[3] != "" {
		second, _ := strconv.Atoi(m[3])
		r.BySecond = []int{second}
	}
	return true
}

// String returns the RRULE string representation.
func (r *Rule) String() string {
	parts := []string{fmt.Sprintf("FREQ=%s", r.Frequency)}
	if r.Interval > 1 {
		parts = append(parts, fmt.Sprintf("INTERVAL=%d", r.Interval))
	}
	if len(r.ByDay) > 0 {
		days := make([]string, len(r.ByDay))
		for i, day := range r.ByDay {
			days[i] = string(day)
		}
		parts = append(parts, "BYDAY="+strings.Join(days, ","))
	}
	if len(r.ByHour) > 0 {
		parts = append(parts, "BYHOUR="+intListToString(r.ByHour))
	}
	if len(r.ByMinute) > 0 {
		parts = append(parts, "BYMINUTE="+intListToString(r.ByMinute))
	}
	if len(r.BySecond) > 0 {
		parts = append(parts, "BYSECOND="+intListToString(r.BySecond))
	}
	return strings.Join(parts, ";")
}

func intListToString(nums []int) string {
	strs := make([]string, len(nums))
	for i, num := range nums {
		strs[i] = strconv.Itoa(num)
	}
	return strings.Join(strs, ",")
}
