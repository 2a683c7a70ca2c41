// Package langpack defines the language-pack contract consumed by the datetime
// extractors and parsers, and builds packs from declarative definitions.
//
// A pack is built once per locale and is read-only afterwards, so a single
// instance can be shared by any number of concurrent callers.
package langpack

import (
	"regexp"
	"sync"

	"golang.org/x/text/language"
)

// Cue is a modifier pattern compiled for both directions: End matches the cue
// at the end of the text preceding a span, Begin matches it at the start of a
// span's own text.
type Cue struct {
	Begin *regexp.Regexp
	End   *regexp.Regexp
}

// Matched reports whether the cue was compiled.
func (c Cue) Matched() bool {
	return c.Begin != nil && c.End != nil
}

// TimeOfDay is a canonical named window such as "morning".
type TimeOfDay struct {
	Timex     string
	BeginHour int
	EndHour   int
	EndMinute int
	// Comment is set to early/late when the window was narrowed.
	Comment string
}

// HolidayRule computes a holiday's date for a given year. Exactly one of the
// shapes is used: fixed Month/Day, the Nth Weekday of Month (Nth = -1 for the
// last one), or EasterOffset days from Easter Sunday.
type HolidayRule struct {
	Month        int
	Day          int
	Weekday      int
	Nth          int
	Easter       bool
	EasterOffset int
}

// AmbiguityFilter removes a result whose text matches Pattern when Exclusion
// matches a span of the input that encloses it.
type AmbiguityFilter struct {
	Pattern   *regexp.Regexp
	Exclusion *regexp.Regexp
}

// DateConfig holds the date extractor and parser capabilities. Ago and Later
// are matched after a duration, In before it.
type DateConfig struct {
	DateRegexes          []*regexp.Regexp
	SpecialDayRegex      *regexp.Regexp
	RelativeWeekdayRegex *regexp.Regexp
	WeekdayRegex         *regexp.Regexp
	WeekdayOfMonthRegex  *regexp.Regexp
	Ago                  Cue
	Later                Cue
	In                   Cue
}

// TimeConfig holds the time extractor and parser capabilities.
type TimeConfig struct {
	TimeRegexes []*regexp.Regexp
	// AtHourRegex finds "at 3"; the hour group holds the clock.
	AtHourRegex *regexp.Regexp
}

// DurationConfig holds the duration capabilities.
type DurationConfig struct {
	DurationRegex *regexp.Regexp
}

// DatePeriodConfig holds the date-period capabilities.
type DatePeriodConfig struct {
	MonthRegex         *regexp.Regexp
	MonthYearRegex     *regexp.Regexp
	YearRegex          *regexp.Regexp
	RelativeUnitRegex  *regexp.Regexp
	NumberUnitRegex    *regexp.Regexp
	MonthDayRangeRegex *regexp.Regexp
}

// TimePeriodConfig holds the time-period capabilities.
type TimePeriodConfig struct {
	TimeOfDayRegex *regexp.Regexp
	PureNumRegexes []*regexp.Regexp
}

// DateTimeConfig holds the datetime capabilities. ConnectorRegex must match
// the whole text between a date and a time.
type DateTimeConfig struct {
	NowRegex       *regexp.Regexp
	ConnectorRegex *regexp.Regexp
}

// DateTimePeriodConfig holds the datetime-period capabilities.
type DateTimePeriodConfig struct {
	SpecificTimeOfDayRegex       *regexp.Regexp
	PeriodTimeOfDayWithDateRegex *regexp.Regexp
	NumberUnitRegex              *regexp.Regexp
	// HourRangeRegex finds a bare hour range ("3 to 5"), read only beside a date.
	HourRangeRegex *regexp.Regexp
	// DateConnectorRegex matches the text allowed between a date and a time
	// period or time of day ("", "on", ",", "in the").
	DateConnectorRegex *regexp.Regexp
	// PrefixDay is the early/mid/late cue in front of a date ("later today").
	PrefixDay Cue
}

// SetConfig holds the set capabilities.
type SetConfig struct {
	EachUnitRegex    *regexp.Regexp
	PeriodicRegex    *regexp.Regexp
	EachWeekdayRegex *regexp.Regexp
	Periodic         map[string]string
}

// HolidayConfig holds the holiday capabilities.
type HolidayConfig struct {
	HolidayRegex *regexp.Regexp
	Holidays     map[string]HolidayRule
}

// RangeConfig holds the tokens that join two time points into a period.
// ConnectorRegex must match the whole text between the two points of a
// "between X and Y" range.
type RangeConfig struct {
	From           Cue
	Between        Cue
	Till           Cue
	ConnectorRegex *regexp.Regexp
}

// MergedConfig holds the merged extractor and parser capabilities.
type MergedConfig struct {
	Before      Cue
	After       Cue
	Until       Cue
	SincePrefix Cue
	SinceSuffix Cue
	Around      Cue
	Equal       Cue
	// AmbiguousRangePrefix marks since-prefix cues that may instead open a
	// "from X to Y" range.
	AmbiguousRangePrefix *regexp.Regexp
	AmbiguityFilters     []AmbiguityFilter
}

// Pack is an immutable, compiled language pack. It must not be copied after
// Build.
type Pack struct {
	Culture language.Tag

	Date           DateConfig
	Time           TimeConfig
	Duration       DurationConfig
	DatePeriod     DatePeriodConfig
	TimePeriod     TimePeriodConfig
	DateTime       DateTimeConfig
	DateTimePeriod DateTimePeriodConfig
	Set            SetConfig
	Holiday        HolidayConfig
	Range          RangeConfig
	Merged         MergedConfig

	DayOfWeek    map[string]int
	MonthOfYear  map[string]int
	UnitMap      map[string]string
	UnitValueMap map[string]int64
	CardinalMap  map[string]int
	OrdinalMap   map[string]int
	SwiftDays    map[string]int
	SwiftPrefix  map[string]int
	CardinalLast []string
	TimesOfDay   map[string]TimeOfDay
	EarlyWords   []string
	LateWords    []string

	Rules Rules

	exact sync.Map
}
