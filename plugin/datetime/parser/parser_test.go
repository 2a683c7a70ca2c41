package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/datetimex/plugin/datetime/langpack"
	"github.com/hrygo/datetimex/plugin/datetime/model"
	"github.com/hrygo/datetimex/plugin/datetime/timexutil"
)

// testRef is a Friday.
var testRef = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func newTestPack(t *testing.T) *langpack.Pack {
	t.Helper()
	p, err := langpack.NewEnglish()
	require.NoError(t, err)
	return p
}

func span(text string, kind model.EntityKind) model.ExtractResult {
	return model.ExtractResult{Length: len(text), Text: text, Type: kind}
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

// expectation describes a successful single-entity parse.
type expectation struct {
	text   string
	timex  string
	future map[string]string
	past   map[string]string // nil means same as future
}

func runParser(t *testing.T, p Parser, tests []expectation) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			pr := p.Parse(span(tt.text, p.Kind()), testRef)
			require.True(t, pr.Resolved(), "%q did not resolve", tt.text)
			assert.Equal(t, tt.timex, pr.TimexStr)
			assert.Equal(t, tt.future, pr.Value.FutureResolution)
			past := tt.past
			if past == nil {
				past = tt.future
			}
			assert.Equal(t, past, pr.Value.PastResolution)
		})
	}
}

func TestYearOf(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"2024", 2024},
		{"24", 2024},
		{"49", 2049},
		{"50", 1950},
		{"99", 1999},
		{"1999", 1999},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := yearOf(tt.in)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := yearOf("twenty")
	assert.False(t, ok)
}

func TestParseNumber(t *testing.T) {
	p := newTestPack(t)

	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"3", 3, true},
		{"1.5", 1.5, true},
		{"three", 3, true},
		{"A Few", 3, true},
		{"a couple of", 2, true},
		{"", 0, false},
		{"many", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseNumber(p, tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := parseInt(p, "1.5")
	assert.False(t, ok, "fractions are not integers")
}

func TestFuturePast(t *testing.T) {
	leapDay := func(year int) (time.Time, bool) {
		if !timexutil.ValidDate(year, 2, 29) {
			return time.Time{}, false
		}
		return day(year, time.February, 29), true
	}
	future, past, ok := futurePast(testRef, leapDay)
	require.True(t, ok)
	assert.Equal(t, day(2028, time.February, 29), future)
	assert.Equal(t, day(2024, time.February, 29), past)

	today := func(year int) (time.Time, bool) { return day(year, time.March, 15), true }
	future, past, ok = futurePast(testRef, today)
	require.True(t, ok)
	assert.Equal(t, future, past, "today is both the next and the last occurrence")

	never := func(int) (time.Time, bool) { return time.Time{}, false }
	_, _, ok = futurePast(testRef, never)
	assert.False(t, ok)
}

func TestShiftUnits(t *testing.T) {
	p := newTestPack(t)
	start := day(2024, time.January, 31)

	assert.Equal(t, day(2024, time.March, 2), shiftUnits(p, start, 1, timexutil.UnitMonth), "month overflow normalizes")
	assert.Equal(t, day(2025, time.January, 31), shiftUnits(p, start, 1, timexutil.UnitYear))
	assert.Equal(t, day(2024, time.January, 17), shiftUnits(p, start, -2, timexutil.UnitWeek))
	assert.Equal(t, start.Add(90*time.Minute), shiftUnits(p, start, 1.5, timexutil.UnitHour))
	assert.Equal(t, start.Add(12*time.Hour), shiftUnits(p, start, 0.5, timexutil.UnitDay))
}

func TestNewParsers_IncompletePack(t *testing.T) {
	empty := &langpack.Pack{}
	constructors := map[string]func(*langpack.Pack) error{
		"date":           func(p *langpack.Pack) error { _, err := NewDate(p); return err },
		"time":           func(p *langpack.Pack) error { _, err := NewTime(p); return err },
		"duration":       func(p *langpack.Pack) error { _, err := NewDuration(p); return err },
		"dateperiod":     func(p *langpack.Pack) error { _, err := NewDatePeriod(p); return err },
		"timeperiod":     func(p *langpack.Pack) error { _, err := NewTimePeriod(p); return err },
		"datetime":       func(p *langpack.Pack) error { _, err := NewDateTime(p); return err },
		"datetimeperiod": func(p *langpack.Pack) error { _, err := NewDateTimePeriod(p); return err },
		"set":            func(p *langpack.Pack) error { _, err := NewSet(p); return err },
		"holiday":        func(p *langpack.Pack) error { _, err := NewHoliday(p); return err },
	}
	for name, build := range constructors {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, build(nil))
			if name != "holiday" {
				assert.Error(t, build(empty))
			}
		})
	}
}
