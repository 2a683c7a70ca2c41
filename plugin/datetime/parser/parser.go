// Package parser resolves extracted spans into TIMEX strings and calendar
// values. Every parser reports both a future and a past interpretation; the
// two are equal for absolute expressions.
package parser

import (
	"strconv"
	"strings"
	"time"

	"github.com/hrygo/datetimex/plugin/datetime/langpack"
	"github.com/hrygo/datetimex/plugin/datetime/model"
	"github.com/hrygo/datetimex/plugin/datetime/timexutil"
)

// Parser resolves spans of a single entity kind.
type Parser interface {
	Kind() model.EntityKind
	Parse(er model.ExtractResult, ref time.Time) *model.ParseResult
}

func resolved(er model.ExtractResult, res *model.ResolutionResult) *model.ParseResult {
	res.Success = true
	pr := model.NewParseResult(er)
	pr.Value = res
	pr.TimexStr = res.Timex
	return pr
}

func unresolved(er model.ExtractResult) *model.ParseResult {
	pr := model.NewParseResult(er)
	pr.Value = &model.ResolutionResult{}
	return pr
}

// within re-bases a span found inside er.Text onto the original input.
func within(er model.ExtractResult, inner model.ExtractResult) model.ExtractResult {
	inner.Start += er.Start
	return inner
}

// parseNumber reads digits ("3", "1.5") or a cardinal word ("three", "a few").
func parseNumber(p *langpack.Pack, s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, true
	}
	if v, ok := p.CardinalMap[langpack.Normalize(s)]; ok {
		return float64(v), true
	}
	return 0, false
}

func parseInt(p *langpack.Pack, s string) (int, bool) {
	v, ok := parseNumber(p, s)
	if !ok || v != float64(int(v)) {
		return 0, false
	}
	return int(v), true
}

func monthOf(p *langpack.Pack, m langpack.Match) (int, bool) {
	if name := m.Group("monthname"); name != "" {
		v, ok := p.MonthOfYear[langpack.Normalize(strings.TrimSuffix(name, "."))]
		return v, ok
	}
	v, err := strconv.Atoi(m.Group("month"))
	return v, err == nil && v >= 1 && v <= 12
}

func weekdayOf(p *langpack.Pack, m langpack.Match) (int, bool) {
	v, ok := p.DayOfWeek[langpack.Normalize(m.Group("weekday"))]
	return v, ok
}

// yearOf expands two-digit years: 00-49 is 20xx, 50-99 is 19xx.
func yearOf(s string) (int, bool) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	if len(s) <= 2 {
		if v <= 49 {
			return 2000 + v, true
		}
		return 1900 + v, true
	}
	return v, true
}

// futurePast picks the nearest occurrence of a yearless date on or after ref
// and on or before ref. dateIn reports false for years where the date does not
// exist (Feb 29).
func futurePast(ref time.Time, dateIn func(year int) (time.Time, bool)) (future, past time.Time, ok bool) {
	today := timexutil.DateOf(ref)
	for y := ref.Year(); y <= ref.Year()+8; y++ {
		if d, ok := dateIn(y); ok && !d.Before(today) {
			future = d
			break
		}
	}
	for y := ref.Year(); y >= ref.Year()-8; y-- {
		if d, ok := dateIn(y); ok && !d.After(today) {
			past = d
			break
		}
	}
	return future, past, !future.IsZero() && !past.IsZero()
}

// shiftUnits moves t by n units of a unit code. Fractional amounts fall back
// to the unit's length in seconds.
func shiftUnits(p *langpack.Pack, t time.Time, n float64, unit string) time.Time {
	if n == float64(int(n)) {
		k := int(n)
		switch unit {
		case timexutil.UnitYear:
			return t.AddDate(k, 0, 0)
		case timexutil.UnitMonth:
			return t.AddDate(0, k, 0)
		case timexutil.UnitWeek:
			return t.AddDate(0, 0, 7*k)
		case timexutil.UnitDay:
			return t.AddDate(0, 0, k)
		}
	}
	return t.Add(time.Duration(n * float64(p.UnitValueMap[unit]) * float64(time.Second)))
}

func dateResolution(t time.Time) map[string]string {
	return map[string]string{model.ResolutionDate: timexutil.FormatDate(t)}
}

func timeResolution(t time.Time) map[string]string {
	return map[string]string{model.ResolutionTime: timexutil.FormatTime(t)}
}

func dateTimeResolution(t time.Time) map[string]string {
	return map[string]string{model.ResolutionDateTime: timexutil.FormatDateTime(t)}
}

func datePeriodResolution(v model.Value) map[string]string {
	return map[string]string{
		model.ResolutionStartDate: timexutil.FormatDate(v.Begin),
		model.ResolutionEndDate:   timexutil.FormatDate(v.End),
	}
}

func timePeriodResolution(v model.Value) map[string]string {
	return map[string]string{
		model.ResolutionStartTime: timexutil.FormatTime(v.Begin),
		model.ResolutionEndTime:   timexutil.FormatTime(v.End),
	}
}

func dateTimePeriodResolution(v model.Value) map[string]string {
	return map[string]string{
		model.ResolutionStartDateTime: timexutil.FormatDateTime(v.Begin),
		model.ResolutionEndDateTime:   timexutil.FormatDateTime(v.End),
	}
}

// pointResult fills a result whose future and past are single instants.
func pointResult(timex string, future, past time.Time, render func(time.Time) map[string]string) *model.ResolutionResult {
	return &model.ResolutionResult{
		Timex:            timex,
		FutureValue:      model.Instant(future),
		PastValue:        model.Instant(past),
		FutureResolution: render(future),
		PastResolution:   render(past),
	}
}

// rangeResult fills a result whose future and past are ranges.
func rangeResult(timex string, future, past model.Value, render func(model.Value) map[string]string) *model.ResolutionResult {
	return &model.ResolutionResult{
		Timex:            timex,
		FutureValue:      future,
		PastValue:        past,
		FutureResolution: render(future),
		PastResolution:   render(past),
	}
}
