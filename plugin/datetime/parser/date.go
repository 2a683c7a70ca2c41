package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/datetimex/plugin/datetime/extractor"
	"github.com/hrygo/datetimex/plugin/datetime/langpack"
	"github.com/hrygo/datetimex/plugin/datetime/model"
	"github.com/hrygo/datetimex/plugin/datetime/timexutil"
)

// Date resolves calendar days. Relative forms resolve against ref; yearless
// forms get the nearest future and past occurrence.
type Date struct {
	pack      *langpack.Pack
	duration  *Duration
	durations *extractor.Duration
}

// NewDate creates a date parser.
func NewDate(p *langpack.Pack) (*Date, error) {
	if p == nil || len(p.Date.DateRegexes) == 0 || p.Rules == nil {
		return nil, errors.Wrap(langpack.ErrIncompletePack, "date parser")
	}
	duration, err := NewDuration(p)
	if err != nil {
		return nil, err
	}
	durations, err := extractor.NewDuration(p)
	if err != nil {
		return nil, err
	}
	return &Date{pack: p, duration: duration, durations: durations}, nil
}

func (d *Date) Kind() model.EntityKind { return model.KindDate }

func (d *Date) Parse(er model.ExtractResult, ref time.Time) *model.ParseResult {
	for _, parse := range []func(model.ExtractResult, time.Time) *model.ResolutionResult{
		d.parseRelativeDuration,
		d.parseSpecialDay,
		d.parseRelativeWeekday,
		d.parseWeekdayOfMonth,
		d.parseWeekday,
		d.parseExplicit,
	} {
		if res := parse(er, ref); res != nil {
			return resolved(er, res)
		}
	}
	return unresolved(er)
}

// "3 days ago", "in 2 weeks"
func (d *Date) parseRelativeDuration(er model.ExtractResult, ref time.Time) *model.ResolutionResult {
	rel, ok := relativeDuration(d.pack, d.durations, d.duration, er, ref)
	if !ok || !timexutil.IsDateUnit(rel.m.unit) {
		return nil
	}
	v := shiftUnits(d.pack, timexutil.DateOf(ref), float64(rel.sign)*rel.m.n, rel.m.unit)
	res := pointResult(timexutil.LuisDateFromTime(v), v, v, dateResolution)
	res.SubEntities = []*model.ParseResult{rel.sub}
	return res
}

// "tomorrow"
func (d *Date) parseSpecialDay(er model.ExtractResult, ref time.Time) *model.ResolutionResult {
	m, ok := d.pack.MatchExact(d.pack.Date.SpecialDayRegex, er.Text)
	if !ok {
		return nil
	}
	swift, ok := d.pack.Rules.SwiftDay(m.Group("day"))
	if !ok {
		return nil
	}
	v := timexutil.DateOf(ref).AddDate(0, 0, swift)
	return pointResult(timexutil.LuisDateFromTime(v), v, v, dateResolution)
}

// "next Friday"
func (d *Date) parseRelativeWeekday(er model.ExtractResult, ref time.Time) *model.ResolutionResult {
	m, ok := d.pack.MatchExact(d.pack.Date.RelativeWeekdayRegex, er.Text)
	if !ok {
		return nil
	}
	wd, ok := weekdayOf(d.pack, m)
	if !ok {
		return nil
	}
	var v time.Time
	switch swift := d.pack.Rules.SwiftPrefix(m.Group("order")); {
	case swift > 0:
		v = timexutil.NextWeekday(ref, wd)
	case swift < 0:
		v = timexutil.LastWeekday(ref, wd)
	default:
		v = timexutil.ThisWeekday(ref, wd)
	}
	return pointResult(timexutil.LuisDateFromTime(v), v, v, dateResolution)
}

// "the last Monday of May"
func (d *Date) parseWeekdayOfMonth(er model.ExtractResult, ref time.Time) *model.ResolutionResult {
	m, ok := d.pack.MatchExact(d.pack.Date.WeekdayOfMonthRegex, er.Text)
	if !ok {
		return nil
	}
	wd, ok := weekdayOf(d.pack, m)
	if !ok {
		return nil
	}
	month, ok := monthOf(d.pack, m)
	if !ok {
		return nil
	}
	cardinal := m.Group("cardinal")
	n, ok := d.pack.OrdinalMap[langpack.Normalize(cardinal)]
	if d.pack.Rules.IsCardinalLast(cardinal) {
		n, ok = -1, true
	}
	if !ok {
		return nil
	}
	dateIn := func(year int) (time.Time, bool) {
		return timexutil.NthWeekdayOfMonth(year, month, wd, n, ref.Location())
	}

	if s := m.Group("year"); s != "" {
		year, _ := yearOf(s)
		v, ok := dateIn(year)
		if !ok {
			return nil
		}
		return pointResult(timexutil.LuisDateFromTime(v), v, v, dateResolution)
	}
	future, past, ok := futurePast(ref, dateIn)
	if !ok {
		return nil
	}
	return pointResult(nthWeekdayTimex(month, wd, n), future, past, dateResolution)
}

// "Friday"
func (d *Date) parseWeekday(er model.ExtractResult, ref time.Time) *model.ResolutionResult {
	m, ok := d.pack.MatchExact(d.pack.Date.WeekdayRegex, er.Text)
	if !ok {
		return nil
	}
	wd, ok := weekdayOf(d.pack, m)
	if !ok {
		return nil
	}
	return pointResult(timexutil.WeekdayTimex(wd),
		timexutil.UpcomingWeekday(ref, wd),
		timexutil.PreviousWeekday(ref, wd),
		dateResolution)
}

// "2024-03-20", "March 1", "3/5/24"
func (d *Date) parseExplicit(er model.ExtractResult, ref time.Time) *model.ResolutionResult {
	for _, rx := range d.pack.Date.DateRegexes {
		m, ok := d.pack.MatchExact(rx, er.Text)
		if !ok {
			continue
		}
		month, ok := monthOf(d.pack, m)
		if !ok {
			return nil
		}
		day, ok := parseInt(d.pack, m.Group("day"))
		if !ok {
			return nil
		}

		if s := m.Group("year"); s != "" {
			year, ok := yearOf(s)
			if !ok || !timexutil.ValidDate(year, month, day) {
				return nil
			}
			v := time.Date(year, time.Month(month), day, 0, 0, 0, 0, ref.Location())
			return pointResult(timexutil.LuisDate(year, month, day), v, v, dateResolution)
		}

		future, past, ok := futurePast(ref, func(year int) (time.Time, bool) {
			if !timexutil.ValidDate(year, month, day) {
				return time.Time{}, false
			}
			return time.Date(year, time.Month(month), day, 0, 0, 0, 0, ref.Location()), true
		})
		if !ok {
			return nil
		}
		return pointResult(timexutil.LuisDate(-1, month, day), future, past, dateResolution)
	}
	return nil
}

// nthWeekdayTimex renders XXXX-MM-WXX-d-n; the last occurrence is #5.
func nthWeekdayTimex(month, weekday, n int) string {
	nth := "#5"
	if n > 0 {
		nth = strconv.Itoa(n)
	}
	return fmt.Sprintf("XXXX-%02d-WXX-%d-%s", month, weekday, nth)
}

// relative is a duration moved from ref: "3 days ago", "2 hours later".
type relative struct {
	sub  *model.ParseResult
	m    measure
	sign int
}

func relativeDuration(p *langpack.Pack, durations *extractor.Duration, parser *Duration, er model.ExtractResult, ref time.Time) (relative, bool) {
	for _, span := range durations.Extract(er.Text, ref) {
		m, ok := parser.measure(span.Text)
		if !ok {
			continue
		}
		before, after := er.Text[:span.Start], er.Text[span.End():]
		sign := 0
		switch {
		case strings.TrimSpace(before) == "" && fills(p.Date.Ago.Begin, after):
			sign = -1
		case strings.TrimSpace(before) == "" && fills(p.Date.Later.Begin, after):
			sign = 1
		case strings.TrimSpace(after) == "" && fills(p.Date.In.End, before):
			sign = 1
		default:
			continue
		}
		return relative{sub: parser.Parse(within(er, span), ref), m: m, sign: sign}, true
	}
	return relative{}, false
}

// fills reports whether rx matches s leaving only whitespace around it.
func fills(rx *regexp.Regexp, s string) bool {
	if rx == nil {
		return false
	}
	loc := rx.FindStringIndex(s)
	return loc != nil && strings.TrimSpace(s[:loc[0]]) == "" && strings.TrimSpace(s[loc[1]:]) == ""
}
