package parser

import (
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/datetimex/plugin/datetime/extractor"
	"github.com/hrygo/datetimex/plugin/datetime/langpack"
	"github.com/hrygo/datetimex/plugin/datetime/model"
	"github.com/hrygo/datetimex/plugin/datetime/timexutil"
)

// TimePeriod resolves ranges within a day on the reference date.
type TimePeriod struct {
	pack  *langpack.Pack
	time  *Time
	times *extractor.Time
}

// NewTimePeriod creates a time-period parser.
func NewTimePeriod(p *langpack.Pack) (*TimePeriod, error) {
	t, err := NewTime(p)
	if err != nil {
		return nil, err
	}
	if p.Rules == nil {
		return nil, errors.Wrap(langpack.ErrIncompletePack, "time period parser")
	}
	times, err := extractor.NewTime(p)
	if err != nil {
		return nil, err
	}
	return &TimePeriod{pack: p, time: t, times: times}, nil
}

func (tp *TimePeriod) Kind() model.EntityKind { return model.KindTimePeriod }

func (tp *TimePeriod) Parse(er model.ExtractResult, ref time.Time) *model.ParseResult {
	for _, parse := range []func(string, time.Time) *model.ResolutionResult{
		tp.parseTimeOfDay,
		tp.parsePureNumber,
		tp.parseTimePoints,
	} {
		if res := parse(er.Text, ref); res != nil {
			return resolved(er, res)
		}
	}
	return unresolved(er)
}

// "this morning", "late evening"
func (tp *TimePeriod) parseTimeOfDay(text string, ref time.Time) *model.ResolutionResult {
	if _, ok := tp.pack.MatchExact(tp.pack.TimePeriod.TimeOfDayRegex, text); !ok {
		return nil
	}
	tod, ok := tp.pack.Rules.MatchedTimeRange(text)
	if !ok {
		return nil
	}
	v := windowOn(tod, ref)
	res := rangeResult(tod.Timex, v, v, timePeriodResolution)
	applyNarrowing(res, tod)
	return res
}

// windowOn places a time-of-day window on the day of d.
func windowOn(tod langpack.TimeOfDay, d time.Time) model.Value {
	endSecond := 0
	if tod.EndMinute == 59 {
		endSecond = 59
	}
	return model.Range(
		timexutil.At(d, tod.BeginHour, 0, 0),
		timexutil.At(d, tod.EndHour, tod.EndMinute, endSecond))
}

// applyNarrowing records an early/late window as a start/end modifier.
func applyNarrowing(res *model.ResolutionResult, tod langpack.TimeOfDay) {
	switch tod.Comment {
	case model.CommentEarly:
		res.Mod, res.Comment = model.ModStart, model.CommentEarly
	case model.CommentLate:
		res.Mod, res.Comment = model.ModEnd, model.CommentLate
	}
}

// "3-5pm", "from 9 to 11:30", "between 2 and 4"
func (tp *TimePeriod) parsePureNumber(text string, ref time.Time) *model.ResolutionResult {
	for _, rx := range tp.pack.TimePeriod.PureNumRegexes {
		if m, ok := tp.pack.MatchExact(rx, text); ok {
			return tp.pureNumber(m, ref)
		}
	}
	return nil
}

// hourRange resolves a bare "3 to 5", which is a time range only when a date
// stands beside it.
func (tp *TimePeriod) hourRange(text string, ref time.Time) *model.ResolutionResult {
	m, ok := tp.pack.MatchExact(tp.pack.DateTimePeriod.HourRangeRegex, text)
	if !ok {
		return nil
	}
	return tp.pureNumber(m, ref)
}

func (tp *TimePeriod) pureNumber(m langpack.Match, ref time.Time) *model.ResolutionResult {
	a, ok := tp.side(m, "1")
	if !ok {
		return nil
	}
	b, ok := tp.side(m, "2")
	if !ok {
		return nil
	}
	// "3-5pm": the afternoon marker carries over to the start.
	if a.ambiguous && strings.HasPrefix(langpack.Normalize(m.Group("desc2")), "p") && a.hour+12 <= b.hour {
		a.hour += 12
		a.ambiguous = false
	}
	return mergeTimePeriod(clockPoint(a, ref), clockPoint(b, ref))
}

func (tp *TimePeriod) side(m langpack.Match, n string) (clock, bool) {
	text := m.Group("hour" + n)
	if minute := m.Group("min" + n); minute != "" {
		text += ":" + minute
	}
	if desc := m.Group("desc" + n); desc != "" {
		text += " " + desc
	}
	return tp.time.clock(text)
}

func clockPoint(c clock, ref time.Time) timePoint {
	v := c.on(ref)
	return timePoint{future: v, past: v, timex: c.timex(), ambiguous: c.ambiguous}
}

// "3pm to 5pm" and other pairs of extracted times
func (tp *TimePeriod) parseTimePoints(text string, ref time.Time) *model.ResolutionResult {
	times := tp.times.Extract(text, ref)
	if len(times) < 2 {
		return nil
	}
	first, last := times[0], times[len(times)-1]
	a, ok := tp.time.clock(first.Text)
	if !ok {
		return nil
	}
	b, ok := tp.time.clock(last.Text)
	if !ok {
		return nil
	}
	return mergeTimePeriod(clockPoint(a, ref), clockPoint(b, ref))
}
