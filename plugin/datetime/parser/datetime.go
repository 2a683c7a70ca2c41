package parser

import (
	"time"

	"github.com/hrygo/datetimex/plugin/datetime/extractor"
	"github.com/hrygo/datetimex/plugin/datetime/langpack"
	"github.com/hrygo/datetimex/plugin/datetime/model"
	"github.com/hrygo/datetimex/plugin/datetime/timexutil"
)

// DateTime resolves a day combined with a clock time, "now", and hour-level
// relative expressions.
type DateTime struct {
	pack      *langpack.Pack
	date      *Date
	time      *Time
	dates     *extractor.Date
	times     *extractor.Time
	durations *extractor.Duration
}

// NewDateTime creates a datetime parser.
func NewDateTime(p *langpack.Pack) (*DateTime, error) {
	d, err := NewDate(p)
	if err != nil {
		return nil, err
	}
	t, err := NewTime(p)
	if err != nil {
		return nil, err
	}
	dates, err := extractor.NewDate(p)
	if err != nil {
		return nil, err
	}
	times, err := extractor.NewTime(p)
	if err != nil {
		return nil, err
	}
	return &DateTime{pack: p, date: d, time: t, dates: dates, times: times, durations: d.durations}, nil
}

func (dt *DateTime) Kind() model.EntityKind { return model.KindDateTime }

func (dt *DateTime) Parse(er model.ExtractResult, ref time.Time) *model.ParseResult {
	for _, parse := range []func(model.ExtractResult, time.Time) *model.ResolutionResult{
		dt.parseNow,
		dt.parseRelativeDuration,
		dt.parseDateAndTime,
	} {
		if res := parse(er, ref); res != nil {
			return resolved(er, res)
		}
	}
	return unresolved(er)
}

func (dt *DateTime) parseNow(er model.ExtractResult, ref time.Time) *model.ResolutionResult {
	if _, ok := dt.pack.MatchExact(dt.pack.DateTime.NowRegex, er.Text); !ok {
		return nil
	}
	return pointResult(model.PresentRef, ref, ref, dateTimeResolution)
}

// "2 hours ago", "in 30 minutes"
func (dt *DateTime) parseRelativeDuration(er model.ExtractResult, ref time.Time) *model.ResolutionResult {
	rel, ok := relativeDuration(dt.pack, dt.durations, dt.date.duration, er, ref)
	if !ok || timexutil.IsDateUnit(rel.m.unit) {
		return nil
	}
	v := ref.Add(time.Duration(float64(rel.sign) * rel.m.seconds * float64(time.Second)))
	res := pointResult(timexutil.LuisDateTime(v), v, v, dateTimeResolution)
	res.SubEntities = []*model.ParseResult{rel.sub}
	return res
}

// "tomorrow at 3pm", "3pm on Friday"
func (dt *DateTime) parseDateAndTime(er model.ExtractResult, ref time.Time) *model.ResolutionResult {
	dates := dt.dates.Extract(er.Text, ref)
	if len(dates) == 0 {
		return nil
	}
	date := dates[0]
	var clockSpan *model.ExtractResult
	for _, t := range dt.times.Extract(er.Text, ref) {
		if !t.Overlaps(date) {
			clockSpan = &t
			break
		}
	}
	if clockSpan == nil {
		return nil
	}

	day := dt.date.Parse(within(er, date), ref)
	if !day.Resolved() {
		return nil
	}
	c, ok := dt.time.clock(clockSpan.Text)
	if !ok {
		return nil
	}

	future := c.on(day.Value.FutureValue.Time())
	past := c.on(day.Value.PastValue.Time())
	res := pointResult(day.Value.Timex+c.timex(), future, past, dateTimeResolution)
	if c.ambiguous {
		res.Comment = model.CommentAmPm
	}
	return res
}
