package parser

import (
	"strings"
	"time"

	"github.com/hrygo/datetimex/plugin/datetime/model"
	"github.com/hrygo/datetimex/plugin/datetime/timexutil"
)

// timePoint is one side of a period being composed from two points.
type timePoint struct {
	future, past time.Time
	timex        string
	dated        bool
	ambiguous    bool
}

func pointOf(pr *model.ParseResult, dated bool) timePoint {
	return timePoint{
		future:    pr.Value.FutureValue.Time(),
		past:      pr.Value.PastValue.Time(),
		timex:     pr.Value.Timex,
		dated:     dated,
		ambiguous: pr.Value.Comment == model.CommentAmPm,
	}
}

// onDateOf moves a dateless point onto the day of a dated one.
func (p timePoint) onDateOf(other timePoint) timePoint {
	return timePoint{
		future:    timexutil.CombineDateTime(other.future, p.future),
		past:      timexutil.CombineDateTime(other.past, p.past),
		timex:     datePart(other.timex, other.future) + p.timex,
		dated:     true,
		ambiguous: p.ambiguous,
	}
}

// datePart returns the date prefix of a point timex.
func datePart(timex string, v time.Time) string {
	if timex == model.PresentRef {
		return timexutil.LuisDateFromTime(v)
	}
	if i := strings.IndexByte(timex, 'T'); i >= 0 {
		return timex[:i]
	}
	return timex
}

// retimed renders a point timex for a value moved by a period correction.
func retimed(timex string, v time.Time) string {
	date := datePart(timex, v)
	if date != "" && !strings.Contains(date, "X") {
		date = timexutil.LuisDateFromTime(v)
	}
	return date + timexutil.LuisTimeFromTime(v)
}

// mergeTimePeriod composes two clock times into a time range. An ambiguous end
// that would precede the start is read as afternoon, an ambiguous start more
// than twelve hours before the end likewise, and a range still running
// backwards crosses midnight.
func mergeTimePeriod(a, b timePoint) *model.ResolutionResult {
	begin, end := a.future, b.future
	corrected := false
	if b.ambiguous && !end.After(begin) && begin.Before(end.Add(12*time.Hour)) {
		end = end.Add(12 * time.Hour)
		corrected = true
	}
	if a.ambiguous && end.After(begin.Add(12*time.Hour)) {
		begin = begin.Add(12 * time.Hour)
		corrected = true
	}
	if end.Before(begin) {
		end = end.AddDate(0, 0, 1)
	}

	timex := timexutil.RangeTimex(
		timexutil.LuisTimeFromTime(begin),
		timexutil.LuisTimeFromTime(end),
		timexutil.DurationBetween(begin, end))
	v := model.Range(begin, end)
	res := rangeResult(timex, v, v, timePeriodResolution)
	if a.ambiguous && b.ambiguous && !corrected {
		res.Comment = model.CommentAmPm
	}
	return res
}

// mergeDateTimePeriod composes two points of which at least one carries a
// date. A dateless side takes the other side's date; a backwards range is
// first repaired by reading an ambiguous end as afternoon, then, if a date was
// borrowed, by moving the end to the next day. Two dated points in reverse
// order do not form a period.
func mergeDateTimePeriod(a, b timePoint) (*model.ResolutionResult, bool) {
	propagated := false
	switch {
	case !a.dated && b.dated:
		a = a.onDateOf(b)
		propagated = true
	case a.dated && !b.dated:
		b = b.onDateOf(a)
		propagated = true
	case !a.dated && !b.dated:
		return nil, false
	}

	fe, pe := b.future, b.past
	endTimex := b.timex
	if fe.Before(a.future) && b.ambiguous {
		fe, pe = fe.Add(12*time.Hour), pe.Add(12*time.Hour)
		endTimex = retimed(b.timex, fe)
	}
	if fe.Before(a.future) && propagated {
		fe, pe = fe.AddDate(0, 0, 1), pe.AddDate(0, 0, 1)
		endTimex = retimed(b.timex, fe)
	}
	if fe.Before(a.future) || pe.Before(a.past) {
		return nil, false
	}

	future, past := model.Range(a.future, fe), model.Range(a.past, pe)
	timex := timexutil.RangeTimex(a.timex, endTimex, timexutil.DurationBetween(a.future, fe))
	res := rangeResult(timex, future, past, dateTimePeriodResolution)
	if a.ambiguous && b.ambiguous {
		res.Comment = model.CommentAmPm
	}
	return res, true
}
