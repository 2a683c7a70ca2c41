package parser

import (
	"strings"
	"time"

	"github.com/hrygo/datetimex/plugin/datetime/extractor"
	"github.com/hrygo/datetimex/plugin/datetime/langpack"
	"github.com/hrygo/datetimex/plugin/datetime/model"
	"github.com/hrygo/datetimex/plugin/datetime/timexutil"
)

// DateTimePeriod resolves ranges that carry a day and times of day.
type DateTimePeriod struct {
	pack       *langpack.Pack
	date       *Date
	time       *Time
	dateTime   *DateTime
	timePeriod *TimePeriod

	dates       *extractor.Date
	times       *extractor.Time
	dateTimes   *extractor.DateTime
	timePeriods *extractor.TimePeriod
}

// NewDateTimePeriod creates a datetime-period parser.
func NewDateTimePeriod(p *langpack.Pack) (*DateTimePeriod, error) {
	dt, err := NewDateTime(p)
	if err != nil {
		return nil, err
	}
	tp, err := NewTimePeriod(p)
	if err != nil {
		return nil, err
	}
	dateTimes, err := extractor.NewDateTime(p)
	if err != nil {
		return nil, err
	}
	timePeriods, err := extractor.NewTimePeriod(p)
	if err != nil {
		return nil, err
	}
	return &DateTimePeriod{
		pack:        p,
		date:        dt.date,
		time:        dt.time,
		dateTime:    dt,
		timePeriod:  tp,
		dates:       dt.dates,
		times:       dt.times,
		dateTimes:   dateTimes,
		timePeriods: timePeriods,
	}, nil
}

func (dtp *DateTimePeriod) Kind() model.EntityKind { return model.KindDateTimePeriod }

func (dtp *DateTimePeriod) Parse(er model.ExtractResult, ref time.Time) *model.ParseResult {
	for _, parse := range []func(model.ExtractResult, time.Time) *model.ResolutionResult{
		dtp.parseSpecificTimeOfDay,
		dtp.parseNumberUnit,
		dtp.parsePrefixDay,
		dtp.parseDateWithTimePeriod,
		dtp.parseTimePoints,
	} {
		if res := parse(er, ref); res != nil {
			return resolved(er, res)
		}
	}
	return unresolved(er)
}

// parseSpecificTimeOfDay resolves "tonight", "late this evening" and a time of day
// anchored to a date ("Friday afternoon", "tomorrow morning from 9 to 11").
// An explicit time range inside the window narrows it.
func (dtp *DateTimePeriod) parseSpecificTimeOfDay(er model.ExtractResult, ref time.Time) *model.ResolutionResult {
	text := er.Text
	rules := dtp.pack.Rules

	if m, ok := dtp.pack.MatchExact(dtp.pack.DateTimePeriod.SpecificTimeOfDayRegex, text); ok {
		var tod langpack.TimeOfDay
		swift := 0
		narrow := m.Group("narrow")
		if tonight := m.Group("tonight"); tonight != "" {
			tod, ok = rules.MatchedTimeRange(narrow + " " + tonight)
		} else {
			swift = rules.SwiftPrefix(m.Group("order"))
			tod, ok = rules.MatchedTimeRange(narrow + " " + m.Group("tod"))
		}
		if !ok {
			return nil
		}
		day := timexutil.DateOf(ref).AddDate(0, 0, swift)
		v := windowOn(tod, day)
		res := rangeResult(timexutil.LuisDateFromTime(day)+tod.Timex, v, v, dateTimePeriodResolution)
		applyNarrowing(res, tod)
		return res
	}

	rx := dtp.pack.DateTimePeriod.PeriodTimeOfDayWithDateRegex
	if rx == nil {
		return nil
	}
	loc := rx.FindStringIndex(text)
	if loc == nil {
		return nil
	}
	tod, ok := rules.MatchedTimeRange(text[loc[0]:loc[1]])
	if !ok {
		return nil
	}

	var day *model.ParseResult
	for _, d := range dtp.dates.Extract(text, ref) {
		if d.End() <= loc[0] || d.Start >= loc[1] {
			day = dtp.date.Parse(within(er, d), ref)
			break
		}
	}
	if !day.Resolved() {
		return nil
	}

	future := windowOn(tod, day.Value.FutureValue.Time())
	past := windowOn(tod, day.Value.PastValue.Time())
	if res := dtp.narrow(er, ref, loc, day, future, past); res != nil {
		return res
	}
	res := rangeResult(day.Value.Timex+tod.Timex, future, past, dateTimePeriodResolution)
	applyNarrowing(res, tod)
	return res
}

// narrow applies an explicit time range found outside the time-of-day words
// when it fits inside the window, trying the afternoon reading of an ambiguous
// range.
func (dtp *DateTimePeriod) narrow(er model.ExtractResult, ref time.Time, tod []int, day *model.ParseResult, future, past model.Value) *model.ResolutionResult {
	for _, span := range dtp.timePeriods.Extract(er.Text, ref) {
		if span.Start < tod[1] && span.End() > tod[0] {
			continue
		}
		pr := dtp.timePeriod.Parse(within(er, span), ref)
		if !pr.Resolved() || pr.Value.FutureValue.Kind != model.ValueRange {
			continue
		}
		tp := pr.Value.FutureValue
		shifts := []time.Duration{0}
		if pr.Value.Comment == model.CommentAmPm {
			shifts = append(shifts, 12*time.Hour)
		}
		for _, shift := range shifts {
			fb := timexutil.CombineDateTime(future.Begin, tp.Begin.Add(shift))
			fe := fb.Add(tp.End.Sub(tp.Begin))
			if fb.Before(future.Begin) || fe.After(future.End) {
				continue
			}
			pb := timexutil.CombineDateTime(past.Begin, fb)
			pe := pb.Add(fe.Sub(fb))
			date := day.Value.Timex
			timex := timexutil.RangeTimex(
				date+timexutil.LuisTimeFromTime(fb),
				date+timexutil.LuisTimeFromTime(fe),
				timexutil.DurationBetween(fb, fe))
			return rangeResult(timex, model.Range(fb, fe), model.Range(pb, pe), dateTimePeriodResolution)
		}
	}
	return nil
}

// "next 3 hours", "past 30 minutes"
func (dtp *DateTimePeriod) parseNumberUnit(er model.ExtractResult, ref time.Time) *model.ResolutionResult {
	m, ok := dtp.pack.MatchExact(dtp.pack.DateTimePeriod.NumberUnitRegex, er.Text)
	if !ok {
		return nil
	}
	n, ok := parseNumber(dtp.pack, m.Group("num"))
	if !ok {
		return nil
	}
	unit, ok := dtp.pack.UnitMap[langpack.Normalize(m.Group("unit"))]
	if !ok || timexutil.IsDateUnit(unit) {
		return nil
	}
	d := time.Duration(n * float64(dtp.pack.UnitValueMap[unit]) * float64(time.Second))

	var v model.Value
	switch swift := dtp.pack.Rules.SwiftPrefix(m.Group("order")); {
	case swift > 0:
		v = model.Range(ref, ref.Add(d))
	case swift < 0:
		v = model.Range(ref.Add(-d), ref)
	default:
		return nil
	}
	timex := timexutil.RangeTimex(
		timexutil.LuisDateTime(v.Begin),
		timexutil.LuisDateTime(v.End),
		timexutil.DurationTimex(n, unit))
	return rangeResult(timex, v, v, dateTimePeriodResolution)
}

// "early tomorrow", "later today", "mid Friday"
func (dtp *DateTimePeriod) parsePrefixDay(er model.ExtractResult, ref time.Time) *model.ResolutionResult {
	cue := dtp.pack.DateTimePeriod.PrefixDay
	if !cue.Matched() {
		return nil
	}
	groups := cue.Begin.FindStringSubmatchIndex(er.Text)
	if groups == nil {
		return nil
	}
	rest := model.ExtractResult{
		Start:  er.Start + groups[1],
		Length: er.Length - groups[1],
		Text:   er.Text[groups[1]:],
		Type:   model.KindDate,
	}
	day := dtp.date.Parse(rest, ref)
	if !day.Resolved() {
		return nil
	}

	has := func(name string) bool {
		i := cue.Begin.SubexpIndex(name)
		return i > 0 && groups[2*i] >= 0
	}
	var begin, end [3]int
	switch {
	case has("early"):
		begin, end = [3]int{0, 0, 0}, [3]int{12, 0, 0}
	case has("mid"):
		begin, end = [3]int{10, 0, 0}, [3]int{14, 0, 0}
	case has("late"):
		begin, end = [3]int{12, 0, 0}, [3]int{23, 59, 59}
	default:
		return nil
	}
	window := func(d time.Time) model.Value {
		return model.Range(timexutil.At(d, begin[0], begin[1], begin[2]), timexutil.At(d, end[0], end[1], end[2]))
	}
	future := window(day.Value.FutureValue.Time())
	past := window(day.Value.PastValue.Time())
	date := day.Value.Timex
	timex := timexutil.RangeTimex(
		date+timexutil.LuisTime(begin[0], begin[1], begin[2]),
		date+timexutil.LuisTime(end[0], end[1], end[2]),
		timexutil.DurationBetween(future.Begin, future.End))
	return rangeResult(timex, future, past, dateTimePeriodResolution)
}

// "Friday from 3 to 5pm", "3-5pm tomorrow", "tomorrow 3 to 5"
func (dtp *DateTimePeriod) parseDateWithTimePeriod(er model.ExtractResult, ref time.Time) *model.ResolutionResult {
	dates := dtp.dates.Extract(er.Text, ref)
	if len(dates) == 0 {
		return nil
	}
	date := dates[0]
	tp := dtp.timePeriodBeside(er, date, ref)
	if tp == nil {
		return nil
	}
	day := dtp.date.Parse(within(er, date), ref)
	if !day.Resolved() {
		return nil
	}

	span := tp.FutureValue
	onDay := func(d time.Time) model.Value {
		begin := timexutil.CombineDateTime(d, span.Begin)
		return model.Range(begin, begin.Add(span.End.Sub(span.Begin)))
	}
	future := onDay(day.Value.FutureValue.Time())
	past := onDay(day.Value.PastValue.Time())

	var timex string
	if parts, ok := splitRangeTimex(tp.Timex); ok {
		begin := datePart(day.Value.Timex, future.Begin)
		end := begin
		if !timexutil.SameDay(future.Begin, future.End) && !strings.Contains(begin, "X") {
			end = timexutil.LuisDateFromTime(future.End)
		}
		timex = timexutil.RangeTimex(begin+parts[0], end+parts[1], parts[2])
	} else {
		timex = day.Value.Timex + tp.Timex
	}
	res := rangeResult(timex, future, past, dateTimePeriodResolution)
	res.Mod, res.Comment = tp.Mod, tp.Comment
	return res
}

// timePeriodBeside resolves the time range next to date: an extracted time
// period, or else a bare hour range such as the "3 to 5" of "tomorrow 3 to 5".
func (dtp *DateTimePeriod) timePeriodBeside(er, date model.ExtractResult, ref time.Time) *model.ResolutionResult {
	for _, p := range dtp.timePeriods.Extract(er.Text, ref) {
		if p.Overlaps(date) {
			continue
		}
		if pr := dtp.timePeriod.Parse(within(er, p), ref); pr.Resolved() {
			return pr.Value
		}
		return nil
	}
	rx := dtp.pack.DateTimePeriod.HourRangeRegex
	if rx == nil {
		return nil
	}
	for _, loc := range rx.FindAllStringIndex(er.Text, -1) {
		if loc[0] >= date.End() || loc[1] <= date.Start {
			return dtp.timePeriod.hourRange(er.Text[loc[0]:loc[1]], ref)
		}
	}
	return nil
}

// splitRangeTimex splits "(a,b,d)" into its three parts.
func splitRangeTimex(timex string) ([3]string, bool) {
	if !strings.HasPrefix(timex, "(") || !strings.HasSuffix(timex, ")") {
		return [3]string{}, false
	}
	parts := strings.Split(timex[1:len(timex)-1], ",")
	if len(parts) != 3 {
		return [3]string{}, false
	}
	return [3]string{parts[0], parts[1], parts[2]}, true
}

// "tomorrow 3pm to 5pm", "Friday 9am until Saturday noon"
func (dtp *DateTimePeriod) parseTimePoints(er model.ExtractResult, ref time.Time) *model.ResolutionResult {
	dateTimes := dtp.dateTimes.Extract(er.Text, ref)
	if len(dateTimes) == 0 {
		return nil
	}
	type span struct {
		er    model.ExtractResult
		dated bool
	}
	var points []span
	for _, d := range dateTimes {
		points = append(points, span{d, true})
	}
	for _, t := range dtp.times.Extract(er.Text, ref) {
		inside := false
		for _, d := range dateTimes {
			if t.Overlaps(d) {
				inside = true
				break
			}
		}
		if !inside {
			points = append(points, span{t, false})
		}
	}
	if len(points) < 2 {
		return nil
	}
	first, last := points[0], points[0]
	for _, p := range points[1:] {
		if p.er.Start < first.er.Start {
			first = p
		}
		if p.er.Start > last.er.Start {
			last = p
		}
	}

	parse := func(s span) (timePoint, bool) {
		var pr *model.ParseResult
		if s.dated {
			pr = dtp.dateTime.Parse(within(er, s.er), ref)
		} else {
			pr = dtp.time.Parse(within(er, s.er), ref)
		}
		if !pr.Resolved() {
			return timePoint{}, false
		}
		return pointOf(pr, s.dated), true
	}
	a, ok := parse(first)
	if !ok {
		return nil
	}
	b, ok := parse(last)
	if !ok {
		return nil
	}
	res, ok := mergeDateTimePeriod(a, b)
	if !ok {
		return nil
	}
	return res
}
