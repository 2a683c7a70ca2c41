package parser

import (
	"fmt"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/datetimex/plugin/datetime/extractor"
	"github.com/hrygo/datetimex/plugin/datetime/langpack"
	"github.com/hrygo/datetimex/plugin/datetime/model"
	"github.com/hrygo/datetimex/plugin/datetime/timexutil"
)

// DatePeriod resolves ranges of days. Range ends of months, weeks and years
// are exclusive (the first day after the period); explicit day ranges keep
// the last named day.
type DatePeriod struct {
	pack  *langpack.Pack
	date  *Date
	dates *extractor.Date
}

// NewDatePeriod creates a date-period parser.
func NewDatePeriod(p *langpack.Pack) (*DatePeriod, error) {
	d, err := NewDate(p)
	if err != nil {
		return nil, err
	}
	dates, err := extractor.NewDate(p)
	if err != nil {
		return nil, errors.Wrap(err, "date period parser")
	}
	return &DatePeriod{pack: p, date: d, dates: dates}, nil
}

func (dp *DatePeriod) Kind() model.EntityKind { return model.KindDatePeriod }

func (dp *DatePeriod) Parse(er model.ExtractResult, ref time.Time) *model.ParseResult {
	for _, parse := range []func(model.ExtractResult, time.Time) *model.ResolutionResult{
		dp.parseMonthDayRange,
		dp.parseTwoDates,
		dp.parseNumberUnit,
		dp.parseRelativeUnit,
		dp.parseMonthYear,
		dp.parseMonth,
		dp.parseYear,
	} {
		if res := parse(er, ref); res != nil {
			return resolved(er, res)
		}
	}
	return unresolved(er)
}

func daysResult(timex string, future, past model.Value) *model.ResolutionResult {
	return rangeResult(timex, future, past, datePeriodResolution)
}

// "March 10-20", "between Jan 3 and 9, 2025"
func (dp *DatePeriod) parseMonthDayRange(er model.ExtractResult, ref time.Time) *model.ResolutionResult {
	m, ok := dp.pack.MatchExact(dp.pack.DatePeriod.MonthDayRangeRegex, er.Text)
	if !ok {
		return nil
	}
	month, ok := monthOf(dp.pack, m)
	if !ok {
		return nil
	}
	day1, ok1 := parseInt(dp.pack, m.Group("day1"))
	day2, ok2 := parseInt(dp.pack, m.Group("day2"))
	if !ok1 || !ok2 || day2 < day1 {
		return nil
	}
	span := func(year int) (model.Value, bool) {
		if !timexutil.ValidDate(year, month, day1) || !timexutil.ValidDate(year, month, day2) {
			return model.Value{}, false
		}
		return model.Range(
			time.Date(year, time.Month(month), day1, 0, 0, 0, 0, ref.Location()),
			time.Date(year, time.Month(month), day2, 0, 0, 0, 0, ref.Location())), true
	}

	if s := m.Group("year"); s != "" {
		year, _ := yearOf(s)
		v, ok := span(year)
		if !ok {
			return nil
		}
		timex := timexutil.RangeTimex(
			timexutil.LuisDate(year, month, day1),
			timexutil.LuisDate(year, month, day2),
			timexutil.DurationBetween(v.Begin, v.End))
		return daysResult(timex, v, v)
	}

	// The future reading is the next range not yet over, the past reading the
	// last range already begun.
	today := timexutil.DateOf(ref)
	var future, past model.Value
	for y := ref.Year(); y <= ref.Year()+8 && future.IsZero(); y++ {
		if v, ok := span(y); ok && !v.End.Before(today) {
			future = v
		}
	}
	for y := ref.Year(); y >= ref.Year()-8 && past.IsZero(); y-- {
		if v, ok := span(y); ok && !v.Begin.After(today) {
			past = v
		}
	}
	if future.IsZero() || past.IsZero() {
		return nil
	}
	timex := timexutil.RangeTimex(
		timexutil.LuisDate(-1, month, day1),
		timexutil.LuisDate(-1, month, day2),
		timexutil.DurationBetween(future.Begin, future.End))
	return daysResult(timex, future, past)
}

// "from March 1 to March 5"
func (dp *DatePeriod) parseTwoDates(er model.ExtractResult, ref time.Time) *model.ResolutionResult {
	dates := dp.dates.Extract(er.Text, ref)
	if len(dates) < 2 {
		return nil
	}
	first := dp.date.Parse(dates[0], ref)
	last := dp.date.Parse(dates[len(dates)-1], ref)
	if !first.Resolved() || !last.Resolved() {
		return nil
	}
	a, b := first.Value, last.Value
	future, ok := dp.anchorEnd(a.FutureValue.Time(), b.FutureValue.Time(), dates[len(dates)-1])
	if !ok {
		return nil
	}
	past, ok := dp.anchorEnd(a.PastValue.Time(), b.PastValue.Time(), dates[len(dates)-1])
	if !ok {
		return nil
	}
	timex := timexutil.RangeTimex(a.Timex, b.Timex, timexutil.DurationBetween(future.Begin, future.End))
	return daysResult(timex, future, past)
}

// anchorEnd pairs a range start with its end. An end read before the start
// ("from Wednesday to Friday" on a Friday) is read again from the start, taking
// its first occurrence on or after it.
func (dp *DatePeriod) anchorEnd(begin, end time.Time, last model.ExtractResult) (model.Value, bool) {
	if end.Before(begin) {
		again := dp.date.Parse(last, begin)
		if !again.Resolved() {
			return model.Value{}, false
		}
		end = again.Value.FutureValue.Time()
	}
	if end.Before(begin) {
		return model.Value{}, false
	}
	return model.Range(begin, end), true
}

// "next 3 days", "past 2 weeks"
func (dp *DatePeriod) parseNumberUnit(er model.ExtractResult, ref time.Time) *model.ResolutionResult {
	m, ok := dp.pack.MatchExact(dp.pack.DatePeriod.NumberUnitRegex, er.Text)
	if !ok {
		return nil
	}
	n, ok := parseNumber(dp.pack, m.Group("num"))
	if !ok {
		return nil
	}
	unit, ok := dp.pack.UnitMap[langpack.Normalize(m.Group("unit"))]
	if !ok || !timexutil.IsDateUnit(unit) {
		return nil
	}

	today := timexutil.DateOf(ref)
	var v model.Value
	switch swift := dp.pack.Rules.SwiftPrefix(m.Group("order")); {
	case swift > 0:
		begin := today.AddDate(0, 0, 1)
		v = model.Range(begin, shiftUnits(dp.pack, begin, n, unit))
	case swift < 0:
		v = model.Range(shiftUnits(dp.pack, today, -n, unit), today)
	default:
		return nil
	}
	timex := timexutil.RangeTimex(
		timexutil.LuisDateFromTime(v.Begin),
		timexutil.LuisDateFromTime(v.End),
		timexutil.DurationTimex(n, unit))
	return daysResult(timex, v, v)
}

// "this week", "next weekend", "last month", "next year"
func (dp *DatePeriod) parseRelativeUnit(er model.ExtractResult, ref time.Time) *model.ResolutionResult {
	m, ok := dp.pack.MatchExact(dp.pack.DatePeriod.RelativeUnitRegex, er.Text)
	if !ok {
		return nil
	}
	swift := dp.pack.Rules.SwiftPrefix(m.Group("order"))

	var v model.Value
	var timex string
	switch langpack.Normalize(m.Group("unit")) {
	case "week":
		begin := timexutil.ThisWeekday(ref, 1).AddDate(0, 0, 7*swift)
		v = model.Range(begin, begin.AddDate(0, 0, 7))
		timex = timexutil.IsoWeekTimex(begin)
	case "weekend":
		begin := timexutil.ThisWeekday(ref, 6).AddDate(0, 0, 7*swift)
		v = model.Range(begin, begin.AddDate(0, 0, 2))
		timex = timexutil.IsoWeekTimex(begin) + "-WE"
	case "month":
		begin := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location()).AddDate(0, swift, 0)
		v = model.Range(begin, begin.AddDate(0, 1, 0))
		timex = monthTimex(begin.Year(), int(begin.Month()))
	case "year":
		begin := time.Date(ref.Year()+swift, 1, 1, 0, 0, 0, 0, ref.Location())
		v = model.Range(begin, begin.AddDate(1, 0, 0))
		timex = strconv.Itoa(begin.Year())
	default:
		return nil
	}
	return daysResult(timex, v, v)
}

// "March 2025"
func (dp *DatePeriod) parseMonthYear(er model.ExtractResult, ref time.Time) *model.ResolutionResult {
	m, ok := dp.pack.MatchExact(dp.pack.DatePeriod.MonthYearRegex, er.Text)
	if !ok {
		return nil
	}
	month, ok := monthOf(dp.pack, m)
	if !ok {
		return nil
	}
	year, ok := yearOf(m.Group("year"))
	if !ok {
		return nil
	}
	v := wholeMonth(year, month, ref.Location())
	return daysResult(monthTimex(year, month), v, v)
}

// "March", "next March"
func (dp *DatePeriod) parseMonth(er model.ExtractResult, ref time.Time) *model.ResolutionResult {
	m, ok := dp.pack.MatchExact(dp.pack.DatePeriod.MonthRegex, er.Text)
	if !ok {
		return nil
	}
	month, ok := monthOf(dp.pack, m)
	if !ok {
		return nil
	}

	if order := m.Group("order"); order != "" {
		year := ref.Year() + dp.pack.Rules.SwiftPrefix(order)
		v := wholeMonth(year, month, ref.Location())
		return daysResult(monthTimex(year, month), v, v)
	}

	futureYear, pastYear := ref.Year(), ref.Year()
	if month < int(ref.Month()) {
		futureYear++
	}
	if month >= int(ref.Month()) {
		pastYear--
	}
	return daysResult(fmt.Sprintf("XXXX-%02d", month),
		wholeMonth(futureYear, month, ref.Location()),
		wholeMonth(pastYear, month, ref.Location()))
}

// "2025", "the year 2025"
func (dp *DatePeriod) parseYear(er model.ExtractResult, ref time.Time) *model.ResolutionResult {
	m, ok := dp.pack.MatchExact(dp.pack.DatePeriod.YearRegex, er.Text)
	if !ok {
		return nil
	}
	year, ok := yearOf(m.Group("year"))
	if !ok {
		return nil
	}
	begin := time.Date(year, 1, 1, 0, 0, 0, 0, ref.Location())
	v := model.Range(begin, begin.AddDate(1, 0, 0))
	return daysResult(strconv.Itoa(year), v, v)
}

func wholeMonth(year, month int, loc *time.Location) model.Value {
	begin := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	return model.Range(begin, begin.AddDate(0, 1, 0))
}

func monthTimex(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}
