package parser

import (
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/datetimex/plugin/datetime/langpack"
	"github.com/hrygo/datetimex/plugin/datetime/model"
	"github.com/hrygo/datetimex/plugin/datetime/timexutil"
)

// Holiday resolves named holidays through the pack's holiday rules.
type Holiday struct {
	pack *langpack.Pack
}

// NewHoliday creates a holiday parser.
func NewHoliday(p *langpack.Pack) (*Holiday, error) {
	if p == nil {
		return nil, errors.Wrap(langpack.ErrIncompletePack, "holiday parser")
	}
	return &Holiday{pack: p}, nil
}

func (h *Holiday) Kind() model.EntityKind { return model.KindHoliday }

func (h *Holiday) Parse(er model.ExtractResult, ref time.Time) *model.ParseResult {
	m, ok := h.pack.MatchExact(h.pack.Holiday.HolidayRegex, er.Text)
	if !ok {
		return unresolved(er)
	}
	rule, ok := h.pack.Holiday.Holidays[langpack.HolidayKey(m.Group("holiday"))]
	if !ok {
		return unresolved(er)
	}
	dateIn := func(year int) (time.Time, bool) {
		return holidayDate(rule, year, ref.Location())
	}

	if s := m.Group("year"); s != "" {
		year, _ := yearOf(s)
		v, ok := dateIn(year)
		if !ok {
			return unresolved(er)
		}
		return resolved(er, pointResult(timexutil.LuisDateFromTime(v), v, v, dateResolution))
	}

	future, past, ok := futurePast(ref, dateIn)
	if !ok {
		return unresolved(er)
	}
	switch {
	case rule.Easter || rule.Nth < 0:
		// Movable by more than the weekday grid; each reading names its own date.
		res := pointResult(timexutil.LuisDateFromTime(future), future, past, dateResolution)
		res.FutureResolution[model.ResolutionTimex] = timexutil.LuisDateFromTime(future)
		res.PastResolution[model.ResolutionTimex] = timexutil.LuisDateFromTime(past)
		return resolved(er, res)
	case rule.Nth > 0:
		return resolved(er, pointResult(nthWeekdayTimex(rule.Month, rule.Weekday, rule.Nth), future, past, dateResolution))
	default:
		return resolved(er, pointResult(timexutil.LuisDate(-1, rule.Month, rule.Day), future, past, dateResolution))
	}
}

func holidayDate(rule langpack.HolidayRule, year int, loc *time.Location) (time.Time, bool) {
	switch {
	case rule.Easter:
		return timexutil.Easter(year, loc).AddDate(0, 0, rule.EasterOffset), true
	case rule.Nth != 0:
		return timexutil.NthWeekdayOfMonth(year, rule.Month, rule.Weekday, rule.Nth, loc)
	case timexutil.ValidDate(year, rule.Month, rule.Day):
		return time.Date(year, time.Month(rule.Month), rule.Day, 0, 0, 0, 0, loc), true
	}
	return time.Time{}, false
}
