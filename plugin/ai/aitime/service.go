package aitime

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/datetimex/plugin/datetime"
	"github.com/hrygo/datetimex/plugin/datetime/model"
	"github.com/hrygo/datetimex/server/timezone"
)

// DefaultPointDuration is the span given to an expression naming a moment.
const DefaultPointDuration = time.Hour

// ErrNoTimeExpression is returned when input holds nothing that resolves to
// a calendar value.
var ErrNoTimeExpression = errors.New("no time expression found")

// Service implements TimeService on top of the datetime recognizer.
type Service struct {
	recognizer      *datetime.Recognizer
	culture         string
	defaultTimezone *time.Location
	now             func() time.Time
}

// NewService creates a new time service. An invalid default timezone falls
// back to local time.
func NewService(recognizer *datetime.Recognizer, culture, defaultTimezone string) *Service {
	loc, err := timezone.ParseTimezone(defaultTimezone)
	if err != nil {
		loc = time.Local
	}
	return &Service{
		recognizer:      recognizer,
		culture:         culture,
		defaultTimezone: loc,
		now:             time.Now,
	}
}

// Normalize standardizes time expressions. An empty or unknown timezone
// uses the service default.
func (s *Service) Normalize(ctx context.Context, input string, tz string) (time.Time, error) {
	loc := s.defaultTimezone
	if tz != "" {
		if parsed, err := timezone.ParseTimezone(tz); err == nil {
			loc = parsed
		}
	}

	tr, err := s.ParseNaturalTime(ctx, input, s.now().In(loc))
	if err != nil {
		return time.Time{}, err
	}
	return tr.Start, nil
}

// ParseNaturalTime parses natural language time expressions. Dates cover the
// whole day, moments cover DefaultPointDuration and durations start at
// reference. Ambiguous readings take the upcoming one. "before" and "after"
// bound the range at the named span.
func (s *Service) ParseNaturalTime(ctx context.Context, input string, reference time.Time) (TimeRange, error) {
	if err := ctx.Err(); err != nil {
		return TimeRange{}, err
	}

	ers, err := s.recognizer.Extract(s.culture, input, reference)
	if err != nil {
		return TimeRange{}, err
	}
	for _, er := range ers {
		pr, err := s.recognizer.Parse(s.culture, er, reference)
		if err != nil {
			return TimeRange{}, err
		}
		if !pr.Resolved() {
			continue
		}
		if tr, ok := toRange(pr, reference); ok {
			return tr, nil
		}
	}
	return TimeRange{}, errors.Wrapf(ErrNoTimeExpression, "%q", input)
}

func toRange(pr *model.ParseResult, reference time.Time) (TimeRange, bool) {
	mod := strings.TrimPrefix(pr.Value.Mod, model.ModApprox+"-")
	v := pr.Value.FutureValue
	if mod == model.ModSince {
		v = pr.Value.PastValue
	}
	var tr TimeRange
	switch v.Kind {
	case model.ValueRange:
		tr = TimeRange{Start: v.Begin, End: v.End}
	case model.ValueSeconds:
		return TimeRange{
			Start: reference,
			End:   reference.Add(time.Duration(v.Seconds * float64(time.Second))),
		}, true
	case model.ValueInstant:
		if dateOnly(pr) {
			loc := v.Begin.Location()
			tr = TimeRange{Start: timezone.StartOfDay(v.Begin, loc), End: timezone.EndOfDay(v.Begin, loc)}
		} else if bounds(mod) {
			tr = TimeRange{Start: v.Begin, End: v.Begin}
		} else {
			tr = TimeRange{Start: v.Begin, End: v.Begin.Add(DefaultPointDuration)}
		}
	default:
		return TimeRange{}, false
	}
	return bounded(tr, mod, reference), true
}

// dateOnly reports whether an instant names a whole day. Modifiers promote
// dates to date periods without changing the value.
func dateOnly(pr *model.ParseResult) bool {
	switch pr.Type {
	case model.KindDate, model.KindHoliday, model.KindDatePeriod:
		return true
	}
	return false
}

func bounds(mod string) bool {
	switch mod {
	case model.ModBefore, model.ModUntil, model.ModAfter, model.ModSince:
		return true
	}
	return false
}

// bounded turns the span named by an expression into the span its modifier
// refers to. "before" and "until" run from reference, "after" and "since"
// are open-ended.
func bounded(tr TimeRange, mod string, reference time.Time) TimeRange {
	switch mod {
	case model.ModBefore:
		return TimeRange{Start: reference, End: tr.Start}
	case model.ModUntil:
		return TimeRange{Start: reference, End: tr.End}
	case model.ModAfter:
		return TimeRange{Start: tr.End}
	case model.ModSince:
		return TimeRange{Start: tr.Start}
	}
	return tr
}

// Ensure Service implements TimeService
var _ TimeService = (*Service)(nil)
