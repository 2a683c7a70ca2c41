package parser

import (
	"strings"
	"time"

	"github.com/hrygo/datetimex/plugin/datetime/extractor"
	"github.com/hrygo/datetimex/plugin/datetime/langpack"
	"github.com/hrygo/datetimex/plugin/datetime/model"
	"github.com/hrygo/datetimex/plugin/datetime/timexutil"
)

// Set resolves recurrences to a timex only; a recurrence has no single
// calendar value.
type Set struct {
	pack  *langpack.Pack
	time  *Time
	times *extractor.Time
}

// NewSet creates a set parser.
func NewSet(p *langpack.Pack) (*Set, error) {
	t, err := NewTime(p)
	if err != nil {
		return nil, err
	}
	times, err := extractor.NewTime(p)
	if err != nil {
		return nil, err
	}
	return &Set{pack: p, time: t, times: times}, nil
}

func (s *Set) Kind() model.EntityKind { return model.KindSet }

func (s *Set) Parse(er model.ExtractResult, ref time.Time) *model.ParseResult {
	if timex, ok := s.recurrence(er.Text); ok {
		return resolved(er, setResult(timex))
	}

	// "every Monday at 9am", "daily at 3pm"
	for _, t := range s.times.Extract(er.Text, ref) {
		c, ok := s.time.clock(t.Text)
		if !ok {
			continue
		}
		rest := er.Text[:t.Start] + " " + er.Text[t.End():]
		rest = strings.TrimSpace(rest)
		if s.pack.DateTime.ConnectorRegex != nil {
			rest = strings.TrimSpace(trimConnector(s.pack, rest))
		}
		timex, ok := s.recurrence(rest)
		if !ok {
			continue
		}
		if strings.HasPrefix(timex, "XXXX") {
			return resolved(er, setResult(timex+c.timex()))
		}
		return resolved(er, setResult(c.timex()))
	}
	return unresolved(er)
}

func setResult(timex string) *model.ResolutionResult {
	return &model.ResolutionResult{
		Timex:            timex,
		FutureResolution: map[string]string{model.ResolutionSet: timex},
		PastResolution:   map[string]string{model.ResolutionSet: timex},
	}
}

func (s *Set) recurrence(text string) (string, bool) {
	cfg := s.pack.Set
	if m, ok := s.pack.MatchExact(cfg.PeriodicRegex, text); ok {
		timex, ok := cfg.Periodic[langpack.Normalize(m.Group("periodic"))]
		return timex, ok
	}
	if m, ok := s.pack.MatchExact(cfg.EachUnitRegex, text); ok {
		n := 1.0
		switch {
		case m.Has("other"):
			n = 2
		case m.Has("num"):
			if n, ok = parseNumber(s.pack, m.Group("num")); !ok {
				return "", false
			}
		}
		unit, ok := s.pack.UnitMap[langpack.Normalize(m.Group("unit"))]
		if !ok {
			return "", false
		}
		return timexutil.DurationTimex(n, unit), true
	}
	if m, ok := s.pack.MatchExact(cfg.EachWeekdayRegex, text); ok {
		if wd, ok := weekdayOf(s.pack, m); ok {
			return timexutil.WeekdayTimex(wd), true
		}
	}
	return "", false
}

// trimConnector drops a trailing or leading date-time connector word ("at")
// left behind once the time is cut out of a set expression.
func trimConnector(p *langpack.Pack, text string) string {
	words := strings.Fields(text)
	if len(words) > 1 && langpack.FullMatch(p.DateTime.ConnectorRegex, " "+words[len(words)-1]+" ") {
		words = words[:len(words)-1]
	}
	if len(words) > 1 && langpack.FullMatch(p.DateTime.ConnectorRegex, " "+words[0]+" ") {
		words = words[1:]
	}
	return strings.Join(words, " ")
}
