package parser

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/datetimex/plugin/datetime/langpack"
	"github.com/hrygo/datetimex/plugin/datetime/model"
	"github.com/hrygo/datetimex/plugin/datetime/timexutil"
)

// clock is a time of day. ambiguous is set for 1-12 o'clock without an am/pm
// marker, which may still mean the afternoon.
type clock struct {
	hour, minute, second int
	ambiguous            bool
}

func (c clock) on(day time.Time) time.Time {
	return timexutil.At(day, c.hour, c.minute, c.second)
}

func (c clock) timex() string {
	return timexutil.LuisTime(c.hour, c.minute, c.second)
}

// Time resolves clock times to a THH[:MM[:SS]] timex on the reference date.
type Time struct {
	pack *langpack.Pack
}

// NewTime creates a time parser.
func NewTime(p *langpack.Pack) (*Time, error) {
	if p == nil || len(p.Time.TimeRegexes) == 0 {
		return nil, errors.Wrap(langpack.ErrIncompletePack, "time parser")
	}
	return &Time{pack: p}, nil
}

func (t *Time) Kind() model.EntityKind { return model.KindTime }

func (t *Time) Parse(er model.ExtractResult, ref time.Time) *model.ParseResult {
	c, ok := t.clock(er.Text)
	if !ok {
		return unresolved(er)
	}
	v := c.on(ref)
	res := pointResult(c.timex(), v, v, timeResolution)
	if c.ambiguous {
		res.Comment = model.CommentAmPm
	}
	return resolved(er, res)
}

func (t *Time) clock(text string) (clock, bool) {
	for _, rx := range t.pack.Time.TimeRegexes {
		if m, ok := t.pack.MatchExact(rx, text); ok {
			return t.fromMatch(m)
		}
	}
	// "at 3", or the bare hour of "at 3 to 5pm".
	if m, ok := t.pack.MatchExact(t.pack.Time.AtHourRegex, text); ok {
		text = m.Group("hour")
	}
	h, ok := t.hour(text)
	if !ok {
		return clock{}, false
	}
	return clock{hour: h % 24, ambiguous: h >= 1 && h <= 12}, true
}

func (t *Time) hour(s string) (int, bool) {
	h, ok := parseInt(t.pack, s)
	return h, ok && h >= 0 && h <= 24
}

func (t *Time) fromMatch(m langpack.Match) (clock, bool) {
	if special := langpack.Normalize(m.Group("special")); special != "" {
		if strings.Contains(special, "night") {
			return clock{}, true
		}
		return clock{hour: 12}, true
	}

	var c clock
	var ok bool
	if c.hour, ok = t.hour(m.Group("hour")); !ok {
		return clock{}, false
	}
	if s := m.Group("min"); s != "" {
		c.minute, _ = strconv.Atoi(s)
	}
	if s := m.Group("sec"); s != "" {
		c.second, _ = strconv.Atoi(s)
	}

	if m.Has("lead") || m.Has("leadmin") {
		lead := 15
		switch {
		case m.Has("leadmin"):
			if lead, ok = parseInt(t.pack, m.Group("leadmin")); !ok || lead >= 60 {
				return clock{}, false
			}
		case strings.Contains(langpack.Normalize(m.Group("lead")), "half"):
			lead = 30
		}
		c.minute = lead
		if langpack.Normalize(m.Group("dir")) == "to" {
			c.hour = (c.hour + 23) % 24
			c.minute = 60 - lead
		}
	}
	if c.hour == 24 {
		c.hour = 0
	}

	desc := langpack.Normalize(m.Group("desc"))
	switch {
	case strings.HasPrefix(desc, "p"):
		if c.hour < 12 {
			c.hour += 12
		}
	case strings.HasPrefix(desc, "a"):
		if c.hour == 12 {
			c.hour = 0
		}
	default:
		c.ambiguous = c.hour >= 1 && c.hour <= 12
	}
	if c.hour > 23 || c.minute > 59 || c.second > 59 {
		return clock{}, false
	}
	return c, true
}
