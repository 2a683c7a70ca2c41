package extractor

import (
	"time"

	"github.com/hrygo/datetimex/plugin/datetime/langpack"
	"github.com/hrygo/datetimex/plugin/datetime/model"
)

// Date extracts calendar days, absolute ("2024-03-20", "March 1") or relative
// ("tomorrow", "next Friday", "3 days ago").
type Date struct {
	pack     *langpack.Pack
	duration *Duration
}

// NewDate creates a date extractor.
func NewDate(p *langpack.Pack) (*Date, error) {
	if err := require(p, model.KindDate,
		capability{"date.regexes", p != nil && len(p.Date.DateRegexes) > 0},
		capability{"maps.dayOfWeek", p != nil && len(p.DayOfWeek) > 0},
		capability{"maps.monthOfYear", p != nil && len(p.MonthOfYear) > 0},
	); err != nil {
		return nil, err
	}
	d, err := NewDuration(p)
	if err != nil {
		return nil, err
	}
	return &Date{pack: p, duration: d}, nil
}

func (e *Date) Kind() model.EntityKind { return model.KindDate }

func (e *Date) Extract(text string, ref time.Time) []model.ExtractResult {
	cfg := e.pack.Date
	var tokens []model.Token
	for _, rx := range cfg.DateRegexes {
		tokens = append(tokens, matchTokens(rx, text)...)
	}
	tokens = append(tokens, matchTokens(cfg.SpecialDayRegex, text)...)
	tokens = append(tokens, matchTokens(cfg.RelativeWeekdayRegex, text)...)
	tokens = append(tokens, matchTokens(cfg.WeekdayOfMonthRegex, text)...)
	tokens = append(tokens, matchTokens(cfg.WeekdayRegex, text)...)
	tokens = append(tokens, relativeDurationTokens(e.pack, text, e.duration.Extract(text, ref), isDateUnit)...)
	return MergeAllTokens(tokens, text, model.KindDate)
}
