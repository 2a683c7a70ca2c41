package extractor

import (
	"regexp"
	"time"

	"github.com/hrygo/datetimex/plugin/datetime/langpack"
	"github.com/hrygo/datetimex/plugin/datetime/model"
)

// DatePeriod extracts ranges of days: months, years, relative weeks, "next 3
// days" and "from March 1 to March 5".
type DatePeriod struct {
	pack *langpack.Pack
	date *Date
}

// NewDatePeriod creates a date-period extractor.
func NewDatePeriod(p *langpack.Pack) (*DatePeriod, error) {
	d, err := NewDate(p)
	if err != nil {
		return nil, err
	}
	if err := require(p, model.KindDatePeriod,
		capability{"range.till", p.Range.Till.Matched()},
	); err != nil {
		return nil, err
	}
	return &DatePeriod{pack: p, date: d}, nil
}

func (e *DatePeriod) Kind() model.EntityKind { return model.KindDatePeriod }

func (e *DatePeriod) Extract(text string, ref time.Time) []model.ExtractResult {
	cfg := e.pack.DatePeriod
	var tokens []model.Token
	for _, rx := range []*regexp.Regexp{
		cfg.MonthDayRangeRegex,
		cfg.MonthYearRegex,
		cfg.RelativeUnitRegex,
		cfg.NumberUnitRegex,
		cfg.MonthRegex,
		cfg.YearRegex,
	} {
		tokens = append(tokens, matchTokens(rx, text)...)
	}
	tokens = append(tokens, mergeTimePoints(e.pack, text, e.date.Extract(text, ref), nil)...)
	return MergeAllTokens(tokens, text, model.KindDatePeriod)
}
