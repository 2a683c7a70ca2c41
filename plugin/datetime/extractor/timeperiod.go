package extractor

import (
	"time"

	"github.com/hrygo/datetimex/plugin/datetime/langpack"
	"github.com/hrygo/datetimex/plugin/datetime/model"
)

// TimePeriod extracts ranges within a day: "from 3pm to 5pm", "3-5pm",
// "this afternoon"'s "afternoon".
type TimePeriod struct {
	pack  *langpack.Pack
	times *Time
}

// NewTimePeriod creates a time-period extractor.
func NewTimePeriod(p *langpack.Pack) (*TimePeriod, error) {
	t, err := NewTime(p)
	if err != nil {
		return nil, err
	}
	if err := require(p, model.KindTimePeriod,
		capability{"range.till", p.Range.Till.Matched()},
	); err != nil {
		return nil, err
	}
	return &TimePeriod{pack: p, times: t}, nil
}

func (e *TimePeriod) Kind() model.EntityKind { return model.KindTimePeriod }

func (e *TimePeriod) Extract(text string, ref time.Time) []model.ExtractResult {
	cfg := e.pack.TimePeriod
	var tokens []model.Token
	for _, rx := range cfg.PureNumRegexes {
		tokens = append(tokens, matchTokens(rx, text)...)
	}
	tokens = append(tokens, matchTokens(cfg.TimeOfDayRegex, text)...)
	tokens = append(tokens, mergeTimePoints(e.pack, text, e.times.Extract(text, ref), nil)...)
	return MergeAllTokens(tokens, text, model.KindTimePeriod)
}
