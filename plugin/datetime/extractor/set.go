package extractor

import (
	"time"

	"github.com/hrygo/datetimex/plugin/datetime/langpack"
	"github.com/hrygo/datetimex/plugin/datetime/model"
)

// Set extracts recurrences: "every 2 weeks", "daily", "every Monday at 9am".
type Set struct {
	pack  *langpack.Pack
	times *Time
}

// NewSet creates a set extractor.
func NewSet(p *langpack.Pack) (*Set, error) {
	t, err := NewTime(p)
	if err != nil {
		return nil, err
	}
	return &Set{pack: p, times: t}, nil
}

func (e *Set) Kind() model.EntityKind { return model.KindSet }

func (e *Set) Extract(text string, ref time.Time) []model.ExtractResult {
	cfg := e.pack.Set
	var tokens []model.Token
	tokens = append(tokens, matchTokens(cfg.EachWeekdayRegex, text)...)
	tokens = append(tokens, matchTokens(cfg.EachUnitRegex, text)...)
	tokens = append(tokens, matchTokens(cfg.PeriodicRegex, text)...)

	sets := MergeAllTokens(tokens, text, model.KindSet)
	if len(sets) == 0 {
		return nil
	}
	times := e.times.Extract(text, ref)
	connector := func(gap string) bool {
		return langpack.FullMatch(e.pack.DateTime.ConnectorRegex, gap)
	}
	tokens = append(tokens, adjacentTokens(text, sets, times, connector)...)
	tokens = append(tokens, adjacentTokens(text, times, sets, connector)...)
	return MergeAllTokens(tokens, text, model.KindSet)
}
