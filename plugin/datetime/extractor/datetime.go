package extractor

import (
	"time"

	"github.com/hrygo/datetimex/plugin/datetime/langpack"
	"github.com/hrygo/datetimex/plugin/datetime/model"
)

// DateTime extracts a day together with a clock time ("tomorrow at 3pm"),
// "now", and hour-level relative expressions ("2 hours ago").
type DateTime struct {
	pack     *langpack.Pack
	date     *Date
	times    *Time
	duration *Duration
}

// NewDateTime creates a datetime extractor.
func NewDateTime(p *langpack.Pack) (*DateTime, error) {
	d, err := NewDate(p)
	if err != nil {
		return nil, err
	}
	t, err := NewTime(p)
	if err != nil {
		return nil, err
	}
	if err := require(p, model.KindDateTime,
		capability{"dateTime.connector", p.DateTime.ConnectorRegex != nil},
	); err != nil {
		return nil, err
	}
	return &DateTime{pack: p, date: d, times: t, duration: d.duration}, nil
}

func (e *DateTime) Kind() model.EntityKind { return model.KindDateTime }

func (e *DateTime) Extract(text string, ref time.Time) []model.ExtractResult {
	dates := e.date.Extract(text, ref)
	times := e.times.Extract(text, ref)
	connector := func(gap string) bool {
		return langpack.FullMatch(e.pack.DateTime.ConnectorRegex, gap)
	}

	tokens := matchTokens(e.pack.DateTime.NowRegex, text)
	tokens = append(tokens, adjacentTokens(text, dates, times, connector)...)
	tokens = append(tokens, adjacentTokens(text, times, dates, connector)...)
	tokens = append(tokens, relativeDurationTokens(e.pack, text, e.duration.Extract(text, ref), isTimeUnit)...)
	return MergeAllTokens(tokens, text, model.KindDateTime)
}
