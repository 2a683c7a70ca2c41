package extractor

import (
	"time"

	"github.com/hrygo/datetimex/plugin/datetime/langpack"
	"github.com/hrygo/datetimex/plugin/datetime/model"
)

// DateTimePeriod extracts ranges that carry both a day and times of day:
// "tomorrow morning", "late tonight", "Friday from 3 to 5pm", "tomorrow 3 to 5",
// "next 3 hours".
type DateTimePeriod struct {
	pack        *langpack.Pack
	date        *Date
	times       *Time
	dateTime    *DateTime
	timePeriods *TimePeriod
}

// NewDateTimePeriod creates a datetime-period extractor.
func NewDateTimePeriod(p *langpack.Pack) (*DateTimePeriod, error) {
	dt, err := NewDateTime(p)
	if err != nil {
		return nil, err
	}
	tp, err := NewTimePeriod(p)
	if err != nil {
		return nil, err
	}
	return &DateTimePeriod{
		pack:        p,
		date:        dt.date,
		times:       dt.times,
		dateTime:    dt,
		timePeriods: tp,
	}, nil
}

func (e *DateTimePeriod) Kind() model.EntityKind { return model.KindDateTimePeriod }

func (e *DateTimePeriod) Extract(text string, ref time.Time) []model.ExtractResult {
	cfg := e.pack.DateTimePeriod
	dates := e.date.Extract(text, ref)
	periods := e.timePeriods.Extract(text, ref)

	tokens := matchTokens(cfg.SpecificTimeOfDayRegex, text)
	tokens = append(tokens, matchTokens(cfg.NumberUnitRegex, text)...)

	if cfg.DateConnectorRegex != nil {
		gap := func(s string) bool { return langpack.FullMatch(cfg.DateConnectorRegex, s) }
		dated := adjacentTokens(text, dates, periods, gap)
		tokens = append(tokens, dated...)
		tokens = append(tokens, adjacentTokens(text, periods, dates, gap)...)
		tokens = append(tokens, e.narrowedTimeOfDay(text, dated, periods, gap)...)

		// "tomorrow 3 to 5": a bare hour range counts only beside a date.
		hours := MergeAllTokens(matchTokens(cfg.HourRangeRegex, text), text, model.KindTimePeriod)
		tokens = append(tokens, adjacentTokens(text, dates, hours, gap)...)
		tokens = append(tokens, adjacentTokens(text, hours, dates, gap)...)
	}

	if cfg.PrefixDay.Matched() {
		for _, d := range dates {
			if loc := cfg.PrefixDay.End.FindStringIndex(text[:d.Start]); loc != nil {
				tokens = append(tokens, model.NewToken(loc[0], d.End()))
			}
		}
	}

	dateTimes := e.dateTime.Extract(text, ref)
	points := append(dateTimes, withoutContained(e.times.Extract(text, ref), dateTimes)...)
	tokens = append(tokens, mergeTimePoints(e.pack, text, points, func(a, b model.ExtractResult) bool {
		return a.Type == model.KindDateTime || b.Type == model.KindDateTime
	})...)

	return MergeAllTokens(tokens, text, model.KindDateTimePeriod)
}

// narrowedTimeOfDay extends "tomorrow afternoon" with a following explicit
// range, as in "tomorrow afternoon from 2 to 4".
func (e *DateTimePeriod) narrowedTimeOfDay(text string, dated []model.Token, periods []model.ExtractResult, gap func(string) bool) []model.Token {
	var out []model.Token
	for _, tok := range dated {
		if !e.endsWithTimeOfDay(text[tok.Start:tok.End]) {
			continue
		}
		for _, p := range periods {
			if p.Start < tok.End || !gap(text[tok.End:p.Start]) {
				continue
			}
			if _, ok := e.pack.MatchExact(e.pack.TimePeriod.TimeOfDayRegex, p.Text); ok {
				continue
			}
			out = append(out, model.NewToken(tok.Start, p.End()))
		}
	}
	return out
}

func (e *DateTimePeriod) endsWithTimeOfDay(s string) bool {
	rx := e.pack.TimePeriod.TimeOfDayRegex
	if rx == nil {
		return false
	}
	locs := rx.FindAllStringIndex(s, -1)
	return len(locs) > 0 && locs[len(locs)-1][1] == len(s)
}
