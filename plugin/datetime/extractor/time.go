package extractor

import (
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/hrygo/datetimex/plugin/datetime/langpack"
	"github.com/hrygo/datetimex/plugin/datetime/model"
)

// Time extracts clock times: "3pm", "15:30", "noon", "half past 4".
type Time struct {
	pack *langpack.Pack
}

// NewTime creates a time extractor.
func NewTime(p *langpack.Pack) (*Time, error) {
	if err := require(p, model.KindTime,
		capability{"time.regexes", p != nil && len(p.Time.TimeRegexes) > 0},
	); err != nil {
		return nil, err
	}
	return &Time{pack: p}, nil
}

func (e *Time) Kind() model.EntityKind { return model.KindTime }

func (e *Time) Extract(text string, _ time.Time) []model.ExtractResult {
	var tokens []model.Token
	for _, rx := range e.pack.Time.TimeRegexes {
		tokens = append(tokens, matchTokens(rx, text)...)
	}
	tokens = append(tokens, e.atHourTokens(text, tokens)...)
	return MergeAllTokens(tokens, text, model.KindTime)
}

// atHourTokens spans "at 3" whole. When the hour opens a wider expression
// ("at 3 to 5pm", "at 3 days") only the hour is kept so that expression can
// still cover it, and an hour already inside a clock time adds nothing.
func (e *Time) atHourTokens(text string, clocks []model.Token) []model.Token {
	rx := e.pack.Time.AtHourRegex
	if rx == nil {
		return nil
	}
	hour := rx.SubexpIndex("hour")
	var out []model.Token
	for _, loc := range rx.FindAllStringSubmatchIndex(text, -1) {
		if hour < 0 || loc[2*hour] < 0 {
			continue
		}
		h := model.NewToken(loc[2*hour], loc[2*hour+1])
		if lo.ContainsBy(clocks, func(c model.Token) bool { return c.Start < h.End && h.Start < c.End }) {
			continue
		}
		if e.opensWiderSpan(text[h.Start:], text[h.End:]) {
			out = append(out, h)
			continue
		}
		out = append(out, model.NewToken(loc[0], loc[1]))
	}
	return out
}

func (e *Time) opensWiderSpan(fromHour, afterHour string) bool {
	if rx := e.pack.Duration.DurationRegex; rx != nil {
		if loc := rx.FindStringIndex(fromHour); loc != nil && loc[0] == 0 {
			return true
		}
	}
	if !e.pack.Range.Till.Matched() {
		return false
	}
	trimmed := strings.TrimLeft(afterHour, " \t")
	loc := e.pack.Range.Till.Begin.FindStringIndex(trimmed)
	return loc != nil && loc[0] == 0
}
