package extractor

import (
	"regexp"
	"sort"

	"github.com/pkg/errors"

	"github.com/hrygo/datetimex/plugin/datetime/langpack"
	"github.com/hrygo/datetimex/plugin/datetime/model"
	"github.com/hrygo/datetimex/plugin/datetime/timexutil"
)

type capability struct {
	name    string
	present bool
}

// require fails construction when the pack lacks something an extractor needs.
func require(p *langpack.Pack, kind model.EntityKind, caps ...capability) error {
	if p == nil {
		return errors.Wrapf(langpack.ErrIncompletePack, "%s extractor: nil pack", kind)
	}
	if p.Rules == nil {
		return errors.Wrapf(langpack.ErrIncompletePack, "%s extractor: rules", kind)
	}
	for _, c := range caps {
		if !c.present {
			return errors.Wrapf(langpack.ErrIncompletePack, "%s extractor: %s", kind, c.name)
		}
	}
	return nil
}

// matchTokens returns a token per match of rx. A nil pattern is an absent
// optional capability and yields nothing.
func matchTokens(rx *regexp.Regexp, text string) []model.Token {
	if rx == nil {
		return nil
	}
	var out []model.Token
	for _, loc := range rx.FindAllStringIndex(text, -1) {
		out = append(out, model.NewToken(loc[0], loc[1]))
	}
	return out
}

// DurationUnit returns the canonical unit code of a duration span.
func DurationUnit(p *langpack.Pack, text string) (string, bool) {
	m, ok := langpack.MatchFirst(p.Duration.DurationRegex, text)
	if !ok {
		return "", false
	}
	code, ok := p.UnitMap[langpack.Normalize(m.Group("unit"))]
	return code, ok
}

// relativeDurationTokens finds "3 days ago", "2 hours later" and "in 2 weeks"
// around durations whose unit passes keep.
func relativeDurationTokens(p *langpack.Pack, text string, durations []model.ExtractResult, keep func(unit string) bool) []model.Token {
	var out []model.Token
	for _, d := range durations {
		unit, ok := DurationUnit(p, d.Text)
		if !ok || !keep(unit) {
			continue
		}
		after := text[d.End():]
		for _, cue := range []langpack.Cue{p.Date.Ago, p.Date.Later} {
			if !cue.Matched() {
				continue
			}
			if loc := cue.Begin.FindStringIndex(after); loc != nil {
				out = append(out, model.NewToken(d.Start, d.End()+langpack.TrimCueEnd(after[:loc[1]])))
			}
		}
		if p.Date.In.Matched() {
			if loc := p.Date.In.End.FindStringIndex(text[:d.Start]); loc != nil {
				out = append(out, model.NewToken(loc[0], d.End()))
			}
		}
	}
	return out
}

func isDateUnit(unit string) bool { return timexutil.IsDateUnit(unit) }

func isTimeUnit(unit string) bool { return !timexutil.IsDateUnit(unit) }

// mergeTimePoints joins neighbouring points into period tokens: "X to Y",
// "from X to Y" and "between X and Y". accept may veto a pair.
func mergeTimePoints(p *langpack.Pack, text string, points []model.ExtractResult, accept func(a, b model.ExtractResult) bool) []model.Token {
	sorted := make([]model.ExtractResult, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	var out []model.Token
	for i := 0; i+1 < len(sorted); i++ {
		a, b := sorted[i], sorted[i+1]
		if b.Start < a.End() || (accept != nil && !accept(a, b)) {
			continue
		}
		middle := text[a.End():b.Start]
		before := text[:a.Start]

		if IsTillToken(p, middle) {
			start := a.Start
			if idx, ok := p.Rules.FromTokenIndex(before); ok {
				start = idx
			}
			out = append(out, model.NewToken(start, b.End()))
			i++
			continue
		}
		if p.Rules.HasConnectorToken(middle) {
			if idx, ok := p.Rules.BetweenTokenIndex(before); ok {
				out = append(out, model.NewToken(idx, b.End()))
				i++
			}
		}
	}
	return out
}

// IsTillToken reports whether text consists of a single range connector ("to", "-").
func IsTillToken(p *langpack.Pack, text string) bool {
	if !p.Range.Till.Matched() {
		return false
	}
	loc := p.Range.Till.Begin.FindStringIndex(text)
	return loc != nil && loc[1] == len(text)
}

// adjacentTokens joins each left result with a right result that follows it
// across a connector accepted by gap.
func adjacentTokens(text string, left, right []model.ExtractResult, gap func(string) bool) []model.Token {
	var out []model.Token
	for _, l := range left {
		for _, r := range right {
			if r.Start < l.End() {
				continue
			}
			if gap(text[l.End():r.Start]) {
				out = append(out, model.NewToken(l.Start, r.End()))
			}
		}
	}
	return out
}

// withoutContained drops results lying inside any of the outer results.
func withoutContained(results, outer []model.ExtractResult) []model.ExtractResult {
	var out []model.ExtractResult
	for _, r := range results {
		inside := false
		for _, o := range outer {
			if r.Start >= o.Start && r.End() <= o.End() {
				inside = true
				break
			}
		}
		if !inside {
			out = append(out, r)
		}
	}
	return out
}
