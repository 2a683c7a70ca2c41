// Package extractor finds temporal spans in text. Each single-entity extractor
// reports spans of one kind; Merged combines them into one non-overlapping list.
package extractor

import (
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/hrygo/datetimex/plugin/datetime/model"
)

// Extractor finds spans of a single entity kind.
type Extractor interface {
	Kind() model.EntityKind
	Extract(text string, ref time.Time) []model.ExtractResult
}

// MergeAllTokens collapses candidate tokens of one kind into the spans a reader
// would call the matches: contained or partially overlapping candidates are
// rejected and a candidate covering an accepted span replaces it in place.
func MergeAllTokens(tokens []model.Token, text string, kind model.EntityKind) []model.ExtractResult {
	candidates := lo.Filter(tokens, func(t model.Token, _ int) bool {
		return t.Length() > 0 && t.Start >= 0 && t.End <= len(text)
	})
	// Ties keep discovery order.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Start < candidates[j].Start
	})

	accepted := lo.Reduce(candidates, acceptToken, []model.Token(nil))

	return lo.Map(accepted, func(t model.Token, _ int) model.ExtractResult {
		return model.ExtractResult{
			Start:  t.Start,
			Length: t.Length(),
			Text:   text[t.Start:t.End],
			Type:   kind,
		}
	})
}

// acceptToken folds one candidate into the accepted list. Candidates arrive in
// start order, so only the last accepted token can overlap them.
func acceptToken(accepted []model.Token, c model.Token, _ int) []model.Token {
	if len(accepted) == 0 {
		return []model.Token{c}
	}
	last := accepted[len(accepted)-1]
	switch {
	case c.Start >= last.Start && c.End <= last.End:
		return accepted
	case c.Start == last.Start && c.End > last.End:
		out := make([]model.Token, len(accepted))
		copy(out, accepted)
		out[len(out)-1] = c
		return out
	case c.Start < last.End:
		return accepted
	default:
		out := make([]model.Token, len(accepted), len(accepted)+1)
		copy(out, accepted)
		return append(out, c)
	}
}

// addTo folds a candidate of a later-precedence kind into the merged results.
// It returns a new slice; dst is never modified.
func addTo(dst []model.ExtractResult, er model.ExtractResult) []model.ExtractResult {
	var overlapped []int
	for i, r := range dst {
		if r.Overlaps(er) {
			overlapped = append(overlapped, i)
		}
	}

	if len(overlapped) == 0 {
		out := make([]model.ExtractResult, len(dst), len(dst)+1)
		copy(out, dst)
		return append(out, er)
	}

	coversAll := lo.EveryBy(overlapped, func(i int) bool {
		return er.Covers(dst[i])
	})
	if !coversAll {
		return dst
	}

	removed := lo.SliceToMap(overlapped, func(i int) (int, struct{}) {
		return i, struct{}{}
	})
	out := make([]model.ExtractResult, 0, len(dst)-len(overlapped)+1)
	for i, r := range dst {
		if i == overlapped[0] {
			out = append(out, er)
		}
		if _, ok := removed[i]; ok {
			continue
		}
		out = append(out, r)
	}
	return out
}
