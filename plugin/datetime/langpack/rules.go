package langpack

import (
	"regexp"
	"sort"
	"strings"

	"github.com/hrygo/datetimex/plugin/datetime/model"
)

// Rules holds the small locale decision functions the extractors and parsers
// call through. Implementations must be safe for concurrent use.
type Rules interface {
	// SwiftDay returns the day offset of a relative day word ("tomorrow" = 1).
	SwiftDay(text string) (int, bool)
	// SwiftPrefix returns the offset implied by a relative prefix ("next" = 1,
	// "last" = -1). Unknown prefixes are 0.
	SwiftPrefix(text string) int
	// IsCardinalLast reports whether text selects the last item of a sequence.
	IsCardinalLast(text string) bool
	// MatchedTimeRange finds a named time of day in text and applies any
	// early/late narrowing.
	MatchedTimeRange(text string) (TimeOfDay, bool)
	// HasConnectorToken reports whether text is exactly a between-connector ("and").
	HasConnectorToken(text string) bool
	// FromTokenIndex returns where a trailing "from" token starts in text.
	FromTokenIndex(text string) (int, bool)
	// BetweenTokenIndex returns where a trailing "between" token starts in text.
	BetweenTokenIndex(text string) (int, bool)
}

// dataRules implements Rules over the pack's own maps and range patterns.
type dataRules struct {
	pack     *Pack
	todNames []string
}

// NewDataRules returns the Rules driven purely by pack data.
func NewDataRules(p *Pack) Rules {
	names := make([]string, 0, len(p.TimesOfDay))
	for name := range p.TimesOfDay {
		names = append(names, name)
	}
	// Longest first so "tonight" wins over "night".
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	return &dataRules{pack: p, todNames: names}
}

func (r *dataRules) SwiftDay(text string) (int, bool) {
	v, ok := r.pack.SwiftDays[Normalize(text)]
	return v, ok
}

func (r *dataRules) SwiftPrefix(text string) int {
	norm := Normalize(text)
	if v, ok := r.pack.SwiftPrefix[norm]; ok {
		return v
	}
	// "next friday" style input: the prefix is the first word.
	if i := strings.IndexByte(norm, ' '); i > 0 {
		return r.pack.SwiftPrefix[norm[:i]]
	}
	return 0
}

func (r *dataRules) IsCardinalLast(text string) bool {
	norm := Normalize(text)
	for _, w := range r.pack.CardinalLast {
		if norm == w {
			return true
		}
	}
	return false
}

func (r *dataRules) MatchedTimeRange(text string) (TimeOfDay, bool) {
	words := strings.Fields(Normalize(text))
	joined := " " + strings.Join(words, " ") + " "
	for _, name := range r.todNames {
		if !strings.Contains(joined, " "+name+" ") {
			continue
		}
		tod := r.pack.TimesOfDay[name]
		switch {
		case containsWord(words, r.pack.EarlyWords):
			tod.EndHour = tod.BeginHour + 2
			tod.EndMinute = 0
			tod.Comment = model.CommentEarly
		case containsWord(words, r.pack.LateWords):
			tod.BeginHour += 2
			tod.Comment = model.CommentLate
		}
		return tod, true
	}
	return TimeOfDay{}, false
}

func (r *dataRules) HasConnectorToken(text string) bool {
	rx := r.pack.Range.ConnectorRegex
	if rx == nil {
		return false
	}
	loc := rx.FindStringIndex(text)
	return loc != nil && loc[0] == 0 && loc[1] == len(text)
}

func (r *dataRules) FromTokenIndex(text string) (int, bool) {
	return trailingIndex(r.pack.Range.From.End, text)
}

func (r *dataRules) BetweenTokenIndex(text string) (int, bool) {
	return trailingIndex(r.pack.Range.Between.End, text)
}

func trailingIndex(rx *regexp.Regexp, text string) (int, bool) {
	if rx == nil {
		return -1, false
	}
	loc := rx.FindStringIndex(text)
	if loc == nil {
		return -1, false
	}
	return loc[0], true
}

func containsWord(words, candidates []string) bool {
	for _, w := range words {
		for _, c := range candidates {
			if w == c {
				return true
			}
		}
	}
	return false
}
