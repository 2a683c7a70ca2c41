package langpack

import (
	"regexp"
	"strings"
	"unicode"
)

// Match is a regex submatch paired with its pattern, so groups can be read by
// name. Patterns may repeat a group name across alternatives.
type Match struct {
	rx     *regexp.Regexp
	groups []string
}

// Group returns the first non-empty capture named name.
func (m Match) Group(name string) string {
	for i, n := range m.rx.SubexpNames() {
		if n == name && i < len(m.groups) && m.groups[i] != "" {
			return m.groups[i]
		}
	}
	return ""
}

// Has reports whether the named group captured anything.
func (m Match) Has(name string) bool {
	return m.Group(name) != ""
}

// Text returns the whole match.
func (m Match) Text() string {
	return m.groups[0]
}

// MatchExact matches rx against the trimmed text and succeeds only when the
// match covers all of it. Anchored copies of the pack's patterns are compiled
// on first use and cached on the pack.
func (p *Pack) MatchExact(rx *regexp.Regexp, text string) (Match, bool) {
	if rx == nil {
		return Match{}, false
	}
	anchored := p.anchored(rx)
	groups := anchored.FindStringSubmatch(strings.TrimSpace(text))
	if groups == nil {
		return Match{}, false
	}
	return Match{rx: anchored, groups: groups}, true
}

func (p *Pack) anchored(rx *regexp.Regexp) *regexp.Regexp {
	if v, ok := p.exact.Load(rx); ok {
		return v.(*regexp.Regexp)
	}
	a := regexp.MustCompile(`^(?:` + rx.String() + `)$`)
	v, _ := p.exact.LoadOrStore(rx, a)
	return v.(*regexp.Regexp)
}

// MatchFirst returns the leftmost match of rx in text.
func MatchFirst(rx *regexp.Regexp, text string) (Match, bool) {
	if rx == nil {
		return Match{}, false
	}
	groups := rx.FindStringSubmatch(text)
	if groups == nil {
		return Match{}, false
	}
	return Match{rx: rx, groups: groups}, true
}

// FullMatch reports whether rx matches all of text.
func FullMatch(rx *regexp.Regexp, text string) bool {
	if rx == nil {
		return false
	}
	loc := rx.FindStringIndex(text)
	return loc != nil && loc[0] == 0 && loc[1] == len(text)
}

// TrimCueEnd drops the trailing whitespace a Begin cue consumed, returning the
// length of the cue itself.
func TrimCueEnd(s string) int {
	return len(strings.TrimRightFunc(s, unicode.IsSpace))
}
