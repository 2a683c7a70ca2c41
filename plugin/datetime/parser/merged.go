package parser

import (
	"log/slog"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/datetimex/plugin/datetime/langpack"
	"github.com/hrygo/datetimex/plugin/datetime/model"
)

// Option configures a Merged parser.
type Option func(*Merged)

// WithLogger sets the logger for abandoned modifiers.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Merged) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClock replaces time.Now as the default reference time.
func WithClock(now func() time.Time) Option {
	return func(m *Merged) {
		if now != nil {
			m.now = now
		}
	}
}

// Merged parses the output of the merged extractor. It strips modifier cues
// the extractor attached to a span, parses the core with the parser for the
// span's kind, and applies the modifier to the result.
type Merged struct {
	pack    *langpack.Pack
	parsers map[model.EntityKind]Parser
	logger  *slog.Logger
	now     func() time.Time
}

// NewMerged builds the parser for every entity kind.
func NewMerged(p *langpack.Pack, opts ...Option) (*Merged, error) {
	if p == nil {
		return nil, errors.Wrap(langpack.ErrIncompletePack, "merged parser: nil pack")
	}
	m := &Merged{
		pack:    p,
		parsers: make(map[model.EntityKind]Parser),
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, build := range []func(*langpack.Pack) (Parser, error){
		func(p *langpack.Pack) (Parser, error) { return NewDate(p) },
		func(p *langpack.Pack) (Parser, error) { return NewTime(p) },
		func(p *langpack.Pack) (Parser, error) { return NewDuration(p) },
		func(p *langpack.Pack) (Parser, error) { return NewDatePeriod(p) },
		func(p *langpack.Pack) (Parser, error) { return NewDateTime(p) },
		func(p *langpack.Pack) (Parser, error) { return NewTimePeriod(p) },
		func(p *langpack.Pack) (Parser, error) { return NewDateTimePeriod(p) },
		func(p *langpack.Pack) (Parser, error) { return NewSet(p) },
		func(p *langpack.Pack) (Parser, error) { return NewHoliday(p) },
	} {
		parser, err := build(p)
		if err != nil {
			return nil, errors.Wrap(err, "merged parser")
		}
		m.parsers[parser.Kind()] = parser
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

func (m *Merged) Kind() model.EntityKind { return model.KindMerged }

// cues records the modifier cues stripped from a span.
type cues struct {
	before, after, until, since, around, equal, include bool
	// rangeFrom is set when the since cue may instead open "from X to Y".
	rangeFrom bool
}

// rangeMod is the modifier that turns a point into a half-open period.
func (c cues) rangeMod() string {
	switch {
	case c.before && (c.include || c.equal):
		return model.ModUntil
	case c.before:
		return model.ModBefore
	case c.after && (c.include || c.equal):
		return model.ModSince
	case c.after:
		return model.ModAfter
	case c.until:
		return model.ModUntil
	case c.since:
		return model.ModSince
	}
	return ""
}

func (c cues) any() bool {
	return c.before || c.after || c.until || c.since || c.around || c.equal
}

// Parse resolves er against ref; a zero ref means now. A span whose core
// cannot be parsed is returned without a value.
func (m *Merged) Parse(er model.ExtractResult, ref time.Time) *model.ParseResult {
	if ref.IsZero() {
		ref = m.now()
	}
	parser, ok := m.parsers[er.Type]
	if !ok {
		return model.NewParseResult(er)
	}

	core, found := m.stripCues(er)
	if found.rangeFrom {
		if whole := parser.Parse(er, ref); whole.Resolved() {
			core, found = er, cues{}
		}
	}
	pr := parser.Parse(core, ref)
	if !pr.Resolved() {
		if !found.any() {
			return model.NewParseResult(er)
		}
		m.logger.Debug("modifier abandoned", slog.String("span", er.String()))
		if pr = parser.Parse(er, ref); !pr.Resolved() {
			return model.NewParseResult(er)
		}
		found = cues{}
	}

	res := pr.Value
	kind := er.Type
	rangeMod := found.rangeMod()
	if rangeMod != "" {
		res.Mod = combineMod(res.Mod, rangeMod)
		kind = kind.Promoted()
	}
	if found.around {
		res.Mod = combineMod(res.Mod, model.ModApprox)
	}

	out := model.NewParseResult(er)
	out.Type = kind
	out.Value = res
	out.TimexStr = res.Timex
	out.Resolution = buildResolution(kind, res, rangeMod)
	return out
}

// stripCues peels modifier cues off the front and a since-suffix off the end
// of er, in any order and number.
func (m *Merged) stripCues(er model.ExtractResult) (model.ExtractResult, cues) {
	cfg := m.pack.Merged
	var found cues
	prefixes := []struct {
		cue  langpack.Cue
		flag *bool
	}{
		{cfg.Before, &found.before},
		{cfg.After, &found.after},
		{cfg.Until, &found.until},
		{cfg.SincePrefix, &found.since},
		{cfg.Around, &found.around},
		{cfg.Equal, &found.equal},
	}

	text, start := er.Text, er.Start
	for stripped := true; stripped; {
		stripped = false
		for _, p := range prefixes {
			if !p.cue.Matched() {
				continue
			}
			groups := p.cue.Begin.FindStringSubmatchIndex(text)
			if groups == nil || groups[1] == 0 || groups[1] >= len(text) {
				continue
			}
			if i := p.cue.Begin.SubexpIndex("include"); i > 0 && groups[2*i] >= 0 {
				found.include = true
			}
			if p.flag == &found.since && cfg.AmbiguousRangePrefix != nil && cfg.AmbiguousRangePrefix.MatchString(text[:groups[1]]) {
				found.rangeFrom = true
			}
			*p.flag = true
			text, start = text[groups[1]:], start+groups[1]
			stripped = true
			break
		}
	}

	if cfg.SinceSuffix.Matched() {
		if loc := cfg.SinceSuffix.End.FindStringIndex(text); loc != nil && loc[0] > 0 {
			text = strings.TrimRight(text[:loc[0]], " \t")
			found.since = true
		}
	}

	return model.ExtractResult{
		Start:  start,
		Length: len(text),
		Text:   text,
		Type:   er.Type,
		Data:   er.Data,
	}, found
}

// combineMod prefixes an existing modifier with a new one: "approx-before".
func combineMod(orig, mod string) string {
	if orig == "" {
		return mod
	}
	return mod + "-" + orig
}
