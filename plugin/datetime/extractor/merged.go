package extractor

import (
	"log/slog"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/hrygo/datetimex/plugin/datetime/langpack"
	"github.com/hrygo/datetimex/plugin/datetime/model"
)

// Option configures a Merged extractor.
type Option func(*Merged)

// WithLogger sets the logger for discarded candidates.
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

// Merged runs every single-entity extractor in precedence order and folds the
// results into one non-overlapping list.
type Merged struct {
	pack       *langpack.Pack
	extractors []Extractor
	logger     *slog.Logger
	now        func() time.Time
}

// NewMerged builds the full extractor pipeline for a pack. Any capability the
// pipeline needs but the pack lacks is reported here.
func NewMerged(p *langpack.Pack, opts ...Option) (*Merged, error) {
	date, err := NewDate(p)
	if err != nil {
		return nil, err
	}
	tm, err := NewTime(p)
	if err != nil {
		return nil, err
	}
	duration, err := NewDuration(p)
	if err != nil {
		return nil, err
	}
	datePeriod, err := NewDatePeriod(p)
	if err != nil {
		return nil, err
	}
	dateTime, err := NewDateTime(p)
	if err != nil {
		return nil, err
	}
	timePeriod, err := NewTimePeriod(p)
	if err != nil {
		return nil, err
	}
	dateTimePeriod, err := NewDateTimePeriod(p)
	if err != nil {
		return nil, err
	}
	set, err := NewSet(p)
	if err != nil {
		return nil, err
	}
	holiday, err := NewHoliday(p)
	if err != nil {
		return nil, err
	}

	m := &Merged{
		pack: p,
		// Later entries may subsume earlier ones.
		extractors: []Extractor{
			date,
			tm,
			duration,
			datePeriod,
			dateTime,
			timePeriod,
			dateTimePeriod,
			set,
			holiday,
		},
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

func (m *Merged) Kind() model.EntityKind { return model.KindMerged }

// Extract returns the recognized spans ordered by start. A zero ref means now.
func (m *Merged) Extract(text string, ref time.Time) []model.ExtractResult {
	if ref.IsZero() {
		ref = m.now()
	}

	var results []model.ExtractResult
	for _, ex := range m.extractors {
		for _, er := range ex.Extract(text, ref) {
			next := addTo(results, er)
			if !lo.ContainsBy(next, func(r model.ExtractResult) bool { return sameSpan(r, er) }) {
				m.logger.Debug("candidate discarded", slog.String("candidate", er.String()))
			}
			results = next
		}
	}

	results = m.filterAmbiguous(text, results)
	results = m.extendModifiers(text, results)
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Start < results[j].Start
	})
	return results
}

// filterAmbiguous drops results whose text matches a filter pattern when the
// filter's exclusion matches a span enclosing them ("may" in "may I").
func (m *Merged) filterAmbiguous(text string, results []model.ExtractResult) []model.ExtractResult {
	filters := m.pack.Merged.AmbiguityFilters
	if len(filters) == 0 {
		return results
	}
	return lo.Reject(results, func(er model.ExtractResult, _ int) bool {
		for _, f := range filters {
			if !f.Pattern.MatchString(er.Text) {
				continue
			}
			for _, loc := range f.Exclusion.FindAllStringIndex(text, -1) {
				if loc[0] <= er.Start && loc[1] >= er.End() {
					m.logger.Debug("ambiguous result filtered", slog.String("result", er.String()))
					return true
				}
			}
		}
		return false
	})
}

// extendModifiers grows each result over adjacent modifier cues so the parser
// can see them. Extension never crosses a neighbouring result.
func (m *Merged) extendModifiers(text string, results []model.ExtractResult) []model.ExtractResult {
	out := make([]model.ExtractResult, len(results))
	copy(out, results)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start < out[j].Start
	})

	cfg := m.pack.Merged
	prefixes := []langpack.Cue{cfg.Before, cfg.After, cfg.Until, cfg.SincePrefix, cfg.Around, cfg.Equal}

	for i := range out {
		if out[i].Type == model.KindSet {
			continue
		}
		lower := 0
		if i > 0 {
			lower = out[i-1].End()
		}
		upper := len(text)
		if i+1 < len(out) {
			upper = out[i+1].Start
		}

		for extended := true; extended; {
			extended = false
			before := text[lower:out[i].Start]
			for _, cue := range prefixes {
				if !cue.Matched() {
					continue
				}
				loc := cue.End.FindStringIndex(before)
				if loc == nil || lower+loc[0] >= out[i].Start {
					continue
				}
				if cue == cfg.SincePrefix && m.opensRange(before[loc[0]:], text[out[i].End():upper]) {
					continue
				}
				out[i] = span(text, lower+loc[0], out[i].End(), out[i])
				extended = true
				break
			}
		}

		if cfg.SinceSuffix.Matched() {
			after := text[out[i].End():upper]
			if loc := cfg.SinceSuffix.Begin.FindStringIndex(after); loc != nil {
				out[i] = span(text, out[i].Start, out[i].End()+langpack.TrimCueEnd(after[:loc[1]]), out[i])
			}
		}
	}
	return out
}

// opensRange reports whether an ambiguous since-prefix such as "from" actually
// opens a "from X to Y" range.
func (m *Merged) opensRange(cue, after string) bool {
	rx := m.pack.Merged.AmbiguousRangePrefix
	if rx == nil || !rx.MatchString(cue) {
		return false
	}
	return m.pack.Range.Till.Matched() && m.pack.Range.Till.Begin.MatchString(after)
}

func sameSpan(a, b model.ExtractResult) bool {
	return a.Start == b.Start && a.Length == b.Length && a.Type == b.Type
}

func span(text string, start, end int, er model.ExtractResult) model.ExtractResult {
	return model.ExtractResult{
		Start:  start,
		Length: end - start,
		Text:   text[start:end],
		Type:   er.Type,
		Data:   er.Data,
	}
}
