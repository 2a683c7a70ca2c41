package parser

import (
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/datetimex/plugin/datetime/langpack"
	"github.com/hrygo/datetimex/plugin/datetime/model"
	"github.com/hrygo/datetimex/plugin/datetime/timexutil"
)

// measure is an amount of a single unit, "3 days" or "half an hour".
type measure struct {
	n       float64
	unit    string
	seconds float64
}

func (m measure) timex() string {
	return timexutil.DurationTimex(m.n, m.unit)
}

// Duration resolves amounts of time to a timex and a number of seconds.
type Duration struct {
	pack *langpack.Pack
}

// NewDuration creates a duration parser.
func NewDuration(p *langpack.Pack) (*Duration, error) {
	if p == nil || p.Duration.DurationRegex == nil || len(p.UnitMap) == 0 {
		return nil, errors.Wrap(langpack.ErrIncompletePack, "duration parser")
	}
	return &Duration{pack: p}, nil
}

func (d *Duration) Kind() model.EntityKind { return model.KindDuration }

func (d *Duration) Parse(er model.ExtractResult, _ time.Time) *model.ParseResult {
	m, ok := d.measure(er.Text)
	if !ok {
		return unresolved(er)
	}
	seconds := timexutil.FormatNumber(m.seconds)
	return resolved(er, &model.ResolutionResult{
		Timex:            m.timex(),
		FutureValue:      model.Seconds(m.seconds),
		PastValue:        model.Seconds(m.seconds),
		FutureResolution: map[string]string{model.ResolutionDuration: seconds},
		PastResolution:   map[string]string{model.ResolutionDuration: seconds},
	})
}

func (d *Duration) measure(text string) (measure, bool) {
	m, ok := d.pack.MatchExact(d.pack.Duration.DurationRegex, text)
	if !ok {
		return measure{}, false
	}
	var n float64
	switch {
	case m.Has("num"):
		if n, ok = parseNumber(d.pack, m.Group("num")); !ok {
			return measure{}, false
		}
	case m.Has("half"):
		n = 0.5
	default:
		n = 1
	}
	unit, ok := d.pack.UnitMap[langpack.Normalize(m.Group("unit"))]
	if !ok {
		return measure{}, false
	}
	return measure{n: n, unit: unit, seconds: n * float64(d.pack.UnitValueMap[unit])}, true
}
