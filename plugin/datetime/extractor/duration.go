package extractor

import (
	"time"

	"github.com/hrygo/datetimex/plugin/datetime/langpack"
	"github.com/hrygo/datetimex/plugin/datetime/model"
)

// Duration extracts spans of time such as "3 days" or "half an hour".
type Duration struct {
	pack *langpack.Pack
}

// NewDuration creates a duration extractor.
func NewDuration(p *langpack.Pack) (*Duration, error) {
	if err := require(p, model.KindDuration,
		capability{"duration.regex", p != nil && p.Duration.DurationRegex != nil},
		capability{"maps.unit", p != nil && len(p.UnitMap) > 0},
	); err != nil {
		return nil, err
	}
	return &Duration{pack: p}, nil
}

func (e *Duration) Kind() model.EntityKind { return model.KindDuration }

func (e *Duration) Extract(text string, _ time.Time) []model.ExtractResult {
	return MergeAllTokens(matchTokens(e.pack.Duration.DurationRegex, text), text, model.KindDuration)
}
