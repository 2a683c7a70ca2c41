package extractor

import (
	"time"

	"github.com/hrygo/datetimex/plugin/datetime/langpack"
	"github.com/hrygo/datetimex/plugin/datetime/model"
)

// Holiday extracts named holidays.
type Holiday struct {
	pack *langpack.Pack
}

// NewHoliday creates a holiday extractor. Packs without holiday data yield an
// extractor that finds nothing.
func NewHoliday(p *langpack.Pack) (*Holiday, error) {
	if err := require(p, model.KindHoliday); err != nil {
		return nil, err
	}
	return &Holiday{pack: p}, nil
}

func (e *Holiday) Kind() model.EntityKind { return model.KindHoliday }

func (e *Holiday) Extract(text string, _ time.Time) []model.ExtractResult {
	return MergeAllTokens(matchTokens(e.pack.Holiday.HolidayRegex, text), text, model.KindHoliday)
}
