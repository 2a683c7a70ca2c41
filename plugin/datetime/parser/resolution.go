package parser

import (
	"maps"
	"strings"

	"github.com/samber/lo"

	"github.com/hrygo/datetimex/plugin/datetime/model"
	"github.com/hrygo/datetimex/plugin/datetime/timexutil"
	"github.com/hrygo/datetimex/server/scheduler/rrule"
)

// buildResolution renders the consumer-facing values. Identical future and
// past readings collapse into one entry; an ampm comment doubles every entry
// into a morning and an afternoon reading.
func buildResolution(kind model.EntityKind, res *model.ResolutionResult, rangeMod string) *model.Resolution {
	future := resolutionEntry(kind, res, res.FutureResolution, rangeMod)
	past := resolutionEntry(kind, res, res.PastResolution, rangeMod)

	// Past first, then future.
	values := []map[string]string{future}
	if !maps.Equal(future, past) {
		values = []map[string]string{past, future}
	}

	if res.Comment == model.CommentAmPm {
		values = lo.FlatMap(values, func(v map[string]string, _ int) []map[string]string {
			return []map[string]string{v, toPm(v)}
		})
	}
	return &model.Resolution{Values: values}
}

func resolutionEntry(kind model.EntityKind, res *model.ResolutionResult, resolution map[string]string, rangeMod string) map[string]string {
	timex := res.Timex
	if t, ok := resolution[model.ResolutionTimex]; ok {
		timex = t
	}
	entry := map[string]string{
		model.KeyTimex: timex,
		model.KeyType:  kind.ResolutionType(),
	}
	if res.Mod != "" {
		entry[model.KeyMod] = res.Mod
	}
	if res.Comment != "" && res.Comment != model.CommentAmPm {
		entry[model.KeyComment] = res.Comment
	}
	if res.IsLunar {
		entry[model.KeyIsLunar] = "true"
	}
	return lo.Assign(entry, resolutionValues(resolution, rangeMod))
}

// resolutionValues picks value, start and end from a per-entity resolution
// map. A range modifier keeps only the side of the period it bounds.
func resolutionValues(resolution map[string]string, rangeMod string) map[string]string {
	if timex, ok := resolution[model.ResolutionSet]; ok {
		values := map[string]string{model.KeyValue: model.NotResolved}
		if rule, err := rrule.FromTimex(timex); err == nil {
			values[model.KeyRRule] = rule.String()
		}
		return values
	}
	if v, ok := resolution[model.ResolutionDuration]; ok {
		return map[string]string{model.KeyValue: v}
	}

	for _, key := range []string{model.ResolutionDate, model.ResolutionTime, model.ResolutionDateTime} {
		v, ok := resolution[key]
		if !ok {
			continue
		}
		switch rangeMod {
		case model.ModBefore, model.ModUntil:
			return map[string]string{model.KeyEnd: v}
		case model.ModAfter, model.ModSince:
			return map[string]string{model.KeyStart: v}
		}
		return map[string]string{model.KeyValue: v}
	}

	for _, keys := range [][2]string{
		{model.ResolutionStartDate, model.ResolutionEndDate},
		{model.ResolutionStartTime, model.ResolutionEndTime},
		{model.ResolutionStartDateTime, model.ResolutionEndDateTime},
	} {
		start, ok := resolution[keys[0]]
		if !ok {
			continue
		}
		end := resolution[keys[1]]
		switch rangeMod {
		case model.ModBefore:
			return map[string]string{model.KeyEnd: start}
		case model.ModAfter:
			return map[string]string{model.KeyStart: end}
		case model.ModSince:
			return map[string]string{model.KeyStart: start}
		case model.ModUntil:
			return map[string]string{model.KeyEnd: end}
		}
		return map[string]string{model.KeyStart: start, model.KeyEnd: end}
	}
	return map[string]string{}
}

// toPm shifts the timex and every time-bearing value twelve hours.
func toPm(entry map[string]string) map[string]string {
	out := maps.Clone(entry)
	out[model.KeyTimex] = timexutil.AllStringToPm(entry[model.KeyTimex])
	for _, key := range []string{model.KeyValue, model.KeyStart, model.KeyEnd} {
		if v, ok := out[key]; ok && strings.Contains(v, ":") {
			out[key] = timexutil.ShiftValueToPm(v)
		}
	}
	return out
}
