package parser

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/datetimex/plugin/datetime/extractor"
	"github.com/hrygo/datetimex/plugin/datetime/langpack"
	"github.com/hrygo/datetimex/plugin/datetime/model"
)

func newTestMerged(t *testing.T, opts ...Option) *Merged {
	t.Helper()
	m, err := NewMerged(newTestPack(t), opts...)
	require.NoError(t, err)
	return m
}

type values = []map[string]string

func TestMerged_Parse(t *testing.T) {
	m := newTestMerged(t)

	tests := []struct {
		name     string
		text     string
		kind     model.EntityKind
		wantKind model.EntityKind
		timex    string
		want     values
	}{
		{
			name:     "relative weekday",
			text:     "next Friday",
			kind:     model.KindDate,
			wantKind: model.KindDate,
			timex:    "2024-03-22",
			want:     values{{"timex": "2024-03-22", "type": "date", "value": "2024-03-22"}},
		},
		{
			name:     "bare weekday collapses equal readings",
			text:     "Friday",
			kind:     model.KindDate,
			wantKind: model.KindDate,
			timex:    "XXXX-WXX-5",
			want:     values{{"timex": "XXXX-WXX-5", "type": "date", "value": "2024-03-15"}},
		},
		{
			name:     "from keeps its range meaning",
			text:     "from 3pm to 5pm",
			kind:     model.KindTimePeriod,
			wantKind: model.KindTimePeriod,
			timex:    "(T15,T17,PT2H)",
			want: values{{
				"timex": "(T15,T17,PT2H)", "type": "timerange",
				"start": "15:00:00", "end": "17:00:00",
			}},
		},
		{
			name:     "relative duration",
			text:     "3 days ago",
			kind:     model.KindDate,
			wantKind: model.KindDate,
			timex:    "2024-03-12",
			want:     values{{"timex": "2024-03-12", "type": "date", "value": "2024-03-12"}},
		},
		{
			name:     "before",
			text:     "before March 1",
			kind:     model.KindDate,
			wantKind: model.KindDatePeriod,
			timex:    "XXXX-03-01",
			want: values{
				{"timex": "XXXX-03-01", "type": "daterange", "Mod": "before", "end": "2024-03-01"},
				{"timex": "XXXX-03-01", "type": "daterange", "Mod": "before", "end": "2025-03-01"},
			},
		},
		{
			name:     "approx",
			text:     "sometime around 2024-03-20",
			kind:     model.KindDate,
			wantKind: model.KindDate,
			timex:    "2024-03-20",
			want:     values{{"timex": "2024-03-20", "type": "date", "Mod": "approx", "value": "2024-03-20"}},
		},
		{
			name:     "approx before",
			text:     "roughly before March 1",
			kind:     model.KindDate,
			wantKind: model.KindDatePeriod,
			timex:    "XXXX-03-01",
			want: values{
				{"timex": "XXXX-03-01", "type": "daterange", "Mod": "approx-before", "end": "2024-03-01"},
				{"timex": "XXXX-03-01", "type": "daterange", "Mod": "approx-before", "end": "2025-03-01"},
			},
		},
		{
			name:     "inclusive before",
			text:     "on or before March 1",
			kind:     model.KindDate,
			wantKind: model.KindDatePeriod,
			timex:    "XXXX-03-01",
			want: values{
				{"timex": "XXXX-03-01", "type": "daterange", "Mod": "until", "end": "2024-03-01"},
				{"timex": "XXXX-03-01", "type": "daterange", "Mod": "until", "end": "2025-03-01"},
			},
		},
		{
			name:     "since suffix",
			text:     "March 1 or later",
			kind:     model.KindDate,
			wantKind: model.KindDatePeriod,
			timex:    "XXXX-03-01",
			want: values{
				{"timex": "XXXX-03-01", "type": "daterange", "Mod": "since", "start": "2024-03-01"},
				{"timex": "XXXX-03-01", "type": "daterange", "Mod": "since", "start": "2025-03-01"},
			},
		},
		{
			name:     "from a single date",
			text:     "from March 20",
			kind:     model.KindDate,
			wantKind: model.KindDatePeriod,
			timex:    "XXXX-03-20",
			want: values{
				{"timex": "XXXX-03-20", "type": "daterange", "Mod": "since", "start": "2023-03-20"},
				{"timex": "XXXX-03-20", "type": "daterange", "Mod": "since", "start": "2024-03-20"},
			},
		},
		{
			name:     "after a time",
			text:     "after 3pm",
			kind:     model.KindTime,
			wantKind: model.KindTimePeriod,
			timex:    "T15",
			want:     values{{"timex": "T15", "type": "timerange", "Mod": "after", "start": "15:00:00"}},
		},
		{
			name:     "until a datetime",
			text:     "until tomorrow at 3pm",
			kind:     model.KindDateTime,
			wantKind: model.KindDateTimePeriod,
			timex:    "2024-03-16T15",
			want: values{{
				"timex": "2024-03-16T15", "type": "datetimerange", "Mod": "until",
				"end": "2024-03-16 15:00:00",
			}},
		},
		{
			name:     "before a period keeps its start",
			text:     "before next week",
			kind:     model.KindDatePeriod,
			wantKind: model.KindDatePeriod,
			timex:    "2024-W12",
			want:     values{{"timex": "2024-W12", "type": "daterange", "Mod": "before", "end": "2024-03-18"}},
		},
		{
			name:     "after a period keeps its end",
			text:     "after next week",
			kind:     model.KindDatePeriod,
			wantKind: model.KindDatePeriod,
			timex:    "2024-W12",
			want:     values{{"timex": "2024-W12", "type": "daterange", "Mod": "after", "start": "2024-03-25"}},
		},
		{
			name:     "period",
			text:     "next week",
			kind:     model.KindDatePeriod,
			wantKind: model.KindDatePeriod,
			timex:    "2024-W12",
			want:     values{{"timex": "2024-W12", "type": "daterange", "start": "2024-03-18", "end": "2024-03-25"}},
		},
		{
			name:     "holiday",
			text:     "Christmas",
			kind:     model.KindHoliday,
			wantKind: model.KindHoliday,
			timex:    "XXXX-12-25",
			want: values{
				{"timex": "XXXX-12-25", "type": "date", "value": "2023-12-25"},
				{"timex": "XXXX-12-25", "type": "date", "value": "2024-12-25"},
			},
		},
		{
			name:     "duration",
			text:     "3 days",
			kind:     model.KindDuration,
			wantKind: model.KindDuration,
			timex:    "P3D",
			want:     values{{"timex": "P3D", "type": "duration", "value": "259200"}},
		},
		{
			name:     "set",
			text:     "every Monday at 9am",
			kind:     model.KindSet,
			wantKind: model.KindSet,
			timex:    "XXXX-WXX-1T09",
			want: values{{
				"timex": "XXXX-WXX-1T09", "type": "set", "value": "not resolved",
				"rrule": "FREQ=WEEKLY;BYDAY=MO;BYHOUR=9",
			}},
		},
		{
			name:     "time of day keeps its comment",
			text:     "early morning",
			kind:     model.KindTimePeriod,
			wantKind: model.KindTimePeriod,
			timex:    "TMO",
			want: values{{
				"timex": "TMO", "type": "timerange", "Mod": "start", "Comment": "early",
				"start": "08:00:00", "end": "10:00:00",
			}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pr := m.Parse(span(tt.text, tt.kind), testRef)
			require.True(t, pr.Resolved(), "%q did not resolve", tt.text)
			assert.Equal(t, tt.wantKind, pr.Type)
			assert.Equal(t, tt.timex, pr.TimexStr)
			assert.Equal(t, tt.text, pr.Text, "the span keeps its modifier words")
			require.NotNil(t, pr.Resolution)
			assert.Equal(t, tt.want, pr.Resolution.Values)
		})
	}
}

func TestMerged_AmPmDoubling(t *testing.T) {
	m := newTestMerged(t)

	t.Run("bare hour", func(t *testing.T) {
		pr := m.Parse(span("3", model.KindTime), testRef)
		require.True(t, pr.Resolved())
		assert.Equal(t, values{
			{"timex": "T03", "type": "time", "value": "03:00:00"},
			{"timex": "T15", "type": "time", "value": "15:00:00"},
		}, pr.Resolution.Values)
	})

	t.Run("range", func(t *testing.T) {
		pr := m.Parse(span("from 3 to 5", model.KindTimePeriod), testRef)
		require.True(t, pr.Resolved())
		assert.Equal(t, values{
			{"timex": "(T03,T05,PT2H)", "type": "timerange", "start": "03:00:00", "end": "05:00:00"},
			{"timex": "(T15,T17,PT2H)", "type": "timerange", "start": "15:00:00", "end": "17:00:00"},
		}, pr.Resolution.Values)
	})

	t.Run("datetime", func(t *testing.T) {
		pr := m.Parse(span("tomorrow at 3", model.KindDateTime), testRef)
		require.True(t, pr.Resolved())
		assert.Equal(t, values{
			{"timex": "2024-03-16T03", "type": "datetime", "value": "2024-03-16 03:00:00"},
			{"timex": "2024-03-16T15", "type": "datetime", "value": "2024-03-16 15:00:00"},
		}, pr.Resolution.Values)
	})
}

func TestMerged_SubEntities(t *testing.T) {
	m := newTestMerged(t)

	pr := m.Parse(span("3 days ago", model.KindDate), testRef)
	require.True(t, pr.Resolved())
	assert.Empty(t, pr.Value.Mod)
	require.Len(t, pr.Value.SubEntities, 1)
	assert.Equal(t, "P3D", pr.Value.SubEntities[0].TimexStr)
}

func TestMerged_Unresolvable(t *testing.T) {
	m := newTestMerged(t)

	tests := []struct {
		name string
		er   model.ExtractResult
	}{
		{"core and whole fail", span("before someday", model.KindDate)},
		{"no cue and no parse", span("someday", model.KindDate)},
		{"unknown kind", span("tomorrow", model.KindMerged)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pr := m.Parse(tt.er, testRef)
			require.NotNil(t, pr)
			assert.False(t, pr.Resolved())
			assert.Nil(t, pr.Value)
			assert.Nil(t, pr.Resolution)
			assert.Equal(t, tt.er, pr.ExtractResult)
		})
	}
}

func TestMerged_ZeroRefUsesClock(t *testing.T) {
	m := newTestMerged(t, WithClock(func() time.Time { return testRef }))

	pr := m.Parse(span("today", model.KindDate), time.Time{})
	require.True(t, pr.Resolved())
	assert.Equal(t, "2024-03-15", pr.TimexStr)
}

func TestNewMerged_IncompletePack(t *testing.T) {
	_, err := NewMerged(nil)
	assert.True(t, errors.Is(err, langpack.ErrIncompletePack))

	_, err = NewMerged(&langpack.Pack{})
	assert.True(t, errors.Is(err, langpack.ErrIncompletePack))
}

func TestCombineMod(t *testing.T) {
	assert.Equal(t, "before", combineMod("", "before"))
	assert.Equal(t, "approx-before", combineMod("before", "approx"))
}

// The extractor and the parser together, with offsets into the input.
func TestPipeline(t *testing.T) {
	p := newTestPack(t)
	ext, err := extractor.NewMerged(p)
	require.NoError(t, err)
	m, err := NewMerged(p)
	require.NoError(t, err)

	text := "submit before March 1, then meet next Friday from 3pm to 5pm"
	ers := ext.Extract(text, testRef)

	got := make(map[string]string)
	for _, er := range ers {
		pr := m.Parse(er, testRef)
		require.True(t, pr.Resolved(), "%s did not resolve", er)
		assert.Equal(t, er.Text, text[pr.Start:pr.End()])
		got[pr.Text] = pr.TimexStr
	}
	assert.Equal(t, "XXXX-03-01", got["before March 1"])
}
