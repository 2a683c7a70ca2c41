package extractor

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	trequire "github.com/stretchr/testify/require"

	"github.com/hrygo/datetimex/plugin/datetime/langpack"
	"github.com/hrygo/datetimex/plugin/datetime/model"
)

var testRef = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func newTestMerged(t *testing.T) *Merged {
	t.Helper()
	p, err := langpack.NewEnglish()
	trequire.NoError(t, err)
	m, err := NewMerged(p)
	trequire.NoError(t, err)
	return m
}

type entity struct {
	text string
	kind model.EntityKind
}

func TestMerged_Extract(t *testing.T) {
	m := newTestMerged(t)

	tests := []struct {
		name string
		text string
		want []entity
	}{
		{
			name: "relative weekday",
			text: "I'll see you next Friday",
			want: []entity{{"next Friday", model.KindDate}},
		},
		{
			name: "time range",
			text: "busy from 3pm to 5pm",
			want: []entity{{"from 3pm to 5pm", model.KindTimePeriod}},
		},
		{
			name: "relative duration",
			text: "it shipped 3 days ago",
			want: []entity{{"3 days ago", model.KindDate}},
		},
		{
			name: "before modifier",
			text: "submit before March 1",
			want: []entity{{"before March 1", model.KindDate}},
		},
		{
			name: "around modifier",
			text: "sometime around 2024-03-20",
			want: []entity{{"sometime around 2024-03-20", model.KindDate}},
		},
		{
			name: "since suffix",
			text: "March 1 or later works",
			want: []entity{{"March 1 or later", model.KindDate}},
		},
		{
			name: "date and time",
			text: "call me tomorrow at 3pm",
			want: []entity{{"tomorrow at 3pm", model.KindDateTime}},
		},
		{
			name: "date and time of day",
			text: "tomorrow morning works",
			want: []entity{{"tomorrow morning", model.KindDateTimePeriod}},
		},
		{
			name: "narrowed tonight",
			text: "call me late tonight",
			want: []entity{{"late tonight", model.KindDateTimePeriod}},
		},
		{
			name: "at an hour",
			text: "the call is at 3",
			want: []entity{{"at 3", model.KindTime}},
		},
		{
			name: "at an hour opening a range",
			text: "the call is at 3 to 5pm",
			want: []entity{{"3 to 5pm", model.KindTimePeriod}},
		},
		{
			name: "at a clock time",
			text: "the call is at 15:30",
			want: []entity{{"15:30", model.KindTime}},
		},
		{
			name: "date and bare hour range",
			text: "free tomorrow 3 to 5",
			want: []entity{{"tomorrow 3 to 5", model.KindDateTimePeriod}},
		},
		{
			name: "date range",
			text: "from March 1 to March 5",
			want: []entity{{"from March 1 to March 5", model.KindDatePeriod}},
		},
		{
			name: "set",
			text: "standup every Monday at 9am",
			want: []entity{{"every Monday at 9am", model.KindSet}},
		},
		{
			name: "holiday",
			text: "closed on Christmas",
			want: []entity{{"Christmas", model.KindHoliday}},
		},
		{
			name: "two results in order",
			text: "today and next week",
			want: []entity{{"today", model.KindDate}, {"next week", model.KindDatePeriod}},
		},
		{
			name: "nothing",
			text: "no temporal content here",
			want: []entity{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.Extract(tt.text, testRef)
			entities := make([]entity, 0, len(got))
			for _, r := range got {
				assert.True(t, r.Valid(), r.String())
				assert.Equal(t, tt.text[r.Start:r.End()], r.Text)
				entities = append(entities, entity{r.Text, r.Type})
			}
			assert.Equal(t, tt.want, entities)
			assertNoOverlap(t, got)
		})
	}
}

func TestMerged_AmbiguityFilters(t *testing.T) {
	m := newTestMerged(t)

	tests := []struct {
		text string
		want int
	}{
		{"may I ask a question", 0},
		{"good morning team", 0},
		{"that is fine for now", 0},
		{"see you in May", 1},
		{"meet in the morning", 1},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Len(t, m.Extract(tt.text, testRef), tt.want)
		})
	}
}

func TestMerged_FromOpensRange(t *testing.T) {
	m := newTestMerged(t)

	got := m.Extract("from March 1", testRef)
	trequire.Len(t, got, 1)
	assert.Equal(t, "from March 1", got[0].Text)

	// "from" followed by a dangling range connector is not a since cue.
	got = m.Extract("from March 1 - tbd", testRef)
	trequire.Len(t, got, 1)
	assert.Equal(t, "March 1", got[0].Text)
}

func TestMerged_ZeroRefUsesClock(t *testing.T) {
	p, err := langpack.NewEnglish()
	trequire.NoError(t, err)

	called := false
	m, err := NewMerged(p, WithClock(func() time.Time {
		called = true
		return testRef
	}))
	trequire.NoError(t, err)

	got := m.Extract("tomorrow", time.Time{})
	assert.True(t, called)
	trequire.Len(t, got, 1)
	assert.Equal(t, model.KindDate, got[0].Type)
}

func TestMerged_Deterministic(t *testing.T) {
	m := newTestMerged(t)
	text := "between March 1 and March 5, then next Friday from 3pm to 5pm, weekly"
	first := m.Extract(text, testRef)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, m.Extract(text, testRef))
	}
	assertNoOverlap(t, first)
	for i := 1; i < len(first); i++ {
		assert.LessOrEqual(t, first[i-1].Start, first[i].Start)
	}
}

func TestNewMerged_IncompletePack(t *testing.T) {
	_, err := NewMerged(nil)
	assert.True(t, errors.Is(err, langpack.ErrIncompletePack))

	_, err = NewMerged(&langpack.Pack{})
	assert.True(t, errors.Is(err, langpack.ErrIncompletePack))
}
