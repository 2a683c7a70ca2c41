package datetime

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/datetimex/plugin/datetime/langpack"
	"github.com/hrygo/datetimex/plugin/datetime/model"
)

var testRef = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func newTestRecognizer(t *testing.T, opts ...Option) *Recognizer {
	t.Helper()
	r, err := New(nil, opts...)
	require.NoError(t, err)
	return r
}

func TestRecognizer_Recognize(t *testing.T) {
	r := newTestRecognizer(t)

	tests := []struct {
		name string
		text string
		want []Result
	}{
		{
			name: "datetime",
			text: "call me tomorrow at 3pm",
			want: []Result{{
				Start: 8, End: 23, Text: "tomorrow at 3pm", TypeName: "datetimeV2.datetime",
				Resolution: &model.Resolution{Values: []map[string]string{
					{"timex": "2024-03-16T15", "type": "datetime", "value": "2024-03-16 15:00:00"},
				}},
			}},
		},
		{
			name: "modifier promotes to a range",
			text: "submit before March 1",
			want: []Result{{
				Start: 7, End: 21, Text: "before March 1", TypeName: "datetimeV2.daterange",
				Resolution: &model.Resolution{Values: []map[string]string{
					{"timex": "XXXX-03-01", "type": "daterange", "Mod": "before", "end": "2024-03-01"},
					{"timex": "XXXX-03-01", "type": "daterange", "Mod": "before", "end": "2025-03-01"},
				}},
			}},
		},
		{
			name: "holiday reports as a date",
			text: "closed on Christmas",
			want: []Result{{
				Start: 10, End: 19, Text: "Christmas", TypeName: "datetimeV2.date",
				Resolution: &model.Resolution{Values: []map[string]string{
					{"timex": "XXXX-12-25", "type": "date", "value": "2023-12-25"},
					{"timex": "XXXX-12-25", "type": "date", "value": "2024-12-25"},
				}},
			}},
		},
		{
			name: "nothing",
			text: "no temporal content here",
			want: []Result{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Recognize(context.Background(), "en-US", tt.text, testRef)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			for _, res := range got {
				assert.Equal(t, res.Text, tt.text[res.Start:res.End])
			}
		})
	}
}

func TestRecognizer_ExtractThenParse(t *testing.T) {
	r := newTestRecognizer(t)

	ers, err := r.Extract("en", "today and next week", testRef)
	require.NoError(t, err)
	require.Len(t, ers, 2)

	pr, err := r.Parse("en", ers[1], testRef)
	require.NoError(t, err)
	require.True(t, pr.Resolved())
	assert.Equal(t, "2024-W12", pr.TimexStr)
}

func TestRecognizer_Culture(t *testing.T) {
	r := newTestRecognizer(t)
	assert.Equal(t, []string{"en-US"}, r.Cultures())

	got, err := r.Recognize(context.Background(), "en-GB", "see you tomorrow", testRef)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = r.Recognize(context.Background(), "fr-FR", "demain", testRef)
	assert.True(t, errors.Is(err, langpack.ErrUnsupportedCulture))

	_, err = r.Extract("fr-FR", "demain", testRef)
	assert.True(t, errors.Is(err, langpack.ErrUnsupportedCulture))
}

func TestRecognizer_ZeroRefUsesClock(t *testing.T) {
	r := newTestRecognizer(t, WithClock(func() time.Time { return testRef }))

	got, err := r.Recognize(context.Background(), "", "see you tomorrow", time.Time{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2024-03-16", got[0].Resolution.Values[0]["timex"])
}

func TestRecognizer_RecognizeBatch(t *testing.T) {
	r := newTestRecognizer(t, WithWorkers(2))

	texts := []string{"today and next week", "", "closed on Christmas", "call me tomorrow at 3pm"}
	got, err := r.RecognizeBatch(context.Background(), "", texts, testRef)
	require.NoError(t, err)
	require.Len(t, got, len(texts))

	assert.Len(t, got[0], 2)
	assert.Empty(t, got[1])
	require.Len(t, got[2], 1)
	assert.Equal(t, "Christmas", got[2][0].Text)
	require.Len(t, got[3], 1)
	assert.Equal(t, "tomorrow at 3pm", got[3][0].Text)

	// Each document is recognized exactly as Recognize would.
	for i, text := range texts {
		single, err := r.Recognize(context.Background(), "", text, testRef)
		require.NoError(t, err)
		assert.Equal(t, single, got[i])
	}
}

func TestRecognizer_Cancelled(t *testing.T) {
	r := newTestRecognizer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Recognize(ctx, "", "tomorrow", testRef)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = r.RecognizeBatch(ctx, "", []string{"tomorrow", "next week"}, testRef)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRecognizer_SharedPipeline(t *testing.T) {
	r := newTestRecognizer(t)

	a, err := r.pipelineFor("en-US")
	require.NoError(t, err)
	b, err := r.pipelineFor("en-GB")
	require.NoError(t, err)
	assert.Same(t, a, b)
}
