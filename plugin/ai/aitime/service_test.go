package aitime

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/datetimex/plugin/datetime"
)

const layout = "2006-01-02 15:04"

func newTestService(t *testing.T) *Service {
	t.Helper()
	recognizer, err := datetime.New(nil)
	require.NoError(t, err)
	return NewService(recognizer, "en-US", "Asia/Shanghai")
}

func TestService_ParseNaturalTime(t *testing.T) {
	svc := newTestService(t)
	loc, _ := time.LoadLocation("Asia/Shanghai")
	// Friday
	ref := time.Date(2024, 3, 15, 10, 0, 0, 0, loc)

	tests := []struct {
		name      string
		input     string
		wantStart string
		wantEnd   string
	}{
		{"datetime", "lunch tomorrow at 3pm", "2024-03-16 15:00", "2024-03-16 16:00"},
		{"date", "meet next Friday", "2024-03-22 00:00", "2024-03-23 00:00"},
		{"holiday", "dentist on Christmas", "2024-12-25 00:00", "2024-12-26 00:00"},
		{"week", "busy next week", "2024-03-18 00:00", "2024-03-25 00:00"},
		{"time range", "free from 3pm to 5pm", "2024-03-15 15:00", "2024-03-15 17:00"},
		{"duration", "it takes 2 hours", "2024-03-15 10:00", "2024-03-15 12:00"},
		{"first wins", "today or tomorrow", "2024-03-15 00:00", "2024-03-16 00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.ParseNaturalTime(context.Background(), tt.input, ref)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, got.Start.Format(layout))
			assert.Equal(t, tt.wantEnd, got.End.Format(layout))
			assert.Equal(t, loc, got.Start.Location())
		})
	}
}

func TestService_ParseNaturalTime_Modifiers(t *testing.T) {
	svc := newTestService(t)
	loc, _ := time.LoadLocation("Asia/Shanghai")
	ref := time.Date(2024, 3, 15, 10, 0, 0, 0, loc)

	tests := []struct {
		name      string
		input     string
		wantStart string
		wantEnd   string // empty means open-ended
	}{
		{"before a date", "submit before March 1", "2024-03-15 10:00", "2025-03-01 00:00"},
		{"until a date includes it", "on or before March 1", "2024-03-15 10:00", "2025-03-02 00:00"},
		{"before a period", "done before next week", "2024-03-15 10:00", "2024-03-18 00:00"},
		{"after a time", "open after 3pm", "2024-03-15 15:00", ""},
		{"since takes the past date", "from March 1", "2024-03-01 00:00", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.ParseNaturalTime(context.Background(), tt.input, ref)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, got.Start.Format(layout))
			if tt.wantEnd == "" {
				assert.True(t, got.End.IsZero(), "end = %v", got.End)
				return
			}
			assert.Equal(t, tt.wantEnd, got.End.Format(layout))
		})
	}
}

func TestService_ParseNaturalTime_NoExpression(t *testing.T) {
	svc := newTestService(t)
	ref := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

	for _, input := range []string{"hello world", "every Monday at 9am", ""} {
		t.Run(input, func(t *testing.T) {
			_, err := svc.ParseNaturalTime(context.Background(), input, ref)
			assert.True(t, errors.Is(err, ErrNoTimeExpression), "got %v", err)
		})
	}
}

func TestService_ParseNaturalTime_Cancelled(t *testing.T) {
	svc := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.ParseNaturalTime(ctx, "tomorrow", time.Now())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestService_Normalize(t *testing.T) {
	svc := newTestService(t)
	svc.now = func() time.Time {
		return time.Date(2024, 3, 15, 2, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name     string
		timezone string
		want     string
	}{
		{"explicit timezone", "America/New_York", "2024-03-15 15:00"},
		{"default timezone", "", "2024-03-16 15:00"},
		{"invalid timezone", "Mars/Olympus", "2024-03-16 15:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Normalize(context.Background(), "tomorrow at 3pm", tt.timezone)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Format(layout))
		})
	}
}

func TestNewService_InvalidDefault(t *testing.T) {
	recognizer, err := datetime.New(nil)
	require.NoError(t, err)

	svc := NewService(recognizer, "en-US", "Nowhere/Special")
	assert.Equal(t, time.Local, svc.defaultTimezone)
}
