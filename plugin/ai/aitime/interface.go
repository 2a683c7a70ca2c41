// Package aitime answers the time questions a dialogue agent asks: when is
// "tomorrow at 3pm", and what span does "next week" cover.
package aitime

import (
	"context"
	"time"
)

// TimeService defines the time parsing service interface.
type TimeService interface {
	// Normalize returns the start of the first time expression in input,
	// evaluated now in timezone.
	// Supports: "tomorrow at 3pm", "next Friday", "2026-01-28", "15:00"
	Normalize(ctx context.Context, input string, timezone string) (time.Time, error)

	// ParseNaturalTime returns the span covered by the first time expression
	// in input, relative to reference.
	ParseNaturalTime(ctx context.Context, input string, reference time.Time) (TimeRange, error)
}

// TimeRange represents a time range. End is exclusive; a zero End means the
// range is open-ended ("after March 1").
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}
