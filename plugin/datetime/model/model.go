// Package model holds the value objects shared by the datetime extractors and parsers.
package model

import (
	"fmt"
	"time"
)

// EntityKind is the closed set of temporal entity kinds.
type EntityKind string

const (
	KindDate           EntityKind = "date"
	KindTime           EntityKind = "time"
	KindDateTime       EntityKind = "datetime"
	KindDatePeriod     EntityKind = "dateperiod"
	KindTimePeriod     EntityKind = "timeperiod"
	KindDateTimePeriod EntityKind = "datetimeperiod"
	KindDuration       EntityKind = "duration"
	KindSet            EntityKind = "set"
	KindHoliday        EntityKind = "holiday"
	// KindMerged is the umbrella kind assigned to the pipeline's own output.
	KindMerged EntityKind = "datetimeV2"
)

// ResolutionType returns the consumer-facing type name used in resolutions.
func (k EntityKind) ResolutionType() string {
	switch k {
	case KindDate, KindHoliday:
		return "date"
	case KindTime:
		return "time"
	case KindDateTime:
		return "datetime"
	case KindDatePeriod:
		return "daterange"
	case KindTimePeriod:
		return "timerange"
	case KindDateTimePeriod:
		return "datetimerange"
	case KindDuration:
		return "duration"
	case KindSet:
		return "set"
	default:
		return string(k)
	}
}

// Promoted returns the period kind a point kind becomes once a range-changing
// modifier is attached. Other kinds are returned unchanged.
func (k EntityKind) Promoted() EntityKind {
	switch k {
	case KindDate, KindHoliday:
		return KindDatePeriod
	case KindTime:
		return KindTimePeriod
	case KindDateTime:
		return KindDateTimePeriod
	default:
		return k
	}
}

// Token is a half-open span [Start, End) into the source text.
type Token struct {
	Start int
	End   int
}

// NewToken creates a token.
func NewToken(start, end int) Token {
	return Token{Start: start, End: end}
}

// Length returns End-Start.
func (t Token) Length() int {
	return t.End - t.Start
}

// ExtractResult is one recognized span. Offsets are byte offsets into the input.
type ExtractResult struct {
	Start  int        `json:"start"`
	Length int        `json:"length"`
	Text   string     `json:"text"`
	Type   EntityKind `json:"type"`
	// Data is an opaque payload owned by the originating extractor.
	Data any `json:"-"`
}

// End returns the exclusive end offset.
func (er ExtractResult) End() int {
	return er.Start + er.Length
}

// Overlaps reports whether the two intervals intersect.
func (er ExtractResult) Overlaps(other ExtractResult) bool {
	return er.Start < other.End() && other.Start < er.End()
}

// Covers reports whether er is a strict superset of other.
func (er ExtractResult) Covers(other ExtractResult) bool {
	if er.Start > other.Start || er.End() < other.End() {
		return false
	}
	return er.Length > other.Length
}

// Valid checks the span invariants.
func (er ExtractResult) Valid() bool {
	return er.Start >= 0 && er.Length >= 0 && len(er.Text) == er.Length
}

func (er ExtractResult) String() string {
	return fmt.Sprintf("%s[%d,%d)%q", er.Type, er.Start, er.End(), er.Text)
}

// ValueKind discriminates the shapes a resolved value can take.
type ValueKind int

const (
	ValueNone ValueKind = iota
	ValueInstant
	ValueRange
	ValueSeconds
)

// Value is a resolved calendar value: an instant, a [Begin, End] range, or a
// number of seconds for durations.
type Value struct {
	Kind    ValueKind
	Begin   time.Time
	End     time.Time
	Seconds float64
}

// Instant builds a single-point value.
func Instant(t time.Time) Value {
	return Value{Kind: ValueInstant, Begin: t, End: t}
}

// Range builds a [begin, end] value.
func Range(begin, end time.Time) Value {
	return Value{Kind: ValueRange, Begin: begin, End: end}
}

// Seconds builds a duration value.
func Seconds(s float64) Value {
	return Value{Kind: ValueSeconds, Seconds: s}
}

// IsZero reports whether no value was set.
func (v Value) IsZero() bool {
	return v.Kind == ValueNone
}

// Time returns the instant, or the range begin.
func (v Value) Time() time.Time {
	return v.Begin
}

// Equal compares two values.
func (v Value) Equal(o Value) bool {
	return v.Kind == o.Kind && v.Begin.Equal(o.Begin) && v.End.Equal(o.End) && v.Seconds == o.Seconds
}

// ResolutionResult is what a single-entity parser produces.
type ResolutionResult struct {
	Success bool
	Timex   string
	Mod     string
	Comment string
	IsLunar bool

	FutureValue Value
	PastValue   Value

	FutureResolution map[string]string
	PastResolution   map[string]string

	SubEntities []*ParseResult
}

// ParseResult wraps the originating span with its resolution.
type ParseResult struct {
	ExtractResult
	TimexStr string
	Value    *ResolutionResult
	// Resolution is the consumer-facing structure filled by the merged parser.
	Resolution *Resolution
}

// NewParseResult starts a parse result for er with no value.
func NewParseResult(er ExtractResult) *ParseResult {
	return &ParseResult{ExtractResult: er}
}

// Resolved reports whether the parse produced a successful value.
func (pr *ParseResult) Resolved() bool {
	return pr != nil && pr.Value != nil && pr.Value.Success
}

// Resolution is the final consumer-facing output.
type Resolution struct {
	Values []map[string]string `json:"values"`
}
