package model

// Modifiers recorded on a resolution.
const (
	ModBefore = "before"
	ModAfter  = "after"
	ModSince  = "since"
	ModUntil  = "until"
	ModApprox = "approx"
	ModStart  = "start"
	ModEnd    = "end"
)

// Comments carried on a ResolutionResult.
const (
	CommentAmPm  = "ampm"
	CommentEarly = "early"
	CommentLate  = "late"
)

// Keys of the per-entity future/past resolution maps.
const (
	ResolutionDate          = "date"
	ResolutionTime          = "time"
	ResolutionDateTime      = "datetime"
	ResolutionStartDate     = "startDate"
	ResolutionEndDate       = "endDate"
	ResolutionStartTime     = "startTime"
	ResolutionEndTime       = "endTime"
	ResolutionStartDateTime = "startDateTime"
	ResolutionEndDateTime   = "endDateTime"
	ResolutionDuration      = "duration"
	ResolutionSet           = "set"
	// ResolutionTimex overrides the result timex for one reading.
	ResolutionTimex = "timex"
)

// Keys of the consumer-facing resolution entries.
const (
	KeyTimex   = "timex"
	KeyType    = "type"
	KeyValue   = "value"
	KeyStart   = "start"
	KeyEnd     = "end"
	KeyMod     = "Mod"
	KeyComment = "Comment"
	KeyIsLunar = "isLunar"
	KeyRRule   = "rrule"
)

// NotResolved is the value emitted when a timex carries no concrete value.
const NotResolved = "not resolved"

// PresentRef is the timex of "now".
const PresentRef = "PRESENT_REF"
