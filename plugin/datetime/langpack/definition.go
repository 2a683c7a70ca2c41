package langpack

import (
	"io"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

var (
	// ErrIncompletePack is returned when a pack lacks a required capability.
	ErrIncompletePack = errors.New("language pack is incomplete")
	// ErrInvalidPattern is returned when a pattern fails to expand or compile.
	ErrInvalidPattern = errors.New("invalid language pack pattern")
)

// fragmentRef matches {Name} placeholders. Only capitalised names are
// placeholders, so regex quantifiers such as {1,2} pass through untouched.
var fragmentRef = regexp.MustCompile(`\{([A-Z][A-Za-z0-9]*)\}`)

// Definition is the declarative source of a language pack.
type Definition struct {
	Culture   string            `yaml:"culture"`
	Fragments map[string]string `yaml:"fragments"`

	Date           DateDefinition           `yaml:"date"`
	Time           TimeDefinition           `yaml:"time"`
	Duration       DurationDefinition       `yaml:"duration"`
	DatePeriod     DatePeriodDefinition     `yaml:"datePeriod"`
	TimePeriod     TimePeriodDefinition     `yaml:"timePeriod"`
	DateTime       DateTimeDefinition       `yaml:"dateTime"`
	DateTimePeriod DateTimePeriodDefinition `yaml:"dateTimePeriod"`
	Set            SetDefinition            `yaml:"set"`
	Holiday        HolidayDefinition        `yaml:"holiday"`
	Range          RangeDefinition          `yaml:"range"`
	Merged         MergedDefinition         `yaml:"merged"`

	Maps MapsDefinition `yaml:"maps"`
}

type DateDefinition struct {
	Regexes         []string `yaml:"regexes"`
	SpecialDay      string   `yaml:"specialDay"`
	RelativeWeekday string   `yaml:"relativeWeekday"`
	Weekday         string   `yaml:"weekday"`
	WeekdayOfMonth  string   `yaml:"weekdayOfMonth"`
	Ago             string   `yaml:"ago"`
	Later           string   `yaml:"later"`
	In              string   `yaml:"in"`
}

type TimeDefinition struct {
	Regexes []string `yaml:"regexes"`
	AtHour  string   `yaml:"atHour"`
}

type DurationDefinition struct {
	Regex string `yaml:"regex"`
}

type DatePeriodDefinition struct {
	Month         string `yaml:"month"`
	MonthYear     string `yaml:"monthYear"`
	Year          string `yaml:"year"`
	RelativeUnit  string `yaml:"relativeUnit"`
	NumberUnit    string `yaml:"numberUnit"`
	MonthDayRange string `yaml:"monthDayRange"`
}

type TimePeriodDefinition struct {
	TimeOfDay string   `yaml:"timeOfDay"`
	PureNum   []string `yaml:"pureNum"`
}

type DateTimeDefinition struct {
	Now       string `yaml:"now"`
	Connector string `yaml:"connector"`
}

type DateTimePeriodDefinition struct {
	SpecificTimeOfDay       string `yaml:"specificTimeOfDay"`
	PeriodTimeOfDayWithDate string `yaml:"periodTimeOfDayWithDate"`
	NumberUnit              string `yaml:"numberUnit"`
	HourRange               string `yaml:"hourRange"`
	DateConnector           string `yaml:"dateConnector"`
	PrefixDay               string `yaml:"prefixDay"`
}

type SetDefinition struct {
	EachUnit    string `yaml:"eachUnit"`
	Periodic    string `yaml:"periodic"`
	EachWeekday string `yaml:"eachWeekday"`
}

type HolidayDefinition struct {
	Regex string                  `yaml:"regex"`
	Rules []HolidayRuleDefinition `yaml:"rules"`
}

// HolidayRuleDefinition names a holiday and how to place it in a year.
type HolidayRuleDefinition struct {
	Names        []string `yaml:"names"`
	Month        int      `yaml:"month"`
	Day          int      `yaml:"day"`
	Weekday      int      `yaml:"weekday"`
	Nth          int      `yaml:"nth"`
	Easter       bool     `yaml:"easter"`
	EasterOffset int      `yaml:"easterOffset"`
}

type RangeDefinition struct {
	From      string `yaml:"from"`
	Between   string `yaml:"between"`
	Till      string `yaml:"till"`
	Connector string `yaml:"connector"`
}

type MergedDefinition struct {
	Before               string                      `yaml:"before"`
	After                string                      `yaml:"after"`
	Until                string                      `yaml:"until"`
	SincePrefix          string                      `yaml:"sincePrefix"`
	SinceSuffix          string                      `yaml:"sinceSuffix"`
	Around               string                      `yaml:"around"`
	Equal                string                      `yaml:"equal"`
	AmbiguousRangePrefix string                      `yaml:"ambiguousRangePrefix"`
	AmbiguityFilters     []AmbiguityFilterDefinition `yaml:"ambiguityFilters"`
}

type AmbiguityFilterDefinition struct {
	Pattern   string `yaml:"pattern"`
	Exclusion string `yaml:"exclusion"`
}

type TimeOfDayDefinition struct {
	Timex     string `yaml:"timex"`
	Begin     int    `yaml:"begin"`
	End       int    `yaml:"end"`
	EndMinute int    `yaml:"endMinute"`
}

type MapsDefinition struct {
	DayOfWeek    map[string]int                 `yaml:"dayOfWeek"`
	MonthOfYear  map[string]int                 `yaml:"monthOfYear"`
	Unit         map[string]string              `yaml:"unit"`
	UnitValue    map[string]int64               `yaml:"unitValue"`
	Cardinal     map[string]int                 `yaml:"cardinal"`
	Ordinal      map[string]int                 `yaml:"ordinal"`
	SwiftDay     map[string]int                 `yaml:"swiftDay"`
	SwiftPrefix  map[string]int                 `yaml:"swiftPrefix"`
	CardinalLast []string                       `yaml:"cardinalLast"`
	TimesOfDay   map[string]TimeOfDayDefinition `yaml:"timesOfDay"`
	EarlyWords   []string                       `yaml:"earlyWords"`
	LateWords    []string                       `yaml:"lateWords"`
	Periodic     map[string]string              `yaml:"periodic"`
}

// LoadDefinition decodes a YAML pack definition. Unknown keys are rejected.
func LoadDefinition(r io.Reader) (*Definition, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var def Definition
	if err := dec.Decode(&def); err != nil {
		return nil, errors.Wrap(err, "failed to decode language pack definition")
	}
	return &def, nil
}

// LoadFile reads a YAML pack definition from disk and builds it.
func LoadFile(path string, opts ...Option) (*Pack, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open language pack %s", path)
	}
	defer f.Close()

	def, err := LoadDefinition(f)
	if err != nil {
		return nil, errors.Wrapf(err, "language pack %s", path)
	}
	return Build(def, opts...)
}

// Option customizes Build.
type Option func(*buildOptions)

type buildOptions struct {
	rules  func(*Pack) Rules
	logger *slog.Logger
}

// WithRules replaces the data-driven rules with a locale-specific implementation.
func WithRules(fn func(*Pack) Rules) Option {
	return func(o *buildOptions) {
		o.rules = fn
	}
}

// WithLogger sets the logger used while building.
func WithLogger(logger *slog.Logger) Option {
	return func(o *buildOptions) {
		o.logger = logger
	}
}

// Build expands and compiles a definition into an immutable Pack. Every
// failure is returned here; nothing about the pack is checked again per call.
func Build(def *Definition, opts ...Option) (*Pack, error) {
	if def == nil {
		return nil, errors.Wrap(ErrIncompletePack, "nil definition")
	}
	o := buildOptions{rules: NewDataRules, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	tag, err := language.Parse(def.Culture)
	if err != nil {
		return nil, errors.Wrapf(ErrIncompletePack, "culture %q: %v", def.Culture, err)
	}

	c := newCompiler(def.Fragments)
	p := &Pack{Culture: tag}

	p.Date = DateConfig{
		DateRegexes:          c.regexList("date.regexes", def.Date.Regexes, true),
		SpecialDayRegex:      c.regex("date.specialDay", def.Date.SpecialDay, false),
		RelativeWeekdayRegex: c.regex("date.relativeWeekday", def.Date.RelativeWeekday, false),
		WeekdayRegex:         c.regex("date.weekday", def.Date.Weekday, false),
		WeekdayOfMonthRegex:  c.regex("date.weekdayOfMonth", def.Date.WeekdayOfMonth, false),
		Ago:                  c.cue("date.ago", def.Date.Ago, false),
		Later:                c.cue("date.later", def.Date.Later, false),
		In:                   c.cue("date.in", def.Date.In, false),
	}
	p.Time = TimeConfig{
		TimeRegexes: c.regexList("time.regexes", def.Time.Regexes, true),
		AtHourRegex: c.regex("time.atHour", def.Time.AtHour, false),
	}
	p.Duration = DurationConfig{
		DurationRegex: c.regex("duration.regex", def.Duration.Regex, true),
	}
	p.DatePeriod = DatePeriodConfig{
		MonthRegex:         c.regex("datePeriod.month", def.DatePeriod.Month, false),
		MonthYearRegex:     c.regex("datePeriod.monthYear", def.DatePeriod.MonthYear, false),
		YearRegex:          c.regex("datePeriod.year", def.DatePeriod.Year, false),
		RelativeUnitRegex:  c.regex("datePeriod.relativeUnit", def.DatePeriod.RelativeUnit, false),
		NumberUnitRegex:    c.regex("datePeriod.numberUnit", def.DatePeriod.NumberUnit, false),
		MonthDayRangeRegex: c.regex("datePeriod.monthDayRange", def.DatePeriod.MonthDayRange, false),
	}
	p.TimePeriod = TimePeriodConfig{
		TimeOfDayRegex: c.regex("timePeriod.timeOfDay", def.TimePeriod.TimeOfDay, false),
		PureNumRegexes: c.regexList("timePeriod.pureNum", def.TimePeriod.PureNum, false),
	}
	p.DateTime = DateTimeConfig{
		NowRegex:       c.regex("dateTime.now", def.DateTime.Now, false),
		ConnectorRegex: c.regex("dateTime.connector", def.DateTime.Connector, true),
	}
	p.DateTimePeriod = DateTimePeriodConfig{
		SpecificTimeOfDayRegex:       c.regex("dateTimePeriod.specificTimeOfDay", def.DateTimePeriod.SpecificTimeOfDay, false),
		PeriodTimeOfDayWithDateRegex: c.regex("dateTimePeriod.periodTimeOfDayWithDate", def.DateTimePeriod.PeriodTimeOfDayWithDate, false),
		NumberUnitRegex:              c.regex("dateTimePeriod.numberUnit", def.DateTimePeriod.NumberUnit, false),
		HourRangeRegex:               c.regex("dateTimePeriod.hourRange", def.DateTimePeriod.HourRange, false),
		DateConnectorRegex:           c.regex("dateTimePeriod.dateConnector", def.DateTimePeriod.DateConnector, false),
		PrefixDay:                    c.cue("dateTimePeriod.prefixDay", def.DateTimePeriod.PrefixDay, false),
	}
	p.Set = SetConfig{
		EachUnitRegex:    c.regex("set.eachUnit", def.Set.EachUnit, false),
		PeriodicRegex:    c.regex("set.periodic", def.Set.Periodic, false),
		EachWeekdayRegex: c.regex("set.eachWeekday", def.Set.EachWeekday, false),
		Periodic:         foldKeys(def.Maps.Periodic),
	}
	p.Holiday = HolidayConfig{
		HolidayRegex: c.regex("holiday.regex", def.Holiday.Regex, false),
		Holidays:     holidayRules(def.Holiday.Rules),
	}
	p.Range = RangeConfig{
		From:           c.cue("range.from", def.Range.From, false),
		Between:        c.cue("range.between", def.Range.Between, false),
		Till:           c.cue("range.till", def.Range.Till, true),
		ConnectorRegex: c.regex("range.connector", def.Range.Connector, false),
	}
	p.Merged = MergedConfig{
		Before:               c.cue("merged.before", def.Merged.Before, false),
		After:                c.cue("merged.after", def.Merged.After, false),
		Until:                c.cue("merged.until", def.Merged.Until, false),
		SincePrefix:          c.cue("merged.sincePrefix", def.Merged.SincePrefix, false),
		SinceSuffix:          c.cue("merged.sinceSuffix", def.Merged.SinceSuffix, false),
		Around:               c.cue("merged.around", def.Merged.Around, false),
		Equal:                c.cue("merged.equal", def.Merged.Equal, false),
		AmbiguousRangePrefix: c.regex("merged.ambiguousRangePrefix", def.Merged.AmbiguousRangePrefix, false),
	}
	for i, f := range def.Merged.AmbiguityFilters {
		name := "merged.ambiguityFilters[" + strconv.Itoa(i) + "]"
		p.Merged.AmbiguityFilters = append(p.Merged.AmbiguityFilters, AmbiguityFilter{
			Pattern:   c.regex(name+".pattern", f.Pattern, true),
			Exclusion: c.regex(name+".exclusion", f.Exclusion, true),
		})
	}
	if c.err != nil {
		return nil, c.err
	}

	m := def.Maps
	p.DayOfWeek = foldKeys(m.DayOfWeek)
	p.MonthOfYear = foldKeys(m.MonthOfYear)
	p.UnitMap = foldKeys(m.Unit)
	p.UnitValueMap = m.UnitValue
	p.CardinalMap = foldKeys(m.Cardinal)
	p.OrdinalMap = foldKeys(m.Ordinal)
	p.SwiftDays = foldKeys(m.SwiftDay)
	p.SwiftPrefix = foldKeys(m.SwiftPrefix)
	p.CardinalLast = foldAll(m.CardinalLast)
	p.EarlyWords = foldAll(m.EarlyWords)
	p.LateWords = foldAll(m.LateWords)
	p.TimesOfDay = make(map[string]TimeOfDay, len(m.TimesOfDay))
	for name, tod := range m.TimesOfDay {
		p.TimesOfDay[Normalize(name)] = TimeOfDay{
			Timex:     tod.Timex,
			BeginHour: tod.Begin,
			EndHour:   tod.End,
			EndMinute: tod.EndMinute,
		}
	}

	if err := Validate(p); err != nil {
		return nil, err
	}
	p.Rules = o.rules(p)

	o.logger.Debug("language pack built",
		slog.String("culture", p.Culture.String()),
		slog.Int("fragments", len(def.Fragments)),
		slog.Int("holidays", len(p.Holiday.Holidays)),
	)
	return p, nil
}

// Validate checks the capabilities every pipeline depends on. Optional
// capabilities are checked by the extractors that use them.
func Validate(p *Pack) error {
	switch {
	case len(p.Date.DateRegexes) == 0:
		return errors.Wrap(ErrIncompletePack, "date.regexes")
	case len(p.Time.TimeRegexes) == 0:
		return errors.Wrap(ErrIncompletePack, "time.regexes")
	case p.Duration.DurationRegex == nil:
		return errors.Wrap(ErrIncompletePack, "duration.regex")
	case p.DateTime.ConnectorRegex == nil:
		return errors.Wrap(ErrIncompletePack, "dateTime.connector")
	case !p.Range.Till.Matched():
		return errors.Wrap(ErrIncompletePack, "range.till")
	case len(p.DayOfWeek) == 0:
		return errors.Wrap(ErrIncompletePack, "maps.dayOfWeek")
	case len(p.MonthOfYear) == 0:
		return errors.Wrap(ErrIncompletePack, "maps.monthOfYear")
	case len(p.UnitMap) == 0:
		return errors.Wrap(ErrIncompletePack, "maps.unit")
	case len(p.UnitValueMap) == 0:
		return errors.Wrap(ErrIncompletePack, "maps.unitValue")
	}
	for word, code := range p.UnitMap {
		if _, ok := p.UnitValueMap[code]; !ok {
			return errors.Wrapf(ErrIncompletePack, "maps.unitValue has no entry for %s (%s)", code, word)
		}
	}
	if p.TimePeriod.TimeOfDayRegex != nil && len(p.TimesOfDay) == 0 {
		return errors.Wrap(ErrIncompletePack, "timePeriod.timeOfDay needs maps.timesOfDay")
	}
	if p.Holiday.HolidayRegex != nil && len(p.Holiday.Holidays) == 0 {
		return errors.Wrap(ErrIncompletePack, "holiday.regex needs holiday.rules")
	}
	if p.Set.PeriodicRegex != nil && len(p.Set.Periodic) == 0 {
		return errors.Wrap(ErrIncompletePack, "set.periodic needs maps.periodic")
	}
	return nil
}

// compiler expands fragments and compiles patterns, keeping the first error.
type compiler struct {
	fragments map[string]string
	expanded  map[string]string
	err       error
}

func newCompiler(fragments map[string]string) *compiler {
	return &compiler{fragments: fragments, expanded: make(map[string]string, len(fragments))}
}

func (c *compiler) regex(name, pattern string, required bool) *regexp.Regexp {
	if c.err != nil {
		return nil
	}
	if strings.TrimSpace(pattern) == "" {
		if required {
			c.err = errors.Wrap(ErrIncompletePack, name)
		}
		return nil
	}
	return c.compile(name, pattern, "%s")
}

func (c *compiler) regexList(name string, patterns []string, required bool) []*regexp.Regexp {
	if c.err != nil {
		return nil
	}
	if len(patterns) == 0 && required {
		c.err = errors.Wrap(ErrIncompletePack, name)
		return nil
	}
	out := make([]*regexp.Regexp, 0, len(patterns))
	for i, p := range patterns {
		rx := c.regex(name+"["+strconv.Itoa(i)+"]", p, true)
		if rx != nil {
			out = append(out, rx)
		}
	}
	return out
}

// cue compiles a pattern anchored at the start of a text and at its end.
func (c *compiler) cue(name, pattern string, required bool) Cue {
	if c.err != nil {
		return Cue{}
	}
	if strings.TrimSpace(pattern) == "" {
		if required {
			c.err = errors.Wrap(ErrIncompletePack, name)
		}
		return Cue{}
	}
	return Cue{
		Begin: c.compile(name, pattern, `^\s*(?:%s)\s*`),
		End:   c.compile(name, pattern, `(?:%s)\s*$`),
	}
}

func (c *compiler) compile(name, pattern, wrap string) *regexp.Regexp {
	if c.err != nil {
		return nil
	}
	expanded, err := c.expand(pattern, nil)
	if err != nil {
		c.err = errors.Wrapf(err, "%s", name)
		return nil
	}
	rx, err := regexp.Compile("(?i)" + strings.Replace(wrap, "%s", expanded, 1))
	if err != nil {
		c.err = errors.Wrapf(ErrInvalidPattern, "%s: %v", name, err)
		return nil
	}
	return rx
}

// expand substitutes {Name} fragments recursively, each as a non-capturing
// group; stack detects cycles.
func (c *compiler) expand(pattern string, stack []string) (string, error) {
	var firstErr error
	out := fragmentRef.ReplaceAllStringFunc(pattern, func(ref string) string {
		if firstErr != nil {
			return ref
		}
		key := ref[1 : len(ref)-1]
		if v, ok := c.expanded[key]; ok {
			return v
		}
		for _, s := range stack {
			if s == key {
				firstErr = errors.Wrapf(ErrInvalidPattern, "fragment cycle %s -> %s", strings.Join(stack, " -> "), key)
				return ref
			}
		}
		raw, ok := c.fragments[key]
		if !ok {
			firstErr = errors.Wrapf(ErrInvalidPattern, "unknown fragment %s", key)
			return ref
		}
		v, err := c.expand(raw, append(stack, key))
		if err != nil {
			firstErr = err
			return ref
		}
		v = "(?:" + v + ")"
		c.expanded[key] = v
		return v
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

func holidayRules(defs []HolidayRuleDefinition) map[string]HolidayRule {
	out := make(map[string]HolidayRule)
	for _, d := range defs {
		rule := HolidayRule{
			Month:        d.Month,
			Day:          d.Day,
			Weekday:      d.Weekday,
			Nth:          d.Nth,
			Easter:       d.Easter,
			EasterOffset: d.EasterOffset,
		}
		for _, name := range d.Names {
			out[HolidayKey(name)] = rule
		}
	}
	return out
}

func foldKeys[V any](in map[string]V) map[string]V {
	out := make(map[string]V, len(in))
	for k, v := range in {
		out[Normalize(k)] = v
	}
	return out
}

func foldAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = Normalize(s)
	}
	return out
}
