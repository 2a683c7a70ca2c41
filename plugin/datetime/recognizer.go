// Package datetime recognizes date and time expressions in free text.
//
// A Recognizer owns one extraction and resolution pipeline per language
// pack. Pipelines are built on first use and shared by every caller, since
// compiled packs are read-only.
package datetime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/hrygo/datetimex/plugin/datetime/extractor"
	"github.com/hrygo/datetimex/plugin/datetime/langpack"
	"github.com/hrygo/datetimex/plugin/datetime/model"
	"github.com/hrygo/datetimex/plugin/datetime/parser"
)

// TypeNamePrefix prefixes the resolution type in Result.TypeName.
const TypeNamePrefix = "datetimeV2."

// DefaultWorkers bounds RecognizeBatch when no worker count is configured.
const DefaultWorkers = 4

// Result is one recognized and resolved expression. End is exclusive.
type Result struct {
	Start      int               `json:"start"`
	End        int               `json:"end"`
	Text       string            `json:"text"`
	TypeName   string            `json:"typeName"`
	Resolution *model.Resolution `json:"resolution,omitempty"`
}

// Option configures a Recognizer.
type Option func(*Recognizer)

// WithLogger sets the logger passed down to the pipelines.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Recognizer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithClock replaces time.Now as the reference for calls with a zero ref.
func WithClock(now func() time.Time) Option {
	return func(r *Recognizer) {
		if now != nil {
			r.now = now
		}
	}
}

// WithWorkers bounds the number of documents RecognizeBatch resolves at once.
func WithWorkers(n int) Option {
	return func(r *Recognizer) {
		if n > 0 {
			r.workers = n
		}
	}
}

type pipeline struct {
	extractor *extractor.Merged
	parser    *parser.Merged
}

// Recognizer is safe for concurrent use.
type Recognizer struct {
	registry *langpack.Registry
	logger   *slog.Logger
	now      func() time.Time
	workers  int

	mu        sync.Mutex
	pipelines map[*langpack.Pack]*pipeline
}

// New creates a recognizer over registry. A nil registry selects the
// embedded packs.
func New(registry *langpack.Registry, opts ...Option) (*Recognizer, error) {
	if registry == nil {
		var err error
		registry, err = langpack.DefaultRegistry()
		if err != nil {
			return nil, errors.Wrap(err, "failed to load embedded language packs")
		}
	}
	r := &Recognizer{
		registry:  registry,
		logger:    slog.Default(),
		now:       time.Now,
		workers:   DefaultWorkers,
		pipelines: make(map[*langpack.Pack]*pipeline),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Cultures lists the cultures the recognizer can serve directly.
func (r *Recognizer) Cultures() []string {
	return r.registry.Cultures()
}

func (r *Recognizer) pipelineFor(culture string) (*pipeline, error) {
	pack, err := r.registry.Lookup(culture)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if pl, ok := r.pipelines[pack]; ok {
		return pl, nil
	}
	ext, err := extractor.NewMerged(pack, extractor.WithLogger(r.logger), extractor.WithClock(r.now))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build extractor for %s", pack.Culture)
	}
	prs, err := parser.NewMerged(pack, parser.WithLogger(r.logger), parser.WithClock(r.now))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build parser for %s", pack.Culture)
	}
	pl := &pipeline{extractor: ext, parser: prs}
	r.pipelines[pack] = pl
	r.logger.Debug("pipeline built", slog.String("culture", pack.Culture.String()))
	return pl, nil
}

func (r *Recognizer) reference(ref time.Time) time.Time {
	if ref.IsZero() {
		return r.now()
	}
	return ref
}

// Extract returns the spans found in text, ordered by start.
func (r *Recognizer) Extract(culture, text string, ref time.Time) ([]model.ExtractResult, error) {
	pl, err := r.pipelineFor(culture)
	if err != nil {
		return nil, err
	}
	return pl.extractor.Extract(text, r.reference(ref)), nil
}

// Parse resolves a span returned by Extract.
func (r *Recognizer) Parse(culture string, er model.ExtractResult, ref time.Time) (*model.ParseResult, error) {
	pl, err := r.pipelineFor(culture)
	if err != nil {
		return nil, err
	}
	return pl.parser.Parse(er, r.reference(ref)), nil
}

// Recognize extracts and resolves every expression in text. Spans that do not
// resolve are left out.
func (r *Recognizer) Recognize(ctx context.Context, culture, text string, ref time.Time) ([]Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pl, err := r.pipelineFor(culture)
	if err != nil {
		return nil, err
	}
	return r.recognize(pl, text, r.reference(ref)), nil
}

func (r *Recognizer) recognize(pl *pipeline, text string, ref time.Time) []Result {
	results := make([]Result, 0)
	for _, er := range pl.extractor.Extract(text, ref) {
		pr := pl.parser.Parse(er, ref)
		if !pr.Resolved() {
			r.logger.Debug("span not resolved", slog.String("span", er.String()))
			continue
		}
		results = append(results, Result{
			Start:      pr.Start,
			End:        pr.End(),
			Text:       pr.Text,
			TypeName:   TypeNamePrefix + pr.Type.ResolutionType(),
			Resolution: pr.Resolution,
		})
	}
	return results
}

// RecognizeBatch recognizes each text against the same reference. The i-th
// entry of the result belongs to texts[i]. Cancelling ctx stops the batch
// before the next document starts.
func (r *Recognizer) RecognizeBatch(ctx context.Context, culture string, texts []string, ref time.Time) ([][]Result, error) {
	pl, err := r.pipelineFor(culture)
	if err != nil {
		return nil, err
	}
	ref = r.reference(ref)

	out := make([][]Result, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, text := range texts {
		if gctx.Err() != nil {
			break
		}
		i, text := i, text
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = r.recognize(pl, text, ref)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
