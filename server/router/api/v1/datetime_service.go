package v1

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/hrygo/datetimex/plugin/ai/aitime"
	"github.com/hrygo/datetimex/plugin/datetime"
	"github.com/hrygo/datetimex/plugin/datetime/langpack"
	apierrors "github.com/hrygo/datetimex/server/internal/errors"
	"github.com/hrygo/datetimex/server/internal/observability"
	"github.com/hrygo/datetimex/server/timezone"
)

// MaxBatchSize caps the number of texts in one batch request.
const MaxBatchSize = 100

const (
	opExtract        = "extract"
	opRecognize      = "recognize"
	opRecognizeBatch = "recognize_batch"
	opNormalize      = "normalize"
)

// RequestOptions are shared by every recognition request.
type RequestOptions struct {
	// Reference is RFC 3339 or a local "2006-01-02 15:04:05"; empty means now.
	Reference string `json:"reference,omitempty"`
	Timezone  string `json:"timezone,omitempty"`
	Culture   string `json:"culture,omitempty"`
}

type RecognizeRequest struct {
	Text string `json:"text"`
	RequestOptions
}

type BatchRequest struct {
	Texts []string `json:"texts"`
	RequestOptions
}

// Entity is an extracted span without resolution.
type Entity struct {
	Start  int    `json:"start"`
	Length int    `json:"length"`
	Text   string `json:"text"`
	Type   string `json:"type"`
}

type ExtractResponse struct {
	Entities []Entity `json:"entities"`
}

type RecognizeResponse struct {
	Results []datetime.Result `json:"results"`
}

type BatchResponse struct {
	Documents [][]datetime.Result `json:"documents"`
}

// NormalizeResponse is the span of the first expression in the text. End is
// omitted for open-ended spans.
type NormalizeResponse struct {
	Text  string     `json:"text"`
	Start time.Time  `json:"start"`
	End   *time.Time `json:"end,omitempty"`
}

// request is a validated recognition request.
type request struct {
	op      string
	culture string
	texts   []string
	ref     time.Time
	// cacheKey is empty when the response depends on the clock.
	cacheKey string
	rc       *observability.RequestContext
}

// Extract returns the spans found in the text.
// POST /api/v1/extract
func (s *APIV1Service) Extract(c echo.Context) error {
	var req RecognizeRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.InvalidArgument("malformed request body")
	}
	return s.serve(c, opExtract, []string{req.Text}, req.RequestOptions, func(_ context.Context, r *request) (any, int, error) {
		ers, err := s.Recognizer.Extract(r.culture, r.texts[0], r.ref)
		if err != nil {
			return nil, 0, err
		}
		entities := make([]Entity, 0, len(ers))
		for _, er := range ers {
			entities = append(entities, Entity{Start: er.Start, Length: er.Length, Text: er.Text, Type: string(er.Type)})
		}
		return ExtractResponse{Entities: entities}, len(entities), nil
	})
}

// Recognize extracts and resolves the expressions in the text.
// POST /api/v1/recognize
func (s *APIV1Service) Recognize(c echo.Context) error {
	var req RecognizeRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.InvalidArgument("malformed request body")
	}
	return s.serve(c, opRecognize, []string{req.Text}, req.RequestOptions, func(ctx context.Context, r *request) (any, int, error) {
		results, err := s.Recognizer.Recognize(ctx, r.culture, r.texts[0], r.ref)
		if err != nil {
			return nil, 0, err
		}
		return RecognizeResponse{Results: results}, len(results), nil
	})
}

// RecognizeBatch recognizes several texts against one reference.
// POST /api/v1/recognize/batch
func (s *APIV1Service) RecognizeBatch(c echo.Context) error {
	var req BatchRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.InvalidArgument("malformed request body")
	}
	if len(req.Texts) == 0 {
		return apierrors.InvalidArgument("texts is required")
	}
	if len(req.Texts) > MaxBatchSize {
		return apierrors.InvalidArgument(fmt.Sprintf("at most %d texts per batch", MaxBatchSize)).
			WithContext("count", len(req.Texts))
	}
	return s.serve(c, opRecognizeBatch, req.Texts, req.RequestOptions, func(ctx context.Context, r *request) (any, int, error) {
		docs, err := s.Recognizer.RecognizeBatch(ctx, r.culture, r.texts, r.ref)
		if err != nil {
			return nil, 0, err
		}
		n := 0
		for _, d := range docs {
			n += len(d)
		}
		if rc, ok := observability.FromContext(ctx); ok {
			rc.Debug("batch recognized", slog.Int("documents", len(docs)), slog.Int(observability.LogFieldEntityCount, n))
		}
		return BatchResponse{Documents: docs}, n, nil
	})
}

// Normalize returns the time span a dialogue turn refers to. Dates span the
// whole day and moments one hour.
// POST /api/v1/normalize
func (s *APIV1Service) Normalize(c echo.Context) error {
	var req RecognizeRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.InvalidArgument("malformed request body")
	}
	return s.serve(c, opNormalize, []string{req.Text}, req.RequestOptions, func(ctx context.Context, r *request) (any, int, error) {
		svc := aitime.NewService(s.Recognizer, r.culture, r.ref.Location().String())
		tr, err := svc.ParseNaturalTime(ctx, r.texts[0], r.ref)
		if errors.Is(err, aitime.ErrNoTimeExpression) {
			return nil, 0, apierrors.Wrap(err, apierrors.ErrCodeNotFound, "no time expression found")
		}
		if err != nil {
			return nil, 0, err
		}
		resp := NormalizeResponse{Text: r.texts[0], Start: tr.Start}
		if !tr.End.IsZero() {
			resp.End = &tr.End
		}
		if rc, ok := observability.FromContext(ctx); ok {
			rc.Debug("span normalized", slog.Time("start", tr.Start), slog.Bool("open_ended", resp.End == nil))
		}
		return resp, 1, nil
	})
}

// Healthz reports liveness.
// GET /healthz
func (s *APIV1Service) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok", "version": s.Profile.Version})
}

type handlerFunc func(ctx context.Context, r *request) (resp any, entities int, err error)

// serve validates the request, consults the cache, runs fn under the
// configured timeout and records metrics.
func (s *APIV1Service) serve(c echo.Context, op string, texts []string, opts RequestOptions, fn handlerFunc) (err error) {
	r, err := s.newRequest(c, op, texts, opts)
	s.Metrics.RecordRequest(op)
	defer func() {
		s.Metrics.RecordDuration(op, time.Since(r.rc.StartTime))
		if err != nil {
			s.Metrics.RecordFailure(op)
			r.rc.Warn("request rejected",
				slog.String(observability.LogFieldErrorCode, string(apierrors.GetCodeFromError(err, apierrors.ErrCodeInternal))),
				slog.String("error", err.Error()))
		}
	}()
	if err != nil {
		return err
	}

	if r.cacheKey != "" && s.cache != nil {
		resp, ok := s.cache.Get(r.cacheKey)
		s.Metrics.RecordCache(ok)
		if ok {
			r.rc.Debug("served from cache", slog.Bool(observability.LogFieldCacheHit, true))
			return c.JSON(http.StatusOK, resp)
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), s.Profile.RequestTimeout)
	defer cancel()
	ctx = observability.WithRequestContext(ctx, r.rc)

	resp, n, err := fn(ctx, r)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		if errors.Is(err, langpack.ErrUnsupportedCulture) {
			return apierrors.UnsupportedCulture(r.culture, err)
		}
		return apierrors.From(err)
	}

	if r.cacheKey != "" && s.cache != nil {
		s.cache.Add(r.cacheKey, resp)
	}
	s.Metrics.RecordEntities(n)
	r.rc.Info("request served",
		slog.Int(observability.LogFieldEntityCount, n),
		slog.Int64(observability.LogFieldDuration, r.rc.DurationMs()))
	return c.JSON(http.StatusOK, resp)
}

// newRequest always returns a request carrying a request context, even on error.
func (s *APIV1Service) newRequest(c echo.Context, op string, texts []string, opts RequestOptions) (*request, error) {
	culture := strings.TrimSpace(opts.Culture)
	if culture == "" {
		culture = s.Profile.Culture
	}
	requestID := c.Request().Header.Get(echo.HeaderXRequestID)
	r := &request{
		op:      op,
		culture: culture,
		texts:   texts,
		rc:      observability.NewRequestContextWithID(s.logger, requestID, op, culture),
	}
	c.Response().Header().Set(echo.HeaderXRequestID, r.rc.RequestID)

	size := 0
	for i, text := range texts {
		if strings.TrimSpace(text) == "" && len(texts) == 1 {
			return r, apierrors.InvalidArgument("text is required")
		}
		if len(text) > s.Profile.MaxTextLength {
			return r, apierrors.InvalidArgument(fmt.Sprintf("text exceeds %d bytes", s.Profile.MaxTextLength)).
				WithContext("index", i)
		}
		size += len(text)
	}

	tz := opts.Timezone
	if tz == "" {
		tz = s.Profile.Timezone
	}
	loc, err := timezone.ParseTimezone(tz)
	if err != nil {
		return r, apierrors.Wrap(err, apierrors.ErrCodeInvalidArgument, "invalid timezone")
	}
	r.ref, err = timezone.ParseReference(opts.Reference, loc, s.now)
	if err != nil {
		return r, apierrors.Wrap(err, apierrors.ErrCodeInvalidArgument, "invalid reference")
	}

	if opts.Reference != "" {
		r.cacheKey = strings.Join(append([]string{op, culture, loc.String(), r.ref.Format(time.RFC3339Nano)}, texts...), "\x00")
	}
	r.rc.Debug("request accepted", slog.Int(observability.LogFieldTextLen, size))
	return r, nil
}
