package v1

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/datetimex/internal/profile"
	"github.com/hrygo/datetimex/plugin/datetime"
	apierrors "github.com/hrygo/datetimex/server/internal/errors"
)

var testRef = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func testProfile() *profile.Profile {
	return &profile.Profile{
		Mode:           "dev",
		Version:        "test",
		Culture:        "en-US",
		Timezone:       "UTC",
		CacheSize:      16,
		CacheTTL:       time.Minute,
		MaxTextLength:  200,
		Workers:        2,
		RequestTimeout: time.Second,
	}
}

func newTestServer(t *testing.T, mutate func(*profile.Profile)) (*APIV1Service, *echo.Echo) {
	t.Helper()
	p := testProfile()
	if mutate != nil {
		mutate(p)
	}
	rec, err := datetime.New(nil, datetime.WithWorkers(p.Workers))
	require.NoError(t, err)

	s := NewAPIV1Service(p, rec, WithClock(func() time.Time { return testRef }))
	e := echo.New()
	s.Register(e)
	return s, e
}

func do(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.RemoteAddr = "192.0.2.1:1234"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestRecognize(t *testing.T) {
	_, e := newTestServer(t, nil)

	tests := []struct {
		name  string
		body  string
		text  string
		timex string
	}{
		{
			name:  "explicit reference",
			body:  `{"text":"call me tomorrow at 3pm","reference":"2024-03-15T10:00:00Z"}`,
			text:  "tomorrow at 3pm",
			timex: "2024-03-16T15",
		},
		{
			name:  "clock reference",
			body:  `{"text":"see you tomorrow"}`,
			text:  "tomorrow",
			timex: "2024-03-16",
		},
		{
			name:  "reference read in the request timezone",
			body:  `{"text":"see you tomorrow","reference":"2024-03-15T23:30:00Z","timezone":"Asia/Tokyo"}`,
			text:  "tomorrow",
			timex: "2024-03-17",
		},
		{
			name:  "culture matched to the closest pack",
			body:  `{"text":"see you tomorrow","culture":"en-GB"}`,
			text:  "tomorrow",
			timex: "2024-03-16",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(e, http.MethodPost, "/api/v1/recognize", tt.body)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))

			resp := decode[RecognizeResponse](t, rec)
			require.Len(t, resp.Results, 1)
			assert.Equal(t, tt.text, resp.Results[0].Text)
			assert.Equal(t, tt.timex, resp.Results[0].Resolution.Values[0]["timex"])
		})
	}
}

func TestExtract(t *testing.T) {
	_, e := newTestServer(t, nil)

	rec := do(e, http.MethodPost, "/api/v1/extract", `{"text":"call me tomorrow at 3pm"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, ExtractResponse{Entities: []Entity{
		{Start: 8, Length: 15, Text: "tomorrow at 3pm", Type: "datetime"},
	}}, decode[ExtractResponse](t, rec))
}

func TestRecognizeBatch(t *testing.T) {
	_, e := newTestServer(t, nil)

	rec := do(e, http.MethodPost, "/api/v1/recognize/batch",
		`{"texts":["today and next week","nothing here","closed on Christmas"],"reference":"2024-03-15T10:00:00Z"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[BatchResponse](t, rec)
	require.Len(t, resp.Documents, 3)
	assert.Len(t, resp.Documents[0], 2)
	assert.Empty(t, resp.Documents[1])
	require.Len(t, resp.Documents[2], 1)
	assert.Equal(t, "datetimeV2.date", resp.Documents[2][0].TypeName)
}

func TestErrors(t *testing.T) {
	_, e := newTestServer(t, nil)

	tooMany := make([]string, MaxBatchSize+1)
	for i := range tooMany {
		tooMany[i] = fmt.Sprintf("%q", "today")
	}

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   apierrors.ErrorCode
	}{
		{"empty text", http.MethodPost, "/api/v1/recognize", `{"text":"  "}`, 400, apierrors.ErrCodeInvalidArgument},
		{"text too long", http.MethodPost, "/api/v1/recognize", `{"text":"` + strings.Repeat("a", 201) + `"}`, 400, apierrors.ErrCodeInvalidArgument},
		{"malformed body", http.MethodPost, "/api/v1/extract", `{"text":`, 400, apierrors.ErrCodeInvalidArgument},
		{"bad timezone", http.MethodPost, "/api/v1/recognize", `{"text":"today","timezone":"Mars/Olympus"}`, 400, apierrors.ErrCodeInvalidArgument},
		{"bad reference", http.MethodPost, "/api/v1/recognize", `{"text":"today","reference":"yesterday-ish"}`, 400, apierrors.ErrCodeInvalidArgument},
		{"unsupported culture", http.MethodPost, "/api/v1/recognize", `{"text":"demain","culture":"fr-FR"}`, 400, apierrors.ErrCodeUnsupportedCulture},
		{"empty batch", http.MethodPost, "/api/v1/recognize/batch", `{"texts":[]}`, 400, apierrors.ErrCodeInvalidArgument},
		{"batch too large", http.MethodPost, "/api/v1/recognize/batch", `{"texts":[` + strings.Join(tooMany, ",") + `]}`, 400, apierrors.ErrCodeInvalidArgument},
		{"unknown route", http.MethodGet, "/api/v1/nope", "", 404, apierrors.ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(e, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.code, decode[ErrorResponse](t, rec).Code)
		})
	}
}

func TestRateLimit(t *testing.T) {
	_, e := newTestServer(t, func(p *profile.Profile) {
		p.RateLimit = 1
		p.RateBurst = 1
	})

	first := do(e, http.MethodPost, "/api/v1/recognize", `{"text":"today"}`)
	require.Equal(t, http.StatusOK, first.Code)

	second := do(e, http.MethodPost, "/api/v1/recognize", `{"text":"today"}`)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, apierrors.ErrCodeRateLimitExceeded, decode[ErrorResponse](t, second).Code)
}

func TestCacheAndStats(t *testing.T) {
	s, e := newTestServer(t, nil)

	body := `{"text":"see you tomorrow","reference":"2024-03-15T10:00:00Z"}`
	first := do(e, http.MethodPost, "/api/v1/recognize", body)
	require.Equal(t, http.StatusOK, first.Code)
	second := do(e, http.MethodPost, "/api/v1/recognize", body)
	require.Equal(t, http.StatusOK, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())

	// Without a reference the answer depends on the clock and is not cached.
	do(e, http.MethodPost, "/api/v1/recognize", `{"text":"see you tomorrow"}`)
	do(e, http.MethodPost, "/api/v1/recognize", `{"text":""}`)

	snap := s.Metrics.Snapshot()
	assert.EqualValues(t, 1, snap.CacheHits)
	assert.EqualValues(t, 1, snap.CacheMisses)
	assert.EqualValues(t, 4, snap.RequestTotal)
	assert.EqualValues(t, 1, snap.RequestFailed)

	rec := do(e, http.MethodGet, "/api/v1/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[map[string]any](t, rec)
	assert.EqualValues(t, 4, stats["requestTotal"])
	assert.EqualValues(t, 1, stats["cacheLen"])
	assert.Equal(t, []any{"en-US"}, stats["cultures"])
}

func TestCacheDisabled(t *testing.T) {
	s, e := newTestServer(t, func(p *profile.Profile) { p.CacheSize = 0 })

	body := `{"text":"today","reference":"2024-03-15T10:00:00Z"}`
	do(e, http.MethodPost, "/api/v1/recognize", body)
	do(e, http.MethodPost, "/api/v1/recognize", body)
	assert.Zero(t, s.Metrics.Snapshot().CacheHits)
}

func TestHealthz(t *testing.T) {
	_, e := newTestServer(t, nil)

	rec := do(e, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]string{"status": "ok", "version": "test"}, decode[map[string]string](t, rec))
}

func TestNormalize(t *testing.T) {
	_, e := newTestServer(t, nil)

	tests := []struct {
		name  string
		body  string
		start string
		end   string
	}{
		{
			name:  "moment",
			body:  `{"text":"lunch tomorrow at 3pm","reference":"2024-03-15T10:00:00Z"}`,
			start: "2024-03-16T15:00:00Z",
			end:   "2024-03-16T16:00:00Z",
		},
		{
			name:  "day in timezone",
			body:  `{"text":"meet next Friday","reference":"2024-03-15 10:00:00","timezone":"Asia/Tokyo"}`,
			start: "2024-03-22T00:00:00+09:00",
			end:   "2024-03-23T00:00:00+09:00",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(e, http.MethodPost, "/api/v1/normalize", tt.body)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			got := decode[map[string]string](t, rec)
			assert.Equal(t, tt.start, got["start"])
			assert.Equal(t, tt.end, got["end"])
		})
	}

	t.Run("open-ended", func(t *testing.T) {
		rec := do(e, http.MethodPost, "/api/v1/normalize", `{"text":"open after 3pm","reference":"2024-03-15T10:00:00Z"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		got := decode[map[string]string](t, rec)
		assert.Equal(t, "2024-03-15T15:00:00Z", got["start"])
		assert.NotContains(t, got, "end")
	})

	t.Run("nothing found", func(t *testing.T) {
		rec := do(e, http.MethodPost, "/api/v1/normalize", `{"text":"hello there"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, apierrors.ErrCodeNotFound, decode[ErrorResponse](t, rec).Code)
	})
}
