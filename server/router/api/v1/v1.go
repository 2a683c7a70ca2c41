package v1

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/hrygo/datetimex/internal/profile"
	"github.com/hrygo/datetimex/plugin/datetime"
	apierrors "github.com/hrygo/datetimex/server/internal/errors"
	"github.com/hrygo/datetimex/server/internal/observability"
	ratelimit "github.com/hrygo/datetimex/server/middleware"
)

// APIV1Service serves the recognizer over HTTP.
type APIV1Service struct {
	Profile    *profile.Profile
	Recognizer *datetime.Recognizer
	Metrics    *observability.Metrics

	logger  *slog.Logger
	now     func() time.Time
	cache   *expirable.LRU[string, any]
	limiter *ratelimit.RateLimiter
}

// Option configures an APIV1Service.
type Option func(*APIV1Service)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *APIV1Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock replaces time.Now for requests without a reference.
func WithClock(now func() time.Time) Option {
	return func(s *APIV1Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewAPIV1Service(profile *profile.Profile, recognizer *datetime.Recognizer, opts ...Option) *APIV1Service {
	s := &APIV1Service{
		Profile:    profile,
		Recognizer: recognizer,
		Metrics:    observability.NewMetrics(1000),
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if profile.CacheSize > 0 {
		s.cache = expirable.NewLRU[string, any](profile.CacheSize, nil, profile.CacheTTL)
	}
	if profile.RateLimit > 0 {
		s.limiter = ratelimit.NewRateLimiter(profile.RateLimit, profile.RateBurst)
	}
	return s
}

// Register mounts the API routes and the error handler on echoServer.
func (s *APIV1Service) Register(echoServer *echo.Echo) {
	echoServer.HTTPErrorHandler = s.HTTPErrorHandler
	echoServer.GET("/healthz", s.Healthz)

	group := echoServer.Group("/api/v1", middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	}))
	if s.limiter != nil {
		group.Use(s.limiter.Middleware())
	}
	group.POST("/extract", s.Extract)
	group.POST("/recognize", s.Recognize)
	group.POST("/recognize/batch", s.RecognizeBatch)
	group.POST("/normalize", s.Normalize)
	group.GET("/stats", s.Stats)
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    apierrors.ErrorCode `json:"code"`
	Message string              `json:"message"`
}

// HTTPErrorHandler renders errors as ErrorResponse with the status of their code.
func (s *APIV1Service) HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, body := s.errorResponse(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			slog.String("path", c.Path()),
			slog.String(observability.LogFieldErrorCode, string(body.Code)),
			slog.String("error", err.Error()))
	}
	if err := c.JSON(status, body); err != nil {
		s.logger.Warn("failed to write error response", slog.String("error", err.Error()))
	}
}

func (s *APIV1Service) errorResponse(err error) (int, ErrorResponse) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code := apierrors.ErrCodeInternal
		switch {
		case he.Code == http.StatusNotFound || he.Code == http.StatusMethodNotAllowed:
			code = apierrors.ErrCodeNotFound
		case he.Code < http.StatusInternalServerError:
			code = apierrors.ErrCodeInvalidArgument
		}
		msg := http.StatusText(he.Code)
		if m, ok := he.Message.(string); ok {
			msg = m
		}
		return he.Code, ErrorResponse{Code: code, Message: msg}
	}

	re := apierrors.From(err)
	msg := re.Message
	if re.Code == apierrors.ErrCodeInternal && s.Profile.IsDev() && re.Cause != nil {
		msg = re.Cause.Error()
	}
	return re.Code.HTTPStatus(), ErrorResponse{Code: re.Code, Message: msg}
}
