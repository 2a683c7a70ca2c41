package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/hrygo/datetimex/internal/profile"
	"github.com/hrygo/datetimex/plugin/datetime"
	"github.com/hrygo/datetimex/plugin/datetime/langpack"
	apiv1 "github.com/hrygo/datetimex/server/router/api/v1"
)

// Server runs the HTTP API.
type Server struct {
	Profile    *profile.Profile
	Recognizer *datetime.Recognizer
	APIV1      *apiv1.APIV1Service

	echoServer *echo.Echo
	listener   net.Listener
	logger     *slog.Logger
}

// NewRecognizer builds a recognizer over the embedded packs plus the
// profile's pack file, if any.
func NewRecognizer(profile *profile.Profile, logger *slog.Logger) (*datetime.Recognizer, error) {
	registry, err := langpack.DefaultRegistry()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load embedded language packs")
	}
	if profile.PackPath != "" {
		pack, err := langpack.LoadFile(profile.PackPath, langpack.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		registry.Register(pack)
		logger.Info("language pack loaded",
			slog.String("path", profile.PackPath),
			slog.String("culture", pack.Culture.String()))
	}
	return datetime.New(registry,
		datetime.WithLogger(logger),
		datetime.WithWorkers(profile.Workers))
}

// NewServer wires the recognizer into an echo server.
func NewServer(profile *profile.Profile, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	recognizer, err := NewRecognizer(profile, logger)
	if err != nil {
		return nil, err
	}

	echoServer := echo.New()
	echoServer.Debug = profile.IsDev()
	echoServer.HideBanner = true
	echoServer.HidePort = true
	echoServer.Use(middleware.Recover())
	// A full batch of maximum-length texts plus JSON overhead.
	echoServer.Use(middleware.BodyLimit(fmt.Sprintf("%dK", profile.MaxTextLength*apiv1.MaxBatchSize/1024+64)))

	s := &Server{
		Profile:    profile,
		Recognizer: recognizer,
		APIV1:      apiv1.NewAPIV1Service(profile, recognizer, apiv1.WithLogger(logger)),
		echoServer: echoServer,
		logger:     logger,
	}
	s.APIV1.Register(echoServer)
	return s, nil
}

// Handler exposes the routes without listening.
func (s *Server) Handler() http.Handler {
	return s.echoServer
}

// Start listens on the profile's address and serves in the background.
func (s *Server) Start(_ context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", addr)
	}
	s.listener = listener
	s.echoServer.Listener = listener

	go func() {
		if err := s.echoServer.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("server stopped", slog.String("error", err.Error()))
		}
	}()
	s.logger.Info("server started",
		slog.String("addr", listener.Addr().String()),
		slog.String("mode", s.Profile.Mode),
		slog.Any("cultures", s.Recognizer.Cultures()))
	return nil
}

// Addr returns the bound address once started.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echoServer.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "failed to shutdown server")
	}
	s.logger.Info("server stopped")
	return nil
}
