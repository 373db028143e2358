// Package http is the brainlib HTTP gateway: four form-based endpoints over
// the library service plus a help page, health check and Prometheus metrics.
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/brainlib/internal/library"
	"github.com/fyrsmithlabs/brainlib/internal/logging"
	"github.com/fyrsmithlabs/brainlib/internal/secrets"
)

// Library is the set of operations the gateway exposes.
// *library.Service satisfies it.
type Library interface {
	CreateStore(ctx context.Context, name string) (*library.StoreResult, error)
	AddDocument(ctx context.Context, storeID, filename string, content io.Reader) (*library.DocumentResult, error)
	Ask(ctx context.Context, storeID, question string) (*library.AnswerResult, error)
	Status(ctx context.Context, storeID string) (*library.StatusResult, error)
}

// UploadGuard inspects a document before it is sent to the provider.
// *secrets.Detector satisfies it.
type UploadGuard interface {
	CheckBytes(content []byte) *secrets.Result
}

var (
	_ Library     = (*library.Service)(nil)
	_ UploadGuard = (*secrets.Detector)(nil)
)

// Server provides the brainlib HTTP endpoints.
type Server struct {
	echo    *echo.Echo
	library Library
	guard   UploadGuard
	logger  *zap.Logger
	config  *Config
}

// Config holds HTTP server configuration.
type Config struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
	// BodyLimit uses echo size notation, e.g. "32M". Empty disables the limit.
	BodyLimit string
	Service   string
	Version   string
	// Meter records request metrics. Nil uses the global meter provider.
	Meter metric.Meter
}

// NewServer creates a new HTTP server. guard may be nil to accept every
// upload unchecked.
func NewServer(lib Library, guard UploadGuard, logger *zap.Logger, cfg *Config) (*Server, error) {
	if lib == nil {
		return nil, fmt.Errorf("library cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{
			Host:            "0.0.0.0",
			Port:            8000,
			ShutdownTimeout: 10 * time.Second,
		}
	}
	if cfg.Service == "" {
		cfg.Service = "brainlib"
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = newRequestValidator()

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
		RequestIDHandler: func(c echo.Context, id string) {
			ctx := logging.WithRequestID(c.Request().Context(), id)
			c.SetRequest(c.Request().WithContext(ctx))
		},
	}))
	e.Use(requestLogger(logger))
	e.Use(NewHTTPMetrics(cfg.Meter, logger).MetricsMiddleware())
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("panic recovered",
				zap.Error(err),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
				zap.ByteString("stack", stack),
			)
			return err
		},
	}))
	if cfg.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.BodyLimit))
	}

	s := &Server{
		echo:    e,
		library: lib,
		guard:   guard,
		logger:  logger,
		config:  cfg,
	}

	s.registerRoutes()

	return s, nil
}

// requestLogger logs one line per request once the response is committed.
func requestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			if err := next(c); err != nil {
				c.Error(err)
			}

			status := c.Response().Status
			fields := []zap.Field{
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", status),
				zap.Duration("duration", time.Since(start)),
				zap.Int64("bytes_out", c.Response().Size),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			}

			switch {
			case status >= http.StatusInternalServerError:
				logger.Error("http request", fields...)
			case status >= http.StatusBadRequest:
				logger.Warn("http request", fields...)
			default:
				logger.Info("http request", fields...)
			}
			return nil
		}
	}
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	s.echo.GET("/", s.handleHelp)
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	s.echo.POST("/vector-stores", s.handleCreateStore)
	s.echo.POST("/files", s.handleUpload)
	s.echo.POST("/ask", s.handleAsk)
	s.echo.POST("/status", s.handleStatus)
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves until ctx is cancelled, then shuts down gracefully within the
// configured timeout. It returns http.ErrServerClosed after a clean shutdown.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting http server", zap.String("addr", addr))
		errCh <- s.echo.Start(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return http.ErrServerClosed
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
