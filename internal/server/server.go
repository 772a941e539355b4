package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/KaramelBytes/smartbiz-cli/internal/analysis"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

// Config controls the HTTP API.
type Config struct {
	Addr            string
	MaxUploadMB     int
	RateLimitRPS    float64
	RateLimitBurst  int
	TopN            int
	ParetoThreshold float64
	Normalize       analysis.NormalizeOptions
	// Profile is used when a request carries no profile fields.
	Profile *analysis.BusinessProfile
}

// Server serves stateless analyses over HTTP. Each request parses its own
// upload; nothing is shared between requests except the rate limiter and metrics.
type Server struct {
	cfg     Config
	echo    *echo.Echo
	log     zerolog.Logger
	metrics *Metrics
}

// New builds a Server with routes and middleware registered.
func New(cfg Config, log zerolog.Logger) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = 10
	}
	if cfg.RateLimitRPS <= 0 {
		cfg.RateLimitRPS = 5
	}
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = 10
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()

	s := &Server{cfg: cfg, echo: e, log: log, metrics: NewMetrics()}
	e.HTTPErrorHandler = s.errorHandler

	limiter := newRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	e.Use(requestID(log))
	e.Use(accessLog(s.metrics))
	e.Use(middleware.Recover())

	e.GET("/healthz", s.handleHealth)
	e.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))

	api := e.Group("/api/v1", limiter.middleware(s.metrics))
	api.GET("/schema", s.handleSchema)
	api.GET("/template.csv", s.handleTemplateCSV)
	api.GET("/template.xlsx", s.handleTemplateXLSX)
	api.POST("/analyze", s.handleAnalyze, middleware.BodyLimit(fmt.Sprintf("%dM", cfg.MaxUploadMB)))
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.echo }

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.cfg.Addr).Msg("http server listening")
		errCh <- s.echo.Start(s.cfg.Addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.log.Info().Msg("http server shutting down")
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
