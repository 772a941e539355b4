package server

import (
	"strconv"
	"time"

	"github.com/KaramelBytes/smartbiz-cli/internal/logger"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const (
	// RequestIDHeader carries the request id in both directions.
	RequestIDHeader = "X-Request-ID"
	// RequestIDContextKey is the echo context key for the request id.
	RequestIDContextKey = "request_id"
)

// requestID assigns each request an id (reusing the caller's header when
// present) and attaches a request-scoped logger to the request context.
func requestID(base zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			id := req.Header.Get(RequestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}
			c.Set(RequestIDContextKey, id)
			c.Response().Header().Set(RequestIDHeader, id)

			log := base.With().Str("request_id", id).Logger()
			c.SetRequest(req.WithContext(logger.WithContext(req.Context(), log)))
			return next(c)
		}
	}
}

// GetRequestID returns the request id or "" when unset.
func GetRequestID(c echo.Context) string {
	id, _ := c.Get(RequestIDContextKey).(string)
	return id
}

// accessLog writes one log line per request and records request metrics.
func accessLog(m *Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// let the error handler write the response so the status is final
				c.Error(err)
			}
			elapsed := time.Since(start)
			status := c.Response().Status
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}

			m.requestsTotal.WithLabelValues(route, c.Request().Method, strconv.Itoa(status)).Inc()
			m.requestDuration.WithLabelValues(route).Observe(elapsed.Seconds())

			log := logger.FromContext(c.Request().Context())
			ev := log.Info()
			if status >= 500 {
				ev = log.Error()
			} else if status >= 400 {
				ev = log.Warn()
			}
			ev.Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Int("status", status).
				Dur("latency", elapsed).
				Int64("bytes_out", c.Response().Size).
				Msg("request")
			return nil
		}
	}
}
