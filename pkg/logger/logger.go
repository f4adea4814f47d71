package logger

import (
	"io"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/AdrianSzacsko/mtaa-backend/pkg/config"
)

const serviceName = "mtaa-backend"

// New builds the service logger. Production always logs JSON; elsewhere the
// format setting picks between JSON and a human readable console writer.
func New(cfg config.LogConfig, env string) zerolog.Logger {
	return NewWithWriter(cfg, env, os.Stdout)
}

func NewWithWriter(cfg config.LogConfig, env string, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	w := out
	if env != "production" && cfg.Format == "console" {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("env", env).
		Logger()
}

// Middleware logs one line per request once the handler chain has finished.
func Middleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		event := log.Info()
		switch {
		case status >= 500:
			event = log.Error()
		case status >= 400:
			event = log.Warn()
		}
		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.String())
		}
		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Str("request_id", c.GetString(RequestIDKey)).
			Msg("request")
	}
}

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "request_id"
