package logger

import (
	"log/slog"
	"time"

	"github.com/sweetpotato0/chainsocket/middleware"
	"github.com/sweetpotato0/chainsocket/pkg/logging"
)

// RequestLogger logs capability calls as they start
type RequestLogger struct {
	logger *slog.Logger
}

// NewRequestLogger creates a request logging middleware. A nil logger uses
// the shared middleware logger.
func NewRequestLogger(logger *slog.Logger) *RequestLogger {
	if logger == nil {
		logger = logging.WithComponent("middleware")
	}
	return &RequestLogger{logger: logger}
}

// Name returns the middleware name
func (m *RequestLogger) Name() string {
	return "RequestLogger"
}

// Execute logs the request
func (m *RequestLogger) Execute(ctx *middleware.Context, next middleware.Handler) error {
	m.logger.Debug("capability call",
		"kind", ctx.Kind,
		"name", ctx.Name,
		"caller", ctx.Caller,
		"input", ctx.Input,
	)
	return next(ctx)
}

// ResponseLogger logs the outcome of capability calls
type ResponseLogger struct {
	logger *slog.Logger
}

// NewResponseLogger creates a response logging middleware
func NewResponseLogger(logger *slog.Logger) *ResponseLogger {
	if logger == nil {
		logger = logging.WithComponent("middleware")
	}
	return &ResponseLogger{logger: logger}
}

// Name returns the middleware name
func (m *ResponseLogger) Name() string {
	return "ResponseLogger"
}

// Execute logs the response
func (m *ResponseLogger) Execute(ctx *middleware.Context, next middleware.Handler) error {
	start := time.Now()
	err := next(ctx)
	if err != nil {
		m.logger.Warn("capability call failed",
			"kind", ctx.Kind,
			"name", ctx.Name,
			"duration", time.Since(start),
			"error", err,
		)
		return err
	}
	m.logger.Debug("capability reply",
		"kind", ctx.Kind,
		"name", ctx.Name,
		"duration", time.Since(start),
		"output", ctx.Output,
	)
	return nil
}
