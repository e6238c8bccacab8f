package logger

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// RequestIDKey is the gin context key holding the request id
	RequestIDKey = "request_id"
	ginLoggerKey = "logger"
)

type accessLogOptions struct {
	quiet map[string]struct{}
}

// AccessLogOption configures GinMiddleware
type AccessLogOption func(*accessLogOptions)

// WithQuietPaths logs successful requests to these paths at debug level, for
// health probes and similar polling
func WithQuietPaths(paths ...string) AccessLogOption {
	return func(o *accessLogOptions) {
		for _, p := range paths {
			o.quiet[p] = struct{}{}
		}
	}
}

// GinMiddleware attaches a request-scoped logger to the request context and
// writes one access log entry per request. The entry level follows the
// response status.
func GinMiddleware(logger *zap.Logger, opts ...AccessLogOption) gin.HandlerFunc {
	o := accessLogOptions{quiet: map[string]struct{}{}}
	for _, opt := range opts {
		opt(&o)
	}

	return func(c *gin.Context) {
		start := time.Now()
		req := c.Request
		requestID := c.GetString(RequestIDKey)

		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
		}
		if sc := trace.SpanContextFromContext(req.Context()); sc.HasTraceID() {
			fields = append(fields, zap.String("trace_id", sc.TraceID().String()))
		}
		reqLogger := logger.With(fields...)
		c.Set(ginLoggerKey, reqLogger)

		ctx := WithContext(req.Context(), reqLogger)
		if requestID != "" {
			ctx = WithRequestID(ctx, requestID)
		}
		c.Request = req.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		entry := []zap.Field{
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.Int("body_size", c.Writer.Size()),
		}
		if route := c.FullPath(); route != "" && route != req.URL.Path {
			entry = append(entry, zap.String("route", route))
		}
		if req.URL.RawQuery != "" {
			entry = append(entry, zap.String("query", req.URL.RawQuery))
		}
		if len(c.Errors) > 0 {
			entry = append(entry, zap.Strings("errors", c.Errors.Errors()))
		}

		_, quiet := o.quiet[req.URL.Path]
		if ce := reqLogger.Check(accessLevel(status, quiet), "HTTP Request"); ce != nil {
			ce.Write(entry...)
		}
	}
}

func accessLevel(status int, quiet bool) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case status >= http.StatusBadRequest:
		return zapcore.WarnLevel
	case quiet:
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}

// Recovery logs a panic with its stack and answers 500 in the API envelope
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			GetGinLogger(c, logger).Error("Panic recovered",
				zap.Any("error", rec),
				zap.Stack("stacktrace"),
			)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "ERR_INTERNAL",
					"message": "An internal error occurred",
				},
			})
		}()
		c.Next()
	}
}

// GetGinLogger returns the request-scoped logger, else fallback, else a
// no-op logger
func GetGinLogger(c *gin.Context, fallback ...*zap.Logger) *zap.Logger {
	if l, ok := c.Get(ginLoggerKey); ok {
		if zl, ok := l.(*zap.Logger); ok {
			return zl
		}
	}
	if len(fallback) > 0 && fallback[0] != nil {
		return fallback[0]
	}
	return zap.NewNop()
}
