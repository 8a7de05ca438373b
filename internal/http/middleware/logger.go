package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/phambaophuc/imgresize/internal/models"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "request_id"

// Logger tags every request with an id, echoed in the X-Request-ID response
// header, and logs one line per request once the handler has finished.
// Resize results are logged from the headers the handler set.
func Logger(logger *zap.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		requestID := ctx.GetHeader(models.HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx.Set(RequestIDKey, requestID)
		ctx.Header(models.HeaderRequestID, requestID)

		ctx.Next()

		status := ctx.Writer.Status()
		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", ctx.Request.Method),
			zap.String("path", ctx.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", ctx.ClientIP()),
		}

		header := ctx.Writer.Header()
		if width := header.Get(models.HeaderResizeWidth); width != "" {
			fields = append(fields,
				zap.String("resize_width", width),
				zap.String("resize_height", header.Get(models.HeaderResizeHeight)),
				zap.String("cache", header.Get(models.HeaderCache)),
				zap.Bool("proportion_changed", header.Get(models.HeaderResizeWarning) != ""),
			)
		}
		if errs := ctx.Errors.ByType(gin.ErrorTypeAny); len(errs) > 0 {
			fields = append(fields, zap.String("errors", errs.String()))
		}

		level := zapcore.InfoLevel
		switch {
		case status >= 500:
			level = zapcore.ErrorLevel
		case status >= 400:
			level = zapcore.WarnLevel
		}
		logger.Log(level, "HTTP Request", fields...)
	}
}
