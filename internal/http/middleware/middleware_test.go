package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/imgresize/internal/http/middleware"
	"github.com/phambaophuc/imgresize/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(t *testing.T) (*gin.Engine, *observer.ObservedLogs) {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	engine := gin.New()
	engine.Use(middleware.Logger(logger), middleware.ErrorHandler(logger), middleware.SecurityHeaders())

	engine.GET("/ok", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, ctx.GetString(middleware.RequestIDKey))
	})
	engine.GET("/resized", func(ctx *gin.Context) {
		ctx.Header(models.HeaderResizeWidth, "400")
		ctx.Header(models.HeaderResizeHeight, "400")
		ctx.Header(models.HeaderCache, "MISS")
		ctx.Header(models.HeaderResizeWarning, "proportions changed")
		ctx.Status(http.StatusOK)
	})
	engine.GET("/panic", func(ctx *gin.Context) {
		panic("boom")
	})
	engine.POST("/json", middleware.RequireContentType("application/json"), func(ctx *gin.Context) {
		ctx.Status(http.StatusNoContent)
	})

	return engine, logs
}

func serve(engine http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestLoggerGeneratesRequestID(t *testing.T) {
	engine, logs := newEngine(t)

	rec := serve(engine, httptest.NewRequest(http.MethodGet, "/ok", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	id := rec.Header().Get(models.HeaderRequestID)
	assert.Len(t, id, 36)
	assert.Equal(t, id, rec.Body.String())

	entries := logs.FilterMessage("HTTP Request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, id, fields["request_id"])
	assert.Equal(t, "/ok", fields["path"])
	assert.Equal(t, int64(http.StatusOK), fields["status"])
	assert.NotContains(t, fields, "resize_width")
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
}

func TestLoggerKeepsIncomingRequestID(t *testing.T) {
	engine, logs := newEngine(t)

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(models.HeaderRequestID, "req-42")
	rec := serve(engine, req)

	assert.Equal(t, "req-42", rec.Header().Get(models.HeaderRequestID))
	assert.Equal(t, "req-42", logs.All()[0].ContextMap()["request_id"])
}

func TestLoggerRecordsResizeResult(t *testing.T) {
	engine, logs := newEngine(t)

	serve(engine, httptest.NewRequest(http.MethodGet, "/resized", nil))

	fields := logs.FilterMessage("HTTP Request").All()[0].ContextMap()
	assert.Equal(t, "400", fields["resize_width"])
	assert.Equal(t, "400", fields["resize_height"])
	assert.Equal(t, "MISS", fields["cache"])
	assert.Equal(t, true, fields["proportion_changed"])
}

func TestErrorHandlerRecoversPanic(t *testing.T) {
	engine, logs := newEngine(t)

	rec := serve(engine, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal server error")

	panics := logs.FilterMessage("Panic recovered").All()
	require.Len(t, panics, 1)
	assert.Equal(t, rec.Header().Get(models.HeaderRequestID), panics[0].ContextMap()["request_id"])

	requests := logs.FilterMessage("HTTP Request").All()
	require.Len(t, requests, 1)
	assert.Equal(t, zapcore.ErrorLevel, requests[0].Level)
}

func TestRequireContentType(t *testing.T) {
	engine, logs := newEngine(t)

	req := httptest.NewRequest(http.MethodPost, "/json", strings.NewReader("a=b"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := serve(engine, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assert.Contains(t, rec.Body.String(), "expected application/json")
	assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)

	req = httptest.NewRequest(http.MethodPost, "/json", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	assert.Equal(t, http.StatusNoContent, serve(engine, req).Code)
}

func TestSecurityHeaders(t *testing.T) {
	engine, _ := newEngine(t)

	rec := serve(engine, httptest.NewRequest(http.MethodGet, "/ok", nil))

	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}
