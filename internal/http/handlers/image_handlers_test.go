package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/imgresize/internal/config"
	"github.com/phambaophuc/imgresize/internal/http/handlers"
	"github.com/phambaophuc/imgresize/internal/http/routes"
	"github.com/phambaophuc/imgresize/internal/models"
	"github.com/phambaophuc/imgresize/internal/services/processor"
	"github.com/phambaophuc/imgresize/internal/services/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeQueue struct {
	published []*models.ResizeJob
}

func (q *fakeQueue) PublishJob(ctx context.Context, job *models.ResizeJob) error {
	q.published = append(q.published, job)
	return nil
}

func (q *fakeQueue) GetQueueStats() (*models.QueueStats, error) {
	return &models.QueueStats{Name: "test", Messages: len(q.published)}, nil
}

func (q *fakeQueue) HealthCheck() string {
	return "healthy"
}

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	base, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	return &config.Config{
		Resize:  config.ResizeConfig{Filter: "lanczos", JPEGQuality: 90},
		Storage: config.StorageConfig{MaxFileSize: 1 << 20},
		Jobs:    config.JobsConfig{BaseDir: base},
	}
}

func newRouter(t *testing.T, queue handlers.JobQueue) http.Handler {
	t.Helper()
	return newRouterWithConfig(t, testConfig(t), queue)
}

func newRouterWithConfig(t *testing.T, cfg *config.Config, queue handlers.JobQueue) http.Handler {
	t.Helper()

	proc, err := processor.NewImageProcessor(cfg.Resize, zap.NewNop())
	require.NoError(t, err)

	h := handlers.NewImageHandler(proc, storage.NewStorageService(cfg), queue, zap.NewNop(), cfg)
	return routes.NewRouter(h, zap.NewNop()).SetupRoutes()
}

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()

	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, image.NewRGBA(image.Rect(0, 0, width, height))))
	return buf.Bytes()
}

func resizeRequest(t *testing.T, file []byte, fields map[string]string) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	if file != nil {
		part, err := w.CreateFormFile("image", "photo.png")
		require.NoError(t, err)
		_, err = part.Write(file)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/images/resize", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func serve(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestResizeByWidth(t *testing.T) {
	router := newRouter(t, nil)

	rec := serve(router, resizeRequest(t, pngBytes(t, 800, 600), map[string]string{"width": "400"}))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "400", rec.Header().Get("X-Resize-Width"))
	assert.Equal(t, "300", rec.Header().Get("X-Resize-Height"))
	assert.Empty(t, rec.Header().Get("X-Resize-Warning"))

	img, err := png.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 400, 300), img.Bounds())
}

func TestResizeWarnsOnProportionChange(t *testing.T) {
	router := newRouter(t, nil)

	rec := serve(router, resizeRequest(t, pngBytes(t, 800, 600), map[string]string{"width": "400", "height": "400"}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Resize-Warning"))
}

func TestResizeRejectsBadRequests(t *testing.T) {
	router := newRouter(t, nil)
	img := pngBytes(t, 80, 60)

	for name, tc := range map[string]struct {
		file   []byte
		fields map[string]string
		status int
	}{
		"no file":          {nil, map[string]string{"width": "10"}, http.StatusBadRequest},
		"no parameters":    {img, nil, http.StatusBadRequest},
		"scale with width": {img, map[string]string{"scale": "2", "width": "10"}, http.StatusBadRequest},
		"zero height":      {img, map[string]string{"height": "0"}, http.StatusBadRequest},
		"not a number":     {img, map[string]string{"width": "wide"}, http.StatusBadRequest},
		"not an image":     {[]byte("plain text"), map[string]string{"scale": "2"}, http.StatusUnprocessableEntity},
		"huge scale":       {img, map[string]string{"scale": "1e17"}, http.StatusBadRequest},
		"wrapping scale":   {img, map[string]string{"scale": "1e300"}, http.StatusBadRequest},
		"huge width":       {img, map[string]string{"width": "1000000"}, http.StatusBadRequest},
		"too many pixels":  {img, map[string]string{"width": "10000", "height": "10000"}, http.StatusBadRequest},
	} {
		t.Run(name, func(t *testing.T) {
			rec := serve(router, resizeRequest(t, tc.file, tc.fields))
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
		})
	}
}

func TestResizeRequiresMultipart(t *testing.T) {
	router := newRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/images/resize", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")

	assert.Equal(t, http.StatusUnsupportedMediaType, serve(router, req).Code)
}

func jobRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestEnqueueJob(t *testing.T) {
	queue := &fakeQueue{}
	cfg := testConfig(t)
	router := newRouterWithConfig(t, cfg, queue)

	rec := serve(router, jobRequest(`{"source_path": "cats/cat.jpg", "output_dir": "small", "width": 400}`))

	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	require.Len(t, queue.published, 1)
	assert.Equal(t, filepath.Join(cfg.Jobs.BaseDir, "cats", "cat.jpg"), queue.published[0].SourcePath)
	assert.Equal(t, filepath.Join(cfg.Jobs.BaseDir, "small"), queue.published[0].OutputDir)
	assert.Equal(t, 400.0, *queue.published[0].Request.Width)

	rec = serve(router, jobRequest(`{"source_path": "`+filepath.Join(cfg.Jobs.BaseDir, "dog.png")+`", "scale": 0.5}`))
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	assert.Len(t, queue.published, 2)
}

func TestEnqueueJobRejectsBadRequests(t *testing.T) {
	queue := &fakeQueue{}
	router := newRouter(t, queue)

	for name, body := range map[string]string{
		"scale with height": `{"source_path": "cat.jpg", "scale": 2, "height": 10}`,
		"no source":         `{"width": 10}`,
		"parent escape":     `{"source_path": "../cat.jpg", "width": 10}`,
		"nested escape":     `{"source_path": "a/../../cat.jpg", "width": 10}`,
		"outside absolute":  `{"source_path": "/etc/passwd", "width": 10}`,
		"output outside":    `{"source_path": "cat.jpg", "output_dir": "/tmp", "width": 10}`,
	} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, http.StatusBadRequest, serve(router, jobRequest(body)).Code)
		})
	}
	assert.Empty(t, queue.published)
}

func TestEnqueueJobWithoutBaseDir(t *testing.T) {
	queue := &fakeQueue{}
	cfg := testConfig(t)
	cfg.Jobs.BaseDir = ""
	router := newRouterWithConfig(t, cfg, queue)

	rec := serve(router, jobRequest(`{"source_path": "cat.jpg", "width": 10}`))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "JOBS_BASE_DIR")
	assert.Empty(t, queue.published)
}

func TestQueueStats(t *testing.T) {
	queue := &fakeQueue{}
	router := newRouter(t, queue)
	serve(router, jobRequest(`{"source_path": "cat.jpg", "width": 10}`))

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/jobs/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data models.QueueStats `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, models.QueueStats{Name: "test", Messages: 1}, body.Data)
}

func TestJobsWithoutQueue(t *testing.T) {
	router := newRouter(t, nil)

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/jobs/stats", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthCheck(t *testing.T) {
	router := newRouter(t, &fakeQueue{})

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool               `json:"success"`
		Data    models.HealthCheck `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "healthy", body.Data.Services["rabbitmq"])
	assert.Equal(t, "not configured", body.Data.Services["redis"])
}

func TestRootAndUnknownRoutes(t *testing.T) {
	router := newRouter(t, nil)

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"OK","service":"imgresize"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(models.HeaderRequestID))

	assert.Equal(t, http.StatusNotFound, serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil)).Code)
}
