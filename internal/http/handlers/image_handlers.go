package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/imgresize/internal/config"
	"github.com/phambaophuc/imgresize/internal/models"
	"github.com/phambaophuc/imgresize/internal/services/processor"
	"github.com/phambaophuc/imgresize/internal/services/queue"
	"github.com/phambaophuc/imgresize/internal/services/storage"
	"go.uber.org/zap"
)

const imageParamKey = "image"

// JobQueue is the part of the queue service the API needs. It is nil when
// RabbitMQ is unavailable.
type JobQueue interface {
	PublishJob(ctx context.Context, job *models.ResizeJob) error
	GetQueueStats() (*models.QueueStats, error)
	HealthCheck() string
}

type ImageHandler struct {
	processor *processor.ImageProcessor
	storage   *storage.StorageService
	queue     JobQueue
	logger    *zap.Logger
	config    *config.Config
}

func NewImageHandler(
	processor *processor.ImageProcessor,
	storage *storage.StorageService,
	queue JobQueue,
	logger *zap.Logger,
	config *config.Config,
) *ImageHandler {
	return &ImageHandler{
		processor: processor,
		storage:   storage,
		queue:     queue,
		logger:    logger,
		config:    config,
	}
}

func (h *ImageHandler) ResizeImage(c *gin.Context) {
	data, filename, err := h.readUploadedFile(c, imageParamKey)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	req, err := h.parseResizeParams(c)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.processor.ValidateUpload(data, h.config.Storage.MaxFileSize); err != nil {
		h.respondResizeError(c, err)
		return
	}

	cacheKey := h.storage.GenerateCacheKey(data, req)
	if cached, found := h.tryGetFromCache(c.Request.Context(), cacheKey); found {
		h.respondWithImage(c, cached, "HIT")
		return
	}

	buffer, format, resized, err := h.processor.ProcessBytes(data, req)
	if err != nil {
		h.logger.Info("Resize rejected", zap.String("filename", filename), zap.Error(err))
		h.respondResizeError(c, err)
		return
	}

	result := &cachedImage{
		ContentType:       processor.ContentType(format),
		Width:             resized.Width,
		Height:            resized.Height,
		ProportionChanged: resized.ProportionChanged,
		Data:              buffer.Bytes(),
	}

	h.setCacheData(c.Request.Context(), cacheKey, result)
	h.respondWithImage(c, result, "MISS")
}

// EnqueueJob publishes a resize job for a file under the jobs directory.
func (h *ImageHandler) EnqueueJob(c *gin.Context) {
	if h.queue == nil {
		h.respondError(c, http.StatusServiceUnavailable, "job queue is not available")
		return
	}
	if h.config.Jobs.BaseDir == "" {
		h.respondError(c, http.StatusServiceUnavailable, queue.ErrJobsDisabled.Error())
		return
	}

	job, err := h.parseJob(c)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.queue.PublishJob(c.Request.Context(), job); err != nil {
		h.logger.Error("Failed to publish job", zap.Error(err))
		h.respondError(c, http.StatusInternalServerError, "Failed to queue job")
		return
	}

	c.JSON(http.StatusAccepted, models.APIResponse{
		Success: true,
		Data:    job,
	})
}

func (h *ImageHandler) QueueStats(c *gin.Context) {
	if h.queue == nil {
		h.respondError(c, http.StatusServiceUnavailable, "job queue is not available")
		return
	}

	stats, err := h.queue.GetQueueStats()
	if err != nil {
		h.logger.Error("Failed to get queue stats", zap.Error(err))
		h.respondError(c, http.StatusInternalServerError, "Failed to get queue stats")
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    stats,
	})
}

// HealthCheck
func (h *ImageHandler) HealthCheck(c *gin.Context) {
	services := h.storage.HealthCheck(c.Request.Context())
	if h.queue != nil {
		services["rabbitmq"] = h.queue.HealthCheck()
	} else {
		services["rabbitmq"] = "not configured"
	}
	overall := h.calculateOverallHealth(services)

	statusCode := http.StatusOK
	if overall == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, models.APIResponse{
		Success: overall == "healthy",
		Data: models.HealthCheck{
			Status:    overall,
			Timestamp: time.Now(),
			Services:  services,
		},
	})
}
