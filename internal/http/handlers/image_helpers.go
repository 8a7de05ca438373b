package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/imgresize/internal/models"
	"github.com/phambaophuc/imgresize/internal/services/processor"
	"github.com/phambaophuc/imgresize/internal/services/queue"
	"github.com/phambaophuc/imgresize/internal/services/sizing"
	"go.uber.org/zap"
)

// cachedImage is what the Redis cache stores for one resize result.
type cachedImage struct {
	ContentType       string `json:"content_type"`
	Width             int    `json:"width"`
	Height            int    `json:"height"`
	ProportionChanged bool   `json:"proportion_changed"`
	Data              []byte `json:"data"`
}

type jobRequest struct {
	SourcePath string   `json:"source_path" binding:"required"`
	OutputDir  string   `json:"output_dir"`
	Scale      *float64 `json:"scale"`
	Width      *float64 `json:"width"`
	Height     *float64 `json:"height"`
	Upload     bool     `json:"upload"`
}

// === REQUEST PARSING ===

// parseResizeParams reads the optional scale, width and height form fields.
// Absent fields stay nil; range checks are left to the resolver.
func (h *ImageHandler) parseResizeParams(c *gin.Context) (models.ResizeRequest, error) {
	var req models.ResizeRequest
	var err error

	if req.Scale, err = h.parseOptionalFloat(c, "scale"); err != nil {
		return req, err
	}
	if req.Width, err = h.parseOptionalInt(c, "width"); err != nil {
		return req, err
	}
	if req.Height, err = h.parseOptionalInt(c, "height"); err != nil {
		return req, err
	}

	return req, nil
}

func (h *ImageHandler) parseOptionalFloat(c *gin.Context, fieldName string) (*float64, error) {
	value, ok := c.GetPostForm(fieldName)
	if !ok {
		return nil, nil
	}

	num, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: must be a number", fieldName)
	}
	return &num, nil
}

func (h *ImageHandler) parseOptionalInt(c *gin.Context, fieldName string) (*float64, error) {
	value, ok := c.GetPostForm(fieldName)
	if !ok {
		return nil, nil
	}

	num, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: must be an integer", fieldName)
	}
	return models.Float(float64(num)), nil
}

func (h *ImageHandler) parseJob(c *gin.Context) (*models.ResizeJob, error) {
	var body jobRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		return nil, fmt.Errorf("invalid job request: %v", err)
	}

	req := models.ResizeRequest{Scale: body.Scale, Width: body.Width, Height: body.Height}
	if err := sizing.Validate(req); err != nil {
		return nil, err
	}
	if _, err := sizing.ModeOf(req); err != nil {
		return nil, err
	}

	source, outputDir, err := queue.ConfinePaths(h.config.Jobs.BaseDir, body.SourcePath, body.OutputDir)
	if err != nil {
		return nil, err
	}

	return queue.NewJob(source, outputDir, req, body.Upload), nil
}

// === FILE OPERATIONS ===

func (h *ImageHandler) readUploadedFile(c *gin.Context, paramKey string) ([]byte, string, error) {
	file, header, err := c.Request.FormFile(paramKey)
	if err != nil {
		return nil, "", errors.New("no image file provided")
	}
	defer file.Close()

	// one byte over the limit is enough to reject it later
	data, err := io.ReadAll(io.LimitReader(file, h.config.Storage.MaxFileSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read upload: %v", err)
	}

	return data, header.Filename, nil
}

// === RESPONSE HANDLING ===

func (h *ImageHandler) respondError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, models.APIResponse{
		Success: false,
		Error:   message,
	})
}

func (h *ImageHandler) respondResizeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, sizing.ErrNoParameters),
		errors.Is(err, sizing.ErrInvalidCombination),
		errors.Is(err, sizing.ErrNegativeParameter),
		errors.Is(err, sizing.ErrDimensionTooLarge):
		h.respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, processor.ErrUnreadableImage):
		h.respondError(c, http.StatusUnprocessableEntity, err.Error())
	default:
		h.respondError(c, http.StatusBadRequest, err.Error())
	}
}

func (h *ImageHandler) respondWithImage(c *gin.Context, img *cachedImage, cacheStatus string) {
	c.Header(models.HeaderResizeWidth, strconv.Itoa(img.Width))
	c.Header(models.HeaderResizeHeight, strconv.Itoa(img.Height))
	c.Header(models.HeaderCache, cacheStatus)
	if img.ProportionChanged {
		c.Header(models.HeaderResizeWarning, "requested width and height change the image proportions")
	}

	c.Data(http.StatusOK, img.ContentType, img.Data)
}

// === CACHE ===

func (h *ImageHandler) tryGetFromCache(ctx context.Context, cacheKey string) (*cachedImage, bool) {
	cachedData, err := h.storage.GetFromCache(ctx, cacheKey)
	if err != nil {
		h.logger.Warn("Cache lookup failed", zap.String("cache_key", cacheKey), zap.Error(err))
		return nil, false
	}
	if cachedData == nil {
		return nil, false
	}

	var img cachedImage
	if err := json.Unmarshal(cachedData, &img); err != nil {
		h.logger.Warn("Failed to unmarshal cached data", zap.String("cache_key", cacheKey), zap.Error(err))
		return nil, false
	}

	h.logger.Info("Cache hit", zap.String("cache_key", cacheKey))
	return &img, true
}

func (h *ImageHandler) setCacheData(ctx context.Context, cacheKey string, img *cachedImage) {
	data, err := json.Marshal(img)
	if err != nil {
		h.logger.Warn("Failed to marshal cache data", zap.Error(err))
		return
	}

	if err := h.storage.SetCache(ctx, cacheKey, data); err != nil {
		h.logger.Warn("Failed to cache data", zap.String("cache_key", cacheKey), zap.Error(err))
	}
}

// === UTILITY METHODS ===

func (h *ImageHandler) calculateOverallHealth(services map[string]string) string {
	for _, status := range services {
		if status != "healthy" && status != "not configured" {
			return "unhealthy"
		}
	}
	return "healthy"
}
