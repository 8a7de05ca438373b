package middleware

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/imgresize/internal/models"
	"go.uber.org/zap"
)

// ErrorHandler turns panics into a 500 response. The panic goes to the zap
// logger only; gin's own stack dump is discarded.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(ctx *gin.Context, recovered interface{}) {
		logger.Error("Panic recovered",
			zap.Any("panic", recovered),
			zap.String("request_id", ctx.GetString(RequestIDKey)),
			zap.String("path", ctx.Request.URL.Path),
			zap.String("method", ctx.Request.Method),
		)

		ctx.AbortWithStatusJSON(http.StatusInternalServerError, models.APIResponse{
			Success: false,
			Error:   "Internal server error",
		})
	})
}
