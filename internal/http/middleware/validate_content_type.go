package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/imgresize/internal/models"
)

// RequireContentType rejects requests whose body is not of the given media type.
func RequireContentType(mediaType string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !strings.HasPrefix(ctx.ContentType(), mediaType) {
			ctx.AbortWithStatusJSON(http.StatusUnsupportedMediaType, models.APIResponse{
				Success: false,
				Error:   "expected " + mediaType + " request body",
			})
			return
		}
		ctx.Next()
	}
}
