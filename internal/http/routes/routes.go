package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/imgresize/internal/http/handlers"
	"github.com/phambaophuc/imgresize/internal/http/middleware"
	"go.uber.org/zap"
)

type Router struct {
	imageHandler *handlers.ImageHandler
	logger       *zap.Logger
}

func NewRouter(
	imageHandler *handlers.ImageHandler,
	logger *zap.Logger,
) *Router {
	return &Router{
		imageHandler: imageHandler,
		logger:       logger,
	}
}

func (r *Router) SetupRoutes() *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger(r.logger))
	router.Use(middleware.ErrorHandler(r.logger))
	router.Use(middleware.SecurityHeaders())

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", r.imageHandler.HealthCheck)

		images := v1.Group("/images")
		{
			images.POST("/resize", middleware.RequireContentType("multipart/form-data"), r.imageHandler.ResizeImage)
		}

		jobs := v1.Group("/jobs")
		{
			jobs.POST("", middleware.RequireContentType("application/json"), r.imageHandler.EnqueueJob)
			jobs.GET("/stats", r.imageHandler.QueueStats)
		}
	}

	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"status":  "OK",
			"service": "imgresize",
		})
	})

	return router
}
