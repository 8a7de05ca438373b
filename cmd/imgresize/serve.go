package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/imgresize/internal/http/handlers"
	"github.com/phambaophuc/imgresize/internal/http/routes"
	"github.com/phambaophuc/imgresize/internal/services/processor"
	"github.com/phambaophuc/imgresize/internal/services/queue"
	"github.com/phambaophuc/imgresize/internal/services/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *app) serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the resize HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	logger, err := newLogger(a.cfg.LogLevel, a.stderr, true)
	if err != nil {
		return err
	}
	defer logger.Sync()

	proc, err := processor.NewImageProcessor(a.cfg.Resize, logger)
	if err != nil {
		return err
	}

	store := storage.NewStorageService(a.cfg)
	defer store.Close()

	// the API still resizes without RabbitMQ, only job endpoints go away
	var jobs handlers.JobQueue
	queueSvc, err := queue.NewQueueService(a.cfg, proc, store, logger)
	if err != nil {
		logger.Warn("Failed to initialize queue service", zap.Error(err))
	} else {
		defer queueSvc.Close()
		jobs = queueSvc
	}

	gin.SetMode(gin.ReleaseMode)
	imageHandler := handlers.NewImageHandler(proc, store, jobs, logger, a.cfg)
	router := routes.NewRouter(imageHandler, logger)

	server := &http.Server{
		Addr:         ":" + a.cfg.Server.Port,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		Handler:      router.SetupRoutes(),
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
	return nil
}
