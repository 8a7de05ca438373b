package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/phambaophuc/imgresize/internal/services/processor"
	"github.com/phambaophuc/imgresize/internal/services/queue"
	"github.com/phambaophuc/imgresize/internal/services/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *app) workerCommand() *cobra.Command {
	concurrency := 1

	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Process resize jobs from RabbitMQ",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.work(cmd.Context(), concurrency)
		},
	}
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", concurrency, "Number of jobs processed in parallel")

	return cmd
}

func (a *app) work(ctx context.Context, concurrency int) error {
	if concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", concurrency)
	}

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

	if a.cfg.Jobs.BaseDir == "" {
		return queue.ErrJobsDisabled
	}

	queueSvc, err := queue.NewQueueService(a.cfg, proc, store, logger)
	if err != nil {
		return err
	}
	defer queueSvc.Close()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := queueSvc.StartWorkers(ctx, concurrency); err != nil {
		return err
	}

	if stats, err := queueSvc.GetQueueStats(); err == nil {
		logger.Info("Waiting for jobs",
			zap.Int("messages", stats.Messages),
			zap.Int("consumers", stats.Consumers),
			zap.String("base_dir", a.cfg.Jobs.BaseDir))
	}

	<-ctx.Done()
	logger.Info("Workers shutting down, finishing jobs in progress")
	queueSvc.Wait()
	return nil
}
