package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/phambaophuc/imgresize/internal/models"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// StartWorkers caps unacknowledged deliveries at concurrency and starts that
// many consumers. Use Wait to block until they have all stopped.
func (q *QueueService) StartWorkers(ctx context.Context, concurrency int) error {
	if concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", concurrency)
	}

	// global: the limit is shared by every consumer on the channel
	if err := q.channel.Qos(concurrency, 0, true); err != nil {
		return fmt.Errorf("failed to set prefetch count: %w", err)
	}

	for i := 1; i <= concurrency; i++ {
		if err := q.StartWorker(ctx, i); err != nil {
			return err
		}
	}
	return nil
}

func (q *QueueService) StartWorker(ctx context.Context, workerID int) error {
	msgs, err := q.channel.Consume(
		q.queueName,                        // queue
		fmt.Sprintf("worker-%d", workerID), // consumer
		false,                              // auto-ack
		false,                              // exclusive
		false,                              // no-local
		false,                              // no-wait
		nil,                                // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	q.startConsumer(ctx, msgs, workerID)
	return nil
}

// Wait blocks until every started worker has returned.
func (q *QueueService) Wait() {
	q.workers.Wait()
}

func (q *QueueService) startConsumer(ctx context.Context, msgs <-chan amqp.Delivery, workerID int) {
	q.workers.Add(1)
	q.active.Add(1)

	go func() {
		defer q.workers.Done()
		defer q.active.Add(-1)

		q.consume(ctx, msgs, workerID)
	}()

	q.logger.Info("Worker started", zap.Int("worker_id", workerID))
}

func (q *QueueService) consume(ctx context.Context, msgs <-chan amqp.Delivery, workerID int) {
	// a job that was already received finishes even after shutdown starts
	jobCtx := context.WithoutCancel(ctx)

	for {
		select {
		case <-ctx.Done():
			q.logger.Info("Worker stopping", zap.Int("worker_id", workerID))
			return
		case msg, ok := <-msgs:
			if !ok {
				q.logger.Warn("Message channel closed", zap.Int("worker_id", workerID))
				return
			}

			q.processMessage(jobCtx, msg, workerID)
		}
	}
}

// processMessage runs one job. Failures are terminal: the message is acked
// and the job marked failed, never requeued.
func (q *QueueService) processMessage(ctx context.Context, msg amqp.Delivery, workerID int) *models.ResizeJob {
	var job models.ResizeJob
	if err := json.Unmarshal(msg.Body, &job); err != nil {
		q.logger.Error("Failed to unmarshal job",
			zap.Error(err),
			zap.Int("worker_id", workerID))
		msg.Nack(false, false) // Don't requeue malformed messages
		return nil
	}

	q.logger.Info("Processing job",
		zap.String("job_id", job.ID),
		zap.Int("worker_id", workerID))

	job.Status = models.StatusProcessing

	result, err := q.processJob(ctx, &job)
	if err != nil {
		job.Status = models.StatusFailed
		job.Error = err.Error()
		q.logger.Error("Job processing failed",
			zap.String("job_id", job.ID),
			zap.Error(err))
	} else {
		job.Status = models.StatusCompleted
		job.Result = result
		q.logger.Info("Job completed successfully",
			zap.String("job_id", job.ID),
			zap.String("output", result.OutputPath))
	}

	if err := msg.Ack(false); err != nil {
		q.logger.Error("Failed to ack message",
			zap.String("job_id", job.ID),
			zap.Error(err))
	}

	return &job
}
