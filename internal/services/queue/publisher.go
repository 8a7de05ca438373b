package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phambaophuc/imgresize/internal/models"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// NewJob builds a pending job for the image at sourcePath.
func NewJob(sourcePath, outputDir string, req models.ResizeRequest, upload bool) *models.ResizeJob {
	return &models.ResizeJob{
		ID:         uuid.NewString(),
		SourcePath: sourcePath,
		OutputDir:  outputDir,
		Request:    req,
		Upload:     upload,
		Status:     models.StatusPending,
		CreatedAt:  time.Now(),
	}
}

func (q *QueueService) PublishJob(ctx context.Context, job *models.ResizeJob) error {
	jobBytes, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	err = q.channel.Publish(
		"",          // exchange
		q.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         jobBytes,
			DeliveryMode: amqp.Persistent,
			MessageId:    job.ID,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish job: %w", err)
	}

	q.logger.Info("Job published to queue",
		zap.String("job_id", job.ID),
		zap.String("source", job.SourcePath))
	return nil
}
