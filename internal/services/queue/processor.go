package queue

import (
	"context"
	"fmt"

	"github.com/phambaophuc/imgresize/internal/models"
	"go.uber.org/zap"
)

func (q *QueueService) processJob(ctx context.Context, job *models.ResizeJob) (*models.ResizedImage, error) {
	// publishers are not trusted to have confined the paths
	source, outputDir, err := ConfinePaths(q.baseDir, job.SourcePath, job.OutputDir)
	if err != nil {
		return nil, err
	}

	result, err := q.processor.ProcessFile(ctx, source, job.Request, outputDir)
	if err != nil {
		return nil, err
	}

	if result.ProportionChanged {
		q.logger.Warn("Job changes image proportions",
			zap.String("job_id", job.ID),
			zap.Int("width", result.Width),
			zap.Int("height", result.Height))
	}

	if job.Upload {
		url, err := q.storage.UploadFile(ctx, result.OutputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to upload resized image: %w", err)
		}
		result.URL = url
	}

	return result, nil
}
