package queue

import (
	"fmt"

	"github.com/phambaophuc/imgresize/internal/models"
)

// GetQueueStats asks the broker for the queue depth and consumer count.
func (q *QueueService) GetQueueStats() (*models.QueueStats, error) {
	info, err := q.channel.QueueInspect(q.queueName)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect queue %s: %w", q.queueName, err)
	}

	return &models.QueueStats{
		Name:      info.Name,
		Messages:  info.Messages,
		Consumers: info.Consumers,
		Workers:   int(q.active.Load()),
	}, nil
}

// HealthCheck reports the connection state and whether the queue can still
// be inspected.
func (q *QueueService) HealthCheck() string {
	switch {
	case q.conn == nil || q.conn.IsClosed():
		return "unhealthy: connection closed"
	case q.channel == nil:
		return "unhealthy: channel not available"
	}

	if _, err := q.GetQueueStats(); err != nil {
		return "unhealthy: " + err.Error()
	}
	return "healthy"
}
