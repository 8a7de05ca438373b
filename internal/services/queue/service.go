package queue

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/phambaophuc/imgresize/internal/config"
	"github.com/phambaophuc/imgresize/internal/services/processor"
	"github.com/phambaophuc/imgresize/internal/services/storage"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// QueueService publishes resize jobs to RabbitMQ and runs workers that
// resize files under the configured jobs directory.
type QueueService struct {
	conn      *amqp.Connection
	channel   *amqp.Channel
	logger    *zap.Logger
	queueName string
	baseDir   string
	processor *processor.ImageProcessor
	storage   *storage.StorageService

	workers sync.WaitGroup
	active  atomic.Int32
}

// NewQueueService connects to cfg.RabbitMQ and declares the durable job
// queue. Publishers may pass a nil processor and storage.
func NewQueueService(
	cfg *config.Config,
	processor *processor.ImageProcessor,
	storage *storage.StorageService,
	logger *zap.Logger,
) (*QueueService, error) {
	conn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := declareQueue(conn, cfg.RabbitMQ.Queue)
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &QueueService{
		conn:      conn,
		channel:   channel,
		logger:    logger.With(zap.String("queue", cfg.RabbitMQ.Queue)),
		queueName: cfg.RabbitMQ.Queue,
		baseDir:   cfg.Jobs.BaseDir,
		processor: processor,
		storage:   storage,
	}, nil
}

func declareQueue(conn *amqp.Connection, name string) (*amqp.Channel, error) {
	channel, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = channel.QueueDeclare(
		name,  // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		channel.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", name, err)
	}

	return channel, nil
}

// Close waits for running workers, so their context must already be
// cancelled, and then closes the channel and connection.
func (q *QueueService) Close() error {
	q.Wait()

	var errs []error
	if q.channel != nil {
		if err := q.channel.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if q.conn != nil {
		if err := q.conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	return errors.Join(errs...)
}
