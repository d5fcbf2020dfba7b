package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Reader is the part of kafka.Reader the consumer loop drives.
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer holds the connection to the Kafka server.
type Consumer struct {
	reader         Reader
	logger         *zap.Logger
	processTimeout time.Duration
	retryDelay     time.Duration
}

// Handler processes one message. Returning an error leaves the offset
// uncommitted so the message is delivered again.
type Handler func(ctx context.Context, key []byte, value []byte) error

// NewConsumer creates a group reader. groupID lets several copies of a service
// split the partitions instead of all processing the same message.
func NewConsumer(brokers []string, topic string, groupID string, logger *zap.Logger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})
	return NewConsumerWithReader(r, logger)
}

// NewConsumerWithReader allows injecting a test reader.
func NewConsumerWithReader(r Reader, logger *zap.Logger) *Consumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Consumer{
		reader:         r,
		logger:         logger,
		processTimeout: 10 * time.Second,
		retryDelay:     time.Second,
	}
}

// Start runs the fetch/handle/commit loop until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context, handler Handler) {
	c.logger.Info("kafka consumer started")

	for {
		if ctx.Err() != nil {
			return
		}

		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Warn("error fetching message", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.retryDelay):
			}
			continue
		}

		// each message gets its own deadline so one slow handler cannot stall the partition forever
		processCtx, cancel := context.WithTimeout(ctx, c.processTimeout)
		err = handler(processCtx, m.Key, m.Value)
		cancel()

		if err != nil {
			// not committed: Kafka redelivers it
			c.logger.Error("processing failed",
				zap.Int64("offset", m.Offset),
				zap.Error(err))
			continue
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			c.logger.Error("failed to commit offset", zap.Int64("offset", m.Offset), zap.Error(err))
		}
	}
}

// Close disconnects from the server.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
