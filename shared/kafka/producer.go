package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	skafka "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Writer defines the subset of segmentio kafka.Writer we need. This makes the producer testable.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...skafka.Message) error
	Close() error
}

// Publisher is the interface used by services to publish events.
type Publisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
	Close() error
}

// Event is the envelope every LogiSynapse topic carries:
// {"event": "shipment.created", "payload": {...}}.
type Event struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

// KafkaProducer is a thin wrapper around a kafka writer implementing Publisher.
type KafkaProducer struct {
	writer Writer
	logger *zap.Logger
}

// NewKafkaProducer creates a real KafkaProducer that writes to the provided broker/topic.
func NewKafkaProducer(brokerURL, topic string, logger *zap.Logger) *KafkaProducer {
	w := &skafka.Writer{
		Addr:     skafka.TCP(brokerURL),
		Topic:    topic,
		Balancer: &skafka.LeastBytes{}, // spread messages across partitions
	}
	return NewKafkaProducerWithWriter(w, logger)
}

// NewKafkaProducerWithWriter allows injecting a test writer.
func NewKafkaProducerWithWriter(w Writer, logger *zap.Logger) *KafkaProducer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KafkaProducer{writer: w, logger: logger}
}

// Publish marshals the value to JSON and writes a kafka message with the given key.
// The key keeps every event for one entity on the same partition.
func (p *KafkaProducer) Publish(ctx context.Context, key string, value interface{}) error {
	b, err := json.Marshal(value)
	if err != nil {
		p.logger.Error("failed to marshal kafka value", zap.Error(err))
		return fmt.Errorf("marshal kafka value: %w", err)
	}
	msg := skafka.Message{Key: []byte(key), Value: b}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("kafka write error", zap.String("key", key), zap.Error(err))
		return err
	}
	p.logger.Debug("kafka published", zap.String("key", key), zap.Int("bytes", len(b)))
	return nil
}

// Close closes the underlying writer.
func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}
