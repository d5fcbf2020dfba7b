package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// QueuePublisher is what producers of background jobs depend on.
type QueuePublisher interface {
	Publish(ctx context.Context, queueName string, body []byte) error
}

type RabbitmqClient struct {
	//conn is a tcp connection to rabbitmq server
	conn *amqp.Connection
	chn  *amqp.Channel
}

func NewClient(url string) (*RabbitmqClient, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial rabbitmq: %w", err)
	}
	// a channel is a logical session inside the connection
	chn, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	return &RabbitmqClient{
		conn: conn,
		chn:  chn,
	}, nil
}

// Close cleans up the channel, then the connection.
func (r *RabbitmqClient) Close() error {
	if err := r.chn.Close(); err != nil {
		return err
	}
	return r.conn.Close()
}

// CreateQueue declares a durable queue.
func (r *RabbitmqClient) CreateQueue(queueName string) error {
	_, err := r.chn.QueueDeclare(
		queueName, //name of queue
		true,      //durable
		false,     //delete when unused
		false,     //exclusive
		false,     //no-wait
		nil,       //arguments
	)
	return err
}

// Publish sends a persistent JSON message to a specific queue.
func (r *RabbitmqClient) Publish(ctx context.Context, queueName string, body []byte) error {
	return r.chn.PublishWithContext(
		ctx,
		"",        //exchange
		queueName, //routing key (queue name)
		false,     //mandatory
		false,     //immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

// PublishJSON marshals v and publishes it on queueName.
func PublishJSON(ctx context.Context, p QueuePublisher, queueName string, v interface{}) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal job for %s: %w", queueName, err)
	}
	return p.Publish(ctx, queueName, body)
}

// Consume starts listening on a queue with manual acks.
// It returns a read only channel that delivers messages as they arrive.
func (r *RabbitmqClient) Consume(queueName string) (<-chan amqp.Delivery, error) {
	msgs, err := r.chn.Consume(
		queueName, //queue
		"",        //consumer
		false,     //auto-ack
		false,     //exclusive
		false,     //no-local
		false,     //no-wait
		nil,       //args
	)
	if err != nil {
		return nil, err
	}
	return msgs, nil
}
