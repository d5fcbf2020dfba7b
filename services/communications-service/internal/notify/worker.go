package notify

import (
	"context"
	"errors"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// JobHandler processes the body of one queued job.
type JobHandler func(ctx context.Context, body []byte) error

// Work drains deliveries until ctx is cancelled or the channel closes.
// A job is acked after it is processed, dropped when it is malformed and
// requeued on any other failure.
func Work(ctx context.Context, name string, deliveries <-chan amqp.Delivery, handle JobHandler, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("worker", name))
	logger.Info("worker started")

	for {
		select {
		//manager says stop
		case <-ctx.Done():
			logger.Info("received stop signal, shutting down")
			return
		case d, ok := <-deliveries:
			if !ok {
				logger.Warn("delivery channel closed")
				return
			}
			err := handle(ctx, d.Body)
			switch {
			case err == nil:
				if err := d.Ack(false); err != nil {
					logger.Error("failed to acknowledge job", zap.Uint64("tag", d.DeliveryTag), zap.Error(err))
				}
			case errors.Is(err, ErrMalformedJob):
				logger.Error("dropping malformed job", zap.Uint64("tag", d.DeliveryTag), zap.Error(err))
				if err := d.Nack(false, false); err != nil {
					logger.Error("failed to reject job", zap.Uint64("tag", d.DeliveryTag), zap.Error(err))
				}
			default:
				logger.Warn("job failed, requeueing", zap.Uint64("tag", d.DeliveryTag), zap.Error(err))
				if err := d.Nack(false, true); err != nil {
					logger.Error("failed to requeue job", zap.Uint64("tag", d.DeliveryTag), zap.Error(err))
				}
			}
		}
	}
}
