//services/communications-service/cmd/main.go

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/solushipx/logisynapse/services/communications-service/internal/notify"
	"github.com/solushipx/logisynapse/shared/config"
	pkgkafka "github.com/solushipx/logisynapse/shared/kafka"
	"github.com/solushipx/logisynapse/shared/logging"
	pkgrabbit "github.com/solushipx/logisynapse/shared/rabbitmq"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger, err := logging.New(cfg.LOG_LEVEL, "communications-service")
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer logger.Sync()

	logger.Info("connecting to RabbitMQ", zap.String("host", cfg.RABBITMQ_HOST))
	rabbitClient, err := pkgrabbit.NewClient(cfg.GetRabbitMQURL())
	if err != nil {
		logger.Fatal("failed to connect to RabbitMQ", zap.Error(err))
	}
	//we do not defer Close() here: it must happen after the workers stop
	if err := rabbitClient.CreateQueue(notify.UnmatchedQueue); err != nil {
		logger.Fatal("failed to create queue", zap.String("queue", notify.UnmatchedQueue), zap.Error(err))
	}

	// search events tell us about manual searches that found nothing
	var kafkaConsumer *pkgkafka.Consumer
	if cfg.KafkaEnabled() && cfg.KAFKA_SEARCH_TOPIC != "" {
		logger.Info("connecting to Kafka", zap.String("broker", cfg.KAFKA_BROKER), zap.String("topic", cfg.KAFKA_SEARCH_TOPIC))
		kafkaConsumer = pkgkafka.NewConsumer(
			strings.Split(cfg.KAFKA_BROKER, ","),
			cfg.KAFKA_SEARCH_TOPIC,
			"communications-group",
			logger)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup

	msgs, err := rabbitClient.Consume(notify.UnmatchedQueue)
	if err != nil {
		logger.Fatal("failed to start consuming", zap.String("queue", notify.UnmatchedQueue), zap.Error(err))
	}
	notifier := notify.NewNotifier(logger)
	wg.Add(1)
	go func() {
		defer wg.Done()
		notify.Work(ctx, "unmatched", msgs, notifier.HandleUnmatched, logger)
	}()

	if kafkaConsumer != nil {
		bridge := notify.NewSearchBridge(rabbitClient, logger)
		wg.Add(1)
		go func() {
			defer wg.Done()
			kafkaConsumer.Start(ctx, bridge.Handle)
		}()
	}

	logger.Info("service running")
	<-ctx.Done()
	logger.Info("shutdown signal received, draining workers")

	//wait for workers to finish processing the current message
	wg.Wait()
	if err := rabbitClient.Close(); err != nil {
		logger.Error("failed to close RabbitMQ connection", zap.Error(err))
	}
	if kafkaConsumer != nil {
		kafkaConsumer.Close()
	}
	logger.Info("service shutdown complete")
}
