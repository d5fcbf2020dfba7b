// workflow-orchestrator/cmd/main.go

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.uber.org/zap"

	// 1. Local Imports (Workflow, Activities & the Kafka bridge)
	"github.com/solushipx/logisynapse/services/workflow-orchestrator/internal/activities"
	"github.com/solushipx/logisynapse/services/workflow-orchestrator/internal/bridge"
	"github.com/solushipx/logisynapse/services/workflow-orchestrator/internal/workflow"

	// 2. Shared Infrastructure Imports
	"github.com/solushipx/logisynapse/shared/config"
	pkgkafka "github.com/solushipx/logisynapse/shared/kafka"
	"github.com/solushipx/logisynapse/shared/logging"
	"github.com/solushipx/logisynapse/shared/rabbitmq"

	// 3. Domain Imports (Reusing the store and matcher)
	"github.com/solushipx/logisynapse/services/match-service/matcher"
	"github.com/solushipx/logisynapse/services/shipment-service/store"
)

func main() {
	// =========================================================================
	// 1. LOAD CONFIG
	// =========================================================================
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger, err := logging.New(cfg.LOG_LEVEL, "workflow-orchestrator")
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// =========================================================================
	// 2. SETUP DEPENDENCIES (DB & RABBITMQ)
	// =========================================================================
	shipmentStore, err := store.Open(ctx, cfg)
	if err != nil {
		logger.Fatal("worker failed to open shipment store", zap.Error(err))
	}
	defer shipmentStore.Close()

	// batch searches are not user searches: no history, no search events
	m := matcher.New(shipmentStore, matcher.Options{
		Timeout:     cfg.SEARCH_TIMEOUT,
		Concurrency: cfg.SEARCH_CONCURRENCY,
	}, nil, nil, logger)

	rmq, err := rabbitmq.NewClient(cfg.GetRabbitMQURL())
	if err != nil {
		logger.Fatal("failed to connect to rabbitmq", zap.Error(err))
	}
	defer rmq.Close()
	if err := rmq.CreateQueue(activities.UnmatchedQueue); err != nil {
		logger.Fatal("failed to declare queue", zap.String("queue", activities.UnmatchedQueue), zap.Error(err))
	}

	// =========================================================================
	// 3. SETUP TEMPORAL CLIENT
	// =========================================================================
	c, err := client.Dial(client.Options{
		HostPort: cfg.TEMPORAL_HOST_PORT,
	})
	if err != nil {
		logger.Fatal("unable to create Temporal client", zap.Error(err))
	}
	defer c.Close()
	logger.Info("worker connected to Temporal", zap.String("host", cfg.TEMPORAL_HOST_PORT))

	// =========================================================================
	// 4. REGISTER ACTIVITIES & WORKFLOWS
	// =========================================================================
	activityHost := &activities.ReconcileActivities{
		Searcher: m,
		Queue:    rmq,
	}

	w := worker.New(c, workflow.TaskQueue, worker.Options{})
	// Pass the function, do not call it
	w.RegisterWorkflow(workflow.BatchReconcileWorkflow)
	w.RegisterActivity(activityHost)

	if err := w.Start(); err != nil {
		logger.Fatal("unable to start worker", zap.Error(err))
	}
	defer w.Stop()
	logger.Info("worker started, pollers are running", zap.String("task_queue", workflow.TaskQueue))

	// =========================================================================
	// 5. START KAFKA BRIDGE
	// =========================================================================
	if !cfg.KafkaEnabled() {
		logger.Warn("kafka not configured, batches can only be started through Temporal")
		<-ctx.Done()
		return
	}
	consumer := pkgkafka.NewConsumer(strings.Split(cfg.KAFKA_BROKER, ","), cfg.KAFKA_RECONCILE_TOPIC, "workflow-orchestrator", logger)
	defer consumer.Close()

	logger.Info("listening for reconcile requests", zap.String("topic", cfg.KAFKA_RECONCILE_TOPIC))
	consumer.Start(ctx, bridge.New(c, logger).Handle)
	logger.Info("workflow-orchestrator stopped")
}
