// cmd/main.go in shipment-service
package main

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	grpcServer "github.com/solushipx/logisynapse/services/shipment-service/handler/grpc"
	"github.com/solushipx/logisynapse/services/shipment-service/service"
	"github.com/solushipx/logisynapse/services/shipment-service/store"
	"github.com/solushipx/logisynapse/shared/config"
	_ "github.com/solushipx/logisynapse/shared/grpcjson"
	"github.com/solushipx/logisynapse/shared/identity"
	"github.com/solushipx/logisynapse/shared/kafka"
	"github.com/solushipx/logisynapse/shared/logging"
)

// main wires the document store, the Kafka producer and the gRPC server.
func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger, err := logging.New(cfg.LOG_LEVEL, "shipment-service")
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shipmentStore, err := store.Open(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to create store", zap.Error(err))
	}
	defer shipmentStore.Close()

	var producer kafka.Publisher
	if cfg.KafkaEnabled() && cfg.KAFKA_TOPIC != "" {
		producer = kafka.NewKafkaProducer(cfg.KAFKA_BROKER, cfg.KAFKA_TOPIC, logger)
		defer producer.Close()
	} else {
		logger.Warn("kafka not configured, shipment events disabled")
	}

	verifier, err := identity.LoadKeyVerifier(cfg.API_KEYS_FILE)
	if err != nil {
		logger.Fatal("failed to load api keys", zap.Error(err))
	}

	svc := service.NewShipmentService(shipmentStore, producer, logger)

	// GRPC_ADDR from the shared config defaults to the match service port
	addr := ":50051"
	if v := os.Getenv("GRPC_ADDR"); v != "" {
		addr = v
	}
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Fatal("failed to listen", zap.String("addr", addr), zap.Error(err))
	}

	s := grpc.NewServer(grpc.UnaryInterceptor(identity.UnaryServerInterceptor(verifier, logger)))
	grpcServer.RegisterShipmentServiceServer(s, grpcServer.NewShipmentServer(svc, logger))

	go func() {
		<-ctx.Done()
		logger.Info("shutting down gRPC server")
		s.GracefulStop()
	}()

	logger.Info("gRPC server running", zap.String("addr", addr))
	if err := s.Serve(lis); err != nil {
		logger.Fatal("failed to serve", zap.Error(err))
	}
}
