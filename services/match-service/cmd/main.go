// cmd/main.go in match-service
package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	grpcServer "github.com/solushipx/logisynapse/services/match-service/handler/grpc"
	httpHandler "github.com/solushipx/logisynapse/services/match-service/handler/http"
	"github.com/solushipx/logisynapse/services/match-service/internal/history"
	"github.com/solushipx/logisynapse/services/match-service/matcher"
	"github.com/solushipx/logisynapse/services/shipment-service/store"
	"github.com/solushipx/logisynapse/shared/config"
	_ "github.com/solushipx/logisynapse/shared/grpcjson"
	"github.com/solushipx/logisynapse/shared/identity"
	"github.com/solushipx/logisynapse/shared/kafka"
	"github.com/solushipx/logisynapse/shared/logging"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger, err := logging.New(cfg.LOG_LEVEL, "match-service")
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shipmentStore, err := store.Open(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to open shipment store", zap.Error(err))
	}
	defer shipmentStore.Close()

	var recorder matcher.HistoryRecorder
	if cfg.REDIS_ADDR != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.REDIS_ADDR,
			Password: cfg.REDIS_PASSWORD,
			DB:       cfg.REDIS_DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			// history is best effort; searches work without it
			logger.Warn("redis unreachable, recent searches may fail", zap.String("addr", cfg.REDIS_ADDR), zap.Error(err))
		}
		recorder = history.New(rdb, 30*24*time.Hour)
	}

	var events kafka.Publisher
	if cfg.KafkaEnabled() {
		events = kafka.NewKafkaProducer(cfg.KAFKA_BROKER, cfg.KAFKA_SEARCH_TOPIC, logger)
		defer events.Close()
	} else {
		logger.Warn("kafka not configured, search events disabled")
	}

	verifier, err := identity.LoadKeyVerifier(cfg.API_KEYS_FILE)
	if err != nil {
		logger.Fatal("failed to load api keys", zap.Error(err))
	}

	m := matcher.New(shipmentStore, matcher.Options{
		Timeout:     cfg.SEARCH_TIMEOUT,
		Concurrency: cfg.SEARCH_CONCURRENCY,
	}, events, recorder, logger)

	lis, err := net.Listen("tcp", cfg.GRPC_ADDR)
	if err != nil {
		logger.Fatal("failed to listen", zap.String("addr", cfg.GRPC_ADDR), zap.Error(err))
	}
	gs := grpc.NewServer(grpc.UnaryInterceptor(identity.UnaryServerInterceptor(verifier, logger)))
	grpcServer.RegisterMatchServiceServer(gs, grpcServer.NewMatchServer(m, logger))

	hs := &http.Server{
		Addr:              cfg.HTTP_ADDR,
		Handler:           httpHandler.New(m, logger).Routes(verifier),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("gRPC server running", zap.String("addr", cfg.GRPC_ADDR))
		return gs.Serve(lis)
	})
	g.Go(func() error {
		logger.Info("HTTP server running", zap.String("addr", cfg.HTTP_ADDR))
		if err := hs.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		gs.GracefulStop()
		return hs.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("match-service stopped", zap.Error(err))
	}
}
