package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/sergiohdezchi/order-processing-service/internal/application/service"
	"github.com/sergiohdezchi/order-processing-service/internal/cache"
	"github.com/sergiohdezchi/order-processing-service/internal/config"
	"github.com/sergiohdezchi/order-processing-service/internal/events"
	"github.com/sergiohdezchi/order-processing-service/internal/grpcapi"
	"github.com/sergiohdezchi/order-processing-service/internal/httpapi"
	"github.com/sergiohdezchi/order-processing-service/internal/infrastructure/postgres"
	"github.com/sergiohdezchi/order-processing-service/internal/intake"
	"github.com/sergiohdezchi/order-processing-service/internal/notification"
	"github.com/sergiohdezchi/order-processing-service/internal/observability"
	"github.com/sergiohdezchi/order-processing-service/internal/pkg/breaker"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	cfg := config.Load()

	metrics := observability.NewPrometheus(prometheus.DefaultRegisterer)

	if err := postgres.Migrate(cfg.DSN()); err != nil {
		logger.Fatal("migrations failed", zap.Error(err))
	}

	bootCtx, bootCancel := context.WithTimeout(context.Background(), time.Minute)
	pool, err := postgres.Connect(bootCtx, cfg.DSN(), cfg.Retry, logger)
	bootCancel()
	if err != nil {
		logger.Fatal("database is unreachable", zap.Error(err))
	}
	defer pool.Close()

	repo := postgres.NewOrderRepository(pool, cfg.Pg.Schema)

	orderCache, err := cache.New(cfg.CacheCap)
	if err != nil {
		logger.Fatal("cache init failed", zap.Error(err))
	}

	store := service.NewService(repo, orderCache, logger, metrics)

	gateway := notification.NewGateway(
		cfg.Smpp,
		notification.NewSmppBinder(cfg.SmppAddr(), cfg.Smpp),
		logger,
		metrics,
	)
	gateway.Connect()

	var publisher *events.Publisher
	var actorEvents intake.Events
	if len(cfg.Kafka.Brokers) > 0 {
		topicCtx, topicCancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := events.EnsureTopic(topicCtx, cfg.Kafka, 3, 1, logger); err != nil {
			logger.Warn("kafka topic bootstrap failed, events disabled", zap.Error(err))
		} else {
			publisher = events.NewPublisher(
				events.NewWriter(cfg.Kafka),
				breaker.New(cfg.Breaker),
				logger,
				metrics,
			)
			actorEvents = publisher
		}
		topicCancel()
	}

	actor := intake.NewActor(store, gateway, actorEvents, logger)
	actor.Start()
	dispatcher := intake.NewDispatcher(actor, logger)

	grpcServer := grpcapi.NewServer(dispatcher, logger)
	grpcLis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		logger.Fatal("grpc listen failed", zap.String("addr", cfg.GRPCAddr), zap.Error(err))
	}
	go func() {
		if err := grpcServer.Serve(grpcLis); err != nil {
			logger.Error("grpc server stopped", zap.Error(err))
		}
	}()

	httpServer := httpapi.New(store, logger, metrics, observability.Handler())
	httpCtx, httpCancel := context.WithCancel(context.Background())
	go func() {
		if err := httpServer.ListenAndServe(httpCtx, cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	// Intake first: stop taking new orders, then drain what was accepted,
	// then release the outbound resources the drained work used.
	grpcServer.GracefulStop()
	actor.Stop()
	httpCancel()
	gateway.Close()
	if publisher != nil {
		publisher.Close()
	}

	logger.Info("stopped")
}
