package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/iamprecieee/distributed-notification-system/internal/breaker"
	"github.com/iamprecieee/distributed-notification-system/internal/broker"
	"github.com/iamprecieee/distributed-notification-system/internal/cache"
	"github.com/iamprecieee/distributed-notification-system/internal/config"
	"github.com/iamprecieee/distributed-notification-system/internal/logger"
	"github.com/iamprecieee/distributed-notification-system/internal/models"
	"github.com/iamprecieee/distributed-notification-system/internal/repository"
	"github.com/iamprecieee/distributed-notification-system/internal/template"
	"github.com/iamprecieee/distributed-notification-system/internal/transport/push"
	"github.com/iamprecieee/distributed-notification-system/internal/worker"
	"github.com/iamprecieee/distributed-notification-system/metrics"
	"github.com/iamprecieee/distributed-notification-system/pkg/database"
	"github.com/iamprecieee/distributed-notification-system/tracing"
)

func main() {
	if err := godotenv.Load(); err != nil {
		os.Stderr.WriteString("no .env file found, using system env\n")
	}

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log, err := logger.New("push-worker", cfg.Env)
	if err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer log.Sync()

	shutdownTracer := tracing.InitTracer(context.Background(), "push-worker", cfg.OtelExporterEndpoint, log)
	defer shutdownTracer()

	db, err := database.InitDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.MigrateDB(db, &models.Template{}, &models.AuditLog{}); err != nil {
		log.Fatal("failed to migrate database", zap.Error(err))
	}

	cacheClient := cache.New(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
	defer cacheClient.Close()

	producer, err := broker.NewProducer(cfg.RabbitMQURL)
	if err != nil {
		log.Fatal("failed to connect to broker", zap.Error(err))
	}
	defer producer.Close()

	consumer, err := broker.NewConsumer(cfg.RabbitMQURL, broker.PushQueue, cfg.WorkerPrefetch)
	if err != nil {
		log.Fatal("failed to start consumer", zap.Error(err))
	}
	defer consumer.Close()

	b := breaker.New(cacheClient, breaker.Config{
		FailureThreshold: cfg.CircuitBreakerThreshold,
		Timeout:          cfg.CircuitBreakerResetTimeout,
		SuccessThreshold: cfg.CircuitBreakerSuccessThresh,
	})

	resolver := template.NewResolver(cacheClient, b, repository.NewTemplateRepository(db), log)
	audit := repository.NewAuditRepository(db)
	pushTransport := worker.NewPushTransport(push.NewClient(cfg.FCMServerKey))

	metrics.InitWorkerMetrics()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for i := 0; i < cfg.WorkerPrefetch; i++ {
		rt := worker.NewRuntime(consumer, producer, cacheClient, b, resolver, audit, pushTransport, "push", log)
		go rt.Run(ctx)
	}

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		log.Info("push worker metrics listening", zap.String("port", cfg.Port))
		if err := http.ListenAndServe(":"+cfg.Port, mux); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutdown signal received", zap.String("signal", sig.String()))
	cancel()
}
