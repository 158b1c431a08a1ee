package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/iamprecieee/distributed-notification-system/internal/auth"
	"github.com/iamprecieee/distributed-notification-system/internal/breaker"
	"github.com/iamprecieee/distributed-notification-system/internal/broker"
	"github.com/iamprecieee/distributed-notification-system/internal/cache"
	"github.com/iamprecieee/distributed-notification-system/internal/config"
	"github.com/iamprecieee/distributed-notification-system/internal/gateway"
	"github.com/iamprecieee/distributed-notification-system/internal/health"
	"github.com/iamprecieee/distributed-notification-system/internal/logger"
	"github.com/iamprecieee/distributed-notification-system/internal/models"
	"github.com/iamprecieee/distributed-notification-system/internal/repository"
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

	log, err := logger.New("gateway", cfg.Env)
	if err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer log.Sync()

	shutdownTracer := tracing.InitTracer(context.Background(), "gateway", cfg.OtelExporterEndpoint, log)
	defer shutdownTracer()

	db, err := database.InitDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.MigrateDB(db, &models.User{}, &models.Template{}, &models.AuditLog{}); err != nil {
		log.Fatal("failed to migrate database", zap.Error(err))
	}

	cacheClient := cache.New(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
	defer cacheClient.Close()

	producer, err := broker.NewProducer(cfg.RabbitMQURL)
	if err != nil {
		log.Fatal("failed to connect to broker", zap.Error(err))
	}
	defer producer.Close()

	b := breaker.New(cacheClient, breaker.Config{
		FailureThreshold: cfg.CircuitBreakerThreshold,
		Timeout:          cfg.CircuitBreakerResetTimeout,
		SuccessThreshold: cfg.CircuitBreakerSuccessThresh,
	})

	users := repository.NewUserRepository(db)
	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.JWTExpiration, cfg.RefreshTTL)
	authStore := auth.NewStore(cacheClient)
	authSvc := auth.NewService(users, authStore, issuer)

	handler := gateway.NewHandler(cacheClient, producer, users, authSvc, log)
	authHandler := gateway.NewAuthHandler(authSvc, cfg.JWTExpiration)
	aggregator := health.NewAggregator(db, cacheClient, cfg.RabbitMQURL, b)
	healthHandler := gateway.NewHealthHandler(aggregator)

	metrics.InitAPIMetrics()
	router := gateway.NewRouter(handler, authHandler, healthHandler, authSvc)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info("gateway listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("gateway server failed", zap.Error(err))
		}
	}()

	waitForShutdown(srv, log)
}

func waitForShutdown(srv *http.Server, log *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutdown signal received", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
