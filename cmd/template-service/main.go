package main

import (
	"context"
	"net/http"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
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
	"github.com/iamprecieee/distributed-notification-system/metrics"
	"github.com/iamprecieee/distributed-notification-system/middlewares"
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

	log, err := logger.New("template-service", cfg.Env)
	if err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer log.Sync()

	shutdownTracer := tracing.InitTracer(context.Background(), "template-service", cfg.OtelExporterEndpoint, log)
	defer shutdownTracer()

	db, err := database.InitDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.MigrateDB(db, &models.Template{}); err != nil {
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

	repo := repository.NewTemplateRepository(db)
	resolver := template.NewResolver(cacheClient, b, repo, log)
	catalog := template.NewCatalog(repo, cacheClient, producer, log)
	handler := template.NewHandler(catalog, resolver, repo)

	metrics.InitAPIMetrics()
	router := gin.New()
	router.Use(gin.Recovery(), cors.Default(), middlewares.GinMetricsMiddleware())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"success": true}) })

	template.Routes(router, handler)

	log.Info("template service listening", zap.String("port", cfg.Port))
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("template service failed", zap.Error(err))
	}
}
