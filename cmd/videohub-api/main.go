package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/videohub/videohub-api/internal/app"
	"github.com/videohub/videohub-api/internal/config"
	"github.com/videohub/videohub-api/internal/db"
	"github.com/videohub/videohub-api/internal/kafka"
	"github.com/videohub/videohub-api/internal/repository"
	"github.com/videohub/videohub-api/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		// Логгер еще не создан
		panic("failed to load configuration: " + err.Error())
	}

	log := logger.New(cfg.App.LogLevel, cfg.App.Env)
	log.Infow("VideoHub API starting up", "env", cfg.App.Env, "version", app.Version)

	if cfg.Auth.JWTSecret == "" {
		log.Fatalw("Auth JWT secret is not configured")
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// База данных
	dbClient, err := db.NewDBClient(cfg.Database.DSN, log)
	if err != nil {
		log.Fatalw("Failed to connect to database", "error", err)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			log.Errorw("Error closing database connection", "error", err)
		}
	}()
	log.Infow("Database connection established")

	// Redis: кеш не критичен, без него просто медленнее
	cache, err := repository.NewRedisCacheRepository(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log)
	if err != nil {
		log.Warnw("Failed to initialize Redis cache, continuing without caching", "error", err)
		cache = nil
	} else {
		defer func() {
			if err := cache.Close(); err != nil {
				log.Errorw("Error closing Redis connection", "error", err)
			}
		}()
	}

	// Kafka: события не критичны для основного флоу
	producer, err := kafka.NewKafkaProducer(cfg.Kafka.Brokers, log)
	if err != nil {
		log.Warnw("Failed to initialize Kafka producer, continuing without event publishing", "error", err)
		producer = kafka.NopProducer{}
	} else {
		defer func() {
			if err := producer.Close(); err != nil {
				log.Errorw("Error closing Kafka producer", "error", err)
			}
		}()
	}

	application := app.NewApp(cfg, dbClient, cache, producer, log)

	application.SystemMetrics.StartRecording(15 * time.Second)
	defer application.SystemMetrics.Stop()

	go func() {
		if err := application.Server.Start(); err != nil {
			log.Fatalw("HTTP server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Infow("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := application.Server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("HTTP server shutdown error", "error", err)
	} else {
		log.Infow("HTTP server gracefully stopped")
	}
}
