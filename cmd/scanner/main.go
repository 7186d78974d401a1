package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"careminder/internal/api"
	"careminder/internal/config"
	"careminder/internal/dedup"
	"careminder/internal/httpserver"
	"careminder/internal/records"
	"careminder/internal/repository"
	"careminder/internal/scanner"
	"careminder/internal/sink"
	"careminder/internal/window"
	"careminder/pkg/db"
	"careminder/pkg/logger"
	"careminder/pkg/mq"
	"careminder/pkg/redis"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting reminder scanner...",
		zap.String("db_host", cfg.DB.Host),
		zap.Int("db_port", cfg.DB.Port),
		zap.String("redis_addr", cfg.Redis.Addr),
		zap.String("records_url", cfg.Records.BaseURL),
		zap.Duration("interval", cfg.Scanner.Interval()),
	)

	// DB (notification store)
	log.Info("Initializing database connection...")
	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to init DB", zap.Error(err))
	}
	defer dbConn.Close()

	// Redis (dedup store)
	rdb := redis.NewClient(cfg.Redis)
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 2*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Fatal("Redis connection failed", zap.Error(err))
	}
	pingCancel()
	defer rdb.Close()
	log.Info("Redis connection established successfully")

	// MQ Publisher (delivery sink)
	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("Failed to init MQ publisher", zap.Error(err))
	}
	defer publisher.Close()

	// Stores and collaborators
	notificationRepo := repository.NewNotificationRepository(dbConn, log)
	dedupStore := dedup.NewStore(rdb, cfg.Scanner.DedupTTL(), log)
	recordsClient := records.NewClient(cfg.Records.BaseURL, cfg.Records.Timeout())

	deliverySink := sink.NewMultiSink(
		sink.NewLogSink(log),
		sink.NewMQSink(publisher, log),
	)

	matcher := window.NewMatcher(
		cfg.Scanner.MedicationWindow(),
		cfg.Scanner.AppointmentWindow(),
	)

	// Reminder scanner - runs every tick interval
	log.Info("Starting reminder scanner loop...",
		zap.Duration("interval", cfg.Scanner.Interval()),
	)
	scanCtx, scanCancel := context.WithCancel(context.Background())
	defer scanCancel()

	reminderScanner := scanner.NewScanner(
		recordsClient,
		dedupStore,
		notificationRepo,
		deliverySink,
		matcher,
		cfg.Scanner.Interval(),
		log,
	)
	go reminderScanner.Run(scanCtx)

	// HTTP Server (notification API + health + metrics)
	port := cfg.Server.Port
	if port == "" {
		port = "8086"
	}
	log.Info("Initializing HTTP server...", zap.String("port", port))

	notificationHandler := api.NewNotificationHandler(notificationRepo, deliverySink, log)
	router := httpserver.NewRouter(log, dbConn, rdb, notificationHandler, cfg.JWT.Secret)
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router.Engine,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	log.Info("reminder scanner is fully initialized and running")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down reminder scanner gracefully...")

	scanCancel()

	log.Info("Shutting down HTTP server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}

	publisher.Close()
	dbConn.Close()

	log.Info("reminder scanner shutdown complete")
}
