package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	mqcontracts "tableease/contracts/mq"
	"tableease/internal/config"
	"tableease/internal/db"
	"tableease/internal/mqhandler"
	"tableease/internal/push"
	internalredis "tableease/internal/redis"
	"tableease/internal/repository"
	"tableease/pkg/logger"
	"tableease/pkg/mq"
	"tableease/pkg/util"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting notifier...",
		zap.String("db_host", cfg.DB.Host),
		zap.String("mq_url", cfg.MQ.URL),
		zap.String("redis_addr", cfg.Redis.Addr),
	)

	// DB
	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to init DB", zap.Error(err))
	}
	defer dbConn.Close()

	// Redis for dedup, retry counters and live push
	rdb := internalredis.NewClient(cfg.Redis)
	defer rdb.Close()

	// MQ Publisher (DLQ routing)
	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("Failed to init MQ publisher", zap.Error(err))
	}
	defer publisher.Close()

	notificationRepo := repository.NewNotificationRepository(dbConn, log)
	pushPub := push.NewPublisher(rdb, log)
	deduper := util.NewDeduper(rdb, 24*time.Hour, log)
	retryCounter := util.NewRetryCounter(rdb, 1*time.Hour)

	handler := mqhandler.NewBookingConfirmedHandler(
		notificationRepo, pushPub, deduper, retryCounter, publisher, log)

	log.Info("Initializing MQ consumer for booking.confirmed...",
		zap.String("queue", "booking.confirmed.q"),
		zap.String("routing_key", mqcontracts.RoutingKeyBookingConfirmed),
	)
	consumer, err := mq.NewConsumer(cfg.MQ.URL, "booking.confirmed.q", mqcontracts.RoutingKeyBookingConfirmed, log)
	if err != nil {
		log.Fatal("Failed to init consumer", zap.Error(err))
	}
	defer consumer.Close()

	consumer.SetHandler(handler.Handle)

	go func() {
		log.Info("Starting booking.confirmed consumer...")
		if err := consumer.StartConsuming(); err != nil {
			log.Fatal("Booking consumer failed", zap.Error(err))
		}
	}()

	// HTTP server for health checks only
	r := gin.Default()
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c, 1*time.Second)
		defer cancel()
		if err := dbConn.Ping(ctx); err != nil {
			c.JSON(500, gin.H{"status": "db_not_ready", "error": err.Error()})
			return
		}
		c.JSON(200, gin.H{"status": "ready"})
	})

	srv := &http.Server{
		Addr:    ":8081",
		Handler: r,
	}
	go func() {
		log.Info("HTTP server starting on :8081")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	log.Info("notifier is fully initialized and running")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down notifier gracefully...")

	consumer.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	}

	publisher.Close()
	rdb.Close()
	dbConn.Close()

	log.Info("notifier shutdown complete")
}
