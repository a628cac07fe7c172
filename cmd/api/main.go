package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"tableease/internal/config"
	"tableease/internal/db"
	"tableease/internal/handler"
	"tableease/internal/httpserver"
	"tableease/internal/repository"
	"tableease/internal/service/auth"
	"tableease/internal/service/booking"
	"tableease/pkg/logger"
	"tableease/pkg/mq"
	"tableease/pkg/outbox"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting api...",
		zap.String("db_host", cfg.DB.Host),
		zap.Int("db_port", cfg.DB.Port),
		zap.String("port", cfg.Server.Port),
	)

	// DB
	log.Info("Initializing database connection...")
	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to init DB", zap.Error(err))
	}
	defer dbConn.Close()
	log.Info("Database connection established successfully")

	// MQ Publisher for the outbox dispatcher
	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("Failed to init MQ publisher", zap.Error(err))
	}
	defer publisher.Close()

	// Repositories
	userRepo := repository.NewUserRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn, log)
	restaurantRepo := repository.NewRestaurantRepository(dbConn)
	offerRepo := repository.NewOfferRepository(dbConn)
	bookingRepo := repository.NewBookingRepository(dbConn)
	statsRepo := repository.NewStatsRepository(dbConn)
	outboxRepo := outbox.NewRepository(dbConn)

	// Services
	authService := auth.NewService(userRepo, cfg.JWT.Secret)
	bookingService := booking.NewService(dbConn, bookingRepo, restaurantRepo, log)
	replayService := outbox.NewReplayService(outboxRepo, publisher)

	// Outbox dispatcher
	dispatcherCtx, dispatcherCancel := context.WithCancel(context.Background())
	defer dispatcherCancel()
	dispatcher := outbox.NewDispatcher(outboxRepo, publisher, log).
		WithInterval(1 * time.Second).
		WithBatchSize(100)
	go dispatcher.Start(dispatcherCtx)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	notificationHandler := handler.NewNotificationHandler(notificationRepo, log)
	restaurantHandler := handler.NewRestaurantHandler(restaurantRepo)
	offerHandler := handler.NewOfferHandler(offerRepo, restaurantRepo)
	bookingHandler := handler.NewBookingHandler(bookingService, bookingRepo, restaurantRepo)
	adminHandler := handler.NewAdminHandler(statsRepo, userRepo, replayService, log)

	router := httpserver.NewRouter(
		authHandler,
		notificationHandler,
		restaurantHandler,
		offerHandler,
		bookingHandler,
		adminHandler,
		cfg.JWT.Secret,
		dbConn,
	)

	corsWrapper := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:    cfg.Server.Port,
		Handler: corsWrapper.Handler(router.Engine),
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Metrics endpoint on its own listener
	metricsSrv := &http.Server{
		Addr:    cfg.Server.MetricsPort,
		Handler: promhttp.Handler(),
	}
	go func() {
		log.Info("Metrics server starting", zap.String("addr", cfg.Server.MetricsPort))
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Metrics server failed", zap.Error(err))
		}
	}()

	log.Info("api is fully initialized and running")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down api gracefully...")

	dispatcherCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("Metrics server shutdown error", zap.Error(err))
	}

	publisher.Close()
	dbConn.Close()

	log.Info("api shutdown complete")
}
