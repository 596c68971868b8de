package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alpha-og/railway-reservation-system-sub001/internal/adapter/handler"
	"github.com/alpha-og/railway-reservation-system-sub001/internal/adapter/lease"
	"github.com/alpha-og/railway-reservation-system-sub001/internal/adapter/messaging"
	"github.com/alpha-og/railway-reservation-system-sub001/internal/adapter/repository/postgres"
	"github.com/alpha-og/railway-reservation-system-sub001/internal/core/ports"
	"github.com/alpha-og/railway-reservation-system-sub001/internal/core/services"
	"github.com/alpha-og/railway-reservation-system-sub001/internal/platform/config"
	"github.com/alpha-og/railway-reservation-system-sub001/internal/platform/database"
	"github.com/alpha-og/railway-reservation-system-sub001/internal/platform/logger"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "json").WithError(err).Fatal("invalid configuration")
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	db, err := database.NewPostgresDB(database.Config{
		Host:       cfg.DBHost,
		Port:       cfg.DBPort,
		User:       cfg.DBUser,
		Password:   cfg.DBPassword,
		DBName:     cfg.DBName,
		MaxRetries: cfg.DBMaxRetries,
	}, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to db after retries")
	}
	defer db.Close()

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Migrate(migrateCtx, db); err != nil {
		cancelMigrate()
		log.WithError(err).Fatal("failed to migrate database")
	}
	cancelMigrate()

	log.Infof("Connecting to Redis at %s...", cfg.RedisAddr)
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()

	var sweepLease ports.Lease
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.WithError(err).Warn("Redis unavailable, expiry sweeper runs without a lease")
	} else {
		log.Info("Redis connected successfully")
		sweepLease = lease.NewRedisLease(redisClient, lease.SweeperKey)
	}

	var publisher ports.EventPublisher = messaging.NopPublisher{}
	if cfg.RabbitMQURL != "" {
		rabbit := messaging.NewRabbitPublisher(messaging.AMQPDialer(cfg.RabbitMQURL), log)
		defer rabbit.Close()
		publisher = rabbit
	}

	bookingRepo := postgres.NewBookingRepository(db)
	routeRepo := postgres.NewRouteRepository(db)
	availabilityRepo := postgres.NewAvailabilityRepository(db)

	bookingService := services.NewBookingService(bookingRepo, routeRepo, publisher, log)
	fareService := services.NewFareService(routeRepo)
	availabilityService := services.NewAvailabilityService(availabilityRepo)

	sweeper := services.NewExpirySweeper(bookingRepo, publisher, sweepLease, log, services.SweeperConfig{
		Threshold: cfg.SweepThreshold,
		BatchSize: cfg.SweepBatchSize,
		LeaseTTL:  cfg.SweepLeaseTTL,
	})
	if err := sweeper.Start(cfg.SweepInterval); err != nil {
		log.WithError(err).Fatal("failed to start expiry sweeper")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(handler.RequestLogger(log))
	handler.RegisterRoutes(e,
		handler.NewBookingHandler(bookingService, log),
		handler.NewFareHandler(fareService, log),
		handler.NewAvailabilityHandler(availabilityService, log),
	)

	e.Server.ReadTimeout = 5 * time.Second
	e.Server.WriteTimeout = 10 * time.Second
	e.Server.IdleTimeout = 120 * time.Second

	go func() {
		log.Infof("Server starting on port :%s", cfg.Port)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server startup failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Shutting down server...")

	sweeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}

	log.Info("Server exiting")
}
