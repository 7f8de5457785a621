package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ms-admission/internal/analytics"
	analytics_api "ms-admission/internal/analytics/api"
	"ms-admission/internal/auth"
	"ms-admission/internal/config"
	"ms-admission/internal/database"
	"ms-admission/internal/database/migrations"
	"ms-admission/internal/events"
	"ms-admission/internal/events/event_api"
	"ms-admission/internal/kafka"
	"ms-admission/internal/logger"
	"ms-admission/internal/metrics"
	"ms-admission/internal/redemption"
	"ms-admission/internal/tickets/idempotency"
	tickets "ms-admission/internal/tickets/service"
	"ms-admission/internal/tickets/ticket_api"
	"ms-admission/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/bun"
)

func connectRedis(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{Addr: cfg.Addr})
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal("REDIS", fmt.Sprintf("Redis connection error: %v", err))
	}
	log.Info("REDIS", fmt.Sprintf("Redis connection successful to %s (DB: %d)", cfg.Addr, client.Options().DB))
	return client
}

func runMigrations(bunDB *bun.DB, log *logger.Logger) {
	runner := migrations.NewRunner(bunDB, log)
	if err := runner.MigrateUp(); err != nil {
		log.Fatal("MIGRATE", fmt.Sprintf("Failed to apply migrations: %v", err))
	}
	log.Info("MIGRATE", "Schema is up to date")
}

func health(bunDB *bun.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := bunDB.PingContext(ctx); err != nil {
			utils.WriteJSON(w, http.StatusServiceUnavailable, utils.ErrorResponse("database unavailable", err.Error()))
			return
		}
		utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("ok", nil))
	}
}

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	log := logger.New(logger.Options{Dir: cfg.Logging.Dir, Service: cfg.Logging.Service})
	defer log.Close()

	log.Info("APP", "Starting admission service initialization")

	if cfg.Auth.JWTSecret == "" {
		log.Fatal("CONFIG", "JWT_SECRET not set")
	}

	ctx := context.Background()

	bunDB, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("DATABASE", err.Error())
	}
	defer bunDB.Close()

	if cfg.Database.AutoMigrate {
		runMigrations(bunDB, log)
	}

	txOpts := database.TxOptions{LockTimeout: cfg.Database.LockTimeout, Timeout: cfg.Database.TxTimeout}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	ticketService := tickets.NewTicketService(bunDB, tickets.NewIssuer(cfg.Purchase.MaxPerPurchase), txOpts, log)
	ticketService.Metrics = m
	gate := redemption.NewGate(bunDB, txOpts, log)
	gate.Metrics = m

	if cfg.Redis.Enabled {
		redisClient := connectRedis(ctx, cfg.Redis, log)
		defer redisClient.Close()
		ticketService.Replays = idempotency.NewStore(redisClient, cfg.Redis.IdempotencyTTL)
		log.Info("REDIS", "Idempotency-Key replay enabled for purchases")
	}

	if cfg.Kafka.Enabled {
		topics := []string{cfg.Kafka.Topics.TicketsPurchased, cfg.Kafka.Topics.TicketRedeemed}
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, topics, log); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		}
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics, log)
		defer producer.Close()
		ticketService.Publisher = producer
		gate.Publisher = producer
		log.Info("KAFKA", "Kafka producer initialized successfully")
	}

	eventService := events.NewService(bunDB, txOpts, log)
	analyticsService := analytics.NewService(bunDB)

	authMW := auth.Middleware(auth.NewVerifier(cfg.Auth.JWTSecret), log)

	log.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()
	r.Use(log.Middleware)

	r.Get("/health", health(bunDB))
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		log.Info("ROUTER", fmt.Sprintf("Metrics exposed at %s", cfg.Metrics.Path))
	}

	ticket_api.NewHandler(ticketService, gate, log).RegisterRoutes(r, authMW)
	event_api.NewHandler(eventService, log).RegisterRoutes(r, authMW)
	analytics_api.NewHandler(analyticsService, log).RegisterRoutes(r, authMW)
	log.Info("ROUTER", "Purchase, redemption, event and stats routes registered under /api")

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("Admission service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		log.Info("HTTP", "Admission service shutdown complete")
	}
}
