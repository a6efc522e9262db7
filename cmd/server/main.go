package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hostelhub/service-booking/internal/application"
	"github.com/hostelhub/service-booking/internal/cache"
	"github.com/hostelhub/service-booking/internal/config"
	bookingDomain "github.com/hostelhub/service-booking/internal/domain/booking"
	bookingEvents "github.com/hostelhub/service-booking/internal/events"
	"github.com/hostelhub/service-booking/internal/handler"
	"github.com/hostelhub/service-booking/internal/metrics"
	"github.com/hostelhub/service-booking/internal/repository"
	"github.com/hostelhub/service-booking/pkg/auth"
	"github.com/hostelhub/service-booking/pkg/database"
	"github.com/hostelhub/service-booking/pkg/health"
	"github.com/hostelhub/service-booking/pkg/kafka"
	"github.com/hostelhub/service-booking/pkg/logger"
	"github.com/hostelhub/service-booking/pkg/middleware"
	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const serviceName = "service-booking"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-booking",
		zap.String("port", cfg.Port),
		zap.String("env", cfg.AppEnv),
	)

	// Connect to database
	dbConfig := database.PostgresConfig{
		Host:     cfg.DBConfig.Host,
		Port:     cfg.DBConfig.Port,
		User:     cfg.DBConfig.User,
		Password: cfg.DBConfig.Password,
		DBName:   cfg.DBConfig.DBName,
		SSLMode:  cfg.DBConfig.SSLMode,
	}
	db, err := database.Connect(dbConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if err := database.RunMigrations(dbConfig.DatabaseURL(), cfg.MigrationsPath, log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWTConfig.Secret,
		15*time.Minute,
		7*24*time.Hour,
	)

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Initialize metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics.Register(registry)

	// Initialize repositories
	store := repository.NewGormStore(db)
	uow := repository.NewGormUnitOfWork(db, cfg.LockTimeout)

	healthHandler := health.NewHandler(db, serviceName)

	// Stats cache is optional; without Redis every stats call hits the database.
	var statsCache application.StatsCache
	if cfg.RedisConfig.Addr != "" {
		redisClient := cache.NewRedisClient(cfg.RedisConfig)
		defer func() { _ = redisClient.Close() }()
		redisCache := cache.NewStatsCache(redisClient, cfg.StatsCacheTTL)
		healthHandler.AddChecker("redis", redisCache.Ping)
		statsCache = redisCache
	} else {
		log.Warn("REDIS_ADDR not set, stats cache disabled")
	}

	// Initialize application services
	bookingService := application.NewBookingService(
		store,
		uow,
		bookingDomain.NewMonthlyPricingStrategy(),
		kafkaProducer,
		log,
		application.WithStatsCache(statsCache),
	)
	statsService := application.NewStatsService(store, statsCache, nil, log)
	catalogService := application.NewCatalogService(uow, statsCache, log)

	// Initialize catalog event consumer
	catalogConsumer := bookingEvents.NewCatalogEventConsumer(
		cfg.KafkaConfig.Brokers,
		cfg.ConsumerGroup(),
		catalogService,
		log,
	)
	defer func() { _ = catalogConsumer.Close() }()

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins...))
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(metrics.GinMiddleware())

	// Register health check and metrics routes
	healthHandler.RegisterRoutes(router)
	router.GET(cfg.MetricsPath, gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// Register routes; the limiter runs inside each group, after auth
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	handler.NewBookingHandler(bookingService).RegisterRoutes(&router.RouterGroup, jwtManager, limiter)
	handler.NewStatsHandler(statsService).RegisterRoutes(&router.RouterGroup, jwtManager, limiter)

	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var g run.Group

	g.Add(func() error {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}, func(error) {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server forced shutdown", zap.Error(err))
		}
	})

	consumerCtx, cancelConsumer := context.WithCancel(context.Background())
	g.Add(func() error {
		log.Info("starting catalog event consumer", zap.String("group", cfg.ConsumerGroup()))
		err := catalogConsumer.Start(consumerCtx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}, func(error) {
		cancelConsumer()
	})

	g.Add(run.SignalHandler(context.Background(), syscall.SIGINT, syscall.SIGTERM))

	if err := g.Run(); err != nil {
		var sigErr run.SignalError
		if !errors.As(err, &sigErr) {
			log.Error("service-booking stopped with error", zap.Error(err))
			return
		}
		log.Info("received signal", zap.String("signal", sigErr.Signal.String()))
	}

	log.Info("service-booking stopped")
}
