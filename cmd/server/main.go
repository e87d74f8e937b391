package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appcollection "github.com/callbridge/backend/internal/application/collection"
	"github.com/callbridge/backend/internal/infrastructure/cache"
	"github.com/callbridge/backend/internal/infrastructure/config"
	"github.com/callbridge/backend/internal/infrastructure/logger"
	"github.com/callbridge/backend/internal/infrastructure/metrics"
	"github.com/callbridge/backend/internal/infrastructure/persistence"
	"github.com/callbridge/backend/internal/infrastructure/telemetry"
	"github.com/callbridge/backend/internal/interfaces/http/handler"
	"github.com/callbridge/backend/internal/interfaces/http/middleware"
	"github.com/callbridge/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const displayName = "Call Bridge API"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		Service:    cfg.App.Name,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting call bridge",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("database_driver", cfg.Database.Driver),
	)

	// Tracing
	tp, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    handler.APIVersion,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
		logger.WithFullSQL(cfg.Telemetry.DBLogFullSQL),
	)
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(gormLog))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if cfg.Database.Driver == config.DriverSQLite {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to create sqlite schema", zap.Error(err))
		}
	}

	dbTracing := telemetry.DefaultDBTracingConfig()
	dbTracing.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled
	dbTracing.LogFullSQL = cfg.Telemetry.DBLogFullSQL
	dbTracing.SlowQueryThresh = cfg.Telemetry.DBSlowQueryThresh
	if cfg.Database.Driver == config.DriverSQLite {
		dbTracing.DBSystem = "sqlite"
	}
	if err := telemetry.NewDBTracingPlugin(dbTracing, log).Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	recorder := metrics.NewRecorder()
	if pool, err := db.Pool(); err == nil {
		if err := recorder.RegisterDBStats(pool, cfg.Database.DBName); err != nil {
			log.Warn("Database pool metrics unavailable", zap.Error(err))
		}
	}

	// Repositories
	profileRepo := persistence.NewGormProfileRepository(db.DB)
	statsRepo := persistence.NewGormStatsRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Services
	engineOpts := []appcollection.CallOutcomeOption{
		appcollection.WithOutcomeMetrics(recorder),
	}
	if cfg.Cache.Enabled {
		profileCache, err := cache.NewFactory(cfg.Redis,
			cache.WithLogger(log),
			cache.WithInMemoryFallback(cfg.Cache.AllowInMemoryFallback),
		).CreateCache()
		if err != nil {
			log.Fatal("Failed to initialize profile cache", zap.Error(err))
		}
		defer func() {
			_ = profileCache.Close()
		}()
		engineOpts = append(engineOpts, appcollection.WithProfileCache(profileCache, cfg.Cache.ProfileTTL))
	}

	outcomeEngine := appcollection.NewCallOutcomeService(profileRepo, txScope, log, engineOpts...)
	statsService := appcollection.NewStatsService(statsRepo, log)

	decoder, err := handler.NewPayloadDecoder()
	if err != nil {
		log.Fatal("Failed to compile payload schema", zap.Error(err))
	}

	// HTTP engine
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
	defer limiter.Stop()

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders

	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		}),
		middleware.SpanEnricher(),
		logger.GinMiddleware(log),
		middleware.SecureWithConfig(middleware.DefaultSecurityConfig()),
		middleware.CORSWithConfig(corsCfg),
	)
	if cfg.Metrics.Enabled {
		engine.Use(recorder.GinMiddleware())
	}
	if cfg.HTTP.RateLimitEnabled {
		engine.Use(middleware.RateLimit(limiter))
	}
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	var routerOpts []router.RouterOption
	if cfg.Metrics.Enabled {
		routerOpts = append(routerOpts, router.WithMetricsHandler(cfg.Metrics.Path, recorder.Handler()))
	}
	router.NewRouter(engine, routerOpts...).
		Register(router.CallCenterRoutes(handler.NewCallCenterHandler(outcomeEngine, decoder))).
		Register(router.SystemRoutes(handler.NewSystemHandler(statsService, displayName))).
		Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}
