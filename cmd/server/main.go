package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Nassimghoulane/Dionos-1/internal/application/clickcollect"
	"github.com/Nassimghoulane/Dionos-1/internal/domain/shared/valueobject"
	"github.com/Nassimghoulane/Dionos-1/internal/infrastructure/cache"
	"github.com/Nassimghoulane/Dionos-1/internal/infrastructure/config"
	"github.com/Nassimghoulane/Dionos-1/internal/infrastructure/event"
	"github.com/Nassimghoulane/Dionos-1/internal/infrastructure/logger"
	"github.com/Nassimghoulane/Dionos-1/internal/infrastructure/persistence"
	"github.com/Nassimghoulane/Dionos-1/internal/infrastructure/scheduler"
	"github.com/Nassimghoulane/Dionos-1/internal/infrastructure/seed"
	"github.com/Nassimghoulane/Dionos-1/internal/infrastructure/telemetry"
	"github.com/Nassimghoulane/Dionos-1/internal/interfaces/http/handler"
	"github.com/Nassimghoulane/Dionos-1/internal/interfaces/http/middleware"
	"github.com/Nassimghoulane/Dionos-1/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	baseLog, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}, cfg.App.Name)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	if err := run(cfg, baseLog); err != nil {
		baseLog.Error("Server stopped with error", zap.Error(err))
		_ = baseLog.Sync()
		os.Exit(1)
	}
	_ = baseLog.Sync()
}

func run(cfg *config.Config, baseLog *zap.Logger) error {
	ctx := context.Background()
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// OpenTelemetry: traces, metrics, logs
	pipeline, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:         cfg.Telemetry.Enabled,
		Endpoint:        cfg.Telemetry.CollectorEndpoint,
		Insecure:        cfg.Telemetry.Insecure,
		ServiceName:     cfg.Telemetry.ServiceName,
		SamplingRatio:   cfg.Telemetry.SamplingRatio,
		MetricsInterval: cfg.Telemetry.MetricsInterval,
	}, baseLog)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := pipeline.Shutdown(shutdownCtx); err != nil {
			baseLog.Warn("Telemetry shutdown failed", zap.Error(err))
		}
	}()

	log := pipeline.Logger(baseLog, cfg.Telemetry.ServiceName, logger.ParseLevel(cfg.Log.Level))
	log.Info("Starting click-and-collect service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.HTTP.Port),
		zap.Bool("telemetry", cfg.Telemetry.Enabled),
	)

	currency, err := valueobject.ParseCurrency(cfg.App.Currency)
	if err != nil {
		return fmt.Errorf("app currency: %w", err)
	}

	// Catalog
	cat, err := seed.LoadFile(cfg.Catalog.SeedFile)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	// Event bus and subscribers
	eventBus := event.NewInMemoryEventBus(log)
	var healthChecks []handler.DependencyCheck

	if pipeline.Enabled() {
		orderMetrics, err := telemetry.NewOrderMetrics(telemetry.OrderMetricsConfig{
			Meter:    pipeline.Meter("clickcollect.orders"),
			Logger:   log,
			Currency: string(currency),
		})
		if err != nil {
			return fmt.Errorf("order metrics: %w", err)
		}
		eventBus.Subscribe(orderMetrics)
	}

	var archive *persistence.GormOrderArchive
	if cfg.Archive.Enabled {
		plugins := []persistence.DatabaseOption{
			persistence.WithGormLogger(logger.NewGormLogger(log,
				logger.MapGormLogLevel(cfg.Log.Level), cfg.Archive.SlowQueryThreshold)),
		}
		if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
			dbTracing := telemetry.DefaultDBTracingConfig()
			dbTracing.DBSystem = cfg.Archive.Driver
			dbTracing.SlowQueryThresh = cfg.Archive.SlowQueryThreshold
			plugins = append(plugins, persistence.WithPlugins(telemetry.NewDBTracingPlugin(dbTracing, log)))
		}
		db, err := persistence.NewDatabase(cfg.Archive, plugins...)
		if err != nil {
			return fmt.Errorf("open archive: %w", err)
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Error("Error closing database", zap.Error(err))
			}
		}()
		if err := db.Migrate(); err != nil {
			return fmt.Errorf("migrate archive: %w", err)
		}
		archive = persistence.NewGormOrderArchive(db.DB)
		eventBus.Subscribe(persistence.NewArchiveHandler(archive, log))
		healthChecks = append(healthChecks, handler.DependencyCheck{
			Name:  "archive",
			Check: func(context.Context) error { return db.Ping() },
		})
		log.Info("Order archive enabled", zap.String("driver", cfg.Archive.Driver))
	}

	if err := eventBus.Start(ctx); err != nil {
		return fmt.Errorf("start event bus: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := eventBus.Stop(stopCtx); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Pickup code registry
	codeStore, err := cache.NewPickupCodeRegistryFactory(cfg.Redis, cache.WithLogger(log)).Create()
	if err != nil {
		return fmt.Errorf("pickup code registry: %w", err)
	}
	defer func() {
		if err := codeStore.Close(); err != nil {
			log.Warn("Error closing pickup code registry", zap.Error(err))
		}
	}()
	if pinger, ok := codeStore.(interface{ Ping(context.Context) error }); ok {
		healthChecks = append(healthChecks, handler.DependencyCheck{Name: "redis", Check: pinger.Ping})
	}

	// Shopping session and its transition scheduler
	timers := scheduler.New(scheduler.SystemClock{}, log)
	session := clickcollect.NewSession(
		clickcollect.WithScheduler(timers),
		clickcollect.WithEventPublisher(eventBus),
		clickcollect.WithPickupCodeRegistry(codeStore, cfg.Redis.ReservationTTL),
		clickcollect.WithProgressionPolicy(clickcollect.ProgressionPolicy{
			ConfirmAfter:   cfg.Progression.ConfirmAfter,
			PreparingAfter: cfg.Progression.PreparingAfter,
		}),
		clickcollect.WithLogger(log),
	)
	if pipeline.Enabled() {
		if err := telemetry.ObservePendingTransitions(pipeline.Meter("clickcollect.scheduler"), timers.Pending); err != nil {
			return fmt.Errorf("scheduler metrics: %w", err)
		}
	}
	if err := session.SetStores(ctx, cat.Stores()); err != nil {
		return fmt.Errorf("install catalog: %w", err)
	}
	if archive != nil && cfg.Archive.RestoreOnStart {
		orders, err := archive.FindAll(ctx, persistence.OrderFilter{})
		if err != nil {
			return fmt.Errorf("restore orders: %w", err)
		}
		if err := session.RestoreOrders(ctx, orders); err != nil {
			return fmt.Errorf("restore orders: %w", err)
		}
	}
	if err := timers.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := session.Close(closeCtx); err != nil {
			log.Error("Error closing session", zap.Error(err))
		}
	}()

	// HTTP
	engine, err := router.NewEngine(router.EngineConfig{
		Logger:         log,
		ServiceName:    cfg.Telemetry.ServiceName,
		TracingEnabled: pipeline.Enabled(),
		Meter:          pipeline.Meter("http.server"),
		CORS: middleware.CORSConfig{
			AllowOrigins: cfg.HTTP.CORSAllowOrigins,
			AllowMethods: cfg.HTTP.CORSAllowMethods,
			AllowHeaders: cfg.HTTP.CORSAllowHeaders,
			MaxAge:       12 * time.Hour,
		},
		TrustedProxies: cfg.HTTP.TrustedProxies,
	})
	if err != nil {
		return fmt.Errorf("http engine: %w", err)
	}
	router.NewRouter(engine).
		Register(
			handler.NewHealthHandler(session, healthChecks...),
			handler.NewCatalogHandler(session, currency),
			handler.NewCartHandler(session, currency),
			handler.NewSessionHandler(session, currency),
			handler.NewOrderHandler(session, currency),
		).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.HTTP.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		log.Info("Shutting down server...", zap.String("signal", sig.String()))
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("Server exited gracefully")
	return nil
}
