package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	apppos "github.com/erp/pos/internal/application/pos"
	"github.com/erp/pos/internal/domain/pos"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/infrastructure/backend"
	"github.com/erp/pos/internal/infrastructure/cache"
	"github.com/erp/pos/internal/infrastructure/config"
	"github.com/erp/pos/internal/infrastructure/logger"
	"github.com/erp/pos/internal/infrastructure/persistence"
	"github.com/erp/pos/internal/infrastructure/telemetry"
	"github.com/erp/pos/internal/interfaces/http/handler"
	"github.com/erp/pos/internal/interfaces/http/middleware"
	"github.com/erp/pos/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()
	telCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
		MetricsInterval:   cfg.Telemetry.MetricsInterval,
	}

	// Rebuild the logger with the OTLP bridge once the log exporter is up
	logsCfg := telCfg
	logsCfg.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled
	logProvider, err := telemetry.NewLoggerProvider(ctx, logsCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize log exporter", zap.Error(err))
	}
	level, _ := logger.ParseLevel(cfg.Log.Level)
	if core := logProvider.ZapCore(cfg.Telemetry.ServiceName, level); core != nil {
		bridged, err := logger.New(logCfg, core)
		if err != nil {
			log.Fatal("Failed to attach log exporter", zap.Error(err))
		}
		log = bridged
	}
	defer func() {
		_ = log.Sync()
	}()
	zap.ReplaceGlobals(log)

	log.Info("Starting POS gateway",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.ProfilerAddress,
		ApplicationName: cfg.Telemetry.ServiceName,
		Tags:            map[string]string{"env": cfg.App.Env, "version": version},
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}

	posMetrics, err := telemetry.NewPOSMetrics(meterProvider.Meter("pos-gateway"))
	if err != nil {
		log.Fatal("Failed to register POS metrics", zap.Error(err))
	}

	remote, err := backend.NewClient(backend.Config{
		BaseURL:         cfg.Backend.BaseURL,
		Timeout:         cfg.Backend.Timeout,
		DefaultPageSize: cfg.Backend.PageSize,
	}, log.Named("backend"))
	if err != nil {
		log.Fatal("Failed to create backend client", zap.Error(err))
	}

	checks := map[string]handler.HealthChecker{}
	orchestratorOpts := []apppos.OrchestratorOption{apppos.WithMetrics(posMetrics)}

	if cfg.Idempotency.Enabled {
		store, err := cache.NewIdempotencyStore(ctx, cfg.Idempotency, cfg.Redis, log)
		if err != nil {
			log.Fatal("Failed to create idempotency store", zap.Error(err))
		}
		defer func() {
			_ = store.Close()
		}()
		if checker, ok := store.(handler.HealthChecker); ok {
			checks["redis"] = checker
		}
		orchestratorOpts = append(orchestratorOpts, apppos.WithIdempotencyStore(store, shared.IdempotencyConfig{
			TTL:     cfg.Idempotency.TTL,
			Enabled: true,
		}))
	}

	var journal pos.SaleJournal
	if cfg.Journal.Enabled {
		db, err := persistence.NewDatabase(cfg.Journal, persistence.Options{
			LogLevel: cfg.Log.Level,
			Tracing:  cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		}, log.Named("journal"))
		if err != nil {
			log.Fatal("Failed to open sale journal", zap.Error(err))
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Error("Error closing sale journal", zap.Error(err))
			}
		}()
		checks["journal"] = db
		journal = persistence.NewGormSaleJournal(db.DB)
		orchestratorOpts = append(orchestratorOpts, apppos.WithJournal(journal))
		log.Info("Sale journal ready", zap.String("driver", cfg.Journal.Driver))
	}

	masterData := apppos.NewMasterDataService(remote, cache.NewReferenceCache(), cfg.MasterData.TTL, log)
	catalog := apppos.NewCatalogService(remote, log)
	terminals := apppos.NewTerminalRegistry(apppos.TerminalDeps{
		Catalog:    catalog,
		Drawers:    remote,
		Clients:    remote,
		MasterData: masterData,
		Metrics:    posMetrics,
		Logger:     log,
	}, cfg.Terminal.IdleTTL)

	runCtx, stopRegistry := context.WithCancel(ctx)
	terminals.Start(runCtx, cfg.Terminal.EvictionInterval)

	posHandler := handler.NewPOSHandler(handler.POSDeps{
		Terminals:    terminals,
		Orchestrator: apppos.NewSaleOrchestrator(remote, log, orchestratorOpts...),
		Catalog:      catalog,
		MasterData:   masterData,
		History:      apppos.NewSalesHistoryService(remote, masterData, journal, log),
		Clients:      remote,
		Directory:    apppos.NewClientService(remote, log),
		Defaults: apppos.TerminalDefaults{
			BranchID:      cfg.Terminal.DefaultBranchID,
			PointOfSaleID: cfg.Terminal.DefaultPointOfSaleID,
		},
	})
	systemHandler := handler.NewSystemHandler(cfg.App.Name, version, terminals, checks)

	if cfg.Auth.AllowTerminalHeader {
		log.Warn("Unauthenticated X-Terminal-ID access is enabled")
	}
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine, err := router.NewEngine(router.EngineConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		TracingEnabled: cfg.Telemetry.Enabled,
		Meter:          meterProvider.Meter("http.server"),
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		CORS:           cors,
		TrustedProxies: cfg.HTTP.TrustedProxies,
	}, log)
	if err != nil {
		log.Fatal("Failed to create HTTP engine", zap.Error(err))
	}

	router.NewRouter(engine).
		Register(router.NewSystemRoutes(systemHandler)).
		Register(router.NewPOSRoutes(posHandler, middleware.CashierIdentity(middleware.CashierAuthConfig{
			Secret:              cfg.Auth.JWTSecret,
			Issuer:              cfg.Auth.JWTIssuer,
			AllowTerminalHeader: cfg.Auth.AllowTerminalHeader,
			Logger:              log,
		}))).
		Setup()

	// Root-level probe for load balancers
	engine.GET("/health", systemHandler.Health)

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

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	stopRegistry()
	_ = terminals.Close()

	shutdownTelemetry(shutdownCtx, log, tracerProvider, meterProvider, logProvider)
	if err := profiler.Stop(); err != nil {
		log.Warn("Profiler stop failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

type shutdowner interface {
	Shutdown(ctx context.Context) error
}

// shutdownTelemetry flushes exporters. The log provider goes last so the
// other providers' shutdown logs still reach the collector.
func shutdownTelemetry(ctx context.Context, log *zap.Logger, providers ...shutdowner) {
	for _, p := range providers {
		if err := p.Shutdown(ctx); err != nil {
			log.Warn("Telemetry shutdown failed", zap.Error(err))
		}
	}
}
