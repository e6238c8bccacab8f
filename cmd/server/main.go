package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	orderapp "github.com/ikkasa/orderhub/internal/application/order"
	"github.com/ikkasa/orderhub/internal/infrastructure/auth"
	"github.com/ikkasa/orderhub/internal/infrastructure/cache"
	"github.com/ikkasa/orderhub/internal/infrastructure/config"
	"github.com/ikkasa/orderhub/internal/infrastructure/ekart"
	"github.com/ikkasa/orderhub/internal/infrastructure/logger"
	"github.com/ikkasa/orderhub/internal/infrastructure/persistence"
	"github.com/ikkasa/orderhub/internal/infrastructure/shopify"
	"github.com/ikkasa/orderhub/internal/infrastructure/storage"
	"github.com/ikkasa/orderhub/internal/infrastructure/telemetry"
	gqlapi "github.com/ikkasa/orderhub/internal/interfaces/graphql"
	"github.com/ikkasa/orderhub/internal/interfaces/http/handler"
	"github.com/ikkasa/orderhub/internal/interfaces/http/middleware"
	"github.com/ikkasa/orderhub/internal/interfaces/http/router"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
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

	// Exporters stay off unless enabled in [telemetry]
	providers, err := telemetry.Setup(ctx, telemetry.FromSettings(cfg.Telemetry), log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	if providers.LogsEnabled() {
		level, lerr := zapcore.ParseLevel(cfg.Log.Level)
		if lerr != nil {
			level = zapcore.InfoLevel
		}
		if log, err = logger.New(logCfg, logger.WithCore(providers.LogCore(level))); err != nil {
			panic("Failed to initialize logger: " + err.Error())
		}
	}
	defer logger.Sync(log)

	log.Info("Starting orderhub",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	metrics, err := telemetry.NewOrderMetrics(providers.Meter("orderhub"))
	if err != nil {
		log.Warn("Order metrics unavailable, using no-op counters", zap.Error(err))
		metrics = telemetry.NewNoopOrderMetrics()
	}

	// Create GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
	)

	db, err := persistence.Open(ctx, &cfg.Database,
		persistence.WithGormLogger(gormLog),
		persistence.WithLogger(log),
		persistence.WithConnectRetry(5, time.Second),
	)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	dbTracing := telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBSystem:        "postgresql",
	}
	if err := telemetry.NewDBTracingPlugin(dbTracing, log).Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	sqlDB := db.SQL()
	repo := persistence.NewGormOrderRepository(db.DB)

	// Ekart carrier with an optional shared token cache
	tokenCache, err := cache.NewFactory(cfg.Redis, cache.WithLogger(log)).Create()
	if err != nil {
		log.Fatal("Failed to create token cache", zap.Error(err))
	}
	var sharedCache ekart.TokenCache
	if tokenCache != nil {
		defer tokenCache.Close()
		sharedCache = tokenCache
	}
	carrier := ekart.NewClient(cfg.Ekart, ekart.NewTokenProvider(cfg.Ekart, sharedCache, log), ekart.WithLogger(log))

	shopifyClient := shopify.NewClient(cfg.Shopify,
		shopify.WithLogger(log),
		shopify.WithPageHook(func(api string) {
			metrics.ShopifyPageFetched(context.Background(), api)
		}),
	)
	sources := map[string]orderapp.OrderSource{
		shopify.APIREST:    shopify.NewRESTSource(shopifyClient),
		shopify.APIGraphQL: shopify.NewGraphQLSource(shopifyClient),
	}

	archive := newArchive(ctx, cfg, log)

	importMode, err := orderapp.ParseImportMode(cfg.Import.DefaultMode, orderapp.ModeMerge)
	if err != nil {
		log.Fatal("Invalid import mode", zap.Error(err))
	}
	syncMode, err := orderapp.ParseSyncMode(cfg.Shopify.SyncMode, orderapp.SyncOverwrite)
	if err != nil {
		log.Fatal("Invalid sync mode", zap.Error(err))
	}

	svcOpts := []orderapp.ServiceOption{
		orderapp.WithLogger(log),
		orderapp.WithMetrics(metrics),
		orderapp.WithWorkers(cfg.Import.Workers),
	}
	orderService := orderapp.NewOrderService(repo, svcOpts...)
	importService := orderapp.NewImportService(repo, svcOpts...)
	syncService := orderapp.NewSyncService(repo, sources, cfg.Shopify.API, syncMode, svcOpts...)
	returnService := orderapp.NewReturnService(repo, carrier, svcOpts...)

	middleware.SetupValidator()

	engineCfg := router.EngineConfig{
		Mode:           ginMode(cfg.App.Env),
		ServiceName:    cfg.Telemetry.ServiceName,
		TracingEnabled: cfg.Telemetry.Enabled,
		CORSOrigins:    cfg.HTTP.CORSAllowOrigins,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		Logger:         log,
	}
	if cfg.Auth.Enabled {
		jwtService := auth.NewJWTService(cfg.Auth)
		engineCfg.Auth = middleware.JWTAuth(middleware.DefaultJWTConfig(jwtService, log))
		log.Info("Bearer token authentication enabled", zap.String("issuer", cfg.Auth.Issuer))
	}
	engine, err := router.NewEngine(engineCfg)
	if err != nil {
		log.Fatal("Failed to create HTTP engine", zap.Error(err))
	}

	schema, err := gqlapi.NewSchema(orderService, syncService)
	if err != nil {
		log.Fatal("Failed to build GraphQL schema", zap.Error(err))
	}

	healthHandler := handler.NewHealthHandler(sqlDB, telemetry.ServiceVersion)
	bodyLimit := middleware.BodyLimit(cfg.HTTP.MaxBodySize)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(healthHandler)
	r.Register(handler.NewOrderHandler(orderService), bodyLimit)
	r.Register(handler.NewShopifyHandler(syncService), bodyLimit)
	r.Register(handler.NewEkartHandler(returnService), bodyLimit)
	r.Register(handler.NewUploadHandler(importService, archive, cfg.Import.UploadDir, importMode),
		middleware.BodyLimit(cfg.Import.MaxUploadSize))
	r.RegisterRoot(healthHandler)
	r.RegisterRoot(gqlapi.NewHandler(schema), bodyLimit)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Warn("Telemetry shutdown incomplete", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// newArchive returns the S3 upload archive, or a no-op archive when storage is
// disabled or unreachable.
func newArchive(ctx context.Context, cfg *config.Config, log *zap.Logger) storage.Archive {
	if !cfg.Storage.Enabled {
		return storage.NoopArchive{}
	}
	archive, err := storage.NewS3Archive(&cfg.Storage, storage.WithLogger(log))
	if err != nil {
		log.Warn("Upload archive disabled", zap.Error(err))
		return storage.NoopArchive{}
	}
	ensureCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := archive.EnsureBucket(ensureCtx); err != nil {
		log.Warn("Upload archive bucket unavailable", zap.String("bucket", cfg.Storage.Bucket), zap.Error(err))
		return storage.NoopArchive{}
	}
	log.Info("Upload archive enabled", zap.String("bucket", archive.Bucket()))
	return archive
}

func ginMode(env string) string {
	switch env {
	case "production", "prod":
		return gin.ReleaseMode
	case "test":
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}
