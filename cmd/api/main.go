package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"shopify-app-backend/internal/application"
	"shopify-app-backend/internal/application/webhook_handlers"
	"shopify-app-backend/internal/config"
	apiinfra "shopify-app-backend/internal/infrastructure/api"
	"shopify-app-backend/internal/infrastructure/metrics"
	"shopify-app-backend/internal/infrastructure/repository"
	shopifyinfra "shopify-app-backend/internal/infrastructure/shopify"
	"shopify-app-backend/internal/ports"
)

func main() {
	// Initialize logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, envLoaded, err := config.Load()
	if !envLoaded {
		logger.Warn().Msg("⚠️  Warning: .env file not found")
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warn().Str("level", cfg.LogLevel).Msg("Unknown log level, using info")
		level = zerolog.InfoLevel
	}
	logger = logger.Level(level)

	ctx := context.Background()

	// Relational store
	db, err := repository.NewDatabase(cfg.Database, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Postgres")
	}
	defer db.Close()
	if err := db.AutoMigrate(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to migrate database")
	}

	shopRepo := repository.NewShopRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	// Optional webhook audit log
	var auditLog ports.WebhookAuditLog
	if cfg.Mongo.Enabled() {
		mongoClient, err := repository.ConnectMongo(ctx, cfg.Mongo.URI)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
		}
		defer mongoClient.Disconnect(context.Background())

		auditRepo := repository.NewMongoWebhookAuditRepository(mongoClient.Database(cfg.Mongo.Database))
		if err := auditRepo.EnsureIndexes(ctx); err != nil {
			logger.Warn().Err(err).Msg("Failed to create webhook audit indexes")
		}
		auditLog = auditRepo
		logger.Info().Str("database", cfg.Mongo.Database).Msg("Webhook audit log enabled")
	}

	// Optional OAuth state store
	var stateStore ports.OAuthStateStore
	if cfg.Redis.Enabled() {
		redisClient, err := repository.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redisClient.Close()
		stateStore = repository.NewRedisStateStore(redisClient)
		logger.Info().Dur("ttl", cfg.Shopify.StateTTL).Msg("OAuth state verification enabled")
	}

	// Shopify adapters
	shopifyClient := shopifyinfra.NewClient(shopifyinfra.ClientOptions{
		APIKey:     cfg.Shopify.APIKey,
		APISecret:  cfg.Shopify.APISecret,
		APIVersion: cfg.Shopify.APIVersion,
		Retries:    cfg.Shopify.Retries,
		Timeout:    cfg.Shopify.Timeout,
	}, logger)
	webhookVerifier := shopifyinfra.NewWebhookVerifier(cfg.Shopify.APISecret, logger)
	tokenDecoder := shopifyinfra.NewSessionTokenDecoder(cfg.Shopify.APIKey, cfg.Shopify.APISecret)

	appMetrics := metrics.New()

	// Initialize application services
	webhookManager := application.NewWebhookManager(shopifyClient, appMetrics, cfg.Shopify.APIURL, logger)
	authService := application.NewAuthService(
		shopRepo,
		shopifyClient,
		stateStore,
		webhookManager,
		appMetrics,
		application.AuthOptions{
			Scopes:   cfg.Shopify.Scopes,
			APIURL:   cfg.Shopify.APIURL,
			AppURL:   cfg.Shopify.AppURL,
			StateTTL: cfg.Shopify.StateTTL,
		},
		logger,
	)
	sessionService := application.NewSessionService(tokenDecoder, shopRepo, shopifyClient, logger)
	orderService := application.NewOrderService(shopRepo, orderRepo, logger)
	shopService := application.NewShopService(shopRepo, logger)
	productService := application.NewProductService(appMetrics, logger)

	// Initialize webhook dispatcher and register handlers
	webhookDispatcher := application.NewWebhookDispatcher(application.NewAuditService(auditLog, logger), appMetrics, logger)
	webhookDispatcher.Register(webhook_handlers.NewOrderHandler(orderService, logger))
	webhookDispatcher.Register(webhook_handlers.NewAppUninstalledHandler(shopService, logger))
	webhookDispatcher.Register(webhook_handlers.NewCustomerPrivacyHandler(logger))
	webhookDispatcher.Register(webhook_handlers.NewShopRedactHandler(shopService, logger))

	handler := apiinfra.NewHandler(apiinfra.Services{
		Auth:       authService,
		Sessions:   sessionService,
		Orders:     orderService,
		Products:   productService,
		Dispatcher: webhookDispatcher,
		Verifier:   webhookVerifier,
		Metrics:    appMetrics,
	}, logger)
	router := apiinfra.NewRouter(handler, apiinfra.RouterOptions{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Observer:       appMetrics,
		MetricsHandler: appMetrics.Handler(),
		SwaggerFile:    "./docs/swagger.json",
	}, logger)

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("Starting API server")
		logger.Info().Msgf("Swagger documentation available at http://localhost:%d/swagger/index.html", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
		return
	}
	logger.Info().Msg("Server exited gracefully")
}
