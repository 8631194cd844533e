package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yashrajoria/E-Commerce-backend/storefront/config"
	"github.com/yashrajoria/E-Commerce-backend/storefront/controllers"
	"github.com/yashrajoria/E-Commerce-backend/storefront/database"
	apperrors "github.com/yashrajoria/E-Commerce-backend/storefront/errors"
	"github.com/yashrajoria/E-Commerce-backend/storefront/logger"
	"github.com/yashrajoria/E-Commerce-backend/storefront/middleware"
	"github.com/yashrajoria/E-Commerce-backend/storefront/routes"
	"github.com/yashrajoria/E-Commerce-backend/storefront/services"
)

func main() {
	// Load environment configuration
	cfg := config.Load()

	log := logger.Initialize(cfg.AppEnv)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize the key-value store backing the per-session carts and logins
	kv, closeStore, err := database.OpenKVStore(ctx, cfg.StoreDriver, cfg.RedisURL, cfg.StoreTTL, log)
	if err != nil {
		log.Fatal("Failed to open store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Warn("Failed to close store", zap.Error(err))
		}
	}()

	httpClient := &http.Client{}

	notifier := services.NewLogNotifier(log)
	catalog := services.NewCatalogLoader(services.CatalogLoaderConfig{
		URL:          cfg.CatalogURL,
		FetchTimeout: cfg.CatalogFetchTimeout,
		RetryDelay:   cfg.CatalogRetryDelay,
		MinBusy:      cfg.CatalogMinBusy,
	}, httpClient, notifier, &services.BusyState{}, log)

	cart := database.NewCartStore(kv, cfg.CartKey, log)
	submitter := services.NewOrderSubmitter(services.OrderSubmitterConfig{
		URL:          cfg.OrderURL,
		Ceiling:      cfg.OrderCeiling,
		WriteTimeout: cfg.OrderWriteTimeout,
	}, httpClient, cart, log)
	checkout := services.NewCheckoutService(cart, catalog, services.NewOrderAssembler(), submitter, log)

	auth := services.NewAuthService(services.AuthConfig{
		APIBase:  cfg.AuthAPIBase,
		TokenKey: cfg.AuthTokenKey,
		UserKey:  cfg.AuthUserKey,
	}, kv, nil, log)
	orders := services.NewOrderLister(cfg.OrderURL, httpClient, log)

	// A failed first load leaves an empty catalog; POST /products/reload retries.
	if _, err := catalog.Load(ctx); err != nil {
		log.Warn("Initial catalog load failed, starting with an empty catalog", zap.Error(err))
	}

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Session(cfg.SessionCookie, cfg.AppEnv == "production"),
		middleware.RequestLogger(log),
		middleware.CORSMiddleware(cfg.AllowedOrigins),
		middleware.SecurityHeaders(),
		apperrors.ErrorMiddleware(),
	)

	validator := controllers.NewRequestValidator()
	limiter := middleware.NewRateLimiter(ctx, middleware.PerMinute(cfg.RateLimitPerMinute), cfg.RateLimitBurst, 5*time.Minute)
	routes.RegisterRoutes(router, routes.Controllers{
		Storefront: controllers.NewStorefrontController(catalog, cart, checkout, notifier, validator, log),
		Auth:       controllers.NewAuthController(auth, validator, log),
		Orders:     controllers.NewOrderController(orders, log),
	}, auth, limiter)

	// Start HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Storefront is running", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	<-ctx.Done()
	log.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Shutdown error", zap.Error(err))
	}
	log.Info("Server shutdown complete")
}
