package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/torsore/storefront/internal"
	"github.com/torsore/storefront/internal/billing"
	"github.com/torsore/storefront/internal/cart"
	"github.com/torsore/storefront/internal/cookie"
	"github.com/torsore/storefront/internal/handler/admin"
	"github.com/torsore/storefront/internal/handler/storefront"
	"github.com/torsore/storefront/internal/handler/webhook"
	"github.com/torsore/storefront/internal/identity"
	"github.com/torsore/storefront/internal/middleware"
	"github.com/torsore/storefront/internal/pricing"
	"github.com/torsore/storefront/internal/repository"
	"github.com/torsore/storefront/internal/router"
	"github.com/torsore/storefront/internal/routes"
	"github.com/torsore/storefront/internal/service"
	"github.com/torsore/storefront/internal/shipping"
	"github.com/torsore/storefront/internal/tax"
	"github.com/torsore/storefront/internal/telemetry"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize database/sql connection for migrations
	logger.Info("Connecting to database...")
	sqlDB, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer sqlDB.Close()

	// Verify database connection
	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	logger.Info("Database connection established")

	// Run migrations
	logger.Info("Running database migrations...")
	if err := internal.RunMigrations(sqlDB); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	// Initialize pgx connection pool for application
	pool, err := pgxpool.New(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	// Initialize Stripe billing provider
	logger.Info("Initializing Stripe billing provider...")
	stripeConfig := billing.StripeConfig{
		APIKey:        cfg.Stripe.SecretKey,
		WebhookSecret: cfg.Stripe.WebhookSecret,
		Currency:      cfg.Stripe.Currency,
	}
	billingProvider, err := billing.NewStripeProvider(stripeConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize Stripe provider: %w", err)
	}
	logger.Info("Stripe billing provider initialized", "test_mode", stripeConfig.IsTestMode())

	// Initialize cart stores. Both backends are live: guests use the file
	// store, signed-in shoppers the durable one, picked per request.
	fileStore, err := cart.NewFileStore(cfg.CartDataDir, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize cart store: %w", err)
	}
	guestCarts := cart.NewService(fileStore, logger)
	userCarts := cart.NewService(cart.NewPostgresStore(pool), logger)
	logger.Info("Cart stores initialized", "guest_dir", cfg.CartDataDir)

	// Initialize pricing estimator
	shippingMenu := shipping.NewMenu(
		cfg.Pricing.FreeShippingThresholdCents,
		cfg.Pricing.StandardShippingCents,
		cfg.Pricing.ExpressShippingCents,
	)
	taxCalculator := tax.NewPercentageCalculator(cfg.Pricing.TaxRate)
	estimator := pricing.NewEstimator(shippingMenu, taxCalculator)

	// Initialize services
	checkoutService := service.NewCheckoutService(billingProvider, estimator, service.CheckoutConfig{
		SuccessURL: cfg.BaseURL + "/checkout/confirmation",
		CancelURL:  cfg.BaseURL + "/checkout",
	}, logger)
	orderService := service.NewOrderService(pool, billingProvider, logger)
	reconciler := service.NewReconcileService(billingProvider, repository.New(pool), logger)

	// Identity resolution is session-token based; the static resolver is a
	// development stand-in until the account system lands.
	resolver := identity.NewStaticResolver(nil)

	cookieConfig := cookie.NewConfig(cfg.Env != "dev")
	cartSelector := storefront.NewCartSelector(guestCarts, userCarts, resolver, logger)

	// ==========================================================================
	// Build route dependencies
	// ==========================================================================

	storefrontDeps := routes.StorefrontDeps{
		CartHandler:              storefront.NewCartHandler(cartSelector, estimator, cookieConfig, logger),
		CheckoutHandler:          storefront.NewCheckoutHandler(cartSelector, checkoutService, resolver, cookieConfig, logger),
		OrderConfirmationHandler: storefront.NewOrderConfirmationHandler(reconciler, cartSelector, cookieConfig, logger),
	}

	adminDeps := routes.AdminDeps{
		OrderHandler: admin.NewOrderHandler(orderService, logger),
		APIKey:       cfg.AdminAPIKey,
	}

	webhookDeps := routes.WebhookDeps{
		StripeHandler: webhook.NewStripeHandler(billingProvider, orderService, repository.New(pool), logger),
	}

	// ==========================================================================
	// Initialize middleware
	// ==========================================================================

	// Initialize Prometheus metrics
	metrics := middleware.NewMetrics("storefront")
	telemetry.InitBusinessMetrics("storefront")

	// Configure security headers
	securityConfig := middleware.DefaultSecurityHeadersConfig()
	if cfg.Env == "dev" {
		// Relax CSP in development for easier debugging
		securityConfig.ContentSecurityPolicy = ""
		securityConfig.HSTSMaxAge = 0 // Disable HSTS in development
	}

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	r := router.New(
		router.Recovery(logger),
		middleware.RequestID,
		middleware.WithClientIP(),
		metrics.Middleware,
		middleware.SecurityHeaders(securityConfig),
		middleware.MaxBodySize(middleware.DefaultMaxBodySize),
		middleware.Timeout(middleware.DefaultTimeout),
		middleware.WithRequestLogger(logger),
	)

	// Metrics endpoint (no auth required, but should be protected in production via firewall)
	r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
		metrics.Handler().ServeHTTP(w, req)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Register route groups
	routes.RegisterStorefrontRoutes(r, storefrontDeps)
	routes.RegisterAdminRoutes(r, adminDeps)
	routes.RegisterWebhookRoutes(r, webhookDeps)

	// ==========================================================================
	// Start server
	// ==========================================================================

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting storefront server", "address", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-stop:
		logger.Info("Shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	logger.Info("Server stopped")

	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
