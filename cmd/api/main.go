package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"snack-cart/internal/catalog"
	"snack-cart/internal/config"
	"snack-cart/internal/database"
	"snack-cart/internal/handler"
	"snack-cart/internal/payment"
	"snack-cart/internal/repository"
	"snack-cart/internal/router"
	"snack-cart/internal/service"
	"snack-cart/internal/shipping"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting snack-cart API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Initialize Redis client for guest carts
	redisClient, err := database.NewRedisClient(ctx, cfg.Redis, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	defer redisClient.Close()

	// Initialize repositories
	guestTTL := time.Duration(cfg.Redis.GuestTTLMin) * time.Minute
	guestCartRepo := repository.NewRedisCartRepository(redisClient, guestTTL, logger)
	accountCartRepo := repository.NewPostgresCartRepository(pool, logger)
	orderRepo := repository.NewPostgresOrderRepository(pool, logger)

	// Initialize catalogue reader
	catalogReader := catalog.NewPostgresReader(pool, logger)

	// Initialize shipping rates with S3 and local fallback
	rates, err := loadShippingRates(ctx, cfg.Shipping, logger)
	if err != nil {
		return fmt.Errorf("failed to load shipping rates: %w", err)
	}

	// Initialize payment gateway
	gateway := payment.NewHostedGateway(logger)

	// Initialize services
	cartService := service.NewCartService(guestCartRepo, accountCartRepo, catalogReader, logger)
	stockVerifier := service.NewStockVerifier(catalogReader, logger)
	checkoutService := service.NewCheckoutService(
		cartService,
		stockVerifier,
		orderRepo,
		gateway,
		rates,
		cfg.Payment.Currency,
		logger,
	)

	// Initialize HTTP handlers
	cartHandler := handler.NewCartHandler(cartService, logger)
	checkoutHandler := handler.NewCheckoutHandler(checkoutService, logger)

	// Initialize router
	mux := router.New(cartHandler, checkoutHandler, cfg.Auth.APIKey, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// loadShippingRates resolves the rate table at startup. Without a configured
// source the built-in defaults are used; with one, S3 is tried first and the
// local file is the fallback.
func loadShippingRates(ctx context.Context, cfg config.ShippingConfig, logger zerolog.Logger) (shipping.Rates, error) {
	if !cfg.S3Enabled && cfg.LocalPath == "" {
		logger.Info().Msg("no shipping rate source configured, using built-in defaults")
		return shipping.DefaultRates(), nil
	}

	fileLoader := shipping.NewFileLoader(logger)

	var loader shipping.Loader = fileLoader
	if cfg.S3Enabled {
		s3Loader, err := shipping.NewS3Loader(ctx, cfg.S3Bucket, cfg.S3Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
		} else {
			loader = shipping.NewFallbackLoader(s3Loader, fileLoader, cfg.S3Prefix, true, logger)
		}
	}

	return loader.Load(ctx, cfg.LocalPath)
}
