package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	httpapi "gearloop-backend/internal/api/http"
	"gearloop-backend/internal/config"
	"gearloop-backend/internal/logger"
	"gearloop-backend/internal/payment"
	"gearloop-backend/internal/push"
	"gearloop-backend/internal/repository/postgres"
	"gearloop-backend/internal/security"
	"gearloop-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Gearloop Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute)

	// Initialize Payment Provider
	provider := payment.NewClient(cfg.Payment.BaseURL, cfg.Payment.APIKey, time.Duration(cfg.Payment.TimeoutSeconds)*time.Second)

	// Initialize Push (optional)
	var pusher push.Sender
	if cfg.Push.Enabled {
		fcm, err := push.NewFCMClient(context.Background(), cfg.Push.CredentialsFile)
		if err != nil {
			logger.Error("Failed to initialize FCM client", "error", err)
			log.Fatalf("Failed to initialize FCM client: %v", err)
		}
		pusher = fcm
		logger.Info("FCM push notifications enabled")
	}

	billing := service.BillingPolicy{
		Currency:          cfg.Billing.Currency,
		PlatformAccountID: cfg.Billing.PlatformAccountID,
		RenterFeeBps:      cfg.Billing.RenterFeeBps,
		CommissionTiers:   cfg.Billing.CommissionTiers,
	}

	// Initialize Services
	emailSvc := service.NewEmailService(cfg.Email.APIKey, cfg.Email.FromEmail, cfg.Email.FromName, cfg.Email.Enabled)
	notifier := service.NewNotificationService(store.Notifications, store.Users, pusher)
	verifySvc := service.NewVerificationService(store.Users)
	rentalSvc := service.NewRentalService(
		store.Rentals,
		store.Items,
		store.Ledger,
		store.Users,
		store.Timeline,
		provider,
		verifySvc,
		notifier,
		emailSvc,
		billing,
	)
	walletSvc := service.NewWalletService(store.Ledger, verifySvc, cfg.Billing.Currency)
	disputeSvc := service.NewDisputeService(
		store.Disputes,
		store.Rentals,
		store.Ledger,
		store.Items,
		store.Users,
		notifier,
		emailSvc,
	)
	webhookSvc := service.NewWebhookService(
		store.Rentals,
		store.Ledger,
		store.Items,
		store.Users,
		notifier,
		emailSvc,
		billing,
		cfg.Payment.WebhookSecret,
	)

	// Initialize HTTP handlers and router
	router := httpapi.NewRouter(httpapi.Handlers{
		Rental:       httpapi.NewRentalHandler(rentalSvc),
		Wallet:       httpapi.NewWalletHandler(walletSvc),
		Dispute:      httpapi.NewDisputeHandler(disputeSvc),
		Webhook:      httpapi.NewWebhookHandler(webhookSvc),
		Notification: httpapi.NewNotificationHandler(notifier),
	}, tokenManager)

	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}
	logger.Info("Server stopped. Goodbye!")
}
