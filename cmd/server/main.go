package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	grpcapi "lendlocal-backend/internal/api/grpc"
	httpapi "lendlocal-backend/internal/api/http"
	"lendlocal-backend/internal/config"
	"lendlocal-backend/internal/geo"
	"lendlocal-backend/internal/jobs"
	"lendlocal-backend/internal/logger"
	"lendlocal-backend/internal/repository"
	"lendlocal-backend/internal/repository/memory"
	"lendlocal-backend/internal/repository/postgres"
	"lendlocal-backend/internal/scheduler"
	"lendlocal-backend/internal/security"
	"lendlocal-backend/internal/service"
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
	logger.Info("Starting LendLocal backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress(), "health_address", cfg.GetHealthAddress())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize storage
	store, db, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize storage", "type", cfg.Storage.Type, "error", err)
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	if db != nil {
		defer db.Close()
	}

	// Initialize Email Service
	mailer, err := newMailer(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize mailer: %v", err)
	}
	emailSvc := service.NewEmailService(mailer)

	// Initialize Services
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute)
	userSvc := service.NewUserService(store, tokenManager)
	marketSvc := service.NewMarketplaceService(store)
	lendingSvc := service.NewLendingService(store, emailSvc)

	// HTTP API
	defaultLocation := geo.Point{Lat: cfg.Geo.DefaultLocation.Lat, Lng: cfg.Geo.DefaultLocation.Lng}
	handler := httpapi.NewHandler(userSvc, marketSvc, lendingSvc, tokenManager, defaultLocation)
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	httpServer := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           corsHandler.Handler(handler.Router()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// gRPC health server
	healthServer := grpcapi.NewHealthServer(store, 10*time.Second)
	lis, err := net.Listen("tcp", cfg.GetHealthAddress())
	if err != nil {
		logger.Error("Failed to listen", "error", err, "address", cfg.GetHealthAddress())
		log.Fatalf("Failed to listen: %v", err)
	}
	go healthServer.Watch(ctx)
	go func() {
		if err := healthServer.Serve(lis); err != nil {
			logger.Error("gRPC health server error", "error", err)
		}
	}()

	// The in-memory store lives in this process, so its reminders must too.
	// PostgreSQL deployments run cmd/cronjob instead.
	var cronScheduler *scheduler.Scheduler
	if cfg.Storage.Type == config.StorageMemory {
		cronScheduler, err = scheduler.NewScheduler(jobs.NewJobRunner(&jobs.Services{Lending: lendingSvc}, cfg))
		if err != nil {
			log.Fatalf("Failed to initialize scheduler: %v", err)
		}
		cronScheduler.Start()
	}

	go func() {
		logger.Info("HTTP server listening", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	// Graceful shutdown
	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}
	healthServer.Stop()
	if cronScheduler != nil {
		cronScheduler.Stop()
	}
	logger.Info("LendLocal backend stopped. Goodbye!")
}

// openStore returns the configured repository backend. db is nil for the
// in-memory store.
func openStore(ctx context.Context, cfg *config.Config) (repository.Store, *sql.DB, error) {
	if cfg.Storage.Type == config.StorageMemory {
		logger.Info("Using in-memory storage")
		return memory.NewStore(), nil, nil
	}

	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
	db, err := postgres.Open(ctx, cfg.GetDatabaseConnectionString())
	if err != nil {
		return nil, nil, err
	}
	store := postgres.NewStore(db)
	if err := store.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	logger.Info("Database connection established")
	return store, db, nil
}

func newMailer(cfg *config.Config) (service.Mailer, error) {
	switch cfg.Email.Provider {
	case config.EmailProviderSMTP:
		logger.Info("SMTP configuration", "host", cfg.SMTP.Host, "port", cfg.SMTP.Port)
		return service.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password, cfg.SMTP.From), nil
	case config.EmailProviderSendGrid:
		logger.Info("SendGrid configuration", "from", cfg.SendGrid.FromEmail)
		return service.NewSendGridMailer(cfg.SendGrid.APIKey, "", cfg.SendGrid.FromEmail, cfg.SendGrid.FromName), nil
	case config.EmailProviderNone, "":
		logger.Info("Email delivery disabled")
		return service.NewNoopMailer(), nil
	}
	return nil, errors.New("unknown email provider: " + cfg.Email.Provider)
}
