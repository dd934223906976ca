package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"lendlocal-backend/internal/config"
	"lendlocal-backend/internal/jobs"
	"lendlocal-backend/internal/logger"
	"lendlocal-backend/internal/repository/postgres"
	"lendlocal-backend/internal/scheduler"
	"lendlocal-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit ('send-overdue-reminders' or 'all')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting LendLocal cronjob runner...", "log_level", cfg.Log.Level)

	if cfg.Storage.Type != config.StoragePostgres {
		log.Fatalf("The cronjob runner needs shared storage; storage.type is %q, expected %q", cfg.Storage.Type, config.StoragePostgres)
	}

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
	db, err := postgres.Open(context.Background(), cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	store := postgres.NewStore(db)

	// Initialize Services
	var mailer service.Mailer
	switch cfg.Email.Provider {
	case config.EmailProviderSMTP:
		mailer = service.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password, cfg.SMTP.From)
	case config.EmailProviderSendGrid:
		mailer = service.NewSendGridMailer(cfg.SendGrid.APIKey, "", cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
	default:
		logger.Warn("Email delivery disabled, reminders will only be logged")
		mailer = service.NewNoopMailer()
	}
	lendingService := service.NewLendingService(store, service.NewEmailService(mailer))

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(&jobs.Services{Lending: lendingService}, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		if err := runJobOnce(jobRunner, *runOnce); err != nil {
			logger.Error("Job execution failed", "job", *runOnce, "error", err)
			os.Exit(1)
		}
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler, err := scheduler.NewScheduler(jobRunner)
	if err != nil {
		log.Fatalf("Failed to initialize scheduler: %v", err)
	}

	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) error {
	switch jobName {
	case "send-overdue-reminders":
		return jobRunner.RunOverdueReminders()
	case "all":
		return jobRunner.RunAll()
	default:
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - send-overdue-reminders\n")
		fmt.Printf("  - all\n")
		return fmt.Errorf("unknown job name %q", jobName)
	}
}
