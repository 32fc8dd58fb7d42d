package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"finsight/internal/amqp"
	"finsight/internal/assistant"
	"finsight/internal/config"
	"finsight/internal/records"
	"finsight/internal/service"
	"finsight/internal/storage"
	"finsight/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting finsight")

	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	// Conversation storage
	repo, err := storage.NewRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize conversation storage", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// AMQP client for consuming requests and calling collaborator services
	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	if err := amqpClient.DeclareQueue(cfg.AIQueue); err != nil {
		logger.Error("Failed to declare queue", "error", err, "queue", cfg.AIQueue)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Gemini assistant runs disabled when GEMINI_API_KEY is missing, so
	// the analytical patterns keep working without it.
	gemini, err := assistant.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		logger.Error("Failed to initialize Gemini client", "error", err)
		os.Exit(1)
	}
	defer gemini.Close()

	recordsClient := records.NewClient(amqpClient, cfg.ExpenseQueue, cfg.BudgetQueue, cfg.RPCTimeout)
	svc := service.New(recordsClient, recordsClient, gemini, repo)
	dispatcher := worker.NewDispatcher(svc)

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return amqpClient.ConsumeRequests(ctx, cfg.AIQueue, dispatcher.Handle)
	})

	logger.Info("finsight ready", "queue", cfg.AIQueue, "exchange", cfg.AMQPExchange)

	if err := group.Wait(); err != nil && err != context.Canceled {
		logger.Error("Shutting down with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Shutdown complete")
}
