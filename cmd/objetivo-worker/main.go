package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/deciofranchini-oss/objetivo/internal/amqp"
	"github.com/deciofranchini-oss/objetivo/internal/cli"
	"github.com/deciofranchini-oss/objetivo/internal/ledger"
	"github.com/deciofranchini-oss/objetivo/internal/sheets"
	gsheet "github.com/deciofranchini-oss/objetivo/internal/sheets/google"
	mem "github.com/deciofranchini-oss/objetivo/internal/sheets/memory"
	"github.com/deciofranchini-oss/objetivo/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting objetivo-worker")

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}
	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, logger,
		cfg.AMQPExtractQueue, cfg.AMQPBackupQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	var writer sheets.BackupWriter
	if cfg.SheetsBackupEnabled {
		client, err := gsheet.New(context.Background(), cfg.SpreadsheetID, cfg.SheetBaseName)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		writer = client
		logger.Info("Google Sheets backup enabled", "spreadsheet_id", cfg.SpreadsheetID)
	} else {
		writer = mem.New()
		logger.Info("Google Sheets backup disabled, using in-memory writer")
	}

	// The extract consumer saves drafts through the same service the
	// API uses, so backup messages flow for worker-created rows too.
	service := ledger.NewService(repo, amqpClient, cfg.AMQPExtractQueue, cfg.AMQPBackupQueue, logger)
	extractWorker := worker.NewExtractWorker(service, logger)
	backupWorker := worker.NewBackupWorker(repo, writer, cfg.BackupBatchSize, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqpClient.ConsumeDocumentExtract(ctx, cfg.AMQPExtractQueue, func(msg *amqp.DocumentExtractMessage) error {
			return extractWorker.HandleExtractMessage(ctx, msg)
		})
	})

	g.Go(func() error {
		return amqpClient.ConsumeBackupSync(ctx, cfg.AMQPBackupQueue, func(msg *amqp.BackupSyncMessage) error {
			return backupWorker.HandleBackupMessage(ctx, msg)
		})
	})

	// Periodic sweep catches transactions whose messages were lost.
	g.Go(func() error {
		return backupWorker.Run(ctx, cfg.BackupInterval)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
