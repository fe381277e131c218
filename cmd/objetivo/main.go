package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deciofranchini-oss/objetivo/internal/amqp"
	"github.com/deciofranchini-oss/objetivo/internal/cli"
	apphttp "github.com/deciofranchini-oss/objetivo/internal/http"
	"github.com/deciofranchini-oss/objetivo/internal/ledger"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)

	if cfg.SeedOnStartup {
		if err := repo.SeedIfEmpty(context.Background()); err != nil {
			logger.Error("Failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// The broker is optional: without it documents are analyzed inline
	// and the spreadsheet backup runs only through the worker's sweep.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		var err error
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, logger,
			cfg.AMQPExtractQueue, cfg.AMQPBackupQueue)
		if err != nil {
			logger.Error("Failed to connect to AMQP, continuing without broker", "error", err)
			amqpClient = nil
		}
	}

	service := ledger.NewService(repo, amqpClient, cfg.AMQPExtractQueue, cfg.AMQPBackupQueue, logger)
	defer service.Close()

	srv := apphttp.NewServer(":"+cfg.Port, service, logger)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting objetivo server", "port", cfg.Port, "db_path", cfg.SQLiteDBPath)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
