package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kwanghifi/kwanghifi/internal/amqp"
	"github.com/kwanghifi/kwanghifi/internal/cache"
	"github.com/kwanghifi/kwanghifi/internal/cli"
	gsheet "github.com/kwanghifi/kwanghifi/internal/sheets/google"
	"github.com/kwanghifi/kwanghifi/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting kwanghifi-worker")

	if cfg.AMQPURL == "" {
		logger.Error("KWANGHIFI_AMQP_URL is required for the worker")
		os.Exit(1)
	}
	if cfg.SpreadsheetID == "" {
		logger.Error("KWANGHIFI_SPREADSHEET_ID is required for the worker")
		os.Exit(1)
	}

	sheetsClient, err := gsheet.New(context.Background(), cfg.SpreadsheetID, cfg.SheetName)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized",
		"spreadsheet_id", cfg.SpreadsheetID,
		"sheet", cfg.SheetName)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	caches := cache.NewManager()
	caches.Register("sheet_rows", sheetsClient)
	caches.StartCleanup(10 * time.Minute)
	defer caches.Stop()

	mirror := worker.NewMirrorWorker(sheetsClient, sheetsClient)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqpClient.ConsumeSaleEvents(gctx, mirror.HandleSaleEvent)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
