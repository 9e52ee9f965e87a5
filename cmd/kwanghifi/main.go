package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kwanghifi/kwanghifi/internal/amqp"
	"github.com/kwanghifi/kwanghifi/internal/cli"
	apphttp "github.com/kwanghifi/kwanghifi/internal/http"
	"github.com/kwanghifi/kwanghifi/internal/services"
	"github.com/kwanghifi/kwanghifi/internal/store"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	st, err := store.New(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize store", "error", err, "backend", cfg.StoreBackend)
		os.Exit(1)
	}
	if st.Cleanup != nil {
		defer st.Cleanup()
	}

	// Sale events are optional; the ledger works without a broker.
	var publisher *amqp.Client
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without sale events", "error", err)
		} else {
			logger.Info("Initialized AMQP client", "exchange", cfg.AMQPExchange)
			publisher = client
			defer publisher.Close()
		}
	}

	sales := services.NewSalesService(st.Store, publisher, logger)

	loadCtx, loadCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := sales.Load(loadCtx); err != nil {
		logger.Warn("Failed to load sale records, starting with an empty ledger", "error", err)
	}
	loadCancel()

	srv := apphttp.NewServer(":"+cfg.Port, sales, logger, cfg.RateLimitPerMinute)

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

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
		logger.Info("Starting kwanghifi server", "port", cfg.Port, "backend", cfg.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
