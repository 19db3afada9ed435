package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/jonlam1989/Capstone/internal/amqp"
	"github.com/jonlam1989/Capstone/internal/cache"
	"github.com/jonlam1989/Capstone/internal/config"
	"github.com/jonlam1989/Capstone/internal/core"
	"github.com/jonlam1989/Capstone/internal/dataset"
	apphttp "github.com/jonlam1989/Capstone/internal/http"
	applog "github.com/jonlam1989/Capstone/internal/log"
	"github.com/jonlam1989/Capstone/internal/services"
	"github.com/jonlam1989/Capstone/internal/storage"
)

func main() {
	// .env is for local development; absence is not an error.
	_ = godotenv.Load()

	cfg := config.Load()

	logger := applog.New(applog.ParseLevel(cfg.LogLevel))
	applog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	store := dataset.NewStore(repo, repo)
	loaded := false
	if err := store.Load(context.Background()); err != nil {
		// The dashboard stays up with empty data; /readyz reports the state.
		logger.Error("Dataset load failed", "error", err)
	} else {
		loaded = true
	}

	var events *amqp.Client
	if cfg.AMQPURL != "" {
		events, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer events.Close()
		logger.Info("AMQP event publishing enabled", "exchange", cfg.AMQPExchange)
	} else {
		logger.Info("AMQP event publishing disabled, no AMQP_URL provided")
	}

	statements := services.NewStatementService(store, cache.New[core.Statement](cfg.CacheSize, cfg.CacheTTL))
	srv := apphttp.NewServer(":"+cfg.Port,
		services.NewTransactionService(store),
		services.NewCustomerService(store, events, statements),
		statements,
		func() bool { return loaded })

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

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

	logger.Info("Starting dashboard server", "port", cfg.Port, "loaded", loaded)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
