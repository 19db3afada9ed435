package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/jonlam1989/Capstone/internal/amqp"
	"github.com/jonlam1989/Capstone/internal/config"
	applog "github.com/jonlam1989/Capstone/internal/log"
	"github.com/jonlam1989/Capstone/internal/storage"
)

// audit-worker consumes customer-update events and writes an audit line
// per event after re-reading the current record from the database. The
// event itself carries no profile data.
func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	logger := applog.New(applog.ParseLevel(cfg.LogLevel)).WithComponent("audit")
	applog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the audit worker")
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		err := client.ConsumeCustomerUpdates(ctx, func(msg *amqp.CustomerUpdateMessage) error {
			customers, err := repo.LoadCustomers(ctx)
			if err != nil {
				return err
			}
			for _, c := range customers {
				if c.SSN == msg.SSN {
					logger.Info("Customer profile updated",
						"name", c.FullName(),
						"city", c.City,
						"state", c.State,
						"updated_at", msg.UpdatedAt)
					return nil
				}
			}
			logger.Warn("Update event for unknown customer", "updated_at", msg.UpdatedAt)
			return nil
		})
		if err != nil && err != context.Canceled {
			logger.Error("Message consumption failed", "error", err)
		}
		cancel()
	}()

	logger.Info("Audit worker started", "queue", cfg.AMQPQueue)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Consumer stopped")
	}
}
