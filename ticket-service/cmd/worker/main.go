package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"github.com/arunvm123/ticketavailability/ticket-service/config"
	"github.com/arunvm123/ticketavailability/ticket-service/pkg/logger"
	"github.com/arunvm123/ticketavailability/ticket-service/repository/postgres"
	"github.com/arunvm123/ticketavailability/ticket-service/worker"
	"github.com/segmentio/kafka-go"
)

func main() {
	// Load configuration (fallback to env variables if config file not found)
	cfg, err := config.Initialise("config.yaml", false)
	if err != nil {
		log.Printf("Config file not found or invalid, using environment variables: %v", err)
		cfg, err = config.Initialise("", true)
		if err != nil {
			log.Fatal("Failed to load configuration:", err)
		}
	}

	l := logger.InitializeZapLogger(logger.ZapConfig{
		Level:    cfg.Log.Level,
		Mode:     cfg.Log.Mode,
		Encoding: cfg.Log.Encoding,
	})
	defer l.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	l.Info(ctx, "Starting Ticket Service lookup worker")

	repo, err := postgres.NewLookupRepository(cfg.Database.GetDatabaseURL())
	if err != nil {
		l.Fatalf(ctx, "Failed to initialize repository: %v", err)
	}

	consumer := kafka.NewReader(kafka.ReaderConfig{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.LookupTopic,
		GroupID: cfg.Kafka.ConsumerGroup,
	})
	defer consumer.Close()

	processor := worker.NewLookupProcessor(repo, consumer, cfg.Worker.MaxWorkers, l)

	if err := processor.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		l.Fatalf(context.Background(), "Worker error: %v", err)
	}

	l.Info(context.Background(), "Worker stopped gracefully")
}
