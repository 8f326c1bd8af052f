package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/thep200/star-neighbours/cfg"
	"github.com/thep200/star-neighbours/internal/model"
	"github.com/thep200/star-neighbours/pkg/db"
	"github.com/thep200/star-neighbours/pkg/kafka"
	"github.com/thep200/star-neighbours/pkg/log"
)

func main() {
	// Load configuration
	loader, _ := cfg.NewViperLoader()
	config, err := loader.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger, _ := log.NewCslLogger()

	// Setup database
	mysql, _ := db.NewMysql(config)
	discoveryModel, _ := model.NewDiscovery(config, logger, mysql)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := mysql.Migrate(discoveryModel); err != nil {
		logger.Error(ctx, "Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Setup signal handling for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	startDiscoveryConsumer(ctx, config, logger, discoveryModel)

	// Wait for termination signal
	<-sigCh
	logger.Info(ctx, "Received shutdown signal, gracefully shutting down...")
	cancel()
}

func startDiscoveryConsumer(ctx context.Context, config *cfg.Config, logger log.Logger, discoveryModel *model.Discovery) {
	consumer := kafka.NewConsumer(config, logger, config.Kafka.Producer.TopicDiscovery, "discovery-consumer-group")

	batchSize := 100
	batchTimeout := 5 * time.Second

	// Channel to collect messages for batch processing
	messages := make(chan model.DiscoveryMessage, batchSize*2)

	// Batch processor
	go processBatchedDiscoveries(ctx, messages, batchSize, batchTimeout, logger, discoveryModel)

	// Register handler for discovery messages
	consumer.RegisterHandler("discovery", func(data []byte) error {
		var msg model.DiscoveryMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return fmt.Errorf("failed to unmarshal discovery message: %w", err)
		}

		select {
		case messages <- msg:
			// Message added to batch
		case <-ctx.Done():
			return ctx.Err()
		}

		return nil
	})

	// Start consumer in a goroutine
	go func() {
		if err := consumer.Start(ctx); err != nil {
			logger.Error(ctx, "Discovery consumer error: %v", err)
		}
	}()

	logger.Info(ctx, "Discovery consumer started successfully")
}

func processBatchedDiscoveries(ctx context.Context, messages <-chan model.DiscoveryMessage, batchSize int,
	batchTimeout time.Duration, logger log.Logger, discoveryModel *model.Discovery) {

	var batch []model.DiscoveryMessage
	timer := time.NewTimer(batchTimeout)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := discoveryModel.CreateBatch(batch); err != nil {
			logger.Error(ctx, "Failed to persist %d discovery records: %v", len(batch), err)
		} else {
			logger.Info(ctx, "Persisted %d discovery records", len(batch))
		}
		batch = nil
	}

	for {
		select {
		case <-ctx.Done():
			// Process remaining messages before exiting
			flush()
			return

		case msg := <-messages:
			batch = append(batch, msg)
			if len(batch) >= batchSize {
				flush()
				timer.Reset(batchTimeout)
			}

		case <-timer.C:
			flush()
			timer.Reset(batchTimeout)
		}
	}
}
