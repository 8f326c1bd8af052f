package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/thep200/star-neighbours/api"
	"github.com/thep200/star-neighbours/internal/server"
	"github.com/thep200/star-neighbours/pkg/log"
)

func main() {
	ctx := context.Background()
	logger, _ := log.NewCslLogger()

	// Khởi tạo facade: config, database, fetcher, engine
	neighbourApi := api.NewNeighbourAPI()
	if err := neighbourApi.Initialize(ctx); err != nil {
		logger.Error(ctx, "Failed to initialize: %v", err)
		os.Exit(1)
	}
	defer neighbourApi.Close()

	srv, err := server.NewServer(logger, neighbourApi.Config(), neighbourApi)
	if err != nil {
		logger.Error(ctx, "Failed to create server: %v", err)
		os.Exit(1)
	}

	// Chạy server trong goroutine để main chờ tín hiệu shutdown
	go func() {
		if err := srv.Start(); err != nil {
			logger.Error(ctx, "Server error: %v", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info(ctx, "Received shutdown signal, gracefully shutting down...")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error(ctx, "Failed to stop server: %v", err)
	}
}
