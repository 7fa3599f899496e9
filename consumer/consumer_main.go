package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/tnqbao/gau-photobooth/config"
	"github.com/tnqbao/gau-photobooth/consumer/worker"
	infraPkg "github.com/tnqbao/gau-photobooth/infra"
	"github.com/tnqbao/gau-photobooth/repository"
)

func main() {
	err := godotenv.Load("../.env")
	if err != nil {
		log.Println("No .env file found, continuing with environment variables")
	}

	cfg := config.NewConfig()
	infra := infraPkg.InitInfra(cfg)
	repo := repository.InitRepository(infra)

	// Initialize context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start Cleanup Consumer
	cleanupConsumer := worker.NewCleanupConsumer(infra.RabbitMQ.Channel, infra, repo)
	if err := cleanupConsumer.Start(ctx); err != nil {
		infra.Logger.ErrorWithContextf(ctx, err, "Failed to start Cleanup consumer: %v", err)
		log.Fatalf("Failed to start Cleanup consumer: %v", err)
	}

	// Start orphan reconciler
	reconciler := worker.NewReconciler(
		infra.Minio,
		repo.PhotoRepo,
		infra.Logger,
		cfg.EnvConfig.Reconcile.Interval,
		cfg.EnvConfig.Reconcile.GracePeriod,
	)
	reconciler.Start(ctx)

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	infra.Logger.InfoWithContextf(ctx, "Shutting down consumer...")
	cancel() // Cancel context to stop consumers

	infra.Logger.InfoWithContextf(ctx, "Consumer exited properly")
}
