package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Gunvolt24/order-pipeline/config"
	"github.com/Gunvolt24/order-pipeline/internal/app"
)

func main() {
	_ = godotenv.Load(".env.local")

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	worker, cleanup, err := app.BootstrapWorker(ctx, &cfg)
	if err != nil {
		panic(err)
	}
	defer cleanup()

	if err := worker.Run(ctx); err != nil {
		worker.Logger.Errorf(ctx, "worker exited with error: %v", err)
	}
}
