package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"showlog/pipeline"
	"showlog/shared/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Create context that responds to signals
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	p := pipeline.New(cfg)
	if err := p.Initialize(ctx); err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}

	if _, err := p.Run(ctx); err != nil {
		log.Fatalf("Failed to run: %v", err)
	}
}
