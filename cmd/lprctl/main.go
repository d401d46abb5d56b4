package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"plate-lookup-service/internal/adapters/primary/cli"
	"plate-lookup-service/internal/app"
	"plate-lookup-service/internal/config"
	"plate-lookup-service/internal/core/services"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCmd(buildDeps)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func buildDeps(ctx context.Context) (*cli.Deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	app.InitLogger(cfg)

	clients, err := app.NewClients(ctx, cfg)
	if err != nil {
		return nil, err
	}
	pipeline, err := app.NewPipeline(cfg, clients)
	if err != nil {
		clients.Close()
		return nil, err
	}

	return &cli.Deps{
		Pipeline: pipeline,
		Images:   services.NewImageService(clients.Store),
		Close:    clients.Close,
	}, nil
}
