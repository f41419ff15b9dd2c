package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"batchkv/internal/config"
	httpserver "batchkv/internal/http"
	"batchkv/pkg/batch"
	"batchkv/pkg/clock"
	"batchkv/pkg/expiry"
	"batchkv/pkg/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	configPath := flag.String("config", "config.yaml", "path to YAML config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	initLogger(&cfg)

	var policy batch.ExpiryPolicy
	if cfg.Storage.DefaultTTL > 0 {
		policy = expiry.NewTTL(cfg.Storage.DefaultTTL, clock.System{})
	}

	db, err := store.Open(store.Options{
		DataDir: cfg.Storage.DataDir,
		Policy:  policy,
	})
	if err != nil {
		fmt.Printf("Failed to open store: %v\n", err)
		os.Exit(1)
	}

	server := httpserver.NewServer(db, strconv.Itoa(cfg.Server.Port))
	if err := server.Start(); err != nil {
		fmt.Printf("Failed to start server: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("batchkv started. DataDir=%s URL=%s\n", cfg.Storage.DataDir, server.URL)
	fmt.Println("Press Ctrl+C to stop...")

	<-ctx.Done()

	if err := server.Stop(); err != nil {
		fmt.Printf("Error stopping server: %v\n", err)
	}
	if err := db.Close(); err != nil {
		fmt.Printf("Error closing store: %v\n", err)
	}

	fmt.Println("batchkv stopped")
}
