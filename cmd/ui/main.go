package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trade-journal-go/internal/api"
	"trade-journal-go/internal/config"
	"trade-journal-go/internal/journal"
	"trade-journal-go/internal/kvstore"
	"trade-journal-go/internal/logger"
	"trade-journal-go/internal/scheduler"

	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Connect to the key-value store
	store, closer, err := kvstore.New(&cfg, log)
	if err != nil {
		log.Fatal("Failed to create store", zap.Error(err))
	}
	defer closer.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	repo := journal.NewRepository(store, log)
	// A store outage must not keep the server from starting; requests will
	// report the failure instead.
	if err := repo.Initialize(ctx); err != nil {
		log.Error("Failed to initialize journal keys", zap.Error(err))
	}

	var runner *scheduler.Runner
	if spec := cfg.Scheduler.ReconcileSpec; spec != "" {
		runner = scheduler.New(ctx, log)
		if _, err := runner.AddRecount(spec, repo); err != nil {
			log.Fatal("Failed to schedule recount", zap.Error(err))
		}
		runner.Start()
	}

	handler := api.NewHandler(repo, store, cfg.Store.Backend, log)
	server := api.NewServer(&cfg.Server, api.NewRouter(handler, &cfg.Server), log)
	server.Start()

	<-ctx.Done()
	log.Info("Shutdown signal received, gracefully shutting down...")

	if runner != nil {
		runner.Stop()
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Stop(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}

	log.Info("Server has been shut down.")
}
