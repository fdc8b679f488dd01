// bossmachine serves the Boss Machine API: minions and their work, ideas
// worth at least a million dollars, and meetings, all held in memory.
//
// Routes are mounted under -base-path (default /api). The /admin control
// plane and /metrics sit next to them.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/bossmachine/bossmachine/internal/admin"
	"github.com/bossmachine/bossmachine/internal/api"
	"github.com/bossmachine/bossmachine/internal/config"
	"github.com/bossmachine/bossmachine/internal/core"
	"github.com/bossmachine/bossmachine/internal/store"
	pkgstore "github.com/bossmachine/bossmachine/pkg/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Getenv, os.Stdout); err != nil {
		log.Fatalf("bossmachine: %v", err)
	}
}

func run(ctx context.Context, args []string, getenv func(string) string, stdout io.Writer) error {
	cfg, err := config.Parse("bossmachine", args, getenv)
	if err != nil {
		return err
	}
	strategy, err := pkgstore.ParseIDStrategy(cfg.IDStrategy)
	if err != nil {
		return err
	}

	logger := core.NewLogger(cfg, stdout)
	srv := core.New(cfg, logger)
	memStore := store.New(strategy)
	srv.Registry.MustRegister(memStore.Collector())

	// API handlers
	api.NewHandler(memStore, srv.Middleware(), logger).Routes(srv.Router, cfg.BasePath)

	// Admin control plane
	admin.NewHandler(memStore, srv.Middleware(), memStore.Clock, logger).Routes(srv.Router)

	if cfg.SampleData {
		memStore.UseSampleData()
	}

	// Seed data replaces the sample records
	if cfg.SeedFile != "" {
		data, err := os.ReadFile(cfg.SeedFile)
		if err != nil {
			return fmt.Errorf("reading seed file: %w", err)
		}
		if err := memStore.LoadState(data); err != nil {
			return fmt.Errorf("loading seed data: %w", err)
		}
		logger.Info("loaded seed data", "file", cfg.SeedFile)
	}

	logger.Info("bossmachine ready",
		"port", cfg.Port,
		"base_path", cfg.BasePath,
		"id_strategy", strategy,
		"records", memStore.Counts(),
	)

	return srv.Serve(ctx)
}
