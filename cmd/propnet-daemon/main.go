package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"propnet/go-core/internal/adapters/rpc"
	"propnet/go-core/internal/app"
	"propnet/go-core/internal/config"
	"propnet/go-core/internal/network"
	"propnet/go-core/internal/observability"
	"propnet/go-core/internal/storage"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	rpcAddr := flag.String("rpc-addr", "", "JSON-RPC listen address (overrides config)")
	configPath := flag.String("config", "", "Path to config.yaml (optional)")
	dataDir := flag.String("data-dir", "", "Directory for snapshot data (overrides config)")
	rpcToken := flag.String("rpc-token", "", "RPC token for Authorization/X-Propnet-RPC-Token (optional)")
	flag.Parse()
	if *showVersion {
		fmt.Printf("propnet-daemon version=%s commit=%s build_date=%s\n", version, commit, buildDate)
		return
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg := config.LoadFromPath(*configPath)
	if *rpcAddr != "" {
		cfg.Server.ListenAddr = *rpcAddr
	}
	if *rpcToken != "" {
		cfg.Server.RPCToken = *rpcToken
	}
	if *dataDir != "" {
		cfg.Snapshot.Path = filepath.Join(*dataDir, "network.snapshot")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	observability.Register()

	store := storage.NewSnapshotStore(cfg.Snapshot.Path, cfg.Snapshot.Passphrase)
	service := app.NewService(app.Options{
		IDs:      network.RandomIDs,
		MaxSteps: cfg.Engine.MaxStepsPerCommand,
		Backlog:  cfg.Notifications.Backlog,
		Store:    store,
		Logger:   logger,
	})

	if err := service.LoadSnapshot(); err != nil {
		if errors.Is(err, storage.ErrNoSnapshot) {
			logger.Info("no snapshot found, starting empty", "path", cfg.Snapshot.Path)
		} else {
			logger.Error("snapshot load failed", "path", cfg.Snapshot.Path, "error", err)
			os.Exit(1)
		}
	} else {
		logger.Info("snapshot loaded", "path", cfg.Snapshot.Path)
	}

	server := rpc.NewServer(cfg.Server, cfg.RateLimit, service, logger)

	logger.Info("propnet-daemon starting", "version", version)
	if err := server.Run(ctx); err != nil {
		logger.Error("propnet-daemon failed", "error", err)
		os.Exit(1)
	}

	if err := service.SaveSnapshot(); err != nil {
		logger.Error("snapshot save on shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("propnet-daemon stopped")
}
