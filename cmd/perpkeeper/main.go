package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"perpkeeper/internal/config"
	"perpkeeper/internal/keeper"
	"perpkeeper/internal/logger"
	"perpkeeper/internal/oracle"
	"perpkeeper/internal/relayer"
	"perpkeeper/internal/store"
	"perpkeeper/internal/subgraph"
	statushttp "perpkeeper/internal/transport/http/status"
	"perpkeeper/internal/types"
)

func main() {
	cfgPath := os.Getenv("PERPKEEPER_CONFIG")
	if cfgPath == "" {
		cfgPath = "configs/config.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	logFile, err := setupLogOutput(cfg.App.LogPath)
	if err != nil {
		log.Fatalf("opening log file: %v", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}
	logger.SetLevel(cfg.App.LogLevel)
	logger.Infof("config loaded from %s", cfgPath)
	config.Watch(cfgPath, func(fresh *config.Config) {
		logger.SetLevel(fresh.App.LogLevel)
		logger.Infof("config reloaded, log level now %s", fresh.App.LogLevel)
	}, func(err error) {
		logger.Warnf("config reload failed, keeping current settings: %v", err)
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	oracleClient, err := oracle.NewClient(oracle.Config{
		Endpoint: cfg.Oracle.Endpoint,
		Username: cfg.Oracle.Username,
		Password: cfg.Oracle.Password,
		Timeout:  time.Duration(cfg.Oracle.TimeoutSeconds) * time.Second,
	}, nil)
	if err != nil {
		log.Fatalf("oracle client: %v", err)
	}
	indexerClient, err := subgraph.NewClient(cfg.Indexer.Endpoint, time.Duration(cfg.Indexer.TimeoutSeconds)*time.Second, nil)
	if err != nil {
		log.Fatalf("indexer client: %v", err)
	}
	relayerClient, err := relayer.NewClient(relayer.Config{
		Endpoint:            cfg.Relayer.Endpoint,
		APIKey:              cfg.Relayer.APIKey,
		OrderManager:        cfg.Relayer.OrderManager,
		BatchHandler:        cfg.Relayer.BatchHandler,
		GasLimitSettlement:  cfg.Relayer.GasLimitSettlement,
		GasLimitLiquidation: cfg.Relayer.GasLimitLiquidation,
	}, nil)
	if err != nil {
		log.Fatalf("relayer client: %v", err)
	}
	history, err := store.Open(cfg.Store.Path)
	if err != nil {
		log.Fatalf("opening round store: %v", err)
	}
	defer history.Close()

	collateralFeeds := make([]string, 0, len(cfg.Oracle.CollateralFeeds))
	for _, id := range cfg.Oracle.CollateralFeeds {
		collateralFeeds = append(collateralFeeds, types.FeedID(id))
	}
	k := keeper.New(keeper.Config{
		Interval:        cfg.Interval(),
		BatchSize:       cfg.Keeper.BatchSize,
		CollateralFeeds: collateralFeeds,
	}, oracleClient, indexerClient, relayerClient, history)

	statusServer := statushttp.NewServer(cfg.Keeper.HTTPAddr, history)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return k.Run(gctx) })
	g.Go(func() error { return statusServer.Start(gctx) })
	if err := g.Wait(); err != nil && ctx.Err() == nil {
		log.Fatalf("keeper exited: %v", err)
	}
	logger.Infof("shutdown complete")
}

func setupLogOutput(path string) (*os.File, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, nil
	}
	dir := filepath.Dir(trimmed)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	file, err := os.OpenFile(trimmed, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	mw := io.MultiWriter(os.Stdout, file)
	log.SetOutput(mw)
	logger.SetOutput(mw)
	return file, nil
}
