package main

import (
	"context"
	"log"
	"net/http"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/typedraw/typedraw-server/internal/config"
	"github.com/typedraw/typedraw-server/internal/httpapi"
	"github.com/typedraw/typedraw-server/internal/hub"
	"github.com/typedraw/typedraw-server/internal/store"
)

func main() {
	cfg := config.Load()

	logger, err := buildLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	images, err := store.NewFSStore(cfg.DataDir)
	if err != nil {
		logger.Fatal("image store init failed", zap.Error(err))
	}

	ctx := context.Background()
	h := hub.NewHub(ctx, images, logger)

	// Build the router *with* the hub injected
	handler := httpapi.SetupRoutes(h, images, logger)

	logger.Info("listening", zap.String("addr", cfg.Addr))
	if err := http.ListenAndServe(cfg.Addr, handler); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func buildLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}
