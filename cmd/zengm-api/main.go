package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zengm-games/zengm-sub021/internal/api"
	"github.com/zengm-games/zengm-sub021/internal/attrs"
	"github.com/zengm-games/zengm-sub021/internal/config"
	"github.com/zengm-games/zengm-sub021/internal/db"
	"github.com/zengm-games/zengm-sub021/internal/kvstore"
	"github.com/zengm-games/zengm-sub021/internal/push"
	"github.com/zengm-games/zengm-sub021/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadAPIFromEnv()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	st := store.NewPostgres(pool, logger)
	if cfg.StartupEnsureSchema {
		if err := st.EnsureSchema(ctx); err != nil {
			logger.Error("schema init failed", "err", err)
			os.Exit(1)
		}
	}

	var kv kvstore.KVStore
	if cfg.RedisURL != "" {
		redisKV, err := kvstore.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("redis connect failed", "err", err)
			os.Exit(1)
		}
		kv = redisKV
	} else {
		logger.Warn("no redis configured, using in-process cache")
		kv = kvstore.NewMemory()
	}
	defer kv.Close()

	hub := push.NewHub(logger)
	attrSvc := attrs.New(st, logger, hub)

	server := api.New(cfg, logger, st, attrSvc, kv, hub)
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("zengm api listening", "addr", cfg.Addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
}
