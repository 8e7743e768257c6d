package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/zengm-games/zengm-sub021/internal/attrs"
	"github.com/zengm-games/zengm-sub021/internal/config"
	"github.com/zengm-games/zengm-sub021/internal/db"
	"github.com/zengm-games/zengm-sub021/internal/kvstore"
	"github.com/zengm-games/zengm-sub021/internal/league"
	"github.com/zengm-games/zengm-sub021/internal/store"
)

// The worker keeps derived data warm: per-league draft pick value
// tables in the cache, and team strategies recomputed from current
// rosters. Both are safe to rebuild at any time, so failures just log
// and wait for the next tick.
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
		logger.Warn("no redis configured, cache refresh will not be shared")
		kv = kvstore.NewMemory()
	}
	defer kv.Close()

	attrSvc := attrs.New(st, logger, nil)
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))

	runOnce := strings.EqualFold(strings.TrimSpace(os.Getenv("ZENGM_WORKER_RUN_ONCE")), "true")
	if runOnce {
		if err := refreshAll(ctx, logger, st, attrSvc, kv, rnd, cfg.PickValueRefreshEvery); err != nil {
			logger.Error("refresh failed", "err", err)
			os.Exit(1)
		}
		logger.Info("worker run-once completed")
		return
	}

	ticker := time.NewTicker(cfg.PickValueRefreshEvery)
	defer ticker.Stop()

	logger.Info("worker started", "refresh_every", cfg.PickValueRefreshEvery.String())
	for {
		select {
		case <-ctx.Done():
			logger.Info("worker shutdown")
			return
		case <-ticker.C:
			if err := refreshAll(ctx, logger, st, attrSvc, kv, rnd, cfg.PickValueRefreshEvery); err != nil {
				logger.Error("refresh failed", "err", err)
				continue
			}
		}
	}
}

func refreshAll(ctx context.Context, logger *slog.Logger, st store.Store, attrSvc *attrs.Service, kv kvstore.KVStore, rnd *rand.Rand, interval time.Duration) error {
	leagues, err := st.Leagues(ctx)
	if err != nil {
		return err
	}
	for _, meta := range leagues {
		if err := refreshLeague(ctx, st, attrSvc, kv, rnd, meta.LID, interval); err != nil {
			logger.Error("league refresh failed", "lid", meta.LID, "err", err)
			continue
		}
		logger.Info("league refreshed", "lid", meta.LID)
	}
	return nil
}

func refreshLeague(ctx context.Context, st store.Store, attrSvc *attrs.Service, kv kvstore.KVStore, rnd *rand.Rand, lid int, interval time.Duration) error {
	cfg, err := attrSvc.Load(ctx, lid)
	if err != nil {
		return err
	}

	table := league.EstimatePickValues(cfg, rnd)
	raw, err := json.Marshal(table)
	if err != nil {
		return err
	}
	// Keep the entry a little past the next refresh so readers never
	// see a gap.
	if err := kv.Set(ctx, kvstore.PickValuesKey(lid), raw, 2*interval); err != nil {
		return err
	}

	return recomputeStrategies(ctx, st, lid)
}

// recomputeStrategies reclassifies every team from its current roster
// strength and rewrites the teams store when anything changed.
func recomputeStrategies(ctx context.Context, st store.Store, lid int) error {
	snap, err := st.Snapshot(ctx, lid)
	if err != nil {
		return err
	}
	changed := false
	for i := range snap.Teams {
		want := league.RecomputeStrategy(snap.Players, snap.Teams[i].TID)
		if snap.Teams[i].Strategy != want {
			snap.Teams[i].Strategy = want
			changed = true
		}
	}
	if !changed {
		return nil
	}
	records := make([]any, len(snap.Teams))
	for i := range snap.Teams {
		records[i] = snap.Teams[i]
	}
	return st.ReplaceRecords(ctx, lid, "teams", records)
}
