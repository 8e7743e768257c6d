package attrs

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/zengm-games/zengm-sub021/internal/league"
	"github.com/zengm-games/zengm-sub021/internal/store"
)

func newTestLeague(t *testing.T) (*Service, int) {
	t.Helper()
	mem := store.NewMemory()
	lid, err := league.Create(context.Background(), mem, league.CreateRequest{
		Name:           "Attrs Test",
		TID:            0,
		StartingSeason: 2026,
		Rand:           rand.New(rand.NewSource(7)),
	})
	if err != nil {
		t.Fatalf("create league: %v", err)
	}
	return New(mem, nil, nil), lid
}

func intp(v int) *int { return &v }

func TestLoadFromStore(t *testing.T) {
	svc, lid := newTestLeague(t)

	cfg, err := svc.Load(context.Background(), lid)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Name != "Attrs Test" || cfg.Season != 2026 || cfg.NumTeams != 30 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadMissingLeague(t *testing.T) {
	svc := New(store.NewMemory(), nil, nil)
	if _, err := svc.Load(context.Background(), 42); err != league.ErrLeagueNotFound {
		t.Fatalf("expected ErrLeagueNotFound, got %v", err)
	}
}

func TestUpdatePersistsDiff(t *testing.T) {
	svc, lid := newTestLeague(t)
	ctx := context.Background()

	cfg, err := svc.Update(ctx, lid, league.Settings{DaysLeft: intp(10)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if cfg.DaysLeft != 10 {
		t.Fatalf("days left %d, want 10", cfg.DaysLeft)
	}

	// A fresh service reading the same store sees the change.
	again := New(svc.store, nil, nil)
	cfg2, err := again.Load(ctx, lid)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if cfg2.DaysLeft != 10 {
		t.Fatalf("reloaded days left %d, want 10", cfg2.DaysLeft)
	}
}

func TestUpdateWrappedKeyOpensEra(t *testing.T) {
	svc, lid := newTestLeague(t)
	ctx := context.Background()

	if _, err := svc.Update(ctx, lid, league.Settings{SalaryCap: intp(100000)}); err != nil {
		t.Fatalf("update: %v", err)
	}

	history, err := svc.History(ctx, lid, "salaryCap")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected one era, got %d", len(history))
	}
	if history[0].Start != 2026 {
		t.Fatalf("era starts %d, want 2026", history[0].Start)
	}
	var value int
	if err := json.Unmarshal(history[0].Value, &value); err != nil || value != 100000 {
		t.Fatalf("era value %d (%v), want 100000", value, err)
	}

	// Same-season change amends the era instead of stacking another.
	if _, err := svc.Update(ctx, lid, league.Settings{SalaryCap: intp(110000)}); err != nil {
		t.Fatalf("second update: %v", err)
	}
	history, _ = svc.History(ctx, lid, "salaryCap")
	if len(history) != 1 {
		t.Fatalf("same-season change stacked eras: %d", len(history))
	}

	// A later season opens a new era.
	if _, err := svc.Update(ctx, lid, league.Settings{Season: intp(2027)}); err != nil {
		t.Fatalf("advance season: %v", err)
	}
	if _, err := svc.Update(ctx, lid, league.Settings{SalaryCap: intp(120000)}); err != nil {
		t.Fatalf("third update: %v", err)
	}
	history, _ = svc.History(ctx, lid, "salaryCap")
	if len(history) != 2 {
		t.Fatalf("expected two eras after season change, got %d", len(history))
	}

	// The wrapped history survives a cold reload.
	again := New(svc.store, nil, nil)
	cfg, err := again.Load(ctx, lid)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if cfg.SalaryCap != 120000 {
		t.Fatalf("reloaded cap %d, want current era value 120000", cfg.SalaryCap)
	}
	reloaded, err := again.History(ctx, lid, "salaryCap")
	if err != nil {
		t.Fatalf("reloaded history: %v", err)
	}
	if len(reloaded) != 2 {
		t.Fatalf("reloaded history has %d eras, want 2", len(reloaded))
	}
}

func TestUpdateNoopPersistsNothing(t *testing.T) {
	svc, lid := newTestLeague(t)
	ctx := context.Background()

	before, err := svc.Load(ctx, lid)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	after, err := svc.Update(ctx, lid, league.Settings{SalaryCap: intp(before.SalaryCap)})
	if err != nil {
		t.Fatalf("noop update: %v", err)
	}
	if after.SalaryCap != before.SalaryCap {
		t.Fatalf("noop update changed config")
	}
	// The creation-time era is still the only one.
	history, _ := svc.History(ctx, lid, "salaryCap")
	if len(history) != 1 {
		t.Fatalf("noop update changed history: %d eras", len(history))
	}
	var value int
	if err := json.Unmarshal(history[0].Value, &value); err != nil || value != before.SalaryCap {
		t.Fatalf("noop update rewrote the creation era: %s", history[0].Value)
	}
}

func TestHistoryKeepsCreationValue(t *testing.T) {
	svc, lid := newTestLeague(t)
	ctx := context.Background()

	created, err := svc.Load(ctx, lid)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	// Advance a season, then change the cap. The creation-time value
	// must survive as the first era.
	if _, err := svc.Update(ctx, lid, league.Settings{Season: intp(2027)}); err != nil {
		t.Fatalf("advance season: %v", err)
	}
	if _, err := svc.Update(ctx, lid, league.Settings{SalaryCap: intp(100000)}); err != nil {
		t.Fatalf("set cap: %v", err)
	}

	history, err := svc.History(ctx, lid, "salaryCap")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected creation era plus change, got %d eras", len(history))
	}
	var first, second int
	if err := json.Unmarshal(history[0].Value, &first); err != nil {
		t.Fatalf("first era: %v", err)
	}
	if err := json.Unmarshal(history[1].Value, &second); err != nil {
		t.Fatalf("second era: %v", err)
	}
	if history[0].Start != created.StartingSeason || first != created.SalaryCap {
		t.Fatalf("creation era lost: {%d %d}, want {%d %d}",
			history[0].Start, first, created.StartingSeason, created.SalaryCap)
	}
	if history[1].Start != 2027 || second != 100000 {
		t.Fatalf("change era {%d %d}, want {2027 100000}", history[1].Start, second)
	}

	// And the seeded history survives a cold reload too.
	again := New(svc.store, nil, nil)
	reloaded, err := again.History(ctx, lid, "salaryCap")
	if err != nil {
		t.Fatalf("reloaded history: %v", err)
	}
	if len(reloaded) != 2 {
		t.Fatalf("reloaded history has %d eras, want 2", len(reloaded))
	}
}

// flakyStore lets a test refuse attribute writes on demand.
type flakyStore struct {
	store.Store
	fail bool
}

func (f *flakyStore) SetAttributes(ctx context.Context, lid int, records []league.AttributeRecord) error {
	if f.fail {
		return errors.New("write refused")
	}
	return f.Store.SetAttributes(ctx, lid, records)
}

func TestUpdateFailedWriteLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	lid, err := league.Create(ctx, mem, league.CreateRequest{
		Name:           "Flaky",
		TID:            0,
		StartingSeason: 2026,
		Rand:           rand.New(rand.NewSource(7)),
	})
	if err != nil {
		t.Fatalf("create league: %v", err)
	}
	fs := &flakyStore{Store: mem}
	svc := New(fs, nil, nil)

	before, err := svc.Load(ctx, lid)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	fs.fail = true
	if _, err := svc.Update(ctx, lid, league.Settings{DaysLeft: intp(3), SalaryCap: intp(100000)}); err == nil {
		t.Fatalf("expected write error")
	}

	// The failed write must not have touched the live config or the
	// era histories, or a retry would diff to nothing.
	cfg, err := svc.Load(ctx, lid)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if cfg.DaysLeft != before.DaysLeft || cfg.SalaryCap != before.SalaryCap {
		t.Fatalf("failed write mutated live config: %+v", cfg)
	}
	history, _ := svc.History(ctx, lid, "salaryCap")
	if len(history) != 1 {
		t.Fatalf("failed write touched era history: %d eras", len(history))
	}
	var value int
	if err := json.Unmarshal(history[0].Value, &value); err != nil || value != before.SalaryCap {
		t.Fatalf("failed write rewrote the creation era: %s", history[0].Value)
	}

	// The retry sees the same diff and lands it.
	fs.fail = false
	cfg, err = svc.Update(ctx, lid, league.Settings{DaysLeft: intp(3), SalaryCap: intp(100000)})
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if cfg.DaysLeft != 3 || cfg.SalaryCap != 100000 {
		t.Fatalf("retry did not apply: %+v", cfg)
	}
	fresh := New(mem, nil, nil)
	persisted, err := fresh.Load(ctx, lid)
	if err != nil {
		t.Fatalf("fresh load: %v", err)
	}
	if persisted.DaysLeft != 3 || persisted.SalaryCap != 100000 {
		t.Fatalf("retry not persisted: %+v", persisted)
	}
}

func TestUpdateDropsNaNDifficulty(t *testing.T) {
	svc, lid := newTestLeague(t)
	ctx := context.Background()

	nan := math.NaN()
	cfg, err := svc.Update(ctx, lid, league.Settings{Difficulty: &nan, DaysLeft: intp(5)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if math.IsNaN(cfg.Difficulty) {
		t.Fatalf("NaN difficulty applied")
	}
	if cfg.DaysLeft != 5 {
		t.Fatalf("batch dropped alongside NaN key")
	}
}
