package attrs

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"sync"

	"github.com/zengm-games/zengm-sub021/internal/league"
	"github.com/zengm-games/zengm-sub021/internal/push"
	"github.com/zengm-games/zengm-sub021/internal/store"
)

// Service owns the live game-attribute state for open leagues. All
// writes go through Update so the in-memory config, the persisted
// records and the UI push stream never disagree.
//
// A handful of keys are "wrapped": their persisted value is a history
// of (start season, value) eras rather than a bare value, so changing
// the salary cap mid-league does not rewrite the past.
type Service struct {
	store store.Store
	log   *slog.Logger
	hub   *push.Hub

	mu   sync.Mutex
	live map[int]*league.Config
	eras map[int]map[string][]league.Era
}

func New(st store.Store, logger *slog.Logger, hub *push.Hub) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store: st,
		log:   logger,
		hub:   hub,
		live:  map[int]*league.Config{},
		eras:  map[int]map[string][]league.Era{},
	}
}

// wrappedKeys mirrors the attribute keys stored as era histories.
var wrappedKeys = map[string]bool{
	"salaryCap":             true,
	"minContract":           true,
	"maxContract":           true,
	"numGamesPlayoffSeries": true,
}

// Load returns the live config for a league, reading it from the store
// on first access.
func (s *Service) Load(ctx context.Context, lid int) (league.Config, error) {
	s.mu.Lock()
	if cfg, ok := s.live[lid]; ok {
		out := *cfg
		s.mu.Unlock()
		return out, nil
	}
	s.mu.Unlock()

	records, err := s.store.Attributes(ctx, lid)
	if err != nil {
		return league.Config{}, err
	}
	if len(records) == 0 {
		return league.Config{}, league.ErrLeagueNotFound
	}

	cfg := league.DefaultConfig(0)
	eras := map[string][]league.Era{}
	bare := map[string]json.RawMessage{}
	flat := make([]league.AttributeRecord, 0, len(records))
	for _, rec := range records {
		if wrappedKeys[rec.Key] {
			var history []league.Era
			if err := json.Unmarshal(rec.Value, &history); err == nil && len(history) > 0 {
				eras[rec.Key] = history
				// The live config reads the current era.
				flat = append(flat, league.AttributeRecord{Key: rec.Key, Value: history[len(history)-1].Value})
				continue
			}
			// Creation writes wrapped keys as bare values; remember them
			// so they become the first era instead of being lost on the
			// first change.
			bare[rec.Key] = rec.Value
			flat = append(flat, rec)
			continue
		}
		flat = append(flat, rec)
	}
	cfg.ApplyRecords(flat)
	applyIdentityRecords(&cfg, records)
	cfg.LID = lid
	for key, value := range bare {
		eras[key] = []league.Era{{Start: cfg.StartingSeason, Value: value}}
	}

	s.mu.Lock()
	s.live[lid] = &cfg
	s.eras[lid] = eras
	out := cfg
	s.mu.Unlock()
	return out, nil
}

// applyIdentityRecords restores the keys ApplyRecords protects during
// file import. Loading from our own store is not an import; everything
// persisted is authoritative.
func applyIdentityRecords(cfg *league.Config, records []league.AttributeRecord) {
	for _, rec := range records {
		switch rec.Key {
		case "name":
			_ = json.Unmarshal(rec.Value, &cfg.Name)
		case "userTid":
			_ = json.Unmarshal(rec.Value, &cfg.UserTID)
		case "difficulty":
			_ = json.Unmarshal(rec.Value, &cfg.Difficulty)
		case "numTeams":
			_ = json.Unmarshal(rec.Value, &cfg.NumTeams)
		}
	}
}

// Forget drops a league's live state, for deletion.
func (s *Service) Forget(lid int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.live, lid)
	delete(s.eras, lid)
}

// Update applies a partial settings batch: diff against the live
// config, persist only the changed keys (opening a new era for wrapped
// ones), and notify subscribers. Returns the updated config.
func (s *Service) Update(ctx context.Context, lid int, settings league.Settings) (league.Config, error) {
	if _, err := s.Load(ctx, lid); err != nil {
		return league.Config{}, err
	}

	// Diff against a copy; the live config and era histories only
	// change once the store write has landed, so a failed persist
	// leaves a retry able to re-diff the same change.
	s.mu.Lock()
	next := *s.live[lid]
	changed := settings.Apply(&next)
	if len(changed) == 0 {
		s.mu.Unlock()
		return next, nil
	}

	nextEras := map[string][]league.Era{}
	persist := make([]league.AttributeRecord, 0, len(changed))
	for _, rec := range changed {
		if !wrappedKeys[rec.Key] {
			persist = append(persist, rec)
			continue
		}
		history := slices.Clone(s.eras[lid][rec.Key])
		if n := len(history); n > 0 && history[n-1].Start == next.Season {
			// Same-season change amends the current era instead of
			// stacking a zero-length one.
			history[n-1].Value = rec.Value
		} else {
			history = append(history, league.Era{Start: next.Season, Value: rec.Value})
		}
		nextEras[rec.Key] = history
		raw, err := json.Marshal(history)
		if err != nil {
			s.mu.Unlock()
			return league.Config{}, err
		}
		persist = append(persist, league.AttributeRecord{Key: rec.Key, Value: raw})
	}
	s.mu.Unlock()

	if err := s.store.SetAttributes(ctx, lid, persist); err != nil {
		return league.Config{}, err
	}

	s.mu.Lock()
	s.live[lid] = &next
	for key, history := range nextEras {
		s.eras[lid][key] = history
	}
	out := next
	s.mu.Unlock()

	if s.hub != nil {
		s.hub.Broadcast(lid, "gameAttributes", changed)
		for _, rec := range changed {
			// Switching control of a franchise redraws most of the UI;
			// it gets its own event.
			if rec.Key == "userTid" {
				s.hub.Broadcast(lid, "userTid", out.UserTID)
			}
		}
	}
	s.log.Info("attributes updated", "lid", lid, "keys", keysOf(changed))
	return out, nil
}

func keysOf(records []league.AttributeRecord) []string {
	keys := make([]string, len(records))
	for i, rec := range records {
		keys[i] = rec.Key
	}
	return keys
}

// History returns the era list for a wrapped key, starting with the
// creation-time era. Unwrapped keys have no history and read empty.
func (s *Service) History(ctx context.Context, lid int, key string) ([]league.Era, error) {
	if _, err := s.Load(ctx, lid); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	history := s.eras[lid][key]
	out := make([]league.Era, len(history))
	copy(out, history)
	return out, nil
}
