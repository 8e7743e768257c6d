package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/zengm-games/zengm-sub021/internal/league"
)

// Memory is the in-process Store used by tests and the CLI's offline
// demo mode. Same contract as Postgres, no durability.
type Memory struct {
	mu      sync.RWMutex
	nextLid int
	leagues map[int]*memLeague
}

type memLeague struct {
	meta    LeagueMeta
	records map[string][]json.RawMessage
	attrs   map[string]json.RawMessage
}

func NewMemory() *Memory {
	return &Memory{nextLid: 1, leagues: map[int]*memLeague{}}
}

func newMemLeague(lid int, name string) *memLeague {
	return &memLeague{
		meta:    LeagueMeta{LID: lid, Name: name, Created: time.Now()},
		records: map[string][]json.RawMessage{},
		attrs:   map[string]json.RawMessage{},
	}
}

func (m *Memory) CreateLeague(_ context.Context, name string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lid := m.nextLid
	m.nextLid++
	m.leagues[lid] = newMemLeague(lid, name)
	return lid, nil
}

func (m *Memory) ReplaceLeague(_ context.Context, lid int, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	fresh := newMemLeague(lid, name)
	if prev, ok := m.leagues[lid]; ok {
		fresh.meta.Created = prev.meta.Created
		fresh.meta.Starred = prev.meta.Starred
	}
	m.leagues[lid] = fresh
	if lid >= m.nextLid {
		m.nextLid = lid + 1
	}
	return nil
}

func (m *Memory) DeleteLeague(_ context.Context, lid int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.leagues[lid]; !ok {
		return league.ErrLeagueNotFound
	}
	delete(m.leagues, lid)
	return nil
}

func (m *Memory) PutRecords(_ context.Context, lid int, store string, records []any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.leagues[lid]
	if !ok {
		return league.ErrLeagueNotFound
	}
	for _, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		l.records[store] = append(l.records[store], data)
	}
	return nil
}

func (m *Memory) ReplaceRecords(ctx context.Context, lid int, store string, records []any) error {
	m.mu.Lock()
	l, ok := m.leagues[lid]
	if ok {
		l.records[store] = nil
	}
	m.mu.Unlock()
	if !ok {
		return league.ErrLeagueNotFound
	}
	return m.PutRecords(ctx, lid, store, records)
}

func (m *Memory) PutAttributes(ctx context.Context, lid int, records []league.AttributeRecord) error {
	return m.SetAttributes(ctx, lid, records)
}

func (m *Memory) SetAttributes(_ context.Context, lid int, records []league.AttributeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.leagues[lid]
	if !ok {
		return league.ErrLeagueNotFound
	}
	for _, rec := range records {
		l.attrs[rec.Key] = append(json.RawMessage(nil), rec.Value...)
	}
	return nil
}

func (m *Memory) Leagues(_ context.Context) ([]LeagueMeta, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]LeagueMeta, 0, len(m.leagues))
	for _, l := range m.leagues {
		out = append(out, l.meta)
	}
	// Starred first, then by id, matching the SQL backend.
	sort.Slice(out, func(i, j int) bool {
		if out[i].Starred != out[j].Starred {
			return out[i].Starred
		}
		return out[i].LID < out[j].LID
	})
	return out, nil
}

func (m *Memory) League(_ context.Context, lid int) (LeagueMeta, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.leagues[lid]
	if !ok {
		return LeagueMeta{}, league.ErrLeagueNotFound
	}
	return l.meta, nil
}

func (m *Memory) StarLeague(_ context.Context, lid int, starred bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.leagues[lid]
	if !ok {
		return league.ErrLeagueNotFound
	}
	l.meta.Starred = starred
	return nil
}

func (m *Memory) Records(_ context.Context, lid int, store string) ([]json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.leagues[lid]
	if !ok {
		return nil, league.ErrLeagueNotFound
	}
	out := make([]json.RawMessage, len(l.records[store]))
	copy(out, l.records[store])
	return out, nil
}

func (m *Memory) Attributes(_ context.Context, lid int) ([]league.AttributeRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.leagues[lid]
	if !ok {
		return nil, league.ErrLeagueNotFound
	}
	out := make([]league.AttributeRecord, 0, len(l.attrs))
	for key, value := range l.attrs {
		out = append(out, league.AttributeRecord{Key: key, Value: value})
	}
	return out, nil
}

func (m *Memory) Snapshot(ctx context.Context, lid int) (*league.TradeSnapshot, error) {
	return LoadSnapshot(ctx, m, lid)
}
