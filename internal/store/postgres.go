package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zengm-games/zengm-sub021/internal/league"
)

// Postgres keeps each league's object stores as jsonb rows. The record
// tables are append-mostly; per-record updates happen by replacing a
// whole store, which matches how the construction and roster paths
// write.
type Postgres struct {
	db  *pgxpool.Pool
	log *slog.Logger
}

func NewPostgres(db *pgxpool.Pool, logger *slog.Logger) *Postgres {
	if logger == nil {
		logger = slog.Default()
	}
	return &Postgres{db: db, log: logger}
}

const schema = `
CREATE TABLE IF NOT EXISTS leagues (
    lid        SERIAL PRIMARY KEY,
    name       TEXT NOT NULL,
    starred    BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS league_records (
    id    BIGSERIAL PRIMARY KEY,
    lid   INTEGER NOT NULL REFERENCES leagues(lid) ON DELETE CASCADE,
    store TEXT NOT NULL,
    data  JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS league_records_lid_store_idx ON league_records (lid, store);

CREATE TABLE IF NOT EXISTS league_attributes (
    lid   INTEGER NOT NULL REFERENCES leagues(lid) ON DELETE CASCADE,
    key   TEXT NOT NULL,
    value JSONB NOT NULL,
    PRIMARY KEY (lid, key)
);
`

// EnsureSchema creates the tables if they do not exist. Run at startup;
// idempotent.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (p *Postgres) CreateLeague(ctx context.Context, name string) (int, error) {
	var lid int
	err := p.db.QueryRow(ctx,
		`INSERT INTO leagues (name) VALUES ($1) RETURNING lid`, name).Scan(&lid)
	if err != nil {
		return 0, fmt.Errorf("create league: %w", err)
	}
	return lid, nil
}

// ReplaceLeague wipes a league's stores but keeps the row itself, so an
// import over an existing id preserves creation metadata.
func (p *Postgres) ReplaceLeague(ctx context.Context, lid int, name string) error {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `UPDATE leagues SET name = $2 WHERE lid = $1`, lid, name)
	if err != nil {
		return fmt.Errorf("replace league: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := tx.Exec(ctx,
			`INSERT INTO leagues (lid, name) VALUES ($1, $2)`, lid, name); err != nil {
			return fmt.Errorf("replace league insert: %w", err)
		}
	}
	if _, err := tx.Exec(ctx, `DELETE FROM league_records WHERE lid = $1`, lid); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM league_attributes WHERE lid = $1`, lid); err != nil {
		return fmt.Errorf("clear attributes: %w", err)
	}
	return tx.Commit(ctx)
}

func (p *Postgres) DeleteLeague(ctx context.Context, lid int) error {
	tag, err := p.db.Exec(ctx, `DELETE FROM leagues WHERE lid = $1`, lid)
	if err != nil {
		return fmt.Errorf("delete league: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return league.ErrLeagueNotFound
	}
	return nil
}

func (p *Postgres) PutRecords(ctx context.Context, lid int, store string, records []any) error {
	if len(records) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal %s record: %w", store, err)
		}
		batch.Queue(`INSERT INTO league_records (lid, store, data) VALUES ($1, $2, $3)`, lid, store, data)
	}
	br := p.db.SendBatch(ctx, batch)
	defer br.Close()
	for range records {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert %s records: %w", store, err)
		}
	}
	return nil
}

func (p *Postgres) ReplaceRecords(ctx context.Context, lid int, store string, records []any) error {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin replace records: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM league_records WHERE lid = $1 AND store = $2`, lid, store); err != nil {
		return fmt.Errorf("clear %s: %w", store, err)
	}
	for _, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal %s record: %w", store, err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO league_records (lid, store, data) VALUES ($1, $2, $3)`, lid, store, data); err != nil {
			return fmt.Errorf("insert %s record: %w", store, err)
		}
	}
	return tx.Commit(ctx)
}

func (p *Postgres) PutAttributes(ctx context.Context, lid int, records []league.AttributeRecord) error {
	return p.SetAttributes(ctx, lid, records)
}

func (p *Postgres) SetAttributes(ctx context.Context, lid int, records []league.AttributeRecord) error {
	if len(records) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(`INSERT INTO league_attributes (lid, key, value) VALUES ($1, $2, $3)
			ON CONFLICT (lid, key) DO UPDATE SET value = EXCLUDED.value`,
			lid, rec.Key, []byte(rec.Value))
	}
	br := p.db.SendBatch(ctx, batch)
	defer br.Close()
	for range records {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert attributes: %w", err)
		}
	}
	return nil
}

func (p *Postgres) Leagues(ctx context.Context) ([]LeagueMeta, error) {
	rows, err := p.db.Query(ctx,
		`SELECT lid, name, starred, created_at FROM leagues ORDER BY starred DESC, lid`)
	if err != nil {
		return nil, fmt.Errorf("list leagues: %w", err)
	}
	defer rows.Close()

	var out []LeagueMeta
	for rows.Next() {
		var m LeagueMeta
		if err := rows.Scan(&m.LID, &m.Name, &m.Starred, &m.Created); err != nil {
			return nil, fmt.Errorf("scan league: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (p *Postgres) League(ctx context.Context, lid int) (LeagueMeta, error) {
	var m LeagueMeta
	err := p.db.QueryRow(ctx,
		`SELECT lid, name, starred, created_at FROM leagues WHERE lid = $1`, lid).
		Scan(&m.LID, &m.Name, &m.Starred, &m.Created)
	if errors.Is(err, pgx.ErrNoRows) {
		return m, league.ErrLeagueNotFound
	}
	if err != nil {
		return m, fmt.Errorf("load league: %w", err)
	}
	return m, nil
}

func (p *Postgres) StarLeague(ctx context.Context, lid int, starred bool) error {
	tag, err := p.db.Exec(ctx,
		`UPDATE leagues SET starred = $2 WHERE lid = $1`, lid, starred)
	if err != nil {
		return fmt.Errorf("star league: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return league.ErrLeagueNotFound
	}
	return nil
}

func (p *Postgres) Records(ctx context.Context, lid int, store string) ([]json.RawMessage, error) {
	rows, err := p.db.Query(ctx,
		`SELECT data FROM league_records WHERE lid = $1 AND store = $2 ORDER BY id`, lid, store)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", store, err)
	}
	defer rows.Close()

	var out []json.RawMessage
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan %s record: %w", store, err)
		}
		out = append(out, json.RawMessage(data))
	}
	return out, rows.Err()
}

func (p *Postgres) Attributes(ctx context.Context, lid int) ([]league.AttributeRecord, error) {
	rows, err := p.db.Query(ctx,
		`SELECT key, value FROM league_attributes WHERE lid = $1 ORDER BY key`, lid)
	if err != nil {
		return nil, fmt.Errorf("load attributes: %w", err)
	}
	defer rows.Close()

	var out []league.AttributeRecord
	for rows.Next() {
		var rec league.AttributeRecord
		var value []byte
		if err := rows.Scan(&rec.Key, &value); err != nil {
			return nil, fmt.Errorf("scan attribute: %w", err)
		}
		rec.Value = json.RawMessage(value)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (p *Postgres) Snapshot(ctx context.Context, lid int) (*league.TradeSnapshot, error) {
	return LoadSnapshot(ctx, p, lid)
}
