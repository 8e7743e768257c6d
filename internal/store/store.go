package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/zengm-games/zengm-sub021/internal/league"
)

// LeagueMeta is the per-league row shown on the league list.
type LeagueMeta struct {
	LID     int       `json:"lid"`
	Name    string    `json:"name"`
	Starred bool      `json:"starred"`
	Created time.Time `json:"created"`
}

// Store is the persistence surface for league data. Records are stored
// per (league, store name) as opaque JSON; only the attribute records
// get structured treatment, because attribute history is queried by key.
type Store interface {
	league.Saver

	Leagues(ctx context.Context) ([]LeagueMeta, error)
	League(ctx context.Context, lid int) (LeagueMeta, error)
	StarLeague(ctx context.Context, lid int, starred bool) error

	Records(ctx context.Context, lid int, store string) ([]json.RawMessage, error)
	Attributes(ctx context.Context, lid int) ([]league.AttributeRecord, error)
	// SetAttributes upserts by key, replacing any prior value.
	SetAttributes(ctx context.Context, lid int, records []league.AttributeRecord) error

	// Snapshot loads the read-only state trade valuation runs against.
	Snapshot(ctx context.Context, lid int) (*league.TradeSnapshot, error)

	// ReplaceRecords swaps the full contents of one store, for
	// roster-mutating operations that rewrite players wholesale.
	ReplaceRecords(ctx context.Context, lid int, store string, records []any) error
}

func decodeRecords[T any](raw []json.RawMessage) ([]T, error) {
	out := make([]T, 0, len(raw))
	for _, r := range raw {
		var v T
		if err := json.Unmarshal(r, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// LoadSnapshot assembles a TradeSnapshot from the generic record
// stores. Shared by both backends.
func LoadSnapshot(ctx context.Context, s Store, lid int) (*league.TradeSnapshot, error) {
	rawTeams, err := s.Records(ctx, lid, "teams")
	if err != nil {
		return nil, err
	}
	teams, err := decodeRecords[league.Team](rawTeams)
	if err != nil {
		return nil, err
	}
	if len(teams) == 0 {
		return nil, league.ErrLeagueNotFound
	}

	rawSeasons, err := s.Records(ctx, lid, "teamSeasons")
	if err != nil {
		return nil, err
	}
	seasons, err := decodeRecords[league.TeamSeason](rawSeasons)
	if err != nil {
		return nil, err
	}

	rawPlayers, err := s.Records(ctx, lid, "players")
	if err != nil {
		return nil, err
	}
	players, err := decodeRecords[league.Player](rawPlayers)
	if err != nil {
		return nil, err
	}

	rawPicks, err := s.Records(ctx, lid, "draftPicks")
	if err != nil {
		return nil, err
	}
	picks, err := decodeRecords[league.DraftPick](rawPicks)
	if err != nil {
		return nil, err
	}

	return &league.TradeSnapshot{
		Teams:       teams,
		TeamSeasons: seasons,
		Players:     players,
		DraftPicks:  picks,
	}, nil
}
