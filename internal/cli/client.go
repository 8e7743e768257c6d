package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/zengm-games/zengm-sub021/internal/league"
	"github.com/zengm-games/zengm-sub021/internal/store"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type CreateLeagueInput struct {
	Name           string             `json:"name"`
	TID            int                `json:"tid"`
	Difficulty     float64            `json:"difficulty"`
	StartingSeason int                `json:"starting_season"`
	ShuffleRosters bool               `json:"shuffle_rosters"`
	ImportLid      *int               `json:"import_lid,omitempty"`
	LeagueFile     *league.LeagueFile `json:"league_file,omitempty"`
}

type CreateLeagueResult struct {
	LID        int           `json:"lid"`
	Attributes league.Config `json:"attributes"`
}

func (c *Client) CreateLeague(ctx context.Context, in CreateLeagueInput, idem string) (CreateLeagueResult, error) {
	var out CreateLeagueResult
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/leagues", in, &out, idem)
	return out, err
}

func (c *Client) Leagues(ctx context.Context) ([]store.LeagueMeta, error) {
	var out struct {
		Leagues []store.LeagueMeta `json:"leagues"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/leagues", nil, &out, "")
	return out.Leagues, err
}

func (c *Client) League(ctx context.Context, lid int) (store.LeagueMeta, error) {
	var out store.LeagueMeta
	err := c.jsonRequest(ctx, http.MethodGet, fmt.Sprintf("/v1/leagues/%d", lid), nil, &out, "")
	return out, err
}

func (c *Client) DeleteLeague(ctx context.Context, lid int) error {
	return c.jsonRequest(ctx, http.MethodDelete, fmt.Sprintf("/v1/leagues/%d", lid), nil, nil, "")
}

func (c *Client) StarLeague(ctx context.Context, lid int, starred bool) error {
	return c.jsonRequest(ctx, http.MethodPost, fmt.Sprintf("/v1/leagues/%d/star", lid),
		map[string]any{"starred": starred}, nil, "")
}

func (c *Client) Attributes(ctx context.Context, lid int) (league.Config, error) {
	var out league.Config
	err := c.jsonRequest(ctx, http.MethodGet, fmt.Sprintf("/v1/leagues/%d/attributes", lid), nil, &out, "")
	return out, err
}

func (c *Client) UpdateAttributes(ctx context.Context, lid int, settings league.Settings) (league.Config, error) {
	var out league.Config
	err := c.jsonRequest(ctx, http.MethodPatch, fmt.Sprintf("/v1/leagues/%d/attributes", lid), settings, &out, "")
	return out, err
}

func (c *Client) Teams(ctx context.Context, lid int, query string) ([]league.Team, error) {
	path := fmt.Sprintf("/v1/leagues/%d/teams", lid)
	if query != "" {
		path += "?q=" + url.QueryEscape(query)
	}
	var out struct {
		Teams []league.Team `json:"teams"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, path, nil, &out, "")
	return out.Teams, err
}

func (c *Client) Roster(ctx context.Context, lid, tid int) ([]league.Player, error) {
	var out struct {
		Players []league.Player `json:"players"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, fmt.Sprintf("/v1/leagues/%d/teams/%d/roster", lid, tid), nil, &out, "")
	return out.Players, err
}

func (c *Client) Picks(ctx context.Context, lid int, tid *int) ([]league.DraftPick, error) {
	path := fmt.Sprintf("/v1/leagues/%d/picks", lid)
	if tid != nil {
		path += fmt.Sprintf("?tid=%d", *tid)
	}
	var out struct {
		Picks []league.DraftPick `json:"picks"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, path, nil, &out, "")
	return out.Picks, err
}

type TradeValueResult struct {
	TID      int     `json:"tid"`
	Score    float64 `json:"score"`
	Rejected bool    `json:"rejected"`
}

func (c *Client) TradeValue(ctx context.Context, lid int, proposal league.TradeProposal) (TradeValueResult, error) {
	var out TradeValueResult
	err := c.jsonRequest(ctx, http.MethodPost, fmt.Sprintf("/v1/leagues/%d/trade/value", lid), proposal, &out, "")
	return out, err
}

func (c *Client) jsonRequest(ctx context.Context, method, path string, body, out any, idem string) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idem != "" {
		req.Header.Set("Idempotency-Key", idem)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s", method, path, apiErr.Error)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}
