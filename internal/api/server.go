package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/rs/cors"

	"github.com/zengm-games/zengm-sub021/internal/attrs"
	"github.com/zengm-games/zengm-sub021/internal/config"
	"github.com/zengm-games/zengm-sub021/internal/kvstore"
	"github.com/zengm-games/zengm-sub021/internal/league"
	"github.com/zengm-games/zengm-sub021/internal/push"
	"github.com/zengm-games/zengm-sub021/internal/store"
)

type Server struct {
	cfg   config.APIConfig
	log   *slog.Logger
	store store.Store
	attrs *attrs.Service
	kv    kvstore.KVStore
	hub   *push.Hub
	mux   *chi.Mux

	// Recent create requests by idempotency key, so a double-submitted
	// league creation returns the first league instead of a duplicate.
	// Entries expire after createReplayWindow to bound the map.
	createMu   sync.Mutex
	createSeen map[string]createRecord
}

type createRecord struct {
	lid int
	at  time.Time
}

// createReplayWindow is how long a create replays instead of creating a
// second league. Retries land within seconds; an hour is plenty.
const createReplayWindow = time.Hour

func New(cfg config.APIConfig, logger *slog.Logger, st store.Store, attrSvc *attrs.Service, kv kvstore.KVStore, hub *push.Hub) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:        cfg,
		log:        logger,
		store:      st,
		attrs:      attrSvc,
		kv:         kv,
		hub:        hub,
		mux:        chi.NewRouter(),
		createSeen: map[string]createRecord{},
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", "Idempotency-Key"},
	})
	return c.Handler(s.mux)
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/leagues", s.handleLeagueList)
		r.Post("/leagues", s.handleLeagueCreate)

		r.Route("/leagues/{lid}", func(r chi.Router) {
			r.Get("/", s.handleLeagueGet)
			r.Delete("/", s.handleLeagueDelete)
			r.Post("/star", s.handleLeagueStar)

			r.Get("/attributes", s.handleAttributesGet)
			r.Patch("/attributes", s.handleAttributesUpdate)
			r.Get("/attributes/{key}/history", s.handleAttributeHistory)

			r.Get("/teams", s.handleTeamList)
			r.Get("/teams/{tid}/roster", s.handleTeamRoster)
			r.Get("/players/{pid}", s.handlePlayerGet)
			r.Get("/picks", s.handlePickList)

			r.Post("/trade/value", s.handleTradeValue)
		})
	})

	r.Get("/ws/leagues/{lid}", s.handleSubscribe)
}

type createLeagueInput struct {
	Name           string             `json:"name"`
	TID            int                `json:"tid"`
	Difficulty     float64            `json:"difficulty"`
	StartingSeason int                `json:"starting_season"`
	ShuffleRosters bool               `json:"shuffle_rosters"`
	ImportLid      *int               `json:"import_lid,omitempty"`
	LeagueFile     *league.LeagueFile `json:"league_file,omitempty"`
}

func (s *Server) handleLeagueCreate(w http.ResponseWriter, r *http.Request) {
	var in createLeagueInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(in.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	key := idempotencyKey(r)
	if lid, ok := s.replayedCreate(key, time.Now()); ok {
		writeJSON(w, http.StatusOK, map[string]any{"lid": lid, "replayed": true})
		return
	}

	lid, err := league.Create(r.Context(), s.store, league.CreateRequest{
		Name:           strings.TrimSpace(in.Name),
		TID:            in.TID,
		Difficulty:     in.Difficulty,
		StartingSeason: in.StartingSeason,
		ShuffleRosters: in.ShuffleRosters,
		ImportLid:      in.ImportLid,
		LeagueFile:     in.LeagueFile,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	cfg, err := s.attrs.Load(r.Context(), lid)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	s.createMu.Lock()
	s.createSeen[key] = createRecord{lid: lid, at: time.Now()}
	s.createMu.Unlock()

	s.log.Info("league created", "lid", lid, "name", cfg.Name, "teams", cfg.NumTeams)
	writeJSON(w, http.StatusCreated, map[string]any{"lid": lid, "attributes": cfg})
}

// replayedCreate looks up a recent create by idempotency key, evicting
// anything older than the replay window on the way.
func (s *Server) replayedCreate(key string, now time.Time) (int, bool) {
	s.createMu.Lock()
	defer s.createMu.Unlock()
	for k, rec := range s.createSeen {
		if now.Sub(rec.at) > createReplayWindow {
			delete(s.createSeen, k)
		}
	}
	rec, ok := s.createSeen[key]
	return rec.lid, ok
}

func (s *Server) handleLeagueList(w http.ResponseWriter, r *http.Request) {
	leagues, err := s.store.Leagues(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"leagues": leagues})
}

func (s *Server) handleLeagueGet(w http.ResponseWriter, r *http.Request) {
	lid, ok := s.leagueID(w, r)
	if !ok {
		return
	}
	meta, err := s.store.League(r.Context(), lid)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

func (s *Server) handleLeagueDelete(w http.ResponseWriter, r *http.Request) {
	lid, ok := s.leagueID(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteLeague(r.Context(), lid); err != nil {
		writeDomainError(w, err)
		return
	}
	s.attrs.Forget(lid)
	writeJSON(w, http.StatusOK, map[string]any{"deleted": lid})
}

func (s *Server) handleLeagueStar(w http.ResponseWriter, r *http.Request) {
	lid, ok := s.leagueID(w, r)
	if !ok {
		return
	}
	var in struct {
		Starred bool `json:"starred"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.store.StarLeague(r.Context(), lid, in.Starred); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"lid": lid, "starred": in.Starred})
}

func (s *Server) handleAttributesGet(w http.ResponseWriter, r *http.Request) {
	lid, ok := s.leagueID(w, r)
	if !ok {
		return
	}
	cfg, err := s.attrs.Load(r.Context(), lid)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleAttributesUpdate(w http.ResponseWriter, r *http.Request) {
	lid, ok := s.leagueID(w, r)
	if !ok {
		return
	}
	var settings league.Settings
	if err := decodeJSON(r, &settings); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	cfg, err := s.attrs.Update(r.Context(), lid, settings)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleAttributeHistory(w http.ResponseWriter, r *http.Request) {
	lid, ok := s.leagueID(w, r)
	if !ok {
		return
	}
	key := chi.URLParam(r, "key")
	history, err := s.attrs.History(r.Context(), lid, key)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"key": key, "history": history})
}

func (s *Server) handleTeamList(w http.ResponseWriter, r *http.Request) {
	lid, ok := s.leagueID(w, r)
	if !ok {
		return
	}
	raw, err := s.store.Records(r.Context(), lid, "teams")
	if err != nil {
		writeDomainError(w, err)
		return
	}
	teams := make([]league.Team, 0, len(raw))
	for _, rec := range raw {
		var t league.Team
		if err := json.Unmarshal(rec, &t); err != nil {
			writeDomainError(w, err)
			return
		}
		teams = append(teams, t)
	}

	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		teams = filterTeams(teams, q)
	}
	writeJSON(w, http.StatusOK, map[string]any{"teams": teams})
}

// filterTeams ranks teams by fuzzy match against region, name and
// abbreviation, best match first.
func filterTeams(teams []league.Team, q string) []league.Team {
	type scored struct {
		team league.Team
		rank int
	}
	var hits []scored
	for _, t := range teams {
		best := -1
		for _, field := range []string{t.Region + " " + t.Name, t.Abbrev} {
			if r := fuzzy.RankMatchNormalizedFold(q, field); r >= 0 && (best < 0 || r < best) {
				best = r
			}
		}
		if best >= 0 {
			hits = append(hits, scored{team: t, rank: best})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].rank < hits[j].rank })
	out := make([]league.Team, len(hits))
	for i, h := range hits {
		out[i] = h.team
	}
	return out
}

func (s *Server) handleTeamRoster(w http.ResponseWriter, r *http.Request) {
	lid, ok := s.leagueID(w, r)
	if !ok {
		return
	}
	tid, err := strconv.Atoi(chi.URLParam(r, "tid"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid team id")
		return
	}
	snap, err := s.store.Snapshot(r.Context(), lid)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if snap.Teams != nil {
		found := false
		for _, t := range snap.Teams {
			if t.TID == tid {
				found = true
				break
			}
		}
		if !found && tid >= 0 {
			writeDomainError(w, league.ErrTeamNotFound)
			return
		}
	}
	var roster []league.Player
	for i := range snap.Players {
		if snap.Players[i].TID == tid {
			roster = append(roster, snap.Players[i])
		}
	}
	// Depth-chart order.
	sort.SliceStable(roster, func(i, j int) bool { return roster[i].RosterOrder < roster[j].RosterOrder })
	writeJSON(w, http.StatusOK, map[string]any{"tid": tid, "players": roster})
}

func (s *Server) handlePlayerGet(w http.ResponseWriter, r *http.Request) {
	lid, ok := s.leagueID(w, r)
	if !ok {
		return
	}
	pid, err := strconv.Atoi(chi.URLParam(r, "pid"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid player id")
		return
	}
	raw, err := s.store.Records(r.Context(), lid, "players")
	if err != nil {
		writeDomainError(w, err)
		return
	}
	for _, rec := range raw {
		var p league.Player
		if err := json.Unmarshal(rec, &p); err != nil {
			continue
		}
		if p.PID == pid {
			writeJSON(w, http.StatusOK, p)
			return
		}
	}
	writeDomainError(w, league.ErrPlayerNotFound)
}

func (s *Server) handlePickList(w http.ResponseWriter, r *http.Request) {
	lid, ok := s.leagueID(w, r)
	if !ok {
		return
	}
	raw, err := s.store.Records(r.Context(), lid, "draftPicks")
	if err != nil {
		writeDomainError(w, err)
		return
	}
	tidFilter := strings.TrimSpace(r.URL.Query().Get("tid"))
	var picks []league.DraftPick
	for _, rec := range raw {
		var pk league.DraftPick
		if err := json.Unmarshal(rec, &pk); err != nil {
			continue
		}
		if tidFilter != "" {
			tid, err := strconv.Atoi(tidFilter)
			if err != nil || pk.TID != tid {
				continue
			}
		}
		picks = append(picks, pk)
	}
	writeJSON(w, http.StatusOK, map[string]any{"picks": picks})
}

func (s *Server) handleTradeValue(w http.ResponseWriter, r *http.Request) {
	lid, ok := s.leagueID(w, r)
	if !ok {
		return
	}
	var proposal league.TradeProposal
	if err := decodeJSON(r, &proposal); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cfg, err := s.attrs.Load(r.Context(), lid)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	snap, err := s.store.Snapshot(r.Context(), lid)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	score := league.ValueChange(cfg, snap, proposal, s.cachedPickValues(r.Context(), lid))
	writeJSON(w, http.StatusOK, map[string]any{
		"tid":      proposal.TID,
		"score":    score,
		"rejected": len(proposal.DpidsRemove) > league.MaxTradePicksPerSide,
	})
}

// cachedPickValues reads the worker-maintained pick value table; nil on
// any miss, which makes valuation fall back to its built-in curve.
func (s *Server) cachedPickValues(ctx context.Context, lid int) league.PickValues {
	if s.kv == nil {
		return nil
	}
	raw, err := s.kv.Get(ctx, kvstore.PickValuesKey(lid))
	if err != nil {
		return nil
	}
	var table league.PickValues
	if err := json.Unmarshal(raw, &table); err != nil {
		s.log.Warn("bad cached pick values", "lid", lid, "err", err)
		return nil
	}
	return table
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	lid, ok := s.leagueID(w, r)
	if !ok {
		return
	}
	if _, err := s.store.League(r.Context(), lid); err != nil {
		writeDomainError(w, err)
		return
	}
	s.hub.Subscribe(w, r, lid)
}

func (s *Server) leagueID(w http.ResponseWriter, r *http.Request) (int, bool) {
	lid, err := strconv.Atoi(chi.URLParam(r, "lid"))
	if err != nil || lid < 1 {
		writeError(w, http.StatusBadRequest, "invalid league id")
		return 0, false
	}
	return lid, true
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, league.ErrLeagueNotFound),
		errors.Is(err, league.ErrTeamNotFound),
		errors.Is(err, league.ErrPlayerNotFound),
		errors.Is(err, league.ErrPickNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, league.ErrNonSequentialTeamIDs),
		errors.Is(err, league.ErrAttributeNaN):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, league.ErrShortPlayerPool),
		errors.Is(err, league.ErrNoValidCapCombination),
		errors.Is(err, league.ErrScoutingRank):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": strings.TrimSpace(message)})
}

func idempotencyKey(r *http.Request) string {
	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if key != "" {
		return key
	}
	return uuid.NewString()
}
