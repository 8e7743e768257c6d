package league

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"
)

// Saver is the persistence collaborator for league creation. The
// construction core builds the whole bundle in memory first; Saver is
// only touched once construction has fully succeeded, so a failed
// creation never leaves a partial league behind.
type Saver interface {
	CreateLeague(ctx context.Context, name string) (int, error)
	// ReplaceLeague wipes an existing league's stores but keeps its id
	// and creation metadata, for the import-over-existing path.
	ReplaceLeague(ctx context.Context, lid int, name string) error
	DeleteLeague(ctx context.Context, lid int) error
	PutRecords(ctx context.Context, lid int, store string, records []any) error
	PutAttributes(ctx context.Context, lid int, records []AttributeRecord) error
}

type CreateRequest struct {
	Name           string
	TID            int // requested user team; out of range means random
	LeagueFile     *LeagueFile
	ShuffleRosters bool
	Difficulty     float64
	StartingSeason int // 0 means current year
	ImportLid      *int

	// Rand lets tests pin the generator; nil gets a time-seeded one.
	Rand *rand.Rand
}

// CreateWithoutSaving assembles a complete new-league snapshot in
// memory: teams, seasons, players, picks, attributes. Pure with respect
// to I/O; all randomness comes from the request's generator.
func CreateWithoutSaving(req CreateRequest) (*Bundle, error) {
	rnd := req.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	file := req.LeagueFile
	if file == nil {
		file = &LeagueFile{}
	}

	startingSeason := req.StartingSeason
	if file.StartingSeason != 0 {
		startingSeason = file.StartingSeason
	}
	if startingSeason == 0 {
		startingSeason = time.Now().Year()
	}

	cfg := DefaultConfig(startingSeason)
	cfg.ApplyRecords(file.GameAttributes)
	// Protected overrides: these always come from the immediate
	// request, never the file.
	cfg.Name = req.Name
	if !math.IsNaN(req.Difficulty) {
		cfg.Difficulty = req.Difficulty
	}
	if file.Meta != nil && cfg.PhaseText == "" {
		cfg.PhaseText = file.Meta.PhaseText
	}

	infos, err := resolveTeamInfos(cfg, file.Teams)
	if err != nil {
		return nil, err
	}
	cfg.NumTeams = len(infos)

	if req.TID >= 0 && req.TID < cfg.NumTeams {
		cfg.UserTID = req.TID
	} else {
		// Out-of-range requests mean "random team", not an error.
		cfg.UserTID = rnd.Intn(cfg.NumTeams)
	}

	cfg.NumGamesPlayoffSeries = getValidNumGamesPlayoffSeries(cfg.NumGamesPlayoffSeries, nil, cfg.NumTeams)

	teams := make([]Team, len(infos))
	for i, info := range infos {
		teams[i] = GenerateTeam(cfg, info)
	}

	teamSeasons, teamStats := buildTeamSeasons(cfg, rnd, teams, infos)

	scoutRank, err := ScoutingRank(teams, teamSeasons, cfg.UserTID, cfg.Season)
	if err != nil {
		return nil, err
	}

	picks := buildDraftPicks(cfg, file.DraftPicks)

	players, err := buildPlayers(cfg, rnd, teams, file.Players, req.ShuffleRosters, scoutRank)
	if err != nil {
		return nil, err
	}
	players = backfillDraftClasses(cfg, rnd, players, scoutRank)

	for i := range teams {
		if infos[i].Strategy == nil {
			teams[i].Strategy = RecomputeStrategy(players, teams[i].TID)
		}
	}

	sortRosters(cfg, players)

	trade := file.Trade
	if len(trade) == 0 {
		other := 0
		if cfg.UserTID == 0 {
			other = 1
		}
		trade = []TradeState{{Teams: [2]TradeSide{{TID: cfg.UserTID}, {TID: other}}}}
	}

	return &Bundle{
		Config:              cfg,
		Teams:               teams,
		TeamSeasons:         teamSeasons,
		TeamStats:           teamStats,
		Players:             players,
		DraftPicks:          picks,
		Trade:               trade,
		DraftLotteryResults: file.DraftLotteryResults,
		Games:               file.Games,
		Schedule:            file.Schedule,
		Awards:              file.Awards,
		Negotiations:        file.Negotiations,
		Messages:            file.Messages,
		Events:              file.Events,
		PlayerFeats:         file.PlayerFeats,
		PlayoffSeries:       file.PlayoffSeries,
		ReleasedPlayers:     file.ReleasedPlayers,
	}, nil
}

// resolveTeamInfos merges imported team seeds over the default table.
// Imported tids, when present, must be sequential from zero.
func resolveTeamInfos(cfg Config, seeds []TeamSeed) ([]TeamInfo, error) {
	if len(seeds) == 0 {
		return DefaultTeamInfos(), nil
	}
	defaults := DefaultTeamInfos()
	infos := make([]TeamInfo, len(seeds))
	for i, seed := range seeds {
		if seed.TID != nil && *seed.TID != i {
			return nil, fmt.Errorf("%w: team %d has tid %d", ErrNonSequentialTeamIDs, i, *seed.TID)
		}
		info := TeamInfo{TID: i, Region: seed.Region, Name: seed.Name, Abbrev: seed.Abbrev, ImgURL: seed.ImgURL}
		if i < len(defaults) {
			d := defaults[i]
			info.CID, info.DID, info.Pop, info.Colors = d.CID, d.DID, d.Pop, d.Colors
			if info.Region == "" {
				info.Region, info.Name, info.Abbrev = d.Region, d.Name, d.Abbrev
			}
		} else {
			info.CID = i % 2
			info.DID = i % 6
			info.Pop = 1.0
			info.Colors = [3]string{"#000000", "#cccccc", "#ffffff"}
		}
		if seed.CID != nil {
			info.CID = *seed.CID
		}
		if seed.DID != nil {
			info.DID = *seed.DID
		}
		if seed.Pop != nil {
			info.Pop = *seed.Pop
		}
		if seed.Colors != nil {
			info.Colors = *seed.Colors
		}
		info.Strategy = seed.Strategy
		info.Budget = seed.Budget
		if seed.Disabled != nil {
			info.Disabled = *seed.Disabled
		}
		info.seedSeasons = seed.Seasons
		info.seedStats = seed.Stats
		infos[i] = info
	}
	fillPopRanks(infos)
	return infos, nil
}

func buildTeamSeasons(cfg Config, rnd *rand.Rand, teams []Team, infos []TeamInfo) ([]TeamSeason, []TeamStats) {
	var seasons []TeamSeason
	var stats []TeamStats
	for i, t := range teams {
		imported := infos[i].seedSeasons
		if len(imported) > 0 {
			for _, ts := range imported {
				ts.TID = t.TID
				seasons = append(seasons, ts)
			}
			last := imported[len(imported)-1]
			if last.Season != cfg.Season {
				seasons = append(seasons, GenTeamSeason(rnd, t, cfg.Season, &last))
			}
		} else {
			seasons = append(seasons, GenTeamSeason(rnd, t, cfg.Season, nil))
		}
		if len(infos[i].seedStats) > 0 {
			for _, st := range infos[i].seedStats {
				st.TID = t.TID
				stats = append(stats, st)
			}
		} else {
			stats = append(stats, GenTeamStats(t.TID, cfg.Season, false))
		}
	}
	return seasons, stats
}

func buildDraftPicks(cfg Config, imported []DraftPick) []DraftPick {
	if len(imported) > 0 {
		picks := make([]DraftPick, len(imported))
		copy(picks, imported)
		next := 1
		for _, p := range picks {
			if p.DPID >= next {
				next = p.DPID + 1
			}
		}
		for i := range picks {
			if picks[i].DPID == 0 {
				picks[i].DPID = next
				next++
			}
		}
		return picks
	}
	var picks []DraftPick
	dpid := 1
	for season := cfg.Season; season < cfg.Season+cfg.NumSeasonsFutureDraftPicks; season++ {
		for round := 1; round <= cfg.NumDraftRounds; round++ {
			for tid := 0; tid < cfg.NumTeams; tid++ {
				picks = append(picks, DraftPick{
					DPID:        dpid,
					TID:         tid,
					OriginalTID: tid,
					Round:       round,
					Season:      season,
				})
				dpid++
			}
		}
	}
	return picks
}

func buildPlayers(cfg Config, rnd *rand.Rand, teams []Team, imported []Player, shuffleRosters bool, scoutRank int) ([]Player, error) {
	if len(imported) > 0 {
		players := make([]Player, len(imported))
		copy(players, imported)
		nextPid := 1
		for _, p := range players {
			if p.PID >= nextPid {
				nextPid = p.PID + 1
			}
		}
		for i := range players {
			if players[i].PID == 0 {
				players[i].PID = nextPid
				nextPid++
			}
			if players[i].Contract.Amount == 0 {
				players[i].Contract = GenContract(cfg, PlayerValue(cfg, &players[i]))
			}
		}
		if shuffleRosters {
			// Reshuffle team assignments but leave free agents,
			// prospects and retired players where they are.
			var idxs []int
			var tids []int
			for i := range players {
				if players[i].TID >= 0 {
					idxs = append(idxs, i)
					tids = append(tids, players[i].TID)
				}
			}
			shuffle(rnd, tids)
			for j, i := range idxs {
				players[i].TID = tids[j]
			}
		}
		return players, nil
	}

	pool := GenSeedPlayers(cfg, rnd, 1, scoutRank)
	if len(pool) < (cfg.MaxRosterSize+1)*cfg.NumTeams {
		return nil, fmt.Errorf("%w: %d survivors for %d teams", ErrShortPlayerPool, len(pool), cfg.NumTeams)
	}
	return AssignRosters(cfg, rnd, teams, pool)
}

// backfillDraftClasses tops up the current and next two draft classes
// to the target size, whether the shortfall comes from a sparse import
// or from scratch generation not having built them yet.
func backfillDraftClasses(cfg Config, rnd *rand.Rand, players []Player, scoutRank int) []Player {
	target := DraftClassTargetSize(cfg.NumDraftRounds, cfg.NumTeams)
	nextPid := 1
	for _, p := range players {
		if p.PID >= nextPid {
			nextPid = p.PID + 1
		}
	}
	for offset := 0; offset < 3; offset++ {
		draftYear := cfg.Season + offset
		tid := undraftedTidForYear(cfg, draftYear)
		have := 0
		for _, p := range players {
			if p.TID == tid {
				have++
			}
		}
		if have >= target {
			continue
		}
		class := GenDraftClass(cfg, rnd, nextPid, draftYear, scoutRank, target-have)
		nextPid += len(class)
		players = append(players, class...)
	}
	return players
}

// sortRosters assigns roster order by descending current overall for
// any team whose players all have the default zero order.
func sortRosters(cfg Config, players []Player) {
	byTeam := make(map[int][]int)
	for i := range players {
		if players[i].TID >= 0 {
			byTeam[players[i].TID] = append(byTeam[players[i].TID], i)
		}
	}
	for _, idxs := range byTeam {
		explicit := false
		for _, i := range idxs {
			if players[i].RosterOrder != 0 {
				explicit = true
				break
			}
		}
		if explicit {
			continue
		}
		sort.SliceStable(idxs, func(a, b int) bool {
			return players[idxs[a]].CurrentRatings().Ovr > players[idxs[b]].CurrentRatings().Ovr
		})
		for order, i := range idxs {
			players[i].RosterOrder = order
		}
	}
}

// Create runs CreateWithoutSaving and persists the result. Store
// insertion order matters in one place only: games go in before
// schedule rows so the two stores' auto-incrementing ids never collide.
// Game attributes bypass the generic record loop and go through the
// attribute records path, preserving their per-key history handling.
func Create(ctx context.Context, saver Saver, req CreateRequest) (int, error) {
	bundle, err := CreateWithoutSaving(req)
	if err != nil {
		return 0, err
	}

	var lid int
	if req.ImportLid != nil {
		lid = *req.ImportLid
		if err := saver.ReplaceLeague(ctx, lid, req.Name); err != nil {
			return 0, err
		}
	} else {
		lid, err = saver.CreateLeague(ctx, req.Name)
		if err != nil {
			return 0, err
		}
	}
	bundle.Config.LID = lid

	put := func(store string, records []any) {
		if err == nil && len(records) > 0 {
			err = saver.PutRecords(ctx, lid, store, records)
		}
	}

	put("teams", toAny(bundle.Teams))
	put("teamSeasons", toAny(bundle.TeamSeasons))
	put("teamStats", toAny(bundle.TeamStats))
	put("players", toAny(bundle.Players))
	put("draftPicks", toAny(bundle.DraftPicks))
	put("trade", toAny(bundle.Trade))
	put("draftLotteryResults", toAny(bundle.DraftLotteryResults))
	put("games", toAny(bundle.Games))
	put("schedule", toAny(bundle.Schedule))
	put("awards", toAny(bundle.Awards))
	put("negotiations", toAny(bundle.Negotiations))
	put("messages", toAny(bundle.Messages))
	put("events", toAny(bundle.Events))
	put("playerFeats", toAny(bundle.PlayerFeats))
	put("playoffSeries", toAny(bundle.PlayoffSeries))
	put("releasedPlayers", toAny(bundle.ReleasedPlayers))
	if err != nil {
		return 0, err
	}

	if err := saver.PutAttributes(ctx, lid, bundle.Config.Records()); err != nil {
		return 0, err
	}
	return lid, nil
}

func toAny[T any](s []T) []any {
	out := make([]any, len(s))
	for i := range s {
		out[i] = s[i]
	}
	return out
}
