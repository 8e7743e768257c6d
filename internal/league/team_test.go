package league

import (
	"math/rand"
	"testing"
)

func freshTeamsAndSeasons(t *testing.T, cfg Config, rnd *rand.Rand) ([]Team, []TeamSeason) {
	t.Helper()
	infos := DefaultTeamInfos()
	teams := make([]Team, len(infos))
	seasons := make([]TeamSeason, len(infos))
	for i, info := range infos {
		teams[i] = GenerateTeam(cfg, info)
		seasons[i] = GenTeamSeason(rnd, teams[i], cfg.Season, nil)
	}
	return teams, seasons
}

func TestGenTeamSeasonSeedsExpensesFromBudget(t *testing.T) {
	cfg := DefaultConfig(2026)
	rnd := rand.New(rand.NewSource(3))
	teams, seasons := freshTeamsAndSeasons(t, cfg, rnd)

	for i, ts := range seasons {
		if ts.Expenses.Scouting.Amount != teams[i].Budget.Scouting.Amount {
			t.Fatalf("team %d scouting expense %d, want budgeted %d",
				teams[i].TID, ts.Expenses.Scouting.Amount, teams[i].Budget.Scouting.Amount)
		}
		if ts.Expenses.Scouting.Amount == 0 {
			t.Fatalf("team %d has zero scouting expense in its first season", teams[i].TID)
		}
	}
}

func TestGenTeamSeasonRanksFollowBudget(t *testing.T) {
	cfg := DefaultConfig(2026)
	rnd := rand.New(rand.NewSource(3))

	// A rank beyond 30 must survive into the season row untouched, so
	// custom-size leagues don't collide.
	team := Team{TID: 34, Budget: Budget{Scouting: BudgetItem{Amount: 14000, Rank: 35}}}
	ts := GenTeamSeason(rnd, team, cfg.Season, nil)
	if ts.Expenses.Scouting.Rank != 35 {
		t.Fatalf("scouting rank %d, want 35", ts.Expenses.Scouting.Rank)
	}
	if ts.Revenues.Ticket.Rank != 35 {
		t.Fatalf("ticket revenue rank %d, want 35", ts.Revenues.Ticket.Rank)
	}
}

func TestScoutingRankVariesByMarket(t *testing.T) {
	cfg := DefaultConfig(2026)
	rnd := rand.New(rand.NewSource(3))
	teams, seasons := freshTeamsAndSeasons(t, cfg, rnd)

	var best, worst int
	for _, tm := range teams {
		if tm.Budget.Scouting.Rank == 1 {
			best = tm.TID
		}
		if tm.Budget.Scouting.Rank == len(teams) {
			worst = tm.TID
		}
	}

	bestRank, err := ScoutingRank(teams, seasons, best, cfg.Season)
	if err != nil {
		t.Fatalf("best-market rank: %v", err)
	}
	worstRank, err := ScoutingRank(teams, seasons, worst, cfg.Season)
	if err != nil {
		t.Fatalf("worst-market rank: %v", err)
	}
	if bestRank != 1 {
		t.Fatalf("biggest spender ranks %d, want 1", bestRank)
	}
	if worstRank != len(teams) {
		t.Fatalf("smallest spender ranks %d, want %d", worstRank, len(teams))
	}
}

func TestScoutingRankBudgetFallback(t *testing.T) {
	// Imported leagues can carry season rows without expense data from
	// the window; teams with no counted rows fall back to budgets.
	teams := []Team{
		{TID: 0, Budget: Budget{Scouting: BudgetItem{Amount: 20000}}},
		{TID: 1, Budget: Budget{Scouting: BudgetItem{Amount: 10000}}},
	}
	old := []TeamSeason{
		{TID: 0, Season: 2010},
		{TID: 1, Season: 2010},
	}
	rank, err := ScoutingRank(teams, old, 1, 2026)
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if rank != 2 {
		t.Fatalf("smaller budget ranks %d, want 2", rank)
	}
}

func TestWinPctZeroGames(t *testing.T) {
	if got := WinPct(TeamSeason{}); got != 0.5 {
		t.Fatalf("no-games win pct %v, want .5", got)
	}
	if got := WinPct(TeamSeason{Won: 3, Lost: 1}); got != 0.75 {
		t.Fatalf("win pct %v, want .75", got)
	}
}
