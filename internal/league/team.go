package league

import (
	"math"
	"math/rand"
	"sort"
)

// TeamInfo is the identity + market input to team generation, either a
// default-table entry or an imported seed backfilled with defaults.
type TeamInfo struct {
	TID     int
	CID     int
	DID     int
	Region  string
	Name    string
	Abbrev  string
	ImgURL  string
	Colors  [3]string
	Pop     float64
	PopRank int

	Strategy *Strategy
	Budget   *Budget
	Disabled bool

	// History carried in from an imported file.
	seedSeasons []TeamSeason
	seedStats   []TeamStats
}

// defaultTeams is the built-in 30-team league: two conferences of
// three five-team divisions, ordered so tid == index.
var defaultTeams = []TeamInfo{
	{CID: 0, DID: 0, Region: "Boston", Name: "Harbormen", Abbrev: "BOS", Pop: 4.9, Colors: [3]string{"#0d5c3f", "#ffffff", "#c8a951"}},
	{CID: 0, DID: 0, Region: "Brooklyn", Name: "Barons", Abbrev: "BKN", Pop: 19.9, Colors: [3]string{"#000000", "#ffffff", "#5a5a5a"}},
	{CID: 0, DID: 0, Region: "Philadelphia", Name: "Founders", Abbrev: "PHI", Pop: 6.2, Colors: [3]string{"#1460aa", "#d50032", "#ffffff"}},
	{CID: 0, DID: 0, Region: "Toronto", Name: "Huskies", Abbrev: "TOR", Pop: 6.6, Colors: [3]string{"#8b1010", "#cfcfcf", "#000000"}},
	{CID: 0, DID: 0, Region: "New York", Name: "Knights", Abbrev: "NYC", Pop: 19.9, Colors: [3]string{"#1f4e9c", "#f58426", "#ffffff"}},
	{CID: 0, DID: 1, Region: "Chicago", Name: "Stockyards", Abbrev: "CHI", Pop: 9.5, Colors: [3]string{"#ce1141", "#000000", "#ffffff"}},
	{CID: 0, DID: 1, Region: "Cleveland", Name: "Rockers", Abbrev: "CLE", Pop: 2.1, Colors: [3]string{"#6f263d", "#ffb81c", "#041e42"}},
	{CID: 0, DID: 1, Region: "Detroit", Name: "Motors", Abbrev: "DET", Pop: 4.3, Colors: [3]string{"#1d428a", "#c8102e", "#bec0c2"}},
	{CID: 0, DID: 1, Region: "Indianapolis", Name: "Racers", Abbrev: "IND", Pop: 2.0, Colors: [3]string{"#002d62", "#fdbb30", "#bec0c2"}},
	{CID: 0, DID: 1, Region: "Milwaukee", Name: "Brewmasters", Abbrev: "MIL", Pop: 1.6, Colors: [3]string{"#00471b", "#eee1c6", "#0077c0"}},
	{CID: 0, DID: 2, Region: "Atlanta", Name: "Aviators", Abbrev: "ATL", Pop: 6.0, Colors: [3]string{"#e03a3e", "#c1d32f", "#26282a"}},
	{CID: 0, DID: 2, Region: "Charlotte", Name: "Queens", Abbrev: "CHA", Pop: 2.7, Colors: [3]string{"#1d1160", "#00788c", "#a1a1a4"}},
	{CID: 0, DID: 2, Region: "Miami", Name: "Cyclones", Abbrev: "MIA", Pop: 6.2, Colors: [3]string{"#98002e", "#f9a01b", "#000000"}},
	{CID: 0, DID: 2, Region: "Orlando", Name: "Juice", Abbrev: "ORL", Pop: 2.7, Colors: [3]string{"#0077c0", "#c4ced4", "#000000"}},
	{CID: 0, DID: 2, Region: "Washington", Name: "Monuments", Abbrev: "WAS", Pop: 6.3, Colors: [3]string{"#002b5c", "#e31837", "#c4ced4"}},
	{CID: 1, DID: 3, Region: "Denver", Name: "Summit", Abbrev: "DEN", Pop: 2.9, Colors: [3]string{"#0e2240", "#fec524", "#8b2131"}},
	{CID: 1, DID: 3, Region: "Minneapolis", Name: "North Stars", Abbrev: "MIN", Pop: 3.6, Colors: [3]string{"#0c2340", "#78be20", "#9ea2a2"}},
	{CID: 1, DID: 3, Region: "Oklahoma City", Name: "Twisters", Abbrev: "OKC", Pop: 1.4, Colors: [3]string{"#007ac1", "#ef3b24", "#002d62"}},
	{CID: 1, DID: 3, Region: "Portland", Name: "Pioneers", Abbrev: "POR", Pop: 2.5, Colors: [3]string{"#e03a3e", "#000000", "#ffffff"}},
	{CID: 1, DID: 3, Region: "Salt Lake City", Name: "Peaks", Abbrev: "SLC", Pop: 1.2, Colors: [3]string{"#002b5c", "#00471b", "#f9a01b"}},
	{CID: 1, DID: 4, Region: "Golden State", Name: "Gold Rush", Abbrev: "GSW", Pop: 4.7, Colors: [3]string{"#1d428a", "#ffc72c", "#ffffff"}},
	{CID: 1, DID: 4, Region: "Los Angeles", Name: "Earthquakes", Abbrev: "LAE", Pop: 13.1, Colors: [3]string{"#552583", "#fdb927", "#000000"}},
	{CID: 1, DID: 4, Region: "Los Angeles", Name: "Lowriders", Abbrev: "LAL", Pop: 13.1, Colors: [3]string{"#c8102e", "#1d428a", "#bec0c2"}},
	{CID: 1, DID: 4, Region: "Phoenix", Name: "Scorch", Abbrev: "PHX", Pop: 4.9, Colors: [3]string{"#1d1160", "#e56020", "#f9ad1b"}},
	{CID: 1, DID: 4, Region: "Sacramento", Name: "Gold Miners", Abbrev: "SAC", Pop: 2.4, Colors: [3]string{"#5a2d81", "#63727a", "#000000"}},
	{CID: 1, DID: 5, Region: "Dallas", Name: "Mustangs", Abbrev: "DAL", Pop: 7.6, Colors: [3]string{"#00538c", "#002b5e", "#b8c4ca"}},
	{CID: 1, DID: 5, Region: "Houston", Name: "Apollos", Abbrev: "HOU", Pop: 7.1, Colors: [3]string{"#ce1141", "#000000", "#c4ced4"}},
	{CID: 1, DID: 5, Region: "Memphis", Name: "Riverboats", Abbrev: "MEM", Pop: 1.3, Colors: [3]string{"#5d76a9", "#12173f", "#f5b112"}},
	{CID: 1, DID: 5, Region: "New Orleans", Name: "Krewe", Abbrev: "NOL", Pop: 1.3, Colors: [3]string{"#0c2340", "#c8102e", "#85714d"}},
	{CID: 1, DID: 5, Region: "San Antonio", Name: "Missions", Abbrev: "SAS", Pop: 2.6, Colors: [3]string{"#c4ced4", "#000000", "#ffffff"}},
}

// DefaultTeamInfos returns the built-in team table with tids and
// population ranks filled in.
func DefaultTeamInfos() []TeamInfo {
	infos := make([]TeamInfo, len(defaultTeams))
	copy(infos, defaultTeams)
	for i := range infos {
		infos[i].TID = i
	}
	fillPopRanks(infos)
	return infos
}

// fillPopRanks assigns 1-based ranks, largest market first. Ties keep
// table order.
func fillPopRanks(infos []TeamInfo) {
	idx := make([]int, len(infos))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return infos[idx[a]].Pop > infos[idx[b]].Pop
	})
	for rank, i := range idx {
		infos[i].PopRank = rank + 1
	}
}

// defaultBudgetAmount is the population-rank-relative operating budget
// formula: the largest market gets the largest default spend, the
// smallest gets the base amount, interpolated linearly between. Scaled
// by the salary cap so custom-cap leagues stay in proportion.
func defaultBudgetAmount(cfg Config, popRank int) int {
	base := float64(cfg.SalaryCap) / 90000.0 * 1350.0
	spread := 900.0 * float64(cfg.NumTeams-popRank) / float64(cfg.NumTeams-1)
	return int(math.Round(base+spread)) * 10
}

func defaultTicketPrice(cfg Config, popRank int) int {
	return int(math.Round(25 + 25*float64(cfg.NumTeams-popRank)/float64(cfg.NumTeams-1)))
}

// GenerateTeam maps team metadata into the persisted Team shape.
// Explicit budget/strategy from an import win over the defaults.
func GenerateTeam(cfg Config, info TeamInfo) Team {
	t := Team{
		TID:      info.TID,
		CID:      info.CID,
		DID:      info.DID,
		Region:   info.Region,
		Name:     info.Name,
		Abbrev:   info.Abbrev,
		ImgURL:   info.ImgURL,
		Colors:   info.Colors,
		Pop:      info.Pop,
		Strategy: StrategyRebuilding,
		Disabled: info.Disabled,
	}
	if info.Strategy != nil {
		t.Strategy = *info.Strategy
	}
	if info.Budget != nil {
		t.Budget = *info.Budget
	} else {
		amount := defaultBudgetAmount(cfg, info.PopRank)
		item := BudgetItem{Amount: amount, Rank: info.PopRank}
		t.Budget = Budget{
			TicketPrice: BudgetItem{Amount: defaultTicketPrice(cfg, info.PopRank), Rank: info.PopRank},
			Scouting:    item,
			Coaching:    item,
			Health:      item,
			Facilities:  item,
		}
	}
	return t
}

// GenTeamSeason builds the season row for a team. With a prior season
// it carries population, capacity, hype and cash forward with small
// randomized drift; without one it seeds fresh values.
func GenTeamSeason(rnd *rand.Rand, t Team, season int, prev *TeamSeason) TeamSeason {
	ts := TeamSeason{
		TID:             t.TID,
		Season:          season,
		Pop:             t.Pop,
		StadiumCapacity: 17500,
		Hype:            randFloat(rnd, 0.0, 1.0),
		Cash:            10000,
	}
	if prev != nil {
		ts.Pop = prev.Pop * randFloat(rnd, 0.98, 1.02)
		ts.StadiumCapacity = prev.StadiumCapacity
		ts.Hype = math.Max(0, math.Min(1, prev.Hype+randFloat(rnd, -0.05, 0.05)))
		ts.Cash = prev.Cash
	}
	// Expense rows start at the budgeted amounts so spend-derived
	// quantities like scouting rank vary by market from season one.
	rank := BudgetItem{Rank: t.Budget.Scouting.Rank}
	ts.Revenues = Revenues{LuxuryTaxShare: rank, Merch: rank, Sponsor: rank, Ticket: rank, NationalTV: rank, LocalTV: rank}
	ts.Expenses = Expenses{
		Salary:     rank,
		LuxuryTax:  rank,
		MinTax:     rank,
		Scouting:   t.Budget.Scouting,
		Coaching:   t.Budget.Coaching,
		Health:     t.Budget.Health,
		Facilities: t.Budget.Facilities,
	}
	return ts
}

// GenTeamStats creates the blank aggregate row for (team, season,
// playoffs). Rows are created lazily; this is the lazy creator.
func GenTeamStats(tid, season int, playoffs bool) TeamStats {
	return TeamStats{TID: tid, Season: season, Playoffs: playoffs}
}

// WinPct is zero-safe: a team with no games yet reads as .500 so it
// neither inflates nor tanks estimates.
func WinPct(ts TeamSeason) float64 {
	gp := ts.Won + ts.Lost
	if gp == 0 {
		return 0.5
	}
	return float64(ts.Won) / float64(gp)
}

// ScoutingRank ranks team tid's scouting spend over up to the last
// three seasons, 1 = highest spend. It is a noise-control input to
// player generation: better scouting means less fuzz on generated
// ratings.
func ScoutingRank(teams []Team, seasons []TeamSeason, tid, currentSeason int) (int, error) {
	spend := make(map[int]float64, len(teams))
	counted := make(map[int]int, len(teams))
	for _, ts := range seasons {
		if ts.Season <= currentSeason && ts.Season > currentSeason-3 {
			spend[ts.TID] += float64(ts.Expenses.Scouting.Amount)
			counted[ts.TID]++
		}
	}
	// Fresh leagues have no expense history yet; fall back to the
	// budgeted scouting amounts.
	for _, t := range teams {
		if counted[t.TID] == 0 {
			spend[t.TID] = float64(t.Budget.Scouting.Amount)
		} else {
			spend[t.TID] /= float64(counted[t.TID])
		}
	}

	rank := 1
	mine, ok := spend[tid]
	if !ok || math.IsNaN(mine) {
		return 0, ErrScoutingRank
	}
	for _, t := range teams {
		if t.TID != tid && spend[t.TID] > mine {
			rank++
		}
	}
	return rank, nil
}

// RecomputeStrategy classifies a team from its aggregate current-roster
// strength: contending above the threshold, rebuilding below.
func RecomputeStrategy(players []Player, tid int) Strategy {
	var sum, n int
	for i := range players {
		if players[i].TID == tid {
			sum += players[i].CurrentRatings().Ovr
			n++
		}
	}
	if n == 0 {
		return StrategyRebuilding
	}
	if float64(sum)/float64(n) >= 55 {
		return StrategyContending
	}
	return StrategyRebuilding
}
