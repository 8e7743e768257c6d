package league

import (
	"math"
	"testing"
)

// tradeFixture builds a two-team snapshot with hand-rolled players so
// valuations are fully deterministic.
func tradeFixture(cfg Config) *TradeSnapshot {
	mk := func(pid, tid, age, ovr, pot int, skills []string, amount, exp int) Player {
		return Player{
			PID:      pid,
			TID:      tid,
			BornYear: cfg.Season - age,
			Ratings:  []PlayerRatings{{Season: cfg.Season, Ovr: ovr, Pot: pot, Skills: skills}},
			Contract: Contract{Amount: amount, Exp: exp},
		}
	}
	return &TradeSnapshot{
		Teams: []Team{
			{TID: 0, Strategy: StrategyContending},
			{TID: 1, Strategy: StrategyRebuilding},
		},
		TeamSeasons: []TeamSeason{
			{TID: 0, Season: cfg.Season - 1, Won: 60, Lost: 22},
			{TID: 1, Season: cfg.Season - 1, Won: 20, Lost: 62},
			{TID: 0, Season: cfg.Season},
			{TID: 1, Season: cfg.Season},
		},
		Players: []Player{
			mk(1, 0, 26, 55, 58, nil, 8000, cfg.Season+2),
			mk(2, 1, 26, 55, 58, nil, 8000, cfg.Season+2),
			mk(3, 1, 26, 70, 72, []string{"Ps"}, 8000, cfg.Season+2),
			mk(4, 0, 26, 40, 42, nil, 2000, cfg.Season+1),
		},
		DraftPicks: []DraftPick{
			{DPID: 1, TID: 0, OriginalTID: 0, Round: 1, Season: cfg.Season},
			{DPID: 2, TID: 0, OriginalTID: 0, Round: 2, Season: cfg.Season},
			{DPID: 3, TID: 0, OriginalTID: 0, Round: 1, Season: cfg.Season + 1},
			{DPID: 4, TID: 1, OriginalTID: 1, Round: 1, Season: cfg.Season},
		},
	}
}

func TestValueChangePickCountSentinel(t *testing.T) {
	cfg := DefaultConfig(2026)
	snap := tradeFixture(cfg)

	// Three picks out is rejected before anything is even looked up.
	score := ValueChange(cfg, snap, TradeProposal{
		TID:         0,
		PidsAdd:     []int{3},
		DpidsRemove: []int{1, 2, 99},
	}, nil)
	if score != TradeRejectSentinel {
		t.Fatalf("expected sentinel %v, got %v", TradeRejectSentinel, score)
	}

	// Two picks out is priced normally.
	score = ValueChange(cfg, snap, TradeProposal{
		TID:         0,
		PidsAdd:     []int{3},
		DpidsRemove: []int{1, 2},
	}, nil)
	if score == TradeRejectSentinel {
		t.Fatalf("two-pick trade should be priced, not rejected")
	}
}

func TestValueChangeSymmetry(t *testing.T) {
	cfg := DefaultConfig(2026)
	cfg.UserTID = 0 // no self-fudge for the user's own team
	snap := tradeFixture(cfg)

	// Players 1 and 2 are identical; swapping them should be close to
	// a wash from both directions.
	s1 := ValueChange(cfg, snap, TradeProposal{TID: 0, PidsAdd: []int{2}, PidsRemove: []int{1}}, nil)
	s2 := ValueChange(cfg, snap, TradeProposal{TID: 0, PidsAdd: []int{1}, PidsRemove: []int{2}}, nil)
	if math.Abs(s1-s2) > 1e-9 {
		t.Fatalf("identical swaps diverge: %v vs %v", s1, s2)
	}
	if math.Abs(s1) > 5 {
		t.Fatalf("identical swap should be near zero, got %v", s1)
	}
}

func TestValueChangeMonotonicity(t *testing.T) {
	cfg := DefaultConfig(2026)
	cfg.UserTID = 0
	snap := tradeFixture(cfg)

	// Player 3 strictly outplays player 1 on the same skills and
	// contract; acquiring the upgrade must score positive.
	score := ValueChange(cfg, snap, TradeProposal{TID: 0, PidsAdd: []int{3}, PidsRemove: []int{1}}, nil)
	if score <= 0 {
		t.Fatalf("upgrading 55 ovr to 70 ovr scored %v", score)
	}

	downgrade := ValueChange(cfg, snap, TradeProposal{TID: 1, PidsAdd: []int{1}, PidsRemove: []int{3}}, nil)
	if downgrade >= score {
		t.Fatalf("downgrade %v should score below upgrade %v", downgrade, score)
	}
}

func TestValueChangeAISelfFudge(t *testing.T) {
	cfg := DefaultConfig(2026)
	snap := tradeFixture(cfg)

	// Team 1 is AI (user is team 0): its own outgoing player is
	// inflated, so the identical swap looks worse to it than to the
	// user evaluating the mirror trade.
	cfg.UserTID = 0
	aiScore := ValueChange(cfg, snap, TradeProposal{TID: 1, PidsAdd: []int{1}, PidsRemove: []int{2}}, nil)
	userScore := ValueChange(cfg, snap, TradeProposal{TID: 0, PidsAdd: []int{2}, PidsRemove: []int{1}}, nil)
	if aiScore >= userScore {
		t.Fatalf("AI self-fudge missing: ai=%v user=%v", aiScore, userScore)
	}

	// Difficulty raises the fudge further.
	cfg.Difficulty = 2
	harder := ValueChange(cfg, snap, TradeProposal{TID: 1, PidsAdd: []int{1}, PidsRemove: []int{2}}, nil)
	if harder >= aiScore {
		t.Fatalf("difficulty should deepen the fudge: %v vs %v", harder, aiScore)
	}
}

func TestValueChangeUnknownAssetsSkipped(t *testing.T) {
	cfg := DefaultConfig(2026)
	cfg.UserTID = 0
	snap := tradeFixture(cfg)

	with := ValueChange(cfg, snap, TradeProposal{TID: 0, PidsAdd: []int{3}, PidsRemove: []int{1}}, nil)
	withGhosts := ValueChange(cfg, snap, TradeProposal{
		TID:        0,
		PidsAdd:    []int{3, 999},
		PidsRemove: []int{1, 888},
		DpidsAdd:   []int{777},
	}, nil)
	if with != withGhosts {
		t.Fatalf("unknown assets changed the score: %v vs %v", with, withGhosts)
	}
}

func TestValueChangeCapSpaceAversion(t *testing.T) {
	cfg := DefaultConfig(2026)
	cfg.UserTID = 0
	snap := tradeFixture(cfg)

	proposal := TradeProposal{TID: 0, PidsAdd: []int{3}, PidsRemove: []int{4}}

	cfg.Phase = PhaseRegularSeason
	neutral := ValueChange(cfg, snap, proposal, nil)

	cfg.Phase = PhaseFreeAgency
	cfg.DaysLeft = 30
	early := ValueChange(cfg, snap, proposal, nil)
	if early >= neutral {
		t.Fatalf("consuming cap room in free agency should cost: %v vs %v", early, neutral)
	}

	cfg.DaysLeft = 1
	late := ValueChange(cfg, snap, proposal, nil)
	if late <= early {
		t.Fatalf("penalty should taper as free agency ends: %v vs %v", late, early)
	}
}

func TestValueChangeAssetCountPenalty(t *testing.T) {
	cfg := DefaultConfig(2026)
	cfg.UserTID = 0
	snap := tradeFixture(cfg)

	oneForOne := ValueChange(cfg, snap, TradeProposal{TID: 0, PidsAdd: []int{2}, PidsRemove: []int{1}}, nil)
	twoForOne := ValueChange(cfg, snap, TradeProposal{TID: 0, PidsAdd: []int{2, 3}, PidsRemove: []int{1}}, nil)
	if twoForOne <= oneForOne {
		t.Fatalf("adding a 70 ovr player for free should still help: %v vs %v", twoForOne, oneForOne)
	}
}

func TestEstimatedWinPct(t *testing.T) {
	cfg := DefaultConfig(2026)
	snap := tradeFixture(cfg)

	// No current-season games: prior record carries.
	good := estimatedWinPct(cfg, snap, 0)
	bad := estimatedWinPct(cfg, snap, 1)
	if good <= bad {
		t.Fatalf("60-win team estimated below 20-win team: %v vs %v", good, bad)
	}

	// Past the halfway point the current record takes over.
	for i := range snap.TeamSeasons {
		if snap.TeamSeasons[i].TID == 0 && snap.TeamSeasons[i].Season == cfg.Season {
			snap.TeamSeasons[i].Won = 10
			snap.TeamSeasons[i].Lost = 50
		}
	}
	collapsed := estimatedWinPct(cfg, snap, 0)
	if collapsed >= good {
		t.Fatalf("mid-season collapse should lower the estimate: %v vs %v", collapsed, good)
	}
}

func TestImpliedDraftRankRegression(t *testing.T) {
	cfg := DefaultConfig(2026)
	snap := tradeFixture(cfg)

	now := impliedDraftRank(cfg, snap, &DraftPick{OriginalTID: 1, Round: 1, Season: cfg.Season})
	future := impliedDraftRank(cfg, snap, &DraftPick{OriginalTID: 1, Round: 1, Season: cfg.Season + 3})
	if future <= now {
		t.Fatalf("a bad team's future pick should regress toward the middle: now=%v future=%v", now, future)
	}
}

func TestEstimatePickValuesShape(t *testing.T) {
	cfg := DefaultConfig(2026)
	table := EstimatePickValues(cfg, testRand())
	if len(table) != cfg.NumSeasonsFutureDraftPicks {
		t.Fatalf("table covers %d seasons, want %d", len(table), cfg.NumSeasonsFutureDraftPicks)
	}
	values := table[cfg.Season]
	if len(values) == 0 {
		t.Fatalf("no values for the current season")
	}
	for i := 1; i < len(values); i++ {
		if values[i] > values[i-1] {
			t.Fatalf("pick values not sorted descending at slot %d", i)
		}
	}
}
