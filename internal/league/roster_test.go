package league

import (
	"testing"
)

func TestAssignRostersFillsTeams(t *testing.T) {
	cfg := DefaultConfig(2026)
	rnd := testRand()

	infos := DefaultTeamInfos()
	teams := make([]Team, len(infos))
	for i, info := range infos {
		teams[i] = GenerateTeam(cfg, info)
	}
	pool := GenSeedPlayers(cfg, rnd, 1, 1)

	kept, err := AssignRosters(cfg, rnd, teams, pool)
	if err != nil {
		t.Fatalf("assign rosters: %v", err)
	}

	target := NumPlayersPerTeam(cfg.MaxRosterSize)
	counts := make(map[int]int)
	fas := 0
	for i := range kept {
		switch {
		case kept[i].TID >= 0:
			counts[kept[i].TID]++
		case kept[i].TID == TidFreeAgent:
			fas++
		default:
			t.Fatalf("unexpected tid %d in kept pool", kept[i].TID)
		}
	}
	for _, tm := range teams {
		if counts[tm.TID] != target {
			t.Fatalf("team %d has %d players, want %d", tm.TID, counts[tm.TID], target)
		}
	}
	if fas > MaxFreeAgents(cfg.NumTeams) {
		t.Fatalf("%d free agents exceeds cap of %d", fas, MaxFreeAgents(cfg.NumTeams))
	}
	if fas == 0 {
		t.Fatalf("expected leftover free agents from a %d-player pool", len(pool))
	}
}

func TestEnforceHardCap(t *testing.T) {
	cfg := DefaultConfig(2026)
	cfg.HardCap = true
	teams := []Team{{TID: 0}}

	players := []Player{
		{PID: 1, TID: 0, Contract: Contract{Amount: 60000}},
		{PID: 2, TID: 0, Contract: Contract{Amount: 40000}},
	}
	if err := enforceHardCap(cfg, players, teams); err != nil {
		t.Fatalf("trim should succeed: %v", err)
	}
	total := players[0].Contract.Amount + players[1].Contract.Amount
	if total > cfg.SalaryCap {
		t.Fatalf("payroll %d still over cap %d", total, cfg.SalaryCap)
	}
	for _, p := range players {
		if p.Contract.Amount < cfg.MinContract {
			t.Fatalf("trim cut player %d below the minimum", p.PID)
		}
	}
}

func TestEnforceHardCapImpossible(t *testing.T) {
	cfg := DefaultConfig(2026)
	cfg.HardCap = true
	cfg.SalaryCap = 1000 // less than two minimum deals
	teams := []Team{{TID: 0}}

	players := []Player{
		{PID: 1, TID: 0, Contract: Contract{Amount: cfg.MinContract}},
		{PID: 2, TID: 0, Contract: Contract{Amount: cfg.MinContract}},
	}
	if err := enforceHardCap(cfg, players, teams); err != ErrNoValidCapCombination {
		t.Fatalf("expected ErrNoValidCapCombination, got %v", err)
	}
}

func TestRetentionProb(t *testing.T) {
	if p := retentionProb(0, 1); p != 0.9 {
		t.Fatalf("fresh first-rounder prob %f, want 0.9", p)
	}
	if p1, p2 := retentionProb(3, 1), retentionProb(3, 2); p2 >= p1 {
		t.Fatalf("second-rounders should stick less: %f vs %f", p2, p1)
	}
	if p := retentionProb(10, 2); p != 0 {
		t.Fatalf("ancient second-rounder prob %f, want 0", p)
	}
}
