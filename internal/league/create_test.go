package league

import (
	"context"
	"errors"
	"testing"
)

func TestCreateWithoutSavingFromScratch(t *testing.T) {
	bundle, err := CreateWithoutSaving(CreateRequest{
		Name:           "Test League",
		TID:            3,
		StartingSeason: 2026,
		Rand:           testRand(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	cfg := bundle.Config
	if cfg.NumTeams != 30 || len(bundle.Teams) != 30 {
		t.Fatalf("expected 30 teams, got %d", len(bundle.Teams))
	}
	if cfg.UserTID != 3 {
		t.Fatalf("user tid %d, want 3", cfg.UserTID)
	}
	for i, tm := range bundle.Teams {
		if tm.TID != i {
			t.Fatalf("team %d has tid %d", i, tm.TID)
		}
	}

	// Full population: filled rosters, a capped free-agent pool and
	// three draft classes.
	target := NumPlayersPerTeam(cfg.MaxRosterSize)
	want := cfg.NumTeams*target + MaxFreeAgents(cfg.NumTeams) + 3*DraftClassTargetSize(cfg.NumDraftRounds, cfg.NumTeams)
	if len(bundle.Players) != want {
		t.Fatalf("player count %d, want %d", len(bundle.Players), want)
	}

	classes := map[int]int{}
	for i := range bundle.Players {
		if tid := bundle.Players[i].TID; tid <= TidUndrafted && tid >= TidUndrafted3 {
			classes[tid]++
		}
	}
	targetClass := DraftClassTargetSize(cfg.NumDraftRounds, cfg.NumTeams)
	for _, tid := range []int{TidUndrafted, TidUndrafted2, TidUndrafted3} {
		if classes[tid] != targetClass {
			t.Fatalf("class for tid %d has %d prospects, want %d", tid, classes[tid], targetClass)
		}
	}

	wantPicks := cfg.NumSeasonsFutureDraftPicks * cfg.NumDraftRounds * cfg.NumTeams
	if len(bundle.DraftPicks) != wantPicks {
		t.Fatalf("draft picks %d, want %d", len(bundle.DraftPicks), wantPicks)
	}
	seen := map[int]bool{}
	for _, pk := range bundle.DraftPicks {
		if seen[pk.DPID] {
			t.Fatalf("duplicate dpid %d", pk.DPID)
		}
		seen[pk.DPID] = true
		if pk.Season < cfg.Season || pk.Season >= cfg.Season+cfg.NumSeasonsFutureDraftPicks {
			t.Fatalf("pick season %d outside window", pk.Season)
		}
	}

	if len(bundle.Trade) != 1 {
		t.Fatalf("expected one trade state row, got %d", len(bundle.Trade))
	}
	if len(bundle.TeamSeasons) != 30 || len(bundle.TeamStats) != 30 {
		t.Fatalf("seasons=%d stats=%d, want 30 each", len(bundle.TeamSeasons), len(bundle.TeamStats))
	}
}

func TestCreateWithoutSavingRandomTeam(t *testing.T) {
	bundle, err := CreateWithoutSaving(CreateRequest{
		Name:           "Random",
		TID:            99, // out of range means random
		StartingSeason: 2026,
		Rand:           testRand(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if bundle.Config.UserTID < 0 || bundle.Config.UserTID >= bundle.Config.NumTeams {
		t.Fatalf("random user tid %d out of range", bundle.Config.UserTID)
	}
}

func TestCreateWithoutSavingRejectsNonSequentialTids(t *testing.T) {
	_, err := CreateWithoutSaving(CreateRequest{
		Name:           "Bad",
		StartingSeason: 2026,
		Rand:           testRand(),
		LeagueFile: &LeagueFile{
			Teams: []TeamSeed{
				{TID: ptr(0), Region: "A", Name: "A", Abbrev: "AAA"},
				{TID: ptr(2), Region: "B", Name: "B", Abbrev: "BBB"},
			},
		},
	})
	if !errors.Is(err, ErrNonSequentialTeamIDs) {
		t.Fatalf("expected ErrNonSequentialTeamIDs, got %v", err)
	}
}

func TestCreateWithoutSavingImportedPlayers(t *testing.T) {
	players := []Player{
		{PID: 1, TID: 0, BornYear: 2000, Ratings: []PlayerRatings{{Season: 2026, Ovr: 60, Pot: 65}}, Contract: Contract{Amount: 5000, Exp: 2028}},
		{PID: 2, TID: 1, BornYear: 1998, Ratings: []PlayerRatings{{Season: 2026, Ovr: 55, Pot: 55}}, Contract: Contract{Amount: 3000, Exp: 2027}},
	}
	bundle, err := CreateWithoutSaving(CreateRequest{
		Name:           "Imported",
		StartingSeason: 2026,
		Rand:           testRand(),
		LeagueFile:     &LeagueFile{Players: players},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Imported rosters are kept as-is, but sparse draft classes get
	// topped up to the target size.
	targetClass := DraftClassTargetSize(bundle.Config.NumDraftRounds, bundle.Config.NumTeams)
	classes := 0
	rostered := 0
	for i := range bundle.Players {
		switch tid := bundle.Players[i].TID; {
		case tid >= 0:
			rostered++
		case tid <= TidUndrafted && tid >= TidUndrafted3:
			classes++
		}
	}
	if rostered != 2 {
		t.Fatalf("rostered players %d, want the 2 imported", rostered)
	}
	if classes != 3*targetClass {
		t.Fatalf("backfilled prospects %d, want %d", classes, 3*targetClass)
	}
}

func TestRosterOrderSorted(t *testing.T) {
	bundle, err := CreateWithoutSaving(CreateRequest{
		Name:           "Sorted",
		StartingSeason: 2026,
		Rand:           testRand(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	byTeam := map[int][]Player{}
	for i := range bundle.Players {
		if bundle.Players[i].TID >= 0 {
			byTeam[bundle.Players[i].TID] = append(byTeam[bundle.Players[i].TID], bundle.Players[i])
		}
	}
	for tid, roster := range byTeam {
		seen := make([]bool, len(roster))
		for _, p := range roster {
			if p.RosterOrder < 0 || p.RosterOrder >= len(roster) || seen[p.RosterOrder] {
				t.Fatalf("team %d has invalid roster order %d", tid, p.RosterOrder)
			}
			seen[p.RosterOrder] = true
		}
	}
}

// fakeSaver records persistence calls for asserting Create's store
// routing without a database.
type fakeSaver struct {
	nextLid  int
	replaced []int
	stores   map[string]int
	attrs    []AttributeRecord
	order    []string
}

func newFakeSaver() *fakeSaver {
	return &fakeSaver{nextLid: 1, stores: map[string]int{}}
}

func (f *fakeSaver) CreateLeague(_ context.Context, name string) (int, error) {
	lid := f.nextLid
	f.nextLid++
	return lid, nil
}

func (f *fakeSaver) ReplaceLeague(_ context.Context, lid int, name string) error {
	f.replaced = append(f.replaced, lid)
	return nil
}

func (f *fakeSaver) DeleteLeague(_ context.Context, lid int) error { return nil }

func (f *fakeSaver) PutRecords(_ context.Context, lid int, store string, records []any) error {
	f.stores[store] += len(records)
	f.order = append(f.order, store)
	return nil
}

func (f *fakeSaver) PutAttributes(_ context.Context, lid int, records []AttributeRecord) error {
	f.attrs = append(f.attrs, records...)
	return nil
}

func TestCreatePersists(t *testing.T) {
	saver := newFakeSaver()
	lid, err := Create(context.Background(), saver, CreateRequest{
		Name:           "Persisted",
		TID:            0,
		StartingSeason: 2026,
		Rand:           testRand(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if lid != 1 {
		t.Fatalf("lid %d, want 1", lid)
	}
	if saver.stores["teams"] != 30 {
		t.Fatalf("persisted %d teams", saver.stores["teams"])
	}
	if saver.stores["players"] == 0 || saver.stores["draftPicks"] == 0 {
		t.Fatalf("players or picks not persisted: %v", saver.stores)
	}
	// Attributes go through their own path, never the bulk loop.
	if saver.stores["gameAttributes"] != 0 {
		t.Fatalf("attributes leaked into the bulk store loop")
	}
	if len(saver.attrs) == 0 {
		t.Fatalf("no attribute records persisted")
	}

	// Games must land before schedule rows.
	gi, si := -1, -1
	for i, name := range saver.order {
		if name == "games" {
			gi = i
		}
		if name == "schedule" {
			si = i
		}
	}
	if gi >= 0 && si >= 0 && gi > si {
		t.Fatalf("games persisted after schedule")
	}
}

func TestCreateImportReplacesLeague(t *testing.T) {
	saver := newFakeSaver()
	lid, err := Create(context.Background(), saver, CreateRequest{
		Name:           "Replacement",
		StartingSeason: 2026,
		Rand:           testRand(),
		ImportLid:      ptr(7),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if lid != 7 {
		t.Fatalf("lid %d, want the imported 7", lid)
	}
	if len(saver.replaced) != 1 || saver.replaced[0] != 7 {
		t.Fatalf("expected replace of league 7, got %v", saver.replaced)
	}
}
