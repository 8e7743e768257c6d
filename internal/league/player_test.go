package league

import (
	"math/rand"
	"testing"
)

func testRand() *rand.Rand {
	return rand.New(rand.NewSource(42))
}

func TestGeneratePlayerBounds(t *testing.T) {
	cfg := DefaultConfig(2026)
	rnd := testRand()
	for i := 0; i < 200; i++ {
		p := GeneratePlayer(cfg, rnd, i+1, TidFreeAgent, 22, 2026, true, 1)
		r := p.CurrentRatings()
		if r.Ovr < 0 || r.Ovr > 100 {
			t.Fatalf("ovr out of range: %d", r.Ovr)
		}
		if r.Pot < r.Ovr {
			t.Fatalf("pot %d below ovr %d", r.Pot, r.Ovr)
		}
		if p.HgtIn < 68 || p.HgtIn > 89 {
			t.Fatalf("height out of range: %d", p.HgtIn)
		}
		if p.Contract.Amount < cfg.MinContract || p.Contract.Amount > cfg.MaxContract {
			t.Fatalf("contract %d outside [%d, %d]", p.Contract.Amount, cfg.MinContract, cfg.MaxContract)
		}
		if p.Contract.Amount%50 != 0 {
			t.Fatalf("contract %d not in $50k steps", p.Contract.Amount)
		}
	}
}

func TestGenContractClamps(t *testing.T) {
	cfg := DefaultConfig(2026)
	if got := genContractAmount(cfg, 0); got != cfg.MinContract {
		t.Fatalf("scrub value should earn the minimum, got %d", got)
	}
	if got := genContractAmount(cfg, 100); got != cfg.MaxContract {
		t.Fatalf("superstar value should earn the maximum, got %d", got)
	}
}

func TestGenDraftClass(t *testing.T) {
	cfg := DefaultConfig(2026)
	rnd := testRand()

	class := GenDraftClass(cfg, rnd, 1, 2027, 1, 0)
	if len(class) != 70 {
		t.Fatalf("class size %d, want 70", len(class))
	}
	for i := range class {
		p := &class[i]
		if p.TID != TidUndrafted2 {
			t.Fatalf("prospect for next season has tid %d, want %d", p.TID, TidUndrafted2)
		}
		if p.Contract.Exp != UndraftedContractExp {
			t.Fatalf("prospect contract exp %d, want sentinel", p.Contract.Exp)
		}
		age := 2027 - p.BornYear
		if age < 19 || age > 22 {
			t.Fatalf("prospect age %d outside [19, 22]", age)
		}
	}
}

func TestDevelopAppendsHistory(t *testing.T) {
	cfg := DefaultConfig(2026)
	rnd := testRand()
	p := GeneratePlayer(cfg, rnd, 1, TidFreeAgent, 20, 2026, true, 1)

	Develop(rnd, &p, 2027, true)
	if len(p.Ratings) != 2 {
		t.Fatalf("expected 2 ratings rows, got %d", len(p.Ratings))
	}
	if p.CurrentRatings().Season != 2027 {
		t.Fatalf("latest row season %d, want 2027", p.CurrentRatings().Season)
	}

	Develop(rnd, &p, 2028, false)
	if len(p.Ratings) != 2 {
		t.Fatalf("in-place develop grew history to %d rows", len(p.Ratings))
	}
}

func TestShouldRetireYoungStarNever(t *testing.T) {
	cfg := DefaultConfig(2026)
	rnd := testRand()
	p := GeneratePlayer(cfg, rnd, 1, 0, 24, 2026, true, 1)
	p.CurrentRatings().Ovr = 70
	for i := 0; i < 1000; i++ {
		if ShouldRetire(rnd, &p, 2026) {
			t.Fatalf("young star retired")
		}
	}
}

func TestPlayerValueAgeWeighting(t *testing.T) {
	cfg := DefaultConfig(2026)

	mk := func(age, ovr, pot int) Player {
		return Player{
			BornYear: cfg.Season - age,
			Ratings:  []PlayerRatings{{Season: cfg.Season, Ovr: ovr, Pot: pot}},
		}
	}

	young := mk(19, 50, 70)
	old := mk(32, 50, 70)
	if PlayerValue(cfg, &young) <= PlayerValue(cfg, &old) {
		t.Fatalf("potential should lift a 19-year-old above a 32-year-old with the same ovr")
	}
	vet := mk(32, 50, 50)
	if PlayerValue(cfg, &vet) != 50 {
		t.Fatalf("veteran value should be pure ovr, got %f", PlayerValue(cfg, &vet))
	}
}

func TestGenSeedPlayersPoolShape(t *testing.T) {
	cfg := DefaultConfig(2026)
	rnd := testRand()

	pool := GenSeedPlayers(cfg, rnd, 1, 1)
	if len(pool) < (cfg.MaxRosterSize+1)*cfg.NumTeams {
		t.Fatalf("seed pool too small: %d survivors", len(pool))
	}
	for i := range pool {
		p := &pool[i]
		if p.TID != TidFreeAgent {
			t.Fatalf("seed player not pooled as free agent: tid %d", p.TID)
		}
		if p.Contract.Exp < cfg.Season {
			t.Fatalf("survivor carries an expired contract: exp %d", p.Contract.Exp)
		}
		if p.Draft.Year >= cfg.Season || p.Draft.Year < cfg.Season-SeedSeasons {
			t.Fatalf("draft year %d outside seeded window", p.Draft.Year)
		}
	}
}
