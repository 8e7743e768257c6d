package league

import (
	"math/rand"
	"sort"
)

var firstNames = []string{
	"Marcus", "Jalen", "Darius", "Tyrese", "Devin", "Malik", "Andre",
	"Isaiah", "Jaylen", "Trey", "Cameron", "Zion", "Elias", "Rashad",
	"Kofi", "Dante", "Luka", "Mateo", "Nikola", "Goran", "Omari",
	"Quentin", "Reggie", "Silas", "Terrence", "Vince", "Walt", "Xavier",
	"Yusuf", "Zach", "Aaron", "Bryce", "Cedric", "Dominic", "Emmanuel",
	"Franklin", "Gabriel", "Hakeem", "Ivan", "Jerome",
}

var lastNames = []string{
	"Abernathy", "Barlow", "Caldwell", "Delgado", "Ellison", "Fontaine",
	"Graves", "Holloway", "Ivery", "Jessup", "Kearns", "Lockhart",
	"Mercer", "Navarro", "Okafor", "Pemberton", "Quarles", "Renfro",
	"Sandoval", "Thibodeaux", "Urbina", "Vance", "Whitfield", "Xiong",
	"Yarbrough", "Zeller", "Ashford", "Bluford", "Castellanos", "Dupree",
	"Eastman", "Fairweather", "Goins", "Hutchins", "Ingram", "Jencks",
	"Kimbrough", "Laszlo", "Mbeki", "Novak",
}

var birthplaces = []string{
	"Illinois", "Texas", "California", "New York", "Florida", "Ohio",
	"Georgia", "North Carolina", "Indiana", "Michigan", "Ontario",
	"Serbia", "Slovenia", "Spain", "France", "Nigeria", "Australia",
	"Lithuania", "Greece", "Cameroon",
}

// ovrWeights determine how each rating contributes to the composite
// overall. Tuned so a balanced 50-everything player lands near ovr 50.
var ovrWeights = map[string]float64{
	"hgt": 4, "stre": 1, "spd": 3, "jmp": 2, "endu": 1,
	"ins": 1, "dnk": 1, "ft": 1, "fg": 1, "tp": 2,
	"oiq": 4, "diq": 3, "drb": 1, "pss": 2, "reb": 1,
}

func computeOvr(r *PlayerRatings) int {
	vals := map[string]int{
		"hgt": r.Hgt, "stre": r.Stre, "spd": r.Spd, "jmp": r.Jmp,
		"endu": r.Endu, "ins": r.Ins, "dnk": r.Dnk, "ft": r.FT,
		"fg": r.FG, "tp": r.TP, "oiq": r.OIQ, "diq": r.DIQ,
		"drb": r.Drb, "pss": r.Pss, "reb": r.Reb,
	}
	var sum, weight float64
	for k, w := range ovrWeights {
		sum += float64(vals[k]) * w
		weight += w
	}
	return clampRating(sum / weight)
}

// computeSkills derives display skill tags from rating thresholds. The
// tags feed the trade engine's redundancy bonus, so thresholds are
// game-balance constants.
func computeSkills(r *PlayerRatings) []string {
	var skills []string
	if r.TP >= 73 {
		skills = append(skills, "3")
	}
	if (r.Spd+r.Jmp)/2 >= 76 {
		skills = append(skills, "A")
	}
	if r.Drb >= 73 && r.Spd >= 60 {
		skills = append(skills, "B")
	}
	if r.DIQ >= 73 && r.Stre >= 60 {
		skills = append(skills, "Di")
	}
	if r.DIQ >= 73 && r.Spd >= 65 {
		skills = append(skills, "Dp")
	}
	if r.Ins >= 73 {
		skills = append(skills, "Po")
	}
	if r.Pss >= 73 {
		skills = append(skills, "Ps")
	}
	if r.Reb >= 73 {
		skills = append(skills, "R")
	}
	return skills
}

func computePos(r *PlayerRatings) string {
	switch {
	case r.Hgt >= 80:
		return "C"
	case r.Hgt >= 65:
		if r.Pss >= 55 {
			return "PF"
		}
		return "F"
	case r.Hgt >= 45:
		if r.TP >= 60 {
			return "SF"
		}
		return "GF"
	case r.Pss >= 60:
		return "PG"
	default:
		return "SG"
	}
}

// archetype offsets, picked by sampled height: tall players lean
// interior, short players lean perimeter.
type ratingProfile struct {
	ins, dnk, reb, stre float64
	tp, drb, pss, spd   float64
}

func profileForHeight(inches int) ratingProfile {
	switch {
	case inches >= 82:
		return ratingProfile{ins: 12, dnk: 12, reb: 12, stre: 8, tp: -10, drb: -12, pss: -8, spd: -8}
	case inches >= 77:
		return ratingProfile{ins: 4, dnk: 5, reb: 4, stre: 2, tp: 0, drb: -2, pss: -2, spd: 0}
	default:
		return ratingProfile{ins: -10, dnk: -6, reb: -10, stre: -8, tp: 8, drb: 10, pss: 10, spd: 8}
	}
}

// GeneratePlayer produces one player with sampled physicals, a starting
// ratings line and a default contract. scoutingRank controls the fuzz
// applied to displayed ratings: rank 1 (best scouting) sees almost true
// values. A fresh-league player (newLeague) starts with ratings for the
// current season rather than the draft year.
func GeneratePlayer(cfg Config, rnd *rand.Rand, pid, tid, age, draftYear int, newLeague bool, scoutingRank int) Player {
	heightIn := randHeightInches(rnd)
	prof := profileForHeight(heightIn)

	hgtRating := clampRating(float64(heightIn-66) * 100.0 / 23.0)
	base := boundedGauss(rnd, 47, 10, 20, 75)

	draw := func(offset float64) int {
		return clampRating(boundedGauss(rnd, base+offset, 7, 0, 85))
	}

	season := draftYear
	if newLeague {
		season = cfg.Season
	}

	r := PlayerRatings{
		Season: season,
		Hgt:    hgtRating,
		Stre:   draw(prof.stre),
		Spd:    draw(prof.spd),
		Jmp:    draw(prof.spd),
		Endu:   draw(-8),
		Ins:    draw(prof.ins),
		Dnk:    draw(prof.dnk),
		FT:     draw(0),
		FG:     draw(0),
		TP:     draw(prof.tp),
		OIQ:    draw(-4),
		DIQ:    draw(-4),
		Drb:    draw(prof.drb),
		Pss:    draw(prof.pss),
		Reb:    draw(prof.reb),
	}
	r.Ovr = computeOvr(&r)
	r.Pot = potEstimate(rnd, r.Ovr, age)
	r.Skills = computeSkills(&r)
	r.Pos = computePos(&r)

	divisor := 1
	if cfg.NumTeams > 1 {
		divisor = cfg.NumTeams - 1
	}
	sigma := 1.0 + 4.0*float64(scoutingRank-1)/float64(divisor)
	r.Fuzz = gauss(rnd, 0, sigma)

	p := Player{
		PID:       pid,
		TID:       tid,
		FirstName: firstNames[rnd.Intn(len(firstNames))],
		LastName:  lastNames[rnd.Intn(len(lastNames))],
		BornYear:  season - age,
		BornLoc:   birthplaces[rnd.Intn(len(birthplaces))],
		HgtIn:     heightIn,
		Weight:    weightForHeight(rnd, heightIn),
		Draft: DraftInfo{
			Year:        draftYear,
			TID:         -1,
			OriginalTID: -1,
		},
		Ratings: []PlayerRatings{r},
	}
	p.Contract = GenContract(cfg, PlayerValue(cfg, &p))
	return p
}

func weightForHeight(rnd *rand.Rand, inches int) int {
	return int(boundedGauss(rnd, float64(inches)*3.2-65, 12, 150, 290))
}

// potEstimate guesses ceiling from current overall and age: young
// players project well above their current level, veterans are what
// they are.
func potEstimate(rnd *rand.Rand, ovr, age int) int {
	headroom := 0.0
	if age < 29 {
		headroom = float64(29-age) * 2.5
	}
	pot := float64(ovr) + headroom + gauss(rnd, 0, 4)
	if pot < float64(ovr) {
		pot = float64(ovr)
	}
	return clampRating(pot)
}

// ageBaseChange is the per-season rating drift by age bracket, before
// per-rating noise.
func ageBaseChange(age int) float64 {
	switch {
	case age <= 21:
		return 4.0
	case age <= 24:
		return 2.0
	case age <= 27:
		return 0.5
	case age <= 30:
		return -1.0
	case age <= 33:
		return -2.5
	default:
		return -4.0
	}
}

// Develop advances a player's latest ratings line by one season of
// growth or decline and re-derives the composites. If appendRow is set
// a new ratings row is appended for the new season (the append-only
// per-season history); otherwise the latest row is updated in place,
// which is what retroactive seeding wants.
func Develop(rnd *rand.Rand, p *Player, season int, appendRow bool) {
	cur := *p.CurrentRatings()
	age := season - p.BornYear
	base := ageBaseChange(age)

	adjust := func(v int, extra float64) int {
		return clampRating(float64(v) + base + extra + gauss(rnd, 0, 2))
	}

	// Physical tools fade faster than skill; IQ keeps creeping up
	// until the very end.
	cur.Stre = adjust(cur.Stre, 0)
	cur.Spd = adjust(cur.Spd, physicalPenalty(age))
	cur.Jmp = adjust(cur.Jmp, physicalPenalty(age))
	cur.Endu = adjust(cur.Endu, physicalPenalty(age)/2)
	cur.Ins = adjust(cur.Ins, 0)
	cur.Dnk = adjust(cur.Dnk, 0)
	cur.FT = adjust(cur.FT, 0.5)
	cur.FG = adjust(cur.FG, 0.5)
	cur.TP = adjust(cur.TP, 0.5)
	cur.OIQ = adjust(cur.OIQ, iqBonus(age))
	cur.DIQ = adjust(cur.DIQ, iqBonus(age))
	cur.Drb = adjust(cur.Drb, 0)
	cur.Pss = adjust(cur.Pss, 0)
	cur.Reb = adjust(cur.Reb, 0)

	cur.Season = season
	cur.Ovr = computeOvr(&cur)
	if cur.Pot < cur.Ovr {
		cur.Pot = cur.Ovr
	}
	if age >= 29 {
		cur.Pot = cur.Ovr
	}
	cur.Skills = computeSkills(&cur)
	cur.Pos = computePos(&cur)

	if appendRow {
		p.Ratings = append(p.Ratings, cur)
	} else {
		p.Ratings[len(p.Ratings)-1] = cur
	}
}

func physicalPenalty(age int) float64 {
	if age <= 27 {
		return 0
	}
	return -float64(age-27) * 0.6
}

func iqBonus(age int) float64 {
	if age <= 32 {
		return 1.5
	}
	return 0
}

// ShouldRetire is the probabilistic end-of-career check. Applied once
// per simulated season; historical seeding applies it repeatedly to
// emulate the evaluations a player would already have faced.
func ShouldRetire(rnd *rand.Rand, p *Player, season int) bool {
	age := p.Age(season)
	ovr := p.CurrentRatings().Ovr
	if age < 30 && ovr > 40 {
		return false
	}
	prob := 0.0
	if age >= 30 {
		prob += float64(age-29) * 0.07
	}
	if ovr < 40 {
		prob += float64(40-ovr) * 0.02
	}
	if age > 36 {
		prob += 0.30
	}
	if prob > 0.95 {
		prob = 0.95
	}
	return rnd.Float64() < prob
}

// PlayerValue scores a player on a roughly 0-100 scale for roster and
// trade decisions: a blend of current overall and potential, weighted
// toward potential for the young and entirely toward current play for
// veterans.
func PlayerValue(cfg Config, p *Player) float64 {
	r := p.CurrentRatings()
	age := p.Age(cfg.Season)

	var potWeight float64
	switch {
	case age <= 19:
		potWeight = 0.7
	case age <= 21:
		potWeight = 0.5
	case age <= 23:
		potWeight = 0.35
	case age <= 25:
		potWeight = 0.2
	case age <= 28:
		potWeight = 0.1
	default:
		potWeight = 0
	}
	return (1-potWeight)*float64(r.Ovr) + potWeight*float64(r.Pot)
}

// genContractAmount maps a value score to the open-market salary for
// that level of play, in thousands, rounded to $50k.
func genContractAmount(cfg Config, value float64) int {
	frac := (value - 42) / 33
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	amount := float64(cfg.MinContract) + frac*float64(cfg.MaxContract-cfg.MinContract)
	out := roundContract(int(amount))
	if out < cfg.MinContract {
		out = cfg.MinContract
	}
	if out > cfg.MaxContract {
		out = cfg.MaxContract
	}
	return out
}

// GenContract prices a fresh deal at market rate, expiring 1-3 seasons
// out.
func GenContract(cfg Config, value float64) Contract {
	return Contract{
		Amount: genContractAmount(cfg, value),
		Exp:    cfg.Season + int(value)%3 + 1,
	}
}

// rookieSalary is the slotted rookie-scale amount for an overall draft
// position, linear from ~1/8th of the max contract down to the minimum.
func rookieSalary(cfg Config, slot, totalPicks int) int {
	top := float64(cfg.MaxContract) / 8
	frac := 1.0
	if totalPicks > 1 {
		frac = 1 - float64(slot-1)/float64(totalPicks-1)
	}
	amount := float64(cfg.MinContract) + frac*(top-float64(cfg.MinContract))
	out := roundContract(int(amount))
	if out < cfg.MinContract {
		out = cfg.MinContract
	}
	return out
}

// GenDraftClass produces a class of prospects for the given draft year,
// assigned to the undrafted sentinel tid. count <= 0 means the standard
// class size.
func GenDraftClass(cfg Config, rnd *rand.Rand, startPid, draftYear, scoutingRank, count int) []Player {
	if count <= 0 {
		count = DraftClassTargetSize(cfg.NumDraftRounds, cfg.NumTeams)
	}
	tid := undraftedTidForYear(cfg, draftYear)
	class := make([]Player, 0, count)
	for i := 0; i < count; i++ {
		age := 19 + weightedChoice(rnd, []float64{0.55, 0.25, 0.13, 0.07})
		p := GeneratePlayer(cfg, rnd, startPid+i, tid, age, draftYear, false, scoutingRank)
		// Prospects have no deal yet; the far-past expiration marks
		// them immediately cuttable if they ever go unsigned.
		p.Contract = Contract{Amount: cfg.MinContract, Exp: UndraftedContractExp}
		class = append(class, p)
	}
	return class
}

func undraftedTidForYear(cfg Config, draftYear int) int {
	switch draftYear - cfg.Season {
	case 0:
		return TidUndrafted
	case 1:
		return TidUndrafted2
	case 2:
		return TidUndrafted3
	default:
		return TidUndrafted
	}
}

// assignDraftSlots gives a historical class its draft metadata: draft
// order is seeded from a shuffled team list, and players go off the
// board in overall-value order. Players beyond the last pick stay
// undrafted (round 0).
func assignDraftSlots(cfg Config, rnd *rand.Rand, class []Player, draftYear int) {
	order := make([]int, cfg.NumTeams)
	for i := range order {
		order[i] = i
	}
	shuffle(rnd, order)

	idx := make([]int, len(class))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return PlayerValue(cfg, &class[idx[a]]) > PlayerValue(cfg, &class[idx[b]])
	})

	totalPicks := cfg.NumDraftRounds * cfg.NumTeams
	for slot, i := range idx {
		p := &class[i]
		if slot < totalPicks {
			round := slot/cfg.NumTeams + 1
			pick := slot%cfg.NumTeams + 1
			tid := order[pick-1]
			p.Draft = DraftInfo{Year: draftYear, Round: round, Pick: pick, TID: tid, OriginalTID: tid}
			p.Contract = Contract{
				Amount: rookieSalary(cfg, slot+1, totalPicks),
				Exp:    draftYear + RookieContractYears(round),
			}
		} else {
			p.Draft = DraftInfo{Year: draftYear, TID: -1, OriginalTID: -1}
			p.Contract = Contract{Amount: cfg.MinContract, Exp: UndraftedContractExp}
		}
	}
}

// GenSeedPlayers runs the historical backfill for a brand-new league:
// for each of SeedSeasons past drafts, generate a full class, develop
// everyone forward to the present, and run the retirement check once
// per elapsed season so the survivors form a realistic age pyramid.
// Survivors keep their draft slots; expired rookie deals are re-priced
// at market rate.
func GenSeedPlayers(cfg Config, rnd *rand.Rand, startPid, scoutingRank int) []Player {
	var pool []Player
	pid := startPid

	for yearsAgo := SeedSeasons; yearsAgo >= 1; yearsAgo-- {
		draftYear := cfg.Season - yearsAgo
		class := GenDraftClass(cfg, rnd, pid, draftYear, scoutingRank, 0)
		pid += len(class)
		assignDraftSlots(cfg, rnd, class, draftYear)

		for i := range class {
			p := &class[i]
			retired := false
			for s := draftYear + 1; s <= cfg.Season; s++ {
				Develop(rnd, p, s, false)
				if ShouldRetire(rnd, p, s) {
					retired = true
					break
				}
			}
			if retired {
				continue
			}
			if p.Contract.Exp < cfg.Season {
				p.Contract = GenContract(cfg, PlayerValue(cfg, p))
			}
			p.TID = TidFreeAgent
			pool = append(pool, *p)
		}
	}
	return pool
}
