package league

import (
	"math"
	"math/rand"
	"sort"
)

// TradeRejectSentinel is returned for proposals the AI refuses to even
// price, currently just the many-pick guard below.
const TradeRejectSentinel = -1.0

// MaxTradePicksPerSide guards against multi-pick packages whose
// estimated values compound into nonsense. Proposals sending more picks
// than this out of the evaluating team are refused outright.
const MaxTradePicksPerSide = 2

// Trade valuation tuning. These are game-balance constants: changing
// them shifts how aggressive AI teams are on the trade market.
const (
	// aiSelfFudgeBase is how much an AI team overvalues its own
	// players; the difficulty slider adds to it.
	aiSelfFudgeBase       = 1.05
	aiSelfFudgeDifficulty = 0.05

	// valueExponent makes aggregation super-linear so one star beats
	// three role players of the same combined value.
	valueExponent = 1.25
	valueOffset   = 10.0

	// skillThreshold is the minimum value for a roster player's skills
	// to count as already covering a need.
	skillThreshold = 45.0

	contractFactorRebuilding = 0.3
	contractFactorContending = 0.1

	// Free-agency length in days, for tapering the cap-space penalty.
	freeAgencyDays = 30.0

	assetCountPenalty = 2.0
)

// skillsNeeded is how many players with each skill tag a roster wants.
// Incoming assets that fill an under-covered tag get a bonus; once the
// need is met further copies are worth nothing extra.
var skillsNeeded = map[string]int{
	"3":  5,
	"A":  5,
	"B":  3,
	"Di": 2,
	"Dp": 2,
	"Po": 2,
	"Ps": 4,
	"R":  3,
}

// PickValues maps a draft season to player-equivalent values indexed by
// overall slot (index 0 = first overall). Missing seasons or slots fall
// back to a fixed curve.
type PickValues map[int][]float64

// EstimatePickValues prices draft slots by generating a throwaway
// prospect class per covered season and reading off the sorted values.
// The worker refreshes this periodically; valuation callers can also
// pass nil and get the fallback curve.
func EstimatePickValues(cfg Config, rnd *rand.Rand) PickValues {
	out := make(PickValues, cfg.NumSeasonsFutureDraftPicks)
	for offset := 0; offset < cfg.NumSeasonsFutureDraftPicks; offset++ {
		season := cfg.Season + offset
		class := GenDraftClass(cfg, rnd, 1, season, 1, 0)
		values := make([]float64, len(class))
		for i := range class {
			values[i] = PlayerValue(cfg, &class[i])
		}
		sort.Sort(sort.Reverse(sort.Float64Slice(values)))
		out[season] = values
	}
	return out
}

// fallbackPickValue approximates a slot's worth when no table entry
// exists: steep at the top of the draft, flat at the bottom.
func fallbackPickValue(slot, totalPicks int) float64 {
	if slot < 1 {
		slot = 1
	}
	frac := float64(slot-1) / float64(totalPicks)
	return 65 - 35*math.Sqrt(frac)
}

// TradeSnapshot is the read-only league state a valuation runs against.
// Valuation never mutates it, so one snapshot can serve many proposals.
type TradeSnapshot struct {
	Teams       []Team
	TeamSeasons []TeamSeason
	Players     []Player
	DraftPicks  []DraftPick
}

func (s *TradeSnapshot) team(tid int) *Team {
	for i := range s.Teams {
		if s.Teams[i].TID == tid {
			return &s.Teams[i]
		}
	}
	return nil
}

func (s *TradeSnapshot) player(pid int) *Player {
	for i := range s.Players {
		if s.Players[i].PID == pid {
			return &s.Players[i]
		}
	}
	return nil
}

func (s *TradeSnapshot) pick(dpid int) *DraftPick {
	for i := range s.DraftPicks {
		if s.DraftPicks[i].DPID == dpid {
			return &s.DraftPicks[i]
		}
	}
	return nil
}

func (s *TradeSnapshot) teamSeason(tid, season int) *TeamSeason {
	for i := range s.TeamSeasons {
		if s.TeamSeasons[i].TID == tid && s.TeamSeasons[i].Season == season {
			return &s.TeamSeasons[i]
		}
	}
	return nil
}

// asset is one priced item in a proposal, player or pick.
type asset struct {
	value       float64
	age         int
	skills      []string
	contract    Contract
	injuryGames int
	isPick      bool
}

// estimatedWinPct projects a team's end-of-season record. Early in the
// season last year's record dominates; past the halfway point the
// current record takes over in proportion to games played.
func estimatedWinPct(cfg Config, snap *TradeSnapshot, tid int) float64 {
	prevPct := 0.5
	if prev := snap.teamSeason(tid, cfg.Season-1); prev != nil {
		prevPct = WinPct(*prev)
	}
	cur := snap.teamSeason(tid, cfg.Season)
	if cur == nil {
		return prevPct
	}
	gp := cur.Won + cur.Lost
	frac := float64(gp) / float64(cfg.NumGames)
	if frac <= 0.5 {
		return prevPct
	}
	return frac*WinPct(*cur) + (1-frac)*prevPct
}

// impliedDraftRank converts a win-pct estimate into a first-round draft
// position for the pick's original team: worst record picks first.
// Future picks regress toward the middle of the draft, a quarter of the
// way per season out, because nobody knows who will be bad in three
// years.
func impliedDraftRank(cfg Config, snap *TradeSnapshot, pick *DraftPick) float64 {
	est := estimatedWinPct(cfg, snap, pick.OriginalTID)
	rank := 1
	for _, t := range snap.Teams {
		if t.TID != pick.OriginalTID && estimatedWinPct(cfg, snap, t.TID) < est {
			rank++
		}
	}
	seasonsOut := pick.Season - cfg.Season
	if pick.Fantasy || seasonsOut < 0 {
		seasonsOut = 0
	}
	mid := float64(cfg.NumTeams+1) / 2
	pull := math.Min(1, float64(seasonsOut)*0.25)
	return float64(rank) + (mid-float64(rank))*pull
}

// pickAsset prices one draft pick. ownSide applies the "AI trusts its
// own scouting" bonus, which grows as the season progresses and the
// implied position firms up.
func pickAsset(cfg Config, snap *TradeSnapshot, tid int, pick *DraftPick, est PickValues, ownSide bool) asset {
	season := pick.Season
	if pick.Fantasy {
		season = cfg.Season
	}

	slot := 1
	if pick.Pick > 0 {
		slot = (pick.Round-1)*cfg.NumTeams + pick.Pick
	} else {
		rank := impliedDraftRank(cfg, snap, pick)
		slot = (pick.Round-1)*cfg.NumTeams + int(math.Round(rank))
	}

	totalPicks := cfg.NumDraftRounds * cfg.NumTeams
	value := fallbackPickValue(slot, totalPicks)
	if table, ok := est[season]; ok && slot-1 < len(table) {
		value = table[slot-1]
	}

	if ownSide {
		seasonFrac := 0.0
		if ts := snap.teamSeason(tid, cfg.Season); ts != nil {
			seasonFrac = float64(ts.Won+ts.Lost) / float64(cfg.NumGames)
		}
		value *= 1.05 + 0.05*seasonFrac
	}

	// Rough prospect age, for the rebuilding up-weight.
	return asset{value: value, age: 20, contract: Contract{Amount: cfg.MinContract}, isPick: true}
}

func playerAsset(cfg Config, p *Player) asset {
	r := p.CurrentRatings()
	return asset{
		value:       PlayerValue(cfg, p),
		age:         p.Age(cfg.Season),
		skills:      r.Skills,
		contract:    p.Contract,
		injuryGames: p.Injury.GamesRemaining,
	}
}

// applySkillBonuses multiplies incoming player values up where they fill
// a skill the remaining roster lacks. Assets claim needs in descending
// value order, so the headline player takes the big bonus and throw-ins
// see the residual need.
func applySkillBonuses(add []asset, rosterSkills map[string]int) {
	idx := make([]int, len(add))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return add[idx[a]].value > add[idx[b]].value })

	for _, i := range idx {
		a := &add[i]
		if a.isPick {
			continue
		}
		mult := 1.0
		for _, s := range a.skills {
			need, ok := skillsNeeded[s]
			if !ok {
				continue
			}
			switch gap := need - rosterSkills[s]; {
			case gap >= 2:
				mult *= 1.15
			case gap == 1:
				mult *= 1.10
			case gap == 0:
				mult *= 1.05
			}
		}
		a.value *= mult
		if a.value >= skillThreshold {
			for _, s := range a.skills {
				rosterSkills[s]++
			}
		}
	}
}

// aggregate applies the per-asset strategy and injury adjustments, then
// the super-linear sum: shift, raise to valueExponent, sum, and root
// back so the result stays on the player-value scale.
func aggregate(assets []asset, strategy Strategy, incoming bool) float64 {
	total := 0.0
	for _, a := range assets {
		v := a.value
		if strategy == StrategyRebuilding {
			if a.isPick || a.age <= 21 {
				v *= 1.15
			}
			if a.age >= 29 {
				v *= 0.85
			}
		}
		if incoming && a.injuryGames > 0 {
			discount := 1 - 0.02*float64(a.injuryGames)
			if discount < 0.5 {
				discount = 0.5
			}
			v *= discount
		}
		shifted := v + valueOffset
		if shifted < 0 {
			shifted = 0
		}
		total += math.Pow(shifted, valueExponent)
	}
	if total == 0 {
		return 0
	}
	return math.Pow(total, 1/valueExponent)
}

// contractQuality scores how much surplus (market rate above actual
// salary) a set of assets carries, in value points. Multi-year terms
// scale sub-linearly; a bad deal hurts but not four times as much for
// four years.
func contractQuality(cfg Config, assets []asset) float64 {
	total := 0.0
	for _, a := range assets {
		if a.isPick {
			continue
		}
		market := genContractAmount(cfg, a.value)
		years := a.contract.Exp - cfg.Season + 1
		if years < 1 {
			years = 1
		}
		surplus := float64(market-a.contract.Amount) / 1000.0
		total += surplus * math.Sqrt(float64(years))
	}
	return total
}

// ValueChange scores the given proposal from team tid's perspective.
// Positive means tid's AI should want to accept. est may be nil; pick
// values then come from the fallback curve. Unknown pids/dpids are
// skipped rather than failing the whole valuation.
func ValueChange(cfg Config, snap *TradeSnapshot, proposal TradeProposal, est PickValues) float64 {
	if len(proposal.DpidsRemove) > MaxTradePicksPerSide {
		return TradeRejectSentinel
	}

	tid := proposal.TID
	team := snap.team(tid)
	strategy := StrategyRebuilding
	if team != nil {
		strategy = team.Strategy
	}

	removing := make(map[int]bool, len(proposal.PidsRemove))
	for _, pid := range proposal.PidsRemove {
		removing[pid] = true
	}

	// The roster that remains after the trade defines which skills are
	// still covered and what payroll stays committed.
	rosterSkills := make(map[string]int)
	payroll := 0
	for i := range snap.Players {
		p := &snap.Players[i]
		if p.TID != tid || removing[p.PID] {
			continue
		}
		payroll += p.Contract.Amount
		if PlayerValue(cfg, p) >= skillThreshold {
			for _, s := range p.CurrentRatings().Skills {
				rosterSkills[s]++
			}
		}
	}

	// AI teams overvalue what they would give up; the user's own team
	// gets the honest number.
	fudge := 1.0
	if tid != cfg.UserTID {
		fudge = aiSelfFudgeBase + aiSelfFudgeDifficulty*cfg.Difficulty
	}

	var remove []asset
	for _, pid := range proposal.PidsRemove {
		p := snap.player(pid)
		if p == nil {
			continue
		}
		a := playerAsset(cfg, p)
		a.value *= fudge
		remove = append(remove, a)
	}
	for _, dpid := range proposal.DpidsRemove {
		pk := snap.pick(dpid)
		if pk == nil {
			continue
		}
		remove = append(remove, pickAsset(cfg, snap, tid, pk, est, tid != cfg.UserTID))
	}

	var add []asset
	for _, pid := range proposal.PidsAdd {
		p := snap.player(pid)
		if p == nil {
			continue
		}
		add = append(add, playerAsset(cfg, p))
	}
	for _, dpid := range proposal.DpidsAdd {
		pk := snap.pick(dpid)
		if pk == nil {
			continue
		}
		add = append(add, pickAsset(cfg, snap, tid, pk, est, false))
	}

	applySkillBonuses(add, rosterSkills)

	score := aggregate(add, strategy, true) - aggregate(remove, strategy, false)

	contractFactor := contractFactorContending
	if strategy == StrategyRebuilding {
		contractFactor = contractFactorRebuilding
	}
	score += contractFactor * (contractQuality(cfg, add) - contractQuality(cfg, remove))

	// Cap-space aversion: in the signing phases, burning real cap room
	// on a trade costs future flexibility, and costs more the more of
	// free agency is still to come.
	if cfg.Phase == PhaseResignPlayers || cfg.Phase == PhaseFreeAgency {
		capRoom := cfg.SalaryCap - payroll
		netSalary := 0
		for _, a := range add {
			netSalary += a.contract.Amount
		}
		for _, a := range remove {
			netSalary -= a.contract.Amount
		}
		if capRoom > 2*cfg.MinContract && netSalary > 0 {
			consumed := math.Min(float64(netSalary), float64(capRoom))
			daysFrac := float64(cfg.DaysLeft) / freeAgencyDays
			if daysFrac > 1 {
				daysFrac = 1
			}
			if daysFrac > 0 {
				score -= daysFrac * 20 * consumed / float64(cfg.SalaryCap)
			}
		}
	}

	if extra := len(add) - len(remove); extra > 0 {
		score -= assetCountPenalty * float64(extra)
	}

	return score
}
