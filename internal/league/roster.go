package league

import (
	"math/rand"
	"sort"
)

// retentionProb is the chance a seeded player is still with the team
// that drafted him: it decays with years since the draft and with
// draft round, so recent first-rounders almost always stick and old
// second-rounders almost never do.
func retentionProb(yearsSince, round int) float64 {
	p := 0.9 - 0.12*float64(yearsSince) - 0.25*float64(round-1)
	if p < 0 {
		return 0
	}
	return p
}

// bestFitIndex picks the strongest available player for a roster,
// weighting raw value by how badly the roster needs the player's
// skills. Returns -1 if the pool is empty.
func bestFitIndex(cfg Config, pool []Player, assigned map[int]bool, rosterSkills map[string]int) int {
	best := -1
	bestScore := -1.0
	for i := range pool {
		if assigned[pool[i].PID] {
			continue
		}
		score := PlayerValue(cfg, &pool[i])
		for _, s := range pool[i].CurrentRatings().Skills {
			if rosterSkills[s] < skillsNeeded[s] {
				score += 2
			}
		}
		if score > bestScore {
			bestScore = score
			best = i
		}
	}
	return best
}

// AssignRosters distributes a generated player pool across teams and
// free agency. Teams are filled to numPlayersPerTeam; up to
// maxFreeAgents of the best leftovers become free agents; the rest are
// discarded. Returns the retained players (team rosters + free agents).
func AssignRosters(cfg Config, rnd *rand.Rand, teams []Team, pool []Player) ([]Player, error) {
	target := NumPlayersPerTeam(cfg.MaxRosterSize)
	assigned := make(map[int]bool, len(pool))
	rosterCount := make(map[int]int, len(teams))
	rosterSkills := make(map[int]map[string]int, len(teams))
	for _, t := range teams {
		rosterSkills[t.TID] = make(map[string]int)
	}

	place := func(i, tid int) {
		pool[i].TID = tid
		assigned[pool[i].PID] = true
		rosterCount[tid]++
		for _, s := range pool[i].CurrentRatings().Skills {
			rosterSkills[tid][s]++
		}
	}

	// Pass 1: some players never left the team that drafted them.
	for i := range pool {
		d := pool[i].Draft
		if d.Round == 0 || d.TID < 0 || d.TID >= len(teams) {
			continue
		}
		if rosterCount[d.TID] >= target {
			continue
		}
		if rnd.Float64() < retentionProb(cfg.Season-d.Year, d.Round) {
			place(i, d.TID)
		}
	}

	// Pass 2: fill remaining slots, one pickup per team per pass in
	// shuffled order, until everyone is full or nothing was assigned
	// in a whole pass.
	order := make([]int, len(teams))
	for i := range order {
		order[i] = teams[i].TID
	}
	for {
		shuffle(rnd, order)
		placed := 0
		for _, tid := range order {
			if rosterCount[tid] >= target {
				continue
			}
			i := bestFitIndex(cfg, pool, assigned, rosterSkills[tid])
			if i < 0 {
				continue
			}
			place(i, tid)
			placed++
		}
		if placed == 0 {
			break
		}
	}

	// Leftovers: best go to free agency, bounded; the remainder are
	// dropped from the league entirely.
	var leftovers []int
	for i := range pool {
		if !assigned[pool[i].PID] {
			leftovers = append(leftovers, i)
		}
	}
	sort.SliceStable(leftovers, func(a, b int) bool {
		return PlayerValue(cfg, &pool[leftovers[a]]) > PlayerValue(cfg, &pool[leftovers[b]])
	})
	maxFA := MaxFreeAgents(cfg.NumTeams)
	if len(leftovers) > maxFA {
		leftovers = leftovers[:maxFA]
	}

	kept := make([]Player, 0, len(assigned)+len(leftovers))
	for i := range pool {
		if assigned[pool[i].PID] {
			kept = append(kept, pool[i])
		}
	}
	for _, i := range leftovers {
		pool[i].TID = TidFreeAgent
		// Free agents shop shorter deals.
		pool[i].Contract.Exp = cfg.Season + randInt(rnd, 0, 2)
		kept = append(kept, pool[i])
	}

	if cfg.HardCap {
		if err := enforceHardCap(cfg, kept, teams); err != nil {
			return nil, err
		}
	}
	return kept, nil
}

// enforceHardCap trims contracts in $50k steps, highest salary first,
// until every team's committed payroll fits under the cap. Nobody can
// be cut below the league minimum; if a team is still over the cap
// once everyone is at the minimum, construction has produced an
// impossible league and the whole operation fails.
func enforceHardCap(cfg Config, players []Player, teams []Team) error {
	byTeam := make(map[int][]int)
	for i := range players {
		if players[i].TID >= 0 {
			byTeam[players[i].TID] = append(byTeam[players[i].TID], i)
		}
	}
	for _, t := range teams {
		idxs := byTeam[t.TID]
		for {
			payroll := 0
			for _, i := range idxs {
				payroll += players[i].Contract.Amount
			}
			if payroll <= cfg.SalaryCap {
				break
			}
			trim := -1
			for _, i := range idxs {
				if players[i].Contract.Amount <= cfg.MinContract {
					continue
				}
				if trim < 0 || players[i].Contract.Amount > players[trim].Contract.Amount {
					trim = i
				}
			}
			if trim < 0 {
				return ErrNoValidCapCombination
			}
			players[trim].Contract.Amount -= 50
			if players[trim].Contract.Amount < cfg.MinContract {
				players[trim].Contract.Amount = cfg.MinContract
			}
		}
	}
	return nil
}
