package league

import (
	"errors"
	"math"
)

// Contract amounts are stored in thousands of dollars. A player earning
// $750k has Contract.Amount == 750.
const (
	DefaultSalaryCap   = 90000
	DefaultMinContract = 750
	DefaultMaxContract = 30000

	DefaultNumTeams = 30
	DefaultNumGames = 82

	DefaultMinRosterSize = 8
	DefaultMaxRosterSize = 15

	DefaultNumDraftRounds             = 2
	DefaultNumSeasonsFutureDraftPicks = 4

	// Seasons of retroactive draft classes generated for a brand-new
	// league so rosters span the full range of experience levels.
	SeedSeasons = 20

	// Undrafted players carry a contract expiration far in the past so
	// any "is this contract expired" check treats them as cuttable.
	UndraftedContractExp = -(1 << 30)
)

// Sentinel team ids. Real teams are 0..numTeams-1.
const (
	TidFreeAgent   = -1
	TidUndrafted   = -2 // current season's draft class
	TidUndrafted2  = -3
	TidUndrafted3  = -4
	TidRetired     = -5
	TidRandomStart = -6 // "give me a random team" request marker
)

var (
	ErrShortPlayerPool       = errors.New("not enough generated players survived to fill rosters")
	ErrNoValidCapCombination = errors.New("hard cap: no combination of contract trims fits under the salary cap")
	ErrScoutingRank          = errors.New("could not compute scouting rank for user team")
	ErrNonSequentialTeamIDs  = errors.New("imported team ids must be sequential starting at 0")
	ErrLeagueNotFound        = errors.New("league not found")
	ErrTeamNotFound          = errors.New("team not found")
	ErrPlayerNotFound        = errors.New("player not found")
	ErrPickNotFound          = errors.New("draft pick not found")
	ErrAttributeNaN          = errors.New("attribute value is NaN")
)

// NumPlayersPerTeam is the roster size from-scratch construction fills
// each team to. Two slots below the maximum are left open for in-season
// signings.
func NumPlayersPerTeam(maxRosterSize int) int {
	return maxRosterSize - 2
}

// MaxFreeAgents bounds the free-agent pool after construction.
func MaxFreeAgents(numTeams int) int {
	return 5 * numTeams
}

// DraftClassTargetSize is the number of prospects a draft class is
// filled to: slightly more than the number of picks, so some players
// always go undrafted.
func DraftClassTargetSize(numDraftRounds, numTeams int) int {
	return int(math.Round(float64(numDraftRounds*numTeams) * 7.0 / 6.0))
}

// RookieContractYears follows the (4 - round) rookie-scale schedule:
// first-rounders sign for 3 seasons, second-rounders for 2.
func RookieContractYears(round int) int {
	years := 4 - round
	if years < 1 {
		years = 1
	}
	return years
}

// roundContract snaps a contract amount to the $50k granularity used
// everywhere salaries are displayed or trimmed.
func roundContract(amount int) int {
	return (amount / 50) * 50
}

func clampRating(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(math.Round(v))
}
