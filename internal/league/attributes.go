package league

import (
	"encoding/json"
	"math"
	"slices"
)

// Config is the full league configuration ("game attributes"). It is
// passed explicitly to every constructor and valuation function; there
// is no ambient global. The attrs service owns the live copy for an
// open league and is the only writer.
type Config struct {
	LID            int     `json:"lid"`
	Name           string  `json:"name"`
	Season         int     `json:"season"`
	StartingSeason int     `json:"starting_season"`
	Phase          Phase   `json:"phase"`
	PhaseText      string  `json:"phase_text"`
	UserTID        int     `json:"user_tid"`
	Difficulty     float64 `json:"difficulty"`

	NumTeams              int   `json:"num_teams"`
	NumGames              int   `json:"num_games"`
	NumGamesPlayoffSeries []int `json:"num_games_playoff_series"`

	SalaryCap   int  `json:"salary_cap"`   // thousands
	MinContract int  `json:"min_contract"` // thousands
	MaxContract int  `json:"max_contract"` // thousands
	HardCap     bool `json:"hard_cap"`

	MinRosterSize int `json:"min_roster_size"`
	MaxRosterSize int `json:"max_roster_size"`

	NumDraftRounds             int `json:"num_draft_rounds"`
	NumSeasonsFutureDraftPicks int `json:"num_seasons_future_draft_picks"`

	// DaysLeft counts down the remaining days of the re-signing and
	// free-agency phases; the cap-space aversion term in trade
	// valuation tapers off as it shrinks.
	DaysLeft int `json:"days_left"`
}

func (c Config) NumPlayoffRounds() int {
	return len(c.NumGamesPlayoffSeries)
}

// DefaultConfig returns the configuration of a fresh league before any
// import overlays.
func DefaultConfig(startingSeason int) Config {
	return Config{
		Season:                     startingSeason,
		StartingSeason:             startingSeason,
		Phase:                      PhasePreseason,
		UserTID:                    0,
		NumTeams:                   DefaultNumTeams,
		NumGames:                   DefaultNumGames,
		NumGamesPlayoffSeries:      []int{7, 7, 7, 7},
		SalaryCap:                  DefaultSalaryCap,
		MinContract:                DefaultMinContract,
		MaxContract:                DefaultMaxContract,
		MinRosterSize:              DefaultMinRosterSize,
		MaxRosterSize:              DefaultMaxRosterSize,
		NumDraftRounds:             DefaultNumDraftRounds,
		NumSeasonsFutureDraftPicks: DefaultNumSeasonsFutureDraftPicks,
		DaysLeft:                   30,
	}
}

// wrappedKeys are the attributes whose values are tracked per-season so
// a mid-league change preserves history. Reads for the current season
// resolve to the last era; Records() emits the full era list.
var wrappedKeys = map[string]bool{
	"salaryCap":             true,
	"minContract":           true,
	"maxContract":           true,
	"numGamesPlayoffSeries": true,
}

// Era is one entry in a wrapped attribute's history.
type Era struct {
	Start int             `json:"start"` // first season the value applies to
	Value json.RawMessage `json:"value"`
}

// Settings is a partial update to a Config. Nil fields are left
// untouched; non-nil fields are diffed against the current value and
// only actual changes produce persisted records.
type Settings struct {
	Name                  *string  `json:"name,omitempty"`
	Season                *int     `json:"season,omitempty"`
	Phase                 *Phase   `json:"phase,omitempty"`
	PhaseText             *string  `json:"phase_text,omitempty"`
	UserTID               *int     `json:"user_tid,omitempty"`
	Difficulty            *float64 `json:"difficulty,omitempty"`
	NumGames              *int     `json:"num_games,omitempty"`
	NumGamesPlayoffSeries *[]int   `json:"num_games_playoff_series,omitempty"`
	SalaryCap             *int     `json:"salary_cap,omitempty"`
	MinContract           *int     `json:"min_contract,omitempty"`
	MaxContract           *int     `json:"max_contract,omitempty"`
	HardCap               *bool    `json:"hard_cap,omitempty"`
	DaysLeft              *int     `json:"days_left,omitempty"`
}

func rawJSON(v any) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}

// Apply mutates cfg with every changed, non-NaN field of s and returns
// one record per key that actually changed. Unchanged values produce no
// record, so a no-op update persists nothing. NaN float values are
// dropped per key; the rest of the batch still applies.
func (s Settings) Apply(cfg *Config) []AttributeRecord {
	var changed []AttributeRecord

	setInt := func(key string, dst *int, src *int) {
		if src == nil || *src == *dst {
			return
		}
		*dst = *src
		changed = append(changed, AttributeRecord{Key: key, Value: rawJSON(*src)})
	}

	if s.Name != nil && *s.Name != cfg.Name {
		cfg.Name = *s.Name
		changed = append(changed, AttributeRecord{Key: "name", Value: rawJSON(cfg.Name)})
	}
	setInt("season", &cfg.Season, s.Season)
	if s.Phase != nil && *s.Phase != cfg.Phase {
		cfg.Phase = *s.Phase
		changed = append(changed, AttributeRecord{Key: "phase", Value: rawJSON(cfg.Phase)})
	}
	if s.PhaseText != nil && *s.PhaseText != cfg.PhaseText {
		cfg.PhaseText = *s.PhaseText
		changed = append(changed, AttributeRecord{Key: "phaseText", Value: rawJSON(cfg.PhaseText)})
	}
	setInt("userTid", &cfg.UserTID, s.UserTID)
	if s.Difficulty != nil && !math.IsNaN(*s.Difficulty) && *s.Difficulty != cfg.Difficulty {
		cfg.Difficulty = *s.Difficulty
		changed = append(changed, AttributeRecord{Key: "difficulty", Value: rawJSON(cfg.Difficulty)})
	}
	setInt("numGames", &cfg.NumGames, s.NumGames)
	if s.NumGamesPlayoffSeries != nil && !slices.Equal(*s.NumGamesPlayoffSeries, cfg.NumGamesPlayoffSeries) {
		// Slice compare, not pointer identity: re-sending the same
		// series must not open a new history era.
		cfg.NumGamesPlayoffSeries = slices.Clone(*s.NumGamesPlayoffSeries)
		changed = append(changed, AttributeRecord{Key: "numGamesPlayoffSeries", Value: rawJSON(cfg.NumGamesPlayoffSeries)})
	}
	setInt("salaryCap", &cfg.SalaryCap, s.SalaryCap)
	setInt("minContract", &cfg.MinContract, s.MinContract)
	setInt("maxContract", &cfg.MaxContract, s.MaxContract)
	if s.HardCap != nil && *s.HardCap != cfg.HardCap {
		cfg.HardCap = *s.HardCap
		changed = append(changed, AttributeRecord{Key: "hardCap", Value: rawJSON(cfg.HardCap)})
	}
	setInt("daysLeft", &cfg.DaysLeft, s.DaysLeft)

	return changed
}

// Records flattens the whole config into persistable attribute records.
// Used for the initial save of a new league.
func (c Config) Records() []AttributeRecord {
	return []AttributeRecord{
		{Key: "lid", Value: rawJSON(c.LID)},
		{Key: "name", Value: rawJSON(c.Name)},
		{Key: "season", Value: rawJSON(c.Season)},
		{Key: "startingSeason", Value: rawJSON(c.StartingSeason)},
		{Key: "phase", Value: rawJSON(c.Phase)},
		{Key: "phaseText", Value: rawJSON(c.PhaseText)},
		{Key: "userTid", Value: rawJSON(c.UserTID)},
		{Key: "difficulty", Value: rawJSON(c.Difficulty)},
		{Key: "numTeams", Value: rawJSON(c.NumTeams)},
		{Key: "numGames", Value: rawJSON(c.NumGames)},
		{Key: "numGamesPlayoffSeries", Value: rawJSON(c.NumGamesPlayoffSeries)},
		{Key: "salaryCap", Value: rawJSON(c.SalaryCap)},
		{Key: "minContract", Value: rawJSON(c.MinContract)},
		{Key: "maxContract", Value: rawJSON(c.MaxContract)},
		{Key: "hardCap", Value: rawJSON(c.HardCap)},
		{Key: "minRosterSize", Value: rawJSON(c.MinRosterSize)},
		{Key: "maxRosterSize", Value: rawJSON(c.MaxRosterSize)},
		{Key: "numDraftRounds", Value: rawJSON(c.NumDraftRounds)},
		{Key: "numSeasonsFutureDraftPicks", Value: rawJSON(c.NumSeasonsFutureDraftPicks)},
		{Key: "daysLeft", Value: rawJSON(c.DaysLeft)},
	}
}

// ApplyRecords overlays imported attribute records onto a config.
// Unknown keys are ignored rather than failing the import.
func (c *Config) ApplyRecords(records []AttributeRecord) {
	for _, rec := range records {
		switch rec.Key {
		case "season":
			_ = json.Unmarshal(rec.Value, &c.Season)
		case "startingSeason":
			_ = json.Unmarshal(rec.Value, &c.StartingSeason)
		case "phase":
			_ = json.Unmarshal(rec.Value, &c.Phase)
		case "phaseText":
			_ = json.Unmarshal(rec.Value, &c.PhaseText)
		case "numGames":
			_ = json.Unmarshal(rec.Value, &c.NumGames)
		case "numGamesPlayoffSeries":
			_ = json.Unmarshal(rec.Value, &c.NumGamesPlayoffSeries)
		case "salaryCap":
			_ = json.Unmarshal(rec.Value, &c.SalaryCap)
		case "minContract":
			_ = json.Unmarshal(rec.Value, &c.MinContract)
		case "maxContract":
			_ = json.Unmarshal(rec.Value, &c.MaxContract)
		case "hardCap":
			_ = json.Unmarshal(rec.Value, &c.HardCap)
		case "minRosterSize":
			_ = json.Unmarshal(rec.Value, &c.MinRosterSize)
		case "maxRosterSize":
			_ = json.Unmarshal(rec.Value, &c.MaxRosterSize)
		case "numDraftRounds":
			_ = json.Unmarshal(rec.Value, &c.NumDraftRounds)
		case "numSeasonsFutureDraftPicks":
			_ = json.Unmarshal(rec.Value, &c.NumSeasonsFutureDraftPicks)
		case "daysLeft":
			_ = json.Unmarshal(rec.Value, &c.DaysLeft)
		}
		// name, lid, userTid, difficulty and numTeams are protected:
		// they always come from the immediate create request, never
		// the file.
	}
}

// getValidNumGamesPlayoffSeries reconciles a playoff series-length list
// with the round count and team count. Too many rounds for the teams
// available truncates the list; a round count longer than the list
// extends it by repeating the final round's length.
func getValidNumGamesPlayoffSeries(series []int, numPlayoffRounds *int, numTeams int) []int {
	out := slices.Clone(series)

	if numPlayoffRounds != nil {
		rounds := *numPlayoffRounds
		if rounds < 1 {
			rounds = 1
		}
		for len(out) > rounds {
			out = out[:len(out)-1]
		}
		for len(out) < rounds {
			last := 7
			if len(out) > 0 {
				last = out[len(out)-1]
			}
			out = append(out, last)
		}
	}

	// 2^rounds teams are needed for a full bracket.
	for len(out) > 0 && numTeams < 1<<len(out) {
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		out = []int{7}
	}
	return out
}
