package league

import "encoding/json"

type Phase int

const (
	PhasePreseason Phase = iota
	PhaseRegularSeason
	PhasePlayoffs
	PhaseDraftLottery
	PhaseDraft
	PhaseAfterDraft
	PhaseResignPlayers
	PhaseFreeAgency
)

func (p Phase) String() string {
	switch p {
	case PhasePreseason:
		return "preseason"
	case PhaseRegularSeason:
		return "regular season"
	case PhasePlayoffs:
		return "playoffs"
	case PhaseDraftLottery:
		return "draft lottery"
	case PhaseDraft:
		return "draft"
	case PhaseAfterDraft:
		return "after draft"
	case PhaseResignPlayers:
		return "re-sign players"
	case PhaseFreeAgency:
		return "free agency"
	}
	return "unknown"
}

type Strategy string

const (
	StrategyContending Strategy = "contending"
	StrategyRebuilding Strategy = "rebuilding"
)

type BudgetItem struct {
	Amount int `json:"amount"`
	Rank   int `json:"rank"`
}

type Budget struct {
	TicketPrice BudgetItem `json:"ticket_price"`
	Scouting    BudgetItem `json:"scouting"`
	Coaching    BudgetItem `json:"coaching"`
	Health      BudgetItem `json:"health"`
	Facilities  BudgetItem `json:"facilities"`
}

type Team struct {
	TID      int       `json:"tid"`
	CID      int       `json:"cid"`
	DID      int       `json:"did"`
	Region   string    `json:"region"`
	Name     string    `json:"name"`
	Abbrev   string    `json:"abbrev"`
	ImgURL   string    `json:"img_url,omitempty"`
	Colors   [3]string `json:"colors"`
	Pop      float64   `json:"pop"` // market population, millions
	Strategy Strategy  `json:"strategy"`
	Budget   Budget    `json:"budget"`
	Disabled bool      `json:"disabled"`
}

// Revenues are the six per-season income categories tracked for every
// team, each with an amount and a league-wide rank.
type Revenues struct {
	LuxuryTaxShare BudgetItem `json:"luxury_tax_share"`
	Merch          BudgetItem `json:"merch"`
	Sponsor        BudgetItem `json:"sponsor"`
	Ticket         BudgetItem `json:"ticket"`
	NationalTV     BudgetItem `json:"national_tv"`
	LocalTV        BudgetItem `json:"local_tv"`
}

// Expenses are the seven per-season outflow categories.
type Expenses struct {
	Salary     BudgetItem `json:"salary"`
	LuxuryTax  BudgetItem `json:"luxury_tax"`
	MinTax     BudgetItem `json:"min_tax"`
	Scouting   BudgetItem `json:"scouting"`
	Coaching   BudgetItem `json:"coaching"`
	Health     BudgetItem `json:"health"`
	Facilities BudgetItem `json:"facilities"`
}

type TeamSeason struct {
	TID             int      `json:"tid"`
	Season          int      `json:"season"`
	Won             int      `json:"won"`
	Lost            int      `json:"lost"`
	WonHome         int      `json:"won_home"`
	LostHome        int      `json:"lost_home"`
	WonAway         int      `json:"won_away"`
	LostAway        int      `json:"lost_away"`
	WonDiv          int      `json:"won_div"`
	LostDiv         int      `json:"lost_div"`
	WonConf         int      `json:"won_conf"`
	LostConf        int      `json:"lost_conf"`
	Hype            float64  `json:"hype"`
	Pop             float64  `json:"pop"`
	StadiumCapacity int      `json:"stadium_capacity"`
	Cash            int      `json:"cash"`
	Revenues        Revenues `json:"revenues"`
	Expenses        Expenses `json:"expenses"`
}

type TeamStats struct {
	TID      int  `json:"tid"`
	Season   int  `json:"season"`
	Playoffs bool `json:"playoffs"`
	GP       int  `json:"gp"`
	Min      int  `json:"min"`
	FG       int  `json:"fg"`
	FGA      int  `json:"fga"`
	TP       int  `json:"tp"`
	TPA      int  `json:"tpa"`
	FT       int  `json:"ft"`
	FTA      int  `json:"fta"`
	ORB      int  `json:"orb"`
	DRB      int  `json:"drb"`
	Ast      int  `json:"ast"`
	Stl      int  `json:"stl"`
	Blk      int  `json:"blk"`
	TOV      int  `json:"tov"`
	PF       int  `json:"pf"`
	Pts      int  `json:"pts"`
	OppPts   int  `json:"opp_pts"`
}

type PlayerRatings struct {
	Season int `json:"season"`

	Hgt  int `json:"hgt"` // height-derived advantage, not raw inches
	Stre int `json:"stre"`
	Spd  int `json:"spd"`
	Jmp  int `json:"jmp"`
	Endu int `json:"endu"`
	Ins  int `json:"ins"`
	Dnk  int `json:"dnk"`
	FT   int `json:"ft"`
	FG   int `json:"fg"`
	TP   int `json:"tp"`
	OIQ  int `json:"oiq"`
	DIQ  int `json:"diq"`
	Drb  int `json:"drb"`
	Pss  int `json:"pss"`
	Reb  int `json:"reb"`

	Ovr    int      `json:"ovr"`
	Pot    int      `json:"pot"`
	Fuzz   float64  `json:"fuzz"` // scouting noise on displayed ratings
	Pos    string   `json:"pos"`
	Skills []string `json:"skills"`
}

type Contract struct {
	Amount int `json:"amount"` // thousands
	Exp    int `json:"exp"`    // season the contract expires after
}

type SalaryRow struct {
	Season int `json:"season"`
	Amount int `json:"amount"`
}

type Injury struct {
	Type          string `json:"type"`
	GamesRemaining int   `json:"games_remaining"`
}

type Relative struct {
	Type string `json:"type"` // "brother", "father", "son"
	PID  int    `json:"pid"`
}

type DraftInfo struct {
	Year        int `json:"year"`
	Round       int `json:"round"` // 0 if undrafted
	Pick        int `json:"pick"`  // 0 if undrafted
	TID         int `json:"tid"`   // team that made the pick
	OriginalTID int `json:"original_tid"`
}

type Player struct {
	PID       int             `json:"pid"`
	TID       int             `json:"tid"`
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
	BornYear  int             `json:"born_year"`
	BornLoc   string          `json:"born_loc"`
	HgtIn     int             `json:"hgt_in"` // inches
	Weight    int             `json:"weight"` // pounds
	Draft     DraftInfo       `json:"draft"`
	Ratings   []PlayerRatings `json:"ratings"`
	Contract  Contract        `json:"contract"`
	Salaries  []SalaryRow     `json:"salaries"`
	Injury    Injury          `json:"injury"`
	Relatives []Relative      `json:"relatives,omitempty"`

	// RosterOrder is the depth-chart position within the player's team,
	// 0 = top of the rotation.
	RosterOrder int `json:"roster_order"`
}

// CurrentRatings returns the most recent ratings row. Generation
// guarantees at least one row exists.
func (p *Player) CurrentRatings() *PlayerRatings {
	return &p.Ratings[len(p.Ratings)-1]
}

func (p *Player) Age(season int) int {
	return season - p.BornYear
}

type DraftPick struct {
	DPID        int  `json:"dpid"`
	TID         int  `json:"tid"` // current owner
	OriginalTID int  `json:"original_tid"`
	Round       int  `json:"round"`
	Pick        int  `json:"pick"` // 0 until the draft order is known
	Season      int  `json:"season"`
	Fantasy     bool `json:"fantasy,omitempty"`
}

// TradeProposal is the ephemeral shape of one side of a negotiation:
// the players and picks moving into and out of team TID's control.
type TradeProposal struct {
	TID         int   `json:"tid"`
	PidsAdd     []int `json:"pids_add"`
	PidsRemove  []int `json:"pids_remove"`
	DpidsAdd    []int `json:"dpids_add"`
	DpidsRemove []int `json:"dpids_remove"`
}

type TradeSide struct {
	TID   int   `json:"tid"`
	Pids  []int `json:"pids"`
	Dpids []int `json:"dpids"`
}

// TradeState is the persisted negotiation scratchpad (one row per
// league).
type TradeState struct {
	RID   int          `json:"rid"`
	Teams [2]TradeSide `json:"teams"`
}

// AttributeRecord is the persisted form of one game attribute.
type AttributeRecord struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// Bundle is every object store needed to represent a new league,
// assembled fully in memory before any persistence happens.
type Bundle struct {
	Config      Config
	Teams       []Team
	TeamSeasons []TeamSeason
	TeamStats   []TeamStats
	Players     []Player
	DraftPicks  []DraftPick
	Trade       []TradeState

	// Imported pass-through stores. The construction core never
	// interprets these; they ride along to persistence. Games must be
	// inserted before schedule rows so auto-incrementing ids in the
	// two stores never collide.
	DraftLotteryResults []json.RawMessage
	Games               []json.RawMessage
	Schedule            []json.RawMessage

	// Blank-by-default stores.
	Awards          []json.RawMessage
	Negotiations    []json.RawMessage
	Messages        []json.RawMessage
	Events          []json.RawMessage
	PlayerFeats     []json.RawMessage
	PlayoffSeries   []json.RawMessage
	ReleasedPlayers []json.RawMessage
}

// TeamSeed is one team's entry in an imported league file. Pointer
// fields distinguish "absent, use the default" from explicit zero
// values.
type TeamSeed struct {
	TID      *int       `json:"tid,omitempty"`
	CID      *int       `json:"cid,omitempty"`
	DID      *int       `json:"did,omitempty"`
	Region   string     `json:"region"`
	Name     string     `json:"name"`
	Abbrev   string     `json:"abbrev"`
	ImgURL   string     `json:"img_url,omitempty"`
	Colors   *[3]string `json:"colors,omitempty"`
	Pop      *float64   `json:"pop,omitempty"`
	Strategy *Strategy  `json:"strategy,omitempty"`
	Budget   *Budget    `json:"budget,omitempty"`
	Disabled *bool      `json:"disabled,omitempty"`

	Seasons []TeamSeason `json:"seasons,omitempty"`
	Stats   []TeamStats  `json:"stats,omitempty"`
}

type LeagueFileMeta struct {
	PhaseText string `json:"phase_text"`
}

// LeagueFile is the import format. Every key is optional; missing
// sections are populated with computed defaults or empty collections.
type LeagueFile struct {
	Version        int               `json:"version"`
	Meta           *LeagueFileMeta   `json:"meta,omitempty"`
	StartingSeason int               `json:"starting_season,omitempty"`
	Teams          []TeamSeed        `json:"teams,omitempty"`
	Players        []Player          `json:"players,omitempty"`
	DraftPicks     []DraftPick       `json:"draft_picks,omitempty"`
	GameAttributes []AttributeRecord `json:"game_attributes,omitempty"`
	Trade          []TradeState      `json:"trade,omitempty"`

	DraftLotteryResults []json.RawMessage `json:"draft_lottery_results,omitempty"`
	Games               []json.RawMessage `json:"games,omitempty"`
	Schedule            []json.RawMessage `json:"schedule,omitempty"`
	Awards              []json.RawMessage `json:"awards,omitempty"`
	Negotiations        []json.RawMessage `json:"negotiations,omitempty"`
	Messages            []json.RawMessage `json:"messages,omitempty"`
	Events              []json.RawMessage `json:"events,omitempty"`
	PlayerFeats         []json.RawMessage `json:"player_feats,omitempty"`
	PlayoffSeries       []json.RawMessage `json:"playoff_series,omitempty"`
	ReleasedPlayers     []json.RawMessage `json:"released_players,omitempty"`
}
