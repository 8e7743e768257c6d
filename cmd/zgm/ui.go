package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	cl "github.com/zengm-games/zengm-sub021/internal/cli"
	"github.com/zengm-games/zengm-sub021/internal/league"
	"github.com/zengm-games/zengm-sub021/internal/store"
)

var (
	accent  = color.New(color.FgCyan, color.Bold)
	success = color.New(color.FgGreen, color.Bold)
	warn    = color.New(color.FgYellow, color.Bold)
	danger  = color.New(color.FgRed, color.Bold)
	neutral = color.New(color.FgHiWhite)
)

func printSuccess(msg string) {
	success.Println(msg)
}

func printWarn(msg string) {
	warn.Println(msg)
}

// money renders a contract amount stored in thousands.
func money(amountThousands int) string {
	if amountThousands >= 1000 {
		return fmt.Sprintf("$%.1fM", float64(amountThousands)/1000)
	}
	return fmt.Sprintf("$%dk", amountThousands)
}

func printLeagues(leagues []store.LeagueMeta) {
	if len(leagues) == 0 {
		neutral.Println("No leagues yet. Run `zgm league create --name ...`.")
		return
	}
	accent.Printf("%-5s %-6s %-30s %s\n", "LID", "STAR", "NAME", "CREATED")
	for _, m := range leagues {
		star := ""
		if m.Starred {
			star = "*"
		}
		neutral.Printf("%-5d %-6s %-30s %s\n", m.LID, star, m.Name, m.Created.Format("2006-01-02"))
	}
}

func printAttributes(cfg league.Config) {
	accent.Printf("%s (league %d)\n", cfg.Name, cfg.LID)
	neutral.Printf("  season %d, phase %q, user team %d, difficulty %.2f\n",
		cfg.Season, cfg.Phase.String(), cfg.UserTID, cfg.Difficulty)
	neutral.Printf("  %d teams, %d games, playoff series %v\n",
		cfg.NumTeams, cfg.NumGames, cfg.NumGamesPlayoffSeries)
	capLabel := "soft"
	if cfg.HardCap {
		capLabel = "hard"
	}
	neutral.Printf("  cap %s (%s), contracts %s to %s\n",
		money(cfg.SalaryCap), capLabel, money(cfg.MinContract), money(cfg.MaxContract))
	neutral.Printf("  draft: %d rounds, picks %d seasons ahead\n",
		cfg.NumDraftRounds, cfg.NumSeasonsFutureDraftPicks)
}

func printTeams(teams []league.Team) {
	if len(teams) == 0 {
		warn.Println("No teams matched.")
		return
	}
	accent.Printf("%-4s %-5s %-28s %-12s %s\n", "TID", "ABV", "TEAM", "STRATEGY", "POP")
	for _, t := range teams {
		neutral.Printf("%-4d %-5s %-28s %-12s %.1fM\n",
			t.TID, t.Abbrev, t.Region+" "+t.Name, string(t.Strategy), t.Pop)
	}
}

func printRoster(cfg league.Config, tid int, players []league.Player) {
	if len(players) == 0 {
		warn.Printf("No players on team %d.\n", tid)
		return
	}
	accent.Printf("%-5s %-24s %-4s %-4s %-4s %-5s %-9s %-6s %s\n",
		"PID", "NAME", "POS", "AGE", "OVR", "POT", "SALARY", "EXP", "SKILLS")
	for _, p := range players {
		r := p.Ratings[len(p.Ratings)-1]
		neutral.Printf("%-5d %-24s %-4s %-4d %-4d %-5d %-9s %-6d %s\n",
			p.PID, p.FirstName+" "+p.LastName, r.Pos, cfg.Season-p.BornYear,
			r.Ovr, r.Pot, money(p.Contract.Amount), p.Contract.Exp,
			strings.Join(r.Skills, ","))
	}
}

func printPicks(picks []league.DraftPick) {
	if len(picks) == 0 {
		warn.Println("No picks found.")
		return
	}
	accent.Printf("%-6s %-8s %-6s %-6s %-6s %s\n", "DPID", "SEASON", "ROUND", "PICK", "OWNER", "FROM")
	for _, pk := range picks {
		pickLabel := "-"
		if pk.Pick > 0 {
			pickLabel = fmt.Sprintf("%d", pk.Pick)
		}
		neutral.Printf("%-6d %-8d %-6d %-6s %-6d %d\n",
			pk.DPID, pk.Season, pk.Round, pickLabel, pk.TID, pk.OriginalTID)
	}
}

func printTradeValue(result cl.TradeValueResult) {
	if result.Rejected {
		danger.Printf("Team %d refuses: too many picks in one package.\n", result.TID)
		return
	}
	switch {
	case result.Score > 0:
		success.Printf("Team %d likes it: %+.2f\n", result.TID, result.Score)
	case result.Score < 0:
		danger.Printf("Team %d declines: %+.2f\n", result.TID, result.Score)
	default:
		warn.Printf("Team %d is indifferent: %+.2f\n", result.TID, result.Score)
	}
}
