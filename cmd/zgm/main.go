package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	cl "github.com/zengm-games/zengm-sub021/internal/cli"
	"github.com/zengm-games/zengm-sub021/internal/config"
	"github.com/zengm-games/zengm-sub021/internal/league"
)

func main() {
	cfg := config.LoadCLIFromEnv()
	apiBase := cfg.APIBaseURL

	root := &cobra.Command{
		Use:          "zgm",
		Short:        "Franchise sim league client",
		SilenceUsage: true,
	}

	root.AddCommand(
		newLeagueCmd(&apiBase),
		newAttrsCmd(&apiBase),
		newTeamsCmd(&apiBase),
		newRosterCmd(&apiBase),
		newPicksCmd(&apiBase),
		newTradeCmd(&apiBase),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newClient(apiBase *string) *cl.Client {
	return cl.NewClient(strings.TrimRight(strings.TrimSpace(*apiBase), "/"))
}

// activeLid resolves the league to operate on: explicit flag first,
// then the saved local state.
func activeLid(flagLid int) (int, error) {
	if flagLid > 0 {
		return flagLid, nil
	}
	state, err := cl.LoadState()
	if err != nil {
		return 0, err
	}
	if state.ActiveLID == 0 {
		return 0, fmt.Errorf("no active league; run `zgm league use <lid>` or pass --lid")
	}
	return state.ActiveLID, nil
}

func newLeagueCmd(apiBase *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "league",
		Short: "Create, list and manage leagues",
	}
	cmd.AddCommand(
		newLeagueCreateCmd(apiBase),
		newLeagueListCmd(apiBase),
		newLeagueUseCmd(apiBase),
		newLeagueDeleteCmd(apiBase),
		newLeagueStarCmd(apiBase),
	)
	return cmd
}

func newLeagueCreateCmd(apiBase *string) *cobra.Command {
	var (
		name       string
		tid        int
		difficulty float64
		season     int
		shuffle    bool
		filePath   string
		importLid  int
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new league",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(name) == "" {
				return fmt.Errorf("--name is required")
			}
			in := cl.CreateLeagueInput{
				Name:           name,
				TID:            tid,
				Difficulty:     difficulty,
				StartingSeason: season,
				ShuffleRosters: shuffle,
			}
			if filePath != "" {
				raw, err := os.ReadFile(filePath)
				if err != nil {
					return err
				}
				var file league.LeagueFile
				if err := json.Unmarshal(raw, &file); err != nil {
					return fmt.Errorf("parse league file: %w", err)
				}
				in.LeagueFile = &file
			}
			if importLid > 0 {
				in.ImportLid = &importLid
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 120*time.Second)
			defer cancel()
			result, err := newClient(apiBase).CreateLeague(ctx, in, uuid.NewString())
			if err != nil {
				return err
			}
			if err := cl.SaveState(cl.State{ActiveLID: result.LID}); err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("League %d created: %s (season %d, %d teams). Now active.",
				result.LID, result.Attributes.Name, result.Attributes.Season, result.Attributes.NumTeams))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "league name")
	cmd.Flags().IntVar(&tid, "tid", -1, "team to control (out of range picks randomly)")
	cmd.Flags().Float64Var(&difficulty, "difficulty", 0, "difficulty level")
	cmd.Flags().IntVar(&season, "season", 0, "starting season (default: current year)")
	cmd.Flags().BoolVar(&shuffle, "shuffle", false, "shuffle imported rosters")
	cmd.Flags().StringVar(&filePath, "file", "", "league file to import")
	cmd.Flags().IntVar(&importLid, "import-lid", 0, "replace an existing league id")
	return cmd
}

func newLeagueListCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List leagues",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			leagues, err := newClient(apiBase).Leagues(ctx)
			if err != nil {
				return err
			}
			printLeagues(leagues)
			return nil
		},
	}
}

func newLeagueUseCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "use <lid>",
		Short: "Set the active league",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lid, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid league id %q", args[0])
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			meta, err := newClient(apiBase).League(ctx, lid)
			if err != nil {
				return err
			}
			if err := cl.SaveState(cl.State{ActiveLID: meta.LID}); err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Active league: %d (%s)", meta.LID, meta.Name))
			return nil
		},
	}
}

func newLeagueDeleteCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <lid>",
		Short: "Delete a league",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lid, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid league id %q", args[0])
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			if err := newClient(apiBase).DeleteLeague(ctx, lid); err != nil {
				return err
			}
			state, _ := cl.LoadState()
			if state.ActiveLID == lid {
				_ = cl.ClearState()
			}
			printWarn(fmt.Sprintf("League %d deleted.", lid))
			return nil
		},
	}
}

func newLeagueStarCmd(apiBase *string) *cobra.Command {
	var unstar bool
	cmd := &cobra.Command{
		Use:   "star <lid>",
		Short: "Star or unstar a league",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lid, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid league id %q", args[0])
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			if err := newClient(apiBase).StarLeague(ctx, lid, !unstar); err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("League %d starred=%v", lid, !unstar))
			return nil
		},
	}
	cmd.Flags().BoolVar(&unstar, "unstar", false, "remove the star")
	return cmd
}

func newAttrsCmd(apiBase *string) *cobra.Command {
	var flagLid int
	cmd := &cobra.Command{
		Use:   "attrs",
		Short: "Show or change league settings",
	}
	cmd.PersistentFlags().IntVar(&flagLid, "lid", 0, "league id (default: active league)")

	get := &cobra.Command{
		Use:   "get",
		Short: "Show current game attributes",
		RunE: func(cmd *cobra.Command, args []string) error {
			lid, err := activeLid(flagLid)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			cfg, err := newClient(apiBase).Attributes(ctx, lid)
			if err != nil {
				return err
			}
			printAttributes(cfg)
			return nil
		},
	}

	var (
		salaryCap int
		phase     int
		daysLeft  int
		userTid   int
		hardCap   string
	)
	set := &cobra.Command{
		Use:   "set",
		Short: "Update game attributes",
		RunE: func(cmd *cobra.Command, args []string) error {
			lid, err := activeLid(flagLid)
			if err != nil {
				return err
			}
			var settings league.Settings
			if cmd.Flags().Changed("salary-cap") {
				settings.SalaryCap = &salaryCap
			}
			if cmd.Flags().Changed("phase") {
				p := league.Phase(phase)
				settings.Phase = &p
			}
			if cmd.Flags().Changed("days-left") {
				settings.DaysLeft = &daysLeft
			}
			if cmd.Flags().Changed("user-tid") {
				settings.UserTID = &userTid
			}
			if cmd.Flags().Changed("hard-cap") {
				b, err := strconv.ParseBool(hardCap)
				if err != nil {
					return fmt.Errorf("invalid --hard-cap %q", hardCap)
				}
				settings.HardCap = &b
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			cfg, err := newClient(apiBase).UpdateAttributes(ctx, lid, settings)
			if err != nil {
				return err
			}
			printSuccess("Attributes updated.")
			printAttributes(cfg)
			return nil
		},
	}
	set.Flags().IntVar(&salaryCap, "salary-cap", 0, "salary cap in thousands")
	set.Flags().IntVar(&phase, "phase", 0, "phase number")
	set.Flags().IntVar(&daysLeft, "days-left", 0, "days left in the current phase")
	set.Flags().IntVar(&userTid, "user-tid", 0, "team under user control")
	set.Flags().StringVar(&hardCap, "hard-cap", "", "hard cap on or off (true/false)")

	cmd.AddCommand(get, set)
	return cmd
}

func newTeamsCmd(apiBase *string) *cobra.Command {
	var flagLid int
	cmd := &cobra.Command{
		Use:   "teams [query]",
		Short: "List teams, optionally fuzzy-filtered",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lid, err := activeLid(flagLid)
			if err != nil {
				return err
			}
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			teams, err := newClient(apiBase).Teams(ctx, lid, query)
			if err != nil {
				return err
			}
			printTeams(teams)
			return nil
		},
	}
	cmd.Flags().IntVar(&flagLid, "lid", 0, "league id (default: active league)")
	return cmd
}

func newRosterCmd(apiBase *string) *cobra.Command {
	var flagLid int
	cmd := &cobra.Command{
		Use:   "roster <tid>",
		Short: "Show a team's roster in depth-chart order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lid, err := activeLid(flagLid)
			if err != nil {
				return err
			}
			tid, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid team id %q", args[0])
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := newClient(apiBase)
			cfg, err := client.Attributes(ctx, lid)
			if err != nil {
				return err
			}
			players, err := client.Roster(ctx, lid, tid)
			if err != nil {
				return err
			}
			printRoster(cfg, tid, players)
			return nil
		},
	}
	cmd.Flags().IntVar(&flagLid, "lid", 0, "league id (default: active league)")
	return cmd
}

func newPicksCmd(apiBase *string) *cobra.Command {
	var (
		flagLid int
		tid     int
	)
	cmd := &cobra.Command{
		Use:   "picks",
		Short: "List draft picks",
		RunE: func(cmd *cobra.Command, args []string) error {
			lid, err := activeLid(flagLid)
			if err != nil {
				return err
			}
			var tidFilter *int
			if cmd.Flags().Changed("tid") {
				tidFilter = &tid
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			picks, err := newClient(apiBase).Picks(ctx, lid, tidFilter)
			if err != nil {
				return err
			}
			printPicks(picks)
			return nil
		},
	}
	cmd.Flags().IntVar(&flagLid, "lid", 0, "league id (default: active league)")
	cmd.Flags().IntVar(&tid, "tid", 0, "only picks owned by this team")
	return cmd
}

func newTradeCmd(apiBase *string) *cobra.Command {
	var (
		flagLid     int
		tid         int
		pidsAdd     []int
		pidsRemove  []int
		dpidsAdd    []int
		dpidsRemove []int
	)
	value := &cobra.Command{
		Use:   "value",
		Short: "Score a trade proposal from one team's perspective",
		RunE: func(cmd *cobra.Command, args []string) error {
			lid, err := activeLid(flagLid)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			result, err := newClient(apiBase).TradeValue(ctx, lid, league.TradeProposal{
				TID:         tid,
				PidsAdd:     pidsAdd,
				PidsRemove:  pidsRemove,
				DpidsAdd:    dpidsAdd,
				DpidsRemove: dpidsRemove,
			})
			if err != nil {
				return err
			}
			printTradeValue(result)
			return nil
		},
	}
	value.Flags().IntVar(&flagLid, "lid", 0, "league id (default: active league)")
	value.Flags().IntVar(&tid, "tid", 0, "evaluating team")
	value.Flags().IntSliceVar(&pidsAdd, "add-pids", nil, "player ids coming in")
	value.Flags().IntSliceVar(&pidsRemove, "remove-pids", nil, "player ids going out")
	value.Flags().IntSliceVar(&dpidsAdd, "add-dpids", nil, "pick ids coming in")
	value.Flags().IntSliceVar(&dpidsRemove, "remove-dpids", nil, "pick ids going out")

	cmd := &cobra.Command{
		Use:   "trade",
		Short: "Trade tools",
	}
	cmd.AddCommand(value)
	return cmd
}
