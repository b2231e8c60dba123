package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ts4z/shortlist/config"
	"github.com/ts4z/shortlist/dbutil"
	"github.com/ts4z/shortlist/model"
	"github.com/ts4z/shortlist/reportcache"
	"github.com/ts4z/shortlist/round"
	"github.com/ts4z/shortlist/roundfile"
	"github.com/ts4z/shortlist/state"
	"github.com/ts4z/shortlist/ts"
)

var withAnswers bool

// admin bundles what every database command needs.
type admin struct {
	storage *state.DBStorage
	rm      *round.Manager
}

func newAdmin(ctx context.Context) (*admin, error) {
	config.Init()
	db, err := dbutil.Connect()
	if err != nil {
		return nil, fmt.Errorf("can't connect to database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("can't reach database: %w", err)
	}
	storage := state.NewDBStorageFromDB(db)
	// The daemon hears about changes through the database triggers, so
	// there is nothing here to invalidate.
	rm := round.NewManager(ts.NewRealClock(), storage, state.NewDefaultPaytableStorage(), reportcache.Nop{}, config.DefaultPaytable())
	return &admin{storage: storage, rm: rm}, nil
}

func (a *admin) Close() {
	a.storage.Close()
}

// withAdmin adapts a command that needs the database into a cobra RunE.
func withAdmin(fn func(ctx context.Context, a *admin, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newAdmin(ctx)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(ctx, a, cmd, args)
	}
}

func parseCategory(s string) (model.CategoryID, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad category id %q: %w", s, err)
	}
	return model.CategoryID(id), nil
}

func createSchema(ctx context.Context, a *admin, cmd *cobra.Command, args []string) error {
	if err := a.storage.CreateSchema(ctx); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "schema is current")
	return nil
}

// checkRound validates a round file without touching the database.
func checkRound(cmd *cobra.Command, args []string) error {
	rf, err := roundfile.Read(args[0])
	if err != nil {
		return err
	}
	rm := round.NewManager(ts.NewRealClock(), state.NewMemStorage(), state.NewDefaultPaytableStorage(), reportcache.Nop{}, config.DefaultPaytable())
	if err := rm.Validate(rf.Round); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s, %d categories, %d answer sets\n", args[0], rf.Round.ID, len(rf.Round.Categories), len(rf.Answers))
	return nil
}

func loadRound(ctx context.Context, a *admin, cmd *cobra.Command, args []string) error {
	rf, err := roundfile.Read(args[0])
	if err != nil {
		return err
	}
	if err := a.rm.LoadRound(ctx, rf.Round); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "loaded %s (%s)\n", rf.Round.ID, rf.Round.Name)
	if !withAnswers {
		return nil
	}
	cats := make([]model.CategoryID, 0, len(rf.Answers))
	for id := range rf.Answers {
		cats = append(cats, id)
	}
	slices.Sort(cats)
	for _, id := range cats {
		if err := a.rm.RevealAnswers(ctx, rf.Round.ID, id, rf.Answers[id]); err != nil {
			return fmt.Errorf("category %d: %w", id, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "revealed category %d\n", id)
	}
	return nil
}

func listRounds(ctx context.Context, a *admin, cmd *cobra.Command, args []string) error {
	slugs, err := a.rm.ListRounds(ctx)
	if err != nil {
		return err
	}
	printRounds(cmd.OutOrStdout(), slugs)
	return nil
}

func revealAnswers(ctx context.Context, a *admin, cmd *cobra.Command, args []string) error {
	cat, err := parseCategory(args[1])
	if err != nil {
		return err
	}
	ids := make([]model.CandidateID, 0, len(args)-2)
	for _, s := range args[2:] {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("bad candidate id %q: %w", s, err)
		}
		ids = append(ids, model.CandidateID(id))
	}
	as := model.NewAnswerSet(ids...)
	if err := a.rm.RevealAnswers(ctx, model.RoundID(args[0]), cat, as); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "category %d answers: %v\n", cat, as.IDs())
	return nil
}

func finalizeUser(ctx context.Context, a *admin, cmd *cobra.Command, args []string) error {
	user := model.UserID(args[1])
	if err := a.rm.Finalize(ctx, user, model.RoundID(args[0])); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s is final in %s\n", user, args[0])
	return nil
}

func showLeaderboard(ctx context.Context, a *admin, cmd *cobra.Command, args []string) error {
	lb, err := a.rm.PickLeaderboard(ctx, model.RoundID(args[0]))
	if err != nil {
		return err
	}
	printPickLeaderboard(cmd.OutOrStdout(), lb)
	return nil
}

func showPrizes(ctx context.Context, a *admin, cmd *cobra.Command, args []string) error {
	lb, err := a.rm.PrizeLeaderboard(ctx, model.RoundID(args[0]))
	if err != nil {
		return err
	}
	printPrizeLeaderboard(cmd.OutOrStdout(), lb)
	return nil
}

func showEarnings(ctx context.Context, a *admin, cmd *cobra.Command, args []string) error {
	ue, err := a.rm.Earnings(ctx, model.RoundID(args[0]), model.UserID(args[1]))
	if err != nil {
		return err
	}
	printEarnings(cmd.OutOrStdout(), ue)
	return nil
}

func showPreferences(ctx context.Context, a *admin, cmd *cobra.Command, args []string) error {
	rep, err := a.rm.Preferences(ctx, model.RoundID(args[0]))
	if err != nil {
		return err
	}
	printPreferences(cmd.OutOrStdout(), rep)
	return nil
}

func showStats(ctx context.Context, a *admin, cmd *cobra.Command, args []string) error {
	rep, err := a.rm.Stats(ctx, model.RoundID(args[0]))
	if err != nil {
		return err
	}
	printStats(cmd.OutOrStdout(), rep)
	return nil
}

func listPaytables(cmd *cobra.Command, args []string) error {
	for _, s := range state.NewDefaultPaytableStorage().FetchPaytableSlugs() {
		fmt.Fprintln(cmd.OutOrStdout(), s.Name)
	}
	return nil
}

func showPaytable(cmd *cobra.Command, args []string) error {
	pt, err := state.NewDefaultPaytableStorage().FetchPaytableByName(args[0])
	if err != nil {
		return err
	}
	printPaytable(cmd.OutOrStdout(), pt)
	return nil
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Short:        "Shortlist administration tool",
		Use:          "shortlistadmin",
		SilenceUsage: true,
	}

	schemaCmd := &cobra.Command{
		Use:   "schema",
		Short: "Create or update the database tables",
		Args:  cobra.NoArgs,
		RunE:  withAdmin(createSchema),
	}

	roundCmd := &cobra.Command{
		Use:   "round",
		Short: "Manage rounds",
	}
	checkCmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Validate a round file",
		Args:  cobra.ExactArgs(1),
		RunE:  checkRound,
	}
	loadCmd := &cobra.Command{
		Use:   "load <file>",
		Short: "Create or replace a round from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE:  withAdmin(loadRound),
	}
	loadCmd.Flags().BoolVar(&withAnswers, "answers", false, "Also reveal the answers the file lists")
	roundListCmd := &cobra.Command{
		Use:   "list",
		Short: "List rounds",
		Args:  cobra.NoArgs,
		RunE:  withAdmin(listRounds),
	}
	roundCmd.AddCommand(checkCmd, loadCmd, roundListCmd)

	answersCmd := &cobra.Command{
		Use:   "answers <round> <category> <candidate>...",
		Short: "Reveal the correct answers for a category",
		Args:  cobra.MinimumNArgs(2),
		RunE:  withAdmin(revealAnswers),
	}
	finalizeCmd := &cobra.Command{
		Use:   "finalize <round> <user>",
		Short: "Lock a user's selections for a round",
		Args:  cobra.ExactArgs(2),
		RunE:  withAdmin(finalizeUser),
	}

	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Print round reports",
	}
	reportCmd.AddCommand(
		&cobra.Command{Use: "leaderboard <round>", Short: "Rank users by correct picks", Args: cobra.ExactArgs(1), RunE: withAdmin(showLeaderboard)},
		&cobra.Command{Use: "prizes <round>", Short: "Rank users by winnings", Args: cobra.ExactArgs(1), RunE: withAdmin(showPrizes)},
		&cobra.Command{Use: "earnings <round> <user>", Short: "Show one user's winnings by category", Args: cobra.ExactArgs(2), RunE: withAdmin(showEarnings)},
		&cobra.Command{Use: "preferences <round>", Short: "Rank candidates by preference points", Args: cobra.ExactArgs(1), RunE: withAdmin(showPreferences)},
		&cobra.Command{Use: "stats <round>", Short: "Show per-category statistics", Args: cobra.ExactArgs(1), RunE: withAdmin(showStats)},
	)

	paytableCmd := &cobra.Command{
		Use:   "paytable",
		Short: "Show the built-in prize tables",
	}
	paytableCmd.AddCommand(
		&cobra.Command{Use: "list", Short: "List prize tables", Args: cobra.NoArgs, RunE: listPaytables},
		&cobra.Command{Use: "show <name>", Short: "Print a prize table", Args: cobra.ExactArgs(1), RunE: showPaytable},
	)

	rootCmd.AddCommand(schemaCmd, roundCmd, answersCmd, finalizeCmd, reportCmd, paytableCmd)
	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	log.SetFlags(0)
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
