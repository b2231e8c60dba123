package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/ts4z/shortlist/model"
	"github.com/ts4z/shortlist/paytable"
	"github.com/ts4z/shortlist/report"
	"github.com/ts4z/shortlist/textutil"
)

func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
}

// tied reports whether the entry at i shares its position with a neighbor.
func tied(positions []int, i int) bool {
	return (i > 0 && positions[i-1] == positions[i]) || (i+1 < len(positions) && positions[i+1] == positions[i])
}

func printRounds(out io.Writer, slugs []*model.RoundSlug) {
	w := newTabWriter(out)
	fmt.Fprintf(w, "id\tname\n")
	for _, s := range slugs {
		fmt.Fprintf(w, "%s\t%s\n", s.ID, s.Name)
	}
	w.Flush()
}

func printPickLeaderboard(out io.Writer, lb *report.PickLeaderboard) {
	fmt.Fprintf(out, "%s: %d players, pot %s, %d answers\n\n", lb.Round, lb.Users, textutil.FormatMoney(lb.Pot), lb.AnswerCount)
	positions := make([]int, len(lb.Entries))
	for i, e := range lb.Entries {
		positions[i] = e.Position
	}
	w := newTabWriter(out)
	fmt.Fprintf(w, "place\tuser\tcorrect\trank sum\tpoints\tpicks\n")
	for i, e := range lb.Entries {
		picks := make([]string, len(e.Picks))
		for j, p := range e.Picks {
			picks[j] = fmt.Sprintf("%d. %s", p.Rank, p.Name)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\n", textutil.FormatStanding(e.Position, tied(positions, i)),
			e.User, e.SuccessCount, e.RankSum, e.PreferencePoints, textutil.JoinNames(picks))
	}
	w.Flush()
}

func printPrizeLeaderboard(out io.Writer, lb *report.PrizeLeaderboard) {
	positions := make([]int, len(lb.Entries))
	for i, e := range lb.Entries {
		positions[i] = e.Position
	}
	w := newTabWriter(out)
	fmt.Fprintf(w, "place\tuser\ttotal\tcompleted\tpaying\n")
	for i, e := range lb.Entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n", textutil.FormatStanding(e.Position, tied(positions, i)),
			e.User, textutil.FormatMoney(e.Total), e.Completed, e.PayingCategories)
	}
	w.Flush()
	fmt.Fprintf(out, "\ntotal paid: %s\n", textutil.FormatMoney(lb.TotalPaid))
}

func printEarnings(out io.Writer, ue *report.UserEarnings) {
	w := newTabWriter(out)
	fmt.Fprintf(w, "category\tselected\tcorrect\tprize\tcorrect picks\n")
	for _, c := range ue.Categories {
		if !c.Revealed {
			fmt.Fprintf(w, "%s\t%d\t-\t-\tnot revealed\n", c.Name, c.Selected)
			continue
		}
		prize := textutil.FormatMoney(c.Prize)
		if !c.Complete {
			prize = "incomplete"
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\n", c.Name, c.Selected, c.Correct, prize, textutil.JoinNames(c.CorrectNames))
	}
	w.Flush()
	fmt.Fprintf(out, "\n%s: %s from %d completed categories\n", ue.User, textutil.FormatMoney(ue.Total), ue.Completed)
}

func printPreferences(out io.Writer, rep *report.PreferenceReport) {
	fmt.Fprintf(out, "%s: %d players\n\n", rep.Round, rep.Users)
	positions := make([]int, len(rep.Entries))
	for i, e := range rep.Entries {
		positions[i] = e.Position
	}
	w := newTabWriter(out)
	fmt.Fprintf(w, "place\tcandidate\tpoints\tpicked by\tbest rank\n")
	for i, e := range rep.Entries {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\n", textutil.FormatStanding(e.Position, tied(positions, i)),
			e.Name, e.Points, e.Frequency, e.BestRank)
	}
	w.Flush()
}

func printStats(out io.Writer, rep *report.StatsReport) {
	for _, c := range rep.Categories {
		fmt.Fprintf(out, "%s (%d nominees, %d players)\n", c.Name, c.PoolSize, c.Users)
		acc := make([]string, len(c.Accuracy))
		for n, users := range c.Accuracy {
			acc[n] = fmt.Sprintf("%d:%d", n, users)
		}
		fmt.Fprintf(out, "  accuracy: %s\n", strings.Join(acc, " "))
		minPaying := "nothing pays"
		if c.MinPaying >= 0 {
			minPaying = fmt.Sprintf("%d correct", c.MinPaying)
		}
		fmt.Fprintf(out, "  pays from: %s; %d successful (%s)\n", minPaying, c.Successful, textutil.FormatPercent(c.SuccessRate/100))
		fmt.Fprintf(out, "  earned %s of %s possible\n", textutil.FormatMoney(c.TotalEarned), textutil.FormatMoney(c.MaxPossible))

		w := newTabWriter(out)
		fmt.Fprintf(w, "  candidate\tpicks\tcorrect\n")
		for _, p := range c.Picks {
			fmt.Fprintf(w, "  %s\t%d\t%v\n", p.Name, p.Count, p.Correct)
		}
		w.Flush()
		fmt.Fprintln(out)
	}
}

func printPaytable(out io.Writer, pt *paytable.Paytable) {
	fmt.Fprintf(out, "%s (%d picks)\n\n", pt.Name, pt.Slots)
	w := newTabWriter(out)
	header := []string{"shortlist"}
	for n := 0; n <= pt.Slots; n++ {
		header = append(header, fmt.Sprintf("%d", n))
	}
	fmt.Fprintln(w, strings.Join(header, "\t"))
	for _, b := range pt.Bands {
		span := fmt.Sprintf("%d-%d", b.MinPool, b.MaxPool)
		if b.MaxPool == 0 {
			span = fmt.Sprintf("%d+", b.MinPool)
		}
		row := []string{span}
		for n := 0; n <= pt.Slots; n++ {
			row = append(row, textutil.FormatMoney(pt.Prize(n, b.MinPool)))
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	w.Flush()
}
