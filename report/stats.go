package report

import (
	"cmp"
	"slices"
	"time"

	"github.com/ts4z/shortlist/model"
)

type CandidatePicks struct {
	Candidate model.CandidateID `json:"candidate"`
	Name      string            `json:"name"`
	Count     int               `json:"count"`
	Correct   bool              `json:"correct"`
}

// CategoryStats summarizes a revealed category over the users who filled
// every slot.
type CategoryStats struct {
	Category    model.CategoryID `json:"category"`
	Slug        string           `json:"slug"`
	Name        string           `json:"name"`
	PoolSize    int              `json:"poolSize"`
	Users       int              `json:"users"`
	Accuracy    []int            `json:"accuracy"` // users by number correct, 0..Slots
	MinPaying   int              `json:"minPaying"`
	TotalEarned int              `json:"totalEarned"`
	MaxPossible int              `json:"maxPossible"`
	Successful  int              `json:"successful"`
	SuccessRate float64          `json:"successRate"` // percent
	Picks       []CandidatePicks `json:"picks"`
}

type StatsReport struct {
	Round       model.RoundID   `json:"round"`
	Categories  []CategoryStats `json:"categories"`
	GeneratedAt time.Time       `json:"generatedAt"`
}

func BuildStats(s *Snapshot) (*StatsReport, error) {
	cats, err := s.revealedCategories()
	if err != nil {
		return nil, err
	}
	pt, err := s.paytable()
	if err != nil {
		return nil, err
	}
	byUser := s.byUser()

	rep := &StatsReport{Round: s.Round.ID, Categories: []CategoryStats{}, GeneratedAt: s.AsOf}
	for _, cat := range cats {
		answers := s.answers(cat.ID)
		cs := CategoryStats{
			Category:  cat.ID,
			Slug:      cat.Slug,
			Name:      cat.Name,
			PoolSize:  cat.PoolSize(),
			Accuracy:  make([]int, cat.Slots+1),
			MinPaying: pt.MinPayingCorrect(cat.PoolSize()),
		}
		counts := map[model.CandidateID]int{}
		for _, u := range s.Users {
			mine := byUser[u][cat.ID]
			if len(mine) != cat.Slots {
				continue
			}
			cs.Users++
			correct := 0
			for _, sel := range mine {
				counts[sel.Candidate]++
				if answers.Contains(sel.Candidate) {
					correct++
				}
			}
			cs.Accuracy[correct]++
			prize := pt.Prize(correct, cat.PoolSize())
			cs.TotalEarned += prize
			if cs.MinPaying >= 0 && correct >= cs.MinPaying {
				cs.Successful++
			}
		}
		cs.MaxPossible = cs.Users * pt.MaxPrize(cat.PoolSize())
		if cs.Users > 0 {
			cs.SuccessRate = 100 * float64(cs.Successful) / float64(cs.Users)
		}

		cs.Picks = make([]CandidatePicks, 0, len(counts))
		for id, n := range counts {
			cs.Picks = append(cs.Picks, CandidatePicks{
				Candidate: id,
				Name:      candidateName(cat, id),
				Count:     n,
				Correct:   answers.Contains(id),
			})
		}
		slices.SortFunc(cs.Picks, func(a, b CandidatePicks) int {
			if c := cmp.Compare(b.Count, a.Count); c != 0 {
				return c
			}
			return cmp.Compare(a.Name, b.Name)
		})
		rep.Categories = append(rep.Categories, cs)
	}
	return rep, nil
}
