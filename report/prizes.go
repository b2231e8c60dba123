package report

import (
	"slices"
	"time"

	"github.com/ts4z/shortlist/leaderboard"
	"github.com/ts4z/shortlist/model"
)

// CategoryResult is one user's showing in one shortlist category.
type CategoryResult struct {
	Category     model.CategoryID `json:"category"`
	Slug         string           `json:"slug"`
	Name         string           `json:"name"`
	Revealed     bool             `json:"revealed"`
	Selected     int              `json:"selected"`
	Complete     bool             `json:"complete"`
	Correct      int              `json:"correct"`
	Prize        int              `json:"prize"`
	CorrectNames []string         `json:"correctNames"`
}

type UserEarnings struct {
	User             model.UserID     `json:"user"`
	Position         int              `json:"position,omitempty"`
	Total            int              `json:"total"`
	Completed        int              `json:"completed"`
	PayingCategories int              `json:"payingCategories"`
	Categories       []CategoryResult `json:"categories"`
}

type PrizeLeaderboard struct {
	Round       model.RoundID  `json:"round"`
	Entries     []UserEarnings `json:"entries"`
	TotalPaid   int            `json:"totalPaid"`
	GeneratedAt time.Time      `json:"generatedAt"`
}

// revealedCategories returns the shortlist categories with an answer set, or
// ErrUnavailable if there are none.
func (s *Snapshot) revealedCategories() ([]*model.Category, error) {
	out := []*model.Category{}
	for _, c := range s.Round.ShortlistCategories() {
		if len(s.answers(c.ID)) > 0 {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return nil, ErrUnavailable
	}
	return out, nil
}

// earnings computes a user's results in every shortlist category.  A
// category only pays when every slot is filled; partial picks earn nothing
// even when they are all correct.
func (s *Snapshot) earnings(u model.UserID, sels map[model.CategoryID][]model.RankedSelection) (UserEarnings, error) {
	pt, err := s.paytable()
	if err != nil {
		return UserEarnings{}, err
	}
	ue := UserEarnings{User: u, Categories: []CategoryResult{}}
	for _, cat := range s.Round.ShortlistCategories() {
		answers := s.answers(cat.ID)
		mine := sels[cat.ID]
		cr := CategoryResult{
			Category:     cat.ID,
			Slug:         cat.Slug,
			Name:         cat.Name,
			Revealed:     len(answers) > 0,
			Selected:     len(mine),
			Complete:     len(mine) == cat.Slots,
			CorrectNames: []string{},
		}
		if cr.Revealed {
			for _, sel := range mine {
				if answers.Contains(sel.Candidate) {
					cr.Correct++
					cr.CorrectNames = append(cr.CorrectNames, candidateName(cat, sel.Candidate))
				}
			}
			slices.Sort(cr.CorrectNames)
			if cr.Complete {
				cr.Prize = pt.Prize(cr.Correct, cat.PoolSize())
			}
		}
		if cr.Complete {
			ue.Completed++
		}
		if cr.Prize > 0 {
			ue.PayingCategories++
		}
		ue.Total += cr.Prize
		ue.Categories = append(ue.Categories, cr)
	}
	return ue, nil
}

// BuildPrizeLeaderboard ranks every finalized user by total prize.  Users
// who completed no category are listed at 0.
func BuildPrizeLeaderboard(s *Snapshot) (*PrizeLeaderboard, error) {
	if _, err := s.revealedCategories(); err != nil {
		return nil, err
	}
	byUser := map[model.UserID]UserEarnings{}
	entries := []leaderboard.Entry[model.UserID]{}
	for u, sels := range s.byUser() {
		ue, err := s.earnings(u, sels)
		if err != nil {
			return nil, err
		}
		byUser[u] = ue
		entries = append(entries, leaderboard.Entry[model.UserID]{ID: u, Keys: []int{ue.Total}})
	}
	ranked, err := leaderboard.Rank(leaderboard.Prizes, entries)
	if err != nil {
		return nil, err
	}
	lb := &PrizeLeaderboard{
		Round:       s.Round.ID,
		Entries:     make([]UserEarnings, len(ranked)),
		GeneratedAt: s.AsOf,
	}
	for i, r := range ranked {
		lb.Entries[i] = byUser[r.ID]
		lb.Entries[i].Position = r.Position
		lb.TotalPaid += byUser[r.ID].Total
	}
	return lb, nil
}

// BuildEarnings is one finalized user's per-category breakdown, incomplete
// categories included.  A user who isn't finalized gets an empty breakdown.
func BuildEarnings(s *Snapshot, u model.UserID) (*UserEarnings, error) {
	if _, err := s.revealedCategories(); err != nil {
		return nil, err
	}
	ue, err := s.earnings(u, s.byUser()[u])
	if err != nil {
		return nil, err
	}
	return &ue, nil
}
