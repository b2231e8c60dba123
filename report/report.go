// Package report builds read-only results over the finalized users of a
// round: the pick leaderboard, the prize leaderboard, per-user earnings,
// per-category statistics and preference standings.
//
// Builders are pure.  They take a Snapshot and never touch storage, so any
// number of readers may compute them concurrently.
package report

import (
	"errors"
	"fmt"
	"time"

	"github.com/ts4z/shortlist/model"
	"github.com/ts4z/shortlist/paytable"
	"github.com/ts4z/shortlist/preference"
)

// ErrUnavailable means the answers a report depends on have not been
// revealed.  It is never papered over with an all-zero report.
var ErrUnavailable = errors.New("results not available yet")

// Snapshot is a consistent read of a round: only finalized users, and the
// answer sets known at the time.
type Snapshot struct {
	Round      *model.Round
	Users      []model.UserID
	Selections []model.RankedSelection
	Answers    map[model.CategoryID]model.AnswerSet
	Paytable   *paytable.Paytable
	AsOf       time.Time
}

func (s *Snapshot) answers(cat model.CategoryID) model.AnswerSet {
	return s.Answers[cat]
}

// byUser groups selections by user and category.
func (s *Snapshot) byUser() map[model.UserID]map[model.CategoryID][]model.RankedSelection {
	out := make(map[model.UserID]map[model.CategoryID][]model.RankedSelection, len(s.Users))
	for _, u := range s.Users {
		out[u] = map[model.CategoryID][]model.RankedSelection{}
	}
	for _, sel := range s.Selections {
		cats, ok := out[sel.User]
		if !ok {
			// not finalized
			continue
		}
		cats[sel.Scope.Category] = append(cats[sel.Scope.Category], sel)
	}
	return out
}

// topListPicks returns the ranked top-list picks of finalized users.
func (s *Snapshot) topListPicks(top *model.Category) []preference.Pick {
	users := make(map[model.UserID]bool, len(s.Users))
	for _, u := range s.Users {
		users[u] = true
	}
	picks := []preference.Pick{}
	for _, sel := range s.Selections {
		if sel.Scope.Category != top.ID || !users[sel.User] || !sel.Rank.IsRanked() {
			continue
		}
		picks = append(picks, preference.Pick{User: sel.User, Candidate: sel.Candidate, Rank: sel.Rank})
	}
	return picks
}

func (s *Snapshot) topList() (*model.Category, error) {
	if s.Round.TopList == 0 {
		return nil, fmt.Errorf("round %s has no top list", s.Round.ID)
	}
	return s.Round.Category(s.Round.TopList)
}

func (s *Snapshot) paytable() (*paytable.Paytable, error) {
	if s.Paytable == nil {
		return nil, fmt.Errorf("round %s has no paytable", s.Round.ID)
	}
	return s.Paytable, nil
}

func candidateName(cat *model.Category, id model.CandidateID) string {
	if c, ok := cat.Candidate(id); ok {
		return c.DisplayName()
	}
	return fmt.Sprintf("#%d", id)
}
