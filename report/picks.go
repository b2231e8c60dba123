package report

import (
	"cmp"
	"slices"
	"time"

	"github.com/ts4z/shortlist/leaderboard"
	"github.com/ts4z/shortlist/model"
	"github.com/ts4z/shortlist/preference"
)

type SuccessfulPick struct {
	Candidate model.CandidateID `json:"candidate"`
	Name      string            `json:"name"`
	Rank      model.Rank        `json:"rank"`
	Points    int               `json:"points"`
}

type PickEntry struct {
	User             model.UserID     `json:"user"`
	Position         int              `json:"position"`
	SuccessCount     int              `json:"successCount"`
	RankSum          int              `json:"rankSum"`
	PreferencePoints int              `json:"preferencePoints"`
	Picks            []SuccessfulPick `json:"picks"`
}

type PickLeaderboard struct {
	Round       model.RoundID `json:"round"`
	Entries     []PickEntry   `json:"entries"`
	Users       int           `json:"users"`
	Pot         int           `json:"pot"`
	AnswerCount int           `json:"answerCount"`
	GeneratedAt time.Time     `json:"generatedAt"`
}

// BuildPickLeaderboard scores every finalized user's top list against the
// answer set of the round's answer category.
func BuildPickLeaderboard(s *Snapshot) (*PickLeaderboard, error) {
	top, err := s.topList()
	if err != nil {
		return nil, err
	}
	answers := s.answers(s.Round.AnswerCategory)
	if len(answers) == 0 {
		return nil, ErrUnavailable
	}

	picks := s.topListPicks(top)
	stats := preference.Aggregate(top.PoolIDs(), top.Slots, picks)

	byUser := make(map[model.UserID]*PickEntry, len(s.Users))
	for _, u := range s.Users {
		byUser[u] = &PickEntry{User: u, Picks: []SuccessfulPick{}}
	}
	for _, p := range picks {
		e := byUser[p.User]
		if !answers.Contains(p.Candidate) || !p.Rank.InRange(top.Slots) {
			continue
		}
		pts := stats[p.Candidate].Points
		e.SuccessCount++
		e.RankSum += int(p.Rank)
		e.PreferencePoints += pts
		e.Picks = append(e.Picks, SuccessfulPick{
			Candidate: p.Candidate,
			Name:      candidateName(top, p.Candidate),
			Rank:      p.Rank,
			Points:    pts,
		})
	}

	entries := make([]leaderboard.Entry[model.UserID], 0, len(byUser))
	for u, e := range byUser {
		slices.SortFunc(e.Picks, func(a, b SuccessfulPick) int { return cmp.Compare(a.Rank, b.Rank) })
		entries = append(entries, leaderboard.Entry[model.UserID]{
			ID:   u,
			Keys: []int{e.SuccessCount, e.RankSum, e.PreferencePoints},
		})
	}
	ranked, err := leaderboard.Rank(leaderboard.Picks, entries)
	if err != nil {
		return nil, err
	}

	lb := &PickLeaderboard{
		Round:       s.Round.ID,
		Entries:     make([]PickEntry, len(ranked)),
		Users:       len(s.Users),
		Pot:         s.Round.EntryFee * len(s.Users),
		AnswerCount: len(answers),
		GeneratedAt: s.AsOf,
	}
	for i, r := range ranked {
		lb.Entries[i] = *byUser[r.ID]
		lb.Entries[i].Position = r.Position
	}
	return lb, nil
}
