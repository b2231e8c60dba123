// Package preference totals how strongly finalized users favored each
// candidate of a ranked list.
package preference

import (
	"github.com/ts4z/shortlist/leaderboard"
	"github.com/ts4z/shortlist/model"
)

// Pick is one ranked selection of one finalized user.
type Pick struct {
	User      model.UserID
	Candidate model.CandidateID
	Rank      model.Rank
}

type Stats struct {
	Candidate model.CandidateID `json:"candidate"`
	Points    int               `json:"points"`
	Frequency int               `json:"frequency"`
	// BestRank is K+1 when nobody ranked the candidate.  It is a tie-break,
	// not a rank to display.
	BestRank model.Rank `json:"bestRank"`
}

// Points is what a pick at rank r is worth in a list of k: k for rank 1
// down to 1 for rank k.  Anything else is worth nothing.
func Points(r model.Rank, k int) int {
	if !r.InRange(k) {
		return 0
	}
	return k + 1 - int(r)
}

// Aggregate returns Stats for every candidate of pool.  Picks of candidates
// outside pool, unranked picks and out of range picks are ignored.
func Aggregate(pool []model.CandidateID, k int, picks []Pick) map[model.CandidateID]Stats {
	out := make(map[model.CandidateID]Stats, len(pool))
	for _, id := range pool {
		out[id] = Stats{Candidate: id, BestRank: model.Rank(k + 1)}
	}
	for _, p := range picks {
		s, ok := out[p.Candidate]
		if !ok || !p.Rank.InRange(k) {
			continue
		}
		s.Points += Points(p.Rank, k)
		s.Frequency++
		s.BestRank = min(s.BestRank, p.Rank)
		out[p.Candidate] = s
	}
	return out
}

type Standing struct {
	Stats
	Position int `json:"position"`
}

// Standings drops candidates without points and orders the rest by points,
// then frequency, then best rank.
func Standings(stats map[model.CandidateID]Stats) []Standing {
	entries := make([]leaderboard.Entry[model.CandidateID], 0, len(stats))
	for id, s := range stats {
		if s.Points == 0 {
			continue
		}
		entries = append(entries, leaderboard.Entry[model.CandidateID]{
			ID:   id,
			Keys: []int{s.Points, s.Frequency, int(s.BestRank)},
		})
	}
	// key count always matches the variant
	ranked, _ := leaderboard.Rank(leaderboard.Preferences, entries)
	out := make([]Standing, len(ranked))
	for i, r := range ranked {
		out[i] = Standing{Stats: stats[r.ID], Position: r.Position}
	}
	return out
}

// PointsFor sums the preference points of ids, as used by the pick
// leaderboard's contrarian tie-break.
func PointsFor(stats map[model.CandidateID]Stats, ids []model.CandidateID) int {
	sum := 0
	for _, id := range ids {
		sum += stats[id].Points
	}
	return sum
}
