package preference

import (
	"reflect"
	"testing"

	"github.com/ts4z/shortlist/model"
)

const (
	A model.CandidateID = iota + 1
	B
	C
	D
	E
	F
)

var pool = []model.CandidateID{A, B, C, D, E, F}

func threeUsers() []Pick {
	return []Pick{
		{User: "u1", Candidate: A, Rank: 1},
		{User: "u1", Candidate: B, Rank: 2},
		{User: "u1", Candidate: C, Rank: 3},
		{User: "u2", Candidate: B, Rank: 1},
		{User: "u2", Candidate: A, Rank: 2},
		{User: "u2", Candidate: D, Rank: 10},
		{User: "u3", Candidate: A, Rank: 1},
		{User: "u3", Candidate: C, Rank: 2},
		{User: "u3", Candidate: E, Rank: model.Unranked},
		{User: "u3", Candidate: F, Rank: 11},
		{User: "u3", Candidate: 99, Rank: 4},
	}
}

func TestPoints(t *testing.T) {
	tests := []struct {
		rank model.Rank
		k    int
		want int
	}{
		{rank: 1, k: 10, want: 10},
		{rank: 10, k: 10, want: 1},
		{rank: 5, k: 10, want: 6},
		{rank: 1, k: 5, want: 5},
		{rank: 0, k: 10, want: 0},
		{rank: 11, k: 10, want: 0},
	}
	for _, tt := range tests {
		if got := Points(tt.rank, tt.k); got != tt.want {
			t.Errorf("Points(%d, %d) = %d, want %d", tt.rank, tt.k, got, tt.want)
		}
	}
}

func TestAggregate(t *testing.T) {
	got := Aggregate(pool, 10, threeUsers())
	want := map[model.CandidateID]Stats{
		A: {Candidate: A, Points: 10 + 9 + 10, Frequency: 3, BestRank: 1},
		B: {Candidate: B, Points: 9 + 10, Frequency: 2, BestRank: 1},
		C: {Candidate: C, Points: 8 + 9, Frequency: 2, BestRank: 2},
		D: {Candidate: D, Points: 1, Frequency: 1, BestRank: 10},
		E: {Candidate: E, Points: 0, Frequency: 0, BestRank: 11},
		F: {Candidate: F, Points: 0, Frequency: 0, BestRank: 11},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Aggregate() =\n%v\nwant\n%v", got, want)
	}
}

func TestStandings(t *testing.T) {
	got := Standings(Aggregate(pool, 10, threeUsers()))
	var ids []model.CandidateID
	var pos []int
	for _, s := range got {
		ids = append(ids, s.Candidate)
		pos = append(pos, s.Position)
	}
	if want := []model.CandidateID{A, B, C, D}; !reflect.DeepEqual(ids, want) {
		t.Errorf("standings = %v, want %v", ids, want)
	}
	if want := []int{1, 2, 3, 4}; !reflect.DeepEqual(pos, want) {
		t.Errorf("positions = %v, want %v", pos, want)
	}
}

func TestStandingsTieBreaks(t *testing.T) {
	stats := map[model.CandidateID]Stats{
		A: {Candidate: A, Points: 10, Frequency: 1, BestRank: 1},
		B: {Candidate: B, Points: 10, Frequency: 2, BestRank: 5},
		C: {Candidate: C, Points: 10, Frequency: 2, BestRank: 4},
		D: {Candidate: D, Points: 10, Frequency: 2, BestRank: 4},
	}
	got := Standings(stats)
	var ids []model.CandidateID
	var pos []int
	for _, s := range got {
		ids = append(ids, s.Candidate)
		pos = append(pos, s.Position)
	}
	if want := []model.CandidateID{C, D, B, A}; !reflect.DeepEqual(ids, want) {
		t.Errorf("standings = %v, want %v", ids, want)
	}
	if want := []int{1, 1, 3, 4}; !reflect.DeepEqual(pos, want) {
		t.Errorf("positions = %v, want %v", pos, want)
	}
}

func TestPointsFor(t *testing.T) {
	stats := Aggregate(pool, 10, threeUsers())
	if got := PointsFor(stats, []model.CandidateID{B, D, 99}); got != 20 {
		t.Errorf("PointsFor(B, D) = %d, want 20", got)
	}
}
