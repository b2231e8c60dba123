package state

import (
	"context"
	"errors"
	"math"
	"reflect"
	"slices"
	"testing"
	"time"

	"github.com/ts4z/shortlist/builtins"
	"github.com/ts4z/shortlist/model"
)

var (
	ctx     = context.Background()
	topList = model.RankScope{Round: "demo", Category: 1}
	now     = time.Date(2025, 1, 17, 12, 0, 0, 0, time.UTC)
)

func ranks(sels []model.RankedSelection) map[model.CandidateID]model.Rank {
	out := map[model.CandidateID]model.Rank{}
	for _, s := range sels {
		out[s.Candidate] = s.Rank
	}
	return out
}

func TestApplyRankBatch(t *testing.T) {
	s := NewMemStorage(builtins.DemoRound())
	first := &model.RankBatch{ID: "1", User: "ann", Scope: topList, Upserts: []model.RankUpsert{
		{Candidate: 100, Rank: 1},
		{Candidate: 101, Rank: 2},
		{Candidate: 102},
	}}
	if err := s.ApplyRankBatch(ctx, first); err != nil {
		t.Fatal(err)
	}

	// a swap needs both rows to change at once
	swap := &model.RankBatch{ID: "2", User: "ann", Scope: topList,
		Upserts: []model.RankUpsert{{Candidate: 100, Rank: 2}, {Candidate: 101, Rank: 1}},
		Deletes: []model.CandidateID{102},
	}
	if err := s.ApplyRankBatch(ctx, swap); err != nil {
		t.Fatal(err)
	}
	sels, err := s.FetchSelections(ctx, "ann", topList)
	if err != nil {
		t.Fatal(err)
	}
	want := map[model.CandidateID]model.Rank{100: 2, 101: 1}
	if got := ranks(sels); !reflect.DeepEqual(got, want) {
		t.Errorf("selections = %v, want %v", got, want)
	}
	if sels[0].Candidate != 101 {
		t.Errorf("selections not in rank order: %v", sels)
	}
}

func TestApplyRankBatchIsAllOrNothing(t *testing.T) {
	s := NewMemStorage(builtins.DemoRound())
	if err := s.ApplyRankBatch(ctx, &model.RankBatch{User: "ann", Scope: topList,
		Upserts: []model.RankUpsert{{Candidate: 100, Rank: 1}}}); err != nil {
		t.Fatal(err)
	}
	bad := &model.RankBatch{ID: "bad", User: "ann", Scope: topList, Upserts: []model.RankUpsert{
		{Candidate: 103, Rank: 4},
		{Candidate: 104, Rank: 1},
	}}
	if err := s.ApplyRankBatch(ctx, bad); !errors.Is(err, ErrConflict) {
		t.Fatalf("conflicting batch = %v, want ErrConflict", err)
	}
	sels, _ := s.FetchSelections(ctx, "ann", topList)
	if want := map[model.CandidateID]model.Rank{100: 1}; !reflect.DeepEqual(ranks(sels), want) {
		t.Errorf("after a failed batch selections = %v, want %v", ranks(sels), want)
	}
}

func TestFinalize(t *testing.T) {
	s := NewMemStorage(builtins.DemoRound())
	batch := &model.RankBatch{User: "ann", Scope: topList, Upserts: []model.RankUpsert{{Candidate: 100, Rank: 1}}}
	if err := s.ApplyRankBatch(ctx, batch); err != nil {
		t.Fatal(err)
	}
	if err := s.ApplyRankBatch(ctx, &model.RankBatch{User: "bob", Scope: topList,
		Upserts: []model.RankUpsert{{Candidate: 101, Rank: 1}}}); err != nil {
		t.Fatal(err)
	}

	if err := s.Finalize(ctx, "ann", "demo", now); err != nil {
		t.Fatal(err)
	}
	if err := s.Finalize(ctx, "ann", "demo", now); !errors.Is(err, ErrAlreadyFinalized) {
		t.Errorf("second Finalize = %v, want ErrAlreadyFinalized", err)
	}
	if err := s.ApplyRankBatch(ctx, batch); !errors.Is(err, ErrFinalized) {
		t.Errorf("batch after Finalize = %v, want ErrFinalized", err)
	}
	if fin, _ := s.IsFinalized(ctx, "ann", "demo"); !fin {
		t.Errorf("IsFinalized(ann) = false")
	}

	users, _ := s.FetchFinalizedUsers(ctx, "demo")
	if want := []model.UserID{"ann"}; !reflect.DeepEqual(users, want) {
		t.Errorf("finalized users = %v, want %v", users, want)
	}
	sels, _ := s.FetchFinalizedSelections(ctx, "demo")
	if len(sels) != 1 || sels[0].User != "ann" {
		t.Errorf("finalized selections = %v, want ann's only", sels)
	}
}

func TestSaveAnswerSet(t *testing.T) {
	s := NewMemStorage(builtins.DemoRound())
	as, err := s.FetchAnswerSet(ctx, "demo", 2)
	if err != nil || len(as) != 0 {
		t.Fatalf("unrevealed answers = %v, %v", as, err)
	}
	if err := s.SaveAnswerSet(ctx, "demo", 2, model.NewAnswerSet(100, 101)); err != nil {
		t.Fatal(err)
	}
	as, _ = s.FetchAnswerSet(ctx, "demo", 2)
	if want := []model.CandidateID{100, 101}; !reflect.DeepEqual(as.IDs(), want) {
		t.Errorf("answers = %v, want %v", as.IDs(), want)
	}
	if err := s.SaveAnswerSet(ctx, "demo", 2, model.NewAnswerSet(999)); !errors.Is(err, ErrNotFound) {
		t.Errorf("answer outside the pool = %v, want ErrNotFound", err)
	}
	if _, err := s.FetchRound(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("FetchRound(nope) = %v, want ErrNotFound", err)
	}
}

func TestCompareSelections(t *testing.T) {
	big := model.CandidateID(math.MaxInt64)
	small := model.CandidateID(math.MinInt64 + 1)
	sel := func(user model.UserID, cat model.CategoryID, cand model.CandidateID, r model.Rank) model.RankedSelection {
		return model.RankedSelection{User: user, Scope: model.RankScope{Round: "demo", Category: cat}, Candidate: cand, Rank: r}
	}
	want := []model.RankedSelection{
		sel("ann", math.MinInt64+1, 5, 1),
		sel("ann", math.MaxInt64, 5, 1),
		sel("ann", math.MaxInt64, 6, 2),
		sel("ann", math.MaxInt64, small, model.Unranked),
		sel("ann", math.MaxInt64, big, model.Unranked),
		sel("bob", 1, 1, 1),
	}
	got := slices.Clone(want)
	slices.Reverse(got)
	slices.SortFunc(got, compareSelections)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("sorted =\n%v\nwant\n%v", got, want)
	}
}
