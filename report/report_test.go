package report

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/ts4z/shortlist/builtins"
	"github.com/ts4z/shortlist/model"
)

const (
	topID     model.CategoryID = 1
	pictureID model.CategoryID = 2
	actressID model.CategoryID = 3
)

func pool(from, to int) []model.Candidate {
	out := []model.Candidate{}
	for i := from; i <= to; i++ {
		out = append(out, model.Candidate{ID: model.CandidateID(i), Name: fmt.Sprintf("film-%02d", i)})
	}
	return out
}

func testRound() *model.Round {
	return &model.Round{
		ID:             "r",
		TopList:        topID,
		AnswerCategory: pictureID,
		EntryFee:       35,
		Paytable:       builtins.ShortlistPaytableName,
		Categories: []*model.Category{
			{ID: topID, Kind: model.KindTopList, Slots: 3, Pool: pool(1, 10)},
			{ID: pictureID, Slug: "picture", Kind: model.KindCategory, Slots: 5, MaxSelections: 5, Pool: pool(1, 10)},
			{ID: actressID, Slug: "actress", Kind: model.KindCategory, Slots: 5, MaxSelections: 5, Pool: pool(21, 40)},
		},
	}
}

type pick struct {
	cat  model.CategoryID
	id   int
	rank model.Rank
}

func sels(u model.UserID, picks ...pick) []model.RankedSelection {
	out := []model.RankedSelection{}
	for _, p := range picks {
		out = append(out, model.RankedSelection{
			User:      u,
			Scope:     model.RankScope{Round: "r", Category: p.cat},
			Candidate: model.CandidateID(p.id),
			Rank:      p.rank,
		})
	}
	return out
}

func shortlist(cat model.CategoryID, ids ...int) []pick {
	out := []pick{}
	for _, id := range ids {
		out = append(out, pick{cat: cat, id: id})
	}
	return out
}

var asOf = time.Date(2025, 3, 2, 20, 0, 0, 0, time.UTC)

func testSnapshot() *Snapshot {
	var all []model.RankedSelection
	all = append(all, sels("ann", pick{topID, 1, 1}, pick{topID, 2, 2}, pick{topID, 9, 3})...)
	all = append(all, sels("bob", pick{topID, 2, 1}, pick{topID, 1, 2}, pick{topID, 3, 3})...)
	all = append(all, sels("cat", pick{topID, 9, 1}, pick{topID, 3, 2}, pick{topID, 6, 3})...)
	all = append(all, sels("eve", pick{topID, 1, 1})...)

	all = append(all, sels("ann", shortlist(pictureID, 1, 2, 3, 4, 6)...)...)
	all = append(all, sels("bob", shortlist(pictureID, 1, 2, 3, 4)...)...)
	all = append(all, sels("cat", shortlist(pictureID, 1, 2, 3, 4, 5)...)...)
	all = append(all, sels("ann", shortlist(actressID, 21, 22, 30, 31, 32)...)...)
	all = append(all, sels("bob", shortlist(actressID, 21, 22, 23, 24, 25)...)...)
	all = append(all, sels("eve", shortlist(actressID, 21, 22, 23, 24, 25)...)...)

	return &Snapshot{
		Round:      testRound(),
		Users:      []model.UserID{"ann", "bob", "cat", "dan"},
		Selections: all,
		Answers: map[model.CategoryID]model.AnswerSet{
			pictureID: model.NewAnswerSet(1, 2, 3, 4, 5),
			actressID: model.NewAnswerSet(21, 22, 23, 24, 25),
		},
		Paytable: builtins.ShortlistPaytable(),
		AsOf:     asOf,
	}
}

func TestPickLeaderboard(t *testing.T) {
	lb, err := BuildPickLeaderboard(testSnapshot())
	if err != nil {
		t.Fatal(err)
	}
	type row struct {
		user                    model.UserID
		pos, count, sum, points int
	}
	var got []row
	for _, e := range lb.Entries {
		got = append(got, row{e.User, e.Position, e.SuccessCount, e.RankSum, e.PreferencePoints})
	}
	want := []row{
		{"bob", 1, 3, 6, 13},
		{"ann", 2, 2, 3, 10},
		{"cat", 3, 1, 2, 3},
		{"dan", 4, 0, 0, 0},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("entries =\n%v\nwant\n%v", got, want)
	}
	if lb.Pot != 140 || lb.Users != 4 || lb.AnswerCount != 5 {
		t.Errorf("pot, users, answers = %d, %d, %d; want 140, 4, 5", lb.Pot, lb.Users, lb.AnswerCount)
	}
	if !lb.GeneratedAt.Equal(asOf) {
		t.Errorf("GeneratedAt = %v, want %v", lb.GeneratedAt, asOf)
	}

	wantPicks := []SuccessfulPick{
		{Candidate: 2, Name: "film-02", Rank: 1, Points: 5},
		{Candidate: 1, Name: "film-01", Rank: 2, Points: 5},
		{Candidate: 3, Name: "film-03", Rank: 3, Points: 3},
	}
	if !reflect.DeepEqual(lb.Entries[0].Picks, wantPicks) {
		t.Errorf("bob's picks = %v, want %v", lb.Entries[0].Picks, wantPicks)
	}
}

func TestPrizeLeaderboard(t *testing.T) {
	lb, err := BuildPrizeLeaderboard(testSnapshot())
	if err != nil {
		t.Fatal(err)
	}
	type row struct {
		user                  model.UserID
		pos, total, completed int
	}
	var got []row
	for _, e := range lb.Entries {
		got = append(got, row{e.User, e.Position, e.Total, e.Completed})
	}
	want := []row{
		{"bob", 1, 17, 1},
		{"cat", 2, 10, 1},
		{"ann", 3, 6, 2},
		{"dan", 4, 0, 0},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("entries =\n%v\nwant\n%v", got, want)
	}
	if lb.TotalPaid != 33 {
		t.Errorf("TotalPaid = %d, want 33", lb.TotalPaid)
	}
	if ann := lb.Entries[2]; ann.PayingCategories != 2 {
		t.Errorf("ann paying categories = %d, want 2", ann.PayingCategories)
	}
}

func TestIncompleteCategoryPaysNothing(t *testing.T) {
	ue, err := BuildEarnings(testSnapshot(), "bob")
	if err != nil {
		t.Fatal(err)
	}
	picture := ue.Categories[0]
	if picture.Category != pictureID {
		t.Fatalf("first category = %d, want %d", picture.Category, pictureID)
	}
	if picture.Selected != 4 || picture.Complete || picture.Correct != 4 || picture.Prize != 0 {
		t.Errorf("bob's picture = %+v, want 4 selected, incomplete, 4 correct, no prize", picture)
	}
	if ue.Total != 17 || ue.Completed != 1 {
		t.Errorf("bob total, completed = %d, %d; want 17, 1", ue.Total, ue.Completed)
	}
}

func TestEarningsOfUnknownUser(t *testing.T) {
	ue, err := BuildEarnings(testSnapshot(), "eve")
	if err != nil {
		t.Fatal(err)
	}
	if ue.Total != 0 || ue.Completed != 0 {
		t.Errorf("unfinalized eve earned %d in %d categories", ue.Total, ue.Completed)
	}
}

func TestStats(t *testing.T) {
	rep, err := BuildStats(testSnapshot())
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Categories) != 2 {
		t.Fatalf("got %d categories, want 2", len(rep.Categories))
	}
	tests := []struct {
		got         CategoryStats
		users       int
		accuracy    []int
		minPaying   int
		earned, max int
		successful  int
	}{
		{got: rep.Categories[0], users: 2, accuracy: []int{0, 0, 0, 0, 1, 1}, minPaying: 3, earned: 15, max: 20, successful: 2},
		{got: rep.Categories[1], users: 2, accuracy: []int{0, 0, 1, 0, 0, 1}, minPaying: 2, earned: 18, max: 34, successful: 2},
	}
	for _, tt := range tests {
		cs := tt.got
		if cs.Users != tt.users || cs.MinPaying != tt.minPaying || cs.TotalEarned != tt.earned || cs.MaxPossible != tt.max || cs.Successful != tt.successful {
			t.Errorf("%s: users %d minPaying %d earned %d max %d successful %d; want %d %d %d %d %d",
				cs.Slug, cs.Users, cs.MinPaying, cs.TotalEarned, cs.MaxPossible, cs.Successful,
				tt.users, tt.minPaying, tt.earned, tt.max, tt.successful)
		}
		if !reflect.DeepEqual(cs.Accuracy, tt.accuracy) {
			t.Errorf("%s: accuracy = %v, want %v", cs.Slug, cs.Accuracy, tt.accuracy)
		}
		if cs.SuccessRate != 100 {
			t.Errorf("%s: success rate = %v, want 100", cs.Slug, cs.SuccessRate)
		}
	}

	picks := rep.Categories[0].Picks
	if len(picks) != 6 {
		t.Fatalf("picture picks = %v, want 6 candidates", picks)
	}
	wantFirst := CandidatePicks{Candidate: 1, Name: "film-01", Count: 2, Correct: true}
	wantLast := CandidatePicks{Candidate: 6, Name: "film-06", Count: 1, Correct: false}
	if picks[0] != wantFirst || picks[5] != wantLast {
		t.Errorf("picture picks = %v, want %v first and %v last", picks, wantFirst, wantLast)
	}
}

func TestPreferences(t *testing.T) {
	rep, err := BuildPreferences(testSnapshot())
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	var pos []int
	for _, e := range rep.Entries {
		names = append(names, e.Name)
		pos = append(pos, e.Position)
	}
	// 1 and 2 tie on points and frequency; both have a best rank of 1
	wantNames := []string{"film-01", "film-02", "film-09", "film-03", "film-06"}
	wantPos := []int{1, 1, 3, 4, 5}
	if !reflect.DeepEqual(names, wantNames) || !reflect.DeepEqual(pos, wantPos) {
		t.Errorf("preferences = %v %v, want %v %v", names, pos, wantNames, wantPos)
	}
}

func TestUnavailableWithoutAnswers(t *testing.T) {
	s := testSnapshot()
	s.Answers = map[model.CategoryID]model.AnswerSet{pictureID: {}}

	if _, err := BuildPickLeaderboard(s); !errors.Is(err, ErrUnavailable) {
		t.Errorf("BuildPickLeaderboard = %v, want ErrUnavailable", err)
	}
	if _, err := BuildPrizeLeaderboard(s); !errors.Is(err, ErrUnavailable) {
		t.Errorf("BuildPrizeLeaderboard = %v, want ErrUnavailable", err)
	}
	if _, err := BuildEarnings(s, "ann"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("BuildEarnings = %v, want ErrUnavailable", err)
	}
	if _, err := BuildStats(s); !errors.Is(err, ErrUnavailable) {
		t.Errorf("BuildStats = %v, want ErrUnavailable", err)
	}
	if _, err := BuildPreferences(s); err != nil {
		t.Errorf("BuildPreferences = %v, want no error", err)
	}
}

func TestPartialReveal(t *testing.T) {
	s := testSnapshot()
	delete(s.Answers, pictureID)

	if _, err := BuildPickLeaderboard(s); !errors.Is(err, ErrUnavailable) {
		t.Errorf("BuildPickLeaderboard = %v, want ErrUnavailable", err)
	}
	rep, err := BuildStats(s)
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Categories) != 1 || rep.Categories[0].Category != actressID {
		t.Errorf("stats over %v, want actress only", rep.Categories)
	}
	ue, err := BuildEarnings(s, "cat")
	if err != nil {
		t.Fatal(err)
	}
	if ue.Categories[0].Revealed || ue.Categories[0].Prize != 0 {
		t.Errorf("unrevealed picture = %+v", ue.Categories[0])
	}
}
