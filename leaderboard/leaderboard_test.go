package leaderboard

import (
	"cmp"
	"reflect"
	"testing"
)

func positions[ID cmp.Ordered](standings []Standing[ID]) ([]ID, []int) {
	ids := make([]ID, len(standings))
	pos := make([]int, len(standings))
	for i, s := range standings {
		ids[i] = s.ID
		pos[i] = s.Position
	}
	return ids, pos
}

func TestTiesShareAPositionAndLeaveAGap(t *testing.T) {
	entries := []Entry[string]{
		{ID: "eve", Keys: []int{1, 9, 40}},
		{ID: "dan", Keys: []int{3, 4, 20}},
		{ID: "ann", Keys: []int{4, 3, 10}},
		{ID: "bob", Keys: []int{3, 4, 20}},
		{ID: "cat", Keys: []int{3, 4, 20}},
	}
	got, err := Rank(Picks, entries)
	if err != nil {
		t.Fatal(err)
	}
	ids, pos := positions(got)
	wantIDs := []string{"ann", "bob", "cat", "dan", "eve"}
	wantPos := []int{1, 2, 2, 2, 5}
	if !reflect.DeepEqual(ids, wantIDs) {
		t.Errorf("order = %v, want %v", ids, wantIDs)
	}
	if !reflect.DeepEqual(pos, wantPos) {
		t.Errorf("positions = %v, want %v", pos, wantPos)
	}
}

func TestPicksKeyDirections(t *testing.T) {
	tests := []struct {
		name string
		a, b []int
		want string
	}{
		{name: "more correct wins", a: []int{3, 10, 50}, b: []int{2, 1, 1}, want: "a"},
		{name: "lower rank sum wins", a: []int{3, 6, 50}, b: []int{3, 7, 1}, want: "a"},
		{name: "lower preference points wins", a: []int{3, 6, 12}, b: []int{3, 6, 11}, want: "b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Rank(Picks, []Entry[string]{{ID: "a", Keys: tt.a}, {ID: "b", Keys: tt.b}})
			if err != nil {
				t.Fatal(err)
			}
			if got[0].ID != tt.want {
				t.Errorf("first = %s, want %s", got[0].ID, tt.want)
			}
			if got[1].Position != 2 {
				t.Errorf("second position = %d, want 2", got[1].Position)
			}
		})
	}
}

func TestPrizesVariant(t *testing.T) {
	entries := []Entry[int64]{
		{ID: 3, Keys: []int{0}},
		{ID: 1, Keys: []int{13}},
		{ID: 2, Keys: []int{13}},
		{ID: 4, Keys: []int{8}},
	}
	got, err := Rank(Prizes, entries)
	if err != nil {
		t.Fatal(err)
	}
	ids, pos := positions(got)
	if want := []int64{1, 2, 4, 3}; !reflect.DeepEqual(ids, want) {
		t.Errorf("order = %v, want %v", ids, want)
	}
	if want := []int{1, 1, 3, 4}; !reflect.DeepEqual(pos, want) {
		t.Errorf("positions = %v, want %v", pos, want)
	}
}

func TestRankRejectsWrongKeyCount(t *testing.T) {
	if _, err := Rank(Picks, []Entry[string]{{ID: "x", Keys: []int{1}}}); err == nil {
		t.Error("Rank accepted an entry with one key for a three-key variant")
	}
}

func TestRankEmpty(t *testing.T) {
	got, err := Rank(Prizes, []Entry[string]{})
	if err != nil || len(got) != 0 {
		t.Errorf("Rank(empty) = %v, %v", got, err)
	}
}
