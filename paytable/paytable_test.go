package paytable_test

import (
	"testing"

	"github.com/ts4z/shortlist/builtins"
	"github.com/ts4z/shortlist/paytable"
)

func TestShortlistPaytableIsValid(t *testing.T) {
	if err := builtins.ShortlistPaytable().Validate(); err != nil {
		t.Error(err)
	}
}

func TestPrize(t *testing.T) {
	pt := builtins.ShortlistPaytable()
	tests := []struct {
		correct  int
		poolSize int
		want     int
	}{
		{correct: 5, poolSize: 10, want: 10},
		{correct: 5, poolSize: 11, want: 13},
		{correct: 5, poolSize: 16, want: 13},
		{correct: 5, poolSize: 17, want: 17},
		{correct: 5, poolSize: 25, want: 17},
		{correct: 4, poolSize: 5, want: 5},
		{correct: 4, poolSize: 10, want: 5},
		{correct: 4, poolSize: 11, want: 6},
		{correct: 4, poolSize: 16, want: 6},
		{correct: 4, poolSize: 17, want: 8},
		{correct: 4, poolSize: 20, want: 8},
		{correct: 3, poolSize: 10, want: 2},
		{correct: 3, poolSize: 11, want: 3},
		{correct: 3, poolSize: 16, want: 3},
		{correct: 3, poolSize: 17, want: 4},
		{correct: 3, poolSize: 19, want: 4},
		{correct: 2, poolSize: 10, want: 0},
		{correct: 2, poolSize: 16, want: 0},
		{correct: 2, poolSize: 19, want: 0},
		{correct: 2, poolSize: 20, want: 1},
		{correct: 2, poolSize: 40, want: 1},
		{correct: 1, poolSize: 5, want: 0},
		{correct: 1, poolSize: 15, want: 0},
		{correct: 1, poolSize: 20, want: 0},
		{correct: 0, poolSize: 20, want: 0},
		{correct: 6, poolSize: 20, want: 0},
		{correct: -1, poolSize: 20, want: 0},
	}
	for _, tt := range tests {
		if got := pt.Prize(tt.correct, tt.poolSize); got != tt.want {
			t.Errorf("Prize(%d, %d) = %d, want %d", tt.correct, tt.poolSize, got, tt.want)
		}
	}
}

func TestMaxPrizeAndMinPaying(t *testing.T) {
	pt := builtins.ShortlistPaytable()
	tests := []struct {
		poolSize      int
		wantMax       int
		wantMinPaying int
	}{
		{poolSize: 10, wantMax: 10, wantMinPaying: 3},
		{poolSize: 15, wantMax: 13, wantMinPaying: 3},
		{poolSize: 18, wantMax: 17, wantMinPaying: 3},
		{poolSize: 20, wantMax: 17, wantMinPaying: 2},
	}
	for _, tt := range tests {
		if got := pt.MaxPrize(tt.poolSize); got != tt.wantMax {
			t.Errorf("MaxPrize(%d) = %d, want %d", tt.poolSize, got, tt.wantMax)
		}
		if got := pt.MinPayingCorrect(tt.poolSize); got != tt.wantMinPaying {
			t.Errorf("MinPayingCorrect(%d) = %d, want %d", tt.poolSize, got, tt.wantMinPaying)
		}
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name  string
		bands []paytable.Band
	}{
		{
			name:  "overlap",
			bands: []paytable.Band{{MinPool: 0, MaxPool: 10}, {MinPool: 10, MaxPool: 20}},
		},
		{
			name:  "band after open-ended band",
			bands: []paytable.Band{{MinPool: 0}, {MinPool: 30}},
		},
		{
			name:  "too many prizes",
			bands: []paytable.Band{{MinPool: 0, Prizes: []int{0, 0, 0, 0, 0, 0, 1}}},
		},
		{
			name:  "more correct pays less",
			bands: []paytable.Band{{MinPool: 0, Prizes: []int{0, 0, 0, 4, 3}}},
		},
		{
			name:  "inverted band",
			bands: []paytable.Band{{MinPool: 12, MaxPool: 11}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pt := &paytable.Paytable{Name: tt.name, Slots: 5, Bands: tt.bands}
			if err := pt.Validate(); err == nil {
				t.Errorf("Validate() accepted %v", tt.bands)
			}
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	pt := builtins.ShortlistPaytable()
	cpy := pt.Clone()
	cpy.Bands[0].Prizes[5] = 999
	if pt.Prize(5, 10) != 10 {
		t.Errorf("mutating a clone changed the original")
	}
	if builtins.ShortlistPaytable().Prize(5, 10) != 10 {
		t.Errorf("mutating a clone changed the builtin")
	}
}
