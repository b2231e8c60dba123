package round

import (
	"errors"
	"testing"

	"github.com/ts4z/shortlist/builtins"
	"github.com/ts4z/shortlist/model"
	"github.com/ts4z/shortlist/state"
)

func TestValidate(t *testing.T) {
	m := newManager(state.NewMemStorage())
	tests := []struct {
		name   string
		mutate func(r *model.Round)
		ok     bool
	}{
		{"demo", func(r *model.Round) {}, true},
		{"no id", func(r *model.Round) { r.ID = "" }, false},
		{"no categories", func(r *model.Round) { r.Categories = nil; r.TopList = 0 }, false},
		{"duplicate category", func(r *model.Round) { r.Categories[2].ID = 2 }, false},
		{"zero slots", func(r *model.Round) { r.Categories[0].Slots = 0 }, false},
		{"limit under slots", func(r *model.Round) { r.Categories[1].MaxSelections = 4 }, false},
		{"duplicate candidate", func(r *model.Round) { r.Categories[1].Pool[1].ID = 100 }, false},
		{"top list is a category", func(r *model.Round) { r.TopList = 2 }, false},
		{"missing answer category", func(r *model.Round) { r.AnswerCategory = 9 }, false},
		{"unknown paytable", func(r *model.Round) { r.Paytable = "nope" }, false},
		{"slots disagree with paytable", func(r *model.Round) {
			r.Categories[2].Slots, r.Categories[2].MaxSelections = 4, 4
		}, false},
		{"default paytable", func(r *model.Round) { r.Paytable = "" }, true},
		{"top list only", func(r *model.Round) {
			r.Categories = r.Categories[:1]
			r.AnswerCategory = r.TopList
			r.Paytable = "nope"
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := builtins.DemoRound()
			tt.mutate(r)
			err := m.Validate(r)
			if tt.ok && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidRound) {
				t.Errorf("Validate() = %v, want ErrInvalidRound", err)
			}
		})
	}
}

func TestLoadRound(t *testing.T) {
	m := newManager(state.NewMemStorage())
	bad := builtins.DemoRound()
	bad.Categories[0].Slots = 0
	if err := m.LoadRound(ctx, bad); !errors.Is(err, ErrInvalidRound) {
		t.Fatalf("LoadRound(bad) = %v, want ErrInvalidRound", err)
	}
	if _, err := m.Round(ctx, "demo"); !errors.Is(err, state.ErrNotFound) {
		t.Errorf("an invalid round was stored: %v", err)
	}

	if err := m.LoadRound(ctx, builtins.DemoRound()); err != nil {
		t.Fatal(err)
	}
	slugs, err := m.ListRounds(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(slugs) != 1 || slugs[0].ID != "demo" || slugs[0].Name != "Demo round" {
		t.Errorf("ListRounds() = %v", slugs)
	}
	if err := m.RevealAnswers(ctx, "demo", 2, model.NewAnswerSet(999)); !errors.Is(err, state.ErrNotFound) {
		t.Errorf("revealing a candidate outside the pool = %v, want ErrNotFound", err)
	}
}
