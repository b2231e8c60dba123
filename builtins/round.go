package builtins

import (
	"github.com/ts4z/shortlist/model"
)

// DemoRound is a small round for the in-memory store: a top-10 list over
// twelve films and two shortlist categories.
func DemoRound() *model.Round {
	films := []string{
		"Anora", "The Brutalist", "A Complete Unknown", "Conclave", "Dune: Part Two",
		"Emilia Pérez", "I'm Still Here", "Nickel Boys", "The Substance", "Wicked",
		"Nosferatu", "September 5",
	}
	top := &model.Category{ID: 1, Slug: "top-list", Name: "Top 10", Kind: model.KindTopList, Slots: 10, MaxSelections: 10}
	for i, name := range films {
		top.Pool = append(top.Pool, model.Candidate{ID: model.CandidateID(100 + i), Name: name})
	}

	// the same film keeps its id in every category, so the answer set of
	// Best Picture scores the top list
	picture := &model.Category{ID: 2, Slug: "picture", Name: "Best Picture", Kind: model.KindCategory, Slots: 5, MaxSelections: 5}
	picture.Pool = append(picture.Pool, top.Pool[:10]...)

	actress := &model.Category{ID: 3, Slug: "actress", Name: "Actress in a Leading Role", Kind: model.KindCategory, Slots: 5, MaxSelections: 5}
	for i, p := range [][2]string{
		{"Anora", "Mikey Madison"},
		{"Emilia Pérez", "Karla Sofía Gascón"},
		{"I'm Still Here", "Fernanda Torres"},
		{"The Substance", "Demi Moore"},
		{"Wicked", "Cynthia Erivo"},
		{"Nosferatu", "Lily-Rose Depp"},
	} {
		actress.Pool = append(actress.Pool, model.Candidate{ID: model.CandidateID(300 + i), Name: p[0], Person: p[1]})
	}

	return &model.Round{
		ID:             "demo",
		Name:           "Demo round",
		TopList:        top.ID,
		AnswerCategory: picture.ID,
		EntryFee:       35,
		Paytable:       ShortlistPaytableName,
		Categories:     []*model.Category{top, picture, actress},
	}
}
