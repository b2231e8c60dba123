// Package roundfile reads round definitions written by hand in YAML: the
// categories, their shortlists, and optionally the answers once known.
//
//	id: oscars-2025
//	name: 97th Academy Awards
//	entry_fee: 35
//	paytable: Shortlist 2025
//	top_list: top-list
//	answer_category: picture
//	categories:
//	  - id: 1
//	    slug: top-list
//	    kind: toplist
//	    slots: 10
//	    pool:
//	      - {id: 100, name: Anora}
//	answers:
//	  picture: [100, 101, 102, 103, 104]
//
// top_list, answer_category and the keys of answers are category slugs.
package roundfile

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ts4z/shortlist/model"
)

type candidateFile struct {
	ID     int64  `yaml:"id"`
	Name   string `yaml:"name"`
	Person string `yaml:"person,omitempty"`
}

type categoryFile struct {
	ID            int64           `yaml:"id"`
	Slug          string          `yaml:"slug"`
	Name          string          `yaml:"name"`
	Kind          string          `yaml:"kind,omitempty"`
	Slots         int             `yaml:"slots"`
	MaxSelections int             `yaml:"max_selections,omitempty"`
	Pool          []candidateFile `yaml:"pool"`
}

type roundFile struct {
	ID             string             `yaml:"id"`
	Name           string             `yaml:"name"`
	EntryFee       int                `yaml:"entry_fee"`
	Paytable       string             `yaml:"paytable,omitempty"`
	TopList        string             `yaml:"top_list,omitempty"`
	AnswerCategory string             `yaml:"answer_category,omitempty"`
	Categories     []categoryFile     `yaml:"categories"`
	Answers        map[string][]int64 `yaml:"answers,omitempty"`
}

// File is a parsed round file.
type File struct {
	Round   *model.Round
	Answers map[model.CategoryID]model.AnswerSet
}

func Read(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rf, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rf, nil
}

// Parse decodes a round file.  Unknown keys are errors so typos don't
// silently drop a category setting.
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var rf roundFile
	if err := dec.Decode(&rf); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty round file")
		}
		return nil, fmt.Errorf("can't parse round file: %w", err)
	}
	return rf.build()
}

func (rf *roundFile) build() (*File, error) {
	r := &model.Round{
		ID:       model.RoundID(rf.ID),
		Name:     rf.Name,
		EntryFee: rf.EntryFee,
		Paytable: rf.Paytable,
	}
	bySlug := map[string]*model.Category{}
	for _, cf := range rf.Categories {
		c := &model.Category{
			ID:            model.CategoryID(cf.ID),
			Slug:          cf.Slug,
			Name:          cf.Name,
			Kind:          model.CategoryKind(cf.Kind),
			Slots:         cf.Slots,
			MaxSelections: cf.MaxSelections,
		}
		switch c.Kind {
		case "":
			c.Kind = model.KindCategory
		case model.KindCategory, model.KindTopList:
		default:
			return nil, fmt.Errorf("category %q: unknown kind %q", cf.Slug, cf.Kind)
		}
		if c.Kind == model.KindCategory && c.MaxSelections == 0 {
			c.MaxSelections = c.Slots
		}
		for _, cand := range cf.Pool {
			c.Pool = append(c.Pool, model.Candidate{ID: model.CandidateID(cand.ID), Name: cand.Name, Person: cand.Person})
		}
		if _, dup := bySlug[c.Slug]; dup {
			return nil, fmt.Errorf("duplicate category slug %q", c.Slug)
		}
		bySlug[c.Slug] = c
		r.Categories = append(r.Categories, c)
	}

	lookup := func(what, slug string) (model.CategoryID, error) {
		if slug == "" {
			return 0, nil
		}
		c, ok := bySlug[slug]
		if !ok {
			return 0, fmt.Errorf("%s: no category %q", what, slug)
		}
		return c.ID, nil
	}
	var err error
	if r.TopList, err = lookup("top_list", rf.TopList); err != nil {
		return nil, err
	}
	if r.AnswerCategory, err = lookup("answer_category", rf.AnswerCategory); err != nil {
		return nil, err
	}

	answers := map[model.CategoryID]model.AnswerSet{}
	for slug, ids := range rf.Answers {
		id, err := lookup("answers", slug)
		if err != nil {
			return nil, err
		}
		as := model.NewAnswerSet()
		for _, cand := range ids {
			as[model.CandidateID(cand)] = struct{}{}
		}
		answers[id] = as
	}
	return &File{Round: r, Answers: answers}, nil
}
