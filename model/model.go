package model

import (
	"fmt"
	"slices"
	"time"
)

type CandidateID int64
type CategoryID int64
type RoundID string
type UserID string

// Rank is a position in a ranked list.  Valid ranks are 1..K; Unranked
// stands in for "no rank assigned".
type Rank int

const Unranked Rank = 0

func (r Rank) IsRanked() bool {
	return r != Unranked
}

// InRange reports whether r is a real rank for a scope with k slots.
func (r Rank) InRange(k int) bool {
	return r >= 1 && int(r) <= k
}

// Candidate is a movie, or a movie+person pair for the acting categories.
type Candidate struct {
	ID     CandidateID `json:"id"`
	Name   string      `json:"name"`
	Person string      `json:"person,omitempty"`
}

// DisplayName is "Person (Movie)" for pairs and the plain name otherwise.
func (c Candidate) DisplayName() string {
	if c.Person == "" {
		return c.Name
	}
	return fmt.Sprintf("%s (%s)", c.Person, c.Name)
}

type CategoryKind string

const (
	KindCategory CategoryKind = "category"
	KindTopList  CategoryKind = "toplist"
)

// Category is a pool of candidates ranked or picked together.  A flat top-K
// list is a category of kind KindTopList.
type Category struct {
	ID   CategoryID   `json:"id"`
	Slug string       `json:"slug"`
	Name string       `json:"name"`
	Kind CategoryKind `json:"kind"`

	// Pool is the ordered list of eligible candidates (the shortlist).
	Pool []Candidate `json:"pool"`

	// Slots is K: ranks run 1..Slots.  It is also the number of picks that
	// make a selection set complete.
	Slots int `json:"slots"`

	// MaxSelections caps how many candidates a user may select at all.
	// Zero means unbounded.
	MaxSelections int `json:"maxSelections,omitempty"`
}

func (c *Category) PoolSize() int {
	return len(c.Pool)
}

func (c *Category) PoolIDs() []CandidateID {
	ids := make([]CandidateID, len(c.Pool))
	for i, cand := range c.Pool {
		ids[i] = cand.ID
	}
	return ids
}

func (c *Category) Candidate(id CandidateID) (Candidate, bool) {
	for _, cand := range c.Pool {
		if cand.ID == id {
			return cand, true
		}
	}
	return Candidate{}, false
}

func (c *Category) Clone() *Category {
	cpy := *c
	cpy.Pool = slices.Clone(c.Pool)
	return &cpy
}

// Round is one game: a top list, a set of shortlist categories, or both.
type Round struct {
	ID   RoundID `json:"id"`
	Name string  `json:"name"`

	// TopList is the id of the flat top-list category, or zero.
	TopList CategoryID `json:"topList,omitempty"`
	// AnswerCategory names the category whose answer set scores the top list.
	AnswerCategory CategoryID `json:"answerCategory,omitempty"`

	// EntryFee is paid by every finalized participant into the pot.
	EntryFee int `json:"entryFee"`
	// Paytable names the prize table for shortlist categories.
	Paytable string `json:"paytable,omitempty"`

	Categories []*Category `json:"categories"`
}

// RoundSlug is a lightweight representation of a round for lists.
type RoundSlug struct {
	ID   RoundID `json:"id"`
	Name string  `json:"name"`
}

func (r *Round) Category(id CategoryID) (*Category, error) {
	for _, c := range r.Categories {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, fmt.Errorf("round %s has no category %d", r.ID, id)
}

// ShortlistCategories returns every category other than the top list.
func (r *Round) ShortlistCategories() []*Category {
	out := []*Category{}
	for _, c := range r.Categories {
		if c.Kind != KindTopList {
			out = append(out, c)
		}
	}
	return out
}

func (r *Round) Clone() *Round {
	cpy := *r
	cpy.Categories = make([]*Category, len(r.Categories))
	for i, c := range r.Categories {
		cpy.Categories[i] = c.Clone()
	}
	return &cpy
}

// RankScope is the unit within which ranks are unique for one user.
type RankScope struct {
	Round    RoundID    `json:"round"`
	Category CategoryID `json:"category"`
}

func (s RankScope) String() string {
	return fmt.Sprintf("%s/%d", s.Round, s.Category)
}

// RankedSelection is one user's pick of one candidate within a scope.
type RankedSelection struct {
	User      UserID      `json:"user"`
	Scope     RankScope   `json:"scope"`
	Candidate CandidateID `json:"candidate"`
	Rank      Rank        `json:"rank,omitempty"`
}

// AnswerSet is the revealed set of correct candidates of a category.  An
// empty set means "not revealed yet".
type AnswerSet map[CandidateID]struct{}

func NewAnswerSet(ids ...CandidateID) AnswerSet {
	as := make(AnswerSet, len(ids))
	for _, id := range ids {
		as[id] = struct{}{}
	}
	return as
}

func (as AnswerSet) Contains(id CandidateID) bool {
	_, ok := as[id]
	return ok
}

func (as AnswerSet) IDs() []CandidateID {
	ids := make([]CandidateID, 0, len(as))
	for id := range as {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// RankUpsert is a selection to create or overwrite.
type RankUpsert struct {
	Candidate CandidateID `json:"candidate"`
	Rank      Rank        `json:"rank,omitempty"`
}

// RankBatch is the all-or-nothing write produced by one ranking operation.
type RankBatch struct {
	ID       string        `json:"id"`
	User     UserID        `json:"user"`
	Scope    RankScope     `json:"scope"`
	Upserts  []RankUpsert  `json:"upserts"`
	Deletes  []CandidateID `json:"deletes"`
	StagedAt time.Time     `json:"stagedAt"`
}

func (b *RankBatch) Empty() bool {
	return len(b.Upserts) == 0 && len(b.Deletes) == 0
}
