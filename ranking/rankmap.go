// Package ranking keeps one user's ranked selections within one scope
// consistent as candidates are ranked, cleared, added, removed or dragged.
//
// A RankMap is never modified in place.  Every operation returns a new map,
// so the caller can hold on to the last confirmed state until storage accepts
// the batch computed by Diff.
package ranking

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/ts4z/shortlist/model"
)

var (
	ErrRankOutOfRange = errors.New("rank out of range")
	ErrNotInScope     = errors.New("candidate not in scope")
	ErrScopeFull      = errors.New("no more selections allowed in scope")
	ErrBadVisualOrder = errors.New("visual order does not match scope")
)

// InvariantError reports a state that valid input can't produce: a duplicate
// rank, or no free rank left for a displaced candidate.
type InvariantError struct {
	Scope model.RankScope
	Msg   string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("rank invariant violated in %v: %s", e.Scope, e.Msg)
}

// RankMap is the set of a user's selections in one scope, each with an
// optional rank in 1..K.
type RankMap struct {
	scope model.RankScope
	k     int
	limit int
	pool  []model.CandidateID
	index map[model.CandidateID]int
	ranks map[model.CandidateID]model.Rank
}

// New builds a RankMap for scope over the pool of category.  current holds
// the selections already confirmed by storage; it may be nil.
func New(scope model.RankScope, category *model.Category, current map[model.CandidateID]model.Rank) (*RankMap, error) {
	if category.Slots < 1 {
		return nil, fmt.Errorf("category %d has %d slots", category.ID, category.Slots)
	}
	m := &RankMap{
		scope: scope,
		k:     category.Slots,
		limit: category.MaxSelections,
		pool:  category.PoolIDs(),
		index: make(map[model.CandidateID]int, len(category.Pool)),
		ranks: make(map[model.CandidateID]model.Rank, len(current)),
	}
	for i, id := range m.pool {
		m.index[id] = i
	}
	for id, r := range current {
		m.ranks[id] = r
	}
	if err := m.check(); err != nil {
		return nil, err
	}
	return m, nil
}

// FromSelections is New for rows as they come out of storage.
func FromSelections(scope model.RankScope, category *model.Category, sels []model.RankedSelection) (*RankMap, error) {
	current := make(map[model.CandidateID]model.Rank, len(sels))
	for _, sel := range sels {
		if sel.Scope != scope {
			return nil, fmt.Errorf("selection of candidate %d belongs to %v, not %v", sel.Candidate, sel.Scope, scope)
		}
		if _, dup := current[sel.Candidate]; dup {
			return nil, &InvariantError{Scope: scope, Msg: fmt.Sprintf("candidate %d selected twice", sel.Candidate)}
		}
		current[sel.Candidate] = sel.Rank
	}
	return New(scope, category, current)
}

func (m *RankMap) Scope() model.RankScope {
	return m.scope
}

// K is the number of rank slots.
func (m *RankMap) K() int {
	return m.k
}

// Len is the number of selected candidates, ranked or not.
func (m *RankMap) Len() int {
	return len(m.ranks)
}

// Rank returns the rank of id and whether id is selected at all.
func (m *RankMap) Rank(id model.CandidateID) (model.Rank, bool) {
	r, ok := m.ranks[id]
	return r, ok
}

// Holder returns the candidate holding rank r, if any.
func (m *RankMap) Holder(r model.Rank) (model.CandidateID, bool) {
	for id, have := range m.ranks {
		if have == r {
			return id, true
		}
	}
	return 0, false
}

// Ranks returns a copy of the selection map.
func (m *RankMap) Ranks() map[model.CandidateID]model.Rank {
	out := make(map[model.CandidateID]model.Rank, len(m.ranks))
	for id, r := range m.ranks {
		out[id] = r
	}
	return out
}

// Selections returns the map as storage rows for user, in pool order.
func (m *RankMap) Selections(user model.UserID) []model.RankedSelection {
	out := make([]model.RankedSelection, 0, len(m.ranks))
	for _, id := range m.pool {
		if r, ok := m.ranks[id]; ok {
			out = append(out, model.RankedSelection{User: user, Scope: m.scope, Candidate: id, Rank: r})
		}
	}
	return out
}

// Complete reports whether every slot is filled.
func (m *RankMap) Complete() bool {
	return len(m.ranks) >= m.k
}

// VisualOrder derives the display order: ranked candidates by rank, then
// everything else in pool order.
func (m *RankMap) VisualOrder() []model.CandidateID {
	ranked := make([]model.CandidateID, 0, len(m.ranks))
	rest := make([]model.CandidateID, 0, len(m.pool))
	for _, id := range m.pool {
		if m.ranks[id].IsRanked() {
			ranked = append(ranked, id)
		} else {
			rest = append(rest, id)
		}
	}
	slices.SortFunc(ranked, func(a, b model.CandidateID) int {
		return cmp.Compare(m.ranks[a], m.ranks[b])
	})
	return append(ranked, rest...)
}

// Diff computes what storage must do to turn m into next.
func (m *RankMap) Diff(next *RankMap) ([]model.RankUpsert, []model.CandidateID) {
	upserts := []model.RankUpsert{}
	deletes := []model.CandidateID{}
	for _, id := range next.pool {
		r, ok := next.ranks[id]
		if !ok {
			if _, had := m.ranks[id]; had {
				deletes = append(deletes, id)
			}
			continue
		}
		if old, had := m.ranks[id]; !had || old != r {
			upserts = append(upserts, model.RankUpsert{Candidate: id, Rank: r})
		}
	}
	return upserts, deletes
}

func (m *RankMap) clone() *RankMap {
	cpy := *m
	cpy.ranks = m.Ranks()
	return &cpy
}

func (m *RankMap) member(id model.CandidateID) error {
	if _, ok := m.index[id]; !ok {
		return fmt.Errorf("%w: candidate %d in %v", ErrNotInScope, id, m.scope)
	}
	return nil
}

func (m *RankMap) invariant(f string, args ...any) *InvariantError {
	return &InvariantError{Scope: m.scope, Msg: fmt.Sprintf(f, args...)}
}

// check verifies the map: pool membership, ranks within 1..K, no rank held
// twice, selection limit.
func (m *RankMap) check() error {
	seen := make(map[model.Rank]model.CandidateID, len(m.ranks))
	for id, r := range m.ranks {
		if _, ok := m.index[id]; !ok {
			return m.invariant("candidate %d is not in the pool", id)
		}
		if !r.IsRanked() {
			continue
		}
		if !r.InRange(m.k) {
			return m.invariant("candidate %d has rank %d outside 1..%d", id, r, m.k)
		}
		if other, dup := seen[r]; dup {
			return m.invariant("rank %d held by both %d and %d", r, other, id)
		}
		seen[r] = id
	}
	if m.limit > 0 && len(m.ranks) > m.limit {
		return m.invariant("%d selections exceed the limit of %d", len(m.ranks), m.limit)
	}
	return nil
}
