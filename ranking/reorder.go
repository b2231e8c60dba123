package ranking

import (
	"fmt"
	"slices"

	"github.com/ts4z/shortlist/model"
)

// Move returns a copy of order with the element at from moved to to.
func Move[T any](order []T, from, to int) []T {
	out := slices.Clone(order)
	item := out[from]
	out = slices.Delete(out, from, from+1)
	return slices.Insert(out, to, item)
}

// Reorder applies a drag of the candidate at order[from] to position to and
// derives ranks from the resulting order in one pass.
//
// The moved candidate and every candidate that already had a rank take
// their new position as rank; candidates without a rank stay unranked
// wherever they end up.  A position past K leaves the candidate selected but
// unranked.
func (m *RankMap) Reorder(order []model.CandidateID, from, to int) ([]model.CandidateID, *RankMap, error) {
	if from < 0 || from >= len(order) || to < 0 || to >= len(order) {
		return nil, nil, fmt.Errorf("%w: move %d->%d in a list of %d", ErrBadVisualOrder, from, to, len(order))
	}
	if err := m.checkOrder(order); err != nil {
		return nil, nil, err
	}
	moved := order[from]
	if _, ok := m.ranks[moved]; !ok && m.limit > 0 && len(m.ranks) >= m.limit {
		return nil, nil, fmt.Errorf("%w: limit is %d", ErrScopeFull, m.limit)
	}

	newOrder := Move(order, from, to)
	next := m.clone()
	for i, id := range newOrder {
		if id != moved && !m.ranks[id].IsRanked() {
			continue
		}
		pos := model.Rank(i + 1)
		if !pos.InRange(m.k) {
			pos = model.Unranked
		}
		next.ranks[id] = pos
	}

	if err := next.check(); err != nil {
		return nil, nil, err
	}
	return newOrder, next, nil
}

// checkOrder requires order to name pool members at most once each and to
// include every ranked candidate, so positions can't collide with ranks
// held off-screen.
func (m *RankMap) checkOrder(order []model.CandidateID) error {
	seen := make(map[model.CandidateID]bool, len(order))
	for _, id := range order {
		if err := m.member(id); err != nil {
			return fmt.Errorf("%w: %w", ErrBadVisualOrder, err)
		}
		if seen[id] {
			return fmt.Errorf("%w: candidate %d appears twice", ErrBadVisualOrder, id)
		}
		seen[id] = true
	}
	for id, r := range m.ranks {
		if r.IsRanked() && !seen[id] {
			return fmt.Errorf("%w: ranked candidate %d is missing", ErrBadVisualOrder, id)
		}
	}
	return nil
}
