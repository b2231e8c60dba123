package ranking

import (
	"fmt"

	"github.com/ts4z/shortlist/model"
)

// Assign gives target the rank newRank and resolves the conflict with
// whichever candidate held it.
//
// If target was ranked, the two trade ranks.  If target was unranked, the
// holder is displaced: the first free rank above newRank is used, or failing
// that the first free rank below it, and every candidate between newRank and
// that free rank moves one step toward it.  The whole run shifts; the holder
// does not hop alone to the free rank.  With A:1 B:2 C:3, placing D at 1
// gives D:1 A:2 B:3 C:4, not D:1 B:2 C:3 A:4.  A scope with no free rank at
// all is an InvariantError.
func (m *RankMap) Assign(target model.CandidateID, newRank model.Rank) (*RankMap, error) {
	if err := m.member(target); err != nil {
		return nil, err
	}
	if !newRank.InRange(m.k) {
		return nil, fmt.Errorf("%w: %d is not in 1..%d", ErrRankOutOfRange, newRank, m.k)
	}
	current, selected := m.ranks[target]
	if !selected && m.limit > 0 && len(m.ranks) >= m.limit {
		return nil, fmt.Errorf("%w: limit is %d", ErrScopeFull, m.limit)
	}

	next := m.clone()
	holder, taken := m.Holder(newRank)
	switch {
	case !taken || holder == target:
		// nothing to resolve
	case current.IsRanked():
		next.ranks[holder] = current
	default:
		free, ok := m.freeRank(newRank)
		if !ok {
			return nil, m.invariant("no free rank to displace candidate %d from rank %d", holder, newRank)
		}
		next.shiftToward(newRank, free)
	}
	next.ranks[target] = newRank

	if err := next.check(); err != nil {
		return nil, err
	}
	return next, nil
}

// Clear removes target's rank but keeps it selected.  Nothing else changes.
func (m *RankMap) Clear(target model.CandidateID) (*RankMap, error) {
	if err := m.member(target); err != nil {
		return nil, err
	}
	next := m.clone()
	if _, ok := next.ranks[target]; ok {
		next.ranks[target] = model.Unranked
	}
	return next, nil
}

// Select adds target without a rank.  Selecting a selected candidate is a
// no-op.
func (m *RankMap) Select(target model.CandidateID) (*RankMap, error) {
	if err := m.member(target); err != nil {
		return nil, err
	}
	next := m.clone()
	if _, ok := next.ranks[target]; ok {
		return next, nil
	}
	if m.limit > 0 && len(m.ranks) >= m.limit {
		return nil, fmt.Errorf("%w: limit is %d", ErrScopeFull, m.limit)
	}
	next.ranks[target] = model.Unranked
	return next, nil
}

// Deselect removes target entirely, freeing its rank.  Other ranks are left
// alone, so a gap may remain.
func (m *RankMap) Deselect(target model.CandidateID) (*RankMap, error) {
	if err := m.member(target); err != nil {
		return nil, err
	}
	next := m.clone()
	delete(next.ranks, target)
	return next, nil
}

// freeRank finds an unheld rank, scanning upward from from+1 to K and then
// downward from from-1 to 1.
func (m *RankMap) freeRank(from model.Rank) (model.Rank, bool) {
	used := make(map[model.Rank]bool, len(m.ranks))
	for _, r := range m.ranks {
		used[r] = true
	}
	for r := from + 1; int(r) <= m.k; r++ {
		if !used[r] {
			return r, true
		}
	}
	for r := from - 1; r >= 1; r-- {
		if !used[r] {
			return r, true
		}
	}
	return model.Unranked, false
}

// shiftToward moves every rank in [from, free) (or (free, from]) one step
// toward free, vacating from.
func (m *RankMap) shiftToward(from, free model.Rank) {
	for id, r := range m.ranks {
		switch {
		case free > from && r >= from && r < free:
			m.ranks[id] = r + 1
		case free < from && r <= from && r > free:
			m.ranks[id] = r - 1
		}
	}
}
