// Package leaderboard orders entries with a per-variant comparator chain and
// assigns tied positions.
package leaderboard

import (
	"cmp"
	"fmt"
	"slices"
)

type Direction int

const (
	Descending Direction = iota
	Ascending
)

func (d Direction) String() string {
	if d == Ascending {
		return "asc"
	}
	return "desc"
}

// Key is one link of a comparator chain.
type Key struct {
	Name      string
	Direction Direction
}

// Variant is a named comparator chain.  Keys are applied in order; a later
// key only matters when every earlier one is equal.
type Variant struct {
	Name string
	Keys []Key
}

var (
	// Picks ranks users by correct top-list picks, then by how close to rank
	// 1 those picks were, then by how unpopular they were.
	Picks = Variant{
		Name: "picks",
		Keys: []Key{
			{Name: "successCount", Direction: Descending},
			{Name: "rankSum", Direction: Ascending},
			{Name: "preferencePoints", Direction: Ascending},
		},
	}

	Prizes = Variant{
		Name: "prizes",
		Keys: []Key{
			{Name: "totalPrize", Direction: Descending},
		},
	}

	Preferences = Variant{
		Name: "preferences",
		Keys: []Key{
			{Name: "points", Direction: Descending},
			{Name: "frequency", Direction: Descending},
			{Name: "bestRank", Direction: Ascending},
		},
	}
)

// Entry is something to rank.  Keys line up with the variant's keys.
type Entry[ID cmp.Ordered] struct {
	ID   ID
	Keys []int
}

type Standing[ID cmp.Ordered] struct {
	Entry[ID]
	Position int
}

// Compare orders a before b when it returns a negative number.
func (v Variant) Compare(a, b []int) int {
	for i, k := range v.Keys {
		c := cmp.Compare(a[i], b[i])
		if k.Direction == Descending {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return 0
}

// Rank sorts entries and assigns positions.  An entry whose keys all equal
// those of the entry before it shares that entry's position; any other entry
// is placed at its index+1, so three users tied for 2nd are followed by 5th.
// Exact ties are listed by ascending id.
func Rank[ID cmp.Ordered](v Variant, entries []Entry[ID]) ([]Standing[ID], error) {
	for _, e := range entries {
		if len(e.Keys) != len(v.Keys) {
			return nil, fmt.Errorf("leaderboard %s: entry %v has %d keys, want %d", v.Name, e.ID, len(e.Keys), len(v.Keys))
		}
	}

	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b Entry[ID]) int {
		if c := v.Compare(a.Keys, b.Keys); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	out := make([]Standing[ID], len(sorted))
	for i, e := range sorted {
		out[i] = Standing[ID]{Entry: e, Position: i + 1}
		if i > 0 && v.Compare(sorted[i-1].Keys, e.Keys) == 0 {
			out[i].Position = out[i-1].Position
		}
	}
	return out, nil
}
