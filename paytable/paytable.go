package paytable

// Package paytable provides data models and stateless functions for the
// per-category prize tables.

import (
	"fmt"
)

// Band defines the prizes for a range of shortlist sizes.
type Band struct {
	MinPool int   // Minimum shortlist size (inclusive)
	MaxPool int   // Maximum shortlist size (inclusive), 0 for no limit
	Prizes  []int // Prize by number of correct picks, index 0 = none correct
}

func (b *Band) covers(poolSize int) bool {
	return poolSize >= b.MinPool && (b.MaxPool == 0 || poolSize <= b.MaxPool)
}

// Paytable maps (correct picks, shortlist size) to a prize.  Any combination
// the table doesn't list pays 0.
type Paytable struct {
	ID    int64  // Unique identifier for the table
	Name  string // Name of the table (e.g., "Shortlist 2025")
	Slots int    // Picks that make a category complete
	Bands []Band // Ordered by MinPool
}

// PaytableSlug is a lightweight representation of a table for lists.
type PaytableSlug struct {
	Name string
	ID   int64
}

// Prize is the payout for correct picks out of a shortlist of poolSize.
func (pt *Paytable) Prize(correct, poolSize int) int {
	b := pt.findBand(poolSize)
	if b == nil || correct < 0 || correct >= len(b.Prizes) {
		return 0
	}
	return b.Prizes[correct]
}

// MaxPrize is the payout for a perfect category.
func (pt *Paytable) MaxPrize(poolSize int) int {
	return pt.Prize(pt.Slots, poolSize)
}

// MinPayingCorrect is the fewest correct picks that pay anything, or -1 if
// nothing pays at this shortlist size.
func (pt *Paytable) MinPayingCorrect(poolSize int) int {
	b := pt.findBand(poolSize)
	if b == nil {
		return -1
	}
	for correct, prize := range b.Prizes {
		if prize > 0 {
			return correct
		}
	}
	return -1
}

// Validate checks that bands are ordered and disjoint, that no band has more
// prizes than a category has picks, and that more correct picks never pay less.
func (pt *Paytable) Validate() error {
	if pt.Slots < 1 {
		return fmt.Errorf("paytable %q: %d slots", pt.Name, pt.Slots)
	}
	for i, b := range pt.Bands {
		if b.MaxPool != 0 && b.MaxPool < b.MinPool {
			return fmt.Errorf("paytable %q band %d: max %d < min %d", pt.Name, i, b.MaxPool, b.MinPool)
		}
		if i > 0 {
			prev := pt.Bands[i-1]
			if prev.MaxPool == 0 || b.MinPool <= prev.MaxPool {
				return fmt.Errorf("paytable %q band %d overlaps band %d", pt.Name, i, i-1)
			}
		}
		if len(b.Prizes) > pt.Slots+1 {
			return fmt.Errorf("paytable %q band %d: %d prizes for %d slots", pt.Name, i, len(b.Prizes), pt.Slots)
		}
		for c := 1; c < len(b.Prizes); c++ {
			if b.Prizes[c] < b.Prizes[c-1] {
				return fmt.Errorf("paytable %q band %d: %d correct pays less than %d", pt.Name, i, c, c-1)
			}
		}
	}
	return nil
}

// findBand finds the band covering poolSize, or nil if there isn't one.
func (pt *Paytable) findBand(poolSize int) *Band {
	for i := range pt.Bands {
		if pt.Bands[i].covers(poolSize) {
			return &pt.Bands[i]
		}
	}
	return nil
}

func (pt *Paytable) Clone() *Paytable {
	clone := &Paytable{
		ID:    pt.ID,
		Name:  pt.Name,
		Slots: pt.Slots,
		Bands: make([]Band, len(pt.Bands)),
	}
	for i, b := range pt.Bands {
		clone.Bands[i] = b
		clone.Bands[i].Prizes = make([]int, len(b.Prizes))
		copy(clone.Bands[i].Prizes, b.Prizes)
	}
	return clone
}
