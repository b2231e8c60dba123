package builtins

import (
	"github.com/ts4z/shortlist/paytable"
)

// shortlistPaytable is the 2025 prize table.  Bands are by shortlist
// length; fewer than 3 correct pays nothing except at 20 or more.
var shortlistPaytable = &paytable.Paytable{
	Name:  "Shortlist 2025",
	Slots: 5,
	Bands: []paytable.Band{
		{
			MinPool: 0,
			MaxPool: 10,
			Prizes:  []int{0, 0, 0, 2, 5, 10},
		},
		{
			MinPool: 11,
			MaxPool: 16,
			Prizes:  []int{0, 0, 0, 3, 6, 13},
		},
		{
			MinPool: 17,
			MaxPool: 19,
			Prizes:  []int{0, 0, 0, 4, 8, 17},
		},
		{
			MinPool: 20,
			MaxPool: 0, // and up
			Prizes:  []int{0, 0, 1, 4, 8, 17},
		},
	},
}

const ShortlistPaytableName = "Shortlist 2025"

// ShortlistPaytable returns a copy of the default table.
func ShortlistPaytable() *paytable.Paytable {
	return shortlistPaytable.Clone()
}
