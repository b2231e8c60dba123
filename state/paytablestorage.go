package state

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ts4z/shortlist/builtins"
	"github.com/ts4z/shortlist/paytable"
)

// DefaultPaytableStorage serves the built-in prize tables.
type DefaultPaytableStorage struct {
	paytables map[string]*paytable.Paytable
}

var _ PaytableStorage = &DefaultPaytableStorage{}

func NewDefaultPaytableStorage() *DefaultPaytableStorage {
	return &DefaultPaytableStorage{
		paytables: map[string]*paytable.Paytable{
			builtins.ShortlistPaytableName: builtins.ShortlistPaytable(),
		},
	}
}

func (d *DefaultPaytableStorage) Close() {
	// No resources to clean up
}

func (d *DefaultPaytableStorage) FetchPaytableByName(name string) (*paytable.Paytable, error) {
	if pt, ok := d.paytables[name]; ok {
		return pt.Clone(), nil
	}
	return nil, fmt.Errorf("%w: paytable %q", ErrNotFound, name)
}

func (d *DefaultPaytableStorage) FetchPaytableSlugs() []paytable.PaytableSlug {
	slugs := make([]paytable.PaytableSlug, 0, len(d.paytables))
	for name, pt := range d.paytables {
		slugs = append(slugs, paytable.PaytableSlug{Name: name, ID: pt.ID})
	}
	slices.SortFunc(slugs, func(a, b paytable.PaytableSlug) int { return strings.Compare(a.Name, b.Name) })
	return slugs
}
