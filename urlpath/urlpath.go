package urlpath

import (
	"net/http"
	"strconv"

	"github.com/ts4z/shortlist/he"
	"github.com/ts4z/shortlist/model"
)

// Int64PathValue parses the path variable name as an integer.  A bad value
// is a 400.
func Int64PathValue(r *http.Request, name string) (int64, error) {
	v, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		return -1, he.HTTPCodedErrorf(http.StatusBadRequest, "can't parse %s from url path: %v", name, err)
	}
	return v, nil
}

func RoundPathValue(r *http.Request) (model.RoundID, error) {
	id := r.PathValue("round")
	if id == "" {
		return "", he.HTTPCodedErrorf(http.StatusBadRequest, "no round in url path")
	}
	return model.RoundID(id), nil
}

// ScopePathValue reads {round} and {category}.
func ScopePathValue(r *http.Request) (model.RankScope, error) {
	round, err := RoundPathValue(r)
	if err != nil {
		return model.RankScope{}, err
	}
	cat, err := Int64PathValue(r, "category")
	if err != nil {
		return model.RankScope{}, err
	}
	return model.RankScope{Round: round, Category: model.CategoryID(cat)}, nil
}
