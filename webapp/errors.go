package webapp

import (
	"errors"
	"log"
	"net/http"

	"github.com/ts4z/shortlist/he"
	"github.com/ts4z/shortlist/permission"
	"github.com/ts4z/shortlist/ranking"
	"github.com/ts4z/shortlist/report"
	"github.com/ts4z/shortlist/round"
	"github.com/ts4z/shortlist/state"
)

var statusBySentinel = []struct {
	err  error
	code int
}{
	{ranking.ErrRankOutOfRange, http.StatusBadRequest},
	{ranking.ErrNotInScope, http.StatusBadRequest},
	{ranking.ErrScopeFull, http.StatusBadRequest},
	{ranking.ErrBadVisualOrder, http.StatusBadRequest},
	{round.ErrInvalidRound, http.StatusBadRequest},
	{permission.ErrNoUser, http.StatusUnauthorized},
	{permission.ErrPermissionDenied, http.StatusForbidden},
	{state.ErrFinalized, http.StatusForbidden},
	{state.ErrNotFound, http.StatusNotFound},
	{state.ErrAlreadyFinalized, http.StatusConflict},
	{state.ErrConflict, http.StatusConflict},
	{report.ErrUnavailable, http.StatusConflict},
}

// classify gives err the status the client should see.  Errors that already
// carry a code keep it.
func classify(err error) *he.HTTPError {
	var coded *he.HTTPError
	if errors.As(err, &coded) {
		return coded
	}
	for _, s := range statusBySentinel {
		if errors.Is(err, s.err) {
			return he.New(s.code, err)
		}
	}
	var ie *ranking.InvariantError
	if errors.As(err, &ie) {
		log.Printf("returning 500 for invariant violation: %v", ie)
	}
	return he.New(http.StatusInternalServerError, err)
}
